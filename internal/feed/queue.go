package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/hexsim/pkg/queue"
)

// CommandQueue is a per-session FIFO of queued requests plus a channel
// carrying their results.
type CommandQueue struct {
	client  *Client
	session string
}

// NewCommandQueue creates the queue for session.
func NewCommandQueue(client *Client, session string) *CommandQueue {
	return &CommandQueue{client: client, session: session}
}

func requestsKey(session string) string {
	return fmt.Sprintf("hexsim:requests:%s", session)
}

func resultsKey(session string) string {
	return fmt.Sprintf("hexsim:results:%s", session)
}

// Session returns the session the queue feeds.
func (q *CommandQueue) Session() string { return q.session }

// Enqueue adds req to the end of the queue.
func (q *CommandQueue) Enqueue(ctx context.Context, req *queue.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, requestsKey(q.session), data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	return nil
}

// Dequeue removes and returns the next request, or nil when the queue is
// empty.
func (q *CommandQueue) Dequeue(ctx context.Context) (*queue.Request, error) {
	result, err := q.client.rdb.LPop(ctx, requestsKey(q.session)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}
	return parseRequest(result)
}

// BlockingDequeue waits up to timeout for a request. It returns nil, nil on
// timeout or cancellation.
func (q *CommandQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*queue.Request, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, requestsKey(q.session)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}
	// BLPop returns [key, value]
	if len(result) < 2 {
		return nil, nil
	}
	return parseRequest(result[1])
}

func parseRequest(data string) (*queue.Request, error) {
	req, err := queue.FromJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Depth returns the number of queued requests.
func (q *CommandQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, requestsKey(q.session)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

// PublishResult announces how a request was handled.
func (q *CommandQueue) PublishResult(ctx context.Context, res queue.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := q.client.rdb.Publish(ctx, resultsKey(q.session), data).Err(); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	return nil
}

// AwaitResult subscribes to results and returns the one for requestID.
// Subscribe before enqueueing: results published earlier are not replayed.
func (q *CommandQueue) AwaitResult(ctx context.Context, requestID string, ready func()) (queue.Result, error) {
	sub := q.client.rdb.Subscribe(ctx, resultsKey(q.session))
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return queue.Result{}, fmt.Errorf("failed to subscribe to results: %w", err)
	}
	if ready != nil {
		ready()
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return queue.Result{}, ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return queue.Result{}, errors.New("result subscription closed")
			}
			var res queue.Result
			if err := json.Unmarshal([]byte(m.Payload), &res); err != nil {
				q.client.logger.Warn("Dropping malformed result", "error", err)
				continue
			}
			if res.RequestID == requestID {
				return res, nil
			}
		}
	}
}
