// Package feed mirrors a simulation session into Redis: rendered lines are
// appended to a capped list for late joiners and every dispatched event is
// published as JSON for live subscribers.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/sim"
)

// DefaultMaxLines caps the narration list.
const DefaultMaxLines = 500

const publishTimeout = 2 * time.Second

// Message is published for each dispatched event.
type Message struct {
	Session    string      `json:"session"`
	Event      event.Event `json:"event"`
	Line       string      `json:"line,omitempty"`
	Recipients []string    `json:"recipients,omitempty"`
}

// Publisher is a sim.Observer writing one session's feed.
type Publisher struct {
	client   *Client
	session  string
	maxLines int64
	logger   *slog.Logger
}

var _ sim.Observer = (*Publisher)(nil)

func feedKey(session string) string {
	return fmt.Sprintf("hexsim:feed:%s", session)
}

func channelKey(session string) string {
	return fmt.Sprintf("hexsim:events:%s", session)
}

// NewPublisher creates a publisher for session.
func NewPublisher(client *Client, session string) *Publisher {
	return &Publisher{
		client:   client,
		session:  session,
		maxLines: DefaultMaxLines,
		logger:   client.logger.With("session_id", session),
	}
}

// WithMaxLines changes the list cap. Returns the Publisher for method
// chaining.
func (p *Publisher) WithMaxLines(n int) *Publisher {
	if n > 0 {
		p.maxLines = int64(n)
	}
	return p
}

// OnEvent appends the rendered line and publishes the event. Redis errors
// are logged; the simulation never waits on the feed for longer than a
// short timeout.
func (p *Publisher) OnEvent(d sim.Dispatched) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if d.Line != "" {
		if err := p.Append(ctx, d.Line); err != nil {
			p.logger.Error("Failed to append narration", "error", err, "event_id", d.Event.ID)
		}
	}
	if err := p.Publish(ctx, Message{Session: p.session, Event: d.Event, Line: d.Line, Recipients: d.Recipients}); err != nil {
		p.logger.Error("Failed to publish event", "error", err, "event_id", d.Event.ID)
	}
}

// Append adds a line to the narration list, trimming the oldest lines
// beyond the cap.
func (p *Publisher) Append(ctx context.Context, line string) error {
	key := feedKey(p.session)
	pipe := p.client.rdb.TxPipeline()
	pipe.RPush(ctx, key, line)
	pipe.LTrim(ctx, key, -p.maxLines, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append narration: %w", err)
	}
	return nil
}

// Publish sends msg to the session channel.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	channel := channelKey(p.session)
	if err := p.client.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	p.logger.Debug("Event published", "channel", channel, "kind", msg.Event.Kind, "tick", msg.Event.Tick)
	return nil
}

// Lines returns the most recent narration lines, oldest first. limit <= 0
// returns everything kept.
func (c *Client) Lines(ctx context.Context, session string, limit int) ([]string, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	lines, err := c.rdb.LRange(ctx, feedKey(session), start, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read narration: %w", err)
	}
	return lines, nil
}

// Subscribe delivers published messages for session to handle until ctx is
// cancelled. Malformed messages are logged and skipped.
func (c *Client) Subscribe(ctx context.Context, session string, handle func(Message)) error {
	sub := c.rdb.Subscribe(ctx, channelKey(session))
	defer sub.Close()

	// Wait for the subscription to be confirmed so no message is missed.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				c.logger.Warn("Skipping malformed feed message", "error", err, "channel", m.Channel)
				continue
			}
			handle(msg)
		}
	}
}
