// Package worker drains a session's Redis command queue, running each
// request against the in-process simulation and publishing its result.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hexsim/internal/session"
	"github.com/jwebster45206/hexsim/pkg/queue"
	"github.com/jwebster45206/hexsim/pkg/sim"
)

const (
	workerTimeout = 5 * time.Second
)

// Queue is the part of feed.CommandQueue the worker needs.
type Queue interface {
	BlockingDequeue(ctx context.Context, timeout time.Duration) (*queue.Request, error)
	PublishResult(ctx context.Context, res queue.Result) error
}

// Worker processes requests for one session.
type Worker struct {
	id      string
	queue   Queue
	session *session.Session
	log     *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a new worker instance
func New(q Queue, sess *session.Session, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Worker{
		id:      workerID,
		queue:   q,
		session: sess,
		log:     log.With("worker_id", workerID, "session_id", sess.ID),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start processes requests until Stop is called.
func (w *Worker) Start() error {
	defer close(w.done)
	w.log.Info("Worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err)
				// keep going; back off briefly so a broken queue does not spin
				select {
				case <-w.ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// Stop asks the worker to finish its current request and waits up to
// timeout for it to exit.
func (w *Worker) Stop(timeout time.Duration) {
	w.log.Info("Worker stop requested")
	w.cancel()
	select {
	case <-w.done:
	case <-time.After(timeout):
		w.log.Warn("Worker did not stop in time")
	}
}

func (w *Worker) processNextRequest() error {
	req, err := w.queue.BlockingDequeue(w.ctx, workerTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		return nil
	}

	w.log.Info("Received request from queue",
		"request_id", req.RequestID,
		"type", req.Type,
		"actor", req.ActorID)

	start := time.Now()
	res := w.Process(w.ctx, req)

	// publish even when the worker is stopping so waiting clients hear back
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(w.ctx), workerTimeout)
	defer cancel()
	if err := w.queue.PublishResult(pubCtx, res); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}

	w.log.Info("Request processed",
		"request_id", req.RequestID,
		"tick", res.Tick,
		"error_code", res.Code,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Process runs one request against the session.
func (w *Worker) Process(ctx context.Context, req *queue.Request) queue.Result {
	res := queue.Result{RequestID: req.RequestID}
	if err := req.Validate(); err != nil {
		res.Error = err.Error()
		res.Tick = w.session.Tick()
		return res
	}

	actorID := req.ActorID
	if actorID == "" {
		actorID = w.session.PlayerID()
	}

	var (
		out session.Outcome
		err error
	)
	switch req.Type {
	case queue.RequestTypeCommand:
		out, err = w.session.Submit(ctx, actorID, req.Command())
	case queue.RequestTypeText:
		out, err = w.session.SubmitText(ctx, actorID, req.Text)
	case queue.RequestTypeTick:
		out = w.session.Advance(req.Ticks)
	}

	if err != nil {
		res.Error = sim.PlayerMessage(err)
		res.Code = sim.Code(err)
		res.Tick = w.session.Tick()
		return res
	}
	res.Tick = out.Tick
	res.Lines = out.LinesFor(actorID)
	return res
}
