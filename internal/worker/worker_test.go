package worker

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hexsim/internal/feed"
	"github.com/jwebster45206/hexsim/internal/session"
	"github.com/jwebster45206/hexsim/pkg/dice"
	"github.com/jwebster45206/hexsim/pkg/narrator"
	"github.com/jwebster45206/hexsim/pkg/queue"
	"github.com/jwebster45206/hexsim/pkg/rules"
	"github.com/jwebster45206/hexsim/pkg/sim"
	"github.com/jwebster45206/hexsim/pkg/tools"
	"github.com/jwebster45206/hexsim/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	w := world.NewTownFixture(rules.Default())
	s := sim.New(w, tools.DefaultRegistry(nil), dice.NewScripted(10)).
		WithPlayer("hero").
		WithDecider(sim.Idle).
		WithRenderer(narrator.New(w))
	return session.New(s).WithID("test-session")
}

func setupQueue(t *testing.T, sess string) *feed.CommandQueue {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := feed.NewClient(context.Background(), "redis://"+mr.Addr(), 3, testLogger())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return feed.NewCommandQueue(client, sess)
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name     string
		req      *queue.Request
		wantTick int
		wantCode string
		wantLine string
		wantErr  bool
	}{
		{
			name:     "command",
			req:      queue.NewCommandRequest("", tools.Command{Tool: tools.Move, Params: tools.Params{"target_location": "temple"}}),
			wantTick: 5,
			wantLine: "Aldric moves to temple. Cool stone and the smell of incense.",
		},
		{
			name:     "rejected command",
			req:      queue.NewCommandRequest("hero", tools.Command{Tool: tools.Grab, Params: tools.Params{"item_id": "rope_1"}}),
			wantCode: sim.CodeInvalidIntent,
			wantErr:  true,
		},
		{
			name:     "tick",
			req:      queue.NewTickRequest(3),
			wantTick: 3,
		},
		{
			name:    "text without translator",
			req:     queue.NewTextRequest("hero", "look around"),
			wantErr: true,
		},
		{
			name:    "empty tick",
			req:     &queue.Request{RequestID: "r1", Type: queue.RequestTypeTick},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(nil, newSession(t), testLogger(), "w1")
			res := w.Process(context.Background(), tt.req)

			assert.Equal(t, tt.req.RequestID, res.RequestID)
			assert.Equal(t, tt.wantTick, res.Tick)
			assert.Equal(t, tt.wantCode, res.Code)
			if tt.wantErr {
				assert.NotEmpty(t, res.Error)
				return
			}
			assert.Empty(t, res.Error)
			if tt.wantLine != "" {
				assert.Contains(t, res.Lines, tt.wantLine)
			}
		})
	}
}

func TestWorker_DrainsQueue(t *testing.T) {
	sess := newSession(t)
	q := setupQueue(t, sess.ID)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := queue.NewCommandRequest("hero", tools.Command{Tool: tools.Look})

	results := make(chan queue.Result, 1)
	errs := make(chan error, 1)
	subscribed := make(chan struct{})
	go func() {
		res, err := q.AwaitResult(ctx, req.RequestID, func() { close(subscribed) })
		if err != nil {
			errs <- err
			return
		}
		results <- res
	}()
	<-subscribed

	require.NoError(t, q.Enqueue(ctx, req))

	w := New(q, sess, testLogger(), "")
	go func() { _ = w.Start() }()
	defer w.Stop(5 * time.Second)

	select {
	case res := <-results:
		assert.Equal(t, 1, res.Tick)
		assert.Empty(t, res.Error)
		require.NotEmpty(t, res.Lines)
		assert.Contains(t, res.Lines[0], "A bustling square")
	case err := <-errs:
		t.Fatalf("await failed: %v", err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for result")
	}

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestCommandQueue_EnqueueRejectsEmpty(t *testing.T) {
	q := setupQueue(t, "s")
	err := q.Enqueue(context.Background(), &queue.Request{RequestID: "x", Type: queue.RequestTypeCommand})
	assert.ErrorIs(t, err, queue.ErrMissingCommand)
}

func TestCommandQueue_DequeueOrder(t *testing.T) {
	q := setupQueue(t, "s")
	ctx := context.Background()

	empty, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	first := queue.NewTickRequest(1)
	second := queue.NewTextRequest("hero", "wave")
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.RequestID, got.RequestID)

	got, err = q.BlockingDequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, second.RequestID, got.RequestID)
	assert.Equal(t, "wave", got.Text)
}
