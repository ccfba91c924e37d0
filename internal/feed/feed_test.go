package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/sim"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := NewClient(context.Background(), "redis://"+mr.Addr(), 3, logger)
	if err != nil {
		t.Fatalf("Failed to create feed client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not a url", 0, nil)
	assert.Error(t, err)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewClient(context.Background(), "redis://"+addr, 1, nil)
	assert.Error(t, err)
}

func TestPublisher_AppendCapsList(t *testing.T) {
	client, _ := setupTestRedis(t)
	session := uuid.NewString()
	pub := NewPublisher(client, session).WithMaxLines(3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, pub.Append(ctx, fmt.Sprintf("line %d", i)))
	}

	lines, err := client.Lines(ctx, session, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, lines)

	lines, err = client.Lines(ctx, session, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 4", "line 5"}, lines)

	lines, err = client.Lines(ctx, "empty", 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPublisher_OnEventSkipsEmptyLines(t *testing.T) {
	client, mr := setupTestRedis(t)
	pub := NewPublisher(client, "s1")

	pub.OnEvent(sim.Dispatched{Event: event.New(event.KindWait, 1, "hero", nil, nil)})
	pub.OnEvent(sim.Dispatched{Event: event.New(event.KindTalk, 1, "hero", nil, event.Payload{"content": "hi"}), Line: "Aldric says: hi"})

	list, err := mr.List(feedKey("s1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Aldric says: hi"}, list)
}

func TestSubscribe_ReceivesPublishedEvents(t *testing.T) {
	client, _ := setupTestRedis(t)
	pub := NewPublisher(client, "s2")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan Message, 1)
	ready := make(chan struct{})
	go func() {
		close(ready)
		_ = client.Subscribe(ctx, "s2", func(m Message) {
			select {
			case got <- m:
			default:
			}
		})
	}()
	<-ready

	e := event.New(event.KindScream, 4, "thief", []string{"market_square"}, event.Payload{"content": "help"})
	// Publish until the subscription is live; miniredis drops messages sent
	// before it is registered.
	for {
		require.NoError(t, pub.Publish(context.Background(), Message{Session: "s2", Event: e, Line: "Thief screams: help"}))
		select {
		case m := <-got:
			assert.Equal(t, "s2", m.Session)
			assert.Equal(t, event.KindScream, m.Event.Kind)
			assert.Equal(t, e.ID, m.Event.ID)
			assert.Equal(t, "Thief screams: help", m.Line)
			return
		case <-time.After(20 * time.Millisecond):
		case <-ctx.Done():
			t.Fatal("timed out waiting for message")
		}
	}
}
