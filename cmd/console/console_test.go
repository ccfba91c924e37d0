package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hexsim/internal/app"
	"github.com/jwebster45206/hexsim/internal/config"
	"github.com/jwebster45206/hexsim/internal/play"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := &config.Config{DataDir: filepath.Join("..", "..", "data"), PlayerID: "hero", SessionID: "console", Seed: 3}
	a, err := app.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAPIBackend(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Routes())
	defer srv.Close()

	ctx := context.Background()
	require.True(t, testConnection(srv.Client(), srv.URL))

	_, err := newAPIBackend(ctx, srv.Client(), srv.URL, "nobody")
	assert.ErrorContains(t, err, "not a character")

	b, err := newAPIBackend(ctx, srv.Client(), srv.URL, "hero")
	require.NoError(t, err)

	r := b.Handle(ctx, "look")
	assert.Empty(t, r.Error)
	assert.NotEmpty(t, r.Lines)

	r = b.Handle(ctx, "move")
	assert.Contains(t, r.Error, "Usage:")

	r = b.Handle(ctx, "move temple")
	assert.Empty(t, r.Error)
	assert.Equal(t, 5, r.Tick)

	st, err := b.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "temple", st.Location)
	assert.Equal(t, 5, st.Tick)

	assert.True(t, b.Handle(ctx, "quit").Quit)
}

func TestAPIBackend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal","message":"The town is asleep."}`))
	}))
	defer srv.Close()

	_, err := newAPIBackend(context.Background(), srv.Client(), srv.URL, "hero")
	assert.ErrorContains(t, err, "The town is asleep.")
}

func TestConsoleUI_Reply(t *testing.T) {
	a := newTestApp(t)
	ui := NewConsoleUI(localBackend{in: play.NewInterpreter(a.Session)})

	model, _ := ui.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model, _ = model.Update(replyMsg{play.Reply{Lines: []string{"Town Guard says: Halt!"}, Tick: 2}})
	m := model.(ConsoleUI)
	require.Len(t, m.transcript, 1)
	assert.Equal(t, 2, m.status.Tick)
	assert.Contains(t, m.plainTranscript(), "[2] Town Guard says: Halt!")

	model, _ = m.Update(replyMsg{play.Reply{Quit: true, Tick: 2}})
	assert.True(t, model.(ConsoleUI).showQuitModal)
}

func TestConsoleUI_Copy(t *testing.T) {
	ui := NewConsoleUI(localBackend{})
	var copied string
	ui.copy = func(s string) error { copied = s; return nil }
	ui.transcript = []entry{{kind: entryInput, tick: 0, text: "look"}, {kind: entryLine, tick: 0, text: "A bustling square."}}

	model, _ := ui.handleCommand("/copy")
	assert.Equal(t, "[0] > look\n[0] A bustling square.\n", copied)
	assert.Contains(t, model.(ConsoleUI).transcript[2].text, "copied")

	model, _ = model.(ConsoleUI).handleCommand("/clear")
	assert.Empty(t, model.(ConsoleUI).transcript)
}

func TestFormatSpeaker(t *testing.T) {
	assert.Contains(t, formatSpeaker("Town Guard says: Halt!"), "Halt!")
	assert.Equal(t, "Aldric moves to temple.", formatSpeaker("Aldric moves to temple."))
}
