package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hexsim/internal/app"
	"github.com/jwebster45206/hexsim/internal/config"
	"github.com/jwebster45206/hexsim/internal/worker"
	"github.com/jwebster45206/hexsim/pkg/queue"
	"github.com/jwebster45206/hexsim/pkg/tools"
)

var dataDir = filepath.Join("..", "..", "data")

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	configFile = ""
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidate(t *testing.T) {
	out, err := run(t, "", "validate", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid!")
	assert.Contains(t, out, "characters: 5")
}

func TestValidate_Errors(t *testing.T) {
	_, err := run(t, "", "validate", t.TempDir())
	assert.ErrorContains(t, err, "no world documents")

	dir := t.TempDir()
	require.NoError(t, os.CopyFS(dir, os.DirFS(dataDir)))
	require.NoError(t, os.Rename(filepath.Join(dir, "characters", "thief.json"), filepath.Join(dir, "characters", "Thief.json")))
	_, err = run(t, "", "validate", dir)
	assert.ErrorContains(t, err, "characters/Thief.json")
}

func TestPlay(t *testing.T) {
	out, err := run(t, "look\nbogus\nquit\nlook\n", "play", "--data-dir", dataDir, "--seed", "5", "--width", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Type 'help'")
	assert.Contains(t, out, "A bustling square")
	assert.Contains(t, out, "Unknown command")
	assert.Equal(t, 1, strings.Count(out, "A bustling square"), "input after quit is ignored")
}

func TestDemo(t *testing.T) {
	out, err := run(t, "", "demo", "--data-dir", dataDir, "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "[0] -> look")
	assert.Contains(t, out, "-> move temple")
	assert.Contains(t, out, "Aldric moves to temple.")
}

func TestDemo_Script(t *testing.T) {
	script := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(script, []byte("wait 3\nstats\n"), 0o600))
	out, err := run(t, "", "demo", "--data-dir", dataDir, "--script", script)
	require.NoError(t, err)
	assert.Contains(t, out, "[0] -> wait 3")
	assert.Contains(t, out, "[3] -> stats")
	assert.Contains(t, out, "Aldric stats - HP:")
}

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		text    bool
		ticks   int
		want    queue.RequestType
		tool    tools.Name
		wantErr bool
	}{
		{name: "command", line: "move temple", want: queue.RequestTypeCommand, tool: tools.Move},
		{name: "text", line: "wander to the temple", text: true, want: queue.RequestTypeText},
		{name: "ticks", ticks: 2, want: queue.RequestTypeTick},
		{name: "meta", line: "help", wantErr: true},
		{name: "unknown", line: "dance", wantErr: true},
		{name: "empty text", text: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := buildRequest("hero", tt.line, tt.text, tt.ticks)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Type)
			assert.Equal(t, tt.tool, req.Tool)
		})
	}
}

func TestEnqueue_NeedsRedis(t *testing.T) {
	_, err := run(t, "", "enqueue", "look")
	assert.ErrorContains(t, err, "redis.url")
}

func TestEnqueue_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	redisURL := "redis://" + mr.Addr()

	cfg := &config.Config{DataDir: dataDir, PlayerID: "hero", SessionID: "town", Seed: 1}
	cfg.Redis.URL = redisURL
	a, err := app.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	w := worker.New(a.Queue, a.Session, nil, "test")
	go func() { _ = w.Start() }()
	defer w.Stop(5 * time.Second)

	out, err := run(t, "", "enqueue", "--redis.url", redisURL, "--session-id", "town", "--wait", "5s", "move", "temple")
	require.NoError(t, err)
	assert.Contains(t, out, "Aldric moves to temple.")
	assert.Contains(t, out, "Done at tick 5")
}
