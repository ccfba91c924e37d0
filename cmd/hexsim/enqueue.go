package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/hexsim/internal/feed"
	"github.com/jwebster45206/hexsim/pkg/command"
	"github.com/jwebster45206/hexsim/pkg/queue"
)

// NewEnqueueCmd creates the enqueue subcommand.
func NewEnqueueCmd() *cobra.Command {
	var (
		actorID string
		text    bool
		ticks   int
		wait    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "enqueue [command...]",
		Short: "Send a command to a running session through Redis",
		Long: `Push one request onto a session's command queue, where a worker
(hexsim-worker, or hexsim-api --queue) picks it up. The words are parsed
with the play grammar unless --text sends them as free text; --ticks
advances the clock instead. Needs redis.url and session-id.

  hexsim enqueue --session-id town --redis.url redis://localhost:6379 move temple`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Redis.URL == "" || cfg.SessionID == "" {
				return errors.New("enqueue needs --redis.url and --session-id")
			}

			req, err := buildRequest(actorID, strings.Join(args, " "), text, ticks)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := feed.NewClient(ctx, cfg.Redis.URL, 3, log)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()
			q := feed.NewCommandQueue(client, cfg.SessionID)

			out := cmd.OutOrStdout()
			if wait <= 0 {
				if err := q.Enqueue(ctx, req); err != nil {
					return err
				}
				fmt.Fprintf(out, "Enqueued %s request %s\n", req.Type, req.RequestID)
				return nil
			}

			res, err := enqueueAndWait(ctx, q, req, wait)
			if err != nil {
				return err
			}
			for _, line := range res.Lines {
				fmt.Fprintln(out, line)
			}
			if res.Error != "" {
				return fmt.Errorf("%s (tick %d)", res.Error, res.Tick)
			}
			fmt.Fprintf(out, "Done at tick %d\n", res.Tick)
			return nil
		},
	}
	cmd.Flags().StringVar(&actorID, "actor", "", "acting character (the session's player when empty)")
	cmd.Flags().BoolVar(&text, "text", false, "send the words as free text for translation")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "advance the clock this many ticks instead of sending a command")
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "wait this long for the result (0 returns at once)")
	return cmd
}

func buildRequest(actorID, line string, text bool, ticks int) (*queue.Request, error) {
	switch {
	case ticks > 0:
		return queue.NewTickRequest(ticks), nil
	case text:
		if line == "" {
			return nil, errors.New("no text given")
		}
		return queue.NewTextRequest(actorID, line), nil
	}

	res, err := command.Parse(line, nil)
	if err != nil {
		return nil, err
	}
	if res.IsMeta() {
		return nil, fmt.Errorf("%q only works at the play prompt", line)
	}
	return queue.NewCommandRequest(actorID, res.Command), nil
}

// enqueueAndWait subscribes for the result before pushing req so the reply
// cannot be missed.
func enqueueAndWait(ctx context.Context, q *feed.CommandQueue, req *queue.Request, wait time.Duration) (queue.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	var enqueueErr error
	res, err := q.AwaitResult(ctx, req.RequestID, func() {
		if enqueueErr = q.Enqueue(ctx, req); enqueueErr != nil {
			cancel()
		}
	})
	if enqueueErr != nil {
		return queue.Result{}, enqueueErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return queue.Result{}, fmt.Errorf("no result for request %s after %s; is a worker running for this session?", req.RequestID, wait)
	}
	return res, err
}
