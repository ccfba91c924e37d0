package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/jwebster45206/hexsim/internal/app"
	"github.com/jwebster45206/hexsim/internal/play"
)

// NewPlayCmd creates the play subcommand.
func NewPlayCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively at a line prompt",
		Long: `Start a session on the configured world and read commands from
standard input. Type 'help' for the command list. Lines outside the
grammar are translated by the LLM when llm.endpoint is configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := app.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Type 'help' for commands, 'quit' to leave.")
			return runREPL(cmd.Context(), play.NewInterpreter(a.Session), cmd.InOrStdin(), out, replOptions{width: width, prompt: true})
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "wrap narration at this many columns (0 disables)")
	return cmd
}

type replOptions struct {
	width  int
	prompt bool // print a prompt before each line
	echo   bool // repeat each input line, for scripted runs
}

// runREPL feeds lines from r to in until EOF or quit.
func runREPL(ctx context.Context, in *play.Interpreter, r io.Reader, w io.Writer, opts replOptions) error {
	scanner := bufio.NewScanner(r)
	for {
		if opts.prompt {
			fmt.Fprintf(w, "[%d] -> ", in.Tick())
		}
		if !scanner.Scan() {
			if opts.prompt {
				fmt.Fprintln(w)
			}
			return scanner.Err()
		}
		line := scanner.Text()
		if opts.echo {
			fmt.Fprintf(w, "[%d] -> %s\n", in.Tick(), line)
		}

		reply := in.Handle(ctx, line)
		for _, l := range reply.Lines {
			fmt.Fprintln(w, wrap(l, opts.width))
		}
		if reply.Error != "" {
			fmt.Fprintln(w, wrap(reply.Error, opts.width))
		}
		if reply.Quit {
			return ctx.Err()
		}
	}
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
