package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/hexsim/internal/app"
	"github.com/jwebster45206/hexsim/internal/play"
)

// demoScript walks the sample town: a look around, a trip to the temple
// and back, then a fight with the guard.
var demoScript = []string{
	"look",
	"inventory",
	"analyze sword_1",
	"move temple",
	"talk priest Any news from the docks?",
	"move market_square",
	"grab bread_1",
	"equip sword_1 main_hand",
	"attack guard_1",
	"attack guard_1",
	"stats",
	"mem",
}

// NewDemoCmd creates the demo subcommand.
func NewDemoCmd() *cobra.Command {
	var scriptPath string
	var width int
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted session and print the narration",
		Long: `Run a fixed list of commands against the configured world, echoing
each one with the tick it was issued at. Pass --script to read the
commands from a file instead, one per line. Set --seed for a repeatable
run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var script io.Reader = strings.NewReader(strings.Join(demoScript, "\n"))
			if scriptPath != "" {
				f, err := os.Open(scriptPath)
				if err != nil {
					return err
				}
				defer f.Close()
				script = f
			}

			a, err := app.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			return runREPL(cmd.Context(), play.NewInterpreter(a.Session), script, cmd.OutOrStdout(), replOptions{width: width, echo: true})
		},
	}
	cmd.Flags().StringVar(&scriptPath, "script", "", "file of commands, one per line")
	cmd.Flags().IntVar(&width, "width", 80, "wrap narration at this many columns (0 disables)")
	return cmd
}
