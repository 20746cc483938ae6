// wormtrack is a terminal worm-routing puzzle: flip junctions so every worm
// reaches the goal of its color while hazards reroute and block the track.
//
// Usage:
//
//	wormtrack levels [--check]          - List levels, or validate level files
//	wormtrack play [level]              - Play a level, or pick one interactively
//	wormtrack replay <level> --script f - Run a scripted replay headlessly
//	wormtrack scores [level]            - Show recorded results
//	wormtrack serve                     - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>        - Config file (default search: ~/.wormtrack, ./configs, embedded)
//	--log-level <level>    - debug, info, warn, error
//	--fps <rate>           - Simulation tick rate
//	--seed <value>         - RNG seed for reproducible hazards
//	--db <path>            - Results database path
//	--levels <dir>         - Load levels from a directory instead of the built-in pack
//	--difficulty <preset>  - easy, normal, hard, fixed
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "wormtrack",
		Short: "Wormtrack - route worms to their goals in your terminal",
		Long: `Wormtrack is a terminal puzzle about worms crawling along a track.
Flip junctions so every worm reaches the goal of its color, while
hazards reroute junctions and block nodes on a timer.

Available commands:
  levels   - Show all available levels
  play     - Play a level (or pick one from a menu)
  replay   - Run a scripted replay and print the outcome
  scores   - View recorded results
  serve    - Start SSH server for remote play

Examples:
  wormtrack levels
  wormtrack play first-fork
  wormtrack play --difficulty hard
  wormtrack replay first-fork --script ./first-fork.yaml
  wormtrack serve --ssh :2222 --metrics :9090`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}

	a.bindFlags(rootCmd)

	rootCmd.AddCommand(newLevelsCmd(a))
	rootCmd.AddCommand(newPlayCmd(a))
	rootCmd.AddCommand(newReplayCmd(a))
	rootCmd.AddCommand(newScoresCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}
