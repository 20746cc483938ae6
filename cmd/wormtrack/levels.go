package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLevelsCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List all available levels",
		Long: `Shows the levels of the built-in pack, or of --levels <dir>.

With --check every level file is parsed and validated, and each
invalid file is reported. The command fails if any file is invalid.

Examples:
  wormtrack levels
  wormtrack levels --levels ./my-levels --check`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if check {
				return a.runLevelsCheck()
			}
			return a.runLevels()
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Validate every level file and report problems")
	return cmd
}

func (a *app) runLevels() error {
	lvls, err := a.loadLevels()
	if err != nil {
		return err
	}

	best := make(map[string]int)
	if store := a.openStoreOrWarn(); store != nil {
		if stats, err := store.AllLevelStats(); err == nil {
			for id, s := range stats {
				best[id] = s.BestTier
			}
		}
		store.Close()
	}

	fmt.Fprintln(a.out, "Available levels:")
	fmt.Fprintln(a.out)

	maxIDLen := 2 // "ID" header
	for _, l := range lvls {
		maxIDLen = max(maxIDLen, len(l.ID))
	}

	fmt.Fprintf(a.out, "  %-*s  %-20s  %5s  %7s  %-5s\n", maxIDLen, "ID", "Name", "Worms", "Hazards", "Best")
	fmt.Fprintf(a.out, "  %-*s  %-20s  %5s  %7s  %-5s\n", maxIDLen, "--", "----", "-----", "-------", "----")
	for _, l := range lvls {
		fmt.Fprintf(a.out, "  %-*s  %-20s  %5d  %7d  %-5s\n",
			maxIDLen, l.ID, l.Name, len(l.Definition.Agents), len(l.Definition.Hazards), stars(best[l.ID]))
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Run 'wormtrack play <id>' to play a level.")
	return nil
}

func (a *app) runLevelsCheck() error {
	loader, err := a.loader()
	if err != nil {
		return err
	}
	problems, err := loader.Check()
	if err != nil {
		return err
	}
	ids, err := loader.ListIDs()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d valid level(s)\n", len(ids))
	if len(problems) == 0 {
		return nil
	}
	for _, p := range problems {
		fmt.Fprintf(a.out, "  invalid: %v\n", p)
	}
	return fmt.Errorf("%d invalid level file(s)", len(problems))
}

// stars renders a tier as filled stars, "-" for no win.
func stars(tier int) string {
	if tier <= 0 {
		return "-"
	}
	return strings.Repeat("*", min(tier, 3))
}
