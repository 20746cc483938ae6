package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScoresCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scores [level]",
		Short: "Show recorded results",
		Long: `Without a level, show a summary for every level that has been played.
With a level, show its best runs.

Examples:
  wormtrack scores
  wormtrack scores first-fork
  wormtrack scores blockade --limit 25`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.runScoresSummary()
			}
			return a.runScores(args[0], limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of results to show")
	return cmd
}

func (a *app) runScoresSummary() error {
	lvls, err := a.loadLevels()
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.AllLevelStats()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Results")
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "  %-20s  %5s  %5s  %6s  %5s  %5s  %s\n", "Level", "Runs", "Wins", "Win%", "Best", "Tier", "Last played")
	fmt.Fprintf(a.out, "  %-20s  %5s  %5s  %6s  %5s  %5s  %s\n", "-----", "----", "----", "----", "----", "----", "-----------")
	for _, l := range lvls {
		s, ok := stats[l.ID]
		if !ok {
			fmt.Fprintf(a.out, "  %-20s  %5d  %5s  %6s  %5s  %5s  %s\n", l.Name, 0, "-", "-", "-", "-", "never")
			continue
		}
		fmt.Fprintf(a.out, "  %-20s  %5d  %5d  %5.0f%%  %5d  %5s  %s\n",
			l.Name, s.Runs, s.Wins, s.WinRate()*100, s.BestScore, stars(s.BestTier), s.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *app) runScores(levelID string, limit int) error {
	lvl, err := a.loadLevel(levelID)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.TopResults(lvl.ID, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Results - %s\n", lvl.Name)
	fmt.Fprintln(a.out)

	if len(results) == 0 {
		fmt.Fprintln(a.out, "No runs recorded yet.")
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "Play 'wormtrack play %s' to record the first one!\n", lvl.ID)
		return nil
	}

	fmt.Fprintf(a.out, "  %-4s  %-5s  %-4s  %-16s  %8s  %s\n", "Rank", "Score", "Tier", "Result", "Time", "Date")
	fmt.Fprintf(a.out, "  %-4s  %-5s  %-4s  %-16s  %8s  %s\n", "----", "-----", "----", "------", "----", "----")
	for i, e := range results {
		rec := e.Record
		outcome, tier := "complete", stars(rec.Tier)
		if !rec.Success {
			outcome, tier = string(rec.Reason), "-"
		}
		fmt.Fprintf(a.out, "  %-4d  %-5d  %-4s  %-16s  %7.1fs  %s\n",
			i+1, rec.Score, tier, outcome, rec.ElapsedMs/1000, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.LevelStats(lvl.ID)
	if err == nil {
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "Runs: %d  Wins: %d (%.0f%%)  Best: %d  Avg: %.1f\n",
			stats.Runs, stats.Wins, stats.WinRate()*100, stats.BestScore, stats.AvgScore)
	}
	return nil
}
