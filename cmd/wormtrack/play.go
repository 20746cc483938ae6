package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/wormtrack/internal/platform/tui"
)

func newPlayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play [level]",
		Short: "Play a level",
		Long: `Start playing the given level, or pick one from the level menu.

Controls:
  Tab/Right/L        - Select next junction
  Shift+Tab/Left/H   - Select previous junction
  1-9                - Select junction by number
  Space              - Flip the selected junction
  P                  - Pause
  R                  - Restart (counts as a reset while the run is live)
  B/Esc              - Back to the menu (when paused or finished)
  Ctrl+S             - Save a screenshot to ~/.wormtrack/screenshots
  Q/Ctrl+C           - Quit

Difficulty options:
  easy   - Slower worms, longer hazard cycles and warnings
  normal - Levels as designed
  hard   - Faster worms, shorter hazard cycles and warnings
  fixed  - Levels exactly as authored

Examples:
  wormtrack play
  wormtrack play first-fork
  wormtrack play blockade --difficulty hard
  wormtrack play rush-hour --fps 30 --seed 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runPlay(args)
		},
	}
}

func (a *app) runPlay(args []string) error {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	cfg := a.runtimeConfig(width, height)

	store := a.openStoreOrWarn()
	if store != nil {
		defer store.Close()
	}

	// Logging to the terminal would tear the alternate screen
	if a.logFile == nil {
		a.logger.SetOutput(io.Discard)
	}
	newGame := a.gameFactory(store, nil)

	if len(args) == 0 {
		lvls, err := a.loadLevels()
		if err != nil {
			return err
		}
		return tui.RunSession(tui.SessionDeps{Levels: lvls, Store: store, NewGame: newGame}, cfg)
	}

	lvl, err := a.loadLevel(args[0])
	if err != nil {
		return err
	}
	_, err = tui.Run(newGame(lvl), cfg)
	return err
}
