package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wormtrack/internal/config"
	"github.com/vovakirdan/wormtrack/internal/core"
	"github.com/vovakirdan/wormtrack/internal/game"
	"github.com/vovakirdan/wormtrack/internal/levels"
	"github.com/vovakirdan/wormtrack/internal/platform/tui"
	"github.com/vovakirdan/wormtrack/internal/storage"
	"github.com/vovakirdan/wormtrack/internal/telemetry"
)

// app carries what every command shares once flags are parsed.
type app struct {
	cfg    config.Config
	logger *log.Logger
	out    io.Writer

	logFile *os.File

	flagConfig     string
	flagLogLevel   string
	flagLogFile    string
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagLevelsDir  string
	flagDifficulty string
}

func (a *app) bindFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&a.flagConfig, "config", "", "Path to config YAML")
	f.StringVar(&a.flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&a.flagLogFile, "log-file", "", "Append logs to this file instead of stderr")
	f.IntVar(&a.flagFPS, "fps", 60, "Tick rate (simulation steps per second)")
	f.Int64Var(&a.flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	f.StringVar(&a.flagDBPath, "db", "", "Path to results database")
	f.StringVar(&a.flagLevelsDir, "levels", "", "Directory of level files (default: built-in pack)")
	f.StringVar(&a.flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

// setup loads the config, applies flag overrides and builds the logger.
// Flags only win when set explicitly.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.Sim.TickRate = a.flagFPS
	}
	if flags.Changed("seed") {
		cfg.Sim.Seed = a.flagSeed
	}
	if flags.Changed("db") {
		cfg.Storage.DBPath = a.flagDBPath
	}
	if flags.Changed("levels") {
		cfg.Levels.Dir = a.flagLevelsDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flagLogLevel
	}
	if flags.Changed("difficulty") {
		preset, ok := config.ParsePreset(a.flagDifficulty)
		if !ok {
			return fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", a.flagDifficulty)
		}
		cfg.Difficulty.Preset = preset
	}
	if cfg.Sim.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", cfg.Sim.TickRate)
	}
	a.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	var logOut io.Writer = os.Stderr
	if a.flagLogFile != "" {
		f, err := os.OpenFile(a.flagLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		a.logFile = f
		logOut = f
	}
	a.logger = log.NewWithOptions(logOut, log.Options{
		ReportTimestamp: true,
		Prefix:          "wormtrack",
		Level:           level,
	})

	a.out = cmd.OutOrStdout()
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// loader returns the configured level source.
func (a *app) loader() (*levels.Loader, error) {
	if a.cfg.Levels.Dir == "" {
		return levels.Builtin(), nil
	}
	dir, err := config.ExpandHome(a.cfg.Levels.Dir)
	if err != nil {
		return nil, err
	}
	return levels.FromDir(dir), nil
}

func (a *app) loadLevels() ([]levels.Level, error) {
	loader, err := a.loader()
	if err != nil {
		return nil, err
	}
	lvls, err := loader.LoadAll()
	if err != nil {
		return nil, err
	}
	if len(lvls) == 0 {
		return nil, fmt.Errorf("no valid levels found (run 'wormtrack levels --check')")
	}
	return lvls, nil
}

func (a *app) loadLevel(id string) (levels.Level, error) {
	loader, err := a.loader()
	if err != nil {
		return levels.Level{}, err
	}
	lvl, err := loader.LoadByID(id)
	if err != nil {
		return levels.Level{}, fmt.Errorf("%w (run 'wormtrack levels' to see available levels)", err)
	}
	return lvl, nil
}

// openStore opens the results database.
func (a *app) openStore() (*storage.Store, error) {
	return storage.Open(a.cfg.Storage.DBPath)
}

// openStoreOrWarn opens the results database, continuing without it on failure.
func (a *app) openStoreOrWarn() *storage.Store {
	store, err := a.openStore()
	if err != nil {
		a.logger.Warn("could not open results database, results will not be saved", "err", err)
		return nil
	}
	return store
}

// gameFactory builds games that persist outcomes to store and report to
// collector. Both may be nil.
func (a *app) gameFactory(store *storage.Store, collector *telemetry.Collector) tui.GameFactory {
	return func(lvl levels.Level) core.Game {
		opts := []game.Option{
			game.WithLogger(a.logger.With("level", lvl.ID)),
			game.WithDifficulty(a.cfg.Difficulty),
			game.WithSimConfig(a.cfg.Sim),
			game.WithCollector(collector),
		}
		if store != nil {
			opts = append(opts, game.WithResultSink(store.Sink(a.logger)))
		}
		return game.New(lvl, opts...)
	}
}

// runtimeConfig returns the screen and timing parameters for a local terminal.
func (a *app) runtimeConfig(width, height int) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: a.cfg.Sim.TickRate,
		Seed:     a.cfg.Sim.Seed,
	}
}
