// Package game wraps a wormtrack simulation as a playable core.Game: it maps
// discrete input to junction switches, steps the simulation at the platform
// tick rate and draws the track onto a core.Screen.
package game

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wormtrack/internal/config"
	"github.com/vovakirdan/wormtrack/internal/core"
	"github.com/vovakirdan/wormtrack/internal/levels"
	"github.com/vovakirdan/wormtrack/internal/sim"
	"github.com/vovakirdan/wormtrack/internal/telemetry"
)

// Game implements core.Game for one level.
type Game struct {
	level      levels.Level
	difficulty config.DifficultyConfig
	simCfg     config.SimConfig
	logger     *log.Logger
	sink       sim.ResultSink
	collector  *telemetry.Collector

	cfg    core.RuntimeConfig
	sim    *sim.Simulation
	detach func()
	err    error

	junctions []sim.NodeID // switchable nodes, hotkey order
	selected  int
	paused    bool
	record    *sim.OutcomeRecord
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger handed to the simulation.
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithResultSink receives the outcome record of every decided run.
func WithResultSink(sink sim.ResultSink) Option {
	return func(g *Game) {
		g.sink = sink
	}
}

// WithCollector attaches a metrics collector to every run.
func WithCollector(c *telemetry.Collector) Option {
	return func(g *Game) {
		g.collector = c
	}
}

// WithDifficulty scales the level before each run.
func WithDifficulty(d config.DifficultyConfig) Option {
	return func(g *Game) {
		g.difficulty = d
	}
}

// WithSimConfig applies simulation-wide overrides such as the time limit.
func WithSimConfig(c config.SimConfig) Option {
	return func(g *Game) {
		g.simCfg = c
	}
}

// New creates a game for level. Reset must be called before Step.
func New(level levels.Level, opts ...Option) *Game {
	g := &Game{
		level:      level,
		difficulty: config.DifficultyConfig{Preset: config.DifficultyFixed},
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ID returns the level id, used as the storage key.
func (g *Game) ID() string {
	return g.level.ID
}

// Title returns the level name.
func (g *Game) Title() string {
	return g.level.Name
}

// Reset builds a fresh simulation of the level with cfg.Seed.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	if g.detach != nil {
		g.detach()
		g.detach = nil
	}
	g.cfg = cfg
	g.err = nil
	g.sim = nil
	g.selected = 0
	g.paused = false
	g.record = nil

	def := config.ApplySim(config.ApplyDifficulty(g.level.Definition, g.difficulty), g.simCfg)
	s, err := sim.New(def,
		sim.WithSeed(cfg.Seed),
		sim.WithLogger(g.logger),
		sim.WithResultSink(g.sink),
	)
	if err != nil {
		g.err = err
		g.logger.Error("building level", "level", g.level.ID, "err", err)
		return
	}
	g.sim = s

	s.Bus().Subscribe(func(env sim.Envelope) {
		if ev, ok := env.Event.(sim.OutcomeDecided); ok {
			rec := ev.Record
			g.record = &rec
		}
	})
	g.detach = g.collector.Attach(s.Bus())

	g.junctions = g.junctions[:0]
	for _, id := range s.Routing().Nodes() {
		if s.Routing().Switchable(id) {
			g.junctions = append(g.junctions, id)
		}
	}
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionRestart) {
		g.restart()
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && g.running() {
		g.paused = !g.paused
	}
	if !g.running() || g.paused {
		return core.StepResult{State: g.State()}
	}

	g.handleSelection(in)
	if in.Has(core.ActionSwitch) && len(g.junctions) > 0 {
		g.sim.Switch(g.junctions[g.selected])
	}

	if err := g.sim.Tick(g.cfg.TickMs()); err != nil && g.err == nil {
		g.err = err
		g.logger.Error("simulation stopped", "level", g.level.ID, "err", err)
	}

	return core.StepResult{State: g.State()}
}

// restart replays the level. A decided run starts over as a fresh attempt;
// an undecided one is reset in place and counts against the score.
func (g *Game) restart() {
	if g.sim == nil {
		g.Reset(g.cfg)
		return
	}
	if g.sim.Done() {
		g.Reset(g.cfg)
		return
	}
	g.record = nil
	g.paused = false
	g.sim.Reset()
}

func (g *Game) handleSelection(in core.InputFrame) {
	n := len(g.junctions)
	if n == 0 {
		return
	}
	switch {
	case in.Has(core.ActionSelect):
		if in.Slot >= 1 && in.Slot <= n {
			g.selected = in.Slot - 1
		}
	case in.Has(core.ActionNext):
		g.selected = (g.selected + 1) % n
	case in.Has(core.ActionPrev):
		g.selected = (g.selected + n - 1) % n
	}
}

func (g *Game) running() bool {
	return g.sim != nil && !g.sim.Done()
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.sim == nil {
		msg := "level failed to load"
		if g.err != nil {
			msg = g.err.Error()
		}
		return core.GameState{GameOver: true, Message: msg}
	}

	st := core.GameState{Paused: g.paused}
	if g.record != nil {
		st.GameOver = true
		st.Won = g.record.Success
		st.Score = g.record.Score
		if g.record.Success {
			st.Tier = g.record.Tier
			st.Message = "level complete"
		} else {
			st.Message = lossMessage(g.record.Reason)
		}
		return st
	}
	st.Score = sim.CalculateScore(g.sim.Counters()).Total
	return st
}

func lossMessage(r sim.Reason) string {
	switch r {
	case sim.ReasonWrongGoal:
		return "a worm reached the wrong goal"
	case sim.ReasonHazardCollision:
		return "a worm ran into a hazard"
	case sim.ReasonDeadEnd:
		return "a worm hit a dead end"
	case sim.ReasonTimeout:
		return "out of time"
	default:
		return "run failed"
	}
}

// Selected returns the currently selected junction, if any.
func (g *Game) Selected() (sim.NodeID, bool) {
	if len(g.junctions) == 0 {
		return "", false
	}
	return g.junctions[g.selected], true
}

// Junctions returns the switchable nodes in hotkey order.
func (g *Game) Junctions() []sim.NodeID {
	result := make([]sim.NodeID, len(g.junctions))
	copy(result, g.junctions)
	return result
}

// Simulation exposes the running simulation, nil if the level failed to build.
func (g *Game) Simulation() *sim.Simulation {
	return g.sim
}

// Record returns the outcome record of the decided run.
func (g *Game) Record() (sim.OutcomeRecord, bool) {
	if g.record == nil {
		return sim.OutcomeRecord{}, false
	}
	return *g.record, true
}

// Err returns the error that stopped the game, if any.
func (g *Game) Err() error {
	return g.err
}

// Close detaches the game from its metrics collector.
func (g *Game) Close() {
	if g.detach != nil {
		g.detach()
		g.detach = nil
	}
}
