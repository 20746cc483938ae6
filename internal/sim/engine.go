package sim

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
)

// Definition is a validated level description.
type Definition struct {
	ID       string
	Name     string
	Nodes    []Node
	Edges    []Edge
	Branches []Branch
	Hazards  []HazardSpec
	Agents   []AgentSpec

	// RequiredArrivals is the number of worms that must arrive to win.
	// Zero or less means every worm.
	RequiredArrivals int

	// TimeLimitMs ends an undecided run as a loss when reached. Zero
	// disables the limit.
	TimeLimitMs float64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed sets the seed of the hazard RNG.
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		s.seed = seed
	}
}

// WithLogger sets the logger used for transitions and failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Simulation) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResultSink sets the receiver of the outcome record.
func WithResultSink(sink ResultSink) Option {
	return func(s *Simulation) {
		s.sink = sink
	}
}

// WithBus makes the simulation publish on an existing bus, so subscribers
// can attach before construction.
func WithBus(bus *Bus) Option {
	return func(s *Simulation) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// Simulation ties the components together and runs them tick by tick:
// hazards first, then worms in creation order, then the outcome checks.
type Simulation struct {
	def    Definition
	seed   int64
	logger *log.Logger
	sink   ResultSink
	bus    *Bus

	graph     *Graph
	routing   *Routing
	scheduler *Scheduler
	agents    *Agents
	outcome   *Outcome
	scorer    *Scorer
	rng       *rand.Rand

	required int
	tick     uint64
	nowMs    float64
	resets   int
	fatal    error
}

// New builds a simulation from a definition. Integrity failures are returned
// as *ConfigError.
func New(def Definition, opts ...Option) (*Simulation, error) {
	s := &Simulation{
		def:    def,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = NewBus()
	}

	g, err := NewGraph(def.Nodes, def.Edges, def.Branches)
	if err != nil {
		return nil, err
	}
	s.graph = g

	s.routing, err = NewRouting(g, def.Branches, s.bus)
	if err != nil {
		return nil, err
	}

	s.rng = rand.New(rand.NewSource(s.seed))
	s.scheduler, err = NewScheduler(g, s.routing, s.bus, s.rng, s.logger, def.Hazards)
	if err != nil {
		return nil, err
	}

	s.agents, err = NewAgents(g, s.routing, s.scheduler, s.bus, def.Agents)
	if err != nil {
		return nil, err
	}

	s.required = def.RequiredArrivals
	if s.required <= 0 {
		s.required = len(def.Agents)
	}
	if s.required > len(def.Agents) {
		return nil, configErrorf(CodeRequiredCount, "level requires %d arrivals but has %d worms", s.required, len(def.Agents))
	}

	s.scorer = NewScorer(s.bus)
	s.outcome = NewOutcome(def.ID, s.seed, s.required, s.scorer, s.bus, s.sink)
	return s, nil
}

// Tick advances the simulation by dtMs. It does nothing once the run is
// decided. A *ConfigError is returned when a worm hits a dead end; the run
// is then over.
func (s *Simulation) Tick(dtMs float64) error {
	if s.fatal != nil {
		return s.fatal
	}
	if s.outcome.Decided() || dtMs <= 0 {
		return nil
	}

	s.tick++
	s.nowMs += dtMs
	s.bus.setClock(s.tick, s.nowMs)

	s.scheduler.Advance(dtMs)

	if err := s.agents.step(s.nowMs, dtMs, s.outcome); err != nil {
		s.fatal = err
		s.logger.Error("level integrity failure", "level", s.def.ID, "err", err)
		return err
	}

	if !s.outcome.Decided() && s.def.TimeLimitMs > 0 && s.nowMs >= s.def.TimeLimitMs {
		s.outcome.ReportFailure(ReasonTimeout, "", "", s.nowMs)
	}
	return nil
}

// Switch cycles the routing of a branch node on behalf of the player. It
// reports whether the routing changed.
func (s *Simulation) Switch(node NodeID) bool {
	if s.outcome.Decided() || s.fatal != nil {
		return false
	}
	s.bus.setClock(s.tick, s.nowMs)
	return s.routing.Switch(node, CausePlayer)
}

// Reset restarts the run from the beginning with the same seed. Telemetry
// counters carry over and the resets counter is incremented.
func (s *Simulation) Reset() {
	s.resets++
	s.tick = 0
	s.nowMs = 0
	s.fatal = nil
	s.bus.setClock(0, 0)

	s.rng.Seed(s.seed)
	s.routing.reset()
	s.scheduler.arm()
	s.agents.reset()
	s.outcome = NewOutcome(s.def.ID, s.seed, s.required, s.scorer, s.bus, s.sink)

	s.logger.Debug("level reset", "level", s.def.ID, "resets", s.resets)
	s.bus.Publish(LevelReset{Resets: s.resets})
}

// Done reports whether the run has ended.
func (s *Simulation) Done() bool {
	return s.fatal != nil || s.outcome.Decided()
}

// Outcome returns the decision of the run and whether one has been made.
func (s *Simulation) Outcome() (Result, bool) {
	return s.outcome.Result()
}

// Err returns the fatal integrity error that ended the run, if any.
func (s *Simulation) Err() error {
	return s.fatal
}

// Bus returns the event bus the simulation publishes on.
func (s *Simulation) Bus() *Bus { return s.bus }

// Graph returns the static track graph.
func (s *Simulation) Graph() *Graph { return s.graph }

// Routing returns the routing table.
func (s *Simulation) Routing() *Routing { return s.routing }

// Definition returns the level the simulation was built from.
func (s *Simulation) Definition() Definition { return s.def }

// NowMs returns the simulation time.
func (s *Simulation) NowMs() float64 { return s.nowMs }

// TickCount returns the number of ticks since the last reset.
func (s *Simulation) TickCount() uint64 { return s.tick }

// Seed returns the hazard RNG seed.
func (s *Simulation) Seed() int64 { return s.seed }

// Required returns the number of arrivals needed to win.
func (s *Simulation) Required() int { return s.required }

// Arrived returns the number of worms that reached a matching goal.
func (s *Simulation) Arrived() int { return s.outcome.Arrived() }

// Counters returns the telemetry counters.
func (s *Simulation) Counters() Counters { return s.scorer.Counters() }

// Agents returns a copy of every worm record.
func (s *Simulation) Agents() []Agent { return s.agents.All() }

// Agent returns a copy of one worm record.
func (s *Simulation) Agent(id AgentID) (Agent, error) { return s.agents.Agent(id) }

// AgentPosition returns the level-space position of a worm.
func (s *Simulation) AgentPosition(id AgentID) (Point, error) {
	return s.agents.Position(id)
}

// Hazards returns a copy of every hazard record.
func (s *Simulation) Hazards() []Hazard { return s.scheduler.Hazards() }

// Obstacles returns every placed obstacle.
func (s *Simulation) Obstacles() []Obstacle { return s.scheduler.Obstacles() }

// Snapshot hashes the mutable state: clock, routing, worms and hazard
// timers. Two runs with equal seeds and inputs produce equal snapshots.
func (s *Simulation) Snapshot() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	putU := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putF := func(v float64) {
		putU(math.Float64bits(v))
	}
	putS := func(v string) {
		h.Write([]byte(v))
		h.Write([]byte{0})
	}

	putU(s.tick)
	putF(s.nowMs)
	for _, id := range s.routing.order {
		putS(string(id))
		putU(uint64(s.routing.ActiveIndex(id)))
	}
	for _, ag := range s.agents.agents {
		putS(string(ag.Spec.ID))
		putU(uint64(ag.State))
		putS(string(ag.Edge))
		putF(ag.Distance)
	}
	for _, hz := range s.scheduler.hazards {
		putS(string(hz.Spec.ID))
		putU(uint64(hz.Phase))
		putF(hz.Remaining)
		putS(string(hz.Target))
		putS(string(hz.Next))
		putU(uint64(hz.Appearances))
	}
	for _, o := range s.scheduler.obstacles {
		putS(string(o.Node))
	}
	r, decided := s.outcome.Result()
	if decided {
		putS(string(r.Reason))
		if r.Success {
			putU(1)
		}
	}
	return h.Sum64()
}

// ActionKind is a scripted player action.
type ActionKind string

const (
	ActionSwitch ActionKind = "switch"
	ActionReset  ActionKind = "reset"
)

// PlayerAction is one timed entry of a replay script.
type PlayerAction struct {
	AtMs float64    `yaml:"at_ms"`
	Kind ActionKind `yaml:"kind"`
	Node NodeID     `yaml:"node,omitempty"`
}

// ErrNotDecided is returned by Run when maxMs elapses first.
var ErrNotDecided = errors.New("sim: run not decided")

// Run drives the simulation with fixed dtMs ticks, applying each scripted
// action before the first tick that starts at or after its time. Action
// times count from the call to Run and keep counting across resets, and
// must be sorted. Run stops when the outcome is decided or maxMs has
// elapsed.
func (s *Simulation) Run(script []PlayerAction, dtMs, maxMs float64) (Result, error) {
	if dtMs <= 0 {
		return Result{}, errors.New("sim: tick delta must be positive")
	}
	next := 0
	elapsed := 0.0
	for !s.Done() && elapsed < maxMs {
		for next < len(script) && script[next].AtMs <= elapsed {
			switch act := script[next]; act.Kind {
			case ActionSwitch:
				s.Switch(act.Node)
			case ActionReset:
				s.Reset()
			}
			next++
		}
		if err := s.Tick(dtMs); err != nil {
			return Result{}, err
		}
		elapsed += dtMs
	}

	r, decided := s.outcome.Result()
	if !decided {
		return Result{}, ErrNotDecided
	}
	return r, nil
}
