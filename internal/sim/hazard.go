package sim

import (
	"math"
	"math/rand"
	"strings"

	"github.com/charmbracelet/log"
)

// HazardKind selects the state machine a hazard runs.
type HazardKind uint8

const (
	HazardPeriodicReroute HazardKind = iota
	HazardIntermittentBlocker
	HazardOneShotSpawn
)

func (k HazardKind) String() string {
	switch k {
	case HazardPeriodicReroute:
		return "periodic-reroute"
	case HazardIntermittentBlocker:
		return "intermittent-blocker"
	case HazardOneShotSpawn:
		return "one-shot-spawn"
	default:
		return "unknown"
	}
}

// ParseHazardKind converts a level-file string to a HazardKind.
func ParseHazardKind(s string) (HazardKind, bool) {
	switch strings.ToLower(s) {
	case "periodic-reroute", "reroute":
		return HazardPeriodicReroute, true
	case "intermittent-blocker", "blocker":
		return HazardIntermittentBlocker, true
	case "one-shot-spawn", "spawn", "obstacle":
		return HazardOneShotSpawn, true
	default:
		return HazardPeriodicReroute, false
	}
}

// HazardSpec is the level description of one hazard. All durations are in
// milliseconds.
type HazardSpec struct {
	ID   HazardID
	Kind HazardKind

	// Target is the node acted on first. When empty the first target is
	// drawn from Pool.
	Target NodeID
	Pool   []NodeID

	IntervalMs     float64 // reroute period, or blocker hidden duration
	ActiveMs       float64 // blocker active duration
	InitialDelayMs float64 // first countdown; IntervalMs when zero
	WarningLeadMs  float64 // zero disables warnings
	MaxAppearances int     // zero means unlimited

	// Clearance is the minimum distance between a spawned obstacle and any
	// existing obstacle or active blocker.
	Clearance float64
}

// HazardPhase is the runtime phase of a hazard.
type HazardPhase uint8

const (
	PhaseHidden HazardPhase = iota
	PhaseActive
	PhaseSleeping
	PhaseSpent
)

func (p HazardPhase) String() string {
	switch p {
	case PhaseHidden:
		return "hidden"
	case PhaseActive:
		return "active"
	case PhaseSleeping:
		return "sleeping"
	case PhaseSpent:
		return "spent"
	default:
		return "unknown"
	}
}

// Hazard is the runtime record of one hazard.
type Hazard struct {
	Spec        HazardSpec
	Phase       HazardPhase
	Remaining   float64 // countdown to the next transition, never negative
	Target      NodeID
	Next        NodeID // pre-selected target of the next reroute cycle
	Appearances int
	Warned      bool
}

// Obstacle is a permanent blocking object placed by a one-shot hazard.
type Obstacle struct {
	Hazard HazardID
	Node   NodeID
	Pos    Point
}

// Scheduler advances every hazard's countdown each tick. Hazards live in an
// arena slice and are updated by index in declaration order.
type Scheduler struct {
	graph     *Graph
	routing   *Routing
	bus       *Bus
	rng       *rand.Rand
	logger    *log.Logger
	specs     []HazardSpec
	hazards   []Hazard
	obstacles []Obstacle
}

// NewScheduler validates hazard specs against the graph and routing table and
// arms every hazard.
func NewScheduler(g *Graph, r *Routing, bus *Bus, rng *rand.Rand, logger *log.Logger, specs []HazardSpec) (*Scheduler, error) {
	seen := make(map[HazardID]bool, len(specs))
	for _, spec := range specs {
		if seen[spec.ID] {
			return nil, configErrorf(CodeDuplicateID, "hazard %q declared twice", spec.ID)
		}
		seen[spec.ID] = true
		if err := validateHazard(g, r, spec); err != nil {
			return nil, err
		}
	}

	s := &Scheduler{
		graph:   g,
		routing: r,
		bus:     bus,
		rng:     rng,
		logger:  logger,
		specs:   append([]HazardSpec(nil), specs...),
	}
	s.arm()
	return s, nil
}

func validateHazard(g *Graph, r *Routing, spec HazardSpec) error {
	targets := append([]NodeID(nil), spec.Pool...)
	if spec.Target != "" {
		targets = append(targets, spec.Target)
	}
	for _, id := range targets {
		if _, err := g.Node(id); err != nil {
			return configErrorf(CodeMissingRef, "hazard %q: unknown node %q", spec.ID, id)
		}
	}

	switch spec.Kind {
	case HazardPeriodicReroute:
		if len(targets) == 0 {
			return configErrorf(CodeBadHazard, "hazard %q: reroute needs a target or pool", spec.ID)
		}
		for _, id := range targets {
			if !r.Has(id) {
				return configErrorf(CodeBadHazard, "hazard %q: %q is not a branch node", spec.ID, id)
			}
		}
		if spec.IntervalMs <= 0 {
			return configErrorf(CodeBadHazard, "hazard %q: interval must be positive", spec.ID)
		}
	case HazardIntermittentBlocker:
		if len(targets) == 0 {
			return configErrorf(CodeBadHazard, "hazard %q: blocker needs a target or pool", spec.ID)
		}
		if spec.IntervalMs <= 0 || spec.ActiveMs <= 0 {
			return configErrorf(CodeBadHazard, "hazard %q: blocker durations must be positive", spec.ID)
		}
	case HazardOneShotSpawn:
		if spec.InitialDelayMs <= 0 && spec.IntervalMs <= 0 {
			return configErrorf(CodeBadHazard, "hazard %q: spawn needs a delay", spec.ID)
		}
	default:
		return configErrorf(CodeBadHazard, "hazard %q: unknown kind %d", spec.ID, spec.Kind)
	}

	if spec.WarningLeadMs < 0 || spec.MaxAppearances < 0 || spec.Clearance < 0 {
		return configErrorf(CodeBadHazard, "hazard %q: negative timing or limit", spec.ID)
	}
	return nil
}

// arm (re)creates the runtime records from the specs.
func (s *Scheduler) arm() {
	s.hazards = make([]Hazard, len(s.specs))
	s.obstacles = s.obstacles[:0]
	for i, spec := range s.specs {
		h := Hazard{Spec: spec, Phase: PhaseHidden, Remaining: spec.IntervalMs}
		if spec.InitialDelayMs > 0 {
			h.Remaining = spec.InitialDelayMs
		}
		h.Target = spec.Target
		if h.Target == "" {
			h.Target = s.pick(spec.Pool)
		}
		if spec.Kind == HazardPeriodicReroute {
			h.Next = h.Target
		}
		s.hazards[i] = h
	}
}

// pick draws a node uniformly from pool. Returns "" for an empty pool.
func (s *Scheduler) pick(pool []NodeID) NodeID {
	if len(pool) == 0 {
		return ""
	}
	return pool[s.rng.Intn(len(pool))]
}

// Advance moves every hazard forward by dtMs. Each hazard makes at most one
// transition per call; overshoot past zero is discarded and the next phase
// is armed with its nominal duration.
func (s *Scheduler) Advance(dtMs float64) {
	for i := range s.hazards {
		h := &s.hazards[i]
		if h.Phase == PhaseSleeping || h.Phase == PhaseSpent {
			continue
		}

		h.Remaining = math.Max(0, h.Remaining-dtMs)

		// A tick that jumps over the whole warning window still warns,
		// right before the transition.
		if !h.Warned && h.Spec.WarningLeadMs > 0 && h.Remaining <= h.Spec.WarningLeadMs && s.warnsNow(h) {
			h.Warned = true
			s.bus.Publish(HazardWarning{
				Hazard: h.Spec.ID,
				Kind:   h.Spec.Kind,
				Target: s.upcomingTarget(h),
				InMs:   h.Remaining,
			})
		}

		if h.Remaining <= 0 {
			s.transition(h)
		}
	}
}

// warnsNow reports whether the hazard's next transition deserves a warning.
// Blockers only warn ahead of becoming active.
func (s *Scheduler) warnsNow(h *Hazard) bool {
	return h.Spec.Kind != HazardIntermittentBlocker || h.Phase == PhaseHidden
}

func (s *Scheduler) upcomingTarget(h *Hazard) NodeID {
	if h.Spec.Kind == HazardPeriodicReroute {
		return h.Next
	}
	return h.Target
}

func (s *Scheduler) transition(h *Hazard) {
	h.Warned = false

	switch h.Spec.Kind {
	case HazardPeriodicReroute:
		h.Target = h.Next
		s.routing.switchBy(h.Target, CauseHazard, h.Spec.ID)
		h.Appearances++
		s.logger.Debug("hazard rerouted", "hazard", h.Spec.ID, "node", h.Target, "count", h.Appearances)
		if h.Spec.MaxAppearances > 0 && h.Appearances >= h.Spec.MaxAppearances {
			h.Phase = PhaseSpent
			h.Remaining = math.Inf(1)
			return
		}
		h.Remaining = h.Spec.IntervalMs
		if len(h.Spec.Pool) > 0 {
			h.Next = s.pick(h.Spec.Pool)
		}

	case HazardIntermittentBlocker:
		if h.Phase == PhaseHidden {
			h.Phase = PhaseActive
			h.Appearances++
			h.Remaining = h.Spec.ActiveMs
			s.logger.Debug("blocker active", "hazard", h.Spec.ID, "node", h.Target, "appearance", h.Appearances)
			s.bus.Publish(HazardActivated{Hazard: h.Spec.ID, Target: h.Target, Appearance: h.Appearances})
			return
		}
		target := h.Target
		if h.Spec.MaxAppearances > 0 && h.Appearances >= h.Spec.MaxAppearances {
			h.Phase = PhaseSleeping
			h.Remaining = math.Inf(1)
			s.bus.Publish(HazardDeactivated{Hazard: h.Spec.ID, Target: target, Sleeping: true})
			return
		}
		h.Phase = PhaseHidden
		h.Remaining = h.Spec.IntervalMs
		if len(h.Spec.Pool) > 0 {
			h.Target = s.pick(h.Spec.Pool)
		}
		s.bus.Publish(HazardDeactivated{Hazard: h.Spec.ID, Target: target})

	case HazardOneShotSpawn:
		h.Phase = PhaseSpent
		h.Remaining = math.Inf(1)
		node, ok := s.placeObstacle(h.Spec)
		if !ok {
			s.logger.Warn("no valid obstacle position", "hazard", h.Spec.ID)
			return
		}
		h.Target = node.ID
		h.Appearances = 1
		s.obstacles = append(s.obstacles, Obstacle{Hazard: h.Spec.ID, Node: node.ID, Pos: node.Pos})
		s.bus.Publish(ObstacleSpawned{Hazard: h.Spec.ID, Node: node.ID, Pos: node.Pos})
	}
}

// placeObstacle picks a random node from the spawn pool, or from every
// plain, merge and junction node when the pool is empty, that keeps the
// configured clearance from existing obstacles and active blockers.
func (s *Scheduler) placeObstacle(spec HazardSpec) (Node, bool) {
	var candidates []Node
	if len(spec.Pool) > 0 {
		for _, id := range spec.Pool {
			if n, err := s.graph.Node(id); err == nil {
				candidates = append(candidates, n)
			}
		}
	} else {
		for _, n := range s.graph.Nodes() {
			switch n.Kind {
			case NodePlain, NodeMerge, NodeJunction:
				candidates = append(candidates, n)
			}
		}
	}

	valid := candidates[:0]
	for _, n := range candidates {
		if s.clear(n, spec.Clearance) {
			valid = append(valid, n)
		}
	}
	if len(valid) == 0 {
		return Node{}, false
	}
	return valid[s.rng.Intn(len(valid))], true
}

func (s *Scheduler) clear(n Node, clearance float64) bool {
	for _, o := range s.obstacles {
		if o.Node == n.ID || o.Pos.Dist(n.Pos) < clearance {
			return false
		}
	}
	for i := range s.hazards {
		h := &s.hazards[i]
		if h.Spec.Kind != HazardIntermittentBlocker || h.Phase != PhaseActive {
			continue
		}
		if h.Target == n.ID {
			return false
		}
		if t, err := s.graph.Node(h.Target); err == nil && t.Pos.Dist(n.Pos) < clearance {
			return false
		}
	}
	return true
}

// BlockingAt reports the hazard blocking a node: an active blocker targeting
// it or an obstacle placed on it.
func (s *Scheduler) BlockingAt(node NodeID) (HazardID, bool) {
	for i := range s.hazards {
		h := &s.hazards[i]
		if h.Spec.Kind == HazardIntermittentBlocker && h.Phase == PhaseActive && h.Target == node {
			return h.Spec.ID, true
		}
	}
	for _, o := range s.obstacles {
		if o.Node == node {
			return o.Hazard, true
		}
	}
	return "", false
}

// Hazards returns a copy of every hazard record in declaration order.
func (s *Scheduler) Hazards() []Hazard {
	result := make([]Hazard, len(s.hazards))
	copy(result, s.hazards)
	return result
}

// Obstacles returns a copy of every placed obstacle.
func (s *Scheduler) Obstacles() []Obstacle {
	result := make([]Obstacle, len(s.obstacles))
	copy(result, s.obstacles)
	return result
}
