package sim

// Event is the closed set of things the simulation reports. Only types in
// this package implement it.
type Event interface {
	simEvent()
}

// Cause attributes a routing change.
type Cause uint8

const (
	CausePlayer Cause = iota
	CauseHazard
)

func (c Cause) String() string {
	if c == CauseHazard {
		return "hazard"
	}
	return "player"
}

// RoutingChanged is published when a branch node advances its active edge.
type RoutingChanged struct {
	Node   NodeID
	Prev   int
	Next   int
	Cause  Cause
	Hazard HazardID // set when Cause is CauseHazard
}

func (RoutingChanged) simEvent() {}

// HazardWarning is published once per cycle, ahead of a hazard acting.
type HazardWarning struct {
	Hazard HazardID
	Kind   HazardKind
	Target NodeID
	InMs   float64 // time left until the hazard acts
}

func (HazardWarning) simEvent() {}

// HazardActivated is published when a blocker enters its active phase.
type HazardActivated struct {
	Hazard     HazardID
	Target     NodeID
	Appearance int
}

func (HazardActivated) simEvent() {}

// HazardDeactivated is published when a blocker leaves its active phase.
// Sleeping is set when the blocker has used up its appearances.
type HazardDeactivated struct {
	Hazard   HazardID
	Target   NodeID
	Sleeping bool
}

func (HazardDeactivated) simEvent() {}

// ObstacleSpawned is published when a one-shot hazard places its obstacle.
type ObstacleSpawned struct {
	Hazard HazardID
	Node   NodeID
	Pos    Point
}

func (ObstacleSpawned) simEvent() {}

// AgentStateChanged is published on every worm lifecycle transition.
type AgentStateChanged struct {
	Agent AgentID
	From  AgentState
	To    AgentState
	Node  NodeID // node where the transition happened, empty on spawn
	Edge  EdgeID // edge the worm is on after the transition
}

func (AgentStateChanged) simEvent() {}

// MistakeMade is published when a worm jams on a width-incompatible edge.
type MistakeMade struct {
	Agent AgentID
	Node  NodeID
	Edge  EdgeID
}

func (MistakeMade) simEvent() {}

// LevelReset is published when a run restarts.
type LevelReset struct {
	Resets int
}

func (LevelReset) simEvent() {}

// OutcomeDecided is published exactly once per run with the final record.
type OutcomeDecided struct {
	Record OutcomeRecord
}

func (OutcomeDecided) simEvent() {}

// Envelope stamps an event with the simulation time it was published at.
type Envelope struct {
	Tick  uint64
	AtMs  float64
	Event Event
}

// Handler receives published events.
type Handler func(Envelope)

type subscription struct {
	id uint64
	h  Handler
}

// Bus is a synchronous publish/subscribe channel. Handlers run in
// subscription order on the publishing goroutine.
type Bus struct {
	subs   []subscription
	nextID uint64
	tick   uint64
	nowMs  float64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, h: h})
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				// Copy so a Publish in progress keeps iterating its own slice.
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of subscribed handlers.
func (b *Bus) Len() int {
	return len(b.subs)
}

// Publish stamps an event with the current clock and delivers it.
func (b *Bus) Publish(ev Event) {
	env := Envelope{Tick: b.tick, AtMs: b.nowMs, Event: ev}
	for _, s := range b.subs {
		s.h(env)
	}
}

// setClock sets the stamp applied to subsequent events.
func (b *Bus) setClock(tick uint64, nowMs float64) {
	b.tick = tick
	b.nowMs = nowMs
}

// EventLog is an append-only record of every envelope published on a bus.
type EventLog struct {
	entries []Envelope
}

// NewEventLog creates a log subscribed to bus.
func NewEventLog(bus *Bus) *EventLog {
	l := &EventLog{}
	bus.Subscribe(func(env Envelope) {
		l.entries = append(l.entries, env)
	})
	return l
}

// Entries returns a copy of every recorded envelope.
func (l *EventLog) Entries() []Envelope {
	result := make([]Envelope, len(l.entries))
	copy(result, l.entries)
	return result
}

// Len returns the number of recorded envelopes.
func (l *EventLog) Len() int {
	return len(l.entries)
}
