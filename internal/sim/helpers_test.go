package sim

import "testing"

// junctionLevel is a spawn feeding one junction that splits toward an orange
// goal (index 0) and a blue goal (index 1).
func junctionLevel(feedLength float64) Definition {
	return Definition{
		ID: "junction",
		Nodes: []Node{
			{ID: "S", Kind: NodeSpawn, Pos: Pt(0, 0)},
			{ID: "J", Kind: NodeJunction, Pos: Pt(feedLength, 0)},
			{ID: "GO", Kind: NodeGoal, Pos: Pt(feedLength+100, -50), Color: ColorOrange},
			{ID: "GB", Kind: NodeGoal, Pos: Pt(feedLength+100, 50), Color: ColorBlue},
		},
		Edges: []Edge{
			{ID: "s-j", From: "S", To: "J", Length: feedLength},
			{ID: "j-o", From: "J", To: "GO", Length: 100},
			{ID: "j-b", From: "J", To: "GB", Length: 100},
		},
		Branches: []Branch{
			{Node: "J", Out: []EdgeID{"j-o", "j-b"}, Default: 0},
		},
	}
}

func withWorms(def Definition, worms ...AgentSpec) Definition {
	def.Agents = append(def.Agents, worms...)
	return def
}

func worm(id AgentID, c Color, spawnMs float64) AgentSpec {
	return AgentSpec{ID: id, Color: c, Size: SizeSmall, Speed: 100, Spawn: "S", SpawnMs: spawnMs}
}

func mustNew(t *testing.T, def Definition, opts ...Option) *Simulation {
	t.Helper()
	s, err := New(def, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func tickN(t *testing.T, s *Simulation, n int, dtMs float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := s.Tick(dtMs); err != nil {
			t.Fatalf("Tick() error at %v ms: %v", s.NowMs(), err)
		}
	}
}

// eventsOf collects the envelopes of one event type.
func eventsOf[T Event](l *EventLog) []T {
	var out []T
	for _, env := range l.Entries() {
		if ev, ok := env.Event.(T); ok {
			out = append(out, ev)
		}
	}
	return out
}

// timesOf collects the publish times of one event type.
func timesOf[T Event](l *EventLog) []float64 {
	var out []float64
	for _, env := range l.Entries() {
		if _, ok := env.Event.(T); ok {
			out = append(out, env.AtMs)
		}
	}
	return out
}
