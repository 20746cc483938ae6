package sim

import (
	"errors"
	"math/rand"
	"testing"
)

// narrowLevel routes through a junction whose default edge is narrow. Both
// branches lead to the same orange goal.
func narrowLevel() Definition {
	return Definition{
		ID: "narrow",
		Nodes: []Node{
			{ID: "S", Kind: NodeSpawn, Pos: Pt(0, 0)},
			{ID: "J", Kind: NodeJunction, Pos: Pt(50, 0)},
			{ID: "G", Kind: NodeGoal, Pos: Pt(100, 0), Color: ColorOrange},
		},
		Edges: []Edge{
			{ID: "s-j", From: "S", To: "J", Length: 50},
			{ID: "tight", From: "J", To: "G", Length: 50, Width: WidthNarrow},
			{ID: "wide", From: "J", To: "G", Length: 50},
		},
		Branches: []Branch{
			{Node: "J", Out: []EdgeID{"tight", "wide"}},
		},
	}
}

func TestJammedWormHoldsUntilRoutingChanges(t *testing.T) {
	def := narrowLevel()
	def.Agents = []AgentSpec{{ID: "big", Color: ColorOrange, Size: SizeLarge, Speed: 100, Spawn: "S"}}
	s := mustNew(t, def)
	events := NewEventLog(s.Bus())

	// spawn at 100ms, junction at 600ms
	tickN(t, s, 6, 100)

	ag, _ := s.Agent("big")
	if ag.State != AgentJammed {
		t.Fatalf("Expected jammed, got %v", ag.State)
	}
	if ag.Edge != "s-j" || ag.Distance != 50 {
		t.Fatalf("Expected clamp at end of s-j, got %s @ %v", ag.Edge, ag.Distance)
	}

	tickN(t, s, 20, 100)
	ag, _ = s.Agent("big")
	if ag.State != AgentJammed || ag.Distance != 50 {
		t.Errorf("Jammed worm moved: %v @ %v", ag.State, ag.Distance)
	}
	if got := len(eventsOf[MistakeMade](events)); got != 1 {
		t.Errorf("Expected 1 mistake while jammed, got %d", got)
	}

	if !s.Switch("J") {
		t.Fatal("Switch(J) reported no change")
	}
	tickN(t, s, 1, 100)

	ag, _ = s.Agent("big")
	if ag.State != AgentMoving || ag.Edge != "wide" || ag.Distance != 0 {
		t.Errorf("Expected moving on wide at 0, got %v on %s @ %v", ag.State, ag.Edge, ag.Distance)
	}

	tickN(t, s, 5, 100)
	r, ok := s.Outcome()
	if !ok || !r.Success {
		t.Errorf("Expected win after unjam, got %+v (decided %v)", r, ok)
	}
	if c := s.Counters(); c.Mistakes != 1 || c.PlayerSwitches != 1 {
		t.Errorf("Unexpected counters: %+v", c)
	}
}

func TestNarrowEdgeAdmitsMediumWorm(t *testing.T) {
	def := narrowLevel()
	def.Agents = []AgentSpec{{ID: "mid", Color: ColorOrange, Size: SizeMedium, Speed: 100, Spawn: "S"}}
	s := mustNew(t, def)

	tickN(t, s, 11, 100)

	r, ok := s.Outcome()
	if !ok || !r.Success {
		t.Errorf("Expected win, got %+v (decided %v)", r, ok)
	}
	if c := s.Counters(); c.Mistakes != 0 {
		t.Errorf("Expected no mistakes, got %d", c.Mistakes)
	}
}

func TestDistanceStaysOnEdge(t *testing.T) {
	def := withWorms(junctionLevel(37),
		worm("orange", ColorOrange, 0),
		worm("blue", ColorBlue, 450),
	)
	def.Agents[1].Speed = 333
	s := mustNew(t, def)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500 && !s.Done(); i++ {
		dt := float64(1 + rng.Intn(250))
		if err := s.Tick(dt); err != nil {
			t.Fatalf("Tick() error: %v", err)
		}
		for _, ag := range s.Agents() {
			if ag.Edge == "" {
				continue
			}
			e, err := s.Graph().Edge(ag.Edge)
			if err != nil {
				t.Fatalf("agent %q on unknown edge: %v", ag.Spec.ID, err)
			}
			if ag.Distance < 0 || ag.Distance > e.Length {
				t.Fatalf("agent %q distance %v outside [0, %v]", ag.Spec.ID, ag.Distance, e.Length)
			}
		}
	}
}

func TestGoalSizeMustMatch(t *testing.T) {
	tests := []struct {
		name     string
		goalSize Size
		wormSize Size
		success  bool
	}{
		{"any size goal", SizeAny, SizeLarge, true},
		{"matching size", SizeSmall, SizeSmall, true},
		{"size mismatch", SizeMedium, SizeSmall, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := junctionLevel(10)
			def.Nodes[2].Size = tt.goalSize
			w := worm("orange", ColorOrange, 0)
			w.Size = tt.wormSize
			def.Agents = []AgentSpec{w}
			s := mustNew(t, def)

			tickN(t, s, 20, 100)

			r, ok := s.Outcome()
			if !ok {
				t.Fatal("Expected a decided run")
			}
			if r.Success != tt.success {
				t.Errorf("Expected success=%v, got %+v", tt.success, r)
			}
			if !tt.success && r.Reason != ReasonWrongGoal {
				t.Errorf("Expected wrong-goal, got %s", r.Reason)
			}
		})
	}
}

func TestDeadEndIsFatal(t *testing.T) {
	def := Definition{
		ID: "dead",
		Nodes: []Node{
			{ID: "S", Kind: NodeSpawn},
			{ID: "P", Kind: NodePlain, Pos: Pt(10, 0)},
		},
		Edges:  []Edge{{ID: "s-p", From: "S", To: "P"}},
		Agents: []AgentSpec{{ID: "w", Color: ColorRed, Speed: 100, Spawn: "S"}},
	}
	s := mustNew(t, def)

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = s.Tick(100)
	}

	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Code != CodeDeadEnd {
		t.Fatalf("Expected DEAD_END config error, got %v", err)
	}
	if !s.Done() {
		t.Error("Expected the run to be over")
	}
	r, ok := s.Outcome()
	if !ok || r.Reason != ReasonDeadEnd {
		t.Errorf("Expected dead-end loss, got %+v", r)
	}
	if !errors.Is(s.Tick(100), ErrConfiguration) {
		t.Error("Expected later ticks to keep failing")
	}
}

func TestSpawnNodeNeedsOneOutEdge(t *testing.T) {
	def := junctionLevel(40)
	def.Agents = []AgentSpec{{ID: "w", Color: ColorOrange, Speed: 100, Spawn: "J"}}
	_, err := New(def)
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Code != CodeSpawnEdges {
		t.Errorf("Expected SPAWN_EDGE_COUNT, got %v", err)
	}
}

func TestAgentPositionFollowsGeometry(t *testing.T) {
	def := withWorms(junctionLevel(40), worm("orange", ColorOrange, 0))
	s := mustNew(t, def)

	tickN(t, s, 3, 100)

	p, err := s.AgentPosition("orange")
	if err != nil {
		t.Fatalf("AgentPosition() error: %v", err)
	}
	if p != Pt(20, 0) {
		t.Errorf("Expected (20,0), got %v", p)
	}
	if _, err := s.AgentPosition("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
