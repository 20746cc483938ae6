package sim

import (
	"errors"
	"testing"
)

func threeWayGraph(t *testing.T) (*Graph, []Branch) {
	t.Helper()
	nodes := []Node{
		{ID: "J", Kind: NodeJunction},
		{ID: "a"}, {ID: "b"}, {ID: "c"},
		{ID: "M", Kind: NodeMerge},
	}
	edges := []Edge{
		{ID: "ja", From: "J", To: "a", Length: 1},
		{ID: "jb", From: "J", To: "b", Length: 1},
		{ID: "jc", From: "J", To: "c", Length: 1},
		{ID: "ma", From: "M", To: "a", Length: 1},
	}
	branches := []Branch{
		{Node: "J", Default: 1},
		{Node: "M"},
	}
	g, err := NewGraph(nodes, edges, branches)
	if err != nil {
		t.Fatalf("NewGraph() error: %v", err)
	}
	return g, branches
}

func TestRoutingSwitchIsCyclic(t *testing.T) {
	g, branches := threeWayGraph(t)
	bus := NewBus()
	events := NewEventLog(bus)
	r, err := NewRouting(g, branches, bus)
	if err != nil {
		t.Fatalf("NewRouting() error: %v", err)
	}

	if got := r.ActiveIndex("J"); got != 1 {
		t.Fatalf("Expected default index 1, got %d", got)
	}

	want := []int{2, 0, 1}
	for i, w := range want {
		if !r.Switch("J", CausePlayer) {
			t.Fatalf("switch %d reported no change", i)
		}
		if got := r.ActiveIndex("J"); got != w {
			t.Errorf("after switch %d: expected index %d, got %d", i, w, got)
		}
	}

	changes := eventsOf[RoutingChanged](events)
	if len(changes) != 3 {
		t.Fatalf("Expected 3 RoutingChanged events, got %d", len(changes))
	}
	if changes[0].Prev != 1 || changes[0].Next != 2 || changes[0].Cause != CausePlayer {
		t.Errorf("Unexpected first event: %+v", changes[0])
	}

	edge, ok := r.ActiveEdge("J")
	if !ok || edge != "jb" {
		t.Errorf("Expected active edge jb, got %q (%v)", edge, ok)
	}
}

func TestRoutingSwitchNoOp(t *testing.T) {
	g, branches := threeWayGraph(t)
	bus := NewBus()
	events := NewEventLog(bus)
	r, err := NewRouting(g, branches, bus)
	if err != nil {
		t.Fatalf("NewRouting() error: %v", err)
	}

	if r.Switch("M", CausePlayer) {
		t.Error("Expected single-edge node switch to be a no-op")
	}
	if r.Switch("a", CausePlayer) {
		t.Error("Expected unknown node switch to be a no-op")
	}
	if events.Len() != 0 {
		t.Errorf("Expected no events, got %d", events.Len())
	}
	if got := r.ActiveIndex("nowhere"); got != 0 {
		t.Errorf("Expected index 0 for unknown node, got %d", got)
	}
}

func TestRoutingRejectsBadBranches(t *testing.T) {
	g, _ := threeWayGraph(t)

	tests := []struct {
		name   string
		branch Branch
		code   string
	}{
		{"default out of range", Branch{Node: "J", Default: 3}, CodeBadDefault},
		{"negative default", Branch{Node: "J", Default: -1}, CodeBadDefault},
		{"no out-edges", Branch{Node: "a"}, CodeBranchNoEdges},
		{"unknown node", Branch{Node: "zz"}, CodeMissingRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRouting(g, []Branch{tt.branch}, NewBus())
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if ce.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, ce.Code)
			}
		})
	}
}
