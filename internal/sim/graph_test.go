package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGraphLookups(t *testing.T) {
	def := junctionLevel(40)
	g, err := NewGraph(def.Nodes, def.Edges, def.Branches)
	if err != nil {
		t.Fatalf("NewGraph() error: %v", err)
	}

	n, err := g.Node("J")
	if err != nil {
		t.Fatalf("Node(J) error: %v", err)
	}
	if n.Kind != NodeJunction {
		t.Errorf("Expected junction, got %v", n.Kind)
	}

	out, err := g.OutEdges("J")
	if err != nil {
		t.Fatalf("OutEdges(J) error: %v", err)
	}
	if diff := cmp.Diff([]EdgeID{"j-o", "j-b"}, out); diff != "" {
		t.Errorf("out-edges (-want +got):\n%s", diff)
	}

	out, err = g.OutEdges("GO")
	if err != nil || len(out) != 0 {
		t.Errorf("Expected no out-edges for goal, got %v (err %v)", out, err)
	}

	geom, err := g.EdgeGeometry("s-j")
	if err != nil {
		t.Fatalf("EdgeGeometry() error: %v", err)
	}
	if diff := cmp.Diff([]Point{Pt(0, 0), Pt(40, 0)}, geom); diff != "" {
		t.Errorf("default geometry (-want +got):\n%s", diff)
	}
}

func TestGraphUnknownIDs(t *testing.T) {
	def := junctionLevel(40)
	g, err := NewGraph(def.Nodes, def.Edges, def.Branches)
	if err != nil {
		t.Fatalf("NewGraph() error: %v", err)
	}

	_, nodeErr := g.Node("nope")
	_, edgeErr := g.Edge("nope")
	_, outErr := g.OutEdges("nope")
	_, geomErr := g.EdgeGeometry("nope")

	for _, err := range []error{nodeErr, edgeErr, outErr, geomErr} {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.ID != "nope" {
			t.Errorf("Expected NotFoundError for nope, got %v", err)
		}
	}
}

func TestGraphDerivesLength(t *testing.T) {
	nodes := []Node{
		{ID: "a", Pos: Pt(0, 0)},
		{ID: "b", Pos: Pt(30, 40)},
	}
	edges := []Edge{{ID: "ab", From: "a", To: "b"}}
	g, err := NewGraph(nodes, edges, nil)
	if err != nil {
		t.Fatalf("NewGraph() error: %v", err)
	}
	e, _ := g.Edge("ab")
	if e.Length != 50 {
		t.Errorf("Expected derived length 50, got %v", e.Length)
	}
}

func TestGraphIntegrityErrors(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []Node
		edges    []Edge
		branches []Branch
		code     string
	}{
		{
			name:  "duplicate node",
			nodes: []Node{{ID: "a"}, {ID: "a"}},
			code:  CodeDuplicateID,
		},
		{
			name:  "edge to unknown node",
			nodes: []Node{{ID: "a"}},
			edges: []Edge{{ID: "e", From: "a", To: "b"}},
			code:  CodeMissingRef,
		},
		{
			name:     "branch lists foreign edge",
			nodes:    []Node{{ID: "a"}, {ID: "b"}},
			edges:    []Edge{{ID: "ba", From: "b", To: "a"}},
			branches: []Branch{{Node: "a", Out: []EdgeID{"ba"}}},
			code:     CodeMissingRef,
		},
		{
			name:  "fork without branch",
			nodes: []Node{{ID: "a", Kind: NodeMerge}, {ID: "b"}, {ID: "c"}},
			edges: []Edge{{ID: "ab", From: "a", To: "b"}, {ID: "ac", From: "a", To: "c"}},
			code:  CodeUnroutedFork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.nodes, tt.edges, tt.branches)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if ce.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, ce.Code)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Expected errors.Is ErrConfiguration")
			}
		})
	}
}

func TestNewRejectsUndeclaredJunction(t *testing.T) {
	def := withWorms(junctionLevel(40), worm("blue", ColorBlue, 0))
	def.Branches = nil

	_, err := New(def)
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Code != CodeUnroutedFork {
		t.Fatalf("Expected UNROUTED_FORK, got %v", err)
	}

	// Goals and spawns never route, so extra out-edges there are not forks.
	def = withWorms(junctionLevel(40), worm("blue", ColorBlue, 0))
	def.Edges = append(def.Edges,
		Edge{ID: "go-s", From: "GO", To: "S"},
		Edge{ID: "go-j", From: "GO", To: "J"},
	)
	if _, err := New(def); err != nil {
		t.Errorf("Expected goal out-edges to be accepted, got %v", err)
	}
}

func TestPointAlong(t *testing.T) {
	pts := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}

	tests := []struct {
		name   string
		length float64
		d      float64
		want   Point
	}{
		{"start", 20, 0, Pt(0, 0)},
		{"corner", 20, 10, Pt(10, 0)},
		{"end", 20, 20, Pt(10, 10)},
		{"past end clamps", 20, 35, Pt(10, 10)},
		{"scaled nominal length", 40, 30, Pt(10, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointAlong(pts, tt.length, tt.d)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("PointAlong(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}
