package formats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const yamlLevel = `
id: fork
name: First Fork
required: 1
nodes:
  - {id: S, kind: spawn, x: 0, y: 0}
  - {id: J, kind: junction, x: 10, y: 0}
  - {id: G, kind: goal, x: 20, y: 0, color: orange}
edges:
  - {id: s-j, from: S, to: J}
  - {id: j-g, from: J, to: G, width: narrow, points: [[10, 0], [15, 5], [20, 0]]}
branches:
  - {node: J, out: [j-g], default: 0}
hazards:
  - {id: wind, kind: reroute, target: J, interval_ms: 5000, warning_lead_ms: 1000}
worms:
  - {id: w1, color: orange, size: small, speed: 50, spawn: S, delay_ms: 250}
`

const hclLevel = `
id       = "fork"
name     = "First Fork"
required = 1

node "S" {
  kind = "spawn"
  x    = 0
  y    = 0
}

node "J" {
  kind = "junction"
  x    = 10
  y    = 0
}

node "G" {
  kind  = "goal"
  x     = 20
  y     = 0
  color = "orange"
}

edge "s-j" {
  from = "S"
  to   = "J"
}

edge "j-g" {
  from   = "J"
  to     = "G"
  width  = "narrow"
  points = [[10, 0], [15, 5], [20, 0]]
}

branch "J" {
  out     = ["j-g"]
  default = 0
}

hazard "wind" {
  kind            = "reroute"
  target          = "J"
  interval_ms     = 5000
  warning_lead_ms = 1000
}

worm "w1" {
  color    = "orange"
  size     = "small"
  speed    = 50
  spawn    = "S"
  delay_ms = 250
}
`

func expectedDocument() Document {
	return Document{
		ID:       "fork",
		Name:     "First Fork",
		Required: 1,
		Nodes: []NodeDoc{
			{ID: "S", Kind: "spawn"},
			{ID: "J", Kind: "junction", X: 10},
			{ID: "G", Kind: "goal", X: 20, Color: "orange"},
		},
		Edges: []EdgeDoc{
			{ID: "s-j", From: "S", To: "J"},
			{ID: "j-g", From: "J", To: "G", Width: "narrow", Points: [][]float64{{10, 0}, {15, 5}, {20, 0}}},
		},
		Branches: []BranchDoc{{Node: "J", Out: []string{"j-g"}}},
		Hazards: []HazardDoc{
			{ID: "wind", Kind: "reroute", Target: "J", IntervalMs: 5000, WarningLeadMs: 1000},
		},
		Worms: []WormDoc{
			{ID: "w1", Color: "orange", Size: "small", Speed: 50, Spawn: "S", DelayMs: 250},
		},
	}
}

func TestParseFormatsAgree(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
	}{
		{"yaml", "fork.yaml", yamlLevel},
		{"hcl", "fork.hcl", hclLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.filename, []byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if diff := cmp.Diff(expectedDocument(), doc); diff != "" {
				t.Errorf("Document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	if _, err := Parse("level.json", []byte("{}")); err == nil {
		t.Error("Expected error for unsupported extension")
	}
	if Supported("level.JSON") {
		t.Error("json should not be supported")
	}
	if !Supported("LEVEL.YML") {
		t.Error("yml should be supported regardless of case")
	}
}

func TestParseHCLReportsDiagnostics(t *testing.T) {
	_, err := ParseHCL([]byte(`node "S" {`), "broken.hcl")
	if err == nil {
		t.Error("Expected error for unterminated block")
	}
}

func TestFormatExtensions(t *testing.T) {
	want := []string{".hcl", ".yaml", ".yml"}
	if diff := cmp.Diff(want, FormatExtensions()); diff != "" {
		t.Errorf("FormatExtensions() mismatch (-want +got):\n%s", diff)
	}
}
