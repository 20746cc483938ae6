package levels

import (
	"fmt"

	"github.com/vovakirdan/wormtrack/internal/levels/formats"
	"github.com/vovakirdan/wormtrack/internal/sim"
)

// ValidationError contains details about validation failure.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validation error codes.
const (
	CodeMissingID     = "MISSING_ID"
	CodeDuplicateID   = "DUPLICATE_ID"
	CodeUnknownRef    = "UNKNOWN_REF"
	CodeInvalidValue  = "INVALID_VALUE"
	CodeBranchEdges   = "BRANCH_EDGES"
	CodeSpawnEdges    = "SPAWN_EDGES"
	CodeUnroutedFork  = "UNROUTED_FORK"
	CodeGoalColor     = "GOAL_COLOR"
	CodeNoWorms       = "NO_WORMS"
	CodeRequiredCount = "REQUIRED_COUNT"
)

func invalid(code, format string, args ...any) error {
	return ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validate checks a converted definition for authoring errors:
//   - Unique, non-empty ids
//   - Every reference resolves
//   - Declared branches offer at least two out-edges
//   - Spawn nodes have exactly one out-edge
//   - Any other node with several out-edges is a declared branch
//   - Goals carry a color
//   - At least one worm, and no more required arrivals than worms
func Validate(def sim.Definition) error {
	if def.ID == "" {
		return invalid(CodeMissingID, "level has no id")
	}

	nodes := make(map[sim.NodeID]sim.Node, len(def.Nodes))
	for _, n := range def.Nodes {
		if n.ID == "" {
			return invalid(CodeMissingID, "node without id")
		}
		if _, dup := nodes[n.ID]; dup {
			return invalid(CodeDuplicateID, "node %q declared twice", n.ID)
		}
		if n.Kind == sim.NodeGoal && n.Color == sim.ColorNone {
			return invalid(CodeGoalColor, "goal %q has no color", n.ID)
		}
		nodes[n.ID] = n
	}

	edges := make(map[sim.EdgeID]sim.Edge, len(def.Edges))
	outCount := make(map[sim.NodeID]int)
	for _, e := range def.Edges {
		if e.ID == "" {
			return invalid(CodeMissingID, "edge without id")
		}
		if _, dup := edges[e.ID]; dup {
			return invalid(CodeDuplicateID, "edge %q declared twice", e.ID)
		}
		if _, ok := nodes[e.From]; !ok {
			return invalid(CodeUnknownRef, "edge %q starts at unknown node %q", e.ID, e.From)
		}
		if _, ok := nodes[e.To]; !ok {
			return invalid(CodeUnknownRef, "edge %q ends at unknown node %q", e.ID, e.To)
		}
		if e.Length < 0 {
			return invalid(CodeInvalidValue, "edge %q has negative length", e.ID)
		}
		edges[e.ID] = e
		outCount[e.From]++
	}

	branched := make(map[sim.NodeID]bool, len(def.Branches))
	for _, b := range def.Branches {
		if _, ok := nodes[b.Node]; !ok {
			return invalid(CodeUnknownRef, "branch on unknown node %q", b.Node)
		}
		if branched[b.Node] {
			return invalid(CodeDuplicateID, "branch %q declared twice", b.Node)
		}
		branched[b.Node] = true

		n := outCount[b.Node]
		if len(b.Out) > 0 {
			for _, id := range b.Out {
				e, ok := edges[id]
				if !ok {
					return invalid(CodeUnknownRef, "branch %q lists unknown edge %q", b.Node, id)
				}
				if e.From != b.Node {
					return invalid(CodeUnknownRef, "branch %q lists edge %q leaving %q", b.Node, id, e.From)
				}
			}
			n = len(b.Out)
		}
		if n < 2 {
			return invalid(CodeBranchEdges, "branch %q has %d out-edges, want at least 2", b.Node, n)
		}
		if b.Default < 0 || b.Default >= n {
			return invalid(CodeInvalidValue, "branch %q default %d out of range", b.Node, b.Default)
		}
	}

	for _, n := range def.Nodes {
		switch {
		case n.Kind == sim.NodeSpawn && outCount[n.ID] != 1:
			return invalid(CodeSpawnEdges, "spawn %q has %d out-edges, want 1", n.ID, outCount[n.ID])
		case n.Kind != sim.NodeSpawn && n.Kind != sim.NodeGoal && !branched[n.ID] && outCount[n.ID] > 1:
			return invalid(CodeUnroutedFork, "node %q has %d out-edges but no branch", n.ID, outCount[n.ID])
		}
	}

	hazards := make(map[sim.HazardID]bool, len(def.Hazards))
	for _, h := range def.Hazards {
		if h.ID == "" {
			return invalid(CodeMissingID, "hazard without id")
		}
		if hazards[h.ID] {
			return invalid(CodeDuplicateID, "hazard %q declared twice", h.ID)
		}
		hazards[h.ID] = true
		refs := append([]sim.NodeID{h.Target}, h.Pool...)
		for _, id := range refs {
			if id == "" {
				continue
			}
			if _, ok := nodes[id]; !ok {
				return invalid(CodeUnknownRef, "hazard %q targets unknown node %q", h.ID, id)
			}
			if h.Kind == sim.HazardPeriodicReroute && !branched[id] {
				return invalid(CodeUnknownRef, "hazard %q reroutes %q which is not a branch", h.ID, id)
			}
		}
	}

	if len(def.Agents) == 0 {
		return invalid(CodeNoWorms, "level has no worms")
	}
	worms := make(map[sim.AgentID]bool, len(def.Agents))
	for _, a := range def.Agents {
		if a.ID == "" {
			return invalid(CodeMissingID, "worm without id")
		}
		if worms[a.ID] {
			return invalid(CodeDuplicateID, "worm %q declared twice", a.ID)
		}
		worms[a.ID] = true
		n, ok := nodes[a.Spawn]
		if !ok {
			return invalid(CodeUnknownRef, "worm %q spawns at unknown node %q", a.ID, a.Spawn)
		}
		if n.Kind != sim.NodeSpawn {
			return invalid(CodeInvalidValue, "worm %q spawns at %s node %q", a.ID, n.Kind, a.Spawn)
		}
		if a.Speed <= 0 {
			return invalid(CodeInvalidValue, "worm %q has non-positive speed", a.ID)
		}
	}

	if def.RequiredArrivals > len(def.Agents) {
		return invalid(CodeRequiredCount, "level requires %d arrivals but has %d worms", def.RequiredArrivals, len(def.Agents))
	}
	return nil
}

// convert parses the raw strings of a document into a definition.
func convert(doc formats.Document) (sim.Definition, error) {
	def := sim.Definition{
		ID:               doc.ID,
		Name:             doc.Name,
		RequiredArrivals: doc.Required,
		TimeLimitMs:      doc.TimeLimitMs,
	}
	if def.Name == "" {
		def.Name = doc.ID
	}

	for _, n := range doc.Nodes {
		kind, ok := sim.ParseNodeKind(n.Kind)
		if !ok {
			return sim.Definition{}, invalid(CodeInvalidValue, "node %q: unknown kind %q", n.ID, n.Kind)
		}
		color := sim.ColorNone
		if n.Color != "" {
			if color, ok = sim.ParseColor(n.Color); !ok {
				return sim.Definition{}, invalid(CodeInvalidValue, "node %q: unknown color %q", n.ID, n.Color)
			}
		}
		size, ok := sim.ParseSize(n.Size)
		if !ok {
			return sim.Definition{}, invalid(CodeInvalidValue, "node %q: unknown size %q", n.ID, n.Size)
		}
		def.Nodes = append(def.Nodes, sim.Node{
			ID:    sim.NodeID(n.ID),
			Kind:  kind,
			Pos:   sim.Pt(n.X, n.Y),
			Color: color,
			Size:  size,
		})
	}

	for _, e := range doc.Edges {
		width, ok := sim.ParseWidth(e.Width)
		if !ok {
			return sim.Definition{}, invalid(CodeInvalidValue, "edge %q: unknown width %q", e.ID, e.Width)
		}
		var geom []sim.Point
		for _, p := range e.Points {
			if len(p) != 2 {
				return sim.Definition{}, invalid(CodeInvalidValue, "edge %q: point %v is not an [x, y] pair", e.ID, p)
			}
			geom = append(geom, sim.Pt(p[0], p[1]))
		}
		def.Edges = append(def.Edges, sim.Edge{
			ID:       sim.EdgeID(e.ID),
			From:     sim.NodeID(e.From),
			To:       sim.NodeID(e.To),
			Geometry: geom,
			Length:   e.Length,
			Width:    width,
		})
	}

	for _, b := range doc.Branches {
		out := make([]sim.EdgeID, 0, len(b.Out))
		for _, id := range b.Out {
			out = append(out, sim.EdgeID(id))
		}
		def.Branches = append(def.Branches, sim.Branch{
			Node:    sim.NodeID(b.Node),
			Out:     out,
			Default: b.Default,
		})
	}

	for _, h := range doc.Hazards {
		kind, ok := sim.ParseHazardKind(h.Kind)
		if !ok {
			return sim.Definition{}, invalid(CodeInvalidValue, "hazard %q: unknown kind %q", h.ID, h.Kind)
		}
		pool := make([]sim.NodeID, 0, len(h.Pool))
		for _, id := range h.Pool {
			pool = append(pool, sim.NodeID(id))
		}
		def.Hazards = append(def.Hazards, sim.HazardSpec{
			ID:             sim.HazardID(h.ID),
			Kind:           kind,
			Target:         sim.NodeID(h.Target),
			Pool:           pool,
			IntervalMs:     h.IntervalMs,
			ActiveMs:       h.ActiveMs,
			InitialDelayMs: h.InitialDelayMs,
			WarningLeadMs:  h.WarningLeadMs,
			MaxAppearances: h.MaxAppearances,
			Clearance:      h.Clearance,
		})
	}

	for _, w := range doc.Worms {
		color, ok := sim.ParseColor(w.Color)
		if !ok {
			return sim.Definition{}, invalid(CodeInvalidValue, "worm %q: unknown color %q", w.ID, w.Color)
		}
		size, ok := sim.ParseSize(w.Size)
		if !ok {
			return sim.Definition{}, invalid(CodeInvalidValue, "worm %q: unknown size %q", w.ID, w.Size)
		}
		def.Agents = append(def.Agents, sim.AgentSpec{
			ID:      sim.AgentID(w.ID),
			Color:   color,
			Size:    size,
			Speed:   w.Speed,
			Spawn:   sim.NodeID(w.Spawn),
			SpawnMs: w.DelayMs,
		})
	}

	return def, nil
}
