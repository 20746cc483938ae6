package sim

// branchState is the routing entry of one branch node.
type branchState struct {
	out    []EdgeID
	def    int
	active int
}

// Routing holds the active out-edge index of every branch node. It is
// written by player input and by reroute hazards, and read by worms when
// they reach a node.
type Routing struct {
	table map[NodeID]*branchState
	order []NodeID
	bus   *Bus
}

// NewRouting builds the routing table from branch declarations. A default
// index outside the out-edge list is a configuration error.
func NewRouting(g *Graph, branches []Branch, bus *Bus) (*Routing, error) {
	r := &Routing{
		table: make(map[NodeID]*branchState, len(branches)),
		bus:   bus,
	}
	for _, b := range branches {
		if _, dup := r.table[b.Node]; dup {
			return nil, configErrorf(CodeDuplicateID, "branch %q declared twice", b.Node)
		}
		out, err := g.OutEdges(b.Node)
		if err != nil {
			return nil, configErrorf(CodeMissingRef, "branch %q: %v", b.Node, err)
		}
		if len(out) == 0 {
			return nil, configErrorf(CodeBranchNoEdges, "branch %q has no out-edges", b.Node)
		}
		if b.Default < 0 || b.Default >= len(out) {
			return nil, configErrorf(CodeBadDefault, "branch %q: default index %d outside [0, %d)", b.Node, b.Default, len(out))
		}
		r.table[b.Node] = &branchState{out: out, def: b.Default, active: b.Default}
		r.order = append(r.order, b.Node)
	}
	return r, nil
}

// ActiveIndex returns the active out-edge index of a node. Unknown nodes
// report index 0 so that movement never stalls on a routing query.
func (r *Routing) ActiveIndex(node NodeID) int {
	if b, ok := r.table[node]; ok {
		return b.active
	}
	return 0
}

// ActiveEdge returns the active out-edge of a branch node.
// The second result is false for nodes absent from the table.
func (r *Routing) ActiveEdge(node NodeID) (EdgeID, bool) {
	b, ok := r.table[node]
	if !ok {
		return "", false
	}
	return b.out[b.active], true
}

// Switch advances the active index of a node by one, modulo its out-edge
// count, and publishes RoutingChanged. Nodes absent from the table or with
// fewer than two out-edges are left untouched and publish nothing.
// Returns true if the routing changed.
func (r *Routing) Switch(node NodeID, cause Cause) bool {
	return r.switchBy(node, cause, "")
}

func (r *Routing) switchBy(node NodeID, cause Cause, hazard HazardID) bool {
	b, ok := r.table[node]
	if !ok || len(b.out) < 2 {
		return false
	}
	prev := b.active
	b.active = (b.active + 1) % len(b.out)
	if r.bus != nil {
		r.bus.Publish(RoutingChanged{
			Node:   node,
			Prev:   prev,
			Next:   b.active,
			Cause:  cause,
			Hazard: hazard,
		})
	}
	return true
}

// Switchable reports whether Switch would change the node.
func (r *Routing) Switchable(node NodeID) bool {
	b, ok := r.table[node]
	return ok && len(b.out) >= 2
}

// Has reports whether the node is a branch node.
func (r *Routing) Has(node NodeID) bool {
	_, ok := r.table[node]
	return ok
}

// Nodes returns the branch nodes in declaration order.
func (r *Routing) Nodes() []NodeID {
	result := make([]NodeID, len(r.order))
	copy(result, r.order)
	return result
}

// reset restores every branch to its default index without publishing.
func (r *Routing) reset() {
	for _, b := range r.table {
		b.active = b.def
	}
}
