package sim

// Graph is the static lookup of nodes, edges and per-node out-edge lists.
// It is built once from level data and never mutated afterwards.
type Graph struct {
	nodes     map[NodeID]*Node
	edges     map[EdgeID]*Edge
	out       map[NodeID][]EdgeID
	nodeOrder []NodeID
	edgeOrder []EdgeID
}

// NewGraph builds a graph from node and edge lists. Out-edge order for a node
// comes from its Branch declaration when it lists edges, otherwise from edge
// declaration order. A node with several out-edges must be a declared branch.
//
// Edges with no geometry get a straight segment between their endpoints, and
// edges with a non-positive length take the length of their geometry.
func NewGraph(nodes []Node, edges []Edge, branches []Branch) (*Graph, error) {
	g := &Graph{
		nodes:     make(map[NodeID]*Node, len(nodes)),
		edges:     make(map[EdgeID]*Edge, len(edges)),
		out:       make(map[NodeID][]EdgeID),
		nodeOrder: make([]NodeID, 0, len(nodes)),
		edgeOrder: make([]EdgeID, 0, len(edges)),
	}

	for i := range nodes {
		n := nodes[i]
		if _, dup := g.nodes[n.ID]; dup {
			return nil, configErrorf(CodeDuplicateID, "node %q declared twice", n.ID)
		}
		g.nodes[n.ID] = &n
		g.nodeOrder = append(g.nodeOrder, n.ID)
	}

	for i := range edges {
		e := edges[i]
		if _, dup := g.edges[e.ID]; dup {
			return nil, configErrorf(CodeDuplicateID, "edge %q declared twice", e.ID)
		}
		from, ok := g.nodes[e.From]
		if !ok {
			return nil, configErrorf(CodeMissingRef, "edge %q: unknown source node %q", e.ID, e.From)
		}
		to, ok := g.nodes[e.To]
		if !ok {
			return nil, configErrorf(CodeMissingRef, "edge %q: unknown destination node %q", e.ID, e.To)
		}

		geom := make([]Point, len(e.Geometry))
		copy(geom, e.Geometry)
		if len(geom) < 2 {
			geom = []Point{from.Pos, to.Pos}
		}
		e.Geometry = geom
		if e.Length <= 0 {
			e.Length = PolylineLength(geom)
		}

		g.edges[e.ID] = &e
		g.edgeOrder = append(g.edgeOrder, e.ID)
		g.out[e.From] = append(g.out[e.From], e.ID)
	}

	for _, b := range branches {
		if _, ok := g.nodes[b.Node]; !ok {
			return nil, configErrorf(CodeMissingRef, "branch on unknown node %q", b.Node)
		}
		if len(b.Out) == 0 {
			continue
		}
		ordered := make([]EdgeID, 0, len(b.Out))
		for _, id := range b.Out {
			e, ok := g.edges[id]
			if !ok {
				return nil, configErrorf(CodeMissingRef, "branch %q: unknown edge %q", b.Node, id)
			}
			if e.From != b.Node {
				return nil, configErrorf(CodeMissingRef, "branch %q: edge %q leaves %q", b.Node, id, e.From)
			}
			ordered = append(ordered, id)
		}
		g.out[b.Node] = ordered
	}

	// Only declared branches may offer a choice. Spawn out-edges are
	// checked against their worms, and goals end every route.
	branched := make(map[NodeID]bool, len(branches))
	for _, b := range branches {
		branched[b.Node] = true
	}
	for _, id := range g.nodeOrder {
		kind := g.nodes[id].Kind
		if branched[id] || kind == NodeSpawn || kind == NodeGoal {
			continue
		}
		if n := len(g.out[id]); n > 1 {
			return nil, configErrorf(CodeUnroutedFork, "node %q has %d out-edges but no branch", id, n)
		}
	}

	return g, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, &NotFoundError{Kind: "node", ID: string(id)}
	}
	return *n, nil
}

// Edge returns the edge with the given id. The returned geometry is shared
// and must not be modified.
func (g *Graph) Edge(id EdgeID) (Edge, error) {
	e, ok := g.edges[id]
	if !ok {
		return Edge{}, &NotFoundError{Kind: "edge", ID: string(id)}
	}
	return *e, nil
}

// OutEdges returns the ordered out-edges of a node, empty if it has none.
func (g *Graph) OutEdges(id NodeID) ([]EdgeID, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, &NotFoundError{Kind: "node", ID: string(id)}
	}
	out := g.out[id]
	result := make([]EdgeID, len(out))
	copy(result, out)
	return result, nil
}

// EdgeGeometry returns a copy of the polyline of an edge.
func (g *Graph) EdgeGeometry(id EdgeID) ([]Point, error) {
	e, ok := g.edges[id]
	if !ok {
		return nil, &NotFoundError{Kind: "edge", ID: string(id)}
	}
	pts := make([]Point, len(e.Geometry))
	copy(pts, e.Geometry)
	return pts, nil
}

// Nodes returns every node in declaration order.
func (g *Graph) Nodes() []Node {
	result := make([]Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		result[i] = *g.nodes[id]
	}
	return result
}

// Edges returns every edge in declaration order.
func (g *Graph) Edges() []Edge {
	result := make([]Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		result[i] = *g.edges[id]
	}
	return result
}

// Bounds returns the bounding box of every node and edge point.
func (g *Graph) Bounds() (lo, hi Point) {
	first := true
	grow := func(p Point) {
		if first {
			lo, hi = p, p
			first = false
			return
		}
		if p.X < lo.X {
			lo.X = p.X
		}
		if p.Y < lo.Y {
			lo.Y = p.Y
		}
		if p.X > hi.X {
			hi.X = p.X
		}
		if p.Y > hi.Y {
			hi.Y = p.Y
		}
	}
	for _, id := range g.nodeOrder {
		grow(g.nodes[id].Pos)
	}
	for _, id := range g.edgeOrder {
		for _, p := range g.edges[id].Geometry {
			grow(p)
		}
	}
	return lo, hi
}

// outCount returns the number of out-edges of a node without copying.
func (g *Graph) outCount(id NodeID) int {
	return len(g.out[id])
}

// outAt returns the i-th out-edge of a node without copying.
func (g *Graph) outAt(id NodeID, i int) EdgeID {
	return g.out[id][i]
}
