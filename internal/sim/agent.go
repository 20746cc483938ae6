package sim

import "fmt"

// AgentState is the lifecycle state of a worm.
type AgentState uint8

const (
	AgentPending AgentState = iota
	AgentMoving
	AgentJammed
	AgentArrived
	AgentDead
)

func (s AgentState) String() string {
	switch s {
	case AgentPending:
		return "pending"
	case AgentMoving:
		return "moving"
	case AgentJammed:
		return "jammed"
	case AgentArrived:
		return "arrived"
	case AgentDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final for the run.
func (s AgentState) Terminal() bool {
	return s == AgentArrived || s == AgentDead
}

// AgentSpec is the level description of one worm.
type AgentSpec struct {
	ID      AgentID
	Color   Color
	Size    Size
	Speed   float64 // track units per second
	Spawn   NodeID
	SpawnMs float64 // delay after run start
}

// Agent is the runtime record of one worm.
type Agent struct {
	Spec     AgentSpec
	State    AgentState
	Edge     EdgeID
	Distance float64 // always within [0, length of Edge]
	Node     NodeID  // node the worm last resolved at
}

// fate is what resolving a node did to a worm.
type fate uint8

const (
	fateContinue fate = iota
	fateArrived
	fateFailed
)

// Agents owns every worm and steps them in creation order.
type Agents struct {
	graph     *Graph
	routing   *Routing
	scheduler *Scheduler
	bus       *Bus
	specs     []AgentSpec
	agents    []Agent
}

// NewAgents validates worm specs and creates their runtime records. Every
// spawn node must have exactly one out-edge.
func NewAgents(g *Graph, r *Routing, s *Scheduler, bus *Bus, specs []AgentSpec) (*Agents, error) {
	seen := make(map[AgentID]bool, len(specs))
	for _, spec := range specs {
		if seen[spec.ID] {
			return nil, configErrorf(CodeDuplicateID, "agent %q declared twice", spec.ID)
		}
		seen[spec.ID] = true
		if _, err := g.Node(spec.Spawn); err != nil {
			return nil, configErrorf(CodeMissingRef, "agent %q: unknown spawn node %q", spec.ID, spec.Spawn)
		}
		if n := g.outCount(spec.Spawn); n != 1 {
			return nil, configErrorf(CodeSpawnEdges, "agent %q: spawn node %q has %d out-edges, want 1", spec.ID, spec.Spawn, n)
		}
		if spec.Speed <= 0 {
			return nil, configErrorf(CodeBadAgent, "agent %q: speed must be positive", spec.ID)
		}
		if spec.SpawnMs < 0 {
			return nil, configErrorf(CodeBadAgent, "agent %q: negative spawn delay", spec.ID)
		}
	}

	a := &Agents{
		graph:     g,
		routing:   r,
		scheduler: s,
		bus:       bus,
		specs:     append([]AgentSpec(nil), specs...),
	}
	a.reset()
	return a, nil
}

func (a *Agents) reset() {
	a.agents = make([]Agent, len(a.specs))
	for i, spec := range a.specs {
		a.agents[i] = Agent{Spec: spec, State: AgentPending, Node: spec.Spawn}
	}
}

// step advances every non-terminal worm by dtMs at simulation time nowMs.
// It stops as soon as out reports a decided run. A dead end is returned as a
// *ConfigError after the failure has been reported.
func (a *Agents) step(nowMs, dtMs float64, out *Outcome) error {
	for i := range a.agents {
		if out.Decided() {
			return nil
		}
		ag := &a.agents[i]

		switch ag.State {
		case AgentPending:
			if nowMs >= ag.Spec.SpawnMs {
				ag.Edge = a.graph.outAt(ag.Spec.Spawn, 0)
				ag.Distance = 0
				a.setState(ag, AgentMoving, "")
			}

		case AgentJammed:
			if err := a.route(ag, ag.Node, nowMs, out); err != nil {
				return err
			}

		case AgentMoving:
			edge := a.graph.edges[ag.Edge]
			ag.Distance += ag.Spec.Speed * dtMs / 1000
			if ag.Distance < edge.Length {
				continue
			}
			ag.Distance = edge.Length
			ag.Node = edge.To
			if err := a.arrive(ag, edge.To, nowMs, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// arrive resolves a worm that reached node: hazard check, goal check, then
// routing.
func (a *Agents) arrive(ag *Agent, node NodeID, nowMs float64, out *Outcome) error {
	if hz, blocked := a.scheduler.BlockingAt(node); blocked {
		a.setState(ag, AgentDead, node)
		out.ReportFailure(ReasonHazardCollision, ag.Spec.ID, hz, nowMs)
		return nil
	}

	n := a.graph.nodes[node]
	if n.Kind == NodeGoal {
		if goalAccepts(n, ag.Spec) {
			a.setState(ag, AgentArrived, node)
			out.ReportArrival(ag.Spec.ID, nowMs)
		} else {
			a.setState(ag, AgentDead, node)
			out.ReportFailure(ReasonWrongGoal, ag.Spec.ID, "", nowMs)
		}
		return nil
	}

	return a.route(ag, node, nowMs, out)
}

// route picks the next edge at node. A width-incompatible choice jams the
// worm at the end of its current edge; a compatible one moves it onto the
// new edge at distance zero.
func (a *Agents) route(ag *Agent, node NodeID, nowMs float64, out *Outcome) error {
	if a.graph.outCount(node) == 0 {
		a.setState(ag, AgentDead, node)
		out.ReportFailure(ReasonDeadEnd, ag.Spec.ID, "", nowMs)
		return configErrorf(CodeDeadEnd, "agent %q reached node %q with no out-edges", ag.Spec.ID, node)
	}

	next, ok := a.routing.ActiveEdge(node)
	if !ok {
		// Not a branch, so NewGraph guarantees a sole out-edge.
		next = a.graph.outAt(node, 0)
	}

	if !ag.Spec.Size.Fits(a.graph.edges[next].Width) {
		if ag.State != AgentJammed {
			a.setState(ag, AgentJammed, node)
			a.bus.Publish(MistakeMade{Agent: ag.Spec.ID, Node: node, Edge: next})
		}
		return nil
	}

	ag.Edge = next
	ag.Distance = 0
	if ag.State == AgentJammed {
		a.setState(ag, AgentMoving, node)
	}
	return nil
}

func goalAccepts(goal *Node, spec AgentSpec) bool {
	if goal.Color != spec.Color {
		return false
	}
	return goal.Size == SizeAny || goal.Size == spec.Size
}

func (a *Agents) setState(ag *Agent, to AgentState, node NodeID) {
	from := ag.State
	ag.State = to
	a.bus.Publish(AgentStateChanged{
		Agent: ag.Spec.ID,
		From:  from,
		To:    to,
		Node:  node,
		Edge:  ag.Edge,
	})
}

// Agent returns a copy of the runtime record of a worm.
func (a *Agents) Agent(id AgentID) (Agent, error) {
	for _, ag := range a.agents {
		if ag.Spec.ID == id {
			return ag, nil
		}
	}
	return Agent{}, &NotFoundError{Kind: "agent", ID: string(id)}
}

// All returns a copy of every worm record in creation order.
func (a *Agents) All() []Agent {
	result := make([]Agent, len(a.agents))
	copy(result, a.agents)
	return result
}

// Position samples the edge geometry at the worm's distance. Pending worms
// report their spawn node position.
func (a *Agents) Position(id AgentID) (Point, error) {
	ag, err := a.Agent(id)
	if err != nil {
		return Point{}, err
	}
	if ag.State == AgentPending || ag.Edge == "" {
		return a.graph.nodes[ag.Spec.Spawn].Pos, nil
	}
	e, ok := a.graph.edges[ag.Edge]
	if !ok {
		return Point{}, fmt.Errorf("sim: agent %q on unknown edge %q", id, ag.Edge)
	}
	return PointAlong(e.Geometry, e.Length, ag.Distance), nil
}

func (a *Agents) count() int {
	return len(a.agents)
}
