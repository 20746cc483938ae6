// Package sim implements the worm routing simulation: a discrete-time,
// tick-driven engine that moves worms along a directed track graph, resolves
// branch routing when they reach nodes, runs timed hazards and derives the
// outcome and score of a run.
//
// The package is UI-agnostic and deterministic for a given seed and input
// sequence. It performs no I/O.
package sim

import "strings"

// Identifiers are plain strings taken from level data.
type (
	NodeID   string
	EdgeID   string
	AgentID  string
	HazardID string
)

// NodeKind classifies a track node.
type NodeKind uint8

const (
	NodePlain NodeKind = iota
	NodeSpawn
	NodeJunction
	NodeMerge
	NodeGoal
)

// String returns the level-file name of the kind.
func (k NodeKind) String() string {
	switch k {
	case NodePlain:
		return "plain"
	case NodeSpawn:
		return "spawn"
	case NodeJunction:
		return "junction"
	case NodeMerge:
		return "merge"
	case NodeGoal:
		return "goal"
	default:
		return "unknown"
	}
}

// ParseNodeKind converts a level-file string to a NodeKind.
func ParseNodeKind(s string) (NodeKind, bool) {
	switch strings.ToLower(s) {
	case "plain", "":
		return NodePlain, true
	case "spawn":
		return NodeSpawn, true
	case "junction", "branch":
		return NodeJunction, true
	case "merge":
		return NodeMerge, true
	case "goal":
		return NodeGoal, true
	default:
		return NodePlain, false
	}
}

// Width is the width class of an edge.
type Width uint8

const (
	WidthNormal Width = iota
	WidthNarrow
)

func (w Width) String() string {
	if w == WidthNarrow {
		return "narrow"
	}
	return "normal"
}

// ParseWidth converts a level-file string to a Width.
func ParseWidth(s string) (Width, bool) {
	switch strings.ToLower(s) {
	case "normal", "":
		return WidthNormal, true
	case "narrow":
		return WidthNarrow, true
	default:
		return WidthNormal, false
	}
}

// Size is the size class of a worm. On a goal, SizeAny means the goal
// accepts every size.
type Size uint8

const (
	SizeAny Size = iota
	SizeSmall
	SizeMedium
	SizeLarge
)

func (s Size) String() string {
	switch s {
	case SizeAny:
		return "any"
	case SizeSmall:
		return "small"
	case SizeMedium:
		return "medium"
	case SizeLarge:
		return "large"
	default:
		return "unknown"
	}
}

// Fits reports whether a worm of this size can travel an edge of width w.
// Narrow edges reject large worms and nothing else.
func (s Size) Fits(w Width) bool {
	return w != WidthNarrow || s != SizeLarge
}

// ParseSize converts a level-file string to a Size.
func ParseSize(s string) (Size, bool) {
	switch strings.ToLower(s) {
	case "", "any":
		return SizeAny, true
	case "small", "s":
		return SizeSmall, true
	case "medium", "m":
		return SizeMedium, true
	case "large", "l":
		return SizeLarge, true
	default:
		return SizeAny, false
	}
}

// Color is the color tag shared by worms and goals.
type Color uint8

const (
	ColorNone Color = iota
	ColorOrange
	ColorBlue
	ColorGreen
	ColorRed
	ColorYellow
	ColorPurple
	ColorPink
)

func (c Color) String() string {
	switch c {
	case ColorOrange:
		return "orange"
	case ColorBlue:
		return "blue"
	case ColorGreen:
		return "green"
	case ColorRed:
		return "red"
	case ColorYellow:
		return "yellow"
	case ColorPurple:
		return "purple"
	case ColorPink:
		return "pink"
	default:
		return "none"
	}
}

// ParseColor converts a level-file string to a Color.
// Returns ColorNone and false if the string is not recognized.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(s) {
	case "orange", "o":
		return ColorOrange, true
	case "blue", "b":
		return ColorBlue, true
	case "green", "g":
		return ColorGreen, true
	case "red", "r":
		return ColorRed, true
	case "yellow", "y":
		return ColorYellow, true
	case "purple", "p":
		return ColorPurple, true
	case "pink", "k":
		return ColorPink, true
	default:
		return ColorNone, false
	}
}

// Node is an immutable track node.
type Node struct {
	ID    NodeID
	Kind  NodeKind
	Pos   Point
	Color Color // goals only
	Size  Size  // goals only; SizeAny accepts every worm
}

// Edge is an immutable directed track segment. Geometry is traversed from
// the first point to the last.
type Edge struct {
	ID       EdgeID
	From     NodeID
	To       NodeID
	Geometry []Point
	Length   float64
	Width    Width
}

// Branch declares the ordered out-edges of a routing node and the index
// active when a run starts.
type Branch struct {
	Node    NodeID
	Out     []EdgeID
	Default int
}
