package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/wormtrack/internal/core"
	"github.com/vovakirdan/wormtrack/internal/sim"
)

const (
	hudHeight    = 2 // status line and separator
	footerHeight = 1
	margin       = 1
)

// viewport maps world coordinates onto a screen rectangle.
type viewport struct {
	area   core.Rect
	lo     sim.Point
	scaleX float64
	scaleY float64
}

func newViewport(area core.Rect, lo, hi sim.Point) viewport {
	s := area.FitScale(hi.X-lo.X, hi.Y-lo.Y)
	return viewport{area: area, lo: lo, scaleX: s, scaleY: s / core.CellAspect}
}

func (v viewport) project(p sim.Point) (int, int) {
	x := v.area.X + int(math.Round((p.X-v.lo.X)*v.scaleX))
	y := v.area.Y + int(math.Round((p.Y-v.lo.Y)*v.scaleY))
	return x, y
}

// wormColors maps simulation colors onto the screen palette.
var wormColors = map[sim.Color]core.Color{
	sim.ColorNone:   core.ColorWhite,
	sim.ColorOrange: core.ColorOrange,
	sim.ColorBlue:   core.ColorBrightBlue,
	sim.ColorGreen:  core.ColorBrightGreen,
	sim.ColorRed:    core.ColorBrightRed,
	sim.ColorYellow: core.ColorBrightYellow,
	sim.ColorPurple: core.ColorPurple,
	sim.ColorPink:   core.ColorMagenta,
}

// ScreenColor returns the screen color used for a worm or goal color.
func ScreenColor(c sim.Color) core.Color {
	if sc, ok := wormColors[c]; ok {
		return sc
	}
	return core.ColorWhite
}

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	g.renderHUD(dst)
	g.renderFooter(dst)

	if g.sim == nil {
		g.renderOverlay(dst, "Level failed to load", g.State().Message)
		return
	}

	area := core.NewRect(0, hudHeight, dst.Width(), dst.Height()-hudHeight-footerHeight).Inset(margin)
	if area.W < 10 || area.H < 4 {
		g.renderOverlay(dst, "Window too small", "Resize to continue")
		return
	}
	lo, hi := g.sim.Graph().Bounds()
	vp := newViewport(area, lo, hi)

	g.renderEdges(dst, vp)
	g.renderNodes(dst, vp)
	g.renderHazards(dst, vp)
	g.renderWorms(dst, vp)

	st := g.State()
	switch {
	case st.GameOver && st.Won:
		g.renderOverlay(dst, "Level complete "+stars(st.Tier), fmt.Sprintf("Score %d  |  R: play again  B: levels", st.Score))
	case st.GameOver:
		g.renderOverlay(dst, "Run failed: "+st.Message, "R: try again  B: levels")
	case st.Paused:
		g.renderOverlay(dst, "Paused", "P: continue")
	}
}

func stars(tier int) string {
	return strings.Repeat("★", tier) + strings.Repeat("☆", 3-tier)
}

func (g *Game) renderHUD(dst *core.Screen) {
	hud := " wormtrack | " + g.level.Name
	if g.sim != nil {
		hud += fmt.Sprintf(" | %5.1fs", g.sim.NowMs()/1000)
		if limit := g.sim.Definition().TimeLimitMs; limit > 0 {
			hud += fmt.Sprintf("/%.0fs", limit/1000)
		}
		hud += fmt.Sprintf(" | Arrived %d/%d | Score %d", g.sim.Arrived(), g.sim.Required(), g.State().Score)
		if id, ok := g.Selected(); ok {
			hud += fmt.Sprintf(" | Junction %d:%s", g.selected+1, id)
		}
	}
	dst.DrawTextWithColor(0, 0, hud, core.ColorCyan)
	for x := 0; x < dst.Width(); x++ {
		dst.SetWithColor(x, 1, '─', core.ColorGray)
	}
}

func (g *Game) renderFooter(dst *core.Screen) {
	controls := " Tab/←→: Select | 1-9: Junction | Space: Switch | R: Restart | P: Pause | B: Levels | Q: Quit"
	dst.DrawTextWithColor(0, dst.Height()-1, controls, core.ColorGray)
}

func (g *Game) renderEdges(dst *core.Screen, vp viewport) {
	graph := g.sim.Graph()
	routing := g.sim.Routing()

	active := make(map[sim.EdgeID]bool)
	for _, id := range g.junctions {
		if e, ok := routing.ActiveEdge(id); ok {
			active[e] = true
		}
	}

	for _, e := range graph.Edges() {
		color := core.ColorDarkGray
		if e.Width == sim.WidthNarrow {
			color = core.ColorGray
		}
		if active[e.ID] {
			color = core.ColorBrightWhite
		}
		geom, err := graph.EdgeGeometry(e.ID)
		if err != nil {
			continue
		}
		for i := 1; i < len(geom); i++ {
			x0, y0 := vp.project(geom[i-1])
			x1, y1 := vp.project(geom[i])
			dst.DrawLine(x0, y0, x1, y1, color)
		}
	}
}

func (g *Game) renderNodes(dst *core.Screen, vp viewport) {
	hotkeys := make(map[sim.NodeID]int, len(g.junctions))
	for i, id := range g.junctions {
		hotkeys[id] = i + 1
	}
	selected, _ := g.Selected()

	for _, n := range g.sim.Graph().Nodes() {
		x, y := vp.project(n.Pos)
		switch n.Kind {
		case sim.NodeSpawn:
			dst.SetWithColor(x, y, '◎', core.ColorGreen)
		case sim.NodeGoal:
			r := '●'
			if n.Size == sim.SizeLarge {
				r = '◉'
			}
			dst.SetWithColor(x, y, r, ScreenColor(n.Color))
		default:
			k, ok := hotkeys[n.ID]
			switch {
			case ok && n.ID == selected:
				dst.SetWithColor(x, y, '◆', core.ColorBrightYellow)
			case ok && k <= 9:
				dst.SetWithColor(x, y, rune('0'+k), core.ColorYellow)
			case ok:
				dst.SetWithColor(x, y, '◇', core.ColorYellow)
			default:
				dst.SetWithColor(x, y, '·', core.ColorGray)
			}
		}
	}
}

func (g *Game) renderHazards(dst *core.Screen, vp viewport) {
	graph := g.sim.Graph()
	mark := func(id sim.NodeID, r rune, c core.Color) {
		n, err := graph.Node(id)
		if err != nil {
			return
		}
		x, y := vp.project(n.Pos)
		dst.SetWithColor(x, y-1, r, c)
	}

	for _, h := range g.sim.Hazards() {
		switch {
		case h.Phase == sim.PhaseActive:
			mark(h.Target, '✖', core.ColorBrightRed)
		case h.Warned && h.Spec.Kind == sim.HazardPeriodicReroute:
			mark(h.Next, '↻', core.ColorBrightYellow)
		case h.Warned && h.Spec.Kind == sim.HazardIntermittentBlocker:
			mark(h.Target, '!', core.ColorBrightYellow)
		}
	}
	for _, o := range g.sim.Obstacles() {
		x, y := vp.project(o.Pos)
		dst.SetWithColor(x, y, '▓', core.ColorRed)
	}
}

func (g *Game) renderWorms(dst *core.Screen, vp viewport) {
	for _, a := range g.sim.Agents() {
		switch a.State {
		case sim.AgentPending, sim.AgentArrived:
			continue
		}
		p, err := g.sim.AgentPosition(a.Spec.ID)
		if err != nil {
			continue
		}
		x, y := vp.project(p)
		r := wormRune(a.Spec.Size)
		color := ScreenColor(a.Spec.Color)
		switch a.State {
		case sim.AgentJammed:
			r = '≈'
		case sim.AgentDead:
			r, color = '✗', core.ColorGray
		}
		dst.SetWithColor(x, y, r, color)
	}
}

func wormRune(s sim.Size) rune {
	switch s {
	case sim.SizeLarge:
		return '@'
	case sim.SizeMedium:
		return 'O'
	default:
		return 'o'
	}
}

// renderOverlay draws a centered message box.
func (g *Game) renderOverlay(dst *core.Screen, title, subtitle string) {
	w := max(len([]rune(title)), len([]rune(subtitle))) + 6
	h := 5
	box := core.NewRect((dst.Width()-w)/2, (dst.Height()-h)/2, w, h)
	dst.DrawRect(box, ' ')
	dst.DrawBox(box, core.ColorWhite)
	drawCentered(dst, box, box.Y+1, title, core.ColorBrightWhite)
	drawCentered(dst, box, box.Y+3, subtitle, core.ColorGray)
}

func drawCentered(dst *core.Screen, box core.Rect, y int, text string, c core.Color) {
	x := box.X + (box.W-len([]rune(text)))/2
	dst.DrawTextWithColor(x, y, text, c)
}
