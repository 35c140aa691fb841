package graphview

import (
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/AMANN-N/smart-practice/internal/ui/theme"
)

// maxLabel bounds how many cells a node label may take.
const maxLabel = 24

// styleRules maps node status to its style. Unknown statuses render as
// pending.
type styleRules struct {
	status map[string]lipgloss.Style
	pulse  lipgloss.Style
	focus  lipgloss.Style
	edge   lipgloss.Style
}

func newStyleRules() styleRules {
	return styleRules{
		status: map[string]lipgloss.Style{
			StatusPending: lipgloss.NewStyle().
				Foreground(theme.Text).
				Background(theme.NodePending),
			StatusActive: lipgloss.NewStyle().
				Foreground(theme.Text).
				Background(theme.NodeActive).
				Bold(true),
			StatusMastered: lipgloss.NewStyle().
				Foreground(theme.NodeMasteredText).
				Background(theme.NodeMastered).
				Bold(true),
		},
		pulse: lipgloss.NewStyle().
			Foreground(theme.BgDark).
			Background(theme.NodeActiveBorder).
			Bold(true),
		focus: lipgloss.NewStyle().Underline(true),
		edge:  lipgloss.NewStyle().Foreground(theme.EdgeColor),
	}
}

// StyleFor returns the style rule applied to status.
func (g *View) StyleFor(status string) lipgloss.Style {
	if s, ok := g.styles.status[status]; ok {
		return s
	}
	return g.styles.status[StatusPending]
}

func (g *View) nodeStyle(n Node) lipgloss.Style {
	s := g.StyleFor(n.Status)
	if n.Status == StatusActive && g.Pulsing() && g.pulsePhase == PulseExpand {
		s = g.styles.pulse
	}
	if n.ID == g.focus {
		s = s.Inherit(g.styles.focus).Underline(true)
	}
	return s
}

type cell struct {
	r     rune
	style int // index into the palette; 0 is unstyled
}

// View renders the graph into a width x height block.
func (g *View) View(width, height int) string {
	if !g.initialized || width <= 0 || height <= 0 {
		return ""
	}
	if len(g.nodes) == 0 {
		msg := "Loading graph…"
		if !g.loading {
			msg = "No topic selected"
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Hint.Render(msg))
	}

	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}
	palette := []lipgloss.Style{lipgloss.NewStyle(), g.styles.edge}

	proj := g.projection(width, height)
	centers := make(map[string][2]int, len(g.nodes))
	for _, n := range g.nodes {
		x, y := proj(n.X, n.Y)
		centers[n.ID] = [2]int{x, y}
	}

	// Labels are placed first so edge arrows can stop short of them.
	spans := make(map[string]span, len(g.nodes))
	labels := make(map[string][]rune, len(g.nodes))
	for _, n := range g.nodes {
		label := []rune(" " + truncate(n.Label, maxLabel) + " ")
		c := centers[n.ID]
		start := c[0] - len(label)/2
		start = max(0, min(start, width-len(label)))
		labels[n.ID] = label
		spans[n.ID] = span{start: start, end: start + len(label), y: c[1]}
	}

	inBounds := func(x, y int) bool { return y >= 0 && y < height && x >= 0 && x < width }
	for _, e := range g.edges {
		a, okA := centers[e.Source]
		b, okB := centers[e.Target]
		if !okA || !okB {
			continue
		}
		var pts [][2]int
		line(a[0], a[1], b[0], b[1], func(x, y int) {
			pts = append(pts, [2]int{x, y})
			if inBounds(x, y) {
				grid[y][x] = cell{r: '·', style: 1}
			}
		})
		// The arrowhead sits on the last cell outside the target label.
		target := spans[e.Target]
		for i := len(pts) - 1; i >= 0; i-- {
			x, y := pts[i][0], pts[i][1]
			if target.contains(x, y) || spans[e.Source].contains(x, y) {
				continue
			}
			if inBounds(x, y) {
				grid[y][x] = cell{r: arrow(b[0]-x, b[1]-y), style: 1}
			}
			break
		}
	}

	for _, n := range g.nodes {
		palette = append(palette, g.nodeStyle(n))
		styleIdx := len(palette) - 1

		sp := spans[n.ID]
		if sp.y < 0 || sp.y >= height {
			continue
		}
		for i, r := range labels[n.ID] {
			x := sp.start + i
			if x >= 0 && x < width {
				grid[sp.y][x] = cell{r: r, style: styleIdx}
			}
		}
	}

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		renderRow(&b, row, palette)
	}
	return b.String()
}

// span is the row segment a node label occupies, end exclusive.
type span struct {
	start, end, y int
}

func (s span) contains(x, y int) bool {
	return y == s.y && x >= s.start && x < s.end
}

// arrow picks the glyph pointing along (dx, dy). Cells are about twice as
// tall as they are wide.
func arrow(dx, dy int) rune {
	if abs(dx) >= 2*abs(dy) {
		if dx < 0 {
			return '←'
		}
		return '→'
	}
	if dy < 0 {
		return '↑'
	}
	return '↓'
}

// projection maps layout space onto the cell grid, honoring the camera.
func (g *View) projection(width, height int) func(x, y float64) (int, int) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, n := range g.nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}

	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	spanX, spanY := (maxX-minX)/g.zoom, (maxY-minY)/g.zoom
	for _, n := range g.nodes {
		if n.ID == g.focus {
			cx, cy = n.X, n.Y
		}
	}

	// Leave room for half a label on each side.
	margin := maxLabel/2 + 1
	usableW := float64(max(width-1-2*margin, 0))
	usableH := float64(max(height-1, 0))

	return func(x, y float64) (int, int) {
		fx, fy := 0.5, 0.5
		if spanX > 0 {
			fx = (x-cx)/spanX + 0.5
		}
		if spanY > 0 {
			fy = (y-cy)/spanY + 0.5
		}
		col := margin + int(math.Round(fx*usableW))
		if usableW == 0 {
			col = width / 2
		}
		return col, int(math.Round(fy * usableH))
	}
}

func renderRow(b *strings.Builder, row []cell, palette []lipgloss.Style) {
	var (
		run   strings.Builder
		style = row[0].style
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if style == 0 {
			b.WriteString(run.String())
		} else {
			b.WriteString(palette[style].Render(run.String()))
		}
		run.Reset()
	}
	for _, c := range row {
		if c.style != style {
			flush()
			style = c.style
		}
		run.WriteRune(c.r)
	}
	flush()
}

// line visits every cell on the segment from (x0, y0) to (x1, y1),
// endpoints included.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
