package graphview

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
)

// Point is a node position in layout space. Units are arbitrary; the
// renderer scales the bounding box onto the terminal.
type Point struct {
	X, Y float64
}

// Layouter computes positions for a node set. Implementations must be
// safe to call from a command goroutine and must not retain the slices.
type Layouter interface {
	Layout(nodes []Node, edges []Edge) (map[string]Point, error)
}

// EadesLayouter is a force-directed Layouter backed by gonum's Eades
// optimizer.
type EadesLayouter struct {
	Updates   int
	Repulsion float64
	Rate      float64
	Theta     float64

	// Seed fixes the initial placement so reloads of the same graph do not
	// jump around. Zero uses the global source.
	Seed uint64
}

// DefaultEadesLayouter returns the tuning used by gonum's own examples.
func DefaultEadesLayouter() EadesLayouter {
	return EadesLayouter{Updates: 30, Repulsion: 1, Rate: 0.05, Theta: 0.2, Seed: 1}
}

// ErrDegenerateLayout is returned when the optimizer produced unusable
// coordinates.
var ErrDegenerateLayout = errors.New("degenerate layout")

func (l EadesLayouter) Layout(nodes []Node, edges []Edge) (map[string]Point, error) {
	ids := make(map[string]int64, len(nodes))
	g := simple.NewUndirectedGraph()
	for _, n := range nodes {
		if _, dup := ids[n.ID]; dup {
			continue
		}
		id := int64(len(ids))
		ids[n.ID] = id
		g.AddNode(simple.Node(id))
	}

	// The optimizer needs at least two bodies to push apart.
	if len(ids) < 2 {
		return GridLayout(nodes), nil
	}

	for _, e := range edges {
		from, okFrom := ids[e.Source]
		to, okTo := ids[e.Target]
		if !okFrom || !okTo || from == to {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	eades := layout.EadesR2{
		Updates:   l.Updates,
		Repulsion: l.Repulsion,
		Rate:      l.Rate,
		Theta:     l.Theta,
	}
	if l.Seed != 0 {
		eades.Src = rand.NewPCG(l.Seed, l.Seed)
	}
	o := layout.NewOptimizerR2(g, eades.Update)
	for o.Update() {
	}

	out := make(map[string]Point, len(ids))
	for name, id := range ids {
		v := o.Coord2(id)
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return nil, ErrDegenerateLayout
		}
		out[name] = Point{X: v.X, Y: v.Y}
	}
	return out, nil
}

// GridLayout places nodes row by row on a square grid in input order.
// Duplicate IDs keep their first position.
func GridLayout(nodes []Node) map[string]Point {
	cols := int(math.Ceil(math.Sqrt(float64(len(nodes)))))
	if cols == 0 {
		cols = 1
	}
	out := make(map[string]Point, len(nodes))
	i := 0
	for _, n := range nodes {
		if _, dup := out[n.ID]; dup {
			continue
		}
		out[n.ID] = Point{X: float64(i % cols), Y: float64(i / cols)}
		i++
	}
	return out
}
