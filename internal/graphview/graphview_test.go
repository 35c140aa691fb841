package graphview

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMANN-N/smart-practice/internal/client"
)

// recordingLayouter places nodes on a line and remembers what it was given.
type recordingLayouter struct {
	calls [][]Node
	err   error
}

func (l *recordingLayouter) Layout(nodes []Node, _ []Edge) (map[string]Point, error) {
	l.calls = append(l.calls, nodes)
	if l.err != nil {
		return nil, l.err
	}
	out := make(map[string]Point, len(nodes))
	for i, n := range nodes {
		out[n.ID] = Point{X: float64(i * 10), Y: float64(i)}
	}
	return out, nil
}

func node(id, status string) client.GraphElement {
	return client.GraphElement{Group: client.GroupNodes, Data: client.ElementData{ID: id, Label: strings.ToUpper(id), Status: status}}
}

func edge(source, target string) client.GraphElement {
	return client.GraphElement{Group: client.GroupEdges, Data: client.ElementData{Source: source, Target: target}}
}

func graphOf(els ...client.GraphElement) *client.GraphData {
	return &client.GraphData{Elements: els}
}

func newTestView(t *testing.T) (*View, *client.MockService, *recordingLayouter) {
	t.Helper()
	svc := client.NewMockService()
	lay := &recordingLayouter{}
	g := New(svc, Options{Layouter: lay, PulseInterval: time.Hour})
	g.Init()
	return g, svc, lay
}

// load runs a full fetch and layout cycle. Pulse ticks are left unrun.
func load(t *testing.T, g *View) {
	t.Helper()
	cmd := g.LoadData()
	require.NotNil(t, cmd)
	next := g.Update(cmd())
	if next == nil {
		return
	}
	msg := next()
	if _, ok := msg.(layoutDoneMsg); ok {
		g.Update(msg)
	}
}

func ids(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestLoadDataBeforeInitIsNoop(t *testing.T) {
	g := New(client.NewMockService(), Options{})
	assert.False(t, g.Initialized())
	assert.Nil(t, g.LoadData())
}

func TestInitIsIdempotent(t *testing.T) {
	g, svc, _ := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive))
	load(t, g)

	g.Init()
	assert.True(t, g.Initialized())
	assert.Equal(t, []string{"a"}, ids(g.Nodes()))
}

func TestLoadDataReplacesElementSet(t *testing.T) {
	g, svc, _ := newTestView(t)

	svc.GraphResult = graphOf(node("a", StatusMastered), node("b", StatusActive), edge("a", "b"))
	load(t, g)
	require.Equal(t, []string{"a", "b"}, ids(g.Nodes()))
	require.Len(t, g.Edges(), 1)

	svc.GraphResult = graphOf(node("c", StatusActive), node("d", StatusPending), edge("c", "d"))
	load(t, g)

	assert.Equal(t, []string{"c", "d"}, ids(g.Nodes()))
	assert.Equal(t, []Edge{{Source: "c", Target: "d"}}, g.Edges())
}

func TestEmptyGraphShowsPlaceholderWithoutPulse(t *testing.T) {
	g, svc, lay := newTestView(t)
	svc.GraphResult = graphOf()

	load(t, g)

	nodes := g.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, PlaceholderID, nodes[0].ID)
	assert.Equal(t, PlaceholderLabel, nodes[0].Label)
	assert.Empty(t, g.Edges())
	assert.False(t, g.Pulsing())
	assert.Empty(t, lay.calls, "placeholder is not laid out")
}

func TestLayoutRunsOnAttachedNodes(t *testing.T) {
	g, svc, lay := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive), node("b", StatusPending))

	load(t, g)

	require.Len(t, lay.calls, 1)
	assert.Equal(t, []string{"a", "b"}, ids(lay.calls[0]))
	nodes := g.Nodes()
	assert.Equal(t, 10.0, nodes[1].X)
}

func TestLayoutFailureFallsBackToGrid(t *testing.T) {
	g, svc, lay := newTestView(t)
	lay.err = errors.New("boom")
	svc.GraphResult = graphOf(node("a", StatusPending), node("b", StatusPending), node("c", StatusPending))

	load(t, g)

	grid := GridLayout(g.Nodes())
	for _, n := range g.Nodes() {
		assert.Equal(t, grid[n.ID], Point{X: n.X, Y: n.Y}, n.ID)
	}
}

func TestPulseStartsOnlyWithActiveNodes(t *testing.T) {
	g, svc, _ := newTestView(t)

	svc.GraphResult = graphOf(node("a", StatusMastered), node("b", StatusPending))
	load(t, g)
	assert.False(t, g.Pulsing())

	svc.GraphResult = graphOf(node("a", StatusMastered), node("b", StatusActive))
	load(t, g)
	assert.True(t, g.Pulsing())
	assert.Equal(t, []string{"b"}, g.ActiveNodes())
}

func TestSinglePulseLoop(t *testing.T) {
	g, svc, _ := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive))
	load(t, g)
	first := g.pulseID
	require.NotZero(t, first)

	// Restarting replaces the loop; the old chain ends on its next tick.
	require.NotNil(t, g.StartPulse())
	second := g.pulseID
	assert.NotEqual(t, first, second)

	assert.Nil(t, g.Update(pulseTickMsg{id: first}))
	assert.Equal(t, PulseExpand, g.PulsePhase())

	assert.NotNil(t, g.Update(pulseTickMsg{id: second}))
	assert.Equal(t, PulseContract, g.PulsePhase())
	assert.NotNil(t, g.Update(pulseTickMsg{id: second}))
	assert.Equal(t, PulseExpand, g.PulsePhase())
}

func TestLoadDataStopsPulse(t *testing.T) {
	g, svc, _ := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive))
	load(t, g)
	old := g.pulseID

	cmd := g.LoadData()
	require.NotNil(t, cmd)
	assert.False(t, g.Pulsing())
	assert.True(t, g.Loading())
	assert.Nil(t, g.Update(pulseTickMsg{id: old}))
}

func TestStaleGenerationDropped(t *testing.T) {
	g, svc, _ := newTestView(t)

	svc.GraphResult = graphOf(node("old", StatusActive))
	stale := g.LoadData()
	staleMsg := stale()

	svc.GraphResult = graphOf(node("new", StatusActive))
	load(t, g)

	assert.Nil(t, g.Update(staleMsg))
	assert.Equal(t, []string{"new"}, ids(g.Nodes()))
}

func TestStaleLayoutDropped(t *testing.T) {
	g, svc, _ := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive), node("b", StatusPending))

	layoutCmd := g.Update(g.LoadData()())
	require.NotNil(t, layoutCmd)
	staleLayout := layoutCmd()

	load(t, g)
	before := g.Nodes()
	assert.Nil(t, g.Update(staleLayout))
	assert.Equal(t, before, g.Nodes())
}

func TestFailedLoadKeepsPreviousGraph(t *testing.T) {
	g, svc, _ := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive), node("b", StatusPending))
	load(t, g)

	svc.GraphErr = &client.NetworkError{Op: client.OpGraph, Err: errors.New("refused")}
	cmd := g.Update(g.LoadData()())

	assert.Equal(t, []string{"a", "b"}, ids(g.Nodes()))
	assert.False(t, g.Loading())
	assert.True(t, g.Pulsing(), "pulse resumes on the kept graph")
	assert.NotNil(t, cmd)
}

func TestFailedLoadFinishesInterruptedLayout(t *testing.T) {
	g, svc, lay := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive), node("b", StatusPending))

	// Attach but never deliver the layout, then fail the next load.
	require.NotNil(t, g.Update(g.LoadData()()))
	svc.GraphErr = errors.New("boom")
	cmd := g.Update(g.LoadData()())
	require.NotNil(t, cmd)

	msg, ok := cmd().(layoutDoneMsg)
	require.True(t, ok)
	g.Update(msg)
	assert.Len(t, lay.calls, 1, "only the recovery layout ran")
	assert.True(t, g.Pulsing())
}

func TestResetDropsInFlightResults(t *testing.T) {
	g, svc, _ := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive), node("b", StatusPending))
	load(t, g)
	require.True(t, g.HighlightNode("a"))

	// A refresh is in flight, and another has fetched but not laid out.
	fetch := g.LoadData()
	layoutCmd := g.Update(fetch())
	require.NotNil(t, layoutCmd)
	pending := g.LoadData()

	g.Reset()
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
	assert.Empty(t, g.Focus())
	assert.False(t, g.Pulsing())
	assert.False(t, g.Loading())

	assert.Nil(t, g.Update(pending()))
	assert.Nil(t, g.Update(layoutCmd()))
	assert.Empty(t, g.Nodes())
	assert.False(t, g.Pulsing())
	assert.Contains(t, g.View(40, 10), "No topic selected")
}

func TestConvertDropsDanglingEdgesAndDuplicates(t *testing.T) {
	nodes, edges := convert(graphOf(
		node("a", ""),
		node("a", StatusActive),
		client.GraphElement{Data: client.ElementData{ID: "b"}},
		edge("a", "b"),
		edge("a", "ghost"),
	))

	require.Len(t, nodes, 2)
	assert.Equal(t, StatusPending, nodes[0].Status)
	assert.Equal(t, "b", nodes[1].Label)
	assert.Equal(t, []Edge{{Source: "a", Target: "b"}}, edges)
}

func TestHighlight(t *testing.T) {
	g, svc, _ := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive), node("b", StatusPending), node("c", StatusPending))
	load(t, g)

	assert.False(t, g.HighlightNode("ghost"))
	assert.Empty(t, g.Focus())

	assert.True(t, g.HighlightNode("b"))
	assert.Equal(t, "b", g.Focus())
	assert.True(t, g.Pulsing(), "highlight leaves the pulse alone")

	assert.Equal(t, "c", g.HighlightNext())
	assert.Equal(t, "a", g.HighlightNext())

	g.Fit()
	assert.Empty(t, g.Focus())
	assert.Equal(t, "a", g.HighlightNext())
}

func TestReloadClearsMissingFocus(t *testing.T) {
	g, svc, _ := newTestView(t)
	svc.GraphResult = graphOf(node("a", StatusActive), node("b", StatusPending))
	load(t, g)
	require.True(t, g.HighlightNode("b"))

	svc.GraphResult = graphOf(node("c", StatusActive))
	load(t, g)
	assert.Empty(t, g.Focus())
}

func TestViewRendersLabels(t *testing.T) {
	g, svc, _ := newTestView(t)

	assert.Contains(t, g.View(40, 10), "No topic selected")

	svc.GraphResult = graphOf(node("a", StatusMastered), node("b", StatusActive), edge("a", "b"))
	load(t, g)

	out := g.View(60, 12)
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "B")
	assert.Len(t, strings.Split(out, "\n"), 12)

	assert.Empty(t, New(svc, Options{}).View(60, 12), "uninitialized view renders nothing")
}

func TestViewRendersPlaceholder(t *testing.T) {
	g, svc, _ := newTestView(t)
	svc.GraphResult = graphOf()
	load(t, g)

	assert.Contains(t, g.View(60, 8), PlaceholderLabel)
}

func TestStyleForUnknownStatusIsPending(t *testing.T) {
	g, _, _ := newTestView(t)
	assert.Equal(t, g.StyleFor(StatusPending).Render("x"), g.StyleFor("weird").Render("x"))
}

// rowLayouter places nodes left to right on one row.
type rowLayouter struct{}

func (rowLayouter) Layout(nodes []Node, _ []Edge) (map[string]Point, error) {
	out := make(map[string]Point, len(nodes))
	for i, n := range nodes {
		out[n.ID] = Point{X: float64(i)}
	}
	return out, nil
}

func TestViewMarksEdgeTarget(t *testing.T) {
	svc := client.NewMockService()
	g := New(svc, Options{Layouter: rowLayouter{}, PulseInterval: time.Hour})
	g.Init()
	svc.GraphResult = graphOf(node("a", StatusMastered), node("b", StatusPending), edge("a", "b"))
	load(t, g)

	// a sits left of b, so the edge arrives from the left.
	rows := strings.Split(g.View(80, 12), "\n")
	var row string
	for _, r := range rows {
		if strings.Contains(r, "B") {
			row = r
		}
	}
	require.NotEmpty(t, row)
	assert.Contains(t, row, "→")
	assert.Less(t, strings.Index(row, "→"), strings.Index(row, " B "))
	assert.NotContains(t, strings.Join(rows, "\n"), "←")
}

func TestArrow(t *testing.T) {
	assert.Equal(t, '→', arrow(5, 1))
	assert.Equal(t, '←', arrow(-5, 0))
	assert.Equal(t, '↓', arrow(1, 3))
	assert.Equal(t, '↑', arrow(0, -2))
}

func TestLine(t *testing.T) {
	var pts [][2]int
	line(0, 0, 3, 1, func(x, y int) { pts = append(pts, [2]int{x, y}) })

	require.NotEmpty(t, pts)
	assert.Equal(t, [2]int{0, 0}, pts[0])
	assert.Equal(t, [2]int{3, 1}, pts[len(pts)-1])
	assert.Len(t, pts, 4)
}
