package graphview

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/AMANN-N/smart-practice/internal/client"
)

// Node statuses recognized by the style rules.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusMastered = "mastered"
)

// Placeholder node shown when the knowledge graph is empty.
const (
	PlaceholderID    = "dummy"
	PlaceholderLabel = "Empty Knowledge Base"
)

// Pulse phases.
const (
	PulseExpand = iota
	PulseContract
)

// Node is one concept of the knowledge graph.
type Node struct {
	ID     string
	Label  string
	Status string
	Kind   string // "topic" or "leaf"
	X, Y   float64
}

// Edge is a prerequisite link from Source to Target.
type Edge struct {
	Source string
	Target string
}

// Options configures a View.
type Options struct {
	Layouter      Layouter
	Logger        *zap.Logger
	Timeout       time.Duration
	PulseInterval time.Duration
}

// View renders the mastery graph of the active topic and pulses its active
// nodes. It never calls back into the session controller.
type View struct {
	svc      client.KnowledgeService
	layouter Layouter
	log      *zap.Logger
	timeout  time.Duration
	interval time.Duration

	initialized bool
	styles      styleRules

	nodes []Node
	edges []Edge

	// gen identifies the latest LoadData call; older results are dropped.
	gen     int
	loading bool
	laidOut bool

	// pulseID is the running pulse loop, zero when stopped.
	pulseID     int
	lastPulseID int
	pulsePhase  int

	focus string
	zoom  float64
}

// New creates a View. Call Init before LoadData.
func New(svc client.KnowledgeService, opts Options) *View {
	if opts.Layouter == nil {
		opts.Layouter = DefaultEadesLayouter()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.PulseInterval <= 0 {
		opts.PulseInterval = 800 * time.Millisecond
	}
	return &View{
		svc:      svc,
		layouter: opts.Layouter,
		log:      opts.Logger,
		timeout:  opts.Timeout,
		interval: opts.PulseInterval,
		zoom:     1,
	}
}

// Init builds the status style rules. Calling it again is a no-op. An
// empty graph is a valid initial state.
func (g *View) Init() {
	if g.initialized {
		return
	}
	g.styles = newStyleRules()
	g.initialized = true
}

// Initialized reports whether Init has run.
func (g *View) Initialized() bool { return g.initialized }

// LoadData stops the pulse and fetches the graph. The element set is
// replaced only once the fetch succeeds.
func (g *View) LoadData() tea.Cmd {
	if !g.initialized {
		return nil
	}

	g.StopPulse()
	g.gen++
	g.loading = true

	gen := g.gen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()
		data, err := g.svc.Graph(ctx)
		return graphLoadedMsg{gen: gen, Data: data, Err: err}
	}
}

// Update applies fetch, layout and pulse messages. Unknown messages are
// ignored.
func (g *View) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case graphLoadedMsg:
		return g.handleLoaded(msg)
	case layoutDoneMsg:
		return g.handleLayout(msg)
	case pulseTickMsg:
		return g.handlePulse(msg)
	}
	return nil
}

func (g *View) handleLoaded(msg graphLoadedMsg) tea.Cmd {
	if msg.gen != g.gen {
		return nil
	}
	g.loading = false

	if msg.Err != nil {
		g.log.Warn("graph load failed", zap.Int("gen", msg.gen), zap.Error(msg.Err))
		// The previous graph is still in place. Finish its layout if a
		// newer load cut it short, otherwise resume its pulse.
		if len(g.nodes) > 0 && !g.laidOut {
			return g.layoutCmd()
		}
		return g.StartPulse()
	}

	nodes, edges := convert(msg.Data)

	// Remove all, then add all.
	g.nodes = nil
	g.edges = nil
	g.laidOut = false
	if g.focus != "" && !containsNode(nodes, g.focus) {
		g.Fit()
	}

	if len(nodes) == 0 {
		g.nodes = []Node{{ID: PlaceholderID, Label: PlaceholderLabel, Status: StatusPending}}
		g.laidOut = true
		g.log.Debug("graph empty, showing placeholder", zap.Int("gen", msg.gen))
		return nil
	}

	g.nodes = nodes
	g.edges = edges
	g.log.Debug("graph loaded", zap.Int("gen", msg.gen), zap.Int("nodes", len(nodes)), zap.Int("edges", len(edges)))

	return g.layoutCmd()
}

// layoutCmd lays out the attached element set as its own command.
func (g *View) layoutCmd() tea.Cmd {
	layouter, gen := g.layouter, g.gen
	nodes, edges := g.Nodes(), g.Edges()
	return func() tea.Msg {
		pos, err := layouter.Layout(nodes, edges)
		return layoutDoneMsg{gen: gen, Positions: pos, Err: err}
	}
}

func (g *View) handleLayout(msg layoutDoneMsg) tea.Cmd {
	if msg.gen != g.gen {
		return nil
	}

	pos := msg.Positions
	if msg.Err != nil {
		g.log.Warn("layout failed, using grid", zap.Error(msg.Err))
		pos = GridLayout(g.nodes)
	}
	for i := range g.nodes {
		p, ok := pos[g.nodes[i].ID]
		if !ok {
			continue
		}
		g.nodes[i].X, g.nodes[i].Y = p.X, p.Y
	}
	g.laidOut = true
	return g.StartPulse()
}

// StartPulse starts a fresh pulse loop on the active nodes, stopping any
// loop already running. With no active node it does nothing.
func (g *View) StartPulse() tea.Cmd {
	g.StopPulse()
	if len(g.ActiveNodes()) == 0 {
		return nil
	}
	g.lastPulseID++
	g.pulseID = g.lastPulseID
	g.pulsePhase = PulseExpand
	return g.tick(g.pulseID)
}

// StopPulse stops the running pulse loop. Its pending tick terminates the
// chain when it arrives.
func (g *View) StopPulse() {
	g.pulseID = 0
	g.pulsePhase = PulseExpand
}

// Reset clears the graph and drops every fetch and layout still in
// flight. It is used when the session is abandoned.
func (g *View) Reset() {
	g.StopPulse()
	g.gen++
	g.loading = false
	g.laidOut = false
	g.nodes = nil
	g.edges = nil
	g.Fit()
}

func (g *View) handlePulse(msg pulseTickMsg) tea.Cmd {
	if msg.id == 0 || msg.id != g.pulseID {
		return nil
	}
	if g.pulsePhase == PulseExpand {
		g.pulsePhase = PulseContract
	} else {
		g.pulsePhase = PulseExpand
	}
	return g.tick(msg.id)
}

func (g *View) tick(id int) tea.Cmd {
	return tea.Tick(g.interval, func(time.Time) tea.Msg {
		return pulseTickMsg{id: id}
	})
}

// HighlightNode centers the camera on id and zooms in. It reports false
// when no such node is shown. The pulse is unaffected.
func (g *View) HighlightNode(id string) bool {
	if !containsNode(g.nodes, id) {
		return false
	}
	g.focus = id
	g.zoom = 2
	return true
}

// HighlightNext moves the highlight to the node after the current one,
// wrapping around, and returns its ID.
func (g *View) HighlightNext() string {
	if len(g.nodes) == 0 {
		return ""
	}
	next := 0
	for i, n := range g.nodes {
		if n.ID == g.focus {
			next = (i + 1) % len(g.nodes)
			break
		}
	}
	g.HighlightNode(g.nodes[next].ID)
	return g.focus
}

// Fit resets the camera to show the whole graph.
func (g *View) Fit() {
	g.focus = ""
	g.zoom = 1
}

// Nodes returns a copy of the rendered nodes.
func (g *View) Nodes() []Node { return append([]Node(nil), g.nodes...) }

// Edges returns a copy of the rendered edges.
func (g *View) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// ActiveNodes returns the IDs of nodes with status active.
func (g *View) ActiveNodes() []string {
	var ids []string
	for _, n := range g.nodes {
		if n.Status == StatusActive {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Pulsing reports whether a pulse loop is running.
func (g *View) Pulsing() bool { return g.pulseID != 0 }

// PulsePhase returns PulseExpand or PulseContract.
func (g *View) PulsePhase() int { return g.pulsePhase }

// Loading reports whether a fetch is outstanding.
func (g *View) Loading() bool { return g.loading }

// Focus returns the highlighted node ID, empty when fitted.
func (g *View) Focus() string { return g.focus }

// convert maps the wire payload onto nodes and edges, dropping edges whose
// endpoints are not in the payload and duplicate node IDs.
func convert(data *client.GraphData) ([]Node, []Edge) {
	if data == nil {
		return nil, nil
	}

	var (
		nodes []Node
		edges []Edge
		seen  = make(map[string]bool)
	)
	for _, el := range data.Elements {
		if el.IsEdge() {
			continue
		}
		d := el.Data
		if d.ID == "" || seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		label := d.Label
		if label == "" {
			label = d.ID
		}
		status := d.Status
		if status == "" {
			status = StatusPending
		}
		nodes = append(nodes, Node{ID: d.ID, Label: label, Status: status, Kind: d.Type})
	}
	for _, el := range data.Elements {
		if !el.IsEdge() {
			continue
		}
		d := el.Data
		if !seen[d.Source] || !seen[d.Target] {
			continue
		}
		edges = append(edges, Edge{Source: d.Source, Target: d.Target})
	}
	return nodes, edges
}

func containsNode(nodes []Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}
