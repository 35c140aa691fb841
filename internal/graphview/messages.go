package graphview

import "github.com/AMANN-N/smart-practice/internal/client"

// graphLoadedMsg is sent when a knowledge graph fetch completes.
type graphLoadedMsg struct {
	gen  int
	Data *client.GraphData
	Err  error
}

// layoutDoneMsg is sent when a layout pass over generation gen finishes.
type layoutDoneMsg struct {
	gen       int
	Positions map[string]Point
	Err       error
}

// pulseTickMsg advances pulse loop id by one phase.
type pulseTickMsg struct {
	id int
}
