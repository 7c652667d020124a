// ABOUTME: Transmission graph pushed by the pipeline: an ordered causal path for display.
// ABOUTME: Consumed only for rendering; the sole invariant is non-emptiness for eligibility.
package model

// GraphNode is one node in the transmission graph.
type GraphNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Type   string `json:"type,omitempty"`
	Impact string `json:"impact,omitempty"`
}

// GraphEdge links two graph nodes.
type GraphEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// Graph is the causal transmission graph for the current run.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Empty reports whether the graph has no nodes and should not be displayed.
func (g Graph) Empty() bool {
	return len(g.Nodes) == 0
}
