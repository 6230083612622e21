package layout

import (
	"fmt"
	"strconv"

	"n8n-optimizer/src/core/domain"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is one drawable connection between two arranged nodes.
// Output is the output group of the port, e.g. 0 for true and 1 for false on an IF node.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Output int    `json:"output"`
	From   Point  `json:"from"`
	To     Point  `json:"to"`
	Path   string `json:"path"`
}

// Edges derives the drawable connections. Sources are walked in node order,
// ports in document order, output groups in order and targets in list order. A connection whose
// source or target was never arranged produces no edge.
func Edges(wf domain.Workflow, arranged []domain.ArrangedNode) []Edge {
	points := make(map[string]Point, len(arranged))
	for _, node := range arranged {
		if _, seen := points[node.ID]; seen {
			continue
		}
		points[node.ID] = Point{X: node.X, Y: node.Y}
	}

	edges := make([]Edge, 0, wf.Connections.Count())
	seenSources := make(map[string]bool, len(wf.Nodes))
	for _, node := range wf.Nodes {
		if seenSources[node.ID] {
			continue
		}
		seenSources[node.ID] = true

		from, ok := points[node.ID]
		if !ok {
			continue
		}
		for _, port := range wf.Connections.Ports(node.ID) {
			for output, group := range wf.Connections.Port(node.ID, port) {
				for _, target := range group {
					to, ok := points[target.Node]
					if !ok {
						continue
					}
					edges = append(edges, Edge{
						Source: node.ID,
						Target: target.Node,
						Type:   port,
						Output: output,
						From:   from,
						To:     to,
						Path:   curve(from, to),
					})
				}
			}
		}
	}
	return edges
}

// curve is a cubic bezier with both control points on the horizontal midpoint
func curve(from, to Point) string {
	mid := (from.X + to.X) / 2
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(from.X), num(from.Y),
		num(mid), num(from.Y),
		num(mid), num(to.Y),
		num(to.X), num(to.Y),
	)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
