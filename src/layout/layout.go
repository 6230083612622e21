package layout

import (
	"n8n-optimizer/src/core/domain"
	"n8n-optimizer/src/nodestyle"
)

// Layout is everything a client needs to render a workflow
type Layout struct {
	Nodes  []domain.ArrangedNode      `json:"nodes"`
	Edges  []Edge                     `json:"edges"`
	Canvas Canvas                     `json:"canvas"`
	Styles map[string]nodestyle.Style `json:"styles"`
}

// Compute arranges the workflow and derives its edges, canvas and styles
func Compute(wf domain.Workflow) Layout {
	arranged := Arrange(wf)

	types := make([]string, 0, len(wf.Nodes))
	for _, node := range wf.Nodes {
		types = append(types, node.Type)
	}

	return Layout{
		Nodes:  arranged,
		Edges:  Edges(wf, arranged),
		Canvas: Bounds(arranged),
		Styles: nodestyle.For(types),
	}
}
