package layout

import (
	"strings"

	"n8n-optimizer/src/core/domain"
)

const (
	LevelSpacing = 250
	SlotSpacing  = 120
	OriginX      = 150
	OriginY      = 100

	GridColumns  = 3
	GridSpacingX = 200
	GridSpacingY = 120
)

// position is where the placement pass put a node id
type position struct {
	x, y  float64
	level int
}

// cell drops the level so positions compare by coordinates only
func (p position) cell() position {
	return position{x: p.x, y: p.y}
}

// Arrange assigns canvas coordinates to every node of the workflow.
// Nodes are placed depth first from the inferred roots, one column per level;
// the n-th root takes slot n of level 0. Targets that name no node take no slot.
// Nodes no root reaches go on a fixed grid by their original index, moving to
// the next free cell when a placed node already sits there.
// A repeated node id is placed once; its later copies go to the grid.
// The result keeps the input node order.
func Arrange(wf domain.Workflow) []domain.ArrangedNode {
	known := make(map[string]bool, len(wf.Nodes))
	for _, node := range wf.Nodes {
		known[node.ID] = true
	}

	placed := make(map[string]position, len(wf.Nodes))
	levels := make(map[int]int)

	var place func(id string, level int)
	place = func(id string, level int) {
		if _, visited := placed[id]; visited || !known[id] {
			return
		}
		placed[id] = position{
			x:     float64(level*LevelSpacing + OriginX),
			y:     float64(levels[level]*SlotSpacing + OriginY),
			level: level,
		}
		levels[level]++

		for _, target := range wf.Connections.TargetsOf(id) {
			place(target.Node, level+1)
		}
	}

	for i, root := range Roots(wf) {
		if _, visited := placed[root]; visited {
			continue
		}
		levels[0] = i
		place(root, 0)
	}

	occupied := make(map[position]bool, len(placed))
	for _, pos := range placed {
		occupied[pos.cell()] = true
	}

	// a duplicated id keeps its placement on the first node only
	claimed := make(map[string]bool, len(wf.Nodes))
	arranged := make([]domain.ArrangedNode, 0, len(wf.Nodes))
	for i, node := range wf.Nodes {
		pos, ok := placed[node.ID]
		if !ok || claimed[node.ID] {
			pos = gridPosition(i)
			for cell := i + 1; occupied[pos.cell()]; cell++ {
				pos = gridPosition(cell)
			}
			occupied[pos.cell()] = true
		}
		claimed[node.ID] = true
		arranged = append(arranged, domain.ArrangedNode{
			WorkflowNode: node,
			X:            pos.x,
			Y:            pos.y,
			Level:        pos.level,
		})
	}
	return arranged
}

// Roots returns the ids the placement starts from, in node order.
// A root is a webhook or trigger node, or a node nothing connects into.
// When no node qualifies every node is a root.
func Roots(wf domain.Workflow) []string {
	incoming := wf.Connections.Incoming()

	var roots []string
	for _, node := range wf.Nodes {
		if isTrigger(node.Type) || !incoming[node.ID] {
			roots = append(roots, node.ID)
		}
	}
	if len(roots) > 0 {
		return roots
	}

	roots = make([]string, 0, len(wf.Nodes))
	for _, node := range wf.Nodes {
		roots = append(roots, node.ID)
	}
	return roots
}

func isTrigger(nodeType string) bool {
	return nodeType == "Webhook" || strings.Contains(nodeType, "Trigger")
}

func gridPosition(index int) position {
	return position{
		x: float64((index%GridColumns)*GridSpacingX + OriginX),
		y: float64((index/GridColumns)*GridSpacingY + OriginY),
	}
}
