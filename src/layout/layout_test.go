package layout

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"n8n-optimizer/src/core/domain"
)

func decode(t *testing.T, raw string) domain.Workflow {
	t.Helper()
	var wf domain.Workflow
	require.NoError(t, json.Unmarshal([]byte(raw), &wf))
	return wf
}

func node(id, nodeType string) domain.WorkflowNode {
	return domain.WorkflowNode{ID: id, Type: nodeType}
}

func byID(arranged []domain.ArrangedNode) map[string]domain.ArrangedNode {
	out := make(map[string]domain.ArrangedNode, len(arranged))
	for _, n := range arranged {
		out[n.ID] = n
	}
	return out
}

func TestArrangeWebhookToHTTPRequest(t *testing.T) {
	wf := decode(t, `{"nodes":[{"id":"start","type":"Webhook"},{"id":"http1","type":"HTTP Request"}],
		"connections":{"start":{"main":[{"node":"http1","type":"main","index":0}]}}}`)

	arranged := Arrange(wf)
	require.Len(t, arranged, 2)

	start, http := arranged[0], arranged[1]
	assert.Equal(t, "start", start.ID)
	assert.Equal(t, 0, start.Level)
	assert.Equal(t, 150.0, start.X)
	assert.Equal(t, 100.0, start.Y)

	assert.Equal(t, "http1", http.ID)
	assert.Equal(t, 1, http.Level)
	assert.Equal(t, 250.0, http.X-start.X)
	assert.Equal(t, 100.0, http.Y)
}

func TestArrangeIsDeterministic(t *testing.T) {
	wf := domain.SampleWorkflow()

	first := Compute(wf)
	second := Compute(wf)

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Edges, second.Edges)
	assert.Equal(t, first.Canvas, second.Canvas)
}

func TestArrangedNodesStayInsideCanvas(t *testing.T) {
	wide := domain.Workflow{Connections: domain.Connections{}}
	wide.Nodes = append(wide.Nodes, node("root", "Manual Trigger"))
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("n%d", i)
		wide.Nodes = append(wide.Nodes, node(id, "Function"))
		if i == 0 {
			wide.Connections.Add("root", domain.PortMain, id)
		} else {
			wide.Connections.Add(fmt.Sprintf("n%d", i-1), domain.PortMain, id)
			wide.Connections.Add("root", domain.PortMain, id)
		}
	}

	cases := map[string]domain.Workflow{
		"sample": domain.SampleWorkflow(),
		"wide":   wide,
		"single": {Nodes: []domain.WorkflowNode{node("only", "Set")}},
	}

	for name, wf := range cases {
		t.Run(name, func(t *testing.T) {
			l := Compute(wf)
			for _, n := range l.Nodes {
				assert.GreaterOrEqual(t, n.X, 0.0)
				assert.GreaterOrEqual(t, n.Y, 0.0)
				assert.LessOrEqual(t, n.X, l.Canvas.Width, n.ID)
				assert.LessOrEqual(t, n.Y, l.Canvas.Height, n.ID)
			}
		})
	}
}

func TestSameLevelNodesUseDistinctSlots(t *testing.T) {
	wf := domain.Workflow{
		Nodes: []domain.WorkflowNode{
			node("root", "Webhook"),
			node("a", "Function"),
			node("b", "Function"),
			node("c", "Function"),
		},
		Connections: domain.Connections{},
	}
	wf.Connections.Add("root", domain.PortMain, "a")
	wf.Connections.Add("root", domain.PortMain, "b")
	wf.Connections.Add("root", domain.PortMain, "c")

	nodes := byID(Arrange(wf))

	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, 1, nodes[id].Level)
		assert.Equal(t, 400.0, nodes[id].X)
	}
	assert.Equal(t, 100.0, nodes["a"].Y)
	assert.Equal(t, 120.0, nodes["b"].Y-nodes["a"].Y)
	assert.Equal(t, 240.0, nodes["c"].Y-nodes["a"].Y)
}

func TestMultipleRootsTakeSuccessiveSlots(t *testing.T) {
	wf := domain.Workflow{
		Nodes: []domain.WorkflowNode{
			node("hook", "Webhook"),
			node("cron", "Schedule Trigger"),
			node("lonely", "Set"),
		},
	}

	nodes := byID(Arrange(wf))

	assert.Equal(t, 100.0, nodes["hook"].Y)
	assert.Equal(t, 220.0, nodes["cron"].Y)
	assert.Equal(t, 340.0, nodes["lonely"].Y)
	for _, n := range nodes {
		assert.Equal(t, 0, n.Level)
		assert.Equal(t, 150.0, n.X)
	}
}

func TestArrangeTerminatesOnCycles(t *testing.T) {
	wf := domain.Workflow{
		Nodes:       []domain.WorkflowNode{node("A", "Function"), node("B", "Function")},
		Connections: domain.Connections{},
	}
	wf.Connections.Add("A", domain.PortMain, "B")
	wf.Connections.Add("B", domain.PortMain, "A")

	assert.Equal(t, []string{"A", "B"}, Roots(wf))

	arranged := Arrange(wf)
	require.Len(t, arranged, 2)
	assert.Equal(t, "A", arranged[0].ID)
	assert.Equal(t, 0, arranged[0].Level)
	assert.Equal(t, "B", arranged[1].ID)
	assert.Equal(t, 1, arranged[1].Level)

	edges := Edges(wf, arranged)
	assert.Len(t, edges, 2)
}

func TestUnreachableNodesFallBackToGrid(t *testing.T) {
	wf := domain.Workflow{
		Nodes: []domain.WorkflowNode{
			node("A", "Function"),
			node("B", "Function"),
			node("C", "Set"),
			node("D", "Function"),
		},
		Connections: domain.Connections{},
	}
	wf.Connections.Add("A", domain.PortMain, "B")
	wf.Connections.Add("B", domain.PortMain, "A")
	wf.Connections.Add("D", domain.PortMain, "A")
	wf.Connections.Add("B", domain.PortMain, "D")

	assert.Equal(t, []string{"C"}, Roots(wf))

	nodes := byID(Arrange(wf))
	assert.Equal(t, domain.ArrangedNode{WorkflowNode: node("C", "Set"), X: 150, Y: 100}, nodes["C"])

	// A's own cell (150,100) is taken by C, so A and B each move one cell on
	assert.Equal(t, 350.0, nodes["A"].X)
	assert.Equal(t, 100.0, nodes["A"].Y)
	assert.Equal(t, 550.0, nodes["B"].X)
	assert.Equal(t, 100.0, nodes["B"].Y)
	assert.Equal(t, 150.0, nodes["D"].X)
	assert.Equal(t, 220.0, nodes["D"].Y)
	assert.Equal(t, 0, nodes["D"].Level)
}

func assertNoOverlap(t *testing.T, arranged []domain.ArrangedNode) {
	t.Helper()
	seen := make(map[Point]string, len(arranged))
	for _, n := range arranged {
		p := Point{X: n.X, Y: n.Y}
		if other, taken := seen[p]; taken {
			t.Errorf("%s and %s share (%v, %v)", other, n.ID, n.X, n.Y)
		}
		seen[p] = n.ID
	}
}

func TestGridNodesSkipOccupiedCells(t *testing.T) {
	wf := domain.Workflow{
		Nodes: []domain.WorkflowNode{
			node("A", "Function"),
			node("B", "Function"),
			node("C", "Function"),
			node("D", "Function"),
		},
		Connections: domain.Connections{},
	}
	wf.Connections.Add("C", domain.PortMain, "D")
	wf.Connections.Add("D", domain.PortMain, "C")

	arranged := Arrange(wf)
	assertNoOverlap(t, arranged)

	nodes := byID(arranged)
	// A and B are the only roots; the C<->D cycle is unreachable
	assert.Equal(t, Point{X: 150, Y: 100}, Point{X: nodes["A"].X, Y: nodes["A"].Y})
	assert.Equal(t, Point{X: 150, Y: 220}, Point{X: nodes["B"].X, Y: nodes["B"].Y})
	assert.Equal(t, Point{X: 550, Y: 100}, Point{X: nodes["C"].X, Y: nodes["C"].Y})
	// D's own cell (150,220) is B's, so it takes the next one
	assert.Equal(t, Point{X: 350, Y: 220}, Point{X: nodes["D"].X, Y: nodes["D"].Y})
}

func TestNoOverlapWhenGridMeetsPlacedNodes(t *testing.T) {
	wf := domain.Workflow{
		Nodes: []domain.WorkflowNode{
			node("hook", "Webhook"),
			node("x", "Function"),
			node("y", "Function"),
			node("z", "Function"),
			node("w", "Function"),
		},
		Connections: domain.Connections{},
	}
	wf.Connections.Add("hook", domain.PortMain, "w")
	wf.Connections.Add("x", domain.PortMain, "y")
	wf.Connections.Add("y", domain.PortMain, "z")
	wf.Connections.Add("z", domain.PortMain, "x")

	arranged := Arrange(wf)
	assertNoOverlap(t, arranged)

	nodes := byID(arranged)
	assert.Equal(t, Point{X: 150, Y: 100}, Point{X: nodes["hook"].X, Y: nodes["hook"].Y})
	assert.Equal(t, Point{X: 350, Y: 100}, Point{X: nodes["x"].X, Y: nodes["x"].Y})
	assert.Equal(t, Point{X: 550, Y: 100}, Point{X: nodes["y"].X, Y: nodes["y"].Y})
	assert.Equal(t, Point{X: 150, Y: 220}, Point{X: nodes["z"].X, Y: nodes["z"].Y})
	assert.Equal(t, Point{X: 400, Y: 100}, Point{X: nodes["w"].X, Y: nodes["w"].Y})
}

func TestRootsKeepTheirOwnSlot(t *testing.T) {
	wf := domain.Workflow{
		Nodes: []domain.WorkflowNode{
			node("A", "Function"),
			node("B", "Function"),
			node("C", "Function"),
			node("D", "Function"),
		},
		Connections: domain.Connections{},
	}
	wf.Connections.Add("A", domain.PortMain, "B")
	wf.Connections.Add("B", domain.PortMain, "A")
	wf.Connections.Add("C", domain.PortMain, "D")
	wf.Connections.Add("D", domain.PortMain, "C")

	assert.Equal(t, []string{"A", "B", "C", "D"}, Roots(wf))

	arranged := Arrange(wf)
	assertNoOverlap(t, arranged)

	nodes := byID(arranged)
	assert.Equal(t, 0, nodes["A"].Level)
	assert.Equal(t, 100.0, nodes["A"].Y)
	assert.Equal(t, 1, nodes["B"].Level)
	assert.Equal(t, 100.0, nodes["B"].Y)
	assert.Equal(t, 0, nodes["C"].Level)
	assert.Equal(t, 340.0, nodes["C"].Y)
	assert.Equal(t, 1, nodes["D"].Level)
	assert.Equal(t, 220.0, nodes["D"].Y)
}

func TestDanglingTargetsTakeNoSlot(t *testing.T) {
	wf := domain.Workflow{
		Nodes:       []domain.WorkflowNode{node("s", "Webhook"), node("b", "Set")},
		Connections: domain.Connections{},
	}
	wf.Connections.Add("s", domain.PortMain, "ghost")
	wf.Connections.Add("s", domain.PortMain, "b")

	nodes := byID(Arrange(wf))
	assert.Equal(t, 1, nodes["b"].Level)
	assert.Equal(t, 400.0, nodes["b"].X)
	assert.Equal(t, 100.0, nodes["b"].Y)
}

func TestDuplicateIDsArePlacedOnce(t *testing.T) {
	wf := domain.Workflow{
		Nodes: []domain.WorkflowNode{
			node("hook", "Webhook"),
			node("a", "Set"),
			node("a", "Set"),
		},
		Connections: domain.Connections{},
	}
	wf.Connections.Add("hook", domain.PortMain, "a")

	arranged := Arrange(wf)
	require.Len(t, arranged, 3)
	assertNoOverlap(t, arranged)

	assert.Equal(t, 400.0, arranged[1].X)
	assert.Equal(t, 1, arranged[1].Level)
	assert.Equal(t, 550.0, arranged[2].X)
	assert.Equal(t, 100.0, arranged[2].Y)
	assert.Equal(t, 0, arranged[2].Level)
}

func TestEdges(t *testing.T) {
	t.Run("follows port document order", func(t *testing.T) {
		wf := decode(t, `{"nodes":[{"id":"check","type":"IF"},{"id":"yes","type":"Set"},{"id":"no","type":"Set"}],
			"connections":{"check":{"false":[{"node":"no","type":"main","index":0}],"true":[{"node":"yes","type":"main","index":0}]}}}`)

		edges := Edges(wf, Arrange(wf))
		require.Len(t, edges, 2)
		assert.Equal(t, "false", edges[0].Type)
		assert.Equal(t, "no", edges[0].Target)
		assert.Equal(t, "true", edges[1].Type)
		assert.Equal(t, "yes", edges[1].Target)
	})

	t.Run("keeps the output group of each branch", func(t *testing.T) {
		wf := decode(t, `{"nodes":[{"id":"check","type":"IF"},{"id":"yes","type":"Set"},{"id":"no","type":"Set"}],
			"connections":{"check":{"main":[[{"node":"yes","type":"main","index":0}],[{"node":"no","type":"main","index":0}]]}}}`)

		edges := Edges(wf, Arrange(wf))
		require.Len(t, edges, 2)
		assert.Equal(t, "yes", edges[0].Target)
		assert.Equal(t, 0, edges[0].Output)
		assert.Equal(t, "no", edges[1].Target)
		assert.Equal(t, 1, edges[1].Output)
		assert.Equal(t, domain.PortMain, edges[1].Type)
	})

	t.Run("drops dangling targets and unknown sources", func(t *testing.T) {
		wf := domain.Workflow{
			Nodes:       []domain.WorkflowNode{node("a", "Webhook"), node("b", "Set")},
			Connections: domain.Connections{},
		}
		wf.Connections.Add("a", domain.PortMain, "ghost")
		wf.Connections.Add("a", domain.PortMain, "b")
		wf.Connections.Add("phantom", domain.PortMain, "b")

		edges := Edges(wf, Arrange(wf))
		require.Len(t, edges, 1)
		assert.Equal(t, "a", edges[0].Source)
		assert.Equal(t, "b", edges[0].Target)
	})

	t.Run("draws a cubic curve between the endpoints", func(t *testing.T) {
		wf := decode(t, `{"nodes":[{"id":"start","type":"Webhook"},{"id":"http1","type":"HTTP Request"}],
			"connections":{"start":{"main":[[{"node":"http1","type":"main","index":0}]]}}}`)

		edges := Edges(wf, Arrange(wf))
		require.Len(t, edges, 1)
		assert.Equal(t, Edge{
			Source: "start",
			Target: "http1",
			Type:   domain.PortMain,
			From:   Point{X: 150, Y: 100},
			To:     Point{X: 400, Y: 100},
			Path:   "M 150 100 C 275 100, 275 100, 400 100",
		}, edges[0])
	})
}

func TestBounds(t *testing.T) {
	assert.Equal(t, Canvas{Width: 800, Height: 400}, Bounds(nil))

	arranged := []domain.ArrangedNode{
		{X: 150, Y: 100},
		{X: 900, Y: 460},
	}
	assert.Equal(t, Canvas{Width: 1100, Height: 560}, Bounds(arranged))
}

func TestComputeEmptyWorkflow(t *testing.T) {
	l := Compute(domain.Workflow{})

	assert.Empty(t, l.Nodes)
	assert.Empty(t, l.Edges)
	assert.Empty(t, l.Styles)
	assert.Equal(t, Canvas{Width: 800, Height: 400}, l.Canvas)
}

func TestComputeIncludesStylesForPresentTypes(t *testing.T) {
	l := Compute(domain.SampleWorkflow())

	assert.Contains(t, l.Styles, "Webhook")
	assert.Contains(t, l.Styles, "HTTP Request")
	assert.NotContains(t, l.Styles, "Discord")
}
