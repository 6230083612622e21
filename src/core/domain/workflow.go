package domain

import (
	"encoding/json"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// WorkflowNode is a single n8n node as found in an uploaded document.
// Position is informational only; the layout engine computes its own.
// Extra holds every field not modelled here (typeVersion, credentials,
// disabled, ...) so a decoded node encodes back without losing them.
type WorkflowNode struct {
	ID         string                     `json:"id"`
	Name       string                     `json:"name,omitempty"`
	Type       string                     `json:"type"`
	Position   []float64                  `json:"position,omitempty"`
	Parameters map[string]interface{}     `json:"parameters,omitempty"`
	Extra      map[string]json.RawMessage `json:"-"`
}

var nodeFields = []string{"id", "name", "type", "position", "parameters"}

type workflowNodeFields WorkflowNode

func (n *WorkflowNode) UnmarshalJSON(data []byte) error {
	var fields workflowNodeFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, nodeFields...)
	if err != nil {
		return err
	}
	*n = WorkflowNode(fields)
	n.Extra = extra
	return nil
}

func (n WorkflowNode) MarshalJSON() ([]byte, error) {
	return marshalFields(n.fields(), n.Extra)
}

// fields lists the modelled fields in n8n's order. Empty but present
// position and parameters are kept.
func (n WorkflowNode) fields() *orderedmap.OrderedMap[string, interface{}] {
	fields := orderedmap.New[string, interface{}]()
	fields.Set("id", n.ID)
	if n.Name != "" {
		fields.Set("name", n.Name)
	}
	fields.Set("type", n.Type)
	if n.Position != nil {
		fields.Set("position", n.Position)
	}
	if n.Parameters != nil {
		fields.Set("parameters", n.Parameters)
	}
	return fields
}

// Workflow is the node + connection graph of one automation.
// Extra holds the top-level fields not modelled here (name, settings, pinData, ...).
type Workflow struct {
	Nodes       []WorkflowNode             `json:"nodes"`
	Connections Connections                `json:"connections"`
	Meta        map[string]interface{}     `json:"meta,omitempty"`
	Extra       map[string]json.RawMessage `json:"-"`
}

var workflowFields = []string{"nodes", "connections", "meta"}

type workflowDocument Workflow

func (w *Workflow) UnmarshalJSON(data []byte) error {
	var doc workflowDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	extra, err := extraFields(data, workflowFields...)
	if err != nil {
		return err
	}
	*w = Workflow(doc)
	w.Extra = extra
	return nil
}

func (w Workflow) MarshalJSON() ([]byte, error) {
	fields := orderedmap.New[string, interface{}]()
	fields.Set("nodes", w.Nodes)
	fields.Set("connections", w.Connections)
	if w.Meta != nil {
		fields.Set("meta", w.Meta)
	}
	return marshalFields(fields, w.Extra)
}

// FindNode returns the first node with the given id
func (w Workflow) FindNode(id string) (WorkflowNode, bool) {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return WorkflowNode{}, false
}

// HasNode reports whether a node with the given id exists
func (w Workflow) HasNode(id string) bool {
	_, ok := w.FindNode(id)
	return ok
}

// ArrangedNode is a node with the coordinates assigned by the layout engine
type ArrangedNode struct {
	WorkflowNode
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Level int     `json:"level"`
}

var arrangedFields = []string{"x", "y", "level"}

// MarshalJSON writes the node fields followed by the coordinates.
// It shadows the one promoted from WorkflowNode.
func (a ArrangedNode) MarshalJSON() ([]byte, error) {
	fields := a.WorkflowNode.fields()
	fields.Set("x", a.X)
	fields.Set("y", a.Y)
	fields.Set("level", a.Level)
	return marshalFields(fields, a.Extra)
}

func (a *ArrangedNode) UnmarshalJSON(data []byte) error {
	var node WorkflowNode
	if err := json.Unmarshal(data, &node); err != nil {
		return err
	}
	var coords struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Level int     `json:"level"`
	}
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	for _, key := range arrangedFields {
		delete(node.Extra, key)
	}
	if len(node.Extra) == 0 {
		node.Extra = nil
	}
	*a = ArrangedNode{WorkflowNode: node, X: coords.X, Y: coords.Y, Level: coords.Level}
	return nil
}

// extraFields returns the members of a JSON object other than known, or nil
func extraFields(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, key := range known {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// marshalFields encodes fields followed by extra in key order.
// Modelled fields win over an extra field of the same name.
func marshalFields(fields *orderedmap.OrderedMap[string, interface{}], extra map[string]json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, taken := fields.Get(key); taken {
			continue
		}
		fields.Set(key, extra[key])
	}
	return json.Marshal(fields)
}
