package domain

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PortMain is the default output port of an n8n node
const PortMain = "main"

// Target is a single connection end: the node an output feeds into
type Target struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Targets is everything behind one output port, grouped by output index the
// way n8n writes it: [[{...}], [], [{...}]]. An IF node keeps its true and false
// branches in groups 0 and 1. The flat form [{...}] is read as a single group.
// A null group is kept as nil so the document encodes back unchanged.
type Targets [][]Target

// UnmarshalJSON accepts the nested n8n form and the flat form
func (t *Targets) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Targets, 0, len(raw))
	flat := -1
	for _, item := range raw {
		trimmed := bytes.TrimSpace(item)
		switch {
		case bytes.Equal(trimmed, []byte("null")):
			out = append(out, nil)
		case len(trimmed) > 0 && trimmed[0] == '[':
			group := []Target{}
			if err := json.Unmarshal(trimmed, &group); err != nil {
				return err
			}
			out = append(out, group)
		default:
			var target Target
			if err := json.Unmarshal(trimmed, &target); err != nil {
				return err
			}
			if flat < 0 {
				flat = len(out)
				out = append(out, []Target{})
			}
			out[flat] = append(out[flat], target)
		}
	}
	*t = out
	return nil
}

// All returns the targets of every group in order
func (t Targets) All() []Target {
	var all []Target
	for _, group := range t {
		all = append(all, group...)
	}
	return all
}

// Outputs maps output port names to their targets, keeping document order
type Outputs = orderedmap.OrderedMap[string, Targets]

// NewOutputs returns an empty port map
func NewOutputs() *Outputs {
	return orderedmap.New[string, Targets]()
}

// Connections is keyed by source node id
type Connections map[string]*Outputs

// Add appends a main-typed connection from -> to on output 0 of the given port
func (c Connections) Add(from, port, to string) {
	c.AddOutput(from, port, 0, to)
}

// AddOutput appends a main-typed connection from -> to on one output group of a port
func (c Connections) AddOutput(from, port string, output int, to string) {
	outputs, ok := c[from]
	if !ok || outputs == nil {
		outputs = NewOutputs()
		c[from] = outputs
	}
	targets, _ := outputs.Get(port)
	for len(targets) <= output {
		targets = append(targets, []Target{})
	}
	targets[output] = append(targets[output], Target{Node: to, Type: PortMain, Index: 0})
	outputs.Set(port, targets)
}

// Ports returns the output port names of a source node in document order
func (c Connections) Ports(from string) []string {
	outputs := c[from]
	if outputs == nil {
		return nil
	}
	ports := make([]string, 0, outputs.Len())
	for pair := outputs.Oldest(); pair != nil; pair = pair.Next() {
		ports = append(ports, pair.Key)
	}
	return ports
}

// Port returns the grouped targets behind one output port
func (c Connections) Port(from, port string) Targets {
	outputs := c[from]
	if outputs == nil {
		return nil
	}
	targets, _ := outputs.Get(port)
	return targets
}

// TargetsOf returns every target of a source node, ports in document order
// and groups in output order
func (c Connections) TargetsOf(from string) []Target {
	outputs := c[from]
	if outputs == nil {
		return nil
	}
	var all []Target
	for pair := outputs.Oldest(); pair != nil; pair = pair.Next() {
		all = append(all, pair.Value.All()...)
	}
	return all
}

// Count is the total number of targets over all sources and ports
func (c Connections) Count() int {
	total := 0
	for _, outputs := range c {
		if outputs == nil {
			continue
		}
		for pair := outputs.Oldest(); pair != nil; pair = pair.Next() {
			total += len(pair.Value.All())
		}
	}
	return total
}

// Incoming returns the set of node ids that are targeted by any connection
func (c Connections) Incoming() map[string]bool {
	incoming := make(map[string]bool)
	for _, outputs := range c {
		if outputs == nil {
			continue
		}
		for pair := outputs.Oldest(); pair != nil; pair = pair.Next() {
			for _, target := range pair.Value.All() {
				incoming[target.Node] = true
			}
		}
	}
	return incoming
}
