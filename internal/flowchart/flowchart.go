// Package flowchart walks generated flowchart graphs into bounded,
// renderable runs. Graphs may contain loops and merges; a shared visited
// set guarantees termination.
package flowchart

import (
	"errors"
	"fmt"
)

var (
	ErrNoStart        = errors.New("flowchart has no start node")
	ErrMultipleStarts = errors.New("flowchart has more than one start node")
	ErrUnknownTarget  = errors.New("flowchart connection points to an unknown node")
	ErrDuplicateID    = errors.New("flowchart node id is not unique")
)

// NodeType is the closed set of flowchart node shapes.
type NodeType string

const (
	Start    NodeType = "start"
	End      NodeType = "end"
	Process  NodeType = "process"
	Decision NodeType = "decision"
	IO       NodeType = "io"
)

func (t NodeType) Valid() bool {
	switch t {
	case Start, End, Process, Decision, IO:
		return true
	}
	return false
}

// wantConnections returns the number of outgoing connections a
// well-formed node of type t has.
func (t NodeType) wantConnections() int {
	switch t {
	case End:
		return 0
	case Decision:
		return 2
	case Start, Process, IO:
		return 1
	default:
		panic(fmt.Sprintf("flowchart: unhandled node type %q", t))
	}
}

// Connection is a directed edge, optionally labelled (decision branches).
type Connection struct {
	TargetID string `json:"targetId"`
	Label    string `json:"label,omitempty"`
}

// Node is a flowchart node.
type Node struct {
	ID          string       `json:"id"`
	Type        NodeType     `json:"type"`
	Content     string       `json:"content"`
	Connections []Connection `json:"connections"`
}

// Step is one entry of a Run. A plain step renders Node. A back reference
// marks a path that reaches an already rendered node; Node is that target.
// A step with Branches is a fork whose branches follow Node.
type Step struct {
	Node     Node
	BackRef  bool
	Branches []Branch
}

// Branch is one outgoing path of a fork.
type Branch struct {
	Label string
	Run   Run
}

// Run is a straight-line sequence of steps.
type Run []Step

// Walk finds the unique start node and walks the graph into a Run. Nodes
// are emitted at most once; any later path into a visited node becomes a
// back reference.
func Walk(nodes []Node) (Run, error) {
	arena := make(map[string]Node, len(nodes))
	var starts []string
	for _, n := range nodes {
		if _, dup := arena[n.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, n.ID)
		}
		arena[n.ID] = n
		if n.Type == Start {
			starts = append(starts, n.ID)
		}
	}
	switch len(starts) {
	case 0:
		return nil, ErrNoStart
	case 1:
	default:
		return nil, fmt.Errorf("%w: %v", ErrMultipleStarts, starts)
	}
	for _, n := range nodes {
		for _, c := range n.Connections {
			if _, ok := arena[c.TargetID]; !ok {
				return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownTarget, n.ID, c.TargetID)
			}
		}
	}

	w := walker{arena: arena, visited: make(map[string]bool, len(nodes))}
	return w.run(starts[0]), nil
}

type walker struct {
	arena   map[string]Node
	visited map[string]bool
}

// run chains single-exit nodes until it reaches a fork, a dead end or a
// visited node.
func (w *walker) run(id string) Run {
	var run Run
	for {
		n := w.arena[id]
		if w.visited[id] {
			return append(run, Step{Node: n, BackRef: true})
		}
		w.visited[id] = true

		switch len(n.Connections) {
		case 0:
			return append(run, Step{Node: n})
		case 1:
			run = append(run, Step{Node: n})
			id = n.Connections[0].TargetID
		default:
			step := Step{Node: n, Branches: make([]Branch, len(n.Connections))}
			for i, c := range n.Connections {
				step.Branches[i] = Branch{Label: c.Label, Run: w.run(c.TargetID)}
			}
			return append(run, step)
		}
	}
}

// Visited returns the ids of rendered nodes in render order. Back
// references are not included.
func (r Run) Visited() []string {
	var ids []string
	r.each(func(s Step) {
		if !s.BackRef {
			ids = append(ids, s.Node.ID)
		}
	})
	return ids
}

// Len counts all steps, back references included.
func (r Run) Len() int {
	n := 0
	r.each(func(Step) { n++ })
	return n
}

func (r Run) each(fn func(Step)) {
	for _, s := range r {
		fn(s)
		for _, b := range s.Branches {
			b.Run.each(fn)
		}
	}
}

// Issue is a structural problem found by Validate.
type Issue struct {
	NodeID  string
	Message string
}

func (i Issue) String() string {
	if i.NodeID == "" {
		return i.Message
	}
	return i.NodeID + ": " + i.Message
}

// Validate reports every structural problem: start count, unknown types,
// connection counts and dangling targets. An empty result means the graph
// is well formed.
func Validate(nodes []Node) []Issue {
	var issues []Issue
	ids := make(map[string]bool, len(nodes))
	starts := 0
	for _, n := range nodes {
		if ids[n.ID] {
			issues = append(issues, Issue{n.ID, "duplicate id"})
		}
		ids[n.ID] = true
		if n.Type == Start {
			starts++
		}
	}
	switch {
	case starts == 0:
		issues = append(issues, Issue{"", "no start node"})
	case starts > 1:
		issues = append(issues, Issue{"", fmt.Sprintf("%d start nodes, want 1", starts)})
	}

	for _, n := range nodes {
		if !n.Type.Valid() {
			issues = append(issues, Issue{n.ID, fmt.Sprintf("unknown type %q", n.Type)})
			continue
		}
		if want := n.Type.wantConnections(); len(n.Connections) != want {
			issues = append(issues, Issue{n.ID, fmt.Sprintf("%s node has %d connections, want %d", n.Type, len(n.Connections), want)})
		}
		for _, c := range n.Connections {
			if !ids[c.TargetID] {
				issues = append(issues, Issue{n.ID, fmt.Sprintf("connection to unknown node %q", c.TargetID)})
			}
		}
	}
	return issues
}
