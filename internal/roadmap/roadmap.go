package roadmap

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrNodeNotFound is returned when an update targets an id not in the tree.
var ErrNodeNotFound = errors.New("roadmap node not found")

// ErrNotLeaf is returned when a status edit targets a node with children.
var ErrNotLeaf = errors.New("status of a node with sub-topics is derived from them")

// Status is a node's learning status.
type Status string

const (
	NotStarted Status = "not-started"
	InProgress Status = "in-progress"
	Completed  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case NotStarted, InProgress, Completed:
		return true
	}
	return false
}

// Next cycles not-started → in-progress → completed → not-started.
func (s Status) Next() Status {
	switch s {
	case NotStarted:
		return InProgress
	case InProgress:
		return Completed
	default:
		return NotStarted
	}
}

// ParseStatus accepts the canonical names plus "todo", "doing" and "done".
func ParseStatus(s string) (Status, error) {
	switch s {
	case string(NotStarted), "todo":
		return NotStarted, nil
	case string(InProgress), "doing":
		return InProgress, nil
	case string(Completed), "done":
		return Completed, nil
	}
	return "", fmt.Errorf("unknown status %q (want not-started, in-progress or completed)", s)
}

// GeneratedNode is the state-free node shape the Generator returns.
type GeneratedNode struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Resources   []string        `json:"resources"`
	SubNodes    []GeneratedNode `json:"subNodes,omitempty"`
}

// Node is a stateful roadmap node. An internal node's Status is derived
// from its children; only leaf status is authoritative.
type Node struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Resources   []string `json:"resources"`
	Status      Status   `json:"status"`
	Notes       string   `json:"notes"`
	IsExpanded  bool     `json:"isExpanded"`
	SubNodes    []Node   `json:"subNodes"`
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return len(n.SubNodes) == 0 }

// newID is swapped in tests for deterministic ids.
var newID = uuid.NewString

// Hydrate assigns fresh ids depth-first and initial state to generated
// nodes, producing a consistent tree.
func Hydrate(gen []GeneratedNode) []Node {
	return Recompute(hydrate(gen))
}

func hydrate(gen []GeneratedNode) []Node {
	nodes := make([]Node, len(gen))
	for i, g := range gen {
		resources := g.Resources
		if resources == nil {
			resources = []string{}
		}
		nodes[i] = Node{
			ID:          newID(),
			Title:       g.Title,
			Description: g.Description,
			Resources:   resources,
			Status:      NotStarted,
		}
		nodes[i].SubNodes = hydrate(g.SubNodes)
	}
	return nodes
}

// Patch lists the user-editable fields. Nil fields are left unchanged.
type Patch struct {
	Status     *Status
	Notes      *string
	IsExpanded *bool
}

func (p Patch) apply(n Node) Node {
	if p.Status != nil {
		n.Status = *p.Status
	}
	if p.Notes != nil {
		n.Notes = *p.Notes
	}
	if p.IsExpanded != nil {
		n.IsExpanded = *p.IsExpanded
	}
	return n
}

// UpdateNode applies patch to the first node with id in depth-first order.
// Only the slices on the path to the node are copied; the input tree is
// not modified. The result must go through Recompute before use.
func UpdateNode(tree []Node, id string, patch Patch) ([]Node, error) {
	out, ok := updateIn(tree, id, patch)
	if !ok {
		return tree, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return out, nil
}

func updateIn(nodes []Node, id string, patch Patch) ([]Node, bool) {
	for i := range nodes {
		if nodes[i].ID == id {
			out := slices.Clone(nodes)
			out[i] = patch.apply(out[i])
			return out, true
		}
		if sub, ok := updateIn(nodes[i].SubNodes, id, patch); ok {
			out := slices.Clone(nodes)
			out[i].SubNodes = sub
			return out, true
		}
	}
	return nodes, false
}

// Recompute derives every internal node's status bottom-up: completed when
// all children are completed, in-progress when any child has started, and
// not-started otherwise. It is idempotent and returns a new tree.
func Recompute(tree []Node) []Node {
	if tree == nil {
		return nil
	}
	out := make([]Node, len(tree))
	for i, n := range tree {
		out[i] = recomputeNode(n)
	}
	return out
}

func recomputeNode(n Node) Node {
	if n.IsLeaf() {
		if n.SubNodes == nil {
			n.SubNodes = []Node{}
		}
		return n
	}
	n.SubNodes = Recompute(n.SubNodes)
	n.Status = derive(n.SubNodes)
	return n
}

func derive(children []Node) Status {
	allDone, anyStarted := true, false
	for _, c := range children {
		if c.Status != Completed {
			allDone = false
		}
		if c.Status != NotStarted {
			anyStarted = true
		}
	}
	switch {
	case allDone:
		return Completed
	case anyStarted:
		return InProgress
	default:
		return NotStarted
	}
}

// Apply is UpdateNode followed by Recompute.
func Apply(tree []Node, id string, patch Patch) ([]Node, error) {
	out, err := UpdateNode(tree, id, patch)
	if err != nil {
		return tree, err
	}
	return Recompute(out), nil
}

// SetLeafStatus sets the status of the leaf id and recomputes the tree.
// Internal nodes are rejected with ErrNotLeaf since Recompute would
// overwrite the edit.
func SetLeafStatus(tree []Node, id string, status Status) ([]Node, error) {
	n, ok := Find(tree, id)
	if !ok {
		return tree, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if !n.IsLeaf() {
		return tree, fmt.Errorf("%w: %s (%s)", ErrNotLeaf, id, n.Title)
	}
	return Apply(tree, id, Patch{Status: &status})
}

// Progress counts completed nodes over all nodes, internal ones included.
type Progress struct {
	Completed int
	Total     int
}

// Percent returns the completed share in [0, 100].
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// ProgressOf walks the whole tree.
func ProgressOf(tree []Node) Progress {
	var p Progress
	Walk(tree, func(n Node, _ int) bool {
		p.Total++
		if n.Status == Completed {
			p.Completed++
		}
		return true
	})
	return p
}

// Walk visits nodes depth-first in pre-order. fn returns false to skip the
// node's children.
func Walk(tree []Node, fn func(n Node, depth int) bool) {
	walk(tree, 0, fn)
}

func walk(nodes []Node, depth int, fn func(Node, int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walk(n.SubNodes, depth+1, fn)
		}
	}
}

// Find returns the first node with id in depth-first order.
func Find(tree []Node, id string) (Node, bool) {
	var found Node
	var ok bool
	Walk(tree, func(n Node, _ int) bool {
		if ok {
			return false
		}
		if n.ID == id {
			found, ok = n, true
			return false
		}
		return true
	})
	return found, ok
}
