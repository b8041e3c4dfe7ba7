package flowchart

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func conn(ids ...string) []Connection {
	out := make([]Connection, len(ids))
	for i, id := range ids {
		out[i] = Connection{TargetID: id}
	}
	return out
}

func TestWalkStraightLine(t *testing.T) {
	nodes := []Node{
		{ID: "c", Type: End, Content: "done"},
		{ID: "a", Type: Start, Content: "begin", Connections: conn("b")},
		{ID: "b", Type: Process, Content: "x = 1", Connections: conn("c")},
	}
	run, err := Walk(nodes)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := run.Visited(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Visited = %v", got)
	}
}

func TestWalkDiamondMergeVisitsOnce(t *testing.T) {
	nodes := []Node{
		{ID: "A", Type: Start, Content: "start", Connections: conn("B")},
		{ID: "B", Type: Decision, Content: "x > 0", Connections: []Connection{
			{TargetID: "C1", Label: "Yes"},
			{TargetID: "C2", Label: "No"},
		}},
		{ID: "C1", Type: Process, Content: "pos", Connections: conn("D")},
		{ID: "C2", Type: Process, Content: "neg", Connections: conn("D")},
		{ID: "D", Type: End, Content: "end"},
	}
	run, err := Walk(nodes)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	visited := run.Visited()
	count := 0
	for _, id := range visited {
		if id == "D" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("D rendered %d times, want 1 (visited %v)", count, visited)
	}
	if len(visited) != 5 {
		t.Fatalf("Visited = %v, want all five nodes", visited)
	}

	fork := run[len(run)-1]
	if len(fork.Branches) != 2 {
		t.Fatalf("expected a 2-way fork, got %+v", fork)
	}
	second := fork.Branches[1].Run
	if last := second[len(second)-1]; !last.BackRef || last.Node.ID != "D" {
		t.Fatalf("second branch should end with a back reference to D, got %+v", last)
	}
}

func TestWalkLoopTerminates(t *testing.T) {
	nodes := []Node{
		{ID: "s", Type: Start, Content: "start", Connections: conn("i")},
		{ID: "i", Type: Process, Content: "i++", Connections: conn("d")},
		{ID: "d", Type: Decision, Content: "i < 10", Connections: []Connection{
			{TargetID: "i", Label: "Yes"},
			{TargetID: "e", Label: "No"},
		}},
		{ID: "e", Type: End, Content: "end"},
	}
	run, err := Walk(nodes)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if run.Len() > 2*len(nodes) {
		t.Fatalf("run has %d steps, want a bounded walk", run.Len())
	}
	out := Render(run, PlainStyles())
	if !strings.Contains(out, "connects back to i++") {
		t.Fatalf("render missing loop marker:\n%s", out)
	}
}

func TestWalkSelfLoop(t *testing.T) {
	nodes := []Node{
		{ID: "s", Type: Start, Content: "start", Connections: conn("p")},
		{ID: "p", Type: Process, Content: "spin", Connections: conn("p")},
	}
	run, err := Walk(nodes)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if run.Len() != 3 {
		t.Fatalf("Len = %d, want 3", run.Len())
	}
	if !run[2].BackRef {
		t.Fatalf("expected back reference, got %+v", run[2])
	}
}

func TestWalkErrors(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		want  error
	}{
		{"empty", nil, ErrNoStart},
		{"no start", []Node{{ID: "a", Type: Process}}, ErrNoStart},
		{"two starts", []Node{{ID: "a", Type: Start}, {ID: "b", Type: Start}}, ErrMultipleStarts},
		{"dangling", []Node{{ID: "a", Type: Start, Connections: conn("zz")}}, ErrUnknownTarget},
		{"duplicate", []Node{{ID: "a", Type: Start}, {ID: "a", Type: End}}, ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Walk(tt.nodes)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	good := []Node{
		{ID: "s", Type: Start, Connections: conn("e")},
		{ID: "e", Type: End},
	}
	if issues := Validate(good); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}

	bad := []Node{
		{ID: "s", Type: Start},
		{ID: "d", Type: Decision, Connections: conn("x")},
		{ID: "q", Type: "loop"},
	}
	issues := Validate(bad)
	if len(issues) != 4 {
		t.Fatalf("got %d issues, want 4: %v", len(issues), issues)
	}
}

func TestRenderShapes(t *testing.T) {
	nodes := []Node{
		{ID: "s", Type: Start, Content: "go", Connections: conn("r")},
		{ID: "r", Type: IO, Content: "read n", Connections: conn("e")},
		{ID: "e", Type: End, Content: "stop"},
	}
	run, err := Walk(nodes)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := "(go)\n│\n/read n/\n│\n(stop)"
	if got := Render(run, PlainStyles()); got != want {
		t.Fatalf("Render =\n%s\nwant\n%s", got, want)
	}
}
