package agent

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/nibzard/mazerun/internal/generator"
	"github.com/nibzard/mazerun/internal/grid"
)

func pos(r, c int) grid.Position { return grid.Position{Row: r, Col: c} }

// uMaze is a 2x2 grid shaped like a U: (0,1) is a dead end reached first
// under North, East, South, West priority.
func uMaze(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, pair := range [][2]grid.Position{
		{pos(0, 0), pos(0, 1)},
		{pos(0, 0), pos(1, 0)},
		{pos(1, 0), pos(1, 1)},
	} {
		if err := g.OpenBetween(pair[0], pair[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestStepBacktracksOutOfDeadEnd(t *testing.T) {
	g := uMaze(t)
	a, err := New(0, g, pos(0, 0), pos(1, 1))
	if err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		pos   grid.Position
		state State
		path  []grid.Position
	}{
		{pos(0, 1), Exploring, []grid.Position{pos(0, 0), pos(0, 1)}},
		{pos(0, 0), Backtracking, []grid.Position{pos(0, 0)}},
		{pos(1, 0), Exploring, []grid.Position{pos(0, 0), pos(1, 0)}},
		{pos(1, 1), Solved, []grid.Position{pos(0, 0), pos(1, 0), pos(1, 1)}},
	}
	for i, want := range steps {
		a.Step(g)
		if a.Position() != want.pos || a.State() != want.state {
			t.Fatalf("step %d: got %s %s, want %s %s", i+1, a.Position(), a.State(), want.pos, want.state)
		}
		if !reflect.DeepEqual(a.Path(), want.path) {
			t.Fatalf("step %d path: got %v, want %v", i+1, a.Path(), want.path)
		}
	}

	if got := a.Abandoned(); !reflect.DeepEqual(got, []grid.Position{pos(0, 1)}) {
		t.Errorf("Abandoned: got %v, want [(0,1)]", got)
	}
	if a.Steps() != 4 {
		t.Errorf("Steps: got %d, want 4", a.Steps())
	}
	if a.VisitedCount() != 4 {
		t.Errorf("VisitedCount: got %d, want 4", a.VisitedCount())
	}
}

func TestTerminalStepIsNoOp(t *testing.T) {
	g := uMaze(t)
	a, _ := New(0, g, pos(0, 0), pos(1, 1))
	for a.State() != Solved {
		a.Step(g)
	}
	path := a.Path()
	steps := a.Steps()
	for i := 0; i < 3; i++ {
		a.Step(g)
	}
	if a.State() != Solved || a.Steps() != steps || !reflect.DeepEqual(a.Path(), path) {
		t.Error("stepping a solved agent changed it")
	}
}

func TestStartIsGoal(t *testing.T) {
	g, _ := grid.New(1, 1)
	a, err := New(3, g, pos(0, 0), pos(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if a.State() != Solved {
		t.Fatalf("State: got %s, want solved", a.State())
	}
	a.Step(g)
	if a.Steps() != 0 || a.Position() != pos(0, 0) {
		t.Errorf("solved agent moved: steps %d at %s", a.Steps(), a.Position())
	}
}

func TestStuckOnDisconnectedMaze(t *testing.T) {
	g, _ := grid.New(2, 3)
	// Goal at (1,2) is walled off from the start's component.
	_ = g.OpenBetween(pos(0, 0), pos(0, 1))
	_ = g.OpenBetween(pos(0, 1), pos(1, 1))
	_ = g.OpenBetween(pos(0, 0), pos(1, 0))

	a, _ := New(0, g, pos(0, 0), pos(1, 2))
	for i := 0; i < 20 && !a.State().Terminal(); i++ {
		a.Step(g)
	}
	if a.State() != Stuck {
		t.Fatalf("State: got %s, want stuck", a.State())
	}
	if len(a.Path()) != 0 {
		t.Errorf("stuck agent still has a path: %v", a.Path())
	}
	if len(a.Abandoned()) != 4 {
		t.Errorf("Abandoned: got %v, want all four reachable cells", a.Abandoned())
	}
}

func TestSolvesGeneratedMazesWithinBound(t *testing.T) {
	policies := []TieBreak{Priority, Rotating, Random}

	for seed := uint64(0); seed < 10; seed++ {
		g, err := generator.Generate(9, 14, rand.New(rand.NewPCG(seed, 1)))
		if err != nil {
			t.Fatal(err)
		}
		layout := g.Layout()
		bound := 2 * g.Rows() * g.Cols()

		for id, policy := range policies {
			a, err := New(id, layout, pos(0, 0), pos(8, 13),
				WithTieBreak(policy), WithChooser(rand.New(rand.NewPCG(seed, 2))))
			if err != nil {
				t.Fatal(err)
			}
			calls := 0
			for !a.State().Terminal() && calls <= bound {
				a.Step(layout)
				calls++
			}
			if a.State() != Solved {
				t.Errorf("seed %d %s: state %s after %d calls", seed, policy, a.State(), calls)
				continue
			}

			path := a.Path()
			if path[0] != pos(0, 0) || path[len(path)-1] != pos(8, 13) {
				t.Errorf("seed %d %s: path runs %s to %s", seed, policy, path[0], path[len(path)-1])
			}
			for i := 1; i < len(path); i++ {
				d, ok := grid.DirectionBetween(path[i-1], path[i])
				if !ok || !layout.IsOpen(path[i-1], d) {
					t.Errorf("seed %d %s: path crosses a wall at %s-%s", seed, policy, path[i-1], path[i])
				}
			}
		}
	}
}

func TestRotatingOrder(t *testing.T) {
	g, _ := grid.New(3, 3)
	center := pos(1, 1)
	for _, n := range g.Neighbors(center) {
		_ = g.OpenBetween(center, n)
	}

	want := []grid.Position{pos(0, 1), pos(1, 2), pos(2, 1), pos(1, 0)}
	for id, first := range want {
		a, _ := New(id, g, center, pos(2, 2), WithTieBreak(Rotating))
		a.Step(g)
		if a.Position() != first {
			t.Errorf("agent %d moved to %s, want %s", id, a.Position(), first)
		}
	}
}

func TestNewErrors(t *testing.T) {
	g, _ := grid.New(2, 2)

	if _, err := New(0, g, pos(2, 0), pos(0, 0)); !errors.Is(err, grid.ErrOutOfBounds) {
		t.Errorf("start out of bounds: got %v", err)
	}
	if _, err := New(0, g, pos(0, 0), pos(0, -1)); !errors.Is(err, grid.ErrOutOfBounds) {
		t.Errorf("goal out of bounds: got %v", err)
	}
	if _, err := New(0, g, pos(0, 0), pos(1, 1), WithTieBreak(Random)); err == nil {
		t.Error("random policy without a chooser: expected error")
	}
}

func TestParseTieBreak(t *testing.T) {
	tests := []struct {
		in      string
		want    TieBreak
		wantErr bool
	}{
		{"", Priority, false},
		{"priority", Priority, false},
		{" Random ", Random, false},
		{"rotating", Rotating, false},
		{"bfs", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTieBreak(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseTieBreak(%q): got %q, %v", tt.in, got, err)
		}
	}
}
