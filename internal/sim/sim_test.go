package sim

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nibzard/mazerun/internal/agent"
	"github.com/nibzard/mazerun/internal/grid"
)

type firstChoice struct{}

func (firstChoice) IntN(int) int { return 0 }

func pos(r, c int) grid.Position { return grid.Position{Row: r, Col: c} }

// treePath walks parent links from a BFS rooted at start; in a spanning tree
// this is the only simple path to goal.
func treePath(layout grid.Layout, start, goal grid.Position) []grid.Position {
	parent := map[grid.Position]grid.Position{start: start}
	queue := []grid.Position{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range grid.AllDirections {
			if !layout.IsOpen(p, d) {
				continue
			}
			n := p.Step(d)
			if _, seen := parent[n]; !seen {
				parent[n] = p
				queue = append(queue, n)
			}
		}
	}
	var path []grid.Position
	for p := goal; ; p = parent[p] {
		path = append([]grid.Position{p}, path...)
		if p == start {
			return path
		}
	}
}

func run(t *testing.T, s *Simulation, limit int) []Snapshot {
	t.Helper()
	frames := []Snapshot{s.Snapshot()}
	for i := 0; i < limit; i++ {
		done := s.Tick()
		frames = append(frames, s.Snapshot())
		if done {
			return frames
		}
	}
	t.Fatalf("simulation did not finish within %d ticks", limit)
	return nil
}

func TestFirstChoiceEndToEnd(t *testing.T) {
	s, err := New(5, 5, WithRand(firstChoice{}))
	if err != nil {
		t.Fatal(err)
	}
	g := s.Build()
	if g.Passages() != 24 {
		t.Fatalf("Passages: got %d, want 24", g.Passages())
	}

	if err := s.SpawnAgents(1, pos(0, 0), pos(4, 4)); err != nil {
		t.Fatal(err)
	}
	frames := run(t, s, 50)

	wantPath := []grid.Position{
		pos(0, 0), pos(0, 1), pos(0, 2), pos(0, 3), pos(0, 4),
		pos(1, 4), pos(2, 4), pos(3, 4), pos(4, 4),
	}
	last := frames[len(frames)-1]
	if last.Tick != 8 {
		t.Errorf("ticks: got %d, want 8", last.Tick)
	}
	a := last.Agents[0]
	if a.State != agent.Solved {
		t.Fatalf("state: got %s, want solved", a.State)
	}
	if !reflect.DeepEqual(a.Path, wantPath) {
		t.Errorf("path:\ngot  %v\nwant %v", a.Path, wantPath)
	}
	for i, f := range frames {
		if f.Agents[0].Position != wantPath[i] {
			t.Errorf("frame %d: agent at %s, want %s", i, f.Agents[0].Position, wantPath[i])
		}
	}
	if len(a.Abandoned) != 0 {
		t.Errorf("Abandoned: got %v, want none", a.Abandoned)
	}
}

// seed42Carves is the order the seed 42 generator opens walls in a 5x5 grid.
var seed42Carves = [][2]grid.Position{
	{pos(0, 0), pos(1, 0)}, {pos(1, 0), pos(2, 0)}, {pos(2, 0), pos(3, 0)}, {pos(3, 0), pos(4, 0)},
	{pos(4, 0), pos(4, 1)}, {pos(4, 1), pos(4, 2)}, {pos(4, 2), pos(4, 3)}, {pos(4, 3), pos(3, 3)},
	{pos(3, 3), pos(2, 3)}, {pos(2, 3), pos(2, 4)}, {pos(2, 4), pos(1, 4)}, {pos(1, 4), pos(1, 3)},
	{pos(1, 3), pos(1, 2)}, {pos(1, 2), pos(0, 2)}, {pos(0, 2), pos(0, 3)}, {pos(0, 3), pos(0, 4)},
	{pos(0, 2), pos(0, 1)}, {pos(0, 1), pos(1, 1)}, {pos(1, 1), pos(2, 1)}, {pos(2, 1), pos(2, 2)},
	{pos(2, 2), pos(3, 2)}, {pos(3, 2), pos(3, 1)}, {pos(2, 4), pos(3, 4)}, {pos(3, 4), pos(4, 4)},
}

func TestSeededEndToEnd(t *testing.T) {
	s, err := New(5, 5, WithSeed(42))
	if err != nil {
		t.Fatal(err)
	}
	var carves [][2]grid.Position
	prev := s.Snapshot().Frontier
	for s.BuildStep() {
		frontier := s.Snapshot().Frontier
		if len(frontier) > len(prev) {
			carves = append(carves, [2]grid.Position{frontier[len(frontier)-2], frontier[len(frontier)-1]})
		}
		prev = frontier
	}
	if !reflect.DeepEqual(carves, seed42Carves) {
		t.Fatalf("carve order:\ngot  %v\nwant %v", carves, seed42Carves)
	}

	layout := s.Snapshot().Layout
	if layout.Passages() != len(seed42Carves) {
		t.Errorf("Passages: got %d, want %d", layout.Passages(), len(seed42Carves))
	}
	for _, c := range seed42Carves {
		d, _ := grid.DirectionBetween(c[0], c[1])
		if !layout.IsOpen(c[0], d) || !layout.IsOpen(c[1], d.Opposite()) {
			t.Errorf("wall between %s and %s is closed", c[0], c[1])
		}
	}

	if err := s.SpawnAgents(1, pos(0, 0), pos(4, 4)); err != nil {
		t.Fatal(err)
	}
	frames := run(t, s, 2*5*5)

	wantPath := []grid.Position{
		pos(0, 0), pos(1, 0), pos(2, 0), pos(3, 0), pos(4, 0), pos(4, 1), pos(4, 2),
		pos(4, 3), pos(3, 3), pos(2, 3), pos(2, 4), pos(3, 4), pos(4, 4),
	}
	wantAbandoned := []grid.Position{
		pos(0, 1), pos(0, 2), pos(0, 3), pos(0, 4), pos(1, 1), pos(1, 2),
		pos(1, 3), pos(1, 4), pos(2, 1), pos(2, 2), pos(3, 1), pos(3, 2),
	}
	last := frames[len(frames)-1]
	a := last.Agents[0]
	if last.Tick != 36 {
		t.Errorf("ticks: got %d, want 36", last.Tick)
	}
	if a.State != agent.Solved {
		t.Errorf("state: got %s, want solved", a.State)
	}
	if !reflect.DeepEqual(a.Path, wantPath) {
		t.Errorf("path:\ngot  %v\nwant %v", a.Path, wantPath)
	}
	if !reflect.DeepEqual(a.Abandoned, wantAbandoned) {
		t.Errorf("abandoned:\ngot  %v\nwant %v", a.Abandoned, wantAbandoned)
	}
	if tree := treePath(last.Layout, pos(0, 0), pos(4, 4)); !reflect.DeepEqual(a.Path, tree) {
		t.Errorf("path is not the tree path %v", tree)
	}

	again, _ := Generate(5, 5, 42)
	if !reflect.DeepEqual(again.Snapshot().Layout, last.Layout) {
		t.Error("seed 42 produced a different layout on the second run")
	}
}

func TestAnimationDeterministic(t *testing.T) {
	for _, policy := range []agent.TieBreak{agent.Priority, agent.Rotating, agent.Random} {
		t.Run(string(policy), func(t *testing.T) {
			build := func() []Snapshot {
				s, err := Generate(11, 16, 7, WithTieBreak(policy), WithStagger(3))
				if err != nil {
					t.Fatal(err)
				}
				if err := s.SpawnAgents(4, pos(0, 0), pos(10, 15)); err != nil {
					t.Fatal(err)
				}
				return run(t, s, 4*2*11*16)
			}
			a, b := build(), build()
			if !reflect.DeepEqual(a, b) {
				t.Fatal("identical runs produced different snapshot sequences")
			}
		})
	}
}

func TestInjectedRandDeterminesAnimation(t *testing.T) {
	build := func() []Snapshot {
		s, err := New(9, 9, WithRand(NewRand(5)), WithTieBreak(agent.Random))
		if err != nil {
			t.Fatal(err)
		}
		s.Build()
		if err := s.SpawnAgents(3, pos(0, 0), pos(8, 8)); err != nil {
			t.Fatal(err)
		}
		return run(t, s, 3*2*9*9)
	}
	a, b := build(), build()
	if !reflect.DeepEqual(a[0].Layout, b[0].Layout) {
		t.Fatal("same source produced different layouts")
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same source produced different runs (%d vs %d ticks)", a[len(a)-1].Tick, b[len(b)-1].Tick)
	}
	if a[0].Seed != 0 {
		t.Errorf("Seed: got %d, want 0 without WithSeed", a[0].Seed)
	}
}

func TestAgentsSolveWithinBound(t *testing.T) {
	for seed := uint64(0); seed < 8; seed++ {
		s, err := Generate(8, 12, seed, WithTieBreak(agent.Random))
		if err != nil {
			t.Fatal(err)
		}
		if err := s.SpawnAgents(3, pos(7, 0), pos(0, 11)); err != nil {
			t.Fatal(err)
		}
		frames := run(t, s, 2*8*12)
		for _, a := range frames[len(frames)-1].Agents {
			if a.State != agent.Solved {
				t.Errorf("seed %d agent %d: %s", seed, a.ID, a.State)
			}
			if a.Steps > 2*8*12 {
				t.Errorf("seed %d agent %d: %d steps", seed, a.ID, a.Steps)
			}
		}
	}
}

func TestTickAfterDoneIsNoOp(t *testing.T) {
	s, _ := Generate(4, 4, 1)
	_ = s.SpawnAgents(2, pos(0, 0), pos(3, 3))
	run(t, s, 100)

	before := s.Snapshot()
	for i := 0; i < 3; i++ {
		if !s.Tick() {
			t.Fatal("Tick on a finished simulation returned false")
		}
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("Tick on a finished simulation changed the snapshot")
	}
}

func TestSingleCell(t *testing.T) {
	s, err := Generate(1, 1, 9)
	if err != nil {
		t.Fatal(err)
	}
	if p := s.Grid().Passages(); p != 0 {
		t.Errorf("Passages: got %d, want 0", p)
	}
	if err := s.SpawnAgents(1, pos(0, 0), pos(0, 0)); err != nil {
		t.Fatal(err)
	}
	if !s.Tick() {
		t.Error("Tick: want all terminal")
	}
	snap := s.Snapshot()
	if snap.Agents[0].State != agent.Solved || !snap.Done || snap.Solved() != 1 {
		t.Errorf("snapshot: %+v", snap.Agents[0])
	}
}

func TestSpawnAgentsErrors(t *testing.T) {
	s, _ := Generate(3, 4, 5)

	tests := []struct {
		name        string
		n           int
		start, goal grid.Position
		want        error
	}{
		{"zero agents", 0, pos(0, 0), pos(2, 3), ErrInvalidAgentCount},
		{"negative agents", -2, pos(0, 0), pos(2, 3), ErrInvalidAgentCount},
		{"start outside", 1, pos(3, 0), pos(2, 3), grid.ErrOutOfBounds},
		{"goal outside", 1, pos(0, 0), pos(2, 4), grid.ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.SpawnAgents(tt.n, tt.start, tt.goal); !errors.Is(err, tt.want) {
				t.Errorf("SpawnAgents: got %v, want %v", err, tt.want)
			}
		})
	}
	if s.Agents() != 0 {
		t.Errorf("failed spawns left %d agents", s.Agents())
	}
}

func TestNewInvalidDimensions(t *testing.T) {
	if _, err := Generate(0, 4, 1); !errors.Is(err, grid.ErrInvalidDimensions) {
		t.Errorf("Generate(0, 4): got %v", err)
	}
	if _, err := New(4, -1); !errors.Is(err, grid.ErrInvalidDimensions) {
		t.Errorf("New(4, -1): got %v", err)
	}
}

func TestStepwiseBuild(t *testing.T) {
	s, err := New(4, 6, WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if !snap.Generating || len(snap.Frontier) != 1 || snap.Frontier[0] != pos(0, 0) {
		t.Fatalf("initial snapshot: generating %v frontier %v", snap.Generating, snap.Frontier)
	}
	if err := s.SpawnAgents(1, pos(0, 0), pos(3, 5)); !errors.Is(err, ErrNotGenerated) {
		t.Errorf("SpawnAgents before build: got %v, want ErrNotGenerated", err)
	}

	prev := 0
	steps := 0
	for s.BuildStep() {
		steps++
		p := s.Snapshot().Layout.Passages()
		if p < prev {
			t.Fatalf("passages went down from %d to %d", prev, p)
		}
		prev = p
	}
	if !s.Generated() || s.Snapshot().Generating {
		t.Fatal("build did not finish")
	}
	if s.BuildStep() {
		t.Error("BuildStep after completion returned true")
	}
	if s.Snapshot().Layout.Passages() != 23 {
		t.Errorf("Passages: got %d, want 23", s.Snapshot().Layout.Passages())
	}

	whole, _ := Generate(4, 6, 3)
	if !reflect.DeepEqual(whole.Snapshot().Layout, s.Snapshot().Layout) {
		t.Error("stepwise and one-shot builds differ for the same seed")
	}
}

func TestStaggeredRelease(t *testing.T) {
	s, _ := Generate(10, 10, 11, WithStagger(2))
	if err := s.SpawnAgents(3, pos(0, 0), pos(9, 9)); err != nil {
		t.Fatal(err)
	}

	want := []int{1, 1, 2, 2, 3, 3}
	for i, n := range want {
		s.Tick()
		released := 0
		for _, a := range s.Snapshot().Agents {
			if a.Released {
				released++
			} else if a.Steps != 0 {
				t.Errorf("tick %d: unreleased agent %d moved", i+1, a.ID)
			}
		}
		if released != n {
			t.Errorf("tick %d: %d released, want %d", i+1, released, n)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := Generate(6, 6, 2)
	_ = s.SpawnAgents(2, pos(0, 0), pos(5, 5))
	s.Tick()
	s.Tick()

	snap := s.Snapshot()
	want := s.Snapshot()
	snap.Agents[0].Path[0] = pos(5, 5)
	snap.Agents[1] = AgentView{}
	snap.Agents = append(snap.Agents, AgentView{ID: 9})

	if !reflect.DeepEqual(s.Snapshot(), want) {
		t.Error("editing a snapshot leaked into the simulation")
	}
}
