// Package agent implements a maze solver that explores with its own
// depth-first search and backtracks out of dead ends, one move per step.
package agent

import (
	"fmt"
	"strings"

	"github.com/nibzard/mazerun/internal/grid"
)

// State is the solver's progress.
type State int

const (
	Exploring State = iota
	Backtracking
	Solved
	Stuck
)

func (s State) String() string {
	switch s {
	case Exploring:
		return "exploring"
	case Backtracking:
		return "backtracking"
	case Solved:
		return "solved"
	case Stuck:
		return "stuck"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further step can change the agent.
func (s State) Terminal() bool {
	return s == Solved || s == Stuck
}

// TieBreak decides which open, unvisited neighbor an agent tries first.
type TieBreak string

const (
	// Priority always tries North, East, South, West in that order.
	Priority TieBreak = "priority"
	// Rotating starts the priority order at a direction picked by the agent ID.
	Rotating TieBreak = "rotating"
	// Random picks uniformly among the candidates.
	Random TieBreak = "random"
)

// ParseTieBreak parses a policy name.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", Priority:
		return Priority, nil
	case Rotating:
		return Rotating, nil
	case Random:
		return Random, nil
	}
	return "", fmt.Errorf("unknown tie-break policy %q (priority|rotating|random)", s)
}

// Maze is the read-only view an agent navigates. *grid.Grid and grid.Layout
// both satisfy it.
type Maze interface {
	Rows() int
	Cols() int
	Contains(p grid.Position) bool
	IsOpen(p grid.Position, d grid.Direction) bool
}

// Chooser picks an index in [0, n).
type Chooser interface {
	IntN(n int) int
}

// Option configures an Agent.
type Option func(*Agent)

// WithTieBreak sets the neighbor selection policy. Random requires a Chooser.
func WithTieBreak(policy TieBreak) Option {
	return func(a *Agent) {
		a.policy = policy
	}
}

// WithChooser sets the random source used by the Random policy.
func WithChooser(rng Chooser) Option {
	return func(a *Agent) {
		a.rng = rng
	}
}

// Agent is one solver's traversal state.
type Agent struct {
	id        int
	cols      int
	start     grid.Position
	goal      grid.Position
	pos       grid.Position
	state     State
	visited   []bool
	abandoned []bool
	path      []grid.Position
	policy    TieBreak
	order     [4]grid.Direction
	rng       Chooser
	steps     int
}

// New creates an agent standing on start. An agent whose start is its goal
// is solved immediately.
func New(id int, m Maze, start, goal grid.Position, opts ...Option) (*Agent, error) {
	if !m.Contains(start) {
		return nil, fmt.Errorf("agent %d start %s: %w", id, start, grid.ErrOutOfBounds)
	}
	if !m.Contains(goal) {
		return nil, fmt.Errorf("agent %d goal %s: %w", id, goal, grid.ErrOutOfBounds)
	}

	cells := m.Rows() * m.Cols()
	a := &Agent{
		id:        id,
		cols:      m.Cols(),
		start:     start,
		goal:      goal,
		pos:       start,
		state:     Exploring,
		visited:   make([]bool, cells),
		abandoned: make([]bool, cells),
		path:      []grid.Position{start},
		policy:    Priority,
		order:     grid.AllDirections,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.policy == Random && a.rng == nil {
		return nil, fmt.Errorf("agent %d: random tie-break needs a chooser", id)
	}
	if a.policy == Rotating {
		for i := range a.order {
			a.order[i] = grid.AllDirections[(i+id)%4]
		}
	}

	a.visited[a.index(start)] = true
	if start == goal {
		a.state = Solved
	}
	return a, nil
}

// Step advances the agent by one move forward or one backtrack. It never
// modifies the maze and does nothing once the agent is terminal.
func (a *Agent) Step(m Maze) {
	if a.state.Terminal() {
		return
	}
	if a.pos == a.goal {
		a.state = Solved
		return
	}
	a.steps++

	if next, ok := a.choose(m); ok {
		a.visited[a.index(next)] = true
		a.path = append(a.path, next)
		a.pos = next
		a.state = Exploring
		if next == a.goal {
			a.state = Solved
		}
		return
	}

	a.abandoned[a.index(a.pos)] = true
	a.path = a.path[:len(a.path)-1]
	if len(a.path) == 0 {
		a.state = Stuck
		return
	}
	a.pos = a.path[len(a.path)-1]
	a.state = Backtracking
}

func (a *Agent) choose(m Maze) (grid.Position, bool) {
	var candidates [4]grid.Position
	n := 0
	for _, d := range a.order {
		if !m.IsOpen(a.pos, d) {
			continue
		}
		next := a.pos.Step(d)
		if !m.Contains(next) || a.visited[a.index(next)] {
			continue
		}
		candidates[n] = next
		n++
	}
	if n == 0 {
		return grid.Position{}, false
	}
	if a.policy == Random {
		return candidates[a.rng.IntN(n)], true
	}
	return candidates[0], true
}

func (a *Agent) index(p grid.Position) int {
	return p.Row*a.cols + p.Col
}

func (a *Agent) ID() int { return a.id }
func (a *Agent) Position() grid.Position { return a.pos }
func (a *Agent) Start() grid.Position { return a.start }
func (a *Agent) Goal() grid.Position { return a.goal }
func (a *Agent) State() State { return a.state }
func (a *Agent) Steps() int { return a.steps }
func (a *Agent) TieBreak() TieBreak { return a.policy }

// Path returns a copy of the current candidate path, start first.
func (a *Agent) Path() []grid.Position {
	out := make([]grid.Position, len(a.path))
	copy(out, a.path)
	return out
}

// Visited reports whether this agent has entered p.
func (a *Agent) Visited(p grid.Position) bool {
	i := a.index(p)
	return p.Col >= 0 && p.Col < a.cols && i >= 0 && i < len(a.visited) && a.visited[i]
}

// Abandoned returns the cells this agent backtracked out of, in row-major order.
func (a *Agent) Abandoned() []grid.Position {
	var out []grid.Position
	for i, dead := range a.abandoned {
		if dead {
			out = append(out, grid.Position{Row: i / a.cols, Col: i % a.cols})
		}
	}
	return out
}

// VisitedCount returns how many distinct cells the agent has entered.
func (a *Agent) VisitedCount() int {
	n := 0
	for _, v := range a.visited {
		if v {
			n++
		}
	}
	return n
}
