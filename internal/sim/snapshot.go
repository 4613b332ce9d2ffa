package sim

import (
	"github.com/nibzard/mazerun/internal/agent"
	"github.com/nibzard/mazerun/internal/grid"
)

// AgentView is a copy of one agent's state at snapshot time.
type AgentView struct {
	ID        int
	Position  grid.Position
	State     agent.State
	Path      []grid.Position
	Abandoned []grid.Position
	Visited   int
	Steps     int
	Released  bool
}

// Snapshot is a point-in-time copy of everything a renderer needs. Nothing
// reachable from it aliases the simulation's mutable state.
type Snapshot struct {
	Tick       int
	Seed       uint64
	Layout     grid.Layout
	Generating bool
	Frontier   []grid.Position
	Start      grid.Position
	Goal       grid.Position
	Agents     []AgentView
	Done       bool
}

// Snapshot captures the state left by the most recent BuildStep or Tick.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:  s.ticks,
		Seed:  s.seed,
		Start: s.start,
		Goal:  s.goal,
	}

	if s.layout != nil {
		// The grid is frozen once generated, so the cached layout is shared
		// between snapshots; nothing ever writes to it.
		snap.Layout = *s.layout
	} else {
		snap.Layout = s.grid.Layout()
		snap.Generating = true
		if s.gen != nil {
			snap.Frontier = s.gen.Frontier()
		}
	}

	snap.Agents = make([]AgentView, len(s.agents))
	for i, a := range s.agents {
		snap.Agents[i] = AgentView{
			ID:        a.ID(),
			Position:  a.Position(),
			State:     a.State(),
			Path:      a.Path(),
			Abandoned: a.Abandoned(),
			Visited:   a.VisitedCount(),
			Steps:     a.Steps(),
			Released:  i < s.released,
		}
	}
	snap.Done = len(s.agents) > 0 && s.allTerminal()
	return snap
}

// Solved counts agents in the Solved state.
func (snap Snapshot) Solved() int {
	n := 0
	for _, a := range snap.Agents {
		if a.State == agent.Solved {
			n++
		}
	}
	return n
}
