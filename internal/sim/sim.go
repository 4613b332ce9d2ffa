// Package sim owns one maze and the agents solving it.
//
// A Simulation is driven from outside: the caller builds the maze (at once or
// one carve per frame), spawns agents, then calls Tick followed by Snapshot
// once per frame. Nothing in here sleeps, blocks or spawns goroutines.
package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/nibzard/mazerun/internal/agent"
	"github.com/nibzard/mazerun/internal/generator"
	"github.com/nibzard/mazerun/internal/grid"
	"github.com/nibzard/mazerun/internal/logging"
)

var (
	// ErrInvalidAgentCount is returned when fewer than one agent is requested.
	ErrInvalidAgentCount = errors.New("invalid agent count")
	// ErrNotGenerated is returned when agents are spawned into an unfinished maze.
	ErrNotGenerated = errors.New("maze generation has not finished")
)

// seedStream separates the generator's PCG stream from the per-agent streams.
const seedStream = 0x6d617a65

// NewRand returns the PCG-backed source used for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seedStream))
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed makes generation and random tie-breaks reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) {
		s.seed = seed
		s.seeded = true
	}
}

// WithRand replaces the generator's random source. Without WithSeed, agents
// using the random tie-break are seeded from it too, once the maze is built.
func WithRand(rng generator.Chooser) Option {
	return func(s *Simulation) {
		s.rng = rng
	}
}

// WithTieBreak sets the policy every spawned agent uses.
func WithTieBreak(policy agent.TieBreak) Option {
	return func(s *Simulation) {
		s.policy = policy
	}
}

// WithStagger releases agents one at a time, every frames ticks. Zero
// releases all agents on the first tick.
func WithStagger(frames int) Option {
	return func(s *Simulation) {
		s.stagger = frames
	}
}

// WithGenerationStart sets the cell the generator carves from.
func WithGenerationStart(p grid.Position) Option {
	return func(s *Simulation) {
		s.genStart = p
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(logger *log.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// Simulation owns the grid, the generator while it runs, and the agents.
type Simulation struct {
	grid     *grid.Grid
	gen      *generator.Generator
	layout   *grid.Layout
	seed     uint64
	seeded   bool
	rng      generator.Chooser
	policy   agent.TieBreak
	stagger  int
	genStart grid.Position
	logger   *log.Logger

	agents   []*agent.Agent
	released int
	ticks    int
	start    grid.Position
	goal     grid.Position
}

// New creates a simulation with a fully walled rows x cols grid. Generation
// has not run yet; see Build and BuildStep.
func New(rows, cols int, opts ...Option) (*Simulation, error) {
	g, err := grid.New(rows, cols)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		grid:   g,
		policy: agent.Priority,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		if !s.seeded {
			s.seed = rand.Uint64()
			s.seeded = true
		}
		s.rng = NewRand(s.seed)
	}

	s.gen, err = generator.New(g, s.rng, s.genStart)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Generate creates a simulation and carves its maze to completion.
func Generate(rows, cols int, seed uint64, opts ...Option) (*Simulation, error) {
	s, err := New(rows, cols, append(opts, WithSeed(seed))...)
	if err != nil {
		return nil, err
	}
	s.Build()
	return s, nil
}

// Build finishes generation and returns the grid, which must be treated as
// read-only from here on.
func (s *Simulation) Build() *grid.Grid {
	for s.BuildStep() {
	}
	return s.grid
}

// BuildStep performs one generation step. It returns false once the maze is
// complete.
func (s *Simulation) BuildStep() bool {
	if s.gen == nil {
		return false
	}
	if s.gen.Step() {
		return true
	}

	layout := s.grid.Layout()
	s.layout = &layout
	s.logger.Debug("maze generated",
		"rows", s.grid.Rows(),
		"cols", s.grid.Cols(),
		"passages", layout.Passages(),
		"steps", s.gen.Steps(),
	)
	s.gen = nil
	return false
}

// Generated reports whether the maze is complete.
func (s *Simulation) Generated() bool {
	return s.layout != nil
}

// Seed returns the seed in effect. It is zero when the generator source was
// injected without a seed.
func (s *Simulation) Seed() uint64 {
	return s.seed
}

// Grid returns the underlying grid.
func (s *Simulation) Grid() *grid.Grid {
	return s.grid
}

// SpawnAgents replaces the agent set with n agents walking from start to goal.
func (s *Simulation) SpawnAgents(n int, start, goal grid.Position) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAgentCount, n)
	}
	if !s.Generated() {
		return ErrNotGenerated
	}
	if !s.grid.Contains(start) {
		return fmt.Errorf("start %s: %w", start, grid.ErrOutOfBounds)
	}
	if !s.grid.Contains(goal) {
		return fmt.Errorf("goal %s: %w", goal, grid.ErrOutOfBounds)
	}

	var base uint64
	if s.policy == agent.Random {
		base = s.agentSeed()
	}
	agents := make([]*agent.Agent, 0, n)
	for i := 0; i < n; i++ {
		opts := []agent.Option{agent.WithTieBreak(s.policy)}
		if s.policy == agent.Random {
			opts = append(opts, agent.WithChooser(rand.New(rand.NewPCG(base, uint64(i)+1))))
		}
		a, err := agent.New(i, s.layout, start, goal, opts...)
		if err != nil {
			return fmt.Errorf("spawn agent %d: %w", i, err)
		}
		agents = append(agents, a)
	}

	s.agents = agents
	s.start = start
	s.goal = goal
	s.ticks = 0
	s.released = 0
	if s.stagger <= 0 {
		s.released = n
	}
	s.logger.Info("agents spawned", "count", n, "start", start, "goal", goal, "tie_break", s.policy)
	return nil
}

// Tick steps every released, non-terminal agent exactly once, in index
// order. It returns true when every agent is terminal; on an already
// finished simulation it changes nothing.
func (s *Simulation) Tick() bool {
	if s.allTerminal() {
		return true
	}

	if s.stagger > 0 && s.released < len(s.agents) && s.ticks%s.stagger == 0 {
		s.released++
	}
	s.ticks++

	for _, a := range s.agents[:s.released] {
		if a.State().Terminal() {
			continue
		}
		a.Step(s.layout)
		if a.State().Terminal() {
			s.logger.Info("agent finished",
				"agent", a.ID(),
				"state", a.State(),
				"steps", a.Steps(),
				"path", len(a.Path()),
				"tick", s.ticks,
			)
		}
	}
	return s.allTerminal()
}

// Done reports whether every agent has finished.
func (s *Simulation) Done() bool {
	return s.allTerminal()
}

// Agents returns the number of spawned agents.
func (s *Simulation) Agents() int {
	return len(s.agents)
}

// agentSeed is the base of the per-agent random streams.
func (s *Simulation) agentSeed() uint64 {
	if s.seeded {
		return s.seed
	}
	return uint64(s.rng.IntN(math.MaxInt))
}

func (s *Simulation) allTerminal() bool {
	for _, a := range s.agents {
		if !a.State().Terminal() {
			return false
		}
	}
	return true
}
