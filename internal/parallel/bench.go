package parallel

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"

	"github.com/nibzard/mazerun/internal/agent"
	"github.com/nibzard/mazerun/internal/grid"
	"github.com/nibzard/mazerun/internal/logging"
	"github.com/nibzard/mazerun/internal/sim"
)

// ErrNoMazes is returned when a bench has nothing to solve.
var ErrNoMazes = errors.New("bench needs at least one maze")

// BenchOptions configures Bench.
type BenchOptions struct {
	Rows     int
	Cols     int
	Agents   int
	TieBreak agent.TieBreak
	Start    grid.Position
	Goal     grid.Position
	// Mazes are solved with seeds Seed, Seed+1, ..., Seed+Mazes-1.
	Seed    uint64
	Mazes   int
	Workers int
	Logger  *log.Logger
}

// MazeResult summarizes one solved maze.
type MazeResult struct {
	Seed     uint64
	Ticks    int
	Solved   int
	Stuck    int
	Steps    int
	DeadEnds int
	PathLen  int
}

// Report collects the results of a bench, ordered by seed.
type Report struct {
	Mazes     []MazeResult
	MinTicks  int
	MaxTicks  int
	MeanTicks float64
	Solved    int
	Agents    int
}

// Bench generates and solves opts.Mazes mazes on up to opts.Workers
// goroutines. The report is the same for any worker count.
func Bench(ctx context.Context, opts BenchOptions) (*Report, error) {
	if opts.Mazes <= 0 {
		return nil, ErrNoMazes
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	pool := NewWorkerPool[MazeResult](ctx, opts.Workers, true)
	for i := 0; i < opts.Mazes; i++ {
		seed := opts.Seed + uint64(i)
		pool.Submit(fmt.Sprintf("seed %d", seed), func() (MazeResult, error) {
			return solveOne(pool.Context(), opts, seed)
		})
	}
	results, errs := pool.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, multierr.Combine(errs...)
	}

	report := &Report{Mazes: make([]MazeResult, 0, len(results))}
	for _, r := range results {
		report.Mazes = append(report.Mazes, r.Value)
	}
	slices.SortFunc(report.Mazes, func(a, b MazeResult) int {
		switch {
		case a.Seed < b.Seed:
			return -1
		case a.Seed > b.Seed:
			return 1
		}
		return 0
	})

	total := 0
	for i, m := range report.Mazes {
		if i == 0 || m.Ticks < report.MinTicks {
			report.MinTicks = m.Ticks
		}
		if m.Ticks > report.MaxTicks {
			report.MaxTicks = m.Ticks
		}
		total += m.Ticks
		report.Solved += m.Solved
		report.Agents += opts.Agents
	}
	report.MeanTicks = float64(total) / float64(len(report.Mazes))

	logger.Info("bench finished",
		"mazes", len(report.Mazes),
		"rows", opts.Rows,
		"cols", opts.Cols,
		"mean_ticks", report.MeanTicks,
		"solved", report.Solved,
	)
	return report, nil
}

// cancelCheck is how many ticks run between context checks.
const cancelCheck = 256

func solveOne(ctx context.Context, opts BenchOptions, seed uint64) (MazeResult, error) {
	s, err := sim.Generate(opts.Rows, opts.Cols, seed, sim.WithTieBreak(opts.TieBreak))
	if err != nil {
		return MazeResult{}, err
	}
	if err := s.SpawnAgents(opts.Agents, opts.Start, opts.Goal); err != nil {
		return MazeResult{}, err
	}

	for i := 0; !s.Tick(); i++ {
		if i%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return MazeResult{}, err
			}
		}
	}

	snap := s.Snapshot()
	result := MazeResult{Seed: seed, Ticks: snap.Tick}
	for _, a := range snap.Agents {
		switch a.State {
		case agent.Solved:
			result.Solved++
		case agent.Stuck:
			result.Stuck++
		}
		result.Steps += a.Steps
		result.DeadEnds += len(a.Abandoned)
		result.PathLen += len(a.Path)
	}
	return result, nil
}
