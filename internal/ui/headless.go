package ui

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/nibzard/mazerun/internal/config"
	"github.com/nibzard/mazerun/internal/logging"
	"github.com/nibzard/mazerun/internal/render"
	"github.com/nibzard/mazerun/internal/sim"
)

// HeadlessOptions configures RunHeadless.
type HeadlessOptions struct {
	// Rows and Cols replace zero dimensions in the config.
	Rows int
	Cols int
	// Frames writes every frame instead of only the last.
	Frames bool
	Logger *log.Logger
	Board  []render.BoardOption
	// Renderer receives the frames instead of w; the summary still goes to w.
	Renderer render.Renderer
}

// RunHeadless generates one maze, runs every agent to a terminal state and
// writes the final frame followed by a per-agent summary.
func RunHeadless(ctx context.Context, cfg *config.Config, w io.Writer, opts HeadlessOptions) (sim.Snapshot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	style, err := styleFor(cfg)
	if err != nil {
		return sim.Snapshot{}, err
	}

	rows, cols := cfg.Rows, cfg.Cols
	if rows == 0 {
		rows = opts.Rows
	}
	if cols == 0 {
		cols = opts.Cols
	}

	s, err := newRound(cfg, rows, cols, roundSeed(cfg, 0, rand.Uint64), logger)
	if err != nil {
		return sim.Snapshot{}, err
	}
	if !s.Generated() {
		s.Build()
		if err := spawn(cfg, s, rows, cols); err != nil {
			return sim.Snapshot{}, err
		}
	}

	out := opts.Renderer
	if out == nil {
		out = render.NewWriter(w, render.NewBoard(style, opts.Board...), render.WithStatus(true))
	}
	for {
		if err := ctx.Err(); err != nil {
			return s.Snapshot(), err
		}
		done := s.Tick()
		if opts.Frames && !done {
			if err := out.Draw(s.Snapshot()); err != nil {
				return s.Snapshot(), err
			}
		}
		if done {
			break
		}
	}

	snap := s.Snapshot()
	if err := out.Draw(snap); err != nil {
		return snap, err
	}
	if err := writeSummary(w, snap); err != nil {
		return snap, err
	}
	logger.Info("maze solved",
		"rows", rows,
		"cols", cols,
		"seed", snap.Seed,
		"ticks", snap.Tick,
		"solved", snap.Solved(),
		"agents", len(snap.Agents),
	)
	return snap, nil
}

func writeSummary(w io.Writer, snap sim.Snapshot) error {
	for _, a := range snap.Agents {
		_, err := fmt.Fprintf(w, "agent %d: %s in %d steps, path %d cells, %d dead ends, %d visited\n",
			a.ID, a.State, a.Steps, len(a.Path), len(a.Abandoned), a.Visited)
		if err != nil {
			return err
		}
	}
	return nil
}
