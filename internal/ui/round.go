package ui

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/mazerun/internal/agent"
	"github.com/nibzard/mazerun/internal/config"
	"github.com/nibzard/mazerun/internal/render"
	"github.com/nibzard/mazerun/internal/sim"
)

// roundSeed picks the seed for a round. A configured seed yields the
// sequence seed, seed+1, ... so looping runs stay reproducible.
func roundSeed(cfg *config.Config, round int, random func() uint64) uint64 {
	if cfg.Seed == nil {
		return random()
	}
	return *cfg.Seed + uint64(round)
}

// newRound creates the simulation for one maze. When generation is not
// animated the maze is carved and the agents spawned before it returns.
func newRound(cfg *config.Config, rows, cols int, seed uint64, logger *log.Logger) (*sim.Simulation, error) {
	policy, err := agent.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return nil, err
	}
	s, err := sim.New(rows, cols,
		sim.WithSeed(seed),
		sim.WithTieBreak(policy),
		sim.WithStagger(cfg.AgentStagger),
		sim.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug("new maze", "rows", rows, "cols", cols, "seed", seed)
	if !cfg.AnimateGeneration {
		s.Build()
		if err := spawn(cfg, s, rows, cols); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// spawn places the configured agents on a generated maze.
func spawn(cfg *config.Config, s *sim.Simulation, rows, cols int) error {
	start, goal := cfg.Endpoints(rows, cols)
	if err := s.SpawnAgents(cfg.Agents, start, goal); err != nil {
		return fmt.Errorf("spawning agents on %dx%d maze: %w", rows, cols, err)
	}
	return nil
}

// styleFor resolves the configured look.
func styleFor(cfg *config.Config) (render.Style, error) {
	walls, err := render.ParseWallStyle(cfg.WallStyle)
	if err != nil {
		return render.Style{}, err
	}
	border := walls
	if cfg.BorderStyle != "" {
		if border, err = render.ParseWallStyle(cfg.BorderStyle); err != nil {
			return render.Style{}, err
		}
	}
	agents, err := render.ParseAgentStyle(cfg.AgentStyle)
	if err != nil {
		return render.Style{}, err
	}
	return render.Style{Walls: walls, Border: border, WallColor: cfg.WallColor, Agents: agents}, nil
}
