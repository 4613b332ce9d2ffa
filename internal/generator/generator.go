// Package generator carves mazes with a randomized depth-first search
// (the recursive backtracker).
//
// The search runs on an explicit stack so it can be advanced one carve at a
// time, which is how the maze is animated while it is being built.
package generator

import (
	"fmt"

	"github.com/nibzard/mazerun/internal/grid"
)

// Chooser picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Chooser interface {
	IntN(n int) int
}

// Generator carves passages into a grid.
type Generator struct {
	grid  *grid.Grid
	rng   Chooser
	stack []grid.Position
	steps int
}

// New prepares a generator that starts carving at start.
func New(g *grid.Grid, rng Chooser, start grid.Position) (*Generator, error) {
	if !g.Contains(start) {
		return nil, fmt.Errorf("generator start %s: %w", start, grid.ErrOutOfBounds)
	}
	g.Carve(start)
	return &Generator{
		grid:  g,
		rng:   rng,
		stack: []grid.Position{start},
	}, nil
}

// Generate builds a complete rows x cols maze carved from (0,0).
func Generate(rows, cols int, rng Chooser) (*grid.Grid, error) {
	g, err := grid.New(rows, cols)
	if err != nil {
		return nil, err
	}
	gen, err := New(g, rng, grid.Position{})
	if err != nil {
		return nil, err
	}
	gen.Run()
	return g, nil
}

// Step advances the search by one carve or one backtrack. It returns false
// once every reachable cell has been carved and the stack is empty.
func (gen *Generator) Step() bool {
	if len(gen.stack) == 0 {
		return false
	}
	gen.steps++

	top := gen.stack[len(gen.stack)-1]
	var candidates []grid.Position
	for _, n := range gen.grid.Neighbors(top) {
		if !gen.grid.IsCarved(n) {
			candidates = append(candidates, n)
		}
	}

	if len(candidates) == 0 {
		gen.stack = gen.stack[:len(gen.stack)-1]
		return len(gen.stack) > 0
	}

	next := candidates[gen.rng.IntN(len(candidates))]
	if err := gen.grid.OpenBetween(top, next); err != nil {
		// Neighbors only yields adjacent in-bounds cells.
		panic(fmt.Sprintf("generator: %v", err))
	}
	gen.grid.Carve(next)
	gen.stack = append(gen.stack, next)
	return true
}

// Run steps until the maze is complete.
func (gen *Generator) Run() {
	for gen.Step() {
	}
}

// Done reports whether generation has finished.
func (gen *Generator) Done() bool {
	return len(gen.stack) == 0
}

// Steps returns how many Step calls did work.
func (gen *Generator) Steps() int {
	return gen.steps
}

// Frontier returns a copy of the search stack, bottom first.
func (gen *Generator) Frontier() []grid.Position {
	out := make([]grid.Position, len(gen.stack))
	copy(out, gen.stack)
	return out
}
