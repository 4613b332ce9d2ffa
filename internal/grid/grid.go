// Package grid holds the maze cells and their wall state.
//
// Walls are stored per cell as a set of open sides. Every mutation opens a
// wall pair (one side on each of the two cells) so the layout stays symmetric.
package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions is returned when a grid has zero or negative rows or columns.
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	// ErrNotAdjacent is returned when a wall is opened between cells that do not share an edge.
	ErrNotAdjacent = errors.New("cells are not adjacent")
	// ErrOutOfBounds is returned for positions outside the grid.
	ErrOutOfBounds = errors.New("position out of bounds")
)

// Position identifies a cell by row and column.
type Position struct {
	Row int
	Col int
}

// Step returns the position one cell away in direction d. The result may lie
// outside any grid.
func (p Position) Step(d Direction) Position {
	switch d {
	case North:
		return Position{Row: p.Row - 1, Col: p.Col}
	case East:
		return Position{Row: p.Row, Col: p.Col + 1}
	case South:
		return Position{Row: p.Row + 1, Col: p.Col}
	case West:
		return Position{Row: p.Row, Col: p.Col - 1}
	}
	return p
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

type cell struct {
	open   Directions
	carved bool
}

// Grid is a fixed-size rectangular maze.
type Grid struct {
	rows  int
	cols  int
	cells []cell
}

// New creates a grid with every wall closed and no cell carved.
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]cell, rows*cols),
	}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Contains reports whether p lies inside the grid.
func (g *Grid) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// Neighbors returns the in-bounds cells adjacent to p in North, East, South,
// West order, ignoring walls.
func (g *Grid) Neighbors(p Position) []Position {
	result := make([]Position, 0, 4)
	for _, d := range AllDirections {
		n := p.Step(d)
		if g.Contains(n) {
			result = append(result, n)
		}
	}
	return result
}

// IsOpen reports whether the wall on side d of p has been carved away.
// Positions outside the grid are never open.
func (g *Grid) IsOpen(p Position, d Direction) bool {
	if !g.Contains(p) {
		return false
	}
	return g.cells[g.index(p)].open.Has(d)
}

// OpenBetween removes the wall shared by a and b.
func (g *Grid) OpenBetween(a, b Position) error {
	if !g.Contains(a) || !g.Contains(b) {
		return fmt.Errorf("open %s-%s: %w", a, b, ErrOutOfBounds)
	}
	d, ok := DirectionBetween(a, b)
	if !ok {
		return fmt.Errorf("open %s-%s: %w", a, b, ErrNotAdjacent)
	}
	g.cells[g.index(a)].open |= d.Mask()
	g.cells[g.index(b)].open |= d.Opposite().Mask()
	return nil
}

// Carve marks p as visited by the generator.
func (g *Grid) Carve(p Position) {
	if g.Contains(p) {
		g.cells[g.index(p)].carved = true
	}
}

// IsCarved reports whether the generator has visited p.
func (g *Grid) IsCarved(p Position) bool {
	return g.Contains(p) && g.cells[g.index(p)].carved
}

// Passages counts open edges. Each edge is counted once.
func (g *Grid) Passages() int {
	return countPassages(g.cells)
}

// Layout returns a frozen copy of the current wall and carved state.
func (g *Grid) Layout() Layout {
	cells := make([]cell, len(g.cells))
	copy(cells, g.cells)
	return Layout{rows: g.rows, cols: g.cols, cells: cells}
}

func (g *Grid) index(p Position) int {
	return p.Row*g.cols + p.Col
}

func countPassages(cells []cell) int {
	n := 0
	for _, c := range cells {
		// East and South only, so every edge is seen from exactly one side.
		if c.open.Has(East) {
			n++
		}
		if c.open.Has(South) {
			n++
		}
	}
	return n
}
