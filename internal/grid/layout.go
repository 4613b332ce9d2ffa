package grid

// Layout is an immutable view of a grid's walls, safe to hand to renderers
// while the grid keeps changing.
type Layout struct {
	rows  int
	cols  int
	cells []cell
}

func (l Layout) Rows() int { return l.rows }
func (l Layout) Cols() int { return l.cols }

func (l Layout) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < l.rows && p.Col >= 0 && p.Col < l.cols
}

func (l Layout) IsOpen(p Position, d Direction) bool {
	if !l.Contains(p) {
		return false
	}
	return l.cells[p.Row*l.cols+p.Col].open.Has(d)
}

// Open returns the set of open sides of p.
func (l Layout) Open(p Position) Directions {
	if !l.Contains(p) {
		return 0
	}
	return l.cells[p.Row*l.cols+p.Col].open
}

func (l Layout) IsCarved(p Position) bool {
	return l.Contains(p) && l.cells[p.Row*l.cols+p.Col].carved
}

func (l Layout) Passages() int {
	return countPassages(l.cells)
}
