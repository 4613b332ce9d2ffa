// Package render draws simulation snapshots as terminal text.
//
// A rows x cols maze becomes a (2*rows+1) x (2*cols+1) character board:
// odd coordinates are cell centers, even coordinates are wall posts, and the
// points between them are walls or corridors.
package render

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/mazerun/internal/agent"
	"github.com/nibzard/mazerun/internal/grid"
	"github.com/nibzard/mazerun/internal/sim"
)

// ErrTooSmall is returned when a frame does not fit the drawing area.
var ErrTooSmall = errors.New("drawing area too small for maze")

// Renderer draws one snapshot.
type Renderer interface {
	Draw(snap sim.Snapshot) error
}

// paint indexes Board.styles.
type paint int

const (
	paintPlain paint = iota
	paintWall
	paintDim
	paintMarker
	paintAgents // first of the per-color path, dead-end and head styles
)

const agentColors = 7

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithRenderer sets the lipgloss renderer used to resolve colors.
func WithRenderer(r *lipgloss.Renderer) BoardOption {
	return func(b *Board) {
		b.lg = r
	}
}

// Board turns snapshots into frame text.
type Board struct {
	style  Style
	lg     *lipgloss.Renderer
	styles []lipgloss.Style
}

// NewBoard creates a board with the given style.
func NewBoard(style Style, opts ...BoardOption) *Board {
	b := &Board{style: style, lg: lipgloss.DefaultRenderer()}
	for _, opt := range opts {
		opt(b)
	}

	wall := b.lg.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(style.WallColor)))
	b.styles = []lipgloss.Style{
		paintPlain:  b.lg.NewStyle(),
		paintWall:   wall,
		paintDim:    wall.Faint(true),
		paintMarker: wall.Bold(true),
	}
	for c := 1; c <= agentColors; c++ {
		color := b.lg.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(c)))
		b.styles = append(b.styles, color, color.Faint(true), color.Bold(true))
	}
	return b
}

// Size returns the frame width and height for a layout.
func (b *Board) Size(layout grid.Layout) (width, height int) {
	return 2*layout.Cols() + 1, 2*layout.Rows() + 1
}

// FitSize returns the largest maze whose frame fits width x height
// characters. Both results are at least 1.
func FitSize(width, height int) (rows, cols int) {
	rows = max((height-1)/2, 1)
	cols = max((width-1)/2, 1)
	return rows, cols
}

type point struct {
	glyph rune
	paint paint
}

// Frame renders snap as newline-separated rows without a trailing newline.
func (b *Board) Frame(snap sim.Snapshot) string {
	layout := snap.Layout
	width, height := b.Size(layout)
	points := make([]point, width*height)
	at := func(x, y int) *point { return &points[y*width+x] }

	walls := make([]bool, width*height)
	isWall := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < width && y < height && walls[y*width+x]
	}
	for r := 0; r < layout.Rows(); r++ {
		for c := 0; c < layout.Cols(); c++ {
			p := grid.Position{Row: r, Col: c}
			if !layout.IsCarved(p) {
				continue
			}
			x, y := 2*c+1, 2*r+1
			for _, corner := range [][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
				walls[(y+corner[1])*width+x+corner[0]] = true
			}
			open := layout.Open(p)
			if !open.Has(grid.North) {
				walls[(y-1)*width+x] = true
			}
			if !open.Has(grid.South) {
				walls[(y+1)*width+x] = true
			}
			if !open.Has(grid.West) {
				walls[y*width+x-1] = true
			}
			if !open.Has(grid.East) {
				walls[y*width+x+1] = true
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pt := at(x, y)
			switch {
			case walls[y*width+x]:
				var mask int
				if isWall(x, y-1) {
					mask |= 1
				}
				if isWall(x+1, y) {
					mask |= 2
				}
				if isWall(x, y+1) {
					mask |= 4
				}
				if isWall(x-1, y) {
					mask |= 8
				}
				style := b.style.Walls
				if x == 0 || y == 0 || x == width-1 || y == height-1 {
					style = b.style.border()
				}
				*pt = point{wallGlyph(style, x, y, mask, snap.Seed), paintWall}
			case x%2 == 1 && y%2 == 1 && !layout.IsCarved(grid.Position{Row: y / 2, Col: x / 2}):
				*pt = point{glyphUncarved, paintDim}
			default:
				*pt = point{' ', paintPlain}
			}
		}
	}

	if snap.Generating && len(snap.Frontier) > 0 {
		head := snap.Frontier[len(snap.Frontier)-1]
		*at(2*head.Col+1, 2*head.Row+1) = point{glyphFrontier, paintMarker}
	}

	if !snap.Generating && len(snap.Agents) > 0 {
		*at(2*snap.Start.Col+1, 2*snap.Start.Row+1) = point{glyphStart, paintMarker}
		*at(2*snap.Goal.Col+1, 2*snap.Goal.Row+1) = point{glyphGoal, paintMarker}
	}

	// Trails first, then every agent on top so none is hidden by another's path.
	for _, a := range snap.Agents {
		if !a.Released {
			continue
		}
		base := paintAgents + paint(3*(a.ID%agentColors))
		for _, p := range a.Abandoned {
			*at(2*p.Col+1, 2*p.Row+1) = point{glyphDeadEnd, base + 1}
		}
		for i, p := range a.Path {
			*at(2*p.Col+1, 2*p.Row+1) = point{glyphPath, base}
			if i > 0 {
				prev := a.Path[i-1]
				*at(p.Col+prev.Col+1, p.Row+prev.Row+1) = point{glyphPath, base}
			}
		}
	}
	for _, a := range snap.Agents {
		if !a.Released {
			continue
		}
		glyph := b.style.agentGlyph(a.ID)
		if a.State == agent.Stuck {
			glyph = glyphStuck
		}
		base := paintAgents + paint(3*(a.ID%agentColors))
		*at(2*a.Position.Col+1, 2*a.Position.Row+1) = point{glyph, base + 2}
	}

	var out strings.Builder
	for y := 0; y < height; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		b.writeRow(&out, points[y*width:(y+1)*width])
	}
	return out.String()
}

// writeRow styles runs of same-paint points together.
func (b *Board) writeRow(out *strings.Builder, row []point) {
	var run strings.Builder
	current := row[0].paint
	for _, pt := range row {
		if pt.paint != current {
			out.WriteString(b.styles[current].Render(run.String()))
			run.Reset()
			current = pt.paint
		}
		run.WriteRune(pt.glyph)
	}
	out.WriteString(b.styles[current].Render(run.String()))
}

func wallGlyph(style WallStyle, x, y, mask int, seed uint64) rune {
	switch style {
	case WallCurved:
		return bordersCurved[mask]
	case WallDouble:
		return bordersDouble[mask]
	case WallBold:
		return bordersBold[mask]
	case WallBlock:
		return glyphBlock
	case WallHedge:
		h := fnv.New32a()
		fmt.Fprintf(h, "%d:%d:%d", seed, x, y)
		return hedgeGlyphs[h.Sum32()%uint32(len(hedgeGlyphs))]
	default:
		return bordersSingle[mask]
	}
}

// Status summarizes a snapshot on one line.
func Status(snap sim.Snapshot) string {
	if snap.Generating {
		return fmt.Sprintf("seed %d  generating  %d passages", snap.Seed, snap.Layout.Passages())
	}
	var exploring, stuck int
	for _, a := range snap.Agents {
		switch a.State {
		case agent.Stuck:
			stuck++
		case agent.Exploring, agent.Backtracking:
			exploring++
		}
	}
	line := fmt.Sprintf("seed %d  tick %d  solved %d/%d", snap.Seed, snap.Tick, snap.Solved(), len(snap.Agents))
	if exploring > 0 {
		line += fmt.Sprintf("  exploring %d", exploring)
	}
	if stuck > 0 {
		line += fmt.Sprintf("  stuck %d", stuck)
	}
	return line
}
