package render

import (
	"fmt"
	"io"

	"github.com/nibzard/mazerun/internal/sim"
)

var (
	_ Renderer = (*Writer)(nil)
	_ Renderer = (*Canvas)(nil)
)

// Writer draws frames to an io.Writer, one after another. A zero bound
// disables the size check in that dimension.
type Writer struct {
	w         io.Writer
	board     *Board
	maxWidth  int
	maxHeight int
	status    bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithBounds limits frames to width x height characters.
func WithBounds(width, height int) WriterOption {
	return func(w *Writer) {
		w.maxWidth = width
		w.maxHeight = height
	}
}

// WithStatus appends the status line under each frame.
func WithStatus(enabled bool) WriterOption {
	return func(w *Writer) {
		w.status = enabled
	}
}

// NewWriter creates a Writer.
func NewWriter(w io.Writer, board *Board, opts ...WriterOption) *Writer {
	wr := &Writer{w: w, board: board}
	for _, opt := range opts {
		opt(wr)
	}
	return wr
}

// Draw writes one frame.
func (w *Writer) Draw(snap sim.Snapshot) error {
	if err := checkBounds(w.board, snap, w.maxWidth, w.maxHeight); err != nil {
		return err
	}
	if _, err := io.WriteString(w.w, w.board.Frame(snap)+"\n"); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if w.status {
		if _, err := io.WriteString(w.w, Status(snap)+"\n"); err != nil {
			return fmt.Errorf("write status: %w", err)
		}
	}
	return nil
}

// Canvas keeps the most recent frame in memory for a UI to display.
type Canvas struct {
	board  *Board
	width  int
	height int
	frame  string
}

// NewCanvas creates an unbounded canvas.
func NewCanvas(board *Board) *Canvas {
	return &Canvas{board: board}
}

// Resize sets the area available to frames.
func (c *Canvas) Resize(width, height int) {
	c.width = width
	c.height = height
}

// Draw replaces the held frame. On error the previous frame is kept.
func (c *Canvas) Draw(snap sim.Snapshot) error {
	if err := checkBounds(c.board, snap, c.width, c.height); err != nil {
		return err
	}
	c.frame = c.board.Frame(snap)
	return nil
}

// String returns the held frame.
func (c *Canvas) String() string {
	return c.frame
}

func checkBounds(board *Board, snap sim.Snapshot, maxWidth, maxHeight int) error {
	width, height := board.Size(snap.Layout)
	if (maxWidth > 0 && width > maxWidth) || (maxHeight > 0 && height > maxHeight) {
		return fmt.Errorf("%w: need %dx%d, have %dx%d", ErrTooSmall, width, height, maxWidth, maxHeight)
	}
	return nil
}
