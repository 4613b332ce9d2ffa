// Package ui drives simulations: an animated bubbletea program for
// terminals and a headless runner for pipes and files.
package ui

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/nibzard/mazerun/internal/config"
	"github.com/nibzard/mazerun/internal/logging"
	"github.com/nibzard/mazerun/internal/render"
	"github.com/nibzard/mazerun/internal/sim"
)

const (
	// reservedLines are the status and help lines under the maze.
	reservedLines = 2
	// generationFrames is roughly how many frames animated generation takes.
	generationFrames = 150
	// restartHold is how many frames a finished maze stays up before a loop restart.
	restartHold = 25

	defaultWidth  = 80
	defaultHeight = 24
)

// Option configures the TUI model.
type Option func(*Model)

// WithTerminalSize sets the terminal size used before the first resize event.
func WithTerminalSize(width, height int) Option {
	return func(m *Model) {
		m.width = width
		m.height = height
	}
}

// WithLogger sets the logger passed to every simulation.
func WithLogger(logger *log.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithBoardOptions configures the board that draws frames.
func WithBoardOptions(opts ...render.BoardOption) Option {
	return func(m *Model) {
		m.boardOpts = append(m.boardOpts, opts...)
	}
}

// WithSeedSource supplies seeds for rounds when no seed is configured.
func WithSeedSource(random func() uint64) Option {
	return func(m *Model) {
		m.random = random
	}
}

type phase int

const (
	phaseGenerating phase = iota
	phaseSolving
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseGenerating:
		return "generating"
	case phaseSolving:
		return "solving"
	default:
		return "done"
	}
}

// tickMsg advances one frame. Ticks from an older chain are dropped.
type tickMsg struct {
	chain int
}

var (
	statusStyle = lipgloss.NewStyle().Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Model is the bubbletea model animating one simulation after another.
type Model struct {
	cfg       *config.Config
	logger    *log.Logger
	random    func() uint64
	boardOpts []render.BoardOption
	canvas    *render.Canvas

	sim   *sim.Simulation
	snap  sim.Snapshot
	phase phase
	round int
	seed  uint64
	rows  int
	cols  int
	hold  int

	width   int
	height  int
	paused  bool
	chain   int
	drawErr error
	err     error
}

// NewModel creates the model and its first maze.
func NewModel(cfg *config.Config, opts ...Option) (*Model, error) {
	style, err := styleFor(cfg)
	if err != nil {
		return nil, err
	}
	m := &Model{
		cfg:    cfg,
		logger: logging.Discard(),
		random: rand.Uint64,
		width:  defaultWidth,
		height: defaultHeight,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.canvas = render.NewCanvas(render.NewBoard(style, m.boardOpts...))
	m.canvas.Resize(m.width, m.height-reservedLines)

	if err := m.restart(0); err != nil {
		return nil, err
	}
	return m, nil
}

// Err returns the error that stopped the model, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return m.next()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case " ":
			if m.cfg.Interactive {
				return m, m.step()
			}
			m.paused = !m.paused
			if m.paused {
				return m, nil
			}
			return m, m.resume()
		case "n", "enter", "right":
			return m, m.step()
		case "r":
			if err := m.restart(m.round + 1); err != nil {
				return m.fail(err)
			}
			return m, m.resume()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.canvas.Resize(m.width, m.height-reservedLines)
		if rows, cols := m.size(); m.cfg.AutoSize() && (rows != m.rows || cols != m.cols) {
			if err := m.restart(m.round); err != nil {
				return m.fail(err)
			}
			return m, m.resume()
		}
		m.redraw()

	case tickMsg:
		if msg.chain != m.chain || !m.running() {
			return m, nil
		}
		if err := m.advance(); err != nil {
			return m.fail(err)
		}
		return m, m.next()
	}

	return m, nil
}

func (m *Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n"
	}

	var b strings.Builder
	if m.drawErr != nil {
		b.WriteString(fmt.Sprintf("Terminal too small for a %dx%d maze.\n", m.rows, m.cols))
		b.WriteString(m.drawErr.Error() + "\n")
	} else {
		b.WriteString(m.canvas.String())
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.statusLine()) + "\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m *Model) statusLine() string {
	line := render.Status(m.snap)
	if m.cfg.Loop {
		line += fmt.Sprintf("  round %d", m.round+1)
	}
	switch {
	case m.phase == phaseDone:
		line += "  done"
	case m.paused:
		line += "  paused"
	}
	return line
}

func (m *Model) helpLine() string {
	if m.cfg.Interactive {
		return "space/n: step  r: new maze  q: quit"
	}
	return "space: pause  n: step  r: new maze  q: quit"
}

// running reports whether frames advance on their own.
func (m *Model) running() bool {
	if m.cfg.Interactive || m.paused {
		return false
	}
	return m.phase != phaseDone || m.cfg.Loop
}

// next schedules the following frame of the current chain.
func (m *Model) next() tea.Cmd {
	if !m.running() {
		return nil
	}
	chain := m.chain
	return tea.Tick(m.cfg.FrameDelay(), func(time.Time) tea.Msg {
		return tickMsg{chain: chain}
	})
}

// resume starts a new tick chain, orphaning any tick still in flight.
func (m *Model) resume() tea.Cmd {
	m.chain++
	return m.next()
}

// step advances one frame by hand.
func (m *Model) step() tea.Cmd {
	if err := m.advance(); err != nil {
		m.err = err
		return tea.Quit
	}
	return m.resume()
}

func (m *Model) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.logger.Error("simulation stopped", "err", err)
	return m, tea.Quit
}

// size returns the maze size for the current terminal.
func (m *Model) size() (rows, cols int) {
	rows, cols = m.cfg.Rows, m.cfg.Cols
	fitRows, fitCols := render.FitSize(m.width, m.height-reservedLines)
	if rows == 0 {
		rows = fitRows
	}
	if cols == 0 {
		cols = fitCols
	}
	return rows, cols
}

// restart replaces the simulation with a fresh maze for round.
func (m *Model) restart(round int) error {
	rows, cols := m.size()
	seed := roundSeed(m.cfg, round, m.random)
	s, err := newRound(m.cfg, rows, cols, seed, m.logger)
	if err != nil {
		return err
	}

	m.sim = s
	m.round = round
	m.seed = seed
	m.rows, m.cols = rows, cols
	m.hold = 0
	m.phase = phaseGenerating
	if s.Generated() {
		m.phase = phaseSolving
	}
	m.redraw()
	return nil
}

// advance moves the current phase forward by one frame.
func (m *Model) advance() error {
	switch m.phase {
	case phaseGenerating:
		steps := max(1, 2*m.rows*m.cols/generationFrames)
		for i := 0; i < steps; i++ {
			if !m.sim.BuildStep() {
				if err := spawn(m.cfg, m.sim, m.rows, m.cols); err != nil {
					return err
				}
				m.phase = phaseSolving
				break
			}
		}
	case phaseSolving:
		if m.sim.Tick() {
			m.phase = phaseDone
			snap := m.sim.Snapshot()
			m.logger.Info("round finished",
				"round", m.round,
				"seed", m.seed,
				"ticks", snap.Tick,
				"solved", snap.Solved(),
				"agents", len(snap.Agents),
			)
		}
	case phaseDone:
		if m.cfg.Loop {
			m.hold++
			if m.hold >= restartHold {
				return m.restart(m.round + 1)
			}
		}
	}
	m.redraw()
	return nil
}

func (m *Model) redraw() {
	m.snap = m.sim.Snapshot()
	m.drawErr = m.canvas.Draw(m.snap)
}

// Run animates simulations in the terminal until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) error {
	model, err := NewModel(cfg, opts...)
	if err != nil {
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if m, ok := final.(*Model); ok && m.err != nil {
		return m.err
	}
	return nil
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TerminalSize returns the size of the terminal behind w.
func TerminalSize(w io.Writer) (width, height int, ok bool) {
	f, isFile := w.(*os.File)
	if !isFile {
		return 0, 0, false
	}
	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}
