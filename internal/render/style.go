package render

import (
	"fmt"
	"strings"
)

// WallStyle selects the glyphs used for maze walls.
type WallStyle string

const (
	WallSolid  WallStyle = "solid"
	WallCurved WallStyle = "curved"
	WallDouble WallStyle = "double"
	WallBold   WallStyle = "bold"
	WallBlock  WallStyle = "block"
	WallHedge  WallStyle = "hedge"
)

// WallStyles lists every wall style in display order.
var WallStyles = []WallStyle{WallSolid, WallCurved, WallDouble, WallBold, WallBlock, WallHedge}

// ParseWallStyle parses a wall style name.
func ParseWallStyle(s string) (WallStyle, error) {
	name := WallStyle(strings.ToLower(strings.TrimSpace(s)))
	if name == "" {
		return WallSolid, nil
	}
	for _, ws := range WallStyles {
		if ws == name {
			return ws, nil
		}
	}
	return "", fmt.Errorf("unknown wall style %q", s)
}

// AgentStyle selects the glyph drawn for each agent.
type AgentStyle string

const (
	AgentSmiley AgentStyle = "smiley"
	AgentDot    AgentStyle = "dot"
	AgentLetter AgentStyle = "letter"
)

// AgentStyles lists every agent style.
var AgentStyles = []AgentStyle{AgentSmiley, AgentDot, AgentLetter}

// ParseAgentStyle parses an agent style name.
func ParseAgentStyle(s string) (AgentStyle, error) {
	name := AgentStyle(strings.ToLower(strings.TrimSpace(s)))
	if name == "" {
		return AgentSmiley, nil
	}
	for _, as := range AgentStyles {
		if as == name {
			return as, nil
		}
	}
	return "", fmt.Errorf("unknown agent style %q", s)
}

// Style is the full look of a frame.
type Style struct {
	Walls     WallStyle
	Border    WallStyle // outer wall; empty means Walls
	WallColor int       // ANSI color 0-7
	Agents    AgentStyle
}

// DefaultStyle returns solid white walls and smiley agents.
func DefaultStyle() Style {
	return Style{Walls: WallSolid, WallColor: 7, Agents: AgentSmiley}
}

func (s Style) border() WallStyle {
	if s.Border == "" {
		return s.Walls
	}
	return s.Border
}

// Border glyphs indexed by the set of connected sides:
// bit 0 north, bit 1 east, bit 2 south, bit 3 west.
var (
	bordersSingle = [16]rune{' ', '╵', '╶', '└', '╷', '│', '┌', '├', '╴', '┘', '─', '┴', '┐', '┤', '┬', '┼'}
	bordersCurved = [16]rune{' ', '╵', '╶', '╰', '╷', '│', '╭', '├', '╴', '╯', '─', '┴', '╮', '┤', '┬', '┼'}
	bordersBold   = [16]rune{' ', '╹', '╺', '┗', '╻', '┃', '┏', '┣', '╸', '┛', '━', '┻', '┓', '┫', '┳', '╋'}
	bordersDouble = [16]rune{' ', '╨', '╞', '╚', '╥', '║', '╔', '╠', '╡', '╝', '═', '╩', '╗', '╣', '╦', '╬'}
)

var hedgeGlyphs = []rune("⡟⡪⡯⡳⡵⡷⡹⡺⡻⡼⡽⡾⡿⢏⢕⢗⢜⢝⢞⢟⢮⢯⢷⢻⢽⢾⢿⣎⣏⣕⣗⣝⣞⣟⣣⣧⣪⣫⣮⣯⣳⣵⣷⣹⣺⣻⣼⣽⣾⣿")

const (
	glyphBlock    = '█'
	glyphUncarved = '∎'
	glyphPath     = '·'
	glyphDeadEnd  = '×'
	glyphGoal     = '◎'
	glyphStart    = '○'
	glyphFrontier = '◆'
	glyphStuck    = '✗'
)

func (s Style) agentGlyph(id int) rune {
	switch s.Agents {
	case AgentDot:
		return '●'
	case AgentLetter:
		return rune('A' + id%26)
	default:
		return '☻'
	}
}
