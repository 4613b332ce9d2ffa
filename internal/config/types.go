package config

import (
	"time"

	"github.com/nibzard/mazerun/internal/grid"
)

// Source represents where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultRows         = 0
	DefaultCols         = 0
	DefaultAgents       = 1
	DefaultFrameDelayMS = 40
	DefaultWallStyle    = "solid"
	DefaultWallColor    = 7
	DefaultAgentStyle   = "smiley"
	DefaultTieBreak     = "priority"
	DefaultLogDir       = "~/.mazerun/logs"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config holds the full configuration for mazerun.
type Config struct {
	// Maze
	Rows int     `toml:"rows" json:"rows"`
	Cols int     `toml:"cols" json:"cols"`
	Seed *uint64 `toml:"seed" json:"seed,omitempty"`

	// Agents
	Agents       int    `toml:"agents" json:"agents"`
	TieBreak     string `toml:"tie_break" json:"tie_break"`
	AgentStagger int    `toml:"agent_stagger" json:"agent_stagger"`
	Start        []int  `toml:"start" json:"start,omitempty"`
	Goal         []int  `toml:"goal" json:"goal,omitempty"`

	// Animation
	FrameDelayMS      int  `toml:"frame_delay_ms" json:"frame_delay_ms"`
	AnimateGeneration bool `toml:"animate_generation" json:"animate_generation"`
	Interactive       bool `toml:"interactive" json:"interactive"`
	Loop              bool `toml:"loop" json:"loop"`

	// Look
	WallStyle   string `toml:"wall_style" json:"wall_style"`
	BorderStyle string `toml:"border_style" json:"border_style"` // empty: same as wall_style
	WallColor   int    `toml:"wall_color" json:"wall_color"`
	AgentStyle  string `toml:"agent_style" json:"agent_style"`

	// Logging configuration
	LogDir        string `toml:"log_dir" json:"log_dir"`
	LogLevel      string `toml:"log_level" json:"log_level"`
	LogFormat     string `toml:"log_format" json:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps" json:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller" json:"log_caller"`
}

// WithSources holds configuration along with the source of each key.
type WithSources struct {
	Config  *Config
	Sources map[string]Source
	Files   []string
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Rows = DefaultRows
	cfg.Cols = DefaultCols
	cfg.Agents = DefaultAgents
	cfg.TieBreak = DefaultTieBreak
	cfg.FrameDelayMS = DefaultFrameDelayMS
	cfg.AnimateGeneration = true
	cfg.WallStyle = DefaultWallStyle
	cfg.WallColor = DefaultWallColor
	cfg.AgentStyle = DefaultAgentStyle
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// Keys lists every configuration key in file order.
func Keys() []string {
	return []string{
		"rows", "cols", "seed",
		"agents", "tie_break", "agent_stagger", "start", "goal",
		"frame_delay_ms", "animate_generation", "interactive", "loop",
		"wall_style", "border_style", "wall_color", "agent_style",
		"log_dir", "log_level", "log_format", "log_timestamps", "log_caller",
	}
}

// FrameDelay returns the pause between animation frames.
func (c *Config) FrameDelay() time.Duration {
	return time.Duration(c.FrameDelayMS) * time.Millisecond
}

// AutoSize reports whether either maze dimension follows the terminal.
func (c *Config) AutoSize() bool {
	return c.Rows == 0 || c.Cols == 0
}

// Endpoints resolves the start and goal cells for a rows x cols maze. Unset
// endpoints default to the top-left and bottom-right corners.
func (c *Config) Endpoints(rows, cols int) (start, goal grid.Position) {
	start = grid.Position{}
	goal = grid.Position{Row: rows - 1, Col: cols - 1}
	if len(c.Start) == 2 {
		start = grid.Position{Row: c.Start[0], Col: c.Start[1]}
	}
	if len(c.Goal) == 2 {
		goal = grid.Position{Row: c.Goal[0], Col: c.Goal[1]}
	}
	return start, goal
}
