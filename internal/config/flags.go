package config

import (
	"flag"
	"strconv"
)

// seedFlag is a flag.Value for the optional seed.
type seedFlag struct{ dst **uint64 }

func (f seedFlag) String() string {
	if f.dst == nil || *f.dst == nil {
		return ""
	}
	return strconv.FormatUint(**f.dst, 10)
}

func (f seedFlag) Set(s string) error {
	seed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*f.dst = &seed
	return nil
}

// positionFlag is a flag.Value for "row,col" cells.
type positionFlag struct{ dst *[]int }

func (f positionFlag) String() string {
	if f.dst == nil {
		return ""
	}
	return formatPosition(*f.dst)
}

func (f positionFlag) Set(s string) error {
	p, err := parsePosition(s)
	if err != nil {
		return err
	}
	*f.dst = p
	return nil
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"rows":               "rows",
	"cols":               "cols",
	"seed":               "seed",
	"agents":             "agents",
	"n":                  "agents",
	"tie-break":          "tie_break",
	"stagger":            "agent_stagger",
	"start":              "start",
	"goal":               "goal",
	"delay":              "frame_delay_ms",
	"animate-generation": "animate_generation",
	"interactive":        "interactive",
	"i":                  "interactive",
	"loop":               "loop",
	"walls":              "wall_style",
	"border":             "border_style",
	"wall-color":         "wall_color",
	"agent-style":        "agent_style",
	"log-dir":            "log_dir",
	"log-level":          "log_level",
	"log-format":         "log_format",
	"log-timestamps":     "log_timestamps",
	"log-caller":         "log_caller",
}

// parseFlags defines and parses CLI flags. Flags bind directly to cfg, so
// their defaults show the values loaded from files and the environment.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]Source) error {
	if fs == nil {
		fs = flag.NewFlagSet("mazerun", flag.ContinueOnError)
	}

	// Maze
	fs.IntVar(&cfg.Rows, "rows", cfg.Rows, "Maze rows (0 = fit terminal)")
	fs.IntVar(&cfg.Cols, "cols", cfg.Cols, "Maze columns (0 = fit terminal)")
	fs.Var(seedFlag{&cfg.Seed}, "seed", "Random seed (default random)")

	// Agents
	fs.IntVar(&cfg.Agents, "agents", cfg.Agents, "Number of agents")
	fs.IntVar(&cfg.Agents, "n", cfg.Agents, "Number of agents (shorthand)")
	fs.StringVar(&cfg.TieBreak, "tie-break", cfg.TieBreak, "Agent tie-break policy (priority|rotating|random)")
	fs.IntVar(&cfg.AgentStagger, "stagger", cfg.AgentStagger, "Frames between agent releases (0 = all at once)")
	fs.Var(positionFlag{&cfg.Start}, "start", "Start cell as row,col (default top-left)")
	fs.Var(positionFlag{&cfg.Goal}, "goal", "Goal cell as row,col (default bottom-right)")

	// Animation
	fs.IntVar(&cfg.FrameDelayMS, "delay", cfg.FrameDelayMS, "Delay between frames (milliseconds)")
	fs.BoolVar(&cfg.AnimateGeneration, "animate-generation", cfg.AnimateGeneration, "Animate maze generation")
	fs.BoolVar(&cfg.Interactive, "interactive", cfg.Interactive, "Advance one frame per key press")
	fs.BoolVar(&cfg.Interactive, "i", cfg.Interactive, "Interactive mode (shorthand)")
	fs.BoolVar(&cfg.Loop, "loop", cfg.Loop, "Start a new maze when all agents finish")

	// Look
	fs.StringVar(&cfg.WallStyle, "walls", cfg.WallStyle, "Wall style (solid|curved|double|bold|block|hedge)")
	fs.StringVar(&cfg.BorderStyle, "border", cfg.BorderStyle, "Outer wall style, empty for the wall style")
	fs.IntVar(&cfg.WallColor, "wall-color", cfg.WallColor, "Wall color (ANSI 0-7)")
	fs.StringVar(&cfg.AgentStyle, "agent-style", cfg.AgentStyle, "Agent glyphs (smiley|dot|letter)")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			sources[key] = SourceFlag
		}
	})
	return nil
}
