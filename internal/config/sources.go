package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Value returns the effective value of key formatted as TOML.
func (c *Config) Value(key string) string {
	switch key {
	case "rows":
		return strconv.Itoa(c.Rows)
	case "cols":
		return strconv.Itoa(c.Cols)
	case "seed":
		if c.Seed == nil {
			return `"random"`
		}
		return strconv.FormatUint(*c.Seed, 10)
	case "agents":
		return strconv.Itoa(c.Agents)
	case "tie_break":
		return strconv.Quote(c.TieBreak)
	case "agent_stagger":
		return strconv.Itoa(c.AgentStagger)
	case "start":
		return formatList(c.Start)
	case "goal":
		return formatList(c.Goal)
	case "frame_delay_ms":
		return strconv.Itoa(c.FrameDelayMS)
	case "animate_generation":
		return strconv.FormatBool(c.AnimateGeneration)
	case "interactive":
		return strconv.FormatBool(c.Interactive)
	case "loop":
		return strconv.FormatBool(c.Loop)
	case "wall_style":
		return strconv.Quote(c.WallStyle)
	case "border_style":
		return strconv.Quote(c.BorderStyle)
	case "wall_color":
		return strconv.Itoa(c.WallColor)
	case "agent_style":
		return strconv.Quote(c.AgentStyle)
	case "log_dir":
		return strconv.Quote(c.LogDir)
	case "log_level":
		return strconv.Quote(c.LogLevel)
	case "log_format":
		return strconv.Quote(c.LogFormat)
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	}
	return ""
}

func formatList(p []int) string {
	if len(p) == 0 {
		return "[]"
	}
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Print writes every key with its value and source.
func (cws *WithSources) Print(w io.Writer) error {
	for _, f := range cws.Files {
		if _, err := fmt.Fprintf(w, "# loaded %s\n", f); err != nil {
			return err
		}
	}
	for _, key := range Keys() {
		line := fmt.Sprintf("%s = %s", key, cws.Config.Value(key))
		if _, err := fmt.Fprintf(w, "%-34s # %s\n", line, cws.Sources[key]); err != nil {
			return err
		}
	}
	return nil
}
