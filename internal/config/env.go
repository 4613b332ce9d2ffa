package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/nibzard/mazerun/internal/utils"
)

const envPrefix = "MAZERUN_"

// loadFromEnv overrides config from MAZERUN_* environment variables.
// Malformed values are collected and returned together.
func loadFromEnv(cfg *Config, sources map[string]Source) error {
	var errs error

	str := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + strings.ToUpper(key)); v != "" {
			*dst = v
			sources[key] = SourceEnv
		}
	}
	num := func(key string, dst *int) {
		name := envPrefix + strings.ToUpper(key)
		v := os.Getenv(name)
		if v == "" {
			return
		}
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %q is not an integer", name, v))
			return
		}
		*dst = i
		sources[key] = SourceEnv
	}
	boolean := func(key string, dst *bool) {
		if v := os.Getenv(envPrefix + strings.ToUpper(key)); v != "" {
			*dst = boolFromString(v)
			sources[key] = SourceEnv
		}
	}
	position := func(key string, dst *[]int) {
		name := envPrefix + strings.ToUpper(key)
		v := os.Getenv(name)
		if v == "" {
			return
		}
		p, err := parsePosition(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = p
		sources[key] = SourceEnv
	}

	num("rows", &cfg.Rows)
	num("cols", &cfg.Cols)
	if v := os.Getenv(envPrefix + "SEED"); v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%sSEED: %q is not an unsigned integer", envPrefix, v))
		} else {
			cfg.Seed = &seed
			sources["seed"] = SourceEnv
		}
	}

	num("agents", &cfg.Agents)
	str("tie_break", &cfg.TieBreak)
	num("agent_stagger", &cfg.AgentStagger)
	position("start", &cfg.Start)
	position("goal", &cfg.Goal)

	num("frame_delay_ms", &cfg.FrameDelayMS)
	boolean("animate_generation", &cfg.AnimateGeneration)
	boolean("interactive", &cfg.Interactive)
	boolean("loop", &cfg.Loop)

	str("wall_style", &cfg.WallStyle)
	str("border_style", &cfg.BorderStyle)
	num("wall_color", &cfg.WallColor)
	str("agent_style", &cfg.AgentStyle)

	str("log_dir", &cfg.LogDir)
	str("log_level", &cfg.LogLevel)
	str("log_format", &cfg.LogFormat)
	boolean("log_timestamps", &cfg.LogTimestamps)
	boolean("log_caller", &cfg.LogCaller)

	return errs
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// parsePosition parses "row,col".
func parsePosition(s string) ([]int, error) {
	parts := utils.SplitAndTrim(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("position %q: want row,col", s)
	}
	pos := make([]int, 2)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("position %q: want row,col", s)
		}
		pos[i] = n
	}
	return pos, nil
}

func formatPosition(p []int) string {
	if len(p) != 2 {
		return ""
	}
	return strconv.Itoa(p[0]) + "," + strconv.Itoa(p[1])
}
