package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file (overrides user config)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and records which layer set each key.
func LoadWithSources(fs *flag.FlagSet, args []string) (*WithSources, error) {
	cfg := &Config{}
	cws := &WithSources{Config: cfg, Sources: make(map[string]Source)}

	// 1. Defaults
	setDefaults(cfg)
	for _, key := range Keys() {
		cws.Sources[key] = SourceDefault
	}

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, cws.Sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}

	// 3. Project config file
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, cws.Sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}

	// 4. Environment
	if err := loadFromEnv(cfg, cws.Sources); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	// 5. Flags
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Derived values and validation
	if err := finalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cws, nil
}

// loadConfigFile decodes a TOML file over cfg. Keys present in the file are
// attributed to source; keys mazerun does not know are rejected.
func loadConfigFile(cfg *Config, path string, sources map[string]Source, source Source) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	for _, k := range md.Keys() {
		if len(k) == 1 {
			sources[k[0]] = source
		}
	}
	return nil
}

// finalizeConfig normalizes values and validates the merged result.
func finalizeConfig(cfg *Config) error {
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.WallStyle = strings.ToLower(strings.TrimSpace(cfg.WallStyle))
	cfg.BorderStyle = strings.ToLower(strings.TrimSpace(cfg.BorderStyle))
	cfg.AgentStyle = strings.ToLower(strings.TrimSpace(cfg.AgentStyle))
	cfg.TieBreak = strings.ToLower(strings.TrimSpace(cfg.TieBreak))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	return Validate(cfg)
}
