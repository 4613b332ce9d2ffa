// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.mazerun/mazerun.toml or $XDG_CONFIG_HOME/mazerun/mazerun.toml)
// 3. Project config file (mazerun.toml or .mazerun.toml in the working directory)
// 4. Environment variables (MAZERUN_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence. The
// merged result is validated against an embedded JSON schema and a set of
// cross-field checks before it is returned.
package config
