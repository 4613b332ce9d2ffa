// Package cmd implements the CLI command structure for mazerun.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/mazerun/internal/agent"
	"github.com/nibzard/mazerun/internal/config"
	"github.com/nibzard/mazerun/internal/logging"
	"github.com/nibzard/mazerun/internal/parallel"
	"github.com/nibzard/mazerun/internal/render"
	"github.com/nibzard/mazerun/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

const (
	// Maze size for auto-sized runs when stdout is not a terminal.
	fallbackRows = 12
	fallbackCols = 30
	// Run logs kept in the log directory.
	keepLogs = 20
)

// Run executes the mazerun CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mazerun", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}
	cfg := cws.Config

	subcommand := "run"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "run":
		return runCommand(ctx, cfg, remainingArgs)
	case "solve":
		return solveCommand(ctx, cfg, remainingArgs)
	case "bench":
		return benchCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cws, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "logs":
		return logsCommand(cfg, remainingArgs)
	case "init":
		return initCommand(remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// runCommand animates mazes in the terminal, or solves one headlessly when
// stdout is not a terminal.
func runCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mazerun run", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if !ui.IsTTY(os.Stdout) {
		return solve(ctx, cfg, false)
	}

	runLog, err := logging.NewRunLogger(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer runLog.Close()
	logger := newLogger(cfg, runLog.Writer()).With("run", runLog.RunID)
	if err := logging.Prune(runLog.Dir, keepLogs); err != nil {
		logger.Warn("pruning old logs", "err", err)
	}
	logger.Info("run started", "version", Version, "rows", cfg.Rows, "cols", cfg.Cols, "agents", cfg.Agents)

	opts := []ui.Option{ui.WithLogger(logger)}
	if width, height, ok := ui.TerminalSize(os.Stdout); ok {
		opts = append(opts, ui.WithTerminalSize(width, height))
	}
	if err := ui.Run(ctx, cfg, opts...); err != nil {
		logger.Error("run failed", "err", err)
		return err
	}
	logger.Info("run finished")
	return nil
}

// solveCommand solves one maze without animation.
func solveCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mazerun solve", flag.ContinueOnError)
	frames := fs.Bool("frames", false, "Print every frame, not only the last")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return solve(ctx, cfg, *frames)
}

func solve(ctx context.Context, cfg *config.Config, frames bool) error {
	opts := ui.HeadlessOptions{
		Rows:   fallbackRows,
		Cols:   fallbackCols,
		Frames: frames,
		Logger: newLogger(cfg, os.Stderr),
	}
	if width, height, ok := ui.TerminalSize(os.Stdout); ok {
		opts.Rows, opts.Cols = render.FitSize(width, height-1-cfg.Agents)
	}
	_, err := ui.RunHeadless(ctx, cfg, os.Stdout, opts)
	return err
}

// benchCommand solves many mazes concurrently and prints tick statistics.
func benchCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mazerun bench", flag.ContinueOnError)
	mazes := fs.Int("mazes", 20, "Number of mazes to solve")
	workers := fs.Int("workers", runtime.NumCPU(), "Mazes solved at once (0 = one goroutine per maze)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	tieBreak, err := agent.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return err
	}
	rows, cols := cfg.Rows, cfg.Cols
	if rows == 0 {
		rows = fallbackRows
	}
	if cols == 0 {
		cols = fallbackCols
	}
	start, goal := cfg.Endpoints(rows, cols)
	seed := rand.Uint64()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	report, err := parallel.Bench(ctx, parallel.BenchOptions{
		Rows:     rows,
		Cols:     cols,
		Agents:   cfg.Agents,
		TieBreak: tieBreak,
		Start:    start,
		Goal:     goal,
		Seed:     seed,
		Mazes:    *mazes,
		Workers:  *workers,
		Logger:   newLogger(cfg, os.Stderr),
	})
	if err != nil {
		return err
	}

	fmt.Printf("%dx%d maze, %d agents, %s tie-break\n\n", rows, cols, cfg.Agents, tieBreak)
	for _, m := range report.Mazes {
		fmt.Printf("seed %-20d %6d ticks  solved %d/%d  %5d steps  %4d dead ends\n",
			m.Seed, m.Ticks, m.Solved, cfg.Agents, m.Steps, m.DeadEnds)
	}
	fmt.Println()
	fmt.Printf("ticks: min %d  max %d  mean %.1f\n", report.MinTicks, report.MaxTicks, report.MeanTicks)
	fmt.Printf("solved %d/%d agents\n", report.Solved, report.Agents)
	return nil
}

// doctorCommand checks the terminal, the configuration and the log directory.
func doctorCommand(cws *config.WithSources, args []string) error {
	fs := flag.NewFlagSet("mazerun doctor", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := cws.Config

	fmt.Println("Mazerun Doctor")
	fmt.Println("==============")
	fmt.Println()

	allOK := true

	fmt.Println("Config:")
	if len(cws.Files) == 0 {
		fmt.Println("  ✅ No config files (using defaults)")
	}
	for _, f := range cws.Files {
		fmt.Printf("  ✅ Loaded %s\n", f)
	}
	fmt.Println("  ✅ Valid")
	fmt.Println()

	fmt.Println("Terminal:")
	width, height, ok := ui.TerminalSize(os.Stdout)
	if !ok {
		fmt.Printf("  ⚠️  stdout is not a terminal; run will solve headlessly (auto size %dx%d)\n", fallbackRows, fallbackCols)
	} else {
		fmt.Printf("  ✅ %dx%d characters\n", width, height)
		rows, cols := render.FitSize(width, height-2)
		if cfg.Rows > rows || cfg.Cols > cols {
			fmt.Printf("  ❌ A %dx%d maze needs %dx%d characters\n", cfg.Rows, cfg.Cols, 2*cfg.Cols+1, 2*cfg.Rows+3)
			allOK = false
		} else {
			if cfg.Rows > 0 {
				rows = cfg.Rows
			}
			if cfg.Cols > 0 {
				cols = cfg.Cols
			}
			fmt.Printf("  ✅ Maze size %dx%d\n", rows, cols)
		}
	}
	fmt.Println()

	fmt.Printf("Log directory: %s\n", cfg.LogDir)
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// configCommand prints the effective configuration, an example file or the
// config schema.
func configCommand(cws *config.WithSources, args []string) error {
	what := "show"
	if len(args) > 0 {
		what = args[0]
	}
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}

	switch what {
	case "show":
		return cws.Print(os.Stdout)
	case "example":
		_, err := io.WriteString(os.Stdout, config.ExampleConfig())
		return err
	case "schema":
		_, err := os.Stdout.Write(config.Schema())
		return err
	default:
		return fmt.Errorf("unknown config command: %s (expected show, example or schema)", what)
	}
}

// initCommand writes an example mazerun.toml to the working directory.
func initCommand(args []string) error {
	fs := flag.NewFlagSet("mazerun init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing mazerun.toml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	const path = "mazerun.toml"
	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Printf("%s already exists (use -force to overwrite)\n", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// logsCommand prints the latest run log.
func logsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mazerun logs", flag.ContinueOnError)
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logPath, err := logging.FindLatestLog(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Println("No log files found.")
		return nil
	}
	fmt.Printf("Log: %s\n\n", logPath)
	return logging.TailLog(os.Stdout, logPath, *n)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("mazerun version %s\n", Version)
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	return logging.NewFromConfig(w, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Mazerun - generate a maze and watch agents solve it")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mazerun [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                     Animate in the terminal (default command)")
	fmt.Fprintln(w, "  solve [-frames]         Solve one maze and print the result")
	fmt.Fprintln(w, "  bench [-mazes n] [-workers n]")
	fmt.Fprintln(w, "                          Solve many mazes concurrently and print tick statistics")
	fmt.Fprintln(w, "  doctor                  Check terminal, config and log directory")
	fmt.Fprintln(w, "  config [show|example|schema]")
	fmt.Fprintln(w, "                          Print effective config, an example file or the schema")
	fmt.Fprintln(w, "  logs [-n lines]         Print the latest run log")
	fmt.Fprintln(w, "  init [-force]           Write an example mazerun.toml")
	fmt.Fprintln(w, "  version                 Show version information")
	fmt.Fprintln(w, "  help                    Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keys (run):")
	fmt.Fprintln(w, "  space      Pause or resume (step in interactive mode)")
	fmt.Fprintln(w, "  n, enter   Advance one frame")
	fmt.Fprintln(w, "  r          New maze")
	fmt.Fprintln(w, "  q, esc     Quit")
}
