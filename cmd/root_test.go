// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/mazerun/internal/config"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()

	done := make(chan []byte)
	go func() {
		output, _ := io.ReadAll(r)
		done <- output
	}()

	runErr := fn()
	_ = w.Close()
	output := <-done
	_ = r.Close()

	return string(output), runErr
}

// isolate runs the test in an empty working directory with an empty home and
// no MAZERUN_ variables, so no real config file leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range config.Keys() {
		t.Setenv("MAZERUN_"+strings.ToUpper(key), "")
	}
	t.Setenv("MAZERUN_LOG_DIR", filepath.Join(home, "logs"))
	t.Chdir(work)
	return work
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{{"--help"}, {"-h"}, {"help"}, {"--version"}, {"-v"}, {"version"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			out, err := captureStdout(t, func() error {
				return Run(context.Background(), args)
			})
			if err != nil {
				t.Errorf("Run(%v): %v", args, err)
			}
			if !strings.Contains(out, "mazerun") && !strings.Contains(out, "Mazerun") {
				t.Errorf("Run(%v) output:\n%s", args, out)
			}
		})
	}

	t.Run("unknown command returns error", func(t *testing.T) {
		err := Run(context.Background(), []string{"unknown-command"})
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("invalid flag value returns config error", func(t *testing.T) {
		err := Run(context.Background(), []string{"-walls", "brick", "solve"})
		if err == nil || !strings.Contains(err.Error(), "wall_style") {
			t.Errorf("expected wall_style error, got %v", err)
		}
	})
}

func TestSolveCommand(t *testing.T) {
	isolate(t)

	out, err := captureStdout(t, func() error {
		return Run(context.Background(), []string{"-rows", "4", "-cols", "6", "-seed", "42", "-n", "2", "solve"})
	})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 9+1+2 {
		t.Fatalf("got %d lines, want frame, status and two summaries:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "seed 42") || !strings.Contains(out, "solved 2/2") {
		t.Errorf("unexpected output:\n%s", out)
	}

	again, err := captureStdout(t, func() error {
		return Run(context.Background(), []string{"-rows", "4", "-cols", "6", "-seed", "42", "-n", "2", "solve"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if again != out {
		t.Error("same seed produced different output")
	}
}

func TestRunWithoutTerminalSolvesHeadlessly(t *testing.T) {
	isolate(t)

	out, err := captureStdout(t, func() error {
		return Run(context.Background(), []string{"-seed", "1"})
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len([]rune(lines[0])) != 2*fallbackCols+1 {
		t.Errorf("first line %q: want the fallback width", lines[0])
	}
	if !strings.Contains(out, "agent 0: solved") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestSolveCancelled(t *testing.T) {
	isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := captureStdout(t, func() error {
		return Run(ctx, []string{"-rows", "3", "-cols", "3", "solve"})
	})
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestBenchCommand(t *testing.T) {
	isolate(t)

	args := []string{"-rows", "5", "-cols", "5", "-seed", "3", "bench", "-mazes", "4", "-workers", "2"}
	out, err := captureStdout(t, func() error {
		return Run(context.Background(), args)
	})
	if err != nil {
		t.Fatalf("bench: %v", err)
	}
	for _, want := range []string{"5x5 maze, 1 agents, priority tie-break", "seed 3 ", "seed 6 ", "solved 4/4 agents"} {
		if !strings.Contains(out, want) {
			t.Errorf("bench output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "seed 7 ") {
		t.Errorf("bench solved more than 4 mazes:\n%s", out)
	}

	if err := Run(context.Background(), []string{"bench", "-mazes", "0"}); err == nil {
		t.Error("expected error for zero mazes")
	}
}

func TestConfigCommand(t *testing.T) {
	work := isolate(t)
	if err := os.WriteFile(filepath.Join(work, "mazerun.toml"), []byte("rows = 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"config"}, "rows = 7"},
		{[]string{"-cols", "9", "config", "show"}, "# flag"},
		{[]string{"config", "example"}, "# mazerun configuration file"},
		{[]string{"config", "schema"}, `"wall_style"`},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := captureStdout(t, func() error {
				return Run(context.Background(), tt.args)
			})
			if err != nil {
				t.Fatalf("Run(%v): %v", tt.args, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("Run(%v) output missing %q:\n%s", tt.args, tt.want, out)
			}
		})
	}

	if err := Run(context.Background(), []string{"config", "bogus"}); err == nil {
		t.Error("expected error for unknown config command")
	}
}

func TestInitCommand(t *testing.T) {
	work := isolate(t)
	path := filepath.Join(work, "mazerun.toml")

	if _, err := captureStdout(t, func() error { return initCommand(nil) }); err != nil {
		t.Fatalf("initCommand: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != config.ExampleConfig() {
		t.Error("config file does not match example config")
	}

	if err := os.WriteFile(path, []byte("rows = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := captureStdout(t, func() error { return initCommand(nil) }); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != "rows = 3\n" {
		t.Error("existing config was overwritten without -force")
	}

	if _, err := captureStdout(t, func() error { return initCommand([]string{"-force"}) }); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != config.ExampleConfig() {
		t.Error("-force did not overwrite the config")
	}
}

func TestDoctorCommand(t *testing.T) {
	isolate(t)

	out, err := captureStdout(t, func() error {
		return Run(context.Background(), []string{"doctor"})
	})
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	for _, want := range []string{"using defaults", "not a terminal", "All checks passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestLogsCommand(t *testing.T) {
	isolate(t)
	logDir := os.Getenv("MAZERUN_LOG_DIR")

	out, err := captureStdout(t, func() error {
		return Run(context.Background(), []string{"logs"})
	})
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "No log files found") {
		t.Errorf("unexpected output: %q", out)
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(logDir, "run.log"), []byte("a\nb\nc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = captureStdout(t, func() error {
		return Run(context.Background(), []string{"logs", "-n", "1"})
	})
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.HasSuffix(out, "\nc\n") || strings.Contains(out, "\nb\n") {
		t.Errorf("unexpected output: %q", out)
	}
}
