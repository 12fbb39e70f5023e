package logger

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
)

// TestNewConsoleLogger verifies the constructor wires both writers.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writers", func(t *testing.T) {
		out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
		logger := NewConsoleLogger(out, errOut, "info")

		if logger.out != out || logger.errOut != errOut {
			t.Error("writers not set correctly")
		}
		if logger.colorErr {
			t.Error("buffers must never get color output")
		}
	})

	t.Run("with nil writers", func(t *testing.T) {
		logger := NewConsoleLogger(nil, nil, "trace")
		logger.LogRename("a1", "a001", false)
		logger.LogFileError(errors.New("boom"), "x")
		logger.LogTrace("nothing")

		if got := logger.Stats(); got.Renames != 1 || got.Errors != 1 {
			t.Errorf("Stats() = %+v, want 1 rename and 1 error", got)
		}
	})
}

// TestLogRename verifies the exact stdout line.
func TestLogRename(t *testing.T) {
	tests := []struct {
		name   string
		dryRun bool
		want   string
	}{
		{name: "real run", dryRun: false, want: "Will rename dir/img7.jpg -> dir/img007.jpg\n"},
		{name: "dry run", dryRun: true, want: "Would rename dir/img7.jpg -> dir/img007.jpg\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			logger := NewConsoleLogger(out, errOut, "error")

			logger.LogRename("dir/img7.jpg", "dir/img007.jpg", tt.dryRun)

			if out.String() != tt.want {
				t.Errorf("stdout = %q, want %q", out.String(), tt.want)
			}
			if errOut.Len() != 0 {
				t.Errorf("stderr = %q, want empty", errOut.String())
			}
		})
	}
}

// TestLogFileError verifies the exact stderr line regardless of level.
func TestLogFileError(t *testing.T) {
	for _, level := range []string{"trace", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			logger := NewConsoleLogger(out, errOut, level)

			logger.LogFileError(errors.New("Doesn't match regex"), "dir/readme.md")

			want := "Error: Doesn't match regex @ dir/readme.md\n"
			if errOut.String() != want {
				t.Errorf("stderr = %q, want %q", errOut.String(), want)
			}
			if out.Len() != 0 {
				t.Errorf("stdout = %q, want empty", out.String())
			}
		})
	}
}

// TestContractLinesOnTerminal verifies color never reaches the contract lines.
func TestContractLinesOnTerminal(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = saved })

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	logger := NewConsoleLogger(out, errOut, "debug")
	logger.colorErr = true

	logger.LogRename("dir/img7.jpg", "dir/img00007.jpg", false)
	logger.LogFileError(errors.New("Cannot rename"), "dir/img7.jpg")

	if want := "Will rename dir/img7.jpg -> dir/img00007.jpg\n"; out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
	if want := "Error: Cannot rename @ dir/img7.jpg\n"; errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}

	// Level tags are still colored.
	errOut.Reset()
	logger.LogDebug("checking img7.jpg")
	if !strings.Contains(errOut.String(), "\x1b[") {
		t.Errorf("expected a colored level tag, got %q", errOut.String())
	}
}

// TestLogWithLevelFormat verifies diagnostic lines carry timestamp and level.
func TestLogWithLevelFormat(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	logger := NewConsoleLogger(out, errOut, "debug")

	logger.LogDebug("checking img7.jpg")

	line := errOut.String()
	if !strings.HasPrefix(line, "[") || !strings.Contains(line, "] [DEBUG] checking img7.jpg\n") {
		t.Errorf("unexpected diagnostic line %q", line)
	}
	if out.Len() != 0 {
		t.Errorf("diagnostics must not reach stdout, got %q", out.String())
	}
}

// TestLogSummary verifies totals are reported at info level only.
func TestLogSummary(t *testing.T) {
	errOut := &bytes.Buffer{}
	logger := NewConsoleLogger(nil, errOut, "info")
	logger.LogRename("a1", "a001", false)
	logger.LogRename("b2", "b002", false)
	logger.LogFileError(errors.New("Cannot rename"), "c3")
	errOut.Reset()

	logger.LogSummary(1500 * time.Millisecond)
	if !strings.Contains(errOut.String(), "2 rename(s), 1 error(s) in 1.5s") {
		t.Errorf("summary = %q", errOut.String())
	}

	quiet := &bytes.Buffer{}
	NewConsoleLogger(nil, quiet, "warn").LogSummary(time.Second)
	if quiet.Len() != 0 {
		t.Errorf("summary should be hidden at warn level, got %q", quiet.String())
	}
}

// TestConsoleLoggerConcurrentAccess verifies lines never interleave.
func TestConsoleLoggerConcurrentAccess(t *testing.T) {
	out := &bytes.Buffer{}
	logger := NewConsoleLogger(out, nil, "warn")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.LogRename("old7", "new007", false)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 200 {
		t.Fatalf("got %d lines, want 200", len(lines))
	}
	for _, line := range lines {
		if line != "Will rename old7 -> new007" {
			t.Fatalf("corrupted line %q", line)
		}
	}
	if logger.Stats().Renames != 200 {
		t.Errorf("Stats().Renames = %d, want 200", logger.Stats().Renames)
	}
}
