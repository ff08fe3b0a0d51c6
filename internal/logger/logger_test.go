package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNopBeforeInit(t *testing.T) {
	if Log == nil || Sugar == nil {
		t.Fatal("global loggers must never be nil")
	}
	Info("discarded")
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{level: "error", expected: []string{"ERROR"}, excluded: []string{"WARN", "INFO", "DEBUG"}},
		{level: "warn", expected: []string{"ERROR", "WARN"}, excluded: []string{"INFO", "DEBUG"}},
		{level: "info", expected: []string{"ERROR", "WARN", "INFO"}, excluded: []string{"DEBUG"}},
		{level: "DEBUG", expected: []string{"ERROR", "WARN", "INFO", "DEBUG"}},
		{level: "bogus", expected: []string{"INFO"}, excluded: []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), "teapot.log")
			cfg := DefaultFileConfig(logFile)
			cfg.Compress = false
			if err := InitWithFileConfig(tt.level, cfg, false); err != nil {
				t.Fatalf("init: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			data, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("read log: %v", err)
			}
			out := string(data)
			for _, want := range tt.expected {
				if !strings.Contains(out, want) {
					t.Errorf("level %s: expected %s in output", tt.level, want)
				}
			}
			for _, skip := range tt.excluded {
				if strings.Contains(out, skip) {
					t.Errorf("level %s: unexpected %s in output", tt.level, skip)
				}
			}
		})
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := initCores(zapcore.InfoLevel, FileConfig{}, &buf); err != nil {
		t.Fatal(err)
	}
	Named("scene").Info("Mesh ready", zap.Int("triangles", 12))
	Sync()

	out := buf.String()
	if !strings.Contains(out, "Mesh ready") || !strings.Contains(out, `"triangles": 12`) {
		t.Errorf("console output missing fields: %q", out)
	}
}

func TestNoOutputsIsNop(t *testing.T) {
	if err := InitWithFileConfig("info", FileConfig{}, false); err != nil {
		t.Fatal(err)
	}
	if Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger with no outputs should be disabled")
	}
}
