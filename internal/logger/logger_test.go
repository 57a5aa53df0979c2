package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestLogRotation(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "meshpcd.log")

	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  1, // smallest lumberjack allows
		MaxBackups: 2,
		MaxAgeDays: 1,
		Compress:   false,
	}

	log, err := New("debug", cfg, nil)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	// ~250 bytes per line, enough to pass 1MB.
	object := strings.Repeat("x", 200)
	for i := 0; i < 6000; i++ {
		log.Info("exported point cloud", zap.String("object", object), zap.Int("points", i))
	}
	_ = log.Sync()

	files, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}

	rotated := 0
	for _, f := range files {
		name := f.Name()
		if name == "meshpcd.log" {
			continue
		}
		if strings.HasPrefix(name, "meshpcd-20") && strings.HasSuffix(name, ".log") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated files found in %v", files)
	}
	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("main log file: %v", err)
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{
			level:    "error",
			expected: []string{"ERROR"},
			excluded: []string{"WARN", "INFO", "DEBUG"},
		},
		{
			level:    "warn",
			expected: []string{"ERROR", "WARN"},
			excluded: []string{"INFO", "DEBUG"},
		},
		{
			level:    "info",
			expected: []string{"ERROR", "WARN", "INFO"},
			excluded: []string{"DEBUG"},
		},
		{
			level:    "debug",
			expected: []string{"ERROR", "WARN", "INFO", "DEBUG"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), tt.level+".log")
			log, err := New(tt.level, FileConfig{Path: logFile, MaxSizeMB: 10}, nil)
			if err != nil {
				t.Fatalf("failed to create logger: %v", err)
			}

			log.Debug("sampled mesh")
			log.Info("exported point cloud")
			log.Warn("output overwritten")
			log.Error("export failed")
			_ = log.Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			logContent := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(logContent, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(logContent, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", FileConfig{}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("exported point cloud", zap.String("object", "Cube"))

	if !strings.Contains(buf.String(), "exported point cloud") || !strings.Contains(buf.String(), `"object": "Cube"`) {
		t.Errorf("unexpected console output %q", buf.String())
	}
}

func TestInit(t *testing.T) {
	prev, prevSugar := Log, Sugar
	t.Cleanup(func() { Log, Sugar = prev, prevSugar })

	var buf bytes.Buffer
	if err := Init("debug", "", &buf); err != nil {
		t.Fatal(err)
	}
	Sugar.Debugw("asset library cache", "hits", 2)

	if !strings.Contains(buf.String(), "asset library cache") {
		t.Errorf("unexpected console output %q", buf.String())
	}
	if err := Init("loud", "", &buf); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"", "debug", "info", "warn", "error"} {
		if _, err := ParseLevel(lvl); err != nil {
			t.Errorf("ParseLevel(%q): %v", lvl, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewWithoutOutputs(t *testing.T) {
	log, err := New("info", FileConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("discarded")
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/meshpcd.log")

	if cfg.Path != "/tmp/meshpcd.log" {
		t.Errorf("expected path /tmp/meshpcd.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 {
		t.Errorf("expected MaxSizeMB 50, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
