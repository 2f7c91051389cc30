package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initFile points the logger at a fresh file without console output.
func initFile(t *testing.T, lvl string, cfg FileConfig) string {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "derky.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 1
	}
	if err := InitWithFileConfig(lvl, cfg, false); err != nil {
		t.Fatalf("InitWithFileConfig(%q): %v", lvl, err)
	}
	t.Cleanup(func() {
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	})
	return cfg.Path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestLevelFiltering(t *testing.T) {
	all := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	tests := []struct {
		level string
		first int // index into all of the lowest level written
	}{
		{"debug", 0},
		{"info", 1},
		{"warn", 2},
		{"error", 3},
		{"bogus", 1},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := initFile(t, tt.level, FileConfig{})

			Debug("pass geometry")
			Info("pass lighting")
			Warn("pass composition")
			Error("present")

			out := readLog(t, path)
			for i, name := range all {
				got := strings.Contains(out, name)
				if want := i >= tt.first; got != want {
					t.Errorf("%s present = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestRotation(t *testing.T) {
	dir := t.TempDir()
	initFile(t, "info", FileConfig{
		Path:       filepath.Join(dir, "frames.log"),
		MaxSizeMB:  1,
		MaxBackups: 2,
		MaxAgeDays: 1,
	})

	// Roughly 3 MB of output forces lumberjack past its 1 MB limit.
	payload := strings.Repeat("l", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("frame %d luminance %s", i, payload)
	}
	Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var backups int
	for _, e := range entries {
		name := e.Name()
		if name == "frames.log" || !strings.HasPrefix(name, "frames-") {
			continue
		}
		backups++
		if !strings.HasSuffix(name, ".log") {
			t.Errorf("backup %s: want .log suffix", name)
		}
	}
	if backups == 0 {
		t.Errorf("no rotated backups in %v", entries)
	}
}

func TestDefaultFileConfig(t *testing.T) {
	got := DefaultFileConfig("derky.log")
	want := FileConfig{Path: "derky.log", MaxSizeMB: 20, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if got != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", got, want)
	}
}

func TestNamedComponentAndSetLevel(t *testing.T) {
	path := initFile(t, "info", FileConfig{})

	loop := Named("loop")
	loop.Debug("throttled")
	SetLevel("debug")
	if !Enabled(zapcore.DebugLevel) {
		t.Fatal("SetLevel(debug) did not enable debug")
	}
	loop.Debug("frame stats")

	out := readLog(t, path)
	if strings.Contains(out, "throttled") {
		t.Error("debug entry written before SetLevel")
	}
	if !strings.Contains(out, "loop") || !strings.Contains(out, "frame stats") {
		t.Errorf("missing named entry in %q", out)
	}
}

func TestNopBeforeInit(t *testing.T) {
	saved := Log
	defer func() { Log = saved }()

	Log = zap.NewNop()
	Info("dropped")
	Named("application").Warn("dropped")
}
