// Package logger is the process-wide zap logger. Components take a child
// via Named so every entry carries the subsystem that wrote it.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log discards everything until Init.
	Log = zap.NewNop()
	// Sugar wraps Log for printf-style calls.
	Sugar = Log.Sugar()

	// level is shared by all cores so SetLevel applies after Init.
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// FileConfig controls the rotating log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig rotates at 20 MB and keeps three compressed backups
// for a week.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{Path: path, MaxSizeMB: 20, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
}

// Init logs to stdout and, when logFile is set, to a rotating file.
func Init(lvl, logFile string) error {
	file := FileConfig{}
	if logFile != "" {
		file = DefaultFileConfig(logFile)
	}
	return InitWithFileConfig(lvl, file, true)
}

// InitWithFileConfig replaces Log. Tests pass console=false to keep stdout
// quiet.
func InitWithFileConfig(lvl string, file FileConfig, console bool) error {
	SetLevel(lvl)

	var cores []zapcore.Core
	if console {
		enc := encoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stdout), level))
	}
	if file.Path != "" {
		w := &lumberjack.Logger{
			Filename:   file.Path,
			MaxSize:    file.MaxSizeMB,
			MaxBackups: file.MaxBackups,
			MaxAge:     file.MaxAgeDays,
			Compress:   file.Compress,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(w), level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	Sugar = Log.Sugar()
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "component",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// SetLevel accepts debug, info, warn or error. Anything else means info.
func SetLevel(lvl string) {
	l, err := zapcore.ParseLevel(strings.ToLower(lvl))
	if err != nil || l > zapcore.ErrorLevel {
		l = zapcore.InfoLevel
	}
	level.SetLevel(l)
}

// Enabled reports whether entries at lvl are written.
func Enabled(lvl zapcore.Level) bool { return level.Enabled(lvl) }

// Named returns a child logger for one component, e.g. "application".
func Named(component string) *zap.Logger { return Log.Named(component) }

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() { _ = Log.Sync() }

func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }
