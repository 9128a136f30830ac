// Package monitoring provides the migration's structured logger and
// progress metrics, adapted from a generic database-operation logger and
// metrics collector into migration-stage fields.
package monitoring

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the severity of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
}

// Format is the output encoding of a log line.
type Format string

const (
	JSONFormat Format = "json"
	TextFormat Format = "text"
)

// Config controls the logger's level, format and rotation policy.
type Config struct {
	Level      Level
	Format     Format
	OutputPath string
	ErrorPath  string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Logger writes leveled, structured log lines to a rotating main stream
// and a rotating error stream. A nil *Logger is valid and every method on
// it is a no-op, so components can accept one without forcing every
// caller to wire logging.
type Logger struct {
	config Config
	output io.Writer
	error  io.Writer
}

// New builds a Logger backed by lumberjack-rotated files for cfg's
// OutputPath and ErrorPath.
func New(cfg Config) (*Logger, error) {
	if dir := filepath.Dir(cfg.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	output := &lumberjack.Logger{
		Filename:   cfg.OutputPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	errorOutput := &lumberjack.Logger{
		Filename:   cfg.ErrorPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	return &Logger{config: cfg, output: output, error: errorOutput}, nil
}

func (l *Logger) Debug(msg string, fields map[string]any) { l.emit(DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields map[string]any)  { l.emit(InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]any)  { l.emit(WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields map[string]any) { l.emit(ErrorLevel, msg, fields) }

func (l *Logger) emit(level Level, msg string, fields map[string]any) {
	if l == nil || level < l.config.Level {
		return
	}

	w := l.output
	if level == ErrorLevel {
		w = l.error
	}

	timestamp := time.Now().Format(time.RFC3339)
	if l.config.Format == JSONFormat {
		l.writeJSON(w, level, timestamp, msg, fields)
	} else {
		l.writeText(w, level, timestamp, msg, fields)
	}
}

func (l *Logger) writeJSON(w io.Writer, level Level, timestamp, msg string, fields map[string]any) {
	entry := map[string]any{
		"timestamp": timestamp,
		"level":     level.String(),
		"message":   msg,
	}
	for k, v := range fields {
		entry[k] = v
	}
	enc, err := json.Marshal(entry)
	if err != nil {
		return
	}
	fmt.Fprintln(w, string(enc))
}

func (l *Logger) writeText(w io.Writer, level Level, timestamp, msg string, fields map[string]any) {
	fmt.Fprintf(w, "%s [%s] %s", timestamp, level.String(), msg)
	if len(fields) > 0 {
		fmt.Fprintf(w, " fields=%v", fields)
	}
	fmt.Fprintln(w)
}
