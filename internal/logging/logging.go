// Package logging implements the log facade described in §6.5: each
// record carries a {time, application, level} header, a
// {emitter, action, item, item_id} context, a {when, status} message
// type, and a free-text message. It wraps a zap.Logger with a
// structured-field idiom, and supports plain/color and JSON line
// output. JSON lines carry every field; plain/color lines show the
// time, the [WHEN/STATUS] tag, emitter.action(item/item_id) and the
// message, without the level or application name.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// When is the message-type "when" tag (§6.5).
type When string

const (
	WhenInit  When = "INIT"
	WhenStart When = "START"
	WhenProc  When = "PROC"
	WhenEnd   When = "END"
	WhenHist  When = "HIST"
	WhenBusy  When = "BUSY"
	WhenPause When = "PAUSE"
)

// Status is the message-type "status" tag (§6.5).
type Status string

const (
	StatusOK    Status = "OK"
	StatusFail  Status = "FAIL"
	StatusInd   Status = "IND"
	StatusMsg   Status = "MSG"
	StatusErr   Status = "ERR"
	StatusStart Status = "START"
	StatusEnd   Status = "END"
	StatusYes   Status = "YES"
	StatusNo    Status = "NO"
)

// Mode selects the output encoding.
type Mode int

const (
	ModePlain Mode = iota
	ModeColor
	ModeJSON
)

// Level mirrors §6.2's --log-level values, adding "trace" below debug.
type Level int8

const (
	LevelTrace Level = iota - 2
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) zapLevel() zapcore.Level {
	if l < LevelDebug {
		return zapcore.DebugLevel
	}
	return zapcore.Level(l)
}

func ParseLevel(s string) (Level, error) {
	switch s {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", s)
}

// Logger is the facade used throughout the engine.
type Logger struct {
	z    *zap.Logger
	mode Mode
}

// Options configures New.
type Options struct {
	Mode     Mode
	Level    Level
	File     string // empty = stderr
	Append   bool
}

// New builds a Logger writing to the configured destination and mode.
func New(opts Options) (*Logger, error) {
	var ws zapcore.WriteSyncer
	if opts.File == "" {
		ws = zapcore.Lock(os.Stderr)
	} else {
		flags := os.O_CREATE | os.O_WRONLY
		if opts.Append {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(opts.File, flags, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		ws = zapcore.AddSync(f)
	}

	var enc zapcore.Encoder
	if opts.Mode == ModeJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "time"
		cfg.NameKey = "emitter"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = newTagEncoder(opts.Mode == ModeColor)
	}

	core := zapcore.NewCore(enc, ws, zap.NewAtomicLevelAt(opts.Level.zapLevel()))
	z := zap.New(core)
	if opts.Mode == ModeJSON {
		z = z.With(zap.String("application", "whenever"))
	}
	return &Logger{z: z, mode: opts.Mode}, nil
}

// NewNop returns a Logger that discards everything, for use in tests
// that need a Logger but assert nothing about its output.
func NewNop() *Logger {
	core := zapcore.NewCore(newTagEncoder(false), zapcore.AddSync(io.Discard), zap.NewAtomicLevelAt(zapcore.ErrorLevel+1))
	return &Logger{z: zap.New(core), mode: ModePlain}
}

// Named returns a child logger tagged with an emitter name (e.g. the
// component's name), mirroring zap's own logger.Named(...) idiom.
func (l *Logger) Named(emitter string) *Logger {
	return &Logger{z: l.z.Named(emitter), mode: l.mode}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.z.Sync() }

// Record emits one structured log line.
func (l *Logger) Record(when When, status Status, action, item, itemID, message string, level Level) {
	fields := []zap.Field{
		zap.String("when", string(when)),
		zap.String("status", string(status)),
		zap.String("action", action),
		zap.String("item", item),
		zap.String("item_id", itemID),
	}
	ce := l.z.Check(level.zapLevel(), message)
	if ce == nil {
		return
	}
	ce.Write(fields...)
}

func (l *Logger) Info(when When, status Status, action, item, itemID, message string) {
	l.Record(when, status, action, item, itemID, message, LevelInfo)
}

func (l *Logger) Warn(when When, status Status, action, item, itemID, message string) {
	l.Record(when, status, action, item, itemID, message, LevelWarn)
}

func (l *Logger) Error(when When, status Status, action, item, itemID, message string) {
	l.Record(when, status, action, item, itemID, message, LevelError)
}

func (l *Logger) Debug(when When, status Status, action, item, itemID, message string) {
	l.Record(when, status, action, item, itemID, message, LevelDebug)
}
