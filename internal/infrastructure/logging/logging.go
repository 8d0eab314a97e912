// Package logging builds the structured logger used across the engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console, json
	Debug  bool   // development encoder and debug level, overrides Level
	Output io.Writer
}

// New builds a zap logger. Logs go to stderr unless Output is set, so
// machine-readable results on stdout stay clean.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	encCfg := zap.NewProductionEncoderConfig()
	if opts.Debug {
		encCfg = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), zap.NewAtomicLevelAt(level))
	zapOpts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if opts.Debug {
		zapOpts = append(zapOpts, zap.AddCaller(), zap.Development())
	}
	return zap.New(core, zapOpts...), nil
}

// Must is New for callers that cannot continue without a logger.
func Must(opts Options) *zap.Logger {
	logger, err := New(opts)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger
}
