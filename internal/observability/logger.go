// Package observability holds the process-wide CLI logger.
package observability

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel keeps a successful run silent on stderr.
const DefaultLevel = "warn"

var (
	// CLILogger is the logger used by commands. Output goes to stderr so
	// stdout carries only command results.
	CLILogger = zap.NewNop()

	level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
)

// InitCLILogger builds CLILogger for the named service. Verbose lowers the
// level to debug.
func InitCLILogger(serviceName string, verbose bool) {
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	CLILogger = zap.New(core).Named(serviceName)
}

// SetLevel changes the level of CLILogger at runtime.
func SetLevel(name string) error {
	parsed, err := ParseLevel(name)
	if err != nil {
		return err
	}
	level.SetLevel(parsed)
	return nil
}

// Level returns the current log level.
func Level() zapcore.Level {
	return level.Level()
}

// ParseLevel parses a level name such as "debug" or "WARN".
func ParseLevel(name string) (zapcore.Level, error) {
	parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return zapcore.InvalidLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return parsed, nil
}
