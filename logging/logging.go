package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/searchktools/fast-telemetry/config"
)

// Name is the root logger name
const Name = "fast-telemetry"

// New builds the process logger from cfg, writing to stderr
func New(cfg config.Log) hclog.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput builds the process logger writing to w
func NewWithOutput(cfg config.Log, w io.Writer) hclog.Logger {
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            Name,
		Level:           level,
		Output:          w,
		JSONFormat:      cfg.Format == "json",
		IncludeLocation: level <= hclog.Debug,
		TimeFormat:      "2006-01-02T15:04:05.000Z0700",
	})
}

// Nop returns a logger that discards everything
func Nop() hclog.Logger {
	return hclog.NewNullLogger()
}
