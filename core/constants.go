package core

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/searchktools/fast-telemetry/core/pools"
)

// Runtime defaults
const (
	DefaultKeepAlive = 5 * time.Second
	ReadBufferSize   = pools.ReadBufferSize
)

// Error definitions
var (
	ErrEngineStarted = errors.New("engine already started")
	ErrEngineStopped = errors.New("engine stopped")
)

// ConfigurationError is returned when an engine cannot be constructed
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid engine configuration: %s %s", e.Field, e.Reason)
}
