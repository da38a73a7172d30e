package core

import (
	"sync"

	"github.com/searchktools/fast-telemetry/core/router"
)

// Policy selects how NewService constructs engines
type Policy uint8

const (
	// PolicyAlwaysNew constructs a new engine on every call
	PolicyAlwaysNew Policy = iota
	// PolicySingleInstance constructs one engine per process and returns
	// it on later calls, ignoring their arguments
	PolicySingleInstance
)

func (p Policy) String() string {
	switch p {
	case PolicyAlwaysNew:
		return "always-new"
	case PolicySingleInstance:
		return "single-instance"
	default:
		return "unknown"
	}
}

var single struct {
	mu     sync.Mutex
	engine *Engine
}

// NewService creates the server runtime according to policy
func NewService(cfg EngineConfig, r router.Router, policy Policy, opts ...Option) (*Engine, error) {
	if policy != PolicySingleInstance {
		return NewEngine(cfg, r, opts...)
	}

	single.mu.Lock()
	defer single.mu.Unlock()

	if single.engine != nil {
		return single.engine, nil
	}

	e, err := NewEngine(cfg, r, opts...)
	if err != nil {
		return nil, err
	}
	single.engine = e
	return e, nil
}
