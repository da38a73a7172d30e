package core

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/net/netutil"

	"github.com/searchktools/fast-telemetry/core/http"
	"github.com/searchktools/fast-telemetry/core/pools"
	"github.com/searchktools/fast-telemetry/core/router"
)

// EngineConfig is the runtime part of the process configuration
type EngineConfig struct {
	Address        string
	Port           int // 0 picks an ephemeral port
	Threads        int // 0 means pools.DefaultWorkers
	KeepAlive      time.Duration
	MaxConnections int // 0 means unlimited
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(log hclog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSerializer replaces the JSON response serializer
func WithSerializer(s http.Serializer) Option {
	return func(e *Engine) {
		if s != nil {
			e.serializer = s
		}
	}
}

// WithParserFactory replaces the per-session parser constructor
func WithParserFactory(newParser func() http.RequestParser) Option {
	return func(e *Engine) {
		if newParser != nil {
			e.newParser = newParser
		}
	}
}

// WithMetrics shares a metrics registry with the engine
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// Engine accepts connections and serves each one as a keep-alive session.
// Request processing runs on a fixed worker pool; sessions only block on
// socket reads, writes and the pool.
type Engine struct {
	cfg        EngineConfig
	router     router.Router
	serializer http.Serializer
	newParser  func() http.RequestParser
	log        hclog.Logger
	metrics    *Metrics

	workers int
	pool    atomic.Pointer[pools.WorkerPool]
	buffers *pools.BytePool

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	ready    chan struct{}
	addr     net.Addr

	sessMu   sync.Mutex
	sessions map[string]*session
	stopping bool
	sessWG   sync.WaitGroup
}

// NewEngine validates cfg and creates an engine serving r
func NewEngine(cfg EngineConfig, r router.Router, opts ...Option) (*Engine, error) {
	if err := validate(cfg, r); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		router:     r,
		serializer: http.NewJSONSerializer(),
		newParser:  func() http.RequestParser { return http.NewParser() },
		log:        hclog.NewNullLogger(),
		workers:    workerCount(cfg.Threads),
		buffers:    pools.NewBytePool(ReadBufferSize),
		stopCh:     make(chan struct{}),
		ready:      make(chan struct{}),
		sessions:   make(map[string]*session),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics()
	}
	e.log = e.log.Named("engine")
	e.metrics.registerPool(e.PoolStats)

	return e, nil
}

func validate(cfg EngineConfig, r router.Router) error {
	switch {
	case r == nil:
		return &ConfigurationError{Field: "router", Reason: "is nil"}
	case cfg.KeepAlive <= 0:
		return &ConfigurationError{Field: "keep-alive", Reason: "must be positive"}
	case cfg.Address == "":
		return &ConfigurationError{Field: "address", Reason: "is empty"}
	case cfg.Port < 0 || cfg.Port > 65535:
		return &ConfigurationError{Field: "port", Reason: strconv.Itoa(cfg.Port) + " out of range"}
	case cfg.Threads < 0:
		return &ConfigurationError{Field: "threads", Reason: "is negative"}
	case cfg.MaxConnections < 0:
		return &ConfigurationError{Field: "max connections", Reason: "is negative"}
	}
	return nil
}

// workerCount returns threads, or pools.DefaultWorkers when threads is 0
func workerCount(threads int) int {
	if threads > 0 {
		return threads
	}
	return pools.DefaultWorkers()
}

// Workers returns the worker pool size
func (e *Engine) Workers() int {
	return e.workers
}

// Metrics returns the engine metrics
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Ready is closed once the listener is bound
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// Addr returns the bound address, or nil before Ready
func (e *Engine) Addr() net.Addr {
	select {
	case <-e.ready:
		return e.addr
	default:
		return nil
	}
}

// ActiveSessions returns the number of open sessions
func (e *Engine) ActiveSessions() int {
	e.sessMu.Lock()
	defer e.sessMu.Unlock()
	return len(e.sessions)
}

// Run binds the listener and serves until ctx is done, Stop is called or
// accepting fails. A fatal accept error is returned once the worker pool
// and every session have finished.
func (e *Engine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrEngineStarted
	}
	select {
	case <-e.stopCh:
		return ErrEngineStopped
	default:
	}

	ln, err := e.listen(ctx)
	if err != nil {
		return err
	}

	pool := pools.NewWorkerPool(e.workers)
	e.pool.Store(pool)

	e.addr = ln.Addr()
	close(e.ready)
	e.log.Info("listening", "address", e.addr.String(), "workers", e.workers,
		"keep_alive", e.cfg.KeepAlive.String(), "max_connections", e.cfg.MaxConnections)

	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- e.acceptLoop(ln)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		e.log.Info("context done, shutting down")
		ln.Close()
		<-acceptErr
	case <-e.stopCh:
		e.log.Info("stop requested, shutting down")
		ln.Close()
		<-acceptErr
	case runErr = <-acceptErr:
		e.log.Error("accept loop failed", "error", runErr)
		ln.Close()
	}

	e.closeSessions()
	pool.Close()
	e.sessWG.Wait()

	e.log.Info("stopped")
	return runErr
}

// Stop asks Run to return. It is safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
	})
}

func (e *Engine) listen(ctx context.Context) (net.Listener, error) {
	addr := net.JoinHostPort(e.cfg.Address, strconv.Itoa(e.cfg.Port))

	lc := net.ListenConfig{Control: controlSocket}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}

	if e.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, e.cfg.MaxConnections)
	}
	return ln, nil
}

// acceptLoop runs until the listener is closed (nil) or fails (error)
func (e *Engine) acceptLoop(ln net.Listener) error {
	var backoff time.Duration

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				// Transient, back off and retry
				backoff = min(max(2*backoff, 5*time.Millisecond), time.Second)
				e.log.Warn("accept error, retrying", "error", err, "backoff", backoff.String())
				time.Sleep(backoff)
				continue
			}
			return errors.Wrap(err, "accept")
		}
		backoff = 0

		e.startSession(conn)
	}
}

func (e *Engine) startSession(conn net.Conn) {
	e.sessMu.Lock()
	if e.stopping {
		e.sessMu.Unlock()
		conn.Close()
		return
	}

	s := newSession(e, uuid.NewString(), conn)
	e.sessions[s.id] = s
	e.sessWG.Add(1)
	e.sessMu.Unlock()

	e.metrics.sessionOpened()
	go func() {
		defer e.sessWG.Done()
		defer e.endSession(s)
		s.serve()
	}()
}

func (e *Engine) endSession(s *session) {
	e.sessMu.Lock()
	delete(e.sessions, s.id)
	e.sessMu.Unlock()

	e.metrics.sessionClosed()
}

// closeSessions closes every open socket, unblocking their reads
func (e *Engine) closeSessions() {
	e.sessMu.Lock()
	e.stopping = true
	open := make([]*session, 0, len(e.sessions))
	for _, s := range e.sessions {
		open = append(open, s)
	}
	e.sessMu.Unlock()

	for _, s := range open {
		s.conn.Close()
	}
	if len(open) > 0 {
		e.log.Debug("closed open sessions", "count", len(open))
	}
}

// process turns one raw read into response bytes. It runs on the pool.
func (e *Engine) process(s *session, raw []byte) (out []byte, keepAlive bool) {
	req, err := s.parser.Parse(raw)
	if err != nil {
		e.metrics.parseFailure()
		e.metrics.request(http.StatusBadRequest)
		s.log.Debug("parse failed", "error", err)

		return e.serializer.Serialize(http.Envelope{
			Response: http.ErrorResponse(http.StatusBadRequest, err.Error()),
			Version:  http.DefaultVersion,
		}), false
	}
	s.resetTimer()

	resp := e.router.Route(req)
	e.metrics.request(resp.Code)
	s.log.Trace("request", "method", req.Method.String(), "path", req.Path, "code", int(resp.Code))

	return e.serializer.Serialize(http.Envelope{Response: resp, Version: req.Version}), req.KeepAlive()
}
