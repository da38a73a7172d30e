package core

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/searchktools/fast-telemetry/core/http"
)

// session serves the requests of one connection, strictly in order
type session struct {
	id        string
	engine    *Engine
	conn      net.Conn
	parser    http.RequestParser
	log       hclog.Logger
	keepAlive time.Duration

	timerMu sync.Mutex
	timer   *time.Timer
}

func newSession(e *Engine, id string, conn net.Conn) *session {
	return &session{
		id:        id,
		engine:    e,
		conn:      conn,
		parser:    e.newParser(),
		log:       e.log.With("session", id, "remote", conn.RemoteAddr().String()),
		keepAlive: e.cfg.KeepAlive,
	}
}

// serve runs the read, process, write loop until the peer goes away, the
// keep-alive timer fires or a response ends the session
func (s *session) serve() {
	s.log.Debug("session opened")

	// The timer closes the socket; a blocked Read then returns
	s.timerMu.Lock()
	s.timer = time.AfterFunc(s.keepAlive, s.expire)
	s.timerMu.Unlock()

	buf := s.engine.buffers.Get()
	defer func() {
		s.stopTimer()
		s.conn.Close()
		s.engine.buffers.Put(buf)
		s.log.Debug("session closed")
	}()

	pool := s.engine.pool.Load()
	for {
		s.resetTimer()

		n, err := s.conn.Read(*buf)
		if n == 0 || err != nil {
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.log.Debug("read failed", "error", err)
			}
			return
		}

		raw := (*buf)[:n]
		var (
			out  []byte
			keep bool
		)
		if !pool.Do(func() { out, keep = s.engine.process(s, raw) }) {
			return
		}

		if _, err := s.conn.Write(out); err != nil {
			s.log.Debug("write failed", "error", err)
			return
		}
		if !keep {
			return
		}
	}
}

func (s *session) expire() {
	s.log.Debug("keep-alive expired")
	s.conn.Close()
}

func (s *session) resetTimer() {
	s.timerMu.Lock()
	if s.timer != nil {
		s.timer.Reset(s.keepAlive)
	}
	s.timerMu.Unlock()
}

func (s *session) stopTimer() {
	s.timerMu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerMu.Unlock()
}
