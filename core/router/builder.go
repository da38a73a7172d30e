package router

import (
	"github.com/searchktools/fast-telemetry/core/http"
)

type registration struct {
	method  http.Method
	path    string
	handler HandlerFunc
}

// Builder collects routes and builds a PathRouter once all are known
type Builder struct {
	routes []registration
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// GET queues a GET route
func (b *Builder) GET(path string, handler HandlerFunc) *Builder {
	b.routes = append(b.routes, registration{http.MethodGet, path, handler})
	return b
}

// POST queues a POST route
func (b *Builder) POST(path string, handler HandlerFunc) *Builder {
	b.routes = append(b.routes, registration{http.MethodPost, path, handler})
	return b
}

// Build registers every queued route in order and returns the first error
func (b *Builder) Build(opts ...Option) (*PathRouter, error) {
	r := NewPathRouter(opts...)
	for _, reg := range b.routes {
		if err := r.Add(reg.method, reg.path, reg.handler); err != nil {
			return nil, err
		}
	}
	return r, nil
}
