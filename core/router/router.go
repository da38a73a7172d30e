package router

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/searchktools/fast-telemetry/core/http"
)

// HandlerFunc handles one routed request
type HandlerFunc func(req *http.Request) http.Response

// Router maps (method, path) to a handler
type Router interface {
	Add(method http.Method, path string, handler HandlerFunc) error
	Route(req *http.Request) http.Response
}

// ErrUnsupportedMethod is returned when registering a method the router does not serve
var ErrUnsupportedMethod = errors.New("unsupported method")

// DuplicateRouteError is returned when a path key is already registered
type DuplicateRouteError struct {
	Method http.Method
	Path   string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("%s %s, handler already registered", e.Method, e.Path)
}

type paramRoute struct {
	method   http.Method
	path     string
	template string
	segments []string
	params   []Param
}

// Option configures a PathRouter
type Option func(*PathRouter)

// Permissive makes parameterized lookup ignore literal segments: the first
// template registered under the request method wins and parameters are
// bound by position only.
func Permissive() Option {
	return func(r *PathRouter) {
		r.permissive = true
	}
}

// PathRouter routes GET and POST requests over literal and {param} paths.
// Routes are registered before serving; lookups never mutate the router.
type PathRouter struct {
	handlers    map[http.Method]map[string]HandlerFunc
	paramRoutes []paramRoute
	permissive  bool
}

// NewPathRouter creates an empty router
func NewPathRouter(opts ...Option) *PathRouter {
	r := &PathRouter{
		handlers: map[http.Method]map[string]HandlerFunc{
			http.MethodGet:  make(map[string]HandlerFunc, 16),
			http.MethodPost: make(map[string]HandlerFunc, 16),
		},
		paramRoutes: make([]paramRoute, 0, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GET registers a GET route
func (r *PathRouter) GET(path string, handler HandlerFunc) error {
	return r.Add(http.MethodGet, path, handler)
}

// POST registers a POST route
func (r *PathRouter) POST(path string, handler HandlerFunc) error {
	return r.Add(http.MethodPost, path, handler)
}

// Add registers handler under method and path
func (r *PathRouter) Add(method http.Method, path string, handler HandlerFunc) error {
	table, ok := r.handlers[method]
	if !ok {
		return errors.Wrapf(ErrUnsupportedMethod, "%s %s", method, path)
	}
	if handler == nil {
		return errors.Errorf("%s %s, nil handler", method, path)
	}

	// Literal path
	if !isParameterized(path) {
		if _, exists := table[path]; exists {
			return &DuplicateRouteError{Method: method, Path: path}
		}
		table[path] = handler
		return nil
	}

	// Parameterized path: the canonical template is the key
	template := canonicalTemplate(path)
	if _, exists := table[template]; exists {
		return &DuplicateRouteError{Method: method, Path: path}
	}
	table[template] = handler

	segments := splitSegments(path)
	r.paramRoutes = append(r.paramRoutes, paramRoute{
		method:   method,
		path:     path,
		template: template,
		segments: segments,
		params:   parseParams(segments),
	})
	return nil
}

// Route dispatches req. It never panics: a handler panic becomes a 500.
func (r *PathRouter) Route(req *http.Request) (resp http.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = http.ErrorResponse(http.StatusInternalServerError, panicMessage(rec))
		}
	}()

	table, ok := r.handlers[req.Method]
	if !ok {
		return http.ErrorResponse(http.StatusNotImplemented, "Method is not implemented")
	}

	// Exact literal match
	if handler, ok := table[req.Path]; ok {
		return handler(req)
	}

	if handler, ok := r.findParamRoute(req, table); ok {
		return handler(req)
	}

	return http.ErrorResponse(http.StatusNotFound, "Path is not found : "+req.Path)
}

// findParamRoute scans parameterized routes in registration order and
// binds the parameters of the first match into req
func (r *PathRouter) findParamRoute(req *http.Request, table map[string]HandlerFunc) (HandlerFunc, bool) {
	var reqSegments []string

	for i := range r.paramRoutes {
		route := &r.paramRoutes[i]

		handler, ok := table[route.template]
		if !ok {
			continue
		}

		if reqSegments == nil {
			reqSegments = splitSegments(req.Path)
		}

		if !r.permissive && !route.matches(req.Method, reqSegments) {
			continue
		}

		for _, p := range route.params {
			if p.Position >= len(reqSegments) {
				break
			}
			req.SetParam(p.Name, reqSegments[p.Position])
		}
		return handler, true
	}

	return nil, false
}

// matches checks method, segment count and every literal segment
func (route *paramRoute) matches(method http.Method, segments []string) bool {
	if route.method != method || len(route.segments) != len(segments) {
		return false
	}
	for i, seg := range route.segments {
		if isParamSegment(seg) {
			continue
		}
		if seg != segments[i] {
			return false
		}
	}
	return true
}

func panicMessage(rec any) string {
	switch v := rec.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
