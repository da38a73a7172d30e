package router

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchktools/fast-telemetry/core/http"
)

func request(method http.Method, path string) *http.Request {
	req := http.NewRequest()
	req.Method = method
	req.Path = path
	req.Version = http.DefaultVersion
	return req
}

// respond returns a handler that answers with body and counts its calls
func respond(body string, calls *int) HandlerFunc {
	return func(*http.Request) http.Response {
		if calls != nil {
			*calls++
		}
		return http.Response{Code: http.StatusOK, Message: body}
	}
}

func TestCanonicalTemplate(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/paths/{event}", "/paths/{}"},
		{"/paths/{event}/meanLength", "/paths/{}/meanLength"},
		{"/a/{x}/{y}/", "/a/{}/{}/"},
		{"/static", "/static"},
		{"/a/{x", "/a/{x"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalTemplate(tt.path))
		})
	}
}

func TestSplitSegments(t *testing.T) {
	assert.Equal(t, []string{}, splitSegments(""))
	assert.Equal(t, []string{}, splitSegments("/"))
	assert.Equal(t, []string{"a", "b"}, splitSegments("/a//b/"))
	assert.Equal(t, []string{"a"}, splitSegments("a"))
}

func TestParseParams(t *testing.T) {
	params := parseParams(splitSegments("/path/{get_event}/get/Hello/{get_time}/{get_date}"))
	assert.Equal(t, []Param{
		{Name: "get_event", Position: 1},
		{Name: "get_time", Position: 4},
		{Name: "get_date", Position: 5},
	}, params)
}

func TestPathRouter_Literal(t *testing.T) {
	r := NewPathRouter()
	var getCalls, postCalls int
	require.NoError(t, r.GET("/path/get", respond("get", &getCalls)))
	require.NoError(t, r.POST("/path/get", respond("post", &postCalls)))

	resp := r.Route(request(http.MethodGet, "/path/get"))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "get", resp.Message)

	resp = r.Route(request(http.MethodPost, "/path/get"))
	assert.Equal(t, "post", resp.Message)

	assert.Equal(t, 1, getCalls)
	assert.Equal(t, 1, postCalls)
}

func TestPathRouter_Params(t *testing.T) {
	r := NewPathRouter()
	var got *http.Request
	require.NoError(t, r.GET("/path/{get_event}/get/Hello/{get_time}/{get_date}", func(req *http.Request) http.Response {
		got = req
		return http.Response{Code: http.StatusOK}
	}))

	resp := r.Route(request(http.MethodGet, "/path/open/get/Hello/10/112"))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, got)
	assert.Equal(t, map[string]string{
		"get_event": "open",
		"get_time":  "10",
		"get_date":  "112",
	}, got.Params)
}

func TestPathRouter_LiteralBeatsTemplate(t *testing.T) {
	r := NewPathRouter()
	require.NoError(t, r.GET("/user/{id}", respond("param", nil)))
	require.NoError(t, r.GET("/user/admin", respond("admin", nil)))

	assert.Equal(t, "admin", r.Route(request(http.MethodGet, "/user/admin")).Message)

	req := request(http.MethodGet, "/user/42")
	assert.Equal(t, "param", r.Route(req).Message)
	id, ok := req.Param("id")
	assert.True(t, ok)
	assert.Equal(t, "42", id)
}

func TestPathRouter_NotFound(t *testing.T) {
	r := NewPathRouter()
	require.NoError(t, r.GET("/paths/{event}/meanLength", respond("mean", nil)))

	tests := []struct {
		name   string
		method http.Method
		path   string
	}{
		{"unknown literal", http.MethodGet, "/nothing"},
		{"wrong method", http.MethodPost, "/paths/open/meanLength"},
		{"literal segment differs", http.MethodGet, "/paths/open/median"},
		{"too few segments", http.MethodGet, "/paths/open"},
		{"too many segments", http.MethodGet, "/paths/open/meanLength/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := r.Route(request(tt.method, tt.path))
			assert.Equal(t, http.StatusNotFound, resp.Code)
			assert.JSONEq(t, `{"error":"Path is not found : `+tt.path+`"}`, resp.Message)
		})
	}
}

func TestPathRouter_UnknownMethod(t *testing.T) {
	r := NewPathRouter()
	require.NoError(t, r.GET("/", respond("root", nil)))

	resp := r.Route(request(http.MethodUnknown, "/"))
	assert.Equal(t, http.StatusNotImplemented, resp.Code)
	assert.JSONEq(t, `{"error":"Method is not implemented"}`, resp.Message)
}

func TestPathRouter_HandlerPanic(t *testing.T) {
	r := NewPathRouter()
	require.NoError(t, r.GET("/boom", func(*http.Request) http.Response {
		panic("storage exploded")
	}))
	require.NoError(t, r.GET("/err", func(*http.Request) http.Response {
		panic(errors.New("bad state"))
	}))

	var resp http.Response
	require.NotPanics(t, func() {
		resp = r.Route(request(http.MethodGet, "/boom"))
	})
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"storage exploded"}`, resp.Message)

	resp = r.Route(request(http.MethodGet, "/err"))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"bad state"}`, resp.Message)
}

func TestPathRouter_Duplicates(t *testing.T) {
	r := NewPathRouter()
	require.NoError(t, r.POST("/paths/{event}", respond("a", nil)))
	require.NoError(t, r.GET("/paths/{event}", respond("b", nil)))
	require.NoError(t, r.GET("/static", respond("c", nil)))

	err := r.POST("/paths/{name}", respond("d", nil))
	var dup *DuplicateRouteError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, http.MethodPost, dup.Method)
	assert.Equal(t, "/paths/{name}", dup.Path)

	err = r.GET("/static", respond("e", nil))
	assert.True(t, errors.As(err, &dup))

	// The first registration still serves
	assert.Equal(t, "a", r.Route(request(http.MethodPost, "/paths/open")).Message)
}

func TestPathRouter_AddRejects(t *testing.T) {
	r := NewPathRouter()

	err := r.Add(http.MethodUnknown, "/x", respond("x", nil))
	assert.True(t, errors.Is(err, ErrUnsupportedMethod))

	assert.Error(t, r.GET("/x", nil))
}

func TestPathRouter_Permissive(t *testing.T) {
	r := NewPathRouter(Permissive())
	var got *http.Request
	capture := func(req *http.Request) http.Response {
		got = req
		return http.Response{Code: http.StatusOK}
	}
	require.NoError(t, r.GET("/a/{x}/{y}", capture))

	// Literal segments and segment count are not checked
	resp := r.Route(request(http.MethodGet, "/c/1/2/3"))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, got.Params)

	// Positions beyond the request path are skipped
	resp = r.Route(request(http.MethodGet, "/c/1"))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]string{"x": "1"}, got.Params)

	// The method table still gates the lookup
	resp = r.Route(request(http.MethodPost, "/a/1/2"))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBuilder(t *testing.T) {
	r, err := NewBuilder().
		POST("/paths/{event}", respond("store", nil)).
		GET("/paths/{event}/meanLength", respond("mean", nil)).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "store", r.Route(request(http.MethodPost, "/paths/open")).Message)
	assert.Equal(t, "mean", r.Route(request(http.MethodGet, "/paths/open/meanLength")).Message)

	_, err = NewBuilder().
		GET("/a/{x}", respond("1", nil)).
		GET("/a/{y}", respond("2", nil)).
		Build()
	var dup *DuplicateRouteError
	assert.True(t, errors.As(err, &dup))
}

func BenchmarkPathRouter_Params(b *testing.B) {
	r := NewPathRouter()
	_ = r.GET("/paths/{event}/meanLength", respond("mean", nil))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Route(request(http.MethodGet, "/paths/open/meanLength"))
	}
}
