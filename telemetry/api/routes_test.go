package api

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchktools/fast-telemetry/core/http"
	"github.com/searchktools/fast-telemetry/core/router"
	"github.com/searchktools/fast-telemetry/telemetry"
)

// recordingStore wraps a MemoryStore and records every call
type recordingStore struct {
	*telemetry.MemoryStore
	stored  []string
	queried []string
}

func (s *recordingStore) StoreEvent(name string, r telemetry.Record) {
	s.stored = append(s.stored, name)
	s.MemoryStore.StoreEvent(name, r)
}

func (s *recordingStore) EventInteractions(name string, from, to uint64) []telemetry.Values {
	s.queried = append(s.queried, name)
	return s.MemoryStore.EventInteractions(name, from, to)
}

func newTestRouter(t *testing.T) (*router.PathRouter, *recordingStore) {
	t.Helper()

	store := &recordingStore{MemoryStore: telemetry.NewMemoryStore()}
	b := router.NewBuilder()
	RegisterRoutes(b, store, hclog.NewNullLogger())

	r, err := b.Build()
	require.NoError(t, err)
	return r, store
}

func call(r router.Router, method http.Method, path, body string) http.Response {
	req := http.NewRequest()
	req.Method = method
	req.Path = path
	req.Version = http.DefaultVersion
	req.Body = []byte(body)
	return r.Route(req)
}

func TestStoreThenMean(t *testing.T) {
	r, store := newTestRouter(t)

	resp := call(r, http.MethodPost, "/paths/open", `{"date":10,"values":[1,1,1,1,1,1,1,1,1,1]}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.Message)

	resp = call(r, http.MethodGet, "/paths/open/meanLength", `{"resultUnit":"seconds"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"mean":10.0}`, resp.Message)

	resp = call(r, http.MethodGet, "/paths/open/meanLength", `{"resultUnit":"milliseconds"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"mean":10000.0}`, resp.Message)

	assert.Equal(t, []string{"open"}, store.stored)
	assert.Equal(t, []string{"open", "open"}, store.queried)
}

func TestStoreRejectsBadValues(t *testing.T) {
	r, store := newTestRouter(t)

	resp := call(r, http.MethodPost, "/paths/open", `{"date":10,"values":[1,1,1,1,1,1,1,1,1]}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Invalid values len"}`, resp.Message)
	assert.Empty(t, store.stored)

	resp = call(r, http.MethodGet, "/paths/open/meanLength", `{"resultUnit":"seconds"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"mean":0.0}`, resp.Message)
}

func TestStoreErrors(t *testing.T) {
	r, store := newTestRouter(t)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed json", `{"date":`, ""},
		{"not an object", `[1,2]`, "Body is not a JSON object"},
		{"missing date", `{"values":[1,1,1,1,1,1,1,1,1,1]}`, "Missing field: date"},
		{"missing values", `{"date":1}`, "Invalid values len"},
		{"too many values", `{"date":1,"values":[1,1,1,1,1,1,1,1,1,1,1]}`, "Invalid values len"},
		{"negative date", `{"date":-1,"values":[1,1,1,1,1,1,1,1,1,1]}`, ""},
		{"value overflows int32", `{"date":1,"values":[4294967296,1,1,1,1,1,1,1,1,1]}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(r, http.MethodPost, "/paths/open", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			if tt.wantErr != "" {
				assert.JSONEq(t, `{"error":"`+tt.wantErr+`"}`, resp.Message)
			} else {
				assert.Contains(t, resp.Message, `"error"`)
			}
		})
	}
	assert.Empty(t, store.stored)
}

func TestMeanLengthErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty body", ``, "Malformed JSON body"},
		{"unknown unit", `{"resultUnit":"minutes"}`, "Invalid time unit"},
		{"missing unit", `{}`, "Missing field: resultUnit"},
		{"bad timestamp", `{"resultUnit":"seconds","startTimestamp":"x"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(r, http.MethodGet, "/paths/open/meanLength", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			if tt.wantErr != "" {
				assert.JSONEq(t, `{"error":"`+tt.wantErr+`"}`, resp.Message)
			} else {
				assert.Contains(t, resp.Message, `"error"`)
			}
		})
	}
}

func TestMeanLengthRange(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, body := range []string{
		`{"date":10,"values":[1,1,1,1,1,1,1,1,1,1]}`,
		`{"date":20,"values":[2,2,2,2,2,2,2,2,2,2]}`,
		`{"date":30,"values":[6,6,6,6,6,6,6,6,6,6]}`,
	} {
		require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/paths/click", body).Code)
	}

	tests := []struct {
		body string
		want string
	}{
		{`{"resultUnit":"seconds"}`, `{"mean":30.0}`},
		{`{"resultUnit":"seconds","startTimestamp":20}`, `{"mean":40.0}`},
		{`{"resultUnit":"seconds","endTimestamp":20}`, `{"mean":15.0}`},
		{`{"resultUnit":"seconds","startTimestamp":20,"endTimestamp":20}`, `{"mean":20.0}`},
		{`{"resultUnit":"seconds","startTimestamp":31}`, `{"mean":0.0}`},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp := call(r, http.MethodGet, "/paths/click/meanLength", tt.body)
			require.Equal(t, http.StatusOK, resp.Code)
			assert.JSONEq(t, tt.want, resp.Message)
		})
	}
}

func TestEventParamBinding(t *testing.T) {
	r, store := newTestRouter(t)

	resp := call(r, http.MethodGet, "/paths/GET_EVENT_PARAM/meanLength", `{"resultUnit":"seconds"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"GET_EVENT_PARAM"}, store.queried)
}

func TestUnroutedRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := call(r, http.MethodGet, "/unregistered", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = call(r, http.MethodUnknown, "/paths/open", `{}`)
	assert.Equal(t, http.StatusNotImplemented, resp.Code)
}

func TestMissingEventParam(t *testing.T) {
	h := &handlers{store: telemetry.NewMemoryStore(), log: hclog.NewNullLogger()}

	req := http.NewRequest()
	req.Method = http.MethodPost
	req.Path = "/paths/"
	req.Body = []byte(`{"date":1,"values":[1,1,1,1,1,1,1,1,1,1]}`)

	resp := h.storeEvent(req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"No event name"}`, resp.Message)

	req.Body = []byte(`{"resultUnit":"seconds"}`)
	resp = h.meanLength(req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"No event name"}`, resp.Message)
}
