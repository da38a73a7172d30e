package api

import (
	"github.com/hashicorp/go-hclog"

	"github.com/searchktools/fast-telemetry/core/http"
	"github.com/searchktools/fast-telemetry/core/router"
	"github.com/searchktools/fast-telemetry/telemetry"
)

// Route templates
const (
	EventPath      = "/paths/{event}"
	MeanLengthPath = "/paths/{event}/meanLength"

	eventParam = "event"
)

type handlers struct {
	store telemetry.Store
	log   hclog.Logger
}

// RegisterRoutes queues the telemetry endpoints on b
func RegisterRoutes(b *router.Builder, store telemetry.Store, log hclog.Logger) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	h := &handlers{store: store, log: log.Named("telemetry")}

	b.GET(MeanLengthPath, h.meanLength)
	b.POST(EventPath, h.storeEvent)
}

// storeEvent handles POST /paths/{event}
func (h *handlers) storeEvent(req *http.Request) http.Response {
	h.log.Debug("handle", "path", req.Path, "body", string(req.Body))

	var dto InteractionEventDTO
	if err := decodeObject(req.Body, &dto); err != nil {
		return h.fail(req, err)
	}

	record, err := dto.Record()
	if err != nil {
		return h.fail(req, err)
	}

	event, ok := req.Param(eventParam)
	if !ok || event == "" {
		return h.fail(req, errNoEventName)
	}

	h.store.StoreEvent(event, record)
	return http.Response{Code: http.StatusOK}
}

// meanLength handles GET /paths/{event}/meanLength
func (h *handlers) meanLength(req *http.Request) http.Response {
	h.log.Debug("handle", "path", req.Path, "body", string(req.Body))

	var dto MeanLengthQueryDTO
	if err := decodeObject(req.Body, &dto); err != nil {
		return h.fail(req, err)
	}

	event, ok := req.Param(eventParam)
	if !ok || event == "" {
		return h.fail(req, errNoEventName)
	}

	q, err := dto.Query()
	if err != nil {
		return h.fail(req, err)
	}

	interactions := h.store.EventInteractions(event, q.Start, q.End)
	body, err := json.Marshal(MeanLengthDTO{Mean: telemetry.MeanPathLength(interactions, q.Unit)})
	if err != nil {
		return h.fail(req, err)
	}
	return http.Response{Code: http.StatusOK, Message: string(body)}
}

func (h *handlers) fail(req *http.Request, err error) http.Response {
	h.log.Error("handler error", "path", req.Path, "error", err)
	return http.ErrorResponse(http.StatusBadRequest, err.Error())
}
