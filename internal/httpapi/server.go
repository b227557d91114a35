package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wifihal/internal/hal"
	"wifihal/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Dump(w io.Writer)
	Start() bool
	Stop()
	IsReady() bool
	RequestIface(ctx context.Context, t hal.IfaceType) (types.IfaceStatus, error)
	ReleaseIface(name string) error
}

// EventSource serves GET /events.
type EventSource interface {
	Recent(ctx context.Context, limit int) ([]types.EventRecord, error)
}

const maxEventsLimit = 1000

type handlers struct {
	svc    Service
	events EventSource
}

// NewMux builds the HTTP API around svc. events may be nil, in which case
// /events answers 404.
func NewMux(svc Service, events EventSource) http.Handler {
	h := &handlers{svc: svc, events: events}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	r.Get("/status", h.status)
	r.Get("/dump", h.dump)
	r.Post("/start", h.start)
	r.Post("/stop", h.stop)
	r.Get("/ifaces", h.listIfaces)
	r.Post("/ifaces", h.createIface)
	r.Delete("/ifaces/{name}", h.removeIface)
	r.Get("/events", h.listEvents)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.IsReady() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("waiting for wifi service"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// status godoc
// @Summary      Manager status
// @Description  Chips, modes, live interfaces and pending availability listeners.
// @Tags         manager
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// dump godoc
// @Summary      Diagnostic dump
// @Tags         manager
// @Produce      plain
// @Success      200  {string}  string
// @Router       /dump [get]
func (h *handlers) dump(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	out := io.Writer(w)
	if requestLogLevel(r) >= LevelDebug {
		out = io.MultiWriter(w, &loggingLineWriter{prefix: "dump"})
	}
	h.svc.Dump(out)
}

// start godoc
// @Summary      Start the Wi-Fi service
// @Tags         manager
// @Produce      json
// @Success      200  {object}  types.ActionResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /start [post]
func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	lvl := requestLogLevel(r)
	if !h.svc.Start() {
		writeJSONError(w, http.StatusServiceUnavailable, "wifi service failed to start")
		logAction(r, lvl, "start", http.StatusServiceUnavailable, begin, errStartFailed)
		return
	}
	writeJSON(w, http.StatusOK, types.ActionResponse{OK: true, State: h.svc.Status().State})
	logAction(r, lvl, "start", http.StatusOK, begin, nil)
}

// stop godoc
// @Summary      Stop the Wi-Fi service
// @Description  Every interface is destroyed and status listeners are told.
// @Tags         manager
// @Produce      json
// @Success      200  {object}  types.ActionResponse
// @Router       /stop [post]
func (h *handlers) stop(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	h.svc.Stop()
	writeJSON(w, http.StatusOK, types.ActionResponse{OK: true, State: h.svc.Status().State})
	logAction(r, requestLogLevel(r), "stop", http.StatusOK, begin, nil)
}

// listIfaces godoc
// @Summary      Live interfaces
// @Tags         ifaces
// @Produce      json
// @Success      200  {array}  types.IfaceStatus
// @Router       /ifaces [get]
func (h *handlers) listIfaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status().Ifaces)
}

// createIface godoc
// @Summary      Create an interface
// @Description  Lower priority interfaces may be torn down and the chip reconfigured.
// @Tags         ifaces
// @Accept       json
// @Produce      json
// @Param        request  body      types.CreateIfaceRequest  true  "interface type"
// @Success      201      {object}  types.IfaceStatus
// @Failure      400      {object}  types.ErrorResponse
// @Failure      409      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      422      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /ifaces [post]
func (h *handlers) createIface(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.CreateIfaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t, err := hal.ParseIfaceType(req.Type)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	begin := time.Now()
	lvl := requestLogLevel(r)
	ctx, cancel := requestContext(r.Context())
	defer cancel()
	st, err := h.svc.RequestIface(ctx, t)
	if err != nil {
		status := writeServiceError(w, err)
		IncrementRejection(rejectionReason(status))
		logAction(r, lvl, "create iface", status, begin, err)
		return
	}
	w.Header().Set("Location", "/ifaces/"+st.Name)
	writeJSON(w, http.StatusCreated, st)
	logAction(r, lvl, "create iface", http.StatusCreated, begin, nil)
}

// removeIface godoc
// @Summary      Remove an interface
// @Tags         ifaces
// @Param        name  path  string  true  "interface name"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Failure      502  {object}  types.ErrorResponse
// @Router       /ifaces/{name} [delete]
func (h *handlers) removeIface(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	name := chi.URLParam(r, "name")
	if err := h.svc.ReleaseIface(name); err != nil {
		status := writeServiceError(w, err)
		logAction(r, requestLogLevel(r), "remove iface", status, begin, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logAction(r, requestLogLevel(r), "remove iface", http.StatusNoContent, begin, nil)
}

// listEvents godoc
// @Summary      Recent manager events
// @Tags         events
// @Produce      json
// @Param        limit  query     int  false  "maximum number of events (1-1000)"
// @Success      200    {object}  types.EventsResponse
// @Failure      400    {object}  types.ErrorResponse
// @Failure      404    {object}  types.ErrorResponse
// @Router       /events [get]
func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeJSONError(w, http.StatusNotFound, "event journal disabled")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxEventsLimit {
			writeJSONError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	recs, err := h.events.Recent(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, types.EventsResponse{Events: recs})
}

var errStartFailed = errors.New("wifi service failed to start")

func rejectionReason(status int) string {
	switch status {
	case http.StatusConflict:
		return "no_viable_mode"
	case http.StatusUnprocessableEntity:
		return "unsupported"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusBadGateway:
		return "hal_failure"
	default:
		return "other"
	}
}
