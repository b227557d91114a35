package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T) []byte {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	return rr.Body.Bytes()
}

func preview(b []byte) string {
	if len(b) > 400 {
		b = b[:400]
	}
	return string(b)
}

func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/test", http.MethodGet, "200")); got < 1 {
		t.Fatalf("requests_total for /test = %v", got)
	}
	if body := scrape(t); !bytes.Contains(body, []byte("wifihal_http_requests_total")) {
		t.Fatalf("expected wifihal_http_requests_total in metrics; got: %q", preview(body))
	}
}

// Labels use the chi route pattern rather than the concrete interface name.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Delete("/ifaces/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/ifaces/sta0", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/ifaces/{name}", http.MethodDelete, "204")); got < 1 {
		t.Fatalf("pattern label not recorded: %v", got)
	}
	if body := scrape(t); bytes.Contains(body, []byte(`path="/ifaces/sta0"`)) {
		t.Fatalf("concrete path leaked into labels")
	}
}

func TestIncrementRejection(t *testing.T) {
	before := testutil.ToFloat64(rejectionsTotal.WithLabelValues("unspecified"))
	IncrementRejection("")
	if got := testutil.ToFloat64(rejectionsTotal.WithLabelValues("unspecified")); got != before+1 {
		t.Fatalf("unspecified rejections = %v, want %v", got, before+1)
	}
}

func TestCreateIfaceRejectionCounted(t *testing.T) {
	before := testutil.ToFloat64(rejectionsTotal.WithLabelValues("no_viable_mode"))
	r := NewMux(&mockService{reqErr: mockHTTPError{msg: "busy", code: http.StatusConflict}}, nil)
	postJSON(t, r, "/ifaces", `{"type":"ap"}`)
	if got := testutil.ToFloat64(rejectionsTotal.WithLabelValues("no_viable_mode")); got != before+1 {
		t.Fatalf("no_viable_mode rejections = %v, want %v", got, before+1)
	}
}

func TestRejectionReason(t *testing.T) {
	cases := map[int]string{
		http.StatusConflict:            "no_viable_mode",
		http.StatusUnprocessableEntity: "unsupported",
		http.StatusServiceUnavailable:  "unavailable",
		http.StatusBadGateway:          "hal_failure",
		http.StatusTeapot:              "other",
	}
	for code, want := range cases {
		if got := rejectionReason(code); got != want {
			t.Errorf("rejectionReason(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestItoa(t *testing.T) {
	for n, want := range map[int]string{0: "0", 7: "7", 204: "204", 503: "503"} {
		if got := itoa(n); got != want {
			t.Errorf("itoa(%d) = %q", n, got)
		}
	}
}
