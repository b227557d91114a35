package halctl

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient_NormalizesAddr(t *testing.T) {
	cases := map[string]string{
		":8080":                  "http://127.0.0.1:8080",
		"localhost:9000":         "http://localhost:9000",
		"http://10.0.0.1:8080/":  "http://10.0.0.1:8080",
		"https://hal.example.io": "https://hal.example.io",
	}
	for in, want := range cases {
		if got := NewClient(in, time.Second).base; got != want {
			t.Errorf("NewClient(%q).base = %q, want %q", in, got, want)
		}
	}
}

func TestClient_Lifecycle(t *testing.T) {
	srv, _ := newDaemon(t, false)
	c := NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.State != "stopped" || !st.Ready {
		t.Fatalf("unexpected status %+v", st)
	}
	if _, err := c.CreateIface(ctx, "sta"); err == nil {
		t.Fatalf("create before start should fail")
	} else {
		var ae *APIError
		if !errors.As(err, &ae) || ae.Status != http.StatusServiceUnavailable {
			t.Fatalf("expected 503 APIError, got %v", err)
		}
	}
	ar, err := c.Start(ctx)
	if err != nil || ar.State != "started" {
		t.Fatalf("start: %+v %v", ar, err)
	}
	iface, err := c.CreateIface(ctx, "sta")
	if err != nil {
		t.Fatalf("create sta: %v", err)
	}
	if iface.Name != "sta0" {
		t.Fatalf("name=%q", iface.Name)
	}
	var dump bytes.Buffer
	if err := c.Dump(ctx, &dump); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(dump.String(), "sta0 type=sta") {
		t.Fatalf("dump missing iface: %q", dump.String())
	}
	if err := c.RemoveIface(ctx, "sta0"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	err = c.RemoveIface(ctx, "sta0")
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusNotFound {
		t.Fatalf("expected 404 on second remove, got %v", err)
	}
	if _, err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestClient_EventsDisabled(t *testing.T) {
	srv, _ := newDaemon(t, true)
	_, err := NewClient(srv.URL, time.Second).Events(context.Background(), 5)
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestClient_EventsLimitAndPlainErrors(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/events":
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"events":[{"id":3,"name":"started","chip":0}]}`))
		default:
			http.Error(w, "gateway sad", http.StatusBadGateway)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)

	evs, err := c.Events(context.Background(), 7)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if gotQuery != "limit=7" || len(evs) != 1 || evs[0].Name != "started" {
		t.Fatalf("query=%q events=%+v", gotQuery, evs)
	}

	_, err = c.Status(context.Background())
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusBadGateway || ae.Message != "gateway sad" {
		t.Fatalf("unexpected error %v", err)
	}
}
