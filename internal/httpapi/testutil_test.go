package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"wifihal/internal/hal"
	"wifihal/pkg/types"
)

type mockService struct {
	mu       sync.Mutex
	status   types.StatusResponse
	ready    bool
	startOK  bool
	stops    int
	reqErr   error
	relErr   error
	released []string
	gotCtx   context.Context
}

func (m *mockService) Status() types.StatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *mockService) Dump(w io.Writer) {
	fmt.Fprintln(w, "HalDeviceManager:")
	fmt.Fprintln(w, "  status: started")
}

func (m *mockService) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startOK {
		m.status.State = "started"
	}
	return m.startOK
}

func (m *mockService) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.status.State = "stopped"
}

func (m *mockService) IsReady() bool { return m.ready }

func (m *mockService) RequestIface(ctx context.Context, t hal.IfaceType) (types.IfaceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotCtx = ctx
	if m.reqErr != nil {
		return types.IfaceStatus{}, m.reqErr
	}
	return types.IfaceStatus{Name: t.String() + "0", Type: t.String()}, nil
}

func (m *mockService) ReleaseIface(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.relErr != nil {
		return m.relErr
	}
	m.released = append(m.released, name)
	return nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

type mockEvents struct {
	recs      []types.EventRecord
	err       error
	lastLimit int
}

func (m *mockEvents) Recent(ctx context.Context, limit int) ([]types.EventRecord, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.recs, nil
}

func deleteReq(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, path, nil))
	return w
}
