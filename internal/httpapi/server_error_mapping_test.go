package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"wifihal/internal/hal"
	"wifihal/internal/manager"
)

func TestManagerErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{manager.ErrUnsupportedType(hal.IfaceAP), http.StatusUnprocessableEntity},
		{manager.ErrNotStarted, http.StatusServiceUnavailable},
		{manager.ErrNoViableMode(hal.IfaceNAN), http.StatusConflict},
		{manager.ErrIfaceNotFound("sta9"), http.StatusNotFound},
		{manager.ErrHalFailure("createStaIface", hal.NewStatusError("createStaIface", hal.StatusErrorBusy, "")), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Errorf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestCreateIface_NotStartedMaps503(t *testing.T) {
	r := NewMux(&mockService{reqErr: manager.ErrNotStarted}, nil)
	if w := postJSON(t, r, "/ifaces", `{"type":"sta"}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestRemoveIface_HalFailureMaps502(t *testing.T) {
	svc := &mockService{relErr: manager.ErrHalFailure("removeIface", errors.New("refused"))}
	r := NewMux(svc, nil)
	w := deleteReq(r, "/ifaces/sta0")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}
