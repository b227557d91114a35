package halctl

import (
	"net/http/httptest"
	"testing"

	"wifihal/internal/hal"
	"wifihal/internal/hal/simhal"
	"wifihal/internal/httpapi"
	"wifihal/internal/manager"
)

// newDaemon serves the real HTTP API over a manager bound to a simulated
// baseline chip.
func newDaemon(t *testing.T, start bool) (*httptest.Server, *manager.Manager) {
	t.Helper()
	chip := simhal.NewChip(0,
		hal.ChipMode{ID: 0, Combinations: []hal.IfaceCombination{{Limits: []hal.IfaceLimit{
			{Types: []hal.IfaceType{hal.IfaceSTA}, MaxIfaces: 1},
			{Types: []hal.IfaceType{hal.IfaceP2P, hal.IfaceNAN}, MaxIfaces: 1},
		}}}},
		hal.ChipMode{ID: 1, Combinations: []hal.IfaceCombination{{Limits: []hal.IfaceLimit{
			{Types: []hal.IfaceType{hal.IfaceAP}, MaxIfaces: 1},
		}}}},
	)
	sm := simhal.NewServiceManager()
	m := manager.NewWithConfig(manager.ManagerConfig{ServiceManager: sm, StartRetries: -1})
	t.Cleanup(func() { _ = m.Close() })
	if err := m.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	sm.Publish(hal.ServiceName, simhal.NewWifi(chip))
	if start && !m.Start() {
		t.Fatalf("start failed")
	}
	srv := httptest.NewServer(httpapi.NewMux(m, nil))
	t.Cleanup(srv.Close)
	return srv, m
}
