package manager

import (
	"context"
	"sync"
	"testing"
	"time"

	"wifihal/internal/hal"
	"wifihal/internal/hal/simhal"
)

// manualExecutor queues posted tasks until the test dispatches them.
type manualExecutor struct {
	mu    sync.Mutex
	tasks []func()
}

func (e *manualExecutor) Post(fn func()) {
	e.mu.Lock()
	e.tasks = append(e.tasks, fn)
	e.mu.Unlock()
}

// DispatchAll runs queued tasks until none remain and returns how many ran.
func (e *manualExecutor) DispatchAll() int {
	ran := 0
	for {
		e.mu.Lock()
		if len(e.tasks) == 0 {
			e.mu.Unlock()
			return ran
		}
		fn := e.tasks[0]
		e.tasks = e.tasks[1:]
		e.mu.Unlock()
		fn()
		ran++
	}
}

// callLog records listener invocations in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	l.calls = append(l.calls, s)
	l.mu.Unlock()
}

func (l *callLog) count(s string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c == s {
			n++
		}
	}
	return n
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeDestroyed struct {
	name string
	log  *callLog
}

func (f *fakeDestroyed) OnDestroyed() { f.log.add(f.name + ".destroyed") }

type fakeAvailable struct {
	name string
	log  *callLog
}

func (f *fakeAvailable) OnAvailableForRequest() { f.log.add(f.name + ".available") }

type fakeStatus struct {
	name string
	log  *callLog
}

func (f *fakeStatus) OnStart() { f.log.add(f.name + ".start") }

func (f *fakeStatus) OnStop() { f.log.add(f.name + ".stop") }

// baselineModes is the reference chip: mode 0 hosts one STA plus one of P2P or
// NAN, mode 1 hosts a single AP.
func baselineModes() []hal.ChipMode {
	return []hal.ChipMode{
		{ID: 0, Combinations: []hal.IfaceCombination{{Limits: []hal.IfaceLimit{
			{Types: []hal.IfaceType{hal.IfaceSTA}, MaxIfaces: 1},
			{Types: []hal.IfaceType{hal.IfaceP2P, hal.IfaceNAN}, MaxIfaces: 1},
		}}}},
		{ID: 1, Combinations: []hal.IfaceCombination{{Limits: []hal.IfaceLimit{
			{Types: []hal.IfaceType{hal.IfaceAP}, MaxIfaces: 1},
		}}}},
	}
}

func staOnlyModes() []hal.ChipMode {
	return []hal.ChipMode{{ID: 0, Combinations: []hal.IfaceCombination{{Limits: []hal.IfaceLimit{
		{Types: []hal.IfaceType{hal.IfaceSTA}, MaxIfaces: 1},
	}}}}}
}

type fixture struct {
	t      *testing.T
	sm     *simhal.ServiceManager
	wifi   *simhal.Wifi
	chips  []*simhal.Chip
	m      *Manager
	ex     *manualExecutor
	log    *callLog
	status *fakeStatus
	pub    *MemoryPublisher
}

// newFixture binds a manager to a simulated service hosting chips. With no
// chips a single baseline chip with id 0 is used.
func newFixture(t *testing.T, cfg ManagerConfig, chips ...*simhal.Chip) *fixture {
	t.Helper()
	if len(chips) == 0 {
		chips = []*simhal.Chip{simhal.NewChip(0, baselineModes()...)}
	}
	f := &fixture{
		t:     t,
		sm:    simhal.NewServiceManager(),
		chips: chips,
		ex:    &manualExecutor{},
		log:   &callLog{},
		pub:   NewMemoryPublisher(),
	}
	f.wifi = simhal.NewWifi(chips...)
	cfg.ServiceManager = f.sm
	if cfg.Publisher == nil {
		cfg.Publisher = f.pub
	}
	if cfg.StartRetryInterval == 0 {
		cfg.StartRetryInterval = time.Millisecond
	}
	f.m = NewWithConfig(cfg)
	t.Cleanup(func() { _ = f.m.Close() })
	if err := f.m.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	f.sm.Publish(hal.ServiceName, f.wifi)
	if !f.m.IsReady() {
		t.Fatalf("manager not ready after service registration")
	}
	f.status = &fakeStatus{name: "status", log: f.log}
	f.m.RegisterStatusCallback(f.status, f.ex)
	return f
}

func (f *fixture) chip() *simhal.Chip { return f.chips[0] }

func (f *fixture) start() {
	f.t.Helper()
	if !f.m.Start() {
		f.t.Fatalf("start failed")
	}
	f.ex.DispatchAll()
}

func (f *fixture) destroyed(name string) *fakeDestroyed {
	return &fakeDestroyed{name: name, log: f.log}
}

func (f *fixture) available(name string) *fakeAvailable {
	return &fakeAvailable{name: name, log: f.log}
}

// mustCreate creates an interface of t and checks its name.
func (f *fixture) mustCreate(t hal.IfaceType, wantName string, dl DestroyedListener, al AvailableListener) *Iface {
	f.t.Helper()
	iface, err := f.m.CreateIface(context.Background(), t, dl, al, f.ex)
	if err != nil {
		f.t.Fatalf("create %s: %v", t, err)
	}
	if iface.Name() != wantName {
		f.t.Fatalf("create %s: name %q, want %q", t, iface.Name(), wantName)
	}
	return iface
}

func (f *fixture) expectCount(call string, want int) {
	f.t.Helper()
	if got := f.log.count(call); got != want {
		f.t.Fatalf("%s called %d times, want %d (log: %v)", call, got, want, f.log.all())
	}
}
