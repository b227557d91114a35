package simhal

import (
	"sync"
	"sync/atomic"

	"wifihal/internal/hal"
)

// Wifi is a simulated vendor Wi-Fi service owning a fixed set of chips.
type Wifi struct {
	mu        sync.Mutex
	chips     []*Chip
	started   bool
	links     []link
	callbacks []hal.EventCallback
	startErr  error
	stopErr   error

	startCalls int
	stopCalls  int

	dead atomic.Bool
}

// NewWifi returns a stopped service hosting chips.
func NewWifi(chips ...*Chip) *Wifi {
	w := &Wifi{chips: chips}
	for _, c := range chips {
		c.wifi = w
	}
	return w
}

func (w *Wifi) transport(op string) error {
	return &hal.TransportError{Op: "IWifi." + op, Err: hal.ErrDeadObject}
}

func (w *Wifi) LinkToDeath(r hal.DeathRecipient, cookie uint64) error {
	if w.dead.Load() {
		return w.transport("linkToDeath")
	}
	w.mu.Lock()
	w.links = append(w.links, link{recipient: r, cookie: cookie})
	w.mu.Unlock()
	return nil
}

func (w *Wifi) RegisterEventCallback(cb hal.EventCallback) error {
	if w.dead.Load() {
		return w.transport("registerEventCallback")
	}
	w.mu.Lock()
	w.callbacks = append(w.callbacks, cb)
	w.mu.Unlock()
	return nil
}

func (w *Wifi) IsStarted() (bool, error) {
	if w.dead.Load() {
		return false, w.transport("isStarted")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started, nil
}

func (w *Wifi) Start() error {
	if w.dead.Load() {
		return w.transport("start")
	}
	w.mu.Lock()
	w.startCalls++
	if err := w.startErr; err != nil {
		w.startErr = nil
		w.mu.Unlock()
		return err
	}
	w.started = true
	cbs := append([]hal.EventCallback(nil), w.callbacks...)
	w.mu.Unlock()
	for _, cb := range cbs {
		cb.OnStart()
	}
	return nil
}

// Stop stops the service; every chip loses its mode and interfaces.
func (w *Wifi) Stop() error {
	if w.dead.Load() {
		return w.transport("stop")
	}
	w.mu.Lock()
	w.stopCalls++
	if err := w.stopErr; err != nil {
		w.stopErr = nil
		w.mu.Unlock()
		return err
	}
	w.started = false
	chips := append([]*Chip(nil), w.chips...)
	cbs := append([]hal.EventCallback(nil), w.callbacks...)
	w.mu.Unlock()
	for _, c := range chips {
		c.reset()
	}
	for _, cb := range cbs {
		cb.OnStop()
	}
	return nil
}

func (w *Wifi) ChipIDs() ([]hal.ChipID, error) {
	if w.dead.Load() {
		return nil, w.transport("getChipIds")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]hal.ChipID, 0, len(w.chips))
	for _, c := range w.chips {
		ids = append(ids, c.id)
	}
	return ids, nil
}

func (w *Wifi) Chip(id hal.ChipID) (hal.Chip, error) {
	if w.dead.Load() {
		return nil, w.transport("getChip")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.chips {
		if c.id == id {
			return c, nil
		}
	}
	return nil, hal.NewStatusError("IWifi.getChip", hal.StatusErrorInvalidArgs, "unknown chip")
}

// Kill simulates the service process dying: death recipients fire on the calling
// goroutine and every later call fails with a transport error.
func (w *Wifi) Kill() {
	w.dead.Store(true)
	w.mu.Lock()
	links := append([]link(nil), w.links...)
	w.links = nil
	w.started = false
	w.mu.Unlock()
	for _, l := range links {
		l.recipient(l.cookie)
	}
}

// ReportFailure delivers OnFailure to every registered event callback.
func (w *Wifi) ReportFailure(status hal.Status) {
	w.mu.Lock()
	cbs := append([]hal.EventCallback(nil), w.callbacks...)
	w.mu.Unlock()
	for _, cb := range cbs {
		cb.OnFailure(status)
	}
}

// FailNextStart makes the next Start return err.
func (w *Wifi) FailNextStart(err error) {
	w.mu.Lock()
	w.startErr = err
	w.mu.Unlock()
}

// FailNextStop makes the next Stop return err without stopping.
func (w *Wifi) FailNextStop(err error) {
	w.mu.Lock()
	w.stopErr = err
	w.mu.Unlock()
}

func (w *Wifi) StartCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.startCalls
}

func (w *Wifi) StopCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopCalls
}
