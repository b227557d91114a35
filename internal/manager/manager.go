package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"wifihal/internal/hal"
)

// Manager arbitrates chip interface combinations among clients and supervises
// the binding to the vendor Wi-Fi service. All registry mutation, planning and
// HAL calls happen under mu; listeners run after it is released.
type Manager struct {
	mu sync.Mutex

	log                zerolog.Logger
	sm                 hal.ServiceManager
	serviceName        string
	publisher          EventPublisher
	tracer             trace.Tracer
	queue              *Queue
	watcher            *serviceWatcher
	now                func() time.Time
	startRetries       int
	startRetryInterval time.Duration

	bound           bool
	gen             uint64
	session         *Session
	status          Status
	reg             *registry
	statusListeners []statusReg
}

type statusReg struct {
	l  StatusListener
	ex Executor
}

// New returns a manager bound to sm with default settings.
func New(sm hal.ServiceManager) *Manager {
	return NewWithConfig(ManagerConfig{ServiceManager: sm})
}

// IsReady reports whether the Wi-Fi service is bound.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// IsStarted reports whether the manager is STARTED.
func (m *Manager) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusStarted
}

// RegisterStatusCallback adds a start/stop listener. Registering the same
// listener again is a no-op.
func (m *Manager) RegisterStatusCallback(l StatusListener, ex Executor) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.statusListeners {
		if sameListener(r.l, l) {
			m.log.Debug().Msg("duplicate status listener ignored")
			return
		}
	}
	m.statusListeners = append(m.statusListeners, statusReg{l: l, ex: ex})
}

// Close stops the default delivery queue after draining it. It does not stop
// the Wi-Fi service.
func (m *Manager) Close() error {
	m.queue.Close()
	return nil
}

// Flush waits until notifications posted to the default queue so far have run.
func (m *Manager) Flush() {
	m.queue.Flush()
}
