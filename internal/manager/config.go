package manager

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"wifihal/internal/hal"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultStartRetries       = 3
	defaultStartRetryInterval = 20 * time.Millisecond
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	ServiceManager hal.ServiceManager
	// ServiceName defaults to hal.ServiceName.
	ServiceName string
	// Logger defaults to a disabled logger.
	Logger    *zerolog.Logger
	Publisher EventPublisher
	Tracer    trace.Tracer
	// StartRetries bounds extra HAL start attempts while the service reports
	// NOT_AVAILABLE. Negative disables retries.
	StartRetries       int
	StartRetryInterval time.Duration
	Clock              func() time.Time
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		sm:          cfg.ServiceManager,
		serviceName: cfg.ServiceName,
		publisher:   cfg.Publisher,
		tracer:      cfg.Tracer,
		now:         cfg.Clock,
		status:      StatusStopped,
		reg:         newRegistry(),
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	} else {
		m.log = zerolog.Nop()
	}
	if m.serviceName == "" {
		m.serviceName = hal.ServiceName
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.tracer == nil {
		m.tracer = otel.Tracer("wifihal/manager")
	}
	if m.now == nil {
		m.now = time.Now
	}
	switch {
	case cfg.StartRetries < 0:
		m.startRetries = 0
	case cfg.StartRetries == 0:
		m.startRetries = defaultStartRetries
	default:
		m.startRetries = cfg.StartRetries
	}
	if cfg.StartRetryInterval <= 0 {
		m.startRetryInterval = defaultStartRetryInterval
	} else {
		m.startRetryInterval = cfg.StartRetryInterval
	}
	m.watcher = &serviceWatcher{m: m}
	m.queue = NewQueue(m.log)
	return m
}
