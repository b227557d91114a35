package manager

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"wifihal/internal/hal"
)

// Reasons attached to teardown events and metrics.
const (
	reasonStopped       = "stopped"
	reasonEvicted       = "evicted"
	reasonRemoved       = "removed"
	reasonServiceDied   = "service_died"
	reasonHalFailure    = "hal_failure"
	reasonCacheMismatch = "cache_mismatch"
)

// serviceWatcher receives service registrations. One value lives for the life of
// the manager so repeated registrations are recognized as identical.
type serviceWatcher struct{ m *Manager }

func (w *serviceWatcher) OnRegistration(fqName, instance string, preexisting bool) {
	w.m.log.Info().Str("service", fqName).Str("instance", instance).Bool("preexisting", preexisting).Msg("service registered")
	w.m.onServiceRegistered()
}

// eventCallback receives events from one session's Wi-Fi service.
type eventCallback struct {
	m   *Manager
	gen uint64
}

func (c *eventCallback) OnStart() { c.m.log.Debug().Uint64("gen", c.gen).Msg("hal onStart") }

func (c *eventCallback) OnStop() { c.m.log.Debug().Uint64("gen", c.gen).Msg("hal onStop") }

func (c *eventCallback) OnFailure(st hal.Status) { c.m.onWifiFailure(c.gen, st) }

// Initialize links to the service manager and registers for Wi-Fi service
// notifications. It is a no-op while already bound.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bound {
		return nil
	}
	if m.sm == nil {
		return fmt.Errorf("initialize: no service manager configured")
	}
	if err := m.sm.LinkToDeath(m.onServiceManagerDeath, 0); err != nil {
		m.log.Error().Err(err).Msg("link to service manager failed")
		return fmt.Errorf("link to service manager: %w", err)
	}
	if err := m.sm.RegisterForNotifications(m.serviceName, m.watcher); err != nil {
		m.log.Error().Err(err).Msg("register for service notifications failed")
		return fmt.Errorf("register for %s notifications: %w", m.serviceName, err)
	}
	m.bound = true
	m.log.Info().Str("service", m.serviceName).Msg("waiting for wifi service")
	return nil
}

func (m *Manager) onServiceRegistered() {
	n := &notifications{}
	m.mu.Lock()
	if m.session != nil {
		m.mu.Unlock()
		return
	}
	s, err := m.bindLocked()
	if err != nil {
		m.mu.Unlock()
		m.log.Error().Err(err).Msg("bind to wifi service failed")
		return
	}
	m.session = s
	n.publish(Event{Name: EventServiceRegistered, Fields: map[string]any{"gen": s.gen, "chips": len(s.chips)}})
	m.mu.Unlock()
	m.deliver(n)
}

// bindLocked fetches the Wi-Fi service and builds a fresh session for it. A
// service that is already running is stopped so that no interface predates the
// registry.
func (m *Manager) bindLocked() (*Session, error) {
	wifi, err := m.sm.GetService(m.serviceName)
	if err != nil {
		return nil, ErrHalFailure("getService", err)
	}
	m.gen++
	gen := m.gen
	if err := wifi.LinkToDeath(m.onWifiDeath, gen); err != nil {
		return nil, ErrHalFailure("linkToDeath", err)
	}
	if err := wifi.RegisterEventCallback(&eventCallback{m: m, gen: gen}); err != nil {
		return nil, ErrHalFailure("registerEventCallback", err)
	}
	if started, err := wifi.IsStarted(); err == nil && started {
		if err := wifi.Stop(); err != nil {
			m.log.Warn().Err(err).Msg("stop of running service failed")
		}
	}
	chips, err := loadChips(wifi)
	if err != nil {
		m.log.Debug().Err(err).Msg("chips not available before start")
		chips = nil
	}
	return &Session{gen: gen, wifi: wifi, chips: chips}, nil
}

// Start starts the Wi-Fi service and reloads its chips. It retries while the
// service reports NOT_AVAILABLE.
func (m *Manager) Start() bool {
	_, span := m.tracer.Start(context.Background(), "manager.Start")
	defer span.End()
	n := &notifications{}
	m.mu.Lock()
	ok := m.startLocked(n)
	m.mu.Unlock()
	m.deliver(n)
	span.SetAttributes(attribute.Bool("started", ok))
	return ok
}

func (m *Manager) startLocked(n *notifications) bool {
	s := m.session
	if s == nil {
		m.log.Warn().Msg("start without a bound wifi service")
		return false
	}
	if m.status == StatusStarted {
		return true
	}
	var err error
	for attempt := 0; ; attempt++ {
		err = s.wifi.Start()
		if err == nil || hal.StatusCodeOf(err) != hal.StatusErrorNotAvailable || attempt >= m.startRetries {
			break
		}
		m.log.Debug().Int("attempt", attempt+1).Msg("wifi service not available yet, retrying start")
		time.Sleep(m.startRetryInterval)
	}
	if err != nil {
		m.log.Error().Str("code", hal.StatusCodeOf(err).String()).Err(err).Msg("hal start failed")
		return false
	}
	chips, err := loadChips(s.wifi)
	if err != nil {
		m.log.Error().Err(err).Msg("chip discovery failed")
		if err := s.wifi.Stop(); err != nil {
			m.log.Warn().Err(err).Msg("hal stop after failed discovery")
		}
		return false
	}
	m.session = &Session{gen: s.gen, wifi: s.wifi, chips: chips}
	m.status = StatusStarted
	for _, r := range m.statusListeners {
		n.post(r.ex, r.l.OnStart)
	}
	n.publish(Event{Name: EventStarted, Fields: map[string]any{"chips": len(chips)}})
	m.log.Info().Int("chips", len(chips)).Msg("wifi started")
	return true
}

// Stop stops the Wi-Fi service, destroys every interface and notifies onStop.
func (m *Manager) Stop() {
	_, span := m.tracer.Start(context.Background(), "manager.Stop")
	defer span.End()
	n := &notifications{}
	m.mu.Lock()
	m.stopHalLocked()
	m.teardownLocked(n, reasonStopped)
	m.updateLiveGaugeLocked()
	m.mu.Unlock()
	m.deliver(n)
}

func (m *Manager) stopHalLocked() {
	s := m.session
	if s == nil {
		return
	}
	if err := s.wifi.Stop(); err != nil {
		m.log.Error().Str("code", hal.StatusCodeOf(err).String()).Err(err).Msg("hal stop failed")
	}
}

// teardownLocked transitions to STOPPED: status listeners get onStop, every
// registered interface is dropped with its destruction listeners queued, and
// pending availability listeners are discarded.
func (m *Manager) teardownLocked(n *notifications, reason string) {
	m.status = StatusStopped
	for _, r := range m.statusListeners {
		n.post(r.ex, r.l.OnStop)
	}
	entries, regs := m.reg.purge()
	for _, d := range regs {
		n.post(d.ex, d.l.OnDestroyed)
	}
	for _, e := range entries {
		ifacesDestroyedTotal.WithLabelValues(e.iface.typ.String(), reason).Inc()
		n.publish(Event{Name: EventIfaceDestroyed, Iface: e.iface.name, Chip: int(e.iface.chipID), Fields: map[string]any{"type": e.iface.typ.String(), "reason": reason}})
	}
	if s := m.session; s != nil {
		for _, c := range s.chips {
			c.clearMode()
		}
	}
	n.publish(Event{Name: EventStopped, Fields: map[string]any{"reason": reason, "ifaces": len(entries)}})
	m.log.Info().Str("reason", reason).Int("ifaces", len(entries)).Msg("wifi stopped")
}

// forceStopLocked is the recovery path shared by HAL failure and cache
// mismatch: stop where reachable, tear down, then re-register for the service.
func (m *Manager) forceStopLocked(n *notifications, reason string) {
	_, span := m.tracer.Start(context.Background(), "manager.Resync", trace.WithAttributes(attribute.String("reason", reason)))
	defer span.End()
	resyncsTotal.WithLabelValues(reason).Inc()
	if s := m.session; s != nil {
		if err := s.wifi.Stop(); err != nil {
			m.log.Error().Err(err).Msg("hal stop during resync failed")
			if hal.IsTransport(err) {
				m.session = nil
			}
		}
	}
	m.teardownLocked(n, reason)
	m.reregisterLocked()
}

func (m *Manager) reregisterLocked() {
	if !m.bound {
		return
	}
	if err := m.sm.RegisterForNotifications(m.serviceName, m.watcher); err != nil {
		m.log.Error().Err(err).Msg("re-register for service notifications failed")
	}
}

func (m *Manager) onWifiDeath(cookie uint64) {
	n := &notifications{}
	m.mu.Lock()
	s := m.session
	if s == nil || s.gen != cookie {
		m.mu.Unlock()
		m.log.Debug().Uint64("cookie", cookie).Msg("stale wifi death notification")
		return
	}
	m.log.Error().Uint64("gen", cookie).Msg("wifi service died")
	resyncsTotal.WithLabelValues(reasonServiceDied).Inc()
	m.session = nil
	m.teardownLocked(n, reasonServiceDied)
	n.publish(Event{Name: EventServiceDied, Fields: map[string]any{"gen": cookie}})
	m.reregisterLocked()
	m.updateLiveGaugeLocked()
	m.mu.Unlock()
	m.deliver(n)
}

func (m *Manager) onWifiFailure(gen uint64, st hal.Status) {
	n := &notifications{}
	m.mu.Lock()
	if s := m.session; s == nil || s.gen != gen {
		m.mu.Unlock()
		return
	}
	m.log.Error().Str("status", st.String()).Msg("wifi service reported failure")
	m.forceStopLocked(n, reasonHalFailure)
	m.updateLiveGaugeLocked()
	m.mu.Unlock()
	m.deliver(n)
}

// onServiceManagerDeath drops the binding; a later Initialize binds again.
func (m *Manager) onServiceManagerDeath(cookie uint64) {
	m.mu.Lock()
	m.bound = false
	m.mu.Unlock()
	m.log.Error().Uint64("cookie", cookie).Msg("service manager died")
}
