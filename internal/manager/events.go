package manager

import "time"

// Event names published by the manager.
const (
	EventServiceRegistered = "service_registered"
	EventServiceDied       = "service_died"
	EventStarted           = "started"
	EventStopped           = "stopped"
	EventIfaceCreated      = "iface_created"
	EventIfaceDestroyed    = "iface_destroyed"
	EventChipConfigured    = "chip_configured"
	EventRequestFailed     = "request_failed"
	EventCacheMismatch     = "cache_mismatch"
	EventAvailable         = "iface_available"
)

// Event represents a manager lifecycle event.
// Minimal and stable: name, interface and chip plus optional fields.
type Event struct {
	Time   time.Time
	Name   string
	Iface  string
	Chip   int
	Fields map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic. Events are published
// after the manager lock is released.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
