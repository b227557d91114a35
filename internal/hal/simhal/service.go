// Package simhal is an in-memory vendor Wi-Fi HAL. It enforces chip modes the way
// real firmware does and exposes fault injection hooks used by tests and by the
// daemon's simulation mode.
package simhal

import (
	"reflect"
	"sync"

	"wifihal/internal/hal"
)

const defaultInstance = "default"

type link struct {
	recipient hal.DeathRecipient
	cookie    uint64
}

// ServiceManager is a simulated hwservicemanager.
type ServiceManager struct {
	mu            sync.Mutex
	links         []link
	notifications map[string][]hal.ServiceNotification
	services      map[string]*Wifi
	registrations int
	dead          bool
}

// NewServiceManager returns an empty service manager with no published services.
func NewServiceManager() *ServiceManager {
	return &ServiceManager{
		notifications: make(map[string][]hal.ServiceNotification),
		services:      make(map[string]*Wifi),
	}
}

func (sm *ServiceManager) LinkToDeath(r hal.DeathRecipient, cookie uint64) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.dead {
		return &hal.TransportError{Op: "IServiceManager.linkToDeath", Err: hal.ErrDeadObject}
	}
	sm.links = append(sm.links, link{recipient: r, cookie: cookie})
	return nil
}

// RegisterForNotifications stores cb for service. Registering the identical callback
// twice keeps one copy. If the service is already published, cb is notified with
// preexisting=true on a separate goroutine.
func (sm *ServiceManager) RegisterForNotifications(service string, cb hal.ServiceNotification) error {
	sm.mu.Lock()
	if sm.dead {
		sm.mu.Unlock()
		return &hal.TransportError{Op: "IServiceManager.registerForNotifications", Err: hal.ErrDeadObject}
	}
	for _, existing := range sm.notifications[service] {
		if sameCallback(existing, cb) {
			sm.mu.Unlock()
			return nil
		}
	}
	sm.notifications[service] = append(sm.notifications[service], cb)
	sm.registrations++
	w := sm.services[service]
	sm.mu.Unlock()

	if w != nil && !w.dead.Load() {
		go cb.OnRegistration(service, defaultInstance, true)
	}
	return nil
}

func (sm *ServiceManager) GetService(service string) (hal.Wifi, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.dead {
		return nil, &hal.TransportError{Op: "IServiceManager.get", Err: hal.ErrDeadObject}
	}
	w := sm.services[service]
	if w == nil || w.dead.Load() {
		return nil, hal.NewStatusError("IServiceManager.get", hal.StatusErrorNotAvailable, service)
	}
	return w, nil
}

// Publish makes w available under service and notifies registered callbacks on the
// calling goroutine.
func (sm *ServiceManager) Publish(service string, w *Wifi) {
	sm.mu.Lock()
	sm.services[service] = w
	cbs := append([]hal.ServiceNotification(nil), sm.notifications[service]...)
	sm.mu.Unlock()
	for _, cb := range cbs {
		cb.OnRegistration(service, defaultInstance, false)
	}
}

// Registrations returns the number of distinct notification registrations.
func (sm *ServiceManager) Registrations() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.registrations
}

// Kill marks the service manager dead and fires its death recipients.
func (sm *ServiceManager) Kill() {
	sm.mu.Lock()
	sm.dead = true
	links := append([]link(nil), sm.links...)
	sm.links = nil
	sm.mu.Unlock()
	for _, l := range links {
		l.recipient(l.cookie)
	}
}

// Revive makes a killed service manager usable again, dropping old registrations.
func (sm *ServiceManager) Revive() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.dead = false
	sm.notifications = make(map[string][]hal.ServiceNotification)
}

func sameCallback(a, b hal.ServiceNotification) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
