package types

import "time"

// CreateIfaceRequest is the body of POST /ifaces.
type CreateIfaceRequest struct {
	// Interface type: sta, ap, p2p or nan.
	// example: sta
	Type string `json:"type" example:"sta"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// IfaceStatus summarizes a live interface.
type IfaceStatus struct {
	// Platform-assigned interface name.
	// example: sta0
	Name string `json:"name" example:"sta0"`
	// Interface type.
	// example: sta
	Type string `json:"type" example:"sta"`
	// Chip hosting the interface.
	// example: 0
	Chip uint32 `json:"chip" example:"0"`
	// Chip mode the interface was created in.
	// example: 0
	Mode uint32 `json:"mode" example:"0"`
	// Number of registered destruction listeners.
	// example: 1
	Listeners int `json:"listeners" example:"1"`
}

// ModeStatus describes one chip mode.
type ModeStatus struct {
	// example: 1
	ID uint32 `json:"id" example:"1"`
	// Combinations rendered as limit lists, e.g. "[sta]:1 [p2p nan]:1".
	Combinations []string `json:"combinations"`
}

// ChipStatus describes one chip.
type ChipStatus struct {
	// example: 0
	ID uint32 `json:"id" example:"0"`
	// Current mode; absent while unconfigured.
	Mode *uint32 `json:"mode,omitempty"`
	// Modes the chip supports.
	Modes []ModeStatus `json:"modes"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Manager status: started or stopped.
	// example: started
	State string `json:"state" example:"started"`
	// True when the Wi-Fi service is bound.
	Ready bool `json:"ready"`
	// True while registered with the service manager.
	ServiceBound bool `json:"service_bound"`
	// Binding generation; increments every time the service is (re)bound.
	// example: 1
	Generation uint64 `json:"generation" example:"1"`
	Chips      []ChipStatus  `json:"chips"`
	Ifaces     []IfaceStatus `json:"ifaces"`
	// Waiting availability listeners per interface type.
	PendingAvailable map[string]int `json:"pending_available,omitempty"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// ActionResponse is returned by POST /start and POST /stop.
type ActionResponse struct {
	OK bool `json:"ok"`
	// example: started
	State string `json:"state" example:"started"`
}

// EventRecord is one journaled manager event.
type EventRecord struct {
	// example: 42
	ID     int64          `json:"id" example:"42"`
	Time   time.Time      `json:"time"`
	Name   string         `json:"name" example:"iface_created"`
	Iface  string         `json:"iface,omitempty" example:"sta0"`
	Chip   int            `json:"chip"`
	Fields map[string]any `json:"fields,omitempty"`
}

// EventsResponse wraps GET /events.
type EventsResponse struct {
	Events []EventRecord `json:"events"`
}
