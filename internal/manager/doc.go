// Package manager is the HAL device manager: it arbitrates the interface
// combinations a Wi-Fi chip supports among clients that request STA, AP, P2P
// and NAN interfaces, and it supervises the binding to the vendor Wi-Fi
// service. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: Iface handles, Status and the listener interfaces.
//   - errors.go: error types and helpers (IsNotStarted, IsNoViableMode, ...).
//   - registry.go: the live interface cache and the listener sets.
//   - priority.go: the eviction policy between interface types.
//   - allocate.go: CreateIface/RemoveIface planning and execution.
//   - session.go: Session, the remote handles of one service binding.
//   - lifecycle.go: Initialize/Start/Stop and the forced stop-and-resync path.
//   - dispatch.go: Executor, Queue and deferred listener delivery.
//   - status_report.go: Status/Dump reporting and the name based API used over HTTP.
//   - events.go, eventpub_memory.go: lifecycle events and in-memory publishers.
//   - metrics.go: prometheus collectors.
//
// All state changes and HAL calls are serialized by one mutex. Listener
// callbacks and events are collected while it is held and handed to each
// listener's Executor after it is released, so a listener may call back into
// the manager.
package manager
