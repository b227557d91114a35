package manager

import (
	"wifihal/internal/hal"
)

// Status is the process-wide manager status.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusStarted Status = "started"
)

// Iface is a handle to an interface created through the manager. Handles are
// compared by identity; a handle stays valid until the interface is destroyed.
type Iface struct {
	name   string
	typ    hal.IfaceType
	chipID hal.ChipID
	remote hal.Iface
}

func (i *Iface) Name() string { return i.name }

func (i *Iface) Type() hal.IfaceType { return i.typ }

func (i *Iface) ChipID() hal.ChipID { return i.chipID }

func (i *Iface) String() string { return i.typ.String() + ":" + i.name }

// StatusListener observes manager start/stop transitions.
type StatusListener interface {
	OnStart()
	OnStop()
}

// DestroyedListener is told once when its interface is destroyed, for any reason.
type DestroyedListener interface {
	OnDestroyed()
}

// AvailableListener is told once when an interface type it failed to obtain
// becomes creatable again.
type AvailableListener interface {
	OnAvailableForRequest()
}

// DestroyedFunc adapts a function to DestroyedListener. Function values are not
// comparable, so registrations of a DestroyedFunc are never coalesced.
type DestroyedFunc func()

func (f DestroyedFunc) OnDestroyed() { f() }

// AvailableFunc adapts a function to AvailableListener.
type AvailableFunc func()

func (f AvailableFunc) OnAvailableForRequest() { f() }
