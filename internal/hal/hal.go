// Package hal describes the vendor Wi-Fi HAL as seen by the device manager.
//
// Every remote call is synchronous and returns a tagged result: a value and a nil
// error on success, a *StatusError when the HAL answered with a failure status, or a
// *TransportError when the call did not reach the service. Concrete bindings live in
// sub-packages (see simhal).
package hal

// DeathRecipient is invoked when the remote side of a link dies.
type DeathRecipient func(cookie uint64)

// ServiceNotification receives service registration events from the ServiceManager.
// Implementations are compared by identity for de-duplication, so pointer types are
// expected.
type ServiceNotification interface {
	OnRegistration(fqName, instance string, preexisting bool)
}

// ServiceManager is the top-level service discovery mechanism.
type ServiceManager interface {
	LinkToDeath(recipient DeathRecipient, cookie uint64) error
	RegisterForNotifications(service string, cb ServiceNotification) error
	GetService(service string) (Wifi, error)
}

// EventCallback receives asynchronous events from the Wi-Fi service.
type EventCallback interface {
	OnStart()
	OnStop()
	OnFailure(status Status)
}

// Wifi is the vendor Wi-Fi service.
type Wifi interface {
	LinkToDeath(recipient DeathRecipient, cookie uint64) error
	RegisterEventCallback(cb EventCallback) error
	IsStarted() (bool, error)
	Start() error
	Stop() error
	ChipIDs() ([]ChipID, error)
	Chip(id ChipID) (Chip, error)
}

// Chip is a radio chip. Mode returns a StatusErrorNotAvailable status error when no
// mode has been configured yet.
type Chip interface {
	ID() ChipID
	AvailableModes() ([]ChipMode, error)
	Mode() (ModeID, error)
	ConfigureChip(mode ModeID) error
	CreateIface(t IfaceType) (Iface, error)
	RemoveIface(t IfaceType, name string) error
	IfaceNames(t IfaceType) ([]string, error)
	CreateRttController(bound Iface) (RttController, error)
}

// Iface is a live interface on a chip.
type Iface interface {
	Name() (string, error)
	Type() (IfaceType, error)
}

// RttController is a ranging controller bound to an interface.
type RttController interface {
	BoundIfaceName() (string, error)
}
