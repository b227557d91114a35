package simhal

import (
	"fmt"
	"sync"

	"wifihal/internal/hal"
)

// Chip is a simulated radio chip.
type Chip struct {
	mu        sync.Mutex
	id        hal.ChipID
	modes     []hal.ChipMode
	mode      hal.ModeID
	modeValid bool
	ifaces    [hal.NumIfaceTypes][]*Iface

	failCreate    map[hal.IfaceType]error
	failConfigure error
	calls         []string

	wifi *Wifi
}

// NewChip returns an unconfigured chip supporting modes.
func NewChip(id hal.ChipID, modes ...hal.ChipMode) *Chip {
	return &Chip{id: id, modes: modes, failCreate: make(map[hal.IfaceType]error)}
}

func (c *Chip) dead() bool { return c.wifi != nil && c.wifi.dead.Load() }

func (c *Chip) transport(op string) error {
	return &hal.TransportError{Op: "IWifiChip." + op, Err: hal.ErrDeadObject}
}

func (c *Chip) record(format string, args ...any) {
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *Chip) ID() hal.ChipID { return c.id }

func (c *Chip) AvailableModes() ([]hal.ChipMode, error) {
	if c.dead() {
		return nil, c.transport("getAvailableModes")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]hal.ChipMode(nil), c.modes...), nil
}

func (c *Chip) Mode() (hal.ModeID, error) {
	if c.dead() {
		return 0, c.transport("getMode")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modeValid {
		return 0, hal.NewStatusError("IWifiChip.getMode", hal.StatusErrorNotAvailable, "mode not configured")
	}
	return c.mode, nil
}

// ConfigureChip switches mode. Every existing interface is dropped.
func (c *Chip) ConfigureChip(mode hal.ModeID) error {
	if c.dead() {
		return c.transport("configureChip")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("configureChip(%d)", mode)
	if err := c.failConfigure; err != nil {
		c.failConfigure = nil
		return err
	}
	if _, ok := c.findMode(mode); !ok {
		return hal.NewStatusError("IWifiChip.configureChip", hal.StatusErrorInvalidArgs, fmt.Sprintf("unknown mode %d", mode))
	}
	for i := range c.ifaces {
		c.ifaces[i] = nil
	}
	c.mode = mode
	c.modeValid = true
	return nil
}

func (c *Chip) CreateIface(t hal.IfaceType) (hal.Iface, error) {
	op := fmt.Sprintf("IWifiChip.create%sIface", opName(t))
	if c.dead() {
		return nil, c.transport(op)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("create%sIface()", opName(t))
	if err := c.failCreate[t]; err != nil {
		delete(c.failCreate, t)
		return nil, err
	}
	if !c.modeValid {
		return nil, hal.NewStatusError(op, hal.StatusErrorNotAvailable, "mode not configured")
	}
	mode, _ := c.findMode(c.mode)
	need := c.countsLocked()
	need[t]++
	if !mode.Fits(need) {
		return nil, hal.NewStatusError(op, hal.StatusErrorNotAvailable, fmt.Sprintf("mode %d cannot host %s", c.mode, need))
	}
	iface := &Iface{name: c.freeNameLocked(t), typ: t}
	c.ifaces[t] = append(c.ifaces[t], iface)
	return iface, nil
}

func (c *Chip) RemoveIface(t hal.IfaceType, name string) error {
	op := fmt.Sprintf("IWifiChip.remove%sIface", opName(t))
	if c.dead() {
		return c.transport(op)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("remove%sIface(%s)", opName(t), name)
	if !c.dropLocked(t, name) {
		return hal.NewStatusError(op, hal.StatusErrorInvalidArgs, "no such iface "+name)
	}
	return nil
}

func (c *Chip) IfaceNames(t hal.IfaceType) ([]string, error) {
	if c.dead() {
		return nil, c.transport(fmt.Sprintf("get%sIfaceNames", opName(t)))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.ifaces[t]))
	for _, i := range c.ifaces[t] {
		names = append(names, i.name)
	}
	return names, nil
}

func (c *Chip) CreateRttController(bound hal.Iface) (hal.RttController, error) {
	if c.dead() {
		return nil, c.transport("createRttController")
	}
	name, err := bound.Name()
	if err != nil {
		return nil, err
	}
	t, err := bound.Type()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, i := range c.ifaces[t] {
		if i.name == name {
			return &RttController{bound: name}, nil
		}
	}
	return nil, hal.NewStatusError("IWifiChip.createRttController", hal.StatusErrorWifiIfaceInvalid, name)
}

// ForgetIface removes an interface without going through the HAL API, leaving any
// client cache stale.
func (c *Chip) ForgetIface(t hal.IfaceType, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropLocked(t, name)
}

// FailNextCreate makes the next creation of type t return err.
func (c *Chip) FailNextCreate(t hal.IfaceType, err error) {
	c.mu.Lock()
	c.failCreate[t] = err
	c.mu.Unlock()
}

// FailNextConfigure makes the next ConfigureChip return err.
func (c *Chip) FailNextConfigure(err error) {
	c.mu.Lock()
	c.failConfigure = err
	c.mu.Unlock()
}

// SetMode forces the current mode without dropping interfaces.
func (c *Chip) SetMode(mode hal.ModeID) {
	c.mu.Lock()
	c.mode = mode
	c.modeValid = true
	c.mu.Unlock()
}

// Calls returns the mutating calls made on the chip, oldest first.
func (c *Chip) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *Chip) ClearCalls() {
	c.mu.Lock()
	c.calls = nil
	c.mu.Unlock()
}

func (c *Chip) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.ifaces {
		c.ifaces[i] = nil
	}
	c.modeValid = false
}

func (c *Chip) findMode(id hal.ModeID) (hal.ChipMode, bool) {
	for _, m := range c.modes {
		if m.ID == id {
			return m, true
		}
	}
	return hal.ChipMode{}, false
}

func (c *Chip) countsLocked() hal.IfaceCounts {
	var n hal.IfaceCounts
	for t := range c.ifaces {
		n[t] = len(c.ifaces[t])
	}
	return n
}

func (c *Chip) freeNameLocked(t hal.IfaceType) string {
	used := make(map[string]bool, len(c.ifaces[t]))
	for _, i := range c.ifaces[t] {
		used[i.name] = true
	}
	for n := 0; ; n++ {
		name := fmt.Sprintf("%s%d", t, n)
		if !used[name] {
			return name
		}
	}
}

func (c *Chip) dropLocked(t hal.IfaceType, name string) bool {
	for idx, i := range c.ifaces[t] {
		if i.name == name {
			c.ifaces[t] = append(c.ifaces[t][:idx], c.ifaces[t][idx+1:]...)
			return true
		}
	}
	return false
}

func opName(t hal.IfaceType) string {
	switch t {
	case hal.IfaceSTA:
		return "Sta"
	case hal.IfaceAP:
		return "Ap"
	case hal.IfaceP2P:
		return "P2p"
	case hal.IfaceNAN:
		return "Nan"
	}
	return "Unknown"
}

// Iface is a simulated interface handle.
type Iface struct {
	name string
	typ  hal.IfaceType
}

func (i *Iface) Name() (string, error) { return i.name, nil }

func (i *Iface) Type() (hal.IfaceType, error) { return i.typ, nil }

// RttController is a simulated ranging controller.
type RttController struct {
	bound string
}

func (r *RttController) BoundIfaceName() (string, error) { return r.bound, nil }
