package manager

import (
	"sort"

	"wifihal/internal/hal"
)

type destroyedReg struct {
	l  DestroyedListener
	ex Executor
}

type availableReg struct {
	l  AvailableListener
	ex Executor
}

// ifaceEntry is the registry's record of one live interface.
type ifaceEntry struct {
	iface     *Iface
	chip      hal.Chip
	mode      hal.ModeID
	seq       uint64
	listeners []destroyedReg
}

// registry is the manager's live-state cache. It is guarded by Manager.mu.
type registry struct {
	seq       uint64
	ifaces    map[*Iface]*ifaceEntry
	available [hal.NumIfaceTypes][]availableReg
}

func newRegistry() *registry {
	return &registry{ifaces: make(map[*Iface]*ifaceEntry)}
}

// recordCreated inserts iface. It does not touch any listener.
func (r *registry) recordCreated(iface *Iface, chip hal.Chip, mode hal.ModeID) *ifaceEntry {
	r.seq++
	e := &ifaceEntry{iface: iface, chip: chip, mode: mode, seq: r.seq}
	r.ifaces[iface] = e
	return e
}

// recordDestroyed removes iface and returns its destruction listeners. Unknown
// handles are a no-op.
func (r *registry) recordDestroyed(iface *Iface) ([]destroyedReg, bool) {
	e, ok := r.ifaces[iface]
	if !ok {
		return nil, false
	}
	delete(r.ifaces, iface)
	return e.listeners, true
}

func (r *registry) lookup(iface *Iface) *ifaceEntry {
	if iface == nil {
		return nil
	}
	return r.ifaces[iface]
}

func (r *registry) byName(name string) *ifaceEntry {
	for _, e := range r.ifaces {
		if e.iface.name == name {
			return e
		}
	}
	return nil
}

// listByType returns the live interfaces of t, oldest first.
func (r *registry) listByType(t hal.IfaceType) []*ifaceEntry {
	return r.list(func(e *ifaceEntry) bool { return e.iface.typ == t })
}

// listByChip returns the live interfaces on chip, oldest first.
func (r *registry) listByChip(chip hal.ChipID) []*ifaceEntry {
	return r.list(func(e *ifaceEntry) bool { return e.iface.chipID == chip })
}

func (r *registry) all() []*ifaceEntry {
	return r.list(func(*ifaceEntry) bool { return true })
}

func (r *registry) list(keep func(*ifaceEntry) bool) []*ifaceEntry {
	out := make([]*ifaceEntry, 0, len(r.ifaces))
	for _, e := range r.ifaces {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// countsByChip returns the live per-type counts on chip.
func (r *registry) countsByChip(chip hal.ChipID) hal.IfaceCounts {
	var c hal.IfaceCounts
	for _, e := range r.ifaces {
		if e.iface.chipID == chip {
			c[e.iface.typ]++
		}
	}
	return c
}

// registerDestroyedListener appends l to iface's listeners. Registering the same
// listener twice for one interface keeps a single registration.
func (r *registry) registerDestroyedListener(iface *Iface, l DestroyedListener, ex Executor) bool {
	e := r.ifaces[iface]
	if e == nil || l == nil {
		return false
	}
	for _, d := range e.listeners {
		if sameListener(d.l, l) {
			return true
		}
	}
	e.listeners = append(e.listeners, destroyedReg{l: l, ex: ex})
	return true
}

func (r *registry) registerAvailableListener(t hal.IfaceType, l AvailableListener, ex Executor) {
	if l == nil || !t.Valid() {
		return
	}
	for _, a := range r.available[t] {
		if sameListener(a.l, l) {
			return
		}
	}
	r.available[t] = append(r.available[t], availableReg{l: l, ex: ex})
}

// pendingAvailable returns the types with waiting availability listeners.
func (r *registry) pendingAvailable() []hal.IfaceType {
	var out []hal.IfaceType
	for _, t := range hal.IfaceTypes {
		if len(r.available[t]) > 0 {
			out = append(out, t)
		}
	}
	return out
}

// takeAvailable removes and returns the availability listeners of t.
func (r *registry) takeAvailable(t hal.IfaceType) []availableReg {
	regs := r.available[t]
	r.available[t] = nil
	return regs
}

// purge drops every interface and availability listener. It returns the
// destruction listeners of the dropped interfaces, oldest interface first.
func (r *registry) purge() ([]*ifaceEntry, []destroyedReg) {
	entries := r.all()
	var regs []destroyedReg
	for _, e := range entries {
		regs = append(regs, e.listeners...)
	}
	r.ifaces = make(map[*Iface]*ifaceEntry)
	for i := range r.available {
		r.available[i] = nil
	}
	return entries, regs
}
