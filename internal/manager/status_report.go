package manager

import (
	"context"
	"fmt"
	"io"
	"strings"

	"wifihal/internal/hal"
	"wifihal/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := types.StatusResponse{
		State:          string(m.status),
		Ready:          m.session != nil,
		ServiceBound:   m.bound,
		ServerTimeUnix: m.now().Unix(),
		Chips:          []types.ChipStatus{},
		Ifaces:         []types.IfaceStatus{},
	}
	if s := m.session; s != nil {
		resp.Generation = s.gen
		for _, c := range s.chips {
			cs := types.ChipStatus{ID: uint32(c.id)}
			if c.modeValid {
				mode := uint32(c.mode)
				cs.Mode = &mode
			}
			for _, md := range c.modes {
				cs.Modes = append(cs.Modes, types.ModeStatus{ID: uint32(md.ID), Combinations: describeCombinations(md)})
			}
			resp.Chips = append(resp.Chips, cs)
		}
	}
	for _, e := range m.reg.all() {
		resp.Ifaces = append(resp.Ifaces, ifaceStatus(e))
	}
	for _, t := range m.reg.pendingAvailable() {
		if resp.PendingAvailable == nil {
			resp.PendingAvailable = make(map[string]int)
		}
		resp.PendingAvailable[t.String()] = len(m.reg.available[t])
	}
	return resp
}

func ifaceStatus(e *ifaceEntry) types.IfaceStatus {
	return types.IfaceStatus{
		Name:      e.iface.name,
		Type:      e.iface.typ.String(),
		Chip:      uint32(e.iface.chipID),
		Mode:      uint32(e.mode),
		Listeners: len(e.listeners),
	}
}

func describeCombinations(md hal.ChipMode) []string {
	out := make([]string, 0, len(md.Combinations))
	for _, c := range md.Combinations {
		parts := make([]string, 0, len(c.Limits))
		for _, l := range c.Limits {
			names := make([]string, 0, len(l.Types))
			for _, t := range l.Types {
				names = append(names, t.String())
			}
			parts = append(parts, fmt.Sprintf("[%s]:%d", strings.Join(names, " "), l.MaxIfaces))
		}
		out = append(out, strings.Join(parts, " "))
	}
	return out
}

// Dump writes a human-readable description of the manager state. The format is
// for diagnostics only.
func (m *Manager) Dump(w io.Writer) {
	st := m.Status()
	fmt.Fprintln(w, "HalDeviceManager:")
	fmt.Fprintf(w, "  status: %s\n", st.State)
	fmt.Fprintf(w, "  service bound: %t ready: %t generation: %d\n", st.ServiceBound, st.Ready, st.Generation)
	fmt.Fprintf(w, "  chips (%d):\n", len(st.Chips))
	for _, c := range st.Chips {
		mode := "unset"
		if c.Mode != nil {
			mode = fmt.Sprint(*c.Mode)
		}
		fmt.Fprintf(w, "    chip %d mode=%s\n", c.ID, mode)
		for _, md := range c.Modes {
			fmt.Fprintf(w, "      mode %d: %s\n", md.ID, strings.Join(md.Combinations, " | "))
		}
	}
	fmt.Fprintf(w, "  interfaces (%d):\n", len(st.Ifaces))
	for _, i := range st.Ifaces {
		fmt.Fprintf(w, "    %s type=%s chip=%d mode=%d listeners=%d\n", i.Name, i.Type, i.Chip, i.Mode, i.Listeners)
	}
	if len(st.PendingAvailable) > 0 {
		fmt.Fprintln(w, "  availability listeners:")
		for _, t := range hal.IfaceTypes {
			if n := st.PendingAvailable[t.String()]; n > 0 {
				fmt.Fprintf(w, "    %s: %d\n", t, n)
			}
		}
	}
}

// RequestIface creates an interface on behalf of a remote client that holds no
// listeners.
func (m *Manager) RequestIface(ctx context.Context, t hal.IfaceType) (types.IfaceStatus, error) {
	iface, err := m.CreateIface(ctx, t, nil, nil, nil)
	if err != nil {
		return types.IfaceStatus{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.reg.lookup(iface); e != nil {
		return ifaceStatus(e), nil
	}
	// Torn down by a concurrent request before we could report it.
	return types.IfaceStatus{Name: iface.name, Type: t.String(), Chip: uint32(iface.chipID)}, nil
}

// ReleaseIface removes the interface called name. The interface is gone from
// the registry even when the HAL refused the removal.
func (m *Manager) ReleaseIface(name string) error {
	iface := m.IfaceByName(name)
	if iface == nil {
		return ErrIfaceNotFound(name)
	}
	known, ok := m.removeIface(iface)
	switch {
	case !known:
		return ErrIfaceNotFound(name)
	case !ok:
		return ErrHalFailure("removeIface", fmt.Errorf("hal refused removal of %s", name))
	}
	return nil
}
