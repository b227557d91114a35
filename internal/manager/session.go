package manager

import (
	"fmt"
	"sort"

	"wifihal/internal/hal"
)

// Session holds the remote handles of one binding to the Wi-Fi service. A
// session is never patched handle by handle: binding, start and loss of the
// service each install a new value (or nil) under Manager.mu.
type Session struct {
	gen   uint64
	wifi  hal.Wifi
	chips []*chipState
}

// chipState is a chip discovered in a session. modes and their expansions are
// fixed for the session; mode tracks the chip's configured mode and changes as
// the manager configures it.
type chipState struct {
	chip      hal.Chip
	id        hal.ChipID
	modes     []hal.ChipMode
	expanded  [][]hal.IfaceCounts
	mode      hal.ModeID
	modeValid bool
}

func newChipState(chip hal.Chip, id hal.ChipID, modes []hal.ChipMode) *chipState {
	c := &chipState{chip: chip, id: id, modes: modes, expanded: make([][]hal.IfaceCounts, len(modes))}
	for i, m := range modes {
		c.expanded[i] = m.Expanded()
	}
	return c
}

func (s *Session) chip(id hal.ChipID) *chipState {
	for _, c := range s.chips {
		if c.id == id {
			return c
		}
	}
	return nil
}

// supports reports whether any mode of any chip can host t.
func (s *Session) supports(t hal.IfaceType) bool {
	for _, c := range s.chips {
		for _, m := range c.modes {
			if m.Supports(t) {
				return true
			}
		}
	}
	return false
}

func (c *chipState) findMode(id hal.ModeID) (hal.ChipMode, bool) {
	for _, m := range c.modes {
		if m.ID == id {
			return m, true
		}
	}
	return hal.ChipMode{}, false
}

func (c *chipState) setMode(id hal.ModeID) {
	c.mode = id
	c.modeValid = true
}

func (c *chipState) clearMode() {
	c.mode = 0
	c.modeValid = false
}

// loadChips discovers every chip of wifi together with its modes and current mode.
func loadChips(wifi hal.Wifi) ([]*chipState, error) {
	ids, err := wifi.ChipIDs()
	if err != nil {
		return nil, ErrHalFailure("getChipIds", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	chips := make([]*chipState, 0, len(ids))
	for _, id := range ids {
		chip, err := wifi.Chip(id)
		if err != nil {
			return nil, ErrHalFailure("getChip", err)
		}
		modes, err := chip.AvailableModes()
		if err != nil {
			return nil, ErrHalFailure("getAvailableModes", err)
		}
		for _, m := range modes {
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("chip %d: %w", id, err)
			}
		}
		cs := newChipState(chip, id, modes)
		mode, valid, err := currentMode(chip)
		if err != nil {
			return nil, err
		}
		if valid {
			cs.setMode(mode)
		}
		chips = append(chips, cs)
	}
	return chips, nil
}

// currentMode reads the chip mode. An unset mode is not an error.
func currentMode(chip hal.Chip) (hal.ModeID, bool, error) {
	mode, err := chip.Mode()
	switch {
	case err == nil:
		return mode, true, nil
	case hal.StatusCodeOf(err) == hal.StatusErrorNotAvailable:
		return 0, false, nil
	default:
		return 0, false, ErrHalFailure("getMode", err)
	}
}
