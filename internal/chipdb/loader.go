// Package chipdb loads chip capability profiles. A profile names a device and
// lists its chips with the modes and interface combinations each one supports.
package chipdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"wifihal/internal/common/fsutil"
	"wifihal/internal/hal"
	"wifihal/pkg/types"
)

// BaselineDevice is the name of the built-in profile.
const BaselineDevice = "baseline"

// Chip is a profile chip converted to HAL capability types.
type Chip struct {
	ID    hal.ChipID
	Modes []hal.ChipMode
}

// LoadDir scans dir for .yaml/.yml/.json/.toml profiles, sorted by device name.
// Other files are ignored.
func LoadDir(dir string) ([]types.ChipProfile, error) {
	abs, err := fsutil.ResolveDir(dir)
	if err != nil {
		return nil, fmt.Errorf("profiles dir: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var profiles []types.ChipProfile
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !supportedExt(e.Name()) {
			continue
		}
		p := filepath.Join(abs, e.Name())
		prof, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[prof.Device]; dup {
			return nil, fmt.Errorf("device %q defined in both %s and %s", prof.Device, prev, e.Name())
		}
		seen[prof.Device] = e.Name()
		profiles = append(profiles, prof)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Device < profiles[j].Device })
	return profiles, nil
}

// LoadFile reads one profile. The format is chosen by extension. A profile
// without a device name takes the file's base name.
func LoadFile(path string) (types.ChipProfile, error) {
	var prof types.ChipProfile
	b, err := os.ReadFile(path)
	if err != nil {
		return prof, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &prof)
	case ".json":
		err = json.Unmarshal(b, &prof)
	case ".toml":
		err = toml.Unmarshal(b, &prof)
	default:
		return prof, fmt.Errorf("unsupported profile extension: %s", ext)
	}
	if err != nil {
		return prof, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if prof.Device == "" {
		prof.Device = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if _, err := Chips(prof); err != nil {
		return prof, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return prof, nil
}

// Select returns the profile for device. An empty device or "baseline" without a
// matching file selects Baseline.
func Select(profiles []types.ChipProfile, device string) (types.ChipProfile, error) {
	for _, p := range profiles {
		if p.Device == device {
			return p, nil
		}
	}
	if device == "" || device == BaselineDevice {
		return Baseline(), nil
	}
	return types.ChipProfile{}, fmt.Errorf("unknown device profile %q", device)
}

// Chips validates prof and converts it to HAL capability types, ordered by id.
func Chips(prof types.ChipProfile) ([]Chip, error) {
	if len(prof.Chips) == 0 {
		return nil, fmt.Errorf("device %q: no chips", prof.Device)
	}
	out := make([]Chip, 0, len(prof.Chips))
	ids := make(map[uint32]bool)
	for _, cs := range prof.Chips {
		if ids[cs.ID] {
			return nil, fmt.Errorf("device %q: duplicate chip id %d", prof.Device, cs.ID)
		}
		ids[cs.ID] = true
		modes, err := Modes(cs)
		if err != nil {
			return nil, fmt.Errorf("device %q chip %d: %w", prof.Device, cs.ID, err)
		}
		out = append(out, Chip{ID: hal.ChipID(cs.ID), Modes: modes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Modes converts the modes of one chip.
func Modes(cs types.ChipSpec) ([]hal.ChipMode, error) {
	if len(cs.Modes) == 0 {
		return nil, fmt.Errorf("no modes")
	}
	modes := make([]hal.ChipMode, 0, len(cs.Modes))
	ids := make(map[uint32]bool)
	for _, ms := range cs.Modes {
		if ids[ms.ID] {
			return nil, fmt.Errorf("duplicate mode id %d", ms.ID)
		}
		ids[ms.ID] = true
		mode := hal.ChipMode{ID: hal.ModeID(ms.ID)}
		for _, c := range ms.Combinations {
			var comb hal.IfaceCombination
			for _, l := range c.Limits {
				limit := hal.IfaceLimit{MaxIfaces: l.Max}
				for _, name := range l.Types {
					t, err := hal.ParseIfaceType(name)
					if err != nil {
						return nil, fmt.Errorf("mode %d: %w", ms.ID, err)
					}
					limit.Types = append(limit.Types, t)
				}
				comb.Limits = append(comb.Limits, limit)
			}
			mode.Combinations = append(mode.Combinations, comb)
		}
		if err := mode.Validate(); err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

// Baseline is the reference single chip: mode 0 hosts one STA and one of P2P or
// NAN, mode 1 hosts one AP.
func Baseline() types.ChipProfile {
	return types.ChipProfile{
		Device:      BaselineDevice,
		Description: "single chip, STA+(P2P|NAN) or AP",
		Chips: []types.ChipSpec{{
			ID: 0,
			Modes: []types.ModeSpec{
				{ID: 0, Name: "sta", Combinations: []types.CombinationSpec{{Limits: []types.LimitSpec{
					{Types: []string{"sta"}, Max: 1},
					{Types: []string{"p2p", "nan"}, Max: 1},
				}}}},
				{ID: 1, Name: "ap", Combinations: []types.CombinationSpec{{Limits: []types.LimitSpec{
					{Types: []string{"ap"}, Max: 1},
				}}}},
			},
		}},
	}
}

func supportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	}
	return false
}
