package types

// ChipProfile describes the chips of one device as loaded from a profile file.
type ChipProfile struct {
	// Device name the profile is selected by.
	// example: baseline
	Device      string     `json:"device" yaml:"device" toml:"device"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Chips       []ChipSpec `json:"chips" yaml:"chips" toml:"chips"`
}

// ChipSpec is one chip and its modes.
type ChipSpec struct {
	ID    uint32     `json:"id" yaml:"id" toml:"id"`
	Modes []ModeSpec `json:"modes" yaml:"modes" toml:"modes"`
}

// ModeSpec is one chip mode.
type ModeSpec struct {
	ID           uint32            `json:"id" yaml:"id" toml:"id"`
	Name         string            `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Combinations []CombinationSpec `json:"combinations" yaml:"combinations" toml:"combinations"`
}

// CombinationSpec is a set of limits that apply together.
type CombinationSpec struct {
	Limits []LimitSpec `json:"limits" yaml:"limits" toml:"limits"`
}

// LimitSpec caps the listed types, which share Max slots.
type LimitSpec struct {
	Types []string `json:"types" yaml:"types" toml:"types"`
	Max   int      `json:"max" yaml:"max" toml:"max"`
}
