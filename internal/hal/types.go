package hal

import (
	"fmt"
	"strings"
)

// IfaceType is the role of a radio interface.
type IfaceType int

const (
	IfaceSTA IfaceType = iota
	IfaceAP
	IfaceP2P
	IfaceNAN
)

// NumIfaceTypes is the number of interface types a chip can host.
const NumIfaceTypes = 4

// IfaceTypes lists every interface type in declaration order.
var IfaceTypes = [NumIfaceTypes]IfaceType{IfaceSTA, IfaceAP, IfaceP2P, IfaceNAN}

func (t IfaceType) String() string {
	switch t {
	case IfaceSTA:
		return "sta"
	case IfaceAP:
		return "ap"
	case IfaceP2P:
		return "p2p"
	case IfaceNAN:
		return "nan"
	default:
		return fmt.Sprintf("iface(%d)", int(t))
	}
}

// Valid reports whether t is one of the four known types.
func (t IfaceType) Valid() bool { return t >= IfaceSTA && t <= IfaceNAN }

// ParseIfaceType accepts the lower or upper case text form ("sta", "AP", ...).
func ParseIfaceType(s string) (IfaceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sta":
		return IfaceSTA, nil
	case "ap":
		return IfaceAP, nil
	case "p2p":
		return IfaceP2P, nil
	case "nan":
		return IfaceNAN, nil
	}
	return 0, fmt.Errorf("unknown interface type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t IfaceType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid interface type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *IfaceType) UnmarshalText(b []byte) error {
	v, err := ParseIfaceType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ChipID identifies a chip exposed by the vendor HAL.
type ChipID uint32

// ModeID identifies a chip mode.
type ModeID uint32

// ServiceName is the fully qualified name of the vendor Wi-Fi service.
const ServiceName = "android.hardware.wifi@1.0::IWifi"
