package manager

import (
	"wifihal/internal/hal"
)

// priorityOrder lists interface types from highest to lowest priority. It is
// the only place the eviction ordering is defined.
var priorityOrder = [hal.NumIfaceTypes]hal.IfaceType{hal.IfaceAP, hal.IfaceSTA, hal.IfaceP2P, hal.IfaceNAN}

// allowedToEvict reports whether a request for requested may destroy one
// interface of type existing, given existingCount live interfaces of that type.
// AP and STA may evict each other: a STA request tears down a lone AP.
func allowedToEvict(requested, existing hal.IfaceType, existingCount int) bool {
	if requested == existing {
		return false
	}
	if existingCount > 1 {
		return true
	}
	switch requested {
	case hal.IfaceNAN:
		return false
	case hal.IfaceP2P:
		return existing == hal.IfaceNAN
	default:
		return true
	}
}

// betterRemovals reports whether removal counts a are preferable to b: fewer
// interfaces overall, then fewer of the highest priority type that differs.
// The second result is false when a and b are equivalent.
func betterRemovals(a, b hal.IfaceCounts) (better, decided bool) {
	if at, bt := a.Total(), b.Total(); at != bt {
		return at < bt, true
	}
	for _, t := range priorityOrder {
		if a[t] != b[t] {
			return a[t] < b[t], true
		}
	}
	return false, false
}

// evictionOrder returns the interfaces of one type in the order they are given
// up: most recently created first.
func evictionOrder(entries []*ifaceEntry) []*ifaceEntry {
	out := make([]*ifaceEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
