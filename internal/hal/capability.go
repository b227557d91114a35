package hal

import (
	"fmt"
	"strings"
)

// Bounds on what a chip may advertise. Limits beyond them are rejected by
// Validate so that expanding a mode stays small.
const (
	MaxIfacesPerLimit  = 16
	MaxExpandedPerMode = 4096
)

// IfaceLimit caps the number of interfaces of the listed types. The types share the
// limit's slots: {Types: [p2p nan], MaxIfaces: 1} allows one P2P or one NAN.
type IfaceLimit struct {
	Types     []IfaceType
	MaxIfaces int
}

// IfaceCombination is a set of limits that apply together.
type IfaceCombination struct {
	Limits []IfaceLimit
}

// ChipMode is one operating configuration of a chip. Its combinations are
// alternatives: the live interfaces must fit at least one of them.
type ChipMode struct {
	ID           ModeID
	Combinations []IfaceCombination
}

// IfaceCounts is a per-type interface count, indexed by IfaceType.
type IfaceCounts [NumIfaceTypes]int

// Total returns the number of interfaces across all types.
func (c IfaceCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Covers reports whether c allows at least need of every type.
func (c IfaceCounts) Covers(need IfaceCounts) bool {
	for i := range c {
		if need[i] > c[i] {
			return false
		}
	}
	return true
}

func (c IfaceCounts) String() string {
	parts := make([]string, 0, NumIfaceTypes)
	for _, t := range IfaceTypes {
		if c[t] > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", t, c[t]))
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Validate checks a mode for unknown types and non-positive limits.
func (m ChipMode) Validate() error {
	if len(m.Combinations) == 0 {
		return fmt.Errorf("mode %d: no combinations", m.ID)
	}
	for ci, c := range m.Combinations {
		if len(c.Limits) == 0 {
			return fmt.Errorf("mode %d combination %d: no limits", m.ID, ci)
		}
		for li, l := range c.Limits {
			if l.MaxIfaces <= 0 {
				return fmt.Errorf("mode %d combination %d limit %d: max ifaces must be positive", m.ID, ci, li)
			}
			if l.MaxIfaces > MaxIfacesPerLimit {
				return fmt.Errorf("mode %d combination %d limit %d: max ifaces %d exceeds %d", m.ID, ci, li, l.MaxIfaces, MaxIfacesPerLimit)
			}
			if len(l.Types) == 0 {
				return fmt.Errorf("mode %d combination %d limit %d: no types", m.ID, ci, li)
			}
			for _, t := range l.Types {
				if !t.Valid() {
					return fmt.Errorf("mode %d combination %d limit %d: invalid type %d", m.ID, ci, li, int(t))
				}
			}
		}
	}
	if n := expansionSize(m); n > MaxExpandedPerMode {
		return fmt.Errorf("mode %d: combinations expand to more than %d interface sets", m.ID, MaxExpandedPerMode)
	}
	return nil
}

// expansionSize bounds the number of vectors Expanded builds before dedupe,
// saturating just above MaxExpandedPerMode.
func expansionSize(m ChipMode) int {
	total := 0
	for _, c := range m.Combinations {
		n := 1
		for _, l := range c.Limits {
			n *= splits(len(l.Types), l.MaxIfaces)
			if n > MaxExpandedPerMode {
				return MaxExpandedPerMode + 1
			}
		}
		if total += n; total > MaxExpandedPerMode {
			return MaxExpandedPerMode + 1
		}
	}
	return total
}

// splits is the number of ways n slots can be shared by k types: C(n+k-1, k-1).
func splits(k, n int) int {
	if k <= 1 || n <= 0 {
		return 1
	}
	r := 1
	for i := 1; i < k; i++ {
		r = r * (n + i) / i
		if r > MaxExpandedPerMode {
			return MaxExpandedPerMode + 1
		}
	}
	return r
}

// Supports reports whether some combination of the mode can ever host t.
func (m ChipMode) Supports(t IfaceType) bool {
	for _, c := range m.Combinations {
		for _, l := range c.Limits {
			if l.MaxIfaces <= 0 {
				continue
			}
			for _, lt := range l.Types {
				if lt == t {
					return true
				}
			}
		}
	}
	return false
}

// Expanded returns the concrete per-type maxima of every combination of the mode.
func (m ChipMode) Expanded() []IfaceCounts {
	var out []IfaceCounts
	for _, c := range m.Combinations {
		out = append(out, ExpandCombination(c)...)
	}
	return dedupeCounts(out)
}

// Fits reports whether need is satisfiable by a single combination of the mode.
func (m ChipMode) Fits(need IfaceCounts) bool {
	for _, c := range m.Combinations {
		if c.Admits(need) {
			return true
		}
	}
	return false
}

// Admits reports whether the shared limits of c can host need. Every set of types
// must fit in the slots of the limits that list at least one of them.
func (c IfaceCombination) Admits(need IfaceCounts) bool {
	for set := 1; set < 1<<NumIfaceTypes; set++ {
		demand := 0
		for _, t := range IfaceTypes {
			if set&(1<<t) != 0 {
				demand += need[t]
			}
		}
		if demand == 0 {
			continue
		}
		slots := 0
		for _, l := range c.Limits {
			for _, lt := range l.Types {
				if lt.Valid() && set&(1<<lt) != 0 {
					slots += l.MaxIfaces
					break
				}
			}
		}
		if demand > slots {
			return false
		}
	}
	return true
}

// ExpandCombination enumerates every way the shared limits of c can be split among
// their types. A combination {[sta]:1, [p2p nan]:1} expands to {sta:1 p2p:1} and
// {sta:1 nan:1}.
func ExpandCombination(c IfaceCombination) []IfaceCounts {
	out := []IfaceCounts{{}}
	for _, l := range c.Limits {
		dists := distribute(l.Types, l.MaxIfaces)
		next := make([]IfaceCounts, 0, len(out)*len(dists))
		for _, base := range out {
			for _, d := range dists {
				var sum IfaceCounts
				for i := range sum {
					sum[i] = base[i] + d[i]
				}
				next = append(next, sum)
			}
		}
		out = next
	}
	return dedupeCounts(out)
}

func distribute(types []IfaceType, n int) []IfaceCounts {
	valid := make([]IfaceType, 0, len(types))
	for _, t := range types {
		if t.Valid() {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 || n <= 0 {
		return []IfaceCounts{{}}
	}
	var out []IfaceCounts
	var rec func(i, left int, cur IfaceCounts)
	rec = func(i, left int, cur IfaceCounts) {
		if i == len(valid)-1 {
			cur[valid[i]] += left
			out = append(out, cur)
			return
		}
		for k := 0; k <= left; k++ {
			next := cur
			next[valid[i]] += k
			rec(i+1, left-k, next)
		}
	}
	rec(0, n, IfaceCounts{})
	return out
}

func dedupeCounts(in []IfaceCounts) []IfaceCounts {
	seen := make(map[IfaceCounts]struct{}, len(in))
	out := in[:0]
	for _, c := range in {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
