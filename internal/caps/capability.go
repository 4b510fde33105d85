// Package caps adapts a prior capability/constraint string-set
// model (internal/capabilities/capability.go) from a write-permission
// gate into bookkeeping shown in EXPLAIN output: riverql has no write path to
// gate, so there's nothing for a capability to *permit*. What survives
// is the pattern itself — a small closed vocabulary of named
// properties a registered table either has or doesn't, computed once
// from its registry.Entry metadata and surfaced in EXPLAIN output so a
// caller can see why a join strategy was or wasn't eligible.
package caps

import "github.com/riverql/riverql/internal/registry"

// Capability names a property of a registered table relevant to join
// strategy selection.
type Capability string

const (
	// Ordered means the table declared ordered_by and can participate
	// in SORT_MERGE on that column.
	Ordered Capability = "ORDERED"
	// Mmap means the table declared a Filename and can be read through
	// the MMAP join backend instead of falling back to LOOKUP.
	Mmap Capability = "MMAP"
	// Columnar is universal: every registered table's rows can be
	// materialized into an Arrow batch, so every table has it.
	Columnar Capability = "COLUMNAR"
)

// Set is an unordered collection of capabilities, mirroring the
// a prior CapabilitySet.
type Set map[Capability]struct{}

// Has reports whether c is present in the set.
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Slice returns the set's members in no particular order.
func (s Set) Slice() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	return out
}

// Of derives entry's capability set from the metadata Register()
// attached to it.
func Of(entry *registry.Entry) Set {
	set := Set{Columnar: struct{}{}}
	if entry.OrderedBy != "" {
		set[Ordered] = struct{}{}
	}
	if entry.Filename != "" {
		set[Mmap] = struct{}{}
	}
	return set
}
