package semantic

import (
	"fmt"
	"hash/fnv"
)

// KeyInputs carries the candidate identity sources for StableKey computation,
// tried in order: DOM id, DOM name, a role/name/type/ordinal tuple, then a
// structural path from the nearest stable ancestor.
type KeyInputs struct {
	ID             string
	HasID          bool
	DomName        string
	HasDomName     bool
	Role           AriaRole
	AccessibleName string
	InputType      string
	Ordinal        int // position among same-role siblings under the same parent
	StructuralPath string
}

// ComputeRawKey builds the StableKey's string form from the first defined input.
func ComputeRawKey(in KeyInputs) StableKey {
	if in.HasID && in.ID != "" {
		return StableKey("id:" + in.ID)
	}
	if in.HasDomName && in.DomName != "" {
		return StableKey("name:" + in.DomName)
	}
	shape := fmt.Sprintf("shape:%s|%s|%s|%d", in.Role, in.AccessibleName, in.InputType, in.Ordinal)
	if in.StructuralPath != "" {
		return StableKey(shape + "|" + in.StructuralPath)
	}
	return StableKey(shape)
}

// Disambiguate appends a document-order index to a key involved in a
// collision, preserving first-occurrence priority for the un-suffixed key.
func Disambiguate(key StableKey, occurrence int) StableKey {
	if occurrence == 0 {
		return key
	}
	return StableKey(fmt.Sprintf("%s#%d", key, occurrence))
}

// HashKey reduces a StableKey to a deterministic 32-bit value via FNV-1a.
func HashKey(key StableKey) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

// RefCandidate computes the candidate ref id for a StableKey: hash mod 1,000,000.
func RefCandidate(key StableKey) uint32 {
	return HashKey(key) % 1_000_000
}
