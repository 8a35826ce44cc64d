package filter

import (
	"fmt"
	"sort"
	"strings"
)

// MissingPathError is returned when errorOnMissingKey is enabled and a filter
// rule references something the response does not contain.
type MissingPathError struct {
	// Filter is the full rule text, e.g. "nested.[].remove"
	Filter string
	// Segment is the token at which resolution failed
	Segment string
	// Reason says what was expected at Segment: "object", "array" or "key"
	Reason string
	// ValidKeys lists the keys present where resolution failed, when that was an object
	ValidKeys []string
}

func (e *MissingPathError) Error() string {
	msg := fmt.Sprintf("invalid filter path %q: failed to find %s at %q", e.Filter, e.Reason, e.Segment)
	if len(e.ValidKeys) > 0 {
		msg += "; valid keys are: " + strings.Join(e.ValidKeys, ", ")
	}
	return msg
}

func newMissingPathError(path Path, segment Segment, reason string, current any) *MissingPathError {
	var keys []string
	if obj, ok := current.(map[string]any); ok {
		keys = make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	return &MissingPathError{
		Filter:    path.String(),
		Segment:   segment.String(),
		Reason:    reason,
		ValidKeys: keys,
	}
}
