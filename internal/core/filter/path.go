package filter

import "strings"

// SegmentKind tells the traversal how to treat a path segment
type SegmentKind int

const (
	// SegmentKey descends into (or deletes) a named object property
	SegmentKey SegmentKind = iota
	// SegmentEach applies the rest of the path to every element of an array
	SegmentEach
	// SegmentRemoveValues drops array elements whose string form is listed in Values
	SegmentRemoveValues
)

// eachToken is the rule token that walks every element of an array
const eachToken = "[]"

// Segment is one dot-separated token of a filter rule
type Segment struct {
	Kind   SegmentKind
	Name   string
	Values []string
}

func (s Segment) String() string {
	switch s.Kind {
	case SegmentEach:
		return eachToken
	case SegmentRemoveValues:
		return s.Name + "[" + strings.Join(s.Values, ",") + "]"
	default:
		return s.Name
	}
}

// Path is a parsed filter rule such as "details.[].nested[julian,james]"
type Path struct {
	raw      string
	Segments []Segment
}

// String returns the rule text the path was parsed from
func (p Path) String() string {
	return p.raw
}

// ParsePath parses a filter rule. It never fails: malformed bracket syntax is
// accepted and any problem only shows up when the path is applied.
func ParsePath(rule string) Path {
	tokens := strings.Split(rule, ".")
	segments := make([]Segment, 0, len(tokens))

	for i, token := range tokens {
		last := i == len(tokens)-1

		if token == eachToken {
			segments = append(segments, Segment{Kind: SegmentEach})
			continue
		}

		open := strings.Index(token, "[")
		if open < 0 {
			segments = append(segments, Segment{Kind: SegmentKey, Name: token})
			continue
		}

		// A bracket suffix on an inner token is ignored; only the key is walked.
		if !last {
			segments = append(segments, Segment{Kind: SegmentKey, Name: token[:open]})
			continue
		}

		inner := ""
		if len(token)-1 > open {
			inner = token[open+1 : len(token)-1]
		}
		segments = append(segments, Segment{
			Kind:   SegmentRemoveValues,
			Name:   token[:open],
			Values: strings.Split(inner, ","),
		})
	}

	return Path{raw: rule, Segments: segments}
}
