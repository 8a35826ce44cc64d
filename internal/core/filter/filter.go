package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// jsonAPI keeps numbers as json.Number so redaction never changes numeric precision
var jsonAPI = sonic.Config{UseNumber: true, SortMapKeys: true}.Froze()

// Option configures a ResponseFilter
type Option func(*ResponseFilter)

// WithErrorOnMissingKey makes any unresolvable rule fail the whole FilterResult call
func WithErrorOnMissingKey(enabled bool) Option {
	return func(f *ResponseFilter) {
		f.errorOnMissingKey = enabled
	}
}

type rule struct {
	pattern string
	route   *Route
	paths   []Path
}

// ResponseFilter removes configured fields from JSON response values.
// Rules are registered once and then only read, so FilterResult may be called
// concurrently as long as each call gets its own value.
type ResponseFilter struct {
	errorOnMissingKey bool
	filters           map[string][]rule // method -> rules in registration order
}

// NewResponseFilter creates an empty filter
func NewResponseFilter(opts ...Option) *ResponseFilter {
	f := &ResponseFilter{
		filters: make(map[string][]rule),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AddFilter registers filter rules for a method and route pattern. When several
// patterns match a request, the one registered first wins.
func (f *ResponseFilter) AddFilter(method, pattern string, filterPaths []string) error {
	route, err := CompileRoute(pattern)
	if err != nil {
		return err
	}

	paths := make([]Path, 0, len(filterPaths))
	for _, p := range filterPaths {
		paths = append(paths, ParsePath(p))
	}

	key := normalizeMethod(method)
	f.filters[key] = append(f.filters[key], rule{
		pattern: pattern,
		route:   route,
		paths:   paths,
	})
	return nil
}

// Matches reports whether any rule applies to the request
func (f *ResponseFilter) Matches(method, path string) bool {
	return f.match(method, path) != nil
}

// Lookup returns the pattern of the rule that applies to the request and the
// route parameters it captured
func (f *ResponseFilter) Lookup(method, path string) (string, map[string]string, bool) {
	rules := f.filters[normalizeMethod(method)]
	for i := range rules {
		if params, ok := rules[i].route.Match(path); ok {
			return rules[i].pattern, params, true
		}
	}
	return "", nil, false
}

func (f *ResponseFilter) match(method, path string) *rule {
	rules := f.filters[normalizeMethod(method)]
	for i := range rules {
		if _, ok := rules[i].route.Match(path); ok {
			return &rules[i]
		}
	}
	return nil
}

// FilterResult applies the first matching rule's paths to value, in order, and
// returns value. Objects and arrays inside value are modified in place.
func (f *ResponseFilter) FilterResult(method, path string, value any) (any, error) {
	r := f.match(method, path)
	if r == nil {
		return value, nil
	}

	for _, p := range r.paths {
		if len(p.Segments) == 0 {
			continue
		}
		if err := f.apply(p, p.Segments, value); err != nil {
			return value, err
		}
	}
	return value, nil
}

// FilterJSON decodes body, filters it and encodes it again. A body with no
// matching rule is returned untouched.
func (f *ResponseFilter) FilterJSON(method, path string, body []byte) ([]byte, error) {
	if !f.Matches(method, path) {
		return body, nil
	}

	var value any
	if err := jsonAPI.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	filtered, err := f.FilterResult(method, path, value)
	if err != nil {
		return nil, err
	}

	out, err := jsonAPI.Marshal(filtered)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response body: %w", err)
	}
	return out, nil
}

// apply walks the remaining segments from current and performs the removal at the end
func (f *ResponseFilter) apply(path Path, segments []Segment, current any) error {
	seg := segments[0]
	if len(segments) == 1 {
		return f.remove(path, seg, current)
	}

	switch seg.Kind {
	case SegmentEach:
		items, ok := current.([]any)
		if !ok {
			return f.missing(path, seg, "array", current)
		}
		for _, item := range items {
			if err := f.apply(path, segments[1:], item); err != nil {
				return err
			}
		}
		return nil
	default:
		obj, ok := current.(map[string]any)
		if !ok {
			return f.missing(path, seg, "object", current)
		}
		next, ok := obj[seg.Name]
		if !ok {
			return f.missing(path, seg, "object", current)
		}
		return f.apply(path, segments[1:], next)
	}
}

func (f *ResponseFilter) remove(path Path, seg Segment, current any) error {
	obj, ok := current.(map[string]any)

	switch seg.Kind {
	case SegmentKey:
		if !ok {
			return f.missing(path, seg, "key", current)
		}
		if _, found := obj[seg.Name]; !found {
			return f.missing(path, seg, "key", current)
		}
		delete(obj, seg.Name)
		return nil
	case SegmentRemoveValues:
		if !ok {
			return f.missing(path, seg, "array", current)
		}
		items, isArray := obj[seg.Name].([]any)
		if !isArray {
			return f.missing(path, seg, "array", current)
		}
		obj[seg.Name] = withoutValues(items, seg.Values)
		return nil
	default:
		// "[]" as the last token names nothing that could be removed
		return f.missing(path, seg, "key", current)
	}
}

func (f *ResponseFilter) missing(path Path, seg Segment, reason string, current any) error {
	if !f.errorOnMissingKey {
		return nil
	}
	return newMissingPathError(path, seg, reason, current)
}

// withoutValues returns the elements of items whose string form is not listed in values
func withoutValues(items []any, values []string) []any {
	drop := make(map[string]struct{}, len(values))
	for _, v := range values {
		drop[v] = struct{}{}
	}

	kept := make([]any, 0, len(items))
	for _, item := range items {
		if _, found := drop[stringForm(item)]; found {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func stringForm(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		// json.Number
		return t.String()
	default:
		out, err := jsonAPI.MarshalToString(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return out
	}
}

func normalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}
