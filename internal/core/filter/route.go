package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// paramPattern finds named parameters in a route template, e.g. "/:id", "/:id?", ":rest*"
var paramPattern = regexp.MustCompile(`(/?):([A-Za-z0-9_]+)([?*+]?)`)

// paramValue matches a single path component
const paramValue = `[^/#?]+?`

// Route is a compiled path template such as "/users/:id"
type Route struct {
	Pattern string
	names   []string
	re      *regexp.Regexp
}

// CompileRoute turns a path template into an anchored, case-insensitive matcher.
// A single trailing "/", "#" or "?" on the matched path is tolerated.
func CompileRoute(pattern string) (*Route, error) {
	template := strings.TrimRight(pattern, "/")

	var expr strings.Builder
	expr.WriteString("(?i)^")

	names := make([]string, 0)
	last := 0
	literal := func(s string) error {
		if strings.Contains(s, ":") {
			return fmt.Errorf("invalid route pattern %q: missing parameter name after ':'", pattern)
		}
		expr.WriteString(regexp.QuoteMeta(s))
		return nil
	}

	for _, loc := range paramPattern.FindAllStringSubmatchIndex(template, -1) {
		if err := literal(template[last:loc[0]]); err != nil {
			return nil, err
		}

		prefix := regexp.QuoteMeta(template[loc[2]:loc[3]])
		name := template[loc[4]:loc[5]]
		modifier := template[loc[6]:loc[7]]
		names = append(names, name)

		switch modifier {
		case "?":
			fmt.Fprintf(&expr, "(?:%s(%s))?", prefix, paramValue)
		case "+", "*":
			fmt.Fprintf(&expr, "(?:%s(%s(?:%s%s)*))", prefix, paramValue, prefix, paramValue)
			if modifier == "*" {
				expr.WriteString("?")
			}
		default:
			fmt.Fprintf(&expr, "%s(%s)", prefix, paramValue)
		}

		last = loc[1]
	}
	if err := literal(template[last:]); err != nil {
		return nil, err
	}
	expr.WriteString("[/#?]?$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("invalid route pattern %q: %w", pattern, err)
	}

	return &Route{Pattern: pattern, names: names, re: re}, nil
}

// Match reports whether path satisfies the route and returns the captured parameters
func (r *Route) Match(path string) (map[string]string, bool) {
	groups := r.re.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}

	params := make(map[string]string, len(r.names))
	for i, name := range r.names {
		if groups[i+1] != "" {
			params[name] = groups[i+1]
		}
	}
	return params, true
}
