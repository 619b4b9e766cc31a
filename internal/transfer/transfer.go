// Package transfer implements the per-request parameter bag from spec.md
// §4.E: a name→value string map populated by the request parser and
// consulted by handlers via RequireName/OptionalName.
//
// Grounded on the teacher's internal/rpc request-context pattern (a
// struct scoped to one request, discarded after the handler returns)
// generalized to the named-field validation spec.md §4.E calls for.
package transfer

import "regexp"

// Validation patterns named in spec.md §4.E.
var (
	PatternUsername = regexp.MustCompile(`^[!-~]*$`)
	PatternEmail    = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*@[A-Za-z0-9][A-Za-z0-9.]*[A-Za-z0-9]$`)
	PatternIDName   = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*$`)
	PatternPosInt   = regexp.MustCompile(`^[0-9][0-9]*$`)
	PatternHex      = regexp.MustCompile(`^[A-Fa-f0-9]*$`)
)

// Map is a single request's name→value bag. The zero value is ready to
// use. Unlike the source's inline/heap split (an allocator optimization
// out of scope per spec.md §1), every value is simply a Go string.
type Map struct {
	values map[string]string
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]string)}
}

// Set records name=value, first-wins on duplicates (spec.md §8 property
// 6): a name already present is left untouched.
func (m *Map) Set(name, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[name]; exists {
		return
	}
	m.values[name] = value
}

// Get returns the raw value for name and whether it was present.
func (m *Map) Get(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Len reports how many distinct names the map holds.
func (m *Map) Len() int { return len(m.values) }

// Clear empties the map. There are no heap-allocated values to release
// separately in Go (spec.md §4.E's "clearing must free heap values" is
// the garbage collector's job here), so Clear is just a reset.
func (m *Map) Clear() {
	m.values = make(map[string]string)
}

// RequireName returns the entry for name, validating it against pattern
// and a minimum length. On failure it returns one of the four reply
// fragments spec.md §4.E and §7 specify: "missing", "short", "REC", or
// "invalid", each followed by a space and name.
func (m *Map) RequireName(name string, minLen int, pattern *regexp.Regexp) (string, error) {
	v, ok := m.values[name]
	if !ok {
		return "", &ValidationError{Kind: "missing", Name: name}
	}
	if len(v) < minLen {
		return "", &ValidationError{Kind: "short", Name: name}
	}
	if pattern == nil {
		return "", &ValidationError{Kind: "REC", Name: name}
	}
	if !pattern.MatchString(v) {
		return "", &ValidationError{Kind: "invalid", Name: name}
	}
	return v, nil
}

// OptionalName returns the entry for name if present (without
// validation) and true, or "" and false if it is absent.
func (m *Map) OptionalName(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// ValidationError is returned by RequireName; its Error() renders the
// exact "failed.<kind> <name>" fragment reply handlers pass through.
type ValidationError struct {
	Kind string
	Name string
}

func (e *ValidationError) Error() string {
	return "failed." + e.Kind + " " + e.Name
}
