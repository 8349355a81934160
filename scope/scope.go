// Package scope defines authorization scopes and the registry used to
// compare required scopes against the scopes granted to an identity.
package scope

import (
	"sort"
	"strings"
)

// Scope is an opaque permission token, e.g. "read:orders".
type Scope string

// Set is an unordered collection of scopes with set semantics.
type Set map[Scope]struct{}

// NewSet builds a Set from the given scopes.
func NewSet(scopes ...Scope) Set {
	s := make(Set, len(scopes))
	for _, sc := range scopes {
		s[sc] = struct{}{}
	}
	return s
}

// ParseSet parses a space-delimited scope string, as found in the
// OAuth 2.0 "scope" claim (RFC 8693), into a Set.
func ParseSet(raw string) Set {
	fields := strings.Fields(raw)
	s := make(Set, len(fields))
	for _, f := range fields {
		s[Scope(f)] = struct{}{}
	}
	return s
}

// Contains reports whether sc is a member of the set.
func (s Set) Contains(sc Scope) bool {
	_, ok := s[sc]
	return ok
}

// Add inserts sc into the set.
func (s Set) Add(sc Scope) {
	s[sc] = struct{}{}
}

// Slice returns the members of the set in lexical order.
func (s Set) Slice() []Scope {
	out := make([]Scope, 0, len(s))
	for sc := range s {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String returns the set as a space-delimited string in lexical order.
func (s Set) String() string {
	scopes := s.Slice()
	parts := make([]string, len(scopes))
	for i, sc := range scopes {
		parts[i] = string(sc)
	}
	return strings.Join(parts, " ")
}

// Registry holds the set of scopes known to the deployment. Endpoints may
// only require registered scopes; unknown scopes inside presented tokens
// are dropped rather than rejected, since tokens may be issued by an
// evolving authority.
type Registry struct {
	known Set
}

// NewRegistry builds a Registry from the given scopes.
func NewRegistry(scopes ...Scope) *Registry {
	return &Registry{known: NewSet(scopes...)}
}

// Validate reports whether sc is a registered scope. Requiring an
// unregistered scope is a configuration error and should be surfaced at
// startup, not at request time.
func (r *Registry) Validate(sc Scope) bool {
	return r.known.Contains(sc)
}

// IsSatisfied reports whether every required scope is present in the
// granted set. An empty required set is always satisfied.
func (r *Registry) IsSatisfied(required, granted Set) bool {
	for sc := range required {
		if !granted.Contains(sc) {
			return false
		}
	}
	return true
}

// Missing returns the required scopes absent from granted, in lexical
// order. Used to produce actionable insufficient-scope details.
func (r *Registry) Missing(required, granted Set) []Scope {
	var out []Scope
	for _, sc := range required.Slice() {
		if !granted.Contains(sc) {
			out = append(out, sc)
		}
	}
	return out
}

// Filter returns the subset of granted that is registered. The input set
// is not modified.
func (r *Registry) Filter(granted Set) Set {
	out := make(Set, len(granted))
	for sc := range granted {
		if r.known.Contains(sc) {
			out[sc] = struct{}{}
		}
	}
	return out
}
