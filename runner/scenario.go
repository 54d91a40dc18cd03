package runner

import (
	"fmt"
	"sort"
	"strings"
)

// Scenario is one scripted user journey.
type Scenario struct {
	Name      string
	Group     string
	NeedsAuth bool
	Run       func(t T, env *Env)
}

// ID is the group-qualified name, e.g. "search/by postcode".
func (s Scenario) ID() string {
	if s.Group == "" {
		return s.Name
	}
	return s.Group + "/" + s.Name
}

// Filter narrows a run to one group and/or names containing Grep.
type Filter struct {
	Group string
	Grep  string
}

// Match compares case-insensitively. Grep is a plain substring of the
// scenario ID.
func (f Filter) Match(s Scenario) bool {
	if f.Group != "" && !strings.EqualFold(f.Group, s.Group) {
		return false
	}
	if f.Grep != "" && !strings.Contains(strings.ToLower(s.ID()), strings.ToLower(f.Grep)) {
		return false
	}
	return true
}

func (f Filter) String() string {
	var parts []string
	if f.Group != "" {
		parts = append(parts, "group="+f.Group)
	}
	if f.Grep != "" {
		parts = append(parts, "grep="+f.Grep)
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}

// Registry keeps scenarios in registration order.
type Registry struct {
	scenarios []Scenario
	ids       map[string]bool
}

func NewRegistry(scenarios ...Scenario) (*Registry, error) {
	r := &Registry{ids: make(map[string]bool)}
	for _, s := range scenarios {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Add(s Scenario) error {
	if s.Name == "" || s.Run == nil {
		return fmt.Errorf("scenario %q: name and body are required", s.ID())
	}
	if r.ids[s.ID()] {
		return fmt.Errorf("scenario %q registered twice", s.ID())
	}
	r.ids[s.ID()] = true
	r.scenarios = append(r.scenarios, s)
	return nil
}

func (r *Registry) All() []Scenario {
	out := make([]Scenario, len(r.scenarios))
	copy(out, r.scenarios)
	return out
}

func (r *Registry) Select(f Filter) []Scenario {
	var out []Scenario
	for _, s := range r.scenarios {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Groups returns the distinct group names, sorted.
func (r *Registry) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, s := range r.scenarios {
		if !seen[s.Group] {
			seen[s.Group] = true
			groups = append(groups, s.Group)
		}
	}
	sort.Strings(groups)
	return groups
}
