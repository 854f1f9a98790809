package animfsm

import "sort"

// TriggerOptions carries per-trigger settings on a transition
type TriggerOptions struct {
	// Interrupt is informational; playback is never cut short by a trigger.
	Interrupt bool `yaml:"interrupt,omitempty"`
}

// TriggerSet maps trigger names to their options on a single transition
type TriggerSet map[string]TriggerOptions

// buildTriggers normalizes the three ways of naming triggers into one set.
// A single trigger wins over the list and the list wins over the options map.
func buildTriggers(single string, list []string, withOptions map[string]TriggerOptions) TriggerSet {
	switch {
	case single != "":
		return TriggerSet{single: {}}
	case len(list) > 0:
		set := make(TriggerSet, len(list))
		for _, name := range list {
			set[name] = TriggerOptions{}
		}
		return set
	case len(withOptions) > 0:
		set := make(TriggerSet, len(withOptions))
		for name, opts := range withOptions {
			set[name] = opts
		}
		return set
	default:
		return TriggerSet{}
	}
}

// Has reports whether the set declares name
func (s TriggerSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the declared trigger names in sorted order
func (s TriggerSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the set
func (s TriggerSet) Clone() TriggerSet {
	out := make(TriggerSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// registry is a closed set of boolean identifiers fixed at build time.
// Names keep declaration order for stable listing.
type registry struct {
	kind   string
	order  []string
	values map[string]bool
}

func newRegistry(kind string, names []string) *registry {
	r := &registry{
		kind:   kind,
		order:  make([]string, 0, len(names)),
		values: make(map[string]bool, len(names)),
	}
	for _, name := range names {
		if _, ok := r.values[name]; ok {
			continue
		}
		r.order = append(r.order, name)
		r.values[name] = false
	}
	return r
}

func (r *registry) has(name string) bool {
	_, ok := r.values[name]
	return ok
}

func (r *registry) get(name string) (bool, error) {
	v, ok := r.values[name]
	if !ok {
		return false, &IdentifierError{Kind: r.kind, Name: name}
	}
	return v, nil
}

func (r *registry) set(name string, value bool) error {
	if !r.has(name) {
		return &IdentifierError{Kind: r.kind, Name: name}
	}
	r.values[name] = value
	return nil
}

func (r *registry) names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *registry) snapshot() map[string]bool {
	out := make(map[string]bool, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
