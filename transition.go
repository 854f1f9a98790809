package animfsm

import (
	"sort"
	"strings"
)

const transitionSeparator = "->"

// GuardFunc is a zero-argument predicate that must hold for a transition to fire
type GuardFunc func() bool

// Transition is a directed edge between two declared states
type Transition struct {
	From           string
	To             string
	Animation      *Animation
	Speed          *float64
	Triggers       TriggerSet
	FlagConditions map[string]bool
	Guard          GuardFunc
}

// NewTransition creates a new transition
func NewTransition(from, to string) *Transition {
	return &Transition{
		From:           from,
		To:             to,
		Triggers:       TriggerSet{},
		FlagConditions: map[string]bool{},
	}
}

// WithGuard adds a guard condition to the transition
func (t *Transition) WithGuard(guard GuardFunc) *Transition {
	t.Guard = guard
	return t
}

// WithAnimation sets the animation played while the transition runs
func (t *Transition) WithAnimation(animation *Animation) *Transition {
	t.Animation = animation
	return t
}

// Key returns the compact "from->to" form
func (t *Transition) Key() string {
	return transitionKey(t.From, t.To)
}

// HasTriggers reports whether the transition consumes any trigger
func (t *Transition) HasTriggers() bool {
	return len(t.Triggers) > 0
}

// FlagNames returns the flags referenced by the transition in sorted order
func (t *Transition) FlagNames() []string {
	names := make([]string, 0, len(t.FlagConditions))
	for name := range t.FlagConditions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// guardPasses evaluates the optional guard
func (t *Transition) guardPasses() bool {
	return t.Guard == nil || t.Guard()
}

// flagsSatisfied reports whether every flag condition matches flags.
// A transition without conditions is always satisfied.
func (t *Transition) flagsSatisfied(flags map[string]bool) bool {
	for name, want := range t.FlagConditions {
		if flags[name] != want {
			return false
		}
	}
	return true
}

// triggered reports whether at least one declared trigger is pulsed
func (t *Transition) triggered(triggers map[string]bool) bool {
	for name := range t.Triggers {
		if triggers[name] {
			return true
		}
	}
	return false
}

// reversed builds the mirror transition: swapped endpoints, negated speed and
// flag conditions. Triggers and guard are never carried over.
func (t *Transition) reversed() *Transition {
	r := NewTransition(t.To, t.From)
	r.Animation = t.Animation
	if t.Speed != nil {
		speed := -*t.Speed
		r.Speed = &speed
	}
	for name, want := range t.FlagConditions {
		r.FlagConditions[name] = !want
	}
	return r
}

func (t *Transition) clone() *Transition {
	c := *t
	c.Triggers = t.Triggers.Clone()
	c.FlagConditions = make(map[string]bool, len(t.FlagConditions))
	for k, v := range t.FlagConditions {
		c.FlagConditions[k] = v
	}
	if t.Speed != nil {
		speed := *t.Speed
		c.Speed = &speed
	}
	return &c
}

func transitionKey(from, to string) string {
	return from + transitionSeparator + to
}

// ParseTransitionKey splits "from->to" into its endpoints
func ParseTransitionKey(key string) (from, to string, err error) {
	parts := strings.Split(key, transitionSeparator)
	if len(parts) != 2 {
		return "", "", NewInvalidTransitionKeyError(key)
	}
	from, to = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if from == "" || to == "" {
		return "", "", NewInvalidTransitionKeyError(key)
	}
	return from, to, nil
}
