package animfsm

import (
	"fmt"
	"sort"
	"sync"
)

// ValidationObserver checks observed activity against a definition: every
// entered state and every fired transition must be declared. It also tracks
// which states were visited.
type ValidationObserver struct {
	BaseObserver

	mutex              sync.RWMutex
	expectedStates     map[string]bool
	visitedStates      map[string]bool
	allowedTransitions map[string]map[string]bool
	violations         []string
}

var _ ExtendedObserver = (*ValidationObserver)(nil)

// NewValidationObserver creates a validation observer for def
func NewValidationObserver(def Definition) *ValidationObserver {
	o := &ValidationObserver{
		expectedStates:     make(map[string]bool, len(def.States)),
		visitedStates:      make(map[string]bool),
		allowedTransitions: make(map[string]map[string]bool),
	}
	for _, s := range def.States {
		o.expectedStates[s.Name] = true
	}
	for _, t := range def.Transitions {
		from, to, err := ParseTransitionKey(t.Key)
		if err != nil {
			continue
		}
		o.allow(from, to)
	}
	return o
}

func (o *ValidationObserver) allow(from, to string) {
	if _, exists := o.allowedTransitions[from]; !exists {
		o.allowedTransitions[from] = make(map[string]bool)
	}
	o.allowedTransitions[from][to] = true
}

// OnStateEnter records the visit and flags undeclared states
func (o *ValidationObserver) OnStateEnter(state string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates[state] = true
	if !o.expectedStates[state] {
		o.violations = append(o.violations, fmt.Sprintf("entered undeclared state '%s'", state))
	}
}

// OnTransition flags transitions that were never declared
func (o *ValidationObserver) OnTransition(from string, to string, _ *Transition) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.allowedTransitions[from][to] {
		o.violations = append(o.violations, fmt.Sprintf("undeclared transition '%s' -> '%s'", from, to))
	}
}

// OnError records errors as violations
func (o *ValidationObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf("error occurred: %v", err))
}

// Violations returns all recorded violations
func (o *ValidationObserver) Violations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// UnvisitedStates returns declared states that were never entered, sorted
func (o *ValidationObserver) UnvisitedStates() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var unvisited []string
	for state := range o.expectedStates {
		if !o.visitedStates[state] {
			unvisited = append(unvisited, state)
		}
	}
	sort.Strings(unvisited)
	return unvisited
}

// HasViolations reports whether any violation was recorded
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset clears visits and violations
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates = make(map[string]bool)
	o.violations = nil
}
