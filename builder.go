package animfsm

import (
	"errors"
)

// TransitionOption configures a transition declared through the builder
type TransitionOption func(*transitionSpec)

type transitionSpec struct {
	animation      *Animation
	speed          *float64
	trigger        string
	triggers       []string
	triggerOptions map[string]TriggerOptions
	flagConditions map[string]bool
	guard          GuardFunc
	reverse        bool
}

// WithTransitionAnimation sets the animation played while the transition runs.
// It is played once; its loop setting is ignored.
func WithTransitionAnimation(animation *Animation) TransitionOption {
	return func(s *transitionSpec) {
		s.animation = animation
	}
}

// WithTransitionSpeed overrides the transition animation speed
func WithTransitionSpeed(speed float64) TransitionOption {
	return func(s *transitionSpec) {
		s.speed = &speed
	}
}

// WithTrigger makes the transition consume a single trigger
func WithTrigger(name string) TransitionOption {
	return func(s *transitionSpec) {
		s.trigger = name
	}
}

// WithTriggers makes the transition consume any of the named triggers
func WithTriggers(names ...string) TransitionOption {
	return func(s *transitionSpec) {
		s.triggers = append(s.triggers, names...)
	}
}

// WithTriggerOptions declares triggers with per-trigger options
func WithTriggerOptions(triggers map[string]TriggerOptions) TransitionOption {
	return func(s *transitionSpec) {
		if s.triggerOptions == nil {
			s.triggerOptions = make(map[string]TriggerOptions, len(triggers))
		}
		for name, opts := range triggers {
			s.triggerOptions[name] = opts
		}
	}
}

// WithFlagCondition requires flag to hold value
func WithFlagCondition(flag string, value bool) TransitionOption {
	return func(s *transitionSpec) {
		if s.flagConditions == nil {
			s.flagConditions = make(map[string]bool)
		}
		s.flagConditions[flag] = value
	}
}

// WithFlagConditions requires every flag in conditions to hold its value
func WithFlagConditions(conditions map[string]bool) TransitionOption {
	return func(s *transitionSpec) {
		if s.flagConditions == nil {
			s.flagConditions = make(map[string]bool, len(conditions))
		}
		for flag, value := range conditions {
			s.flagConditions[flag] = value
		}
	}
}

// WithGuard adds a guard predicate evaluated on every pass
func WithGuard(guard GuardFunc) TransitionOption {
	return func(s *transitionSpec) {
		s.guard = guard
	}
}

// Reverse also declares the mirror transition with swapped endpoints,
// negated speed override and negated flag conditions
func Reverse() TransitionOption {
	return func(s *transitionSpec) {
		s.reverse = true
	}
}

// Builder accumulates states, flags, triggers and transitions. Errors are
// sticky: every failed declaration is recorded and returned by Err and Build.
type Builder struct {
	states           []*State
	stateIndex       map[string]*State
	transitions      []*Transition
	flags            []string
	flagIndex        map[string]bool
	triggers         []string
	triggerIndex     map[string]bool
	explicitTriggers map[string]bool
	speed            float64
	errs             []error
	built            bool
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		stateIndex:       make(map[string]*State),
		flagIndex:        make(map[string]bool),
		triggerIndex:     make(map[string]bool),
		explicitTriggers: make(map[string]bool),
		speed:            1,
	}
}

func (b *Builder) fail(err error) *Builder {
	b.errs = append(b.errs, err)
	return b
}

func (b *Builder) sealed(operation string) bool {
	if b.built {
		b.fail(NewBuilderSealedError(operation))
		return true
	}
	return false
}

// AddState declares a state
func (b *Builder) AddState(name string, opts ...StateOption) *Builder {
	if b.sealed("AddState") {
		return b
	}
	if name == "" {
		return b.fail(NewInvalidDeclarationError("state", name, "state name cannot be empty"))
	}
	if _, exists := b.stateIndex[name]; exists {
		return b.fail(NewDuplicateDeclarationError("state", name))
	}

	state := &State{Name: name}
	for _, opt := range opts {
		opt(state)
	}
	if state.Starting {
		for _, s := range b.states {
			if s.Starting {
				return b.fail(NewInvalidDeclarationError("state", name,
					"starting state already declared as '"+s.Name+"'"))
			}
		}
	}

	b.states = append(b.states, state)
	b.stateIndex[name] = state
	return b
}

// AddFlag declares a flag, initially false
func (b *Builder) AddFlag(name string) *Builder {
	if b.sealed("AddFlag") {
		return b
	}
	if name == "" {
		return b.fail(NewInvalidDeclarationError("flag", name, "flag name cannot be empty"))
	}
	if b.flagIndex[name] {
		return b.fail(NewDuplicateDeclarationError("flag", name))
	}
	b.flagIndex[name] = true
	b.flags = append(b.flags, name)
	return b
}

// AddTrigger declares a trigger, initially false. Triggers named by a
// transition are declared implicitly and may still be declared here once.
func (b *Builder) AddTrigger(name string) *Builder {
	if b.sealed("AddTrigger") {
		return b
	}
	if name == "" {
		return b.fail(NewInvalidDeclarationError("trigger", name, "trigger name cannot be empty"))
	}
	if b.explicitTriggers[name] {
		return b.fail(NewDuplicateDeclarationError("trigger", name))
	}
	b.explicitTriggers[name] = true
	b.declareTrigger(name)
	return b
}

func (b *Builder) declareTrigger(name string) {
	if b.triggerIndex[name] {
		return
	}
	b.triggerIndex[name] = true
	b.triggers = append(b.triggers, name)
}

// AddTransition declares a transition from a "from->to" key. Several
// transitions may share the same endpoints; the first eligible one in
// declaration order wins.
func (b *Builder) AddTransition(key string, opts ...TransitionOption) *Builder {
	if b.sealed("AddTransition") {
		return b
	}
	b.addTransition(key, false, opts)
	return b
}

// AddStrictTransition is AddTransition that rejects a (from, to) pair that is
// already declared, including the generated reverse
func (b *Builder) AddStrictTransition(key string, opts ...TransitionOption) *Builder {
	if b.sealed("AddStrictTransition") {
		return b
	}
	b.addTransition(key, true, opts)
	return b
}

func (b *Builder) addTransition(key string, strict bool, opts []TransitionOption) {
	from, to, err := ParseTransitionKey(key)
	if err != nil {
		b.fail(err)
		return
	}
	if _, ok := b.stateIndex[from]; !ok {
		b.fail(NewUnknownStateError(from, to, from))
		return
	}
	if _, ok := b.stateIndex[to]; !ok {
		b.fail(NewUnknownStateError(from, to, to))
		return
	}

	spec := &transitionSpec{}
	for _, opt := range opts {
		opt(spec)
	}
	for flag := range spec.flagConditions {
		if !b.flagIndex[flag] {
			b.fail(NewUnknownFlagError(flag))
			return
		}
	}
	if strict && b.hasPair(from, to) {
		b.fail(NewDuplicateTransitionError(from, to))
		return
	}
	if strict && spec.reverse && (from == to || b.hasPair(to, from)) {
		b.fail(NewDuplicateTransitionError(to, from))
		return
	}

	t := NewTransition(from, to)
	t.Animation = spec.animation
	t.Speed = spec.speed
	t.Guard = spec.guard
	t.Triggers = buildTriggers(spec.trigger, spec.triggers, spec.triggerOptions)
	for flag, value := range spec.flagConditions {
		t.FlagConditions[flag] = value
	}
	for _, name := range t.Triggers.Names() {
		b.declareTrigger(name)
	}

	b.transitions = append(b.transitions, t)
	if spec.reverse {
		b.transitions = append(b.transitions, t.reversed())
	}
}

func (b *Builder) hasPair(from, to string) bool {
	for _, t := range b.transitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// SetSpeed sets the initial global speed multiplier
func (b *Builder) SetSpeed(speed float64) *Builder {
	if b.sealed("SetSpeed") {
		return b
	}
	b.speed = speed
	return b
}

// Err returns every declaration error recorded so far, joined
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// Definition returns a snapshot of the declarations
func (b *Builder) Definition() Definition {
	return snapshotDefinition(b.states, b.transitions, b.flags, b.triggers, b.speed)
}

// Build validates the declarations and returns the controller. The builder
// is sealed afterwards.
func (b *Builder) Build(opts ...Option) (*Controller, error) {
	if b.sealed("Build") {
		return nil, b.Err()
	}
	if len(b.states) == 0 {
		b.fail(NewNoStatesError())
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	b.built = true

	cfg := defaultControllerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	states := make([]*State, len(b.states))
	for i, s := range b.states {
		cp := *s
		states[i] = &cp
	}
	transitions := make([]*Transition, len(b.transitions))
	for i, t := range b.transitions {
		transitions[i] = t.clone()
	}

	return newController(states, transitions, b.flags, b.triggers, b.speed, cfg), nil
}
