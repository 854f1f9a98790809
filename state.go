package animfsm

// State is a named node of the controller, optionally bound to the animation
// played while it is active
type State struct {
	Name      string
	Animation *Animation
	Starting  bool
}

// StateOption configures a state declared through the builder
type StateOption func(*State)

// WithAnimation binds the animation played while the state is active
func WithAnimation(animation *Animation) StateOption {
	return func(s *State) {
		s.Animation = animation
	}
}

// AsStartingState marks the state as the one the controller starts in
func AsStartingState() StateOption {
	return func(s *State) {
		s.Starting = true
	}
}

// HasAnimation reports whether the state plays anything while active
func (s *State) HasAnimation() bool {
	return s.Animation != nil
}
