package animfsm

import "sort"

// Library stores animations and guards by name so declarative definitions
// can refer to them
type Library struct {
	animations map[string]*Animation
	guards     map[string]GuardFunc
}

// NewLibrary creates an empty library
func NewLibrary() *Library {
	return &Library{
		animations: make(map[string]*Animation),
		guards:     make(map[string]GuardFunc),
	}
}

// RegisterAnimation adds an animation under its own name, replacing any
// previous entry
func (l *Library) RegisterAnimation(animation *Animation) *Library {
	if animation == nil || animation.Name() == "" {
		return l
	}
	l.animations[animation.Name()] = animation
	return l
}

// RegisterGuard adds a named guard predicate
func (l *Library) RegisterGuard(name string, guard GuardFunc) *Library {
	if name == "" || guard == nil {
		return l
	}
	l.guards[name] = guard
	return l
}

// Animation returns an animation by name
func (l *Library) Animation(name string) (*Animation, bool) {
	if l == nil || name == "" {
		return nil, false
	}
	a, ok := l.animations[name]
	return a, ok
}

// Guard returns a guard by name
func (l *Library) Guard(name string) (GuardFunc, bool) {
	if l == nil || name == "" {
		return nil, false
	}
	g, ok := l.guards[name]
	return g, ok
}

// AnimationNames returns the registered animation names, sorted
func (l *Library) AnimationNames() []string {
	names := make([]string, 0, len(l.animations))
	for name := range l.animations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
