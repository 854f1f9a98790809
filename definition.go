package animfsm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the declarative form of a controller, loadable from YAML
type Definition struct {
	Speed       *float64               `yaml:"speed,omitempty"`
	Flags       []string               `yaml:"flags,omitempty"`
	Triggers    []string               `yaml:"triggers,omitempty"`
	States      []StateDefinition      `yaml:"states"`
	Transitions []TransitionDefinition `yaml:"transitions,omitempty"`
}

// StateDefinition declares one state
type StateDefinition struct {
	Name      string `yaml:"name"`
	Animation string `yaml:"animation,omitempty"`
	Starting  bool   `yaml:"starting,omitempty"`
}

// TransitionDefinition declares one transition. Key is "from->to".
type TransitionDefinition struct {
	Key            string                    `yaml:"key"`
	Animation      string                    `yaml:"animation,omitempty"`
	Speed          *float64                  `yaml:"speed,omitempty"`
	Trigger        string                    `yaml:"trigger,omitempty"`
	Triggers       []string                  `yaml:"triggers,omitempty"`
	TriggerOptions map[string]TriggerOptions `yaml:"trigger_options,omitempty"`
	FlagConditions map[string]bool           `yaml:"flags,omitempty"`
	Guard          string                    `yaml:"guard,omitempty"`
	Reverse        bool                      `yaml:"reverse,omitempty"`
	Strict         bool                      `yaml:"strict,omitempty"`

	// HasGuard is set for snapshots of builder transitions carrying an
	// unnamed guard
	HasGuard bool `yaml:"-"`
}

// Guarded reports whether the transition carries a guard
func (t TransitionDefinition) Guarded() bool {
	return t.HasGuard || t.Guard != ""
}

// TriggerNames returns every trigger the transition consumes
func (t TransitionDefinition) TriggerNames() []string {
	return buildTriggers(t.Trigger, t.Triggers, t.TriggerOptions).Names()
}

// ParseDefinition decodes a YAML definition. Unknown fields are rejected.
func ParseDefinition(data []byte) (Definition, error) {
	return DecodeDefinition(bytes.NewReader(data))
}

// DecodeDefinition decodes a YAML definition from r
func DecodeDefinition(r io.Reader) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return Definition{}, NewNoStatesError()
		}
		return Definition{}, fmt.Errorf("decode definition: %w", err)
	}
	return def, nil
}

// LoadDefinition reads and decodes a YAML definition file
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read %s: %w", path, err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Marshal encodes the definition as YAML
func (d Definition) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Builder replays the definition into a fresh builder. Animation and guard
// names are resolved against lib. With a nil lib every animation becomes a
// no-op placeholder and every guard passes, which is enough to validate or
// visualize a definition.
func (d Definition) Builder(lib *Library) *Builder {
	b := NewBuilder()
	if d.Speed != nil {
		b.SetSpeed(*d.Speed)
	}
	for _, name := range d.Flags {
		b.AddFlag(name)
	}
	for _, name := range d.Triggers {
		b.AddTrigger(name)
	}

	for _, s := range d.States {
		var opts []StateOption
		if s.Animation != "" {
			anim, err := resolveAnimation(lib, s.Animation)
			if err != nil {
				b.fail(err)
				continue
			}
			opts = append(opts, WithAnimation(anim))
		}
		if s.Starting {
			opts = append(opts, AsStartingState())
		}
		b.AddState(s.Name, opts...)
	}

	for _, t := range d.Transitions {
		var opts []TransitionOption
		if t.Animation != "" {
			anim, err := resolveAnimation(lib, t.Animation)
			if err != nil {
				b.fail(err)
				continue
			}
			opts = append(opts, WithTransitionAnimation(anim))
		}
		if t.Speed != nil {
			opts = append(opts, WithTransitionSpeed(*t.Speed))
		}
		if t.Trigger != "" {
			opts = append(opts, WithTrigger(t.Trigger))
		}
		if len(t.Triggers) > 0 {
			opts = append(opts, WithTriggers(t.Triggers...))
		}
		if len(t.TriggerOptions) > 0 {
			opts = append(opts, WithTriggerOptions(t.TriggerOptions))
		}
		if len(t.FlagConditions) > 0 {
			opts = append(opts, WithFlagConditions(t.FlagConditions))
		}
		if t.Guard != "" {
			guard, err := resolveGuard(lib, t.Guard)
			if err != nil {
				b.fail(err)
				continue
			}
			opts = append(opts, WithGuard(guard))
		}
		if t.Reverse {
			opts = append(opts, Reverse())
		}
		if t.Strict {
			b.AddStrictTransition(t.Key, opts...)
		} else {
			b.AddTransition(t.Key, opts...)
		}
	}
	return b
}

// Build is shorthand for d.Builder(lib).Build(opts...)
func (d Definition) Build(lib *Library, opts ...Option) (*Controller, error) {
	return d.Builder(lib).Build(opts...)
}

func resolveAnimation(lib *Library, name string) (*Animation, error) {
	if lib == nil {
		return NewAnimation(name, nil), nil
	}
	anim, ok := lib.Animation(name)
	if !ok {
		return nil, NewInvalidDeclarationError("animation", name, "animation not registered in library")
	}
	return anim, nil
}

func resolveGuard(lib *Library, name string) (GuardFunc, error) {
	if lib == nil {
		return func() bool { return true }, nil
	}
	guard, ok := lib.Guard(name)
	if !ok {
		return nil, NewInvalidDeclarationError("guard", name, "guard not registered in library")
	}
	return guard, nil
}

func snapshotDefinition(states []*State, transitions []*Transition, flags, triggers []string, speed float64) Definition {
	def := Definition{
		Speed:    &speed,
		Flags:    append([]string(nil), flags...),
		Triggers: append([]string(nil), triggers...),
	}
	for _, s := range states {
		sd := StateDefinition{Name: s.Name, Starting: s.Starting}
		if s.Animation != nil {
			sd.Animation = s.Animation.Name()
		}
		def.States = append(def.States, sd)
	}
	for _, t := range transitions {
		def.Transitions = append(def.Transitions, definitionOf(t))
	}
	return def
}

func definitionOf(t *Transition) TransitionDefinition {
	td := TransitionDefinition{
		Key:      t.Key(),
		HasGuard: t.Guard != nil,
	}
	if t.Animation != nil {
		td.Animation = t.Animation.Name()
	}
	if t.Speed != nil {
		speed := *t.Speed
		td.Speed = &speed
	}
	if len(t.Triggers) > 0 {
		td.TriggerOptions = map[string]TriggerOptions(t.Triggers.Clone())
	}
	if len(t.FlagConditions) > 0 {
		td.FlagConditions = make(map[string]bool, len(t.FlagConditions))
		for k, v := range t.FlagConditions {
			td.FlagConditions[k] = v
		}
	}
	return td
}
