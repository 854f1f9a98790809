// Package animfsm provides a reactive animation state machine for Go.
//
// A Controller owns a set of named states, each optionally bound to an
// animation, and a list of transitions between them. Transitions are driven
// by boolean flags, which hold their value until changed, and triggers, which
// are one-shot pulses reset when a transition consumes them. Every flag or
// trigger change re-evaluates the outgoing transitions of the current state.
// While an animation plays, evaluation is deferred until it completes, or
// until the end of the current iteration for a looping state animation.
//
// Controllers are declared with a Builder:
//
//	controller, err := animfsm.NewBuilder().
//		AddState("idle", animfsm.WithAnimation(idle)).
//		AddState("walk", animfsm.WithAnimation(walk)).
//		AddFlag("isMoving").
//		AddTransition("idle->walk",
//			animfsm.WithFlagCondition("isMoving", true),
//			animfsm.Reverse(),
//		).
//		Build()
//
// or loaded from YAML with LoadDefinition and resolved against a Library of
// named animations and guards.
package animfsm
