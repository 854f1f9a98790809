package animfsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationObserver_CleanRun(t *testing.T) {
	b := NewBuilder().
		AddState("idle").
		AddState("walk").
		AddState("jump").
		AddFlag("isMoving").
		AddTransition("idle->walk", WithFlagCondition("isMoving", true), Reverse())

	validator := NewValidationObserver(b.Definition())
	controller, err := b.Build(WithObserver(validator))
	require.NoError(t, err)

	require.NoError(t, controller.Start())
	require.NoError(t, controller.SetFlag("isMoving", true))
	require.NoError(t, controller.SetFlag("isMoving", false))

	assert.False(t, validator.HasViolations(), "violations: %v", validator.Violations())
	assert.Equal(t, []string{"jump"}, validator.UnvisitedStates())

	validator.Reset()
	assert.Equal(t, []string{"idle", "jump", "walk"}, validator.UnvisitedStates())
}

func TestValidationObserver_Violations(t *testing.T) {
	validator := NewValidationObserver(Definition{
		States:      []StateDefinition{{Name: "idle"}, {Name: "walk"}},
		Transitions: []TransitionDefinition{{Key: "idle->walk"}},
	})

	validator.OnTransition("walk", "idle", nil)
	validator.OnStateEnter("ghost")
	validator.OnError(NewUnknownFlagError("isMoving"))

	violations := validator.Violations()
	require.Len(t, violations, 3)
	assert.Contains(t, violations[0], "walk")
	assert.Contains(t, violations[1], "ghost")
	assert.Contains(t, violations[2], "isMoving")
}
