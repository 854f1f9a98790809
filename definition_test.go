package animfsm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buttonYAML = `
speed: 1
flags: [isHovered]
triggers: [press]
states:
  - name: normal
    animation: normal
    starting: true
  - name: hovered
    animation: glow
transitions:
  - key: normal->hovered
    animation: fade-in
    speed: 2
    flags: {isHovered: true}
    reverse: true
  - key: hovered->hovered
    trigger: press
    animation: click
    guard: enabled
`

func buttonLibrary(enabled *bool) *Library {
	return NewLibrary().
		RegisterAnimation(NewAnimation("normal", nil)).
		RegisterAnimation(NewAnimation("glow", nil)).
		RegisterAnimation(NewAnimation("fade-in", nil)).
		RegisterAnimation(NewAnimation("click", nil)).
		RegisterGuard("enabled", func() bool { return *enabled })
}

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition([]byte(buttonYAML))
	require.NoError(t, err)

	require.NotNil(t, def.Speed)
	assert.Equal(t, 1.0, *def.Speed)
	assert.Equal(t, []string{"isHovered"}, def.Flags)
	assert.Equal(t, []string{"press"}, def.Triggers)
	require.Len(t, def.States, 2)
	assert.True(t, def.States[0].Starting)
	require.Len(t, def.Transitions, 2)

	fade := def.Transitions[0]
	assert.Equal(t, "normal->hovered", fade.Key)
	require.NotNil(t, fade.Speed)
	assert.Equal(t, 2.0, *fade.Speed)
	assert.True(t, fade.Reverse)
	assert.Equal(t, map[string]bool{"isHovered": true}, fade.FlagConditions)

	click := def.Transitions[1]
	assert.True(t, click.Guarded())
	assert.Equal(t, []string{"press"}, click.TriggerNames())
}

func TestDefinition_Speed(t *testing.T) {
	def, err := ParseDefinition([]byte("speed: 0\nstates:\n  - name: idle\n"))
	require.NoError(t, err)
	require.NotNil(t, def.Speed)

	controller, err := def.Builder(nil).Build()
	require.NoError(t, err)
	assert.Equal(t, 0.0, controller.Speed(), "an explicit zero pauses the controller")

	def, err = ParseDefinition([]byte("states:\n  - name: idle\n"))
	require.NoError(t, err)
	assert.Nil(t, def.Speed)

	controller, err = def.Builder(nil).Build()
	require.NoError(t, err)
	assert.Equal(t, 1.0, controller.Speed(), "omitted speed keeps the default")
}

func TestParseDefinition_UnknownField(t *testing.T) {
	_, err := ParseDefinition([]byte("states:\n  - name: idle\n    colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestParseDefinition_Empty(t *testing.T) {
	_, err := ParseDefinition(nil)
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeNoStates))
}

func TestDecodeDefinition(t *testing.T) {
	def, err := DecodeDefinition(strings.NewReader(buttonYAML))
	require.NoError(t, err)
	assert.Len(t, def.States, 2)
}

func TestLoadDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "button.yaml")
	require.NoError(t, os.WriteFile(path, []byte(buttonYAML), 0o644))

	def, err := LoadDefinition(path)
	require.NoError(t, err)
	assert.Len(t, def.Transitions, 2)

	_, err = LoadDefinition(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefinition_BuildWithLibrary(t *testing.T) {
	enabled := false
	def, err := ParseDefinition([]byte(buttonYAML))
	require.NoError(t, err)

	controller, err := def.Build(buttonLibrary(&enabled))
	require.NoError(t, err)
	require.Len(t, controller.Transitions(), 3)

	require.NoError(t, controller.SetFlag("isHovered", true))
	Settle(t, controller)
	AssertState(t, controller, "hovered")

	require.NoError(t, controller.SetTrigger("press"))
	Settle(t, controller)
	AssertTrigger(t, controller, "press", true)

	enabled = true
	require.NoError(t, controller.SetTrigger("press"))
	Settle(t, controller)
	AssertTrigger(t, controller, "press", false)

	require.NoError(t, controller.SetFlag("isHovered", false))
	Settle(t, controller)
	AssertState(t, controller, "normal")
}

func TestDefinition_BuildWithoutLibrary(t *testing.T) {
	def, err := ParseDefinition([]byte(buttonYAML))
	require.NoError(t, err)

	controller, err := def.Build(nil)
	require.NoError(t, err)

	require.NoError(t, controller.SetFlag("isHovered", true))
	Settle(t, controller)
	AssertState(t, controller, "hovered")
}

func TestDefinition_UnregisteredNames(t *testing.T) {
	def, err := ParseDefinition([]byte(buttonYAML))
	require.NoError(t, err)

	_, err = def.Build(NewLibrary())
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeInvalidDeclaration))
	assert.Contains(t, err.Error(), "fade-in")
}

func TestDefinition_RoundTripThroughBuilder(t *testing.T) {
	enabled := true
	def, err := ParseDefinition([]byte(buttonYAML))
	require.NoError(t, err)

	controller, err := def.Build(buttonLibrary(&enabled))
	require.NoError(t, err)

	snapshot := controller.Definition()
	data, err := snapshot.Marshal()
	require.NoError(t, err)

	again, err := ParseDefinition(data)
	require.NoError(t, err)
	assert.Equal(t, snapshot.States, again.States)
	assert.Equal(t, snapshot.Flags, again.Flags)
	assert.Equal(t, snapshot.Triggers, again.Triggers)
	require.Len(t, again.Transitions, 3)
	assert.Equal(t, "hovered->normal", again.Transitions[1].Key)
	assert.Equal(t, -2.0, *again.Transitions[1].Speed)

	rebuilt, err := again.Build(nil)
	require.NoError(t, err)
	assert.Len(t, rebuilt.Transitions(), 3)
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary().
		RegisterAnimation(NewAnimation("walk", nil)).
		RegisterAnimation(NewAnimation("idle", nil)).
		RegisterAnimation(nil).
		RegisterGuard("always", func() bool { return true }).
		RegisterGuard("", func() bool { return true })

	assert.Equal(t, []string{"idle", "walk"}, lib.AnimationNames())

	anim, ok := lib.Animation("walk")
	require.True(t, ok)
	assert.Equal(t, "walk", anim.Name())
	_, ok = lib.Animation("run")
	assert.False(t, ok)

	guard, ok := lib.Guard("always")
	require.True(t, ok)
	assert.True(t, guard())
	_, ok = lib.Guard("")
	assert.False(t, ok)

	var missing *Library
	_, ok = missing.Animation("walk")
	assert.False(t, ok)
}

func TestDefinition_SlowAnimationsFromLibrary(t *testing.T) {
	fade, fades := CountingAnimation("fade-in", 5*time.Millisecond)
	enabled := true
	lib := buttonLibrary(&enabled).RegisterAnimation(fade)

	def, err := ParseDefinition([]byte(buttonYAML))
	require.NoError(t, err)
	controller, err := def.Build(lib)
	require.NoError(t, err)

	require.NoError(t, controller.SetFlag("isHovered", true))
	require.NoError(t, controller.SetFlag("isHovered", false))
	Settle(t, controller)

	AssertState(t, controller, "normal")
	assert.Equal(t, int64(2), fades.Load())
}
