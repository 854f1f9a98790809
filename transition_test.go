package animfsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransitionKey(t *testing.T) {
	testCases := []struct {
		key     string
		from    string
		to      string
		wantErr bool
	}{
		{key: "idle->walk", from: "idle", to: "walk"},
		{key: " idle -> walk ", from: "idle", to: "walk"},
		{key: "idle->idle", from: "idle", to: "idle"},
		{key: "idle", wantErr: true},
		{key: "->walk", wantErr: true},
		{key: "idle->", wantErr: true},
		{key: "a->b->c", wantErr: true},
		{key: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			from, to, err := ParseTransitionKey(tc.key)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrCodeInvalidTransitionKey, GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.from, from)
			assert.Equal(t, tc.to, to)
		})
	}
}

func TestTransition_Fluent(t *testing.T) {
	anim := NewAnimation("hop", nil)
	tr := NewTransition("idle", "jump").
		WithAnimation(anim).
		WithGuard(func() bool { return true })

	assert.Equal(t, "idle->jump", tr.Key())
	assert.Same(t, anim, tr.Animation)
	assert.True(t, tr.guardPasses())
	assert.False(t, tr.HasTriggers())
	assert.Empty(t, tr.FlagNames())
}

func TestTransition_FlagsSatisfied(t *testing.T) {
	tr := NewTransition("idle", "walk")
	assert.True(t, tr.flagsSatisfied(map[string]bool{"isMoving": false}), "no conditions always passes")

	tr.FlagConditions["isMoving"] = true
	tr.FlagConditions["isTired"] = false
	assert.Equal(t, []string{"isMoving", "isTired"}, tr.FlagNames())

	assert.True(t, tr.flagsSatisfied(map[string]bool{"isMoving": true, "isTired": false}))
	assert.False(t, tr.flagsSatisfied(map[string]bool{"isMoving": true, "isTired": true}))
	assert.False(t, tr.flagsSatisfied(map[string]bool{"isMoving": false, "isTired": false}))
}

func TestTransition_Triggered(t *testing.T) {
	tr := NewTransition("idle", "jump")
	assert.False(t, tr.triggered(map[string]bool{"jump": true}))

	tr.Triggers = TriggerSet{"jump": {}, "hop": {}}
	assert.True(t, tr.HasTriggers())
	assert.False(t, tr.triggered(map[string]bool{"jump": false, "hop": false}))
	assert.True(t, tr.triggered(map[string]bool{"jump": false, "hop": true}))
}

func TestTransition_GuardPasses(t *testing.T) {
	tr := NewTransition("idle", "walk")
	assert.True(t, tr.guardPasses())

	tr.WithGuard(func() bool { return false })
	assert.False(t, tr.guardPasses())
}

func TestTransition_Reversed(t *testing.T) {
	speed := 2.0
	tr := NewTransition("idle", "walk")
	tr.Speed = &speed
	tr.Triggers = TriggerSet{"go": {}}
	tr.FlagConditions["isMoving"] = true
	tr.Guard = func() bool { return false }

	r := tr.reversed()
	assert.Equal(t, "walk", r.From)
	assert.Equal(t, "idle", r.To)
	require.NotNil(t, r.Speed)
	assert.Equal(t, -2.0, *r.Speed)
	assert.Equal(t, 2.0, *tr.Speed, "source speed is untouched")
	assert.Equal(t, map[string]bool{"isMoving": false}, r.FlagConditions)
	assert.False(t, r.HasTriggers())
	assert.True(t, r.guardPasses())

	tr.Speed = nil
	assert.Nil(t, tr.reversed().Speed)
}

func TestTransition_Clone(t *testing.T) {
	speed := 1.5
	tr := NewTransition("idle", "walk")
	tr.Speed = &speed
	tr.Triggers = TriggerSet{"go": {}}
	tr.FlagConditions["isMoving"] = true

	c := tr.clone()
	*c.Speed = 3
	c.Triggers["stop"] = TriggerOptions{}
	c.FlagConditions["isMoving"] = false

	assert.Equal(t, 1.5, *tr.Speed)
	assert.False(t, tr.Triggers.Has("stop"))
	assert.True(t, tr.FlagConditions["isMoving"])
}
