package animfsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTriggers(t *testing.T) {
	testCases := []struct {
		name        string
		single      string
		list        []string
		withOptions map[string]TriggerOptions
		want        []string
	}{
		{name: "none", want: []string{}},
		{name: "single", single: "jump", want: []string{"jump"}},
		{name: "list", list: []string{"b", "a"}, want: []string{"a", "b"}},
		{name: "options", withOptions: map[string]TriggerOptions{"dash": {Interrupt: true}}, want: []string{"dash"}},
		{name: "single wins", single: "jump", list: []string{"a"}, withOptions: map[string]TriggerOptions{"b": {}}, want: []string{"jump"}},
		{name: "list wins over options", list: []string{"a"}, withOptions: map[string]TriggerOptions{"b": {}}, want: []string{"a"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			set := buildTriggers(tc.single, tc.list, tc.withOptions)
			assert.Equal(t, tc.want, set.Names())
		})
	}
}

func TestTriggerSet_OptionsPreserved(t *testing.T) {
	set := buildTriggers("", nil, map[string]TriggerOptions{"dash": {Interrupt: true}})
	assert.True(t, set.Has("dash"))
	assert.False(t, set.Has("jump"))
	assert.True(t, set["dash"].Interrupt)

	clone := set.Clone()
	clone["dash"] = TriggerOptions{}
	assert.True(t, set["dash"].Interrupt)
}

func TestRegistry(t *testing.T) {
	r := newRegistry("flag", []string{"isMoving", "isHovered", "isMoving"})

	assert.Equal(t, []string{"isMoving", "isHovered"}, r.names())

	v, err := r.get("isMoving")
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, r.set("isMoving", true))
	v, _ = r.get("isMoving")
	assert.True(t, v)

	err = r.set("isFlying", true)
	require.Error(t, err)
	var identErr *IdentifierError
	require.ErrorAs(t, err, &identErr)
	assert.Equal(t, "flag", identErr.Kind)
	assert.Equal(t, "isFlying", identErr.Name)
	assert.False(t, r.has("isFlying"), "rejected set must not declare the name")

	snap := r.snapshot()
	snap["isHovered"] = true
	v, _ = r.get("isHovered")
	assert.False(t, v)
}
