package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/animfsm/visualization"
)

const spriteYAML = `
speed: 1
flags: [isMoving]
triggers: [jump]
states:
  - name: idle
    animation: idle
    starting: true
  - name: walk
    animation: walk
transitions:
  - key: idle->walk
    flags: {isMoving: true}
    reverse: true
  - key: idle->idle
    trigger: jump
    animation: jump
`

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "controller.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	err := runValidate(&out, writeDefinition(t, spriteYAML))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "2 states, 3 transitions, 1 flags, 1 triggers")
	assert.Contains(t, out.String(), `starts in "idle"`)
}

func TestRunValidate_Invalid(t *testing.T) {
	const broken = `
states:
  - name: idle
  - name: idle
transitions:
  - key: idle->run
`
	err := runValidate(&bytes.Buffer{}, writeDefinition(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[DuplicateDeclaration]")
	assert.Contains(t, err.Error(), "[UnknownState]")
}

func TestRunDot(t *testing.T) {
	var out bytes.Buffer
	err := runDot(&out, writeDefinition(t, spriteYAML), "", false, visualization.DefaultDOTOptions())
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"idle" -> "walk"`)
}

func TestRunDot_ToFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.dot")
	err := runDot(&bytes.Buffer{}, writeDefinition(t, spriteYAML), output, false, visualization.DefaultDOTOptions())
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph AnimationController")
}

func TestRunDot_SVGToFile(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("graphviz dot binary not installed")
	}
	var out bytes.Buffer
	output := filepath.Join(t.TempDir(), "out.svg")
	err := runDot(&out, writeDefinition(t, spriteYAML), output, true, visualization.DefaultDOTOptions())
	require.NoError(t, err)
	assert.Empty(t, out.String(), "svg goes to the output file only")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestWriteRendered(t *testing.T) {
	var out bytes.Buffer
	output := filepath.Join(t.TempDir(), "out.svg")
	require.NoError(t, writeRendered(&out, output, "<svg></svg>"))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "<svg></svg>", string(data))

	require.NoError(t, writeRendered(&out, "", "digraph {}"))
	assert.Equal(t, "digraph {}", out.String())
}
