package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/anggasct/animfsm"
)

// DOTGenerator generates Graphviz DOT format representations of animation controllers
type DOTGenerator struct {
	definition animfsm.Definition
	options    DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowTriggers       bool
	ShowFlagConditions bool
	ShowGuards         bool
	ShowAnimations     bool
	RankDirection      string // "TB", "LR", "BT", "RL"
	NodeShape          string
	TransitionStyle    string
	// CurrentState, when set, is highlighted
	CurrentState string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowTriggers:       true,
		ShowFlagConditions: true,
		ShowGuards:         true,
		ShowAnimations:     true,
		RankDirection:      "LR",
		NodeShape:          "box",
		TransitionStyle:    "solid",
	}
}

// NewDOTGenerator creates a new DOT generator for the given definition
func NewDOTGenerator(definition animfsm.Definition, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		definition: definition,
		options:    opts,
	}
}

// NewControllerDOTGenerator renders a live controller, highlighting its current state
func NewControllerDOTGenerator(c *animfsm.Controller, options ...DOTOptions) *DOTGenerator {
	g := NewDOTGenerator(c.Definition(), options...)
	g.options.CurrentState = c.CurrentStateName()
	return g
}

// Generate creates a DOT representation of the controller
func (g *DOTGenerator) Generate() (string, error) {
	if len(g.definition.States) == 0 {
		return "", animfsm.NewNoStatesError()
	}

	var dot strings.Builder

	dot.WriteString("digraph AnimationController {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generateStates(&dot)
	dot.WriteString("\n")
	g.generateTransitions(&dot)

	dot.WriteString("}\n")

	return dot.String(), nil
}

func (g *DOTGenerator) startingState() string {
	for _, s := range g.definition.States {
		if s.Starting {
			return s.Name
		}
	}
	return g.definition.States[0].Name
}

// generateStates generates DOT nodes for all states
func (g *DOTGenerator) generateStates(dot *strings.Builder) {
	starting := g.startingState()

	dot.WriteString("  // States\n")
	for _, s := range g.definition.States {
		fillColor := "lightblue"
		label := s.Name

		if s.Name == starting {
			fillColor = "lightgreen"
			label += "\\n(starting)"
		}
		if g.options.ShowAnimations && s.Animation != "" {
			label += fmt.Sprintf("\\n▶ %s", s.Animation)
		}

		penWidth := 1
		if g.options.CurrentState != "" && s.Name == g.options.CurrentState {
			fillColor = "gold"
			penWidth = 3
		}

		dot.WriteString(fmt.Sprintf("  %s [style=\"filled\" fillcolor=%s penwidth=%d label=\"%s\"];\n",
			quote(s.Name), fillColor, penWidth, escape(label)))
	}
}

// generateTransitions generates DOT edges for all transitions in declaration order
func (g *DOTGenerator) generateTransitions(dot *strings.Builder) {
	dot.WriteString("  // Transitions\n")

	for _, t := range g.definition.Transitions {
		from, to, err := animfsm.ParseTransitionKey(t.Key)
		if err != nil {
			continue
		}

		label := g.transitionLabel(t)
		style := g.options.TransitionStyle
		if len(t.TriggerNames()) > 0 {
			style = "bold"
		}

		if label == "" {
			dot.WriteString(fmt.Sprintf("  %s -> %s [style=%s];\n", quote(from), quote(to), style))
			continue
		}
		dot.WriteString(fmt.Sprintf("  %s -> %s [style=%s label=\"%s\"];\n",
			quote(from), quote(to), style, escape(label)))
	}
}

func (g *DOTGenerator) transitionLabel(t animfsm.TransitionDefinition) string {
	var parts []string

	if g.options.ShowTriggers {
		if names := t.TriggerNames(); len(names) > 0 {
			parts = append(parts, strings.Join(names, " | "))
		}
	}
	if g.options.ShowFlagConditions && len(t.FlagConditions) > 0 {
		flags := make([]string, 0, len(t.FlagConditions))
		for name := range t.FlagConditions {
			flags = append(flags, name)
		}
		sort.Strings(flags)

		conds := make([]string, len(flags))
		for i, name := range flags {
			if t.FlagConditions[name] {
				conds[i] = name
			} else {
				conds[i] = "!" + name
			}
		}
		parts = append(parts, "["+strings.Join(conds, " && ")+"]")
	}
	if g.options.ShowGuards && t.Guarded() {
		guard := t.Guard
		if guard == "" {
			guard = "guard"
		}
		parts = append(parts, "{"+guard+"}")
	}
	if g.options.ShowAnimations && t.Animation != "" {
		anim := "/ " + t.Animation
		if t.Speed != nil {
			anim += fmt.Sprintf(" x%g", *t.Speed)
		}
		parts = append(parts, anim)
	}

	return strings.Join(parts, " ")
}

func quote(id string) string {
	return "\"" + escape(id) + "\""
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// SVGGenerator generates SVG representations by calling Graphviz
type SVGGenerator struct {
	dotGenerator *DOTGenerator
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator(definition animfsm.Definition, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(definition, options...),
	}
}

// Generate creates an SVG representation of the controller
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

// GenerateSVG creates an SVG representation of the controller
func (g *DOTGenerator) GenerateSVG() (string, error) {
	svgGen := &SVGGenerator{dotGenerator: g}
	return svgGen.Generate()
}
