package strategist

import (
	"strings"

	"video-strategist/internal/models"
)

type Stage string

const (
	StageTrending     Stage = "trending"
	StageSearch       Stage = "search"
	StageSelection    Stage = "selection"
	StageDeepAnalysis Stage = "deep_analysis"
	StageSynthesis    Stage = "synthesis"
)

// StageOutput is the text a stage hands to every later stage.
type StageOutput struct {
	Stage Stage
	Text  string
}

// RunContext carries the request and the outputs of completed stages through
// one run. It is a value: With returns an extended copy and leaves the
// receiver untouched.
type RunContext struct {
	RunID       string
	Prompt      string
	Topic       string
	ContentType models.ContentType
	Region      string

	outputs []StageOutput
}

func (c RunContext) With(out StageOutput) RunContext {
	outputs := make([]StageOutput, len(c.outputs), len(c.outputs)+1)
	copy(outputs, c.outputs)
	c.outputs = append(outputs, out)
	return c
}

// Outputs returns the stage outputs in completion order.
func (c RunContext) Outputs() []StageOutput {
	out := make([]StageOutput, len(c.outputs))
	copy(out, c.outputs)
	return out
}

func (c RunContext) Output(stage Stage) (StageOutput, bool) {
	for _, o := range c.outputs {
		if o.Stage == stage {
			return o, true
		}
	}
	return StageOutput{}, false
}

// Render formats every prior output for inclusion in a prompt.
func (c RunContext) Render() string {
	var b strings.Builder
	for _, o := range c.outputs {
		b.WriteString("### ")
		b.WriteString(strings.ToUpper(string(o.Stage)))
		b.WriteString(" STAGE OUTPUT\n")
		b.WriteString(strings.TrimSpace(o.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}
