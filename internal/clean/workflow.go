// Package clean derives analysis-ready records from raw archive events
// through a chain of transformation steps, then orchestrates the cleaning
// pass over the store.
package clean

import (
	"github.com/kalambet/gharvest/internal/event"
)

// Context is the per-record state threaded through a workflow: the original
// event, the extracted and cleaned text in progress, the token list, and the
// slimmed output once the final steps have run.
type Context struct {
	Event   event.Record
	Text    string
	Cleaned string
	Tokens  []string
	Output  event.Cleaned
}

// Step transforms a Context. Returning nil drops the record: no further
// steps execute.
type Step func(*Context) *Context

// Workflow is an immutable ordered chain of steps.
type Workflow struct {
	steps []Step
}

// NewWorkflow builds a workflow from the given steps.
func NewWorkflow(steps ...Step) *Workflow {
	return &Workflow{steps: steps}
}

// Chain returns a new workflow with the steps appended; the receiver is not
// modified.
func (w *Workflow) Chain(steps ...Step) *Workflow {
	combined := make([]Step, 0, len(w.steps)+len(steps))
	combined = append(combined, w.steps...)
	combined = append(combined, steps...)
	return &Workflow{steps: combined}
}

// Len returns the number of steps.
func (w *Workflow) Len() int {
	return len(w.steps)
}

// Run applies the steps in order to one record. The second return is false
// if any step dropped the record.
func (w *Workflow) Run(rec event.Record) (event.Cleaned, bool) {
	ctx := &Context{Event: rec}
	for _, step := range w.steps {
		ctx = step(ctx)
		if ctx == nil {
			return event.Cleaned{}, false
		}
	}
	return ctx.Output, true
}

// Options configures the canonical workflow. Vocabularies are injected data,
// not package state, so tests and deployments can substitute their own.
type Options struct {
	MinTokens      int
	BotPatterns    []string
	TrivialPhrases []string

	// DropTrivial splices the trivial-phrase filter in after text
	// extraction. The canonical workflow leaves it off.
	DropTrivial bool
}

// Default returns the canonical ten-step workflow: bot filter, text
// extraction, code/image/diff stripping, lowercase normalization,
// tokenization, minimum-token filter, finalize, slim output. With
// DropTrivial set, FilterTrivial runs right after ExtractText.
func Default(opts Options) *Workflow {
	if opts.MinTokens <= 0 {
		opts.MinTokens = 2
	}
	if len(opts.BotPatterns) == 0 {
		opts.BotPatterns = DefaultBotPatterns()
	}
	if len(opts.TrivialPhrases) == 0 {
		opts.TrivialPhrases = DefaultTrivialPhrases()
	}

	steps := []Step{
		FilterBot(opts.BotPatterns),
		ExtractText,
	}
	if opts.DropTrivial {
		steps = append(steps, FilterTrivial(opts.TrivialPhrases))
	}
	steps = append(steps,
		StripCode,
		StripImagesStep,
		StripDiff,
		NormalizeLowercase,
		TokenizeStep,
		FilterMinTokens(opts.MinTokens),
		Finalize,
		SlimOutput,
	)
	return NewWorkflow(steps...)
}
