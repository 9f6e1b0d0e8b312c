package clean

import (
	"strings"

	"github.com/kalambet/gharvest/internal/event"
)

// FilterBot drops records whose actor login matches the bot/CI vocabulary
// or is empty.
func FilterBot(patterns []string) Step {
	return func(ctx *Context) *Context {
		if IsBotLogin(ctx.Event.Actor.Login, patterns) {
			return nil
		}
		return ctx
	}
}

// ExtractText derives the record's natural-language payload; records with
// no text, or whitespace-only text, are dropped.
func ExtractText(ctx *Context) *Context {
	ctx.Text = ctx.Event.ExtractText()
	if strings.TrimSpace(ctx.Text) == "" {
		return nil
	}
	return ctx
}

// FilterTrivial drops exact-match low-signal phrases. It is exported but not
// part of the canonical workflow; enabling it is a configuration choice.
func FilterTrivial(phrases []string) Step {
	return func(ctx *Context) *Context {
		if IsTrivial(ctx.Text, phrases) {
			return nil
		}
		return ctx
	}
}

// current returns the most-processed text available to a stripping step.
func (ctx *Context) current() string {
	if ctx.Cleaned != "" {
		return ctx.Cleaned
	}
	return ctx.Text
}

// StripCode removes fenced code blocks. Never drops.
func StripCode(ctx *Context) *Context {
	ctx.Cleaned = StripCodeBlocks(ctx.Text)
	return ctx
}

// StripImagesStep removes markdown image references. Never drops.
func StripImagesStep(ctx *Context) *Context {
	ctx.Cleaned = StripImages(ctx.current())
	return ctx
}

// StripDiff removes unified-diff hunk lines. Never drops.
func StripDiff(ctx *Context) *Context {
	ctx.Cleaned = StripDiffLines(ctx.current())
	return ctx
}

// NormalizeLowercase lowercases and collapses whitespace. Never drops.
func NormalizeLowercase(ctx *Context) *Context {
	ctx.Cleaned = Normalize(ctx.current())
	return ctx
}

// TokenizeStep splits the cleaned text into word tokens. Never drops.
func TokenizeStep(ctx *Context) *Context {
	ctx.Tokens = Tokenize(ctx.Cleaned)
	return ctx
}

// FilterMinTokens drops records with fewer than min tokens.
func FilterMinTokens(min int) Step {
	return func(ctx *Context) *Context {
		if len(ctx.Tokens) < min {
			return nil
		}
		return ctx
	}
}

// Finalize merges the derived cleaned text and tokens onto a copy of the
// original record's identity fields.
func Finalize(ctx *Context) *Context {
	ctx.Output = event.Cleaned{
		ID:          string(ctx.Event.ID),
		CleanedText: ctx.Cleaned,
		Repo:        ctx.Event.Repo.Name,
		CreatedAt:   ctx.Event.CreatedAt,
		Type:        ctx.Event.Type,
		Tokens:      ctx.Tokens,
	}
	return ctx
}

// SlimOutput reduces the record to the seven-field cleaned shape, pulling
// the author association from whichever payload object carries it.
func SlimOutput(ctx *Context) *Context {
	ctx.Output.AuthorAssociation = ctx.Event.AuthorAssociation()
	return ctx
}
