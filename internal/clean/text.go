package clean

import (
	"regexp"
	"strings"
)

// Markdown fenced code blocks (```...``` with optional language tag).
var codeBlockRE = regexp.MustCompile("(?is)```\\w*\\n.*?```")

// Markdown images ![alt](url) and bare [image](url) placeholders.
var (
	imageMarkdownRE = regexp.MustCompile(`(?i)!\[[^\]]*\]\([^)]*\)`)
	imageLinkRE     = regexp.MustCompile(`(?i)\[image\]\([^)]*\)`)
)

// Maximal word-character runs: letters, digits, underscore, Unicode-aware.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Punctuation for trivial-phrase normalization: anything that is neither a
// word character nor whitespace.
var punctRE = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// StripCodeBlocks replaces fenced code blocks with a single space.
func StripCodeBlocks(text string) string {
	if text == "" {
		return ""
	}
	return codeBlockRE.ReplaceAllString(text, " ")
}

// StripImages removes markdown image references.
func StripImages(text string) string {
	if text == "" {
		return ""
	}
	t := imageMarkdownRE.ReplaceAllString(text, " ")
	return imageLinkRE.ReplaceAllString(t, " ")
}

// StripDiffLines removes lines that look like unified-diff hunks: lines
// whose trimmed form starts with + or -.
func StripDiffLines(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "+") || strings.HasPrefix(trimmed, "-") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// Normalize lowercases, collapses consecutive whitespace into single
// spaces, and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Tokenize splits text into its word-character runs, lowercased.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return wordRE.FindAllString(strings.ToLower(text), -1)
}
