package clean

import "strings"

// DefaultBotPatterns matches bot and CI actor logins by case-insensitive
// substring: GitHub-App bots end with [bot]; the rest are common automation
// accounts.
func DefaultBotPatterns() []string {
	return []string{
		"[bot]",
		"bot",
		"github-actions",
		"dependabot",
		"actions-user",
		"greenkeeper",
		"renovate",
		"stale",
		"ci",
		"travis",
		"circleci",
		"codecov",
	}
}

// DefaultTrivialPhrases lists exact-match low-signal comments.
func DefaultTrivialPhrases() []string {
	return []string{
		"lgtm", "lgtm!", "lgtm.",
		"thanks", "thanks!", "thanks.",
		"thank you", "thank you!",
		"approved", "approve",
		"ok", "ok.", "ok!",
		"nice", "nice!", "nice.",
		"👍", ":+1:", ":thumbsup:",
		"gtg", "sgtm", "sgtm.",
		"same", "same here",
		"done", "done.",
		"fixed", "fixed.",
		"re", "re.",
	}
}

// IsBotLogin reports whether the login matches any pattern. An empty login
// counts as a bot: there is no human behind it.
func IsBotLogin(login string, patterns []string) bool {
	login = strings.ToLower(login)
	if login == "" {
		return true
	}
	for _, p := range patterns {
		if strings.Contains(login, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// IsTrivial reports whether the text is a low-signal phrase: an exact match,
// a match after stripping punctuation, or at most two tokens that are all in
// the phrase set.
func IsTrivial(text string, phrases []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return true
	}

	set := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		set[strings.ToLower(p)] = struct{}{}
	}

	if _, ok := set[normalized]; ok {
		return true
	}
	if stripped := strings.TrimSpace(punctRE.ReplaceAllString(normalized, "")); stripped != "" {
		if _, ok := set[stripped]; ok {
			return true
		}
	}

	// Two tokens or fewer, all from the phrase set, is trivial. Zero tokens
	// (punctuation-only text) passes vacuously.
	tokens := Tokenize(normalized)
	if len(tokens) > 2 {
		return false
	}
	for _, tok := range tokens {
		if _, ok := set[tok]; !ok {
			return false
		}
	}
	return true
}
