// Package prompt deterministically assembles the vendor message sequence
// for a generation request and neutralizes prompt-injection attempts in
// the user's free-text profile fields before they are embedded.
package prompt

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Per-field truncation caps bound prompt size and blast radius.
const (
	maxGoalsLen    = 300
	maxInjuryLen   = 1000
	maxMedsLen     = 500
	maxActivityLen = 500
)

// filteredPlaceholder replaces matched injection patterns. Matches are
// replaced, not deleted, so a sanitized prompt is auditable — you can see
// that something was removed and where.
const filteredPlaceholder = "[filtered]"

// Boundary markers wrap every sanitized value; the surrounding prompt
// instructs the model that text between them is user-reported data, never
// instructions.
const (
	userInputStart = "[USER_INPUT_START]"
	userInputEnd   = "[USER_INPUT_END]"
)

// injectionPatterns is a fixed, case-insensitive list of known
// instruction-injection phrasings. This is a best-effort mitigation layer,
// not a security guarantee: novel phrasings will slip through, and the
// real defense is that sanitized text is only ever embedded between the
// boundary markers above.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all\s+|any\s+)?(?:previous|prior|above|earlier)\s+(?:instructions?|prompts?|directions?|messages?)`),
	regexp.MustCompile(`(?i)disregard\s+(?:the\s+|all\s+)?(?:above|previous|prior|earlier)`),
	regexp.MustCompile(`(?i)forget\s+(?:everything|all)(?:\s+(?:above|before|previous|prior))?`),
	regexp.MustCompile(`(?i)new\s+instructions?\s*:`),
	regexp.MustCompile(`(?i)\b(?:system|assistant)\s*:`),
}

// fencedCodeRe and jsonFragmentRe catch common injection vectors: fenced
// code blocks and JSON-shaped fragments smuggled into free text.
var (
	fencedCodeRe   = regexp.MustCompile("(?s)```.*?(?:```|$)")
	jsonFragmentRe = regexp.MustCompile(`\{[^{}]*\}`)
)

// markerRe neutralizes the boundary markers themselves. A user value
// containing a literal marker would otherwise close the data span early
// and place the rest of the text outside it.
var markerRe = regexp.MustCompile(`(?i)\[USER_INPUT_(?:START|END)\]`)

// sanitize truncates s to maxLen and replaces injection patterns, fenced
// code, and JSON fragments with the neutral placeholder.
func sanitize(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		// Back up to a rune boundary so truncation never emits invalid UTF-8.
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}

	s = markerRe.ReplaceAllString(s, filteredPlaceholder)
	s = fencedCodeRe.ReplaceAllString(s, filteredPlaceholder)
	for _, re := range injectionPatterns {
		s = re.ReplaceAllString(s, filteredPlaceholder)
	}
	s = jsonFragmentRe.ReplaceAllString(s, filteredPlaceholder)

	return strings.TrimSpace(s)
}

// wrapUserInput bounds a sanitized value with the explicit markers the
// system prompt declares as data-only.
func wrapUserInput(s string) string {
	return userInputStart + " " + s + " " + userInputEnd
}
