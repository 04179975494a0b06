package grader

import (
	"regexp"
	"strings"
)

const (
	keywordMinLength = 4
	keywordLimit     = 12
)

// stopWords are filler terms excluded from rubric keyword extraction. The
// last two are domain noise that appears in nearly every problem statement.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {},
	"this": {}, "that": {}, "into": {}, "your": {}, "have": {},
	"will": {}, "per": {}, "using": {}, "output": {}, "algorithm": {},
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^a-z0-9 .,:;_%()-]`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Normalize lowercases text, collapses whitespace runs and strips characters
// outside a small printable set. Total over any input.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	collapsed := whitespaceRe.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(disallowedRe.ReplaceAllString(collapsed, ""))
}

// ExtractKeywords returns the significant terms of a text: lowercased tokens
// of at least four characters, stop words removed, deduplicated in first-seen
// order and capped at twelve.
func ExtractKeywords(text string) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0, keywordLimit)

	for _, token := range nonAlnumRe.Split(strings.ToLower(text), -1) {
		if len(token) < keywordMinLength {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == keywordLimit {
			break
		}
	}

	return keywords
}

// Coverage reports which fraction of the rubric's keywords appear as
// substrings of the candidate text. Zero when the rubric has no keywords.
func Coverage(rubricText, candidateText string) float64 {
	keywords := ExtractKeywords(rubricText)
	if len(keywords) == 0 {
		return 0
	}

	haystack := strings.ToLower(candidateText)
	hits := 0
	for _, word := range keywords {
		if strings.Contains(haystack, word) {
			hits++
		}
	}

	return float64(hits) / float64(len(keywords))
}
