package cv

import (
	"regexp"
	"strings"
)

var (
	bulletReplacer = strings.NewReplacer("•", "-", "·", "-")
	newlineRuns    = regexp.MustCompile(`\n{2,}`)
	spaceRuns      = regexp.MustCompile(`\s{2,}`)
)

// CleanText normalizes extracted CV text: bullets become "-", blank lines and
// whitespace runs are collapsed, and the result is trimmed.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = bulletReplacer.Replace(text)
	// newline runs go first so a blank line stays a line break
	text = newlineRuns.ReplaceAllString(text, "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
