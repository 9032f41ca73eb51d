package engine

import (
	"regexp"
	"strings"
)

// instructionRe matches a special-instruction span: text between a pair of
// double asterisks. Spans may cross line breaks.
var instructionRe = regexp.MustCompile(`(?s)\*\*(.+?)\*\*`)

// ProcessScript splits a creator script into special instructions and narrative.
// Instructions are returned newline-joined in order of appearance; clean is the
// script with every span (markers included) removed. A script without spans is
// returned unchanged with empty instructions.
func ProcessScript(text string) (instructions, clean string) {
	matches := instructionRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return "", text
	}

	parts := make([]string, 0, len(matches))
	var sb strings.Builder
	prev := 0
	for _, m := range matches {
		sb.WriteString(text[prev:m[0]])
		parts = append(parts, strings.TrimSpace(text[m[2]:m[3]]))
		prev = m[1]
	}
	sb.WriteString(text[prev:])

	return strings.Join(parts, "\n"), sb.String()
}
