package richtext

import (
	"bytes"
	"regexp"
)

var (
	trailingWhitespace = regexp.MustCompile(`(?m)[ \t]+$`)
	// Runs of 3+ rule characters alone on a line would otherwise parse as
	// setext headings or code fences.
	decorativeRule = regexp.MustCompile(`(?m)^[ \t]*([-=*_~][ \t]?){3,}[ \t]*$`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

// ScrubText normalizes plain text so it reads sensibly as CommonMark.
func ScrubText() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		input = bytes.ReplaceAll(input, []byte("\r\n"), []byte("\n"))
		input = bytes.ReplaceAll(input, []byte("\r"), []byte("\n"))
		input = trailingWhitespace.ReplaceAll(input, nil)
		input = decorativeRule.ReplaceAll(input, []byte("***"))
		input = blankRuns.ReplaceAll(input, []byte("\n\n"))
		return bytes.TrimSpace(input), nil
	}
}
