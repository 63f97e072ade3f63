package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reControl    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

func stripControl(s string) string {
	return reControl.ReplaceAllString(s, "")
}

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func SanitizeName(input string) string {
	return Pipeline{stripControl, TrimAndNormalize}.Apply(input)
}

func SanitizeEmployeeID(input string) string {
	p := Pipeline{
		stripControl,
		func(s string) string { return reSpaces.ReplaceAllString(s, "") },
		strings.ToUpper,
	}
	return p.Apply(input)
}

func SanitizeAudience(input string) string {
	return Pipeline{stripControl, TrimAndNormalize, trimAndLower}.Apply(input)
}

// SanitizeText keeps line structure for multi-line fields such as alert
// messages and booking purposes.
func SanitizeText(input string) string {
	p := Pipeline{
		func(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") },
		stripControl,
		func(s string) string {
			lines := strings.Split(s, "\n")
			for i, line := range lines {
				lines[i] = TrimAndNormalize(line)
			}
			return strings.Join(lines, "\n")
		},
		func(s string) string { return reBlankLines.ReplaceAllString(s, "\n\n") },
		strings.TrimSpace,
	}
	return p.Apply(input)
}
