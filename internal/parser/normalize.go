package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`,
		"‘", `"`, "’", `"`, "‚", `"`,
	)
	dashReplacer = strings.NewReplacer("—", "-", "–", "-", "‒", "-", "−", "-")

	noiseRe      = regexp.MustCompile(`[^\w\s@.,-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	markerLineRe = regexp.MustCompile(`(?i)---[^-]*?(FRONT|BACK)[^-]*?---`)
	ruleLineRe   = regexp.MustCompile(`^(?:-+|\*+|=+)$`)
)

// Normalize cleans one line of OCR text: compatibility forms and diacritics
// are folded to ASCII where possible, curly quotes become '"', long dashes
// become '-', every character outside [A-Za-z0-9_ @.,-] becomes a space,
// whitespace is collapsed and the ends are trimmed. Normalize is idempotent.
func Normalize(line string) string {
	s := foldDiacritics(line)
	s = quoteReplacer.Replace(s)
	s = dashReplacer.Replace(s)
	s = noiseRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Lines splits side text into normalized lines, dropping side markers,
// horizontal rules, and anything of length one or less.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := Normalize(raw)
		if len(line) <= 1 {
			continue
		}
		if markerLineRe.MatchString(line) || ruleLineRe.MatchString(line) {
			continue
		}
		if strings.Contains(line, "FRONT SIDE") || strings.Contains(line, "BACK SIDE") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
