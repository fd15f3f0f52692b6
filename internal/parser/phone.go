package parser

import (
	"regexp"
	"strings"
)

var phonePatterns = []*regexp.Regexp{
	// labeled Indian mobile
	regexp.MustCompile(`(?i)(?:Mobile|Mob|Phone|Ph|Tel)\s*:?\s*(?:\+?91[-.\s]?)?[0-9]{10}`),
	regexp.MustCompile(`[0-9]{10}`),
	// US grouped
	regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`),
	regexp.MustCompile(`(?:\+?91[-.\s]?)?[0-9]{10}`),
	// international
	regexp.MustCompile(`(?:\+?[0-9]{1,3}[-.\s]?)?[()]?[0-9]{3,4}[)]?[-.\s]?[0-9]{3,4}[-.\s]?[0-9]{3,4}`),
	// OCR split groups
	regexp.MustCompile(`[0-9]{3,4}[-.\s]*[0-9]{3,4}[-.\s]*[0-9]{4}`),
	regexp.MustCompile(`\+?[\d\s\-().]{8,}`),
}

var (
	phoneLabelRe   = regexp.MustCompile(`(?i)^(?:Mobile|Mob|Phone|Ph|Tel)\s*:?\s*`)
	phoneNoiseRe   = regexp.MustCompile(`[^\d+()\-.\s]`)
	nonDigitRe     = regexp.MustCompile(`\D`)
	phoneTrimChars = " .,-"
)

// extractPhone tries each pattern in order and returns the first match that
// is not inside a claimed span, is not part of a longer digit run, and has
// an acceptable number of digits.
func (p *Parser) extractPhone(st *sideText, c Claims) (string, Claims) {
	for _, re := range phonePatterns {
		for _, loc := range re.FindAllStringIndex(st.full, -1) {
			if c.SpanClaimed(loc[0], loc[1]) || insideDigitRun(st.full, loc[0], loc[1]) {
				continue
			}
			phone := cleanPhone(st.full[loc[0]:loc[1]])
			n := countDigits(phone)
			if n < p.weights.PhoneMinDigits || n > p.weights.PhoneMaxDigits {
				continue
			}
			return phone, c.withSpan(st, loc[0], loc[1])
		}
	}
	return "", c
}

func cleanPhone(s string) string {
	s = strings.TrimSpace(s)
	s = phoneLabelRe.ReplaceAllString(s, "")
	s = phoneNoiseRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.Trim(s, phoneTrimChars)
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

// digitsOnly strips everything but digits.
func digitsOnly(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// insideDigitRun reports whether [start, end) is directly preceded or
// followed by a digit.
func insideDigitRun(s string, start, end int) bool {
	if start > 0 && isDigit(s[start-1]) {
		return true
	}
	return end < len(s) && isDigit(s[end])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
