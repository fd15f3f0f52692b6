package parser

import (
	"regexp"
	"strings"
)

var emailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\s*\.\s*[A-Za-z]{2,}`),
	regexp.MustCompile(`(?i)E-?mail\s*:?\s*[A-Za-z0-9._%+-]+\s*@\s*[A-Za-z0-9-]+(?:\s*\.\s*[A-Za-z0-9-]+)*\s*\.\s*[A-Za-z]{2,}`),
	regexp.MustCompile(`[A-Za-z0-9._%+-]+\s*@\s*[A-Za-z0-9-]+(?:\s*\.\s*[A-Za-z0-9-]+)*\s*\.\s*[A-Za-z]{2,}`),
}

var emailLabelRe = regexp.MustCompile(`(?i)^E-?mail\s*:?\s*`)

// extractEmail takes the first match of the first email pattern that
// matches anywhere in the side, then repairs it.
func (p *Parser) extractEmail(st *sideText, c Claims) (string, Claims) {
	if st.full == "" {
		return "", c
	}
	for _, re := range p.emailRes {
		loc := re.FindStringIndex(st.full)
		if loc == nil {
			continue
		}
		email := p.cleanEmail(st.full[loc[0]:loc[1]])
		if email == "" {
			continue
		}
		return email, c.withSpan(st, loc[0], loc[1])
	}
	return "", c
}

// buildEmailPatterns returns the generic patterns followed by the
// known-domain and known-corruption patterns from the entity table.
func buildEmailPatterns(t *entityTable) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(emailPatterns)+1+len(t.corrections))
	out = append(out, emailPatterns...)
	if t.knownDomain != nil {
		out = append(out, t.knownDomain)
	}
	for _, c := range t.corrections {
		out = append(out, c.re)
	}
	return out
}

func (p *Parser) cleanEmail(s string) string {
	s = emailLabelRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "")
	for _, c := range p.entities.corrections {
		s = c.re.ReplaceAllString(s, c.replacement)
	}
	if !strings.Contains(s, "@") && p.entities.missingAt != nil {
		s = p.entities.missingAt.ReplaceAllString(s, "$1@$2")
	}
	return strings.ToLower(s)
}
