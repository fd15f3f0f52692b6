package parser

import (
	"regexp"
	"sort"
	"strings"
)

// namePatterns are ordered from most to least specific. A pattern with a
// capture group yields the group; otherwise the whole match.
var namePatterns = []*regexp.Regexp{
	// name followed by a qualification, e.g. "K.S.ANBUSELVAN, B.Sc"
	regexp.MustCompile(`(?i)((?:[A-Z]\.\s*)*[A-Z][A-Za-z]+(?:\.[A-Z])?[A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*)\s*,?\s+(?:B\.?Sc|B\.?Tech|MBA|M\.?Tech|Ph\.?D|CA|CS|ACCA)\b`),
	// dotted initials, e.g. "K.S.ANBUSELVAN"
	regexp.MustCompile(`^[A-Z](?:\.[A-Z])*\.[A-Z][A-Z]+$`),
	regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?$`),
	regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z]\.\s+[A-Z][a-z]+$`),
	regexp.MustCompile(`(?i)^(?:Mrs|Mr|Ms|Dr)\.?\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`^[A-Z]{2,}\s+[A-Z]{2,}(?:\s+[A-Z]{2,})?(?:\s+[A-Z]{2,})?$`),
	regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3}$`),
	regexp.MustCompile(`^[A-Z][A-Za-z.]+\s+[A-Z][A-Za-z.]+`),
	regexp.MustCompile(`^[A-Z][a-z]{2,}$`),
}

var (
	nameSkipRe = termsPattern([]string{
		"LLC", "Inc", "Corp", "Ltd", "Company", "Co.", "Corporation", "Group", "Services",
		"Solutions", "Consulting", "Technologies", "Street", "St", "Avenue", "Ave", "Road",
		"Rd", "Drive", "Suite", "Ste", "Door", "No.", "Ph", "Phone", "Tel", "Fax", "Mobile", "Email",
		"www.", "http", "@",
	})

	numericLeadRe   = regexp.MustCompile(`^\d`)
	numericOnlyRe   = regexp.MustCompile(`^\d[\d\s\-().+]+$`)
	jobTitleOnlyRe  = regexp.MustCompile(`(?i)^(?:Managing|General|Executive|Sales|Marketing|Technical|Business|Project|Assistant|Senior|Junior)\s+(?:Director|Manager|Officer|Engineer|Analyst)$`)
	qualificationRe = regexp.MustCompile(`(?i)\b(?:B\.?Sc|B\.?Tech|MBA|M\.?Tech|Ph\.?D|CA|CS|ACCA)\b`)
	edgeNoiseRe     = regexp.MustCompile(`^\W+|\W+$`)

	fallbackDigitsRe  = regexp.MustCompile(`^\d|\d{4,}`)
	fallbackWebRe     = regexp.MustCompile(`(?i)@|www\.|http|\.com|\.org|\.net`)
	fallbackSkipRe    = regexp.MustCompile(`(?i)\b(?:street|road|avenue|drive|suite|floor|building|city|state|zip|phone|tel|mobile|email|fax)\b`)
	fallbackCompanyRe = regexp.MustCompile(`(?i)\b(?:CORPORATION|COMPANY|ASSOCIATION|INDUSTRIAL|ESTATE|MANUFACTURER|SERVICES|SOLUTIONS|TECHNOLOGIES|GROUP|SYSTEMS)\b`)
)

// companyLikeNameTerms mark a name candidate as really being an organisation.
var companyLikeNameTerms = []string{"CORPORATION", "ASSOCIATION", "INDUSTRIAL", "ESTATE", "MANUFACTURER"}

// FieldCandidate is a scored provisional value for one field, taken from one line.
type FieldCandidate struct {
	Text             string
	Score            int
	SourceLine       int
	HasQualification bool
}

// extractName scores every eligible line against the name shapes and picks
// the best candidate. When nothing matches, the first lines are retried
// with looser rules.
func (p *Parser) extractName(st *sideText, c Claims) (string, Claims) {
	var candidates []FieldCandidate
	for i, line := range st.lines {
		if c.LineClaimed(i) || !p.nameEligible(line) {
			continue
		}
		if cand, ok := p.matchName(line, i); ok {
			candidates = append(candidates, cand)
		}
	}

	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(a, b int) bool {
			ca, cb := candidates[a], candidates[b]
			if ca.HasQualification != cb.HasQualification {
				return ca.HasQualification
			}
			return ca.Score > cb.Score
		})
		best := candidates[0]
		return best.Text, c.withLine(best.SourceLine)
	}

	limit := p.weights.NameFallbackLines
	for i := 0; i < len(st.lines) && i < limit; i++ {
		if c.LineClaimed(i) {
			continue
		}
		if name, ok := p.fallbackName(st.lines[i]); ok {
			return name, c.withLine(i)
		}
	}
	return "", c
}

func (p *Parser) nameEligible(line string) bool {
	if len(line) < 2 || len(line) > p.weights.NameMaxLineLength {
		return false
	}
	if nameSkipRe.MatchString(line) {
		return false
	}
	if numericLeadRe.MatchString(line) || numericOnlyRe.MatchString(line) {
		return false
	}
	return !jobTitleOnlyRe.MatchString(line)
}

func (p *Parser) matchName(line string, lineIndex int) (FieldCandidate, bool) {
	cleaned := strings.TrimSpace(whitespaceRe.ReplaceAllString(edgeNoiseRe.ReplaceAllString(line, ""), " "))
	for i, re := range namePatterns {
		m := re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		name := m[0]
		if len(m) > 1 && m[1] != "" {
			name = m[1]
		}
		name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
		if len(name) < 2 || len(name) > 50 {
			continue
		}
		qualified := qualificationRe.MatchString(line)
		if p.nameCompanyRe.MatchString(name) && !qualified {
			continue
		}
		return FieldCandidate{
			Text:             name,
			Score:            p.weights.nameScore(qualified, i),
			SourceLine:       lineIndex,
			HasQualification: qualified,
		}, true
	}
	return FieldCandidate{}, false
}

func (p *Parser) fallbackName(line string) (string, bool) {
	if len(line) < 3 || len(line) > 50 {
		return "", false
	}
	if fallbackDigitsRe.MatchString(line) || fallbackWebRe.MatchString(line) || fallbackSkipRe.MatchString(line) {
		return "", false
	}
	name := strings.TrimSpace(edgeNoiseRe.ReplaceAllString(line, ""))
	if name == "" {
		return "", false
	}
	words := strings.Fields(name)
	if name[0] < 'A' || name[0] > 'Z' {
		return "", false
	}
	if len(name) < 3 || len(name) > 40 || len(words) > 4 {
		return "", false
	}
	if name == strings.ToUpper(name) && len(words) > 3 {
		return "", false
	}
	if fallbackCompanyRe.MatchString(name) || p.nameCompanyRe.MatchString(name) {
		return "", false
	}
	return name, true
}

// termsPattern builds a case-insensitive alternation matching any of terms
// as whole words. Word boundaries are only asserted on sides where the term
// begins or ends with a word character.
func termsPattern(terms []string) *regexp.Regexp {
	alts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		alt := regexp.QuoteMeta(t)
		alt = strings.ReplaceAll(alt, " ", `\s+`)
		if isWordByte(t[0]) {
			alt = `\b` + alt
		}
		if isWordByte(t[len(t)-1]) {
			alt += `\b`
		}
		alts = append(alts, alt)
	}
	if len(alts) == 0 {
		return regexp.MustCompile(`x^`)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
