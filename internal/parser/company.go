package parser

import (
	"regexp"
	"strings"
)

var companyIndicators = []string{
	"LLC", "Inc", "Corp", "Ltd", "Company", "Co.", "Corporation", "Group", "Services",
	"Solutions", "Consulting", "Technologies", "Tech", "Systems", "Associates",
	"Partners", "Enterprises", "Industries", "International", "Global", "Holdings",
	"Studio", "Agency", "Firm", "Institute", "Foundation", "Center", "Centre",
	"University", "College", "School", "Academy", "Hospital", "Clinic", "Medical",
	"Bank", "Financial", "Insurance", "Real Estate", "Construction", "Manufacturing",
	"Association", "Industrial", "Estate", "Plant", "Office",
}

// estatePatterns name industrial estate associations and earn the estate boost.
var estatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)INDUSTRIAL\s+ESTATE.*?ASSOCIATION`),
	regexp.MustCompile(`(?i)MANUFACTURER.*?ASSOCIATION`),
}

// companyShapes follow the indicator pattern in priority order.
var companyShapes = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z\s&.,'-]{5,}$`),
	regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+$`),
	regexp.MustCompile(`[&@#$%]`),
	regexp.MustCompile(`(?i)(?:Managing|General|Executive|Sales|Marketing)\s+(?:Director|Manager|Officer)`),
}

var (
	dottedInitialsRe = regexp.MustCompile(`^[A-Z](\.[A-Z])+[A-Z]+$`)
	streetRe         = termsPattern([]string{
		"Street", "St", "Avenue", "Ave", "Road", "Rd", "Drive", "Dr", "Suite", "Ste",
		"Floor", "Fl", "Building", "Bldg", "Door", "No.",
	})
	zip5Re   = regexp.MustCompile(`\b\d{5}(-\d{4})?\b`)
	statesRe = regexp.MustCompile(`\b(?:NY|CA|TX|FL|IL|PA|OH|GA|NC|MI|NJ|VA|WA|AZ|MA|TN|IN|MO|MD|WI|CO|MN|SC|AL|LA|KY|OR|OK|CT|UT|IA|NV|AR|MS|KS|NM|NE|WV|ID|HI|NH|ME|RI|MT|DE|SD|ND|AK|VT|WY)\b`)
	citiesRe = regexp.MustCompile(`(?i)\b(?:Chennai|Mumbai|Delhi|Bangalore|Hyderabad|Pune|Kolkata)\b`)
)

// companyScorer holds the compiled indicator table for one Parser.
type companyScorer struct {
	indicator  *regexp.Regexp
	indicators []*regexp.Regexp
}

func newCompanyScorer(extra []string) *companyScorer {
	terms := dedupeFold(append(append([]string(nil), companyIndicators...), extra...))
	cs := &companyScorer{indicator: termsPattern(terms)}
	for _, t := range terms {
		cs.indicators = append(cs.indicators, termsPattern([]string{t}))
	}
	return cs
}

// extractCompany applies the known company signatures first and falls back
// to scoring every eligible line.
func (p *Parser) extractCompany(st *sideText, c Claims) (string, Claims) {
	if st.full == "" {
		return "", c
	}
	for _, sig := range p.entities.companySigs {
		if !sig.fires(st.full) {
			continue
		}
		if sig.value != "" {
			return sig.value, st.claimText(c, sig.value)
		}
		if loc := sig.extract.FindStringIndex(st.full); loc != nil {
			return st.full[loc[0]:loc[1]], c.withSpan(st, loc[0], loc[1])
		}
	}

	best, bestLine, bestScore := "", -1, 0
	for i, line := range st.lines {
		if c.LineClaimed(i) || !companyEligible(line) {
			continue
		}
		score, ok := p.scoreCompany(line)
		if !ok {
			continue
		}
		if bestLine < 0 || score > bestScore {
			best, bestLine, bestScore = line, i, score
		}
	}
	if bestLine < 0 {
		return "", c
	}
	return best, c.withLine(bestLine)
}

func companyEligible(line string) bool {
	if len(line) < 3 || len(line) > 100 {
		return false
	}
	if dottedInitialsRe.MatchString(line) || numericLeadRe.MatchString(line) {
		return false
	}
	if streetRe.MatchString(line) || zip5Re.MatchString(line) {
		return false
	}
	return !statesRe.MatchString(line) && !citiesRe.MatchString(line)
}

// scoreCompany returns the score for line, or false when no company
// pattern matches it at all.
func (p *Parser) scoreCompany(line string) (int, bool) {
	w := p.weights
	boost := 0
	matched := false
	for _, re := range estatePatterns {
		if re.MatchString(line) {
			boost, matched = w.CompanyEstateBoost, true
			break
		}
	}
	if !matched && !p.company.indicator.MatchString(line) {
		for _, re := range companyShapes {
			if re.MatchString(line) {
				matched = true
				break
			}
		}
		if !matched {
			return 0, false
		}
	}

	score := boost
	for _, re := range p.company.indicators {
		if re.MatchString(line) {
			score += w.CompanyIndicatorHit
		}
	}
	if line == strings.ToUpper(line) && len(line) > 3 {
		score += w.CompanyUpperCase
	}
	if strings.Contains(line, " ") {
		score += w.CompanyMultiWord
	}
	if len(line) >= 3 && len(line) <= 50 {
		score += w.CompanyReasonableLength
	}
	return score, true
}

// dedupeFold drops empty and case-insensitively repeated terms, keeping order.
func dedupeFold(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
