package parser

import (
	"regexp"
	"strings"
)

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Managing\s+Director`),
	regexp.MustCompile(`(?i)Executive\s+Director`),
	regexp.MustCompile(`(?i)General\s+Manager`),
	regexp.MustCompile(`(?i)President\s*-\s*[A-Z]+`),
	regexp.MustCompile(`(?i)\b(?:CEO|CTO|CFO|COO|VP)\b`),
	regexp.MustCompile(`(?i)\b(?:Director|Manager|Executive|Officer)\b`),
}

var titleKeywordRe = termsPattern([]string{
	"Managing Director", "Executive Director", "General Manager", "Assistant Manager",
	"CEO", "CTO", "CFO", "COO", "President", "Vice President", "VP", "Director", "Manager",
	"Senior", "Junior", "Lead", "Head", "Chief", "Principal", "Associate", "Assistant",
	"Engineer", "Developer", "Designer", "Analyst", "Consultant", "Specialist", "Coordinator",
	"Administrator", "Executive", "Officer", "Supervisor", "Representative", "Agent",
	"Sales", "Marketing", "Operations", "Finance", "HR", "Human Resources", "IT",
	"Technical", "Business", "Project", "Product", "Research", "Development",
})

var titleExcludeRe = regexp.MustCompile(`(?i)\b(?:Street|Avenue|Road|Chennai|Mumbai|Delhi|Email|Ph|Tel|Mobile)\b`)

// extractTitle picks the highest-scoring line matching a title pattern.
// Keyword matches are only considered when no line matches a pattern.
func (p *Parser) extractTitle(st *sideText, c Claims) (string, Claims) {
	bestLine, bestScore := -1, 0
	keywordLine := -1
	for i, line := range st.lines {
		if c.LineClaimed(i) || !titleEligible(line) {
			continue
		}
		matched := false
		for j, re := range titlePatterns {
			if !re.MatchString(line) {
				continue
			}
			matched = true
			if score := p.weights.titleScore(j); bestLine < 0 || score > bestScore {
				bestLine, bestScore = i, score
			}
			break
		}
		if !matched && keywordLine < 0 && titleKeywordRe.MatchString(line) {
			keywordLine = i
		}
	}
	if bestLine < 0 {
		bestLine = keywordLine
	}
	if bestLine < 0 {
		return "", c
	}
	return st.lines[bestLine], c.withLine(bestLine)
}

func titleEligible(line string) bool {
	if numericLeadRe.MatchString(line) {
		return false
	}
	if len(line) > 80 || len(strings.Split(line, " ")) > 8 {
		return false
	}
	return !titleExcludeRe.MatchString(line)
}
