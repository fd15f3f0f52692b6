package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var websitePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*\.[a-zA-Z]{2,}(?:/\S*)?`),
	regexp.MustCompile(`(?i)[a-zA-Z0-9-]+\.(?:com|org|net|edu|gov|co|io|info|biz)\b`),
}

var fileExtRe = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|gif|pdf)$`)

// extractWebsite returns the first unclaimed domain-like match whose host
// ends in a known public suffix, lower-cased and with a scheme.
func (p *Parser) extractWebsite(st *sideText, c Claims) (string, Claims) {
	for _, re := range websitePatterns {
		for _, loc := range re.FindAllStringIndex(st.full, -1) {
			if c.SpanClaimed(loc[0], loc[1]) {
				continue
			}
			if loc[0] > 0 && st.full[loc[0]-1] == '@' {
				continue
			}
			m := st.full[loc[0]:loc[1]]
			if strings.Contains(m, "@") || !strings.Contains(m, ".") || fileExtRe.MatchString(m) {
				continue
			}
			site := strings.ToLower(m)
			if !validHost(hostOf(site)) {
				continue
			}
			if !strings.HasPrefix(site, "http") {
				site = "https://" + site
			}
			return site, c.withSpan(st, loc[0], loc[1])
		}
	}
	return "", c
}

func hostOf(site string) string {
	host := site
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return strings.Trim(host, ".")
}

// validHost accepts hosts under an ICANN suffix, or a private suffix with
// more than one label, whose registrable label is longer than one letter.
func validHost(host string) bool {
	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann && !strings.Contains(suffix, ".") {
		return false
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	label := strings.TrimSuffix(etld1, "."+suffix)
	return len(label) > 1
}
