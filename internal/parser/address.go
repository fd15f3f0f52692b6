package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// AddressPrecedence decides which address wins when both a known address
// signature and the generic line collector produce one.
type AddressPrecedence string

const (
	// PreferSignature keeps the signature capture (default).
	PreferSignature AddressPrecedence = "signature"
	// PreferGeneric keeps the joined address lines.
	PreferGeneric AddressPrecedence = "generic"
)

// ParseAddressPrecedence validates s. The empty string means PreferSignature.
func ParseAddressPrecedence(s string) (AddressPrecedence, error) {
	switch AddressPrecedence(strings.ToLower(strings.TrimSpace(s))) {
	case "", PreferSignature:
		return PreferSignature, nil
	case PreferGeneric:
		return PreferGeneric, nil
	default:
		return "", fmt.Errorf("unknown address precedence %q (want %q or %q)", s, PreferSignature, PreferGeneric)
	}
}

var addressKeywords = []string{
	"Street", "St", "Avenue", "Ave", "Road", "Rd", "Drive", "Dr", "Suite", "Ste", "Floor", "Fl",
	"Building", "Bldg", "Unit", "Apt", "Door", "No.", "Plot", "Estate", "Industrial", "Link",
	"Centre", "Center", "Office", "Marketing", "Sales", "Manufacturing", "Plant",
}

var indianCities = []string{
	"Chennai", "Mumbai", "Delhi", "Bangalore", "Hyderabad", "Pune", "Kolkata",
	"Ahmedabad", "Koyambedu", "Perungudi",
}

var (
	cityRe         = termsPattern(indianCities)
	zipPinRe       = regexp.MustCompile(`\b\d{5,6}(-\d{4})?\b`)
	officeRe       = regexp.MustCompile(`(?i)\b(?:OFFICE|PLANT|MANUFACTURING|SALES|MARKETING)\b`)
	digitRe        = regexp.MustCompile(`\d`)
	numericPunctRe = regexp.MustCompile(`^[0-9\s\-()]+$`)
)

// extractAddress joins every unclaimed address-like line and resolves it
// against the known address signatures according to the configured precedence.
func (p *Parser) extractAddress(st *sideText, c Claims) (string, Claims) {
	var parts []string
	out := c
	for i, line := range st.lines {
		if c.LineClaimed(i) || !p.isAddressLine(line) {
			continue
		}
		parts = append(parts, line)
		out = out.withLine(i)
	}
	generic := strings.Join(parts, ", ")
	signature := p.signatureAddress(st, c)

	switch {
	case signature == "":
		return generic, out
	case generic == "":
		return signature, out
	case p.addressPrecedence == PreferGeneric:
		return generic, out
	default:
		return signature, out
	}
}

func (p *Parser) isAddressLine(line string) bool {
	if p.addressKeywordRe.MatchString(line) || zipPinRe.MatchString(line) || cityRe.MatchString(line) || officeRe.MatchString(line) {
		return true
	}
	return digitRe.MatchString(line) && len(line) > 10 && !strings.Contains(line, "@") && !numericPunctRe.MatchString(line)
}

// signatureAddress matches the address signatures against the lines no
// earlier extractor claimed, joined with newlines.
func (p *Parser) signatureAddress(st *sideText, c Claims) string {
	free := make([]string, 0, len(st.lines))
	for i, line := range st.lines {
		if !c.LineClaimed(i) {
			free = append(free, line)
		}
	}
	text := strings.Join(free, "\n")
	for _, sig := range p.entities.addressSigs {
		m := sig.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		addr := strings.TrimSpace(m[1])
		for _, re := range sig.cleanups {
			addr = re.ReplaceAllString(addr, " ")
		}
		addr = strings.TrimSpace(whitespaceRe.ReplaceAllString(addr, " "))
		if addr != "" {
			return addr
		}
	}
	return ""
}
