package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// KnownEntities is the lookup table of card-specific corrections and
// signatures. The generic heuristics never depend on its contents.
type KnownEntities struct {
	// KnownDomains get an "@" inserted in front of them when OCR dropped it.
	KnownDomains []string `yaml:"known_domains"`
	// EmailCorrections rewrite known OCR corruptions of specific addresses.
	EmailCorrections []EmailCorrection `yaml:"email_corrections"`
	// CompanyTerms are brand tokens that mark a line as a company and never a name.
	CompanyTerms []string `yaml:"company_terms"`
	// CompanySignatures are checked before generic company scoring.
	CompanySignatures []CompanySignature `yaml:"company_signatures"`
	// AddressTerms are extra tokens that mark a line as part of an address.
	AddressTerms []string `yaml:"address_terms"`
	// AddressSignatures capture a whole address from the side text.
	AddressSignatures []AddressSignature `yaml:"address_signatures"`
}

// EmailCorrection replaces text matching Pattern with Replacement.
type EmailCorrection struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// CompanySignature fires when every AllOf token and at least one AnyOf
// token occur in the side text (case-sensitive). It yields Value when set,
// otherwise the first match of Extract.
type CompanySignature struct {
	AllOf   []string `yaml:"all_of,omitempty"`
	AnyOf   []string `yaml:"any_of,omitempty"`
	Extract string   `yaml:"extract,omitempty"`
	Value   string   `yaml:"value,omitempty"`
}

// AddressSignature captures an address with the first group of Pattern
// and blanks out every Cleanups match in the capture. Pattern runs over the
// unclaimed lines of a side joined with "\n".
type AddressSignature struct {
	Pattern  string   `yaml:"pattern"`
	Cleanups []string `yaml:"cleanups,omitempty"`
}

// DefaultKnownEntities returns the built-in table.
func DefaultKnownEntities() *KnownEntities {
	return &KnownEntities{
		KnownDomains: []string{"indsatcorp.com", "yahoo.co.in", "gmail.com"},
		EmailCorrections: []EmailCorrection{
			{Pattern: `(?i)flow[^a-zA-Z0-9]*indsatcorp\.com`, Replacement: "flow@indsatcorp.com"},
			{Pattern: `(?i)anbuks[^a-zA-Z0-9]*yahoo[^a-zA-Z0-9]*co[^a-zA-Z0-9]*in`, Replacement: "anbuks@yahoo.co.in"},
		},
		CompanyTerms: []string{"INDSAT", "PIEMA", "FLOW", "SAFETY", "FITTINGS"},
		CompanySignatures: []CompanySignature{
			{AllOf: []string{"INDSAT", "CORPORATION"}, Value: "INDSAT CORPORATION"},
			{
				AnyOf:   []string{"PIEMA", "INDUSTRIAL ESTATE MANUFACTURER"},
				Extract: `(?i)PERUNGUDI\s+INDUSTRIAL\s+ESTATE\s+MANUFACTURER.*?ASSOCIATION`,
			},
		},
		AddressTerms: []string{"ANBU", "Nehru", "Inner Ring"},
		AddressSignatures: []AddressSignature{
			{
				Pattern:  `(?i)SALES\s*(?:&|AND)?\s*MARKETING\s*OFFICE\s*:?\s*([^.\n]*?Chennai\s*-?\s*600\s*107|[^.\n]+)`,
				Cleanups: []string{`\s*\(\s*aN[^)]*\)?\s*`, `\\+J?\s*`},
			},
		},
	}
}

// LoadKnownEntities reads a YAML table from path. Lists present in the file
// replace the built-in lists; absent lists keep their defaults.
func LoadKnownEntities(path string) (*KnownEntities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read known entities: %w", err)
	}
	ke := DefaultKnownEntities()
	if err := yaml.Unmarshal(data, ke); err != nil {
		return nil, fmt.Errorf("failed to parse known entities: %w", err)
	}
	if _, err := ke.compile(); err != nil {
		return nil, err
	}
	return ke, nil
}

// Validate compiles every pattern in the table and reports the first failure.
func (ke *KnownEntities) Validate() error {
	_, err := ke.compile()
	return err
}

type compiledCorrection struct {
	re          *regexp.Regexp
	replacement string
}

type compiledCompanySignature struct {
	allOf   []string
	anyOf   []string
	extract *regexp.Regexp
	value   string
}

type compiledAddressSignature struct {
	re       *regexp.Regexp
	cleanups []*regexp.Regexp
}

// entityTable is the compiled, read-only form of KnownEntities.
type entityTable struct {
	knownDomain  *regexp.Regexp // local part optionally separated from a known domain
	missingAt    *regexp.Regexp // local part glued to a known domain
	corrections  []compiledCorrection
	companyTerms []string
	companySigs  []compiledCompanySignature
	addressTerms []string
	addressSigs  []compiledAddressSignature
}

func (ke *KnownEntities) compile() (*entityTable, error) {
	t := &entityTable{
		companyTerms: append([]string(nil), ke.CompanyTerms...),
		addressTerms: append([]string(nil), ke.AddressTerms...),
	}

	if len(ke.KnownDomains) > 0 {
		quoted := make([]string, 0, len(ke.KnownDomains))
		for _, d := range ke.KnownDomains {
			d = strings.TrimSpace(d)
			if d == "" {
				continue
			}
			quoted = append(quoted, regexp.QuoteMeta(d))
		}
		if len(quoted) > 0 {
			alt := strings.Join(quoted, "|")
			t.knownDomain = regexp.MustCompile(`(?i)([A-Za-z0-9._%+-]*[A-Za-z0-9_%+-])\s*(` + alt + `)`)
			t.missingAt = regexp.MustCompile(`(?i)([A-Za-z0-9._%+-]*[A-Za-z0-9_%+-])(` + alt + `)`)
		}
	}

	for i, c := range ke.EmailCorrections {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("email correction %d: invalid pattern: %w", i, err)
		}
		t.corrections = append(t.corrections, compiledCorrection{re: re, replacement: c.Replacement})
	}

	for i, s := range ke.CompanySignatures {
		if s.Value == "" && s.Extract == "" {
			return nil, fmt.Errorf("company signature %d: value or extract is required", i)
		}
		cs := compiledCompanySignature{allOf: s.AllOf, anyOf: s.AnyOf, value: s.Value}
		if s.Extract != "" {
			re, err := regexp.Compile(s.Extract)
			if err != nil {
				return nil, fmt.Errorf("company signature %d: invalid extract pattern: %w", i, err)
			}
			cs.extract = re
		}
		t.companySigs = append(t.companySigs, cs)
	}

	for i, s := range ke.AddressSignatures {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("address signature %d: invalid pattern: %w", i, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("address signature %d: pattern needs a capture group", i)
		}
		as := compiledAddressSignature{re: re}
		for j, c := range s.Cleanups {
			cre, err := regexp.Compile(c)
			if err != nil {
				return nil, fmt.Errorf("address signature %d: invalid cleanup %d: %w", i, j, err)
			}
			as.cleanups = append(as.cleanups, cre)
		}
		t.addressSigs = append(t.addressSigs, as)
	}

	return t, nil
}

// fires reports whether the signature's token conditions hold for text.
func (s compiledCompanySignature) fires(text string) bool {
	for _, tok := range s.allOf {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	if len(s.anyOf) == 0 {
		return len(s.allOf) > 0
	}
	for _, tok := range s.anyOf {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
