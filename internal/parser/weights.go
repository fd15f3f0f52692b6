package parser

// Weights holds the scoring table used to pick field winners.
// Zero values are replaced by defaults in ApplyDefaults.
type Weights struct {
	// Name scoring
	NameBase           int `yaml:"name_base"`            // default: 10
	NameQualifiedBase  int `yaml:"name_qualified_base"`  // default: 15
	NamePatternPenalty int `yaml:"name_pattern_penalty"` // default: 1
	NameMaxLineLength  int `yaml:"name_max_line_length"` // default: 50
	NameFallbackLines  int `yaml:"name_fallback_lines"`  // default: 5

	// Company scoring
	CompanyIndicatorHit     int `yaml:"company_indicator_hit"`     // default: 10
	CompanyUpperCase        int `yaml:"company_upper_case"`        // default: 5
	CompanyMultiWord        int `yaml:"company_multi_word"`        // default: 3
	CompanyReasonableLength int `yaml:"company_reasonable_length"` // default: 2
	CompanyEstateBoost      int `yaml:"company_estate_boost"`      // default: 15

	// Title scoring
	TitleBase           int `yaml:"title_base"`            // default: 10
	TitlePatternPenalty int `yaml:"title_pattern_penalty"` // default: 1

	// Phone validity
	PhoneMinDigits int `yaml:"phone_min_digits"` // default: 8
	PhoneMaxDigits int `yaml:"phone_max_digits"` // default: 15
}

// DefaultWeights returns the default scoring table.
func DefaultWeights() *Weights {
	return &Weights{
		NameBase:           10,
		NameQualifiedBase:  15,
		NamePatternPenalty: 1,
		NameMaxLineLength:  50,
		NameFallbackLines:  5,

		CompanyIndicatorHit:     10,
		CompanyUpperCase:        5,
		CompanyMultiWord:        3,
		CompanyReasonableLength: 2,
		CompanyEstateBoost:      15,

		TitleBase:           10,
		TitlePatternPenalty: 1,

		PhoneMinDigits: 8,
		PhoneMaxDigits: 15,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (w *Weights) ApplyDefaults() {
	d := DefaultWeights()

	if w.NameBase == 0 {
		w.NameBase = d.NameBase
	}
	if w.NameQualifiedBase == 0 {
		w.NameQualifiedBase = d.NameQualifiedBase
	}
	if w.NamePatternPenalty == 0 {
		w.NamePatternPenalty = d.NamePatternPenalty
	}
	if w.NameMaxLineLength == 0 {
		w.NameMaxLineLength = d.NameMaxLineLength
	}
	if w.NameFallbackLines == 0 {
		w.NameFallbackLines = d.NameFallbackLines
	}

	if w.CompanyIndicatorHit == 0 {
		w.CompanyIndicatorHit = d.CompanyIndicatorHit
	}
	if w.CompanyUpperCase == 0 {
		w.CompanyUpperCase = d.CompanyUpperCase
	}
	if w.CompanyMultiWord == 0 {
		w.CompanyMultiWord = d.CompanyMultiWord
	}
	if w.CompanyReasonableLength == 0 {
		w.CompanyReasonableLength = d.CompanyReasonableLength
	}
	if w.CompanyEstateBoost == 0 {
		w.CompanyEstateBoost = d.CompanyEstateBoost
	}

	if w.TitleBase == 0 {
		w.TitleBase = d.TitleBase
	}
	if w.TitlePatternPenalty == 0 {
		w.TitlePatternPenalty = d.TitlePatternPenalty
	}

	if w.PhoneMinDigits == 0 {
		w.PhoneMinDigits = d.PhoneMinDigits
	}
	if w.PhoneMaxDigits == 0 {
		w.PhoneMaxDigits = d.PhoneMaxDigits
	}
}

// nameScore is the base score for a name shape at patternIndex.
func (w *Weights) nameScore(hasQualification bool, patternIndex int) int {
	base := w.NameBase
	if hasQualification {
		base = w.NameQualifiedBase
	}
	return base - patternIndex*w.NamePatternPenalty
}

// titleScore is the score for a title pattern at patternIndex.
func (w *Weights) titleScore(patternIndex int) int {
	return w.TitleBase - patternIndex*w.TitlePatternPenalty
}
