// Package parser turns raw business card OCR text into a contact record.
//
// The pipeline is Normalize, Segment, per-side field extraction and Merge.
// Extraction runs Email, Phone, Website, Name, Company, Title and Address in
// that order; each extractor receives the Claims left by the previous one,
// so a line assigned to one field is never reused by a later field.
package parser

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/hyperjump/meishi/internal/models"
	"go.uber.org/zap"
)

// DefaultMaxInputBytes bounds a single raw scan.
const DefaultMaxInputBytes = 64 * 1024

// Parser is safe for concurrent use; it only holds compiled, read-only tables.
type Parser struct {
	weights           *Weights
	entities          *entityTable
	addressPrecedence AddressPrecedence
	maxInputBytes     int
	logger            *zap.Logger

	emailRes         []*regexp.Regexp
	nameCompanyRe    *regexp.Regexp
	addressKeywordRe *regexp.Regexp
	company          *companyScorer
}

// Option configures a Parser.
type Option func(*options)

type options struct {
	weights           *Weights
	entities          *KnownEntities
	addressPrecedence AddressPrecedence
	maxInputBytes     int
	logger            *zap.Logger
}

// WithWeights sets the scoring table. Zero fields fall back to defaults.
func WithWeights(w *Weights) Option {
	return func(o *options) {
		o.weights = w
	}
}

// WithKnownEntities replaces the built-in known-entities table.
func WithKnownEntities(ke *KnownEntities) Option {
	return func(o *options) {
		o.entities = ke
	}
}

// WithAddressPrecedence sets which address wins when a signature and the
// generic collector both produce one.
func WithAddressPrecedence(ap AddressPrecedence) Option {
	return func(o *options) {
		o.addressPrecedence = ap
	}
}

// WithMaxInputBytes bounds the size of a raw scan; n <= 0 keeps the default.
func WithMaxInputBytes(n int) Option {
	return func(o *options) {
		o.maxInputBytes = n
	}
}

// WithLogger sets a logger for per-side field decisions (debug level).
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Parser. It fails only if the known-entities table does not compile.
func New(opts ...Option) (*Parser, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	w := DefaultWeights()
	if o.weights != nil {
		cp := *o.weights
		cp.ApplyDefaults()
		w = &cp
	}
	ke := o.entities
	if ke == nil {
		ke = DefaultKnownEntities()
	}
	table, err := ke.compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile known entities: %w", err)
	}
	ap, err := ParseAddressPrecedence(string(o.addressPrecedence))
	if err != nil {
		return nil, err
	}
	maxBytes := o.maxInputBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Parser{
		weights:           w,
		entities:          table,
		addressPrecedence: ap,
		maxInputBytes:     maxBytes,
		logger:            logger,
		emailRes:          buildEmailPatterns(table),
		nameCompanyRe:     termsPattern(append(append([]string(nil), companyLikeNameTerms...), table.companyTerms...)),
		addressKeywordRe:  termsPattern(append(append([]string(nil), addressKeywords...), table.addressTerms...)),
		company:           newCompanyScorer(table.companyTerms),
	}, nil
}

var defaultParser *Parser

func init() {
	p, err := New()
	if err != nil {
		panic(err)
	}
	defaultParser = p
}

// Parse runs the default Parser on raw.
func Parse(raw string) (*models.ParseResult, error) {
	return defaultParser.Parse(raw)
}

// Parse turns one raw scan into a merged contact plus per-side breakdowns.
// Card text that yields nothing is not an error: the fields are left empty.
func (p *Parser) Parse(raw string) (*models.ParseResult, error) {
	if err := p.validate(raw); err != nil {
		return nil, err
	}

	frontText, backText := Segment(raw)
	front := p.parseSide(Front, frontText)
	back := p.parseSide(Back, backText)

	return &models.ParseResult{
		Contact: Merge(front, back),
		Front:   front,
		Back:    back,
	}, nil
}

// ParseBytes is Parse for byte input. A nil slice is rejected.
func (p *Parser) ParseBytes(raw []byte) (*models.ParseResult, error) {
	if raw == nil {
		return nil, &InvalidInputError{Reason: "no input"}
	}
	return p.Parse(string(raw))
}

func (p *Parser) validate(raw string) error {
	if len(raw) > p.maxInputBytes {
		return &InvalidInputError{Reason: fmt.Sprintf("scan is %d bytes, limit is %d", len(raw), p.maxInputBytes)}
	}
	if !utf8.ValidString(raw) {
		return &InvalidInputError{Reason: "scan is not valid UTF-8"}
	}
	return nil
}

// parseSide runs the extractors over one side, threading claims through them.
func (p *Parser) parseSide(side Side, text string) models.SideData {
	st := newSideText(text)
	if len(st.lines) == 0 {
		return models.SideData{}
	}

	var d models.SideData
	c := Claims{}
	d.Email, c = p.extractEmail(st, c)
	d.Phone, c = p.extractPhone(st, c)
	d.Website, c = p.extractWebsite(st, c)
	d.Name, c = p.extractName(st, c)
	d.Company, c = p.extractCompany(st, c)
	d.Title, c = p.extractTitle(st, c)
	d.Address, c = p.extractAddress(st, c)

	p.logger.Debug("side parsed",
		zap.String("side", string(side)),
		zap.Int("lines", len(st.lines)),
		zap.Int("claimed", c.Len()),
		zap.String("name", d.Name),
		zap.String("company", d.Company),
		zap.String("title", d.Title),
		zap.String("email", d.Email),
		zap.String("phone", d.Phone),
		zap.String("website", d.Website),
		zap.String("address", d.Address))
	return d
}
