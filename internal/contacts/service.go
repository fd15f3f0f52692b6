// Package contacts coordinates the card parser, contact storage and the
// search index.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/meishi/internal/keyword"
	"github.com/hyperjump/meishi/internal/models"
	"github.com/hyperjump/meishi/internal/parser"
	"github.com/hyperjump/meishi/internal/scanid"
	"github.com/hyperjump/meishi/internal/storage"
	"go.uber.org/zap"
)

// ScannedTag is added to every contact created by Ingest.
const ScannedTag = "scanned"

// maxSearchCandidates bounds how many index hits a search loads before tag
// filtering and paging.
const maxSearchCandidates = 1000

var (
	// ErrNameRequired is returned when a contact would be saved without a name.
	ErrNameRequired = errors.New("contact name is required")
	// ErrNothingRecognized is returned by Ingest when the scan yields neither
	// a name nor a company.
	ErrNothingRecognized = errors.New("no name or company recognized in scan")
	// ErrNotFound is returned when a contact does not exist.
	ErrNotFound = storage.ErrNotFound
)

// Service runs the contact operations shared by the HTTP API, the CLI and
// the inbox watcher.
type Service struct {
	parser  *parser.Parser
	storage storage.Storage
	index   keyword.ContactIndex
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a logger; the default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a contacts service with the given dependencies.
func NewService(p *parser.Parser, st storage.Storage, idx keyword.ContactIndex, opts ...Option) *Service {
	s := &Service{
		parser:  p,
		storage: st,
		index:   idx,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan parses raw card text without storing anything.
func (s *Service) Scan(ctx context.Context, raw string) (*models.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := s.parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("card parsed",
		zap.Int("bytes", len(raw)),
		zap.Bool("empty", res.Contact.IsEmpty()),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

// Create validates and stores a new contact, then indexes it.
func (s *Service) Create(ctx context.Context, in models.ContactInput) (*models.Contact, error) {
	in = in.Trimmed()
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	c := &models.Contact{
		ID:      uuid.New().String(),
		Name:    in.Name,
		Company: in.Company,
		Title:   in.Title,
		Phone:   in.Phone,
		Email:   in.Email,
		Website: in.Website,
		Address: in.Address,
		Notes:   in.Notes,
		Tags:    nonNilTags(in.Tags),
		ScanID:  in.ScanID,
	}
	if err := s.storage.CreateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store contact: %w", err)
	}
	if err := s.index.Index(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to index contact: %w", err)
	}
	s.logger.Info("contact created", zap.String("id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// Ingest parses raw card text and stores the result as a new contact tagged
// "scanned", with the raw text kept as notes. A scan whose text was already
// ingested returns the existing contact and created=false.
func (s *Service) Ingest(ctx context.Context, raw, source string) (c *models.Contact, created bool, err error) {
	key := scanid.ScanID(raw)
	if key != "" {
		existing, err := s.storage.GetContactByScanID(ctx, key)
		if err == nil {
			s.logger.Debug("scan already ingested",
				zap.String("source", source), zap.String("id", existing.ID))
			return existing, false, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, false, err
		}
	}

	res, err := s.Scan(ctx, raw)
	if err != nil {
		return nil, false, err
	}
	in := models.InputFromRecord(res)
	if in.Name == "" {
		in.Name = in.Company
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, false, fmt.Errorf("%s: %w", source, ErrNothingRecognized)
	}
	in.Notes = strings.TrimSpace(raw)
	in.Tags = []string{ScannedTag}
	in.ScanID = key

	c, err = s.Create(ctx, in)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("scan ingested", zap.String("source", source), zap.String("id", c.ID))
	return c, true, nil
}

// Get returns a contact by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Contact, error) {
	return s.storage.GetContact(ctx, id)
}

// Update replaces the editable fields of a contact and re-indexes it.
func (s *Service) Update(ctx context.Context, id string, in models.ContactInput) (*models.Contact, error) {
	in = in.Trimmed()
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	c, err := s.storage.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Company = in.Company
	c.Title = in.Title
	c.Phone = in.Phone
	c.Email = in.Email
	c.Website = in.Website
	c.Address = in.Address
	c.Notes = in.Notes
	c.Tags = nonNilTags(in.Tags)
	if err := s.storage.UpdateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if err := s.index.Index(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to index contact: %w", err)
	}
	s.logger.Info("contact updated", zap.String("id", c.ID))
	return c, nil
}

// Delete removes a contact from storage and the index.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteContact(ctx, id); err != nil {
		return err
	}
	if err := s.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from index: %w", err)
	}
	s.logger.Info("contact deleted", zap.String("id", id))
	return nil
}

// Tags returns every tag in use.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	return s.storage.ListTags(ctx)
}

// All returns every contact, newest first, optionally restricted to a tag.
func (s *Service) All(ctx context.Context, tag string) ([]*models.Contact, error) {
	return s.storage.ListContacts(ctx, strings.TrimSpace(tag), 0, 0)
}

// Search lists contacts matching q. An empty query lists contacts newest
// first; otherwise results come from the index, best first. When an exact
// search finds nothing it is retried with fuzzy matching.
func (s *Service) Search(ctx context.Context, q *models.ContactQuery) (*models.ContactList, error) {
	startTime := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q.Query = strings.TrimSpace(q.Query)
	q.Tag = strings.TrimSpace(q.Tag)

	out := &models.ContactList{Query: q.Query, Tag: q.Tag}
	if q.Query == "" {
		contacts, err := s.storage.ListContacts(ctx, q.Tag, q.Offset, q.Limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list contacts: %w", err)
		}
		total, err := s.storage.CountContacts(ctx, q.Tag)
		if err != nil {
			return nil, fmt.Errorf("failed to count contacts: %w", err)
		}
		out.Contacts = nonNilContacts(contacts)
		out.Total = int(total)
		out.QueryTime = time.Since(startTime).Milliseconds()
		return out, nil
	}

	hits, err := s.index.Search(ctx, q.Query, maxSearchCandidates, &keyword.SearchOptions{FuzzyEnabled: q.Fuzzy})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(hits) == 0 && !q.Fuzzy {
		hits, err = s.index.Search(ctx, q.Query, maxSearchCandidates, &keyword.SearchOptions{FuzzyEnabled: true})
		if err != nil {
			return nil, fmt.Errorf("fuzzy search failed: %w", err)
		}
		out.AutoFuzzy = len(hits) > 0
	}

	var matched []*models.Contact
	for _, h := range hits {
		c, err := s.storage.GetContact(ctx, h.ID)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("stale index entry", zap.String("id", h.ID))
			continue
		}
		if err != nil {
			return nil, err
		}
		if q.Tag != "" && !c.HasTag(q.Tag) {
			continue
		}
		matched = append(matched, c)
	}

	out.Total = len(matched)
	start := min(q.Offset, len(matched))
	end := min(q.Offset+q.Limit, len(matched))
	out.Contacts = nonNilContacts(matched[start:end])
	out.QueryTime = time.Since(startTime).Milliseconds()
	s.logger.Debug("contacts searched",
		zap.String("query", q.Query),
		zap.Int("hits", len(hits)),
		zap.Int("total", out.Total),
		zap.Bool("auto_fuzzy", out.AutoFuzzy),
	)
	return out, nil
}

// Stats summarizes the contact store.
type Stats struct {
	Contacts int64  `json:"contacts"`
	Indexed  uint64 `json:"indexed"`
	Tags     int    `json:"tags"`
}

// Stats returns contact, index and tag counts.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	n, err := s.storage.CountContacts(ctx, "")
	if err != nil {
		return nil, err
	}
	indexed, err := s.index.DocCount()
	if err != nil {
		return nil, err
	}
	tags, err := s.storage.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Contacts: n, Indexed: indexed, Tags: len(tags)}, nil
}

// Reindex rebuilds the index from storage when the two disagree on the
// number of contacts: entries storage no longer has are dropped and every
// stored contact is indexed again. Returns how many contacts were indexed.
func (s *Service) Reindex(ctx context.Context, force bool) (int, error) {
	count, err := s.storage.CountContacts(ctx, "")
	if err != nil {
		return 0, err
	}
	indexed, err := s.index.DocCount()
	if err != nil {
		return 0, err
	}
	if !force && uint64(count) == indexed {
		return 0, nil
	}
	all, err := s.storage.ListContacts(ctx, "", 0, 0)
	if err != nil {
		return 0, err
	}
	stored := make(map[string]bool, len(all))
	for _, c := range all {
		stored[c.ID] = true
	}
	indexedIDs, err := s.index.IDs(ctx)
	if err != nil {
		return 0, err
	}
	stale := 0
	for _, id := range indexedIDs {
		if stored[id] {
			continue
		}
		if err := s.index.Delete(ctx, id); err != nil {
			return 0, fmt.Errorf("failed to drop stale index entry %s: %w", id, err)
		}
		stale++
	}
	for _, c := range all {
		if err := s.index.Index(ctx, c); err != nil {
			return 0, fmt.Errorf("failed to index contact %s: %w", c.ID, err)
		}
	}
	s.logger.Info("contacts reindexed",
		zap.Int("count", len(all)), zap.Uint64("was_indexed", indexed), zap.Int("stale_removed", stale))
	return len(all), nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nonNilContacts(cs []*models.Contact) []*models.Contact {
	if cs == nil {
		return []*models.Contact{}
	}
	return cs
}
