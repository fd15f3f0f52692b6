package keyword

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/meishi/internal/models"
	"github.com/hyperjump/meishi/pkg/utils"
)

// fieldBoosts weights a match by the field it occurred in.
var fieldBoosts = []struct {
	field string
	boost float64
}{
	{"name", 3},
	{"company", 2},
	{"title", 1.5},
	{"email", 1.5},
	{"phone", 1},
	{"phone_digits", 1},
	{"website", 1},
	{"address", 1},
	{"notes", 0.5},
	{"tags", 1},
}

// contactDoc is the indexed shape of a contact.
type contactDoc struct {
	Name        string   `json:"name"`
	Company     string   `json:"company"`
	Title       string   `json:"title"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	PhoneDigits string   `json:"phone_digits"`
	Website     string   `json:"website"`
	Address     string   `json:"address"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
}

func newContactDoc(c *models.Contact) contactDoc {
	return contactDoc{
		Name:        c.Name,
		Company:     c.Company,
		Title:       c.Title,
		Email:       c.Email,
		Phone:       c.Phone,
		PhoneDigits: utils.DigitsOnly(c.Phone),
		Website:     c.Website,
		Address:     c.Address,
		Notes:       c.Notes,
		Tags:        c.Tags,
	}
}

// BleveIndex implements ContactIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func contactMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so surnames and
	// company names match as written.
	textFieldMapping.Analyzer = standard.Name
	for _, fb := range fieldBoosts {
		docMapping.AddFieldMappingsAt(fb.field, textFieldMapping)
	}
	im.AddDocumentMapping("contact", docMapping)
	im.DefaultType = "contact"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path.
// If you change the index mapping in code, remove the index directory and
// the contacts will be re-indexed from storage on the next start.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, contactMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemoryIndex creates an index that lives only in memory.
func NewMemoryIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(contactMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a contact by its ID, replacing any earlier version.
func (b *BleveIndex) Index(ctx context.Context, c *models.Contact) error {
	return b.index.Index(c.ID, newContactDoc(c))
}

// Search runs query across all contact fields and returns up to limit hits,
// best first. Multi-term queries penalize contacts that match only some of
// the terms.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error) {
	terms := tokenizeQuery(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}
	fuzziness := 0
	if opts != nil && opts.FuzzyEnabled {
		fuzziness = 1
		if opts.Fuzziness > 0 {
			fuzziness = min(opts.Fuzziness, 2)
		}
	}

	reqSize := max(limit*2, 50)
	req := bleve.NewSearchRequest(buildFieldQuery(query, fuzziness))
	req.Size = reqSize
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	coverage := map[string]int{}
	if len(terms) > 1 {
		coverage = b.calculateTermCoverage(terms, reqSize, fuzziness)
	}

	hits := make([]*Hit, 0, len(results.Hits))
	for _, h := range results.Hits {
		score := h.Score
		if len(terms) > 1 {
			matched := max(coverage[h.ID], 1)
			ratio := float64(matched) / float64(len(terms))
			score *= ratio * ratio
		}
		hits = append(hits, &Hit{ID: h.ID, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// buildFieldQuery ORs a boosted match query per field.
func buildFieldQuery(text string, fuzziness int) blevequery.Query {
	queries := make([]blevequery.Query, 0, len(fieldBoosts))
	for _, fb := range fieldBoosts {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(fb.field)
		mq.SetBoost(fb.boost)
		if fuzziness > 0 {
			mq.SetFuzziness(fuzziness)
		}
		queries = append(queries, mq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// calculateTermCoverage counts how many query terms each contact matches in any field.
func (b *BleveIndex) calculateTermCoverage(terms []string, reqSize int, fuzziness int) map[string]int {
	coverage := make(map[string]int)
	for _, term := range terms {
		req := bleve.NewSearchRequest(buildFieldQuery(term, fuzziness))
		req.Size = reqSize
		results, err := b.index.Search(req)
		if err != nil {
			continue
		}
		for _, hit := range results.Hits {
			coverage[hit.ID]++
		}
	}
	return coverage
}

// Delete removes a contact from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of contacts in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// IDs returns the ID of every indexed contact.
func (b *BleveIndex) IDs(ctx context.Context) ([]string, error) {
	n, err := b.index.DocCount()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(n)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	ids := make([]string, 0, len(results.Hits))
	for _, h := range results.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
