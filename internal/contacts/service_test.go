package contacts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/meishi/internal/keyword"
	"github.com/hyperjump/meishi/internal/models"
	"github.com/hyperjump/meishi/internal/parser"
	"github.com/hyperjump/meishi/internal/storage"
)

const johnCard = "--- FRONT ---\nJohn Smith\nManaging Director\nAcme Corp\njohn@acme.com\n--- BACK ---\nwww.acme.com"

func newTestService(t *testing.T) (*Service, *storage.SQLiteStorage, *keyword.BleveIndex) {
	t.Helper()
	st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "contacts.db"))
	if err != nil {
		t.Fatal(err)
	}
	idx, err := keyword.NewMemoryIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = idx.Close()
		_ = st.Close()
	})
	p, err := parser.New()
	if err != nil {
		t.Fatal(err)
	}
	return NewService(p, st, idx), st, idx
}

func TestService_Scan(t *testing.T) {
	svc, _, _ := newTestService(t)
	res, err := svc.Scan(context.Background(), johnCard)
	if err != nil {
		t.Fatal(err)
	}
	if res.Contact.Name != "John Smith" {
		t.Errorf("Name = %q", res.Contact.Name)
	}
	if res.Contact.Email != "john@acme.com" {
		t.Errorf("Email = %q", res.Contact.Email)
	}
	if res.Contact.Website != "https://www.acme.com" {
		t.Errorf("Website = %q", res.Contact.Website)
	}
}

func TestService_ScanCanceled(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Scan(ctx, johnCard); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestService_CreateRequiresName(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), models.ContactInput{Name: "   ", Company: "Acme"})
	if !errors.Is(err, ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
}

func TestService_CreateGetUpdateDelete(t *testing.T) {
	svc, _, idx := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, models.ContactInput{
		Name:    "  Jane Doe ",
		Company: "Globex",
		Tags:    []string{"client", "Client", ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == "" || c.Name != "Jane Doe" {
		t.Errorf("created %+v", c)
	}
	if len(c.Tags) != 1 {
		t.Errorf("tags should be deduplicated, got %v", c.Tags)
	}
	if n, _ := idx.DocCount(); n != 1 {
		t.Errorf("index DocCount = %d, want 1", n)
	}

	got, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Company != "Globex" {
		t.Errorf("Company = %q", got.Company)
	}

	updated, err := svc.Update(ctx, c.ID, models.ContactInput{Name: "Jane Doe", Company: "Initech"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Company != "Initech" {
		t.Errorf("Company = %q", updated.Company)
	}
	list, err := svc.Search(ctx, &models.ContactQuery{Query: "initech"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 {
		t.Errorf("updated contact not re-indexed: %+v", list)
	}

	if _, err := svc.Update(ctx, c.ID, models.ContactInput{}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("Update without name: %v", err)
	}
	if _, err := svc.Update(ctx, "missing", models.ContactInput{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing: %v", err)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if n, _ := idx.DocCount(); n != 0 {
		t.Errorf("index DocCount = %d after delete", n)
	}
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: %v", err)
	}
}

func TestService_Ingest(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	c, created, err := svc.Ingest(ctx, johnCard, "john.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first ingest should create")
	}
	if c.Name != "John Smith" || c.Company != "Acme Corp" || c.Title != "Managing Director" {
		t.Errorf("ingested %+v", c)
	}
	if !c.HasTag(ScannedTag) {
		t.Errorf("tags = %v", c.Tags)
	}
	if c.Notes == "" || c.ScanID == "" {
		t.Errorf("notes and scan id should be set: %+v", c)
	}

	again, created, err := svc.Ingest(ctx, "  "+johnCard+"\n\n", "copy.txt")
	if err != nil {
		t.Fatal(err)
	}
	if created || again.ID != c.ID {
		t.Errorf("re-ingest should return existing contact, got created=%v id=%s", created, again.ID)
	}
}

func TestService_IngestNothingRecognized(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, _, err := svc.Ingest(context.Background(), "12345\n67890", "noise.txt")
	if !errors.Is(err, ErrNothingRecognized) {
		t.Errorf("expected ErrNothingRecognized, got %v", err)
	}
}

func TestService_SearchAndList(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, in := range []models.ContactInput{
		{Name: "John Smith", Company: "Acme Corp", Tags: []string{"client"}},
		{Name: "Jane Doe", Company: "Acme Corp", Tags: []string{"supplier"}},
		{Name: "Bob Stone", Company: "Globex"},
	} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	list, err := svc.Search(ctx, &models.ContactQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 3 || len(list.Contacts) != 3 {
		t.Errorf("list all: total=%d len=%d", list.Total, len(list.Contacts))
	}

	list, err = svc.Search(ctx, &models.ContactQuery{Tag: "client"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || list.Contacts[0].Name != "John Smith" {
		t.Errorf("list by tag: %+v", list)
	}

	list, err = svc.Search(ctx, &models.ContactQuery{Query: "acme"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 2 {
		t.Errorf("search acme: total=%d", list.Total)
	}

	list, err = svc.Search(ctx, &models.ContactQuery{Query: "acme", Tag: "supplier"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || list.Contacts[0].Name != "Jane Doe" {
		t.Errorf("search acme+supplier: %+v", list)
	}

	list, err = svc.Search(ctx, &models.ContactQuery{Query: "acme", Limit: 1, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 2 || len(list.Contacts) != 1 {
		t.Errorf("paged: total=%d len=%d", list.Total, len(list.Contacts))
	}

	list, err = svc.Search(ctx, &models.ContactQuery{Query: "globx"})
	if err != nil {
		t.Fatal(err)
	}
	if !list.AutoFuzzy || list.Total != 1 {
		t.Errorf("misspelling should fall back to fuzzy: %+v", list)
	}

	list, err = svc.Search(ctx, &models.ContactQuery{Query: "zzzzzzzz"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 0 || list.Contacts == nil || list.AutoFuzzy {
		t.Errorf("no match: %+v", list)
	}

	tags, err := svc.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Errorf("tags = %v", tags)
	}
}

func TestService_StatsAndReindex(t *testing.T) {
	svc, st, idx := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, models.ContactInput{Name: "John Smith", Tags: []string{"vip"}})
	if err != nil {
		t.Fatal(err)
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Contacts != 1 || stats.Indexed != 1 || stats.Tags != 1 {
		t.Errorf("stats = %+v", stats)
	}

	n, err := svc.Reindex(ctx, false)
	if err != nil || n != 0 {
		t.Errorf("in-sync Reindex = %d, %v", n, err)
	}

	// a contact stored behind the service's back is picked up
	if err := st.CreateContact(ctx, &models.Contact{ID: "manual", Name: "Mary Major"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	n, err = svc.Reindex(ctx, false)
	if err != nil || n != 2 {
		t.Errorf("Reindex = %d, %v", n, err)
	}
	list, err := svc.Search(ctx, &models.ContactQuery{Query: "mary"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 {
		t.Errorf("reindexed contact not searchable: %+v", list)
	}
}

func TestService_ReindexDropsStaleEntries(t *testing.T) {
	svc, st, idx := newTestService(t)
	ctx := context.Background()

	keep, err := svc.Create(ctx, models.ContactInput{Name: "John Smith"})
	if err != nil {
		t.Fatal(err)
	}
	gone, err := svc.Create(ctx, models.ContactInput{Name: "Mary Major"})
	if err != nil {
		t.Fatal(err)
	}
	// the row disappears while its index entry stays behind
	if err := st.DeleteContact(ctx, gone.ID); err != nil {
		t.Fatal(err)
	}

	n, err := svc.Reindex(ctx, false)
	if err != nil || n != 1 {
		t.Fatalf("Reindex = %d, %v", n, err)
	}
	if count, _ := idx.DocCount(); count != 1 {
		t.Errorf("indexed = %d, want 1", count)
	}
	ids, err := idx.IDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != keep.ID {
		t.Errorf("index ids = %v, want [%s]", ids, keep.ID)
	}

	// counts agree now, so a second pass has nothing to do
	if n, err := svc.Reindex(ctx, false); err != nil || n != 0 {
		t.Errorf("second Reindex = %d, %v", n, err)
	}
	list, err := svc.Search(ctx, &models.ContactQuery{Query: "mary"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 0 {
		t.Errorf("deleted contact still searchable: %+v", list)
	}
}
