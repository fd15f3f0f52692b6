package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/meishi/internal/config"
	"github.com/hyperjump/meishi/internal/contacts"
	"github.com/hyperjump/meishi/internal/export"
	"github.com/hyperjump/meishi/internal/models"
	"go.uber.org/zap"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"acme corp", "-tag", "vip"},
			expected: []string{"-tag", "vip", "acme corp"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-tag", "vip", "acme corp"},
			expected: []string{"-tag", "vip", "acme corp"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"acme corp"},
			expected: []string{"acme corp"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"john", "smith", "-limit", "5"},
			expected: []string{"-limit", "5", "john", "smith"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"acme"}, "acme"},
		{"multiple words", []string{"john", "smith"}, "john smith"},
		{"single quoted phrase", []string{"john smith"}, "john smith"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./contacts.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_defaultsWhenNoFile(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("a system config exists at the default path")
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Server.Port != 8080 || cfg.Export.DateFormat == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./contacts.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}

func TestReadInput(t *testing.T) {
	stdin := strings.NewReader("from stdin")
	for _, arg := range []string{"", "-"} {
		got, err := readInput(arg, stdin)
		if err != nil {
			t.Fatal(err)
		}
		if arg == "" && string(got) != "from stdin" {
			t.Errorf("readInput(%q) = %q", arg, got)
		}
	}
	path := filepath.Join(t.TempDir(), "card.txt")
	if err := os.WriteFile(path, []byte("from file"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := readInput(path, nil)
	if err != nil || string(got) != "from file" {
		t.Errorf("readInput(file) = %q, %v", got, err)
	}
}

func TestExportTarget(t *testing.T) {
	now := time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)
	if got := exportTarget("", export.FormatXLSX, now); got != "business_cards_2024-02-29.xlsx" {
		t.Errorf("default target = %q", got)
	}
	if got := exportTarget("-", export.FormatCSV, now); got != "-" {
		t.Errorf("stdout target = %q", got)
	}
	if got := exportTarget("/tmp/out.vcf", export.FormatVCard, now); got != "/tmp/out.vcf" {
		t.Errorf("explicit target = %q", got)
	}
}

func TestNewParser_rejectsUnknownPrecedence(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Parser.AddressPrecedence = "whatever"
	if _, err := newParser(cfg, zap.NewNop()); err == nil {
		t.Error("expected error for unknown address precedence")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Storage.DatabasePath = filepath.Join(dir, "db", "contacts.db")
	cfg.Storage.BleveIndexPath = filepath.Join(dir, "indices", "bleve")
	config.ApplyDefaults(cfg)
	return cfg
}

func TestInitializeComponents_IngestFile(t *testing.T) {
	cfg := testConfig(t)
	components, err := initializeComponents(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()

	card := filepath.Join(t.TempDir(), "card.txt")
	text := "--- FRONT ---\nJohn Smith\nManaging Director\nAcme Corp\njohn@acme.com\n--- BACK ---\nwww.acme.com"
	if err := os.WriteFile(card, []byte(text), 0600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	c, created, err := components.IngestFile(ctx, card)
	if err != nil {
		t.Fatal(err)
	}
	if !created || c.Name != "John Smith" || !c.HasTag(contacts.ScannedTag) {
		t.Errorf("ingested = %+v created=%v", c, created)
	}
	again, created, err := components.IngestFile(ctx, card)
	if err != nil {
		t.Fatal(err)
	}
	if created || again.ID != c.ID {
		t.Errorf("second ingest should return the stored contact, got %s created=%v", again.ID, created)
	}

	if _, _, err := components.IngestFile(ctx, filepath.Join(t.TempDir(), "card.xyz")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestInitializeComponents_rebuildsIndex(t *testing.T) {
	cfg := testConfig(t)
	components, err := initializeComponents(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := components.Contacts.Create(context.Background(), models.ContactInput{Name: "Jane Doe"}); err != nil {
		t.Fatal(err)
	}
	components.Close()

	// Lose the index; the next start rebuilds it from storage.
	if err := os.RemoveAll(cfg.Storage.BleveIndexPath); err != nil {
		t.Fatal(err)
	}
	components, err = initializeComponents(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()
	n, err := components.Index.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("indexed = %d, want 1", n)
	}
}

func TestAPIClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/v1/contacts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("q") != "acme" || r.URL.Query().Get("tag") != "vip" {
				http.Error(w, "bad query", http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(models.ContactList{Total: 1, Contacts: []*models.Contact{{ID: "c1", Name: "John"}}})
		case http.MethodPost:
			var in models.ContactInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(models.Contact{ID: "new", Name: in.Name})
		}
	})
	mux.HandleFunc("/api/v1/contacts/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"contact not found"}`))
	})
	mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"contacts":3,"indexed":3,"tags":2,"disk_usage_bytes":1024,"config":{"ocr_available":true}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newAPIClient(srv.URL + "/")
	if !client.available() {
		t.Fatal("server should be available")
	}
	list, err := client.listContacts(&models.ContactQuery{Query: "acme", Tag: "vip"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || list.Contacts[0].ID != "c1" {
		t.Errorf("list = %+v", list)
	}
	c, err := client.createContact(models.ContactInput{Name: "Jane"})
	if err != nil || c.ID != "new" || c.Name != "Jane" {
		t.Errorf("create = %+v, %v", c, err)
	}
	err = client.deleteContact("missing")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("delete missing: %v", err)
	}
	st, err := client.status()
	if err != nil {
		t.Fatal(err)
	}
	if st.Contacts != 3 || st.DiskUsageBytes == nil || *st.DiskUsageBytes != 1024 || !st.Config.OCRAvailable {
		t.Errorf("status = %+v", st)
	}

	if newAPIClient("").available() {
		t.Error("empty server URL should never be available")
	}
}

func TestWriteStatusText(t *testing.T) {
	disk := int64(2048)
	var buf bytes.Buffer
	writeStatusText(&buf, &statusResponse{
		Contacts:       5,
		Indexed:        5,
		Tags:           2,
		DiskUsageBytes: &disk,
		Config: &statusConfigResponse{
			DatabasePath:     "/data/contacts.db",
			OCRLanguages:     []string{"eng", "jpn"},
			WatchDirectories: []string{"/inbox"},
		},
	})
	out := buf.String()
	for _, sub := range []string{"contacts:           5", "disk_usage_bytes:   2048", "ocr_languages:      eng+jpn", "watch_directory:    /inbox"} {
		if !strings.Contains(out, sub) {
			t.Errorf("status text missing %q:\n%s", sub, out)
		}
	}
}
