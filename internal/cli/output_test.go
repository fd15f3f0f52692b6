package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/meishi/internal/models"
)

func sampleParseResult() *models.ParseResult {
	return &models.ParseResult{
		Contact: models.ContactRecord{
			Name:    "John Smith",
			Company: "Acme Corp",
			Email:   "john@acme.com",
			Website: "https://www.acme.com",
		},
		Front: models.SideData{Name: "John Smith", Company: "Acme Corp", Title: "Managing Director", Email: "john@acme.com"},
		Back:  models.SideData{Website: "https://www.acme.com"},
	}
}

func sampleList() *models.ContactList {
	return &models.ContactList{
		Query:     "acme",
		QueryTime: 7,
		Total:     3,
		Contacts: []*models.Contact{
			{
				ID:        "c1",
				Name:      "John Smith",
				Company:   "Acme Corp",
				Email:     "john@acme.com",
				Tags:      []string{"vip", "scanned"},
				Notes:     "--- FRONT SIDE ---\nJohn Smith\nAcme Corp",
				CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
			},
			{ID: "c2", Name: "Jane Doe", Company: "Acme Labs"},
		},
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"compact", OutputCompact, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteParseResult_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParseResult(&buf, sampleParseResult(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"Name:    John Smith", "Company: Acme Corp", "--- Front side ---", "Title:   Managing Director", "--- Back side ---"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
	if strings.Contains(out, "Phone:") {
		t.Errorf("empty fields should be omitted:\n%s", out)
	}
}

func TestWriteParseResult_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParseResult(&buf, &models.ParseResult{}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Nothing recognized") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteParseResult_JSONAndCompact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParseResult(&buf, sampleParseResult(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.ParseResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Contact.Name != "John Smith" || decoded.Front.Title != "Managing Director" {
		t.Errorf("decoded = %+v", decoded)
	}

	buf.Reset()
	if err := WriteParseResult(&buf, sampleParseResult(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	want := "John Smith\tAcme Corp\t\tjohn@acme.com\thttps://www.acme.com\t\n"
	if buf.String() != want {
		t.Errorf("compact = %q, want %q", buf.String(), want)
	}
}

func TestWriteContacts_text(t *testing.T) {
	var buf bytes.Buffer
	list := sampleList()
	list.AutoFuzzy = true
	if err := WriteContacts(&buf, list, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Found 3 contacts in 7ms",
		"fuzzy",
		"ID: c1",
		"Tags:    vip, scanned",
		"--- FRONT SIDE --- John Smith Acme Corp",
		"ID: c2",
		"Showing 2 of 3",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteContacts_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteContacts(&buf, sampleList(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.ContactList
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Total != 3 || len(decoded.Contacts) != 2 || decoded.Contacts[1].ID != "c2" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteContacts_compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteContacts(&buf, sampleList(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "c1\tJohn Smith\tAcme Corp\tjohn@acme.com\t" {
		t.Errorf("line = %q", lines[0])
	}
}

func TestWriteContact_unknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	c := sampleList().Contacts[1]
	if err := WriteContact(&buf, c, OutputFormat("unknown")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "ID: c2") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}
