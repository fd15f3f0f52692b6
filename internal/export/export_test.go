package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/hyperjump/meishi/internal/models"
	"github.com/xuri/excelize/v2"
)

func sampleContacts() []*models.Contact {
	return []*models.Contact{
		{
			ID:        "c1",
			Name:      "John Smith",
			Company:   "Acme Corp",
			Title:     "Managing Director",
			Phone:     "+1 555 123 4567",
			Email:     "john@acme.com",
			Website:   "www.acme.com",
			Address:   "12 Main Street, Springfield, IL",
			Notes:     "met at expo, booth 4\nfollow up",
			Tags:      []string{"vip", "expo"},
			CreatedAt: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
		},
		{ID: "c2", Name: "Priya", Tags: []string{}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{"vcf", FormatVCard, false},
		{"vCard", FormatVCard, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 11, 5, 23, 0, 0, 0, time.UTC)
	if got := Filename(FormatCSV, now); got != "business_cards_2024-11-05.csv" {
		t.Errorf("Filename = %q", got)
	}
	if got := Filename(FormatVCard, now); got != "business_cards_2024-11-05.vcf" {
		t.Errorf("Filename = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	contacts := sampleContacts()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, contacts, "02/01/2006"); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2", len(records))
	}
	if strings.Join(records[0], "|") != strings.Join(header, "|") {
		t.Errorf("header = %v", records[0])
	}
	r := records[1]
	if r[0] != "John Smith" || r[1] != "Acme Corp" || r[3] != "john@acme.com" {
		t.Errorf("row = %v", r)
	}
	if r[5] != "12 Main Street; Springfield; IL" {
		t.Errorf("address = %q", r[5])
	}
	if r[6] != "vip; expo" {
		t.Errorf("tags = %q", r[6])
	}
	if r[7] != "met at expo; booth 4 follow up" {
		t.Errorf("notes = %q", r[7])
	}
	if want := contacts[0].CreatedAt.Local().Format("02/01/2006"); r[8] != want {
		t.Errorf("date = %q, want %q", r[8], want)
	}
	if records[2][0] != "Priya" || records[2][8] != "" {
		t.Errorf("second row = %v", records[2])
	}
}

func TestWriteCSV_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, ""); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(header, ",") {
		t.Errorf("empty export = %q", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleContacts(), ""); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][8] != "Date Added" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "John Smith" || rows[1][6] != "vip; expo" {
		t.Errorf("row = %v", rows[1])
	}

	styleID, err := f.GetCellStyle(SheetName, "A1")
	if err != nil {
		t.Fatal(err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatal(err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("header should be bold")
	}
}

func TestWriteVCard(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVCard(&buf, sampleContacts()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "BEGIN:VCARD\r\n") != 2 || strings.Count(out, "END:VCARD\r\n") != 2 {
		t.Fatalf("expected two vCards:\n%s", out)
	}
	for _, want := range []string{
		"VERSION:3.0\r\n",
		"FN:John Smith\r\n",
		"N:Smith;John;;;\r\n",
		"ORG:Acme Corp\r\n",
		"TITLE:Managing Director\r\n",
		":+1 555 123 4567\r\n",
		"EMAIL;TYPE=internet:john@acme.com\r\n",
		"URL:www.acme.com\r\n",
		`:;;12 Main Street\, Springfield\, IL;;;;` + "\r\n",
		`NOTE:met at expo\, booth 4\nfollow up` + "\r\n",
		"CATEGORIES:vip\r\n",
		"CATEGORIES:expo\r\n",
		"UID:c1\r\n",
		"N:Priya;;;;\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("vCard missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "TEL;TYPE=") || !strings.Contains(out, "ADR;TYPE=work") {
		t.Errorf("typed TEL/ADR missing:\n%s", out)
	}
}

func TestWriteVCard_decodes(t *testing.T) {
	contacts := sampleContacts()
	contacts[0].Notes = strings.Repeat("follow up on the quotation, ", 6)
	var buf bytes.Buffer
	if err := WriteVCard(&buf, contacts); err != nil {
		t.Fatal(err)
	}
	for _, l := range strings.Split(buf.String(), "\r\n") {
		if len(l) > vcardLineLimit {
			t.Errorf("line too long (%d): %q", len(l), l)
		}
	}

	dec := vcard.NewDecoder(&buf)
	card, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if got := card.Value(vcard.FieldFormattedName); got != "John Smith" {
		t.Errorf("FN = %q", got)
	}
	if got := card.Value(vcard.FieldNote); got != strings.TrimSpace(contacts[0].Notes) {
		t.Errorf("NOTE = %q", got)
	}
	if got := card.Values(vcard.FieldCategories); len(got) != 2 || got[0] != "vip" || got[1] != "expo" {
		t.Errorf("CATEGORIES = %v", got)
	}
	second, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if got := second.Value(vcard.FieldUID); got != "c2" {
		t.Errorf("second UID = %q", got)
	}
}

func TestFoldLine(t *testing.T) {
	long := "NOTE:" + strings.Repeat("é", 60)
	folded := foldLine(long)
	for _, l := range strings.Split(strings.TrimSuffix(folded, "\r\n"), "\r\n") {
		if len(l) > vcardLineLimit {
			t.Errorf("line too long (%d): %q", len(l), l)
		}
	}
	unfolded := strings.ReplaceAll(strings.TrimSuffix(folded, "\r\n"), "\r\n ", "")
	if unfolded != long {
		t.Errorf("unfolded = %q", unfolded)
	}
	if got := foldLine("FN:Jo"); got != "FN:Jo\r\n" {
		t.Errorf("short line = %q", got)
	}
}

func TestWrite_dispatch(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatXLSX, FormatVCard} {
		var buf bytes.Buffer
		if err := Write(&buf, f, sampleContacts(), ""); err != nil {
			t.Errorf("Write(%s): %v", f, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%s) wrote nothing", f)
		}
	}
	if err := Write(&bytes.Buffer{}, Format("pdf"), nil, ""); err == nil {
		t.Error("expected error for unknown format")
	}
}
