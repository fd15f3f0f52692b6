// Package export writes stored contacts as CSV, XLSX or vCard files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperjump/meishi/internal/models"
)

// Format is an export file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
	FormatVCard Format = "vcf"
)

// DefaultDateLayout formats the Date Added column when no layout is configured.
const DefaultDateLayout = "2006-01-02"

// ParseFormat accepts a format name case-insensitively. "vcard" is an alias
// for vcf and "" means csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "vcf", "vcard":
		return FormatVCard, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, xlsx or vcf)", s)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatVCard:
		return "text/vcard; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename returns business_cards_YYYY-MM-DD.<ext> for the given day.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("business_cards_%s.%s", now.Format("2006-01-02"), string(f))
}

// Write encodes contacts in format f. dateLayout applies to CSV and XLSX.
func Write(w io.Writer, f Format, contacts []*models.Contact, dateLayout string) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, contacts, dateLayout)
	case FormatXLSX:
		return WriteXLSX(w, contacts, dateLayout)
	case FormatVCard:
		return WriteVCard(w, contacts)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// header is shared by the CSV and XLSX writers.
var header = []string{"Name", "Company", "Phone", "Email", "Website", "Address", "Tags", "Notes", "Date Added"}

// row flattens a contact into spreadsheet cells. Commas in the address and
// notes become semicolons and notes are kept on one line, so the file opens
// cleanly in tools that split on commas naively.
func row(c *models.Contact, dateLayout string) []string {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	notes := strings.ReplaceAll(c.Notes, ",", ";")
	notes = strings.ReplaceAll(notes, "\r\n", " ")
	notes = strings.ReplaceAll(notes, "\n", " ")
	added := ""
	if !c.CreatedAt.IsZero() {
		added = c.CreatedAt.Local().Format(dateLayout)
	}
	return []string{
		c.Name,
		c.Company,
		c.Phone,
		c.Email,
		c.Website,
		strings.ReplaceAll(c.Address, ",", ";"),
		strings.Join(c.Tags, "; "),
		notes,
		added,
	}
}
