// Package cli formats parse results and contact lists for the meishi command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/meishi/internal/models"
	"github.com/hyperjump/meishi/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per record.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// notesPreviewLen bounds how much of the notes the text format prints.
const notesPreviewLen = 200

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteParseResult writes a parsed card to w in the given format.
func WriteParseResult(w io.Writer, res *models.ParseResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, res)
	case OutputCompact:
		c := res.Contact
		_, err := fmt.Fprintln(w, strings.Join([]string{c.Name, c.Company, c.Phone, c.Email, c.Website, c.Address}, "\t"))
		return err
	default:
		writeParseResultText(w, res)
		return nil
	}
}

func writeParseResultText(w io.Writer, res *models.ParseResult) {
	if res.Contact.IsEmpty() {
		fmt.Fprintln(w, "Nothing recognized.")
		return
	}
	c := res.Contact
	writeField(w, "Name", c.Name)
	writeField(w, "Company", c.Company)
	writeField(w, "Phone", c.Phone)
	writeField(w, "Email", c.Email)
	writeField(w, "Website", c.Website)
	writeField(w, "Address", c.Address)
	for _, side := range []struct {
		label string
		data  models.SideData
	}{
		{"Front", res.Front},
		{"Back", res.Back},
	} {
		if side.data.IsEmpty() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s side ---\n", side.label)
		writeSide(w, side.data)
	}
}

func writeSide(w io.Writer, s models.SideData) {
	writeField(w, "Name", s.Name)
	writeField(w, "Company", s.Company)
	writeField(w, "Title", s.Title)
	writeField(w, "Phone", s.Phone)
	writeField(w, "Email", s.Email)
	writeField(w, "Website", s.Website)
	writeField(w, "Address", s.Address)
}

func writeField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%-8s %s\n", label+":", value)
}

// WriteContacts writes a contact list or search response to w.
func WriteContacts(w io.Writer, list *models.ContactList, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, list)
	case OutputCompact:
		for _, c := range list.Contacts {
			if err := writeContactCompact(w, c); err != nil {
				return err
			}
		}
		return nil
	default:
		writeContactsText(w, list)
		return nil
	}
}

func writeContactsText(w io.Writer, list *models.ContactList) {
	fmt.Fprintf(w, "\nFound %d contacts in %dms", list.Total, list.QueryTime)
	if list.AutoFuzzy {
		fmt.Fprint(w, " (no exact matches; showing fuzzy results)")
	}
	fmt.Fprint(w, "\n\n")
	for _, c := range list.Contacts {
		writeContactText(w, c)
	}
	if shown := len(list.Contacts); shown < list.Total {
		fmt.Fprintf(w, "Showing %d of %d; use --offset and --limit to page.\n", shown, list.Total)
	}
}

// WriteContact writes a single stored contact.
func WriteContact(w io.Writer, c *models.Contact, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, c)
	case OutputCompact:
		return writeContactCompact(w, c)
	default:
		writeContactText(w, c)
		return nil
	}
}

func writeContactText(w io.Writer, c *models.Contact) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "ID: %s\n", c.ID)
	writeField(w, "Name", c.Name)
	writeField(w, "Title", c.Title)
	writeField(w, "Company", c.Company)
	writeField(w, "Phone", c.Phone)
	writeField(w, "Email", c.Email)
	writeField(w, "Website", c.Website)
	writeField(w, "Address", c.Address)
	if len(c.Tags) > 0 {
		writeField(w, "Tags", strings.Join(c.Tags, ", "))
	}
	if !c.CreatedAt.IsZero() {
		writeField(w, "Added", c.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if c.Notes != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(utils.CollapseSpace(c.Notes), notesPreviewLen))
	}
	fmt.Fprintln(w)
}

func writeContactCompact(w io.Writer, c *models.Contact) error {
	_, err := fmt.Fprintln(w, strings.Join([]string{c.ID, c.Name, c.Company, c.Email, c.Phone}, "\t"))
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
