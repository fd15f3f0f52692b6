package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-vcard"
	"github.com/hyperjump/meishi/internal/models"
)

// vCard lines longer than this many octets are folded.
const vcardLineLimit = 75

// WriteVCard writes one vCard 3.0 entry per contact.
func WriteVCard(w io.Writer, contacts []*models.Contact) error {
	bw := bufio.NewWriter(w)
	var buf bytes.Buffer
	enc := vcard.NewEncoder(&buf)
	for _, c := range contacts {
		buf.Reset()
		if err := enc.Encode(newCard(c)); err != nil {
			return fmt.Errorf("vcard encode %s: %w", c.ID, err)
		}
		for _, line := range strings.SplitAfter(buf.String(), "\r\n") {
			if line == "" {
				continue
			}
			if _, err := bw.WriteString(foldLine(strings.TrimSuffix(line, "\r\n"))); err != nil {
				return fmt.Errorf("vcard write: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("vcard flush: %w", err)
	}
	return nil
}

// newCard maps a contact onto vCard properties. Empty fields are left out.
func newCard(c *models.Contact) vcard.Card {
	card := vcard.Card{}
	card.SetValue(vcard.FieldVersion, "3.0")
	card.SetValue(vcard.FieldFormattedName, textValue(c.Name))
	family, given := splitName(c.Name)
	card.Add(vcard.FieldName, &vcard.Field{Value: structured(family, given, "", "", "")})

	add := func(key, value string, types ...string) {
		value = textValue(value)
		if value == "" {
			return
		}
		f := &vcard.Field{Value: value}
		if len(types) > 0 {
			f.Params = vcard.Params{vcard.ParamType: types}
		}
		card.Add(key, f)
	}
	add(vcard.FieldOrganization, c.Company)
	add(vcard.FieldTitle, c.Title)
	add(vcard.FieldTelephone, c.Phone, vcard.TypeWork, vcard.TypeVoice)
	add(vcard.FieldEmail, c.Email, "internet")
	add(vcard.FieldURL, c.Website)
	if addr := textValue(c.Address); addr != "" {
		// the whole address goes into the street component
		card.Add(vcard.FieldAddress, &vcard.Field{
			Value:  structured("", "", addr, "", "", "", ""),
			Params: vcard.Params{vcard.ParamType: {vcard.TypeWork}},
		})
	}
	add(vcard.FieldNote, c.Notes)
	for _, tag := range c.Tags {
		add(vcard.FieldCategories, tag)
	}
	add(vcard.FieldUID, c.ID)
	return card
}

// textValue folds CRLF to LF; the encoder escapes LF and commas itself.
func textValue(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}

// structured joins the components of N or ADR. A semicolon inside a
// component would start a new one, so it becomes a comma.
func structured(components ...string) string {
	for i, c := range components {
		components[i] = strings.ReplaceAll(c, ";", ",")
	}
	return strings.Join(components, ";")
}

// splitName treats the last word as the family name.
func splitName(name string) (family, given string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[len(parts)-1], strings.Join(parts[:len(parts)-1], " ")
	}
}

// foldLine returns line terminated by CRLF, split into continuation lines
// that start with a single space. Splits never break a UTF-8 sequence.
func foldLine(line string) string {
	if len(line) <= vcardLineLimit {
		return line + "\r\n"
	}
	var b strings.Builder
	limit := vcardLineLimit
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines carry the leading space
		limit = vcardLineLimit - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
	return b.String()
}
