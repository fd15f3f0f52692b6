// Package models defines core data structures for parsed cards, stored contacts, and queries.
package models

import (
	"strings"
	"time"
)

// ContactRecord is the merged result of parsing one business card.
// Every field defaults to the empty string when nothing was recognised.
type ContactRecord struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	Address string `json:"address"`
}

// IsEmpty reports whether no field was recognised.
func (r ContactRecord) IsEmpty() bool {
	return r == ContactRecord{}
}

// Contact is a stored business card contact.
type Contact struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Company   string    `json:"company" db:"company"`
	Title     string    `json:"title" db:"title"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	Website   string    `json:"website" db:"website"`
	Address   string    `json:"address" db:"address"`
	Notes     string    `json:"notes" db:"notes"`
	Tags      []string  `json:"tags" db:"tags"`
	ScanID    string    `json:"scan_id,omitempty" db:"scan_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasTag reports whether c carries tag (case-insensitive).
func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ContactInput is the input for creating or updating a contact.
type ContactInput struct {
	Name    string   `json:"name"`
	Company string   `json:"company,omitempty"`
	Title   string   `json:"title,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Email   string   `json:"email,omitempty"`
	Website string   `json:"website,omitempty"`
	Address string   `json:"address,omitempty"`
	Notes   string   `json:"notes,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	ScanID  string   `json:"scan_id,omitempty"`
}

// Trimmed returns a copy of in with surrounding whitespace removed from every
// field and empty or duplicate tags dropped.
func (in ContactInput) Trimmed() ContactInput {
	out := ContactInput{
		Name:    strings.TrimSpace(in.Name),
		Company: strings.TrimSpace(in.Company),
		Title:   strings.TrimSpace(in.Title),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Website: strings.TrimSpace(in.Website),
		Address: strings.TrimSpace(in.Address),
		Notes:   strings.TrimSpace(in.Notes),
		ScanID:  strings.TrimSpace(in.ScanID),
	}
	seen := make(map[string]bool, len(in.Tags))
	for _, t := range in.Tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Tags = append(out.Tags, t)
	}
	return out
}

// InputFromRecord builds a ContactInput from a parsed record. Title comes
// from the side breakdown since it is not part of the merged record.
func InputFromRecord(res *ParseResult) ContactInput {
	title := res.Front.Title
	if title == "" {
		title = res.Back.Title
	}
	return ContactInput{
		Name:    res.Contact.Name,
		Company: res.Contact.Company,
		Title:   title,
		Phone:   res.Contact.Phone,
		Email:   res.Contact.Email,
		Website: res.Contact.Website,
		Address: res.Contact.Address,
	}
}
