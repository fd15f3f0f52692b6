// Package storage defines the persistence interface for contacts.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/meishi/internal/models"
)

// ErrNotFound is returned when a contact does not exist.
var ErrNotFound = errors.New("contact not found")

// Storage defines contact persistence operations.
type Storage interface {
	CreateContact(ctx context.Context, c *models.Contact) error
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	GetContactByScanID(ctx context.Context, scanID string) (*models.Contact, error)
	UpdateContact(ctx context.Context, c *models.Contact) error
	DeleteContact(ctx context.Context, id string) error

	// ListContacts returns contacts newest first. A non-empty tag restricts
	// the result to contacts carrying it; limit <= 0 means no limit.
	ListContacts(ctx context.Context, tag string, offset, limit int) ([]*models.Contact, error)
	ListTags(ctx context.Context) ([]string, error)

	CountContacts(ctx context.Context, tag string) (int64, error)

	Close() error
}
