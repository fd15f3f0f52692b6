package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/meishi/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		company TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		scan_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_created_at ON contacts(created_at);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_scan_id ON contacts(scan_id) WHERE scan_id IS NOT NULL;
	`
	_, err := db.Exec(schema)
	return err
}

const contactColumns = `id, name, company, title, phone, email, website, address, notes, tags, scan_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var tagsJSON string
	var scanID sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Company, &c.Title, &c.Phone, &c.Email,
		&c.Website, &c.Address, &c.Notes, &tagsJSON, &scanID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ScanID = scanID.String
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(b), nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateContact inserts a contact. CreatedAt and UpdatedAt are set to now
// unless CreatedAt is already set.
func (s *SQLiteStorage) CreateContact(ctx context.Context, c *models.Contact) error {
	tagsJSON, err := marshalTags(c.Tags)
	if err != nil {
		return err
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (`+contactColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Company, c.Title, c.Phone, c.Email, c.Website, c.Address,
		c.Notes, tagsJSON, nullable(c.ScanID), c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// GetContact returns a contact by ID.
func (s *SQLiteStorage) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, err
}

// GetContactByScanID returns the contact ingested from the scan with the given key.
func (s *SQLiteStorage) GetContactByScanID(ctx context.Context, scanID string) (*models.Contact, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE scan_id = ?`, scanID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: scan %s", ErrNotFound, scanID)
	}
	return c, err
}

// UpdateContact updates an existing contact.
func (s *SQLiteStorage) UpdateContact(ctx context.Context, c *models.Contact) error {
	tagsJSON, err := marshalTags(c.Tags)
	if err != nil {
		return err
	}

	c.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET name = ?, company = ?, title = ?, phone = ?, email = ?,
		 website = ?, address = ?, notes = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name, c.Company, c.Title, c.Phone, c.Email, c.Website, c.Address,
		c.Notes, tagsJSON, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, c.ID)
	}
	return nil
}

// DeleteContact removes a contact by ID.
func (s *SQLiteStorage) DeleteContact(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// tagFilter matches rows whose tags array holds tag, ignoring case.
const tagFilter = `EXISTS (SELECT 1 FROM json_each(contacts.tags) WHERE lower(json_each.value) = lower(?))`

// ListContacts returns contacts newest first with offset and limit.
func (s *SQLiteStorage) ListContacts(ctx context.Context, tag string, offset, limit int) ([]*models.Contact, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + contactColumns + ` FROM contacts`
	args := []any{}
	if tag != "" {
		query += ` WHERE ` + tagFilter
		args = append(args, tag)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// ListTags returns every tag in use, unique ignoring case and sorted.
func (s *SQLiteStorage) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM contacts ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	tags := []string{}
	for rows.Next() {
		var tagsJSON string
		if err := rows.Scan(&tagsJSON); err != nil {
			return nil, err
		}
		var rowTags []string
		if err := json.Unmarshal([]byte(tagsJSON), &rowTags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
		for _, t := range rowTags {
			key := strings.ToLower(t)
			if t == "" || seen[key] {
				continue
			}
			seen[key] = true
			tags = append(tags, t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool {
		return strings.ToLower(tags[i]) < strings.ToLower(tags[j])
	})
	return tags, nil
}

// CountContacts returns the number of contacts, optionally restricted to a tag.
func (s *SQLiteStorage) CountContacts(ctx context.Context, tag string) (int64, error) {
	var count int64
	if tag == "" {
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&count)
		return count, err
	}
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE `+tagFilter, tag).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
