package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/meishi/internal/contacts"
	"github.com/hyperjump/meishi/internal/models"
)

// apiClient talks to a running meishi server. One-shot commands use it when
// the server is up, since the server holds the Bleve index lock.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// available reports whether the server answers its health check.
func (c *apiClient) available() bool {
	if c.base == "" {
		return false
	}
	hc := &http.Client{Timeout: 500 * time.Millisecond}
	resp, err := hc.Get(c.base + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// do sends body as JSON (when non-nil), checks the status and decodes the
// response into out (when non-nil).
func (c *apiClient) do(method, path string, body interface{}, wantStatus int, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) listContacts(q *models.ContactQuery) (*models.ContactList, error) {
	v := url.Values{}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Fuzzy {
		v.Set("fuzzy", "true")
	}
	var list models.ContactList
	if err := c.do(http.MethodGet, "/api/v1/contacts?"+v.Encode(), nil, http.StatusOK, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *apiClient) createContact(in models.ContactInput) (*models.Contact, error) {
	var out models.Contact
	if err := c.do(http.MethodPost, "/api/v1/contacts", in, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) deleteContact(id string) error {
	return c.do(http.MethodDelete, "/api/v1/contacts/"+url.PathEscape(id), nil, http.StatusOK, nil)
}

func (c *apiClient) duplicates(id string) ([]contacts.Duplicate, error) {
	var out struct {
		Duplicates []contacts.Duplicate `json:"duplicates"`
	}
	if err := c.do(http.MethodGet, "/api/v1/contacts/"+url.PathEscape(id)+"/duplicates", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Duplicates, nil
}

func (c *apiClient) export(format, tag string) ([]byte, error) {
	v := url.Values{"format": {format}}
	if tag != "" {
		v.Set("tag", tag)
	}
	resp, err := c.http.Get(c.base + "/api/v1/export?" + v.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return b, nil
}

func (c *apiClient) status() (*statusResponse, error) {
	var s statusResponse
	if err := c.do(http.MethodGet, "/api/v1/status", nil, http.StatusOK, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *apiClient) watchList() ([]string, error) {
	var out struct {
		Directories []string `json:"directories"`
	}
	if err := c.do(http.MethodGet, "/api/v1/watch/directories", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Directories, nil
}

func (c *apiClient) watchAdd(path string) error {
	body := map[string]interface{}{"path": path, "sync": true}
	return c.do(http.MethodPost, "/api/v1/watch/directories", body, http.StatusCreated, nil)
}

func (c *apiClient) watchRemove(path string) error {
	return c.do(http.MethodDelete, "/api/v1/watch/directories?path="+url.QueryEscape(path), nil, http.StatusOK, nil)
}
