package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/meishi/internal/config"
	"github.com/hyperjump/meishi/internal/contacts"
	"github.com/hyperjump/meishi/internal/export"
	"github.com/hyperjump/meishi/internal/models"
	"github.com/hyperjump/meishi/internal/ocr"
	"github.com/hyperjump/meishi/internal/parser"
	"github.com/hyperjump/meishi/internal/storage"
	"go.uber.org/zap"
)

type parseRequest struct {
	Text *string `json:"text"`
}

// parseBodyLimit bounds a parse request body: the largest accepted scan plus
// room for JSON escaping.
func (s *Server) parseBodyLimit() int64 {
	n := parser.DefaultMaxInputBytes
	if s.config != nil && s.config.Parser.MaxInputBytes > 0 {
		n = s.config.Parser.MaxInputBytes
	}
	return int64(n)*2 + 4096
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.parseBodyLimit())).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == nil {
		s.respondServiceError(w, "parse", &parser.InvalidInputError{Reason: "text is required"})
		return
	}
	s.logger.Debug("parse request", zap.Int("bytes", len(*req.Text)))
	res, err := s.contacts.Scan(r.Context(), *req.Text)
	if err != nil {
		s.respondServiceError(w, "parse", err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// scanResponse is returned by POST /api/v1/scan. Contact is set when the
// upload asked for the result to be saved.
type scanResponse struct {
	*models.ParseResult
	Text    string          `json:"text"`
	Contact *models.Contact `json:"saved_contact,omitempty"`
	Created bool            `json:"created,omitempty"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		s.respondError(w, http.StatusNotImplemented, "OCR not available")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	front, err := formFile(r, "front")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	back, err := formFile(r, "back")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("scan request", zap.Int("front_bytes", len(front)), zap.Int("back_bytes", len(back)))

	ctx := r.Context()
	raw, err := s.scanner.ScanImages(ctx, front, back)
	if err != nil {
		s.respondServiceError(w, "scan", err)
		return
	}
	res, err := s.contacts.Scan(ctx, raw)
	if err != nil {
		s.respondServiceError(w, "scan", err)
		return
	}
	out := scanResponse{ParseResult: res, Text: raw}
	if save, _ := strconv.ParseBool(r.FormValue("save")); save {
		c, created, err := s.contacts.Ingest(ctx, raw, "upload")
		if err != nil {
			s.respondServiceError(w, "scan save", err)
			return
		}
		out.Contact = c
		out.Created = created
	}
	s.respondJSON(w, http.StatusOK, out)
}

// formFile reads an optional multipart file field; a missing field yields nil.
func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &models.ContactQuery{
		Query: q.Get("q"),
		Tag:   q.Get("tag"),
	}
	var err error
	if query.Offset, err = intParam(q.Get("offset")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	if query.Limit, err = intParam(q.Get("limit")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if v := q.Get("fuzzy"); v != "" {
		if query.Fuzzy, err = strconv.ParseBool(v); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid fuzzy")
			return
		}
	}
	s.logger.Debug("list contacts request",
		zap.String("query", query.Query), zap.String("tag", query.Tag), zap.Int("limit", query.Limit))
	list, err := s.contacts.Search(r.Context(), query)
	if err != nil {
		s.respondServiceError(w, "list contacts", err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readContactInput(w, r)
	if !ok {
		return
	}
	c, err := s.contacts.Create(r.Context(), in)
	if err != nil {
		s.respondServiceError(w, "create contact", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.contacts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, "get contact", err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readContactInput(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	s.logger.Debug("update contact request", zap.String("id", id))
	c, err := s.contacts.Update(r.Context(), id, in)
	if err != nil {
		s.respondServiceError(w, "update contact", err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete contact request", zap.String("id", id))
	if err := s.contacts.Delete(r.Context(), id); err != nil {
		s.respondServiceError(w, "delete contact", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleContactDuplicates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.contacts.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, "duplicates", err)
		return
	}
	dups, err := s.contacts.FindDuplicates(ctx, c)
	if err != nil {
		s.respondServiceError(w, "duplicates", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"duplicates": dups})
}

// readContactInput validates the request body; on failure it has already
// written the error response.
func (s *Server) readContactInput(w http.ResponseWriter, r *http.Request) (models.ContactInput, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return models.ContactInput{}, false
	}
	in, err := decodeContactInput(body)
	if err != nil {
		var se *schemaError
		if errors.As(err, &se) {
			s.respondError(w, http.StatusUnprocessableEntity, se.Error())
		} else {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
		}
		return models.ContactInput{}, false
	}
	return in, true
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.contacts.Tags(r.Context())
	if err != nil {
		s.respondServiceError(w, "tags", err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	all, err := s.contacts.All(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		s.respondServiceError(w, "export", err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, all, s.config.Export.DateFormat); err != nil {
		s.respondServiceError(w, "export", err)
		return
	}
	s.logger.Debug("export", zap.String("format", string(format)), zap.Int("contacts", len(all)))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(format, time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.contacts.Stats(r.Context())
	if err != nil {
		s.logger.Error("status: stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"contacts": stats.Contacts,
		"indexed":  stats.Indexed,
		"tags":     stats.Tags,
	}

	cfg := s.config
	configInfo := map[string]interface{}{
		"database_path":      cfg.Storage.DatabasePath,
		"bleve_index_path":   cfg.Storage.BleveIndexPath,
		"address_precedence": cfg.Parser.AddressPrecedence,
		"ocr_languages":      cfg.OCR.Languages,
		"ocr_available":      s.scanner != nil,
	}
	if s.watch != nil {
		configInfo["watch_directories"] = s.watch.Directories()
	}
	resp["config"] = configInfo

	if usage, err := storage.MeasureUsage(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath); err == nil {
		resp["disk_usage_bytes"] = usage.Total()
		resp["database_bytes"] = usage.DatabaseBytes
		resp["index_bytes"] = usage.IndexBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	dirs := s.watch.Directories()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": dirs})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("watch remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

// persistWatchDirectories writes the current watch list back to the config
// file. Only the directory list changes; the file's other settings stay as
// written.
func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.config == nil {
		return
	}
	s.configMu.Lock()
	s.config.Watch.Directories = s.watch.Directories()
	err := config.SaveWatchDirectories(s.configPath, s.config.Watch.Directories)
	s.configMu.Unlock()
	if err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

// respondServiceError maps service and parser errors to HTTP status codes.
func (s *Server) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "contact not found")
	case errors.Is(err, contacts.ErrNameRequired), errors.Is(err, parser.ErrInvalidInput), errors.Is(err, ocr.ErrNoImages):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ocr.ErrNoText), errors.Is(err, contacts.ErrNothingRecognized):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ocr.ErrUnavailable):
		s.respondError(w, http.StatusNotImplemented, err.Error())
	default:
		s.logger.Error(op+" failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
