package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/meishi/internal/config"
	"github.com/hyperjump/meishi/internal/contacts"
	"github.com/hyperjump/meishi/internal/extract"
	"github.com/hyperjump/meishi/internal/keyword"
	"github.com/hyperjump/meishi/internal/models"
	"github.com/hyperjump/meishi/internal/ocr"
	"github.com/hyperjump/meishi/internal/parser"
	"github.com/hyperjump/meishi/internal/storage"
	"go.uber.org/zap"
)

// Components holds initialized services.
type Components struct {
	Storage   storage.Storage
	Index     keyword.ContactIndex
	Parser    *parser.Parser
	Contacts  *contacts.Service
	Extractor *extract.Extractor
	// Scanner is nil when OCR is unavailable.
	Scanner *ocr.Scanner
}

func (c *Components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// IngestFile extracts card text from path and stores it as a scanned contact.
func (c *Components) IngestFile(ctx context.Context, path string) (*models.Contact, bool, error) {
	text, err := c.Extractor.Extract(ctx, path)
	if err != nil {
		return nil, false, fmt.Errorf("extract: %w", err)
	}
	return c.Contacts.Ingest(ctx, text, path)
}

// newParser builds a parser from the parser section of cfg.
func newParser(cfg *config.Config, logger *zap.Logger) (*parser.Parser, error) {
	ap, err := parser.ParseAddressPrecedence(cfg.Parser.AddressPrecedence)
	if err != nil {
		return nil, err
	}
	weights := cfg.Parser.Weights
	opts := []parser.Option{
		parser.WithWeights(&weights),
		parser.WithAddressPrecedence(ap),
		parser.WithMaxInputBytes(cfg.Parser.MaxInputBytes),
		parser.WithLogger(logger),
	}
	if cfg.Parser.EntitiesPath != "" {
		ke, err := parser.LoadKnownEntities(cfg.Parser.EntitiesPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, parser.WithKnownEntities(ke))
	}
	return parser.New(opts...)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	p, err := newParser(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize parser: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.BleveIndexPath), 0755); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	index, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	var (
		scanner *ocr.Scanner
		extOpts []extract.Option
	)
	rec, err := ocr.NewTesseractRecognizer(cfg.OCR.Languages, cfg.OCR.TessdataPrefix)
	if err != nil {
		logger.Warn("OCR disabled; image scans will be rejected", zap.Error(err))
	} else {
		scanOpts := []ocr.ScannerOption{}
		if debug {
			scanOpts = append(scanOpts, ocr.WithLogger(logger))
		}
		scanner = ocr.NewScanner(rec, scanOpts...)
		extOpts = append(extOpts, extract.WithRecognizer(rec))
	}

	svc := contacts.NewService(p, store, index, contacts.WithLogger(logger))
	// Rebuild the index when its count disagrees with storage.
	if n, err := svc.Reindex(context.Background(), false); err != nil {
		logger.Warn("reindex failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("index rebuilt from storage", zap.Int("contacts", n))
	}

	return &Components{
		Storage:   store,
		Index:     index,
		Parser:    p,
		Contacts:  svc,
		Extractor: extract.NewExtractor(extOpts...),
		Scanner:   scanner,
	}, nil
}
