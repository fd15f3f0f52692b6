package config

import "github.com/hyperjump/meishi/internal/parser"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/meishi/data/db/contacts.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/meishi/data/indices/bleve"
	}
	if cfg.Parser.MaxInputBytes == 0 {
		cfg.Parser.MaxInputBytes = parser.DefaultMaxInputBytes
	}
	if cfg.Parser.AddressPrecedence == "" {
		cfg.Parser.AddressPrecedence = string(parser.PreferSignature)
	}
	cfg.Parser.Weights.ApplyDefaults()
	if len(cfg.OCR.Languages) == 0 {
		cfg.OCR.Languages = []string{"eng"}
	}
	if cfg.Export.DateFormat == "" {
		cfg.Export.DateFormat = "2006-01-02"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".pdf", ".docx", ".odt", ".rtf", ".png", ".jpg", ".jpeg", ".tif", ".tiff"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
