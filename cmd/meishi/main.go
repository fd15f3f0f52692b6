// Package main is the meishi CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/meishi/internal/cli"
	"github.com/hyperjump/meishi/internal/config"
	"github.com/hyperjump/meishi/internal/contacts"
	"github.com/hyperjump/meishi/internal/export"
	"github.com/hyperjump/meishi/internal/models"
	"github.com/hyperjump/meishi/internal/ocr"
	"github.com/hyperjump/meishi/internal/server"
	"github.com/hyperjump/meishi/internal/storage"
	"github.com/hyperjump/meishi/internal/watcher"
	"github.com/hyperjump/meishi/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/meishi/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// When neither the local file nor the default file exists, built-in defaults are
// returned with an empty path, so one-shot commands work without any setup.
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "parse":
		runParse()
	case "scan":
		runScan()
	case "add":
		runAdd()
	case "list":
		runList()
	case "search":
		runSearch()
	case "export":
		runExport()
	case "delete":
		runDelete()
	case "ingest":
		runIngest()
	case "reindex":
		runReindex()
	case "status":
		runStatus()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("meishi version %s (tesseract %s)\n", version, ocr.Version())
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// setupCLI loads config and a stderr logger for a one-shot command.
func setupCLI(configPath string, debug bool) (*config.Config, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug || debug)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	return cfg, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (inbox changes, field decisions, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.New(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		func(ctx context.Context, path string) {
			c, created, err := components.IngestFile(ctx, path)
			if err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				return
			}
			if created {
				logger.Info("card ingested", zap.String("path", path), zap.String("id", c.ID), zap.String("name", c.Name))
			}
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	go watchSvc.SyncExistingFiles()

	srv := server.NewServer(
		components.Contacts,
		components.Scanner,
		cfg,
		logger,
		watchSvc,
		resolvedConfigPath,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	watchSvc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runParse() {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (parser weights and known entities)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	debug := fs.Bool("debug", false, "log per-side field decisions to stderr")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: meishi parse [flags] [file|-]\n\nParses raw card text from a file or stdin.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fatalf("%v", err)
	}
	cfg, logger := setupCLI(*configPath, *debug)
	defer logger.Sync()

	p, err := newParser(cfg, logger)
	if err != nil {
		fatalf("Failed to create parser: %v", err)
	}
	raw, err := readInput(fs.Arg(0), os.Stdin)
	if err != nil {
		fatalf("Failed to read input: %v", err)
	}
	res, err := p.ParseBytes(raw)
	if err != nil {
		fatalf("Parse failed: %v", err)
	}
	if err := cli.WriteParseResult(os.Stdout, res, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

// readInput reads a whole file, or stdin when path is empty or "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func runScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	front := fs.String("front", "", "front side image")
	back := fs.String("back", "", "back side image")
	save := fs.Bool("save", false, "store the result as a new contact tagged \"scanned\"")
	showText := fs.Bool("text", false, "print the recognized text before the parsed fields")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *front == "" && *back == "" {
		fmt.Println("Usage: meishi scan --front <image> [--back <image>] [--save]")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fatalf("%v", err)
	}
	cfg, logger := setupCLI(*configPath, *debug)
	defer logger.Sync()

	frontImg, err := readOptionalFile(*front)
	if err != nil {
		fatalf("Failed to read front image: %v", err)
	}
	backImg, err := readOptionalFile(*back)
	if err != nil {
		fatalf("Failed to read back image: %v", err)
	}
	rec, err := ocr.NewTesseractRecognizer(cfg.OCR.Languages, cfg.OCR.TessdataPrefix)
	if err != nil {
		fatalf("OCR unavailable: %v", err)
	}

	ctx := context.Background()
	raw, err := ocr.NewScanner(rec, ocr.WithLogger(logger)).ScanImages(ctx, frontImg, backImg)
	if err != nil {
		fatalf("Scan failed: %v", err)
	}
	if *showText {
		fmt.Printf("%s\n\n", raw)
	}

	if *save {
		components, err := initializeComponents(cfg, logger, *debug)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		c, created, err := components.Contacts.Ingest(ctx, raw, *front)
		if err != nil {
			fatalf("Save failed: %v", err)
		}
		if !created {
			fmt.Fprintf(os.Stderr, "Already ingested as %s\n", c.ID)
		}
		if err := cli.WriteContact(os.Stdout, c, format); err != nil {
			fatalf("Output failed: %v", err)
		}
		return
	}

	p, err := newParser(cfg, logger)
	if err != nil {
		fatalf("Failed to create parser: %v", err)
	}
	res, err := p.Parse(raw)
	if err != nil {
		fatalf("Parse failed: %v", err)
	}
	if err := cli.WriteParseResult(os.Stdout, res, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func readOptionalFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = always use direct storage)")
	var in models.ContactInput
	fs.StringVar(&in.Name, "name", "", "full name (required)")
	fs.StringVar(&in.Company, "company", "", "company")
	fs.StringVar(&in.Title, "title", "", "job title")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Website, "website", "", "website")
	fs.StringVar(&in.Address, "address", "", "postal address")
	fs.StringVar(&in.Notes, "notes", "", "free-form notes")
	tags := fs.String("tags", "", "comma separated tags")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(os.Args[2:])

	if strings.TrimSpace(in.Name) == "" {
		fmt.Println("Usage: meishi add --name <name> [--company ...] [--tags a,b]")
		os.Exit(1)
	}
	in.Tags = utils.SplitTags(*tags)
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fatalf("%v", err)
	}

	var (
		c    *models.Contact
		dups []contacts.Duplicate
	)
	if client := newAPIClient(*serverURL); client.available() {
		if c, err = client.createContact(in); err != nil {
			fatalf("Add failed: %v", err)
		}
		dups, _ = client.duplicates(c.ID)
	} else {
		cfg, logger := setupCLI(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		ctx := context.Background()
		if c, err = components.Contacts.Create(ctx, in); err != nil {
			fatalf("Add failed: %v", err)
		}
		dups, _ = components.Contacts.FindDuplicates(ctx, c)
	}

	if err := cli.WriteContact(os.Stdout, c, format); err != nil {
		fatalf("Output failed: %v", err)
	}
	for _, d := range dups {
		fmt.Fprintf(os.Stderr, "Possible duplicate of %s (%s): same %s\n",
			d.Contact.ID, d.Contact.Name, strings.Join(d.Reasons, ", "))
	}
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: meishi search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Every field is searched; names and companies weigh most. When nothing matches
exactly, the search is retried with typo tolerance.

Examples:
  meishi search acme
  meishi search "john smith"              # same as: meishi search john smith
  meishi search --tag vip acme
  meishi search --fuzzy jon smyth          # typo-tolerant from the start
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "meishi search acme --tag vip"
// would otherwise leave --tag unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runList() {
	runContactQuery("list", os.Args[2:], false)
}

func runSearch() {
	runContactQuery("search", searchArgsReorder(os.Args[2:]), true)
}

// runContactQuery backs both list and search; list ignores positional args.
func runContactQuery(name string, args []string, needQuery bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = always use direct storage)")
	tag := fs.String("tag", "", "only contacts with this tag")
	limit := fs.Int("limit", 20, "number of results")
	offset := fs.Int("offset", 0, "skip this many results")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one contact per line), or json (parseable)")
	if needQuery {
		fs.Usage = func() { printSearchUsage(fs) }
	}
	_ = fs.Parse(args)

	query := &models.ContactQuery{
		Tag:    *tag,
		Limit:  *limit,
		Offset: *offset,
		Fuzzy:  *fuzzy,
	}
	if needQuery {
		query.Query = buildSearchQuery(fs.Args())
		if query.Query == "" {
			printSearchUsage(fs)
			os.Exit(1)
		}
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fatalf("%v", err)
	}

	var list *models.ContactList
	if client := newAPIClient(*serverURL); client.available() {
		// The server holds the index lock, so go through its API.
		if list, err = client.listContacts(query); err != nil {
			fatalf("Search failed: %v", err)
		}
	} else {
		cfg, logger := setupCLI(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		if list, err = components.Contacts.Search(context.Background(), query); err != nil {
			fatalf("Search failed: %v", err)
		}
	}
	if err := cli.WriteContacts(os.Stdout, list, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = always use direct storage)")
	formatName := fs.String("format", "csv", "export format: csv, xlsx, or vcf")
	tag := fs.String("tag", "", "only contacts with this tag")
	out := fs.String("out", "", "output file (default business_cards_<date>.<ext> in the current directory; - for stdout)")
	_ = fs.Parse(os.Args[2:])

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		fatalf("%v", err)
	}

	var data []byte
	if client := newAPIClient(*serverURL); client.available() {
		if data, err = client.export(string(format), *tag); err != nil {
			fatalf("Export failed: %v", err)
		}
	} else {
		cfg, logger := setupCLI(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		all, err := components.Contacts.All(context.Background(), *tag)
		if err != nil {
			fatalf("Export failed: %v", err)
		}
		var buf bytes.Buffer
		if err := export.Write(&buf, format, all, cfg.Export.DateFormat); err != nil {
			fatalf("Export failed: %v", err)
		}
		data = buf.Bytes()
	}

	target := exportTarget(*out, format, time.Now())
	if target == "-" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		fatalf("Write failed: %v", err)
	}
	fmt.Printf("Exported to %s\n", target)
}

// exportTarget returns the output path, defaulting to the dated export filename.
func exportTarget(out string, format export.Format, now time.Time) string {
	if out != "" {
		return out
	}
	return export.Filename(format, now)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = always use direct storage)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: meishi delete [flags] <contact-id>...")
		os.Exit(1)
	}

	var del func(id string) error
	if client := newAPIClient(*serverURL); client.available() {
		del = client.deleteContact
	} else {
		cfg, logger := setupCLI(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		del = func(id string) error { return components.Contacts.Delete(context.Background(), id) }
	}

	failed := false
	for _, id := range fs.Args() {
		if err := del(id); err != nil {
			fmt.Fprintf(os.Stderr, "Deletion of %s failed: %v\n", id, err)
			failed = true
			continue
		}
		fmt.Printf("Contact deleted: %s\n", id)
	}
	if failed {
		os.Exit(1)
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	recursive := fs.Bool("recursive", true, "descend into subdirectories")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: meishi ingest [flags] <file-or-directory>...")
		os.Exit(1)
	}
	cfg, logger := setupCLI(*configPath, *debug)
	defer logger.Sync()

	var files []string
	for _, arg := range fs.Args() {
		info, err := os.Stat(arg)
		if err != nil {
			fatalf("Failed to stat path: %v", err)
		}
		if !info.IsDir() {
			// Single file: no extension filter
			files = append(files, arg)
			continue
		}
		found, err := watcher.ListFiles(arg, cfg.Watch.Extensions, *recursive)
		if err != nil {
			fatalf("Failed to list %s: %v", arg, err)
		}
		files = append(files, found...)
	}

	components, err := initializeComponents(cfg, logger, *debug)
	if err != nil {
		fatalf("Failed to initialize: %v", err)
	}
	defer components.Close()

	ctx := context.Background()
	var created, existing, failed int
	for _, path := range files {
		c, isNew, err := components.IngestFile(ctx, path)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		case isNew:
			created++
			fmt.Printf("%s -> %s (%s)\n", path, c.ID, c.Name)
		default:
			existing++
		}
	}
	fmt.Printf("Ingested %d card(s): %d new, %d already stored, %d failed\n", len(files), created, existing, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func runReindex() {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	force := fs.Bool("force", true, "reindex even when the index looks complete")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setupCLI(*configPath, false)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, false)
	if err != nil {
		fatalf("Failed to initialize: %v", err)
	}
	defer components.Close()
	n, err := components.Contacts.Reindex(context.Background(), *force)
	if err != nil {
		fatalf("Reindex failed: %v", err)
	}
	fmt.Printf("Reindexed %d contact(s)\n", n)
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	DatabasePath      string   `json:"database_path,omitempty"`
	BleveIndexPath    string   `json:"bleve_index_path,omitempty"`
	AddressPrecedence string   `json:"address_precedence,omitempty"`
	OCRLanguages      []string `json:"ocr_languages,omitempty"`
	OCRAvailable      bool     `json:"ocr_available"`
	WatchDirectories  []string `json:"watch_directories,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Contacts       int64                 `json:"contacts"`
	Indexed        uint64                `json:"indexed"`
	Tags           int                   `json:"tags"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	DatabaseBytes  *int64                `json:"database_bytes,omitempty"`
	IndexBytes     *int64                `json:"index_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = always use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if client := newAPIClient(*serverURL); client.available() {
		res, err := client.status()
		if err != nil {
			fatalf("Status failed: %v", err)
		}
		status = *res
	} else {
		cfg, logger := setupCLI(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		stats, err := components.Contacts.Stats(context.Background())
		if err != nil {
			fatalf("Status failed: %v", err)
		}
		status = statusResponse{
			Contacts: stats.Contacts,
			Indexed:  stats.Indexed,
			Tags:     stats.Tags,
			Config: &statusConfigResponse{
				DatabasePath:      cfg.Storage.DatabasePath,
				BleveIndexPath:    cfg.Storage.BleveIndexPath,
				AddressPrecedence: cfg.Parser.AddressPrecedence,
				OCRLanguages:      cfg.OCR.Languages,
				OCRAvailable:      components.Scanner != nil,
				WatchDirectories:  cfg.Watch.Directories,
			},
		}
		if usage, err := storage.MeasureUsage(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath); err == nil {
			total := usage.Total()
			status.DiskUsageBytes = &total
			status.DatabaseBytes = &usage.DatabaseBytes
			status.IndexBytes = &usage.IndexBytes
		}
	}

	switch *outputFormat {
	case "json":
		if err := writeIndentedJSON(os.Stdout, status); err != nil {
			fatalf("Output failed: %v", err)
		}
	case "text":
		writeStatusText(os.Stdout, &status)
	default:
		fatalf("Unknown output format %q; use text or json", *outputFormat)
	}
}

func writeIndentedJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "contacts:           %d   # stored contacts\n", status.Contacts)
	fmt.Fprintf(w, "indexed:            %d   # documents in the search index\n", status.Indexed)
	fmt.Fprintf(w, "tags:               %d   # distinct tags\n", status.Tags)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # database + index on disk\n", *status.DiskUsageBytes)
	}
	if status.Config == nil {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# configuration")
	if status.Config.DatabasePath != "" {
		fmt.Fprintf(w, "database_path:      %s\n", status.Config.DatabasePath)
	}
	if status.Config.BleveIndexPath != "" {
		fmt.Fprintf(w, "bleve_index_path:   %s\n", status.Config.BleveIndexPath)
	}
	if status.Config.AddressPrecedence != "" {
		fmt.Fprintf(w, "address_precedence: %s\n", status.Config.AddressPrecedence)
	}
	fmt.Fprintf(w, "ocr_available:      %t\n", status.Config.OCRAvailable)
	if len(status.Config.OCRLanguages) > 0 {
		fmt.Fprintf(w, "ocr_languages:      %s\n", strings.Join(status.Config.OCRLanguages, "+"))
	}
	for _, d := range status.Config.WatchDirectories {
		fmt.Fprintf(w, "watch_directory:    %s\n", d)
	}
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: meishi watch <add|remove|list> [path]")
		fmt.Println("  meishi watch add <path>     Add inbox directory to watch")
		fmt.Println("  meishi watch remove <path>  Remove inbox directory from watch")
		fmt.Println("  meishi watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[3:])
	client := newAPIClient(*serverURL)
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: meishi watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		if err := client.watchAdd(path); err != nil {
			fatalf("Add failed: %v", err)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: meishi watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		if err := client.watchRemove(path); err != nil {
			fatalf("Remove failed: %v", err)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		dirs, err := client.watchList()
		if err != nil {
			fatalf("List failed: %v", err)
		}
		for _, d := range dirs {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meishi - Business card scanner and contact store

Usage:
  meishi server [flags]             Start the HTTP server and inbox watcher
  meishi parse [flags] [file]       Parse OCR text (file or stdin) into contact fields
  meishi scan [flags]               OCR card images and parse them
  meishi add [flags]                Add a contact by hand
  meishi list [flags]               List stored contacts
  meishi search [flags] <query>     Search stored contacts
  meishi export [flags]             Export contacts to CSV, Excel or vCard
  meishi delete [flags] <id>...     Delete contacts
  meishi ingest [flags] <path>...   Ingest card files or directories
  meishi reindex [flags]            Rebuild the search index from storage
  meishi status [flags]             Show storage/index/OCR status
  meishi watch <add|remove|list>    Manage watched inbox directories
  meishi version                    Show version
  meishi help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/meishi/config.yaml)
  --debug            Enable debug logging (inbox changes, field decisions, etc.)

Parse Flags:
  --config string    Config file path (parser weights and known entities)
  --output string    Output format: text, compact, or json (default: text)
  --debug            Log per-side field decisions to stderr

Scan Flags:
  --front string     Front side image
  --back string      Back side image
  --save             Store the result as a new contact tagged "scanned"
  --text             Print the recognized text before the parsed fields
  --output string    Output format: text, compact, or json (default: text)

Add Flags:
  --name string      Full name (required)
  --company, --title, --phone, --email, --website, --address, --notes string
  --tags string      Comma separated tags

List/Search Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to use direct storage when server is not running.
  --tag string       Only contacts with this tag
  --limit int        Number of results (default: 20)
  --offset int       Skip this many results
  --fuzzy            Enable fuzzy matching for typo tolerance (default: false)
  --output string    Output format: text, compact, or json (default: text)

Export Flags:
  --format string    csv, xlsx, or vcf (default: csv)
  --tag string       Only contacts with this tag
  --out string       Output file (default: business_cards_<date>.<ext>; - for stdout)

Ingest Flags:
  --recursive        Descend into subdirectories (default: true)

Reindex Flags:
  --force            Reindex even when the index looks complete (default: true)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Watch Flags:
  --server string    Server URL (default: http://localhost:8080)

Examples:
  meishi server
  pbpaste | meishi parse
  meishi parse --output json card.txt
  meishi scan --front front.jpg --back back.jpg --save
  meishi add --name "John Smith" --company "Acme Corp" --tags vip,conference
  meishi search "acme"
  meishi search --fuzzy "jonh smith"
  meishi export --format xlsx --tag vip
  meishi ingest ~/Scans/cards
  meishi status --output json
  meishi watch add ~/Scans/inbox
  meishi watch list`)
}
