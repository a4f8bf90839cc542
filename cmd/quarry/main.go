// Package main is the Quarry CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
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

	"go.uber.org/zap"

	"github.com/fieldstone/quarry/internal/cli"
	"github.com/fieldstone/quarry/internal/config"
	"github.com/fieldstone/quarry/internal/importer"
	"github.com/fieldstone/quarry/internal/index"
	"github.com/fieldstone/quarry/internal/indexer"
	"github.com/fieldstone/quarry/internal/models"
	"github.com/fieldstone/quarry/internal/schema"
	"github.com/fieldstone/quarry/internal/search"
	"github.com/fieldstone/quarry/internal/server"
	"github.com/fieldstone/quarry/internal/storage"
	"github.com/fieldstone/quarry/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/quarry/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
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
	case "search":
		runSearch()
	case "count":
		runCount()
	case "add":
		runAdd()
	case "import":
		runImport()
	case "reindex":
		runReindex()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("quarry version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: quarry <command> [flags]

Commands:
  server    start the HTTP API server
  search    search records (term from remaining args)
  count     count matching records
  add       add a single record (field=value args)
  import    import records from a .json or .xlsx file
  reindex   purge and rebuild the search index from storage
  status    show record counts and disk usage
  version   print version
  help      print this help
`)
}

// components holds the wired storage, index, and search dependencies.
type components struct {
	Store    storage.Store
	Index    index.Index
	Registry *schema.Registry
	Engine   *search.Engine
	Indexer  *indexer.Indexer
}

// Close closes the storage and index.
func (c *components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	idx, err := index.NewBleveIndex(cfg.Storage.IndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	registry := schema.NewRegistry(cfg.Kinds)
	engine := search.NewEngine(idx, store, registry, &cfg.Search)
	opts := []indexer.Option{}
	if debug {
		opts = append(opts, indexer.WithLogger(logger))
	}
	in := indexer.NewIndexer(store, idx, registry, &cfg.Search, opts...)
	return &components{
		Store:    store,
		Index:    idx,
		Registry: registry,
		Engine:   engine,
		Indexer:  in,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
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

	comps, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Import.Directory != "" {
		im := importer.NewImporter(comps.Indexer, comps.Registry, logger)
		watch := importer.NewWatcher(cfg.Import.Directory, cfg.Import.Extensions, im, logger)
		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start import watcher", zap.Error(err))
		}
		defer watch.Stop()
	}

	srv := server.NewServer(comps.Engine, comps.Indexer, comps.Store, comps.Registry, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildTerm joins all positional args with spaces so multi-word terms work
// the same with or without shell quoting.
func buildTerm(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// queryFlags holds the flags shared by search and count.
type queryFlags struct {
	configPath *string
	serverURL  *string
	kind       *string
	fields     *string
	mode       *string
	from       *int
	to         *int
}

func addQueryFlags(fs *flag.FlagSet) queryFlags {
	return queryFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		serverURL:  fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)"),
		kind:       fs.String("kind", "device", "record kind to search"),
		fields:     fs.String("fields", "", "comma-separated fields to search (default: all fields of the kind)"),
		mode:       fs.String("mode", string(models.ModePhraseWildcard), "search mode: phrase, phrase_wildcard, any_keyword, or field_match"),
		from:       fs.Int("from", 0, "result window start"),
		to:         fs.Int("to", 0, "result window end (0 = unpaged)"),
	}
}

func (qf queryFlags) query(term string) models.Query {
	var fields []string
	for _, f := range strings.Split(*qf.fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return models.Query{
		Kind:   *qf.kind,
		Fields: fields,
		Term:   term,
		Mode:   models.Mode(*qf.mode),
		From:   *qf.from,
		To:     *qf.to,
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	qf := addQueryFlags(fs)
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	term := buildTerm(fs.Args())
	if term == "" {
		fmt.Fprintf(os.Stderr, "Usage: quarry search [flags] <term>\n")
		fs.PrintDefaults()
		os.Exit(1)
	}
	q := qf.query(term)

	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}

	var response *models.Response
	var err error
	if *qf.serverURL != "" {
		// Use the HTTP API when the server is running (avoids Bleve/SQLite lock conflict).
		response, err = searchViaHTTP(*qf.serverURL, q)
	} else {
		response, err = func() (*models.Response, error) {
			comps, initErr := openDirect(*qf.configPath)
			if initErr != nil {
				return nil, initErr
			}
			defer comps.Close()
			return comps.Engine.SearchScored(context.Background(), q)
		}()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteResponse(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runCount() {
	fs := flag.NewFlagSet("count", flag.ExitOnError)
	qf := addQueryFlags(fs)
	_ = fs.Parse(os.Args[2:])

	term := buildTerm(fs.Args())
	if term == "" {
		fmt.Fprintf(os.Stderr, "Usage: quarry count [flags] <term>\n")
		fs.PrintDefaults()
		os.Exit(1)
	}
	q := qf.query(term)

	var count uint64
	var err error
	if *qf.serverURL != "" {
		count, err = countViaHTTP(*qf.serverURL, q)
	} else {
		var comps *components
		comps, err = openDirect(*qf.configPath)
		if err == nil {
			defer comps.Close()
			count, err = comps.Engine.Count(context.Background(), q)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(count)
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	kind := fs.String("kind", "device", "record kind")
	id := fs.String("id", "", "record ID (generated when empty)")
	_ = fs.Parse(os.Args[2:])

	fields := make(map[string]string)
	for _, arg := range fs.Args() {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			fmt.Fprintf(os.Stderr, "Usage: quarry add [flags] field=value [field=value ...]\n")
			os.Exit(1)
		}
		fields[name] = value
	}
	if len(fields) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: quarry add [flags] field=value [field=value ...]\n")
		os.Exit(1)
	}

	comps, err := openDirect(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	input := &models.RecordInput{ID: *id, Kind: *kind, Fields: fields}
	if err := comps.Indexer.IndexRecord(context.Background(), input); err != nil {
		fmt.Fprintf(os.Stderr, "Add failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added record %s\n", input.ID)
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: quarry import [flags] <file.json|file.xlsx>\n")
		os.Exit(1)
	}

	comps, err := openDirect(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	im := importer.NewImporter(comps.Indexer, comps.Registry, nil)
	total := 0
	for _, path := range fs.Args() {
		n, err := im.ImportFile(context.Background(), path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed for %s: %v\n", path, err)
			os.Exit(1)
		}
		total += n
	}
	fmt.Printf("Imported %d records\n", total)
}

func runReindex() {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	comps, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer comps.Close()

	indexed, err := comps.Indexer.Rebuild(context.Background(), comps.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rebuilt index with %d records\n", indexed)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}

// openDirect loads config and wires components for direct (serverless) access.
func openDirect(configPath string) (*components, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return initializeComponents(cfg, logger, cfg.Debug)
}

func searchViaHTTP(serverURL string, q models.Query) (*models.Response, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search/scored", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func countViaHTTP(serverURL string, q models.Query) (uint64, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return 0, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search/count", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Count uint64 `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return out.Count, nil
}
