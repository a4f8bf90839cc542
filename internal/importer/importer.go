// Package importer loads records in bulk from JSON and XLSX files,
// optionally watching a directory for new files.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldstone/quarry/internal/indexer"
	"github.com/fieldstone/quarry/internal/models"
	"github.com/fieldstone/quarry/internal/schema"
)

// Importer parses record files and feeds them to the indexer.
type Importer struct {
	indexer  *indexer.Indexer
	registry *schema.Registry
	logger   *zap.Logger // optional
}

// NewImporter creates an importer.
func NewImporter(in *indexer.Indexer, registry *schema.Registry, logger *zap.Logger) *Importer {
	return &Importer{indexer: in, registry: registry, logger: logger}
}

// ImportFile imports records from path based on its extension.
// Returns the number of records imported.
func (im *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return im.ImportJSON(ctx, f)
	case ".xlsx":
		return im.ImportXLSX(ctx, path)
	default:
		return 0, fmt.Errorf("unsupported import file type: %s", path)
	}
}

// ImportJSON reads a JSON array of record inputs and indexes each one.
func (im *Importer) ImportJSON(ctx context.Context, r io.Reader) (int, error) {
	var inputs []*models.RecordInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return 0, fmt.Errorf("failed to parse JSON records: %w", err)
	}
	count := 0
	for _, input := range inputs {
		if err := im.indexer.IndexRecord(ctx, input); err != nil {
			return count, fmt.Errorf("failed to import record %s: %w", input.ID, err)
		}
		count++
	}
	if im.logger != nil {
		im.logger.Info("JSON import complete", zap.Int("records", count))
	}
	return count, nil
}
