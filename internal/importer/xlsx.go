package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fieldstone/quarry/internal/models"
)

// ImportXLSX reads a spreadsheet where each sheet holds records of one kind
// (the sheet name), the first row gives the field names, and every following
// row is a record. Sheets whose name is not a registered kind are skipped.
func (im *Importer) ImportXLSX(ctx context.Context, path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	count := 0
	for _, sheet := range f.GetSheetList() {
		kind := strings.ToLower(strings.TrimSpace(sheet))
		if !im.registry.Has(kind) {
			if im.logger != nil {
				im.logger.Warn("skipping sheet with unregistered kind", zap.String("sheet", sheet))
			}
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return count, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		header := rows[0]
		for _, row := range rows[1:] {
			fields := make(map[string]string, len(header))
			for i, name := range header {
				name = strings.TrimSpace(name)
				if name == "" || i >= len(row) {
					continue
				}
				if value := strings.TrimSpace(row[i]); value != "" {
					fields[name] = value
				}
			}
			if len(fields) == 0 {
				continue
			}
			input := &models.RecordInput{Kind: kind, Fields: fields}
			if err := im.indexer.IndexRecord(ctx, input); err != nil {
				return count, fmt.Errorf("failed to import row from sheet %q: %w", sheet, err)
			}
			count++
		}
	}
	if im.logger != nil {
		im.logger.Info("XLSX import complete", zap.String("path", path), zap.Int("records", count))
	}
	return count, nil
}
