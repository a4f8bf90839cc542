// Package cli provides output formatting for the Quarry command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fieldstone/quarry/internal/models"
)

// OutputFormat is the format for search result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteResponse writes a scored search response to w in the given format.
func WriteResponse(w io.Writer, response *models.Response, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeResponseText(w, response)
		return nil
	}
}

func writeResponseText(w io.Writer, response *models.Response) {
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.Took)
	for _, res := range response.Results {
		fmt.Fprintf(w, "%3d. [%s] %s (score %.3f)\n", res.Rank, res.Record.Kind, res.Record.ID, res.Score)
		names := make([]string, 0, len(res.Record.Fields))
		for name := range res.Record.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "     %s: %s\n", name, truncate(res.Record.Fields[name], 80))
		}
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
