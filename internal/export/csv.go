package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/alvmarrod/domain-weaver/internal/graph"
)

// CSVExporter writes one row per node: the id, then every declared
// attribute in sorted name order. Edges are not part of the CSV export.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format returns the exporter format identifier
func (e *CSVExporter) Format() string {
	return "csv"
}

// Export writes the nodes of g to w
func (e *CSVExporter) Export(g *graph.Graph, w io.Writer) error {
	columns := g.NodeSchema().Names()
	writer := csv.NewWriter(w)

	if err := writer.Write(append([]string{"id"}, columns...)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, n := range g.Nodes() {
		record := make([]string, 0, len(columns)+1)
		record = append(record, n.ID)
		for _, col := range columns {
			record = append(record, formatCell(n.Attributes[col]))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %s: %w", n.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
