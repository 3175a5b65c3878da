package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alvmarrod/domain-weaver/internal/graph"
)

// JSONExporter writes a graph as indented JSON
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format returns the exporter format identifier
func (e *JSONExporter) Format() string {
	return "json"
}

// Export writes g to w
func (e *JSONExporter) Export(g *graph.Graph, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(newDocument(g)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
