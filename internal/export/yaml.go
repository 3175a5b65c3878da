package export

import (
	"fmt"
	"io"

	"github.com/alvmarrod/domain-weaver/internal/graph"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes a graph as YAML
type YAMLExporter struct{}

// NewYAMLExporter creates a new YAML exporter
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

// Format returns the exporter format identifier
func (e *YAMLExporter) Format() string {
	return "yaml"
}

// Export writes g to w
func (e *YAMLExporter) Export(g *graph.Graph, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(newDocument(g)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}
