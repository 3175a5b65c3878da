// Package export writes domain graphs to files for downstream tools.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/alvmarrod/domain-weaver/internal/domaingraph"
	"github.com/alvmarrod/domain-weaver/internal/graph"
)

// Exporter writes a graph in one format
type Exporter interface {
	Export(g *graph.Graph, w io.Writer) error
	Format() string
}

// ForFormat returns the exporter registered for a format name
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONExporter(), nil
	case "yaml", "yml":
		return NewYAMLExporter(), nil
	case "csv":
		return NewCSVExporter(), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// document is the shape shared by the JSON and YAML exports
type document struct {
	Nodes []node `json:"nodes" yaml:"nodes"`
	Edges []edge `json:"edges" yaml:"edges"`
}

type node struct {
	ID         string         `json:"id" yaml:"id"`
	Attributes map[string]any `json:"attributes" yaml:"attributes"`
}

type edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Weight int64  `json:"weight" yaml:"weight"`
}

func newDocument(g *graph.Graph) document {
	nodes := g.Nodes()
	edges := g.Edges()

	doc := document{
		Nodes: make([]node, 0, len(nodes)),
		Edges: make([]edge, 0, len(edges)),
	}

	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, node{ID: n.ID, Attributes: n.Attributes})
	}

	for _, e := range edges {
		source, _ := g.Node(e.Source)
		target, _ := g.Node(e.Target)
		weight, _ := e.Attributes.Int(domaingraph.AttrWeight)
		doc.Edges = append(doc.Edges, edge{Source: source.ID, Target: target.ID, Weight: weight})
	}

	return doc
}
