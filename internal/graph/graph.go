// Package graph is a directed graph whose nodes and edges carry attribute
// records validated against a declared schema.
package graph

import (
	"fmt"
	"maps"
	"sync"
)

// NodeHandle references a node of the graph that created it
type NodeHandle int

// EdgeHandle references an edge of the graph that created it
type EdgeHandle int

// Node is a stored node and its attributes
type Node struct {
	Handle     NodeHandle
	ID         string
	Attributes Attributes
}

// Edge is a stored directed edge and its attributes
type Edge struct {
	Handle     EdgeHandle
	Source     NodeHandle
	Target     NodeHandle
	Attributes Attributes
}

// Attributes are only written through AddNode and AddEdge, so readers get clones
func (n *Node) clone() *Node {
	c := *n
	c.Attributes = maps.Clone(n.Attributes)
	return &c
}

func (e *Edge) clone() *Edge {
	c := *e
	c.Attributes = maps.Clone(e.Attributes)
	return &c
}

// Graph holds schema-validated nodes and edges in insertion order
type Graph struct {
	nodeSchema Schema
	edgeSchema Schema
	nodes      []*Node
	nodesByID  map[string]NodeHandle
	edges      []*Edge
	mu         sync.RWMutex
}

// New creates an empty graph bound to the given node and edge schemas
func New(nodeSchema, edgeSchema Schema) *Graph {
	return &Graph{
		nodeSchema: nodeSchema,
		edgeSchema: edgeSchema,
		nodesByID:  make(map[string]NodeHandle),
	}
}

// NodeSchema returns the schema nodes are validated against
func (g *Graph) NodeSchema() Schema {
	return g.nodeSchema
}

// EdgeSchema returns the schema edges are validated against
func (g *Graph) EdgeSchema() Schema {
	return g.edgeSchema
}

// AddNode validates attrs and registers a node under id
func (g *Graph) AddNode(id string, attrs Attributes) (NodeHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodesByID[id]; exists {
		return 0, &SchemaError{Reason: fmt.Sprintf("duplicate node id %q", id)}
	}

	validated, err := g.nodeSchema.validate(attrs)
	if err != nil {
		return 0, fmt.Errorf("node %q: %w", id, err)
	}

	handle := NodeHandle(len(g.nodes))
	g.nodes = append(g.nodes, &Node{
		Handle:     handle,
		ID:         id,
		Attributes: validated,
	})
	g.nodesByID[id] = handle

	return handle, nil
}

// AddEdge validates attrs and adds a directed edge from source to target.
// Parallel edges and self-loops are allowed.
func (g *Graph) AddEdge(source, target NodeHandle, attrs Attributes) (EdgeHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.hasNode(source) {
		return 0, &SchemaError{Reason: fmt.Sprintf("source node handle %d not found", source)}
	}
	if !g.hasNode(target) {
		return 0, &SchemaError{Reason: fmt.Sprintf("target node handle %d not found", target)}
	}

	validated, err := g.edgeSchema.validate(attrs)
	if err != nil {
		return 0, fmt.Errorf("edge %d->%d: %w", source, target, err)
	}

	handle := EdgeHandle(len(g.edges))
	g.edges = append(g.edges, &Edge{
		Handle:     handle,
		Source:     source,
		Target:     target,
		Attributes: validated,
	})

	return handle, nil
}

func (g *Graph) hasNode(h NodeHandle) bool {
	return h >= 0 && int(h) < len(g.nodes)
}

// Node returns a copy of the node behind a handle
func (g *Graph) Node(h NodeHandle) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.hasNode(h) {
		return nil, false
	}
	return g.nodes[h].clone(), true
}

// NodeByID looks a node up by the id it was registered under
func (g *Graph) NodeByID(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	h, ok := g.nodesByID[id]
	if !ok {
		return nil, false
	}
	return g.nodes[h].clone(), true
}

// Edge returns a copy of the edge behind a handle
func (g *Graph) Edge(h EdgeHandle) (*Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if h < 0 || int(h) >= len(g.edges) {
		return nil, false
	}
	return g.edges[h].clone(), true
}

// Nodes returns copies of all nodes in insertion order
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*Node, len(g.nodes))
	for i, n := range g.nodes {
		nodes[i] = n.clone()
	}
	return nodes
}

// Edges returns copies of all edges in insertion order
func (g *Graph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]*Edge, len(g.edges))
	for i, e := range g.edges {
		edges[i] = e.clone()
	}
	return edges
}

// GetStats returns the node and edge counts
func (g *Graph) GetStats() (nodeCount, edgeCount int) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes), len(g.edges)
}
