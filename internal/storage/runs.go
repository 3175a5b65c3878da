package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alvmarrod/domain-weaver/internal/domaingraph"
	"github.com/alvmarrod/domain-weaver/internal/graph"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SaveDomainGraph writes a domain graph as a new run of a territory and returns the run id.
// Nodes and edges are written in one transaction.
func (s *Storage) SaveDomainGraph(ctx context.Context, territoryID int64, g *graph.Graph) (string, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	nodeCount, edgeCount := g.GetStats()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO domain_graph_runs (run_id, territory_id, node_count, edge_count)
		VALUES (?, ?, ?, ?)
	`, runID, territoryID, nodeCount, edgeCount); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO domain_nodes (run_id, position, node_id, attributes)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, node := range g.Nodes() {
		attrs, err := json.Marshal(node.Attributes)
		if err != nil {
			return "", fmt.Errorf("failed to marshal attributes of %s: %w", node.ID, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, runID, i, node.ID, string(attrs)); err != nil {
			return "", fmt.Errorf("failed to insert domain node %s: %w", node.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO domain_edges (run_id, source_node_id, target_node_id, weight)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, edge := range g.Edges() {
		source, _ := g.Node(edge.Source)
		target, _ := g.Node(edge.Target)
		weight, _ := edge.Attributes.Int(domaingraph.AttrWeight)

		if _, err := edgeStmt.ExecContext(ctx, runID, source.ID, target.ID, weight); err != nil {
			return "", fmt.Errorf("failed to insert domain edge %s->%s: %w", source.ID, target.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	logrus.Infof("Saved run %s for territory %d: %d nodes, %d edges in %v",
		runID, territoryID, nodeCount, edgeCount, time.Since(startTime))

	return runID, nil
}

// GetRun retrieves a run by id, returns nil if not found
func (s *Storage) GetRun(ctx context.Context, runID string) (*Run, error) {
	runs, err := s.queryRuns(ctx, "WHERE run_id = ?", runID)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// ListRuns returns the runs of a territory, newest first
func (s *Storage) ListRuns(ctx context.Context, territoryID int64) ([]*Run, error) {
	return s.queryRuns(ctx, "WHERE territory_id = ?", territoryID)
}

func (s *Storage) queryRuns(ctx context.Context, where string, args ...any) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, territory_id, node_count, edge_count, created_at
		FROM domain_graph_runs
		`+where+`
		ORDER BY created_at DESC, rowid DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.RunID, &run.TerritoryID, &run.NodeCount, &run.EdgeCount, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// LoadDomainNodes returns the node ids and attributes of a run in creation order
func (s *Storage) LoadDomainNodes(ctx context.Context, runID string) ([]string, []map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, attributes
		FROM domain_nodes
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query domain nodes: %w", err)
	}
	defer rows.Close()

	var (
		ids   []string
		attrs []map[string]any
	)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, nil, fmt.Errorf("failed to scan domain node: %w", err)
		}

		var a map[string]any
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, nil, fmt.Errorf("failed to parse attributes of %s: %w", id, err)
		}
		ids = append(ids, id)
		attrs = append(attrs, a)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating domain nodes: %w", err)
	}

	return ids, attrs, nil
}

// LoadDomainEdges returns the weighted edges of a run
func (s *Storage) LoadDomainEdges(ctx context.Context, runID string) ([]DomainEdge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_node_id, target_node_id, weight
		FROM domain_edges
		WHERE run_id = ?
		ORDER BY source_node_id, target_node_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query domain edges: %w", err)
	}
	defer rows.Close()

	var edges []DomainEdge
	for rows.Next() {
		var e DomainEdge
		if err := rows.Scan(&e.Source, &e.Target, &e.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan domain edge: %w", err)
		}
		edges = append(edges, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating domain edges: %w", err)
	}

	return edges, nil
}

// PruneRuns deletes all but the newest keep runs of a territory and returns how many were deleted
func (s *Storage) PruneRuns(ctx context.Context, territoryID int64, keep int) (int, error) {
	runs, err := s.ListRuns(ctx, territoryID)
	if err != nil {
		return 0, err
	}
	if len(runs) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, run := range runs[keep:] {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM domain_graph_runs WHERE run_id = ?", run.RunID); err != nil {
			return deleted, fmt.Errorf("failed to delete run %s: %w", run.RunID, err)
		}
		deleted++
	}

	logrus.Infof("Pruned %d old runs of territory %d", deleted, territoryID)
	return deleted, nil
}
