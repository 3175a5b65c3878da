package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/domain-weaver/internal/aggregate"
	"github.com/alvmarrod/domain-weaver/internal/storage"
)

// Tracker holds and manages aggregation metrics. Runs may record concurrently.
type Tracker struct {
	mu               sync.Mutex
	data             storage.Metrics
	totalBuildTimeMs int64
	buildCount       int
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
	}
}

// RecordRun adds the statistics of a successful aggregation run
func (t *Tracker) RecordRun(stats aggregate.Stats) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.RunsCompleted++
	t.data.PagesProcessed += stats.Pages
	t.data.PageLinksRead += stats.PageLinks
	t.data.DomainsBuilt += stats.Domains
	t.data.DomainEdgesBuilt += stats.DomainEdges
	t.data.SelfLoopsElided += stats.SelfLoops
	t.totalBuildTimeMs += stats.Duration.Milliseconds()
	t.buildCount++
}

// IncrementRunsFailed increments the failed runs counter
func (t *Tracker) IncrementRunsFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.RunsFailed++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.data
	snapshot.TotalBuildTimeMs = t.totalBuildTimeMs

	// Calculate average build time
	if t.buildCount > 0 {
		snapshot.AvgBuildTimeMs = t.totalBuildTimeMs / int64(t.buildCount)
	}

	return snapshot
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Finalize metrics
	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	t.data.TotalBuildTimeMs = t.totalBuildTimeMs

	if t.buildCount > 0 {
		t.data.AvgBuildTimeMs = t.totalBuildTimeMs / int64(t.buildCount)
	}

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress returns a one-line summary of current metrics
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Runs: %d completed, %d failed | Pages: %d | Domains: %d | Edges: %d (%d self-loops elided)",
		t.data.RunsCompleted,
		t.data.RunsFailed,
		t.data.PagesProcessed,
		t.data.DomainsBuilt,
		t.data.DomainEdgesBuilt,
		t.data.SelfLoopsElided,
	)
}
