package storage

import "time"

// Run is one stored aggregation of a territory's page graph
type Run struct {
	RunID       string
	TerritoryID int64
	NodeCount   int
	EdgeCount   int
	CreatedAt   time.Time
}

// DomainEdge is a stored weighted link between two domain nodes
type DomainEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int64  `json:"weight"`
}

// Metrics tracks aggregation statistics for export on exit
type Metrics struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	RunsCompleted     int       `json:"runs_completed"`
	RunsFailed        int       `json:"runs_failed"`
	PagesProcessed    int       `json:"pages_processed"`
	PageLinksRead     int       `json:"page_links_read"`
	DomainsBuilt      int       `json:"domains_built"`
	DomainEdgesBuilt  int       `json:"domain_edges_built"`
	SelfLoopsElided   int       `json:"self_loops_elided"`
	TotalBuildTimeMs  int64     `json:"total_build_time_ms"`
	AvgBuildTimeMs    int64     `json:"avg_build_time_ms"`
	TerminationReason string    `json:"termination_reason"`
}
