package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	// Initialize schema
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS expression_domains (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		main_url TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		keywords JSON NOT NULL DEFAULT '[]',
		media_type TEXT NOT NULL DEFAULT '',
		emitter_type TEXT NOT NULL DEFAULT '',
		estimated_audience INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS pages (
		territory_id INTEGER NOT NULL,
		page_id TEXT NOT NULL,
		url TEXT NOT NULL,
		expression_domain_id TEXT NOT NULL,
		depth INTEGER NOT NULL DEFAULT -1,
		facebook_like REAL,
		facebook_share REAL,
		twitter_share REAL,
		linkedin_share REAL,
		google_pagerank REAL,
		publication_date TEXT,
		PRIMARY KEY (territory_id, page_id)
	);

	CREATE TABLE IF NOT EXISTS page_links (
		link_id INTEGER PRIMARY KEY AUTOINCREMENT,
		territory_id INTEGER NOT NULL,
		source_page_id TEXT NOT NULL,
		target_page_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS domain_ranks (
		hostname TEXT PRIMARY KEY,
		global_rank INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS domain_graph_runs (
		run_id TEXT PRIMARY KEY,
		territory_id INTEGER NOT NULL,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS domain_nodes (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		node_id TEXT NOT NULL,
		attributes JSON NOT NULL,
		PRIMARY KEY (run_id, node_id),
		FOREIGN KEY (run_id) REFERENCES domain_graph_runs(run_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS domain_edges (
		run_id TEXT NOT NULL,
		source_node_id TEXT NOT NULL,
		target_node_id TEXT NOT NULL,
		weight INTEGER NOT NULL,
		PRIMARY KEY (run_id, source_node_id, target_node_id),
		FOREIGN KEY (run_id) REFERENCES domain_graph_runs(run_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_pages_territory ON pages(territory_id);
	CREATE INDEX IF NOT EXISTS idx_page_links_territory ON page_links(territory_id);
	CREATE INDEX IF NOT EXISTS idx_runs_territory ON domain_graph_runs(territory_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
