package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alvmarrod/domain-weaver/internal/aggregate"
	"github.com/alvmarrod/domain-weaver/internal/pagegraph"
)

// UpsertExpressionDomain inserts or replaces the metadata of a domain
func (s *Storage) UpsertExpressionDomain(ctx context.Context, id string, md aggregate.DomainMetadata) error {
	keywords := md.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO expression_domains
			(id, name, main_url, title, description, keywords, media_type, emitter_type, estimated_audience)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = EXCLUDED.name,
			main_url = EXCLUDED.main_url,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			keywords = EXCLUDED.keywords,
			media_type = EXCLUDED.media_type,
			emitter_type = EXCLUDED.emitter_type,
			estimated_audience = EXCLUDED.estimated_audience
	`, id, md.Name, md.MainURL, md.Title, md.Description, string(keywordsJSON), md.MediaType, md.EmitterType, md.EstimatedAudience)
	if err != nil {
		return fmt.Errorf("failed to upsert expression domain: %w", err)
	}
	return nil
}

// LoadExpressionDomains returns the metadata of every known domain
func (s *Storage) LoadExpressionDomains(ctx context.Context) (aggregate.MetadataMap, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, main_url, title, description, keywords, media_type, emitter_type, estimated_audience
		FROM expression_domains
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load expression domains: %w", err)
	}
	defer rows.Close()

	domains := make(aggregate.MetadataMap)
	for rows.Next() {
		var (
			id       string
			keywords string
			md       aggregate.DomainMetadata
		)
		if err := rows.Scan(&id, &md.Name, &md.MainURL, &md.Title, &md.Description, &keywords,
			&md.MediaType, &md.EmitterType, &md.EstimatedAudience); err != nil {
			return nil, fmt.Errorf("failed to scan expression domain: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &md.Keywords); err != nil {
			return nil, fmt.Errorf("failed to parse keywords of domain %s: %w", id, err)
		}
		domains[id] = md
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expression domains: %w", err)
	}

	return domains, nil
}

// UpsertDomainRank sets the global rank of a hostname
func (s *Storage) UpsertDomainRank(ctx context.Context, hostname string, rank int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domain_ranks (hostname, global_rank)
		VALUES (?, ?)
		ON CONFLICT(hostname) DO UPDATE SET global_rank = EXCLUDED.global_rank
	`, hostname, rank)
	if err != nil {
		return fmt.Errorf("failed to upsert domain rank: %w", err)
	}
	return nil
}

// LoadDomainRanks returns the whole hostname rank table
func (s *Storage) LoadDomainRanks(ctx context.Context) (aggregate.RankTable, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT hostname, global_rank FROM domain_ranks")
	if err != nil {
		return nil, fmt.Errorf("failed to load domain ranks: %w", err)
	}
	defer rows.Close()

	ranks := make(aggregate.RankTable)
	for rows.Next() {
		var (
			hostname string
			rank     int
		)
		if err := rows.Scan(&hostname, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan domain rank: %w", err)
		}
		ranks[hostname] = rank
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating domain ranks: %w", err)
	}

	return ranks, nil
}

// InsertPage stores a page of a territory. Null metrics are stored as SQL NULL.
func (s *Storage) InsertPage(ctx context.Context, territoryID int64, p pagegraph.Page) error {
	var publication sql.NullString
	if p.PublicationDate != "" {
		publication = sql.NullString{String: p.PublicationDate, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (territory_id, page_id, url, expression_domain_id, depth,
			facebook_like, facebook_share, twitter_share, linkedin_share, google_pagerank, publication_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, territoryID, p.ID, p.URL, p.DomainID, p.Depth,
		nullMetric(p.FacebookLike), nullMetric(p.FacebookShare), nullMetric(p.TwitterShare),
		nullMetric(p.LinkedinShare), nullMetric(p.GooglePagerank), publication)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	return nil
}

// InsertLink stores a hyperlink between two pages of a territory
func (s *Storage) InsertLink(ctx context.Context, territoryID int64, fromID, toID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_links (territory_id, source_page_id, target_page_id)
		VALUES (?, ?, ?)
	`, territoryID, fromID, toID)
	if err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}
	return nil
}

// ListTerritories returns the ids of territories that have pages
func (s *Storage) ListTerritories(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT territory_id FROM pages ORDER BY territory_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list territories: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan territory: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating territories: %w", err)
	}

	return ids, nil
}

// LoadPageGraph builds the page graph of a territory, pages and links in insertion order
func (s *Storage) LoadPageGraph(ctx context.Context, territoryID int64) (*pagegraph.Graph, error) {
	pg := pagegraph.New()

	rows, err := s.db.QueryContext(ctx, `
		SELECT page_id, url, expression_domain_id, depth,
			facebook_like, facebook_share, twitter_share, linkedin_share, google_pagerank, publication_date
		FROM pages
		WHERE territory_id = ?
		ORDER BY rowid ASC
	`, territoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                        pagegraph.Page
			fbLike, fbShare, twShare sql.NullFloat64
			liShare, pagerank        sql.NullFloat64
			publication              sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.URL, &p.DomainID, &p.Depth,
			&fbLike, &fbShare, &twShare, &liShare, &pagerank, &publication); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		p.FacebookLike = metricFromNull(fbLike)
		p.FacebookShare = metricFromNull(fbShare)
		p.TwitterShare = metricFromNull(twShare)
		p.LinkedinShare = metricFromNull(liShare)
		p.GooglePagerank = metricFromNull(pagerank)
		p.PublicationDate = publication.String

		if err := pg.AddPage(p); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}

	links, err := s.db.QueryContext(ctx, `
		SELECT source_page_id, target_page_id
		FROM page_links
		WHERE territory_id = ?
		ORDER BY link_id ASC
	`, territoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query page links: %w", err)
	}
	defer links.Close()

	for links.Next() {
		var from, to string
		if err := links.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan page link: %w", err)
		}
		if err := pg.AddLink(from, to); err != nil {
			return nil, fmt.Errorf("territory %d: %w", territoryID, err)
		}
	}
	if err := links.Err(); err != nil {
		return nil, fmt.Errorf("error iterating page links: %w", err)
	}

	return pg, nil
}

// nullMetric stores both absent encodings as NULL
func nullMetric(m pagegraph.Metric) sql.NullFloat64 {
	if !m.Computed() {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: m.Value, Valid: true}
}

func metricFromNull(v sql.NullFloat64) pagegraph.Metric {
	if !v.Valid {
		return pagegraph.Metric{}
	}
	return pagegraph.Value(v.Float64)
}
