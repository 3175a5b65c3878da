// Package aggregate contracts a page-level link graph into a domain-level
// graph: one node per expression domain carrying statistics over its pages,
// one weighted edge per ordered pair of linked domains.
package aggregate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alvmarrod/domain-weaver/internal/domaingraph"
	"github.com/alvmarrod/domain-weaver/internal/graph"
	"github.com/alvmarrod/domain-weaver/internal/pagegraph"
	"github.com/sirupsen/logrus"
)

var (
	// ErrMissingMetadata is returned when a page's domain has no metadata record
	ErrMissingMetadata = errors.New("missing domain metadata")
	// ErrUnresolvedDomain is returned when a link endpoint has no domain node
	ErrUnresolvedDomain = errors.New("unresolved domain reference")
)

// PageSource is the page-level graph being aggregated
type PageSource interface {
	Pages() []pagegraph.Page
	Links() []pagegraph.Link
}

// Stats describes one aggregation run
type Stats struct {
	Pages       int
	PageLinks   int
	Domains     int
	SelfLoops   int
	DomainEdges int
	Duration    time.Duration
}

// Result is the output of Aggregate
type Result struct {
	Graph *graph.Graph
	Stats Stats
}

type options struct {
	nodeSchema   graph.Schema
	edgeSchema   graph.Schema
	socialImpact SocialImpactFunc
	logger       logrus.FieldLogger
}

// Option configures a transform
type Option func(*options)

// WithSchema builds the output over alternative schemas. Computed attributes
// the node schema does not declare are left out.
func WithSchema(nodeSchema, edgeSchema graph.Schema) Option {
	return func(o *options) {
		o.nodeSchema = nodeSchema
		o.edgeSchema = edgeSchema
	}
}

// WithSocialImpact replaces the per-page social impact score
func WithSocialImpact(fn SocialImpactFunc) Option {
	return func(o *options) {
		o.socialImpact = fn
	}
}

// WithLogger sets the logger debug output goes to
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Transform builds the domain graph of pages. A nil rank table is treated as empty.
func Transform(pages PageSource, ranks RankTable, domains MetadataLookup, opts ...Option) (*graph.Graph, error) {
	res, err := Aggregate(pages, ranks, domains, opts...)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// Aggregate is Transform with run statistics
func Aggregate(pages PageSource, ranks RankTable, domains MetadataLookup, opts ...Option) (*Result, error) {
	o := options{
		nodeSchema:   domaingraph.NodeSchema,
		edgeSchema:   domaingraph.EdgeSchema,
		socialImpact: SocialImpact,
		logger:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if domains == nil {
		domains = MetadataMap(nil)
	}

	start := time.Now()
	t := &transform{
		opts:         o,
		ranks:        ranks,
		domains:      domains,
		out:          graph.New(o.nodeSchema, o.edgeSchema),
		pageToDomain: make(map[string]graph.NodeHandle),
	}

	if err := t.makeDomainNodes(pages.Pages()); err != nil {
		return nil, err
	}
	if err := t.makeDomainEdges(pages.Links()); err != nil {
		return nil, err
	}

	t.stats.Duration = time.Since(start)
	o.logger.WithFields(logrus.Fields{
		"pages":      t.stats.Pages,
		"links":      t.stats.PageLinks,
		"domains":    t.stats.Domains,
		"edges":      t.stats.DomainEdges,
		"self_loops": t.stats.SelfLoops,
	}).Debugf("Domain graph built in %v", t.stats.Duration)

	return &Result{Graph: t.out, Stats: t.stats}, nil
}

type transform struct {
	opts    options
	ranks   RankTable
	domains MetadataLookup
	out     *graph.Graph
	stats   Stats

	// page id -> domain node; a lookup only, pages never hold domain nodes
	pageToDomain map[string]graph.NodeHandle
}

type domainPair struct {
	source, target graph.NodeHandle
}

func (t *transform) makeDomainNodes(pages []pagegraph.Page) error {
	t.stats.Pages = len(pages)

	// Group by domain, keeping the order domains are first seen in
	var order []string
	groups := make(map[string][]pagegraph.Page)
	for _, p := range pages {
		if _, seen := groups[p.DomainID]; !seen {
			order = append(order, p.DomainID)
		}
		groups[p.DomainID] = append(groups[p.DomainID], p)
	}

	for _, domainID := range order {
		group := groups[domainID]

		md, ok := t.domains.Metadata(domainID)
		if !ok {
			return fmt.Errorf("%w: domain %q", ErrMissingMetadata, domainID)
		}

		name := md.Name
		if name == "" {
			name = domainID
		}

		handle, err := t.out.AddNode(name, t.project(t.domainAttributes(domainID, name, md, group)))
		if err != nil {
			return fmt.Errorf("failed to add domain node %q: %w", name, err)
		}

		for _, p := range group {
			t.pageToDomain[p.ID] = handle
		}
		t.opts.logger.Debugf("Domain %s: %d pages", name, len(group))
	}

	t.stats.Domains = len(order)
	return nil
}

func (t *transform) domainAttributes(domainID, name string, md DomainMetadata, pages []pagegraph.Page) graph.Attributes {
	// All pages of a domain are assumed to share the first page's hostname
	rank := t.ranks.Lookup(Hostname(pages[0].URL))

	likes := facebookLike.summarize(pages)
	fbShares := facebookShare.summarize(pages)
	twShares := twitterShare.summarize(pages)
	liShares := linkedinShare.summarize(pages)
	pagerank := googlePagerank.summarize(pages)

	audience := md.EstimatedAudience
	if audience <= 0 {
		audience = -1
	}

	return graph.Attributes{
		domaingraph.AttrExpressionDomainID: domainID,
		domaingraph.AttrTitle:              name,
		domaingraph.AttrURLs:               strings.Join(pageURLs(pages), " "),
		domaingraph.AttrDomainTitle:        orDefault(md.Title, name),
		domaingraph.AttrMediaType:          md.MediaType,
		domaingraph.AttrEmitterType:        md.EmitterType,
		domaingraph.AttrDescription:        md.Description,
		domaingraph.AttrKeywords:           strings.Join(md.Keywords, " / "),
		domaingraph.AttrNbExpressions:      len(pages),
		domaingraph.AttrBaseURL:            orDefault(md.MainURL, name),
		domaingraph.AttrDepth:              minDepth(pages),

		domaingraph.AttrGlobalAlexaRank:        rank,
		domaingraph.AttrInverseGlobalAlexaRank: 1 / float64(rank),

		domaingraph.AttrMinFacebookLike:    likes.Min,
		domaingraph.AttrMaxFacebookLike:    likes.Max,
		domaingraph.AttrMedianFacebookLike: likes.Median,

		domaingraph.AttrMinFacebookShare:    fbShares.Min,
		domaingraph.AttrMaxFacebookShare:    fbShares.Max,
		domaingraph.AttrMedianFacebookShare: fbShares.Median,

		domaingraph.AttrMinTwitterShare:    twShares.Min,
		domaingraph.AttrMaxTwitterShare:    twShares.Max,
		domaingraph.AttrMedianTwitterShare: twShares.Median,

		domaingraph.AttrMinLinkedinShare:    liShares.Min,
		domaingraph.AttrMaxLinkedinShare:    liShares.Max,
		domaingraph.AttrMedianLinkedinShare: liShares.Median,

		domaingraph.AttrMinGooglePagerank:    pagerank.Min,
		domaingraph.AttrMaxGooglePagerank:    pagerank.Max,
		domaingraph.AttrMedianGooglePagerank: pagerank.Median,

		domaingraph.AttrSumLikes:     likes.Sum,
		domaingraph.AttrSumShares:    fbShares.Sum + twShares.Sum + liShares.Sum,
		domaingraph.AttrSocialImpact: t.socialImpact(pages),

		domaingraph.AttrEstimatedPotentialAudience:      audience,
		domaingraph.AttrEstimatedPotentialAudienceIndex: audienceIndex(audience),

		domaingraph.AttrMinPublicationDate: minPublicationDate(pages),
	}
}

// socialImpact sums the page scores. A score of exactly 0 counts as no score,
// as does a NaN or infinite one.
func (t *transform) socialImpact(pages []pagegraph.Page) float64 {
	var total float64
	for _, p := range pages {
		score, ok := t.opts.socialImpact(p)
		if !ok || !finite(score) || score == 0 {
			continue
		}
		total += score
	}
	return total
}

// project drops attributes the output node schema does not declare
func (t *transform) project(attrs graph.Attributes) graph.Attributes {
	for name := range attrs {
		if _, ok := t.opts.nodeSchema[name]; !ok {
			delete(attrs, name)
		}
	}
	return attrs
}

func (t *transform) makeDomainEdges(links []pagegraph.Link) error {
	t.stats.PageLinks = len(links)

	var order []domainPair
	counts := make(map[domainPair]int)

	for _, l := range links {
		source, ok := t.pageToDomain[l.From]
		if !ok {
			return fmt.Errorf("%w: no domain for source page %q", ErrUnresolvedDomain, l.From)
		}
		target, ok := t.pageToDomain[l.To]
		if !ok {
			return fmt.Errorf("%w: no domain for target page %q", ErrUnresolvedDomain, l.To)
		}

		if source == target {
			t.stats.SelfLoops++
			continue
		}

		pair := domainPair{source: source, target: target}
		if _, seen := counts[pair]; !seen {
			order = append(order, pair)
		}
		counts[pair]++
	}

	for _, pair := range order {
		if _, err := t.out.AddEdge(pair.source, pair.target, graph.Attributes{
			domaingraph.AttrWeight: counts[pair],
		}); err != nil {
			return fmt.Errorf("failed to add domain edge: %w", err)
		}
	}

	t.stats.DomainEdges = len(order)
	return nil
}

func pageURLs(pages []pagegraph.Page) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, p := range pages {
		if p.URL == "" || seen[p.URL] {
			continue
		}
		seen[p.URL] = true
		urls = append(urls, p.URL)
	}
	return urls
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
