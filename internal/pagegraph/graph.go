package pagegraph

import (
	"fmt"

	"github.com/alvmarrod/domain-weaver/internal/graph"
)

// Page node attribute names
const (
	AttrIdentifier         = "identifier"
	AttrURL                = "url"
	AttrExpressionDomainID = "expressionDomainId"
	AttrDepth              = "depth"
	AttrFacebookLike       = "facebook_like"
	AttrFacebookShare      = "facebook_share"
	AttrTwitterShare       = "twitter_share"
	AttrLinkedinShare      = "linkedin_share"
	AttrGooglePagerank     = "google_pagerank"
	AttrPublicationDate    = "publication_date"
)

var metric = graph.Field{Type: graph.TypeFloat, Nullable: true}

// NodeSchema describes a page node
var NodeSchema = graph.Schema{
	AttrIdentifier:         {Type: graph.TypeString},
	AttrURL:                {Type: graph.TypeString},
	AttrExpressionDomainID: {Type: graph.TypeString},
	AttrDepth:              {Type: graph.TypeInteger},
	AttrFacebookLike:       metric,
	AttrFacebookShare:      metric,
	AttrTwitterShare:       metric,
	AttrLinkedinShare:      metric,
	AttrGooglePagerank:     metric,
	AttrPublicationDate:    {Type: graph.TypeString, Nullable: true},
}

// EdgeSchema describes a hyperlink; it carries no attributes
var EdgeSchema = graph.Schema{}

// Graph is a page-level graph backed by the attributed graph engine
type Graph struct {
	g *graph.Graph
}

// New creates an empty page graph
func New() *Graph {
	return &Graph{g: graph.New(NodeSchema, EdgeSchema)}
}

// AddPage registers a page under its id
func (pg *Graph) AddPage(p Page) error {
	if p.Depth < DepthUnknown {
		return fmt.Errorf("page %q: invalid depth %d", p.ID, p.Depth)
	}

	var publication any
	if p.PublicationDate != "" {
		publication = p.PublicationDate
	}

	_, err := pg.g.AddNode(p.ID, graph.Attributes{
		AttrIdentifier:         p.ID,
		AttrURL:                p.URL,
		AttrExpressionDomainID: p.DomainID,
		AttrDepth:              p.Depth,
		AttrFacebookLike:       p.FacebookLike.attribute(),
		AttrFacebookShare:      p.FacebookShare.attribute(),
		AttrTwitterShare:       p.TwitterShare.attribute(),
		AttrLinkedinShare:      p.LinkedinShare.attribute(),
		AttrGooglePagerank:     p.GooglePagerank.attribute(),
		AttrPublicationDate:    publication,
	})
	if err != nil {
		return fmt.Errorf("failed to add page: %w", err)
	}
	return nil
}

// AddLink records a hyperlink between two registered pages. Repeated links are kept.
func (pg *Graph) AddLink(fromID, toID string) error {
	from, ok := pg.g.NodeByID(fromID)
	if !ok {
		return fmt.Errorf("source page %q not found", fromID)
	}
	to, ok := pg.g.NodeByID(toID)
	if !ok {
		return fmt.Errorf("target page %q not found", toID)
	}

	if _, err := pg.g.AddEdge(from.Handle, to.Handle, graph.Attributes{}); err != nil {
		return fmt.Errorf("failed to add link: %w", err)
	}
	return nil
}

// Pages returns all pages in insertion order
func (pg *Graph) Pages() []Page {
	nodes := pg.g.Nodes()
	pages := make([]Page, 0, len(nodes))
	for _, n := range nodes {
		pages = append(pages, pageFromNode(n))
	}
	return pages
}

// Links returns all hyperlinks in insertion order
func (pg *Graph) Links() []Link {
	edges := pg.g.Edges()
	links := make([]Link, 0, len(edges))
	for _, e := range edges {
		from, _ := pg.g.Node(e.Source)
		to, _ := pg.g.Node(e.Target)
		links = append(links, Link{From: from.ID, To: to.ID})
	}
	return links
}

// Len returns the number of pages and links
func (pg *Graph) Len() (pages, links int) {
	return pg.g.GetStats()
}

func pageFromNode(n *graph.Node) Page {
	depth, _ := n.Attributes.Int(AttrDepth)
	return Page{
		ID:              n.ID,
		URL:             n.Attributes.String(AttrURL),
		DomainID:        n.Attributes.String(AttrExpressionDomainID),
		Depth:           int(depth),
		FacebookLike:    metricFromAttribute(n.Attributes[AttrFacebookLike]),
		FacebookShare:   metricFromAttribute(n.Attributes[AttrFacebookShare]),
		TwitterShare:    metricFromAttribute(n.Attributes[AttrTwitterShare]),
		LinkedinShare:   metricFromAttribute(n.Attributes[AttrLinkedinShare]),
		GooglePagerank:  metricFromAttribute(n.Attributes[AttrGooglePagerank]),
		PublicationDate: n.Attributes.String(AttrPublicationDate),
	}
}
