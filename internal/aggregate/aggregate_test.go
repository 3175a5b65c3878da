package aggregate

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/alvmarrod/domain-weaver/internal/domaingraph"
	"github.com/alvmarrod/domain-weaver/internal/graph"
	"github.com/alvmarrod/domain-weaver/internal/pagegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type triple struct {
	source, target string
	weight         int64
}

func edgeTriples(t *testing.T, g *graph.Graph) map[triple]int {
	t.Helper()

	triples := make(map[triple]int)
	for _, e := range g.Edges() {
		src, ok := g.Node(e.Source)
		require.True(t, ok)
		dst, ok := g.Node(e.Target)
		require.True(t, ok)
		weight, ok := e.Attributes.Int(domaingraph.AttrWeight)
		require.True(t, ok)
		triples[triple{src.ID, dst.ID, weight}]++
	}
	return triples
}

func addPages(t *testing.T, pg *pagegraph.Graph, pages ...pagegraph.Page) {
	t.Helper()
	for _, p := range pages {
		require.NoError(t, pg.AddPage(p))
	}
}

func addLinks(t *testing.T, pg *pagegraph.Graph, links ...pagegraph.Link) {
	t.Helper()
	for _, l := range links {
		require.NoError(t, pg.AddLink(l.From, l.To))
	}
}

func twoDomains() MetadataMap {
	return MetadataMap{
		"1": {Name: "x.org"},
		"2": {Name: "y.org"},
	}
}

func TestTransformWeightsDirectedEdges(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg,
		pagegraph.Page{ID: "A", URL: "https://x.org/a", DomainID: "1"},
		pagegraph.Page{ID: "B", URL: "https://y.org/b", DomainID: "2"},
	)
	addLinks(t, pg,
		pagegraph.Link{From: "A", To: "B"},
		pagegraph.Link{From: "A", To: "B"},
		pagegraph.Link{From: "B", To: "A"},
		pagegraph.Link{From: "A", To: "B"},
	)

	g, err := Transform(pg, nil, twoDomains())
	require.NoError(t, err)

	assert.Equal(t, map[triple]int{
		{"x.org", "y.org", 3}: 1,
		{"y.org", "x.org", 1}: 1,
	}, edgeTriples(t, g))
}

func TestTransformElidesSelfLoops(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg,
		pagegraph.Page{ID: "A", URL: "https://x.org/a", DomainID: "1"},
		pagegraph.Page{ID: "B", URL: "https://x.org/b", DomainID: "1"},
		pagegraph.Page{ID: "C", URL: "https://y.org/c", DomainID: "2"},
	)
	addLinks(t, pg,
		pagegraph.Link{From: "A", To: "B"},
		pagegraph.Link{From: "B", To: "A"},
		pagegraph.Link{From: "A", To: "A"},
		pagegraph.Link{From: "B", To: "C"},
	)

	res, err := Aggregate(pg, nil, twoDomains())
	require.NoError(t, err)

	for _, e := range res.Graph.Edges() {
		assert.NotEqual(t, e.Source, e.Target)
	}
	assert.Equal(t, map[triple]int{{"x.org", "y.org", 1}: 1}, edgeTriples(t, res.Graph))
	assert.Equal(t, 3, res.Stats.SelfLoops)
	assert.Equal(t, 1, res.Stats.DomainEdges)
	assert.Equal(t, 4, res.Stats.PageLinks)
}

func TestTransformAssignsEveryPageOnce(t *testing.T) {
	pg := pagegraph.New()
	domains := MetadataMap{}
	for _, d := range []string{"1", "2", "3"} {
		domains[d] = DomainMetadata{Name: "d" + d + ".com"}
	}
	addPages(t, pg,
		pagegraph.Page{ID: "p1", DomainID: "2"},
		pagegraph.Page{ID: "p2", DomainID: "1"},
		pagegraph.Page{ID: "p3", DomainID: "2"},
		pagegraph.Page{ID: "p4", DomainID: "3"},
		pagegraph.Page{ID: "p5", DomainID: "2"},
	)

	res, err := Aggregate(pg, nil, domains)
	require.NoError(t, err)

	var ids []string
	var total int64
	for _, n := range res.Graph.Nodes() {
		ids = append(ids, n.ID)
		count, ok := n.Attributes.Int(domaingraph.AttrNbExpressions)
		require.True(t, ok)
		total += count
	}

	// first-seen order of domains
	assert.Equal(t, []string{"d2.com", "d1.com", "d3.com"}, ids)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, 5, res.Stats.Pages)
	assert.Equal(t, 3, res.Stats.Domains)
}

func TestTransformStatistics(t *testing.T) {
	pg := pagegraph.New()
	likes := []pagegraph.Metric{
		pagegraph.Value(4),
		pagegraph.Value(2),
		pagegraph.Value(-1),
		pagegraph.NotComputed(),
		{},
		pagegraph.Value(8),
		pagegraph.Value(4),
	}
	for i, m := range likes {
		addPages(t, pg, pagegraph.Page{
			ID:             string(rune('a' + i)),
			URL:            "https://x.org/" + string(rune('a'+i)),
			DomainID:       "1",
			Depth:          pagegraph.DepthUnknown,
			FacebookLike:   m,
			GooglePagerank: pagegraph.Value(PageRankAbsent),
		})
	}

	g, err := Transform(pg, nil, twoDomains())
	require.NoError(t, err)

	node, ok := g.NodeByID("x.org")
	require.True(t, ok)
	attrs := node.Attributes

	for name, want := range map[string]float64{
		domaingraph.AttrMinFacebookLike:    2,
		domaingraph.AttrMaxFacebookLike:    8,
		domaingraph.AttrMedianFacebookLike: 4,
		domaingraph.AttrSumLikes:           18,

		domaingraph.AttrMinFacebookShare:    SocialAbsent,
		domaingraph.AttrMaxFacebookShare:    SocialAbsent,
		domaingraph.AttrMedianFacebookShare: SocialAbsent,
		domaingraph.AttrSumShares:           0,

		domaingraph.AttrMinGooglePagerank:    PageRankAbsent,
		domaingraph.AttrMaxGooglePagerank:    PageRankAbsent,
		domaingraph.AttrMedianGooglePagerank: PageRankAbsent,

		// 4 + 2 + 8 + 4 from the default social impact
		domaingraph.AttrSocialImpact: 18,
	} {
		got, ok := attrs.Float(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	depth, _ := attrs.Int(domaingraph.AttrDepth)
	assert.Equal(t, int64(pagegraph.DepthUnknown), depth)
}

func TestTransformMetadataAndRank(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg,
		pagegraph.Page{ID: "a", URL: "https://WWW.Example.com:8080/a", DomainID: "1", Depth: 3, PublicationDate: "2016-05-01"},
		pagegraph.Page{ID: "b", URL: "https://www.example.com/b", DomainID: "1", Depth: 1, PublicationDate: "2015-02-03T10:00:00Z"},
		pagegraph.Page{ID: "c", URL: "https://www.example.com/a", DomainID: "1", Depth: pagegraph.DepthUnknown, PublicationDate: "someday"},
		pagegraph.Page{ID: "d", URL: "https://www.example.com/a", DomainID: "1", Depth: 2},
		pagegraph.Page{ID: "e", URL: "https://other.net/", DomainID: "2"},
	)
	domains := MetadataMap{
		"1": {
			Name:              "example.com",
			MainURL:           "https://www.example.com",
			Title:             "Example",
			Description:       "An example",
			Keywords:          []string{"news", "tech"},
			MediaType:         "press",
			EstimatedAudience: 25000,
		},
		"2": {Name: "other.net"},
	}
	ranks := RankTable{"www.example.com": 40}

	g, err := Transform(pg, ranks, domains)
	require.NoError(t, err)

	example, ok := g.NodeByID("example.com")
	require.True(t, ok)
	a := example.Attributes

	assert.Equal(t, "1", a.String(domaingraph.AttrExpressionDomainID))
	assert.Equal(t, "example.com", a.String(domaingraph.AttrTitle))
	assert.Equal(t, "Example", a.String(domaingraph.AttrDomainTitle))
	assert.Equal(t, "https://www.example.com", a.String(domaingraph.AttrBaseURL))
	assert.Equal(t, "An example", a.String(domaingraph.AttrDescription))
	assert.Equal(t, "news / tech", a.String(domaingraph.AttrKeywords))
	assert.Equal(t, "press", a.String(domaingraph.AttrMediaType))
	assert.Equal(t, "https://WWW.Example.com:8080/a https://www.example.com/b https://www.example.com/a", a.String(domaingraph.AttrURLs))
	assert.Equal(t, "2015-02-03", a.String(domaingraph.AttrMinPublicationDate))

	rank, _ := a.Int(domaingraph.AttrGlobalAlexaRank)
	assert.Equal(t, int64(40), rank)
	inverse, _ := a.Float(domaingraph.AttrInverseGlobalAlexaRank)
	assert.InDelta(t, 0.025, inverse, 1e-12)

	depth, _ := a.Int(domaingraph.AttrDepth)
	assert.Equal(t, int64(1), depth)

	audience, _ := a.Int(domaingraph.AttrEstimatedPotentialAudience)
	assert.Equal(t, int64(25000), audience)
	index, _ := a.Int(domaingraph.AttrEstimatedPotentialAudienceIndex)
	assert.Equal(t, int64(4), index)

	other, ok := g.NodeByID("other.net")
	require.True(t, ok)
	o := other.Attributes
	assert.Equal(t, "other.net", o.String(domaingraph.AttrDomainTitle))
	assert.Equal(t, "other.net", o.String(domaingraph.AttrBaseURL))
	assert.Equal(t, "", o.String(domaingraph.AttrDescription))
	assert.Equal(t, "", o.String(domaingraph.AttrKeywords))
	assert.Equal(t, "", o.String(domaingraph.AttrMinPublicationDate))

	rank, _ = o.Int(domaingraph.AttrGlobalAlexaRank)
	assert.Equal(t, int64(MaxRank), rank)
	audience, _ = o.Int(domaingraph.AttrEstimatedPotentialAudience)
	assert.Equal(t, int64(-1), audience)
}

func TestTransformNameFallsBackToDomainID(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg, pagegraph.Page{ID: "a", DomainID: "42"})

	g, err := Transform(pg, nil, MetadataMap{"42": {}})
	require.NoError(t, err)

	node, ok := g.NodeByID("42")
	require.True(t, ok)
	assert.Equal(t, "42", node.Attributes.String(domaingraph.AttrDomainTitle))
}

// A computed impact of exactly zero is indistinguishable from no impact:
// only the non-zero scores end up in the sum.
func TestSocialImpactZeroCountsAsAbsent(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg,
		pagegraph.Page{ID: "a", DomainID: "1"},
		pagegraph.Page{ID: "b", DomainID: "1"},
		pagegraph.Page{ID: "c", DomainID: "1"},
	)

	var calls int
	scores := map[string]float64{"a": 0, "b": 2.5}
	impact := func(p pagegraph.Page) (float64, bool) {
		calls++
		score, ok := scores[p.ID]
		return score, ok
	}

	g, err := Transform(pg, nil, twoDomains(), WithSocialImpact(impact))
	require.NoError(t, err)

	node, _ := g.NodeByID("x.org")
	got, _ := node.Attributes.Float(domaingraph.AttrSocialImpact)
	assert.Equal(t, 2.5, got)
	assert.Equal(t, 3, calls)
}

func TestTransformIgnoresNonFiniteValues(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg,
		pagegraph.Page{ID: "a", DomainID: "1", FacebookLike: pagegraph.Value(math.Inf(1)), GooglePagerank: pagegraph.Value(math.Inf(-1))},
		pagegraph.Page{ID: "b", DomainID: "1", FacebookLike: pagegraph.Value(3), GooglePagerank: pagegraph.Value(4)},
	)

	scores := map[string]float64{"a": math.Inf(1), "b": 1.5}
	impact := func(p pagegraph.Page) (float64, bool) {
		return scores[p.ID], true
	}

	g, err := Transform(pg, nil, twoDomains(), WithSocialImpact(impact))
	require.NoError(t, err)

	node, _ := g.NodeByID("x.org")
	for name, want := range map[string]float64{
		domaingraph.AttrMaxFacebookLike:   3,
		domaingraph.AttrSumLikes:          3,
		domaingraph.AttrMinGooglePagerank: 4,
		domaingraph.AttrSocialImpact:      1.5,
	} {
		got, _ := node.Attributes.Float(name)
		assert.Equal(t, want, got, name)
	}

	_, err = json.Marshal(node.Attributes)
	assert.NoError(t, err)
}

func TestTransformMissingMetadata(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg,
		pagegraph.Page{ID: "A", DomainID: "1"},
		pagegraph.Page{ID: "B", DomainID: "9"},
	)
	addLinks(t, pg, pagegraph.Link{From: "A", To: "B"})

	g, err := Transform(pg, nil, twoDomains())
	assert.Nil(t, g)
	assert.True(t, errors.Is(err, ErrMissingMetadata))

	_, err = Transform(pg, nil, nil)
	assert.ErrorIs(t, err, ErrMissingMetadata)
}

type brokenSource struct {
	pages []pagegraph.Page
	links []pagegraph.Link
}

func (b brokenSource) Pages() []pagegraph.Page { return b.pages }
func (b brokenSource) Links() []pagegraph.Link { return b.links }

func TestTransformUnresolvedDomain(t *testing.T) {
	src := brokenSource{
		pages: []pagegraph.Page{{ID: "A", DomainID: "1"}},
		links: []pagegraph.Link{{From: "A", To: "ghost"}},
	}

	g, err := Transform(src, nil, twoDomains())
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrUnresolvedDomain)

	src.links = []pagegraph.Link{{From: "ghost", To: "A"}}
	_, err = Transform(src, nil, twoDomains())
	assert.ErrorIs(t, err, ErrUnresolvedDomain)
}

func TestTransformDuplicateDomainNames(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg,
		pagegraph.Page{ID: "A", DomainID: "1"},
		pagegraph.Page{ID: "B", DomainID: "2"},
	)

	_, err := Transform(pg, nil, MetadataMap{
		"1": {Name: "same.org"},
		"2": {Name: "same.org"},
	})
	assert.ErrorIs(t, err, graph.ErrSchemaViolation)
}

func TestTransformWithAlternativeSchema(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg,
		pagegraph.Page{ID: "A", DomainID: "1"},
		pagegraph.Page{ID: "B", DomainID: "2"},
	)
	addLinks(t, pg, pagegraph.Link{From: "A", To: "B"})

	nodeSchema := graph.Schema{
		domaingraph.AttrNbExpressions: {Type: graph.TypeInteger},
		domaingraph.AttrDepth:         {Type: graph.TypeInteger},
	}
	g, err := Transform(pg, nil, twoDomains(), WithSchema(nodeSchema, domaingraph.EdgeSchema))
	require.NoError(t, err)

	for _, n := range g.Nodes() {
		assert.Len(t, n.Attributes, 2)
	}
	assert.Len(t, g.Edges(), 1)

	_, err = Transform(pg, nil, twoDomains(), WithSchema(graph.Schema{"unknown": {Type: graph.TypeString}}, domaingraph.EdgeSchema))
	assert.ErrorIs(t, err, graph.ErrSchemaViolation)
}

func TestTransformIsIdempotent(t *testing.T) {
	pg := pagegraph.New()
	addPages(t, pg,
		pagegraph.Page{ID: "a", URL: "https://x.org/", DomainID: "1", FacebookLike: pagegraph.Value(3)},
		pagegraph.Page{ID: "b", URL: "https://y.org/", DomainID: "2", TwitterShare: pagegraph.Value(5)},
		pagegraph.Page{ID: "c", URL: "https://x.org/c", DomainID: "1", Depth: 4},
	)
	addLinks(t, pg,
		pagegraph.Link{From: "a", To: "b"},
		pagegraph.Link{From: "c", To: "b"},
		pagegraph.Link{From: "b", To: "c"},
	)

	first, err := Transform(pg, RankTable{"x.org": 9}, twoDomains())
	require.NoError(t, err)
	second, err := Transform(pg, RankTable{"x.org": 9}, twoDomains())
	require.NoError(t, err)

	require.Len(t, second.Nodes(), len(first.Nodes()))
	for i, n := range first.Nodes() {
		assert.Equal(t, n.ID, second.Nodes()[i].ID)
		assert.Equal(t, n.Attributes, second.Nodes()[i].Attributes)
	}
	assert.Equal(t, edgeTriples(t, first), edgeTriples(t, second))
}
