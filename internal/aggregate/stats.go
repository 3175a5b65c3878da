package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/alvmarrod/domain-weaver/internal/pagegraph"
)

const (
	// SocialAbsent stands for a social statistic with no valid page value
	SocialAbsent = -1
	// PageRankAbsent is the reserved "no rank" value of the search-engine rank
	PageRankAbsent = 12
)

// Social metrics and the page rank do not share a sentinel: 12 is a
// legitimate like count.

func validSocial(m pagegraph.Metric) bool {
	return m.Computed() && finite(m.Value) && m.Value != SocialAbsent
}

func validPageRank(m pagegraph.Metric) bool {
	return m.Computed() && finite(m.Value) && m.Value != PageRankAbsent
}

// finite rejects NaN and both infinities, which JSON cannot carry
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type metricSpec struct {
	get      func(pagegraph.Page) pagegraph.Metric
	valid    func(pagegraph.Metric) bool
	fallback float64
}

var (
	facebookLike = metricSpec{
		get:      func(p pagegraph.Page) pagegraph.Metric { return p.FacebookLike },
		valid:    validSocial,
		fallback: SocialAbsent,
	}
	facebookShare = metricSpec{
		get:      func(p pagegraph.Page) pagegraph.Metric { return p.FacebookShare },
		valid:    validSocial,
		fallback: SocialAbsent,
	}
	twitterShare = metricSpec{
		get:      func(p pagegraph.Page) pagegraph.Metric { return p.TwitterShare },
		valid:    validSocial,
		fallback: SocialAbsent,
	}
	linkedinShare = metricSpec{
		get:      func(p pagegraph.Page) pagegraph.Metric { return p.LinkedinShare },
		valid:    validSocial,
		fallback: SocialAbsent,
	}
	googlePagerank = metricSpec{
		get:      func(p pagegraph.Page) pagegraph.Metric { return p.GooglePagerank },
		valid:    validPageRank,
		fallback: PageRankAbsent,
	}
)

func (s metricSpec) values(pages []pagegraph.Page) []float64 {
	var values []float64
	for _, p := range pages {
		if m := s.get(p); s.valid(m) {
			values = append(values, m.Value)
		}
	}
	return values
}

// summary holds the reduction of one metric over a domain's pages
type summary struct {
	Min, Max, Median, Sum float64
}

func (s metricSpec) summarize(pages []pagegraph.Page) summary {
	values := s.values(pages)
	if len(values) == 0 {
		return summary{Min: s.fallback, Max: s.fallback, Median: s.fallback}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return summary{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: median(sorted),
		Sum:    sum(sorted),
	}
}

// median expects sorted, non-empty values
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// minDepth returns the smallest known depth, or DepthUnknown if no page has one
func minDepth(pages []pagegraph.Page) int {
	depth := math.MaxInt
	for _, p := range pages {
		if p.Depth != pagegraph.DepthUnknown && p.Depth < depth {
			depth = p.Depth
		}
	}
	if depth == math.MaxInt {
		return pagegraph.DepthUnknown
	}
	return depth
}

var publicationLayouts = []string{time.RFC3339, "2006-01-02"}

// minPublicationDate returns the earliest parseable publication date as
// YYYY-MM-DD, in the calendar of the offset the date was written with
func minPublicationDate(pages []pagegraph.Page) string {
	var earliest time.Time
	for _, p := range pages {
		if p.PublicationDate == "" {
			continue
		}
		for _, layout := range publicationLayouts {
			t, err := time.Parse(layout, p.PublicationDate)
			if err != nil {
				continue
			}
			if earliest.IsZero() || t.Before(earliest) {
				earliest = t
			}
			break
		}
	}
	if earliest.IsZero() {
		return ""
	}
	return earliest.Format("2006-01-02")
}

// audienceIndex is the order of magnitude of an audience estimate
func audienceIndex(audience int64) int64 {
	if audience <= 0 {
		return -1
	}
	return int64(math.Floor(math.Log10(float64(audience))))
}
