package aggregate

import "github.com/alvmarrod/domain-weaver/internal/pagegraph"

// SocialImpactFunc scores a page from its social metrics. The boolean is
// false when the page has no score.
type SocialImpactFunc func(p pagegraph.Page) (float64, bool)

// SocialImpact adds up the valid social metrics of a page
func SocialImpact(p pagegraph.Page) (float64, bool) {
	var (
		total float64
		found bool
	)
	for _, m := range []pagegraph.Metric{p.FacebookLike, p.FacebookShare, p.TwitterShare, p.LinkedinShare} {
		if validSocial(m) {
			total += m.Value
			found = true
		}
	}
	return total, found
}
