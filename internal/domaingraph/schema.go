// Package domaingraph declares the attribute vocabulary of domain-level graphs.
package domaingraph

import "github.com/alvmarrod/domain-weaver/internal/graph"

// Node attribute names
const (
	AttrExpressionDomainID = "expression_domain_id"
	AttrTitle              = "title"
	AttrURLs               = "urls"
	AttrDomainTitle        = "domain_title"
	AttrMediaType          = "media_type"
	AttrEmitterType        = "emitter_type"
	AttrDescription        = "description"
	AttrKeywords           = "keywords"
	AttrNbExpressions      = "nb_expressions"
	AttrBaseURL            = "base_url"
	AttrDepth              = "depth"

	AttrGlobalAlexaRank        = "global_alexarank"
	AttrInverseGlobalAlexaRank = "inverse_global_alexarank"

	AttrMinFacebookLike    = "min_facebook_like"
	AttrMaxFacebookLike    = "max_facebook_like"
	AttrMedianFacebookLike = "median_facebook_like"

	AttrMinFacebookShare    = "min_facebook_share"
	AttrMaxFacebookShare    = "max_facebook_share"
	AttrMedianFacebookShare = "median_facebook_share"

	AttrMinTwitterShare    = "min_twitter_share"
	AttrMaxTwitterShare    = "max_twitter_share"
	AttrMedianTwitterShare = "median_twitter_share"

	AttrMinLinkedinShare    = "min_linkedin_share"
	AttrMaxLinkedinShare    = "max_linkedin_share"
	AttrMedianLinkedinShare = "median_linkedin_share"

	AttrMinGooglePagerank    = "min_google_pagerank"
	AttrMaxGooglePagerank    = "max_google_pagerank"
	AttrMedianGooglePagerank = "median_google_pagerank"

	AttrSumLikes     = "sum_likes"
	AttrSumShares    = "sum_shares"
	AttrSocialImpact = "social_impact"

	AttrEstimatedPotentialAudience      = "estimated_potential_audience"
	AttrEstimatedPotentialAudienceIndex = "estimated_potential_audience_index"

	AttrMinPublicationDate = "min_publication_date"
)

// AttrWeight is the only edge attribute: the number of page links between two domains
const AttrWeight = "weight"

var (
	str     = graph.Field{Type: graph.TypeString}
	integer = graph.Field{Type: graph.TypeInteger}
	float   = graph.Field{Type: graph.TypeFloat}
)

// NodeSchema describes a domain node. Min/max/median are floats since the
// median of an even-sized set can end up with a .5.
var NodeSchema = graph.Schema{
	AttrExpressionDomainID: str,
	AttrTitle:              str,
	AttrURLs:               str,
	AttrDomainTitle:        str,
	AttrMediaType:          str,
	AttrEmitterType:        str,
	AttrDescription:        str,
	AttrKeywords:           str,
	AttrNbExpressions:      integer,
	AttrBaseURL:            str,
	AttrDepth:              integer,

	AttrGlobalAlexaRank:        integer,
	AttrInverseGlobalAlexaRank: float,

	AttrMinFacebookLike:    float,
	AttrMaxFacebookLike:    float,
	AttrMedianFacebookLike: float,

	AttrMinFacebookShare:    float,
	AttrMaxFacebookShare:    float,
	AttrMedianFacebookShare: float,

	AttrMinTwitterShare:    float,
	AttrMaxTwitterShare:    float,
	AttrMedianTwitterShare: float,

	AttrMinLinkedinShare:    float,
	AttrMaxLinkedinShare:    float,
	AttrMedianLinkedinShare: float,

	AttrMinGooglePagerank:    float,
	AttrMaxGooglePagerank:    float,
	AttrMedianGooglePagerank: float,

	AttrSumLikes:     float,
	AttrSumShares:    float,
	AttrSocialImpact: float,

	AttrEstimatedPotentialAudience:      integer,
	AttrEstimatedPotentialAudienceIndex: integer,

	AttrMinPublicationDate: str,
}

// EdgeSchema describes a domain edge
var EdgeSchema = graph.Schema{
	AttrWeight: integer,
}

// New returns an empty graph configured with the domain schemas
func New() *graph.Graph {
	return graph.New(NodeSchema, EdgeSchema)
}
