package aggregate

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// MaxRank is the rank of a hostname missing from the rank table. Only the
// top one million hostnames are ranked.
const MaxRank = 1000001

// RankTable maps a hostname to its global rank
type RankTable map[string]int

// Lookup returns the rank of hostname, or MaxRank when unranked
func (t RankTable) Lookup(hostname string) int {
	if rank, ok := t[hostname]; ok && rank > 0 {
		return rank
	}
	return MaxRank
}

// DomainMetadata describes an expression domain
type DomainMetadata struct {
	Name        string
	MainURL     string
	Title       string
	Description string
	Keywords    []string
	MediaType   string
	EmitterType string

	// EstimatedAudience is unknown when not positive
	EstimatedAudience int64
}

// MetadataLookup resolves a domain identifier to its metadata
type MetadataLookup interface {
	Metadata(domainID string) (DomainMetadata, bool)
}

// MetadataMap is a MetadataLookup keyed by domain identifier
type MetadataMap map[string]DomainMetadata

// Metadata implements MetadataLookup
func (m MetadataMap) Metadata(domainID string) (DomainMetadata, bool) {
	md, ok := m[domainID]
	return md, ok
}

// Hostname extracts the lowercase ASCII hostname of a URL, or "" if it has none
func Hostname(rawURL string) string {
	// Handle protocol-relative URLs
	if strings.HasPrefix(rawURL, "//") {
		rawURL = "https:" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return ""
	}

	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}
