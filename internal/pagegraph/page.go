// Package pagegraph holds the page-level link graph consumed by the domain
// aggregation: crawled pages as nodes, hyperlinks as edges.
package pagegraph

import (
	"fmt"
	"math"
)

// DepthUnknown is the crawl depth of a page nobody measured
const DepthUnknown = -1

// MetricState tells whether a metric carries a value
type MetricState uint8

const (
	MetricNull MetricState = iota
	MetricNotComputed
	MetricComputed
)

// Metric is a social or ranking measurement of a page. The zero value is null.
type Metric struct {
	Value float64
	State MetricState
}

// Value returns a computed metric
func Value(v float64) Metric {
	return Metric{Value: v, State: MetricComputed}
}

// NotComputed returns the marker of a metric whose annotation never ran
func NotComputed() Metric {
	return Metric{State: MetricNotComputed}
}

// Computed reports whether the metric carries a number. It does not judge
// sentinel numbers such as -1; that is up to each metric's consumer.
func (m Metric) Computed() bool {
	return m.State == MetricComputed
}

func (m Metric) String() string {
	switch m.State {
	case MetricNull:
		return "null"
	case MetricNotComputed:
		return "not-computed"
	}
	return fmt.Sprintf("%g", m.Value)
}

// attribute encodes the metric for the page schema: null as nil, not computed as NaN
func (m Metric) attribute() any {
	switch m.State {
	case MetricNull:
		return nil
	case MetricNotComputed:
		return math.NaN()
	}
	return m.Value
}

func metricFromAttribute(v any) Metric {
	f, ok := v.(float64)
	if !ok {
		return Metric{}
	}
	if math.IsNaN(f) {
		return NotComputed()
	}
	return Value(f)
}

// Page is a crawled page and its annotations
type Page struct {
	ID       string
	URL      string
	DomainID string
	Depth    int

	FacebookLike   Metric
	FacebookShare  Metric
	TwitterShare   Metric
	LinkedinShare  Metric
	GooglePagerank Metric

	// PublicationDate is empty when unknown
	PublicationDate string
}

// Link is a hyperlink from one page to another, by page id
type Link struct {
	From string
	To   string
}
