package types

// PriceRange summarizes prices over all succeeded-provider offers
type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// Comparison carries the summary statistics of an aggregation
type Comparison struct {
	PriceRange     PriceRange         `json:"price_range"`
	ProviderCounts map[ProviderID]int `json:"provider_counts"`
}

// Recommendations are the ranked picks over the merged offer set
type Recommendations struct {
	Cheapest  *Offer `json:"cheapest,omitempty"`
	Fastest   *Offer `json:"fastest,omitempty"` // flights only
	BestValue *Offer `json:"best_value,omitempty"`
}

// ProviderStatus records one provider's outcome for the response metadata.
// Partial failures are tolerated and exposed only here.
type ProviderStatus struct {
	Provider   ProviderID `json:"provider"`
	Succeeded  bool       `json:"succeeded"`
	OfferCount int        `json:"offer_count"`
	Error      string     `json:"error,omitempty"`
	TookMs     int64      `json:"took_ms"`
}

// AggregateResult is the unified payload returned by the aggregator.
// It is derived and recomputed every call, never persisted.
type AggregateResult struct {
	Offers          []*Offer         `json:"offers"`
	Comparison      Comparison       `json:"comparison"`
	Recommendations Recommendations  `json:"recommendations"`
	Providers       []ProviderStatus `json:"providers"`
}
