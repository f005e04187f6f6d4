package biz

import (
	"sort"

	"github.com/voyago/travel-planner-backend/internal/search/types"
)

// sortOffers orders the merged set by ascending price, breaking ties by ID
// so the final ordering is deterministic regardless of provider arrival
// order.
func sortOffers(offers []*types.Offer) {
	sort.Slice(offers, func(i, j int) bool {
		if offers[i].Price.Amount != offers[j].Price.Amount {
			return offers[i].Price.Amount < offers[j].Price.Amount
		}
		return offers[i].ID < offers[j].ID
	})
}

// summarize computes the price range and per-provider counts over all
// succeeded-provider offers. Zero offers yields zero values, never a
// division error.
func summarize(offers []*types.Offer) types.Comparison {
	comparison := types.Comparison{
		ProviderCounts: make(map[types.ProviderID]int),
	}
	if len(offers) == 0 {
		return comparison
	}

	min, max, sum := offers[0].Price.Amount, offers[0].Price.Amount, 0.0
	for _, o := range offers {
		p := o.Price.Amount
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
		sum += p
		comparison.ProviderCounts[o.Provider]++
	}

	comparison.PriceRange = types.PriceRange{
		Min:     min,
		Max:     max,
		Average: sum / float64(len(offers)),
	}
	return comparison
}

// recommend picks cheapest, fastest (flights only) and best value from a
// sorted offer set.
func recommend(kind types.SearchKind, offers []*types.Offer) types.Recommendations {
	var rec types.Recommendations
	if len(offers) == 0 {
		return rec
	}

	// offers are sorted by price ascending
	rec.Cheapest = offers[0]

	if kind == types.KindFlights {
		for _, o := range offers {
			if o.Flight == nil || o.Flight.DurationMinutes <= 0 {
				continue // unknown duration cannot win fastest
			}
			if rec.Fastest == nil || o.Flight.DurationMinutes < rec.Fastest.Flight.DurationMinutes {
				rec.Fastest = o
			}
		}
	}

	best := offers[0]
	bestScore := bestValueScore(kind, best)
	for _, o := range offers[1:] {
		if s := bestValueScore(kind, o); s < bestScore {
			best, bestScore = o, s
		}
	}
	rec.BestValue = best

	return rec
}

// bestValueScore is the value heuristic; lower is better. It is monotonic
// in price and in the secondary signal: more stops or a worse rating can
// only raise the score.
func bestValueScore(kind types.SearchKind, o *types.Offer) float64 {
	price := o.Price.Amount
	switch kind {
	case types.KindFlights:
		stops := 2 // unknown stop count scores as the worst observed tier
		if o.Flight != nil && o.Flight.Stops >= 0 {
			stops = o.Flight.Stops
		}
		return price * (1 + 0.25*float64(stops))
	case types.KindHotels:
		rating := 1.0 // unknown rating gets no discount
		if o.Hotel != nil && o.Hotel.Rating > 1 {
			rating = o.Hotel.Rating
		}
		return price / rating
	default:
		return price
	}
}
