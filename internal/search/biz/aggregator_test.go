package biz

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/travel-planner-backend/internal/pkg/cache"
	apperrors "github.com/voyago/travel-planner-backend/internal/pkg/errors"
	"github.com/voyago/travel-planner-backend/internal/search/provider"
	"github.com/voyago/travel-planner-backend/internal/search/types"
)

// stubProvider is a scripted provider for aggregator tests
type stubProvider struct {
	id        types.ProviderID
	offers    []*types.Offer
	err       error
	available bool
	calls     atomic.Int64
}

func (s *stubProvider) Search(_ context.Context, _ *types.SearchRequest) ([]*types.Offer, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.offers, nil
}

func (s *stubProvider) GetID() types.ProviderID          { return s.id }
func (s *stubProvider) GetName() string                  { return string(s.id) }
func (s *stubProvider) Supports(types.SearchKind) bool   { return true }
func (s *stubProvider) Validate() error                  { return nil }
func (s *stubProvider) IsAvailable(context.Context) bool { return s.available }

var _ provider.Provider = (*stubProvider)(nil)

func hotelOffer(p types.ProviderID, id string, price, rating float64) *types.Offer {
	return &types.Offer{
		ID:       types.QualifyID(p, id),
		Provider: p,
		Kind:     types.KindHotels,
		Price:    types.Money{Amount: price, Currency: "EUR"},
		Hotel:    &types.HotelDetails{Name: "Hotel " + id, Address: types.Unknown, Rating: rating, RoomType: types.Unknown},
	}
}

func flightOffer(p types.ProviderID, id string, price float64, durationMin, stops int) *types.Offer {
	return &types.Offer{
		ID:       types.QualifyID(p, id),
		Provider: p,
		Kind:     types.KindFlights,
		Price:    types.Money{Amount: price, Currency: "USD"},
		Flight: &types.FlightDetails{
			Airline:         types.Unknown,
			Duration:        types.FormatDuration(durationMin),
			DurationMinutes: durationMin,
			Stops:           stops,
		},
	}
}

func hotelRequest(providers ...types.ProviderID) *types.SearchRequest {
	return &types.SearchRequest{
		Kind:        types.KindHotels,
		Destination: "Paris",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-05",
		Adults:      2,
		Rooms:       1,
		Currency:    "EUR",
		Providers:   providers,
	}
}

func newTestAggregator(providers ...provider.Provider) *Aggregator {
	return NewAggregator(providers, cache.NewMemoryCache(16, time.Minute), time.Second, nil)
}

func TestAggregator_PartialFailureTolerated(t *testing.T) {
	good := &stubProvider{
		id:        types.ProviderAmadeus,
		available: true,
		offers: []*types.Offer{
			hotelOffer(types.ProviderAmadeus, "h1", 120, 4),
			hotelOffer(types.ProviderAmadeus, "h2", 150, 4.5),
			hotelOffer(types.ProviderAmadeus, "h3", 90, 3),
		},
	}
	bad := &stubProvider{
		id:        types.ProviderSkyscanner,
		available: true,
		err:       errors.New("request timed out"),
	}

	agg := newTestAggregator(good, bad)
	result, err := agg.Search(context.Background(), hotelRequest(types.ProviderAmadeus, types.ProviderSkyscanner))
	require.NoError(t, err)

	// Scenario from the hotel search contract: 3 offers survive, the
	// failed provider appears only in metadata.
	assert.Len(t, result.Offers, 3)
	assert.InDelta(t, 90, result.Comparison.PriceRange.Min, 1e-9)
	assert.InDelta(t, 150, result.Comparison.PriceRange.Max, 1e-9)
	assert.InDelta(t, 120, result.Comparison.PriceRange.Average, 1e-9)
	assert.InDelta(t, 90, result.Recommendations.Cheapest.Price.Amount, 1e-9)

	require.Len(t, result.Providers, 2)
	assert.True(t, result.Providers[0].Succeeded)
	assert.False(t, result.Providers[1].Succeeded)
	assert.Equal(t, types.ProviderSkyscanner, result.Providers[1].Provider)
	assert.Contains(t, result.Providers[1].Error, "timed out")
}

func TestAggregator_AllProvidersFailed(t *testing.T) {
	bad1 := &stubProvider{id: types.ProviderAmadeus, available: true, err: errors.New("boom")}
	bad2 := &stubProvider{id: types.ProviderSkyscanner, available: true, err: errors.New("boom")}

	agg := newTestAggregator(bad1, bad2)
	result, err := agg.Search(context.Background(), hotelRequest(types.ProviderAmadeus, types.ProviderSkyscanner))

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoProviderAvailable))
	assert.Equal(t, "NoProviderAvailable", apperrors.GetMessage(apperrors.ExtractCode(err)))
}

func TestAggregator_MissingKeyDegradesProvider(t *testing.T) {
	good := &stubProvider{
		id:        types.ProviderAmadeus,
		available: true,
		offers:    []*types.Offer{hotelOffer(types.ProviderAmadeus, "h1", 100, 4)},
	}
	unkeyed := &stubProvider{id: types.ProviderBooking, available: false}

	agg := newTestAggregator(good, unkeyed)
	result, err := agg.Search(context.Background(), hotelRequest(types.ProviderAmadeus, types.ProviderBooking))
	require.NoError(t, err)

	assert.Len(t, result.Offers, 1)
	assert.False(t, result.Providers[1].Succeeded)
	assert.Contains(t, result.Providers[1].Error, "missing API key")
	assert.Equal(t, int64(0), unkeyed.calls.Load(), "unavailable provider must not be called")
}

func TestAggregator_UnknownProviderRejected(t *testing.T) {
	agg := newTestAggregator()
	_, err := agg.Search(context.Background(), hotelRequest(types.ProviderID("nosuch")))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrProviderNotFound))
}

func TestAggregator_InvalidRequestRejectedBeforeFanOut(t *testing.T) {
	p := &stubProvider{id: types.ProviderAmadeus, available: true}
	agg := newTestAggregator(p)

	req := hotelRequest(types.ProviderAmadeus)
	req.Destination = ""

	_, err := agg.Search(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSearchInvalidRequest))
	assert.Equal(t, int64(0), p.calls.Load(), "no external call on validation failure")
}

func TestAggregator_RankingAndOrdering(t *testing.T) {
	p1 := &stubProvider{
		id:        types.ProviderAmadeus,
		available: true,
		offers: []*types.Offer{
			flightOffer(types.ProviderAmadeus, "f1", 540, 450, 0),
			flightOffer(types.ProviderAmadeus, "f2", 380, 720, 2),
		},
	}
	p2 := &stubProvider{
		id:        types.ProviderDuffel,
		available: true,
		offers: []*types.Offer{
			flightOffer(types.ProviderDuffel, "f3", 410, 480, 1),
		},
	}

	agg := newTestAggregator(p1, p2)
	req := &types.SearchRequest{
		Kind:        types.KindFlights,
		Origin:      "CDG",
		Destination: "NRT",
		StartDate:   "2025-06-01",
		Adults:      1,
		Currency:    "USD",
		Providers:   []types.ProviderID{types.ProviderAmadeus, types.ProviderDuffel},
	}

	result, err := agg.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Offers, 3)

	// Final ordering is the ranking step's: ascending price
	assert.Equal(t, types.QualifyID(types.ProviderAmadeus, "f2"), result.Offers[0].ID)
	assert.Equal(t, types.QualifyID(types.ProviderDuffel, "f3"), result.Offers[1].ID)
	assert.Equal(t, types.QualifyID(types.ProviderAmadeus, "f1"), result.Offers[2].ID)

	// Cheapest price is <= every other price
	for _, o := range result.Offers {
		assert.LessOrEqual(t, result.Recommendations.Cheapest.Price.Amount, o.Price.Amount)
	}

	// Fastest is the minimum known duration
	assert.Equal(t, types.QualifyID(types.ProviderAmadeus, "f1"), result.Recommendations.Fastest.ID)

	// Best value: f2=380*1.5=570, f3=410*1.25=512.5, f1=540*1.0=540
	assert.Equal(t, types.QualifyID(types.ProviderDuffel, "f3"), result.Recommendations.BestValue.ID)

	// Price range invariant: min <= average <= max
	pr := result.Comparison.PriceRange
	assert.LessOrEqual(t, pr.Min, pr.Average)
	assert.LessOrEqual(t, pr.Average, pr.Max)

	assert.Equal(t, 2, result.Comparison.ProviderCounts[types.ProviderAmadeus])
	assert.Equal(t, 1, result.Comparison.ProviderCounts[types.ProviderDuffel])
}

func TestAggregator_SingleOfferPriceRangeCollapses(t *testing.T) {
	p := &stubProvider{
		id:        types.ProviderAmadeus,
		available: true,
		offers:    []*types.Offer{hotelOffer(types.ProviderAmadeus, "h1", 100, 4)},
	}

	agg := newTestAggregator(p)
	result, err := agg.Search(context.Background(), hotelRequest(types.ProviderAmadeus))
	require.NoError(t, err)

	pr := result.Comparison.PriceRange
	assert.Equal(t, pr.Min, pr.Average)
	assert.Equal(t, pr.Average, pr.Max)
}

func TestAggregator_ZeroOffersIsNotAnError(t *testing.T) {
	p := &stubProvider{id: types.ProviderAmadeus, available: true, offers: nil}

	agg := newTestAggregator(p)
	result, err := agg.Search(context.Background(), hotelRequest(types.ProviderAmadeus))
	require.NoError(t, err)

	assert.Empty(t, result.Offers)
	assert.Zero(t, result.Comparison.PriceRange.Min)
	assert.Zero(t, result.Comparison.PriceRange.Average)
	assert.Nil(t, result.Recommendations.Cheapest)
}

func TestAggregator_CacheIdempotence(t *testing.T) {
	p := &stubProvider{
		id:        types.ProviderAmadeus,
		available: true,
		offers: []*types.Offer{
			hotelOffer(types.ProviderAmadeus, "h1", 120, 4),
			hotelOffer(types.ProviderAmadeus, "h2", 90, 3.5),
		},
	}

	agg := newTestAggregator(p)
	req := hotelRequest(types.ProviderAmadeus)

	first, err := agg.Search(context.Background(), req)
	require.NoError(t, err)

	second, err := agg.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(1), p.calls.Load(), "second issuance must be served from cache")

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON, "responses must be byte-identical")
}

func TestAggregator_CacheKeyedByProviderSet(t *testing.T) {
	p1 := &stubProvider{id: types.ProviderAmadeus, available: true,
		offers: []*types.Offer{hotelOffer(types.ProviderAmadeus, "h1", 120, 4)}}
	p2 := &stubProvider{id: types.ProviderBooking, available: true,
		offers: []*types.Offer{hotelOffer(types.ProviderBooking, "h2", 80, 3)}}

	agg := newTestAggregator(p1, p2)

	_, err := agg.Search(context.Background(), hotelRequest(types.ProviderAmadeus))
	require.NoError(t, err)

	// A different provider set must miss the cache
	result, err := agg.Search(context.Background(), hotelRequest(types.ProviderAmadeus, types.ProviderBooking))
	require.NoError(t, err)
	assert.Len(t, result.Offers, 2)
	assert.Equal(t, int64(2), p1.calls.Load())
}
