package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voyago/travel-planner-backend/internal/pkg/cache"
	apperrors "github.com/voyago/travel-planner-backend/internal/pkg/errors"
	"github.com/voyago/travel-planner-backend/internal/pkg/logger"
	"github.com/voyago/travel-planner-backend/internal/search/provider"
	"github.com/voyago/travel-planner-backend/internal/search/types"
)

// DefaultCallTimeout bounds each provider call; after it the call is
// treated as a provider failure.
const DefaultCallTimeout = 12 * time.Second

// Aggregator fans out a search to the selected providers, normalizes and
// merges their offers, and computes summary statistics and recommendations.
// A provider failure never fails the whole request; only a total failure
// surfaces as NoProviderAvailable.
type Aggregator struct {
	providers map[types.ProviderID]provider.Provider
	cache     cache.Cache
	timeout   time.Duration
	logger    *logger.Logger
}

// NewAggregator creates an Aggregator over the configured providers
func NewAggregator(providers []provider.Provider, c cache.Cache, timeout time.Duration, log *logger.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if log == nil {
		log = logger.L()
	}

	byID := make(map[types.ProviderID]provider.Provider, len(providers))
	for _, p := range providers {
		byID[p.GetID()] = p
	}

	return &Aggregator{
		providers: byID,
		cache:     c,
		timeout:   timeout,
		logger:    log.Named("search.aggregator"),
	}
}

// providerOutcome is one provider call's result, recorded at the call
// boundary. Failures are converted here and never propagate further.
type providerOutcome struct {
	id     types.ProviderID
	offers []*types.Offer
	err    error
	took   time.Duration
}

// Search runs the full aggregation flow for a validated request. Responses
// for an identical request are served from cache without re-issuing any
// external call.
func (a *Aggregator) Search(ctx context.Context, req *types.SearchRequest) (*types.AggregateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSearchInvalidRequest, err.Error())
	}

	// Unknown provider identifiers are a caller mistake, rejected before
	// any external call.
	selected := make([]provider.Provider, 0, len(req.Providers))
	for _, id := range req.Providers {
		p, ok := a.providers[id]
		if !ok {
			return nil, apperrors.New(apperrors.ErrProviderNotFound, string(id))
		}
		selected = append(selected, p)
	}

	key := a.cacheKey(req)
	if data, ok := a.cache.Get(ctx, key); ok {
		var cached types.AggregateResult
		if err := json.Unmarshal(data, &cached); err == nil {
			a.logger.Debug("cache hit", zap.String("key", key))
			return &cached, nil
		}
		a.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
	}

	outcomes := a.fanOut(ctx, req, selected)

	statuses := make([]types.ProviderStatus, 0, len(outcomes))
	var offers []*types.Offer
	succeeded := 0
	for _, out := range outcomes {
		status := types.ProviderStatus{
			Provider:   out.id,
			Succeeded:  out.err == nil,
			OfferCount: len(out.offers),
			TookMs:     out.took.Milliseconds(),
		}
		if out.err != nil {
			status.Error = out.err.Error()
			a.logger.Warn("provider failed",
				zap.String("provider", string(out.id)),
				zap.Error(out.err))
		} else {
			succeeded++
			offers = append(offers, out.offers...)
		}
		statuses = append(statuses, status)
	}

	if succeeded == 0 {
		return nil, apperrors.New(apperrors.ErrNoProviderAvailable,
			fmt.Sprintf("all %d selected providers failed", len(outcomes)))
	}

	sortOffers(offers)
	if offers == nil {
		offers = []*types.Offer{}
	}

	result := &types.AggregateResult{
		Offers:          offers,
		Comparison:      summarize(offers),
		Recommendations: recommend(req.Kind, offers),
		Providers:       statuses,
	}

	if data, err := json.Marshal(result); err == nil {
		a.cache.Set(ctx, key, data)
	}

	return result, nil
}

// fanOut issues all provider calls concurrently with a per-call timeout,
// so total latency is bounded by the slowest call rather than the sum.
// Merge order follows the request's provider order, not arrival order.
func (a *Aggregator) fanOut(ctx context.Context, req *types.SearchRequest, selected []provider.Provider) []providerOutcome {
	outcomes := make([]providerOutcome, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range selected {
		outcomes[i].id = p.GetID()

		if !p.Supports(req.Kind) {
			outcomes[i].err = fmt.Errorf("%w: no %s support", types.ErrProviderNotAvailable, req.Kind)
			continue
		}
		if !p.IsAvailable(ctx) {
			outcomes[i].err = fmt.Errorf("%w: missing API key", types.ErrProviderNotAvailable)
			continue
		}

		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			start := time.Now()
			offers, err := p.Search(callCtx, req)
			outcomes[i].took = time.Since(start)
			outcomes[i].offers = offers
			outcomes[i].err = err
			// failures are recorded, never returned, so one provider
			// cannot cancel the others
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// cacheKey builds the canonical key for a search request
func (a *Aggregator) cacheKey(req *types.SearchRequest) string {
	providers := make([]string, len(req.Providers))
	for i, id := range req.Providers {
		providers[i] = string(id)
	}
	return cache.Key{
		Kind:        string(req.Kind),
		Origin:      req.Origin,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Adults:      req.Adults,
		Children:    req.Children,
		Rooms:       req.Rooms,
		Currency:    req.Currency,
		Providers:   providers,
	}.String()
}
