package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/voyago/travel-planner-backend/internal/search/types"
)

// BookingProvider implements the Booking.com hotel search API
type BookingProvider struct {
	*BaseProvider
}

// NewBookingProvider creates a new Booking.com provider
func NewBookingProvider(config *types.ProviderConfig) (Provider, error) {
	return &BookingProvider{BaseProvider: NewBaseProvider(config)}, nil
}

// Supports reports the search kinds Booking.com serves
func (p *BookingProvider) Supports(kind types.SearchKind) bool {
	return kind == types.KindHotels
}

// bookingResponse mirrors the hotel search payload
type bookingResponse struct {
	Result []struct {
		HotelID                string  `json:"hotel_id"`
		HotelName              string  `json:"hotel_name"`
		ReviewScore            float64 `json:"review_score"` // 0-10 scale
		MinTotalPrice          float64 `json:"min_total_price"`
		CurrencyCode           string  `json:"currency_code"`
		Address                string  `json:"address"`
		UnitConfigurationLabel string  `json:"unit_configuration_label"`
	} `json:"result"`
}

// Search executes a hotel search against Booking.com
func (p *BookingProvider) Search(ctx context.Context, req *types.SearchRequest) ([]*types.Offer, error) {
	if req.Kind != types.KindHotels {
		return nil, fmt.Errorf("%w: %s does not support %s", types.ErrProviderNotAvailable, p.GetID(), req.Kind)
	}

	params := url.Values{}
	params.Set("dest_type", "city")
	params.Set("dest_name", req.Destination)
	params.Set("checkin_date", req.StartDate)
	params.Set("checkout_date", req.EndDate)
	params.Set("adults_number", strconv.Itoa(req.Adults))
	params.Set("room_number", strconv.Itoa(req.Rooms))
	if req.Children > 0 {
		params.Set("children_number", strconv.Itoa(req.Children))
	}
	if req.Currency != "" {
		params.Set("filter_by_currency", req.Currency)
	}

	apiURL := fmt.Sprintf("%s/v1/hotels/search?%s", p.config.APIHost, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("X-RapidAPI-Key", p.GetAPIKey())

	resp, err := p.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "REQUEST_FAILED",
			Message:  "Failed to execute request",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	var payload bookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "MALFORMED_RESPONSE",
			Message:  "Failed to decode hotel results",
			Err:      err,
		}
	}

	offers := make([]*types.Offer, 0, len(payload.Result))
	for _, h := range payload.Result {
		if h.HotelID == "" || h.MinTotalPrice <= 0 {
			continue
		}

		offers = append(offers, &types.Offer{
			ID:       types.QualifyID(p.GetID(), h.HotelID),
			Provider: p.GetID(),
			Kind:     types.KindHotels,
			Price:    types.Money{Amount: h.MinTotalPrice, Currency: orUnknown(h.CurrencyCode)},
			Hotel: &types.HotelDetails{
				Name:     orUnknown(h.HotelName),
				Address:  orUnknown(h.Address),
				Rating:   h.ReviewScore / 2, // normalize 0-10 review score to 0-5
				RoomType: orUnknown(h.UnitConfigurationLabel),
			},
		})
	}

	return offers, nil
}
