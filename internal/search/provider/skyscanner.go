package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/voyago/travel-planner-backend/internal/search/types"
)

// SkyscannerProvider implements the Skyscanner search API for flights and
// hotels
type SkyscannerProvider struct {
	*BaseProvider
}

// NewSkyscannerProvider creates a new Skyscanner provider
func NewSkyscannerProvider(config *types.ProviderConfig) (Provider, error) {
	return &SkyscannerProvider{BaseProvider: NewBaseProvider(config)}, nil
}

// Supports reports the search kinds Skyscanner serves
func (p *SkyscannerProvider) Supports(kind types.SearchKind) bool {
	return kind == types.KindFlights || kind == types.KindHotels
}

// skyscannerSearchRequest is the shared request body
type skyscannerSearchRequest struct {
	Origin       string `json:"origin,omitempty"`
	Destination  string `json:"destination"`
	OutboundDate string `json:"outbound_date"`
	InboundDate  string `json:"inbound_date,omitempty"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children,omitempty"`
	Rooms        int    `json:"rooms,omitempty"`
	Currency     string `json:"currency,omitempty"`
}

// skyscannerFlightResponse mirrors the itineraries payload
type skyscannerFlightResponse struct {
	Itineraries []struct {
		ID    string `json:"id"`
		Price struct {
			Raw      float64 `json:"raw"`
			Currency string  `json:"currency"`
		} `json:"price"`
		Legs []struct {
			Origin struct {
				DisplayCode string `json:"displayCode"`
			} `json:"origin"`
			Destination struct {
				DisplayCode string `json:"displayCode"`
			} `json:"destination"`
			DurationInMinutes int    `json:"durationInMinutes"`
			StopCount         int    `json:"stopCount"`
			Departure         string `json:"departure"`
			Arrival           string `json:"arrival"`
			Carriers          struct {
				Marketing []struct {
					Name string `json:"name"`
				} `json:"marketing"`
			} `json:"carriers"`
		} `json:"legs"`
	} `json:"itineraries"`
}

// skyscannerHotelResponse mirrors the hotel results payload
type skyscannerHotelResponse struct {
	Hotels []struct {
		HotelID  string  `json:"hotelId"`
		Name     string  `json:"name"`
		Stars    float64 `json:"stars"`
		PriceRaw float64 `json:"priceRaw"`
		Currency string  `json:"currency"`
		Address  string  `json:"address"`
		RoomType string  `json:"roomType"`
	} `json:"hotels"`
}

// Search executes a flight or hotel search against Skyscanner
func (p *SkyscannerProvider) Search(ctx context.Context, req *types.SearchRequest) ([]*types.Offer, error) {
	var path string
	switch req.Kind {
	case types.KindFlights:
		path = "/v3/flights/live/search"
	case types.KindHotels:
		path = "/v3/hotels/live/search"
	default:
		return nil, fmt.Errorf("%w: %s does not support %s", types.ErrProviderNotAvailable, p.GetID(), req.Kind)
	}

	ssReq := skyscannerSearchRequest{
		Origin:       req.Origin,
		Destination:  req.Destination,
		OutboundDate: req.StartDate,
		InboundDate:  req.EndDate,
		Adults:       req.Adults,
		Children:     req.Children,
		Rooms:        req.Rooms,
		Currency:     req.Currency,
	}

	reqBody, err := json.Marshal(ssReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s%s", p.config.APIHost, path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("x-api-key", p.GetAPIKey())

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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if req.Kind == types.KindFlights {
		return p.normalizeFlights(body)
	}
	return p.normalizeHotels(body)
}

func (p *SkyscannerProvider) normalizeFlights(body []byte) ([]*types.Offer, error) {
	var payload skyscannerFlightResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "MALFORMED_RESPONSE",
			Message:  "Failed to decode itineraries",
			Err:      err,
		}
	}

	offers := make([]*types.Offer, 0, len(payload.Itineraries))
	for _, it := range payload.Itineraries {
		if it.ID == "" || it.Price.Raw < 0 {
			continue
		}
		if it.Price.Raw == 0 {
			// priceless offers cannot be ranked
			continue
		}

		flight := &types.FlightDetails{
			Airline:       types.Unknown,
			FlightNumber:  types.Unknown,
			Origin:        types.Unknown,
			Destination:   types.Unknown,
			DepartureTime: types.Unknown,
			ArrivalTime:   types.Unknown,
			Duration:      types.Unknown,
			Stops:         -1,
			CabinClass:    types.Unknown,
		}

		if len(it.Legs) > 0 {
			leg := it.Legs[0]
			flight.Origin = orUnknown(leg.Origin.DisplayCode)
			flight.Destination = orUnknown(leg.Destination.DisplayCode)
			flight.DepartureTime = orUnknown(leg.Departure)
			flight.ArrivalTime = orUnknown(leg.Arrival)
			flight.DurationMinutes = leg.DurationInMinutes
			flight.Duration = types.FormatDuration(leg.DurationInMinutes)
			flight.Stops = leg.StopCount
			if len(leg.Carriers.Marketing) > 0 {
				flight.Airline = orUnknown(leg.Carriers.Marketing[0].Name)
			}
		}

		offers = append(offers, &types.Offer{
			ID:       types.QualifyID(p.GetID(), it.ID),
			Provider: p.GetID(),
			Kind:     types.KindFlights,
			Price:    types.Money{Amount: it.Price.Raw, Currency: orUnknown(it.Price.Currency)},
			Flight:   flight,
		})
	}

	return offers, nil
}

func (p *SkyscannerProvider) normalizeHotels(body []byte) ([]*types.Offer, error) {
	var payload skyscannerHotelResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "MALFORMED_RESPONSE",
			Message:  "Failed to decode hotel results",
			Err:      err,
		}
	}

	offers := make([]*types.Offer, 0, len(payload.Hotels))
	for _, h := range payload.Hotels {
		if h.HotelID == "" || h.PriceRaw <= 0 {
			continue
		}

		offers = append(offers, &types.Offer{
			ID:       types.QualifyID(p.GetID(), h.HotelID),
			Provider: p.GetID(),
			Kind:     types.KindHotels,
			Price:    types.Money{Amount: h.PriceRaw, Currency: orUnknown(h.Currency)},
			Hotel: &types.HotelDetails{
				Name:     orUnknown(h.Name),
				Address:  orUnknown(h.Address),
				Rating:   h.Stars,
				RoomType: orUnknown(h.RoomType),
			},
		})
	}

	return offers, nil
}
