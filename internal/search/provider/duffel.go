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

// DuffelProvider implements the Duffel flight search API
type DuffelProvider struct {
	*BaseProvider
}

// NewDuffelProvider creates a new Duffel provider
func NewDuffelProvider(config *types.ProviderConfig) (Provider, error) {
	return &DuffelProvider{BaseProvider: NewBaseProvider(config)}, nil
}

// Supports reports the search kinds Duffel serves
func (p *DuffelProvider) Supports(kind types.SearchKind) bool {
	return kind == types.KindFlights
}

// duffelOfferRequest is the offer request body
type duffelOfferRequest struct {
	Data struct {
		Slices     []duffelSlice `json:"slices"`
		Passengers []struct {
			Type string `json:"type"`
		} `json:"passengers"`
		CabinClass string `json:"cabin_class,omitempty"`
	} `json:"data"`
}

type duffelSlice struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

// duffelOfferResponse mirrors the offers payload
type duffelOfferResponse struct {
	Data struct {
		Offers []struct {
			ID            string `json:"id"`
			TotalAmount   string `json:"total_amount"`
			TotalCurrency string `json:"total_currency"`
			Slices        []struct {
				Duration string `json:"duration"` // ISO 8601
				Segments []struct {
					Origin struct {
						IATACode string `json:"iata_code"`
					} `json:"origin"`
					Destination struct {
						IATACode string `json:"iata_code"`
					} `json:"destination"`
					DepartingAt      string `json:"departing_at"`
					ArrivingAt       string `json:"arriving_at"`
					MarketingCarrier struct {
						Name string `json:"name"`
					} `json:"marketing_carrier"`
					MarketingCarrierFlightNumber string `json:"marketing_carrier_flight_number"`
				} `json:"segments"`
			} `json:"slices"`
		} `json:"offers"`
	} `json:"data"`
}

// Search executes a flight search against Duffel
func (p *DuffelProvider) Search(ctx context.Context, req *types.SearchRequest) ([]*types.Offer, error) {
	if req.Kind != types.KindFlights {
		return nil, fmt.Errorf("%w: %s does not support %s", types.ErrProviderNotAvailable, p.GetID(), req.Kind)
	}

	var duffelReq duffelOfferRequest
	duffelReq.Data.Slices = []duffelSlice{{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.StartDate,
	}}
	if req.EndDate != "" {
		duffelReq.Data.Slices = append(duffelReq.Data.Slices, duffelSlice{
			Origin:        req.Destination,
			Destination:   req.Origin,
			DepartureDate: req.EndDate,
		})
	}
	for i := 0; i < req.Adults; i++ {
		duffelReq.Data.Passengers = append(duffelReq.Data.Passengers, struct {
			Type string `json:"type"`
		}{Type: "adult"})
	}
	for i := 0; i < req.Children; i++ {
		duffelReq.Data.Passengers = append(duffelReq.Data.Passengers, struct {
			Type string `json:"type"`
		}{Type: "child"})
	}

	reqBody, err := json.Marshal(duffelReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/air/offer_requests?return_offers=true", p.config.APIHost)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.GetAPIKey()))
	httpReq.Header.Set("Duffel-Version", "v2")

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

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	var payload duffelOfferResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "MALFORMED_RESPONSE",
			Message:  "Failed to decode offers",
			Err:      err,
		}
	}

	offers := make([]*types.Offer, 0, len(payload.Data.Offers))
	for _, o := range payload.Data.Offers {
		if o.ID == "" {
			continue
		}
		amount, err := parseAmount(o.TotalAmount)
		if err != nil {
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

		if len(o.Slices) > 0 {
			sl := o.Slices[0]
			flight.DurationMinutes = parseISODuration(sl.Duration)
			flight.Duration = types.FormatDuration(flight.DurationMinutes)
			if n := len(sl.Segments); n > 0 {
				first, last := sl.Segments[0], sl.Segments[n-1]
				flight.Airline = orUnknown(first.MarketingCarrier.Name)
				flight.FlightNumber = orUnknown(first.MarketingCarrierFlightNumber)
				flight.Origin = orUnknown(first.Origin.IATACode)
				flight.Destination = orUnknown(last.Destination.IATACode)
				flight.DepartureTime = orUnknown(first.DepartingAt)
				flight.ArrivalTime = orUnknown(last.ArrivingAt)
				flight.Stops = n - 1
			}
		}

		offers = append(offers, &types.Offer{
			ID:       types.QualifyID(p.GetID(), o.ID),
			Provider: p.GetID(),
			Kind:     types.KindFlights,
			Price:    types.Money{Amount: amount, Currency: orUnknown(o.TotalCurrency)},
			Flight:   flight,
		})
	}

	return offers, nil
}
