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

// AmadeusProvider implements the Amadeus self-service travel APIs for both
// flight and hotel search
type AmadeusProvider struct {
	*BaseProvider
}

// NewAmadeusProvider creates a new Amadeus provider
func NewAmadeusProvider(config *types.ProviderConfig) (Provider, error) {
	return &AmadeusProvider{BaseProvider: NewBaseProvider(config)}, nil
}

// Supports reports the search kinds Amadeus serves
func (p *AmadeusProvider) Supports(kind types.SearchKind) bool {
	return kind == types.KindFlights || kind == types.KindHotels
}

// amadeusFlightResponse mirrors the flight-offers payload
type amadeusFlightResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Itineraries []struct {
			Duration string `json:"duration"` // ISO 8601, e.g. PT7H30M
			Segments []struct {
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
				Departure   struct {
					IATACode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IATACode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
		TravelerPricings []struct {
			FareDetailsBySegment []struct {
				Cabin string `json:"cabin"`
			} `json:"fareDetailsBySegment"`
		} `json:"travelerPricings"`
	} `json:"data"`
}

// amadeusHotelResponse mirrors the hotel-offers payload
type amadeusHotelResponse struct {
	Data []struct {
		Hotel struct {
			HotelID string `json:"hotelId"`
			Name    string `json:"name"`
			Rating  string `json:"rating"` // stars as string
			Address struct {
				Lines    []string `json:"lines"`
				CityName string   `json:"cityName"`
			} `json:"address"`
		} `json:"hotel"`
		Offers []struct {
			ID    string `json:"id"`
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
			Room struct {
				TypeEstimated struct {
					Category string `json:"category"`
				} `json:"typeEstimated"`
			} `json:"room"`
		} `json:"offers"`
	} `json:"data"`
}

// Search executes a flight or hotel search against Amadeus
func (p *AmadeusProvider) Search(ctx context.Context, req *types.SearchRequest) ([]*types.Offer, error) {
	var path string
	params := url.Values{}

	switch req.Kind {
	case types.KindFlights:
		path = "/v2/shopping/flight-offers"
		params.Set("originLocationCode", req.Origin)
		params.Set("destinationLocationCode", req.Destination)
		params.Set("departureDate", req.StartDate)
		if req.EndDate != "" {
			params.Set("returnDate", req.EndDate)
		}
		params.Set("adults", strconv.Itoa(req.Adults))
		if req.Children > 0 {
			params.Set("children", strconv.Itoa(req.Children))
		}
	case types.KindHotels:
		path = "/v3/shopping/hotel-offers"
		params.Set("cityCode", req.Destination)
		params.Set("checkInDate", req.StartDate)
		params.Set("checkOutDate", req.EndDate)
		params.Set("adults", strconv.Itoa(req.Adults))
		params.Set("roomQuantity", strconv.Itoa(req.Rooms))
	default:
		return nil, fmt.Errorf("%w: %s does not support %s", types.ErrProviderNotAvailable, p.GetID(), req.Kind)
	}
	if req.Currency != "" {
		params.Set("currencyCode", req.Currency)
	}

	body, err := p.doGet(ctx, path, params)
	if err != nil {
		return nil, err
	}

	if req.Kind == types.KindFlights {
		return p.normalizeFlights(body)
	}
	return p.normalizeHotels(body)
}

func (p *AmadeusProvider) doGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	apiURL := fmt.Sprintf("%s%s?%s", p.config.APIHost, path, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.GetAPIKey()))

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

	return io.ReadAll(resp.Body)
}

func (p *AmadeusProvider) normalizeFlights(body []byte) ([]*types.Offer, error) {
	var payload amadeusFlightResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "MALFORMED_RESPONSE",
			Message:  "Failed to decode flight offers",
			Err:      err,
		}
	}

	offers := make([]*types.Offer, 0, len(payload.Data))
	for _, d := range payload.Data {
		// id and price are required; an offer missing them cannot be ranked
		if d.ID == "" {
			continue
		}
		amount, err := parseAmount(d.Price.Total)
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

		if len(d.Itineraries) > 0 {
			it := d.Itineraries[0]
			flight.DurationMinutes = parseISODuration(it.Duration)
			flight.Duration = types.FormatDuration(flight.DurationMinutes)
			if n := len(it.Segments); n > 0 {
				first, last := it.Segments[0], it.Segments[n-1]
				flight.Airline = orUnknown(first.CarrierCode)
				flight.FlightNumber = orUnknown(first.CarrierCode + first.Number)
				flight.Origin = orUnknown(first.Departure.IATACode)
				flight.Destination = orUnknown(last.Arrival.IATACode)
				flight.DepartureTime = orUnknown(first.Departure.At)
				flight.ArrivalTime = orUnknown(last.Arrival.At)
				flight.Stops = n - 1
			}
		}
		if len(d.TravelerPricings) > 0 && len(d.TravelerPricings[0].FareDetailsBySegment) > 0 {
			flight.CabinClass = orUnknown(d.TravelerPricings[0].FareDetailsBySegment[0].Cabin)
		}

		offers = append(offers, &types.Offer{
			ID:       types.QualifyID(p.GetID(), d.ID),
			Provider: p.GetID(),
			Kind:     types.KindFlights,
			Price:    types.Money{Amount: amount, Currency: orUnknown(d.Price.Currency)},
			Flight:   flight,
		})
	}

	return offers, nil
}

func (p *AmadeusProvider) normalizeHotels(body []byte) ([]*types.Offer, error) {
	var payload amadeusHotelResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "MALFORMED_RESPONSE",
			Message:  "Failed to decode hotel offers",
			Err:      err,
		}
	}

	var offers []*types.Offer
	for _, d := range payload.Data {
		rating, _ := strconv.ParseFloat(d.Hotel.Rating, 64)
		address := types.Unknown
		if len(d.Hotel.Address.Lines) > 0 {
			address = d.Hotel.Address.Lines[0]
			if d.Hotel.Address.CityName != "" {
				address += ", " + d.Hotel.Address.CityName
			}
		}

		for _, o := range d.Offers {
			if o.ID == "" {
				continue
			}
			amount, err := parseAmount(o.Price.Total)
			if err != nil {
				continue
			}

			offers = append(offers, &types.Offer{
				ID:       types.QualifyID(p.GetID(), o.ID),
				Provider: p.GetID(),
				Kind:     types.KindHotels,
				Price:    types.Money{Amount: amount, Currency: orUnknown(o.Price.Currency)},
				Hotel: &types.HotelDetails{
					Name:     orUnknown(d.Hotel.Name),
					Address:  address,
					Rating:   rating,
					RoomType: orUnknown(o.Room.TypeEstimated.Category),
				},
			})
		}
	}

	return offers, nil
}
