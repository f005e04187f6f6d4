package types

import (
	"fmt"
	"time"
)

// SearchRequest is the normalized search issued to the aggregator. It is
// constructed fresh per HTTP request and never mutated afterwards.
type SearchRequest struct {
	Kind        SearchKind   `json:"kind"`
	Origin      string       `json:"origin,omitempty"` // flights only, IATA code or city
	Destination string       `json:"destination"`
	StartDate   string       `json:"start_date"`         // departure / check-in, YYYY-MM-DD
	EndDate     string       `json:"end_date,omitempty"` // return / check-out
	Adults      int          `json:"adults"`
	Children    int          `json:"children,omitempty"`
	Rooms       int          `json:"rooms,omitempty"` // hotels only
	Currency    string       `json:"currency"`
	Providers   []ProviderID `json:"providers"`
}

const dateLayout = "2006-01-02"

// Validate rejects malformed requests before any external call is issued.
func (r *SearchRequest) Validate() error {
	if r.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidRequest)
	}
	if len(r.Providers) == 0 {
		return fmt.Errorf("%w: at least one provider must be selected", ErrInvalidRequest)
	}
	if r.Adults < 1 {
		return fmt.Errorf("%w: at least one adult traveler is required", ErrInvalidRequest)
	}
	if r.StartDate == "" {
		return fmt.Errorf("%w: start date is required", ErrInvalidRequest)
	}
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return fmt.Errorf("%w: invalid start date %q", ErrInvalidRequest, r.StartDate)
	}
	if r.EndDate != "" {
		end, err := time.Parse(dateLayout, r.EndDate)
		if err != nil {
			return fmt.Errorf("%w: invalid end date %q", ErrInvalidRequest, r.EndDate)
		}
		if end.Before(start) {
			return fmt.Errorf("%w: end date before start date", ErrInvalidRequest)
		}
	}

	switch r.Kind {
	case KindFlights:
		if r.Origin == "" {
			return fmt.Errorf("%w: origin is required for flight search", ErrInvalidRequest)
		}
	case KindHotels:
		if r.Rooms < 1 {
			return fmt.Errorf("%w: at least one room is required", ErrInvalidRequest)
		}
		if r.EndDate == "" {
			return fmt.Errorf("%w: check-out date is required", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown search kind %q", ErrInvalidRequest, r.Kind)
	}

	return nil
}
