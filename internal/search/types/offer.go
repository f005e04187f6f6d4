package types

import "fmt"

// Unknown is the sentinel substituted for optional fields a provider did
// not return, so downstream consumers can rely on a stable shape.
const Unknown = "unknown"

// Money is a price with its currency
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Offer is the shared normalized shape every provider payload is mapped
// into. ID is provider-qualified so it stays unique across the merged set
// even when two providers return the same real-world offer.
type Offer struct {
	ID       string         `json:"id"`
	Provider ProviderID     `json:"provider"`
	Kind     SearchKind     `json:"kind"`
	Price    Money          `json:"price"`
	Flight   *FlightDetails `json:"flight,omitempty"`
	Hotel    *HotelDetails  `json:"hotel,omitempty"`
}

// FlightDetails carries the flight-specific timing fields
type FlightDetails struct {
	Airline         string `json:"airline"`
	FlightNumber    string `json:"flight_number"`
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	DepartureTime   string `json:"departure_time"`
	ArrivalTime     string `json:"arrival_time"`
	Duration        string `json:"duration"`         // display form, e.g. "7h 30m"
	DurationMinutes int    `json:"duration_minutes"` // 0 means unknown
	Stops           int    `json:"stops"`            // -1 means unknown
	CabinClass      string `json:"cabin_class"`
}

// HotelDetails carries the hotel-specific location fields
type HotelDetails struct {
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Rating   float64 `json:"rating"` // 0 means unknown
	RoomType string  `json:"room_type"`
}

// QualifyID builds the provider-qualified offer ID
func QualifyID(provider ProviderID, rawID string) string {
	return fmt.Sprintf("%s:%s", provider, rawID)
}

// FormatDuration renders minutes as "7h 30m"
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return Unknown
	}
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
