package types

// ProviderID identifies an external travel-data provider
type ProviderID string

const (
	ProviderAmadeus    ProviderID = "amadeus"
	ProviderSkyscanner ProviderID = "skyscanner"
	ProviderDuffel     ProviderID = "duffel"
	ProviderBooking    ProviderID = "booking"
)

// SearchKind distinguishes flight and hotel searches
type SearchKind string

const (
	KindFlights SearchKind = "flights"
	KindHotels  SearchKind = "hotels"
)

// ProviderConfig represents travel provider configuration
type ProviderConfig struct {
	ID   ProviderID `json:"id" yaml:"id" mapstructure:"id"`
	Name string     `json:"name" yaml:"name" mapstructure:"name"`

	// API settings
	APIHost string `json:"api_host" yaml:"api_host" mapstructure:"api_host"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Optional settings
	Timeout    int `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`             // seconds
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" mapstructure:"max_retries"` // default: 3
}

// Validate validates the provider configuration. A missing API key is not a
// validation error: the provider is constructed but reports itself
// unavailable, so requests degrade instead of the process refusing to start.
func (c *ProviderConfig) Validate() error {
	if c.ID == "" {
		return ErrInvalidProviderID
	}
	if c.Name == "" {
		return ErrInvalidProviderName
	}
	if c.APIHost == "" {
		return ErrInvalidAPIHost
	}
	return nil
}
