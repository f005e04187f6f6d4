package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyago/travel-planner-backend/internal/search/types"
)

func TestNewFactory(t *testing.T) {
	factory := NewFactory()
	assert.NotNil(t, factory)

	// Check that all built-in providers are registered
	providers := factory.ListProviders()
	assert.Contains(t, providers, types.ProviderAmadeus)
	assert.Contains(t, providers, types.ProviderSkyscanner)
	assert.Contains(t, providers, types.ProviderDuffel)
	assert.Contains(t, providers, types.ProviderBooking)
}

func TestFactory_Create(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name    string
		config  *types.ProviderConfig
		wantErr bool
	}{
		{
			name: "create amadeus provider",
			config: &types.ProviderConfig{
				ID:      types.ProviderAmadeus,
				Name:    "Amadeus",
				APIHost: "https://test.api.amadeus.com",
				APIKey:  "test-key",
			},
		},
		{
			name: "create duffel provider without key",
			config: &types.ProviderConfig{
				ID:      types.ProviderDuffel,
				Name:    "Duffel",
				APIHost: "https://api.duffel.com",
			},
		},
		{
			name: "invalid config",
			config: &types.ProviderConfig{
				ID:   types.ProviderAmadeus,
				Name: "Amadeus",
				// Missing APIHost
			},
			wantErr: true,
		},
		{
			name: "unknown provider",
			config: &types.ProviderConfig{
				ID:      "unknown",
				Name:    "Unknown",
				APIHost: "https://api.unknown.com",
				APIKey:  "test-key",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := factory.Create(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, p)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.config.ID, p.GetID())
		})
	}
}

func TestFactory_SupportsByKind(t *testing.T) {
	factory := NewFactory()

	mk := func(id types.ProviderID, host string) Provider {
		p, err := factory.Create(&types.ProviderConfig{
			ID:      id,
			Name:    string(id),
			APIHost: host,
			APIKey:  "test-key",
		})
		assert.NoError(t, err)
		return p
	}

	amadeus := mk(types.ProviderAmadeus, "https://test.api.amadeus.com")
	duffel := mk(types.ProviderDuffel, "https://api.duffel.com")
	booking := mk(types.ProviderBooking, "https://booking-com.p.rapidapi.com")

	assert.True(t, amadeus.Supports(types.KindFlights))
	assert.True(t, amadeus.Supports(types.KindHotels))
	assert.True(t, duffel.Supports(types.KindFlights))
	assert.False(t, duffel.Supports(types.KindHotels))
	assert.False(t, booking.Supports(types.KindFlights))
	assert.True(t, booking.Supports(types.KindHotels))
}
