package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract_TokyoTrip(t *testing.T) {
	e := NewExtractor()

	text := "I want to plan a trip to Tokyo next summer with a budget of $3000"
	entities := e.Extract(text)

	assert.Contains(t, entities.Destinations, "Tokyo")
	assert.Contains(t, entities.Budgets, "$3000")
	require.NotEmpty(t, entities.Dates)
	assert.Contains(t, entities.Dates[0], "summer")

	// identical input must yield identical output
	again := e.Extract(text)
	assert.Equal(t, entities, again)
}

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name string
		text string
		want func(t *testing.T, got *TravelEntities)
	}{
		{
			name: "multi-word destination",
			text: "We are flying to New York in March",
			want: func(t *testing.T, got *TravelEntities) {
				assert.Contains(t, got.Destinations, "New York")
				assert.Contains(t, got.Dates, "March")
			},
		},
		{
			name: "numeric date and traveler count",
			text: "Book a hotel in Rome from 2025-06-01 for 3 people",
			want: func(t *testing.T, got *TravelEntities) {
				assert.Contains(t, got.Dates, "2025-06-01")
				assert.Equal(t, 3, got.TravelerCount)
				assert.Contains(t, got.Accommodation, "hotel")
			},
		},
		{
			name: "activities and transportation",
			text: "I'd like to go hiking and skiing, travel by train",
			want: func(t *testing.T, got *TravelEntities) {
				assert.Contains(t, got.Activities, "hiking")
				assert.Contains(t, got.Activities, "skiing")
				assert.Contains(t, got.Transportation, "train")
			},
		},
		{
			name: "keyword traveler count",
			text: "A honeymoon trip to Bali",
			want: func(t *testing.T, got *TravelEntities) {
				assert.Equal(t, 2, got.TravelerCount)
				assert.Contains(t, got.Destinations, "Bali")
			},
		},
		{
			name: "euro budget",
			text: "around 1500 euros for a couple",
			want: func(t *testing.T, got *TravelEntities) {
				assert.Contains(t, got.Budgets, "1500 euros")
				assert.Equal(t, 2, got.TravelerCount)
			},
		},
		{
			name: "nothing to extract",
			text: "hello there",
			want: func(t *testing.T, got *TravelEntities) {
				assert.Empty(t, got.Destinations)
				assert.Empty(t, got.Dates)
				assert.Empty(t, got.Budgets)
				assert.Zero(t, got.TravelerCount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, e.Extract(tt.text))
		})
	}
}

func TestExtractor_RecognizeIntent(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		text          string
		wantIntent    Intent
		minConfidence float64
	}{
		{"I want to plan a trip to Tokyo", IntentPlanTrip, 0.8},
		{"book a hotel in Paris", IntentPlanTrip, 0.8},
		{"flying to Lisbon tomorrow", IntentExplore, 0.6},
		{"hello", IntentUnknown, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			intent, confidence := e.RecognizeIntent(tt.text)
			assert.Equal(t, tt.wantIntent, intent)
			assert.GreaterOrEqual(t, confidence, tt.minConfidence)
		})
	}
}
