package types

import "github.com/voyago/travel-planner-backend/internal/multimodal/entity"

// VoiceResult is the outcome of the voice modality: transcription, locally
// extracted entities, and the planning synthesis. Never mutated after
// creation.
type VoiceResult struct {
	Transcription string                 `json:"transcription"`
	Entities      *entity.TravelEntities `json:"entities"`
	Intent        string                 `json:"intent"`
	Confidence    float64                `json:"confidence"`
	Plan          *TripPlan              `json:"plan,omitempty"`
	SpeechAudio   []byte                 `json:"speech_audio,omitempty"` // base64 in JSON
}

// ImageResult is the outcome of the image modality
type ImageResult struct {
	Analysis             *ImageAnalysis     `json:"image_analysis"`
	MatchingDestinations []DestinationMatch `json:"matching_destinations"`
	TripSuggestions      []TripSuggestion   `json:"trip_suggestions"`
	Confidence           float64            `json:"confidence"`
}

// ImageAnalysis is the vision model's structured description of the image
type ImageAnalysis struct {
	Scene       string   `json:"scene"`
	Landmarks   []string `json:"landmarks"`
	Environment string   `json:"environment"` // beach, mountain, city, ...
	Season      string   `json:"season"`
	Activities  []string `json:"activities"`
	Confidence  float64  `json:"confidence"`
}

// DestinationMatch is one destination the image was matched against
type DestinationMatch struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// TripPlan is a synthesized travel plan for one destination
type TripPlan struct {
	Destination     string    `json:"destination"`
	Summary         string    `json:"summary"`
	Days            []DayPlan `json:"days,omitempty"`
	EstimatedBudget string    `json:"estimated_budget,omitempty"`
}

// DayPlan is one itinerary day
type DayPlan struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Activities []string `json:"activities"`
}

// TripSuggestion is a short suggestion for one matched destination
type TripSuggestion struct {
	Destination string   `json:"destination"`
	Summary     string   `json:"summary"`
	Highlights  []string `json:"highlights"`
}

// SynthesizedPlan reconciles the voice and image results into one unified
// recommendation. It references both modality results; it does not own them.
type SynthesizedPlan struct {
	Summary      string    `json:"summary"`
	Destinations []string  `json:"destinations"`
	Plan         *TripPlan `json:"plan,omitempty"`
	Confidence   float64   `json:"confidence"`
}

// CombinedResult is the outcome of the combined flow. When one modality
// fails, the surviving result is returned with SynthesisSkipped set; a
// synthesis is never fabricated from a single input.
type CombinedResult struct {
	VoiceResult      *VoiceResult     `json:"voice_result,omitempty"`
	ImageResult      *ImageResult     `json:"image_result,omitempty"`
	SynthesizedPlan  *SynthesizedPlan `json:"synthesized_plan,omitempty"`
	Confidence       float64          `json:"confidence"`
	SynthesisSkipped bool             `json:"synthesis_skipped"`
	SkipReason       string           `json:"skip_reason,omitempty"`
}
