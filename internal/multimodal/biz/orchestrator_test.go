package biz

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/travel-planner-backend/internal/multimodal/entity"
	"github.com/voyago/travel-planner-backend/internal/multimodal/types"
	"github.com/voyago/travel-planner-backend/internal/pkg/cache"
	apperrors "github.com/voyago/travel-planner-backend/internal/pkg/errors"
)

// mockAI scripts each model call. A nil error with a nil result is never
// returned; unset calls return a usable default.
type mockAI struct {
	transcription string
	transcribeErr error
	analysis      *types.ImageAnalysis
	analyzeErr    error
	matches       []types.DestinationMatch
	matchErr      error
	plan          *types.TripPlan
	planErr       error
	suggestErr    error
	synthesized   *types.SynthesizedPlan
	synthesizeErr error
	speech        []byte
	speakErr      error
	transcribeCnt atomic.Int32
	analyzeCnt    atomic.Int32
	suggestCnt    atomic.Int32
	synthesizeCnt atomic.Int32
	speakCnt      atomic.Int32
}

func (m *mockAI) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	m.transcribeCnt.Add(1)
	if m.transcribeErr != nil {
		return "", m.transcribeErr
	}
	return m.transcription, nil
}

func (m *mockAI) AnalyzeImage(ctx context.Context, mime string, image []byte) (*types.ImageAnalysis, error) {
	m.analyzeCnt.Add(1)
	if m.analyzeErr != nil {
		return nil, m.analyzeErr
	}
	if m.analysis != nil {
		return m.analysis, nil
	}
	return &types.ImageAnalysis{Scene: "coastline", Environment: "beach", Confidence: 0.8}, nil
}

func (m *mockAI) MatchDestinations(ctx context.Context, analysis *types.ImageAnalysis) ([]types.DestinationMatch, error) {
	if m.matchErr != nil {
		return nil, m.matchErr
	}
	return m.matches, nil
}

func (m *mockAI) PlanTrip(ctx context.Context, transcript string, entities *entity.TravelEntities) (*types.TripPlan, error) {
	if m.planErr != nil {
		return nil, m.planErr
	}
	if m.plan != nil {
		return m.plan, nil
	}
	return &types.TripPlan{Destination: "Tokyo", Summary: "a week in Tokyo"}, nil
}

func (m *mockAI) SuggestTrip(ctx context.Context, destination string) (*types.TripSuggestion, error) {
	m.suggestCnt.Add(1)
	if m.suggestErr != nil {
		return nil, m.suggestErr
	}
	return &types.TripSuggestion{Destination: destination, Summary: "visit " + destination}, nil
}

func (m *mockAI) SynthesizePlan(ctx context.Context, voice *types.VoiceResult, image *types.ImageResult) (*types.SynthesizedPlan, error) {
	m.synthesizeCnt.Add(1)
	if m.synthesizeErr != nil {
		return nil, m.synthesizeErr
	}
	if m.synthesized != nil {
		return m.synthesized, nil
	}
	return &types.SynthesizedPlan{Summary: "unified plan", Destinations: []string{"Tokyo"}}, nil
}

func (m *mockAI) Speak(ctx context.Context, text string) ([]byte, error) {
	m.speakCnt.Add(1)
	if m.speakErr != nil {
		return nil, m.speakErr
	}
	if m.speech != nil {
		return m.speech, nil
	}
	return []byte("audio"), nil
}

func newTestOrchestrator(ai AIClient) *Orchestrator {
	return NewOrchestrator(ai, cache.NewMemoryCache(0, 0), 0, nil)
}

func TestOrchestrator_ProcessVoice(t *testing.T) {
	ai := &mockAI{transcription: "I am planning to travel to Tokyo next summer with a budget of $3000"}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessVoice(context.Background(), []byte("pcm"), "trip.wav", false)
	require.NoError(t, err)

	assert.Equal(t, ai.transcription, result.Transcription)
	assert.Contains(t, result.Entities.Destinations, "Tokyo")
	assert.Equal(t, string(entity.IntentPlanTrip), result.Intent)
	assert.NotNil(t, result.Plan)
	assert.Nil(t, result.SpeechAudio)
	// destination + date + budget categories found
	assert.InDelta(t, 0.74, result.Confidence, 1e-9)
}

func TestOrchestrator_ProcessVoice_WithSpeech(t *testing.T) {
	ai := &mockAI{transcription: "plan a trip to Lisbon", speech: []byte("mp3 bytes")}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessVoice(context.Background(), []byte("pcm"), "trip.wav", true)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3 bytes"), result.SpeechAudio)
}

func TestOrchestrator_ProcessVoice_SpeechFailureTolerated(t *testing.T) {
	ai := &mockAI{transcription: "plan a trip to Lisbon", speakErr: errors.New("tts down")}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessVoice(context.Background(), []byte("pcm"), "trip.wav", true)
	require.NoError(t, err)
	assert.Nil(t, result.SpeechAudio)
	assert.NotNil(t, result.Plan)
}

func TestOrchestrator_ProcessVoice_TranscriptionFailure(t *testing.T) {
	ai := &mockAI{transcribeErr: errors.New("whisper unavailable")}
	o := newTestOrchestrator(ai)

	_, err := o.ProcessVoice(context.Background(), []byte("pcm"), "trip.wav", false)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTranscriptionFailed, apperrors.ExtractCode(err))
}

func TestOrchestrator_ProcessVoice_Cached(t *testing.T) {
	ai := &mockAI{transcription: "plan a trip to Lisbon"}
	o := newTestOrchestrator(ai)

	first, err := o.ProcessVoice(context.Background(), []byte("pcm"), "trip.wav", false)
	require.NoError(t, err)
	second, err := o.ProcessVoice(context.Background(), []byte("pcm"), "trip.wav", false)
	require.NoError(t, err)

	assert.Equal(t, int32(1), ai.transcribeCnt.Load())
	assert.Equal(t, first.Transcription, second.Transcription)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestOrchestrator_ProcessImage_TopKSuggestions(t *testing.T) {
	ai := &mockAI{
		matches: []types.DestinationMatch{
			{Name: "Santorini", Score: 0.95},
			{Name: "Amalfi", Score: 0.9},
			{Name: "Nice", Score: 0.85},
			{Name: "Split", Score: 0.8},
			{Name: "Valletta", Score: 0.75},
		},
	}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessImage(context.Background(), []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)

	assert.Len(t, result.MatchingDestinations, 5)
	assert.Len(t, result.TripSuggestions, DefaultTopK)
	assert.Equal(t, int32(DefaultTopK), ai.suggestCnt.Load())
	assert.Equal(t, 0.8, result.Confidence)
}

func TestOrchestrator_ProcessImage_SuggestionFailuresDropped(t *testing.T) {
	ai := &mockAI{
		matches:    []types.DestinationMatch{{Name: "Santorini", Score: 0.95}},
		suggestErr: errors.New("model overloaded"),
	}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessImage(context.Background(), []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Empty(t, result.TripSuggestions)
	assert.Len(t, result.MatchingDestinations, 1)
}

func TestOrchestrator_ProcessImage_AnalysisFailure(t *testing.T) {
	ai := &mockAI{analyzeErr: errors.New("vision unavailable")}
	o := newTestOrchestrator(ai)

	_, err := o.ProcessImage(context.Background(), []byte("jpeg"), "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrImageAnalysisFailed, apperrors.ExtractCode(err))
}

func TestOrchestrator_ProcessImage_Cached(t *testing.T) {
	ai := &mockAI{matches: []types.DestinationMatch{{Name: "Santorini", Score: 0.95}}}
	o := newTestOrchestrator(ai)

	_, err := o.ProcessImage(context.Background(), []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	_, err = o.ProcessImage(context.Background(), []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, int32(1), ai.analyzeCnt.Load())
}

func TestOrchestrator_ProcessCombined_BothSucceed(t *testing.T) {
	ai := &mockAI{
		transcription: "I am planning to travel to Tokyo next summer with a budget of $3000",
		analysis:      &types.ImageAnalysis{Scene: "temple", Environment: "city", Confidence: 0.9},
	}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessCombined(context.Background(), []byte("pcm"), "trip.wav", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)

	require.NotNil(t, result.VoiceResult)
	require.NotNil(t, result.ImageResult)
	require.NotNil(t, result.SynthesizedPlan)
	assert.False(t, result.SynthesisSkipped)

	// 0.5*0.74 + 0.5*0.9 + 0.1
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
	assert.Equal(t, result.Confidence, result.SynthesizedPlan.Confidence)
}

func TestOrchestrator_ProcessCombined_ConfidenceCapped(t *testing.T) {
	assert.Equal(t, 1.0, combinedConfidence(1.0, 1.0))
	assert.InDelta(t, 0.6, combinedConfidence(0.5, 0.5), 1e-9)
}

func TestOrchestrator_ProcessCombined_VoiceFailureSkipsSynthesis(t *testing.T) {
	ai := &mockAI{
		transcribeErr: errors.New("whisper unavailable"),
		analysis:      &types.ImageAnalysis{Scene: "temple", Confidence: 0.9},
	}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessCombined(context.Background(), []byte("pcm"), "trip.wav", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)

	assert.Nil(t, result.VoiceResult)
	require.NotNil(t, result.ImageResult)
	assert.Nil(t, result.SynthesizedPlan)
	assert.True(t, result.SynthesisSkipped)
	assert.Equal(t, "voice processing failed", result.SkipReason)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, int32(0), ai.synthesizeCnt.Load())
}

func TestOrchestrator_ProcessCombined_ImageFailureSkipsSynthesis(t *testing.T) {
	ai := &mockAI{
		transcription: "plan a trip to Lisbon",
		analyzeErr:    errors.New("vision unavailable"),
	}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessCombined(context.Background(), []byte("pcm"), "trip.wav", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)

	require.NotNil(t, result.VoiceResult)
	assert.Nil(t, result.ImageResult)
	assert.True(t, result.SynthesisSkipped)
	assert.Equal(t, "image processing failed", result.SkipReason)
	assert.Equal(t, result.VoiceResult.Confidence, result.Confidence)
}

func TestOrchestrator_ProcessCombined_SynthesisCallFailureTolerated(t *testing.T) {
	ai := &mockAI{
		transcription: "plan a trip to Lisbon",
		synthesizeErr: errors.New("model overloaded"),
	}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessCombined(context.Background(), []byte("pcm"), "trip.wav", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	require.NotNil(t, result.VoiceResult)
	require.NotNil(t, result.ImageResult)
	assert.Nil(t, result.SynthesizedPlan)
	assert.True(t, result.SynthesisSkipped)
	assert.Equal(t, "synthesis call failed", result.SkipReason)
}

func TestOrchestrator_ProcessCombined_AllFail(t *testing.T) {
	ai := &mockAI{
		transcribeErr: errors.New("whisper unavailable"),
		analyzeErr:    errors.New("vision unavailable"),
	}
	o := newTestOrchestrator(ai)

	_, err := o.ProcessCombined(context.Background(), []byte("pcm"), "trip.wav", []byte("jpeg"), "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAllModalitiesFailed, apperrors.ExtractCode(err))
}

func TestOrchestrator_ProcessCombined_NoInput(t *testing.T) {
	o := newTestOrchestrator(&mockAI{})

	_, err := o.ProcessCombined(context.Background(), nil, "", nil, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNoModalityInput, apperrors.ExtractCode(err))
}

func TestOrchestrator_ProcessCombined_ImageOnly(t *testing.T) {
	ai := &mockAI{analysis: &types.ImageAnalysis{Scene: "temple", Confidence: 0.9}}
	o := newTestOrchestrator(ai)

	result, err := o.ProcessCombined(context.Background(), nil, "", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, result.SynthesisSkipped)
	assert.Equal(t, "no audio input", result.SkipReason)
	assert.Nil(t, result.VoiceResult)
	require.NotNil(t, result.ImageResult)
}
