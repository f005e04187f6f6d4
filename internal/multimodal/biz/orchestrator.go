package biz

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voyago/travel-planner-backend/internal/multimodal/entity"
	"github.com/voyago/travel-planner-backend/internal/multimodal/types"
	"github.com/voyago/travel-planner-backend/internal/pkg/cache"
	apperrors "github.com/voyago/travel-planner-backend/internal/pkg/errors"
	"github.com/voyago/travel-planner-backend/internal/pkg/logger"
)

// DefaultTopK bounds the per-destination suggestion fan-out to keep the
// cost of one image request fixed.
const DefaultTopK = 3

// AIClient is the set of external model calls the orchestrator issues.
// Every method is a suspension point against a hosted model.
type AIClient interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
	AnalyzeImage(ctx context.Context, mime string, image []byte) (*types.ImageAnalysis, error)
	MatchDestinations(ctx context.Context, analysis *types.ImageAnalysis) ([]types.DestinationMatch, error)
	PlanTrip(ctx context.Context, transcript string, entities *entity.TravelEntities) (*types.TripPlan, error)
	SuggestTrip(ctx context.Context, destination string) (*types.TripSuggestion, error)
	SynthesizePlan(ctx context.Context, voice *types.VoiceResult, image *types.ImageResult) (*types.SynthesizedPlan, error)
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Orchestrator drives the voice, image and combined planning flows
type Orchestrator struct {
	ai        AIClient
	extractor *entity.Extractor
	cache     cache.Cache
	topK      int
	logger    *logger.Logger
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(ai AIClient, c cache.Cache, topK int, log *logger.Logger) *Orchestrator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if log == nil {
		log = logger.L()
	}
	return &Orchestrator{
		ai:        ai,
		extractor: entity.NewExtractor(),
		cache:     c,
		topK:      topK,
		logger:    log.Named("multimodal.orchestrator"),
	}
}

// ProcessVoice runs the voice flow: transcribe, extract entities locally,
// synthesize a plan, and optionally render the plan back to speech. A
// speech-synthesis failure degrades to a plan without audio.
func (o *Orchestrator) ProcessVoice(ctx context.Context, audio []byte, filename string, withSpeech bool) (*types.VoiceResult, error) {
	key := o.modalityKey("voice", audio, fmt.Sprintf("speech=%t", withSpeech))
	if data, ok := o.cache.Get(ctx, key); ok {
		var cached types.VoiceResult
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	transcription, err := o.ai.Transcribe(ctx, filename, bytes.NewReader(audio))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTranscriptionFailed)
	}

	entities := o.extractor.Extract(transcription)
	intent, _ := o.extractor.RecognizeIntent(transcription)

	plan, err := o.ai.PlanTrip(ctx, transcription, entities)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSynthesisFailed)
	}

	result := &types.VoiceResult{
		Transcription: transcription,
		Entities:      entities,
		Intent:        string(intent),
		Confidence:    voiceConfidence(entities),
		Plan:          plan,
	}

	if withSpeech && plan != nil && plan.Summary != "" {
		speech, err := o.ai.Speak(ctx, plan.Summary)
		if err != nil {
			o.logger.Warn("speech synthesis failed, returning plan without audio", zap.Error(err))
		} else {
			result.SpeechAudio = speech
		}
	}

	o.store(ctx, key, result)
	return result, nil
}

// ProcessImage runs the image flow: vision analysis, destination matching,
// then a bounded fan-out of suggestion calls for the top matches. A failed
// suggestion call drops that destination rather than the request.
func (o *Orchestrator) ProcessImage(ctx context.Context, image []byte, mime string) (*types.ImageResult, error) {
	key := o.modalityKey("image", image, mime)
	if data, ok := o.cache.Get(ctx, key); ok {
		var cached types.ImageResult
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	analysis, err := o.ai.AnalyzeImage(ctx, mime, image)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrImageAnalysisFailed)
	}

	matches, err := o.ai.MatchDestinations(ctx, analysis)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrImageAnalysisFailed)
	}

	top := matches
	if len(top) > o.topK {
		top = top[:o.topK]
	}

	suggestions := make([]*types.TripSuggestion, len(top))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.topK)
	for i, match := range top {
		g.Go(func() error {
			s, err := o.ai.SuggestTrip(gctx, match.Name)
			if err != nil {
				o.logger.Warn("trip suggestion failed",
					zap.String("destination", match.Name),
					zap.Error(err))
				return nil
			}
			suggestions[i] = s
			return nil
		})
	}
	_ = g.Wait()

	result := &types.ImageResult{
		Analysis:             analysis,
		MatchingDestinations: matches,
		TripSuggestions:      make([]types.TripSuggestion, 0, len(suggestions)),
		Confidence:           analysis.Confidence,
	}
	for _, s := range suggestions {
		if s != nil {
			result.TripSuggestions = append(result.TripSuggestions, *s)
		}
	}

	o.store(ctx, key, result)
	return result, nil
}

// ProcessCombined runs both modality branches concurrently. The synthesis
// call is gated on both branches succeeding; when one fails, the surviving
// result is returned with SynthesisSkipped set instead of fabricating a
// synthesis from a single input.
func (o *Orchestrator) ProcessCombined(ctx context.Context, audio []byte, audioName string, image []byte, imageMime string) (*types.CombinedResult, error) {
	if len(audio) == 0 && len(image) == 0 {
		return nil, apperrors.New(apperrors.ErrNoModalityInput)
	}

	var (
		wg          sync.WaitGroup
		voiceResult *types.VoiceResult
		voiceErr    error
		imageResult *types.ImageResult
		imageErr    error
	)

	// The branches are unrelated, so their external calls run concurrently
	if len(audio) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			voiceResult, voiceErr = o.ProcessVoice(ctx, audio, audioName, false)
		}()
	}
	if len(image) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			imageResult, imageErr = o.ProcessImage(ctx, image, imageMime)
		}()
	}
	wg.Wait()

	if voiceErr != nil {
		o.logger.Warn("voice branch failed", zap.Error(voiceErr))
	}
	if imageErr != nil {
		o.logger.Warn("image branch failed", zap.Error(imageErr))
	}

	if voiceResult == nil && imageResult == nil {
		return nil, apperrors.New(apperrors.ErrAllModalitiesFailed)
	}

	result := &types.CombinedResult{
		VoiceResult: voiceResult,
		ImageResult: imageResult,
	}

	if voiceResult == nil || imageResult == nil {
		result.SynthesisSkipped = true
		result.SkipReason = skipReason(len(audio) > 0, len(image) > 0, voiceResult != nil, imageResult != nil)
		if voiceResult != nil {
			result.Confidence = voiceResult.Confidence
		} else {
			result.Confidence = imageResult.Confidence
		}
		return result, nil
	}

	confidence := combinedConfidence(voiceResult.Confidence, imageResult.Confidence)
	plan, err := o.ai.SynthesizePlan(ctx, voiceResult, imageResult)
	if err != nil {
		// Both modalities stand on their own; only the reconciliation is lost
		o.logger.Warn("synthesis call failed", zap.Error(err))
		result.SynthesisSkipped = true
		result.SkipReason = "synthesis call failed"
		result.Confidence = confidence
		return result, nil
	}

	plan.Confidence = confidence
	result.SynthesizedPlan = plan
	result.Confidence = confidence
	return result, nil
}

// combinedConfidence is the weighted average of both modalities plus a
// fixed agreement bonus, capped at 1.0
func combinedConfidence(voice, image float64) float64 {
	c := 0.5*voice + 0.5*image + 0.1
	if c > 1.0 {
		c = 1.0
	}
	return c
}

// voiceConfidence scores the voice modality by how many entity categories
// the utterance yielded. Deterministic for identical input.
func voiceConfidence(entities *entity.TravelEntities) float64 {
	found := 0
	if len(entities.Destinations) > 0 {
		found++
	}
	if len(entities.Dates) > 0 {
		found++
	}
	if len(entities.Budgets) > 0 {
		found++
	}
	if len(entities.Activities) > 0 {
		found++
	}
	if entities.TravelerCount > 0 {
		found++
	}
	return 0.5 + 0.08*float64(found)
}

func skipReason(hadAudio, hadImage, voiceOK, imageOK bool) string {
	switch {
	case hadAudio && !voiceOK && hadImage && imageOK:
		return "voice processing failed"
	case hadImage && !imageOK && hadAudio && voiceOK:
		return "image processing failed"
	case !hadAudio:
		return "no audio input"
	case !hadImage:
		return "no image input"
	default:
		return "one modality missing"
	}
}

func (o *Orchestrator) modalityKey(kind string, payload []byte, extra string) string {
	sum := sha256.Sum256(payload)
	return cache.Key{
		Kind:  kind,
		Extra: hex.EncodeToString(sum[:]) + "|" + extra,
	}.String()
}

func (o *Orchestrator) store(ctx context.Context, key string, v interface{}) {
	if data, err := json.Marshal(v); err == nil {
		o.cache.Set(ctx, key, data)
	}
}
