// Package ai wraps the OpenAI API calls used by the multimodal planner:
// Whisper transcription, vision analysis, chat-based planning synthesis,
// and speech output.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/voyago/travel-planner-backend/internal/multimodal/entity"
	"github.com/voyago/travel-planner-backend/internal/multimodal/types"
	"github.com/voyago/travel-planner-backend/internal/pkg/logger"
)

// Config holds the OpenAI client configuration
type Config struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	Model       string `mapstructure:"model"`
	VisionModel string `mapstructure:"vision_model"`
	TTSVoice    string `mapstructure:"tts_voice"`
}

// Client is the OpenAI-backed implementation of the planner's external
// calls
type Client struct {
	api         *openai.Client
	model       string
	visionModel string
	ttsVoice    openai.SpeechVoice
	logger      *logger.Logger
}

// New creates a Client. A missing API key does not fail construction:
// calls will fail at request time and degrade the affected modality.
func New(cfg *Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.L()
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	if cfg.TTSVoice == "" {
		cfg.TTSVoice = string(openai.VoiceAlloy)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
		ttsVoice:    openai.SpeechVoice(cfg.TTSVoice),
		logger:      log.Named("multimodal.ai"),
	}
}

// Transcribe runs Whisper over the audio stream
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return resp.Text, nil
}

// AnalyzeImage asks the vision model for a structured description of the
// image. Fallback on unparsable output: an analysis carrying the raw text
// as the scene with confidence 0.5.
func (c *Client) AnalyzeImage(ctx context.Context, mime string, image []byte) (*types.ImageAnalysis, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(image))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: "Describe this travel photo as JSON with fields scene, landmarks, environment, season, activities, confidence (0-1).",
				},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
				},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("image analysis failed: %w", err)
	}

	content := chatContent(resp)
	var analysis types.ImageAnalysis
	if err := imageAnalysisSchema.Decode(content, &analysis); err != nil {
		c.logger.Warn("image analysis output failed validation, using fallback", zap.Error(err))
		return &types.ImageAnalysis{
			Scene:       strings.TrimSpace(content),
			Environment: "unknown",
			Confidence:  0.5,
		}, nil
	}
	if analysis.Confidence == 0 {
		analysis.Confidence = 0.5
	}
	return &analysis, nil
}

// MatchDestinations asks the model for destinations matching the image
// analysis. Fallback on unparsable output: no matches.
func (c *Client) MatchDestinations(ctx context.Context, analysis *types.ImageAnalysis) ([]types.DestinationMatch, error) {
	features, _ := json.Marshal(analysis)
	prompt := fmt.Sprintf(
		"Given these image features, list matching travel destinations as JSON {\"destinations\":[{\"name\",\"country\",\"score\",\"reason\"}]}: %s",
		features)

	content, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("destination matching failed: %w", err)
	}

	var payload struct {
		Destinations []types.DestinationMatch `json:"destinations"`
	}
	if err := destinationMatchesSchema.Decode(content, &payload); err != nil {
		c.logger.Warn("destination match output failed validation, using fallback", zap.Error(err))
		return []types.DestinationMatch{}, nil
	}
	return payload.Destinations, nil
}

// PlanTrip asks the model to synthesize a trip plan from the transcript
// and the locally extracted entities. Fallback on unparsable output: a
// plan carrying the raw text as the summary.
func (c *Client) PlanTrip(ctx context.Context, transcript string, entities *entity.TravelEntities) (*types.TripPlan, error) {
	extracted, _ := json.Marshal(entities)
	prompt := fmt.Sprintf(
		"Plan a trip from this request and its extracted entities. Reply as JSON {\"destination\",\"summary\",\"days\":[{\"day\",\"title\",\"activities\"}],\"estimated_budget\"}.\nRequest: %s\nEntities: %s",
		transcript, extracted)

	content, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("trip planning failed: %w", err)
	}

	var plan types.TripPlan
	if err := tripPlanSchema.Decode(content, &plan); err != nil {
		c.logger.Warn("trip plan output failed validation, using fallback", zap.Error(err))
		destination := "unknown"
		if len(entities.Destinations) > 0 {
			destination = entities.Destinations[0]
		}
		return &types.TripPlan{Destination: destination, Summary: strings.TrimSpace(content)}, nil
	}
	return &plan, nil
}

// SuggestTrip asks the model for a short suggestion for one destination.
// Fallback on unparsable output: a suggestion carrying the raw text.
func (c *Client) SuggestTrip(ctx context.Context, destination string) (*types.TripSuggestion, error) {
	prompt := fmt.Sprintf(
		"Suggest a short trip to %s as JSON {\"destination\",\"summary\",\"highlights\"}.", destination)

	content, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("trip suggestion failed: %w", err)
	}

	var suggestion types.TripSuggestion
	if err := tripSuggestionSchema.Decode(content, &suggestion); err != nil {
		c.logger.Warn("trip suggestion output failed validation, using fallback", zap.Error(err))
		return &types.TripSuggestion{Destination: destination, Summary: strings.TrimSpace(content)}, nil
	}
	return &suggestion, nil
}

// SynthesizePlan reconciles the voice and image results into one unified
// recommendation. Fallback on unparsable output: a synthesis carrying the
// raw text as the summary.
func (c *Client) SynthesizePlan(ctx context.Context, voice *types.VoiceResult, image *types.ImageResult) (*types.SynthesizedPlan, error) {
	voiceJSON, _ := json.Marshal(voice.Entities)
	imageJSON, _ := json.Marshal(image.Analysis)
	prompt := fmt.Sprintf(
		"Reconcile a spoken travel request and an inspiration photo into one recommendation as JSON {\"summary\",\"destinations\",\"plan\":{\"destination\",\"summary\"}}.\nSpoken request: %s\nSpoken entities: %s\nImage analysis: %s",
		voice.Transcription, voiceJSON, imageJSON)

	content, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("plan synthesis failed: %w", err)
	}

	var plan types.SynthesizedPlan
	if err := synthesizedPlanSchema.Decode(content, &plan); err != nil {
		c.logger.Warn("synthesis output failed validation, using fallback", zap.Error(err))
		return &types.SynthesizedPlan{Summary: strings.TrimSpace(content)}, nil
	}
	return &plan, nil
}

// Speak renders text to speech
func (c *Client) Speak(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: c.ttsVoice,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()
	return io.ReadAll(resp)
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", err
	}
	return chatContent(resp), nil
}

func chatContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}
