package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyago/travel-planner-backend/internal/multimodal/types"
	apperrors "github.com/voyago/travel-planner-backend/internal/pkg/errors"
	"github.com/voyago/travel-planner-backend/internal/pkg/logger"
	"github.com/voyago/travel-planner-backend/internal/pkg/response"
)

// audio/image uploads are capped at 25 MiB, the transcription API limit
const maxUploadBytes = 25 << 20

// Planner runs the multimodal flows
type Planner interface {
	ProcessVoice(ctx context.Context, audio []byte, filename string, withSpeech bool) (*types.VoiceResult, error)
	ProcessImage(ctx context.Context, image []byte, mime string) (*types.ImageResult, error)
	ProcessCombined(ctx context.Context, audio []byte, audioName string, image []byte, imageMime string) (*types.CombinedResult, error)
}

// MultimodalService exposes the voice, image and combined planning endpoints
type MultimodalService struct {
	orchestrator Planner
	logger       *logger.Logger
}

// NewMultimodalService creates a MultimodalService
func NewMultimodalService(orchestrator Planner, log *logger.Logger) *MultimodalService {
	if log == nil {
		log = logger.L()
	}
	return &MultimodalService{
		orchestrator: orchestrator,
		logger:       log.Named("multimodal.service"),
	}
}

// RegisterRoutes registers the multimodal routes
func (s *MultimodalService) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/multimodal")
	group.POST("/voice", s.ProcessVoice)
	group.POST("/image", s.ProcessImage)
	group.POST("/combined", s.ProcessCombined)
}

var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
	".flac": "audio/flac",
}

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ProcessVoice handles POST /multimodal/voice. Multipart fields: "audio"
// (required), "with_speech" (optional, "true" to render the plan as audio).
func (s *MultimodalService) ProcessVoice(c *gin.Context) {
	header, err := c.FormFile("audio")
	if err != nil {
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrNoModalityInput))
		return
	}

	audio, filename, err := readUpload(header, audioExtensions)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	withSpeech := strings.EqualFold(c.PostForm("with_speech"), "true")

	result, err := s.orchestrator.ProcessVoice(c.Request.Context(), audio, filename, withSpeech)
	if err != nil {
		s.logger.Warn("voice processing failed",
			zap.String("filename", filename),
			zap.Error(err))
		response.HandleError(c, err)
		return
	}

	response.Success(c, result)
}

// ProcessImage handles POST /multimodal/image. Multipart field: "image".
func (s *MultimodalService) ProcessImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrNoModalityInput))
		return
	}

	image, filename, err := readUpload(header, imageExtensions)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	result, err := s.orchestrator.ProcessImage(c.Request.Context(), image, imageExtensions[extOf(filename)])
	if err != nil {
		s.logger.Warn("image processing failed",
			zap.String("filename", filename),
			zap.Error(err))
		response.HandleError(c, err)
		return
	}

	response.Success(c, result)
}

// ProcessCombined handles POST /multimodal/combined. Multipart fields:
// "audio" and "image", at least one required.
func (s *MultimodalService) ProcessCombined(c *gin.Context) {
	var (
		audio     []byte
		audioName string
		image     []byte
		imageMime string
	)

	if header, err := c.FormFile("audio"); err == nil {
		data, filename, err := readUpload(header, audioExtensions)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		audio, audioName = data, filename
	}

	if header, err := c.FormFile("image"); err == nil {
		data, filename, err := readUpload(header, imageExtensions)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		image, imageMime = data, imageExtensions[extOf(filename)]
	}

	if len(audio) == 0 && len(image) == 0 {
		response.HandleError(c, apperrors.New(apperrors.ErrNoModalityInput))
		return
	}

	result, err := s.orchestrator.ProcessCombined(c.Request.Context(), audio, audioName, image, imageMime)
	if err != nil {
		s.logger.Warn("combined processing failed", zap.Error(err))
		response.HandleError(c, err)
		return
	}

	response.Success(c, result)
}

// readUpload validates the file extension against allowed and reads the
// full upload into memory.
func readUpload(header *multipart.FileHeader, allowed map[string]string) ([]byte, string, error) {
	filename := filepath.Base(header.Filename)
	if _, ok := allowed[extOf(filename)]; !ok {
		return nil, "", apperrors.New(apperrors.ErrUnsupportedMediaType,
			fmt.Sprintf("unsupported file type %q", extOf(filename)))
	}
	if header.Size > maxUploadBytes {
		return nil, "", apperrors.New(apperrors.ErrUnsupportedMediaType,
			fmt.Sprintf("file exceeds %d byte limit", maxUploadBytes))
	}

	f, err := header.Open()
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if len(data) > maxUploadBytes {
		return nil, "", apperrors.New(apperrors.ErrUnsupportedMediaType,
			fmt.Sprintf("file exceeds %d byte limit", maxUploadBytes))
	}

	return data, filename, nil
}

func extOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
