package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pianoscribe/api/internal/model"
	"github.com/pianoscribe/api/internal/service"
	"github.com/pianoscribe/api/pkg/response"
)

const maxUploadSize = 50 * 1024 * 1024 // 50MB

type TranscribeHandler struct {
	service   *service.TranscribeService
	storage   *service.StorageService
	validator *validator.Validate
}

func NewTranscribeHandler(svc *service.TranscribeService, storage *service.StorageService, v *validator.Validate) *TranscribeHandler {
	return &TranscribeHandler{
		service:   svc,
		storage:   storage,
		validator: v,
	}
}

// Start handles POST /api/transcribe/start. The recording comes in as
// multipart form data together with optional tuning knobs; the response is
// the queued job's ID.
func (h *TranscribeHandler) Start(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}

	if file.Size > maxUploadSize {
		return response.ValidationError(c, "File size exceeds 50MB limit", map[string]interface{}{
			"maxSize":  maxUploadSize,
			"fileSize": file.Size,
		})
	}

	if _, err := service.AudioFormatFor(file.Filename); err != nil {
		return response.ValidationError(c, "Invalid file type. Supported: WAV, FLAC, OGG, MP3, WebM", map[string]interface{}{
			"filename": file.Filename,
		})
	}

	params, err := parseTranscribeParams(c)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	if err := h.validator.Struct(params); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open file")
	}
	defer f.Close()

	uploadKey, err := h.storage.UploadAudio(c.Context(), file.Filename, f)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	result, err := h.service.StartTranscription(c.Context(), uploadKey, file.Filename, *params)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/transcribe/status/:jobId
func (h *TranscribeHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(c.Context(), jobID)
	if err != nil {
		if err.Error() == "job not found" {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Result handles GET /api/transcribe/result/:jobId
func (h *TranscribeHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetResult(c.Context(), jobID)
	if err != nil {
		if err.Error() == "job not found" {
			return response.NotFound(c, "Job not found")
		}
		if err.Error() == "job not completed" {
			return response.ValidationError(c, "Job not completed yet", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Cancel handles POST /api/transcribe/cancel/:jobId
func (h *TranscribeHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.CancelTranscription(c.Context(), jobID)
	if err != nil {
		if err.Error() == "job not found" {
			return response.NotFound(c, "Job not found")
		}
		if err.Error() == "job already completed" {
			return response.ValidationError(c, "Job already completed", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// parseTranscribeParams reads optional tuning knobs from the multipart form.
// Absent fields stay zero and pick up configured defaults in the service.
func parseTranscribeParams(c *fiber.Ctx) (*model.TranscribeParams, error) {
	params := &model.TranscribeParams{}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"onsetThreshold", &params.OnsetThreshold},
		{"frameThreshold", &params.FrameThreshold},
		{"minNoteLengthMs", &params.MinNoteLengthMs},
		{"tempo", &params.Tempo},
	}
	for _, f := range floats {
		raw := c.FormValue(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, f.name+" must be a number")
		}
		*f.dst = v
	}

	if raw := c.FormValue("abc"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "abc must be a boolean")
		}
		params.ABC = v
	}

	params.Strategy = model.QuantizationStrategy(c.FormValue("strategy"))

	return params, nil
}
