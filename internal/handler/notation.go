package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pianoscribe/api/internal/model"
	"github.com/pianoscribe/api/internal/notation"
	"github.com/pianoscribe/api/internal/service"
	"github.com/pianoscribe/api/pkg/response"
)

type NotationHandler struct {
	service   *service.NotationService
	validator *validator.Validate
}

func NewNotationHandler(svc *service.NotationService, v *validator.Validate) *NotationHandler {
	return &NotationHandler{
		service:   svc,
		validator: v,
	}
}

// Encode handles POST /api/notation/encode: quantize caller-supplied note
// events and return the rendered ABC text synchronously.
func (h *NotationHandler) Encode(c *fiber.Ctx) error {
	var req model.NotationEncodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Encode(&req)
	if err != nil {
		var malformed *notation.MalformedEventError
		switch {
		case errors.As(err, &malformed):
			return response.EncodingError(c, "Malformed note event", map[string]interface{}{
				"index":  malformed.Index,
				"reason": malformed.Reason,
			})
		case errors.Is(err, notation.ErrInvalidTempo):
			return response.EncodingError(c, "Tempo must be positive", nil)
		case errors.Is(err, notation.ErrNotImplemented):
			return response.Error(c, fiber.StatusNotImplemented, response.CodeServiceError, err.Error(), nil)
		default:
			return response.ServiceError(c, err.Error())
		}
	}

	return response.OK(c, result)
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
