package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/internal/services"
	"github.com/Dhoini/notification-relay/pkg/logger"
	"github.com/Dhoini/notification-relay/pkg/req"
	"github.com/Dhoini/notification-relay/pkg/res"

	"github.com/gin-gonic/gin"
)

const contactSuccessMessage = "Thank you for contacting us! We will get back to you shortly."

// ContactSubmitter реализуется services.ContactService
type ContactSubmitter interface {
	Submit(ctx context.Context, form domain.ContactForm) (*domain.ContactSubmission, error)
}

// ContactHandler обрабатывает форму обратной связи
type ContactHandler struct {
	service      ContactSubmitter
	supportEmail string
	log          *logger.Logger
}

func NewContactHandler(service ContactSubmitter, supportEmail string, log *logger.Logger) *ContactHandler {
	return &ContactHandler{
		service:      service,
		supportEmail: supportEmail,
		log:          log,
	}
}

// Submit обрабатывает POST /api/contact. Принимает JSON и application/x-www-form-urlencoded.
func (h *ContactHandler) Submit(c *gin.Context) {
	var form domain.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			// Пустое тело проверяется как пустая форма
			form = domain.ContactForm{}
		case errors.As(err, &typeErr) && typeErr.Field != "":
			h.log.Warnw("Contact form field has wrong type", "field", typeErr.Field, "type", typeErr.Value)
			verrs := domain.ValidationErrors{}
			verrs.Add(typeErr.Field, fmt.Sprintf("%s must be a string", typeErr.Field))
			res.JsonResponse(c.Writer, res.ErrorResponse{Success: false, Errors: verrs}, http.StatusBadRequest)
			c.Abort()
			return
		default:
			h.log.Warnw("Failed to decode contact form", "error", err)
			writeDecodeError(c, err)
			return
		}
	}

	_, err := h.service.Submit(c.Request.Context(), form)
	if err != nil {
		if verrs, ok := services.IsValidationError(err); ok {
			res.JsonResponse(c.Writer, res.ErrorResponse{Success: false, Errors: verrs}, http.StatusBadRequest)
			c.Abort()
			return
		}
		h.log.Errorw("Error processing contact form", "error", err)
		res.Fail(c.Writer,
			"We encountered an error processing your request. Please try again later or contact us directly at "+h.supportEmail,
			http.StatusInternalServerError)
		c.Abort()
		return
	}

	res.JsonResponse(c.Writer, res.SuccessResponse{Success: true, Message: contactSuccessMessage}, http.StatusOK)
}

// writeDecodeError 413 для слишком большого тела, иначе 400
func writeDecodeError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.Is(err, req.ErrBodyTooLarge) || errors.As(err, &maxErr) {
		res.Fail(c.Writer, "Request body too large", http.StatusRequestEntityTooLarge)
	} else {
		res.Fail(c.Writer, "Invalid request body", http.StatusBadRequest)
	}
	c.Abort()
}
