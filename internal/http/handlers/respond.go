package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/valehub/internal/domain"
	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string, details interface{}) {
	RespondError(ctx, http.StatusConflict, code, message, details)
}

// conflict errors are validation failures that depend on stored state rather
// than on the request body alone
var conflicts = map[error]string{
	user.ErrEmailTaken:   "email_taken",
	user.ErrIDTaken:      "id_taken",
	user.ErrLastAdmin:    "last_admin",
	user.ErrPrimaryAdmin: "primary_admin",
}

// RespondDomainError maps an error kind from the service layer to a response.
// internalMsg is what the client sees for unexpected errors.
func RespondDomainError(ctx *gin.Context, err error, notFoundMsg, internalMsg string) {
	for target, code := range conflicts {
		if errors.Is(err, target) {
			ve, _ := domain.FieldOf(err)
			RespondConflict(ctx, code, ve.Message, gin.H{"field": ve.Field})
			return
		}
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		ve, ok := domain.FieldOf(err)
		if !ok {
			RespondBadRequest(ctx, err.Error(), nil)
			return
		}
		RespondBadRequest(ctx, "Invalid request", gin.H{
			"fields": []FieldError{{Field: ve.Field, Rule: "invalid", Message: ve.Message}},
		})
	case errors.Is(err, domain.ErrUnauthorized):
		RespondForbidden(ctx, "You are not allowed to perform this action")
	case errors.Is(err, domain.ErrNotFound):
		RespondNotFound(ctx, notFoundMsg)
	case errors.Is(err, domain.ErrInvalidCredentials):
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
	default:
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"err", err,
			"route", ctx.FullPath(),
			"request_id", requestIDFrom(ctx),
		)
		RespondInternal(ctx, internalMsg)
	}
}
