package engine

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"blog-backend/internal/logging"
	"blog-backend/internal/query"
)

type AppError struct {
	Code    string        `json:"code"`
	Status  int           `json:"-"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  *AppError `json:"error"`
	Status bool      `json:"status"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func NotFoundError(entity string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Status:  404,
		Message: fmt.Sprintf("%s Not Found", entity),
	}
}

func ValidationError(details []ErrorDetail) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Status:  400,
		Message: "Validation failed",
		Details: details,
	}
}

func InvalidPayloadError() *AppError {
	return NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
}

func UnauthorizedError(msg string) *AppError {
	return NewAppError("UNAUTHORIZED", 401, msg)
}

func ForbiddenError(msg string) *AppError {
	return NewAppError("FORBIDDEN", 403, msg)
}

func ConflictError(msg string) *AppError {
	return NewAppError("CONFLICT", 400, msg)
}

// QueryError turns a listing query compile failure into a 400. Any other
// error is returned unchanged.
func QueryError(err error) error {
	var qe *query.Error
	if !errors.As(err, &qe) {
		return err
	}
	appErr := NewAppError("INVALID_QUERY", 400, qe.Message)
	if qe.Field != "" {
		appErr.Details = []ErrorDetail{{Field: qe.Field, Rule: kindRule(qe.Kind), Message: qe.Message}}
	}
	return appErr
}

func kindRule(kind error) string {
	switch {
	case errors.Is(kind, query.ErrInvalidPagination):
		return "pagination"
	case errors.Is(kind, query.ErrInvalidField):
		return "field"
	case errors.Is(kind, query.ErrInvalidOperator):
		return "operator"
	case errors.Is(kind, query.ErrInvalidFilterValue):
		return "value"
	default:
		return "query"
	}
}

// ErrorHandler is the fiber error handler: AppErrors are rendered as is,
// fiber errors keep their status, anything else is logged and becomes a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return respondError(c, appErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return respondError(c, NewAppError("HTTP_ERROR", fiberErr.Code, fiberErr.Message))
	}

	logging.FromContext(c.UserContext()).Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return respondError(c, NewAppError("INTERNAL_ERROR", fiber.StatusInternalServerError, "Internal server error"))
}
