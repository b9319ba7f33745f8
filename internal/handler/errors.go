package handler

import (
	"net/http"

	"foodcourt/internal/apperr"
	"foodcourt/internal/logging"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Kind → HTTPステータス
var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:         http.StatusBadRequest,
	apperr.KindNotFound:           http.StatusNotFound,
	apperr.KindState:              http.StatusConflict,
	apperr.KindConflict:           http.StatusConflict,
	apperr.KindAlreadyConsumed:    http.StatusConflict,
	apperr.KindExpired:            http.StatusGone,
	apperr.KindCapacity:           http.StatusTooManyRequests,
	apperr.KindConfig:             http.StatusInternalServerError,
	apperr.KindStorageUnavailable: http.StatusServiceUnavailable,
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := apperr.As(err); ok {
		status, known := kindStatus[ae.Kind]
		if !known {
			status = http.StatusInternalServerError
		}
		if status >= 500 {
			logging.FromContext(c.Request().Context()).Error("operation failed", "kind", string(ae.Kind), "error", err)
		}
		return c.JSON(status, ErrorResponse{Error: string(ae.Kind), Message: ae.Message, Details: ae.Details})
	}

	//500
	logging.FromContext(c.Request().Context()).Error("unexpected error", "error", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL_ERROR", Message: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: string(apperr.KindValidation), Message: msg})
}
