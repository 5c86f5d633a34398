package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
)

type response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

func newResponse(data any) response {
	return response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if !errors.As(err, &errx) {
		errx = errorx.Unknown
	}

	return response{
		Success:   false,
		Message:   errx.Message,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func httpStatus(err error) int {
	errx := errorx.Error{}
	if !errors.As(err, &errx) {
		return http.StatusInternalServerError
	}

	switch errx.Code {
	case errorx.BadRequest:
		return http.StatusBadRequest
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.PermissionDenied:
		return http.StatusForbidden
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.TooManyRequests:
		return http.StatusTooManyRequests
	case errorx.AlreadyExists,
		errorx.InsufficientSupply,
		errorx.PerPersonLimitExceeded,
		errorx.NumbersNotAvailable,
		errorx.InvalidPaymentState,
		errorx.AlreadyDrawn:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func handleResponse() CloserFunc {
	return func(ctx context.Context, w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")

		if err := xcontext.GetError(ctx); err != nil {
			w.WriteHeader(httpStatus(err))
			writeJSON(ctx, w, newErrorResponse(err))
			return
		}

		if resp := xcontext.GetResponse(ctx); resp != nil {
			writeJSON(ctx, w, newResponse(resp))
		}
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, resp any) {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}
