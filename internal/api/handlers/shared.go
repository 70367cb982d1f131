package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// maxBodySize caps JSON request bodies. Sound uploads have their own limit.
const maxBodySize = 1 << 20

// parseJSON decodes the request body into T. An empty body is an error.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return req, fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) > maxBodySize {
		return req, errors.New("request body too large")
	}
	if len(body) == 0 {
		return req, errors.New("request body is empty")
	}
	if err := sonic.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	return req, nil
}

// respondValidation writes a 400 for a failed validator. Field errors are
// returned as a map so the client can place them next to their inputs.
func respondValidation(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// respondServiceError maps service errors to HTTP statuses. Anything not
// recognized is a 500 with fallback as the message.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)

	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrPositionNotFound),
		errors.Is(err, apperrors.ErrAlertNotFound),
		errors.Is(err, apperrors.ErrTokenNotFound),
		errors.Is(err, apperrors.ErrSoundNotFound),
		errors.Is(err, apperrors.ErrEmailNotFound),
		errors.Is(err, apperrors.ErrNotificationNotFound):
		response.RespondError(w, http.StatusNotFound, rootMessage(err), err.Error())

	case errors.Is(err, apperrors.ErrLastPortfolio),
		errors.Is(err, apperrors.ErrEmailAlreadyAdded),
		errors.Is(err, apperrors.ErrBuiltInSound),
		errors.Is(err, apperrors.ErrCycleInProgress):
		response.RespondError(w, http.StatusConflict, rootMessage(err), err.Error())

	case errors.Is(err, apperrors.ErrEmailLimitReached),
		errors.Is(err, apperrors.ErrNoVerifiedEmail),
		errors.Is(err, apperrors.ErrInvalidPrice),
		errors.Is(err, apperrors.ErrInvalidEmail),
		errors.Is(err, apperrors.ErrInvalidAddress),
		errors.Is(err, apperrors.ErrUnsupportedAudio),
		errors.Is(err, apperrors.ErrUnknownAdminEmail):
		response.RespondError(w, http.StatusUnprocessableEntity, rootMessage(err), err.Error())

	case errors.Is(err, apperrors.ErrAudioTooLarge):
		response.RespondError(w, http.StatusRequestEntityTooLarge, rootMessage(err), err.Error())

	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrSessionExpired),
		errors.Is(err, apperrors.ErrNotSignedIn):
		response.RespondError(w, http.StatusUnauthorized, rootMessage(err), err.Error())

	case errors.Is(err, apperrors.ErrPriceSource):
		response.RespondError(w, http.StatusBadGateway, rootMessage(err), err.Error())

	default:
		response.RespondError(w, http.StatusInternalServerError, fallback, err.Error())
	}
}

// rootMessage returns the innermost error message, which for the sentinels is
// the user-facing text.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
