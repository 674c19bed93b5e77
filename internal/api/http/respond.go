package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-adaptive/internal/apierr"
	"github.com/mind-engage/mindengage-adaptive/internal/auth"
	"github.com/mind-engage/mindengage-adaptive/internal/learning"
	"github.com/mind-engage/mindengage-adaptive/internal/logger"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

const maxBody = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps domain errors onto the JSON error envelope.
func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	apierr.Write(w, toAPIError(log, err))
}

func toAPIError(log *logger.Logger, err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apierr.Unauthorized("invalid email or password")
	case errors.Is(err, auth.ErrEmailTaken):
		return apierr.Validation(map[string]string{"email": "email is already registered"})
	case errors.Is(err, auth.ErrInvalidSignup):
		return apierr.New(http.StatusBadRequest, apierr.CodeValidation, err.Error())
	case errors.Is(err, store.ErrConflict):
		return apierr.New(http.StatusConflict, apierr.CodeConflict, "concurrent update, retry the request")
	}

	var le *learning.Error
	if errors.As(err, &le) {
		switch le.Kind {
		case learning.KindValidation:
			return apierr.BadRequest(le.Error())
		case learning.KindNotFound:
			return apierr.NotFound(le.Error())
		case learning.KindGeneration:
			log.Warn("content generation failed", "error", err)
			return apierr.New(http.StatusBadGateway, apierr.CodeGeneration, "content could not be generated")
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		return apierr.NotFound("not found")
	}
	log.Error("request failed", "error", err)
	return apierr.New(http.StatusInternalServerError, apierr.CodeInternal, "internal error")
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) *apierr.Error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apierr.BadRequest("invalid JSON body: " + err.Error())
	}
	return validateStruct(dst)
}
