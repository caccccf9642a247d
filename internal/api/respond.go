package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"healthconnect-api/internal/ai"
	"healthconnect-api/internal/auth"
	"healthconnect-api/internal/doctors"
	"healthconnect-api/internal/health"
	"healthconnect-api/internal/store"
)

const maxBodyBytes = 1 << 20

var (
	errBadRequest = errors.New("malformed request body")
	errEmptyBody  = fmt.Errorf("%w: empty body", errBadRequest)
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be omitted.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := decodeJSON(w, r, v); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}
	return nil
}

// statusFor maps package sentinels onto HTTP status codes.
func statusFor(err error) int {
	var verr *health.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, errBadRequest),
		errors.Is(err, health.ErrMissingInput),
		errors.Is(err, health.ErrInvalidActivity),
		errors.Is(err, health.ErrInvalidWorkout),
		errors.Is(err, health.ErrInvalidGender),
		errors.Is(err, store.ErrInvalidDate),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidTier),
		errors.Is(err, doctors.ErrNoSymptoms),
		errors.Is(err, ai.ErrMissingAPIKey):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ai.ErrFeatureLocked), errors.Is(err, ai.ErrModelNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound), errors.Is(err, doctors.ErrDoctorNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, auth.ErrAccountDeleted):
		return http.StatusGone
	case errors.Is(err, ai.ErrUpstream), errors.Is(err, ai.ErrMalformedResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": ...}. Internal errors are logged and masked.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{zap.String("op", op), zap.Error(err)}
		if u := userFrom(r.Context()); u != nil {
			fields = append(fields, zap.String("user_id", u.ID))
		}
		s.logger.Error("request failed", fields...)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
