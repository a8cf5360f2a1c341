package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crvarsha0102/HabiTrack/internal/auth"
	"github.com/crvarsha0102/HabiTrack/internal/listing"
	"github.com/crvarsha0102/HabiTrack/internal/meeting"
	"github.com/crvarsha0102/HabiTrack/internal/message"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

// Envelope is the uniform shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// respond writes a success envelope.
func respond(w http.ResponseWriter, code int, msg string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(Envelope{Success: true, Message: msg, Data: data}); err != nil {
		http.Error(w, `{"success":false,"message":"encode failed"}`, http.StatusInternalServerError)
	}
}

// fail writes a failure envelope with the status mapped from err.
func fail(w http.ResponseWriter, err error) {
	failStatus(w, statusFor(err), err.Error())
}

// failStatus writes a failure envelope with an explicit status.
func failStatus(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(Envelope{Success: false, Message: msg}); err != nil {
		http.Error(w, `{"success":false,"message":"encode failed"}`, http.StatusInternalServerError)
	}
}

// statusFor maps domain errors to HTTP statuses: validation 400,
// bad token 401, wrong party 403, unknown entity 404, the rest 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, listing.ErrForbidden),
		errors.Is(err, message.ErrForbidden),
		errors.Is(err, meeting.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, listing.ErrInvalid),
		errors.Is(err, message.ErrInvalid),
		errors.Is(err, meeting.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, listing.ErrNotFound),
		errors.Is(err, message.ErrNotFound),
		errors.Is(err, meeting.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
