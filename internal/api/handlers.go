package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/henriod/featherweight-mpesaCallback/internal/payload"
	"github.com/henriod/featherweight-mpesaCallback/internal/receipt"
)

// UserResponse is the response shape of the profile endpoints. Internal
// profile fields not declared here are dropped at the boundary.
type UserResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// userProfile is the internal profile record. It carries more than the
// response exposes.
type userProfile struct {
	UserID      string
	Email       string
	Name        string
	SignupNotes string
}

var (
	currentProfile = userProfile{
		UserID:      "0123456789",
		Email:       "me@kylegill.com",
		Name:        "Kyle Gill",
		SignupNotes: "this field is not part of the response shape",
	}

	cachedProfile = userProfile{
		UserID: "0123456789",
		Email:  "cached@kylegill.com",
		Name:   "Kyle Gill",
	}
)

type Handlers struct {
	logger    *slog.Logger
	processor *receipt.Processor
	delay     time.Duration
}

func NewHandlers(logger *slog.Logger, processor *receipt.Processor, delay time.Duration) *Handlers {
	return &Handlers{logger: logger, processor: processor, delay: delay}
}

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Hello world. Welcome to the receipts API!"})
}

func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, UserResponse{
		UserID: currentProfile.UserID,
		Email:  currentProfile.Email,
		Name:   currentProfile.Name,
	})
}

// CachedUser is deliberately slow. The response-cache middleware wrapping it
// absorbs the delay for repeat requests within the cache window.
func (h *Handlers) CachedUser(w http.ResponseWriter, r *http.Request) {
	time.Sleep(h.delay)

	respondJSON(w, http.StatusOK, UserResponse{
		UserID: cachedProfile.UserID,
		Email:  cachedProfile.Email,
		Name:   cachedProfile.Name,
	})
}

// PaymentConfirmation receives the provider's STK callback envelope,
// persists a receipt record and answers with a confirmation. Provider-side
// failures persist too but surface as a 400 carrying the failure description.
func (h *Handlers) PaymentConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	envelope, err := payload.DecodeEnvelope(r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "Error decoding callback envelope", "error", err)
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON payload"})
		return
	}

	confirmation, err := h.processor.Process(ctx, envelope)
	if err != nil {
		var missingField *payload.MissingFieldError
		var upstreamFailure *payload.UpstreamFailureError

		switch {
		case errors.As(err, &missingField):
			h.logger.WarnContext(ctx, "Callback envelope missing required field", "field", missingField.Field)
			respondJSON(w, http.StatusBadRequest, map[string]string{"detail": missingField.Error()})
		case errors.As(err, &upstreamFailure):
			respondJSON(w, http.StatusBadRequest, map[string]string{"detail": upstreamFailure.Desc})
		default:
			respondJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		}
		return
	}

	respondJSON(w, http.StatusOK, confirmation)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
