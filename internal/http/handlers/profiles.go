package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/inventory-be/internal/http/respond"
	"github.com/hongminglow/inventory-be/internal/models/dto"
	"github.com/hongminglow/inventory-be/internal/storage"
)

// ProfileHandler serves advisory profile lookups.
type ProfileHandler struct {
	store  storage.ProfileStore
	logger *zap.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(store storage.ProfileStore, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{store: store, logger: logger}
}

// Register attaches profile routes to the router.
func (h *ProfileHandler) Register(r chi.Router) {
	r.Get("/profiles/username-availability", h.handleAvailability)
}

func (h *ProfileHandler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		respond.Error(w, http.StatusBadRequest, "username is required")
		return
	}
	ok, err := h.store.IsUsernameAvailable(r.Context(), username)
	if err != nil {
		h.logger.Warn("username availability lookup failed", zap.String("username", username), zap.Error(err))
		respond.Error(w, http.StatusBadGateway, "unable to check username right now")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.AvailabilityResponse{Username: username, Available: ok})
}
