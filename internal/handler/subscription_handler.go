package handler

import (
	"net/http"

	"paper-reader/internal/domain"
)

type SubscriptionHandler struct {
	subscriptionService domain.SubscriptionService
	logger              domain.Logger
}

func NewSubscriptionHandler(subscriptionService domain.SubscriptionService, logger domain.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// Status handles GET /api/subscription/status (authenticated).
func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := h.subscriptionService.Status(r.Context(), user.ID)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
