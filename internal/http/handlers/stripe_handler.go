package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/http/response"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/service"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

const maxWebhookBodyBytes = 65536

// CreateCheckoutSession handles POST /api/stripe/create-checkout-session
func (h *Handlers) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	sessionID, err := h.paymentService.CreateCheckout(r.Context(), req.PriceID)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create checkout session", "error", err)
		response.WriteError(w, http.StatusInternalServerError, "Failed to create checkout session", response.CodeDependency)
		return
	}

	writeJSON(w, http.StatusOK, domain.CreateCheckoutResponse{ID: sessionID})
}

// StripeWebhook handles POST /api/stripe/webhook. Signature verification
// needs the exact raw request bytes, so the body is read before any
// JSON parsing.
func (h *Handlers) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		response.BadRequest(w, "Failed to read request body")
		return
	}

	err = h.paymentService.IngestWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	case errors.Is(err, service.ErrInvalidSignature):
		response.WriteError(w, http.StatusBadRequest, "Webhook signature verification failed", response.CodeBadSignature)
	default:
		// The event could not be committed; Stripe should redeliver.
		logger.ErrorContext(r.Context(), "Failed to ingest webhook", "error", err)
		response.InternalError(w, "Failed to record webhook event")
	}
}
