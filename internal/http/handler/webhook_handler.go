package handler

import (
	"io"
	"net/http"

	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

// maxWebhookBody caps inbound webhook payloads at 1 MiB
const maxWebhookBody = 1 << 20

// WebhookHandler serves the public form-capture endpoint and the API-key
// protected partner integration endpoint. Both run the same ingest pipeline.
type WebhookHandler struct {
	webhookService *service.WebhookService
	cfg            *config.WebhookConfig
	logger         *zap.Logger
}

func NewWebhookHandler(webhookService *service.WebhookService, cfg *config.WebhookConfig, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService, cfg: cfg, logger: logger}
}

func (h *WebhookHandler) ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	payload, err := h.webhookService.ParsePayload(body)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Browsers send the submitting page as the Referer header; a referrer
	// named in the body takes precedence
	if payload.Referrer == "" {
		payload.Referrer = r.Header.Get("Referer")
	}

	result, err := h.webhookService.Ingest(r.Context(), payload)
	if err != nil {
		h.logger.Error("webhook ingest failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, result)
}

// Tilda godoc
// @Summary Accept a lead submitted by a Tilda form
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Failure 400 {object} domain.APIResponse
// @Router /webhook/tilda [post]
func (h *WebhookHandler) Tilda(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.TildaEnabled {
		respondError(w, http.StatusNotFound, "Resource not found")
		return
	}
	h.ingest(w, r)
}

// Integration godoc
// @Summary Accept a lead from a partner integration
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Failure 401 {object} domain.APIResponse
// @Security ApiKeyAuth
// @Router /integration [post]
func (h *WebhookHandler) Integration(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r)
}
