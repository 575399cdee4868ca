package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/http/handler"
	"github.com/leadforge/crm-api/internal/realtime"
	"github.com/leadforge/crm-api/internal/repository"
	"github.com/leadforge/crm-api/internal/service"
	"github.com/leadforge/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newWebhookHandler(db *gorm.DB, cfg *config.WebhookConfig) *handler.WebhookHandler {
	logger := zap.NewNop()
	history := service.NewHistoryService(repository.NewLeadHistoryRepository(db), logger)
	svc := service.NewWebhookService(
		repository.NewLeadRepository(db),
		history,
		realtime.NewHub(logger),
		cfg,
		logger,
	)
	return handler.NewWebhookHandler(svc, cfg, logger)
}

func postWebhook(t *testing.T, h *handler.WebhookHandler, body, referer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/tilda", strings.NewReader(body))
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	rec := httptest.NewRecorder()
	h.Tilda(rec, req)
	return rec
}

func TestWebhookHandler_ReferrerHeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newWebhookHandler(db, &config.WebhookConfig{TildaEnabled: true, DefaultSource: "Unknown source"})

	loadSource := func(t *testing.T, normalized string) string {
		var lead domain.Lead
		require.NoError(t, db.Where("normalized_phone = ?", normalized).First(&lead).Error)
		return lead.SourceDescription
	}

	t.Run("header hostname attributes a payload without a source", func(t *testing.T) {
		rec := postWebhook(t, h, `{"name":"Jane","phone":"+380671112233"}`, "https://landing.example.com/form")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "landing.example.com", loadSource(t, "380671112233"))
	})

	t.Run("body referrer wins over the header", func(t *testing.T) {
		rec := postWebhook(t, h, `{"phone":"+380672224455","pageurl":"https://promo.example.com/a"}`, "https://other.example.com/b")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "promo.example.com", loadSource(t, "380672224455"))
	})

	t.Run("explicit source field wins over both", func(t *testing.T) {
		rec := postWebhook(t, h, `{"phone":"+380673336677","source":"Landing A"}`, "https://landing.example.com/form")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Landing A", loadSource(t, "380673336677"))
	})

	t.Run("no header and no fields falls back to the configured source", func(t *testing.T) {
		rec := postWebhook(t, h, `{"phone":"+380674448899"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Unknown source", loadSource(t, "380674448899"))
	})
}

func TestWebhookHandler_TildaDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newWebhookHandler(db, &config.WebhookConfig{TildaEnabled: false, DefaultSource: "Unknown source"})

	rec := postWebhook(t, h, `{"phone":"+380675550011"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
