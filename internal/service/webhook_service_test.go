package service_test

import (
	"context"
	"testing"

	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/realtime"
	"github.com/leadforge/crm-api/internal/repository"
	"github.com/leadforge/crm-api/internal/service"
	"github.com/leadforge/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newWebhookService(db *gorm.DB) *service.WebhookService {
	logger := zap.NewNop()
	history := service.NewHistoryService(repository.NewLeadHistoryRepository(db), logger)
	return service.NewWebhookService(
		repository.NewLeadRepository(db),
		history,
		realtime.NewHub(logger),
		&config.WebhookConfig{TildaEnabled: true, DefaultSource: "Unknown source"},
		logger,
	)
}

func TestWebhookService_ParsePayload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newWebhookService(db)

	t.Run("lowercase keys", func(t *testing.T) {
		payload, err := svc.ParsePayload([]byte(`{"name":"Ivan","phone":"+380671234567","email":"ivan@example.com","utm_source":"google"}`))
		require.NoError(t, err)
		assert.Equal(t, "Ivan", payload.Name)
		assert.Equal(t, "+380671234567", payload.Phone)
		assert.Equal(t, "google", payload.UTMSource)
	})

	t.Run("capitalized keys fold to the same shape", func(t *testing.T) {
		payload, err := svc.ParsePayload([]byte(`{"Name":"Ivan","Phone":"+380671234567","Email":"ivan@example.com"}`))
		require.NoError(t, err)
		assert.Equal(t, "Ivan", payload.Name)
		assert.Equal(t, "+380671234567", payload.Phone)
		assert.Equal(t, "ivan@example.com", payload.Email)
	})

	t.Run("alias keys are recognized", func(t *testing.T) {
		payload, err := svc.ParsePayload([]byte(`{"fullname":"Maria","tel":"0501112233","formname":"Landing A","referer":"https://promo.example.com/page"}`))
		require.NoError(t, err)
		assert.Equal(t, "Maria", payload.Name)
		assert.Equal(t, "0501112233", payload.Phone)
		assert.Equal(t, "Landing A", payload.SourceDescription)
		assert.Equal(t, "https://promo.example.com/page", payload.Referrer)
	})

	t.Run("non string values are ignored", func(t *testing.T) {
		payload, err := svc.ParsePayload([]byte(`{"name":"Ok","phone":12345}`))
		require.NoError(t, err)
		assert.Equal(t, "Ok", payload.Name)
		assert.Empty(t, payload.Phone)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		_, err := svc.ParsePayload([]byte(`not json`))
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestWebhookService_Ingest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newWebhookService(db)
	ctx := context.Background()

	t.Run("first submission becomes a new lead", func(t *testing.T) {
		result, err := svc.Ingest(ctx, &domain.WebhookLeadPayload{
			Name:  "Ivan",
			Phone: "+380 (67) 123-45-67",
		})
		require.NoError(t, err)
		assert.False(t, result.IsDuplicate)

		var lead domain.Lead
		require.NoError(t, db.Where("id = ?", result.LeadID).First(&lead).Error)
		assert.Equal(t, domain.DefaultLeadStatus, lead.Status)
		assert.Equal(t, "380671234567", lead.NormalizedPhone)
	})

	t.Run("same phone in different formatting is a duplicate but still persisted", func(t *testing.T) {
		result, err := svc.Ingest(ctx, &domain.WebhookLeadPayload{
			Name:  "Ivan again",
			Phone: "380671234567",
		})
		require.NoError(t, err)
		assert.True(t, result.IsDuplicate)

		var lead domain.Lead
		require.NoError(t, db.Where("id = ?", result.LeadID).First(&lead).Error)
		assert.Equal(t, domain.DuplicateLeadStatus, lead.Status)

		var total int64
		require.NoError(t, db.Model(&domain.Lead{}).Where("normalized_phone = ?", "380671234567").Count(&total).Error)
		assert.EqualValues(t, 2, total)
	})

	t.Run("empty payload is rejected", func(t *testing.T) {
		_, err := svc.Ingest(ctx, &domain.WebhookLeadPayload{})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("nameless lead falls back to the phone", func(t *testing.T) {
		result, err := svc.Ingest(ctx, &domain.WebhookLeadPayload{Phone: "0991234567"})
		require.NoError(t, err)

		var lead domain.Lead
		require.NoError(t, db.Where("id = ?", result.LeadID).First(&lead).Error)
		assert.Equal(t, "0991234567", lead.Name)
	})
}

func TestWebhookService_SourceAttribution(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newWebhookService(db)
	ctx := context.Background()

	loadSource := func(t *testing.T, result *domain.IntegrationResult) string {
		var lead domain.Lead
		require.NoError(t, db.Where("id = ?", result.LeadID).First(&lead).Error)
		return lead.SourceDescription
	}

	t.Run("explicit source wins", func(t *testing.T) {
		result, err := svc.Ingest(ctx, &domain.WebhookLeadPayload{
			Phone:             "0111",
			SourceDescription: "Landing A",
			Referrer:          "https://promo.example.com/page",
		})
		require.NoError(t, err)
		assert.Equal(t, "Landing A", loadSource(t, result))
	})

	t.Run("referrer hostname is second choice", func(t *testing.T) {
		result, err := svc.Ingest(ctx, &domain.WebhookLeadPayload{
			Phone:    "0222",
			Referrer: "https://promo.example.com/page?x=1",
		})
		require.NoError(t, err)
		assert.Equal(t, "promo.example.com", loadSource(t, result))
	})

	t.Run("configured fallback is last", func(t *testing.T) {
		result, err := svc.Ingest(ctx, &domain.WebhookLeadPayload{Phone: "0333"})
		require.NoError(t, err)
		assert.Equal(t, "Unknown source", loadSource(t, result))
	})
}
