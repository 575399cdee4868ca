package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/phone"
	"github.com/leadforge/crm-api/internal/realtime"
	"github.com/leadforge/crm-api/internal/repository"
	"go.uber.org/zap"
)

// WebhookService ingests leads submitted by external form builders and
// partner integrations. Form builders disagree on field casing (Phone vs
// phone) and on key naming, so all inbound payloads go through one
// case-insensitive parser before touching the pipeline.
type WebhookService struct {
	leadRepo *repository.LeadRepository
	history  *HistoryService
	hub      *realtime.Hub
	cfg      *config.WebhookConfig
	logger   *zap.Logger
}

func NewWebhookService(
	leadRepo *repository.LeadRepository,
	history *HistoryService,
	hub *realtime.Hub,
	cfg *config.WebhookConfig,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		leadRepo: leadRepo,
		history:  history,
		hub:      hub,
		cfg:      cfg,
		logger:   logger,
	}
}

// payloadAliases maps canonical payload fields to the key spellings seen in
// the wild, lowercased. Lookup order within a slice is priority order.
var payloadAliases = map[string][]string{
	"name":              {"name", "fullname", "full_name"},
	"phone":             {"phone", "phonenumber", "phone_number", "tel"},
	"email":             {"email", "e-mail", "mail"},
	"sourceDescription": {"sourcedescription", "source_description", "source", "formname", "form_name"},
	"utmSource":         {"utm_source", "utmsource"},
	"utmMedium":         {"utm_medium", "utmmedium"},
	"utmCampaign":       {"utm_campaign", "utmcampaign"},
	"utmContent":        {"utm_content", "utmcontent"},
	"utmTerm":           {"utm_term", "utmterm"},
	"referrer":          {"referrer", "referer", "pageurl", "page_url", "url"},
}

// ParsePayload decodes a raw webhook body into the canonical payload shape.
// Keys are matched case-insensitively and non-string values are ignored.
func (s *WebhookService) ParsePayload(raw []byte) (*domain.WebhookLeadPayload, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, ErrInvalidInput
	}

	folded := make(map[string]string, len(fields))
	for key, value := range fields {
		str, ok := value.(string)
		if !ok {
			continue
		}
		folded[strings.ToLower(key)] = strings.TrimSpace(str)
	}

	pick := func(canonical string) string {
		for _, alias := range payloadAliases[canonical] {
			if v, ok := folded[alias]; ok && v != "" {
				return v
			}
		}
		return ""
	}

	return &domain.WebhookLeadPayload{
		Name:              pick("name"),
		Phone:             pick("phone"),
		Email:             pick("email"),
		SourceDescription: pick("sourceDescription"),
		UTMSource:         pick("utmSource"),
		UTMMedium:         pick("utmMedium"),
		UTMCampaign:       pick("utmCampaign"),
		UTMContent:        pick("utmContent"),
		UTMTerm:           pick("utmTerm"),
		Referrer:          pick("referrer"),
	}, nil
}

// Ingest persists an inbound lead. Duplicates (same normalized phone as an
// existing lead) are still persisted, but with the duplicate status so the
// sales pipeline never loses a submission.
func (s *WebhookService) Ingest(ctx context.Context, payload *domain.WebhookLeadPayload) (*domain.IntegrationResult, error) {
	if payload.Phone == "" && payload.Name == "" && payload.Email == "" {
		return nil, ErrInvalidInput
	}

	normalized := phone.Normalize(payload.Phone)

	isDuplicate := false
	if normalized != "" {
		existing, err := s.leadRepo.FindByNormalizedPhone(ctx, normalized)
		if err != nil {
			return nil, err
		}
		isDuplicate = existing != nil
	}

	status := domain.DefaultLeadStatus
	if isDuplicate {
		status = domain.DuplicateLeadStatus
	}

	name := payload.Name
	if name == "" {
		name = payload.Phone
	}

	lead := &domain.Lead{
		Name:              name,
		Phone:             payload.Phone,
		NormalizedPhone:   normalized,
		Email:             payload.Email,
		Status:            status,
		SourceDescription: s.resolveSource(payload),
		UTMSource:         payload.UTMSource,
		UTMMedium:         payload.UTMMedium,
		UTMCampaign:       payload.UTMCampaign,
		UTMContent:        payload.UTMContent,
		UTMTerm:           payload.UTMTerm,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.history.LeadCreated(ctx, lead, nil)
	s.hub.Broadcast(realtime.Event{Type: "created", Entity: "lead", Payload: lead})

	s.logger.Info("webhook lead ingested",
		zap.String("lead_id", lead.ID.String()),
		zap.String("source", lead.SourceDescription),
		zap.Bool("duplicate", isDuplicate),
	)

	return &domain.IntegrationResult{LeadID: lead.ID, IsDuplicate: isDuplicate}, nil
}

// resolveSource picks attribution: explicit field, then referrer hostname,
// then the configured fallback
func (s *WebhookService) resolveSource(payload *domain.WebhookLeadPayload) string {
	if payload.SourceDescription != "" {
		return payload.SourceDescription
	}
	if payload.Referrer != "" {
		if u, err := url.Parse(payload.Referrer); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	return s.cfg.DefaultSource
}
