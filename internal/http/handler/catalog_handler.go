package handler

import (
	"net/http"

	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

// CatalogHandler serves the lead status, source and UTM source dictionaries
type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger}
}

func activeOnly(r *http.Request) bool {
	if v := queryBool(r, "activeOnly"); v != nil {
		return *v
	}
	return false
}

// ListStatuses godoc
// @Summary List lead statuses
// @Tags Catalogs
// @Produce json
// @Param activeOnly query bool false "Only active entries"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /statuses [get]
func (h *CatalogHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.catalogService.ListStatuses(r.Context(), activeOnly(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, statuses)
}

// CreateStatus godoc
// @Summary Create a lead status
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param request body domain.CreateStatusRequest true "Status details"
// @Success 201 {object} domain.APIResponse
// @Failure 409 {object} domain.APIResponse
// @Security BearerAuth
// @Router /statuses [post]
func (h *CatalogHandler) CreateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	status, err := h.catalogService.CreateStatus(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, status)
}

// UpdateStatus godoc
// @Summary Update a lead status
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param id path string true "Status ID"
// @Param request body domain.UpdateStatusRequest true "Fields to change"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /statuses/{id} [put]
func (h *CatalogHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	status, err := h.catalogService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, status)
}

// DeleteStatus godoc
// @Summary Delete a lead status
// @Tags Catalogs
// @Produce json
// @Param id path string true "Status ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /statuses/{id} [delete]
func (h *CatalogHandler) DeleteStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteStatus(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Status deleted")
}

// ListSources godoc
// @Summary List lead sources
// @Tags Catalogs
// @Produce json
// @Param activeOnly query bool false "Only active entries"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /sources [get]
func (h *CatalogHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.catalogService.ListSources(r.Context(), activeOnly(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, sources)
}

// CreateSource godoc
// @Summary Create a lead source
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param request body domain.CreateCatalogEntryRequest true "Source details"
// @Success 201 {object} domain.APIResponse
// @Security BearerAuth
// @Router /sources [post]
func (h *CatalogHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCatalogEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	source, err := h.catalogService.CreateSource(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, source)
}

// UpdateSource godoc
// @Summary Update a lead source
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param id path string true "Source ID"
// @Param request body domain.UpdateCatalogEntryRequest true "Fields to change"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /sources/{id} [put]
func (h *CatalogHandler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateCatalogEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	source, err := h.catalogService.UpdateSource(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, source)
}

// DeleteSource godoc
// @Summary Delete a lead source
// @Tags Catalogs
// @Produce json
// @Param id path string true "Source ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /sources/{id} [delete]
func (h *CatalogHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteSource(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Source deleted")
}

// ListUTMSources godoc
// @Summary List UTM sources
// @Tags Catalogs
// @Produce json
// @Param activeOnly query bool false "Only active entries"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /utm [get]
func (h *CatalogHandler) ListUTMSources(w http.ResponseWriter, r *http.Request) {
	utm, err := h.catalogService.ListUTMSources(r.Context(), activeOnly(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, utm)
}

// CreateUTMSource godoc
// @Summary Create a UTM source
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param request body domain.CreateCatalogEntryRequest true "UTM source details"
// @Success 201 {object} domain.APIResponse
// @Security BearerAuth
// @Router /utm [post]
func (h *CatalogHandler) CreateUTMSource(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCatalogEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	utm, err := h.catalogService.CreateUTMSource(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, utm)
}

// UpdateUTMSource godoc
// @Summary Update a UTM source
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param id path string true "UTM source ID"
// @Param request body domain.UpdateCatalogEntryRequest true "Fields to change"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /utm/{id} [put]
func (h *CatalogHandler) UpdateUTMSource(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateCatalogEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	utm, err := h.catalogService.UpdateUTMSource(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, utm)
}

// DeleteUTMSource godoc
// @Summary Delete a UTM source
// @Tags Catalogs
// @Produce json
// @Param id path string true "UTM source ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /utm/{id} [delete]
func (h *CatalogHandler) DeleteUTMSource(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteUTMSource(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "UTM source deleted")
}
