package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/api/middleware"
	"github.com/shopbook-ledger/internal/api/service"
	"github.com/shopbook-ledger/internal/domain/party"
)

// PartyHandler handles HTTP requests for customer/supplier/expense-category
// operations
type PartyHandler struct {
	partyService     service.PartyService
	reconcileService service.ReconcileService
	logger           *slog.Logger
}

// NewPartyHandler creates a new party handler
func NewPartyHandler(logger *slog.Logger, partyService service.PartyService, reconcileService service.ReconcileService) *PartyHandler {
	return &PartyHandler{
		partyService:     partyService,
		reconcileService: reconcileService,
		logger:           logger,
	}
}

// Create registers a new party
func (h *PartyHandler) Create(c *gin.Context) {
	var req CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user := middleware.GetUserContext(c)
	p, err := h.partyService.CreateParty(c.Request.Context(), user, party.Kind(req.Kind), req.Name, req.Phone)
	if err != nil {
		h.logger.Error("Failed to create party", "error", err)
		respondDomainError(c, err)
		return
	}

	RespondCreated(c, mapPartyToResponse(p))
}

// GetByID retrieves a party with its denormalized aggregates
func (h *PartyHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user := middleware.GetUserContext(c)
	p, err := h.partyService.GetParty(c.Request.Context(), user, id)
	if err != nil {
		h.logger.Error("Failed to get party", "party_id", id.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, mapPartyToResponse(p))
}

// List retrieves a paginated list of active parties of a kind
func (h *PartyHandler) List(c *gin.Context) {
	kind := party.Kind(c.DefaultQuery("kind", string(party.KindCustomer)))
	if !kind.IsValid() {
		RespondBadRequest(c, "Invalid party kind")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	user := middleware.GetUserContext(c)
	parties, total, err := h.partyService.ListParties(c.Request.Context(), user, kind, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list parties", "kind", string(kind), "error", err)
		respondDomainError(c, err)
		return
	}

	responses := make([]PartyResponse, 0, len(parties))
	for _, p := range parties {
		responses = append(responses, mapPartyToResponse(p))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// Delete moves a party to the recycle bin
func (h *PartyHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user := middleware.GetUserContext(c)
	if err := h.partyService.DeleteParty(c.Request.Context(), user, id); err != nil {
		h.logger.Error("Failed to delete party", "party_id", id.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondNoContent(c)
}

// Restore returns a deleted party to the active set
func (h *PartyHandler) Restore(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user := middleware.GetUserContext(c)
	if err := h.partyService.RestoreParty(c.Request.Context(), user, id); err != nil {
		h.logger.Error("Failed to restore party", "party_id", id.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondNoContent(c)
}

// Purge permanently removes a deleted party and all of its entries
func (h *PartyHandler) Purge(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user := middleware.GetUserContext(c)
	if err := h.partyService.PurgeParty(c.Request.Context(), user, id); err != nil {
		h.logger.Error("Failed to purge party", "party_id", id.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondNoContent(c)
}

// Recalculate refolds the party's aggregates from its entries, overwriting
// the stored totals on every copy
func (h *PartyHandler) Recalculate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user := middleware.GetUserContext(c)
	totals, err := h.reconcileService.Recalculate(c.Request.Context(), user, id)
	if err != nil {
		h.logger.Error("Failed to recalculate party", "party_id", id.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, totals)
}

// RecalculateAll runs the best-effort batch walk over every party
func (h *PartyHandler) RecalculateAll(c *gin.Context) {
	user := middleware.GetUserContext(c)
	report, err := h.reconcileService.RecalculateAll(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("Failed to run batch recalculation", "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, report)
}

// parseID reads the :id path parameter, responding 400 on garbage.
func (h *PartyHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid party ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid party ID")
		return uuid.Nil, false
	}
	return id, true
}
