package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/api/middleware"
	"github.com/shopbook-ledger/internal/api/service"
	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/entry"
)

// EntryHandler handles HTTP requests for ledger entry operations
type EntryHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(logger *slog.Logger, ledgerService service.LedgerService) *EntryHandler {
	return &EntryHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// Create records a transaction against a party. The entry write, the
// aggregate delta, and any inventory decrement are applied atomically.
func (h *EntryHandler) Create(c *gin.Context) {
	partyID, ok := h.parseParam(c, "id", "Invalid party ID")
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	date, err := civildate.Parse(req.Date)
	if err != nil {
		RespondBadRequest(c, "Invalid date: "+req.Date)
		return
	}

	items, err := mapLineItemRequests(req.LineItems)
	if err != nil {
		RespondBadRequest(c, "Invalid product reference in line items")
		return
	}

	draft := entry.Draft{
		PartyID: partyID,
		Kind:    entry.Kind(req.Kind),
		Amount:  req.Amount,
		Items:   items,
		Date:    date,
	}

	user := middleware.GetUserContext(c)
	e, err := h.ledgerService.AddEntry(c.Request.Context(), user, draft)
	if err != nil {
		h.logger.Error("Failed to add entry", "party_id", partyID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondCreated(c, mapEntryToResponse(e, nil))
}

// ListByParty retrieves a newest-first page of a party's ledger with
// per-row running balances
func (h *EntryHandler) ListByParty(c *gin.Context) {
	partyID, ok := h.parseParam(c, "id", "Invalid party ID")
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	user := middleware.GetUserContext(c)
	rows, total, err := h.ledgerService.ListEntries(c.Request.Context(), user, partyID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list entries", "party_id", partyID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	responses := make([]EntryResponse, 0, len(rows))
	for _, row := range rows {
		rb := row.RunningBalance
		responses = append(responses, mapEntryToResponse(row.Entry, &rb))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// Update edits an entry's amount, date, or line items. Kind is immutable.
func (h *EntryHandler) Update(c *gin.Context) {
	entryID, ok := h.parseParam(c, "id", "Invalid entry ID")
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if req.Kind != "" {
		respondDomainError(c, entry.ErrKindChange)
		return
	}

	patch := entry.Patch{Amount: req.Amount}
	if req.Date != nil {
		date, err := civildate.Parse(*req.Date)
		if err != nil {
			RespondBadRequest(c, "Invalid date: "+*req.Date)
			return
		}
		patch.Date = &date
	}
	if len(req.LineItems) > 0 {
		items, err := mapLineItemRequests(req.LineItems)
		if err != nil {
			RespondBadRequest(c, "Invalid product reference in line items")
			return
		}
		patch.Items = items
	}

	user := middleware.GetUserContext(c)
	e, err := h.ledgerService.EditEntry(c.Request.Context(), user, entryID, patch)
	if err != nil {
		h.logger.Error("Failed to edit entry", "entry_id", entryID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, mapEntryToResponse(e, nil))
}

// Delete soft-deletes an entry, reversing its balance contribution
func (h *EntryHandler) Delete(c *gin.Context) {
	entryID, ok := h.parseParam(c, "id", "Invalid entry ID")
	if !ok {
		return
	}

	user := middleware.GetUserContext(c)
	if err := h.ledgerService.DeleteEntry(c.Request.Context(), user, entryID); err != nil {
		h.logger.Error("Failed to delete entry", "entry_id", entryID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondNoContent(c)
}

// Restore re-applies a deleted entry's balance contribution
func (h *EntryHandler) Restore(c *gin.Context) {
	entryID, ok := h.parseParam(c, "id", "Invalid entry ID")
	if !ok {
		return
	}

	user := middleware.GetUserContext(c)
	if err := h.ledgerService.RestoreEntry(c.Request.Context(), user, entryID); err != nil {
		h.logger.Error("Failed to restore entry", "entry_id", entryID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondNoContent(c)
}

// Purge permanently removes a deleted entry
func (h *EntryHandler) Purge(c *gin.Context) {
	entryID, ok := h.parseParam(c, "id", "Invalid entry ID")
	if !ok {
		return
	}

	user := middleware.GetUserContext(c)
	if err := h.ledgerService.PurgeEntry(c.Request.Context(), user, entryID); err != nil {
		h.logger.Error("Failed to purge entry", "entry_id", entryID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondNoContent(c)
}

// Export computes the rows and totals for a date-ranged ledger report
func (h *EntryHandler) Export(c *gin.Context) {
	partyID, ok := h.parseParam(c, "id", "Invalid party ID")
	if !ok {
		return
	}

	var params ExportRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Both from and to dates are required")
		return
	}

	from, err := civildate.Parse(params.From)
	if err != nil {
		RespondBadRequest(c, "Invalid from date: "+params.From)
		return
	}
	to, err := civildate.Parse(params.To)
	if err != nil {
		RespondBadRequest(c, "Invalid to date: "+params.To)
		return
	}

	user := middleware.GetUserContext(c)
	export, err := h.ledgerService.ExportRange(c.Request.Context(), user, partyID, from, to)
	if err != nil {
		h.logger.Error("Failed to export range", "party_id", partyID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	response := ExportRangeResponse{
		OpeningBalance: export.OpeningBalance,
		ClosingBalance: export.ClosingBalance,
		TotalDebit:     export.TotalDebit,
		TotalCredit:    export.TotalCredit,
		Rows:           make([]EntryResponse, 0, len(export.Rows)),
	}
	for _, row := range export.Rows {
		rb := row.RunningBalance
		response.Rows = append(response.Rows, mapEntryToResponse(row.Entry, &rb))
	}

	RespondOK(c, response)
}

// BadDebt ages the party's receivable over its full entry list
func (h *EntryHandler) BadDebt(c *gin.Context) {
	partyID, ok := h.parseParam(c, "id", "Invalid party ID")
	if !ok {
		return
	}

	user := middleware.GetUserContext(c)
	report, err := h.ledgerService.BadDebt(c.Request.Context(), user, partyID)
	if err != nil {
		h.logger.Error("Failed to compute bad debt", "party_id", partyID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, report)
}

// ProfitSummary reports gross profit for a date range across all parties
func (h *EntryHandler) ProfitSummary(c *gin.Context) {
	var params ExportRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Both from and to dates are required")
		return
	}

	from, err := civildate.Parse(params.From)
	if err != nil {
		RespondBadRequest(c, "Invalid from date: "+params.From)
		return
	}
	to, err := civildate.Parse(params.To)
	if err != nil {
		RespondBadRequest(c, "Invalid to date: "+params.To)
		return
	}

	user := middleware.GetUserContext(c)
	summary, err := h.ledgerService.ProfitSummary(c.Request.Context(), user, from, to)
	if err != nil {
		h.logger.Error("Failed to compute profit summary", "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, summary)
}

// parseParam reads a UUID path parameter, responding 400 on garbage.
func (h *EntryHandler) parseParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Error("Invalid path parameter", "param", name, "value", raw, "error", err)
		RespondBadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}
