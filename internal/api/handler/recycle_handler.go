package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/shopbook-ledger/internal/api/middleware"
	"github.com/shopbook-ledger/internal/api/service"
)

// RecycleHandler handles HTTP requests for the recycle bin
type RecycleHandler struct {
	recycleService service.RecycleService
	logger         *slog.Logger
}

// NewRecycleHandler creates a new recycle-bin handler
func NewRecycleHandler(logger *slog.Logger, recycleService service.RecycleService) *RecycleHandler {
	return &RecycleHandler{
		recycleService: recycleService,
		logger:         logger,
	}
}

// List returns the bin contents after sweeping rows past the retention
// window
func (h *RecycleHandler) List(c *gin.Context) {
	user := middleware.GetUserContext(c)
	bin, err := h.recycleService.ListBin(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("Failed to list recycle bin", "error", err)
		respondDomainError(c, err)
		return
	}

	response := RecycleBinResponse{
		Parties: make([]PartyResponse, 0, len(bin.Parties)),
		Entries: make([]EntryResponse, 0, len(bin.Entries)),
	}
	for _, p := range bin.Parties {
		response.Parties = append(response.Parties, mapPartyToResponse(p))
	}
	for _, e := range bin.Entries {
		response.Entries = append(response.Entries, mapEntryToResponse(e, nil))
	}

	RespondOK(c, response)
}

// Empty permanently purges everything in the bin
func (h *RecycleHandler) Empty(c *gin.Context) {
	user := middleware.GetUserContext(c)
	if err := h.recycleService.EmptyBin(c.Request.Context(), user); err != nil {
		h.logger.Error("Failed to empty recycle bin", "error", err)
		respondDomainError(c, err)
		return
	}

	RespondNoContent(c)
}
