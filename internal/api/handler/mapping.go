package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/party"
	"github.com/shopbook-ledger/internal/domain/product"
	"github.com/shopbook-ledger/internal/domain/shared"
)

// validationErrs are rejected before any write reaches storage and map to 400.
var validationErrs = []error{
	entry.ErrInvalidKind,
	entry.ErrInvalidAmount,
	entry.ErrInvalidDate,
	entry.ErrMissingParty,
	entry.ErrAmountWithItems,
	entry.ErrItemsRequireSale,
	entry.ErrEmptyLineItem,
	entry.ErrKindChange,
	party.ErrEmptyName,
	party.ErrInvalidKind,
	party.ErrKindMismatch,
	product.ErrEmptyName,
	shared.ErrMissingUser,
}

// conflictErrs map to 409: the row exists but is in the wrong state for the
// requested transition.
var conflictErrs = []error{
	entry.ErrEntryDeleted,
	entry.ErrEntryNotDeleted,
	party.ErrPartyDeleted,
	party.ErrPartyNotDeleted,
}

// respondDomainError translates a service error into the HTTP envelope.
// Acting on a purged row surfaces as 404, which the UI treats as a signal
// to refresh its local state.
func respondDomainError(c *gin.Context, err error) {
	for _, verr := range validationErrs {
		if errors.Is(err, verr) {
			RespondBadRequest(c, err.Error())
			return
		}
	}
	for _, cerr := range conflictErrs {
		if errors.Is(err, cerr) {
			RespondConflict(c, err.Error())
			return
		}
	}

	if errors.Is(err, entry.ErrEntryNotFound{}) || errors.Is(err, party.ErrPartyNotFound{}) || errors.Is(err, product.ErrProductNotFound{}) {
		RespondNotFound(c, err.Error())
		return
	}

	var dup party.ErrDuplicatePhone
	if errors.As(err, &dup) {
		RespondConflict(c, dup.Error())
		return
	}

	RespondInternalError(c)
}

// mapPartyToResponse maps a party to its response DTO
func mapPartyToResponse(p *party.Party) PartyResponse {
	return PartyResponse{
		ID:               p.ID.String(),
		Kind:             string(p.Kind),
		Name:             p.Name,
		Phone:            p.Phone,
		TotalBalance:     p.TotalBalance,
		TotalDebit:       p.TotalDebit,
		TotalCredit:      p.TotalCredit,
		LastActivityDate: p.LastActivityDate.String(),
		IsDeleted:        p.IsDeleted,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

// mapEntryToResponse maps a ledger entry to its response DTO. runningBalance
// is optional; list endpoints supply it, single-row endpoints do not.
func mapEntryToResponse(e *entry.Entry, runningBalance *int64) EntryResponse {
	response := EntryResponse{
		ID:             e.ID.String(),
		PartyID:        e.PartyID.String(),
		PartyName:      e.PartyName,
		Kind:           string(e.Kind),
		Amount:         e.Amount,
		Date:           e.Date.String(),
		Profit:         e.Profit,
		RunningBalance: runningBalance,
		IsDeleted:      e.IsDeleted,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}

	if e.DeletedAt != nil {
		response.DeletedAt = e.DeletedAt.Format(time.RFC3339)
	}

	for _, item := range e.LineItems {
		li := LineItemResponse{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			UnitCost:  item.UnitCost,
			LineTotal: item.LineTotal,
		}
		if item.ProductID != nil {
			li.ProductID = item.ProductID.String()
		}
		response.LineItems = append(response.LineItems, li)
	}

	return response
}

// mapProductToResponse maps a product to its response DTO
func mapProductToResponse(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		UnitPrice:      p.UnitPrice,
		UnitCost:       p.UnitCost,
		QuantityOnHand: p.QuantityOnHand,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

// mapLineItemRequests converts request line items, validating product refs.
func mapLineItemRequests(items []LineItemRequest) ([]entry.LineItem, error) {
	out := make([]entry.LineItem, 0, len(items))
	for _, item := range items {
		li := entry.LineItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			UnitCost:  item.UnitCost,
		}
		if item.ProductID != "" {
			id, err := uuid.Parse(item.ProductID)
			if err != nil {
				return nil, err
			}
			li.ProductID = &id
		}
		out = append(out, li)
	}
	return out, nil
}
