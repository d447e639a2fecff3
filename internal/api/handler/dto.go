package handler

// CreatePartyRequest represents a request to create a customer, supplier,
// or expense category
type CreatePartyRequest struct {
	Kind  string `json:"kind" binding:"required,oneof=customer supplier expense_category"`
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone,omitempty"`
}

// PartyResponse represents a party in API responses
type PartyResponse struct {
	ID               string `json:"id"`
	Kind             string `json:"kind"`
	Name             string `json:"name"`
	Phone            string `json:"phone,omitempty"`
	TotalBalance     int64  `json:"total_balance"`
	TotalDebit       int64  `json:"total_debit"`
	TotalCredit      int64  `json:"total_credit"`
	LastActivityDate string `json:"last_activity_date,omitempty"`
	IsDeleted        bool   `json:"is_deleted,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// LineItemRequest represents one cart line of an itemized sale
type LineItemRequest struct {
	ProductID string `json:"product_id,omitempty" binding:"omitempty,uuid"`
	Name      string `json:"name" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
	UnitCost  int64  `json:"unit_cost" binding:"min=0"`
}

// CreateEntryRequest represents a request to record a transaction. Amount
// and line_items are mutually exclusive; amounts are minor currency units.
type CreateEntryRequest struct {
	Kind      string            `json:"kind" binding:"required,oneof=sale purchase payment expense"`
	Amount    int64             `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Date      string            `json:"date" binding:"required"`
	LineItems []LineItemRequest `json:"line_items,omitempty"`
}

// UpdateEntryRequest represents an edit to an existing entry. Kind is
// accepted in the payload only so the attempt can be rejected explicitly.
type UpdateEntryRequest struct {
	Kind      string            `json:"kind,omitempty"`
	Amount    *int64            `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Date      *string           `json:"date,omitempty"`
	LineItems []LineItemRequest `json:"line_items,omitempty"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ProductID string `json:"product_id,omitempty"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	UnitCost  int64  `json:"unit_cost"`
	LineTotal int64  `json:"line_total"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID             string             `json:"id"`
	PartyID        string             `json:"party_id"`
	PartyName      string             `json:"party_name,omitempty"`
	Kind           string             `json:"kind"`
	Amount         int64              `json:"amount"`
	Date           string             `json:"date"`
	LineItems      []LineItemResponse `json:"line_items,omitempty"`
	Profit         int64              `json:"profit"`
	RunningBalance *int64             `json:"running_balance,omitempty"`
	IsDeleted      bool               `json:"is_deleted,omitempty"`
	DeletedAt      string             `json:"deleted_at,omitempty"`
	CreatedAt      string             `json:"created_at"`
}

// ExportRangeResponse feeds the external report renderer
type ExportRangeResponse struct {
	OpeningBalance int64           `json:"opening_balance"`
	ClosingBalance int64           `json:"closing_balance"`
	TotalDebit     int64           `json:"total_debit"`
	TotalCredit    int64           `json:"total_credit"`
	Rows           []EntryResponse `json:"rows"`
}

// RecycleBinResponse represents the combined recycle-bin view
type RecycleBinResponse struct {
	Parties []PartyResponse `json:"parties"`
	Entries []EntryResponse `json:"entries"`
}

// CreateProductRequest represents a request to create an inventory item
type CreateProductRequest struct {
	Name      string `json:"name" binding:"required"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
	UnitCost  int64  `json:"unit_cost" binding:"min=0"`
	Quantity  int64  `json:"quantity" binding:"min=0"`
}

// ProductResponse represents an inventory item in API responses
type ProductResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UnitPrice      int64  `json:"unit_price"`
	UnitCost       int64  `json:"unit_cost"`
	QuantityOnHand int64  `json:"quantity_on_hand"`
	CreatedAt      string `json:"created_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

// ExportRangeParams represents the date window of a ledger export
type ExportRangeParams struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}
