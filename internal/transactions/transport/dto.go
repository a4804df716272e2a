package transport

import (
	"time"

	"github.com/google/uuid"
)

// PropertyType defines the kind of property being purchased
type PropertyType string

const (
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeTownhouse PropertyType = "townhouse"
)

// TransactionStatus defines the lifecycle status of a transaction
type TransactionStatus string

const (
	TransactionStatusActive      TransactionStatus = "active"
	TransactionStatusNegotiating TransactionStatus = "negotiating"
	TransactionStatusWithdrawn   TransactionStatus = "withdrawn"
	TransactionStatusSettled     TransactionStatus = "settled"
	TransactionStatusCancelled   TransactionStatus = "cancelled"
)

// IsTerminal reports whether a status permits no further transitions.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSettled || s == TransactionStatusCancelled
}

// CreateTransactionRequest is the request body for registering a transaction
type CreateTransactionRequest struct {
	PropertyID         string       `json:"propertyId" validate:"required,min=1,max=100"`
	PropertyAddress    string       `json:"propertyAddress" validate:"required,min=1,max=500"`
	PurchasePriceCents int64        `json:"purchasePriceCents" validate:"required,gt=0"`
	PropertyType       PropertyType `json:"propertyType" validate:"required,oneof=house apartment townhouse"`
	IsStrata           bool         `json:"isStrata"`
	BuyerID            uuid.UUID    `json:"buyerId" validate:"required"`
	ContractDate       time.Time    `json:"contractDate" validate:"required"`
	CoolingOffExpiry   time.Time    `json:"coolingOffExpiry" validate:"required,gtfield=ContractDate"`
	FinanceClause      bool         `json:"financeClause"`
	FinanceApprovalDue *time.Time   `json:"financeApprovalDue,omitempty"`
	SettlementDate     *time.Time   `json:"settlementDate,omitempty"`
}

// UpdateStatusRequest is the request body for a status transition.
// Version carries the caller's last-seen aggregate version for the
// optimistic-concurrency check.
type UpdateStatusRequest struct {
	Status  TransactionStatus `json:"status" validate:"required,oneof=active negotiating withdrawn settled cancelled"`
	Version int               `json:"version" validate:"min=1"`
}

// ScheduleSettlementRequest sets or moves the settlement date.
type ScheduleSettlementRequest struct {
	SettlementDate time.Time `json:"settlementDate" validate:"required"`
	Version        int       `json:"version" validate:"min=1"`
}

// RecordSettlementRequest records the actual settlement timestamp (set once).
type RecordSettlementRequest struct {
	SettledAt time.Time `json:"settledAt" validate:"required"`
	Version   int       `json:"version" validate:"min=1"`
}

// ListTransactionsRequest is the query parameters for listing transactions
type ListTransactionsRequest struct {
	Status   *TransactionStatus `form:"status" validate:"omitempty,oneof=active negotiating withdrawn settled cancelled"`
	Page     int                `form:"page" validate:"min=0"`
	PageSize int                `form:"pageSize" validate:"min=0,max=100"`
}

// TransactionResponse is the response body for a transaction
type TransactionResponse struct {
	ID                 uuid.UUID         `json:"id"`
	PropertyID         string            `json:"propertyId"`
	PropertyAddress    string            `json:"propertyAddress"`
	PurchasePriceCents int64             `json:"purchasePriceCents"`
	PropertyType       PropertyType      `json:"propertyType"`
	IsStrata           bool              `json:"isStrata"`
	BuyerID            uuid.UUID         `json:"buyerId"`
	ContractDate       time.Time         `json:"contractDate"`
	CoolingOffExpiry   time.Time         `json:"coolingOffExpiry"`
	FinanceClause      bool              `json:"financeClause"`
	FinanceApprovalDue *time.Time        `json:"financeApprovalDue,omitempty"`
	SettlementDate     *time.Time        `json:"settlementDate,omitempty"`
	SettledAt          *time.Time        `json:"settledAt,omitempty"`
	Status             TransactionStatus `json:"status"`
	Version            int               `json:"version"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// TransactionListResponse is the paginated response for listing transactions
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}
