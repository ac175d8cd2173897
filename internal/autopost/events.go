package autopost

import (
	"time"

	"github.com/google/uuid"
)

// SaleEvent is emitted when an invoice is posted. Amounts arrive already
// split so the generator never queries the invoicing module.
type SaleEvent struct {
	TenantID    uuid.UUID
	InvoiceID   uuid.UUID
	Date        time.Time
	Subtotal    float64
	IVAAmount   float64
	PaidOnIssue bool
	Cancel      bool
	ActorID     int64
}

// PaymentEvent is emitted when a customer payment is received.
type PaymentEvent struct {
	TenantID  uuid.UUID
	PaymentID uuid.UUID
	Date      time.Time
	Amount    float64
	ToBank    bool
	ActorID   int64
}

// PurchaseEvent is emitted when goods are received against a purchase.
type PurchaseEvent struct {
	TenantID  uuid.UUID
	ReceiptID uuid.UUID
	Date      time.Time
	Subtotal  float64
	IVAAmount float64
	ActorID   int64
}

// StockAdjustmentEvent is emitted for inventory shrinkage or correction.
// Amount is positive for shrinkage (inventory decreases).
type StockAdjustmentEvent struct {
	TenantID   uuid.UUID
	MovementID uuid.UUID
	Date       time.Time
	Amount     float64
	ActorID    int64
}
