package payloads

import (
	"time"

	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

type OrderPlacedEvent struct {
	OrderID          uuid.UUID `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	UserID           uuid.UUID `json:"user_id"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	ItemCount        int       `json:"item_count"`
}

// OrderStatusChangedEvent also covers cancellations by the expiry job.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to"`
	ChangedAt   time.Time         `json:"changed_at"`
	Reason      string            `json:"reason,omitempty"`
}

type PaymentInitiatedEvent struct {
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	AmountKES   string              `json:"amount_kes"`
	Reference   string              `json:"reference,omitempty"`
	Status      enums.PaymentStatus `json:"status"`
}

type VisitBookedEvent struct {
	VisitID          uuid.UUID          `json:"visit_id"`
	UserID           uuid.UUID          `json:"user_id"`
	VisitDate        string             `json:"visit_date"`
	VisitTime        string             `json:"visit_time"`
	NumberOfVisitors int                `json:"number_of_visitors"`
	Purpose          enums.VisitPurpose `json:"purpose"`
}

type VisitStatusChangedEvent struct {
	VisitID uuid.UUID         `json:"visit_id"`
	From    enums.VisitStatus `json:"from"`
	To      enums.VisitStatus `json:"to"`
}
