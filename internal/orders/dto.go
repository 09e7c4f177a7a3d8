package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/money"
)

// OrderList is one cursor page of orders.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}

// OrderItemDTO is a snapshotted order line.
type OrderItemDTO struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	PriceCents     int64           `json:"price_cents"`
	Quantity       int             `json:"quantity"`
	LineTotalCents int64           `json:"line_total_cents"`
}

type StatusEntryDTO struct {
	Status    enums.OrderStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
}

type DeliveryAddressDTO struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	County     string `json:"county,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	UserID           uuid.UUID           `json:"user_id"`
	Items            []OrderItemDTO      `json:"items"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	TotalAmountCents int64               `json:"total_amount_cents"`
	Currency         string              `json:"currency"`
	DeliveryAddress  DeliveryAddressDTO  `json:"delivery_address"`
	Notes            string              `json:"notes,omitempty"`
	OrderStatus      enums.OrderStatus   `json:"order_status"`
	PaymentStatus    enums.PaymentStatus `json:"payment_status"`
	PaymentReference *string             `json:"payment_reference,omitempty"`
	StatusHistory    []StatusEntryDTO    `json:"status_history"`
	NextStatuses     []enums.OrderStatus `json:"next_statuses"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// OrderPage is a cursor page of order DTOs.
type OrderPage struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// StatsDTO feeds the admin dashboard.
type StatsDTO struct {
	OrdersByStatus  map[enums.OrderStatus]int64 `json:"orders_by_status"`
	TotalOrders     int64                       `json:"total_orders"`
	Revenue         decimal.Decimal             `json:"revenue"`
	RevenueCents    int64                       `json:"revenue_cents"`
	TotalProducts   int64                       `json:"total_products"`
	LowStockCount   int64                       `json:"low_stock_count"`
	PendingVisits   int64                       `json:"pending_visits"`
	LowStockBelow   int                         `json:"low_stock_threshold"`
}

// NewOrderDTO maps the persisted order to its client payload.
func NewOrderDTO(o *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:      item.ProductID,
			Name:           item.Name,
			Price:          money.FromCents(item.PriceCents),
			PriceCents:     item.PriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: item.LineTotalCents(),
		})
	}
	history := make([]StatusEntryDTO, 0, len(o.StatusHistory))
	for _, entry := range o.StatusHistory {
		history = append(history, StatusEntryDTO{Status: entry.Status, Timestamp: entry.Timestamp})
	}
	next := enums.NextOrderStatuses(o.OrderStatus)
	if next == nil {
		next = []enums.OrderStatus{}
	}
	return OrderDTO{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		UserID:           o.UserID,
		Items:            items,
		TotalAmount:      money.FromCents(o.TotalAmountCents),
		TotalAmountCents: o.TotalAmountCents,
		Currency:         money.Currency,
		DeliveryAddress: DeliveryAddressDTO{
			Street:     o.DeliveryAddress.Street,
			City:       o.DeliveryAddress.City,
			County:     o.DeliveryAddress.County,
			PostalCode: o.DeliveryAddress.PostalCode,
		},
		Notes:            o.Notes,
		OrderStatus:      o.OrderStatus,
		PaymentStatus:    o.PaymentStatus,
		PaymentReference: o.PaymentReference,
		StatusHistory:    history,
		NextStatuses:     next,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func newOrderPage(list *OrderList) *OrderPage {
	page := &OrderPage{Orders: make([]OrderDTO, 0, len(list.Orders)), NextCursor: list.NextCursor}
	for i := range list.Orders {
		page.Orders = append(page.Orders, NewOrderDTO(&list.Orders[i]))
	}
	return page
}
