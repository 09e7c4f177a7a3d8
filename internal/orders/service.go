package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/internal/products"
	"github.com/gmchicks/storefront-backend/pkg/auth"
	"github.com/gmchicks/storefront-backend/pkg/db"
	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/logger"
	"github.com/gmchicks/storefront-backend/pkg/money"
	"github.com/gmchicks/storefront-backend/pkg/outbox"
	"github.com/gmchicks/storefront-backend/pkg/outbox/payloads"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

const (
	orderNumberConstraint = "orders_order_number_key"
	maxPlaceAttempts      = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type catalogCounter interface {
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

type visitCounter interface {
	CountPending(ctx context.Context) (int64, error)
}

type orderMetrics interface {
	IncOrdersPlaced()
	IncOutOfStock(stage string)
	IncTransition(from, to string)
}

// Service defines order placement, reads and the status state machine.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, identity auth.Identity, orderID uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error)
	ListAll(ctx context.Context, filters AdminFilters, params pagination.Params) (*OrderPage, error)
	Stats(ctx context.Context) (*StatsDTO, error)
	Transition(ctx context.Context, identity auth.Identity, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// LineInput is one requested product and quantity. There is no price field:
// prices always come from the catalog.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput captures the checkout request of an authenticated user.
type PlaceOrderInput struct {
	UserID          uuid.UUID
	Lines           []LineInput
	DeliveryAddress models.DeliveryAddress
	Notes           string
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repo              Repository
	Tx                txRunner
	Inventory         Inventory
	Outbox            outboxPublisher
	Catalog           catalogCounter
	Visits            visitCounter
	Logger            *logger.Logger
	Metrics           orderMetrics
	LowStockThreshold int
	Now               func() time.Time
}

type service struct {
	repo              Repository
	tx                txRunner
	inventory         Inventory
	outbox            outboxPublisher
	catalog           catalogCounter
	visits            visitCounter
	logg              *logger.Logger
	metrics           orderMetrics
	lowStockThreshold int
	now               func() time.Time
	newNumber         func(time.Time) (string, error)
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog counter required")
	}
	if params.Visits == nil {
		return nil, fmt.Errorf("visit counter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	threshold := params.LowStockThreshold
	if threshold <= 0 {
		threshold = 20
	}
	return &service{
		repo:              params.Repo,
		tx:                params.Tx,
		inventory:         params.Inventory,
		outbox:            params.Outbox,
		catalog:           params.Catalog,
		visits:            params.Visits,
		logg:              params.Logger,
		metrics:           params.Metrics,
		lowStockThreshold: threshold,
		now:               now,
		newNumber:         NewOrderNumber,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	if err := validatePlaceOrder(&input); err != nil {
		return nil, err
	}

	var (
		order *models.Order
		err   error
	)
	for attempt := 1; attempt <= maxPlaceAttempts; attempt++ {
		order, err = s.placeOnce(ctx, input)
		if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
			break
		}
		logCtx := s.logg.WithField(ctx, "attempt", attempt)
		s.logg.Warn(logCtx, "order number collision; retrying placement")
	}
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncOrdersPlaced()
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total_cents":  order.TotalAmountCents,
	})
	s.logg.Info(logCtx, "order placed")

	dto := NewOrderDTO(order)
	return &dto, nil
}

// placeOnce runs the whole placement in one transaction: snapshot, stock
// check, insert, conditional decrement and outbox event. Any error rolls all
// of it back.
func (s *service) placeOnce(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(input.Lines))
		for _, line := range input.Lines {
			ids = append(ids, line.ProductID)
		}
		rows, err := s.inventory.Snapshot(ctx, tx, ids)
		if err != nil {
			return pkgerrors.Unavailable(err, "load products")
		}
		catalog := make(map[uuid.UUID]*models.Product, len(rows))
		for i := range rows {
			catalog[rows[i].ID] = &rows[i]
		}

		items := make([]models.OrderItem, 0, len(input.Lines))
		var total int64
		for _, line := range input.Lines {
			product, ok := catalog[line.ProductID]
			if !ok || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": line.ProductID})
			}
			if line.Quantity > product.Quantity {
				if s.metrics != nil {
					s.metrics.IncOutOfStock("precheck")
				}
				return outOfStock(product, line.Quantity, product.Quantity)
			}
			item := models.OrderItem{
				ProductID:  product.ID,
				Name:       product.Name,
				PriceCents: product.PriceCents,
				Quantity:   line.Quantity,
			}
			items = append(items, item)
			total += item.LineTotalCents()
		}

		now := s.now()
		number, err := s.newNumber(now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		order = &models.Order{
			OrderNumber:      number,
			UserID:           input.UserID,
			Items:            items,
			TotalAmountCents: total,
			DeliveryAddress:  input.DeliveryAddress,
			Notes:            input.Notes,
			OrderStatus:      enums.OrderStatusPending,
			PaymentStatus:    enums.PaymentStatusPending,
			StatusHistory:    []models.StatusEntry{{Status: enums.OrderStatusPending, Timestamp: now}},
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			if isOrderNumberCollision(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already exists")
			}
			return pkgerrors.Unavailable(err, "create order")
		}

		for _, line := range input.Lines {
			err := s.inventory.Decrement(ctx, tx, line.ProductID, line.Quantity)
			if errors.Is(err, products.ErrInsufficientStock) {
				if s.metrics != nil {
					s.metrics.IncOutOfStock("decrement")
				}
				product := catalog[line.ProductID]
				available := product.Quantity
				if fresh, ferr := s.inventory.Snapshot(ctx, tx, []uuid.UUID{line.ProductID}); ferr == nil && len(fresh) == 1 {
					available = fresh[0].Quantity
				}
				return outOfStock(product, line.Quantity, available)
			}
			if err != nil {
				return pkgerrors.Unavailable(err, "decrement stock")
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.RoleCustomer)},
			OccurredAt:    now,
			Data: payloads.OrderPlacedEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				UserID:           order.UserID,
				TotalAmountCents: order.TotalAmountCents,
				ItemCount:        len(order.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, identity auth.Identity, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != identity.UserID && !identity.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := NewOrderDTO(order)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	if err := validateCursor(params); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "list orders")
	}
	return newOrderPage(list), nil
}

func (s *service) ListAll(ctx context.Context, filters AdminFilters, params pagination.Params) (*OrderPage, error) {
	if err := validateCursor(params); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "list orders")
	}
	return newOrderPage(list), nil
}

func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "count orders")
	}
	revenue, err := s.repo.RevenueCents(ctx)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "sum revenue")
	}
	productCount, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "count products")
	}
	lowStock, err := s.catalog.CountLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "count low stock")
	}
	pendingVisits, err := s.visits.CountPending(ctx)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "count visits")
	}

	stats := &StatsDTO{
		OrdersByStatus: make(map[enums.OrderStatus]int64, 5),
		Revenue:        money.FromCents(revenue),
		RevenueCents:   revenue,
		TotalProducts:  productCount,
		LowStockCount:  lowStock,
		PendingVisits:  pendingVisits,
		LowStockBelow:  s.lowStockThreshold,
	}
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	} {
		stats.OrdersByStatus[status] = counts[status]
		stats.TotalOrders += counts[status]
	}
	return stats, nil
}

func (s *service) Transition(ctx context.Context, identity auth.Identity, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !identity.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only administrators can change order status")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", next))
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.transitionTx(ctx, tx, orderID, next, transitionMeta{
			actor:     &outbox.ActorRef{UserID: identity.UserID, Role: string(identity.Role)},
			eventType: enums.EventOrderStatusChanged,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	dto := NewOrderDTO(order)
	return &dto, nil
}

// ExpirePending cancels unpaid pending orders created before cutoff, one
// transaction per order. Orders moved by someone else in the meantime are
// skipped. It returns how many orders were cancelled.
func (s *service) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := s.repo.FindPendingBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Unavailable(err, "find stale orders")
	}

	var (
		expired int
		errs    error
	)
	for _, candidate := range stale {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.transitionTx(ctx, tx, candidate.ID, enums.OrderStatusCancelled, transitionMeta{
				eventType: enums.EventOrderExpired,
				reason:    "payment not received",
			})
			return err
		})
		switch {
		case err == nil:
			expired++
		case pkgerrors.HasCode(err, pkgerrors.CodeConflict), pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition):
		default:
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", candidate.OrderNumber, err))
		}
	}
	return expired, errs
}

type transitionMeta struct {
	actor     *outbox.ActorRef
	eventType enums.OutboxEventType
	reason    string
}

func (s *service) transitionTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, next enums.OrderStatus, meta transitionMeta) (*models.Order, error) {
	repo := s.repo.WithTx(tx)
	order, err := s.load(ctx, repo, orderID)
	if err != nil {
		return nil, err
	}
	from := order.OrderStatus
	if !from.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move order from %s to %s", from, next)).
			WithDetails(map[string]any{
				"from":    from,
				"to":      next,
				"allowed": enums.NextOrderStatuses(from),
			})
	}

	now := s.now()
	history := make([]models.StatusEntry, 0, len(order.StatusHistory)+1)
	history = append(history, order.StatusHistory...)
	history = append(history, models.StatusEntry{Status: next, Timestamp: now})

	updated, err := repo.UpdateStatus(ctx, order.ID, from, next, history)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "update order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently; reload and retry")
	}

	if next == enums.OrderStatusCancelled {
		for _, item := range order.Items {
			if err := s.inventory.Restock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return nil, pkgerrors.Unavailable(err, "restock product")
			}
		}
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     meta.eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         meta.actor,
		OccurredAt:    now,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			From:        from,
			To:          next,
			ChangedAt:   now,
			Reason:      meta.reason,
		},
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncTransition(string(from), string(next))
	}
	order.OrderStatus = next
	order.StatusHistory = history
	order.UpdatedAt = now
	return order, nil
}

func (s *service) load(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Unavailable(err, "load order")
	}
	return order, nil
}

func validatePlaceOrder(input *PlaceOrderInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"product_id": line.ProductID, "quantity": line.Quantity})
		}
		if _, dup := seen[line.ProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate product %s in order", line.ProductID))
		}
		seen[line.ProductID] = struct{}{}
	}
	input.DeliveryAddress.Street = strings.TrimSpace(input.DeliveryAddress.Street)
	input.DeliveryAddress.City = strings.TrimSpace(input.DeliveryAddress.City)
	if input.DeliveryAddress.Street == "" || input.DeliveryAddress.City == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address requires street and city")
	}
	input.Notes = strings.TrimSpace(input.Notes)
	return nil
}

// isOrderNumberCollision matches the named Postgres constraint or the
// column-qualified SQLite message.
func isOrderNumberCollision(err error) bool {
	return db.IsUniqueViolation(err, orderNumberConstraint) || db.IsUniqueViolation(err, "orders.order_number")
}

func outOfStock(product *models.Product, requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeOutOfStock, fmt.Sprintf("%s is out of stock", product.Name)).
		WithDetails(map[string]any{
			"product_id": product.ID,
			"name":      product.Name,
			"requested": requested,
			"available": available,
		})
}

func validateCursor(params pagination.Params) error {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return nil
}
