package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/internal/orders"
	"github.com/gmchicks/storefront-backend/pkg/auth"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/logger"
	"github.com/gmchicks/storefront-backend/pkg/money"
	"github.com/gmchicks/storefront-backend/pkg/outbox"
	"github.com/gmchicks/storefront-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service starts payment collection for placed orders.
type Service interface {
	InitiateForOrder(ctx context.Context, identity auth.Identity, orderID uuid.UUID, phone string) (*InitiateDTO, error)
}

// InitiateDTO is returned to the client after the gateway answered.
type InitiateDTO struct {
	OrderID       uuid.UUID           `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	Accepted      bool                `json:"accepted"`
	Reference     string              `json:"reference,omitempty"`
	Message       string              `json:"message,omitempty"`
	AmountKES     int64               `json:"amount_kes"`
	PhoneNumber   string              `json:"phone_number"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
}

type service struct {
	orders    orders.Repository
	tx        txRunner
	outbox    outboxPublisher
	initiator Initiator
	logg      *logger.Logger
}

func NewService(repo orders.Repository, tx txRunner, emitter outboxPublisher, initiator Initiator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if initiator == nil {
		return nil, fmt.Errorf("payment initiator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: repo, tx: tx, outbox: emitter, initiator: initiator, logg: logg}, nil
}

// InitiateForOrder calls the gateway outside any transaction, then records
// the answer and its outbox event together.
func (s *service) InitiateForOrder(ctx context.Context, identity auth.Identity, orderID uuid.UUID, phone string) (*InitiateDTO, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Unavailable(err, "load order")
	}
	if order.UserID != identity.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.OrderStatus == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has been cancelled")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is already paid")
	}

	amount := money.WholeShillings(order.TotalAmountCents)
	result, err := s.initiator.Initiate(ctx, InitiateRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		AmountKES:   amount,
		PayerPhone:  normalized,
	})
	if err != nil {
		logCtx := s.logg.WithField(ctx, "order_id", order.ID.String())
		s.logg.Error(logCtx, "payment initiation failed", err)
		return nil, pkgerrors.Unavailable(err, "payment gateway unavailable")
	}

	status := enums.PaymentStatusInitiated
	eventType := enums.EventPaymentInitiated
	if !result.Accepted {
		status = enums.PaymentStatusFailed
		eventType = enums.EventPaymentFailed
	}
	update := orders.PaymentUpdate{Status: status, Phone: &normalized}
	if result.Reference != "" {
		update.Reference = &result.Reference
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).UpdatePayment(ctx, order.ID, update); err != nil {
			return pkgerrors.Unavailable(err, "record payment")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: identity.UserID, Role: string(identity.Role)},
			Data: payloads.PaymentInitiatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				AmountKES:   money.FromCents(order.TotalAmountCents).StringFixed(2),
				Reference:   result.Reference,
				Status:      status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID.String(),
		"payment_status": status,
		"amount_kes":     amount,
		"order_total":    money.Format(order.TotalAmountCents),
	})
	s.logg.Info(logCtx, "payment initiation recorded")

	return &InitiateDTO{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Accepted:      result.Accepted,
		Reference:     result.Reference,
		Message:       result.Message,
		AmountKES:     amount,
		PhoneNumber:   normalized,
		PaymentStatus: status,
	}, nil
}
