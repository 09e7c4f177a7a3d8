package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gmchicks/storefront-backend/pkg/config"
)

// InitiateRequest asks the gateway to collect AmountKES from PayerPhone.
type InitiateRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	AmountKES   int64
	PayerPhone  string
}

// InitiateResult is the synchronous answer of the gateway. Settlement is
// reported later and out of band.
type InitiateResult struct {
	Accepted  bool
	Reference string
	Message   string
}

// Initiator starts a mobile-money collection.
type Initiator interface {
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error)
}

// DevInitiator accepts every request without contacting a gateway.
type DevInitiator struct{}

func (DevInitiator) Initiate(_ context.Context, req InitiateRequest) (InitiateResult, error) {
	return InitiateResult{
		Accepted:  true,
		Reference: "DEV-" + req.OrderNumber,
		Message:   "payment request simulated",
	}, nil
}

// NewInitiator selects the initiator configured by GMCHICKS_PAYMENTS_MODE.
func NewInitiator(cfg config.PaymentsConfig) (Initiator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case config.PaymentsModeDev, "":
		return DevInitiator{}, nil
	case config.PaymentsModeHTTP:
		return NewHTTPInitiator(cfg)
	default:
		return nil, fmt.Errorf("unsupported payments mode %q", cfg.Mode)
	}
}
