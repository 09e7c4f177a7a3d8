package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gmchicks/storefront-backend/api/responses"
	"github.com/gmchicks/storefront-backend/api/validators"
	paymentsvc "github.com/gmchicks/storefront-backend/internal/payments"
	"github.com/gmchicks/storefront-backend/pkg/logger"
)

type initiatePaymentRequest struct {
	OrderID     uuid.UUID `json:"order_id" validate:"required"`
	PhoneNumber string    `json:"phone_number" validate:"required,max=20"`
}

// PaymentInitiate asks the mobile-money gateway to prompt the payer.
func PaymentInitiate(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload initiatePaymentRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.InitiateForOrder(r.Context(), identity, payload.OrderID, payload.PhoneNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
