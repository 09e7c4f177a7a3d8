package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gmchicks/storefront-backend/api/responses"
	"github.com/gmchicks/storefront-backend/api/validators"
	ordersvc "github.com/gmchicks/storefront-backend/internal/orders"
	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/logger"
)

type orderLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type deliveryAddressRequest struct {
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	County     string `json:"county" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
}

type placeOrderRequest struct {
	Items           []orderLineRequest     `json:"items" validate:"required,min=1,max=50,dive"`
	DeliveryAddress deliveryAddressRequest `json:"delivery_address" validate:"required"`
	Notes           string                 `json:"notes" validate:"max=1000"`
}

func (p placeOrderRequest) toInput(userID uuid.UUID) ordersvc.PlaceOrderInput {
	lines := make([]ordersvc.LineInput, 0, len(p.Items))
	for _, item := range p.Items {
		lines = append(lines, ordersvc.LineInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return ordersvc.PlaceOrderInput{
		UserID: userID,
		Lines:  lines,
		DeliveryAddress: models.DeliveryAddress{
			Street:     strings.TrimSpace(p.DeliveryAddress.Street),
			City:       strings.TrimSpace(p.DeliveryAddress.City),
			County:     strings.TrimSpace(p.DeliveryAddress.County),
			PostalCode: strings.TrimSpace(p.DeliveryAddress.PostalCode),
		},
		Notes: strings.TrimSpace(p.Notes),
	}
}

// OrderPlace turns the submitted lines into a pending order. Prices come from
// the catalog, never from the request.
func OrderPlace(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), payload.toInput(identity.UserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, order)
	}
}

func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := cursorParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListMine(r.Context(), identity.UserID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// OrderDetail is visible to the owner and to admins.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.PathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), identity, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
