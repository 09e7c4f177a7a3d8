package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gmchicks/storefront-backend/api/responses"
	"github.com/gmchicks/storefront-backend/api/validators"
	cartsvc "github.com/gmchicks/storefront-backend/internal/cart"
	"github.com/gmchicks/storefront-backend/pkg/logger"
)

type cartLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=1000"`
}

type cartReconcileRequest struct {
	Items []cartLineRequest `json:"items" validate:"max=100,dive"`
}

type lineMutation func(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.View, error)

// CartFetch returns the caller's materialized cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartSetLine replaces the quantity of one line.
func CartSetLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineMutation(logg, svc.SetLine)
}

// CartIncrementLine adds to the quantity of one line. Retrying it adds again.
func CartIncrementLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineMutation(logg, svc.IncrementLine)
}

func cartLineMutation(logg *logger.Logger, apply lineMutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartLineRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := apply(r.Context(), identity.UserID, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartRemoveLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveLine(r.Context(), identity.UserID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Clear(r.Context(), identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartReconcile merges the guest cart sent at login into the persisted cart.
func CartReconcile(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartReconcileRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]cartsvc.Line, 0, len(payload.Items))
		for _, item := range payload.Items {
			lines = append(lines, cartsvc.Line{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		view, err := svc.Reconcile(r.Context(), identity.UserID, lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
