package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gmchicks/storefront-backend/api/responses"
	"github.com/gmchicks/storefront-backend/api/validators"
	visitsvc "github.com/gmchicks/storefront-backend/internal/visits"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/logger"
)

type bookVisitRequest struct {
	VisitDate        string `json:"visit_date" validate:"required,max=10"`
	VisitTime        string `json:"visit_time" validate:"max=5"`
	NumberOfVisitors int    `json:"number_of_visitors"`
	Purpose          string `json:"purpose" validate:"max=32"`
	Notes            string `json:"notes" validate:"max=1000"`
}

func VisitAvailability(svc visitsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := strings.TrimSpace(chi.URLParam(r, "date"))
		availability, err := svc.Availability(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, availability)
	}
}

// VisitBook reserves seats in a slot. An unset time or purpose falls back to
// the service defaults.
func VisitBook(svc visitsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bookVisitRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		visit, err := svc.Book(r.Context(), visitsvc.BookInput{
			UserID:           identity.UserID,
			VisitDate:        strings.TrimSpace(payload.VisitDate),
			VisitTime:        strings.TrimSpace(payload.VisitTime),
			NumberOfVisitors: payload.NumberOfVisitors,
			Purpose:          enums.VisitPurpose(strings.TrimSpace(payload.Purpose)),
			Notes:            strings.TrimSpace(payload.Notes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, visit)
	}
}

func VisitList(svc visitsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
