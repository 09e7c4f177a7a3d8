package controllers

import (
	"net/http"

	"github.com/gmchicks/storefront-backend/api/responses"
	"github.com/gmchicks/storefront-backend/api/validators"
	"github.com/gmchicks/storefront-backend/internal/vaccinations"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/logger"
)

const maxChickAgeDays = 3650

type scheduleResponse struct {
	ChickType enums.ChickType      `json:"chick_type"`
	Schedule  []vaccinations.Entry `json:"schedule"`
}

type upcomingResponse struct {
	ChickType enums.ChickType              `json:"chick_type"`
	ChickAge  int                          `json:"chick_age"`
	Upcoming  []vaccinations.UpcomingEntry `json:"upcoming"`
}

func VaccinationSchedule(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chickType, err := chickTypeParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := vaccinations.Schedule(chickType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, scheduleResponse{ChickType: chickType, Schedule: entries})
	}
}

func VaccinationTips() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, vaccinations.Tips())
	}
}

func VaccinationUpcoming(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chickType, err := chickTypeParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if validators.QueryString(r, "chick_age", 8) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "chick_age is required").WithDetails(map[string]any{"field": "chick_age"}))
			return
		}
		age, err := validators.ParseQueryInt(r, "chick_age", 0, 0, maxChickAgeDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := vaccinations.Upcoming(age, chickType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, upcomingResponse{ChickType: chickType, ChickAge: age, Upcoming: entries})
	}
}

func chickTypeParam(r *http.Request) (enums.ChickType, error) {
	raw := validators.QueryString(r, "chick_type", 16)
	if raw == "" {
		return enums.ChickTypeLayer, nil
	}
	chickType, err := enums.ParseChickType(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid chick_type").WithDetails(map[string]any{"field": "chick_type"})
	}
	return chickType, nil
}
