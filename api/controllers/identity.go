package controllers

import (
	"net/http"

	"github.com/gmchicks/storefront-backend/api/middleware"
	"github.com/gmchicks/storefront-backend/api/validators"
	"github.com/gmchicks/storefront-backend/pkg/auth"
	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

func requireIdentity(r *http.Request) (auth.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return identity, nil
}

func cursorParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: validators.QueryString(r, "cursor", 512),
	}, nil
}
