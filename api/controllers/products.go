package controllers

import (
	"net/http"
	"strings"

	"github.com/gmchicks/storefront-backend/api/responses"
	"github.com/gmchicks/storefront-backend/api/validators"
	productsvc "github.com/gmchicks/storefront-backend/internal/products"
	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/logger"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

const maxSearchLength = 100

// ProductList serves the public catalog. Inactive products are never listed here.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productList(svc, logg, false)
}

// AdminProductList includes inactive products.
func AdminProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productList(svc, logg, true)
}

func productList(svc productsvc.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseProductListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.IncludeInactive = includeInactive

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseProductListInput(r *http.Request) (productsvc.ListInput, error) {
	var input productsvc.ListInput

	if raw := validators.QueryString(r, "category", 32); raw != "" && raw != "all" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}

	sort, err := enums.ParseProductSort(validators.QueryString(r, "sort", 32))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
	}
	input.Sort = sort
	input.Search = validators.QueryString(r, "search", maxSearchLength)

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
	if err != nil {
		return input, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 12, 1, pagination.MaxLimit)
	if err != nil {
		return input, err
	}
	input.Page = pagination.PageParams{Page: page, Limit: limit}
	return input, nil
}

func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminCreateProduct handles catalog creation.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, product)
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": id.String()})
	}
}

type productImageRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
	Alt string `json:"alt,omitempty" validate:"omitempty,max=200"`
}

type createProductRequest struct {
	Name        string                `json:"name" validate:"required,max=200"`
	Description string                `json:"description" validate:"max=5000"`
	Category    string                `json:"category" validate:"required"`
	Age         string                `json:"age" validate:"max=50"`
	AgeInDays   int                   `json:"age_in_days" validate:"min=0"`
	Breed       string                `json:"breed" validate:"max=100"`
	WeightKg    *float64              `json:"weight_kg,omitempty" validate:"omitempty,gte=0"`
	PriceCents  int64                 `json:"price_cents" validate:"required,min=1"`
	Quantity    int                   `json:"quantity" validate:"min=0"`
	Images      []productImageRequest `json:"images,omitempty" validate:"omitempty,max=10,dive"`
	Features    []string              `json:"features,omitempty" validate:"omitempty,max=20,dive,required,max=200"`
	IsActive    *bool                 `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	Name        *string                `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    *string                `json:"category,omitempty"`
	Age         *string                `json:"age,omitempty" validate:"omitempty,max=50"`
	AgeInDays   *int                   `json:"age_in_days,omitempty" validate:"omitempty,min=0"`
	Breed       *string                `json:"breed,omitempty" validate:"omitempty,max=100"`
	WeightKg    *float64               `json:"weight_kg,omitempty" validate:"omitempty,gte=0"`
	PriceCents  *int64                 `json:"price_cents,omitempty" validate:"omitempty,min=1"`
	Quantity    *int                   `json:"quantity,omitempty" validate:"omitempty,min=0"`
	Images      *[]productImageRequest `json:"images,omitempty" validate:"omitempty,max=10,dive"`
	Features    *[]string              `json:"features,omitempty" validate:"omitempty,max=20,dive,required,max=200"`
	IsActive    *bool                  `json:"is_active,omitempty"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	return productsvc.CreateProductInput{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Category:    category,
		Age:         strings.TrimSpace(r.Age),
		AgeInDays:   r.AgeInDays,
		Breed:       strings.TrimSpace(r.Breed),
		WeightKg:    r.WeightKg,
		PriceCents:  r.PriceCents,
		Quantity:    r.Quantity,
		Images:      toModelImages(r.Images),
		Features:    trimAll(r.Features),
		IsActive:    r.IsActive,
	}, nil
}

func (r updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:        trimPtr(r.Name),
		Description: trimPtr(r.Description),
		Age:         trimPtr(r.Age),
		AgeInDays:   r.AgeInDays,
		Breed:       trimPtr(r.Breed),
		WeightKg:    r.WeightKg,
		PriceCents:  r.PriceCents,
		Quantity:    r.Quantity,
		IsActive:    r.IsActive,
	}
	if r.Category != nil {
		category, err := enums.ParseProductCategory(strings.TrimSpace(*r.Category))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	if r.Images != nil {
		images := toModelImages(*r.Images)
		input.Images = &images
	}
	if r.Features != nil {
		features := trimAll(*r.Features)
		input.Features = &features
	}
	return input, nil
}

func toModelImages(images []productImageRequest) []models.ProductImage {
	out := make([]models.ProductImage, 0, len(images))
	for _, img := range images {
		out = append(out, models.ProductImage{
			URL: strings.TrimSpace(img.URL),
			Alt: strings.TrimSpace(img.Alt),
		})
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
