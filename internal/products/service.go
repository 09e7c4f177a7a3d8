package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

// Service exposes the public catalog and admin product management.
type Service interface {
	ListProducts(ctx context.Context, input ListInput) (*ProductListResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Category    enums.ProductCategory
	Age         string
	AgeInDays   int
	Breed       string
	WeightKg    *float64
	PriceCents  int64
	Quantity    int
	Images      []models.ProductImage
	Features    []string
	IsActive    *bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *enums.ProductCategory
	Age         *string
	AgeInDays   *int
	Breed       *string
	WeightKg    *float64
	PriceCents  *int64
	Quantity    *int
	Images      *[]models.ProductImage
	Features    *[]string
	IsActive    *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListInput) (*ProductListResult, error) {
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	input.Page = input.Page.Normalize()
	rows, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "list products")
	}
	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, NewProductDTO(&rows[i]))
	}
	return &ProductListResult{
		Products:   items,
		Page:       input.Page.Page,
		Limit:      input.Page.Limit,
		Total:      total,
		TotalPages: pagination.TotalPages(total, input.Page.Limit),
	}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Age:         input.Age,
		AgeInDays:   input.AgeInDays,
		Breed:       input.Breed,
		WeightKg:    input.WeightKg,
		PriceCents:  input.PriceCents,
		Quantity:    input.Quantity,
		Images:      input.Images,
		Features:    input.Features,
		IsActive:    active,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Unavailable(err, "create product")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		product.Category = *input.Category
	}
	if input.Age != nil {
		product.Age = *input.Age
	}
	if input.AgeInDays != nil {
		product.AgeInDays = *input.AgeInDays
	}
	if input.Breed != nil {
		product.Breed = *input.Breed
	}
	if input.WeightKg != nil {
		product.WeightKg = input.WeightKg
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		product.Quantity = *input.Quantity
	}
	if input.Images != nil {
		product.Images = *input.Images
	}
	if input.Features != nil {
		product.Features = *input.Features
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Unavailable(err, "update product")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Unavailable(err, "delete product")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Unavailable(err, "load product")
	}
	return product, nil
}
