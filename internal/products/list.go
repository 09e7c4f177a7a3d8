package products

import (
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

// ListInput filters the catalog listing.
type ListInput struct {
	Category        *enums.ProductCategory
	Search          string
	Sort            enums.ProductSort
	Page            pagination.PageParams
	IncludeInactive bool
}
