package enums

import "fmt"

// ProductCategory groups the birds sold by the farm.
type ProductCategory string

const (
	ProductCategoryChick   ProductCategory = "chick"
	ProductCategoryLayer   ProductCategory = "layer"
	ProductCategoryBroiler ProductCategory = "broiler"
)

var validProductCategories = []ProductCategory{
	ProductCategoryChick,
	ProductCategoryLayer,
	ProductCategoryBroiler,
}

func (c ProductCategory) String() string {
	return string(c)
}

func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ChickType selects a vaccination programme.
type ChickType string

const (
	ChickTypeLayer   ChickType = "layer"
	ChickTypeBroiler ChickType = "broiler"
)

func ParseChickType(value string) (ChickType, error) {
	switch ChickType(value) {
	case ChickTypeLayer, ChickTypeBroiler:
		return ChickType(value), nil
	}
	return "", fmt.Errorf("invalid chick type %q", value)
}

// ProductSort is the ordering applied to catalog listings.
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortPopular   ProductSort = "popular"
)

// ParseProductSort defaults to newest for empty input.
func ParseProductSort(value string) (ProductSort, error) {
	switch ProductSort(value) {
	case "":
		return ProductSortNewest, nil
	case ProductSortNewest, ProductSortPriceAsc, ProductSortPriceDesc, ProductSortPopular:
		return ProductSort(value), nil
	}
	return "", fmt.Errorf("invalid sort %q", value)
}
