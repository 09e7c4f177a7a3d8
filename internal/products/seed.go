package products

import (
	"context"
	"fmt"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

func kg(v float64) *float64 { return &v }

// StarterCatalog is loaded by `migrate -cmd=seed` on an empty database.
var StarterCatalog = []CreateProductInput{
	{
		Name:        "Day-Old Chicks (0-3 days)",
		Description: "Healthy day-old chicks, vaccinated at hatchery. Perfect for starting your poultry farm.",
		Category:    enums.ProductCategoryChick,
		Age:         "0-3 days",
		AgeInDays:   1,
		Breed:       "Kenbro",
		PriceCents:  10000,
		Quantity:    500,
		Images:      []models.ProductImage{{URL: "https://images.unsplash.com/photo-1548550023-2bdb3c5beed7?w=400", Alt: "Day old chicks"}},
		Features:    []string{"Vaccinated against Marek's Disease", "Healthy and active", "High survival rate", "Ready to raise"},
	},
	{
		Name:        "1 Week Old Chicks",
		Description: "One week old chicks, already eating well and growing strong.",
		Category:    enums.ProductCategoryChick,
		Age:         "1 week",
		AgeInDays:   7,
		Breed:       "Kenbro",
		PriceCents:  13000,
		Quantity:    400,
		Images:      []models.ProductImage{{URL: "https://images.unsplash.com/photo-1563281577-a7be47e20db9?w=400", Alt: "1 week chicks"}},
		Features:    []string{"Received Newcastle vaccine", "Eating solid feed", "Very active", "Guaranteed health"},
	},
	{
		Name:        "2 Weeks Old Chicks",
		Description: "Two weeks old chicks with completed first round of vaccinations.",
		Category:    enums.ProductCategoryChick,
		Age:         "2 weeks",
		AgeInDays:   14,
		Breed:       "Rainbow Rooster",
		PriceCents:  16000,
		Quantity:    350,
		Images:      []models.ProductImage{{URL: "https://images.unsplash.com/photo-1612170153139-6f881ff067e0?w=400", Alt: "2 week chicks"}},
		Features:    []string{"First Gumboro vaccine done", "Strong and healthy", "Growing rapidly", "Low mortality rate"},
	},
	{
		Name:        "3 Weeks Old Chicks",
		Description: "Three weeks old chicks, well-developed and hardy.",
		Category:    enums.ProductCategoryChick,
		Age:         "3 weeks",
		AgeInDays:   21,
		Breed:       "Kienyeji Improved",
		PriceCents:  20000,
		Quantity:    300,
		Images:      []models.ProductImage{{URL: "https://images.unsplash.com/photo-1563281577-a7be47e20db9?w=400", Alt: "3 week chicks"}},
		Features:    []string{"Multiple vaccinations completed", "Fully feathered", "Disease resistant", "Ready for outdoor coops"},
	},
	{
		Name:        "4 Weeks Old Chicks",
		Description: "One month old chicks, ready to transition to grower feed.",
		Category:    enums.ProductCategoryChick,
		Age:         "4 weeks",
		AgeInDays:   28,
		Breed:       "Kenbro",
		PriceCents:  25000,
		Quantity:    250,
		Images:      []models.ProductImage{{URL: "https://images.unsplash.com/photo-1548550023-2bdb3c5beed7?w=400", Alt: "4 week chicks"}},
		Features:    []string{"Ready for grower feed", "Fully vaccinated for age", "Strong immune system", "Minimal care needed"},
	},
	{
		Name:        "Point of Lay Pullets (16-18 weeks)",
		Description: "Ready to start laying eggs. High-quality layer pullets about to reach maturity.",
		Category:    enums.ProductCategoryLayer,
		Age:         "16-18 weeks",
		AgeInDays:   119,
		Breed:       "Bovans Brown",
		WeightKg:    kg(1.4),
		PriceCents:  80000,
		Quantity:    150,
		Images:      []models.ProductImage{{URL: "https://images.unsplash.com/photo-1596510915350-a25abf8f4f67?w=400", Alt: "Layer pullets"}},
		Features:    []string{"About to start laying", "Fully vaccinated", "High egg production breed", "Disease resistant", "Peak production for 1 year"},
	},
	{
		Name:        "Active Layer Hens (20+ weeks)",
		Description: "Mature laying hens in peak production. Producing quality eggs daily.",
		Category:    enums.ProductCategoryLayer,
		Age:         "20+ weeks",
		AgeInDays:   140,
		Breed:       "ISA Brown",
		WeightKg:    kg(1.65),
		PriceCents:  95000,
		Quantity:    100,
		Images:      []models.ProductImage{{URL: "https://images.unsplash.com/photo-1612169676339-0678e8247540?w=400", Alt: "Layer hens"}},
		Features:    []string{"Currently laying eggs", "280-300 eggs per year", "Excellent egg quality", "Fully vaccinated", "Healthy and productive"},
	},
	{
		Name:        "Ready-to-Harvest Broilers (6 weeks)",
		Description: "Market-ready broilers at optimal weight for meat production.",
		Category:    enums.ProductCategoryBroiler,
		Age:         "6 weeks",
		AgeInDays:   42,
		Breed:       "Cobb 500",
		WeightKg:    kg(2.25),
		PriceCents:  70000,
		Quantity:    200,
		Images:      []models.ProductImage{{URL: "https://images.unsplash.com/photo-1548550023-2bdb3c5beed7?w=400", Alt: "Broiler chickens"}},
		Features:    []string{"Ready for market", "Optimal meat-to-bone ratio", "Fed premium feed", "Disease-free", "Quick turnaround"},
	},
	{
		Name:        "Premium Broilers (8 weeks)",
		Description: "Extra-large broilers for premium market. Excellent meat quality.",
		Category:    enums.ProductCategoryBroiler,
		Age:         "8 weeks",
		AgeInDays:   56,
		Breed:       "Ross 308",
		WeightKg:    kg(3.0),
		PriceCents:  90000,
		Quantity:    150,
		Images:      []models.ProductImage{{URL: "https://images.unsplash.com/photo-1612170153139-6f881ff067e0?w=400", Alt: "Premium broilers"}},
		Features:    []string{"Premium size", "Excellent meat quality", "Tender and juicy", "Fed organic supplements", "High-end market ready"},
	},
}

// Seed creates the starter catalog when no product exists yet. It returns the
// number of products created, zero when the catalog was already populated.
func Seed(ctx context.Context, svc Service, catalog []CreateProductInput) (int, error) {
	existing, err := svc.ListProducts(ctx, ListInput{
		Sort:            enums.ProductSortNewest,
		Page:            pagination.PageParams{Page: 1, Limit: 1},
		IncludeInactive: true,
	})
	if err != nil {
		return 0, err
	}
	if existing.Total > 0 {
		return 0, nil
	}
	for i, input := range catalog {
		if _, err := svc.CreateProduct(ctx, input); err != nil {
			return i, fmt.Errorf("seed %q: %w", input.Name, err)
		}
	}
	return len(catalog), nil
}
