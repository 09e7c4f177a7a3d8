package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gmchicks/storefront-backend/internal/products"
	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/money"
)

// Catalog resolves product snapshots for cart lines.
type Catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// ItemView is a display-ready cart line.
type ItemView struct {
	Product        products.ProductDTO `json:"product"`
	Quantity       int                `json:"quantity"`
	LineTotal      decimal.Decimal    `json:"line_total"`
	LineTotalCents int64              `json:"line_total_cents"`
	Available      bool               `json:"available"`
}

// View is the materialized cart returned to clients.
type View struct {
	Kind          Kind            `json:"kind"`
	Items         []ItemView      `json:"items"`
	ItemCount     int             `json:"item_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	SubtotalCents int64           `json:"subtotal_cents"`
	Currency      string          `json:"currency"`
	Dropped       []uuid.UUID     `json:"dropped,omitempty"`
}

// Materialize resolves every line against the catalog. Lines whose product no
// longer exists are left out of the view and reported in Dropped so the
// caller can persist the cleaned cart.
func Materialize(ctx context.Context, catalog Catalog, c Any) (*View, error) {
	lines := c.Lines()
	view := &View{Kind: c.Kind(), Items: make([]ItemView, 0, len(lines)), Currency: money.Currency}
	if len(lines) == 0 {
		view.Subtotal = decimal.Zero
		return view, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	rows, err := catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Product, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	for _, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok {
			view.Dropped = append(view.Dropped, line.ProductID)
			continue
		}
		lineTotal := p.PriceCents * int64(line.Quantity)
		view.Items = append(view.Items, ItemView{
			Product:        products.NewProductDTO(p),
			Quantity:       line.Quantity,
			LineTotal:      money.FromCents(lineTotal),
			LineTotalCents: lineTotal,
			Available:      p.IsActive && p.Quantity >= line.Quantity,
		})
		view.ItemCount += line.Quantity
		view.SubtotalCents += lineTotal
	}
	view.Subtotal = money.FromCents(view.SubtotalCents)
	return view, nil
}
