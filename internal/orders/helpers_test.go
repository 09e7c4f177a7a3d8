package orders

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/internal/products"
	"github.com/gmchicks/storefront-backend/pkg/auth"
	"github.com/gmchicks/storefront-backend/pkg/db/dbtest"
	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/logger"
	"github.com/gmchicks/storefront-backend/pkg/outbox"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type stubVisits struct{ pending int64 }

func (s stubVisits) CountPending(context.Context) (int64, error) { return s.pending, nil }

type fixture struct {
	svc       *service
	conn      *gorm.DB
	inventory Inventory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	f := &fixture{conn: conn, inventory: NewInventory()}
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Tx:        client,
		Inventory: &inventoryProxy{f: f},
		Outbox:    outbox.NewService(outbox.NewRepository(conn), logg),
		Catalog:   products.NewRepository(conn),
		Visits:    stubVisits{pending: 2},
		Logger:    logg,
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc.(*service)
	return f
}

// inventoryProxy lets tests swap the inventory after construction.
type inventoryProxy struct{ f *fixture }

func (p *inventoryProxy) Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]models.Product, error) {
	return p.f.inventory.Snapshot(ctx, tx, ids)
}

func (p *inventoryProxy) Decrement(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	return p.f.inventory.Decrement(ctx, tx, id, qty)
}

func (p *inventoryProxy) Restock(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	return p.f.inventory.Restock(ctx, tx, id, qty)
}

// staleInventory reports inflated stock so placement reaches the conditional
// decrement, as it would when another checkout commits between read and write.
type staleInventory struct {
	Inventory
	inflate map[uuid.UUID]int
}

func (s staleInventory) Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]models.Product, error) {
	rows, err := s.Inventory.Snapshot(ctx, tx, ids)
	for i := range rows {
		rows[i].Quantity += s.inflate[rows[i].ID]
	}
	return rows, err
}

func placeInput(userID uuid.UUID, lines ...LineInput) PlaceOrderInput {
	return PlaceOrderInput{
		UserID: userID,
		Lines:  lines,
		DeliveryAddress: models.DeliveryAddress{
			Street: "Kenyatta Avenue 12",
			City:   "Nairobi",
			County: "Nairobi",
		},
		Notes: "leave at gate",
	}
}

func admin() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := conn.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func decodeJSON(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}
