package cart

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
)

// Line is one product/quantity pair. A cart holds at most one line per product.
type Line struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// Kind tags which variant a cart is.
type Kind string

const (
	KindGuest     Kind = "guest"
	KindPersisted Kind = "persisted"
)

// Any is satisfied only by GuestCart and PersistedCart.
type Any interface {
	Kind() Kind
	Lines() []Line
	sealed()
}

// Cart is the set of lines shared by both variants.
type Cart struct {
	lines []Line
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Quantity returns the line quantity for productID, or 0 when absent.
func (c Cart) Quantity(productID uuid.UUID) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c Cart) Len() int { return len(c.lines) }

// SetLine replaces the quantity of an existing line or appends a new one.
func (c *Cart) SetLine(productID uuid.UUID, quantity int) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"product_id": productID, "quantity": quantity})
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = quantity
		return nil
	}
	c.lines = append(c.lines, Line{ProductID: productID, Quantity: quantity})
	return nil
}

// IncrementLine adds delta to the current quantity. Repeating it repeats the
// increase.
func (c *Cart) IncrementLine(productID uuid.UUID, delta int) error {
	if delta < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"product_id": productID, "quantity": delta})
	}
	return c.SetLine(productID, c.Quantity(productID)+delta)
}

// RemoveLine drops the line for productID and reports whether one existed.
func (c *Cart) RemoveLine(productID uuid.UUID) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c Cart) index(productID uuid.UUID) int {
	for i, line := range c.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// GuestCart is held by an anonymous client and only reaches the server at
// login, as the input of Reconcile.
type GuestCart struct {
	Cart
}

// NewGuestCart validates client supplied lines. Duplicate product ids are
// rejected rather than silently collapsed.
func NewGuestCart(lines []Line) (GuestCart, error) {
	var g GuestCart
	for _, line := range lines {
		if g.index(line.ProductID) >= 0 {
			return GuestCart{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate product %s in cart", line.ProductID))
		}
		if err := g.SetLine(line.ProductID, line.Quantity); err != nil {
			return GuestCart{}, err
		}
	}
	return g, nil
}

func (GuestCart) Kind() Kind { return KindGuest }
func (GuestCart) sealed()    {}

// PersistedCart belongs to an authenticated user. Version is the optimistic
// concurrency token of the stored row; zero means no row exists yet.
type PersistedCart struct {
	Cart
	UserID  uuid.UUID
	Version int64
}

func NewPersistedCart(userID uuid.UUID, version int64, lines []Line) PersistedCart {
	p := PersistedCart{UserID: userID, Version: version}
	for _, line := range lines {
		if line.Quantity < 1 || line.ProductID == uuid.Nil {
			continue
		}
		_ = p.SetLine(line.ProductID, line.Quantity)
	}
	return p
}

func (PersistedCart) Kind() Kind { return KindPersisted }
func (PersistedCart) sealed()    {}

// Reconcile folds a guest cart into the user's persisted cart. A guest line
// overwrites the persisted quantity for the same product; persisted-only
// lines are kept. Owner and version are those of persisted, so saving the
// result is a compare-and-swap against the loaded row.
func Reconcile(guest GuestCart, persisted PersistedCart) PersistedCart {
	merged := PersistedCart{
		Cart:    Cart{lines: persisted.Lines()},
		UserID:  persisted.UserID,
		Version: persisted.Version,
	}
	for _, line := range guest.lines {
		_ = merged.SetLine(line.ProductID, line.Quantity)
	}
	return merged
}
