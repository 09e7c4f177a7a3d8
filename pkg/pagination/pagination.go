// Package pagination holds the two listing styles of the API: opaque keyset
// cursors for order and visit history, and page numbers for the catalog.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// Params are cursor pagination inputs.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the keyset position (created_at, id) of the last row served.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type cursorWire struct {
	At time.Time `json:"t"`
	ID uuid.UUID `json:"id"`
}

// PageParams are page-numbered inputs used by the catalog listing.
type PageParams struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and applies the limit bounds.
func (p PageParams) Normalize() PageParams {
	return PageParams{Page: max(p.Page, 1), Limit: NormalizeLimit(p.Limit)}
}

func (p PageParams) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// TotalPages rounds total/limit up.
func TotalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	per := int64(NormalizeLimit(limit))
	return int((total + per - 1) / per)
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer asks for one extra row so the caller can tell whether a
// next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(c Cursor) string {
	raw, _ := json.Marshal(cursorWire{At: c.CreatedAt.UTC(), ID: c.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor decodes a cursor produced by EncodeCursor. Blank input means
// "first page" and yields nil.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var wire cursorWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	if wire.At.IsZero() || wire.ID == uuid.Nil {
		return nil, errors.New("invalid cursor: missing position")
	}
	return &Cursor{CreatedAt: wire.At, ID: wire.ID}, nil
}
