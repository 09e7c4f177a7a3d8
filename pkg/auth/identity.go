package auth

import (
	"github.com/google/uuid"

	"github.com/gmchicks/storefront-backend/pkg/enums"
)

// Identity is the resolved principal of a request.
type Identity struct {
	UserID uuid.UUID
	Role   enums.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == enums.RoleAdmin
}

// Identity returns the principal carried by the claims.
func (c *AccessTokenClaims) Identity() Identity {
	return Identity{UserID: c.UserID, Role: c.Role}
}
