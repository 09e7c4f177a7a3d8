package enums

import "fmt"

// Role is the platform role carried in the identity token.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

func ParseRole(value string) (Role, error) {
	r := Role(value)
	if r.IsValid() {
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q", value)
}
