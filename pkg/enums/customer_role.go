package enums

import "fmt"

// CustomerRole separates storefront shoppers from back-office staff.
type CustomerRole string

const (
	CustomerRoleShopper CustomerRole = "shopper"
	CustomerRoleAdmin   CustomerRole = "admin"
)

var validCustomerRoles = []CustomerRole{
	CustomerRoleShopper,
	CustomerRoleAdmin,
}

// String implements fmt.Stringer.
func (r CustomerRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CustomerRole.
func (r CustomerRole) IsValid() bool {
	for _, candidate := range validCustomerRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseCustomerRole converts raw input into a CustomerRole.
func ParseCustomerRole(value string) (CustomerRole, error) {
	for _, candidate := range validCustomerRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid customer role %q", value)
}
