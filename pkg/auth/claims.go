package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
)

// SessionTokenPayload captures the data available when minting a session JWT.
type SessionTokenPayload struct {
	CustomerID uuid.UUID
	Role       enums.CustomerRole
	JTI        string
}

// SessionTokenClaims represents the typed JWT stored in the session cookie.
type SessionTokenClaims struct {
	CustomerID uuid.UUID          `json:"customer_id"`
	Role       enums.CustomerRole `json:"role"`
	jwt.RegisteredClaims
}
