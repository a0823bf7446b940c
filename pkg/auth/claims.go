package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	ShopID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to shop owners.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	ShopID uuid.UUID      `json:"shop_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
