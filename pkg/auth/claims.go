package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	ClientID *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT presented by callers.
// ClientID is set for client accounts and names the client they act for.
type AccessTokenClaims struct {
	UserID   uuid.UUID       `json:"user_id"`
	Role     enums.ActorRole `json:"role"`
	ClientID *uuid.UUID      `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}
