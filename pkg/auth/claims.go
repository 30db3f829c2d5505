package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	SubjectID int64
	Email     string
	Role      enums.ActorRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. SubjectID is
// the usuarios or administradores primary key depending on Role.
type AccessTokenClaims struct {
	SubjectID int64           `json:"subject_id"`
	Email     string          `json:"email"`
	Role      enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
