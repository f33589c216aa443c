package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenExpiry is the duration for which access tokens are valid.
const TokenExpiry = 24 * time.Hour

// ErrTokenInvalid is returned for any token that fails verification:
// malformed structure, signature mismatch, or elapsed expiry.
var ErrTokenInvalid = errors.New("invalid token")

// Claims represents JWT claims. The role is embedded at issuance time;
// privileged routes re-check the stored role rather than trusting this copy.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Valid enforces only expiry. The default registered-claims validation also
// rejects a future issued-at, which would make tokens from a slightly-ahead
// issuer clock fail; that skew is tolerated here.
func (c *Claims) Valid() error {
	if !c.VerifyExpiresAt(time.Now(), true) {
		return jwt.NewValidationError("token is expired", jwt.ValidationErrorExpired)
	}
	return nil
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

// Issue produces a signed token for the user, valid for TokenExpiry.
// No NotBefore claim is set, so modest clock skew between issuer and
// verifier is tolerated.
func (s *JWTService) Issue(userID uint, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a token's signature and expiry and returns its claims.
// All failure modes collapse to ErrTokenInvalid.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
