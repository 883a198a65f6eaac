package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is what a store token asserts about its bearer
type TokenClaims struct {
	BusinessID uuid.UUID
	Subject    string
	ExpiresAt  time.Time
}

// JWTService mints and verifies the HS256 tokens the chat runtime presents
// to the store API. Every token is scoped to exactly one business.
type JWTService struct {
	secretKey     string
	tokenDuration time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey string, tokenDuration time.Duration) *JWTService {
	if tokenDuration <= 0 {
		tokenDuration = 5 * time.Minute
	}
	return &JWTService{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
	}
}

// Enabled reports whether a signing secret is configured
func (s *JWTService) Enabled() bool {
	return s != nil && s.secretKey != ""
}

// TokenDuration is the lifetime of minted tokens
func (s *JWTService) TokenDuration() time.Duration {
	return s.tokenDuration
}

// GenerateToken mints a token for one business
func (s *JWTService) GenerateToken(businessID uuid.UUID, subject string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenDuration)

	jwtClaims := jwt.MapClaims{
		"business_id": businessID.String(),
		"sub":         subject,
		"exp":         expiresAt.Unix(),
		"iat":         now.Unix(),
		"nbf":         now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	tokenString, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	rawBusiness, _ := claims["business_id"].(string)
	businessID, err := uuid.Parse(rawBusiness)
	if err != nil {
		return nil, fmt.Errorf("invalid business_id in token")
	}
	subject, _ := claims["sub"].(string)

	result := &TokenClaims{
		BusinessID: businessID,
		Subject:    subject,
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}
	return result, nil
}
