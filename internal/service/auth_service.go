package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"safebite/internal/config"
	"safebite/internal/domain"
)

const accessAudience = "access"

// Claims represents the JWT claims. The subject is the owner ID of every
// allergen, candidate and label the caller touches.
type Claims struct {
	jwt.RegisteredClaims
	OwnerID uuid.UUID `json:"owner_id"`
}

// AuthService verifies bearer tokens issued by the identity service. It can
// also mint tokens for local tooling.
type AuthService interface {
	IssueToken(ownerID uuid.UUID) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	cfg *config.JWTConfig
	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.JWTConfig) AuthService {
	return &authService{cfg: cfg, now: time.Now}
}

func (s *authService) IssueToken(ownerID uuid.UUID) (string, time.Time, error) {
	if ownerID == uuid.Nil {
		return "", time.Time{}, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}
	now := s.now()
	ttl := s.cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	expiry := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{accessAudience},
		},
		OwnerID: ownerID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return signed, expiry, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithAudience(accessAudience))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	// Tokens from the identity service may carry only the subject.
	if claims.OwnerID == uuid.Nil {
		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return nil, domain.ErrUnauthorized
		}
		claims.OwnerID = id
	}
	return claims, nil
}
