// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
)

// sessionClaims is the payload of a session token.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	return newJWTService(cfg.SecretKey.Session, cfg.Auth.SessionTTL)
}

func newJWTService(secret string, ttl time.Duration) (*jwtService, error) {
	if secret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if ttl <= 0 {
		return nil, errors.Errorf("session ttl must be positive, got %s", ttl)
	}

	return &jwtService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs an HS256 token carrying the subject and role.
func (s *jwtService) Issue(userID uuid.UUID, role entity.Role) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}

	return signed, nil
}

// Verify checks signature, algorithm and expiry, then decodes the identity.
func (s *jwtService) Verify(tokenString string) (service.Identity, error) {
	if tokenString == "" {
		return service.Identity{}, service.ErrInvalidToken
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return service.Identity{}, service.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return service.Identity{}, service.ErrInvalidToken
	}

	role, ok := entity.ParseRole(claims.Role)
	if !ok {
		return service.Identity{}, service.ErrInvalidToken
	}

	return service.Identity{UserID: userID, Role: role}, nil
}

// TTL returns the configured session lifetime.
func (s *jwtService) TTL() time.Duration {
	return s.ttl
}
