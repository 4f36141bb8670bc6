// Package auth issues and validates the operator tokens that guard the
// admin endpoints.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenExpiry is the lifetime of an admin token when none is given.
const DefaultTokenExpiry = 12 * time.Hour

// RoleAdmin is the only role the API recognises.
const RoleAdmin = "admin"

// Predefined JWT errors.
var (
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token has expired")
	ErrNotAdmin     = errors.New("token does not carry the admin role")
	ErrNoSigningKey = errors.New("no signing key configured")
)

// Claims are the claims in an admin token.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

// JWTConfig holds configuration for the JWT service.
type JWTConfig struct {
	// SigningKey is the HS256 secret.
	SigningKey string

	// Issuer is the issuer claim, e.g. "mobileid-portal".
	Issuer string

	// Audience is the audience claim, e.g. "mobileid-admin".
	Audience string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg JWTConfig) *JWTService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &JWTService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		now:        cfg.Now,
	}
}

// Enabled reports whether a signing key is configured.
func (s *JWTService) Enabled() bool {
	return len(s.signingKey) > 0
}

// GenerateAdminToken signs an admin token for subject valid for ttl.
func (s *JWTService) GenerateAdminToken(subject string, ttl time.Duration) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrNoSigningKey
	}
	if ttl <= 0 {
		ttl = DefaultTokenExpiry
	}

	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateTokenID(),
		},
		Role: RoleAdmin,
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing admin token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateAdminToken validates tokenString and checks the admin role.
func (s *JWTService) ValidateAdminToken(tokenString string) (*Claims, error) {
	if !s.Enabled() {
		return nil, ErrNoSigningKey
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, ErrNotAdmin
	}

	return claims, nil
}

func generateTokenID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
