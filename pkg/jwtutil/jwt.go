package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"
	"github.com/juju/errors"
)

// Roles carried in the role claim
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleOwner    = "owner"
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey string
	Issuer     string
}

// Claims identifies the caller. Tokens are issued by an external identity
// provider; this service only verifies them.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *JWTConfig
	clock  clock.Clock
}

// NewJWTUtil creates a new JWT utility with the given configuration.
// A nil clock means the wall clock.
func NewJWTUtil(config *JWTConfig, clk clock.Clock) *JWTUtil {
	if clk == nil {
		clk = clock.WallClock
	}
	return &JWTUtil{
		config: config,
		clock:  clk,
	}
}

// GenerateToken signs a token for userID with role, valid for ttl
func (j *JWTUtil) GenerateToken(userID, role string, ttl time.Duration) (string, error) {
	if j.config == nil {
		return "", errors.NotValidf("nil JWT configuration")
	}

	now := j.clock.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    j.config.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.config.SigningKey))
	return signed, errors.Trace(err)
}

// ValidateToken validates and parses the JWT token
func (j *JWTUtil) ValidateToken(tokenString string) (*Claims, error) {
	if j.config == nil {
		return nil, errors.NotValidf("nil JWT configuration")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if j.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(j.config.SigningKey), nil
		},
		opts...,
	)
	if err != nil {
		return nil, errors.Annotate(errors.Unauthorized, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.Unauthorizedf("invalid token")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	switch claims.Role {
	case RoleCustomer, RoleStaff, RoleOwner:
	default:
		return nil, errors.Unauthorizedf("unknown role %q", claims.Role)
	}
	return claims, nil
}
