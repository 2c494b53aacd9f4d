// Package jwt valida los bearer tokens que emite el servicio de autenticación.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// leeway tolerancia de reloj entre el emisor y este servicio.
const leeway = 30 * time.Second

var (
	ErrEmptySecret  = errors.New("jwt: secret vacío")
	ErrMissingOwner = errors.New("jwt: claim owner_id ausente")
)

// Identity usuario autenticado tal como lo ve el ledger.
type Identity struct {
	UserID  string
	OwnerID string // tenant: todas las consultas del ledger se filtran por él
	Role    string // "admin" | "bodeguero"
}

// Claims claims registrados más la identidad.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	OwnerID string `json:"owner_id"`
	Role    string `json:"role"`
}

// Generate firma un token HS256 para id con vigencia ttl.
// La emisión real la hace el servicio de autenticación; aquí se usa en tests y herramientas.
func Generate(secret, issuer string, id Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:  id.UserID,
		OwnerID: id.OwnerID,
		Role:    id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma y vigencia y devuelve la identidad. Un token sin owner_id
// no sirve para el ledger: ErrMissingOwner.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, ErrEmptySecret
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("jwt: %w", err)
	}
	if claims.OwnerID == "" {
		return Identity{}, ErrMissingOwner
	}
	return Identity{UserID: claims.UserID, OwnerID: claims.OwnerID, Role: claims.Role}, nil
}
