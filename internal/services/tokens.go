package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSigner issues and verifies the HS256 session tokens carried in the
// Authorization header or the jwt cookie.
type TokenSigner struct {
	Secret []byte
	TTL    time.Duration
}

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (t *TokenSigner) Sign(userID string, now time.Time) (string, error) {
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

// Parse returns the user id and issue instant of a valid token.
func (t *TokenSigner) Parse(token string) (string, time.Time, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", time.Time{}, domain.Unauthorized("invalid token, please log in again")
	}
	issued := time.Time{}
	if claims.IssuedAt != nil {
		issued = claims.IssuedAt.Time
	}
	return claims.UserID, issued, nil
}

// newOneTimeToken mints a high-entropy token. The raw value goes out-of-band
// (email); only the hash is ever persisted.
func newOneTimeToken() (raw, hash string) {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	raw = hex.EncodeToString(b)
	return raw, hashToken(raw)
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
