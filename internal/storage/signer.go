package storage

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a screenshot URL token fails
// verification.
var ErrInvalidToken = errors.New("invalid screenshot token")

// URLSigner mints and verifies short-lived signed URLs for stored
// screenshot blobs.
type URLSigner struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
}

// NewURLSigner creates a signer. baseURL is the externally reachable
// server root.
func NewURLSigner(secret, baseURL string, ttl time.Duration) *URLSigner {
	return &URLSigner{
		secret:  []byte(secret),
		baseURL: baseURL,
		ttl:     ttl,
	}
}

// SignedURL returns the external URL for a blob key, carrying an HS256
// token that binds the key and an expiry.
func (s *URLSigner) SignedURL(key string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   key,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign screenshot URL: %w", err)
	}

	return fmt.Sprintf("%s/screenshots/%s?token=%s", s.baseURL, url.PathEscape(key), token), nil
}

// Verify checks that token authorizes access to the given blob key.
func (s *URLSigner) Verify(key, tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != key {
		return ErrInvalidToken
	}

	return nil
}
