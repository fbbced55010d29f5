// Package token mints and verifies the signed access and refresh tokens.
// It is deliberately stateless: revocation is checked by the auth service,
// not here.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chatline/authd/internal/common"
)

// Kind distinguishes the two token flavors carried in the "kind" claim.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the signed payload: the user id travels in the registered
// Subject claim, the email and kind in custom claims.
type Claims struct {
	Email string `json:"email"`
	Kind  Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// Issuer signs tokens with a single shared HS256 secret fixed at
// construction. Rotating the secret means constructing a new Issuer, which
// invalidates everything outstanding.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer builds an Issuer. now may be nil, in which case time.Now is
// used; tests inject their own clock for expiry math.
func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: now}
}

func (i *Issuer) IssueAccessToken(userID, email string) (string, error) {
	return i.issue(userID, email, KindAccess, i.accessTTL)
}

func (i *Issuer) IssueRefreshToken(userID, email string) (string, error) {
	return i.issue(userID, email, KindRefresh, i.refreshTTL)
}

func (i *Issuer) issue(userID, email string, kind Kind, ttl time.Duration) (string, error) {
	now := i.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti makes every token unique per issuance, even for the
			// same subject within the same second. Revocation keys on the
			// raw token string depend on this.
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the claims. Any failure
// (malformed input, wrong signature, expired token) comes back as
// common.ErrInvalidToken.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !t.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Decode extracts claims without checking signature or expiry. It exists for
// the logout path, which needs the original expiry of tokens it cannot (or
// need not) verify. Returns nil on structurally malformed input.
func (i *Issuer) Decode(tokenString string) *Claims {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}
