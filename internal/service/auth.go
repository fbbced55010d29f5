// Package service contains the authentication business logic: credential
// verification, token issuance, refresh rotation, and revocation.
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chatline/authd/internal/common"
	"github.com/chatline/authd/internal/models"
	"github.com/chatline/authd/internal/password"
	"github.com/chatline/authd/internal/repositories/users"
	"github.com/chatline/authd/internal/revocation"
	"github.com/chatline/authd/internal/token"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Auth orchestrates the credential store, the password hasher, the token
// issuer, and the revocation store. It holds no mutable state of its own, so
// all operations are safe for unbounded concurrent callers.
type Auth struct {
	users       users.Repository
	revocations revocation.Store
	issuer      *token.Issuer
	hasher      *password.Hasher
}

func NewAuth(users users.Repository, revocations revocation.Store, issuer *token.Issuer, hasher *password.Hasher) *Auth {
	return &Auth{
		users:       users,
		revocations: revocations,
		issuer:      issuer,
		hasher:      hasher,
	}
}

// Register creates a new identity and returns its first token pair.
//
// Only the email is pre-checked for duplicates; a username collision is
// caught by the store's uniqueness constraint and reported as the same
// ErrDuplicateIdentity, without revealing which attribute collided.
func (s *Auth) Register(ctx context.Context, email, username, displayName, plaintext string) (*TokenPair, error) {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrDuplicateIdentity
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: digest,
	})
	if err != nil {
		return nil, err
	}

	return s.issuePair(user.ID, user.Email)
}

// Login verifies the email/password pair and returns a fresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Auth) Login(ctx context.Context, email, plaintext string) (*TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(user.PasswordHash, plaintext) {
		return nil, common.ErrInvalidCredentials
	}

	return s.issuePair(user.ID, user.Email)
}

// Refresh exchanges a refresh token for a new pair. Refresh tokens are
// single-use: the presented token is revoked atomically before the new pair
// is issued, so of N concurrent calls with the same token exactly one wins.
func (s *Auth) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.issuer.Verify(refreshToken)
	if err != nil {
		return nil, common.ErrInvalidRefreshToken
	}

	ok, err := s.revocations.TryRevoke(ctx, refreshToken, claims.ExpiresAt.Time)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrTokenRevoked
	}

	return s.issuePair(claims.Subject, claims.Email)
}

// Logout revokes both tokens until their original expiry, best effort.
// Tokens that fail to decode (including expired-but-well-formed ones, which
// decode fine) are skipped silently; logout is cleanup, not an authorization
// check. Store failures do propagate.
func (s *Auth) Logout(ctx context.Context, accessToken, refreshToken string) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, tok := range []string{accessToken, refreshToken} {
		tok := tok
		claims := s.issuer.Decode(tok)
		if claims == nil || claims.ExpiresAt == nil {
			continue
		}
		g.Go(func() error {
			return s.revocations.Revoke(ctx, tok, claims.ExpiresAt.Time)
		})
	}

	return g.Wait()
}

// Authenticate validates a bearer access token: signature, expiry, kind, and
// the revocation list. It returns the verified claims for the request context.
func (s *Auth) Authenticate(ctx context.Context, accessToken string) (*token.Claims, error) {
	claims, err := s.issuer.Verify(accessToken)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if claims.Kind != token.KindAccess {
		return nil, common.ErrInvalidToken
	}

	revoked, err := s.revocations.IsRevoked(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}

	return claims, nil
}

// User returns the identity behind a verified subject id.
func (s *Auth) User(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// issuePair mints the access and refresh tokens. Neither depends on the
// other's output, so they are signed concurrently.
func (s *Auth) issuePair(userID, email string) (*TokenPair, error) {
	var pair TokenPair

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		pair.AccessToken, err = s.issuer.IssueAccessToken(userID, email)
		return err
	})
	g.Go(func() error {
		var err error
		pair.RefreshToken, err = s.issuer.IssueRefreshToken(userID, email)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, common.ErrorInternal
	}

	return &pair, nil
}
