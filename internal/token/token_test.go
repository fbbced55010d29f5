package token

import (
	"errors"
	"testing"
	"time"

	"github.com/chatline/authd/internal/common"
)

const (
	testAccessTTL  = 15 * time.Minute
	testRefreshTTL = 7 * 24 * time.Hour
)

func newTestIssuer(secret string, now func() time.Time) *Issuer {
	return NewIssuer([]byte(secret), testAccessTTL, testRefreshTTL, now)
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	i := newTestIssuer("super-secret", nil)

	tok, err := i.IssueAccessToken("user-123", "a@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := i.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, "user-123")
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email mismatch: got %q want %q", claims.Email, "a@x.com")
	}
	if claims.Kind != KindAccess {
		t.Fatalf("kind mismatch: got %q want %q", claims.Kind, KindAccess)
	}
}

func TestIssue_Lifetimes(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	i := newTestIssuer("k", func() time.Time { return issuedAt })

	access, err := i.IssueAccessToken("u1", "u1@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	refresh, err := i.IssueRefreshToken("u1", "u1@x.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	ac := i.Decode(access)
	if got := ac.ExpiresAt.Time; !got.Equal(issuedAt.Add(testAccessTTL)) {
		t.Fatalf("access expiry: got %v want %v", got, issuedAt.Add(testAccessTTL))
	}
	rc := i.Decode(refresh)
	if got := rc.ExpiresAt.Time; !got.Equal(issuedAt.Add(testRefreshTTL)) {
		t.Fatalf("refresh expiry: got %v want %v", got, issuedAt.Add(testRefreshTTL))
	}
	if rc.Kind != KindRefresh {
		t.Fatalf("refresh kind: got %q", rc.Kind)
	}
}

func TestIssue_TokensUniquePerIssuance(t *testing.T) {
	t.Parallel()

	// Frozen clock: without the jti, two tokens for the same subject in the
	// same second would be byte-identical.
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	i := newTestIssuer("k", func() time.Time { return clock })

	t1, err := i.IssueRefreshToken("u1", "u1@x.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	t2, err := i.IssueRefreshToken("u1", "u1@x.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	if t1 == t2 {
		t.Fatalf("two separately issued tokens are identical")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer("k", func() time.Time { return clock })

	tok, err := issuer.IssueAccessToken("u1", "u1@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	// Same secret, clock past the access expiry.
	later := newTestIssuer("k", func() time.Time { return clock.Add(testAccessTTL + time.Second) })
	if _, err := later.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestIssuer("right-secret", nil).IssueAccessToken("u2", "u2@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	if _, err := newTestIssuer("wrong-secret", nil).Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	i := newTestIssuer("k", nil)
	for _, tok := range []string{"", "not.a.jwt", "a.b"} {
		if _, err := i.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tok, err)
		}
	}
}

func TestDecode_SkipsVerification(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer("k", func() time.Time { return clock })

	tok, err := issuer.IssueRefreshToken("u3", "u3@x.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	// Decode works with the wrong secret and long past expiry.
	other := newTestIssuer("different", func() time.Time { return clock.Add(30 * 24 * time.Hour) })
	claims := other.Decode(tok)
	if claims == nil {
		t.Fatalf("Decode returned nil for a well-formed token")
	}
	if claims.Subject != "u3" || claims.Email != "u3@x.com" {
		t.Fatalf("decoded claims mismatch: %+v", claims)
	}
}

func TestDecode_MalformedReturnsNil(t *testing.T) {
	t.Parallel()

	i := newTestIssuer("k", nil)
	for _, tok := range []string{"", "garbage", "x.y"} {
		if claims := i.Decode(tok); claims != nil {
			t.Fatalf("Decode(%q) = %+v, want nil", tok, claims)
		}
	}
}
