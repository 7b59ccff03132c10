package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newResolver(t *testing.T, ttl time.Duration) *Resolver {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResolver(Config{
		Secret:     "test-secret",
		CookieName: "ag_token",
		TTL:        ttl,
	}, client)
}

func requestWithCookie(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestIssueResolveRoundTrip(t *testing.T) {
	resolver := newResolver(t, time.Hour)

	cookie, err := resolver.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := resolver.Resolve(context.Background(), requestWithCookie(cookie))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected principal 42, got %d", id)
	}
}

func TestResolveMissingCookie(t *testing.T) {
	resolver := newResolver(t, time.Hour)

	_, err := resolver.Resolve(context.Background(), requestWithCookie(nil))
	if err != ErrNoToken {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestResolveGarbageToken(t *testing.T) {
	resolver := newResolver(t, time.Hour)

	req := requestWithCookie(&http.Cookie{Name: "ag_token", Value: "not.a.token"})
	_, err := resolver.Resolve(context.Background(), req)
	if err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestResolveExpiredToken(t *testing.T) {
	resolver := newResolver(t, -time.Minute)

	cookie, err := resolver.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = resolver.Resolve(context.Background(), requestWithCookie(cookie))
	if err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired credential, got %v", err)
	}
}

func TestResolveDifferentSecret(t *testing.T) {
	issued := NewResolver(Config{Secret: "secret-a", CookieName: "ag_token", TTL: time.Hour}, nil)
	verifying := NewResolver(Config{Secret: "secret-b", CookieName: "ag_token", TTL: time.Hour}, nil)

	cookie, err := issued.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = verifying.Resolve(context.Background(), requestWithCookie(cookie))
	if err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken across secrets, got %v", err)
	}
}

func TestRevokeDenylistsToken(t *testing.T) {
	resolver := newResolver(t, time.Hour)

	cookie, err := resolver.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	cleared, err := resolver.Revoke(context.Background(), requestWithCookie(cookie))
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if cleared.MaxAge != -1 {
		t.Fatalf("expected clearing cookie, got MaxAge=%d", cleared.MaxAge)
	}

	_, err = resolver.Resolve(context.Background(), requestWithCookie(cookie))
	if err != ErrInvalidToken {
		t.Fatalf("expected revoked credential to be invalid, got %v", err)
	}
}

func TestAuthenticated(t *testing.T) {
	resolver := newResolver(t, time.Hour)

	if resolver.Authenticated(context.Background(), requestWithCookie(nil)) {
		t.Fatalf("bare request should not count as authenticated")
	}
	cookie, err := resolver.Issue(1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !resolver.Authenticated(context.Background(), requestWithCookie(cookie)) {
		t.Fatalf("valid credential should count as authenticated")
	}
}
