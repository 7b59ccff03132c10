// Package token resolves signed credentials to principal identifiers.
// The rest of the service treats it as opaque: issue a credential for an
// account id, resolve a request back to an account id, revoke on logout.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNoToken indicates the request carries no credential cookie.
	ErrNoToken = errors.New("token: credential missing")
	// ErrInvalidToken indicates the credential failed verification.
	ErrInvalidToken = errors.New("token: credential invalid")
)

var validMethods = []string{jwt.SigningMethodHS256.Alg()}

// Config carries signing material and cookie parameters. It is passed in at
// construction; nothing here is read from process-wide state.
type Config struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Resolver issues and verifies signed credential cookies. Revoked token ids
// are held in Redis until their natural expiry.
type Resolver struct {
	cfg    Config
	secret []byte
	redis  *redis.Client
}

// NewResolver constructs a Resolver. redis may be nil, in which case logout
// revocation degrades to cookie clearing only.
func NewResolver(cfg Config, client *redis.Client) *Resolver {
	return &Resolver{cfg: cfg, secret: []byte(cfg.Secret), redis: client}
}

// Issue signs a credential for the given account id and returns the cookie
// to set on the response.
func (r *Resolver) Issue(accountID int64) (*http.Cookie, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(accountID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(r.cfg.TTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return nil, fmt.Errorf("token: sign: %w", err)
	}
	return &http.Cookie{
		Name:     r.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  now.Add(r.cfg.TTL),
	}, nil
}

// Resolve verifies the request credential and returns the principal id.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (int64, error) {
	cookie, err := req.Cookie(r.cfg.CookieName)
	if err != nil {
		return 0, ErrNoToken
	}
	claims, err := r.parse(cookie.Value)
	if err != nil {
		return 0, err
	}
	if r.revoked(ctx, claims.ID) {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Authenticated reports whether the request already carries a valid,
// unrevoked credential. Used to refuse registration while logged in.
func (r *Resolver) Authenticated(ctx context.Context, req *http.Request) bool {
	_, err := r.Resolve(ctx, req)
	return err == nil
}

// Revoke denylists the request's credential until it would have expired and
// returns the expired cookie to clear it client-side.
func (r *Resolver) Revoke(ctx context.Context, req *http.Request) (*http.Cookie, error) {
	cleared := &http.Cookie{
		Name:     r.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	cookie, err := req.Cookie(r.cfg.CookieName)
	if err != nil {
		return cleared, nil
	}
	claims, err := r.parse(cookie.Value)
	if err != nil {
		return cleared, nil
	}
	if r.redis != nil && claims.ID != "" {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl > 0 {
			if err := r.redis.Set(ctx, revocationKey(claims.ID), "1", ttl).Err(); err != nil {
				return cleared, fmt.Errorf("token: revoke: %w", err)
			}
		}
	}
	return cleared, nil
}

func (r *Resolver) parse(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return r.secret, nil },
		jwt.WithValidMethods(validMethods),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (r *Resolver) revoked(ctx context.Context, tokenID string) bool {
	if r.redis == nil || tokenID == "" {
		return false
	}
	err := r.redis.Get(ctx, revocationKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false
	}
	// Treat lookup failures as revoked: better to force a re-login than to
	// honor a credential that may have been revoked.
	return true
}

func revocationKey(tokenID string) string {
	return "token:revoked:" + tokenID
}
