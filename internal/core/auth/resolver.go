package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-api/internal/core/domain"
)

// DefaultCookieName is the cookie carrying the access token.
const DefaultCookieName = "user_access_token"

// AccountFinder loads accounts by id.
type AccountFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
}

// TokenVerifier verifies a token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Resolver turns an inbound request into the calling account. It re-reads the
// account on every call so a deactivation takes effect immediately.
type Resolver struct {
	tokens     TokenVerifier
	accounts   AccountFinder
	cookieName string
	log        zerolog.Logger
}

func NewResolver(tokens TokenVerifier, accounts AccountFinder, cookieName string, log zerolog.Logger) *Resolver {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Resolver{tokens: tokens, accounts: accounts, cookieName: cookieName, log: log}
}

// CookieName is the cookie the resolver reads first.
func (r *Resolver) CookieName() string { return r.cookieName }

// Resolve returns the active account behind req. Every failure wraps
// domain.ErrUnauthenticated, except store outages which wrap
// domain.ErrStoreUnavailable.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*domain.Account, error) {
	token, err := r.extract(req)
	if err != nil {
		return nil, err
	}

	id, err := r.tokens.Verify(token)
	if err != nil {
		r.log.Debug().Err(err).Msg("token rejected")
		return nil, err
	}

	account, err := r.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.log.Debug().Int64("account_id", id).Msg("token subject has no account")
			return nil, domain.ErrUnknownAccount
		}
		return nil, err
	}

	if !account.IsActive {
		r.log.Debug().Int64("account_id", id).Msg("token subject is deactivated")
		return nil, domain.ErrAccountDeleted
	}
	return account, nil
}

// extract prefers the cookie and falls back to an Authorization bearer header.
func (r *Resolver) extract(req *http.Request) (string, error) {
	if c, err := req.Cookie(r.cookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	header := req.Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrTokenMissing
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrTokenMissing
	}
	return strings.TrimSpace(parts[1]), nil
}

// FailureReason maps an authentication error to a short label for metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMissing):
		return "token_missing"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrMalformedClaims):
		return "malformed_claims"
	case errors.Is(err, domain.ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, domain.ErrAccountDeleted):
		return "account_deleted"
	case errors.Is(err, domain.ErrBadCredentials):
		return "bad_credentials"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "other"
	}
}
