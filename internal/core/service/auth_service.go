package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/internal/core/validation"
	"github.com/recordhub/records-api/pkg/metrics"
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer signs access tokens for an account id.
type TokenIssuer interface {
	Issue(accountID int64) (string, error)
}

// AuthService implements registration and login.
type AuthService struct {
	accounts  ports.AccountRepository
	validator *validation.Engine
	hasher    PasswordHasher
	tokens    TokenIssuer
	log       zerolog.Logger
}

func NewAuthService(accounts ports.AccountRepository, validator *validation.Engine, hasher PasswordHasher, tokens TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{accounts: accounts, validator: validator, hasher: hasher, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	name, err := validation.AccountName(in.Name)
	if err != nil {
		return nil, err
	}
	in.Name = name
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	fields := ports.Fields{"name": in.Name, "email": in.Email, "password": in.Password}
	if err := s.validator.ValidateCreate(ctx, domain.KindAccount, 0, fields); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	bio := in.Bio
	if bio == "" {
		bio = domain.DefaultBio
	}
	account := &domain.Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Bio:          bio,
		Location:     in.Location,
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("account_id", created.ID).Str("name", created.Name).Msg("account registered")
	return created, nil
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrBadCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
			return "", nil, domain.ErrBadCredentials
		}
		return "", nil, err
	}

	if !account.IsActive {
		metrics.AuthFailuresTotal.WithLabelValues("account_deleted").Inc()
		return "", nil, domain.ErrAccountDeleted
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		s.log.Debug().Int64("account_id", account.ID).Msg("password mismatch")
		return "", nil, domain.ErrBadCredentials
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", nil, err
	}
	metrics.TokensIssuedTotal.Inc()

	return token, account, nil
}
