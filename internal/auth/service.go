package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/folio-api/folio/internal/platform/httpx"
	"github.com/folio-api/folio/internal/shared"
	"github.com/folio-api/folio/internal/token"
)

// ServiceConfig tunes credential policy.
type ServiceConfig struct {
	PasswordMinLen int
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *token.Manager
	cfg    ServiceConfig
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *token.Manager, cfg ServiceConfig) *Service {
	if cfg.PasswordMinLen <= 0 {
		cfg.PasswordMinLen = 6
	}
	return &Service{repo: repo, tokens: tokens, cfg: cfg}
}

// Register provisions a new administrator account.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Admin, error) {
	if err := s.checkPasswordPolicy(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	admin := &Admin{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         shared.RoleAdmin,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Login validates email/password credentials and mints a bearer token.
// Every failure path collapses to ErrInvalidCredentials so responses do not
// leak whether the account exists.
func (s *Service) Login(ctx context.Context, email, password string) (*Admin, string, error) {
	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	signed, err := s.tokens.Issue(shared.Principal{ID: admin.ID, Username: admin.Username, Role: admin.Role})
	if err != nil {
		return nil, "", err
	}
	return admin, signed, nil
}

// Profile loads the account for the authenticated principal.
func (s *Service) Profile(ctx context.Context, id int64) (*Admin, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies a partial profile update; empty fields keep their
// current value.
func (s *Service) UpdateProfile(ctx context.Context, id int64, username, email string) (*Admin, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if username == "" {
		username = current.Username
	}
	if email == "" {
		email = current.Email
	}
	return s.repo.UpdateProfile(ctx, id, username, email)
}

// ChangePassword verifies the current credential before replacing it.
func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(current)); err != nil {
		return shared.ErrInvalidCredentials
	}
	if err := s.checkPasswordPolicy(next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// Dashboard returns aggregate counts for the admin dashboard.
func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	return s.repo.DashboardStats(ctx)
}

func (s *Service) checkPasswordPolicy(password string) error {
	if len(password) < s.cfg.PasswordMinLen {
		return fmt.Errorf("%w: password must be at least %d characters long",
			httpx.ErrValidation, s.cfg.PasswordMinLen)
	}
	return nil
}
