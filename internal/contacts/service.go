package contacts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/folio-api/folio/internal/platform/httpx"
)

// Notification describes the email dispatch triggered by a submission.
type Notification struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Notifier enqueues the notification email for background delivery.
type Notifier interface {
	EnqueueContactEmail(ctx context.Context, n Notification) error
}

// SubmitInput carries a public contact-form submission.
type SubmitInput struct {
	Name      string
	Email     string
	Message   string
	IPAddress string
	UserAgent string
}

// Service handles contact inbox business logic.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Submit stores the message and enqueues the notification email. Email
// dispatch is fire-and-forget: a queue failure is logged but never turns a
// stored submission into a client-facing error.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*Contact, error) {
	contact := &Contact{
		Name:      input.Name,
		Email:     input.Email,
		Message:   input.Message,
		Status:    StatusNew,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		n := Notification{Name: contact.Name, Email: contact.Email, Message: contact.Message}
		if err := s.notifier.EnqueueContactEmail(ctx, n); err != nil && s.logger != nil {
			s.logger.Warn("enqueue contact email failed", slog.Any("error", err))
		}
	}
	return contact, nil
}

// Get fetches a single contact.
func (s *Service) Get(ctx context.Context, id int64) (*Contact, error) {
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves a contact through the inbox workflow.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*Contact, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns a page of contacts with the total match count.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Contact, int, error) {
	if req.Status != "" && !ValidStatus(req.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, req.Status)
	}
	return s.repo.List(ctx, req)
}

// Stats returns inbox aggregates.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
