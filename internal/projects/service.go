package projects

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/folio-api/folio/internal/platform/cache"
	"github.com/folio-api/folio/internal/platform/httpx"
	"github.com/folio-api/folio/internal/shared"
)

const (
	maxTitleLen = 100
	maxShortLen = 200

	statsCacheKey = "projects:stats"
)

// AssetStore is the blob store collaborating in the lifecycle sagas.
type AssetStore interface {
	Save(filename string, content []byte) (string, error)
	Remove(ref string) error
}

// Service coordinates the project record and its stored asset. Each mutating
// operation is a short saga across the database and the asset store; the
// compensation steps below keep the two consistent on every reachable
// failure path, and the per-id lock table serializes sagas touching the
// same project.
type Service struct {
	repo   Repository
	store  AssetStore
	locks  *shared.LockTable
	cache  *cache.JSONCache
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, store AssetStore, statsCache *cache.JSONCache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		locks:  shared.NewLockTable(),
		cache:  statsCache,
		logger: logger,
	}
}

// Create validates the fields, stores the optional asset and inserts the
// record. When the insert fails after the asset was written, the asset is
// removed again so no orphan survives; that cleanup is best-effort and never
// masks the insert failure.
func (s *Service) Create(ctx context.Context, input CreateInput, upload *Upload) (*Project, error) {
	if err := validateFields(input.Title, input.Description, input.ShortDescription); err != nil {
		return nil, err
	}

	project := &Project{
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		ShortDescription: strings.TrimSpace(input.ShortDescription),
		LiveURL:          strings.TrimSpace(input.LiveURL),
		GithubURL:        strings.TrimSpace(input.GithubURL),
		Tags:             normalizeList(input.Tags),
		Technologies:     normalizeList(input.Technologies),
		Featured:         input.Featured,
		Order:            input.Order,
	}

	if upload != nil {
		ref, err := s.store.Save(upload.Filename, upload.Content)
		if err != nil {
			return nil, err
		}
		project.ImageURL = ref
	}

	if err := s.repo.Create(ctx, project); err != nil {
		if project.ImageURL != "" {
			s.cleanupAsset(project.ImageURL, "create rollback")
		}
		return nil, err
	}

	s.invalidateStats(ctx)
	return project, nil
}

// Update applies a partial update. A new asset is stored under a new name
// before the record is persisted and before the previous asset is deleted,
// so a failure between the two writes always leaves the old asset reachable.
// When the database write fails after the new asset was stored, the new
// asset is removed and the previous record and asset stay untouched.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput, upload *Upload) (*Project, error) {
	release := s.locks.Acquire(id)
	defer release()

	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(project, input)
	if err := validateFields(project.Title, project.Description, project.ShortDescription); err != nil {
		return nil, err
	}

	previousRef := ""
	if upload != nil {
		newRef, err := s.store.Save(upload.Filename, upload.Content)
		if err != nil {
			return nil, err
		}
		previousRef = project.ImageURL
		project.ImageURL = newRef
	}

	if err := s.repo.Update(ctx, project); err != nil {
		if upload != nil {
			s.cleanupAsset(project.ImageURL, "update rollback")
		}
		return nil, err
	}

	if previousRef != "" {
		s.cleanupAsset(previousRef, "replaced asset")
	}

	s.invalidateStats(ctx)
	return project, nil
}

// Delete removes the record first and the asset second: once the database no
// longer references the asset it is an orphan by definition, so removing it
// is safe to attempt and non-fatal on failure.
func (s *Service) Delete(ctx context.Context, id int64) error {
	release := s.locks.Acquire(id)
	defer release()

	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if project.ImageURL != "" {
		s.cleanupAsset(project.ImageURL, "deleted project")
	}

	s.invalidateStats(ctx)
	return nil
}

// Get fetches a single project.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of projects with the total match count.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Project, int, error) {
	return s.repo.List(ctx, req)
}

// Stats returns catalogue aggregates, cached for a short window.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.cache.FetchJSON(ctx, statsCacheKey, &stats, func(ctx context.Context) (any, error) {
		return s.repo.Stats(ctx)
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// cleanupAsset deletes a stored asset as a compensation step. Failures are
// logged and swallowed: they must never mask the primary outcome.
func (s *Service) cleanupAsset(ref, reason string) {
	if err := s.store.Remove(ref); err != nil && s.logger != nil {
		s.logger.Warn("asset cleanup failed",
			slog.String("ref", ref),
			slog.String("reason", reason),
			slog.Any("error", err))
	}
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCacheKey); err != nil && s.logger != nil {
		s.logger.Warn("stats cache invalidate failed", slog.Any("error", err))
	}
}

func validateFields(title, description, short string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if utf8.RuneCountInString(strings.TrimSpace(title)) > maxTitleLen {
		return fmt.Errorf("%w: title cannot exceed %d characters", httpx.ErrValidation, maxTitleLen)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", httpx.ErrValidation)
	}
	if utf8.RuneCountInString(strings.TrimSpace(short)) > maxShortLen {
		return fmt.Errorf("%w: short description cannot exceed %d characters", httpx.ErrValidation, maxShortLen)
	}
	return nil
}

func applyUpdate(project *Project, input UpdateInput) {
	if input.Title != nil {
		project.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}
	if input.ShortDescription != nil {
		project.ShortDescription = strings.TrimSpace(*input.ShortDescription)
	}
	if input.LiveURL != nil {
		project.LiveURL = strings.TrimSpace(*input.LiveURL)
	}
	if input.GithubURL != nil {
		project.GithubURL = strings.TrimSpace(*input.GithubURL)
	}
	if input.Tags != nil {
		project.Tags = normalizeList(input.Tags)
	}
	if input.Technologies != nil {
		project.Technologies = normalizeList(input.Technologies)
	}
	if input.Featured != nil {
		project.Featured = *input.Featured
	}
	if input.Order != nil {
		project.Order = *input.Order
	}
}

func normalizeList(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
