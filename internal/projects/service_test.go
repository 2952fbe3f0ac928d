package projects

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-api/folio/internal/assets"
	"github.com/folio-api/folio/internal/platform/httpx"
)

type mockProjectRepo struct {
	mu       sync.Mutex
	projects map[int64]*Project
	nextID   int64

	createError error
	updateError error
	deleteError error
	statsCalls  int
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[int64]*Project), nextID: 1}
}

func (m *mockProjectRepo) Create(ctx context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.nextID++
	clone := *p
	m.projects[p.ID] = &clone
	return nil
}

func (m *mockProjectRepo) Get(ctx context.Context, id int64) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockProjectRepo) Update(ctx context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	if _, ok := m.projects[p.ID]; !ok {
		return httpx.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	clone := *p
	m.projects[p.ID] = &clone
	return nil
}

func (m *mockProjectRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, ok := m.projects[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepo) List(ctx context.Context, req ListRequest) ([]Project, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []Project{}
	for _, p := range m.projects {
		result = append(result, *p)
	}
	return result, len(result), nil
}

func (m *mockProjectRepo) Stats(ctx context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsCalls++
	return Stats{Total: len(m.projects)}, nil
}

var _ Repository = (*mockProjectRepo)(nil)

func pngUpload(t *testing.T) *Upload {
	t.Helper()
	content := make([]byte, 64)
	copy(content, []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a})
	return &Upload{Filename: "shot.png", Content: content}
}

func newTestService(t *testing.T) (*Service, *mockProjectRepo, *assets.Store) {
	t.Helper()
	repo := newMockProjectRepo()
	store, err := assets.NewStore(t.TempDir(), "/uploads/projects", assets.DefaultMaxBytes)
	require.NoError(t, err)
	svc := NewService(repo, store, nil, nil)
	return svc, repo, store
}

func storedAssets(t *testing.T, store *assets.Store) []string {
	t.Helper()
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func createProject(t *testing.T, svc *Service) *Project {
	t.Helper()
	project, err := svc.Create(context.Background(), CreateInput{
		Title:       "Folio",
		Description: "A portfolio backend",
		Tags:        []string{"go", "api"},
	}, pngUpload(t))
	require.NoError(t, err)
	return project
}

func TestCreateStoresAssetAndRecord(t *testing.T) {
	svc, repo, store := newTestService(t)

	project := createProject(t, svc)

	assert.NotZero(t, project.ID)
	assert.True(t, store.Exists(project.ImageURL))
	assert.Len(t, storedAssets(t, store), 1)

	stored, err := repo.Get(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ImageURL, stored.ImageURL)
}

func TestCreateRollsBackAssetOnInsertFailure(t *testing.T) {
	svc, repo, store := newTestService(t)
	repo.createError = errors.New("insert failed")

	_, err := svc.Create(context.Background(), CreateInput{
		Title:       "Folio",
		Description: "A portfolio backend",
	}, pngUpload(t))
	require.Error(t, err)
	assert.Empty(t, storedAssets(t, store), "failed create must not leave an orphan asset")
}

func TestCreateValidatesBeforeTouchingDisk(t *testing.T) {
	svc, _, store := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Title: "  "}, pngUpload(t))
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, storedAssets(t, store))
}

func TestCreateCountsTitleLengthInRunes(t *testing.T) {
	svc, _, _ := newTestService(t)

	// 60 runes but 180 bytes: within the 100-character cap.
	multibyte := strings.Repeat("日本語", 20)
	project, err := svc.Create(context.Background(), CreateInput{
		Title:       multibyte,
		Description: "A portfolio backend",
	}, pngUpload(t))
	require.NoError(t, err)
	assert.Equal(t, multibyte, project.Title)

	_, err = svc.Create(context.Background(), CreateInput{
		Title:       strings.Repeat("日", 101),
		Description: "A portfolio backend",
	}, pngUpload(t))
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateReplacesAsset(t *testing.T) {
	svc, _, store := newTestService(t)
	project := createProject(t, svc)
	oldRef := project.ImageURL

	updated, err := svc.Update(context.Background(), project.ID, UpdateInput{}, pngUpload(t))
	require.NoError(t, err)

	assert.NotEqual(t, oldRef, updated.ImageURL)
	assert.True(t, store.Exists(updated.ImageURL))
	assert.False(t, store.Exists(oldRef), "replaced asset must be removed")
	assert.Len(t, storedAssets(t, store), 1)
}

func TestUpdateRollbackPreservesOldAsset(t *testing.T) {
	svc, repo, store := newTestService(t)
	project := createProject(t, svc)
	oldRef := project.ImageURL

	repo.updateError = errors.New("update failed")
	_, err := svc.Update(context.Background(), project.ID, UpdateInput{}, pngUpload(t))
	require.Error(t, err)

	assert.True(t, store.Exists(oldRef), "old asset must survive a failed update")
	assert.Len(t, storedAssets(t, store), 1, "new asset must be rolled back")

	stored, err := repo.Get(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, oldRef, stored.ImageURL)
}

func TestUpdateWithoutUploadKeepsAsset(t *testing.T) {
	svc, repo, store := newTestService(t)
	project := createProject(t, svc)

	title := "Renamed"
	updated, err := svc.Update(context.Background(), project.ID, UpdateInput{Title: &title}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, project.ImageURL, updated.ImageURL)
	assert.True(t, store.Exists(project.ImageURL))

	stored, err := repo.Get(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
}

func TestUpdateReplacesListsWhenPresent(t *testing.T) {
	svc, _, _ := newTestService(t)
	project := createProject(t, svc)

	updated, err := svc.Update(context.Background(), project.ID, UpdateInput{
		Tags: []string{" cli ", "", "tooling"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"cli", "tooling"}, updated.Tags)

	again, err := svc.Update(context.Background(), project.ID, UpdateInput{
		Technologies: []string{"postgres"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cli", "tooling"}, again.Tags, "absent list keeps prior value")
	assert.Equal(t, []string{"postgres"}, again.Technologies)
}

func TestUpdateMissingProject(t *testing.T) {
	svc, _, store := newTestService(t)

	_, err := svc.Update(context.Background(), 404, UpdateInput{}, pngUpload(t))
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Empty(t, storedAssets(t, store), "lookup failure must precede the asset write")
}

func TestDeleteRemovesRecordAndAsset(t *testing.T) {
	svc, repo, store := newTestService(t)
	project := createProject(t, svc)

	require.NoError(t, svc.Delete(context.Background(), project.ID))

	_, err := repo.Get(context.Background(), project.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Empty(t, storedAssets(t, store))
}

func TestDeleteKeepsAssetWhenRecordDeleteFails(t *testing.T) {
	svc, repo, store := newTestService(t)
	project := createProject(t, svc)

	repo.deleteError = errors.New("delete failed")
	err := svc.Delete(context.Background(), project.ID)
	require.Error(t, err)
	assert.True(t, store.Exists(project.ImageURL),
		"asset must stay while the record still references it")
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	svc, repo, store := newTestService(t)
	project := createProject(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Update(context.Background(), project.ID, UpdateInput{}, pngUpload(t))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.Get(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Len(t, storedAssets(t, store), 1, "exactly the referenced asset must remain")
	assert.True(t, store.Exists(stored.ImageURL))
}
