package contacts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-api/folio/internal/platform/httpx"
)

type mockContactRepo struct {
	mu       sync.Mutex
	contacts map[int64]*Contact
	nextID   int64

	createError error
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{contacts: make(map[int64]*Contact), nextID: 1}
}

func (m *mockContactRepo) Create(ctx context.Context, c *Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.nextID++
	clone := *c
	m.contacts[c.ID] = &clone
	return nil
}

func (m *mockContactRepo) Get(ctx context.Context, id int64) (*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockContactRepo) UpdateStatus(ctx context.Context, id int64, status string) (*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	clone := *c
	return &clone, nil
}

func (m *mockContactRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

func (m *mockContactRepo) List(ctx context.Context, req ListRequest) ([]Contact, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []Contact{}
	for _, c := range m.contacts {
		if req.Status != "" && c.Status != req.Status {
			continue
		}
		result = append(result, *c)
	}
	return result, len(result), nil
}

func (m *mockContactRepo) Stats(ctx context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, c := range m.contacts {
		counts[c.Status]++
	}
	stats := Stats{Total: len(m.contacts), Statuses: []StatusCount{}}
	for status, count := range counts {
		stats.Statuses = append(stats.Statuses, StatusCount{Status: status, Count: count})
	}
	return stats, nil
}

var _ Repository = (*mockContactRepo)(nil)

type recordedNotifier struct {
	mu         sync.Mutex
	sent       []Notification
	enqueueErr error
}

func (n *recordedNotifier) EnqueueContactEmail(ctx context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.enqueueErr != nil {
		return n.enqueueErr
	}
	n.sent = append(n.sent, notification)
	return nil
}

func submitInput() SubmitInput {
	return SubmitInput{
		Name:      "Visitor",
		Email:     "visitor@example.com",
		Message:   "I would like to talk about a project.",
		IPAddress: "203.0.113.9",
		UserAgent: "curl/8",
	}
}

func TestSubmitStoresContactAndEnqueuesEmail(t *testing.T) {
	repo := newMockContactRepo()
	notifier := &recordedNotifier{}
	svc := NewService(repo, notifier, nil)

	contact, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	assert.Equal(t, StatusNew, contact.Status)
	assert.Equal(t, "203.0.113.9", contact.IPAddress)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "visitor@example.com", notifier.sent[0].Email)
}

func TestSubmitSurvivesEnqueueFailure(t *testing.T) {
	repo := newMockContactRepo()
	notifier := &recordedNotifier{enqueueErr: errors.New("queue down")}
	svc := NewService(repo, notifier, nil)

	contact, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err, "a dead queue must not reject the submission")
	assert.NotZero(t, contact.ID)
}

func TestSubmitRepoErrorSkipsEmail(t *testing.T) {
	repo := newMockContactRepo()
	repo.createError = errors.New("insert failed")
	notifier := &recordedNotifier{}
	svc := NewService(repo, notifier, nil)

	_, err := svc.Submit(context.Background(), submitInput())
	require.Error(t, err)
	assert.Empty(t, notifier.sent, "no email for a submission that was not stored")
}

func TestUpdateStatusValidatesValue(t *testing.T) {
	repo := newMockContactRepo()
	svc := NewService(repo, nil, nil)
	contact, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), contact.ID, "bogus")
	assert.ErrorIs(t, err, httpx.ErrValidation)

	updated, err := svc.UpdateStatus(context.Background(), contact.ID, StatusReplied)
	require.NoError(t, err)
	assert.Equal(t, StatusReplied, updated.Status)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := newMockContactRepo()
	svc := NewService(repo, nil, nil)
	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), submitInput())
		require.NoError(t, err)
	}
	_, err := svc.UpdateStatus(context.Background(), 1, StatusArchived)
	require.NoError(t, err)

	_, _, err = svc.List(context.Background(), ListRequest{Status: "bogus"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	items, total, err := svc.List(context.Background(), ListRequest{Status: StatusNew})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)
}

func TestStatsCountsByStatus(t *testing.T) {
	repo := newMockContactRepo()
	svc := NewService(repo, nil, nil)
	for i := 0; i < 2; i++ {
		_, err := svc.Submit(context.Background(), submitInput())
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	require.Len(t, stats.Statuses, 1)
	assert.Equal(t, StatusCount{Status: StatusNew, Count: 2}, stats.Statuses[0])
}
