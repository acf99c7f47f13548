package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

var (
	testSession = models.Session{UserID: "user-1", Email: "ana@campus.edu", TokenID: "tok-1"}
	errStore    = errors.New("connection refused")
)

type memAssignments struct {
	mu        sync.Mutex
	items     map[string]models.Assignment
	listErr   error
	updateErr error
	deleted   []string
	statuses  []models.AssignmentStatus
}

func newMemAssignments(items ...models.Assignment) *memAssignments {
	m := &memAssignments{items: map[string]models.Assignment{}}
	for _, a := range items {
		m.items[a.ID] = a
	}
	return m
}

func (m *memAssignments) ListByUser(_ context.Context, userID string) ([]models.Assignment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Assignment
	for _, a := range m.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAssignments) List(ctx context.Context, userID string, _ models.AssignmentFilter) ([]models.Assignment, int, error) {
	items, err := m.ListByUser(ctx, userID)
	return items, len(items), err
}

func (m *memAssignments) FindByID(_ context.Context, userID, id string) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (m *memAssignments) Create(_ context.Context, a *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.NewString()
	m.items[a.ID] = *a
	return nil
}

func (m *memAssignments) Update(_ context.Context, a *models.Assignment) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[a.ID] = *a
	return nil
}

func (m *memAssignments) UpdateStatus(_ context.Context, userID, id string, status models.AssignmentStatus, completedAt *time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.UserID != userID {
		return sql.ErrNoRows
	}
	a.Status = status
	a.CompletedAt = completedAt
	m.items[id] = a
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memAssignments) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.UserID != userID {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type fakeCourses struct {
	courses []models.Course
	listErr error
	created []*models.Course
	updated []*models.Course
	deleted []string
}

func (f *fakeCourses) ListByUser(context.Context, string) ([]models.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.courses, nil
}

func (f *fakeCourses) FindByID(_ context.Context, userID, id string) (*models.Course, error) {
	for _, c := range f.courses {
		if c.ID == id && c.UserID == userID {
			course := c
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCourses) Create(_ context.Context, c *models.Course) error {
	c.ID = uuid.NewString()
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCourses) Update(_ context.Context, c *models.Course) error {
	f.updated = append(f.updated, c)
	return nil
}

func (f *fakeCourses) Delete(_ context.Context, _ string, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRecommendations struct {
	recs      []models.Recommendation
	listErr   error
	updateErr error
	acceptErr error
	updates   map[string]models.RecommendationStatus
	booked    []*models.StudySession
}

func (f *fakeRecommendations) ListPendingByUser(context.Context, string) ([]models.Recommendation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.recs, nil
}

func (f *fakeRecommendations) FindByID(_ context.Context, userID, id string) (*models.Recommendation, error) {
	for _, r := range f.recs {
		if r.ID == id && r.UserID == userID {
			rec := r
			return &rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRecommendations) UpdateStatus(_ context.Context, _ string, id string, status models.RecommendationStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updates == nil {
		f.updates = map[string]models.RecommendationStatus{}
	}
	f.updates[id] = status
	return nil
}

// Accept mirrors the conditional update: only a pending row is accepted, and
// sessions are stored only when the status change succeeds.
func (f *fakeRecommendations) Accept(_ context.Context, userID, id string, sessions []*models.StudySession) error {
	if f.acceptErr != nil {
		return f.acceptErr
	}
	for i := range f.recs {
		rec := &f.recs[i]
		if rec.ID != id || rec.UserID != userID {
			continue
		}
		if rec.Status != models.RecommendationStatusPending {
			return sql.ErrNoRows
		}
		rec.Status = models.RecommendationStatusAccepted
		for _, s := range sessions {
			s.ID = uuid.NewString()
		}
		f.booked = append(f.booked, sessions...)
		if f.updates == nil {
			f.updates = map[string]models.RecommendationStatus{}
		}
		f.updates[id] = models.RecommendationStatusAccepted
		return nil
	}
	return sql.ErrNoRows
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (p *recordingPublisher) Publish(event models.ChangeEvent) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *recordingPublisher) Events() []models.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.ChangeEvent(nil), p.events...)
}

type fakeAnalyzer struct {
	err   error
	calls []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, userID string) error {
	f.calls = append(f.calls, userID)
	return f.err
}

// memCache behaves like the redis cache repository: JSON values, ErrCacheMiss on absent keys.
type memCache struct {
	mu        sync.Mutex
	values    map[string][]byte
	ttls      map[string]time.Duration
	existsErr error
	setErr    error
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	raw, ok := m.values[key]
	m.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.values[key] = raw
	m.ttls[key] = ttl
	m.mu.Unlock()
	return nil
}

func (m *memCache) Exists(_ context.Context, key string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok, nil
}

func (m *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.values {
		if key == pattern || (strings.HasSuffix(pattern, "*") && strings.HasPrefix(key, prefix)) {
			delete(m.values, key)
		}
	}
	return nil
}

func (m *memCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}
