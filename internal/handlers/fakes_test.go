package handlers_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/repository"
)

const (
	localCategoryID = "11111111-1111-4111-8111-111111111111"
	trafficCatID    = "22222222-2222-4222-8222-222222222222"
)

// memoryReports is an in-memory report repository with conditional
// status updates and atomic view increments.
type memoryReports struct {
	mu         sync.Mutex
	reports    map[string]*domain.Report
	categories *memoryCategories
	failWrites error
}

func newMemoryReports(categories *memoryCategories) *memoryReports {
	return &memoryReports{reports: make(map[string]*domain.Report), categories: categories}
}

func (s *memoryReports) Create(_ context.Context, r *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	cp := *r
	s.reports[r.ID] = &cp
	return nil
}

func (s *memoryReports) GetByID(_ context.Context, id string) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("report: %w", domain.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *memoryReports) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reports[id]
	return ok, nil
}

func (s *memoryReports) IncrementViews(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return 0, fmt.Errorf("report: %w", domain.ErrNotFound)
	}
	r.ViewCount++
	return r.ViewCount, nil
}

func (s *memoryReports) TransitionStatus(
	_ context.Context, id string, target domain.Status, notes *string, at time.Time,
) (*domain.Report, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok || r.Status != domain.StatusPending {
		return nil, false, nil
	}
	r.Status = target
	if notes != nil {
		n := *notes
		r.StatusNotes = &n
	}
	changed := at
	r.StatusChangedAt = &changed
	cp := *r
	return &cp, true, nil
}

func (s *memoryReports) List(_ context.Context, f repository.ListFilter) ([]domain.ReportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ReportSummary, 0, len(s.reports))
	for _, r := range s.reports {
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, s.summary(r, f.Locale))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset >= len(out) {
		return []domain.ReportSummary{}, nil
	}
	return out[f.Offset:min(f.Offset+f.Limit, len(out))], nil
}

func (s *memoryReports) GetSummary(_ context.Context, id, locale string) (*domain.ReportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("report: %w", domain.ErrNotFound)
	}
	summary := s.summary(r, locale)
	return &summary, nil
}

func (s *memoryReports) summary(r *domain.Report, locale string) domain.ReportSummary {
	out := domain.ReportSummary{Report: *r}
	if cat, ok := s.categories.byID[r.CategoryID]; ok {
		out.CategoryKey = cat.Key
		out.CategoryName = cat.Name(locale)
	}
	return out
}

func (s *memoryReports) viewCount(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports[id].ViewCount
}

type memoryCategories struct {
	byID map[string]domain.Category
}

func newMemoryCategories() *memoryCategories {
	return &memoryCategories{byID: map[string]domain.Category{
		localCategoryID: {ID: localCategoryID, Key: "local", Names: domain.LocaleNames{"en": "Local", "tr": "Yerel"}},
		trafficCatID:    {ID: trafficCatID, Key: "traffic", Names: domain.LocaleNames{"en": "Traffic"}},
	}}
}

func (c *memoryCategories) GetByID(_ context.Context, id string) (*domain.Category, error) {
	cat, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("category: %w", domain.ErrNotFound)
	}
	return &cat, nil
}

func (c *memoryCategories) GetByKey(_ context.Context, key string) (*domain.Category, error) {
	for _, cat := range c.byID {
		if cat.Key == strings.ToLower(strings.TrimSpace(key)) {
			return &cat, nil
		}
	}
	return nil, fmt.Errorf("category: %w", domain.ErrNotFound)
}

func (c *memoryCategories) List(context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(c.byID))
	for _, cat := range c.byID {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type stubVerifier struct {
	err error
}

func (v stubVerifier) Verify(context.Context, string, string) error {
	return v.err
}
