package moderation_test

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

// memoryStore is an in-memory report store with the same conditional
// update semantics as the PostgreSQL repository.
type memoryStore struct {
	mu      sync.Mutex
	reports map[string]*domain.Report
	filters []repository.ListFilter
	listErr error
}

func newMemoryStore(reports ...*domain.Report) *memoryStore {
	s := &memoryStore{reports: make(map[string]*domain.Report)}
	for _, r := range reports {
		s.reports[r.ID] = r
	}
	return s
}

func (s *memoryStore) TransitionStatus(
	ctx context.Context, id string, target domain.Status, notes *string, at time.Time,
) (*domain.Report, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
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

func (s *memoryStore) GetByID(_ context.Context, id string) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("report: %w", domain.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *memoryStore) List(_ context.Context, f repository.ListFilter) ([]domain.ReportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = append(s.filters, f)
	if s.listErr != nil {
		return nil, s.listErr
	}

	var out []domain.ReportSummary
	for _, r := range s.reports {
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		if f.Search != "" && !matches(r, f.Search) {
			continue
		}
		out = append(out, domain.ReportSummary{Report: *r})
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
	end := min(f.Offset+f.Limit, len(out))
	return out[f.Offset:end], nil
}

func (s *memoryStore) GetSummary(ctx context.Context, id, _ string) (*domain.ReportSummary, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.ReportSummary{Report: *r, CategoryKey: "local", CategoryName: "Local"}, nil
}

func (s *memoryStore) lastFilter() repository.ListFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters[len(s.filters)-1]
}

func matches(r *domain.Report, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{r.Title, r.LocationName, r.SubmitterEmail} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func seedReports(n int, status domain.Status) []*domain.Report {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	out := make([]*domain.Report, 0, n)
	for i := range n {
		out = append(out, &domain.Report{
			ID:             fmt.Sprintf("00000000-0000-4000-8000-%012d", i),
			Title:          fmt.Sprintf("Report number %d", i),
			LocationName:   "Ankara",
			SubmitterEmail: fmt.Sprintf("user%d@example.com", i),
			Status:         status,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}
