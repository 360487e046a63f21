package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

// DefaultDebounce is the quiet period before a search change is applied.
const DefaultDebounce = 500 * time.Millisecond

// PageFetcher fetches one queue page.
type PageFetcher interface {
	List(ctx context.Context, query QueueQuery) ([]domain.ReportSummary, error)
}

// PagerFilter is the part of a query that identifies a result set.
type PagerFilter struct {
	Status *domain.Status
	Search string
	Locale string
}

func (f PagerFilter) equal(other PagerFilter) bool {
	if f.Search != other.Search || f.Locale != other.Locale {
		return false
	}
	if f.Status == nil || other.Status == nil {
		return f.Status == other.Status
	}
	return *f.Status == *other.Status
}

// Pager accumulates offset pages for one filter, as an infinite-scroll
// client does.
type Pager struct {
	fetcher PageFetcher
	limit   int

	mu         sync.Mutex
	filter     PagerFilter
	items      []domain.ReportSummary
	done       bool
	generation uint64
}

// NewPager creates a pager that requests limit items per page.
func NewPager(fetcher PageFetcher, filter PagerFilter, limit int) *Pager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Pager{fetcher: fetcher, filter: filter, limit: limit}
}

// Next fetches the page after the accumulated items and returns it. After
// a short page Done is true and Next returns nothing. A page that arrives
// after Reset changed the filter is discarded.
func (p *Pager) Next(ctx context.Context) ([]domain.ReportSummary, error) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return nil, nil
	}
	gen := p.generation
	query := QueueQuery{
		Status: p.filter.Status,
		Search: p.filter.Search,
		Locale: p.filter.Locale,
		Limit:  p.limit,
		Offset: len(p.items),
	}
	p.mu.Unlock()

	page, err := p.fetcher.List(ctx, query)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation || query.Offset != len(p.items) {
		return nil, nil
	}
	p.items = append(p.items, page...)
	if len(page) < p.limit {
		p.done = true
	}
	return page, nil
}

// Reset switches to filter and discards accumulated items. It reports
// false and keeps the items when the filter is unchanged.
func (p *Pager) Reset(filter PagerFilter) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.filter.equal(filter) {
		return false
	}
	p.filter = filter
	p.items = nil
	p.done = false
	p.generation++
	return true
}

// Items returns a copy of the accumulated items.
func (p *Pager) Items() []domain.ReportSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ReportSummary(nil), p.items...)
}

// Done reports whether the last page has been seen.
func (p *Pager) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Debouncer runs fn once the calls to Trigger have paused for delay.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer. A non-positive delay uses
// DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
