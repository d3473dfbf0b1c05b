// Package listctl drives the job list views: it translates filter state into
// paginated backend queries, debounces text input, caches results per year
// and keeps the locally held page consistent with edits made in child
// editors without a full refetch on every change.
package listctl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/entity"
)

// Filters is the complete filter state of a list view. "all" disables the
// detailed status, ICD and importer filters.
type Filters struct {
	Status         string
	DetailedStatus string
	Year           string
	ICDCode        string
	Importer       string
	Search         string
	UnresolvedOnly bool
}

// Page is one page of jobs as returned by the job service.
type Page struct {
	Data            []entity.Job `json:"data"`
	Total           int64        `json:"total"`
	TotalPages      int          `json:"totalPages"`
	CurrentPage     int          `json:"currentPage"`
	UnresolvedCount int64        `json:"unresolvedCount,omitempty"`
}

// Suggestion is one typeahead candidate.
type Suggestion struct {
	JobNo    string `json:"job_no"`
	Importer string `json:"importer"`
	AwbBlNo  string `json:"awb_bl_no"`
	BENo     string `json:"be_no"`
}

// Fetcher is the job service surface the controller depends on.
type Fetcher interface {
	FetchJobs(ctx context.Context, filters Filters, page, limit int) (*Page, error)
	FetchSuggestions(ctx context.Context, filters Filters, input string, limit int) ([]Suggestion, error)
}

// Notification is surfaced when the controller changes the visible set for a
// reason the user did not directly trigger, e.g. a patched row moving out of
// the active filter.
type Notification struct {
	JobNo   string
	Message string
}

// Options tune the controller. Zero values fall back to the defaults below.
type Options struct {
	PageSize        int
	SuggestionLimit int
	InputSettle     time.Duration
	SearchSettle    time.Duration
	TypeaheadSettle time.Duration
}

const (
	defaultPageSize        = 100
	defaultSuggestionLimit = 8
	defaultInputSettle     = 150 * time.Millisecond
	defaultSearchSettle    = 250 * time.Millisecond
	defaultTypeaheadSettle = 250 * time.Millisecond

	typeaheadMinLength = 2
)

// Controller owns the list state for one view.
type Controller struct {
	fetcher Fetcher
	opts    Options
	cache   *yearCache

	mu              sync.Mutex
	filters         Filters
	page            int
	rows            []entity.Job
	total           int64
	totalPages      int
	unresolvedCount int64
	lastErr         error

	// Monotonic fetch sequencing: responses that started before the one
	// already applied are dropped instead of clobbering newer state.
	nextSeq    uint64
	appliedSeq uint64

	rawInput     string
	logicalQuery string

	inputDeb     *Debouncer
	searchDeb    *Debouncer
	typeaheadDeb *Debouncer

	typeaheadCancel context.CancelFunc
	suggestions     []Suggestion

	notifications chan Notification
}

// NewController creates a controller over the given fetcher.
func NewController(fetcher Fetcher, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = defaultSuggestionLimit
	}
	if opts.InputSettle <= 0 {
		opts.InputSettle = defaultInputSettle
	}
	if opts.SearchSettle <= 0 {
		opts.SearchSettle = defaultSearchSettle
	}
	if opts.TypeaheadSettle <= 0 {
		opts.TypeaheadSettle = defaultTypeaheadSettle
	}
	return &Controller{
		fetcher:       fetcher,
		opts:          opts,
		cache:         newYearCache(),
		page:          1,
		inputDeb:      NewDebouncer(opts.InputSettle),
		searchDeb:     NewDebouncer(opts.SearchSettle),
		typeaheadDeb:  NewDebouncer(opts.TypeaheadSettle),
		notifications: make(chan Notification, 16),
	}
}

// SetFilters replaces the filter state and resets to the first page. The
// caller is expected to follow up with FetchJobs.
func (c *Controller) SetFilters(f Filters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = f
	c.page = 1
}

// Filters returns a copy of the active filter state.
func (c *Controller) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// FetchJobs loads the given page under the active filters. A memoized page
// for the current cache generation is served without a backend round trip.
// On failure the previously loaded rows stay visible and the error is kept
// for Err until a later fetch succeeds.
func (c *Controller) FetchJobs(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	filters := c.filters
	c.page = page
	c.mu.Unlock()

	key := cacheKey(filters, page, c.opts.PageSize)
	if cached, ok := c.cache.get(filters.Year, key); ok {
		c.mu.Lock()
		c.applyPage(cached)
		c.lastErr = nil
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	result, err := c.fetcher.FetchJobs(ctx, filters, page, c.opts.PageSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.appliedSeq {
		// A later-started fetch already landed; this response is stale
		// whether it succeeded or failed.
		return nil
	}

	if err != nil {
		// Keep prior rows; the view shows a retryable error instead of
		// clearing on failure.
		c.lastErr = fmt.Errorf("fetch jobs: %w", err)
		return c.lastErr
	}
	c.appliedSeq = seq
	c.applyPage(result)
	c.lastErr = nil

	// Stamped with the generation current now, so an invalidation that
	// raced this fetch does not mark its result stale.
	c.cache.put(filters.Year, key, result)
	return nil
}

func (c *Controller) applyPage(p *Page) {
	c.rows = append([]entity.Job(nil), p.Data...)
	c.total = p.Total
	c.totalPages = p.TotalPages
	c.page = p.CurrentPage
	c.unresolvedCount = p.UnresolvedCount
}

// Refresh bypasses the cache for the current page.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	year := c.filters.Year
	page := c.page
	c.mu.Unlock()
	c.cache.invalidate(year)
	return c.FetchJobs(ctx, page)
}

// InvalidateCache marks every memoized page of the year stale. The next
// FetchJobs for that year goes back to the job service.
func (c *Controller) InvalidateCache(year string) {
	c.cache.invalidate(year)
}

// SetSearchInput feeds one keystroke of the free-text search box. The raw
// input settles briefly before becoming the logical query, which settles
// again before being normalized and used for a list fetch. The two stages
// are independent timers, matching how fast typing and slow corrections
// behave differently.
func (c *Controller) SetSearchInput(ctx context.Context, raw string) {
	c.mu.Lock()
	c.rawInput = raw
	c.mu.Unlock()

	c.inputDeb.Trigger(func() {
		c.mu.Lock()
		c.logicalQuery = strings.TrimSpace(c.rawInput)
		c.mu.Unlock()

		c.searchDeb.Trigger(func() {
			c.mu.Lock()
			c.filters.Search = NormalizeSearch(c.logicalQuery)
			c.page = 1
			c.mu.Unlock()
			c.FetchJobs(ctx, 1)
		})
	})
}

// SetTypeaheadInput feeds the autocomplete input. After the input settles, a
// lightweight suggestion query fires; an in-flight request from an earlier
// keystroke is aborted so it can never overwrite newer suggestions. Errors
// degrade to an empty suggestion list.
func (c *Controller) SetTypeaheadInput(input string) {
	c.typeaheadDeb.Trigger(func() {
		trimmed := strings.TrimSpace(input)

		c.mu.Lock()
		if c.typeaheadCancel != nil {
			c.typeaheadCancel()
			c.typeaheadCancel = nil
		}
		if len(trimmed) < typeaheadMinLength {
			c.suggestions = nil
			c.mu.Unlock()
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		c.typeaheadCancel = cancel
		filters := c.filters
		c.mu.Unlock()

		suggestions, err := c.fetcher.FetchSuggestions(ctx, filters, trimmed, c.opts.SuggestionLimit)

		c.mu.Lock()
		defer c.mu.Unlock()
		if ctx.Err() != nil {
			// Superseded by a later keystroke.
			return
		}
		if err != nil {
			c.suggestions = nil
			return
		}
		c.suggestions = suggestions
	})
}

// PatchRowLocally applies a successful child edit to the in-memory row
// identified by job number, avoiding a full refetch. When the patched row no
// longer matches the active detailed status filter it is removed from the
// visible set and a notification is emitted. Patching an absent row is a
// no-op.
func (c *Controller) PatchRowLocally(jobNo string, apply func(*entity.Job)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i := range c.rows {
		if c.rows[i].JobNo == jobNo {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	apply(&c.rows[idx])

	if c.filters.DetailedStatus != "" && c.filters.DetailedStatus != "all" &&
		c.rows[idx].DetailedStatus != c.filters.DetailedStatus {
		c.rows = append(c.rows[:idx], c.rows[idx+1:]...)
		c.notify(Notification{
			JobNo:   jobNo,
			Message: fmt.Sprintf("Job %s moved out of the %s view", jobNo, c.filters.DetailedStatus),
		})
	}

	// Re-memoize the patched page so a cached re-read does not resurrect
	// the pre-edit row.
	page := &Page{
		Data:            append([]entity.Job(nil), c.rows...),
		Total:           c.total,
		TotalPages:      c.totalPages,
		CurrentPage:     c.page,
		UnresolvedCount: c.unresolvedCount,
	}
	c.cache.put(c.filters.Year, cacheKey(c.filters, c.page, c.opts.PageSize), page)
}

func (c *Controller) notify(n Notification) {
	select {
	case c.notifications <- n:
	default:
	}
}

// Rows returns a copy of the currently visible rows.
func (c *Controller) Rows() []entity.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.Job(nil), c.rows...)
}

// Total returns the backend-reported total row count for the active filters.
func (c *Controller) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// UnresolvedCount returns the pending-bucket unresolved query count from the
// last fetch.
func (c *Controller) UnresolvedCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unresolvedCount
}

// Err returns the retryable error from the last failed fetch, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Suggestions returns the current typeahead candidates.
func (c *Controller) Suggestions() []Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Suggestion(nil), c.suggestions...)
}

// Notifications exposes controller-initiated view changes.
func (c *Controller) Notifications() <-chan Notification {
	return c.notifications
}

// Close stops pending debounce timers and aborts any in-flight typeahead.
func (c *Controller) Close() {
	c.inputDeb.Stop()
	c.searchDeb.Stop()
	c.typeaheadDeb.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typeaheadCancel != nil {
		c.typeaheadCancel()
		c.typeaheadCancel = nil
	}
}

func cacheKey(f Filters, page, limit int) string {
	unresolved := "0"
	if f.UnresolvedOnly {
		unresolved = "1"
	}
	return strings.Join([]string{
		f.Status, f.DetailedStatus, f.ICDCode, f.Importer, f.Search,
		unresolved, fmt.Sprintf("%d:%d", page, limit),
	}, "|")
}
