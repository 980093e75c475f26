// Package listing implements the generic resource list controller: it turns
// a query state and a resource descriptor into the current page of items,
// re-fetching whenever the query changes.
package listing

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/client"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/query"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/session"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
)

// maxFullFetchPages bounds full-set fetches against a misbehaving backend.
const maxFullFetchPages = 200

var (
	// ErrStale is returned by Refresh when a newer request superseded it.
	ErrStale = errors.New("listing: response superseded by a newer request")
	// ErrClosed is returned by Refresh after Close.
	ErrClosed = errors.New("listing: controller closed")
)

// Doer performs backend requests. *client.Client implements it.
type Doer interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

// ScopeProvider supplies the session institution scope.
type ScopeProvider interface {
	InstitutionScope() session.Scope
}

// MatchFunc is a console-side predicate for filters the backend lacks.
type MatchFunc[T any] func(item T, q query.Snapshot) bool

// Options configures a Controller.
type Options[T any] struct {
	Descriptor resource.Descriptor
	Client     Doer
	// Query defaults to a fresh state with PageSize.
	Query    *query.State
	PageSize int
	// Scope pre-populates and, when locked, pins the institution filter.
	Scope ScopeProvider
	// LocalKeys are filter keys evaluated by Match instead of the backend.
	// When any is set the full result set is fetched and paginated here.
	LocalKeys         []string
	Match             MatchFunc[T]
	FullFetchPageSize int
	Logger            *zap.Logger
	Metrics           *metrics.Recorder
}

// Snapshot is what a page renders.
type Snapshot[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
	Loading  bool
	Err      error
	fallback string
}

// ErrKind classifies Err.
func (s Snapshot[T]) ErrKind() appErrors.Kind {
	return appErrors.KindOf(s.Err)
}

// Banner is the error text to show, empty when the last refresh succeeded.
func (s Snapshot[T]) Banner() string {
	return appErrors.Banner(s.Err, s.fallback)
}

// Controller is safe for concurrent use. Responses are sequenced: only the
// latest issued request may update state, and nothing updates state after
// Close.
type Controller[T any] struct {
	desc      resource.Descriptor
	client    Doer
	q         *query.State
	scope     ScopeProvider
	localKeys map[string]struct{}
	match     MatchFunc[T]
	fullSize  int
	logger    *zap.Logger
	metrics   *metrics.Recorder

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	seq     uint64
	items   []T
	total   int
	loading bool
	err     error
	closed  bool
}

// New builds a controller whose lifetime is bound to ctx. It does not fetch;
// call Refresh for the initial load. Later query changes refresh
// automatically.
func New[T any](ctx context.Context, opts Options[T]) *Controller[T] {
	q := opts.Query
	if q == nil {
		q = query.New(opts.PageSize)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fullSize := opts.FullFetchPageSize
	if fullSize <= 0 {
		fullSize = 100
	}
	local := make(map[string]struct{}, len(opts.LocalKeys))
	for _, k := range opts.LocalKeys {
		local[k] = struct{}{}
	}

	cctx, cancel := context.WithCancel(ctx)
	c := &Controller[T]{
		desc:      opts.Descriptor,
		client:    opts.Client,
		q:         q,
		scope:     opts.Scope,
		localKeys: local,
		match:     opts.Match,
		fullSize:  fullSize,
		logger:    logger,
		metrics:   opts.Metrics,
		ctx:       cctx,
		cancel:    cancel,
	}

	if c.desc.Scoped && c.scope != nil {
		if id := c.scope.InstitutionScope().InstitutionID; id != "" && q.Get(query.KeyInstitution) == "" {
			q.Set(query.KeyInstitution, id)
		}
	}

	q.OnChange(func(query.Snapshot) {
		if _, err := c.Refresh(c.ctx); err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, ErrClosed) {
			c.logger.Debug("list refresh failed", zap.String("resource", c.desc.Name), zap.Error(err))
		}
	})
	return c
}

// Query exposes the state driving this controller.
func (c *Controller[T]) Query() *query.State { return c.q }

// Descriptor returns the resource this controller lists.
func (c *Controller[T]) Descriptor() resource.Descriptor { return c.desc }

// SetFilter changes one filter, which triggers exactly one refresh. A locked
// institution scope rejects a different institution.
func (c *Controller[T]) SetFilter(key, value string) (Snapshot[T], error) {
	if key == query.KeyInstitution && c.scopeLocked() && value != c.scope.InstitutionScope().InstitutionID {
		return c.Snapshot(), appErrors.ErrInstitutionScopeLocked
	}
	c.q.Set(key, value)
	return c.current()
}

// SetSearch is SetFilter for the free-text search key.
func (c *Controller[T]) SetSearch(text string) (Snapshot[T], error) {
	return c.SetFilter(query.KeySearch, text)
}

// SetPage moves to a zero-based page.
func (c *Controller[T]) SetPage(page int) (Snapshot[T], error) {
	c.q.SetPage(page)
	return c.current()
}

// SetPageSize changes the page size and returns to the first page.
func (c *Controller[T]) SetPageSize(size int) (Snapshot[T], error) {
	c.q.SetPageSize(size)
	return c.current()
}

func (c *Controller[T]) current() (Snapshot[T], error) {
	snap := c.Snapshot()
	return snap, snap.Err
}

// Snapshot returns the current state without fetching.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	qs := c.q.Snapshot()
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{
		Items:    items,
		Total:    c.total,
		Page:     qs.Page,
		PageSize: qs.PageSize,
		Loading:  c.loading,
		Err:      c.err,
		fallback: c.desc.FetchFallback(),
	}
}

// Refresh fetches the page described by the current query. On failure the
// previous items stay visible and Err is set. A response overtaken by a
// newer Refresh is discarded and ErrStale returned.
func (c *Controller[T]) Refresh(ctx context.Context) (Snapshot[T], error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Snapshot[T]{}, ErrClosed
	}
	c.seq++
	seq := c.seq
	c.loading = true
	c.mu.Unlock()

	qs := c.q.Snapshot()
	if c.scopeLocked() {
		qs.Filters[query.KeyInstitution] = c.scope.InstitutionScope().InstitutionID
	}

	var (
		items []T
		total int
		err   error
	)
	if c.localActive(qs) {
		items, total, err = c.fetchAll(ctx, qs)
	} else {
		items, total, err = c.fetchPage(ctx, qs)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.metrics.RecordDiscarded(c.desc.Name)
		return Snapshot[T]{}, ErrClosed
	}
	if seq != c.seq {
		c.mu.Unlock()
		c.metrics.RecordDiscarded(c.desc.Name)
		c.logger.Debug("discarding stale list response", zap.String("resource", c.desc.Name), zap.Uint64("seq", seq))
		return c.Snapshot(), ErrStale
	}
	c.loading = false
	if err != nil {
		c.err = appErrors.FromError(err)
	} else {
		c.items = items
		c.total = total
		c.err = nil
	}
	c.mu.Unlock()

	snap := c.Snapshot()
	return snap, snap.Err
}

// Close disposes the controller. In-flight responses are dropped.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller[T]) scopeLocked() bool {
	if !c.desc.Scoped || c.scope == nil {
		return false
	}
	scope := c.scope.InstitutionScope()
	return scope.Locked && scope.InstitutionID != ""
}

func (c *Controller[T]) localActive(qs query.Snapshot) bool {
	if c.match == nil {
		return false
	}
	for k := range c.localKeys {
		if qs.Filters[k] != "" {
			return true
		}
	}
	return false
}

func (c *Controller[T]) serverParam(key string) bool {
	if _, local := c.localKeys[key]; local {
		return false
	}
	return c.desc.Accepts(key)
}

func (c *Controller[T]) fetchPage(ctx context.Context, qs query.Snapshot) ([]T, int, error) {
	resp, err := c.client.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   c.desc.Path,
		Query:  qs.Values(c.serverParam),
	})
	if err != nil {
		return nil, 0, err
	}
	var items []T
	if err := resp.Decode(&items); err != nil {
		return nil, 0, err
	}
	total := len(items)
	if resp.Pagination != nil && resp.Pagination.Total > 0 {
		total = resp.Pagination.Total
	}
	return items, total, nil
}

// fetchAll pulls every server page for the server-side filters, applies the
// local predicate and paginates the matches here, so local filters see the
// whole result set rather than one page of it.
func (c *Controller[T]) fetchAll(ctx context.Context, qs query.Snapshot) ([]T, int, error) {
	var all []T
	for page := 0; page < maxFullFetchPages; page++ {
		pageQuery := query.Snapshot{Filters: qs.Filters, Page: page, PageSize: c.fullSize}
		resp, err := c.client.Do(ctx, client.Request{
			Method: http.MethodGet,
			Path:   c.desc.Path,
			Query:  pageQuery.Values(c.serverParam),
		})
		if err != nil {
			return nil, 0, err
		}
		var batch []T
		if err := resp.Decode(&batch); err != nil {
			return nil, 0, err
		}
		all = append(all, batch...)
		if len(batch) < c.fullSize {
			break
		}
		// Without a total the only end marker is a short page.
		if resp.Pagination != nil && resp.Pagination.Total > 0 && len(all) >= resp.Pagination.Total {
			break
		}
	}

	matched := make([]T, 0, len(all))
	for _, item := range all {
		if c.match(item, qs) {
			matched = append(matched, item)
		}
	}

	start := qs.Page * qs.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + qs.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	c.logger.Debug("filtered full result set",
		zap.String("resource", c.desc.Name),
		zap.Int("fetched", len(all)),
		zap.Int("matched", len(matched)),
		zap.String("page", strconv.Itoa(qs.Page)))
	return matched[start:end], len(matched), nil
}
