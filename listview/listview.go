// Package listview drives the paginated list screens: fetch, search with
// debounce, filters, paging, delete behind a confirmation and the feature
// toggle. Every mutation is followed by a refetch.
package listview

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/models"
	"tripdesk/resources"
	"tripdesk/toast"
)

var (
	ErrNotConfirmed = errors.New("delete was not confirmed")
	ErrNotSupported = errors.New("action not supported for this list")
	ErrSuperseded   = errors.New("superseded by a newer load")
	ErrClosed       = errors.New("list is closed")
)

const (
	DefaultLimit    = 10
	DefaultDebounce = 500 * time.Millisecond
)

type Query struct {
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Search  string            `json:"search"`
	Filters map[string]string `json:"filters,omitempty"`
}

func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for k, val := range q.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

func (q Query) clone() Query {
	cp := q
	cp.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		cp.Filters[k] = v
	}
	return cp
}

// State is what a list screen renders.
type State[T any] struct {
	Resource   string            `json:"resource"`
	Items      []T               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
	Pages      []int             `json:"pages"`
	Query      Query             `json:"query"`
	Loading    bool              `json:"loading"`
	Error      string            `json:"error,omitempty"`
	Featurable bool              `json:"featurable"`
	Deletable  bool              `json:"deletable"`
}

// Screen is the untyped face of a Controller, used where the item type is
// only known at runtime.
type Screen interface {
	Name() string
	Load(ctx context.Context) error
	SetSearch(text string)
	SetFilter(ctx context.Context, key, value string) error
	GoTo(ctx context.Context, page int) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	ApplyFilter(key, value string) error
	ApplyPage(page int)
	ApplyStep(delta int) bool
	Delete(ctx context.Context, id string, confirmed bool) error
	ToggleFeature(ctx context.Context, id string, current bool) error
	Snapshot() any
	Close()
}

type Options struct {
	Query    Query
	Debounce time.Duration
	Notifier toast.Notifier
	Recorder activity.Recorder
	// OnChange runs after every state change, outside the lock.
	OnChange func()
	// OnMutation runs after a successful delete or feature toggle.
	OnMutation func(ctx context.Context, resource string)
}

type Controller[T any] struct {
	res      *resources.Resource
	client   *apiclient.Client
	notify   toast.Notifier
	rec      activity.Recorder
	onChange func()
	onMut    func(context.Context, string)
	debounce *Debouncer

	life   context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	query      Query
	items      []T
	pagination models.Pagination
	loading    bool
	errMsg     string
	seq        uint64
	inflight   context.CancelFunc
	closed     bool
}

// New binds a controller to res. Everything it fetches is cancelled when ctx
// ends or Close is called.
func New[T any](ctx context.Context, client *apiclient.Client, res *resources.Resource, opts Options) *Controller[T] {
	life, cancel := context.WithCancel(ctx)
	q := opts.Query.clone()
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	delay := opts.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	c := &Controller[T]{
		res:      res,
		client:   client,
		notify:   opts.Notifier,
		rec:      opts.Recorder,
		onChange: opts.OnChange,
		onMut:    opts.OnMutation,
		debounce: NewDebouncer(delay),
		life:     life,
		cancel:   cancel,
		query:    q,
	}
	if c.notify == nil {
		c.notify = toast.Discard{}
	}
	if c.rec == nil {
		c.rec = activity.Nop{}
	}
	return c
}

func (c *Controller[T]) Name() string { return c.res.Name }

func (c *Controller[T]) label() string { return strings.ToLower(c.res.Label) }

func (c *Controller[T]) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller[T]) begin(ctx context.Context) (context.Context, func(), uint64, Query, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil, 0, Query{}, ErrClosed
	}
	c.seq++
	if c.inflight != nil {
		c.inflight()
	}
	reqCtx, cancel := context.WithCancel(c.life)
	stop := context.AfterFunc(ctx, cancel)
	c.inflight = cancel
	c.loading = true
	return reqCtx, func() { stop(); cancel() }, c.seq, c.query.clone(), nil
}

// finish applies a load result unless a newer load was issued meanwhile.
func (c *Controller[T]) finish(seq uint64, items []T, pg models.Pagination, err error) error {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.loading = false
	c.inflight = nil
	if err != nil {
		c.errMsg = apiclient.Message(err, "Failed to load "+c.label()+" list")
	} else {
		c.items = items
		c.pagination = pg
		c.errMsg = ""
	}
	c.mu.Unlock()
	c.changed()

	if err != nil {
		log.Printf("[listview] %s: %v", c.res.Name, err)
		if c.life.Err() == nil && !errors.Is(err, context.Canceled) {
			toast.Fail(c.notify, err, "Failed to load "+c.label()+" list")
		}
	}
	return err
}

// Load fetches the current query. The most recently issued load wins: an
// older one still in flight is cancelled and its result dropped.
func (c *Controller[T]) Load(ctx context.Context) (err error) {
	reqCtx, done, seq, q, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer done()
	c.changed()

	var items []T
	var pg models.Pagination
	defer func() { err = c.finish(seq, items, pg, err) }()

	env, err := c.client.GetJSON(reqCtx, c.res.List, q.Values(), nil)
	if err != nil {
		return err
	}
	items, pg, err = DecodeList[T](env.Data, c.res.ItemsKey)
	if err != nil {
		return err
	}
	if pg.Page == 0 {
		pg.Page = q.Page
	}
	if pg.TotalPages == 0 && len(items) > 0 {
		pg.TotalPages = 1
	}
	return nil
}

func (c *Controller[T]) refetch(ctx context.Context) error {
	if err := c.Load(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

// SetSearch goes back to page 1 and loads once typing has paused.
func (c *Controller[T]) SetSearch(text string) {
	c.mu.Lock()
	c.query.Search = text
	c.query.Page = 1
	c.mu.Unlock()
	c.changed()

	c.debounce.Trigger(func() {
		c.Load(c.life)
	})
}

// ApplyFilter sets or clears one filter and goes back to page 1 without
// loading.
func (c *Controller[T]) ApplyFilter(key, value string) error {
	allowed := false
	for _, f := range c.res.Filters {
		if f == key {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrNotSupported
	}

	c.mu.Lock()
	if value == "" {
		delete(c.query.Filters, key)
	} else {
		c.query.Filters[key] = value
	}
	c.query.Page = 1
	c.mu.Unlock()
	c.changed()
	return nil
}

// ApplyPage moves to page, clamped to the known range, without loading.
func (c *Controller[T]) ApplyPage(page int) {
	c.mu.Lock()
	c.query.Page = c.clampPage(page)
	c.mu.Unlock()
	c.changed()
}

// ApplyStep moves delta pages from the current one without loading. It
// reports false when already at the first or last page.
func (c *Controller[T]) ApplyStep(delta int) bool {
	c.mu.Lock()
	page := c.query.Page + delta
	if page < 1 || (delta > 0 && page > c.pagination.TotalPages) {
		c.mu.Unlock()
		return false
	}
	c.query.Page = page
	c.mu.Unlock()
	c.changed()
	return true
}

// clampPage must be called with c.mu held.
func (c *Controller[T]) clampPage(page int) int {
	if total := c.pagination.TotalPages; total > 0 && page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) error {
	if err := c.ApplyFilter(key, value); err != nil {
		return err
	}
	return c.refetch(ctx)
}

func (c *Controller[T]) GoTo(ctx context.Context, page int) error {
	c.ApplyPage(page)
	return c.refetch(ctx)
}

func (c *Controller[T]) Next(ctx context.Context) error {
	if !c.ApplyStep(1) {
		return nil
	}
	return c.refetch(ctx)
}

func (c *Controller[T]) Prev(ctx context.Context) error {
	if !c.ApplyStep(-1) {
		return nil
	}
	return c.refetch(ctx)
}

// Pages lists the page numbers the pagination control shows.
func (c *Controller[T]) Pages() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pageList(c.pagination.TotalPages)
}

func pageList(total int) []int {
	pages := make([]int, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Delete removes id. Without confirmation nothing is sent.
func (c *Controller[T]) Delete(ctx context.Context, id string, confirmed bool) error {
	if !c.res.Deletable() {
		return ErrNotSupported
	}
	if !confirmed {
		return ErrNotConfirmed
	}

	env, err := c.client.Delete(ctx, c.res.Delete.With(id).Path)
	if err != nil {
		toast.Fail(c.notify, err, "Failed to delete "+c.label())
		return err
	}
	c.notify.Success(messageOr(env, c.res.Label+" deleted successfully"))
	activity.Log(ctx, c.rec, activity.Delete, c.res.Name, id, "")
	c.mutated(ctx)
	return c.refetch(ctx)
}

// ToggleFeature asks the backend to flip the flag from current, then
// refetches rather than patching the row locally.
func (c *Controller[T]) ToggleFeature(ctx context.Context, id string, current bool) error {
	if !c.res.Featurable() {
		return ErrNotSupported
	}

	next := strconv.FormatBool(!current)
	env, err := c.client.Patch(ctx, c.res.Feature.With(id).Path, url.Values{"isfeature": {next}})
	if err != nil {
		toast.Fail(c.notify, err, "Failed to update feature status")
		return err
	}
	c.notify.Success(messageOr(env, "Feature status updated"))
	activity.Log(ctx, c.rec, activity.Feature, c.res.Name, id, "isfeature="+next)
	c.mutated(ctx)
	return c.refetch(ctx)
}

func (c *Controller[T]) mutated(ctx context.Context) {
	if c.onMut != nil {
		c.onMut(ctx, c.res.Name)
	}
}

func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T]{
		Resource:   c.res.Name,
		Items:      items,
		Pagination: c.pagination,
		Pages:      pageList(c.pagination.TotalPages),
		Query:      c.query.clone(),
		Loading:    c.loading,
		Error:      c.errMsg,
		Featurable: c.res.Featurable(),
		Deletable:  c.res.Deletable(),
	}
}

func (c *Controller[T]) Snapshot() any { return c.State() }

// Close cancels in-flight loads and any pending search.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.debounce.Stop()
	c.cancel()
}

func messageOr(env *apiclient.Envelope, fallback string) string {
	if env != nil && env.Message != "" {
		return env.Message
	}
	return fallback
}
