package client

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ProductLister fetches the product list. *Client implements it.
type ProductLister interface {
	ListProducts(ctx context.Context, creds Credentials) ([]Product, error)
}

// QueryState is a snapshot of the product list query.
// Data is shared between snapshots and must not be modified.
type QueryState struct {
	Data      []Product
	IsLoading bool
	IsError   bool
	Err       error
	// Version increases each time Data is replaced.
	Version uint64
}

// ProductQuery caches the product list until it is invalidated.
type ProductQuery struct {
	lister ProductLister
	creds  func() Credentials
	group  singleflight.Group

	mu         sync.Mutex
	data       []Product
	err        error
	fresh      bool
	generation uint64
	applied    uint64
	version    uint64

	unsubscribe func()
}

// NewProductQuery creates a query that refetches after ListChanged on bus.
// bus may be nil.
func NewProductQuery(lister ProductLister, creds func() Credentials, bus *EventBus) *ProductQuery {
	q := &ProductQuery{lister: lister, creds: creds}
	if bus != nil {
		q.unsubscribe = bus.Subscribe(ListChanged, q.Invalidate)
	}
	return q
}

// Read returns the cached list, fetching it first when it is missing or stale.
// Concurrent reads of the same generation share one request, which outlives
// any single caller; a caller whose ctx ends gets ctx.Err() without the shared
// state changing.
func (q *ProductQuery) Read(ctx context.Context) QueryState {
	q.mu.Lock()
	if q.fresh {
		defer q.mu.Unlock()
		return q.snapshot()
	}
	gen := q.generation
	q.mu.Unlock()

	ch := q.group.DoChan(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultTimeout)
		defer cancel()
		return q.lister.ListProducts(fetchCtx, q.creds())
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		q.mu.Lock()
		defer q.mu.Unlock()
		state := q.snapshot()
		state.IsLoading = false
		state.IsError = true
		state.Err = ctx.Err()
		return state
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if gen < q.applied {
		// a fetch started after this one already landed
		return q.snapshot()
	}
	q.applied = gen
	if res.Err != nil {
		q.err = res.Err
		q.data = nil
		q.version++
		// an error is shown but the next read tries again
		q.fresh = false
		return q.snapshot()
	}
	q.err = nil
	q.data = res.Val.([]Product)
	if q.data == nil {
		q.data = []Product{}
	}
	q.version++
	q.fresh = q.generation == gen
	return q.snapshot()
}

// State returns the current snapshot without fetching.
func (q *ProductQuery) State() QueryState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot()
}

// Invalidate marks the cached list stale; the next Read refetches.
func (q *ProductQuery) Invalidate() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fresh = false
	q.generation++
}

// Close stops listening for invalidation events.
func (q *ProductQuery) Close() {
	if q.unsubscribe != nil {
		q.unsubscribe()
	}
}

func (q *ProductQuery) snapshot() QueryState {
	return QueryState{
		Data:      q.data,
		IsLoading: q.data == nil && q.err == nil,
		IsError:   q.err != nil,
		Err:       q.err,
		Version:   q.version,
	}
}
