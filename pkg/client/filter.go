package client

import (
	"strings"
	"sync"
)

// StatusAll is the status filter value that matches every product.
const StatusAll = "todos"

// FilterProducts keeps the products matching status and search, in order.
// A product matches search when its titulo or descricao contains it, ignoring case.
func FilterProducts(list []Product, search, status string) []Product {
	search = strings.ToLower(search)
	status = strings.ToLower(status)

	visible := make([]Product, 0, len(list))
	for _, p := range list {
		if status != StatusAll && strings.ToLower(p.Status) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Titulo), search) &&
			!strings.Contains(strings.ToLower(p.Descricao), search) {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

// Filter holds the search and status the user is editing (pending) and
// the ones last applied. Only applied values affect Visible.
type Filter struct {
	mu sync.Mutex

	pendingSearch string
	pendingStatus string
	appliedSearch string
	appliedStatus string

	memo         []Product
	memoVersion  uint64
	memoSearch   string
	memoStatus   string
	memoValid    bool
	computations int
}

// NewFilter starts with an empty search and status "todos".
func NewFilter() *Filter {
	return &Filter{pendingStatus: StatusAll, appliedStatus: StatusAll}
}

func (f *Filter) SetSearchTerm(term string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingSearch = term
}

func (f *Filter) SetStatus(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingStatus = status
}

// Pending returns the values being edited.
func (f *Filter) Pending() (search, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingSearch, f.pendingStatus
}

// Applied returns the values in effect.
func (f *Filter) Applied() (search, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appliedSearch, f.appliedStatus
}

// Apply commits the pending values.
func (f *Filter) Apply() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appliedSearch = f.pendingSearch
	f.appliedStatus = f.pendingStatus
}

// Visible filters list with the applied values. version identifies list;
// the previous result is reused while version and the applied values are unchanged.
func (f *Filter) Visible(list []Product, version uint64) []Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memoValid && f.memoVersion == version &&
		f.memoSearch == f.appliedSearch && f.memoStatus == f.appliedStatus {
		return f.memo
	}
	f.memo = FilterProducts(list, f.appliedSearch, f.appliedStatus)
	f.memoVersion = version
	f.memoSearch = f.appliedSearch
	f.memoStatus = f.appliedStatus
	f.memoValid = true
	f.computations++
	return f.memo
}
