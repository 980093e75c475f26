// Package query holds the filter and pagination state of one resource list.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Well-known filter keys.
const (
	KeySearch       = "search"
	KeyInstitution  = "institution"
	KeyDepartment   = "department"
	KeyClass        = "class"
	KeySection      = "section"
	KeyGroup        = "group"
	KeyStatus       = "status"
	KeyType         = "type"
	KeyRole         = "role"
	KeyExamType     = "examType"
	KeyAcademicYear = "academicYear"
	KeyCategory     = "category"
)

// Wire names of the pagination parameters.
const (
	ParamPage  = "page"
	ParamLimit = "limit"
)

// Snapshot is an immutable copy of the state.
type Snapshot struct {
	Filters  map[string]string
	Page     int
	PageSize int
}

// Get returns a filter value.
func (s Snapshot) Get(key string) string { return s.Filters[key] }

// State is the mutable query of one list. Page is zero based; the wire
// format is one based. Changing any filter or the page size resets Page to
// zero. Observers run after each effective change, outside the lock.
type State struct {
	mu        sync.Mutex
	filters   map[string]string
	page      int
	pageSize  int
	observers []func(Snapshot)
}

// New returns a state with the given page size (minimum 1).
func New(pageSize int) *State {
	if pageSize < 1 {
		pageSize = 10
	}
	return &State{filters: make(map[string]string), pageSize: pageSize}
}

// OnChange registers fn to run after every effective change.
func (s *State) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Set updates one filter. It reports whether anything changed.
func (s *State) Set(key, value string) bool {
	return s.Apply(map[string]string{key: value})
}

// Apply updates several filters as one change: one notification, one page
// reset.
func (s *State) Apply(updates map[string]string) bool {
	s.mu.Lock()
	changed := false
	for key, value := range updates {
		value = strings.TrimSpace(value)
		if s.filters[key] == value {
			continue
		}
		if value == "" {
			delete(s.filters, key)
		} else {
			s.filters[key] = value
		}
		changed = true
	}
	if changed {
		s.page = 0
	}
	return s.commit(changed)
}

// Reset clears every filter and returns to the first page.
func (s *State) Reset() bool {
	s.mu.Lock()
	changed := len(s.filters) > 0 || s.page != 0
	s.filters = make(map[string]string)
	s.page = 0
	return s.commit(changed)
}

// SetPage moves to a zero-based page.
func (s *State) SetPage(page int) bool {
	if page < 0 {
		page = 0
	}
	s.mu.Lock()
	changed := s.page != page
	s.page = page
	return s.commit(changed)
}

// SetPageSize changes the page size and always returns to the first page.
func (s *State) SetPageSize(size int) bool {
	if size < 1 {
		size = 1
	}
	s.mu.Lock()
	changed := s.pageSize != size
	if changed {
		s.pageSize = size
		s.page = 0
	}
	return s.commit(changed)
}

// commit must be called with mu held; it releases it.
func (s *State) commit(changed bool) bool {
	if !changed {
		s.mu.Unlock()
		return false
	}
	snap := s.snapshotLocked()
	observers := append([]func(Snapshot){}, s.observers...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(snap)
	}
	return true
}

// Get returns a filter value.
func (s *State) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters[key]
}

// Page returns the zero-based page.
func (s *State) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// PageSize returns the page size.
func (s *State) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	filters := make(map[string]string, len(s.filters))
	for k, v := range s.filters {
		filters[k] = v
	}
	return Snapshot{Filters: filters, Page: s.page, PageSize: s.pageSize}
}

// Values renders the snapshot for the wire: non-empty filters accepted by
// allow (nil allows all), plus page and limit.
func (s Snapshot) Values(allow func(key string) bool) url.Values {
	values := url.Values{}
	for k, v := range s.Filters {
		if v == "" {
			continue
		}
		if allow != nil && !allow(k) {
			continue
		}
		values.Set(k, v)
	}
	values.Set(ParamPage, strconv.Itoa(s.Page+1))
	values.Set(ParamLimit, strconv.Itoa(s.PageSize))
	return values
}

// Encode is Values(nil).Encode().
func (s Snapshot) Encode() string {
	return s.Values(nil).Encode()
}

// Keys returns the set filter keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
