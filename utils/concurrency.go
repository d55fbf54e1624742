package utils

import (
	"fmt"
	"strings"
	"sync"
)

// ForkJoin runs a fixed set of tasks concurrently, one goroutine each, and
// waits for all of them. A panicking task is turned into an error so that its
// siblings still complete.
type ForkJoin struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs map[string]error
}

// NewForkJoin creates an empty ForkJoin.
func NewForkJoin() *ForkJoin {
	return &ForkJoin{errs: make(map[string]error)}
}

// Go starts task under the given name.
func (f *ForkJoin) Go(name string, task func() error) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				f.record(name, fmt.Errorf("panic: %v", r))
			}
		}()
		if err := task(); err != nil {
			f.record(name, err)
		}
	}()
}

// Wait blocks until every task has returned and reports per-task errors.
func (f *ForkJoin) Wait() map[string]error {
	f.wg.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]error, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *ForkJoin) record(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

// URLSet is a thread-safe set for tracking seen URLs.
type URLSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
// Trailing slashes and fragments are ignored.
func (s *URLSet) Add(url string) bool {
	key := canonicalURL(url)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Contains returns true if the URL has already been seen.
func (s *URLSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[canonicalURL(url)]
	return exists
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

func canonicalURL(u string) string {
	u = strings.TrimSpace(u)
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}
