package summary

import (
	"sync"

	"github.com/diego200052/lockpair/pkg/astate"
)

// Store is the default in-memory SummaryStore (satisfies ir.SummaryStore):
// a map from procedure name to its latest published exit state, guarded by
// a RWMutex since the scheduler (pkg/schedule) reads and writes it
// concurrently across worker goroutines.
type Store struct {
	mu   sync.RWMutex
	data map[string]astate.State
}

func NewStore() *Store {
	return &Store{data: make(map[string]astate.State)}
}

func (s *Store) Get(proc string) (astate.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[proc]
	return st, ok
}

// Put publishes proc's summary, joining with whatever was previously
// published rather than overwriting it: a procedure may be re-analyzed as
// its callees' summaries improve, and each re-analysis's result must only
// ever grow the published summary — integration is monotonic and
// idempotent — never shrink it.
func (s *Store) Put(proc string, st astate.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.data[proc]; ok {
		st = prev.Join(st)
	}
	s.data[proc] = st
}
