package backfill

import (
	"sync"

	"github.com/huangsam/stationsync/schema"
)

// seriesLocks hands out one mutex per series key so that a key is never
// resolved and written by two workers at once.
type seriesLocks struct {
	mu   sync.Mutex
	held map[schema.SeriesKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newSeriesLocks() *seriesLocks {
	return &seriesLocks{held: make(map[schema.SeriesKey]*keyLock)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (l *seriesLocks) Lock(key schema.SeriesKey) func() {
	l.mu.Lock()
	kl, ok := l.held[key]
	if !ok {
		kl = &keyLock{}
		l.held[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.held, key)
		}
		l.mu.Unlock()
	}
}

// size is the number of keys currently locked or waited on.
func (l *seriesLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}
