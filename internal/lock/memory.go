package lock

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
)

// MemoryLocker is a keyed mutex for a single process. Idle keys are
// forgotten once nobody holds or waits for them.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*entry)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (Lock, error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return &memoryLock{owner: l, key: key, e: e}, nil
	case <-ctx.Done():
		l.drop(key, e)
		return nil, apperr.Wrap(apperr.CodeBusy, ctx.Err(), key)
	}
}

func (l *MemoryLocker) drop(key string, e *entry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// held reports the number of keys currently tracked.
func (l *MemoryLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

type memoryLock struct {
	owner *MemoryLocker
	key   string
	e     *entry
	once  sync.Once
}

func (m *memoryLock) Release(context.Context) error {
	m.once.Do(func() {
		<-m.e.ch
		m.owner.drop(m.key, m.e)
	})
	return nil
}
