package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	leases map[string]memoryEntry
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemoryLocker(clock clockwork.Clock) *MemoryLocker {
	return &MemoryLocker{
		clock:  clock,
		leases: make(map[string]memoryEntry),
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()

	if entry, ok := l.leases[key]; ok && now.Before(entry.expiresAt) {
		return nil, ErrLocked
	}

	token := uuid.NewString()
	l.leases[key] = memoryEntry{token: token, expiresAt: now.Add(ttl)}

	return &memoryLease{locker: l, key: key, token: token}, nil
}

type memoryLease struct {
	locker *MemoryLocker
	key    string
	token  string
}

func (m *memoryLease) Release(_ context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()

	if entry, ok := m.locker.leases[m.key]; ok && entry.token == m.token {
		delete(m.locker.leases, m.key)
	}

	return nil
}
