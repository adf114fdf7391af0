package service

import "sync"

// sessionLocks hands out one mutex per session id. An entry lives only while
// some request holds or waits for it.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{entries: make(map[string]*sessionLock)}
}

// lock blocks until the session is free and returns its unlock func.
func (l *sessionLocks) lock(sessionID string) func() {

	l.mu.Lock()
	entry, ok := l.entries[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.entries[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, sessionID)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}
