package client

import (
	"sort"
	"sync"
	"time"
)

// DefaultTypingTTL bounds how long a typing indicator may linger when the
// matching stop event never arrives. The relay guarantees no delivery, so
// every receiver must expire stale indicators on its own.
const DefaultTypingTTL = 6 * time.Second

// TypingUser is the metadata shown next to a typing indicator.
type TypingUser struct {
	UserID      string
	UserName    string
	IsAnonymous bool
}

type trackerEntry struct {
	user  TypingUser
	timer *time.Timer
}

// Tracker maintains the receive side of the typing indicator for one
// topic view: user-typing adds an entry, user-stopped-typing removes it,
// and a per-entry TTL removes it anyway when the stop event is lost.
type Tracker struct {
	ttl      time.Duration
	onChange func([]TypingUser)

	mu      sync.Mutex
	entries map[string]*trackerEntry
	stopped bool
}

// NewTracker creates a tracker with the given TTL; zero means
// DefaultTypingTTL. onChange may be nil; otherwise it receives the full
// typing set after every change, sorted by user id.
func NewTracker(ttl time.Duration, onChange func([]TypingUser)) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &Tracker{
		ttl:      ttl,
		onChange: onChange,
		entries:  make(map[string]*trackerEntry),
	}
}

// Set records a user-typing event, resetting the TTL when the user is
// already tracked.
func (t *Tracker) Set(user TypingUser) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	if entry, ok := t.entries[user.UserID]; ok {
		entry.timer.Stop()
	}
	userID := user.UserID
	t.entries[userID] = &trackerEntry{
		user:  user,
		timer: time.AfterFunc(t.ttl, func() { t.Clear(userID) }),
	}
	t.mu.Unlock()

	t.notify()
}

// Clear records a user-stopped-typing event. No-op for unknown users.
func (t *Tracker) Clear(userID string) {
	t.mu.Lock()
	entry, ok := t.entries[userID]
	if ok {
		entry.timer.Stop()
		delete(t.entries, userID)
	}
	t.mu.Unlock()

	if ok {
		t.notify()
	}
}

// Users returns everyone currently typing, sorted by user id.
func (t *Tracker) Users() []TypingUser {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usersLocked()
}

func (t *Tracker) usersLocked() []TypingUser {
	users := make([]TypingUser, 0, len(t.entries))
	for _, entry := range t.entries {
		users = append(users, entry.user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].UserID < users[j].UserID
	})
	return users
}

// Stop cancels all TTL timers and drops every entry.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for userID, entry := range t.entries {
		entry.timer.Stop()
		delete(t.entries, userID)
	}
}

func (t *Tracker) notify() {
	if t.onChange == nil {
		return
	}
	t.mu.Lock()
	users := t.usersLocked()
	t.mu.Unlock()
	t.onChange(users)
}
