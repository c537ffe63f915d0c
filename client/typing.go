package client

import (
	"sync"
	"time"
)

// DefaultTypingIdle is how long after the last keystroke the typing
// indicator is withdrawn.
const DefaultTypingIdle = 2 * time.Second

type typingEmitter interface {
	EmitTyping(topicID, userID, userName string, isAnonymous bool) error
	EmitStoppedTyping(topicID, userID string) error
}

// Typist drives the emit side of the typing indicator for one composer.
// The first keystroke after an idle period announces user-typing; the
// inactivity timer withdraws it. The relay keeps no typing state, so the
// pairing of start and stop events is entirely this type's job.
type Typist struct {
	emitter     typingEmitter
	topicID     string
	userID      string
	userName    string
	isAnonymous bool
	idle        time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	typing bool
}

func NewTypist(emitter typingEmitter, topicID, userID, userName string, isAnonymous bool) *Typist {
	return &Typist{
		emitter:     emitter,
		topicID:     topicID,
		userID:      userID,
		userName:    userName,
		isAnonymous: isAnonymous,
		idle:        DefaultTypingIdle,
	}
}

// SetIdle overrides the inactivity window. Must be called before the
// first keystroke.
func (t *Typist) SetIdle(idle time.Duration) {
	t.idle = idle
}

// Keystroke records input activity: announces typing on the first stroke
// and resets the inactivity timer on every stroke.
func (t *Typist) Keystroke() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.typing {
		t.typing = true
		_ = t.emitter.EmitTyping(t.topicID, t.userID, t.userName, t.isAnonymous)
	}

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.idle, t.timerExpired)
}

func (t *Typist) timerExpired() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.typing {
		t.typing = false
		_ = t.emitter.EmitStoppedTyping(t.topicID, t.userID)
	}
}

// Submit withdraws the typing indicator immediately, for use right before
// announcing the submitted comment.
func (t *Typist) Submit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	if t.typing {
		t.typing = false
		_ = t.emitter.EmitStoppedTyping(t.topicID, t.userID)
	}
}

// Stop cancels the timer without emitting anything, for teardown.
func (t *Typist) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.typing = false
}
