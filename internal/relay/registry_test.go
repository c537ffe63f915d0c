package relay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	id       string
	mu       sync.Mutex
	received [][]byte
	sendErr  error
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, data)
	return nil
}

func (m *mockConn) getReceived() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received
}

func TestRegistryJoinLeave(t *testing.T) {
	r := NewRegistry()
	conn := &mockConn{id: "c1"}

	r.Join(conn, "t1")
	assert.True(t, r.IsMember("c1", "t1"))

	r.Leave("c1", "t1")
	assert.False(t, r.IsMember("c1", "t1"))

	// leave of a non-member is a no-op
	r.Leave("c1", "t1")
	r.Leave("c2", "never-created")

	rooms, conns := r.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, conns)
}

func TestRegistryJoinIdempotent(t *testing.T) {
	r := NewRegistry()
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}

	r.Join(a, "t1")
	r.Join(a, "t1")
	r.Join(b, "t1")

	got := r.BroadcastTo("t1", "b", []byte("x"))
	assert.Equal(t, 1, got, "double join must not duplicate delivery")
	assert.Len(t, a.getReceived(), 1)
}

func TestRegistryRemoveConnection(t *testing.T) {
	r := NewRegistry()
	conn := &mockConn{id: "c1"}
	other := &mockConn{id: "c2"}

	r.Join(conn, "t1")
	r.Join(conn, "t2")
	r.Join(other, "t1")

	r.RemoveConnection("c1")
	assert.False(t, r.IsMember("c1", "t1"))
	assert.False(t, r.IsMember("c1", "t2"))
	assert.True(t, r.IsMember("c2", "t1"))

	// idempotent, and safe for a connection that never joined
	r.RemoveConnection("c1")
	r.RemoveConnection("ghost")

	rooms, conns := r.Stats()
	assert.Equal(t, 1, rooms, "empty room t2 must be collected")
	assert.Equal(t, 1, conns)
}

func TestRegistryBroadcastExcludesSender(t *testing.T) {
	r := NewRegistry()
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	c := &mockConn{id: "c"}
	outsider := &mockConn{id: "d"}

	r.Join(a, "t1")
	r.Join(b, "t1")
	r.Join(c, "t1")
	r.Join(outsider, "t2")

	delivered := r.BroadcastTo("t1", "a", []byte("hello"))

	require.Equal(t, 2, delivered)
	assert.Empty(t, a.getReceived(), "sender must not be echoed")
	assert.Len(t, b.getReceived(), 1)
	assert.Len(t, c.getReceived(), 1)
	assert.Empty(t, outsider.getReceived(), "non-members must receive nothing")
}

func TestRegistryBroadcastUnknownRoom(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.BroadcastTo("nowhere", "a", []byte("x")))
}

func TestRegistryBroadcastSendFailure(t *testing.T) {
	r := NewRegistry()
	broken := &mockConn{id: "broken", sendErr: assert.AnError}
	ok := &mockConn{id: "ok"}

	r.Join(broken, "t1")
	r.Join(ok, "t1")

	delivered := r.BroadcastTo("t1", "sender", []byte("x"))
	assert.Equal(t, 1, delivered)
	assert.Len(t, ok.getReceived(), 1)
	// a failed send does not evict the member; the client re-syncs via REST
	assert.True(t, r.IsMember("broken", "t1"))
}

func TestRegistryConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conn := &mockConn{id: string(rune('A' + n%26))}
			r.Join(conn, "t1")
			r.BroadcastTo("t1", conn.ID(), []byte("x"))
			r.RemoveConnection(conn.ID())
		}(i)
	}
	wg.Wait()

	rooms, conns := r.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, conns)
}
