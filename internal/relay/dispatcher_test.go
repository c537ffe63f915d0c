package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func join(t *testing.T, d *Dispatcher, conn *mockConn, topicID string) {
	t.Helper()
	frame, err := json.Marshal(map[string]any{"event": "join-topic", "data": map[string]string{"topicId": topicID}})
	require.NoError(t, err)
	d.HandleEvent(conn, frame)
	require.True(t, d.Registry().IsMember(conn.ID(), topicID))
}

func decodeFrames(t *testing.T, frames [][]byte) []Envelope {
	t.Helper()
	envelopes := make([]Envelope, 0, len(frames))
	for _, frame := range frames {
		var envelope Envelope
		require.NoError(t, json.Unmarshal(frame, &envelope))
		envelopes = append(envelopes, envelope)
	}
	return envelopes
}

func TestDispatcherNewComment(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	c := &mockConn{id: "c"}
	join(t, d, a, "t1")
	join(t, d, b, "t1")
	join(t, d, c, "t1")

	d.HandleEvent(a, []byte(`{"event":"new-comment","data":{"topicId":"t1","comment":{"id":"c1","content":"hi"}}}`))

	assert.Empty(t, a.getReceived(), "sender receives nothing")
	for _, receiver := range []*mockConn{b, c} {
		frames := decodeFrames(t, receiver.getReceived())
		require.Len(t, frames, 1, "receiver %s", receiver.ID())
		assert.Equal(t, EventCommentAdded, frames[0].Event)

		var comment struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		}
		require.NoError(t, json.Unmarshal(frames[0].Data, &comment))
		assert.Equal(t, "c1", comment.ID)
		assert.Equal(t, "hi", comment.Content)
	}
}

func TestDispatcherNoCrossTopicDelivery(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	join(t, d, a, "t1")
	join(t, d, b, "t2")

	d.HandleEvent(a, []byte(`{"event":"new-comment","data":{"topicId":"t1","comment":{"id":"c1"}}}`))

	assert.Empty(t, b.getReceived())
}

func TestDispatcherCommentDeleted(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	join(t, d, a, "t1")
	join(t, d, b, "t1")

	d.HandleEvent(a, []byte(`{"event":"comment-deleted","data":{"topicId":"t1","commentId":"c9"}}`))

	frames := decodeFrames(t, b.getReceived())
	require.Len(t, frames, 1)
	assert.Equal(t, EventCommentDeleted, frames[0].Event)

	var commentID string
	require.NoError(t, json.Unmarshal(frames[0].Data, &commentID))
	assert.Equal(t, "c9", commentID)
}

func TestDispatcherTypingFlow(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	c := &mockConn{id: "c"}
	join(t, d, a, "t1")
	join(t, d, b, "t1")
	join(t, d, c, "t1")

	d.HandleEvent(a, []byte(`{"event":"user-typing","data":{"topicId":"t1","userId":"u1","userName":"Alice","isAnonymous":true}}`))
	d.HandleEvent(a, []byte(`{"event":"user-stopped-typing","data":{"topicId":"t1","userId":"u1"}}`))

	frames := decodeFrames(t, b.getReceived())
	require.Len(t, frames, 2)

	assert.Equal(t, EventUserTyping, frames[0].Event)
	var typing TypingState
	require.NoError(t, json.Unmarshal(frames[0].Data, &typing))
	assert.Equal(t, "u1", typing.UserID)
	assert.Equal(t, "Alice", typing.UserName)
	assert.True(t, typing.IsAnonymous)
	assert.Empty(t, typing.TopicID, "topic id is not repeated to room members")

	assert.Equal(t, EventUserStoppedTyping, frames[1].Event)
	var stopped TypingState
	require.NoError(t, json.Unmarshal(frames[1].Data, &stopped))
	assert.Equal(t, "u1", stopped.UserID)
	assert.Empty(t, stopped.UserName)

	// a vanishes without leave-topic; the remaining members still converse
	d.HandleDisconnect("a")
	d.HandleEvent(c, []byte(`{"event":"new-comment","data":{"topicId":"t1","comment":{"id":"c2"}}}`))

	frames = decodeFrames(t, b.getReceived())
	require.Len(t, frames, 3)
	assert.Equal(t, EventCommentAdded, frames[2].Event)
	assert.Empty(t, a.getReceived())
}

func TestDispatcherLeaveTopic(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	join(t, d, a, "t1")
	join(t, d, b, "t1")

	d.HandleEvent(b, []byte(`{"event":"leave-topic","data":{"topicId":"t1"}}`))
	assert.False(t, d.Registry().IsMember("b", "t1"))

	d.HandleEvent(a, []byte(`{"event":"new-comment","data":{"topicId":"t1","comment":{"id":"c1"}}}`))
	assert.Empty(t, b.getReceived())
}

func TestDispatcherJoinWithBareString(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	a := &mockConn{id: "a"}

	d.HandleEvent(a, []byte(`{"event":"join-topic","data":"t1"}`))
	assert.True(t, d.Registry().IsMember("a", "t1"))

	d.HandleEvent(a, []byte(`{"event":"leave-topic","data":"t1"}`))
	assert.False(t, d.Registry().IsMember("a", "t1"))
}

func TestDispatcherMalformedEvents(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	join(t, d, a, "t1")
	join(t, d, b, "t1")

	malformed := [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"event":"new-comment","data":{"comment":{"id":"c1"}}}`),           // missing topicId
		[]byte(`{"event":"user-typing","data":{"userId":"u1"}}`),                   // missing topicId
		[]byte(`{"event":"comment-added","data":{"topicId":"t1"}}`),                // server-side event name
		[]byte(`{"event":"rocket-launch","data":{"topicId":"t1"}}`),                // unknown event
		[]byte(`{"event":"join-topic","data":{}}`),                                 // empty topic id
		[]byte(`{"event":"comment-deleted","data":{"commentId":"c1"}}`),            // missing topicId
	}
	for _, frame := range malformed {
		d.HandleEvent(a, frame)
	}
	assert.Empty(t, b.getReceived(), "malformed events produce no broadcast")

	// the dispatch loop survives and keeps delivering valid events
	d.HandleEvent(a, []byte(`{"event":"new-comment","data":{"topicId":"t1","comment":{"id":"c1"}}}`))
	assert.Len(t, b.getReceived(), 1)
}
