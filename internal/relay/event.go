// Package relay fans events out to the connections viewing the same topic.
// It is a best-effort notification path: nothing is persisted, nothing is
// validated against the store, and a dropped event self-heals on the next
// REST fetch.
package relay

import "encoding/json"

// EventType names an event on the wire.
type EventType string

// Client-to-server events.
const (
	EventJoinTopic         EventType = "join-topic"
	EventLeaveTopic        EventType = "leave-topic"
	EventNewComment        EventType = "new-comment"
	EventCommentDeleted    EventType = "comment-deleted"
	EventUserTyping        EventType = "user-typing"
	EventUserStoppedTyping EventType = "user-stopped-typing"
)

// Server-to-client events. The typing and deletion names are shared with
// the inbound side.
const (
	EventCommentAdded EventType = "comment-added"
)

// inboundEvents lists every event a client may send.
var inboundEvents = map[EventType]bool{
	EventJoinTopic:         true,
	EventLeaveTopic:        true,
	EventNewComment:        true,
	EventCommentDeleted:    true,
	EventUserTyping:        true,
	EventUserStoppedTyping: true,
}

func (e EventType) String() string {
	return string(e)
}

// Inbound reports whether clients are allowed to emit this event.
func (e EventType) Inbound() bool {
	return inboundEvents[e]
}

// Envelope is the JSON frame exchanged in both directions.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope renders an outbound frame.
func NewEnvelope(event EventType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// TopicRef carries the topic id for join-topic and leave-topic. The
// original client emits the bare topic id string, so both shapes decode.
type TopicRef struct {
	TopicID string `json:"topicId"`
}

func decodeTopicRef(data json.RawMessage) (TopicRef, error) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return TopicRef{TopicID: id}, nil
	}
	var ref TopicRef
	err := json.Unmarshal(data, &ref)
	return ref, err
}

// CommentAnnouncement carries a freshly stored comment as an opaque blob.
// The relay never inspects the comment itself.
type CommentAnnouncement struct {
	TopicID string          `json:"topicId"`
	Comment json.RawMessage `json:"comment"`
}

// DeletionAnnouncement says a comment was removed through the REST layer.
type DeletionAnnouncement struct {
	TopicID   string `json:"topicId"`
	CommentID string `json:"commentId"`
}

// TypingState is the transient typing-presence payload.
type TypingState struct {
	TopicID     string `json:"topicId,omitempty"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName,omitempty"`
	IsAnonymous bool   `json:"isAnonymous,omitempty"`
}
