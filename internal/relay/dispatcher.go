package relay

import (
	"encoding/json"

	"github.com/teamboard-dev/teamboard-server/internal/logger"
)

// Dispatcher routes inbound frames from one connection to the right room.
// Every broadcast excludes the sender: the origin already applied the
// change locally before announcing it.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// HandleEvent processes one inbound frame. Malformed frames are dropped
// with a warning and never abort the caller's read loop.
func (d *Dispatcher) HandleEvent(conn Sender, raw []byte) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		logger.WarnF("[%s] Fail to parse event frame, details: %v", conn.ID(), err)
		return
	}

	if !envelope.Event.Inbound() {
		logger.WarnF("[%s] %s event has not been supported", conn.ID(), envelope.Event)
		return
	}

	switch envelope.Event {
	case EventJoinTopic:
		ref, err := decodeTopicRef(envelope.Data)
		if err != nil || ref.TopicID == "" {
			d.dropEvent(conn, envelope.Event, err)
			return
		}
		d.registry.Join(conn, ref.TopicID)
	case EventLeaveTopic:
		ref, err := decodeTopicRef(envelope.Data)
		if err != nil || ref.TopicID == "" {
			d.dropEvent(conn, envelope.Event, err)
			return
		}
		d.registry.Leave(conn.ID(), ref.TopicID)
	case EventNewComment:
		d.handleNewComment(conn, envelope.Data)
	case EventCommentDeleted:
		d.handleCommentDeleted(conn, envelope.Data)
	case EventUserTyping:
		d.handleUserTyping(conn, envelope.Data)
	case EventUserStoppedTyping:
		d.handleUserStoppedTyping(conn, envelope.Data)
	}
}

// HandleDisconnect clears every room membership of the connection. Called
// exactly once by the transport when the connection dies, whatever the
// cause.
func (d *Dispatcher) HandleDisconnect(connID string) {
	d.registry.RemoveConnection(connID)
	logger.InfoF("[%s] Client disconnected", connID)
}

func (d *Dispatcher) handleNewComment(conn Sender, data json.RawMessage) {
	var announcement CommentAnnouncement
	if err := json.Unmarshal(data, &announcement); err != nil || announcement.TopicID == "" {
		d.dropEvent(conn, EventNewComment, err)
		return
	}
	d.forward(conn, announcement.TopicID, EventCommentAdded, announcement.Comment)
}

func (d *Dispatcher) handleCommentDeleted(conn Sender, data json.RawMessage) {
	var announcement DeletionAnnouncement
	if err := json.Unmarshal(data, &announcement); err != nil || announcement.TopicID == "" {
		d.dropEvent(conn, EventCommentDeleted, err)
		return
	}
	d.forward(conn, announcement.TopicID, EventCommentDeleted, announcement.CommentID)
}

func (d *Dispatcher) handleUserTyping(conn Sender, data json.RawMessage) {
	var state TypingState
	if err := json.Unmarshal(data, &state); err != nil || state.TopicID == "" {
		d.dropEvent(conn, EventUserTyping, err)
		return
	}
	out := TypingState{UserID: state.UserID, UserName: state.UserName, IsAnonymous: state.IsAnonymous}
	d.forward(conn, state.TopicID, EventUserTyping, out)
}

func (d *Dispatcher) handleUserStoppedTyping(conn Sender, data json.RawMessage) {
	var state TypingState
	if err := json.Unmarshal(data, &state); err != nil || state.TopicID == "" {
		d.dropEvent(conn, EventUserStoppedTyping, err)
		return
	}
	d.forward(conn, state.TopicID, EventUserStoppedTyping, TypingState{UserID: state.UserID})
}

func (d *Dispatcher) forward(sender Sender, topicID string, event EventType, data any) {
	frame, err := NewEnvelope(event, data)
	if err != nil {
		logger.ErrorF("[%s] Fail to encode %s event, details: %v", sender.ID(), event, err)
		return
	}
	delivered := d.registry.BroadcastTo(topicID, sender.ID(), frame)
	logger.DebugF("[%s] %s event broadcasted to topic %s, receivers %d", sender.ID(), event, topicID, delivered)
}

func (d *Dispatcher) dropEvent(conn Sender, event EventType, err error) {
	if err != nil {
		logger.WarnF("[%s] Fail to parse %s payload, details: %v", conn.ID(), event, err)
		return
	}
	logger.WarnF("[%s] %s event dropped, missing topicId", conn.ID(), event)
}
