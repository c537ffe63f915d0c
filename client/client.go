// Package client is the Go client for the teamboard relay. It dials the
// websocket endpoint, joins topic rooms and surfaces room events through
// callbacks. Authoritative reads and writes still go over REST; this
// package only carries the best-effort notifications around them.
package client

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/teamboard-dev/teamboard-server/internal/relay"
)

// Handlers receives room events. Nil fields are skipped. Callbacks run on
// the client's read goroutine, one at a time, in arrival order.
type Handlers struct {
	CommentAdded      func(comment json.RawMessage)
	CommentDeleted    func(commentID string)
	UserTyping        func(userID, userName string, isAnonymous bool)
	UserStoppedTyping func(userID string)
	Disconnected      func(err error)
}

type Client struct {
	conn     *websocket.Conn
	handlers Handlers

	mu     sync.Mutex
	closed bool
}

// Dial connects to the relay websocket endpoint, e.g.
// "ws://localhost:8080/ws", and starts the read loop. A reconnect is a
// brand-new client: the server keeps no memory of prior room memberships,
// so the caller must re-issue joins.
func Dial(url string, handlers Handlers) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{conn: conn, handlers: handlers}
	go c.readLoop()
	return c, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Client) JoinTopic(topicID string) error {
	return c.emit(relay.EventJoinTopic, relay.TopicRef{TopicID: topicID})
}

func (c *Client) LeaveTopic(topicID string) error {
	return c.emit(relay.EventLeaveTopic, relay.TopicRef{TopicID: topicID})
}

// AnnounceComment tells the room about a comment already stored over REST.
// Call it after the POST succeeded and after applying the comment locally.
func (c *Client) AnnounceComment(topicID string, comment any) error {
	raw, err := json.Marshal(comment)
	if err != nil {
		return err
	}
	return c.emit(relay.EventNewComment, relay.CommentAnnouncement{TopicID: topicID, Comment: raw})
}

// AnnounceCommentDeleted tells the room about a deletion already performed
// over REST.
func (c *Client) AnnounceCommentDeleted(topicID, commentID string) error {
	return c.emit(relay.EventCommentDeleted, relay.DeletionAnnouncement{TopicID: topicID, CommentID: commentID})
}

func (c *Client) EmitTyping(topicID, userID, userName string, isAnonymous bool) error {
	return c.emit(relay.EventUserTyping, relay.TypingState{
		TopicID:     topicID,
		UserID:      userID,
		UserName:    userName,
		IsAnonymous: isAnonymous,
	})
}

func (c *Client) EmitStoppedTyping(topicID, userID string) error {
	return c.emit(relay.EventUserStoppedTyping, relay.TypingState{TopicID: topicID, UserID: userID})
}

func (c *Client) emit(event relay.EventType, data any) error {
	frame, err := relay.NewEnvelope(event, data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *Client) readLoop() {
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && c.handlers.Disconnected != nil {
				c.handlers.Disconnected(err)
			}
			return
		}
		c.dispatch(frame)
	}
}

func (c *Client) dispatch(frame []byte) {
	var envelope relay.Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return
	}

	switch envelope.Event {
	case relay.EventCommentAdded:
		if c.handlers.CommentAdded != nil {
			c.handlers.CommentAdded(envelope.Data)
		}
	case relay.EventCommentDeleted:
		var commentID string
		if err := json.Unmarshal(envelope.Data, &commentID); err != nil {
			return
		}
		if c.handlers.CommentDeleted != nil {
			c.handlers.CommentDeleted(commentID)
		}
	case relay.EventUserTyping:
		var state relay.TypingState
		if err := json.Unmarshal(envelope.Data, &state); err != nil {
			return
		}
		if c.handlers.UserTyping != nil {
			c.handlers.UserTyping(state.UserID, state.UserName, state.IsAnonymous)
		}
	case relay.EventUserStoppedTyping:
		var state relay.TypingState
		if err := json.Unmarshal(envelope.Data, &state); err != nil {
			return
		}
		if c.handlers.UserStoppedTyping != nil {
			c.handlers.UserStoppedTyping(state.UserID)
		}
	}
}
