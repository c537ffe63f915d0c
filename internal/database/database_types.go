package database

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TopicCollectionName   = "topics"
	CommentCollectionName = "comments"
	SessionCollectionName = "sessions"
)

var ErrNotFound = errors.New("document does not exist")

// Topic is a discussion thread. The authoritative record always lives
// here; the relay only ever carries notification hints about it.
type Topic struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	AuthorID    string             `bson:"author_id" json:"authorId"`
	AuthorName  string             `bson:"author_name" json:"authorName"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

// TopicWithCount decorates a topic with its comment count for listings.
type TopicWithCount struct {
	Topic        `bson:",inline"`
	CommentCount int64 `bson:"-" json:"commentCount"`
}

type Comment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TopicID       string             `bson:"topic_id" json:"topicId"`
	Content       string             `bson:"content" json:"content"`
	AuthorID      string             `bson:"author_id" json:"authorId"`
	AuthorName    string             `bson:"author_name" json:"authorName"`
	IsAnonymous   bool               `bson:"is_anonymous" json:"isAnonymous"`
	AnonymousName string             `bson:"anonymous_name,omitempty" json:"anonymousName,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
}

// Session is a bearer-token login minted by the auth layer.
type Session struct {
	Token     string    `bson:"token" json:"token"`
	UserID    string    `bson:"user_id" json:"userId"`
	UserName  string    `bson:"user_name" json:"userName"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

type TopicStore interface {
	InsertTopic(topic *Topic) error
	FindTopic(id string) (*Topic, error)
	ListTopics() ([]TopicWithCount, error)
}

type CommentStore interface {
	InsertComment(comment *Comment) error
	FindComment(id string) (*Comment, error)
	ListComments(topicID string) ([]Comment, error)
	DeleteComment(id string) error
	CountComments(topicID string) (int64, error)
}

type SessionStore interface {
	SaveSession(session *Session) error
	FindSession(token string) (*Session, error)
	DeleteSession(token string) error
}
