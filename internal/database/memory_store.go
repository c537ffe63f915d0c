package database

import (
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps topics, comments and sessions in process memory. It
// backs the API and auth tests and debug runs without a MongoDB instance.
type MemoryStore struct {
	mu       sync.RWMutex
	topics   map[string]*Topic
	comments map[string]*Comment
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		topics:   make(map[string]*Topic),
		comments: make(map[string]*Comment),
		sessions: make(map[string]*Session),
	}
}

func (ms *MemoryStore) InsertTopic(topic *Topic) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if topic.ID.IsZero() {
		topic.ID = primitive.NewObjectID()
	}
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now()
	}
	clone := *topic
	ms.topics[topic.ID.Hex()] = &clone
	return nil
}

func (ms *MemoryStore) FindTopic(id string) (*Topic, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	topic, ok := ms.topics[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *topic
	return &clone, nil
}

func (ms *MemoryStore) ListTopics() ([]TopicWithCount, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	results := make([]TopicWithCount, 0, len(ms.topics))
	for _, topic := range ms.topics {
		var count int64
		for _, comment := range ms.comments {
			if comment.TopicID == topic.ID.Hex() {
				count++
			}
		}
		results = append(results, TopicWithCount{Topic: *topic, CommentCount: count})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (ms *MemoryStore) InsertComment(comment *Comment) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	clone := *comment
	ms.comments[comment.ID.Hex()] = &clone
	return nil
}

func (ms *MemoryStore) FindComment(id string) (*Comment, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	comment, ok := ms.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *comment
	return &clone, nil
}

func (ms *MemoryStore) ListComments(topicID string) ([]Comment, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	results := []Comment{}
	for _, comment := range ms.comments {
		if comment.TopicID == topicID {
			results = append(results, *comment)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (ms *MemoryStore) DeleteComment(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.comments[id]; !ok {
		return ErrNotFound
	}
	delete(ms.comments, id)
	return nil
}

func (ms *MemoryStore) CountComments(topicID string) (int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var count int64
	for _, comment := range ms.comments {
		if comment.TopicID == topicID {
			count++
		}
	}
	return count, nil
}

func (ms *MemoryStore) SaveSession(session *Session) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	clone := *session
	ms.sessions[session.Token] = &clone
	return nil
}

func (ms *MemoryStore) FindSession(token string) (*Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	session, ok := ms.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (ms *MemoryStore) DeleteSession(token string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.sessions, token)
	return nil
}
