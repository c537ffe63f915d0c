package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamboard-dev/teamboard-server/internal/logger"
)

// DBStore is the MongoDB-backed store for topics, comments and sessions.
type DBStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var DbStore *DBStore

func NewDatabaseStore() *DBStore {
	if DbStore == nil {
		DbStore = &DBStore{client: Client, db: Database}
	}
	return DbStore
}

func wrapStoreError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("unique key conflicts: %w", err)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("database operation failed: %w", err)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return oid, nil
}

func (ds *DBStore) InsertTopic(topic *Topic) error {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	if topic.ID.IsZero() {
		topic.ID = primitive.NewObjectID()
	}
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now()
	}

	_, err := ds.db.Collection(TopicCollectionName).InsertOne(ctx, topic)
	if err != nil {
		return wrapStoreError(err)
	}

	topicCache.Add(topic.ID.Hex(), topic)
	logger.InfoF("Topic saved: id=%s, title=%s", topic.ID.Hex(), topic.Title)
	return nil
}

func (ds *DBStore) FindTopic(id string) (*Topic, error) {
	if topic, ok := topicCache.Get(id); ok {
		return topic, nil
	}

	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: oid}}
	var topic Topic

	startTime := time.Now()
	err = ds.db.Collection(TopicCollectionName).FindOne(ctx, filter).Decode(&topic)
	logger.DebugF("topic query cost: %v", time.Since(startTime))

	if err != nil {
		return nil, wrapStoreError(err)
	}

	topicCache.Add(id, &topic)
	return &topic, nil
}

func (ds *DBStore) ListTopics() ([]TopicWithCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := ds.db.Collection(TopicCollectionName).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, wrapStoreError(err)
	}

	var topics []Topic
	if err := cursor.All(ctx, &topics); err != nil {
		return nil, wrapStoreError(err)
	}

	results := make([]TopicWithCount, 0, len(topics))
	for _, topic := range topics {
		count, err := ds.CountComments(topic.ID.Hex())
		if err != nil {
			return nil, err
		}
		results = append(results, TopicWithCount{Topic: topic, CommentCount: count})
	}
	return results, nil
}

func (ds *DBStore) InsertComment(comment *Comment) error {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	_, err := ds.db.Collection(CommentCollectionName).InsertOne(ctx, comment)
	if err != nil {
		return wrapStoreError(err)
	}

	logger.InfoF("Comment saved: id=%s, topic_id=%s", comment.ID.Hex(), comment.TopicID)
	return nil
}

func (ds *DBStore) FindComment(id string) (*Comment, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: oid}}
	var comment Comment

	startTime := time.Now()
	err = ds.db.Collection(CommentCollectionName).FindOne(ctx, filter).Decode(&comment)
	logger.DebugF("comment query cost: %v", time.Since(startTime))

	if err != nil {
		return nil, wrapStoreError(err)
	}
	return &comment, nil
}

func (ds *DBStore) ListComments(topicID string) ([]Comment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	filter := bson.D{{Key: "topic_id", Value: topicID}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	startTime := time.Now()
	cursor, err := ds.db.Collection(CommentCollectionName).Find(ctx, filter, opts)
	logger.DebugF("comment list query cost: %v", time.Since(startTime))

	if err != nil {
		return nil, wrapStoreError(err)
	}

	comments := []Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, wrapStoreError(err)
	}
	return comments, nil
}

func (ds *DBStore) DeleteComment(id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: oid}}
	result, err := ds.db.Collection(CommentCollectionName).DeleteOne(ctx, filter)
	if err != nil {
		return wrapStoreError(err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	logger.InfoF("Comment deleted: id=%s", id)
	return nil
}

func (ds *DBStore) CountComments(topicID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	filter := bson.D{{Key: "topic_id", Value: topicID}}
	count, err := ds.db.Collection(CommentCollectionName).CountDocuments(ctx, filter)
	if err != nil {
		return 0, wrapStoreError(err)
	}
	return count, nil
}

func (ds *DBStore) SaveSession(session *Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	filter := bson.D{{Key: "token", Value: session.Token}}
	opts := options.Replace().SetUpsert(true)

	result, err := ds.db.Collection(SessionCollectionName).ReplaceOne(ctx, filter, session, opts)
	if err != nil {
		return wrapStoreError(err)
	}

	logger.InfoF("Session saved: user_id=%s, matched=%d, modified=%d, upserted=%v",
		session.UserID,
		result.MatchedCount,
		result.ModifiedCount,
		result.UpsertedID != nil,
	)
	return nil
}

func (ds *DBStore) FindSession(token string) (*Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	filter := bson.D{{Key: "token", Value: token}}
	var session Session

	startTime := time.Now()
	err := ds.db.Collection(SessionCollectionName).FindOne(ctx, filter).Decode(&session)
	logger.DebugF("session query cost: %v", time.Since(startTime))

	if err != nil {
		return nil, wrapStoreError(err)
	}
	return &session, nil
}

func (ds *DBStore) DeleteSession(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	filter := bson.D{{Key: "token", Value: token}}
	result, err := ds.db.Collection(SessionCollectionName).DeleteOne(ctx, filter)
	if err != nil {
		return wrapStoreError(err)
	}

	logger.InfoF("Session deleted: deleted=%d", result.DeletedCount)
	return nil
}

// PurgeExpiredSessions drops all sessions past their expiry. Invoked
// periodically from main.
func (ds *DBStore) PurgeExpiredSessions() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	filter := bson.D{{Key: "expires_at", Value: bson.D{{Key: "$lt", Value: time.Now()}}}}
	result, err := ds.db.Collection(SessionCollectionName).DeleteMany(ctx, filter)
	if err != nil {
		return 0, wrapStoreError(err)
	}
	return result.DeletedCount, nil
}
