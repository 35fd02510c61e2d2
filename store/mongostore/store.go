// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

// Store is the document backend. Field names follow the public JSON contract.
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	users     *mongo.Collection
	questions *mongo.Collection
	answers   *mongo.Collection
	reports   *mongo.Collection
	sessions  *mongo.Collection
	chats     *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// New binds the collections and ensures their indexes.
func New(ctx context.Context, client *mongo.Client, db *mongo.Database) (*Store, error) {
	s := &Store{
		client:    client,
		db:        db,
		users:     db.Collection("users"),
		questions: db.Collection("questions"),
		answers:   db.Collection("answers"),
		reports:   db.Collection("reports"),
		sessions:  db.Collection("studysessions"),
		chats:     db.Collection("chatmessages"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	specs := []struct {
		col    *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "points", Value: -1}}},
		}},
		{s.questions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "subject", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "author", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		}},
		{s.answers, []mongo.IndexModel{
			{Keys: bson.D{{Key: "question", Value: 1}, {Key: "createdAt", Value: 1}}},
		}},
		{s.reports, []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}}},
			{Keys: bson.D{{Key: "reporter", Value: 1}}},
		}},
		{s.sessions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduledAt", Value: 1}}},
		}},
		{s.chats, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
	}
	for _, spec := range specs {
		if _, err := spec.col.Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", spec.col.Name(), err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Stats counts the headline entities.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	var st store.Stats
	var err error
	if st.Users, err = s.users.CountDocuments(ctx, bson.M{}); err != nil {
		return st, err
	}
	if st.Questions, err = s.questions.CountDocuments(ctx, bson.M{}); err != nil {
		return st, err
	}
	if st.Answers, err = s.answers.CountDocuments(ctx, bson.M{}); err != nil {
		return st, err
	}
	openStatuses := bson.A{models.ReportPending, models.ReportReviewing}
	if st.OpenReports, err = s.reports.CountDocuments(ctx, bson.M{"status": bson.M{"$in": openStatuses}}); err != nil {
		return st, err
	}
	if st.LiveSessions, err = s.sessions.CountDocuments(ctx, bson.M{"status": models.SessionLive}); err != nil {
		return st, err
	}
	return st, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	}
	return err
}

// matched turns an update that matched nothing into store.ErrNotFound.
func matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func findOptions(p store.Page, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if p.PageSize > 0 {
		opts.SetSkip(int64(p.Offset())).SetLimit(int64(p.PageSize))
	}
	return opts
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
