package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edulink-ug/edulink/models"
)

type chatDoc struct {
	ID        string          `bson:"_id"`
	User      string          `bson:"user"`
	Role      models.ChatRole `bson:"role"`
	Content   string          `bson:"content"`
	Model     string          `bson:"model,omitempty"`
	CreatedAt time.Time       `bson:"createdAt"`
}

func (s *Store) AppendChat(ctx context.Context, msgs ...*models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		docs = append(docs, chatDoc{ID: m.ID, User: m.UserID, Role: m.Role, Content: m.Content, Model: m.Model, CreatedAt: m.CreatedAt})
	}
	_, err := s.chats.InsertMany(ctx, docs)
	return translate(err)
}

func (s *Store) RecentChat(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.chats.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.ChatMessage
	for cur.Next(ctx) {
		var d chatDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		items = append(items, models.ChatMessage{ID: d.ID, UserID: d.User, Role: d.Role, Content: d.Content, Model: d.Model, CreatedAt: d.CreatedAt})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (s *Store) GetChatMessage(ctx context.Context, id string) (*models.ChatMessage, error) {
	var d chatDoc
	if err := s.chats.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &models.ChatMessage{ID: d.ID, UserID: d.User, Role: d.Role, Content: d.Content, Model: d.Model, CreatedAt: d.CreatedAt}, nil
}

func (s *Store) ClearChat(ctx context.Context, userID string) error {
	_, err := s.chats.DeleteMany(ctx, bson.M{"user": userID})
	return err
}
