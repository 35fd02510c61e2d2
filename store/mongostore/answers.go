package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

type answerDoc struct {
	ID          string              `bson:"_id"`
	Question    string              `bson:"question"`
	Author      string              `bson:"author"`
	Body        string              `bson:"body"`
	Attachments []attachmentDoc     `bson:"attachments"`
	Status      models.AnswerStatus `bson:"status"`
	IsAccepted  bool                `bson:"isAccepted"`
	VerifiedBy  string              `bson:"verifiedBy,omitempty"`
	VerifiedAt  *time.Time          `bson:"verifiedAt,omitempty"`
	AwardedAt   *time.Time          `bson:"acceptAwardedAt,omitempty"`
	Flagged     bool                `bson:"flagged"`
	FlagReason  string              `bson:"flagReason,omitempty"`
	Upvotes     []string            `bson:"upvotes"`
	Downvotes   []string            `bson:"downvotes"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func answerDocFromModel(a *models.Answer) answerDoc {
	return answerDoc{
		ID:          a.ID,
		Question:    a.QuestionID,
		Author:      a.AuthorID,
		Body:        a.Body,
		Attachments: attachmentsToDocs(a.Attachments),
		Status:      a.Status,
		IsAccepted:  a.IsAccepted,
		VerifiedBy:  a.VerifiedBy,
		VerifiedAt:  a.VerifiedAt,
		AwardedAt:   a.AcceptAwardedAt,
		Flagged:     a.Flagged,
		FlagReason:  a.FlagReason,
		Upvotes:     orEmpty(a.Upvotes),
		Downvotes:   orEmpty(a.Downvotes),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func answerDocToModel(d answerDoc) models.Answer {
	return models.Answer{
		ID:              d.ID,
		QuestionID:      d.Question,
		AuthorID:        d.Author,
		Body:            d.Body,
		Attachments:     attachmentsFromDocs(d.Attachments),
		Status:          d.Status,
		IsAccepted:      d.IsAccepted,
		VerifiedBy:      d.VerifiedBy,
		VerifiedAt:      d.VerifiedAt,
		AcceptAwardedAt: d.AwardedAt,
		Flagged:         d.Flagged,
		FlagReason:      d.FlagReason,
		Upvotes:         orEmpty(d.Upvotes),
		Downvotes:       orEmpty(d.Downvotes),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (s *Store) CreateAnswer(ctx context.Context, a *models.Answer) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	_, err := s.answers.InsertOne(ctx, answerDocFromModel(a))
	return translate(err)
}

func (s *Store) GetAnswer(ctx context.Context, id string) (*models.Answer, error) {
	var d answerDoc
	if err := s.answers.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	a := answerDocToModel(d)
	return &a, nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID string) ([]models.Answer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.answers.Find(ctx, bson.M{"question": questionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.Answer
	for cur.Next(ctx) {
		var d answerDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		items = append(items, answerDocToModel(d))
	}
	return items, cur.Err()
}

func (s *Store) UpdateAnswer(ctx context.Context, a *models.Answer) error {
	return matched(s.answers.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": bson.M{
		"body":        a.Body,
		"attachments": attachmentsToDocs(a.Attachments),
		"flagged":     a.Flagged,
		"flagReason":  a.FlagReason,
		"updatedAt":   time.Now().UTC(),
	}}))
}

// SetAnswerVote pulls the user from the opposite set and adds to the target set in one update.
func (s *Store) SetAnswerVote(ctx context.Context, id, userID string, kind models.VoteKind) error {
	var update bson.M
	switch kind {
	case models.VoteUp:
		update = bson.M{"$pull": bson.M{"downvotes": userID}, "$addToSet": bson.M{"upvotes": userID}}
	case models.VoteDown:
		update = bson.M{"$pull": bson.M{"upvotes": userID}, "$addToSet": bson.M{"downvotes": userID}}
	default:
		update = bson.M{"$pull": bson.M{"upvotes": userID, "downvotes": userID}}
	}
	return matched(s.answers.UpdateOne(ctx, bson.M{"_id": id}, update))
}

// AcceptAnswer sets isAccepted to (_id == answerID) across all siblings in one UpdateMany,
// then stamps acceptAwardedAt on the answer unless it is already set.
func (s *Store) AcceptAnswer(ctx context.Context, questionID, answerID string, at time.Time) (bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "isAccepted", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", answerID}}}},
		}}},
	}
	if _, err := s.answers.UpdateMany(ctx, bson.M{"question": questionID}, pipeline); err != nil {
		return false, err
	}
	res, err := s.answers.UpdateOne(ctx,
		bson.M{"_id": answerID, "question": questionID, "acceptAwardedAt": nil},
		bson.M{"$set": bson.M{"acceptAwardedAt": at}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) VerifyAnswer(ctx context.Context, id, verifierID string, at time.Time) error {
	return matched(s.answers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     models.AnswerApproved,
		"verifiedBy": verifierID,
		"verifiedAt": at,
		"updatedAt":  time.Now().UTC(),
	}}))
}

func (s *Store) SetAnswerStatus(ctx context.Context, id string, status models.AnswerStatus) error {
	return matched(s.answers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}))
}

func (s *Store) DeleteAnswer(ctx context.Context, id string) error {
	res, err := s.answers.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
