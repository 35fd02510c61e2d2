package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

type attachmentDoc struct {
	Filename    string `bson:"filename"`
	URL         string `bson:"url"`
	ContentType string `bson:"contentType,omitempty"`
	Size        int64  `bson:"size,omitempty"`
}

type questionDoc struct {
	ID             string                `bson:"_id"`
	Author         string                `bson:"author"`
	Title          string                `bson:"title"`
	Body           string                `bson:"body"`
	Subject        string                `bson:"subject"`
	EducationLevel string                `bson:"educationLevel"`
	Tags           []string              `bson:"tags"`
	Attachments    []attachmentDoc       `bson:"attachments"`
	Status         models.QuestionStatus `bson:"status"`
	Views          int64                 `bson:"views"`
	Flagged        bool                  `bson:"flagged"`
	FlagReason     string                `bson:"flagReason,omitempty"`
	Upvotes        []string              `bson:"upvotes"`
	Answers        []string              `bson:"answers"`
	CreatedAt      time.Time             `bson:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt"`
}

func attachmentsToDocs(in []models.Attachment) []attachmentDoc {
	out := make([]attachmentDoc, 0, len(in))
	for _, a := range in {
		out = append(out, attachmentDoc{Filename: a.Filename, URL: a.URL, ContentType: a.ContentType, Size: a.Size})
	}
	return out
}

func attachmentsFromDocs(in []attachmentDoc) []models.Attachment {
	out := make([]models.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, models.Attachment{Filename: a.Filename, URL: a.URL, ContentType: a.ContentType, Size: a.Size})
	}
	return out
}

func questionDocFromModel(q *models.Question) questionDoc {
	return questionDoc{
		ID:             q.ID,
		Author:         q.AuthorID,
		Title:          q.Title,
		Body:           q.Body,
		Subject:        q.Subject,
		EducationLevel: q.EducationLevel,
		Tags:           orEmpty(q.Tags),
		Attachments:    attachmentsToDocs(q.Attachments),
		Status:         q.Status,
		Views:          q.Views,
		Flagged:        q.Flagged,
		FlagReason:     q.FlagReason,
		Upvotes:        orEmpty(q.Upvotes),
		Answers:        orEmpty(q.AnswerIDs),
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

func questionDocToModel(d questionDoc) models.Question {
	return models.Question{
		ID:             d.ID,
		AuthorID:       d.Author,
		Title:          d.Title,
		Body:           d.Body,
		Subject:        d.Subject,
		EducationLevel: d.EducationLevel,
		Tags:           d.Tags,
		Attachments:    attachmentsFromDocs(d.Attachments),
		Status:         d.Status,
		Views:          d.Views,
		Flagged:        d.Flagged,
		FlagReason:     d.FlagReason,
		Upvotes:        orEmpty(d.Upvotes),
		AnswerIDs:      orEmpty(d.Answers),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (s *Store) CreateQuestion(ctx context.Context, q *models.Question) error {
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	_, err := s.questions.InsertOne(ctx, questionDocFromModel(q))
	return translate(err)
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var d questionDoc
	if err := s.questions.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	q := questionDocToModel(d)
	return &q, nil
}

func (s *Store) ListQuestions(ctx context.Context, f store.QuestionFilter) ([]models.Question, int64, error) {
	filter := bson.M{}
	if f.Subject != "" {
		filter["subject"] = f.Subject
	}
	if f.EducationLevel != "" {
		filter["educationLevel"] = f.EducationLevel
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.AuthorID != "" {
		filter["author"] = f.AuthorID
	}
	if f.Search != "" {
		rx := primitiveRegex(f.Search)
		filter["$or"] = bson.A{bson.M{"title": rx}, bson.M{"body": rx}}
	}
	total, err := s.questions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	switch f.Sort {
	case store.SortMostViews:
		sort = bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}}
	case store.SortOldest:
		sort = bson.D{{Key: "createdAt", Value: 1}}
	}
	var cur *mongo.Cursor
	if f.Sort == store.SortUpvotes {
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: filter}},
			{{Key: "$addFields", Value: bson.M{"upvoteCount": bson.M{"$size": "$upvotes"}}}},
			{{Key: "$sort", Value: bson.D{{Key: "upvoteCount", Value: -1}, {Key: "createdAt", Value: -1}}}},
		}
		if f.PageSize > 0 {
			pipeline = append(pipeline,
				bson.D{{Key: "$skip", Value: int64(f.Offset())}},
				bson.D{{Key: "$limit", Value: int64(f.PageSize)}})
		}
		cur, err = s.questions.Aggregate(ctx, pipeline)
	} else {
		cur, err = s.questions.Find(ctx, filter, findOptions(f.Page, sort))
	}
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var items []models.Question
	for cur.Next(ctx) {
		var d questionDoc
		if err := cur.Decode(&d); err != nil {
			return nil, 0, err
		}
		items = append(items, questionDocToModel(d))
	}
	return items, total, cur.Err()
}

func (s *Store) UpdateQuestion(ctx context.Context, q *models.Question) error {
	return matched(s.questions.UpdateOne(ctx, bson.M{"_id": q.ID}, bson.M{"$set": bson.M{
		"title":          q.Title,
		"body":           q.Body,
		"subject":        q.Subject,
		"educationLevel": q.EducationLevel,
		"tags":           orEmpty(q.Tags),
		"attachments":    attachmentsToDocs(q.Attachments),
		"flagged":        q.Flagged,
		"flagReason":     q.FlagReason,
		"updatedAt":      time.Now().UTC(),
	}}))
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	return matched(s.questions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}))
}

func (s *Store) SetQuestionUpvote(ctx context.Context, id, userID string, on bool) error {
	op := "$pull"
	if on {
		op = "$addToSet"
	}
	return matched(s.questions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{op: bson.M{"upvotes": userID}}))
}

// AttachAnswer appends the id and promotes open to answered in one pipeline update.
func (s *Store) AttachAnswer(ctx context.Context, questionID, answerID string) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "answers", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$answers", bson.A{}}}},
				bson.A{answerID},
			}}}},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", models.QuestionOpen}}},
				models.QuestionAnswered,
				"$status",
			}}}},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}
	return matched(s.questions.UpdateOne(ctx, bson.M{"_id": questionID}, pipeline))
}

func (s *Store) DetachAnswer(ctx context.Context, questionID, answerID string) error {
	_, err := s.questions.UpdateOne(ctx, bson.M{"_id": questionID}, bson.M{"$pull": bson.M{"answers": answerID}})
	return translate(err)
}

func (s *Store) SetQuestionStatus(ctx context.Context, id string, status models.QuestionStatus) error {
	return matched(s.questions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}))
}

// DeleteQuestion removes answers first so a failure never leaves orphans.
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	if _, err := s.answers.DeleteMany(ctx, bson.M{"question": id}); err != nil {
		return err
	}
	res, err := s.questions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
