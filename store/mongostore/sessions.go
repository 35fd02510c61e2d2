package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

type sessionDoc struct {
	ID              string               `bson:"_id"`
	Host            string               `bson:"host"`
	Title           string               `bson:"title"`
	Subject         string               `bson:"subject"`
	Description     string               `bson:"description"`
	ScheduledAt     time.Time            `bson:"scheduledAt"`
	DurationMinutes int                  `bson:"durationMinutes"`
	MaxParticipants int                  `bson:"maxParticipants"`
	MeetingLink     string               `bson:"meetingLink,omitempty"`
	Status          models.SessionStatus `bson:"status"`
	StartedAt       *time.Time           `bson:"startedAt,omitempty"`
	EndedAt         *time.Time           `bson:"endedAt,omitempty"`
	Participants    []string             `bson:"participants"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func sessionDocFromModel(s *models.StudySession) sessionDoc {
	return sessionDoc{
		ID:              s.ID,
		Host:            s.HostID,
		Title:           s.Title,
		Subject:         s.Subject,
		Description:     s.Description,
		ScheduledAt:     s.ScheduledAt,
		DurationMinutes: s.DurationMinutes,
		MaxParticipants: s.MaxParticipants,
		MeetingLink:     s.MeetingLink,
		Status:          s.Status,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		Participants:    orEmpty(s.Participants),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func sessionDocToModel(d sessionDoc) models.StudySession {
	return models.StudySession{
		ID:              d.ID,
		HostID:          d.Host,
		Title:           d.Title,
		Subject:         d.Subject,
		Description:     d.Description,
		ScheduledAt:     d.ScheduledAt,
		DurationMinutes: d.DurationMinutes,
		MaxParticipants: d.MaxParticipants,
		MeetingLink:     d.MeetingLink,
		Status:          d.Status,
		StartedAt:       d.StartedAt,
		EndedAt:         d.EndedAt,
		Participants:    orEmpty(d.Participants),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (s *Store) CreateSession(ctx context.Context, ss *models.StudySession) error {
	now := time.Now().UTC()
	if ss.CreatedAt.IsZero() {
		ss.CreatedAt = now
	}
	ss.UpdatedAt = now
	_, err := s.sessions.InsertOne(ctx, sessionDocFromModel(ss))
	return translate(err)
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.StudySession, error) {
	var d sessionDoc
	if err := s.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	out := sessionDocToModel(d)
	return &out, nil
}

func (s *Store) ListSessions(ctx context.Context, f store.SessionFilter) ([]models.StudySession, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Subject != "" {
		filter["subject"] = f.Subject
	}
	if f.HostID != "" {
		filter["host"] = f.HostID
	}
	total, err := s.sessions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.sessions.Find(ctx, filter, findOptions(f.Page, bson.D{{Key: "scheduledAt", Value: 1}}))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var items []models.StudySession
	for cur.Next(ctx) {
		var d sessionDoc
		if err := cur.Decode(&d); err != nil {
			return nil, 0, err
		}
		items = append(items, sessionDocToModel(d))
	}
	return items, total, cur.Err()
}

func (s *Store) AddParticipant(ctx context.Context, id, userID string) error {
	return matched(s.sessions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"participants": userID}}))
}

func (s *Store) RemoveParticipant(ctx context.Context, id, userID string) error {
	return matched(s.sessions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"participants": userID}}))
}

func (s *Store) SetSessionStatus(ctx context.Context, id string, status models.SessionStatus, at time.Time) error {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	switch status {
	case models.SessionLive:
		set["startedAt"] = at
	case models.SessionEnded:
		set["endedAt"] = at
	}
	return matched(s.sessions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}))
}

// EndOverdueSessions compares scheduledAt + duration + grace against now server side.
func (s *Store) EndOverdueSessions(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	end := bson.D{{Key: "$add", Value: bson.A{
		"$scheduledAt",
		bson.D{{Key: "$multiply", Value: bson.A{"$durationMinutes", int64(time.Minute / time.Millisecond)}}},
		grace.Milliseconds(),
	}}}
	filter := bson.M{
		"status": bson.M{"$ne": models.SessionEnded},
		"$expr":  bson.D{{Key: "$lt", Value: bson.A{end, now}}},
	}
	res, err := s.sessions.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"status":    models.SessionEnded,
		"endedAt":   now,
		"updatedAt": now,
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
