package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

type reportedContentDoc struct {
	ContentType models.ContentType `bson:"contentType"`
	ContentID   string             `bson:"contentId"`
}

type reportDoc struct {
	ID              string                `bson:"_id"`
	Reporter        string                `bson:"reporter"`
	ReportedUser    string                `bson:"reportedUser,omitempty"`
	ReportedContent reportedContentDoc    `bson:"reportedContent"`
	Type            models.ReportType     `bson:"type"`
	Description     string                `bson:"description"`
	Status          models.ReportStatus   `bson:"status"`
	Action          models.ReportAction   `bson:"action,omitempty"`
	Priority        models.ReportPriority `bson:"priority"`
	ReviewNotes     string                `bson:"reviewNotes,omitempty"`
	ReviewedBy      string                `bson:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time            `bson:"reviewedAt,omitempty"`
	CreatedAt       time.Time             `bson:"createdAt"`
	UpdatedAt       time.Time             `bson:"updatedAt"`
}

func reportDocFromModel(r *models.Report) reportDoc {
	return reportDoc{
		ID:           r.ID,
		Reporter:     r.ReporterID,
		ReportedUser: r.ReportedUserID,
		ReportedContent: reportedContentDoc{
			ContentType: r.ReportedContent.ContentType,
			ContentID:   r.ReportedContent.ContentID,
		},
		Type:        r.Type,
		Description: r.Description,
		Status:      r.Status,
		Action:      r.Action,
		Priority:    r.Priority,
		ReviewNotes: r.ReviewNotes,
		ReviewedBy:  r.ReviewedBy,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func reportDocToModel(d reportDoc) models.Report {
	return models.Report{
		ID:             d.ID,
		ReporterID:     d.Reporter,
		ReportedUserID: d.ReportedUser,
		ReportedContent: models.ReportedContent{
			ContentType: d.ReportedContent.ContentType,
			ContentID:   d.ReportedContent.ContentID,
		},
		Type:        d.Type,
		Description: d.Description,
		Status:      d.Status,
		Action:      d.Action,
		Priority:    d.Priority,
		ReviewNotes: d.ReviewNotes,
		ReviewedBy:  d.ReviewedBy,
		ReviewedAt:  d.ReviewedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *Store) CreateReport(ctx context.Context, r *models.Report) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	_, err := s.reports.InsertOne(ctx, reportDocFromModel(r))
	return translate(err)
}

func (s *Store) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var d reportDoc
	if err := s.reports.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	r := reportDocToModel(d)
	return &r, nil
}

func (s *Store) ListReports(ctx context.Context, f store.ReportFilter) ([]models.Report, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.ReporterID != "" {
		filter["reporter"] = f.ReporterID
	}
	total, err := s.reports.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.reports.Find(ctx, filter, findOptions(f.Page, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var items []models.Report
	for cur.Next(ctx) {
		var d reportDoc
		if err := cur.Decode(&d); err != nil {
			return nil, 0, err
		}
		items = append(items, reportDocToModel(d))
	}
	return items, total, cur.Err()
}

func (s *Store) SaveReport(ctx context.Context, r *models.Report) error {
	return matched(s.reports.UpdateOne(ctx, bson.M{"_id": r.ID}, bson.M{"$set": bson.M{
		"status":       r.Status,
		"action":       r.Action,
		"priority":     r.Priority,
		"reviewNotes":  r.ReviewNotes,
		"reviewedBy":   r.ReviewedBy,
		"reviewedAt":   r.ReviewedAt,
		"reportedUser": r.ReportedUserID,
		"updatedAt":    time.Now().UTC(),
	}}))
}
