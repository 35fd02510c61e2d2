package gormstore

import (
	"context"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

func (s *Store) CreateReport(ctx context.Context, r *models.Report) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *Store) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var r models.Report
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) ListReports(ctx context.Context, f store.ReportFilter) ([]models.Report, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Report{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.ReporterID != "" {
		q = q.Where("reporter_id = ?", f.ReporterID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.Report
	if err := paginate(q.Order("created_at DESC"), f.Page).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store) SaveReport(ctx context.Context, r *models.Report) error {
	return affected(s.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", r.ID).Updates(map[string]interface{}{
		"status":           r.Status,
		"action":           r.Action,
		"priority":         r.Priority,
		"review_notes":     r.ReviewNotes,
		"reviewed_by":      r.ReviewedBy,
		"reviewed_at":      r.ReviewedAt,
		"reported_user_id": r.ReportedUserID,
	}))
}
