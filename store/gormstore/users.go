package gormstore

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, translate(err)
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(name LIKE ? OR email LIKE ?)", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := paginate(q.Order("created_at DESC"), f.Page).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Store) TopUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("status <> ?", models.StatusBanned).
		Order("points DESC").Order("created_at ASC").
		Limit(limit).Find(&users).Error
	return users, err
}

func (s *Store) UpdateProfile(ctx context.Context, id string, p store.ProfileUpdate) error {
	updates := map[string]interface{}{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Bio != nil {
		updates["bio"] = *p.Bio
	}
	if p.School != nil {
		updates["school"] = *p.School
	}
	if p.Subjects != nil {
		updates["subjects"] = datatypes.JSONSlice[string](p.Subjects)
	}
	if len(updates) == 0 {
		return nil
	}
	return affected(s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates))
}

func (s *Store) AddPoints(ctx context.Context, id string, n int) error {
	return affected(s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("points", gorm.Expr("points + ?", n)))
}

func (s *Store) AddStrike(ctx context.Context, id string) (int, error) {
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.User{}).Where("id = ?", id).
			UpdateColumn("strikes", gorm.Expr("CASE WHEN strikes < ? THEN strikes + 1 ELSE ? END", models.MaxStrikes, models.MaxStrikes)).Error
		if err != nil {
			return err
		}
		return translate(tx.Select("strikes").First(&u, "id = ?", id).Error)
	})
	return u.Strikes, err
}

func (s *Store) SetStatus(ctx context.Context, id string, status models.UserStatus, resetStrikes bool) error {
	updates := map[string]interface{}{"status": status}
	if resetStrikes {
		updates["strikes"] = 0
	}
	return affected(s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates))
}

func (s *Store) SetVerified(ctx context.Context, id string, verified bool) error {
	return affected(s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("verified", verified))
}
