package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string      `json:"name" validate:"required,min=2,max=100"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=student teacher"`
	School   string      `json:"school" validate:"max=160"`
	Subjects []string    `json:"subjects" validate:"max=20,dive,max=64"`
}

// ProfileInput carries the self-editable fields; nil pointers are left unchanged.
type ProfileInput struct {
	Name     *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Bio      *string  `json:"bio" validate:"omitempty,max=500"`
	School   *string  `json:"school" validate:"omitempty,max=160"`
	Subjects []string `json:"subjects" validate:"omitempty,max=20,dive,max=64"`
}

// UserService owns accounts, profiles and the administrative status controls.
type UserService struct {
	users       store.UserStore
	gate        *Gate
	adminEmails map[string]struct{}
	log         *zap.Logger
}

// NewUserService returns a UserService; emails in adminEmails register with the admin role.
func NewUserService(users store.UserStore, gate *Gate, adminEmails []string, log *zap.Logger) *UserService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &UserService{users: users, gate: gate, adminEmails: admins, log: log}
}

// Register creates an active account with zero points and strikes.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = utils.StripTags(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if _, ok := s.adminEmails[in.Email]; ok {
		role = models.RoleAdmin
	}
	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, utils.ErrWeakPassword) {
			return nil, invalid("password", "password must be at least 8")
		}
		return nil, err
	}
	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.StatusActive,
		School:       utils.StripTags(in.School),
		Subjects:     utils.UniqueStrings(in.Subjects),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.log.Info("user registered", zap.String("user", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Login checks credentials. Banned accounts are refused; suspended ones may still sign in and read.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if u.Status == models.StatusBanned {
		return nil, ErrAccountBanned
	}
	return u, nil
}

// Get returns the account by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return u, nil
}

// UpdateProfile edits the caller's own profile. Name and bio are moderated.
func (s *UserService) UpdateProfile(ctx context.Context, p Principal, in ProfileInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	var name, bio string
	if in.Name != nil {
		name = *in.Name
	}
	if in.Bio != nil {
		bio = *in.Bio
	}
	if _, err := s.gate.Screen(ctx, u, name, bio); err != nil {
		return nil, err
	}
	upd := store.ProfileUpdate{Subjects: in.Subjects}
	if in.Name != nil {
		v := utils.StripTags(*in.Name)
		if v == "" {
			return nil, invalid("name", "name is required")
		}
		upd.Name = &v
	}
	if in.Bio != nil {
		v := utils.StripTags(*in.Bio)
		upd.Bio = &v
	}
	if in.School != nil {
		v := utils.StripTags(*in.School)
		upd.School = &v
	}
	if upd.Subjects != nil {
		upd.Subjects = utils.UniqueStrings(upd.Subjects)
	}
	if err := s.users.UpdateProfile(ctx, p.ID, upd); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return s.Get(ctx, p.ID)
}

// Leaderboard returns the highest point balances; banned accounts are excluded.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]models.UserSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	users, err := s.users.TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, *users[i].Summary())
	}
	return out, nil
}

// Summaries resolves author ids to public summaries. Unknown ids are omitted.
func (s *UserService) Summaries(ctx context.Context, ids []string) (map[string]*models.UserSummary, error) {
	return summaries(ctx, s.users, ids)
}

func summaries(ctx context.Context, users store.UserStore, ids []string) (map[string]*models.UserSummary, error) {
	list, err := users.GetUsers(ctx, utils.UniqueStrings(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.UserSummary, len(list))
	for i := range list {
		out[list[i].ID] = list[i].Summary()
	}
	return out, nil
}

// List pages through accounts for administrators.
func (s *UserService) List(ctx context.Context, p Principal, f store.UserFilter) ([]models.User, int64, error) {
	if err := Authorize(p, VerbManageUsers, ""); err != nil {
		return nil, 0, err
	}
	return s.users.ListUsers(ctx, f)
}

// SetStatus changes an account's standing. Reinstating to active also clears strikes.
func (s *UserService) SetStatus(ctx context.Context, p Principal, id string, status models.UserStatus) (*models.User, error) {
	if err := Authorize(p, VerbManageUsers, ""); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("status", "status must be one of: active suspended banned")
	}
	if id == p.ID {
		return nil, ErrForbidden
	}
	if err := s.users.SetStatus(ctx, id, status, status == models.StatusActive); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	s.log.Info("user status changed", zap.String("user", id), zap.String("status", string(status)), zap.String("by", p.ID))
	return s.Get(ctx, id)
}

// VerifyTeacher marks a teacher's credentials as checked.
func (s *UserService) VerifyTeacher(ctx context.Context, p Principal, id string) (*models.User, error) {
	if err := Authorize(p, VerbManageUsers, ""); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleTeacher {
		return nil, invalid("role", "only teachers can be verified")
	}
	if u.Verified {
		return u, nil
	}
	if err := s.users.SetVerified(ctx, id, true); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	u.Verified = true
	return u, nil
}
