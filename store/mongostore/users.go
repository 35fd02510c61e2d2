package mongostore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

type userDoc struct {
	ID           string            `bson:"_id"`
	Name         string            `bson:"name"`
	Email        string            `bson:"email"`
	PasswordHash string            `bson:"passwordHash"`
	Role         models.Role       `bson:"role"`
	Status       models.UserStatus `bson:"status"`
	Strikes      int               `bson:"strikes"`
	Points       int               `bson:"points"`
	Verified     bool              `bson:"verified"`
	Bio          string            `bson:"bio,omitempty"`
	School       string            `bson:"school,omitempty"`
	Subjects     []string          `bson:"subjects"`
	CreatedAt    time.Time         `bson:"createdAt"`
	UpdatedAt    time.Time         `bson:"updatedAt"`
}

func userDocFromModel(u *models.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       u.Status,
		Strikes:      u.Strikes,
		Points:       u.Points,
		Verified:     u.Verified,
		Bio:          u.Bio,
		School:       u.School,
		Subjects:     orEmpty(u.Subjects),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userDocToModel(d userDoc) models.User {
	return models.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		Status:       d.Status,
		Strikes:      d.Strikes,
		Points:       d.Points,
		Verified:     d.Verified,
		Bio:          d.Bio,
		School:       d.School,
		Subjects:     d.Subjects,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := s.users.InsertOne(ctx, userDocFromModel(u))
	return translate(err)
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var d userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(err)
	}
	u := userDocToModel(d)
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *Store) decodeUsers(ctx context.Context, cur *mongo.Cursor) ([]models.User, error) {
	defer cur.Close(ctx)
	var out []models.User
	for cur.Next(ctx) {
		var d userDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, userDocToModel(d))
	}
	return out, cur.Err()
}

func (s *Store) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return s.decodeUsers(ctx, cur)
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, int64, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		rx := primitiveRegex(f.Search)
		filter["$or"] = bson.A{bson.M{"name": rx}, bson.M{"email": rx}}
	}
	total, err := s.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.users.Find(ctx, filter, findOptions(f.Page, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	users, err := s.decodeUsers(ctx, cur)
	return users, total, err
}

func (s *Store) TopUsers(ctx context.Context, limit int) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "points", Value: -1}, {Key: "createdAt", Value: 1}}).SetLimit(int64(limit))
	cur, err := s.users.Find(ctx, bson.M{"status": bson.M{"$ne": models.StatusBanned}}, opts)
	if err != nil {
		return nil, err
	}
	return s.decodeUsers(ctx, cur)
}

func (s *Store) UpdateProfile(ctx context.Context, id string, p store.ProfileUpdate) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Bio != nil {
		set["bio"] = *p.Bio
	}
	if p.School != nil {
		set["school"] = *p.School
	}
	if p.Subjects != nil {
		set["subjects"] = p.Subjects
	}
	return matched(s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}))
}

func (s *Store) AddPoints(ctx context.Context, id string, n int) error {
	return matched(s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"points": n},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}))
}

// AddStrike uses an update pipeline so the cap is applied in the same write.
func (s *Store) AddStrike(ctx context.Context, id string) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "strikes", Value: bson.D{{Key: "$min", Value: bson.A{
				bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$strikes", 0}}}, 1}}},
				models.MaxStrikes,
			}}}},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}
	var d userDoc
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		return 0, translate(err)
	}
	return d.Strikes, nil
}

func (s *Store) SetStatus(ctx context.Context, id string, status models.UserStatus, resetStrikes bool) error {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if resetStrikes {
		set["strikes"] = 0
	}
	return matched(s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}))
}

func (s *Store) SetVerified(ctx context.Context, id string, verified bool) error {
	return matched(s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"verified": verified, "updatedAt": time.Now().UTC()}}))
}

func primitiveRegex(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}
