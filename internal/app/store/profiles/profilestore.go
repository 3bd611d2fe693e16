// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/journalhub/internal/app/system/normalize"
	"github.com/dalemusser/journalhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateProfile is returned when the id or email already has a profile.
	ErrDuplicateProfile = errors.New("a profile for this user or email already exists")
	// ErrUsernameTaken is returned when another profile holds the username.
	ErrUsernameTaken = errors.New("username is already taken")
)

var summaryProjection = bson.M{"_id": 1, "full_name": 1, "username": 1, "email": 1, "photo_url": 1}

// Create inserts a new profile. Search fields, badges and timestamps are
// filled in here; the caller supplies id, email and display fields.
func (s *Store) Create(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	p.FullName = normalize.Name(p.FullName)
	p.FullNameCI = text.Fold(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	p.EmailCI = normalize.Email(p.Email)
	p.Username = normalize.Username(p.Username)
	if len(p.Badges) == 0 {
		p.Badges = []string{models.DefaultBadge}
	}
	now := time.Now().UTC()
	p.JournalCount = 0
	p.JoinedAt = now
	p.LastActive = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.UserProfile{}, classifyDup(err)
	}
	return p, nil
}

func classifyDup(err error) error {
	if !wafflemongo.IsDup(err) {
		return err
	}
	if strings.Contains(err.Error(), "username") {
		return ErrUsernameTaken
	}
	return ErrDuplicateProfile
}

// GetByID loads a profile. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail looks up a profile by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.c.FindOne(ctx, bson.M{"email_ci": normalize.Email(email)}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileUpdate holds the owner-editable fields. Nil pointers are left unchanged.
type ProfileUpdate struct {
	FullName         *string
	Username         *string
	PhotoURL         *string
	Bio              *string
	DateOfBirth      *string
	MinistryRole     *string
	HomebaseMinistry *string
	SpiritualLeader  *string
	SpiritualGifts   []string
	PrayerPartners   []string
}

// Update applies upd to the profile id and returns the stored result.
func (s *Store) Update(ctx context.Context, id string, upd ProfileUpdate) (*models.UserProfile, error) {
	set := bson.M{"last_active": time.Now().UTC()}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Username != nil {
		set["username"] = normalize.Username(*upd.Username)
	}
	str := map[string]*string{
		"photo_url":         upd.PhotoURL,
		"bio":               upd.Bio,
		"date_of_birth":     upd.DateOfBirth,
		"ministry_role":     upd.MinistryRole,
		"homebase_ministry": upd.HomebaseMinistry,
		"spiritual_leader":  upd.SpiritualLeader,
	}
	for k, v := range str {
		if v != nil {
			set[k] = strings.TrimSpace(*v)
		}
	}
	if upd.SpiritualGifts != nil {
		set["spiritual_gifts"] = upd.SpiritualGifts
	}
	if upd.PrayerPartners != nil {
		set["prayer_partners"] = upd.PrayerPartners
	}

	var out models.UserProfile
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return nil, classifyDup(err)
	}
	return &out, nil
}

// IsUsernameAvailable reports whether no profile other than excludeID
// holds username. An empty excludeID checks against all profiles.
func (s *Store) IsUsernameAvailable(ctx context.Context, username, excludeID string) (bool, error) {
	filter := bson.M{"username": normalize.Username(username)}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	err := s.c.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// SearchByEmailPrefix returns up to limit profiles whose lowercased email
// starts with prefix, ordered by email_ci.
func (s *Store) SearchByEmailPrefix(ctx context.Context, prefix string, limit int64) ([]models.UserSummary, error) {
	filter := bson.M{"email_ci": bson.M{"$regex": "^" + regexp.QuoteMeta(normalize.Email(prefix))}}
	opts := options.Find().
		SetSort(bson.D{{Key: "email_ci", Value: 1}}).
		SetLimit(limit).
		SetProjection(summaryProjection)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.UserSummary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSummaries loads the public subset for ids, keyed by id. Unknown ids
// are omitted.
func (s *Store) GetSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(summaryProjection))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.UserSummary
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// IncJournalCount adjusts journal_count by delta. A decrement never takes
// the count below zero; it is a no-op in that case.
func (s *Store) IncJournalCount(ctx context.Context, id string, delta int) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["journal_count"] = bson.M{"$gte": -delta}
	}
	_, err := s.c.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"journal_count": delta},
		"$set": bson.M{"last_active": time.Now().UTC()},
	})
	return err
}

// Touch records activity for id.
func (s *Store) Touch(ctx context.Context, id string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_active": time.Now().UTC()}})
	return err
}
