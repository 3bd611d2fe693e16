// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Problems are aggregated so every failing collection shows up in one error.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"journals", ensureJournals},
		{"teams", ensureTeams},
		{"team_memberships", ensureTeamMemberships},
		{"team_invites", ensureTeamInvites},
		{"shares", ensureShares},
		{"journal_comments", ensureComments},
		{"audit_events", ensureAuditEvents},
	}
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func sameTTL(a, b *int32) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listIndexes(ctx, coll)

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		var desiredTTL *int32
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
			desiredTTL = m.Options.ExpireAfterSeconds
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) && sameTTL(desiredTTL, ex.ExpireAfterSeconds) &&
				(desiredName == "" || ex.Name == desiredName) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			// Options or name differ: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), desiredName, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			// Prefix search on email and lookup by email during invites.
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_users_email_ci").SetUnique(true),
		},
		{
			// Usernames are optional; only enforce uniqueness when present.
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("uniq_users_username").SetUnique(true).
				SetPartialFilterExpression(bson.M{"username": bson.M{"$type": "string", "$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_fullnameci__id"),
		},
	})
}

func ensureJournals(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("journals"), []mongo.IndexModel{
		{
			// Dashboard "my entries", newest first.
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_journals_user_created"),
		},
		{
			// shared_with is keyed by recipient user id.
			Keys:    bson.D{{Key: "shared_with.$**", Value: 1}},
			Options: options.Index().SetName("idx_journals_shared_with_wildcard"),
		},
	})
}

func ensureTeams(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("teams"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_teams_creator_created"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_teams_nameci__id"),
		},
	})
}

func ensureTeamMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("team_memberships"), []mongo.IndexModel{
		{
			// A user appears at most once per team.
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_team_memberships_team_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "team_id", Value: 1}},
			Options: options.Index().SetName("idx_team_memberships_user_team"),
		},
	})
}

func ensureTeamInvites(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("team_invites"), []mongo.IndexModel{
		{
			// Pending invites for the signed-in user's email.
			Keys:    bson.D{{Key: "invited_email", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_team_invites_email_status_created"),
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_team_invites_team_status"),
		},
	})
}

func ensureShares(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("shares"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetName("uniq_shares_token_hash").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "entry_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_shares_entry_created"),
		},
		{
			// Expired link tokens are removed by the TTL monitor.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("ttl_shares_expires_at").SetExpireAfterSeconds(0),
		},
	})
}

func ensureComments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("journal_comments"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "entry_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_journal_comments_entry_created"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "entry_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_entry_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}
