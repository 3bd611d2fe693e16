// internal/app/system/validators/validators.go
package validators

// Profiles are keyed by the identity provider's user id (a string), so every
// user_id / created_by / invited_by field below is a string, not an ObjectID.

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/journalhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("journals", journalsSchema())
	ensure("journal_comments", commentsSchema())

	ensure("teams", teamsSchema())
	ensure("team_memberships", teamMembershipsSchema())
	ensure("team_invites", teamInvitesSchema())

	ensure("shares", sharesSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "email_ci", "journal_count"},
			"properties": bson.M{
				"_id":           nonBlank,
				"email":         bson.M{"bsonType": "string"},
				"email_ci":      bson.M{"bsonType": "string"},
				"username":      bson.M{"bsonType": "string"},
				"full_name":     bson.M{"bsonType": "string"},
				"photo_url":     bson.M{"bsonType": "string"},
				"journal_count": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"badges":        bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"joined_at":     bson.M{"bsonType": "date"},
			},
		},
	}
}

func journalsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "title", "created_at"},
			"properties": bson.M{
				"user_id":     nonBlank,
				"title":       bson.M{"bsonType": "string"},
				"title_ci":    bson.M{"bsonType": "string"},
				"content":     bson.M{"bsonType": "string"},
				"categories":  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"audio_files": bson.M{"bsonType": "array"},
				"shared_with": bson.M{
					"bsonType": "object",
					"additionalProperties": bson.M{
						"bsonType": "object",
						"required": bson.A{"status", "shared_at"},
						"properties": bson.M{
							"status":    bson.M{"enum": bson.A{models.GrantActive, models.GrantInactive}},
							"shared_at": bson.M{"bsonType": "date"},
						},
					},
				},
				"created_at": bson.M{"bsonType": "date"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func commentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"entry_id", "user_id", "text", "created_at"},
			"properties": bson.M{
				"entry_id":   bson.M{"bsonType": "objectId"},
				"user_id":    nonBlank,
				"text":       nonBlank,
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func teamsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "created_by", "created_at"},
			"properties": bson.M{
				"name":        nonBlank,
				"name_ci":     nonBlank,
				"description": bson.M{"bsonType": "string"},
				"created_by":  nonBlank,
				"created_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func teamMembershipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"team_id", "user_id", "role"},
			"properties": bson.M{
				"team_id":    bson.M{"bsonType": "objectId"},
				"user_id":    nonBlank,
				"email":      bson.M{"bsonType": "string"},
				"role":       bson.M{"enum": bson.A{models.TeamRoleAdmin, models.TeamRoleMember}},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func teamInvitesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"team_id", "invited_email", "status", "created_at"},
			"properties": bson.M{
				"team_id":       bson.M{"bsonType": "objectId"},
				"team_name":     bson.M{"bsonType": "string"},
				"invited_by":    bson.M{"bsonType": "string"},
				"invited_email": nonBlank,
				"status": bson.M{"enum": bson.A{
					models.InvitePending, models.InviteAccepted, models.InviteRejected, models.InviteRedundant,
				}},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func sharesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"entry_id", "type", "created_by", "created_at"},
			"properties": bson.M{
				"entry_id":   bson.M{"bsonType": "objectId"},
				"type":       bson.M{"enum": bson.A{models.ShareTypeLink, models.ShareTypeEmail}},
				"token_hash": bson.M{"bsonType": "string"},
				"email":      bson.M{"bsonType": "string"},
				"created_by": nonBlank,
				"created_at": bson.M{"bsonType": "date"},
				"expires_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
