// internal/app/services/sharing/share.go
package sharing

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/normalize"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ownedEntry loads entryID and checks that sess owns it.
func (c *Coordinator) ownedEntry(ctx context.Context, op string, sess session.Session, entryID primitive.ObjectID) (*models.JournalEntry, error) {
	if !sess.Valid() {
		return nil, apperr.Unauthorized(op, "sign in required")
	}
	e, err := c.entries.GetByID(ctx, entryID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(op, "entry not found")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if e.UserID != sess.UserID {
		return nil, apperr.Unauthorized(op, "only the owner can share this entry")
	}
	return e, nil
}

// ShareWithUser grants targetUserID read access to the entry. Re-sharing
// refreshes the existing grant. The target's profile supplies the email
// when targetEmail is blank and the cached photo; a missing profile is
// tolerated.
func (c *Coordinator) ShareWithUser(ctx context.Context, sess session.Session, entryID primitive.ObjectID, targetUserID, targetEmail string) (models.ShareGrant, error) {
	const op = "sharing.ShareWithUser"

	targetUserID = strings.TrimSpace(targetUserID)
	if !session.ValidUserID(targetUserID) {
		return models.ShareGrant{}, apperr.Validation(op, "a user to share with is required")
	}
	e, err := c.ownedEntry(ctx, op, sess, entryID)
	if err != nil {
		return models.ShareGrant{}, err
	}
	if targetUserID == e.UserID {
		return models.ShareGrant{}, apperr.Validation(op, "an entry cannot be shared with its owner")
	}

	grant := models.ShareGrant{
		Email:         normalize.Email(targetEmail),
		SharedAt:      c.now().UTC(),
		Status:        models.GrantActive,
		SharedByEmail: sess.Email,
	}
	if p, perr := c.profiles.GetByID(ctx, targetUserID); perr == nil {
		grant.PhotoURL = p.PhotoURL
		if grant.Email == "" {
			grant.Email = p.EmailCI
		}
	} else if !errors.Is(perr, mongo.ErrNoDocuments) {
		c.log.Warn("share target profile lookup failed",
			zap.String("target_user_id", targetUserID),
			zap.Error(apperr.BestEffort(op, perr)))
	}

	if err := c.entries.SetGrant(ctx, entryID, targetUserID, grant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ShareGrant{}, apperr.NotFound(op, "entry not found")
		}
		return models.ShareGrant{}, apperr.WriteFailed(op, err)
	}

	c.log.Info("entry shared with user",
		zap.String("entry_id", entryID.Hex()),
		zap.String("owner_id", sess.UserID),
		zap.String("target_user_id", targetUserID))
	return grant, nil
}

// RevokeShare switches targetUserID's grant on the entry to inactive. The
// grant stays in place, so a later share reactivates it; an inactive grant
// gives no access. NotFound when the entry has no grant for the user.
func (c *Coordinator) RevokeShare(ctx context.Context, sess session.Session, entryID primitive.ObjectID, targetUserID string) error {
	const op = "sharing.RevokeShare"

	targetUserID = strings.TrimSpace(targetUserID)
	if !session.ValidUserID(targetUserID) {
		return apperr.Validation(op, "a user to revoke is required")
	}
	if _, err := c.ownedEntry(ctx, op, sess, entryID); err != nil {
		return err
	}
	ok, err := c.entries.SetGrantStatus(ctx, entryID, targetUserID, models.GrantInactive)
	if err != nil {
		return apperr.WriteFailed(op, err)
	}
	if !ok {
		return apperr.NotFound(op, "this entry is not shared with that user")
	}
	c.log.Info("entry share revoked",
		zap.String("entry_id", entryID.Hex()),
		zap.String("target_user_id", targetUserID))
	return nil
}

// ShareWithTeam grants every member of teamID except the acting user read
// access to the entry, in a single update. teamName overrides the stored
// name on the grants when set. It returns the user ids granted, sorted.
func (c *Coordinator) ShareWithTeam(ctx context.Context, sess session.Session, entryID, teamID primitive.ObjectID, teamName string) ([]string, error) {
	const op = "sharing.ShareWithTeam"

	e, err := c.ownedEntry(ctx, op, sess, entryID)
	if err != nil {
		return nil, err
	}
	team, err := c.teams.GetByID(ctx, teamID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(op, "team not found")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if _, err := c.memberships.Get(ctx, teamID, sess.UserID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Unauthorized(op, "you are not a member of this team")
		}
		return nil, apperr.Internal(op, err)
	}

	members, err := c.memberships.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	name := strings.TrimSpace(teamName)
	if name == "" {
		name = team.Name
	}

	// Profiles fill in missing membership emails and cache photos.
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	summaries, serr := c.profiles.GetSummaries(ctx, ids)
	if serr != nil {
		c.log.Warn("team member profile lookup failed",
			zap.String("team_id", teamID.Hex()),
			zap.Error(apperr.BestEffort(op, serr)))
		summaries = map[string]models.UserSummary{}
	}

	now := c.now().UTC()
	tid := team.ID
	grants := make(map[string]models.ShareGrant, len(members))
	for _, m := range members {
		if m.UserID == sess.UserID || m.UserID == e.UserID || !session.ValidUserID(m.UserID) {
			continue
		}
		email := m.Email
		sum := summaries[m.UserID]
		if email == "" {
			email = normalize.Email(sum.Email)
		}
		if email == "" {
			c.log.Warn("team member has no email; granting without one",
				zap.String("team_id", teamID.Hex()),
				zap.String("user_id", m.UserID))
		}
		grants[m.UserID] = models.ShareGrant{
			Email:         email,
			SharedAt:      now,
			Status:        models.GrantActive,
			SharedByEmail: sess.Email,
			SharedViaTeam: &tid,
			TeamName:      name,
			PhotoURL:      sum.PhotoURL,
		}
	}

	granted := make([]string, 0, len(grants))
	for uid := range grants {
		granted = append(granted, uid)
	}
	sort.Strings(granted)
	if len(grants) == 0 {
		return granted, nil
	}

	if err := c.entries.SetGrants(ctx, entryID, grants); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound(op, "entry not found")
		}
		return nil, apperr.WriteFailed(op, err)
	}

	c.log.Info("entry shared with team",
		zap.String("entry_id", entryID.Hex()),
		zap.String("team_id", teamID.Hex()),
		zap.Int("granted", len(granted)))
	return granted, nil
}

// SearchUsers returns up to SearchLimit profiles whose email starts with
// query, case-insensitively. Queries shorter than three characters return
// an empty list without touching the store.
func (c *Coordinator) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	q := normalize.Email(query)
	if len([]rune(q)) < minSearchLen {
		return []models.UserSummary{}, nil
	}
	out, err := c.profiles.SearchByEmailPrefix(ctx, q, SearchLimit)
	if err != nil {
		return nil, apperr.Internal("sharing.SearchUsers", err)
	}
	return out, nil
}
