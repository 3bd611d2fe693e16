// internal/app/services/sharing/teams.go
package sharing

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/inputval"
	"github.com/dalemusser/journalhub/internal/app/system/mailer"
	"github.com/dalemusser/journalhub/internal/app/system/normalize"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TeamSummary is one row of ListTeams.
type TeamSummary struct {
	Team        models.Team `json:"team"`
	Role        string      `json:"role"`
	MemberCount int         `json:"member_count"`
}

// TeamList is the caller's teams plus their genuinely pending invites.
type TeamList struct {
	Teams   []TeamSummary       `json:"teams"`
	Invites []models.TeamInvite `json:"invites"`
}

// MemberView is a team member as shown to other members.
type MemberView struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// TeamDetail is a team with its members.
type TeamDetail struct {
	Team    models.Team  `json:"team"`
	Role    string       `json:"role"`
	Members []MemberView `json:"members"`
}

// InviteResult reports what InviteMembers did with each address.
type InviteResult struct {
	Invited []models.TeamInvite `json:"invited"`
	Skipped []string            `json:"skipped,omitempty"` // already a member or already invited
	Invalid []string            `json:"invalid,omitempty"`
	Failed  []string            `json:"failed,omitempty"`
}

type createTeamInput struct {
	Name        string `validate:"required,max=100" label:"Team name"`
	Description string `validate:"max=1000" label:"Description"`
}

// CreateTeam creates a team with the acting user as its only admin. The
// team and the admin membership are written in one transaction.
func (c *Coordinator) CreateTeam(ctx context.Context, sess session.Session, name, description string) (*models.Team, error) {
	const op = "sharing.CreateTeam"
	if !sess.Valid() {
		return nil, apperr.Unauthorized(op, "sign in required")
	}
	in := createTeamInput{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	if res := inputval.Validate(in); res.HasErrors() {
		return nil, apperr.Validation(op, res.First())
	}

	var team models.Team
	err := c.tx.Run(ctx, func(ctx context.Context) error {
		t, err := c.teams.Create(ctx, models.Team{Name: in.Name, Description: in.Description, CreatedBy: sess.UserID})
		if err != nil {
			return err
		}
		if _, err := c.memberships.Add(ctx, t.ID, sess.UserID, normalize.Email(sess.Email), models.TeamRoleAdmin); err != nil {
			return err
		}
		team = t
		return nil
	})
	if err != nil {
		return nil, apperr.WriteFailed(op, err)
	}

	c.log.Info("team created", zap.String("team_id", team.ID.Hex()), zap.String("created_by", sess.UserID))
	return &team, nil
}

// teamFor loads teamID and the acting user's membership in it.
func (c *Coordinator) teamFor(ctx context.Context, op string, sess session.Session, teamID primitive.ObjectID) (*models.Team, *models.TeamMembership, error) {
	if !sess.Valid() {
		return nil, nil, apperr.Unauthorized(op, "sign in required")
	}
	team, err := c.teams.GetByID(ctx, teamID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, apperr.NotFound(op, "team not found")
	}
	if err != nil {
		return nil, nil, apperr.Internal(op, err)
	}
	m, err := c.memberships.Get(ctx, teamID, sess.UserID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, apperr.Unauthorized(op, "you are not a member of this team")
	}
	if err != nil {
		return nil, nil, apperr.Internal(op, err)
	}
	return team, m, nil
}

// InviteMembers creates one pending invite per distinct valid address and
// emails each invitee a join link. Inserts are independent: a failure for
// one address does not undo the others. Email delivery is best-effort.
func (c *Coordinator) InviteMembers(ctx context.Context, sess session.Session, teamID primitive.ObjectID, emails []string) (*InviteResult, error) {
	const op = "sharing.InviteMembers"

	team, m, err := c.teamFor(ctx, op, sess, teamID)
	if err != nil {
		return nil, err
	}
	if m.Role != models.TeamRoleAdmin {
		return nil, apperr.Unauthorized(op, "only team admins can invite members")
	}

	res := &InviteResult{Invited: []models.TeamInvite{}}
	var valid []string
	seen := map[string]bool{}
	for _, raw := range emails {
		// An entry may itself be a comma-separated list pasted by the user.
		for _, e := range normalize.EmailList(raw) {
			if seen[e] {
				continue
			}
			seen[e] = true
			if !inputval.IsValidEmail(e) {
				res.Invalid = append(res.Invalid, e)
				continue
			}
			valid = append(valid, e)
		}
	}
	if len(valid) == 0 {
		return nil, apperr.Validation(op, "at least one valid email address is required")
	}

	members, err := c.memberships.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	memberEmails := map[string]bool{}
	memberIDs := map[string]bool{}
	for _, mm := range members {
		memberIDs[mm.UserID] = true
		if mm.Email != "" {
			memberEmails[normalize.Email(mm.Email)] = true
		}
	}

	inviter := sess.Name
	if inviter == "" {
		inviter = sess.Email
	}

	for _, e := range valid {
		if memberEmails[e] || c.isMemberByProfile(ctx, memberIDs, e) {
			res.Skipped = append(res.Skipped, e)
			continue
		}
		dup, err := c.invites.HasPending(ctx, teamID, e)
		if err != nil {
			c.log.Warn("pending invite check failed; inviting anyway",
				zap.String("team_id", teamID.Hex()),
				zap.String("email", e),
				zap.Error(err))
		}
		if dup {
			res.Skipped = append(res.Skipped, e)
			continue
		}
		inv, err := c.invites.Create(ctx, models.TeamInvite{
			TeamID:       teamID,
			TeamName:     team.Name,
			InvitedBy:    sess.Email,
			InvitedEmail: e,
		})
		if err != nil {
			c.log.Warn("invite insert failed",
				zap.String("team_id", teamID.Hex()),
				zap.String("email", e),
				zap.Error(err))
			res.Failed = append(res.Failed, e)
			continue
		}
		res.Invited = append(res.Invited, inv)
		c.sendInvite(ctx, inv, inviter)
	}

	if len(res.Invited) == 0 && len(res.Failed) > 0 {
		return res, apperr.WriteFailed(op, errors.New("no invites could be saved"))
	}

	c.log.Info("team invites created",
		zap.String("team_id", teamID.Hex()),
		zap.Int("invited", len(res.Invited)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("failed", len(res.Failed)))
	return res, nil
}

// isMemberByProfile catches members whose membership record carries no
// email or an older one, by resolving email to a profile.
func (c *Coordinator) isMemberByProfile(ctx context.Context, memberIDs map[string]bool, email string) bool {
	p, err := c.profiles.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			c.log.Warn("invitee profile lookup failed", zap.String("email", email), zap.Error(err))
		}
		return false
	}
	return memberIDs[p.ID]
}

func (c *Coordinator) sendInvite(ctx context.Context, inv models.TeamInvite, inviter string) {
	if c.mail == nil {
		return
	}
	msg := mailer.BuildInviteEmail(mailer.InviteEmailData{
		SiteName:  c.cfg.SiteName,
		TeamName:  inv.TeamName,
		InvitedBy: inviter,
		JoinLink:  strings.TrimRight(c.cfg.BaseURL, "/") + "/teams/invites/" + inv.ID.Hex(),
	})
	msg.To = inv.InvitedEmail
	if err := c.mail.Send(ctx, msg); err != nil {
		c.log.Warn("invite email not sent",
			zap.String("invite_id", inv.ID.Hex()),
			zap.Error(apperr.BestEffort("sharing.InviteMembers", err)))
	}
}

type memberRoleInput struct {
	Role string `validate:"required,teamrole" label:"Role"`
}

// keepAnAdmin fails when teamID is down to its last admin.
func (c *Coordinator) keepAnAdmin(ctx context.Context, op string, teamID primitive.ObjectID) error {
	n, err := c.memberships.CountByTeam(ctx, teamID, models.TeamRoleAdmin)
	if err != nil {
		return apperr.Internal(op, err)
	}
	if n <= 1 {
		return apperr.Validation(op, "a team must keep at least one admin")
	}
	return nil
}

// member loads userID's membership in teamID.
func (c *Coordinator) member(ctx context.Context, op string, teamID primitive.ObjectID, userID string) (*models.TeamMembership, error) {
	m, err := c.memberships.Get(ctx, teamID, strings.TrimSpace(userID))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(op, "member not found")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return m, nil
}

// SetMemberRole makes userID an admin or a member of the team. Admins only.
// The last admin cannot be demoted.
func (c *Coordinator) SetMemberRole(ctx context.Context, sess session.Session, teamID primitive.ObjectID, userID, role string) (*models.TeamMembership, error) {
	const op = "sharing.SetMemberRole"

	_, m, err := c.teamFor(ctx, op, sess, teamID)
	if err != nil {
		return nil, err
	}
	if m.Role != models.TeamRoleAdmin {
		return nil, apperr.Unauthorized(op, "only team admins can change roles")
	}
	in := memberRoleInput{Role: normalize.Role(role)}
	if res := inputval.Validate(in); res.HasErrors() {
		return nil, apperr.Validation(op, res.First())
	}
	target, err := c.member(ctx, op, teamID, userID)
	if err != nil {
		return nil, err
	}
	if target.Role == in.Role {
		return target, nil
	}
	if target.Role == models.TeamRoleAdmin {
		if err := c.keepAnAdmin(ctx, op, teamID); err != nil {
			return nil, err
		}
	}
	if err := c.memberships.SetRole(ctx, teamID, target.UserID, in.Role); err != nil {
		return nil, apperr.WriteFailed(op, err)
	}
	target.Role = in.Role

	c.log.Info("team member role changed",
		zap.String("team_id", teamID.Hex()),
		zap.String("user_id", target.UserID),
		zap.String("role", in.Role))
	return target, nil
}

// RemoveMember takes userID out of the team. Admins may remove anyone and
// members may remove themselves. The last admin cannot leave. Grants made
// through the team are left in place.
func (c *Coordinator) RemoveMember(ctx context.Context, sess session.Session, teamID primitive.ObjectID, userID string) error {
	const op = "sharing.RemoveMember"

	_, m, err := c.teamFor(ctx, op, sess, teamID)
	if err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID != sess.UserID && m.Role != models.TeamRoleAdmin {
		return apperr.Unauthorized(op, "only team admins can remove other members")
	}
	target, err := c.member(ctx, op, teamID, userID)
	if err != nil {
		return err
	}
	if target.Role == models.TeamRoleAdmin {
		if err := c.keepAnAdmin(ctx, op, teamID); err != nil {
			return err
		}
	}
	if err := c.memberships.Remove(ctx, teamID, target.UserID); err != nil {
		return apperr.WriteFailed(op, err)
	}

	c.log.Info("team member removed",
		zap.String("team_id", teamID.Hex()),
		zap.String("user_id", target.UserID),
		zap.String("removed_by", sess.UserID))
	return nil
}

// ReconcileInvites closes pending invites for teams the user already
// belongs to (marking them redundant) and returns the rest. Status updates
// are conditional on pending, so repeated or concurrent runs converge.
func (c *Coordinator) ReconcileInvites(ctx context.Context, userEmail string, currentTeamIDs []primitive.ObjectID) ([]models.TeamInvite, error) {
	const op = "sharing.ReconcileInvites"

	email := normalize.Email(userEmail)
	if email == "" {
		return []models.TeamInvite{}, nil
	}
	pending, err := c.invites.ListPendingForEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	member := make(map[primitive.ObjectID]bool, len(currentTeamIDs))
	for _, id := range currentTeamIDs {
		member[id] = true
	}

	open := make([]models.TeamInvite, 0, len(pending))
	var redundant []primitive.ObjectID
	for _, inv := range pending {
		if member[inv.TeamID] {
			redundant = append(redundant, inv.ID)
			continue
		}
		open = append(open, inv)
	}

	if len(redundant) > 0 {
		n, err := c.invites.MarkRedundant(ctx, redundant)
		if err != nil {
			return nil, apperr.WriteFailed(op, err)
		}
		c.log.Debug("invites marked redundant", zap.String("email", email), zap.Int64("count", n))
	}
	return open, nil
}

// invitee loads inviteID and checks it is addressed to sess.
func (c *Coordinator) invitee(ctx context.Context, op string, sess session.Session, inviteID primitive.ObjectID) (*models.TeamInvite, error) {
	if !sess.Valid() {
		return nil, apperr.Unauthorized(op, "sign in required")
	}
	inv, err := c.invites.GetByID(ctx, inviteID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(op, "invite not found")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if normalize.Email(sess.Email) != inv.InvitedEmail {
		return nil, apperr.Unauthorized(op, "this invite was sent to a different email address")
	}
	return inv, nil
}

// AcceptInvite adds the acting user to the invite's team as a member and
// marks the invite accepted, in one transaction where supported. Accepting
// an already accepted or redundant invite adds no duplicate membership.
func (c *Coordinator) AcceptInvite(ctx context.Context, sess session.Session, inviteID primitive.ObjectID) (*models.TeamInvite, error) {
	const op = "sharing.AcceptInvite"

	inv, err := c.invitee(ctx, op, sess, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.Status == models.InviteRejected {
		return nil, apperr.Validation(op, "this invite was declined")
	}
	if _, err := c.teams.GetByID(ctx, inv.TeamID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound(op, "team not found")
		}
		return nil, apperr.Internal(op, err)
	}

	err = c.tx.Run(ctx, func(ctx context.Context) error {
		if _, err := c.memberships.Add(ctx, inv.TeamID, sess.UserID, inv.InvitedEmail, models.TeamRoleMember); err != nil {
			return err
		}
		_, err := c.invites.SetStatus(ctx, inv.ID, models.InviteAccepted, sess.UserID, models.InvitePending)
		return err
	})
	if err != nil {
		return nil, apperr.WriteFailed(op, err)
	}

	if inv.Status == models.InvitePending {
		inv.Status = models.InviteAccepted
		inv.RespondedBy = sess.UserID
	}
	c.log.Info("invite accepted",
		zap.String("invite_id", inv.ID.Hex()),
		zap.String("team_id", inv.TeamID.Hex()),
		zap.String("user_id", sess.UserID))
	return inv, nil
}

// RejectInvite moves a pending invite to rejected. Rejecting a rejected or
// redundant invite is a no-op; an accepted invite cannot be rejected.
func (c *Coordinator) RejectInvite(ctx context.Context, sess session.Session, inviteID primitive.ObjectID) error {
	const op = "sharing.RejectInvite"

	inv, err := c.invitee(ctx, op, sess, inviteID)
	if err != nil {
		return err
	}
	switch inv.Status {
	case models.InviteAccepted:
		return apperr.Validation(op, "this invite was already accepted")
	case models.InviteRejected, models.InviteRedundant:
		return nil
	}
	if _, err := c.invites.SetStatus(ctx, inv.ID, models.InviteRejected, sess.UserID, models.InvitePending); err != nil {
		return apperr.WriteFailed(op, err)
	}
	return nil
}

// GetInvite returns an invite for the join page.
func (c *Coordinator) GetInvite(ctx context.Context, inviteID primitive.ObjectID) (*models.TeamInvite, error) {
	inv, err := c.invites.GetByID(ctx, inviteID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("sharing.GetInvite", "invite not found")
	}
	if err != nil {
		return nil, apperr.Internal("sharing.GetInvite", err)
	}
	return inv, nil
}

// ListTeams returns the caller's teams with role and member count, plus
// pending invites after reconciliation.
func (c *Coordinator) ListTeams(ctx context.Context, sess session.Session) (*TeamList, error) {
	const op = "sharing.ListTeams"
	if !sess.Valid() {
		return nil, apperr.Unauthorized(op, "sign in required")
	}

	ms, err := c.memberships.ListForUser(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	roles := make(map[primitive.ObjectID]string, len(ms))
	ids := make([]primitive.ObjectID, 0, len(ms))
	for _, m := range ms {
		roles[m.TeamID] = m.Role
		ids = append(ids, m.TeamID)
	}

	teams, err := c.teams.GetMany(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	counts, err := c.memberships.CountPerTeam(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	out := &TeamList{Teams: make([]TeamSummary, 0, len(teams))}
	for _, t := range teams {
		out.Teams = append(out.Teams, TeamSummary{Team: t, Role: roles[t.ID], MemberCount: counts[t.ID]})
	}

	out.Invites, err = c.ReconcileInvites(ctx, sess.Email, ids)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetTeam returns a team and its members. Only members may view it.
func (c *Coordinator) GetTeam(ctx context.Context, sess session.Session, teamID primitive.ObjectID) (*TeamDetail, error) {
	const op = "sharing.GetTeam"

	team, m, err := c.teamFor(ctx, op, sess, teamID)
	if err != nil {
		return nil, err
	}
	members, err := c.memberships.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	ids := make([]string, 0, len(members))
	for _, mm := range members {
		ids = append(ids, mm.UserID)
	}
	summaries, err := c.profiles.GetSummaries(ctx, ids)
	if err != nil {
		c.log.Warn("member profile lookup failed", zap.String("team_id", teamID.Hex()), zap.Error(err))
		summaries = map[string]models.UserSummary{}
	}

	out := &TeamDetail{Team: *team, Role: m.Role, Members: make([]MemberView, 0, len(members))}
	for _, mm := range members {
		s := summaries[mm.UserID]
		email := mm.Email
		if email == "" {
			email = s.Email
		}
		out.Members = append(out.Members, MemberView{
			UserID:   mm.UserID,
			Email:    email,
			Role:     mm.Role,
			FullName: s.FullName,
			PhotoURL: s.PhotoURL,
		})
	}
	return out, nil
}
