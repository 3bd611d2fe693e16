// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/journalhub/internal/app/store/audit"
	"github.com/dalemusser/journalhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in and sign-out events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Sharing controls logging for entry shares, links, email shares and
	// team invites. Same values as Auth.
	Sharing string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.EntryID != nil {
		fields = append(fields, zap.String("entry_id", event.EntryID.Hex()))
	}
	if event.TeamID != nil {
		fields = append(fields, zap.String("team_id", event.TeamID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// A failed store write is logged and otherwise ignored.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategorySharing:
		setting = l.config.Sharing
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, ev audit.Event) audit.Event {
	if r != nil {
		ev.IP = ratelimit.ClientIP(r)
		ev.UserAgent = r.UserAgent()
	}
	return ev
}

// --- Authentication Events ---

// SignIn logs a successful token exchange.
func (l *Logger) SignIn(ctx context.Context, r *http.Request, userID, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignIn,
		ActorID:   userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}))
}

// SignInFailed logs a rejected token.
func (l *Logger) SignInFailed(ctx context.Context, r *http.Request, reason string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventSignInFailed,
		Success:       false,
		FailureReason: reason,
	}))
}

// SignOut logs a logout. userID is blank when the request had no session.
func (l *Logger) SignOut(ctx context.Context, r *http.Request, userID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignOut,
		ActorID:   userID,
		Success:   true,
	}))
}

// --- Sharing Events ---

// EntrySharedWithUser logs a direct grant.
func (l *Logger) EntrySharedWithUser(ctx context.Context, r *http.Request, actorID string, entryID primitive.ObjectID, targetUserID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventEntrySharedWithUser,
		ActorID:   actorID,
		UserID:    targetUserID,
		EntryID:   &entryID,
		Success:   true,
	}))
}

// EntrySharedWithTeam logs a team share and how many members it reached.
func (l *Logger) EntrySharedWithTeam(ctx context.Context, r *http.Request, actorID string, entryID, teamID primitive.ObjectID, granted int) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventEntrySharedWithTeam,
		ActorID:   actorID,
		EntryID:   &entryID,
		TeamID:    &teamID,
		Success:   true,
		Details:   map[string]string{"granted": strconv.Itoa(granted)},
	}))
}

// ShareLinkCreated logs a new bearer link.
func (l *Logger) ShareLinkCreated(ctx context.Context, r *http.Request, actorID string, entryID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventShareLinkCreated,
		ActorID:   actorID,
		EntryID:   &entryID,
		Success:   true,
	}))
}

// EntrySharedByEmail logs an email share. A failed send is recorded with
// success=false.
func (l *Logger) EntrySharedByEmail(ctx context.Context, r *http.Request, actorID, entryID string, recipients int, sendErr error) {
	ev := audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventEntrySharedByEmail,
		ActorID:   actorID,
		Success:   sendErr == nil,
		Details:   map[string]string{"recipients": strconv.Itoa(recipients)},
	}
	if oid, err := primitive.ObjectIDFromHex(entryID); err == nil {
		ev.EntryID = &oid
	}
	if sendErr != nil {
		ev.FailureReason = sendErr.Error()
	}
	l.Log(ctx, fromRequest(r, ev))
}

// EntryShareRevoked logs a grant switched to inactive.
func (l *Logger) EntryShareRevoked(ctx context.Context, r *http.Request, actorID string, entryID primitive.ObjectID, targetUserID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventEntryShareRevoked,
		ActorID:   actorID,
		UserID:    targetUserID,
		EntryID:   &entryID,
		Success:   true,
	}))
}

// TeamCreated logs a new team.
func (l *Logger) TeamCreated(ctx context.Context, r *http.Request, actorID string, teamID primitive.ObjectID, name string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventTeamCreated,
		ActorID:   actorID,
		TeamID:    &teamID,
		Success:   true,
		Details:   map[string]string{"name": name},
	}))
}

// TeamInvitesSent logs a batch of invites.
func (l *Logger) TeamInvitesSent(ctx context.Context, r *http.Request, actorID string, teamID primitive.ObjectID, invited int) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventTeamInvitesSent,
		ActorID:   actorID,
		TeamID:    &teamID,
		Success:   true,
		Details:   map[string]string{"invited": strconv.Itoa(invited)},
	}))
}

// InviteAccepted logs an invitee joining a team.
func (l *Logger) InviteAccepted(ctx context.Context, r *http.Request, userID string, teamID, inviteID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventInviteAccepted,
		ActorID:   userID,
		TeamID:    &teamID,
		Success:   true,
		Details:   map[string]string{"invite_id": inviteID.Hex()},
	}))
}

// InviteRejected logs a declined invite.
func (l *Logger) InviteRejected(ctx context.Context, r *http.Request, userID string, inviteID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventInviteRejected,
		ActorID:   userID,
		Success:   true,
		Details:   map[string]string{"invite_id": inviteID.Hex()},
	}))
}

// MemberRoleChanged logs an admin changing a member's role.
func (l *Logger) MemberRoleChanged(ctx context.Context, r *http.Request, actorID string, teamID primitive.ObjectID, userID, role string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventMemberRoleChanged,
		ActorID:   actorID,
		UserID:    userID,
		TeamID:    &teamID,
		Success:   true,
		Details:   map[string]string{"role": role},
	}))
}

// MemberRemoved logs a member leaving or being removed from a team.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID string, teamID primitive.ObjectID, userID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySharing,
		EventType: audit.EventMemberRemoved,
		ActorID:   actorID,
		UserID:    userID,
		TeamID:    &teamID,
		Success:   true,
	}))
}
