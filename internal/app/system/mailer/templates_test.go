package mailer

import (
	"strings"
	"testing"
)

func TestBuildShareEmail(t *testing.T) {
	e := BuildShareEmail(ShareEmailData{
		SiteName:   "JournalHub",
		SharedBy:   "alice@example.com",
		EntryTitle: "Morning <notes>",
		ShareLink:  "https://journalhub.test/shared/abc",
	})

	if e.Subject != "Morning <notes> has been shared with you" {
		t.Errorf("Subject = %q", e.Subject)
	}
	if !strings.Contains(e.TextBody, "https://journalhub.test/shared/abc") {
		t.Errorf("text body missing link: %q", e.TextBody)
	}
	if strings.Contains(e.HTMLBody, "<notes>") {
		t.Error("HTML body should escape the title")
	}
	if !strings.Contains(e.HTMLBody, "alice@example.com shared a journal entry") {
		t.Error("HTML body missing sharer")
	}
}

func TestBuildInviteEmail(t *testing.T) {
	e := BuildInviteEmail(InviteEmailData{
		SiteName:  "JournalHub",
		TeamName:  "Prayer Team",
		InvitedBy: "alice@example.com",
		JoinLink:  "https://journalhub.test/teams/join?id=1",
	})

	if e.Subject != "You're invited to join Prayer Team" {
		t.Errorf("Subject = %q", e.Subject)
	}
	if !strings.Contains(e.TextBody, "https://journalhub.test/teams/join?id=1") {
		t.Errorf("text body missing join link: %q", e.TextBody)
	}
	if !strings.Contains(e.HTMLBody, "Accept invitation") {
		t.Error("HTML body missing call to action")
	}
}
