// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ShareEmailData holds data for the "entry shared with you" email.
type ShareEmailData struct {
	SiteName   string
	SharedBy   string
	EntryTitle string
	ShareLink  string
}

// BuildShareEmail creates the notification sent by POST /api/share-entry.
// The subject line is fixed: "<title> has been shared with you".
func BuildShareEmail(data ShareEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("%s has been shared with you", data.EntryTitle),
		TextBody: buildShareText(data),
		HTMLBody: render(shareHTML, data),
	}
}

func buildShareText(data ShareEmailData) string {
	var buf bytes.Buffer
	if data.SharedBy != "" {
		fmt.Fprintf(&buf, "%s shared a journal entry with you on %s.\n\n", data.SharedBy, data.SiteName)
	} else {
		fmt.Fprintf(&buf, "A journal entry was shared with you on %s.\n\n", data.SiteName)
	}
	fmt.Fprintf(&buf, "%s\n%s\n", data.EntryTitle, data.ShareLink)
	return buf.String()
}

// InviteEmailData holds data for the team invitation email.
type InviteEmailData struct {
	SiteName  string
	TeamName  string
	InvitedBy string
	JoinLink  string
}

// BuildInviteEmail creates the invitation sent for each new team invite.
func BuildInviteEmail(data InviteEmailData) Email {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s invited you to join the team %q on %s.\n\n", data.InvitedBy, data.TeamName, data.SiteName)
	buf.WriteString("Accept the invitation here:\n")
	buf.WriteString(data.JoinLink + "\n")
	return Email{
		Subject:  fmt.Sprintf("You're invited to join %s", data.TeamName),
		TextBody: buf.String(),
		HTMLBody: render(inviteHTML, data),
	}
}

var (
	shareHTML  = template.Must(template.New("share").Parse(layout("{{.EntryTitle}}", shareBody)))
	inviteHTML = template.Must(template.New("invite").Parse(layout("{{.TeamName}}", inviteBody)))
)

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

func layout(title, body string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>` + title + `</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">` + body + `</td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
}

const shareBody = `
              <h1 style="margin: 0 0 16px; font-size: 20px; color: #1f2937;">{{.EntryTitle}}</h1>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">
                {{if .SharedBy}}{{.SharedBy}} shared a journal entry with you on {{.SiteName}}.{{else}}A journal entry was shared with you on {{.SiteName}}.{{end}}
              </p>
              <a href="{{.ShareLink}}" style="display: inline-block; padding: 12px 28px; background-color: #4f46e5; color: #ffffff; text-decoration: none; border-radius: 6px;">Read entry</a>`

const inviteBody = `
              <h1 style="margin: 0 0 16px; font-size: 20px; color: #1f2937;">Join {{.TeamName}}</h1>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">
                {{.InvitedBy}} invited you to join the team <strong>{{.TeamName}}</strong> on {{.SiteName}}.
              </p>
              <a href="{{.JoinLink}}" style="display: inline-block; padding: 12px 28px; background-color: #4f46e5; color: #ffffff; text-decoration: none; border-radius: 6px;">Accept invitation</a>`
