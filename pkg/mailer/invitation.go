package mailer

import (
	"bytes"
	"html/template"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 10px;">
    <h2 style="color: #4863D4;">You've been invited!</h2>
    <p>Hello,</p>
    <p><strong>{{.InviterName}}</strong> has invited you to join <strong>{{.BusinessName}}</strong> as a <strong>{{.Role}}</strong> on HISAB.</p>
    <div style="margin: 30px 0;">
        <a href="{{.Link}}" style="background-color: #4863D4; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; font-weight: bold;">Accept Invitation</a>
    </div>
    <p style="color: #666; font-size: 14px;">If the button doesn't work, copy and paste this link into your browser:</p>
    <p style="color: #666; font-size: 14px; word-break: break-all;">{{.Link}}</p>
    <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;" />
    <p style="color: #999; font-size: 12px;">This invitation will expire in {{.ExpiresInDays}} days.</p>
</div>`))

type Invitation struct {
	InviterName   string
	BusinessName  string
	Role          string
	Link          string
	ExpiresInDays int
}

// InvitationMessage renders the invitation email for one recipient.
func InvitationMessage(from, to string, inv Invitation) (Message, error) {
	if inv.InviterName == "" {
		inv.InviterName = "Someone"
	}
	var buf bytes.Buffer
	if err := invitationTmpl.Execute(&buf, inv); err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{to},
		Subject: "Invitation to join " + inv.BusinessName + " on HISAB",
		HTML:    buf.String(),
	}, nil
}
