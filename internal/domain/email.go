package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
// Implementations must honor ctx cancellation and deadlines.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the project invitation email. AcceptURL
// is the full acceptance link (<origin>/invite/<token>).
type InvitationEmailData struct {
	Email              string
	InviterName        string
	ProjectName        string
	ProjectDescription string
	RoleLabel          string
	AcceptURL          string
	ExpiresInDays      int
}

// EmailService defines the contract for sending domain-level emails.
// Dispatch is best-effort with respect to invitation state: a send failure
// never rolls back the invitation it announces.
type EmailService interface {
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
}
