package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"calltimes/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMailer records the last send so tests can assert on what reached the
// transport, including the context it was given.
type fakeMailer struct {
	ctx     context.Context
	to      string
	subject string
	html    string
	text    string
	err     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.ctx = ctx
	f.to = to
	f.subject = subject
	f.html = html
	f.text = text
	return f.err
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject:" + templateName, "<p>hi</p>", "hi", nil
}

func TestEmailService_SendInvitation(t *testing.T) {
	data := &domain.InvitationEmailData{
		Email:       "b@x.com",
		InviterName: "Alice",
		ProjectName: "Night Shoot",
	}

	t.Run("renders the invitation template and sends it", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewEmailService(mailer, &fakeRenderer{}, testLogger)

		require.NoError(t, svc.SendInvitation(context.Background(), data))
		assert.Equal(t, "b@x.com", mailer.to)
		assert.Equal(t, "subject:invitation", mailer.subject)
		assert.Equal(t, "<p>hi</p>", mailer.html)
		assert.Equal(t, "hi", mailer.text)
	})

	t.Run("caller deadline reaches the mailer", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewEmailService(mailer, &fakeRenderer{}, testLogger)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		require.NoError(t, svc.SendInvitation(ctx, data))

		require.NotNil(t, mailer.ctx)
		deadline, ok := mailer.ctx.Deadline()
		require.True(t, ok, "mailer must see the caller's deadline, not a fresh context")
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
	})

	t.Run("render failure skips the send", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewEmailService(mailer, &fakeRenderer{err: errors.New("bad template")}, testLogger)

		err := svc.SendInvitation(context.Background(), data)
		require.Error(t, err)
		assert.Empty(t, mailer.to, "nothing is sent when rendering fails")
	})

	t.Run("transport failure is wrapped", func(t *testing.T) {
		mailer := &fakeMailer{err: errors.New("ses throttled")}
		svc := NewEmailService(mailer, &fakeRenderer{}, testLogger)

		err := svc.SendInvitation(context.Background(), data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ses throttled")
	})

	t.Run("nil data rejected", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, testLogger)
		require.Error(t, svc.SendInvitation(context.Background(), nil))
	})
}
