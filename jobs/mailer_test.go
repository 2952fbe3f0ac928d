package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to  []string
	msg string
}

func newTestMailer() (*Mailer, *[]sentMail) {
	mailer := NewMailer(MailerConfig{
		Host:       "127.0.0.1",
		Port:       1025,
		From:       "no-reply@folio.local",
		AdminEmail: "admin@folio.local",
		SiteName:   "Portfolio Admin",
	}, slog.New(slog.DiscardHandler))

	sent := &[]sentMail{}
	mailer.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*sent = append(*sent, sentMail{to: to, msg: string(msg)})
		return nil
	}
	return mailer, sent
}

func contactTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := NewContactEmailTask(ContactEmailPayload{
		Name:    "Visitor",
		Email:   "visitor@example.com",
		Message: "I would like to talk about a project.",
	})
	require.NoError(t, err)
	return task
}

func TestHandleContactEmailSendsBothMessages(t *testing.T) {
	mailer, sent := newTestMailer()

	require.NoError(t, mailer.HandleContactEmail(context.Background(), contactTask(t)))
	require.Len(t, *sent, 2)

	notify := (*sent)[0]
	assert.Equal(t, []string{"admin@folio.local"}, notify.to)
	assert.Contains(t, notify.msg, "Subject: New contact message from Visitor")
	assert.Contains(t, notify.msg, "Email: visitor@example.com")
	assert.Contains(t, notify.msg, "I would like to talk about a project.")

	reply := (*sent)[1]
	assert.Equal(t, []string{"visitor@example.com"}, reply.to)
	assert.Contains(t, reply.msg, "Subject: Thanks for reaching out to Portfolio Admin")
	assert.Contains(t, reply.msg, "Hi Visitor,")
}

func TestHandleContactEmailAdminFailureRetries(t *testing.T) {
	mailer, _ := newTestMailer()
	mailer.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	err := mailer.HandleContactEmail(context.Background(), contactTask(t))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry, "delivery failures must stay retryable")
}

func TestHandleContactEmailReplyFailureIsNonFatal(t *testing.T) {
	mailer, sent := newTestMailer()
	calls := 0
	mailer.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		if calls == 2 {
			return errors.New("mailbox full")
		}
		*sent = append(*sent, sentMail{to: to, msg: string(msg)})
		return nil
	}

	assert.NoError(t, mailer.HandleContactEmail(context.Background(), contactTask(t)))
	assert.Len(t, *sent, 1)
}

func TestHandleContactEmailBadPayloadSkipsRetry(t *testing.T) {
	mailer, _ := newTestMailer()

	task := asynq.NewTask(TaskTypeContactEmail, []byte("{broken"))
	err := mailer.HandleContactEmail(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestContactEmailTaskPayloadRoundTrip(t *testing.T) {
	task := contactTask(t)
	assert.Equal(t, TaskTypeContactEmail, task.Type())

	var payload ContactEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "Visitor", payload.Name)
}

func TestMessagesUseCRLFHeaders(t *testing.T) {
	mailer, sent := newTestMailer()
	require.NoError(t, mailer.HandleContactEmail(context.Background(), contactTask(t)))

	for _, mail := range *sent {
		header, _, found := strings.Cut(mail.msg, "\r\n\r\n")
		require.True(t, found, "message must separate headers from body")
		assert.Contains(t, header, "From: no-reply@folio.local")
		assert.Contains(t, header, "Content-Type: text/plain; charset=UTF-8")
	}
}
