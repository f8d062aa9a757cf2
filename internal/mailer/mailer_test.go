package mailer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/config"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSendProfileUpdatedEmail(t *testing.T) {
	d := &fakeDialer{}
	m := &SMTPMailer{dialer: d, from: "noreply@rooms.example"}

	require.NoError(t, m.SendProfileUpdatedEmail("alice@example.com", "Alice"))
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"alice@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"noreply@rooms.example"}, msg.GetHeader("From"))
	assert.Equal(t, []string{profileUpdatedSubject}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hello Alice")
}

func TestSendProfileUpdatedEmail_Errors(t *testing.T) {
	m := &SMTPMailer{dialer: &fakeDialer{err: errors.New("connection refused")}, from: "noreply@rooms.example"}

	assert.Error(t, m.SendProfileUpdatedEmail("", "Alice"))
	assert.ErrorContains(t, m.SendProfileUpdatedEmail("alice@example.com", "Alice"), "connection refused")
}

func TestNewSMTPMailer(t *testing.T) {
	_, err := NewSMTPMailer(config.SMTPConfig{})
	assert.Error(t, err)

	m, err := NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587, SenderEmail: "noreply@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", m.from)
}

func TestProfileUpdatedBody(t *testing.T) {
	assert.Contains(t, profileUpdatedBody(""), "Hello,")
	assert.Contains(t, profileUpdatedBody("Bob"), "Hello Bob,")
}
