package mailer

import (
	"context"
	"errors"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hugh/rally/internal/database/models"
	"github.com/hugh/rally/internal/testutil"
	"github.com/hugh/rally/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	sent []Message
	err  error
}

func (r *recordingTransport) Send(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func pendingUser() *models.User {
	u := &models.User{
		Email:            "jane@example.com",
		Firstname:        "Jane",
		Lastname:         "Doe",
		Status:           models.UserStatusPending,
		VerificationCode: "4a8f2c3e-9d1b-11ef-8c2a-0242ac120002",
	}
	u.ID = 7
	return u
}

func newTestMailer(t *testing.T, transport Transport) *Mailer {
	t.Helper()
	templates, err := LoadTemplates()
	require.NoError(t, err)
	from := mail.Address{Name: "Rally", Address: "no-reply@rally.local"}
	return New(transport, templates, from, "http://localhost:8080/", testutil.TestLogger())
}

func TestLoadTemplates(t *testing.T) {
	templates, err := LoadTemplates()
	require.NoError(t, err)
	assert.Contains(t, templates, "verification")

	_, err = templates.Render("missing", nil)
	assert.Error(t, err)
}

func TestMailer_SendVerificationEmail(t *testing.T) {
	transport := &recordingTransport{}
	m := newTestMailer(t, transport)

	require.NoError(t, m.SendVerificationEmail(context.Background(), pendingUser()))
	require.Len(t, transport.sent, 1)

	msg := transport.sent[0]
	assert.Equal(t, "Verify AdonisJs Rally Account Email Address", msg.Subject)
	assert.Equal(t, "jane@example.com", msg.To.Address)
	assert.Equal(t, "Jane Doe", msg.To.Name)
	assert.Contains(t, msg.HTML, "You have used jane@example.com when signing up")
	assert.Contains(t, msg.HTML, "http://localhost:8080/api/v1/auth/verify/4a8f2c3e-9d1b-11ef-8c2a-0242ac120002")
	assert.Contains(t, msg.HTML, "Welcome Jane Doe!")
}

func TestMailer_SendVerificationEmail_InvalidUser(t *testing.T) {
	noEmail := pendingUser()
	noEmail.Email = ""
	unsaved := pendingUser()
	unsaved.ID = 0
	noCode := pendingUser()
	noCode.VerificationCode = ""

	tests := []struct {
		name string
		user *models.User
	}{
		{"nil user", nil},
		{"no email", noEmail},
		{"not persisted", unsaved},
		{"no verification code", noCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &recordingTransport{}
			m := newTestMailer(t, transport)

			err := m.SendVerificationEmail(context.Background(), tt.user)
			assert.ErrorIs(t, err, ErrInvalidUser)
			assert.Empty(t, transport.sent)
		})
	}
}

func TestMailer_SendVerificationEmail_TransportError(t *testing.T) {
	boom := errors.New("relay unavailable")
	m := newTestMailer(t, &recordingTransport{err: boom})

	err := m.SendVerificationEmail(context.Background(), pendingUser())
	assert.ErrorIs(t, err, boom)
}

func TestLogTransport_AppendsMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mail.eml")
	m := newTestMailer(t, NewLogTransport(path))

	require.NoError(t, m.SendVerificationEmail(context.Background(), pendingUser()))
	require.NoError(t, m.SendVerificationEmail(context.Background(), pendingUser()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "Subject: Verify AdonisJs Rally Account Email Address")
	assert.Contains(t, content, "To: \"Jane Doe\" <jane@example.com>")
	assert.Contains(t, content, "Content-Type: text/html; charset=UTF-8")
	assert.Equal(t, 2, strings.Count(content, "MIME-Version: 1.0"))
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{"log driver", "log", false},
		{"default driver", "", false},
		{"smtp driver", "smtp", false},
		{"unknown driver", "carrier-pigeon", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.MailConfig{
				Driver:    tt.driver,
				FromEmail: "no-reply@rally.local",
				LogPath:   filepath.Join(t.TempDir(), "mail.eml"),
				SMTPHost:  "localhost",
				SMTPPort:  1025,
			}
			m, err := NewFromConfig(cfg, "http://localhost:8080", testutil.TestLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "http://localhost:8080/api/v1/auth/verify/abc", m.VerificationURL("abc"))
		})
	}
}

