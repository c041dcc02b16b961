// Package mailer renders and delivers account emails.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/hugh/rally/internal/database/models"
	"github.com/hugh/rally/pkg/config"
)

const verificationSubject = "Verify AdonisJs Rally Account Email Address"

var ErrInvalidUser = errors.New("Mailer expects a valid instance of User Model.")

type Mailer struct {
	transport Transport
	templates Templates
	from      mail.Address
	appURL    string
	logger    *slog.Logger
}

func New(transport Transport, templates Templates, from mail.Address, appURL string, logger *slog.Logger) *Mailer {
	return &Mailer{
		transport: transport,
		templates: templates,
		from:      from,
		appURL:    strings.TrimRight(appURL, "/"),
		logger:    logger,
	}
}

// NewFromConfig picks the transport named by cfg.Driver.
func NewFromConfig(cfg *config.MailConfig, appURL string, logger *slog.Logger) (*Mailer, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("loading email templates: %w", err)
	}

	var transport Transport
	switch cfg.Driver {
	case "log", "":
		transport = NewLogTransport(cfg.LogPath)
	case "smtp":
		transport = NewSMTPTransport(cfg.SMTPHost, cfg.SMTPAddr(), cfg.SMTPUser, cfg.SMTPPass)
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}

	from := mail.Address{Name: cfg.FromName, Address: cfg.FromEmail}
	return New(transport, templates, from, appURL, logger), nil
}

// VerificationURL is the link a user follows to activate the account.
func (m *Mailer) VerificationURL(code string) string {
	return m.appURL + "/api/v1/auth/verify/" + code
}

type verificationData struct {
	Name      string
	Email     string
	VerifyURL string
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == 0 || user.Email == "" || user.VerificationCode == "" {
		return ErrInvalidUser
	}

	name := strings.TrimSpace(user.Firstname + " " + user.Lastname)
	body, err := m.templates.Render("verification", verificationData{
		Name:      name,
		Email:     user.Email,
		VerifyURL: m.VerificationURL(user.VerificationCode),
	})
	if err != nil {
		return err
	}

	msg := Message{
		From:    m.from,
		To:      mail.Address{Name: name, Address: user.Email},
		Subject: verificationSubject,
		HTML:    body,
	}
	if err := m.transport.Send(ctx, msg); err != nil {
		return err
	}

	m.logger.Info("verification email sent", "user_id", user.ID)
	return nil
}
