package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is a single HTML email.
type Message struct {
	From    mail.Address
	To      mail.Address
	Subject string
	HTML    string
	Date    time.Time
}

// Bytes renders the message in RFC 5322 form.
func (m Message) Bytes() []byte {
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", m.From.String())
	fmt.Fprintf(&b, "To: %s\r\n", m.To.String())
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@rally>\r\n", uuid.NewString())
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.HTML)
	b.WriteString("\r\n")
	return b.Bytes()
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// LogTransport appends every message to a file instead of delivering it.
type LogTransport struct {
	path string
	mu   sync.Mutex
}

func NewLogTransport(path string) *LogTransport {
	return &LogTransport{path: path}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("creating mail log dir: %w", err)
	}
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening mail log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(msg.Bytes(), "\r\n"...)); err != nil {
		return fmt.Errorf("writing mail log: %w", err)
	}
	return nil
}

// SMTPTransport delivers through an SMTP relay. Auth is skipped when no user
// is configured, which suits local catchers like MailHog.
type SMTPTransport struct {
	addr string
	auth smtp.Auth
}

func NewSMTPTransport(host, addr, user, password string) *SMTPTransport {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPTransport{addr: addr, auth: auth}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := smtp.SendMail(t.addr, t.auth, msg.From.Address, []string{msg.To.Address}, msg.Bytes())
	if err != nil {
		return fmt.Errorf("sending mail via %s: %w", t.addr, err)
	}
	return nil
}
