package notify

import (
	"crypto/tls"
	"fmt"

	"github.com/google/uuid"
	gomail "gopkg.in/gomail.v2"
)

// SMTPConfig is the resolved transport configuration for one send.
type SMTPConfig struct {
	Host   string
	Port   int
	Secure bool
	User   string
	Pass   string
	From   string
}

// Message is one outbound email with text and HTML parts.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer hands a composed message to a transport. Implementations
// return the message id on success.
type Mailer interface {
	Send(cfg SMTPConfig, msg Message) (messageID string, err error)
}

// SMTPMailer delivers over SMTP.
type SMTPMailer struct{}

// Send dials the configured server and delivers the message.
func (SMTPMailer) Send(cfg SMTPConfig, msg Message) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), cfg.Host)

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.SSL = cfg.Secure
	// Shared SMTP hosts often present certificates that don't match
	// their connect hostname.
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	if err := d.DialAndSend(m); err != nil {
		return "", err
	}

	return messageID, nil
}
