package notify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/edjordao11/site/internal/config"
	"github.com/edjordao11/site/internal/database"
)

// ErrConfigurationMissing means SMTP credentials are absent. It is
// terminal for the send that hit it and nothing else; a completed
// purchase stays completed.
var ErrConfigurationMissing = errors.New("email service not configured")

// SettingsSource reads admin-panel settings with a fallback value.
// *database.SettingsRepo satisfies it.
type SettingsSource interface {
	GetOr(key, fallback string) string
}

// Notifier composes and sends the transactional emails: the
// post-purchase confirmation and the configuration test message.
// Settings written from the admin panel win; the environment is the
// fallback.
type Notifier struct {
	settings SettingsSource
	env      config.Config
	mailer   Mailer
}

// NewNotifier creates a notifier over the given settings source and
// transport.
func NewNotifier(settings SettingsSource, env config.Config, mailer Mailer) *Notifier {
	if mailer == nil {
		mailer = SMTPMailer{}
	}
	return &Notifier{settings: settings, env: env, mailer: mailer}
}

// SendPurchaseConfirmation emails the buyer asking them to confirm
// the PayPal order receipt, embedding the transaction id and the
// support contact handle. A non-empty seller overrides the configured
// site name in the signature.
func (n *Notifier) SendPurchaseConfirmation(buyerEmail, buyerName, transactionID, seller string) (string, error) {
	cfg, err := n.smtpConfig()
	if err != nil {
		return "", err
	}

	if buyerName == "" {
		buyerName = "there"
	}
	if seller == "" {
		seller = n.settings.GetOr(database.SettingSiteName, n.env.SiteName)
	}
	if seller == "" {
		seller = "Seller"
	}
	contact := n.telegramContact()

	text := fmt.Sprintf(`Hi %s,

I hope you're doing well!

I'm kindly asking if you could please confirm the receipt of your order on PayPal. This will help release the pending funds on my side.

Here's how you can do it:

Log in to your PayPal account.

Go to Activity and find the transaction with this ID:
Transaction ID: %s

Click Confirm Receipt (or Confirm Order Received).

Please let me know if you need any help. I'd really appreciate your support!

If you haven't received your content yet or have any questions, please contact me via Telegram: %s

Best regards,
%s
`, buyerName, transactionID, contact, seller)

	html := fmt.Sprintf(`<p>Hi %s,</p>

<p>I hope you're doing well!</p>

<p>I'm kindly asking if you could please confirm the receipt of your order on PayPal. This will help release the pending funds on my side.</p>

<p>Here's how you can do it:</p>

<ol>
  <li>Log in to your PayPal account.</li>
  <li>Go to Activity and find the transaction with this ID:<br/>
  <strong>Transaction ID: %s</strong></li>
  <li>Click <strong>Confirm Receipt</strong> (or <strong>Confirm Order Received</strong>).</li>
</ol>

<p>Please let me know if you need any help. I'd really appreciate your support!</p>

<p><strong>Haven't received your content?</strong> If you're having any issues accessing your purchase or have any questions, please contact me via Telegram: %s</p>

<p>Best regards,<br/>
%s</p>
`, buyerName, transactionID, contact, seller)

	return n.mailer.Send(cfg, Message{
		To:      buyerEmail,
		Subject: "Please confirm your PayPal order receipt",
		Text:    text,
		HTML:    html,
	})
}

// SendTestEmail sends a diagnostic message so an admin can verify the
// SMTP settings. It has no side effects on purchase state.
func (n *Notifier) SendTestEmail(to string) (string, error) {
	cfg, err := n.smtpConfig()
	if err != nil {
		return "", err
	}

	secure := "No"
	if cfg.Secure {
		secure = "Yes"
	}

	html := fmt.Sprintf(`<h2>Email Configuration Test</h2>
<p>This is a test email to verify your email configuration.</p>
<p>If you received this email, your email settings are working correctly!</p>
<hr>
<h3>Configuration Details:</h3>
<ul>
  <li><strong>SMTP Host:</strong> %s</li>
  <li><strong>SMTP Port:</strong> %d</li>
  <li><strong>Secure Connection:</strong> %s</li>
  <li><strong>Email User:</strong> %s</li>
</ul>
<p>You can now send PayPal confirmation emails through your application.</p>
`, cfg.Host, cfg.Port, secure, cfg.User)

	return n.mailer.Send(cfg, Message{
		To:      to,
		Subject: "Email Configuration Test",
		Text:    "If you received this email, your email configuration is working correctly!",
		HTML:    html,
	})
}

// smtpConfig resolves the transport settings, admin panel first, then
// environment.
func (n *Notifier) smtpConfig() (SMTPConfig, error) {
	cfg := SMTPConfig{
		Host: n.settings.GetOr(database.SettingEmailHost, n.env.EmailHost),
		Port: n.env.EmailPort,
		User: n.settings.GetOr(database.SettingEmailUser, n.env.EmailUser),
		Pass: n.settings.GetOr(database.SettingEmailPass, n.env.EmailPass),
		From: n.settings.GetOr(database.SettingEmailFrom, n.env.EmailFrom),
	}

	if port, err := strconv.Atoi(n.settings.GetOr(database.SettingEmailPort, "")); err == nil {
		cfg.Port = port
	}
	secure := n.settings.GetOr(database.SettingEmailSecure, "")
	if secure == "" {
		cfg.Secure = n.env.EmailSecure
	} else {
		cfg.Secure = secure == "true" || secure == "1"
	}

	if cfg.User == "" || cfg.Pass == "" {
		return SMTPConfig{}, ErrConfigurationMissing
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}

	return cfg, nil
}

// telegramContact formats the configured support handle, prefixing
// "@" when the admin omitted it.
func (n *Notifier) telegramContact() string {
	handle := n.settings.GetOr(database.SettingTelegramUsername, n.env.TelegramUsername)
	if handle == "" {
		return "Contact support"
	}
	if !strings.HasPrefix(handle, "@") {
		return "@" + handle
	}
	return handle
}
