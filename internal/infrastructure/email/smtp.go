package email

import (
	"errors"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/orris-inc/licensegate/internal/shared/config"
)

var ErrEmailServiceNotConfigured = errors.New("email service not configured")

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// SMTPConfigFrom maps the notify section of the configuration.
func SMTPConfigFrom(cfg *config.NotifyConfig) SMTPConfig {
	return SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
	}
}

type SMTPEmailService struct {
	config SMTPConfig
	sender Sender
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	return NewSMTPEmailServiceWithSender(config, gomail.NewDialer(config.Host, config.Port, config.Username, config.Password))
}

// NewSMTPEmailServiceWithSender is used by tests to capture outgoing mail.
func NewSMTPEmailServiceWithSender(config SMTPConfig, sender Sender) *SMTPEmailService {
	return &SMTPEmailService{
		config: config,
		sender: sender,
	}
}

// LimitAlert describes a store for operator alerts.
type LimitAlert struct {
	StoreLabel string
	Plan       string
	Count      int
	Limit      string
	Overage    int
	NextPlan   string
	UpgradeURL string
}

func (s *SMTPEmailService) SendLimitReachedAlert(to string, alert LimitAlert) error {
	subject := fmt.Sprintf("License limit reached: %s", alert.StoreLabel)

	upgrade := "This store is on the top plan."
	if alert.NextPlan != "" {
		upgrade = fmt.Sprintf("Next plan: %s. %s", alert.NextPlan, alert.UpgradeURL)
	}

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>License limit reached</h2>
			<p>Store <strong>%s</strong> on the %s plan has used %d of %s licenses.</p>
			<p>New licenses are being refused.</p>
			<p>%s</p>
		</body>
		</html>
	`, html.EscapeString(alert.StoreLabel), html.EscapeString(alert.Plan), alert.Count, alert.Limit, html.EscapeString(upgrade))

	plainBody := fmt.Sprintf(`
License limit reached

Store %s on the %s plan has used %d of %s licenses.
New licenses are being refused.

%s
	`, alert.StoreLabel, alert.Plan, alert.Count, alert.Limit, upgrade)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) SendOverLimitAlert(to string, alert LimitAlert) error {
	subject := fmt.Sprintf("Store over license limit: %s", alert.StoreLabel)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Store over license limit</h2>
			<p>Store <strong>%s</strong> moved to the %s plan with %d licenses against a limit of %s.</p>
			<p>It is %d over. Existing licenses keep working; new ones are refused until the count drops.</p>
		</body>
		</html>
	`, html.EscapeString(alert.StoreLabel), html.EscapeString(alert.Plan), alert.Count, alert.Limit, alert.Overage)

	plainBody := fmt.Sprintf(`
Store over license limit

Store %s moved to the %s plan with %d licenses against a limit of %s.
It is %d over. Existing licenses keep working; new ones are refused until the count drops.
	`, alert.StoreLabel, alert.Plan, alert.Count, alert.Limit, alert.Overage)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	if to == "" {
		return ErrEmailServiceNotConfigured
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
