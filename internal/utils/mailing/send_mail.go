package mailing

import (
	"LeftoverLink/internal/utils"
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"
)

type MailConfig struct {
	AppURL       string
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

func (c MailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.SMTPEmail != ""
}

type Mailer struct {
	config MailConfig
	dialer *gomail.Dialer
}

func NewMailer(config MailConfig) (*Mailer, error) {
	port, err := strconv.Atoi(config.SMTPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", config.SMTPPort, err)
	}
	dialer := gomail.NewDialer(
		config.SMTPHost,
		port,
		config.SMTPEmail,
		config.SMTPPassword,
	)
	return &Mailer{config: config, dialer: dialer}, nil
}

func (m *Mailer) NewMessage(toEmail string, subject string, body string) *gomail.Message {
	mailer := gomail.NewMessage()
	if m.config.SMTPSender != "" {
		mailer.SetAddressHeader("From", m.config.SMTPEmail, m.config.SMTPSender)
	} else {
		mailer.SetHeader("From", m.config.SMTPEmail)
	}
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)
	return mailer
}

func (m *Mailer) SendMail(toEmail string, subject string, body string) error {
	return m.dialer.DialAndSend(m.NewMessage(toEmail, subject, body))
}
