// Package invite sends survey participation emails over a pooled SMTP
// connection.
package invite

import (
	"crypto/tls"
	"net/smtp"
	"time"

	"github.com/knadh/smtppool"
)

type SMTPConfig struct {
	Host               string `yaml:"host"                 envconfig:"SMTP_HOST"`
	Port               int    `yaml:"port"                 envconfig:"SMTP_PORT"`
	Username           string `yaml:"username"             envconfig:"SMTP_USERNAME"`
	Password           string `yaml:"password"             envconfig:"SMTP_PASSWORD"`
	From               string `yaml:"from"                 envconfig:"SMTP_FROM"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" envconfig:"SMTP_INSECURE_SKIP_VERIFY"`
}

// Mailer wraps an SMTP connection pool. A zero SMTPConfig yields a mailer
// that reports itself unavailable instead of failing construction, so the
// server can run without outbound email.
type Mailer struct {
	pool *smtppool.Pool
	from string
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return &Mailer{}, nil
	}

	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	pool, err := smtppool.New(smtppool.Opt{
		Host:            cfg.Host,
		Port:            cfg.Port,
		MaxConns:        4,
		IdleTimeout:     15 * time.Second,
		PoolWaitTimeout: 15 * time.Second,
		Auth:            auth,
		TLSConfig: &tls.Config{
			ServerName:         cfg.Host,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	})
	if err != nil {
		return nil, err
	}

	return &Mailer{pool: pool, from: cfg.From}, nil
}

func (m *Mailer) Available() bool {
	return m.pool != nil
}

func (m *Mailer) Send(to string, subject string, textBody string) error {
	return m.pool.Send(smtppool.Email{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    []byte(textBody),
	})
}
