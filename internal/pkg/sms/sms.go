package sms

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/smtp"
	"text/template"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/config"
	"github.com/harvestlink/harvest-backend-go/internal/domain/notification"
)

//go:embed templates/*.txt
var templateFS embed.FS

const maxRetries = 3

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// GatewaySender delivers text messages through an email-to-SMS gateway:
// a message mailed to <phone>@<gateway domain> arrives as an SMS.
type GatewaySender struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      SendFunc
	backoff   time.Duration
}

func NewGatewaySender(cfg config.SMTPConfig) (*GatewaySender, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse sms templates: %w", err)
	}

	return &GatewaySender{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff:   time.Second,
	}, nil
}

// Configured reports whether messages will actually be sent.
func (s *GatewaySender) Configured() bool {
	return s.cfg.Host != "" && s.cfg.SMSGatewayDomain != ""
}

type signupConfirmationData struct {
	BaseName  string
	WorkDate  string
	QRContent string
}

// SendSignupConfirmation implements notification.Sender.
func (s *GatewaySender) SendSignupConfirmation(ctx context.Context, msg notification.SignupConfirmation) (bool, error) {
	data := signupConfirmationData{
		BaseName:  msg.BaseName,
		WorkDate:  msg.WorkDate.Format("2006-01-02"),
		QRContent: msg.QRContent,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "signup_confirmation.txt", data); err != nil {
		return false, fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendText(ctx, msg.Phone, body.String())
}

func (s *GatewaySender) sendText(ctx context.Context, phone, text string) (bool, error) {
	// Skip sending if the gateway is not configured
	if !s.Configured() {
		slog.Warn("SMS gateway not configured, skipping message", "phone_suffix", suffix(phone))
		return false, nil
	}

	to := fmt.Sprintf("%s@%s", phone, s.cfg.SMSGatewayDomain)

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/plain; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + text)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, s.cfg.From, []string{to}, message)
		if err == nil {
			slog.Info("SMS sent", "phone_suffix", suffix(phone), "attempt", attempt)
			return true, nil
		}

		lastErr = err
		slog.Error("Failed to send SMS",
			"phone_suffix", suffix(phone),
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// exponential backoff: 1x, 2x
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(s.backoff * time.Duration(1<<(attempt-1))):
			}
		}
	}

	return false, fmt.Errorf("failed to send sms after %d attempts: %w", maxRetries, lastErr)
}

func suffix(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return phone[len(phone)-4:]
}
