// services/mailer.go
package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail (OTP reset codes, transaction and
// investment decisions). A misconfigured SMTP setup disables sending but
// never fails the calling handler.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	enabled  bool
}

// NewMailer builds a Mailer from SMTP_* environment variables.
func NewMailer() *Mailer {
	host := os.Getenv("SMTP_HOST")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = username
	}

	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	enabled := host != "" && username != "" && password != ""
	if !enabled {
		log.Println("Warning: SMTP not fully configured, outbound mail disabled")
	}

	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		enabled:  enabled,
	}
}

func (m *Mailer) send(to, subject, body string) error {
	if !m.enabled {
		log.Printf("Mail skipped (SMTP disabled): to=%s subject=%q", to, subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}

// SendOTP mails a password-reset code.
func (m *Mailer) SendOTP(to, otp string) error {
	body := fmt.Sprintf(`<p>Your password reset code is:</p><h2>%s</h2><p>The code expires in 10 minutes. If you did not request a reset, ignore this email.</p>`, otp)
	return m.send(to, "Password reset code", body)
}

// SendTransactionDecision notifies a user that an admin processed their
// deposit or withdrawal request.
func (m *Mailer) SendTransactionDecision(to, txType, reference, status string, amount float64) error {
	subject := fmt.Sprintf("Your %s request was %s", txType, status)
	body := fmt.Sprintf(`<p>Your %s request <b>%s</b> for %.2f has been <b>%s</b>.</p>`, txType, reference, amount, status)
	return m.send(to, subject, body)
}

// SendInvestmentDecision notifies a user about an investment approval or
// decline.
func (m *Mailer) SendInvestmentDecision(to, planName, status string, amount float64) error {
	subject := fmt.Sprintf("Investment %s", status)
	body := fmt.Sprintf(`<p>Your investment of %.2f in <b>%s</b> has been <b>%s</b>.</p>`, amount, planName, status)
	return m.send(to, subject, body)
}

// SendKYCDecision notifies a user about a KYC review outcome.
func (m *Mailer) SendKYCDecision(to, level, note string) error {
	body := fmt.Sprintf(`<p>Your identity verification status is now <b>%s</b>.</p>`, level)
	if note != "" {
		body += fmt.Sprintf(`<p>Reviewer note: %s</p>`, note)
	}
	return m.send(to, "Identity verification update", body)
}
