// Package services: services/mailer_service.go
// SMTP email sending for the contact form and the staff bulk-mail
// tool. Bulk sends go out as one message with every recipient in BCC.
package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"festes-portal/logger"
)

// ContactMessage is the contact-form payload.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Recipient is one bulk-mail addressee.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BulkMessage is the bulk-mail payload.
type BulkMessage struct {
	RecipientType string      `json:"recipientType"`
	Recipients    []Recipient `json:"recipients"`
	Subject       string      `json:"subject"`
	Message       string      `json:"message"`
}

// Mailer is the sending surface the notification endpoints depend on.
type Mailer interface {
	SendContact(msg ContactMessage) error
	SendBulk(msg BulkMessage) error
}

// SMTPMailer sends through a configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewSMTPMailer reads the mail credentials from the environment:
// MAIL_HOST, MAIL_PORT, MAIL_USER, MAIL_PASSWORD, MAIL_FROM, MAIL_TO.
func NewSMTPMailer() (*SMTPMailer, error) {
	host := os.Getenv("MAIL_HOST")
	if host == "" {
		return nil, errors.New("MAIL_HOST is not set")
	}
	port, err := strconv.Atoi(os.Getenv("MAIL_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	user := os.Getenv("MAIL_USER")
	password := os.Getenv("MAIL_PASSWORD")

	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = user
	}
	to := os.Getenv("MAIL_TO")
	if to == "" {
		to = from
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
		to:     to,
	}, nil
}

// SendContact forwards a contact-form message to the association's
// inbox, with the visitor's address as reply-to.
func (m *SMTPMailer) SendContact(msg ContactMessage) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", m.to)
	mail.SetHeader("Reply-To", msg.Email)
	mail.SetHeader("Subject", fmt.Sprintf("[Contacto] %s", msg.Subject))
	mail.SetBody("text/plain", fmt.Sprintf(
		"Nombre: %s\nEmail: %s\nTeléfono: %s\n\n%s",
		msg.Name, msg.Email, msg.Phone, msg.Message))

	if err := m.dialer.DialAndSend(mail); err != nil {
		logger.Error.Printf("[SendContact] Send from %s failed: %v", msg.Email, err)
		return err
	}
	logger.Info.Printf("[SendContact] Contact message from %s delivered", msg.Email)
	return nil
}

// SendBulk sends one message with every recipient blind-copied, so
// recipients never see each other's addresses.
func (m *SMTPMailer) SendBulk(msg BulkMessage) error {
	bcc := make([]string, 0, len(msg.Recipients))
	for _, recipient := range msg.Recipients {
		bcc = append(bcc, recipient.Email)
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", m.from)
	mail.SetHeader("Bcc", bcc...)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Message)

	if err := m.dialer.DialAndSend(mail); err != nil {
		logger.Error.Printf("[SendBulk] Bulk send to %d recipients failed: %v", len(bcc), err)
		return err
	}
	logger.Info.Printf("[SendBulk] Bulk message delivered to %d recipients (%s)", len(bcc), msg.RecipientType)
	return nil
}
