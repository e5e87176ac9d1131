package notificator

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailNotificator struct {
	logger *logger.Logger

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPSender string

	SMTPAuth smtp.Auth

	sendMail sendMailFunc
}

func NewEmailNotificator(logger *logger.Logger, SMTPHost string, SMTPPort int, SMTPUser string, SMTPPassword string, SMTPSender string) *EmailNotificator {
	var auth smtp.Auth
	if SMTPUser != "" {
		auth = smtp.PlainAuth("", SMTPUser, SMTPPassword, SMTPHost)
	}

	return &EmailNotificator{
		logger:     logger,
		SMTPAuth:   auth,
		SMTPHost:   SMTPHost,
		SMTPPort:   SMTPPort,
		SMTPUser:   SMTPUser,
		SMTPSender: SMTPSender,
		sendMail:   smtp.SendMail,
	}
}

// Send delivers the email. net/smtp has no context support, so ctx is only
// checked before dialing.
func (e *EmailNotificator) Send(ctx context.Context, email models.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if email.To == "" {
		return fmt.Errorf("email has no recipient")
	}

	addr := e.SMTPHost + ":" + strconv.Itoa(e.SMTPPort)
	if err := e.sendMail(addr, e.SMTPAuth, e.SMTPSender, []string{email.To}, e.buildMessage(email)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email.To, err)
	}
	e.logger.Debugw("Email sent", "to", email.To, "subject", email.Subject)
	return nil
}

func (e *EmailNotificator) buildMessage(email models.Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.SMTPSender)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if email.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(email.Text)
		return []byte(b.String())
	}

	boundary := strings.ReplaceAll(uuid.NewString(), "-", "")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, email.Text)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, email.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
