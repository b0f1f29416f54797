package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"dispatch-console/config"
	"dispatch-console/core/utils"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender relays mail through the configured SMTP server using plain
// auth. Credentials come from the environment only.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(s.cfg.Host) == "" {
		return errors.New("smtp host not configured")
	}
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient missing")
	}
	from := msg.From
	if from == "" {
		from = s.cfg.From
	}
	if from == "" {
		from = s.cfg.Username
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.Body)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, from, []string{msg.To}, []byte(b.String()))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Service composes and relays the console's outbound mail.
type Service struct {
	sender Sender
	log    *utils.Logger
}

func NewService(sender Sender, log *utils.Logger) *Service {
	if log == nil {
		log = utils.NewLogger()
	}
	return &Service{sender: sender, log: log}
}

// OfficerCredentials is the payload for the account welcome mail sent when
// an officer is onboarded.
type OfficerCredentials struct {
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	BadgeNumber string `json:"badgeNumber"`
	Rank        string `json:"rank"`
	Password    string `json:"password"`
}

func (c OfficerCredentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(c.Password) == "" {
		return errors.New("password is required")
	}
	return nil
}

const officerWelcomeSubject = "Your Officer Account Credentials"

// ComposeOfficerWelcome renders the fixed plaintext welcome template.
func ComposeOfficerWelcome(c OfficerCredentials) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s %s %s,\n\n", c.Rank, c.FirstName, c.LastName)
	b.WriteString("Your officer account for the dispatch console has been created.\n\n")
	fmt.Fprintf(&b, "Badge Number: %s\n", c.BadgeNumber)
	fmt.Fprintf(&b, "Email: %s\n", c.Email)
	fmt.Fprintf(&b, "Temporary Password: %s\n\n", c.Password)
	b.WriteString("Please sign in and change your password immediately.\n\n")
	b.WriteString("This is an automated message; do not reply.\n")
	return b.String()
}

// SendOfficerWelcome validates and relays the credentials mail.
func (s *Service) SendOfficerWelcome(ctx context.Context, c OfficerCredentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	msg := Message{
		To:      c.Email,
		Subject: officerWelcomeSubject,
		Body:    ComposeOfficerWelcome(c),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Errorf("send officer welcome to %s: %v", c.Email, err)
		return err
	}
	s.log.Printf("officer welcome mail sent to %s", c.Email)
	return nil
}
