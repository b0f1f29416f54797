package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dispatch-console/config"
)

type captureSender struct {
	last Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	c.last = msg
	return c.err
}

func sampleCredentials() OfficerCredentials {
	return OfficerCredentials{
		Email:       "j.delacruz@pnp.gov.ph",
		FirstName:   "Juan",
		LastName:    "Dela Cruz",
		BadgeNumber: "12345",
		Rank:        "PO1",
		Password:    "temp-pass-1",
	}
}

func TestComposeOfficerWelcome(t *testing.T) {
	body := ComposeOfficerWelcome(sampleCredentials())
	for _, want := range []string{
		"Dear PO1 Juan Dela Cruz",
		"Badge Number: 12345",
		"Email: j.delacruz@pnp.gov.ph",
		"Temporary Password: temp-pass-1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestSendOfficerWelcome(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, nil)
	if err := svc.SendOfficerWelcome(context.Background(), sampleCredentials()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if sender.last.To != "j.delacruz@pnp.gov.ph" {
		t.Fatalf("recipient = %q", sender.last.To)
	}
	if sender.last.Subject != officerWelcomeSubject {
		t.Fatalf("subject = %q", sender.last.Subject)
	}
}

func TestSendOfficerWelcomeValidation(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, nil)

	c := sampleCredentials()
	c.Email = ""
	if err := svc.SendOfficerWelcome(context.Background(), c); err == nil {
		t.Fatalf("missing email should fail")
	}
	c = sampleCredentials()
	c.Password = " "
	if err := svc.SendOfficerWelcome(context.Background(), c); err == nil {
		t.Fatalf("missing password should fail")
	}
	if sender.last.To != "" {
		t.Fatalf("sender should not be called on validation failure")
	}
}

func TestSendOfficerWelcomePropagatesRelayError(t *testing.T) {
	sender := &captureSender{err: errors.New("relay down")}
	svc := NewService(sender, nil)
	if err := svc.SendOfficerWelcome(context.Background(), sampleCredentials()); err == nil {
		t.Fatalf("relay failure must surface")
	}
}

func TestSMTPSenderRequiresHost(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{})
	err := s.Send(context.Background(), Message{To: "x@y", Subject: "s", Body: "b"})
	if err == nil {
		t.Fatalf("expected error without smtp host")
	}
}
