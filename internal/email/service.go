package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/caredash-api/internal/config"
	"github.com/jwalitptl/caredash-api/internal/model"
)

type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
	SendBookingConfirmation(ctx context.Context, appointment *model.Appointment) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPService struct {
	dialer dialer
	from   string
	to     string
}

func NewSMTPService(cfg config.EmailConfig) *SMTPService {
	return &SMTPService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.To,
	}
}

// New returns an SMTP sender when email is enabled and a no-op otherwise.
func New(cfg config.EmailConfig) Service {
	if !cfg.Enabled {
		return NopService{}
	}
	return NewSMTPService(cfg)
}

func (s *SMTPService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// SendBookingConfirmation notifies the front desk mailbox about a booking.
func (s *SMTPService) SendBookingConfirmation(ctx context.Context, appointment *model.Appointment) error {
	if s.to == "" {
		return nil
	}
	subject := fmt.Sprintf("Appointment %s confirmed", appointment.ID)
	return s.SendCustom(ctx, s.to, subject, BookingBody(appointment))
}

func BookingBody(a *model.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment %s is %s.\n\n", a.ID, a.Status)
	fmt.Fprintf(&b, "Patient: %s (%s)\n", a.PatientName, a.PatientPhone)
	fmt.Fprintf(&b, "Doctor:  %s\n", a.SelectedDoctor)
	fmt.Fprintf(&b, "When:    %s %s\n", a.AppointmentDate, a.AppointmentTime)
	if a.Notes != "" {
		fmt.Fprintf(&b, "Notes:   %s\n", a.Notes)
	}
	if a.DocumentName != "" {
		fmt.Fprintf(&b, "Document: %s (%d bytes)\n", a.DocumentName, a.DocumentSize)
	}
	return b.String()
}

type NopService struct{}

func (NopService) SendCustom(context.Context, string, string, string) error { return nil }

func (NopService) SendBookingConfirmation(context.Context, *model.Appointment) error { return nil }
