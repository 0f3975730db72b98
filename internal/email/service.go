package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/dentalops/clinic-api/internal/config"
)

// BookingNotification carries everything the clinic inbox needs to review a
// new booking.
type BookingNotification struct {
	PatientName  string
	PatientEmail string
	ServiceName  string
	Date         string
	Time         string
	Price        float64
	ReceiptURL   string
}

type Service interface {
	SendBookingNotification(ctx context.Context, data BookingNotification) error
}

type smtpService struct {
	dialer *gomail.Dialer
	cfg    config.SMTPConfig
}

func NewService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		cfg:    cfg,
	}
}

func (s *smtpService) SendBookingNotification(_ context.Context, data BookingNotification) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.ClinicEmail)
	m.SetHeader("Subject", fmt.Sprintf("New appointment - %s | %s", data.PatientName, data.ServiceName))
	m.SetBody("text/html", bookingBody(data))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send booking notification: %w", err)
	}
	return nil
}

func bookingBody(data BookingNotification) string {
	receipt := ""
	if data.ReceiptURL != "" {
		receipt = fmt.Sprintf(`<p><a href="%s">Payment receipt</a></p>`, data.ReceiptURL)
	}
	return fmt.Sprintf(`
		<h2>New appointment booked</h2>
		<table>
			<tr><td>Patient:</td><td><b>%s</b> (%s)</td></tr>
			<tr><td>Service:</td><td><b>%s</b></td></tr>
			<tr><td>Date:</td><td>%s</td></tr>
			<tr><td>Time:</td><td>%s</td></tr>
			<tr><td>Price:</td><td>$%.2f</td></tr>
		</table>
		%s`,
		data.PatientName, data.PatientEmail, data.ServiceName, data.Date, data.Time, data.Price, receipt)
}

// Noop discards notifications; used when SMTP is not configured and in
// tests.
type Noop struct{}

func (Noop) SendBookingNotification(context.Context, BookingNotification) error {
	return nil
}
