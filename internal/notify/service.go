package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dondo0936/portfolio-assistant/internal/meetings"
	"github.com/dondo0936/portfolio-assistant/internal/observability/metrics"
	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// Service sends booking and contact emails. Every send is best-effort:
// failures are logged and counted, never propagated to the caller's
// outcome.
type Service struct {
	sender     EmailSender
	ownerName  string
	ownerEmail string
	location   *time.Location
	timeout    time.Duration
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

func NewService(sender EmailSender, ownerName, ownerEmail string, loc *time.Location, timeout time.Duration, m *metrics.Metrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if m == nil {
		m = metrics.NewForTest()
	}
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		sender:     sender,
		ownerName:  ownerName,
		ownerEmail: ownerEmail,
		location:   loc,
		timeout:    timeout,
		metrics:    m,
		logger:     logger,
	}
}

// MeetingBooked emails a confirmation to the visitor and a notification
// to the owner.
func (s *Service) MeetingBooked(ctx context.Context, m *meetings.Meeting) {
	when := m.StartTime.In(s.location).Format("Monday, January 2 at 15:04 (MST)")

	visitorSubject := "Meeting confirmed: " + when
	visitorText := fmt.Sprintf(
		"Hi %s,\n\nYour %s with %s is confirmed for %s.\n%s\nSee you then!\n",
		m.UserName, m.MeetingType, s.ownerName, when, linkLine(m))
	s.send(ctx, m.UserName, m.UserEmail, visitorSubject, visitorText)

	ownerSubject := fmt.Sprintf("New booking: %s with %s", m.MeetingType, m.UserName)
	ownerText := fmt.Sprintf(
		"New meeting booked.\n\nWho: %s <%s>\nWhat: %s\nWhen: %s\nNotes: %s\n%s",
		m.UserName, m.UserEmail, m.MeetingType, when, orDash(m.Notes), linkLine(m))
	s.send(ctx, s.ownerName, s.ownerEmail, ownerSubject, ownerText)
}

// MeetingCancelled notifies both parties of a cancellation.
func (s *Service) MeetingCancelled(ctx context.Context, m *meetings.Meeting) {
	when := m.StartTime.In(s.location).Format("Monday, January 2 at 15:04 (MST)")

	s.send(ctx, m.UserName, m.UserEmail,
		"Meeting cancelled: "+when,
		fmt.Sprintf("Hi %s,\n\nYour %s scheduled for %s has been cancelled.\nFeel free to book another time.\n", m.UserName, m.MeetingType, when))

	s.send(ctx, s.ownerName, s.ownerEmail,
		fmt.Sprintf("Cancelled: %s with %s", m.MeetingType, m.UserName),
		fmt.Sprintf("The %s with %s <%s> on %s was cancelled.\n", m.MeetingType, m.UserName, m.UserEmail, when))
}

// ContactMessage forwards a contact-form submission to the owner.
func (s *Service) ContactMessage(ctx context.Context, name, email, subject, message string) error {
	body := fmt.Sprintf("From: %s <%s>\n\n%s\n", name, email, message)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.sender.Send(ctx, s.ownerName, s.ownerEmail, "Contact form: "+subject, body, contactHTML(name, email, subject, message)); err != nil {
		s.metrics.EmailSendFailuresTotal.Inc()
		return err
	}
	return nil
}

func (s *Service) send(ctx context.Context, toName, toEmail, subject, text string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.sender.Send(ctx, toName, toEmail, subject, text, textToHTML(text)); err != nil {
		s.metrics.EmailSendFailuresTotal.Inc()
		s.logger.Warn("email send failed", "to", toEmail, "subject", subject, "error", err)
	}
}

func linkLine(m *meetings.Meeting) string {
	if m.MeetingLink == "" {
		return ""
	}
	return "Join: " + m.MeetingLink + "\n"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func textToHTML(text string) string {
	return "<p>" + strings.ReplaceAll(text, "\n", "<br>") + "</p>"
}

func contactHTML(name, email, subject, message string) string {
	return fmt.Sprintf("<h3>%s</h3><p><b>%s</b> &lt;%s&gt;</p><p>%s</p>",
		subject, name, email, strings.ReplaceAll(message, "\n", "<br>"))
}
