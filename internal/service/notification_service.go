package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/config"
	"github.com/sensoryplay/portal-backend/internal/model"
)

var emailFuncs = template.FuncMap{
	"lines": func(s string) []string { return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") },
	"money": formatCents,
}

var emailTemplates = template.Must(template.New("email").Funcs(emailFuncs).Parse(`
{{define "booking_confirmation"}}<h2>Your booking is confirmed</h2>
<p>Dear {{.ParentName}},</p>
<p>{{.ChildName}} is booked into <strong>{{.ClassTitle}}</strong>.</p>
<p><strong>Date:</strong> {{.ClassDate}}<br><strong>Time:</strong> {{.ClassTime}}<br><strong>Location:</strong> {{.Location}}</p>
<p><strong>Price:</strong> {{money .PriceCents}} (payment {{.PaymentStatus}})</p>
<p>Cancellations 48 hours or more before class receive a full refund; between 24 and 48 hours, a 50% credit. Cancellations within 24 hours are not refunded.</p>
<p>Best regards,<br>The {{.SiteName}} Team</p>{{end}}

{{define "booking_notify"}}<h2>New booking</h2>
<p><strong>Class:</strong> {{.ClassTitle}} on {{.ClassDate}} at {{.ClassTime}} ({{.Location}})</p>
<p><strong>Parent:</strong> {{.ParentName}} &lt;{{.ParentEmail}}&gt; {{.ParentPhone}}</p>
<p><strong>Child:</strong> {{.ChildName}}, age {{.ChildAge}}</p>
{{if .SpecialNeeds}}<p><strong>Special needs:</strong></p><p>{{range lines .SpecialNeeds}}{{.}}<br>{{end}}</p>{{end}}
<p><strong>Seats:</strong> {{.Enrolled}} of {{.Capacity}} taken</p>{{end}}

{{define "booking_cancelled"}}<h2>Your booking was cancelled</h2>
<p>Dear {{.ParentName}},</p>
<p>The booking for {{.ChildName}} in <strong>{{.ClassTitle}}</strong> on {{.ClassDate}} at {{.ClassTime}} has been cancelled.</p>
{{if eq .Settlement "refund"}}<p>A full refund of {{money .AmountCents}} will be issued.</p>{{else if eq .Settlement "credit"}}<p>A credit of {{money .AmountCents}} has been added to your account.</p>{{else}}<p>Cancellations within 24 hours of class are not eligible for a refund.</p>{{end}}
<p>Best regards,<br>The {{.SiteName}} Team</p>{{end}}

{{define "contact_notify"}}<h2>New Contact Form Submission</h2>
<p><strong>From:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 10px 0;">{{range lines .Message}}{{.}}<br>{{end}}</div>
<p><small>Sent at: {{.SentAt}}</small></p>
<hr>
<p><small>Reply directly to this email to respond to {{.Name}} at {{.Email}}.</small></p>{{end}}

{{define "contact_confirmation"}}<h2>Thank you for contacting {{.SiteName}}</h2>
<p>Dear {{.Name}},</p>
<p>We have received your message and will get back to you as soon as possible.</p>
<p>For reference, here is a copy of your message:</p>
<div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 10px 0;">
<p><strong>Subject:</strong> {{.Subject}}</p>
<p>{{range lines .Message}}{{.}}<br>{{end}}</p>
</div>
<p>Best regards,<br>The {{.SiteName}} Team</p>
<hr>
<p><small>This is an automated response. Please do not reply to this email.</small></p>{{end}}

{{define "password_reset"}}<h2>Reset your password</h2>
<p>Hi {{.Name}},</p>
<p>Use the link below to choose a new password. It expires in {{.ExpiresIn}}.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not ask for this, you can ignore this email.</p>{{end}}
`))

func formatCents(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// NotificationService renders transactional email and queues it on the outbox.
type NotificationService struct {
	cfg      *config.Config
	outbox   Outbox
	settings SettingReader
	log      zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(cfg *config.Config, outbox Outbox, settings SettingReader, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		cfg:      cfg,
		outbox:   outbox,
		settings: settings,
		log:      log.With().Str("component", "notification_service").Logger(),
	}
}

// adminRecipient prefers the contact_recipient_email setting over the env fallback.
func (s *NotificationService) adminRecipient(ctx context.Context) string {
	if s.settings != nil {
		if v, err := s.settings.GetSettingByKey(ctx, model.SettingContactRecipient); err == nil && v != "" {
			return v
		}
	}
	return s.cfg.AdminNotifyEmail
}

func (s *NotificationService) siteName(ctx context.Context) string {
	if s.settings != nil {
		if v, err := s.settings.GetSettingByKey(ctx, model.SettingSiteName); err == nil && v != "" {
			return v
		}
	}
	return s.cfg.MailFromName
}

func (s *NotificationService) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *NotificationService) send(ctx context.Context, msg model.EmailMessage, data interface{}) error {
	body, err := s.render(string(msg.Kind), data)
	if err != nil {
		return err
	}
	msg.HTMLBody = body
	if msg.FromEmail == "" {
		msg.FromEmail = s.cfg.MailFrom
	}
	if msg.FromName == "" {
		msg.FromName = s.cfg.MailFromName
	}
	if err := s.outbox.Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("queue %s: %w", msg.Kind, err)
	}
	return nil
}

type bookingEmail struct {
	SiteName      string
	ParentName    string
	ParentEmail   string
	ParentPhone   string
	ChildName     string
	ChildAge      int
	SpecialNeeds  string
	ClassTitle    string
	ClassDate     string
	ClassTime     string
	Location      string
	PriceCents    int
	PaymentStatus model.PaymentStatus
	Enrolled      int
	Capacity      int
	Settlement    string
	AmountCents   int
}

func (s *NotificationService) bookingData(ctx context.Context, b *model.Booking, c *model.Class) bookingEmail {
	start := c.StartsAt.In(s.cfg.Timezone())
	return bookingEmail{
		SiteName:      s.siteName(ctx),
		ParentName:    b.ParentName,
		ParentEmail:   b.ContactEmail,
		ParentPhone:   b.ContactPhone,
		ChildName:     b.ChildName,
		ChildAge:      b.ChildAge,
		SpecialNeeds:  b.SpecialNeeds,
		ClassTitle:    c.Title,
		ClassDate:     start.Format("Monday, January 2, 2006"),
		ClassTime:     start.Format("3:04 PM MST"),
		Location:      c.LocationName,
		PriceCents:    c.PriceCents,
		PaymentStatus: b.PaymentStatus,
		Enrolled:      c.Enrolled,
		Capacity:      c.Capacity,
	}
}

// BookingConfirmed queues the parent confirmation and the admin notification.
func (s *NotificationService) BookingConfirmed(ctx context.Context, b *model.Booking, c *model.Class) error {
	data := s.bookingData(ctx, b, c)

	if err := s.send(ctx, model.EmailMessage{
		Kind:    model.EmailBookingConfirmation,
		To:      b.ContactEmail,
		ToName:  b.ParentName,
		Subject: fmt.Sprintf("Booking confirmed: %s", c.Title),
	}, data); err != nil {
		return err
	}

	return s.send(ctx, model.EmailMessage{
		Kind:        model.EmailBookingNotify,
		To:          s.adminRecipient(ctx),
		ReplyTo:     b.ContactEmail,
		ReplyToName: b.ParentName,
		Subject:     fmt.Sprintf("New booking: %s for %s", c.Title, b.ChildName),
	}, data)
}

// BookingCancelled tells the parent what the cancellation settled to.
func (s *NotificationService) BookingCancelled(ctx context.Context, b *model.Booking, c *model.Class, cancel model.Cancellation) error {
	data := s.bookingData(ctx, b, c)
	data.Settlement = cancel.Settlement
	data.AmountCents = cancel.AmountCents

	return s.send(ctx, model.EmailMessage{
		Kind:    model.EmailBookingCancelled,
		To:      b.ContactEmail,
		ToName:  b.ParentName,
		Subject: fmt.Sprintf("Booking cancelled: %s", c.Title),
	}, data)
}

type contactEmail struct {
	SiteName string
	Name     string
	Email    string
	Subject  string
	Message  string
	SentAt   string
}

// ContactReceived relays a contact message to the admin and confirms receipt
// to the sender. Only the admin relay is required to succeed.
func (s *NotificationService) ContactReceived(ctx context.Context, m *model.ContactMessage) error {
	site := s.siteName(ctx)
	data := contactEmail{
		SiteName: site,
		Name:     m.Name,
		Email:    m.Email,
		Subject:  m.Subject,
		Message:  m.Message,
		SentAt:   m.CreatedAt.In(s.cfg.Timezone()).Format("Jan 2, 2006 3:04 PM MST"),
	}

	if err := s.send(ctx, model.EmailMessage{
		Kind:        model.EmailContactNotify,
		FromName:    site + " Contact Form",
		To:          s.adminRecipient(ctx),
		ReplyTo:     m.Email,
		ReplyToName: m.Name,
		Subject:     "New Contact Form Submission: " + m.Subject,
	}, data); err != nil {
		return err
	}

	if err := s.send(ctx, model.EmailMessage{
		Kind:    model.EmailContactConfirmation,
		To:      m.Email,
		ToName:  m.Name,
		Subject: "Thank you for contacting " + site,
	}, data); err != nil {
		s.log.Warn().Err(err).Str("email", m.Email).Msg("contact confirmation not queued")
	}
	return nil
}

// PasswordReset sends the reset link carrying the raw token.
func (s *NotificationService) PasswordReset(ctx context.Context, u *model.User, token string) error {
	link := s.cfg.PasswordResetURL
	sep := "?"
	if strings.Contains(link, "?") {
		sep = "&"
	}
	link += sep + "token=" + url.QueryEscape(token)

	name := u.Name
	if name == "" {
		name = u.Email
	}

	return s.send(ctx, model.EmailMessage{
		Kind:    model.EmailPasswordReset,
		To:      u.Email,
		ToName:  u.Name,
		Subject: "Reset your password",
	}, struct {
		Name      string
		Link      string
		ExpiresIn string
	}{name, link, s.cfg.PasswordResetTTL.String()})
}
