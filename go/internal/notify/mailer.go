package notify

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	rosterevents "github.com/mcdev12/icetime/go/internal/roster/events"
)

// Message is one outgoing email
type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"AJHL <noreply@example.com>"`
}

// SMTPSender delivers mail through a gomail dialer
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogSender only logs. Used when SMTP is not configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email not configured, skipping send")
	return nil
}

var promotedTemplate = template.Must(template.New("promoted").Parse(`
<h2>You've been added to the event</h2>
<p>{{.Intro}} You're now confirmed for:</p>
<p><strong>{{.EventName}}</strong></p>
<p>When: {{.StartTime}}</p>
<p>Where: {{.Location}}</p>
{{with .Venue}}
<p><strong>{{.Name}}</strong><br/>
{{.Address}}<br/>
Phone: <a href="{{.PhoneURL}}">{{.Phone}}</a></p>
<p><strong>Directions:</strong><br/>
<a href="{{.GoogleMapsURL}}">Google Maps</a> &nbsp;|&nbsp;
<a href="{{.WazeURL}}">Waze</a> &nbsp;|&nbsp;
<a href="{{.AppleMapsURL}}">Apple Maps</a></p>
{{end}}
<p>See you there!</p>
`))

type promotedData struct {
	Intro     string
	EventName string
	StartTime string
	Location  string
	Venue     *Venue
}

// PromotedSubject is the subject line of the promotion email
func PromotedSubject(eventName string) string {
	return "You're in! Added to " + eventName
}

// RenderPromoted builds the email telling a member they are on the roster.
func RenderPromoted(p rosterevents.PlayerPromotedPayload, venue *Venue) (Message, error) {
	intro := "You were on the waitlist and a spot opened up."
	if p.Reason == rosterevents.PromotionReasonApproval {
		intro = "Your request to join was approved."
	}

	var body strings.Builder
	err := promotedTemplate.Execute(&body, promotedData{
		Intro:     intro,
		EventName: p.EventName,
		StartTime: p.StartTimeDisplay,
		Location:  p.LocationDisplay,
		Venue:     venue,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render promotion email: %w", err)
	}

	return Message{
		To:      p.Email,
		Subject: PromotedSubject(p.EventName),
		HTML:    body.String(),
	}, nil
}
