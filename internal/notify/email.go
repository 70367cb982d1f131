package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// Message is one outgoing email.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer simulates delivery: it logs the message, waits the configured
// delay and reports success.
type LogMailer struct {
	delay  time.Duration
	clock  clock.Clock
	logger logger.Logger
}

func NewLogMailer(delay time.Duration, clk clock.Clock, logger logger.Logger) *LogMailer {
	return &LogMailer{
		delay:  delay,
		clock:  clk,
		logger: logger.With("component", "mailer"),
	}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Infof("sending email to %s: %s", msg.To, msg.Subject)
	m.logger.Debugf("email body for %s:\n%s", msg.To, msg.Text)
	if err := Wait(ctx, m.clock, m.delay); err != nil {
		return err
	}
	m.logger.Infof("email sent to %s", msg.To)
	return nil
}

// SettingsSource provides the current email settings.
type SettingsSource interface {
	Settings(ctx context.Context) (model.EmailSettings, error)
}

// SettingsFunc adapts a function to a SettingsSource.
type SettingsFunc func(ctx context.Context) (model.EmailSettings, error)

func (f SettingsFunc) Settings(ctx context.Context) (model.EmailSettings, error) { return f(ctx) }

// EmailChannel sends alert emails to every verified address. It is inactive
// while settings are disabled or no address is verified, whatever the alert asks.
type EmailChannel struct {
	settings          SettingsSource
	mailer            Mailer
	from              string
	verificationDelay time.Duration
	clock             clock.Clock
	logger            logger.Logger
}

func NewEmailChannel(settings SettingsSource, mailer Mailer, from string, verificationDelay time.Duration, clk clock.Clock, logger logger.Logger) *EmailChannel {
	return &EmailChannel{
		settings:          settings,
		mailer:            mailer,
		from:              from,
		verificationDelay: verificationDelay,
		clock:             clk,
		logger:            logger.With("component", "email"),
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Wants(alert model.Alert) bool { return alert.EmailNotification }

// Send emails every verified address concurrently. The first failure is returned.
func (c *EmailChannel) Send(ctx context.Context, event model.AlertEvent) error {
	settings, err := c.settings.Settings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load email settings: %w", err)
	}
	if !settings.Active() {
		c.logger.Debugf("email notifications inactive, skipping alert %s", event.Alert.ID)
		return nil
	}

	firedAt := event.FiredAt
	if firedAt.IsZero() {
		firedAt = c.clock.Now()
	}

	recipients := settings.VerifiedAddresses()
	msgs := make([]Message, 0, len(recipients))
	for _, to := range recipients {
		msg, err := BuildAlertMessage(c.from, to, event.Alert, event.NewPrice, firedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, msg := range msgs {
		g.Go(func() error {
			return c.mailer.Send(gctx, msg)
		})
	}
	return g.Wait()
}

// SendVerification simulates sending a verification link to address.
func (c *EmailChannel) SendVerification(ctx context.Context, address string) error {
	c.logger.Infof("sending verification email to %s", address)
	if err := Wait(ctx, c.clock, c.verificationDelay); err != nil {
		return err
	}
	return c.mailer.Send(ctx, Message{
		From:    c.from,
		To:      address,
		Subject: "Verify your email for Crypto Portfolio Tracker price alerts",
		Text:    "Confirm this address to receive price alerts from your Crypto Portfolio Tracker.",
	})
}

// BuildAlertMessage renders the subject, text and HTML bodies of an alert email.
func BuildAlertMessage(from, to string, alert model.Alert, current float64, firedAt time.Time) (Message, error) {
	target := alert.TargetPrice
	direction := model.DirectionOf(current, target)
	emoji := direction.Emoji()
	kind := string(alert.Kind)
	if kind == "" {
		kind = string(model.AlertKindPrice)
	}
	heading := fmt.Sprintf("%s %s %s Alert", emoji, alert.TokenSymbol, strings.ToUpper(kind))
	change := ChangeFromTarget(current, target)
	when := firedAt.UTC().Format("2006-01-02 15:04:05 MST")
	summary := fmt.Sprintf("The current price of $%s is %s your target of $%s.",
		FormatPrice(current), direction, FormatPrice(target))

	text := strings.Join([]string{
		heading,
		"",
		fmt.Sprintf("Your %s alert for %s has been triggered!", kind, alert.TokenSymbol),
		"",
		"Target: $" + FormatPrice(target),
		"Current: $" + FormatPrice(current),
		"Change: " + change + " from target",
		"",
		summary,
		"",
		"Alert triggered at: " + when,
		"",
		"---",
		"This alert was sent from your Crypto Portfolio Tracker.",
		"You can manage your alert settings in the application.",
	}, "\n")

	markdown := strings.Join([]string{
		"# " + heading,
		"",
		fmt.Sprintf("**%s is now %s your target!**", alert.TokenSymbol, direction),
		"",
		"- Target: $" + FormatPrice(target),
		"- Current: $" + FormatPrice(current),
		"- " + change + " from target",
		"",
		fmt.Sprintf("Your %s alert for **%s** has been triggered. %s", kind, alert.TokenSymbol, summary),
		"",
		"_Alert triggered at: " + when + "_",
		"",
		"---",
		"",
		"This alert was sent from your Crypto Portfolio Tracker.",
		"You can manage your alert settings in the application.",
	}, "\n")

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &body); err != nil {
		return Message{}, fmt.Errorf("failed to render alert email: %w", err)
	}
	html := fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s %s Alert</title></head>\n<body>\n%s</body>\n</html>\n",
		alert.TokenSymbol, strings.ToUpper(kind), body.String())

	return Message{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("%s %s %s Alert - %s Target", emoji, alert.TokenSymbol, strings.ToUpper(kind), strings.ToUpper(string(direction))),
		Text:    text,
		HTML:    html,
	}, nil
}

// FormatPrice renders a USD price with six decimals.
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(6)
}

// ChangeFromTarget renders (current-target)/target as a signed percentage with two decimals.
func ChangeFromTarget(current, target float64) string {
	if target == 0 {
		return "+0.00%"
	}
	pct := decimal.NewFromFloat(current).Sub(decimal.NewFromFloat(target)).
		Div(decimal.NewFromFloat(target)).
		Mul(decimal.NewFromInt(100)).
		StringFixed(2)
	if current >= target {
		pct = "+" + pct
	}
	return pct + "%"
}

// Wait blocks for d on clk or until ctx is done.
func Wait(ctx context.Context, clk clock.Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := clk.Timer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
