// Package notify is the delivery boundary. The engine only builds the
// findings payload; everything transport-shaped lives here.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"github.com/Pusher91/breachwatch/internal/domain"
)

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Mailer sends one consolidated breach alert per run and a distinct
// failure alert when a run dies, over plain SMTP (the expected peer is
// a local mail bridge).
type Mailer struct {
	opts Options
	log  *zap.Logger

	// send is swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(opts Options, log *zap.Logger) *Mailer {
	return &Mailer{opts: opts, log: log, send: smtp.SendMail}
}

func (m *Mailer) SendAlert(ctx context.Context, findings *domain.Findings) error {
	subject := "Have I Been Pwned - Data Breach Alert"
	if err := m.sendMail(ctx, subject, AlertBody(findings)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNotificationFailed, err)
	}
	m.log.Info("breach alert sent",
		zap.Int("emails", len(findings.Emails())),
		zap.Int("memberships", findings.Total()))
	return nil
}

func (m *Mailer) SendFailure(ctx context.Context, report domain.RunReport, runErr error) error {
	subject := "Have I Been Pwned - Run Failure Alert"
	if err := m.sendMail(ctx, subject, FailureBody(report, runErr)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNotificationFailed, err)
	}
	m.log.Info("failure alert sent", zap.String("runId", report.RunID))
	return nil
}

func (m *Mailer) sendMail(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.opts.From)
	fmt.Fprintf(&msg, "To: %s\r\n", m.opts.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.opts.Username != "" {
		auth = smtp.PlainAuth("", m.opts.Username, m.opts.Password, m.opts.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.opts.Host, m.opts.Port)
	return m.send(addr, auth, m.opts.From, []string{m.opts.To}, msg.Bytes())
}

// AlertBody renders the consolidated per-run alert: each email with its
// new breach count, each breach with its date and a reference link.
func AlertBody(findings *domain.Findings) string {
	var b bytes.Buffer
	b.WriteString("The following emails have been found in breaches:\n\n")

	for _, email := range findings.Emails() {
		ms := findings.ForEmail(email)
		fmt.Fprintf(&b, "%s found in %d breach(es):\n", email, len(ms))
		for _, m := range ms {
			fmt.Fprintf(&b, "  - %s (%s)\n", m.BreachName, m.BreachDate)
			fmt.Fprintf(&b, "    More info: https://haveibeenpwned.com/PwnedWebsites#%s\n", m.BreachName)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FailureBody renders the operator-facing run failure message.
func FailureBody(report domain.RunReport, runErr error) string {
	var b bytes.Buffer
	b.WriteString("A breach monitoring run failed.\n\n")
	fmt.Fprintf(&b, "Run:            %s\n", report.RunID)
	fmt.Fprintf(&b, "Started:        %s\n", report.StartedAt)
	fmt.Fprintf(&b, "Emails checked: %d\n", report.EmailsChecked)
	fmt.Fprintf(&b, "Indeterminate:  %d\n", report.Indeterminate)
	fmt.Fprintf(&b, "New findings:   %d\n", report.NewMemberships)
	fmt.Fprintf(&b, "\nError:\n%v\n", runErr)
	return b.String()
}
