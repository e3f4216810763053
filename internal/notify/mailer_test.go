package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Pusher91/breachwatch/internal/domain"
)

func sampleFindings() *domain.Findings {
	f := domain.NewFindings()
	f.Add(domain.Membership{Email: "a@x.com", BreachName: "SiteX", BreachDate: "01/06/2024"})
	f.Add(domain.Membership{Email: "a@x.com", BreachName: "SiteY", BreachDate: "15/03/2023"})
	f.Add(domain.Membership{Email: "b@x.com", BreachName: "SiteX", BreachDate: "01/06/2024"})
	return f
}

func TestAlertBody(t *testing.T) {
	body := AlertBody(sampleFindings())

	assert.Contains(t, body, "The following emails have been found in breaches:")
	assert.Contains(t, body, "a@x.com found in 2 breach(es):")
	assert.Contains(t, body, "b@x.com found in 1 breach(es):")
	assert.Contains(t, body, "  - SiteX (01/06/2024)")
	assert.Contains(t, body, "  - SiteY (15/03/2023)")
	assert.Contains(t, body, "https://haveibeenpwned.com/PwnedWebsites#SiteX")
	assert.Contains(t, body, "https://haveibeenpwned.com/PwnedWebsites#SiteY")
}

func TestFailureBody(t *testing.T) {
	report := domain.RunReport{
		RunID:         "run-1",
		Status:        domain.RunFailed,
		StartedAt:     "2025-01-02T00:00:00Z",
		EmailsChecked: 3,
	}
	body := FailureBody(report, errors.New("lookup b@x.com: status 500"))

	assert.Contains(t, body, "run-1")
	assert.Contains(t, body, "lookup b@x.com: status 500")
	assert.Contains(t, body, "Emails checked: 3")
}

func TestMailerSendAlert(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := NewMailer(Options{
		Host: "127.0.0.1", Port: 1025,
		Username: "me@proton.me", Password: "bridge-pass",
		From: "me@proton.me", To: "me@proton.me",
	}, zap.NewNop())
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.SendAlert(context.Background(), sampleFindings()))

	assert.Equal(t, "127.0.0.1:1025", gotAddr)
	assert.Equal(t, "me@proton.me", gotFrom)
	assert.Equal(t, []string{"me@proton.me"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Have I Been Pwned - Data Breach Alert\r\n")
	assert.Contains(t, string(gotMsg), "a@x.com found in 2 breach(es):")
}

func TestMailerSendFailureDistinctSubject(t *testing.T) {
	var gotMsg []byte
	m := NewMailer(Options{Host: "127.0.0.1", Port: 1025, From: "a", To: "b"}, zap.NewNop())
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	report := domain.RunReport{RunID: "run-1", Status: domain.RunFailed}
	require.NoError(t, m.SendFailure(context.Background(), report, errors.New("boom")))

	assert.Contains(t, string(gotMsg), "Subject: Have I Been Pwned - Run Failure Alert\r\n")
	assert.Contains(t, string(gotMsg), "boom")
}

func TestMailerTransportErrorIsNotificationFailed(t *testing.T) {
	m := NewMailer(Options{Host: "127.0.0.1", Port: 1025, From: "a", To: "b"}, zap.NewNop())
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	err := m.SendAlert(context.Background(), sampleFindings())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotificationFailed)
}
