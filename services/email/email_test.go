package emailsvc

import (
	"encoding/base64"
	"io"
	"log"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shuleboard/core"
)

func newMessage() *core.EmailMessage {
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: "Head Teacher", Address: "head@school.test"}},
		Subject: "Class Report - Grade 10",
		Body:    "Please find the report attached.",
	}
	_ = msg.Attach(strings.NewReader("Title,Class Report - Grade 10\n"), "class-report.csv", "text/csv")
	return msg
}

func TestConsoleService_write(t *testing.T) {
	core.NowFunc = func() time.Time { return time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC) }
	defer func() { core.NowFunc = time.Now }()

	var out strings.Builder
	svc := NewConsoleService(core.NewTestConfig(), log.New(io.Discard, "", 0), nil).(*consoleService)
	require.NoError(t, svc.write(&out, *newMessage()))

	body := out.String()
	assert.Contains(t, body, `From: "Shuleboard" <noreply@localhost>`)
	assert.Contains(t, body, "Subject: [Shuleboard] Class Report - Grade 10")
	assert.Contains(t, body, `To: "Head Teacher" <head@school.test>`)
	assert.Contains(t, body, "Date: Wed, 15 Jan 2025 09:30:00 +0000")
	assert.Contains(t, body, `attachment; filename="class-report.csv"`)
	assert.Contains(t, body, base64.StdEncoding.EncodeToString([]byte("Title,Class Report - Grade 10\n")))
	assert.NotContains(t, body, "CC:")
}

func TestConsoleService_SendMessages(t *testing.T) {
	var out strings.Builder
	svc := NewConsoleService(core.NewTestConfig(), log.New(&out, "", 0), nil)
	svc.SendMessages(newMessage())
	Wait(svc)

	assert.Contains(t, out.String(), "Subject: [Shuleboard] Class Report - Grade 10")
}

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock(core.NewTestConfig(), nil)

	noRecipient := newMessage()
	noRecipient.To = nil
	empty := &core.EmailMessage{To: []mail.Address{{Address: "a@school.test"}}}
	svc.SendMessages(newMessage(), noRecipient, empty)

	sent := svc.SentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "Class Report - Grade 10", sent[0].Subject)
	}
}

func TestSendgridService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Email.SendgridApiKey = "key"
	svc := NewSendgridService(conf, nil).(*sendgridService)

	msg := newMessage()
	msg.Cc = []mail.Address{{Address: "deputy@school.test"}}
	m := svc.prepare(*msg)

	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Shuleboard] Class Report - Grade 10", p.Subject)
	if assert.Len(t, p.To, 1) {
		assert.Equal(t, "head@school.test", p.To[0].Address)
	}
	assert.Len(t, p.CC, 1)
	assert.Equal(t, "noreply@localhost", m.From.Address)
	if assert.Len(t, m.Attachments, 1) {
		assert.Equal(t, "text/csv", m.Attachments[0].Type)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("Title,Class Report - Grade 10\n")), m.Attachments[0].Content)
	}
}

func TestNew(t *testing.T) {
	conf := core.NewTestConfig()

	tests := []struct {
		name    string
		backend string
		key     string
		wantErr bool
	}{
		{name: "console", backend: "console"},
		{name: "default", backend: ""},
		{name: "sendgrid", backend: "sendgrid", key: "key"},
		{name: "sendgrid without key", backend: "sendgrid", wantErr: true},
		{name: "unknown", backend: "pigeon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf.Email.Backend = tt.backend
			conf.Email.SendgridApiKey = tt.key
			svc, err := New(conf, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}
