package emailsvc

import (
	"log"
	"net/mail"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/tuitioncenter/core"
	logsvc "github.com/trezcool/tuitioncenter/services/logger"
)

var conf = &core.Config{
	AppName:          "TutorCenter",
	Debug:            true,
	DefaultFromEmail: mail.Address{Name: "TutorCenter", Address: "noreply@localhost"},
}

func init() {
	core.RegisterEmailTemplate("test_greeting", "Hello {{.Name}}", "<p>Hello {{.Name}}</p>")
}

func newLogger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(os.Stderr, "TEST : ", 0), conf)
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	ClearSentMessages()
	svc := NewConsoleServiceMock(conf, newLogger())

	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Address: "a@test.uz"}}, Subject: "hi", TemplateName: "test_greeting", TemplateData: map[string]string{"Name": "Aziza"}},
		&core.EmailMessage{To: []mail.Address{{Address: "b@test.uz"}}, Subject: "plain", BodyStr: "just text"},
		&core.EmailMessage{Subject: "nobody", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "c@test.uz"}}, Subject: "missing key", TemplateName: "test_greeting", TemplateData: map[string]string{}},
	)

	sent := LastSentMessages()
	if assert.Len(t, sent, 2) {
		assert.Equal(t, "Hello Aziza", sent[0].TextContent)
		assert.Equal(t, "<p>Hello Aziza</p>", sent[0].HTMLContent)
		assert.Equal(t, "just text", sent[1].TextContent)
	}
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(conf, newLogger()).(*sendgridService)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Director", Address: "admin@test.uz"}},
		Bcc:         []mail.Address{{Address: "audit@test.uz"}},
		Subject:     "New payment receipt",
		TextContent: "text",
	})
	assert.Equal(t, "noreply@localhost", m.From.Address)
	if assert.Len(t, m.Personalizations, 1) {
		p := m.Personalizations[0]
		assert.Equal(t, "[TutorCenter] New payment receipt", p.Subject)
		assert.Equal(t, "admin@test.uz", p.To[0].Address)
		assert.Equal(t, "audit@test.uz", p.BCC[0].Address)
	}
	if assert.Len(t, m.Content, 1) {
		assert.Equal(t, "text/plain", m.Content[0].Type)
	}
}
