package emailsvc

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/asistente/core"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// sendgridService delivers account emails (password resets) through the SendGrid v3 API.
// Each message is tagged with the app category and its template name, so resets can be
// tracked apart in the SendGrid dashboard.
type sendgridService struct {
	key      string
	from     *sgmail.Email
	appName  string
	logger   core.Logger
	sendFunc func(key string, body []byte) (int, string, error) // mockable
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	from := conf.DefaultFromEmail()
	return &sendgridService{
		key:      conf.SendgridApiKey,
		from:     sgmail.NewEmail(from.Name, from.Address),
		appName:  conf.AppName,
		logger:   logger,
		sendFunc: sendgridPost,
	}
}

func sendgridPost(key string, body []byte) (int, string, error) {
	req := sendgrid.GetRequest(key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = body

	res, err := sendgrid.API(req)
	if err != nil {
		return 0, "", err
	}
	return res.StatusCode, res.Body, nil
}

func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.deliver(msg)
	}
}

func (svc *sendgridService) deliver(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering %q email: %v", msg.TemplateName, err), err)
		return
	}
	if !msg.HasRecipients() || !(msg.HasContent() || msg.HasAttachments()) {
		svc.logger.Warn(fmt.Sprintf("skipping %q email: nothing to send", msg.Subject))
		return
	}

	code, body, err := svc.sendFunc(svc.key, sgmail.GetRequestBody(svc.build(*msg)))
	switch {
	case err != nil:
		svc.logger.Error(fmt.Sprintf("sending %q email: %v", msg.Subject, err), err)
	case code >= http.StatusBadRequest:
		svc.logger.Error(fmt.Sprintf("sending %q email - status: %d - body: %s", msg.Subject, code, body))
	}
}

// build converts msg into a SendGrid payload. Every To address gets its own personalization
// so students never see each other's address; Cc and Bcc ride along with the first one.
func (svc *sendgridService) build(msg core.EmailMessage) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.Subject = "[" + svc.appName + "] " + msg.Subject

	seen := make(map[string]bool, len(msg.To))
	for _, to := range msg.To {
		addr := strings.ToLower(to.Address)
		if seen[addr] {
			continue
		}
		seen[addr] = true

		p := sgmail.NewPersonalization()
		p.AddTos(sgEmail(to))
		if len(m.Personalizations) == 0 {
			for _, cc := range msg.Cc {
				p.AddCCs(sgEmail(cc))
			}
			for _, bcc := range msg.Bcc {
				p.AddBCCs(sgEmail(bcc))
			}
		}
		m.AddPersonalizations(p)
	}

	// SendGrid rejects empty content blocks; text/plain must come first.
	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}

	for _, a := range msg.Attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     a.Content.String(),
			Type:        a.ContentType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}

	categories := []string{strings.ToLower(svc.appName)}
	if msg.TemplateName != "" {
		categories = append(categories, msg.TemplateName)
	}
	m.AddCategories(categories...)
	return m
}

func sgEmail(addr mail.Address) *sgmail.Email {
	return sgmail.NewEmail(addr.Name, addr.Address)
}
