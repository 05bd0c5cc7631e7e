package notify

import (
	"context"
	"html"
	"strings"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	log "github.com/sirupsen/logrus"
)

// EmailNotifier sends each notification as an e-mail through Resend.
type EmailNotifier struct {
	client *resend.Client
	from   string
	to     []string
}

func NewEmailNotifier(apiKey, from string, to []string) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (n *EmailNotifier) Publish(ctx context.Context, message string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: subjectLine(message),
		Text:    message,
		Html:    "<pre style=\"font-family: sans-serif; white-space: pre-wrap;\">" + html.EscapeString(message) + "</pre>",
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return errors.Wrap(err, "failed to send feedback e-mail")
	}
	log.WithField("email_id", sent.Id).Debug("feedback e-mail sent")
	return nil
}

func subjectLine(message string) string {
	first, _, _ := strings.Cut(message, "\n")
	return first
}
