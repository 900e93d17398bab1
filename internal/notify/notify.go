// Package notify turns lifecycle events into notification mail.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docsign-backend-go/internal/events"

	"go.uber.org/zap"
)

// Sender delivers one message. *mailer.Mailer satisfies it.
type Sender interface {
	Send(recipient, subject, body string) error
}

// Notifier mails the recipients of each event.
type Notifier struct {
	sender    Sender
	clientURL string
	logger    *zap.Logger
}

func NewNotifier(sender Sender, clientURL string, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, clientURL: strings.TrimRight(clientURL, "/"), logger: logger}
}

// Compose builds the subject and body for an event.
func (n *Notifier) Compose(event events.Event) (subject, body string, err error) {
	actor := event.ActorName
	if actor == "" {
		actor = "A user"
	}
	link := n.clientURL + "/documents/" + event.DocumentID

	switch event.Type {
	case events.TypeDocumentAssigned:
		subject = fmt.Sprintf("Signature requested: %s", event.DocumentTitle)
		body = fmt.Sprintf("<p>%s asked you to sign \"%s\".</p><p><a href=\"%s\">Open document</a></p>",
			actor, event.DocumentTitle, link)
	case events.TypeDocumentShared:
		subject = fmt.Sprintf("Document shared with you: %s", event.DocumentTitle)
		body = fmt.Sprintf("<p>%s shared \"%s\" with you (%s access).</p>", actor, event.DocumentTitle, event.Permission)
		if event.Message != "" {
			body += fmt.Sprintf("<p>%s</p>", event.Message)
		}
		body += fmt.Sprintf("<p><a href=\"%s\">Open document</a></p>", link)
	case events.TypeDocumentSigned:
		subject = fmt.Sprintf("Document signed: %s", event.DocumentTitle)
		body = fmt.Sprintf("<p>%s signed \"%s\".</p><p><a href=\"%s\">Open document</a></p>",
			actor, event.DocumentTitle, link)
	default:
		return "", "", fmt.Errorf("unknown event type %q", event.Type)
	}
	return subject, body, nil
}

// Handle sends one mail per recipient. Failures for individual recipients are
// collected so the remaining recipients are still attempted.
func (n *Notifier) Handle(ctx context.Context, event events.Event) error {
	subject, body, err := n.Compose(event)
	if err != nil {
		n.logger.Warn("Ignoring event", zap.String("type", event.Type), zap.Error(err))
		return nil
	}

	var errs []error
	for _, recipient := range event.Recipients {
		if err := n.sender.Send(recipient, subject, body); err != nil {
			errs = append(errs, err)
			continue
		}
		n.logger.Info("Notification sent",
			zap.String("type", event.Type),
			zap.String("documentID", event.DocumentID),
			zap.String("recipient", recipient))
	}
	return errors.Join(errs...)
}
