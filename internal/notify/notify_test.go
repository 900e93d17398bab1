package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docsign-backend-go/internal/events"

	"go.uber.org/zap"
)

type sentMail struct {
	to, subject, body string
}

type fakeSender struct {
	sent    []sentMail
	failFor map[string]error
}

func (f *fakeSender) Send(recipient, subject, body string) error {
	if err := f.failFor[recipient]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{recipient, subject, body})
	return nil
}

func TestNotifier_HandleShared(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "https://app.docsign.dev/", zap.NewNop())

	err := n.Handle(context.Background(), events.Event{
		Type:          events.TypeDocumentShared,
		DocumentID:    "doc-1",
		DocumentTitle: "NDA",
		ActorName:     "Owner",
		Recipients:    []string{"a@example.com", "b@example.com"},
		Permission:    "sign",
		Message:       "please review",
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d mails, want 2", len(sender.sent))
	}
	m := sender.sent[0]
	if !strings.Contains(m.subject, "NDA") {
		t.Errorf("subject = %q", m.subject)
	}
	for _, want := range []string{"sign access", "please review", "https://app.docsign.dev/documents/doc-1"} {
		if !strings.Contains(m.body, want) {
			t.Errorf("body missing %q: %s", want, m.body)
		}
	}
}

func TestNotifier_HandleContinuesAfterFailure(t *testing.T) {
	boom := errors.New("smtp down")
	sender := &fakeSender{failFor: map[string]error{"a@example.com": boom}}
	n := NewNotifier(sender, "", zap.NewNop())

	err := n.Handle(context.Background(), events.Event{
		Type:       events.TypeDocumentSigned,
		DocumentID: "doc-1",
		Recipients: []string{"a@example.com", "b@example.com"},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Handle() error = %v, want smtp failure", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].to != "b@example.com" {
		t.Errorf("sent = %+v, want only b@example.com", sender.sent)
	}
}

func TestNotifier_UnknownTypeIsDropped(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "", zap.NewNop())
	if err := n.Handle(context.Background(), events.Event{Type: "document.exploded", Recipients: []string{"a@b.c"}}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("no mail expected for unknown event type")
	}
}

func TestNotifier_ComposeAssigned(t *testing.T) {
	n := NewNotifier(&fakeSender{}, "http://localhost:3000", zap.NewNop())
	subject, body, err := n.Compose(events.Event{Type: events.TypeDocumentAssigned, DocumentID: "d", DocumentTitle: "Lease"})
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Signature requested: Lease" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "A user asked you to sign") {
		t.Errorf("body = %q", body)
	}
}
