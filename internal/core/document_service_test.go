package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"docsign-backend-go/internal/events"
	"docsign-backend-go/internal/models"
)

func upload(signerEmail string) models.CreateDocumentInput {
	return models.CreateDocumentInput{
		SignerName:   "",
		SignerEmail:  signerEmail,
		OriginalName: "Lease.pdf",
		MimeType:     "application/pdf",
		Content:      strings.NewReader("%PDF-1.4 lease"),
	}
}

func strPtr(s string) *string { return &s }

func TestCreateDocument_WithSigner(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	doc, err := env.documents.CreateDocument(ctx, alice.ID, upload("  BOB@example.com "))
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if doc.Status != models.StatusPendingSignature {
		t.Errorf("Status = %q, want pending_signature", doc.Status)
	}
	if doc.SentAt == nil || !doc.SentAt.Equal(testNow) {
		t.Errorf("SentAt = %v, want %v", doc.SentAt, testNow)
	}
	if doc.SignerUserID != bob.ID || doc.SignerEmail != bob.Email || doc.SignerName != "Bob" {
		t.Errorf("signer = %q/%q/%q", doc.SignerUserID, doc.SignerEmail, doc.SignerName)
	}
	if doc.Title != "Lease.pdf" {
		t.Errorf("Title = %q, want original filename", doc.Title)
	}
	if doc.OwnerID != alice.ID || doc.ID == "" {
		t.Errorf("OwnerID/ID = %q/%q", doc.OwnerID, doc.ID)
	}
	if !env.files.has(doc.Filename) {
		t.Error("uploaded file not stored")
	}
	if got := env.audit.actions(); len(got) != 1 || got[0] != ActionDocumentCreate {
		t.Errorf("audit actions = %v", got)
	}
	published := env.publisher.published()
	if len(published) != 1 || published[0].Type != events.TypeDocumentAssigned || published[0].Recipients[0] != bob.Email {
		t.Errorf("published = %+v", published)
	}
	if published[0].ActorName != "Alice" {
		t.Errorf("ActorName = %q, want Alice", published[0].ActorName)
	}
}

func TestCreateDocument_WithoutSignerIsDraft(t *testing.T) {
	env := newTestEnv(nil)
	in := upload("")
	in.Title = "  My title "
	doc, err := env.documents.CreateDocument(context.Background(), alice.ID, in)
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if doc.Status != models.StatusDraft || doc.SentAt != nil {
		t.Errorf("Status/SentAt = %q/%v, want draft/nil", doc.Status, doc.SentAt)
	}
	if doc.Title != "My title" {
		t.Errorf("Title = %q", doc.Title)
	}
	if len(env.publisher.published()) != 0 {
		t.Error("no event expected without a signer")
	}
}

func TestCreateDocument_SignerNotRegisteredWritesNothing(t *testing.T) {
	env := newTestEnv(nil)
	_, err := env.documents.CreateDocument(context.Background(), alice.ID, upload("ghost@example.com"))
	if !errors.Is(err, ErrSignerNotRegistered) {
		t.Fatalf("error = %v, want ErrSignerNotRegistered", err)
	}
	if len(env.files.files) != 0 || env.docs.writes != 0 {
		t.Error("nothing should be stored when the signer is unknown")
	}
}

func TestCreateDocument_InvalidSignerEmail(t *testing.T) {
	env := newTestEnv(nil)
	_, err := env.documents.CreateDocument(context.Background(), alice.ID, upload("not-an-email"))
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("error = %v, want ErrValidationFailed", err)
	}
}

func TestCreateDocument_StorageFailure(t *testing.T) {
	env := newTestEnv(nil)
	env.files.saveErr = errors.New("disk full")
	_, err := env.documents.CreateDocument(context.Background(), alice.ID, upload(""))
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("error = %v, want ErrStorageFailure", err)
	}
}

func TestCreateDocument_RecordFailureRemovesFile(t *testing.T) {
	env := newTestEnv(nil)
	env.docs.createErr = errors.New("firestore unavailable")
	if _, err := env.documents.CreateDocument(context.Background(), alice.ID, upload("")); err == nil {
		t.Fatal("expected error")
	}
	if len(env.files.files) != 0 || len(env.files.deleted) != 1 {
		t.Errorf("orphaned upload not cleaned: files=%d deleted=%d", len(env.files.files), len(env.files.deleted))
	}
}

func TestGetDocument(t *testing.T) {
	env := newTestEnv(nil)
	doc := env.seedDocument(alice.ID, bob.ID, models.StatusPendingSignature,
		models.Collaborator{UserID: carol.ID, Permission: models.PermissionView})
	ctx := context.Background()

	view, err := env.documents.GetDocument(ctx, doc.ID, carol.ID)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if view.UserRole != "view" {
		t.Errorf("UserRole = %q, want view", view.UserRole)
	}
	if _, err := env.documents.GetDocument(ctx, doc.ID, dave.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger error = %v, want ErrForbidden", err)
	}
	if _, err := env.documents.GetDocument(ctx, "missing", alice.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("missing error = %v, want ErrDocumentNotFound", err)
	}

	role, err := env.documents.GetRole(ctx, doc.ID, bob.ID)
	if err != nil || role != RoleSigner {
		t.Errorf("GetRole() = %q, %v; want signer", role, err)
	}
}

func TestUpdateDocument_Permissions(t *testing.T) {
	env := newTestEnv(nil)
	doc := env.seedDocument(alice.ID, bob.ID, models.StatusPendingSignature,
		models.Collaborator{UserID: carol.ID, Permission: models.PermissionEdit},
		models.Collaborator{UserID: dave.ID, Permission: models.PermissionSign})
	ctx := context.Background()

	updated, err := env.documents.UpdateDocument(ctx, doc.ID, carol.ID, models.UpdateDocumentRequest{Title: strPtr("Edited")})
	if err != nil {
		t.Fatalf("editor title update error = %v", err)
	}
	if updated.Title != "Edited" {
		t.Errorf("Title = %q", updated.Title)
	}

	_, err = env.documents.UpdateDocument(ctx, doc.ID, carol.ID, models.UpdateDocumentRequest{Status: strPtr(models.StatusCompleted)})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("editor status change error = %v, want ErrForbidden", err)
	}

	for _, caller := range []string{bob.ID, dave.ID, "stranger"} {
		_, err = env.documents.UpdateDocument(ctx, doc.ID, caller, models.UpdateDocumentRequest{Description: strPtr("x")})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("caller %s error = %v, want ErrForbidden", caller, err)
		}
	}

	if got := env.docs.get(doc.ID).Status; got != models.StatusPendingSignature {
		t.Errorf("status changed by rejected requests: %q", got)
	}
}

func TestUpdateDocument_StatusTransitions(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	draft := env.seedDocument(alice.ID, "", models.StatusDraft)
	updated, err := env.documents.UpdateDocument(ctx, draft.ID, alice.ID, models.UpdateDocumentRequest{Status: strPtr(models.StatusPendingSignature)})
	if err != nil {
		t.Fatalf("draft -> pending_signature error = %v", err)
	}
	if updated.SentAt == nil {
		t.Error("SentAt should be set when a document is sent")
	}

	signed := env.seedDocument(alice.ID, "", models.StatusSigned)
	for _, to := range []string{models.StatusDraft, models.StatusPending} {
		_, err := env.documents.UpdateDocument(ctx, signed.ID, alice.ID, models.UpdateDocumentRequest{Status: strPtr(to)})
		if !errors.Is(err, ErrInvalidStatusTransition) {
			t.Errorf("signed -> %s error = %v, want ErrInvalidStatusTransition", to, err)
		}
	}
	if _, err := env.documents.UpdateDocument(ctx, signed.ID, alice.ID, models.UpdateDocumentRequest{Status: strPtr(models.StatusCompleted)}); err != nil {
		t.Errorf("signed -> completed error = %v", err)
	}
}

func TestUpdateDocument_Validation(t *testing.T) {
	env := newTestEnv(nil)
	doc := env.seedDocument(alice.ID, "", models.StatusDraft)
	ctx := context.Background()

	if _, err := env.documents.UpdateDocument(ctx, doc.ID, alice.ID, models.UpdateDocumentRequest{}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("empty update error = %v", err)
	}
	if _, err := env.documents.UpdateDocument(ctx, doc.ID, alice.ID, models.UpdateDocumentRequest{Title: strPtr("  ")}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("blank title error = %v", err)
	}
	if _, err := env.documents.UpdateDocument(ctx, "missing", alice.ID, models.UpdateDocumentRequest{Title: strPtr("x")}); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("missing doc error = %v", err)
	}
}

func TestDeleteDocument_NonOwnerLeavesEverything(t *testing.T) {
	env := newTestEnv(nil)
	doc := env.seedDocument(alice.ID, bob.ID, models.StatusPendingSignature,
		models.Collaborator{UserID: carol.ID, Permission: models.PermissionEdit})
	ctx := context.Background()

	for _, caller := range []string{bob.ID, carol.ID, dave.ID} {
		if err := env.documents.DeleteDocument(ctx, doc.ID, caller); !errors.Is(err, ErrForbidden) {
			t.Errorf("delete by %s error = %v, want ErrForbidden", caller, err)
		}
	}
	if env.docs.get(doc.ID) == nil {
		t.Error("record removed by non-owner")
	}
	if !env.files.has(doc.Filename) {
		t.Error("file removed by non-owner")
	}
}

func TestDeleteDocument_Owner(t *testing.T) {
	env := newTestEnv(nil)
	doc := env.seedDocument(alice.ID, "", models.StatusDraft)
	ctx := context.Background()

	if err := env.documents.DeleteDocument(ctx, doc.ID, alice.ID); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if env.docs.get(doc.ID) != nil || env.files.has(doc.Filename) {
		t.Error("record or file still present")
	}
	if err := env.documents.DeleteDocument(ctx, doc.ID, alice.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("second delete error = %v, want ErrDocumentNotFound", err)
	}
}

func TestDeleteDocument_MissingFileIsIgnored(t *testing.T) {
	env := newTestEnv(nil)
	doc := env.seedDocument(alice.ID, "", models.StatusDraft)
	delete(env.files.files, doc.Filename)

	if err := env.documents.DeleteDocument(context.Background(), doc.ID, alice.ID); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if env.docs.get(doc.ID) != nil {
		t.Error("record should be deleted even when the file is missing")
	}
}

func TestListDocuments(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	owned := env.seedDocument(alice.ID, "", models.StatusDraft)
	assigned := env.seedDocument(carol.ID, alice.ID, models.StatusPendingSignature)
	shared := env.seedDocument(bob.ID, "", models.StatusDraft, models.Collaborator{UserID: alice.ID, Permission: models.PermissionView})
	both := env.seedDocument(dave.ID, alice.ID, models.StatusPendingSignature, models.Collaborator{UserID: alice.ID, Permission: models.PermissionEdit})
	env.seedDocument(bob.ID, "", models.StatusDraft)

	docs, err := env.documents.ListDocuments(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	ids := map[string]bool{}
	for _, d := range docs {
		if ids[d.ID] {
			t.Errorf("duplicate document %s", d.ID)
		}
		ids[d.ID] = true
	}
	for _, want := range []string{owned.ID, assigned.ID, shared.ID, both.ID} {
		if !ids[want] {
			t.Errorf("missing document %s", want)
		}
	}
	if len(docs) != 4 {
		t.Errorf("got %d documents, want 4", len(docs))
	}

	sharedViews, err := env.documents.ListSharedDocuments(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListSharedDocuments() error = %v", err)
	}
	roles := map[string]string{}
	for _, v := range sharedViews {
		roles[v.ID] = v.UserRole
	}
	if len(roles) != 3 || roles[assigned.ID] != "signer" || roles[shared.ID] != "view" || roles[both.ID] != "signer" {
		t.Errorf("shared roles = %v", roles)
	}
}

func TestOpenDocumentFile(t *testing.T) {
	env := newTestEnv(nil)
	doc := env.seedDocument(alice.ID, bob.ID, models.StatusPendingSignature)
	ctx := context.Background()

	_, rc, err := env.documents.OpenDocumentFile(ctx, doc.ID, bob.ID)
	if err != nil {
		t.Fatalf("OpenDocumentFile() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4" {
		t.Errorf("content = %q", data)
	}

	if _, _, err := env.documents.OpenDocumentFile(ctx, doc.ID, dave.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger error = %v, want ErrForbidden", err)
	}

	delete(env.files.files, doc.Filename)
	if _, _, err := env.documents.OpenDocumentFile(ctx, doc.ID, alice.ID); !errors.Is(err, ErrDocumentFileMissing) {
		t.Errorf("missing file error = %v, want ErrDocumentFileMissing", err)
	}
}
