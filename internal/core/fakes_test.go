package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"docsign-backend-go/internal/db"
	"docsign-backend-go/internal/events"
	"docsign-backend-go/internal/models"
	"docsign-backend-go/internal/storage"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// cloneDocument deep-copies through JSON plus the fields JSON hides.
func cloneDocument(doc *models.Document) *models.Document {
	raw, _ := json.Marshal(doc)
	var out models.Document
	_ = json.Unmarshal(raw, &out)
	out.CollaboratorIDs = append([]string(nil), doc.CollaboratorIDs...)
	return &out
}

type fakeDocumentRepo struct {
	mu         sync.Mutex
	docs       map[string]*models.Document
	signatures map[string]*models.Signature
	nextID     int
	writes     int
	createErr  error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs:       make(map[string]*models.Document),
		signatures: make(map[string]*models.Signature),
	}
}

func syncIDs(doc *models.Document) {
	ids := make([]string, 0, len(doc.Collaborators))
	for _, c := range doc.Collaborators {
		ids = append(ids, c.UserID)
	}
	doc.CollaboratorIDs = ids
}

func (r *fakeDocumentRepo) put(doc *models.Document) *models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == "" {
		r.nextID++
		doc.ID = fmt.Sprintf("doc-%d", r.nextID)
	}
	syncIDs(doc)
	r.docs[doc.ID] = cloneDocument(doc)
	return doc
}

func (r *fakeDocumentRepo) get(id string) *models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil
	}
	return cloneDocument(doc)
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("doc-%d", r.nextID)
	stored := cloneDocument(doc)
	stored.ID = id
	syncIDs(stored)
	r.docs[id] = stored
	r.writes++
	return id, nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc := r.get(id)
	if doc == nil {
		return nil, db.ErrNotFound
	}
	return doc, nil
}

func (r *fakeDocumentRepo) Query(ctx context.Context, f db.DocumentFilter) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for _, doc := range r.docs {
		if f.OwnerID != "" && doc.OwnerID != f.OwnerID {
			continue
		}
		if f.SignerUserID != "" && doc.SignerUserID != f.SignerUserID {
			continue
		}
		if f.SignerEmail != "" && doc.SignerEmail != f.SignerEmail {
			continue
		}
		if f.CollaboratorID != "" && !contains(doc.CollaboratorIDs, f.CollaboratorID) {
			continue
		}
		if len(f.Statuses) > 0 && !contains(f.Statuses, doc.Status) {
			continue
		}
		out = append(out, cloneDocument(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (r *fakeDocumentRepo) Mutate(ctx context.Context, id string, fn func(*models.Document) error) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.docs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	doc := cloneDocument(current)
	if err := fn(doc); err != nil {
		return nil, err
	}
	syncIDs(doc)
	r.docs[id] = cloneDocument(doc)
	r.writes++
	return doc, nil
}

func (r *fakeDocumentRepo) AttachSignature(ctx context.Context, id string, sig *models.Signature, fn func(*models.Document) error) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.docs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	doc := cloneDocument(current)
	sig.ID = fmt.Sprintf("sig-%d", len(r.signatures)+1)
	sig.DocumentID = id
	if err := fn(doc); err != nil {
		return nil, err
	}
	stored := *sig
	r.signatures[sig.ID] = &stored
	syncIDs(doc)
	r.docs[id] = cloneDocument(doc)
	r.writes++
	return doc, nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return db.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) ListByDocument(ctx context.Context, documentID string) ([]*models.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Signature
	for _, sig := range r.signatures {
		if sig.DocumentID == documentID {
			copied := *sig
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	return r.Create(ctx, user)
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeFileStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
	deleted []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[string][]byte)}
}

func (s *fakeFileStore) Save(ctx context.Context, originalName, contentType string, r io.Reader) (*storage.StoredFile, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("file-%d%s", len(s.files)+len(s.deleted)+1, strings.ToLower(extOf(originalName)))
	s.files[key] = data
	return &storage.StoredFile{Key: key, Path: "mem://" + key, Size: int64(len(data))}, nil
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

func (s *fakeFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, storage.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeFileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[key]; !ok {
		return storage.ErrFileNotFound
	}
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeFileStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[key]
	return ok
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, e events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// testEnv wires every service against in-memory fakes.
type testEnv struct {
	docs      *fakeDocumentRepo
	users     *fakeUserRepo
	audit     *fakeAuditRepo
	files     *fakeFileStore
	publisher *fakePublisher

	userService UserService
	documents   *documentService
	sharing     *sharingService
	signing     *signingService
}

var (
	alice = &models.User{ID: "u-alice", Email: "alice@example.com", DisplayName: "Alice"}
	bob   = &models.User{ID: "u-bob", Email: "bob@example.com", DisplayName: "Bob"}
	carol = &models.User{ID: "u-carol", Email: "carol@example.com", DisplayName: "Carol"}
	dave  = &models.User{ID: "u-dave", Email: "dave@example.com", DisplayName: "Dave"}
)

func newTestEnv(sealer SignatureSealer) *testEnv {
	env := &testEnv{
		docs:      newFakeDocumentRepo(),
		users:     newFakeUserRepo(alice, bob, carol, dave),
		audit:     &fakeAuditRepo{},
		files:     newFakeFileStore(),
		publisher: &fakePublisher{},
	}
	logger := zap.NewNop()
	env.userService = &userService{userRepo: env.users, now: fixedNow}
	audit := NewAuditService(env.audit)

	env.documents = NewDocumentService(env.docs, env.userService, env.userService, env.files, audit, env.publisher, logger).(*documentService)
	env.documents.now = fixedNow
	env.documents.events.now = fixedNow

	env.sharing = NewSharingService(env.docs, env.userService, env.userService, audit, env.publisher, logger).(*sharingService)
	env.sharing.now = fixedNow
	env.sharing.events.now = fixedNow

	env.signing = NewSigningService(env.docs, env.docs, env.userService, sealer, audit, env.publisher, logger).(*signingService)
	env.signing.now = fixedNow
	env.signing.events.now = fixedNow
	return env
}

// seedDocument stores a document owned by ownerID with an optional signer and collaborators.
func (env *testEnv) seedDocument(ownerID, signerID, status string, collabs ...models.Collaborator) *models.Document {
	doc := &models.Document{
		Title:         "Contract",
		Filename:      "seed.pdf",
		OriginalName:  "contract.pdf",
		OwnerID:       ownerID,
		SignerUserID:  signerID,
		Status:        status,
		Collaborators: collabs,
		SignatureIDs:  []string{},
		CreatedAt:     testNow.Add(-time.Hour),
		UpdatedAt:     testNow.Add(-time.Hour),
	}
	if signerID != "" {
		u, _ := env.users.GetByID(context.Background(), signerID)
		doc.SignerEmail = u.Email
		doc.SignerName = u.DisplayName
		sent := testNow.Add(-time.Hour)
		doc.SentAt = &sent
	}
	env.files.files["seed.pdf"] = []byte("%PDF-1.4")
	return env.docs.put(doc)
}
