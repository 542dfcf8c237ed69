package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var errBadCredentials = errors.New("Invalid login credentials")

type fakeAccount struct {
	identity entity.Identity
	password string
}

// fakeBackend is an in-memory Backend. Profile queries for an identity can be
// held back with block to force out-of-order completion.
type fakeBackend struct {
	mu        sync.Mutex
	accounts  map[string]*fakeAccount
	profiles  map[uuid.UUID]*entity.Profile
	current   *entity.Session
	listeners map[int]func(ChangeEvent)
	nextID    int

	blocked       map[uuid.UUID]chan struct{}
	profileErr    error
	failQueries   int
	queryCalls    int
	invalidateErr error
	onInvalidate  func()
	createSession bool
	created       []entity.JSON
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts:  make(map[string]*fakeAccount),
		profiles:  make(map[uuid.UUID]*entity.Profile),
		listeners: make(map[int]func(ChangeEvent)),
		blocked:   make(map[uuid.UUID]chan struct{}),
	}
}

func (b *fakeBackend) addAccount(email, password string, metadata entity.JSON, profile *entity.Profile) entity.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()

	identity := entity.Identity{ID: uuid.New(), Email: email, Metadata: metadata}
	b.accounts[email] = &fakeAccount{identity: identity, password: password}
	if profile != nil {
		profile.UserID = identity.ID
		b.profiles[identity.ID] = profile
	}
	return identity
}

func (b *fakeBackend) sessionFor(identity entity.Identity) *entity.Session {
	return &entity.Session{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().Add(time.Hour),
		Identity:     identity,
	}
}

func (b *fakeBackend) block(id uuid.UUID) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.blocked[id] = ch
	return ch
}

func (b *fakeBackend) setApproved(id uuid.UUID, approved bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[id].IsApproved = &approved
}

func (b *fakeBackend) fire(event ChangeEvent) {
	b.mu.Lock()
	listeners := make([]func(ChangeEvent), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func (b *fakeBackend) listenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *fakeBackend) VerifyCredentials(ctx context.Context, email, password string) (*entity.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	account, ok := b.accounts[email]
	if !ok || account.password != password {
		return nil, errBadCredentials
	}
	b.current = b.sessionFor(account.identity)
	return b.current, nil
}

func (b *fakeBackend) CreateIdentity(ctx context.Context, email, password string, metadata entity.JSON) (*entity.Session, error) {
	b.mu.Lock()
	if _, exists := b.accounts[email]; exists {
		b.mu.Unlock()
		return nil, errors.New("User already registered")
	}
	b.created = append(b.created, metadata)
	createSession := b.createSession
	b.mu.Unlock()

	role, _ := entity.ParseRole(metadata[entity.MetadataRole])
	profile := &entity.Profile{FullName: metadata.String(entity.MetadataFullName), Email: email}
	if role == entity.RoleDoctor {
		approved := false
		profile.IsApproved = &approved
	}
	identity := b.addAccount(email, password, metadata, profile)

	if !createSession {
		return nil, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.sessionFor(identity)
	return b.current, nil
}

func (b *fakeBackend) InvalidateSession(ctx context.Context) error {
	if b.onInvalidate != nil {
		b.onInvalidate()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
	return b.invalidateErr
}

func (b *fakeBackend) GetCurrentSession(ctx context.Context) (*entity.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, nil
}

func (b *fakeBackend) OnSessionChange(fn func(ChangeEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *fakeBackend) QueryProfileByIdentity(ctx context.Context, role entity.Role, identityID uuid.UUID) (*entity.Profile, error) {
	b.mu.Lock()
	wait := b.blocked[identityID]
	b.mu.Unlock()
	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.queryCalls++
	if b.failQueries > 0 {
		b.failQueries--
		return nil, errors.New("connection reset")
	}
	if b.profileErr != nil {
		return nil, b.profileErr
	}
	profile, ok := b.profiles[identityID]
	if !ok {
		return nil, nil
	}
	copied := *profile
	return &copied, nil
}

func (b *fakeBackend) UpdateProfile(ctx context.Context, role entity.Role, identityID uuid.UUID, fields entity.ProfileFields) (*entity.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	profile, ok := b.profiles[identityID]
	if !ok {
		return nil, errors.New("profile not found")
	}
	if fields.FullName != nil {
		profile.FullName = *fields.FullName
	}
	if fields.ProfileImageURL != nil {
		profile.ProfileImageURL = *fields.ProfileImageURL
	}
	copied := *profile
	return &copied, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []entity.Notification
}

func (r *recordingNotifier) Notify(n entity.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) kinds() []entity.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]entity.NotificationKind, 0, len(r.notes))
	for _, n := range r.notes {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func (r *recordingNotifier) last() entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return entity.Notification{}
	}
	return r.notes[len(r.notes)-1]
}

func newTestLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

// newStartedManager returns a Manager that has completed its bootstrap check
func newStartedManager(t *testing.T, backend *fakeBackend, opts Options) (*Manager, *recordingNotifier) {
	t.Helper()
	notes := &recordingNotifier{}
	m := New(backend, notes, newTestLogger(), opts)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(m.Close)
	return m, notes
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func patientMetadata(name string) entity.JSON {
	return entity.JSON{entity.MetadataRole: "patient", entity.MetadataFullName: name}
}

func doctorMetadata(name string) entity.JSON {
	return entity.JSON{entity.MetadataRole: "doctor", entity.MetadataFullName: name}
}

func boolPtr(b bool) *bool { return &b }
