package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// Publication triggers, used for logging and metrics
const (
	triggerBootstrap = "bootstrap"
	triggerLogin     = "login"
	triggerRegister  = "register"
	triggerLogout    = "logout"
	triggerEvent     = "event"
	triggerRefresh   = "refresh"
	triggerUpdate    = "update"
)

type Options struct {
	// ProfileFetchRetries is the number of extra attempts after a failed or empty profile fetch
	ProfileFetchRetries int
	ProfileFetchBackoff time.Duration
	Metrics             Recorder
}

type RegisterInput struct {
	FullName       string
	Email          string
	Password       string
	Role           entity.Role
	Specialization string
}

// Manager owns the process-wide authentication state and is its only writer.
//
// Every trigger (bootstrap, explicit operation, backend event, manual refresh)
// takes a sequence number. A result is published only if no trigger with a
// higher number has published already, so the latest event always wins.
type Manager struct {
	backend  Backend
	notifier Notifier
	log      *logrus.Logger
	opts     Options
	metrics  Recorder

	mu        sync.RWMutex
	user      *entity.UserView
	session   *entity.Session
	loading   bool
	inflight  int
	seq       uint64
	published uint64
	closed    bool

	// backend events sequenced while a logout is in flight are stale: they
	// were raised for the session being invalidated
	loggingOut int
	eventFloor uint64

	unsubscribe func()

	listenerMu   sync.Mutex
	listeners    map[int]func(Snapshot)
	nextListener int

	// serializes delivery of notifications and snapshots
	emitMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(backend Backend, notifier Notifier, log *logrus.Logger, opts Options) *Manager {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if opts.ProfileFetchRetries < 0 {
		opts.ProfileFetchRetries = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		backend:   backend,
		notifier:  notifier,
		log:       log,
		opts:      opts,
		metrics:   metrics,
		loading:   true,
		listeners: make(map[int]func(Snapshot)),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start subscribes to backend session changes and resolves any existing session.
// It blocks until the bootstrap check completes; readers see Loading until then.
func (m *Manager) Start(ctx context.Context) error {
	seq := m.nextSeq()

	unsubscribe := m.backend.OnSessionChange(m.handleChange)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		unsubscribe()
		return context.Canceled
	}
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	session, err := m.backend.GetCurrentSession(ctx)
	if err != nil {
		m.log.Warnf("Failed to restore session: %+v", err)
		m.publish(seq, triggerBootstrap, nil, nil, nil)
		return err
	}
	if session == nil {
		m.publish(seq, triggerBootstrap, nil, nil, nil)
		return nil
	}

	view, notes := m.resolve(ctx, session)
	m.publish(seq, triggerBootstrap, session, view, notes)
	return nil
}

// Close releases the backend subscription and waits for in-flight event handlers
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	m.cancel()
	m.wg.Wait()
}

// Login verifies credentials and derives the role from the stored identity metadata.
// On a credential error the published state is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.begin()
	defer m.end()

	session, err := m.backend.VerifyCredentials(ctx, email, password)
	if err != nil {
		m.metrics.ObserveLogin(LoginFailed)
		m.emit(loginFailure(err))
		return err
	}

	seq := m.nextSeq()
	view, notes := m.resolve(ctx, session)
	if !view.HasRole() {
		m.metrics.ObserveLogin(LoginRoleMissing)
		m.publish(seq, triggerLogin, session, view, append(notes, loginRoleMissing()))
		return ErrRoleMissing
	}

	m.metrics.ObserveLogin(LoginSucceeded)
	m.publish(seq, triggerLogin, session, view, append(notes, loginSuccess(view.DisplayName())))
	return nil
}

// Register creates an account with role and name in its metadata.
// Specialization is kept only for doctors.
func (m *Manager) Register(ctx context.Context, in RegisterInput) error {
	m.begin()
	defer m.end()

	if !in.Role.Valid() {
		m.emit(registerFailure(ErrInvalidRole))
		return ErrInvalidRole
	}

	metadata := entity.JSON{
		entity.MetadataRole:     in.Role.String(),
		entity.MetadataFullName: in.FullName,
	}
	specialization := strings.TrimSpace(in.Specialization)
	if in.Role == entity.RoleDoctor && specialization != "" {
		metadata[entity.MetadataSpecialization] = specialization
	}

	session, err := m.backend.CreateIdentity(ctx, in.Email, in.Password, metadata)
	if err != nil {
		m.emit(registerFailure(err))
		return err
	}

	if session == nil {
		m.emit(registerSuccess(in.Role))
		return nil
	}

	// The backend skipped email confirmation and already signed the account in
	seq := m.nextSeq()
	view, notes := m.resolve(ctx, session)
	m.publish(seq, triggerRegister, session, view, append(notes, registerSuccess(in.Role)))
	return nil
}

// Logout clears the published state first, then invalidates the backend session.
// A backend failure is reported but never restores the previous state.
func (m *Manager) Logout(ctx context.Context) error {
	m.begin()
	defer m.end()

	m.mu.Lock()
	m.loggingOut++
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	m.publish(seq, triggerLogout, nil, nil, nil)

	err := m.backend.InvalidateSession(ctx)

	m.mu.Lock()
	m.loggingOut--
	m.eventFloor = m.seq
	m.mu.Unlock()

	if err != nil {
		m.log.Warnf("Failed to invalidate session: %+v", err)
		m.emit(logoutFailure(err))
		return err
	}

	m.emit(logoutSuccess())
	return nil
}

// RefreshProfile re-resolves the current session, picking up changes such as a doctor approval
func (m *Manager) RefreshProfile(ctx context.Context) error {
	m.begin()
	defer m.end()

	seq := m.nextSeq()
	session, err := m.backend.GetCurrentSession(ctx)
	if err != nil {
		m.emit(profileFetchError(err))
		return err
	}
	if session == nil {
		m.publish(seq, triggerRefresh, nil, nil, nil)
		return ErrNotAuthenticated
	}

	view, notes := m.resolve(ctx, session)
	m.publish(seq, triggerRefresh, session, view, notes)
	return nil
}

// UpdateProfile saves the editable profile fields of the current user
func (m *Manager) UpdateProfile(ctx context.Context, fields entity.ProfileFields) error {
	m.begin()
	defer m.end()

	m.mu.RLock()
	session := m.session
	user := m.user
	m.mu.RUnlock()

	if session == nil || user == nil {
		m.emit(profileUpdateFailure(ErrNotAuthenticated))
		return ErrNotAuthenticated
	}
	if !user.HasRole() {
		m.emit(profileUpdateFailure(ErrRoleMissing))
		return ErrRoleMissing
	}

	seq := m.nextSeq()
	profile, err := m.backend.UpdateProfile(ctx, user.AppRole, user.ID, fields)
	if err != nil {
		m.emit(profileUpdateFailure(err))
		return err
	}

	view := entity.NewUserView(session.Identity, user.AppRole, profile)
	m.publish(seq, triggerUpdate, session, view, []entity.Notification{profileUpdateSuccess()})
	return nil
}

// HasRole reports whether the current user is authorized as one of roles.
// An unapproved doctor is not authorized as doctor.
func (m *Manager) HasRole(roles ...entity.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role := m.user.AuthorizedRole()
	if role == entity.RoleNone {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// User returns the current composite view, nil when unauthenticated
func (m *Manager) User() *entity.UserView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	var state State
	switch {
	case m.loading:
		state = StateBootstrapping
	case m.inflight > 0:
		state = StateAuthenticating
	case m.user == nil:
		state = StateUnauthenticated
	case !m.user.HasRole():
		state = StateAuthenticatedNoRole
	default:
		state = StateAuthenticated
	}
	return Snapshot{State: state, User: m.user, Loading: m.loading}
}

// Subscribe registers fn to receive a snapshot after every accepted publication
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.listenerMu.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn
	m.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.listenerMu.Lock()
			delete(m.listeners, id)
			m.listenerMu.Unlock()
		})
	}
}

// handleChange runs on the backend's delivery goroutine. The sequence number is
// taken here so event order is preserved; the profile fetch runs asynchronously.
func (m *Manager) handleChange(event ChangeEvent) {
	m.metrics.ObserveSessionEvent(event.Type)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.seq++
	seq := m.seq
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		if event.Session == nil || event.Type == entity.SessionEventSignedOut {
			m.publish(seq, triggerEvent, nil, nil, nil)
			return
		}

		view, notes := m.resolve(m.ctx, event.Session)
		m.publish(seq, triggerEvent, event.Session, view, notes)
	}()
}

// resolve derives the role from metadata and fetches the matching profile.
// A missing or failed profile still yields a view with a nil profile.
func (m *Manager) resolve(ctx context.Context, session *entity.Session) (*entity.UserView, []entity.Notification) {
	role, ok := session.Identity.Role()
	if !ok {
		m.log.WithField("identity_id", session.Identity.ID).Warn("Session identity has no role metadata")
		return entity.NewUserView(session.Identity, entity.RoleNone, nil), nil
	}

	profile, note := m.fetchProfile(ctx, role, session)
	view := entity.NewUserView(session.Identity, role, profile)
	if note != nil {
		return view, []entity.Notification{*note}
	}
	return view, nil
}

func (m *Manager) fetchProfile(ctx context.Context, role entity.Role, session *entity.Session) (*entity.Profile, *entity.Notification) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		start := time.Now()
		profile, err := m.backend.QueryProfileByIdentity(ctx, role, session.Identity.ID)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			m.metrics.ObserveProfileFetch(ProfileError, elapsed)
			lastErr = err
		case profile == nil:
			m.metrics.ObserveProfileFetch(ProfileNotFound, elapsed)
			lastErr = nil
		default:
			m.metrics.ObserveProfileFetch(ProfileFound, elapsed)
			return profile, nil
		}

		if attempt >= m.opts.ProfileFetchRetries {
			break
		}
		if err := sleepCtx(ctx, m.opts.ProfileFetchBackoff*time.Duration(attempt+1)); err != nil {
			lastErr = err
			break
		}
	}

	fields := logrus.Fields{"identity_id": session.Identity.ID, "role": role}
	if lastErr != nil {
		m.log.WithFields(fields).Warnf("Failed to fetch profile: %+v", lastErr)
		note := profileFetchError(lastErr)
		return nil, &note
	}
	m.log.WithFields(fields).Warn("Profile not found")
	note := profileNotFound()
	return nil, &note
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// publish applies a result unless a later trigger already published.
// Notes are emitted only for accepted results.
func (m *Manager) publish(seq uint64, trigger string, session *entity.Session, view *entity.UserView, notes []entity.Notification) bool {
	m.mu.Lock()
	if seq < m.published || (trigger == triggerEvent && (m.loggingOut > 0 || seq <= m.eventFloor)) {
		m.mu.Unlock()
		m.metrics.ObserveDiscardedPublication(trigger)
		m.log.WithFields(logrus.Fields{
			"trigger":   trigger,
			"seq":       seq,
			"published": m.published,
		}).Debug("Discarded superseded session result")
		return false
	}
	m.published = seq
	m.session = session
	m.user = view
	m.loading = false
	m.mu.Unlock()

	m.emit(notes...)
	m.broadcast()
	return true
}

func (m *Manager) emit(notes ...entity.Notification) {
	if m.notifier == nil || len(notes) == 0 {
		return
	}
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	for _, n := range notes {
		m.notifier.Notify(n)
	}
}

// broadcast hands listeners the state current at delivery time, so a delayed
// delivery never shows an older snapshot after a newer one.
func (m *Manager) broadcast() {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.listenerMu.Lock()
	listeners := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.listenerMu.Unlock()
	if len(listeners) == 0 {
		return
	}

	snapshot := m.Snapshot()
	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (m *Manager) nextSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

func (m *Manager) begin() {
	m.mu.Lock()
	m.inflight++
	m.mu.Unlock()
}

func (m *Manager) end() {
	m.mu.Lock()
	m.inflight--
	m.mu.Unlock()
	m.broadcast()
}

