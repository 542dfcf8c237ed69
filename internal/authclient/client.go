// Package authclient adapts the auth and profile usecases to the session.Backend
// capability set used by a single client process.
package authclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/service"
	"go-medical-booking/internal/session"
	"go-medical-booking/internal/usecase"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrNoSession = errors.New("no active session")

const eventTimeout = 10 * time.Second

// Client holds at most one session for its client id. The persisted copy in the
// ClientSessionStore is only a hint: it is re-validated before use.
type Client struct {
	clientID string
	auth     usecase.AuthUsecase
	profiles usecase.ProfileUsecase
	store    service.ClientSessionStore
	log      *logrus.Logger

	mu      sync.Mutex
	current *entity.Session
	loaded  bool

	listenerMu   sync.Mutex
	listeners    map[int]func(session.ChangeEvent)
	nextListener int

	// held while an event is checked against the current session and delivered,
	// and while InvalidateSession drops the session
	eventMu sync.Mutex

	queueMu sync.Mutex
	queue   []entity.SessionEvent
	wake    chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	busUnsubscribe func()
}

var _ session.Backend = (*Client)(nil)

func New(
	ctx context.Context,
	clientID string,
	auth usecase.AuthUsecase,
	profiles usecase.ProfileUsecase,
	store service.ClientSessionStore,
	bus service.SessionEventBus,
	log *logrus.Logger,
) (*Client, error) {
	workerCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		clientID:  clientID,
		auth:      auth,
		profiles:  profiles,
		store:     store,
		log:       log,
		listeners: make(map[int]func(session.ChangeEvent)),
		wake:      make(chan struct{}, 1),
		ctx:       workerCtx,
		cancel:    cancel,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go c.processEvents()

	unsubscribe, err := bus.Subscribe(ctx, c.handleBusEvent)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.busUnsubscribe = unsubscribe

	return c, nil
}

// Close stops receiving session events and waits for the event worker to exit.
// Events still queued are dropped.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.busUnsubscribe != nil {
			c.busUnsubscribe()
		}
		c.cancel()
		close(c.stop)
		<-c.done
	})
}

func (c *Client) VerifyCredentials(ctx context.Context, email, password string) (*entity.Session, error) {
	s, err := c.auth.SignIn(c.withOrigin(ctx), &dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	c.replace(ctx, s)
	return s, nil
}

func (c *Client) CreateIdentity(ctx context.Context, email, password string, metadata entity.JSON) (*entity.Session, error) {
	req := &dto.SignUpRequest{
		Email:          email,
		Password:       password,
		FullName:       metadata.String(entity.MetadataFullName),
		Role:           metadata.String(entity.MetadataRole),
		Specialization: metadata.String(entity.MetadataSpecialization),
	}

	_, s, err := c.auth.SignUp(c.withOrigin(ctx), req)
	if err != nil {
		return nil, err
	}
	if s != nil {
		c.replace(ctx, s)
	}
	return s, nil
}

// InvalidateSession always drops the local session; the server error, if any, is returned
func (c *Client) InvalidateSession(ctx context.Context) error {
	c.eventMu.Lock()
	c.mu.Lock()
	s := c.current
	c.current = nil
	c.loaded = true
	c.mu.Unlock()
	c.eventMu.Unlock()

	if err := c.store.Clear(ctx, c.clientID); err != nil {
		c.log.Warnf("Failed to clear client session: %+v", err)
	}
	if s == nil {
		return nil
	}

	return c.auth.SignOut(c.withOrigin(ctx), s.AccessToken)
}

// GetCurrentSession validates the held session, refreshing an expired access token.
// It returns (nil, nil) when no usable session remains.
func (c *Client) GetCurrentSession(ctx context.Context) (*entity.Session, error) {
	s, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}

	return c.revalidate(ctx, s)
}

func (c *Client) OnSessionChange(fn func(session.ChangeEvent)) func() {
	c.listenerMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenerMu.Lock()
			delete(c.listeners, id)
			c.listenerMu.Unlock()
		})
	}
}

func (c *Client) QueryProfileByIdentity(ctx context.Context, role entity.Role, identityID uuid.UUID) (*entity.Profile, error) {
	profile, err := c.profiles.GetProfile(ctx, role, identityID)
	if errors.Is(err, usecase.ErrProfileNotFound) {
		return nil, nil
	}
	return profile, err
}

func (c *Client) UpdateProfile(ctx context.Context, role entity.Role, identityID uuid.UUID, fields entity.ProfileFields) (*entity.Profile, error) {
	return c.profiles.UpdateProfile(c.withOrigin(ctx), role, identityID, fields)
}

// ListDoctors lists doctor profiles, filtered by approval when approved is non-nil
func (c *Client) ListDoctors(ctx context.Context, approved *bool) ([]entity.DoctorProfile, error) {
	return c.profiles.ListDoctors(ctx, approved)
}

// ApproveDoctor approves a doctor on behalf of the signed-in user
func (c *Client) ApproveDoctor(ctx context.Context, doctorID uuid.UUID) (*entity.Profile, error) {
	actor, err := c.actor()
	if err != nil {
		return nil, err
	}
	return c.profiles.ApproveDoctor(c.withOrigin(ctx), actor, doctorID)
}

// RejectDoctor rejects a doctor on behalf of the signed-in user
func (c *Client) RejectDoctor(ctx context.Context, doctorID uuid.UUID) (*entity.Profile, error) {
	actor, err := c.actor()
	if err != nil {
		return nil, err
	}
	return c.profiles.RejectDoctor(c.withOrigin(ctx), actor, doctorID)
}

// handleBusEvent reacts to changes made elsewhere to the identity of the held session.
// Changes this client made itself are ignored; they are reported by the call that made them.
// It only filters and queues, so the bus delivery goroutine never waits on the auth service.
func (c *Client) handleBusEvent(event entity.SessionEvent) {
	if event.Origin != "" && event.Origin == c.clientID {
		return
	}
	if event.Type != entity.SessionEventSignedOut && event.Type != entity.SessionEventUserUpdated {
		return
	}
	if !c.holds(event.IdentityID) {
		return
	}

	c.queueMu.Lock()
	c.queue = append(c.queue, event)
	c.queueMu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// processEvents applies queued events one at a time, in arrival order
func (c *Client) processEvents() {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		case <-c.wake:
		}

		for {
			event, ok := c.dequeue()
			if !ok {
				break
			}
			select {
			case <-c.stop:
				return
			default:
			}
			c.applyEvent(event)
		}
	}
}

func (c *Client) dequeue() (entity.SessionEvent, bool) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if len(c.queue) == 0 {
		return entity.SessionEvent{}, false
	}
	event := c.queue[0]
	c.queue = c.queue[1:]
	return event, true
}

func (c *Client) applyEvent(event entity.SessionEvent) {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s == nil || s.Identity.ID != event.IdentityID {
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, eventTimeout)
	defer cancel()

	validated, err := c.revalidate(ctx, s)
	if err != nil {
		c.log.WithField("event", event.Type).Warnf("Failed to revalidate session: %+v", err)
		return
	}

	// The held session may have been dropped or replaced while revalidating.
	// Only report what still describes it.
	c.eventMu.Lock()
	defer c.eventMu.Unlock()

	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	switch {
	case validated == nil:
		if current != nil {
			return
		}
		c.notify(session.ChangeEvent{Type: entity.SessionEventSignedOut})
	case event.Type == entity.SessionEventUserUpdated:
		if current == nil || current.AccessToken != validated.AccessToken {
			c.log.WithField("event", event.Type).Debug("Dropped event for a superseded session")
			return
		}
		c.notify(session.ChangeEvent{Type: entity.SessionEventUserUpdated, Session: validated})
	}
}

func (c *Client) holds(identityID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.Identity.ID == identityID
}

// revalidate checks s against the auth service. Rejected sessions are dropped and
// reported as (nil, nil), as are sessions replaced or dropped by another call in the
// meantime. Infrastructure errors are returned unchanged.
func (c *Client) revalidate(ctx context.Context, s *entity.Session) (*entity.Session, error) {
	identity, err := c.auth.GetSession(ctx, s.AccessToken)
	if err == nil {
		fresh := *s
		fresh.Identity = *identity
		if !c.swap(ctx, s, &fresh) {
			return nil, nil
		}
		return &fresh, nil
	}

	if errors.Is(err, usecase.ErrInvalidToken) {
		refreshed, refreshErr := c.auth.RefreshSession(c.withOrigin(ctx), s.RefreshToken)
		if refreshErr == nil {
			if !c.swap(ctx, s, refreshed) {
				// nobody holds the refreshed pair
				if err := c.auth.SignOut(c.withOrigin(ctx), refreshed.AccessToken); err != nil && !usecase.IsAuthError(err) {
					c.log.Warnf("Failed to revoke superseded session: %+v", err)
				}
				return nil, nil
			}
			return refreshed, nil
		}
		err = refreshErr
	}

	if usecase.IsAuthError(err) {
		c.swap(ctx, s, nil)
		return nil, nil
	}
	return nil, err
}

func (c *Client) load(ctx context.Context) (*entity.Session, error) {
	c.mu.Lock()
	if c.loaded {
		s := c.current
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	stored, err := c.store.Load(ctx, c.clientID)
	if err != nil {
		c.log.Warnf("Failed to load client session: %+v", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.current = stored
		c.loaded = true
	}
	return c.current, nil
}

// replace installs s as the held session, revoking a different previous one
func (c *Client) replace(ctx context.Context, s *entity.Session) {
	c.mu.Lock()
	prev := c.current
	c.current = s
	c.loaded = true
	c.mu.Unlock()

	c.persist(ctx, s)

	if prev != nil && prev.AccessToken != s.AccessToken {
		if err := c.auth.SignOut(c.withOrigin(ctx), prev.AccessToken); err != nil && !usecase.IsAuthError(err) {
			c.log.Warnf("Failed to revoke previous session: %+v", err)
		}
	}
}

// swap replaces expected with next, unless another call already changed the held session.
// It reports whether the replacement was made.
func (c *Client) swap(ctx context.Context, expected, next *entity.Session) bool {
	c.mu.Lock()
	if c.current == nil || c.current.AccessToken != expected.AccessToken {
		c.mu.Unlock()
		return false
	}
	c.current = next
	c.mu.Unlock()

	c.persist(ctx, next)
	return true
}

func (c *Client) persist(ctx context.Context, s *entity.Session) {
	var err error
	if s == nil {
		err = c.store.Clear(ctx, c.clientID)
	} else {
		err = c.store.Save(ctx, c.clientID, s)
	}
	if err != nil {
		c.log.Warnf("Failed to persist client session: %+v", err)
	}
}

func (c *Client) notify(event session.ChangeEvent) {
	c.listenerMu.Lock()
	listeners := make([]func(session.ChangeEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func (c *Client) actor() (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return uuid.Nil, ErrNoSession
	}
	return c.current.Identity.ID, nil
}

func (c *Client) withOrigin(ctx context.Context) context.Context {
	return usecase.ContextWithClientID(ctx, c.clientID)
}
