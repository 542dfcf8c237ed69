package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func nullLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func TestRedisTokenStore(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisTokenStore(client, nullLogger())
	ctx := context.Background()
	id := uuid.New()

	if err := store.Store(ctx, id, "s1", time.Minute); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ok, err := store.Exists(ctx, id, "s1"); err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if ttl := mr.TTL(sessionKey(id, "s1")); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := store.Exists(ctx, id, "s1"); ok {
		t.Error("expected the session to expire")
	}

	if err := store.Store(ctx, id, "s2", time.Hour); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := store.Delete(ctx, id, "s2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := store.Exists(ctx, id, "s2"); ok {
		t.Error("session survived Delete")
	}
}

func TestRedisTokenStoreDeleteAllScansEveryPage(t *testing.T) {
	_, client := newRedis(t)
	store := NewRedisTokenStore(client, nullLogger())
	ctx := context.Background()
	doctor, admin := uuid.New(), uuid.New()

	// more keys than a single SCAN COUNT
	const sessions = 250
	for i := 0; i < sessions; i++ {
		if err := store.Store(ctx, doctor, fmt.Sprintf("s%d", i), time.Hour); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	if err := store.Store(ctx, admin, "keep", time.Hour); err != nil {
		t.Fatalf("Store: %v", err)
	}

	deleted, err := store.DeleteAll(ctx, doctor)
	if err != nil || deleted != sessions {
		t.Fatalf("DeleteAll = %d, %v, want %d", deleted, err, sessions)
	}

	left, err := client.Keys(ctx, RedisSessionKeyPrefix+doctor.String()+":*").Result()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("%d doctor sessions survived DeleteAll", len(left))
	}
	if ok, _ := store.Exists(ctx, admin, "keep"); !ok {
		t.Error("DeleteAll removed another identity's session")
	}

	if deleted, err := store.DeleteAll(ctx, doctor); err != nil || deleted != 0 {
		t.Errorf("second DeleteAll = %d, %v", deleted, err)
	}
}

func TestRedisSessionEventBusRoundTrip(t *testing.T) {
	_, client := newRedis(t)
	bus := NewRedisSessionEventBus(client, nullLogger())
	ctx := context.Background()

	received := make(chan entity.SessionEvent, 1)
	unsubscribe, err := bus.Subscribe(ctx, func(e entity.SessionEvent) { received <- e })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsubscribe()

	sent := entity.SessionEvent{
		Type:       entity.SessionEventUserUpdated,
		IdentityID: uuid.New(),
		Origin:     "admin-portal",
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := bus.Publish(ctx, sent); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-received:
		if got.Type != sent.Type || got.IdentityID != sent.IdentityID || got.Origin != sent.Origin || !got.OccurredAt.Equal(sent.OccurredAt) {
			t.Errorf("received %+v, want %+v", got, sent)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestRedisSessionEventBusSkipsMalformedPayloads(t *testing.T) {
	_, client := newRedis(t)
	bus := NewRedisSessionEventBus(client, nullLogger())
	ctx := context.Background()

	received := make(chan entity.SessionEvent, 2)
	unsubscribe, err := bus.Subscribe(ctx, func(e entity.SessionEvent) { received <- e })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsubscribe()

	if err := client.Publish(ctx, RedisSessionEventChannel, "not json").Err(); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := bus.Publish(ctx, entity.SessionEvent{Type: entity.SessionEventSignedOut, IdentityID: uuid.New()}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-received:
		if got.Type != entity.SessionEventSignedOut {
			t.Errorf("type = %s, want %s", got.Type, entity.SessionEventSignedOut)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event after a malformed payload was not delivered")
	}
}

func TestRedisSessionEventBusUnsubscribeWaitsForHandler(t *testing.T) {
	_, client := newRedis(t)
	bus := NewRedisSessionEventBus(client, nullLogger())
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	unsubscribe, err := bus.Subscribe(ctx, func(entity.SessionEvent) {
		close(entered)
		<-release
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(ctx, entity.SessionEvent{Type: entity.SessionEventSignedOut, IdentityID: uuid.New()}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	stopped := make(chan struct{})
	go func() {
		unsubscribe()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("unsubscribe returned while the handler was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("unsubscribe did not return after the handler finished")
	}

	// a second call is a no-op
	unsubscribe()
}

func TestRedisClientSessionStore(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisClientSessionStore(client)
	ctx := context.Background()

	if s, err := store.Load(ctx, "portal"); err != nil || s != nil {
		t.Fatalf("Load on empty store = %v, %v", s, err)
	}

	saved := &entity.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		Identity: entity.Identity{
			ID:       uuid.New(),
			Email:    "doctor@example.com",
			Metadata: entity.JSON{entity.MetadataRole: "doctor"},
		},
	}
	if err := store.Save(ctx, "portal", saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists(RedisClientSessionKeyPrefix + "portal") {
		t.Fatal("expected the session under the client key")
	}

	loaded, err := store.Load(ctx, "portal")
	if err != nil || loaded == nil {
		t.Fatalf("Load = %v, %v", loaded, err)
	}
	if loaded.AccessToken != saved.AccessToken || loaded.RefreshToken != saved.RefreshToken {
		t.Errorf("tokens = %q/%q", loaded.AccessToken, loaded.RefreshToken)
	}
	if loaded.Identity.ID != saved.Identity.ID || !loaded.ExpiresAt.Equal(saved.ExpiresAt) {
		t.Errorf("loaded %+v, want %+v", loaded, saved)
	}
	if role, ok := loaded.Identity.Role(); !ok || role != entity.RoleDoctor {
		t.Errorf("role = %q, %v", role, ok)
	}

	if s, _ := store.Load(ctx, "other-client"); s != nil {
		t.Error("sessions leaked across client ids")
	}

	if err := store.Clear(ctx, "portal"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s, err := store.Load(ctx, "portal"); err != nil || s != nil {
		t.Errorf("Load after Clear = %v, %v", s, err)
	}

	mr.Set(RedisClientSessionKeyPrefix+"portal", "{broken")
	if _, err := store.Load(ctx, "portal"); err == nil {
		t.Error("expected a decode error for a corrupt entry")
	}
}
