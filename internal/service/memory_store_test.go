package service

import (
	"context"
	"testing"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

func TestMemoryTokenStoreExpiry(t *testing.T) {
	store := NewMemoryTokenStore().(*memoryTokenStore)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()
	id := uuid.New()

	if err := store.Store(ctx, id, "s1", time.Minute); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ok, _ := store.Exists(ctx, id, "s1"); !ok {
		t.Fatal("expected the session to exist")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := store.Exists(ctx, id, "s1"); ok {
		t.Error("expected the session to expire")
	}
}

func TestMemoryTokenStoreDeleteAll(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()
	doctor, admin := uuid.New(), uuid.New()

	for _, sid := range []string{"a", "b"} {
		if err := store.Store(ctx, doctor, sid, time.Hour); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	if err := store.Store(ctx, admin, "c", time.Hour); err != nil {
		t.Fatalf("Store: %v", err)
	}

	deleted, err := store.DeleteAll(ctx, doctor)
	if err != nil || deleted != 2 {
		t.Fatalf("DeleteAll = %d, %v", deleted, err)
	}
	if ok, _ := store.Exists(ctx, doctor, "a"); ok {
		t.Error("doctor session survived DeleteAll")
	}
	if ok, _ := store.Exists(ctx, admin, "c"); !ok {
		t.Error("DeleteAll removed another identity's session")
	}

	if err := store.Delete(ctx, admin, "c"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := store.Exists(ctx, admin, "c"); ok {
		t.Error("Delete kept the session")
	}
}

func TestMemorySessionEventBus(t *testing.T) {
	bus := NewMemorySessionEventBus()
	ctx := context.Background()

	var received []entity.SessionEvent
	unsubscribe, err := bus.Subscribe(ctx, func(e entity.SessionEvent) { received = append(received, e) })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	event := entity.SessionEvent{Type: entity.SessionEventUserUpdated, IdentityID: uuid.New(), Origin: "portal"}
	if err := bus.Publish(ctx, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(received) != 1 || received[0] != event {
		t.Fatalf("received = %+v", received)
	}

	unsubscribe()
	if err := bus.Publish(ctx, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(received) != 1 {
		t.Error("handler called after unsubscribe")
	}
}

func TestMemoryClientSessionStore(t *testing.T) {
	store := NewMemoryClientSessionStore()
	ctx := context.Background()

	if s, err := store.Load(ctx, "portal"); err != nil || s != nil {
		t.Fatalf("Load(empty) = %v, %v", s, err)
	}

	session := &entity.Session{AccessToken: "access", RefreshToken: "refresh", Identity: entity.Identity{Email: "john@x.com"}}
	if err := store.Save(ctx, "portal", session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, "portal")
	if err != nil || loaded == nil || loaded.AccessToken != "access" {
		t.Fatalf("Load = %v, %v", loaded, err)
	}
	if other, _ := store.Load(ctx, "other"); other != nil {
		t.Error("sessions are scoped per client id")
	}

	if err := store.Clear(ctx, "portal"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s, _ := store.Load(ctx, "portal"); s != nil {
		t.Error("expected Clear to remove the session")
	}
}
