package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tesla-electricidad/intake-engine/internal/intent"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, time.Hour)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	sess := New()
	sess.Stage = StageSpecification
	sess.Intent = intent.ServiceCertification
	sess.Slots.AreaSqMeters = 120

	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if loaded.Stage != StageSpecification {
		t.Errorf("stage not persisted, got %s", loaded.Stage)
	}
	if loaded.Intent != intent.ServiceCertification {
		t.Errorf("intent not persisted, got %s", loaded.Intent)
	}
	if loaded.Slots.AreaSqMeters != 120 {
		t.Errorf("slots not persisted, got %v", loaded.Slots.AreaSqMeters)
	}
}

func TestRedisStoreMissingSession(t *testing.T) {
	store := newTestRedisStore(t)
	if _, err := store.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New()
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	loaded.Stage = StageClosed

	again, _ := store.Get(ctx, sess.ID)
	if again.Stage == StageClosed {
		t.Fatal("store handed out a shared pointer; mutation leaked")
	}
}

func TestAppendTurnBoundsHistory(t *testing.T) {
	sess := New()
	for i := 0; i < 30; i++ {
		sess.AppendTurn("hola", "respuesta", 20)
	}
	if len(sess.History) != 20 {
		t.Fatalf("expected history capped at 20, got %d", len(sess.History))
	}
}

func TestRestartPreservesID(t *testing.T) {
	sess := New()
	id := sess.ID
	sess.Stage = StageScheduling
	sess.Intent = intent.ServiceGrounding
	sess.Slots.Name = "Carlos"
	sess.LeadID = "lead-1"

	sess.Restart()

	if sess.ID != id {
		t.Error("restart must preserve the session id")
	}
	if sess.Stage != StageGreeting {
		t.Errorf("expected greeting after restart, got %s", sess.Stage)
	}
	if sess.Intent != intent.ServiceUnknown || sess.Slots.Name != "" || sess.LeadID != "" {
		t.Error("restart must clear intent, slots and lead link")
	}
}
