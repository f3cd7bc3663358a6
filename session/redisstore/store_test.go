package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/davengard/ward/session"
)

func newTestStore(t *testing.T, cfg Config) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return New(rdb, cfg), mr
}

func TestPrimaryRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, Config{})
	h := store.Handle("sid-1")
	ctx := context.Background()

	if _, ok, err := h.Current(ctx); err != nil || ok {
		t.Fatalf("fresh handle: ok=%v err=%v", ok, err)
	}

	want := session.Claims{AccountID: 42, Persistent: true}
	if err := h.EstablishPrimary(ctx, want); err != nil {
		t.Fatalf("establish: %v", err)
	}
	got, ok, err := h.Current(ctx)
	if err != nil || !ok {
		t.Fatalf("current: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("claims = %+v, want %+v", got, want)
	}

	if err := h.ClearPrimary(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := h.Current(ctx); ok {
		t.Fatal("claims survived clear")
	}
	// Clearing again is a no-op.
	if err := h.ClearPrimary(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestPersistentLifetimeClass(t *testing.T) {
	store, mr := newTestStore(t, Config{PrimaryTTL: time.Hour, PersistentTTL: 48 * time.Hour})
	ctx := context.Background()

	short := store.Handle("short")
	long := store.Handle("long")
	_ = short.EstablishPrimary(ctx, session.Claims{AccountID: 1})
	_ = long.EstablishPrimary(ctx, session.Claims{AccountID: 2, Persistent: true})

	mr.FastForward(2 * time.Hour)

	if _, ok, _ := short.Current(ctx); ok {
		t.Fatal("non-persistent session survived its TTL")
	}
	if _, ok, _ := long.Current(ctx); !ok {
		t.Fatal("persistent session expired inside its TTL")
	}
}

func TestPendingSchemeIsIndependent(t *testing.T) {
	store, mr := newTestStore(t, Config{PendingTTL: 5 * time.Minute})
	h := store.Handle("sid-1")
	ctx := context.Background()

	if err := h.EstablishPending(ctx, 7); err != nil {
		t.Fatalf("establish pending: %v", err)
	}
	// The pending scheme never surfaces as primary claims.
	if _, ok, _ := h.Current(ctx); ok {
		t.Fatal("pending session visible as primary claims")
	}
	id, ok, err := h.PendingAccountID(ctx)
	if err != nil || !ok || id != 7 {
		t.Fatalf("pending: id=%d ok=%v err=%v", id, ok, err)
	}

	// Clearing one scheme leaves the other alone.
	_ = h.EstablishPrimary(ctx, session.Claims{AccountID: 7})
	if err := h.ClearPending(ctx); err != nil {
		t.Fatalf("clear pending: %v", err)
	}
	if _, ok, _ := h.Current(ctx); !ok {
		t.Fatal("primary claims lost when clearing pending")
	}

	_ = h.EstablishPending(ctx, 7)
	mr.FastForward(10 * time.Minute)
	if _, ok, _ := h.PendingAccountID(ctx); ok {
		t.Fatal("pending session survived its TTL")
	}
}

func TestHandlesAreNamespaced(t *testing.T) {
	store, _ := newTestStore(t, Config{Prefix: "t1:"})
	ctx := context.Background()

	a := store.Handle("sid-a")
	b := store.Handle("sid-b")
	_ = a.EstablishPrimary(ctx, session.Claims{AccountID: 1})

	if _, ok, _ := b.Current(ctx); ok {
		t.Fatal("claims leaked across session ids")
	}
}

func TestCorruptRecordTreatedAsAbsent(t *testing.T) {
	store, mr := newTestStore(t, Config{})
	h := store.Handle("sid-1")
	ctx := context.Background()

	mr.Set("wsp:sid-1", "not-a-record")
	if _, ok, err := h.Current(ctx); err != nil || ok {
		t.Fatalf("corrupt primary: ok=%v err=%v", ok, err)
	}
	if mr.Exists("wsp:sid-1") {
		t.Fatal("corrupt record not dropped")
	}

	mr.Set("wpd:sid-1", "xx")
	if _, ok, err := h.PendingAccountID(ctx); err != nil || ok {
		t.Fatalf("corrupt pending: ok=%v err=%v", ok, err)
	}
}

func TestBackendFailureIsErrBackend(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := New(rdb, Config{})
	mr.Close()

	h := store.Handle("sid-1")
	_, _, err = h.Current(context.Background())
	if !errors.Is(err, session.ErrBackend) {
		t.Fatalf("err = %v, want session.ErrBackend", err)
	}
}
