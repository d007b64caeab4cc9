package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memoryLockStore struct {
	values map[string]string
	ttls   map[string]time.Duration
	delErr error
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, taken := m.values[key]; taken {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryLockStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	if m.delErr != nil {
		return false, m.delErr
	}
	if m.values[key] != expected {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	store := newMemoryLockStore()
	first, err := NewRedisLock(store, "ed:lock:maintenance:test", 0)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	second, _ := NewRedisLock(store, "ed:lock:maintenance:test", time.Minute)
	ctx := context.Background()

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: %v %v", ok, err)
	}
	if store.ttls["ed:lock:maintenance:test"] != fallbackLockTTL {
		t.Fatalf("expected fallback ttl, got %v", store.ttls["ed:lock:maintenance:test"])
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatalf("second holder must not acquire")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("non-holder release: %v", err)
	}
	if _, present := store.values["ed:lock:maintenance:test"]; !present {
		t.Fatalf("non-holder release removed the key")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatalf("expected lock to be free after release")
	}
}

func TestRedisLockLeavesForeignToken(t *testing.T) {
	store := newMemoryLockStore()
	lock, _ := NewRedisLock(store, "k", time.Minute)
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatalf("acquire failed")
	}
	store.values["k"] = "someone-else"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["k"] != "someone-else" {
		t.Fatalf("foreign token must survive release")
	}
}

func TestRedisLockReleaseErrors(t *testing.T) {
	store := newMemoryLockStore()
	lock, _ := NewRedisLock(store, "k", time.Minute)
	ctx := context.Background()
	_, _ = lock.Acquire(ctx)
	store.delErr = errors.New("timeout")
	if err := lock.Release(ctx); err == nil {
		t.Fatalf("expected release error")
	}

	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatalf("expected missing store error")
	}
	if _, err := NewRedisLock(store, "", 0); err == nil {
		t.Fatalf("expected missing key error")
	}
}
