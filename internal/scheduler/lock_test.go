package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/redis"
)

type fakeRedisStore struct {
	values map[string]string
	setErr error
	getErr error
	delErr error
	dels   []string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: make(map[string]string)}
}

func (f *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if _, held := f.values[key]; held {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeRedisStore) Del(_ context.Context, keys ...string) error {
	if f.delErr != nil {
		return f.delErr
	}
	for _, key := range keys {
		delete(f.values, key)
		f.dels = append(f.dels, key)
	}
	return nil
}

func (f *fakeRedisStore) LockKey(scope string) string { return "lock:" + scope }

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "weather-poll", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire = (%v, %v), want (true, nil)", ok, err)
	}
	if _, held := store.values["lock:weather-poll"]; !held {
		t.Fatal("expected lock key to be set")
	}

	ok, err = lock.Acquire(ctx, "weather-poll", time.Minute)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second acquire should fail while lock is held")
	}

	if err := lock.Release(ctx, "weather-poll"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, held := store.values["lock:weather-poll"]; held {
		t.Fatal("expected lock key to be deleted on release")
	}
}

func TestRedisLockJobsAreIndependent(t *testing.T) {
	store := newFakeRedisStore()
	lock, _ := NewRedisLock(store)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "weather-poll", time.Minute); !ok {
		t.Fatal("weather acquire failed")
	}
	ok, err := lock.Acquire(ctx, "price-poll", time.Minute)
	if err != nil || !ok {
		t.Fatalf("price acquire = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestRedisLockReleaseSkipsStolenLock(t *testing.T) {
	store := newFakeRedisStore()
	lock, _ := NewRedisLock(store)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "price-poll", time.Minute); !ok {
		t.Fatal("acquire failed")
	}
	// Lock expired and another instance took it over.
	store.values["lock:price-poll"] = "someone-else"

	if err := lock.Release(ctx, "price-poll"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["lock:price-poll"] != "someone-else" {
		t.Fatal("release must not delete a lock owned by another instance")
	}
}

func TestRedisLockReleaseToleratesExpiredKey(t *testing.T) {
	store := newFakeRedisStore()
	lock, _ := NewRedisLock(store)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "seasonal-poll", time.Minute); !ok {
		t.Fatal("acquire failed")
	}
	delete(store.values, "lock:seasonal-poll")

	if err := lock.Release(ctx, "seasonal-poll"); err != nil {
		t.Fatalf("release after expiry: %v", err)
	}
	if err := lock.Release(ctx, "seasonal-poll"); err != nil {
		t.Fatalf("repeat release: %v", err)
	}
}

func TestRedisLockRejectsNonPositiveTTL(t *testing.T) {
	lock, _ := NewRedisLock(newFakeRedisStore())
	if _, err := lock.Acquire(context.Background(), "weather-poll", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestRedisLockAcquirePropagatesBackendError(t *testing.T) {
	store := newFakeRedisStore()
	store.setErr = errors.New("connection refused")
	lock, _ := NewRedisLock(store)

	ok, err := lock.Acquire(context.Background(), "weather-poll", time.Minute)
	if ok || err == nil {
		t.Fatalf("acquire = (%v, %v), want (false, error)", ok, err)
	}
}

func TestNoopLockAlwaysAcquires(t *testing.T) {
	var lock NoopLock
	for i := 0; i < 3; i++ {
		ok, err := lock.Acquire(context.Background(), "weather-poll", time.Minute)
		if err != nil || !ok {
			t.Fatalf("acquire %d = (%v, %v), want (true, nil)", i, ok, err)
		}
	}
	if err := lock.Release(context.Background(), "weather-poll"); err != nil {
		t.Fatalf("release: %v", err)
	}
}
