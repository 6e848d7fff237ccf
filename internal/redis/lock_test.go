package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSenderLocker(client, 5*time.Second), mr
}

func TestWithSenderLockRunsFn(t *testing.T) {
	locker, _ := newTestLocker(t)

	ran := false
	err := locker.WithSenderLock(context.Background(), "5511999999999", func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithSenderLock: %v", err)
	}
	if !ran {
		t.Fatal("fn did not run")
	}
}

func TestWithSenderLockContention(t *testing.T) {
	locker, _ := newTestLocker(t)

	err := locker.WithSenderLock(context.Background(), "5511999999999", func(ctx context.Context) error {
		// Same sender while held: must be rejected, not queued.
		inner := locker.WithSenderLock(ctx, "5511999999999", func(ctx context.Context) error {
			t.Fatal("nested fn must not run")
			return nil
		})
		if !errors.Is(inner, ErrLockNotAcquired) {
			t.Errorf("inner err = %v, want ErrLockNotAcquired", inner)
		}

		// A different sender is independent.
		other := locker.WithSenderLock(ctx, "5511888888888", func(ctx context.Context) error {
			return nil
		})
		if other != nil {
			t.Errorf("other sender err = %v", other)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithSenderLock: %v", err)
	}
}

func TestWithSenderLockReleasedAfterFn(t *testing.T) {
	locker, mr := newTestLocker(t)

	if err := locker.WithSenderLock(context.Background(), "5511999999999", func(ctx context.Context) error {
		if !mr.Exists("lock:sender:5511999999999") {
			t.Error("lock key missing while held")
		}
		return nil
	}); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if mr.Exists("lock:sender:5511999999999") {
		t.Error("lock key not released")
	}

	if err := locker.WithSenderLock(context.Background(), "5511999999999", func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
}

func TestWithSenderLockPropagatesFnError(t *testing.T) {
	locker, _ := newTestLocker(t)

	want := errors.New("turn failed")
	err := locker.WithSenderLock(context.Background(), "5511999999999", func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
