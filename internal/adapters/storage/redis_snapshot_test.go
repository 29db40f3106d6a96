package storage

import (
	"context"
	"slices"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisSnapshotStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisSnapshotStore(client, "")
	if s.Key != DefaultRedisKey {
		t.Fatalf("Key = %q, want %q", s.Key, DefaultRedisKey)
	}

	exerciseSnapshotStore(t, s)
}

func TestRedisSnapshotStoreUsesList(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisSnapshotStore(client, "inv:test")
	if err := s.Replace(context.Background(), []string{"A,q,1,carton", "B,q,2,loose"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := mr.List("inv:test")
	if err != nil {
		t.Fatalf("miniredis list: %v", err)
	}
	if !slices.Equal(got, []string{"A,q,1,carton", "B,q,2,loose"}) {
		t.Fatalf("list = %q", got)
	}
}

func TestRedisSnapshotStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	s := NewRedisSnapshotStore(client, "")
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatalf("expected load error with server down")
	}
	if err := s.Replace(context.Background(), []string{"A,q,1,carton"}); err == nil {
		t.Fatalf("expected replace error with server down")
	}
}
