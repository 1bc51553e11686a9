//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/goRedact/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// redisMode describes which Redis backend the compatibility suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (redis.UniversalClient, func())
}

// redisModes returns the set of Redis backends to test.
// miniredis is always available.
// Real Redis standalone is used when REDIS_ADDR is set (e.g. "127.0.0.1:6379").
// Cluster mode is used when REDIS_CLUSTER_ADDRS is set (comma-separated).
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return rdb, func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				// Flush the test DB to avoid state leaking between runs.
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: splitAddrs(addrs)})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis cluster: %v", err)
				}
				return rdb, func() { _ = rdb.Close() }
			},
		})
	}

	return modes
}

func splitAddrs(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// TestRedisCompatSessionLifecycle runs the full session lifecycle against
// every available backend: create, resolve, reference slot, artifact index,
// cascade delete.
func TestRedisCompatSessionLifecycle(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			client, cleanup := mode.setup(t)
			defer cleanup()

			ctx := context.Background()
			store := session.NewStore(client, "rs-compat", time.Hour, time.Hour)

			if _, err := store.Create(ctx, "compat-sid"); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			sess, err := store.Resolve(ctx, "compat-sid")
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if sess.SessionID != "compat-sid" {
				t.Fatalf("unexpected session ID %q", sess.SessionID)
			}

			if err := store.PutReference(ctx, "compat-sid", []byte("embedding")); err != nil {
				t.Fatalf("PutReference failed: %v", err)
			}
			blob, err := store.GetReference(ctx, "compat-sid")
			if err != nil || string(blob) != "embedding" {
				t.Fatalf("GetReference roundtrip failed: %q, %v", blob, err)
			}

			if err := store.RegisterArtifact(ctx, "compat-sid", "a1.png"); err != nil {
				t.Fatalf("RegisterArtifact failed: %v", err)
			}
			owns, err := store.OwnsArtifact(ctx, "compat-sid", "a1.png")
			if err != nil || !owns {
				t.Fatalf("OwnsArtifact failed: %v, owns=%v", err, owns)
			}

			artifacts, err := store.Delete(ctx, "compat-sid")
			if err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if len(artifacts) != 1 || artifacts[0] != "a1.png" {
				t.Fatalf("cascade reported %v, expected [a1.png]", artifacts)
			}

			if _, err := store.Resolve(ctx, "compat-sid"); !errors.Is(err, session.ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
			}
		})
	}
}

// TestRedisCompatExpiryStates verifies the expired-versus-gone distinction on
// every backend: a logically expired session reports expired while the blob is
// retained, and not-found once retention lapses.
func TestRedisCompatExpiryStates(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			client, cleanup := mode.setup(t)
			defer cleanup()

			ctx := context.Background()
			store := session.NewStore(client, "rs-expiry", 1*time.Second, time.Hour)

			if _, err := store.Create(ctx, "expiry-sid"); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			time.Sleep(1100 * time.Millisecond)

			if _, err := store.Resolve(ctx, "expiry-sid"); !errors.Is(err, session.ErrSessionExpired) {
				t.Fatalf("expected ErrSessionExpired inside retention, got %v", err)
			}
			if _, err := store.Resolve(ctx, "never-created"); !errors.Is(err, session.ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound for unknown ID, got %v", err)
			}
		})
	}
}
