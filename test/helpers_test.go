//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	"github.com/MrEthical07/goRedact/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newIntegrationStore(t *testing.T) (*session.Store, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewStore(rdb, "rs", time.Hour, time.Hour)

	return store, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}
