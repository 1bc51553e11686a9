//go:build integration
// +build integration

package test

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// Concurrent registrations patch the session blob in place under one Lua
// script, so no increment may be lost even when every worker races on the
// same session.
func TestArtifactRegistrationRaceLosesNoIncrements(t *testing.T) {
	ctx := context.Background()
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	if _, err := store.Create(ctx, "sid-race"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		artifactID := fmt.Sprintf("race-%d.png", i)
		go func(id string) {
			defer wg.Done()
			<-start
			results <- store.RegisterArtifact(ctx, "sid-race", id)
		}(artifactID)
	}

	close(start)
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatalf("RegisterArtifact failed: %v", err)
		}
	}

	sess, err := store.Info(ctx, "sid-race")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if sess.ArtifactCount != workers {
		t.Fatalf("expected artifact count %d, got %d", workers, sess.ArtifactCount)
	}

	ids, err := store.ListArtifacts(ctx, "sid-race")
	if err != nil {
		t.Fatalf("ListArtifacts failed: %v", err)
	}
	if len(ids) != workers {
		t.Fatalf("expected %d indexed artifacts, got %d", workers, len(ids))
	}
}
