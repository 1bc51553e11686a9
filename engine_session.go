package goRedact

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/MrEthical07/goRedact/internal"
	"github.com/MrEthical07/goRedact/internal/artifact"
	"github.com/MrEthical07/goRedact/session"
)

// CreateSession mints an opaque session ID and persists a fresh session with
// the configured sliding TTL.
//
// CreateSession may return an error when the Redis backend is unavailable.
// CreateSession does not mutate shared global state beyond the new session keys and can be used concurrently.
func (e *Engine) CreateSession(ctx context.Context) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	id, err := internal.NewSessionID()
	if err != nil {
		return "", err
	}
	sessionID := id.String()

	if _, err := e.sessionStore.Create(ctx, sessionID); err != nil {
		e.emitAudit(ctx, "session.create", sessionID, "", false, err, nil)
		return "", err
	}

	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, "session.create", sessionID, "", true, nil, nil)
	return sessionID, nil
}

// SessionInfo returns a read-only snapshot of a session without touching its
// TTL or last-accessed time.
//
// SessionInfo may return [ErrSessionNotFound] or [ErrSessionExpired].
func (e *Engine) SessionInfo(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	sess, err := e.sessionStore.Info(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionExpired) {
			e.metricInc(MetricSessionExpired)
		}
		return nil, err
	}

	hasRef := true
	if _, err := e.sessionStore.GetReference(ctx, sessionID); err != nil {
		if !errors.Is(err, session.ErrReferenceNotFound) {
			return nil, err
		}
		hasRef = false
	}

	return &SessionInfo{
		SessionID:     sess.SessionID,
		CreatedAt:     time.Unix(sess.CreatedAt, 0),
		LastAccessed:  time.Unix(sess.LastAccessed, 0),
		ArtifactCount: sess.ArtifactCount,
		HasReference:  hasRef,
		TTL:           e.config.Session.TTL,
	}, nil
}

// DeleteSession removes a session, its reference embedding, its artifact
// index, and every artifact file the session produced. Deletion is
// idempotent on the file side; the Redis side reports an unknown session
// with [ErrSessionNotFound].
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	artifactIDs, err := e.sessionStore.Delete(ctx, sessionID)

	// Remove files for whatever the index held, even when the session blob
	// itself was already gone.
	for range artifactIDs {
		e.metricInc(MetricArtifactDeleted)
	}
	_ = e.artifacts.DeleteAll(sessionID)

	if err != nil {
		e.emitAudit(ctx, "session.delete", sessionID, "", false, err, nil)
		return err
	}

	e.metricInc(MetricSessionDeleted)
	e.emitAudit(ctx, "session.delete", sessionID, "", true, nil, nil)
	return nil
}

// ListArtifacts returns the sorted artifact IDs owned by a session.
func (e *Engine) ListArtifacts(ctx context.Context, sessionID string) ([]string, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if _, err := e.sessionStore.Resolve(ctx, sessionID); err != nil {
		return nil, err
	}
	ids, err := e.sessionStore.ListArtifacts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// OpenArtifact streams a rendered artifact after verifying the session owns
// it. The caller must close the returned reader.
func (e *Engine) OpenArtifact(ctx context.Context, sessionID, artifactID string) (io.ReadCloser, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if _, err := e.sessionStore.Resolve(ctx, sessionID); err != nil {
		return nil, err
	}
	owns, err := e.sessionStore.OwnsArtifact(ctx, sessionID, artifactID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, ErrArtifactDenied
	}
	r, err := e.artifacts.Open(sessionID, artifactID)
	if errors.Is(err, artifact.ErrNotFound) {
		return nil, ErrArtifactNotFound
	}
	return r, err
}

// DeleteArtifact removes one artifact from the session's index and disk.
// A session cannot delete another session's artifact.
func (e *Engine) DeleteArtifact(ctx context.Context, sessionID, artifactID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if _, err := e.sessionStore.Resolve(ctx, sessionID); err != nil {
		return err
	}
	if err := e.sessionStore.DeleteArtifact(ctx, sessionID, artifactID); err != nil {
		e.emitAudit(ctx, "artifact.delete", sessionID, artifactID, false, err, nil)
		return err
	}
	if err := e.artifacts.Delete(sessionID, artifactID); err != nil {
		return err
	}

	e.metricInc(MetricArtifactDeleted)
	e.emitAudit(ctx, "artifact.delete", sessionID, artifactID, true, nil, nil)
	return nil
}

// ArtifactToken issues a signed access token for one artifact, letting the
// surrounding service hand out download links without re-resolving the
// session. Fails with [ErrTokensDisabled] unless [Config.Token] is enabled.
func (e *Engine) ArtifactToken(ctx context.Context, sessionID, artifactID string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if e.tokens == nil {
		return "", ErrTokensDisabled
	}
	if _, err := e.sessionStore.Resolve(ctx, sessionID); err != nil {
		return "", err
	}
	owns, err := e.sessionStore.OwnsArtifact(ctx, sessionID, artifactID)
	if err != nil {
		return "", err
	}
	if !owns {
		return "", ErrArtifactDenied
	}

	tok, err := e.tokens.CreateArtifactToken(sessionID, artifactID)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricTokenIssued)
	return tok, nil
}

// VerifyArtifactToken checks a token against the session and artifact it
// claims to grant. Signature, expiry, and scope failures are state errors.
func (e *Engine) VerifyArtifactToken(sessionID, artifactID, tok string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.tokens == nil {
		return ErrTokensDisabled
	}
	if err := e.tokens.VerifyArtifactAccess(tok, sessionID, artifactID); err != nil {
		e.metricInc(MetricTokenRejected)
		return err
	}
	return nil
}
