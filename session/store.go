package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is an exported constant or variable used by the redaction engine.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is an exported constant or variable used by the redaction engine.
var ErrSessionExpired = errors.New("session expired")

// ErrSessionCorrupt is returned when a stored session blob cannot be decoded.
var ErrSessionCorrupt = errors.New("session blob corrupt")

// ErrReferenceNotFound is an exported constant or variable used by the redaction engine.
var ErrReferenceNotFound = errors.New("reference embedding not found")

// ErrArtifactDenied is an exported constant or variable used by the redaction engine.
var ErrArtifactDenied = errors.New("artifact not owned by session")

// ErrRedisUnavailable is an exported constant or variable used by the redaction engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	referenceKeyPrefix = "rrf:"
	artifactKeyPrefix  = "rar:"
)

const deleteCascadeScript = `
local existed = redis.call("EXISTS", KEYS[1])
local members = redis.call("SMEMBERS", KEYS[3])
redis.call("DEL", KEYS[1], KEYS[2], KEYS[3])
return {existed, members}
`

var deleteCascadeLua = redis.NewScript(deleteCascadeScript)

const (
	registerStatusNotFound int64 = 0
	registerStatusExpired  int64 = 1
	registerStatusCorrupt  int64 = 2
	registerStatusOK       int64 = 3
)

// registerArtifactScript patches the v2 ArtifactCount field (bytes 18-21,
// big-endian) in place and indexes the artifact ID, all under one atomic
// script so concurrent registrations cannot lose an increment. v1 blobs are
// migrated forward by appending the counter.
const registerArtifactScript = `
local session_key = KEYS[1]
local art_key = KEYS[2]
local artifact_id = ARGV[1]

local data = redis.call("GET", session_key)
if not data then
  return {0}
end

local version = string.byte(data, 1)
if not version or version < 1 or version > 2 or #data < 17 then
  return {2}
end

local count = 0
if version == 2 then
  if #data < 21 then
    return {2}
  end
  local b1 = string.byte(data, 18)
  local b2 = string.byte(data, 19)
  local b3 = string.byte(data, 20)
  local b4 = string.byte(data, 21)
  count = ((b1 * 256 + b2) * 256 + b3) * 256 + b4
end
count = count + 1

local c4 = count % 256
local rest = (count - c4) / 256
local c3 = rest % 256
rest = (rest - c3) / 256
local c2 = rest % 256
rest = (rest - c2) / 256
local c1 = rest % 256

local patched
if version == 2 then
  patched = string.sub(data, 1, 17) .. string.char(c1, c2, c3, c4)
else
  patched = string.char(2) .. string.sub(data, 2, 17) .. string.char(c1, c2, c3, c4)
end

local ttl = redis.call("PTTL", session_key)
if ttl <= 0 then
  return {1}
end

redis.call("SET", session_key, patched, "PX", ttl)
redis.call("SADD", art_key, artifact_id)
redis.call("PEXPIRE", art_key, ttl)
return {3, count}
`

var registerArtifactLua = redis.NewScript(registerArtifactScript)

// Reaped describes one session reclaimed by [Store.Sweep]: the session ID and
// the artifact IDs whose backing files the caller must now remove.
type Reaped struct {
	SessionID   string
	ArtifactIDs []string
}

// Store is a Redis-backed session store that handles persistence, sliding
// expiration, the per-session reference-embedding slot, and the per-session
// artifact index.
type Store struct {
	redis     redis.UniversalClient
	prefix    string
	ttl       time.Duration
	retention time.Duration
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace, ttl the sliding inactivity window, and
// retention how long past expiry the blob is kept so Resolve can report
// "expired" instead of "not found". A retention of zero defaults to ttl.
func NewStore(redis redis.UniversalClient, prefix string, ttl, retention time.Duration) *Store {
	if retention <= 0 {
		retention = ttl
	}
	return &Store{
		redis:     redis,
		prefix:    prefix,
		ttl:       ttl,
		retention: retention,
	}
}

// TTL returns the configured sliding inactivity window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

func (s *Store) referenceKey(sessionID string) string {
	return referenceKeyPrefix + sessionID
}

func (s *Store) artifactKey(sessionID string) string {
	return artifactKeyPrefix + sessionID
}

func (s *Store) physicalTTL() time.Duration {
	return s.ttl + s.retention
}

// Create persists a new session under the given opaque ID.
//
//	Performance: 1 Redis SET.
func (s *Store) Create(ctx context.Context, sessionID string) (*Session, error) {
	now := time.Now().Unix()
	sess := &Session{
		SessionID:     sessionID,
		CreatedAt:     now,
		LastAccessed:  now,
		SchemaVersion: CurrentSchemaVersion,
	}

	data, err := Encode(sess)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, s.key(sessionID), data, s.physicalTTL()).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return sess, nil
}

// Resolve validates a session and slides its expiry: a successful resolution
// updates last-accessed and renews the session, reference, and artifact keys.
// An unknown ID fails with [ErrSessionNotFound], a logically expired one with
// [ErrSessionExpired].
//
//	Performance: 1 GET + 1 pipelined renewal.
func (s *Store) Resolve(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.LastAccessed = time.Now().Unix()
	sess.SchemaVersion = CurrentSchemaVersion
	data, err := Encode(sess)
	if err != nil {
		return nil, err
	}

	physical := s.physicalTTL()
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sessionID), data, physical)
		// EXPIRE on a missing key is a no-op, so absent reference/artifact
		// state costs nothing here.
		pipe.Expire(ctx, s.referenceKey(sessionID), physical)
		pipe.Expire(ctx, s.artifactKey(sessionID), physical)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return sess, nil
}

// Info fetches a session without mutating TTL or last-accessed.
func (s *Store) Info(ctx context.Context, sessionID string) (*Session, error) {
	return s.load(ctx, sessionID)
}

func (s *Store) load(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	sess.SessionID = sessionID

	if time.Since(time.Unix(sess.LastAccessed, 0)) > s.ttl {
		return nil, ErrSessionExpired
	}

	return sess, nil
}

// Delete removes a session and cascades its reference embedding and artifact
// index. It returns the artifact IDs that were indexed so the caller can
// remove their backing files. Deleting an unknown session fails with
// [ErrSessionNotFound] after still clearing any orphaned owned keys.
//
//	Performance: 1 Lua EVALSHA (atomic cascade).
func (s *Store) Delete(ctx context.Context, sessionID string) ([]string, error) {
	result, err := deleteCascadeLua.Run(
		ctx,
		s.redis,
		[]string{s.key(sessionID), s.referenceKey(sessionID), s.artifactKey(sessionID)},
	).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) != 2 {
		return nil, fmt.Errorf("%w: invalid cascade script response", ErrRedisUnavailable)
	}

	existed, _ := parts[0].(int64)
	artifacts := toStringSlice(parts[1])

	if existed == 0 {
		return artifacts, ErrSessionNotFound
	}
	return artifacts, nil
}

// PutReference stores (or overwrites) the session's single reference slot.
// The blob is opaque to the store; the write is atomic so a concurrent read
// can never observe a partial vector.
func (s *Store) PutReference(ctx context.Context, sessionID string, blob []byte) error {
	pttl, err := s.redis.PTTL(ctx, s.key(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if pttl <= 0 {
		return ErrSessionNotFound
	}

	if err := s.redis.Set(ctx, s.referenceKey(sessionID), blob, pttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// GetReference fetches the session's reference blob, or [ErrReferenceNotFound]
// when none is stored.
func (s *Store) GetReference(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.referenceKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrReferenceNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return data, nil
}

// ClearReference removes the session's reference slot.
func (s *Store) ClearReference(ctx context.Context, sessionID string) error {
	removed, err := s.redis.Del(ctx, s.referenceKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if removed == 0 {
		return ErrReferenceNotFound
	}
	return nil
}

// RegisterArtifact indexes an artifact under its owning session and bumps the
// session's lifetime artifact counter atomically.
//
//	Performance: 1 Lua EVALSHA (atomic patch + SADD).
func (s *Store) RegisterArtifact(ctx context.Context, sessionID, artifactID string) error {
	result, err := registerArtifactLua.Run(
		ctx,
		s.redis,
		[]string{s.key(sessionID), s.artifactKey(sessionID)},
		artifactID,
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) == 0 {
		return fmt.Errorf("%w: invalid register script response", ErrRedisUnavailable)
	}
	code, _ := parts[0].(int64)

	switch code {
	case registerStatusNotFound:
		return ErrSessionNotFound
	case registerStatusExpired:
		return ErrSessionExpired
	case registerStatusCorrupt:
		return ErrSessionCorrupt
	case registerStatusOK:
		return nil
	default:
		return fmt.Errorf("%w: unknown register script status", ErrRedisUnavailable)
	}
}

// ListArtifacts returns the session's artifact IDs in stable sorted order.
func (s *Store) ListArtifacts(ctx context.Context, sessionID string) ([]string, error) {
	ids, err := s.redis.SMembers(ctx, s.artifactKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// OwnsArtifact reports whether the artifact is indexed under the session.
func (s *Store) OwnsArtifact(ctx context.Context, sessionID, artifactID string) (bool, error) {
	ok, err := s.redis.SIsMember(ctx, s.artifactKey(sessionID), artifactID).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ok, nil
}

// DeleteArtifact removes one artifact from the session's index. An artifact
// the session does not own fails with [ErrArtifactDenied] — whether it exists
// under another session is never revealed.
func (s *Store) DeleteArtifact(ctx context.Context, sessionID, artifactID string) error {
	owned, err := s.OwnsArtifact(ctx, sessionID, artifactID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrArtifactDenied
	}

	if err := s.redis.SRem(ctx, s.artifactKey(sessionID), artifactID).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Sweep reclaims logically expired sessions and orphaned reference/artifact
// keys whose session blob already fell to its Redis TTL. It returns what was
// reaped so the caller can remove artifact files. A session resolved by an
// in-flight request before the sweep keeps whatever the request already holds;
// only its stored state is reclaimed.
//
// This is an admin/background O(n) operation and must not run in request hot
// paths.
func (s *Store) Sweep(ctx context.Context) ([]Reaped, error) {
	var reaped []Reaped
	now := time.Now()

	// Pass 1: expired session blobs still inside the retention window.
	err := s.scan(ctx, s.prefix+":*", func(key string) error {
		sessionID := key[len(s.prefix)+1:]
		data, err := s.redis.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}

		sess, decErr := Decode(data)
		if decErr == nil && now.Sub(time.Unix(sess.LastAccessed, 0)) <= s.ttl {
			return nil
		}

		artifacts, delErr := s.Delete(ctx, sessionID)
		if delErr != nil && !errors.Is(delErr, ErrSessionNotFound) {
			return delErr
		}
		reaped = append(reaped, Reaped{SessionID: sessionID, ArtifactIDs: artifacts})
		return nil
	})
	if err != nil {
		return reaped, err
	}

	// Pass 2: artifact indexes whose session key is gone entirely.
	err = s.scan(ctx, artifactKeyPrefix+"*", func(key string) error {
		sessionID := key[len(artifactKeyPrefix):]
		exists, err := s.redis.Exists(ctx, s.key(sessionID)).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if exists > 0 {
			return nil
		}

		artifacts, delErr := s.Delete(ctx, sessionID)
		if delErr != nil && !errors.Is(delErr, ErrSessionNotFound) {
			return delErr
		}
		reaped = append(reaped, Reaped{SessionID: sessionID, ArtifactIDs: artifacts})
		return nil
	})
	if err != nil {
		return reaped, err
	}

	// Pass 3: orphaned reference blobs.
	err = s.scan(ctx, referenceKeyPrefix+"*", func(key string) error {
		sessionID := key[len(referenceKeyPrefix):]
		exists, err := s.redis.Exists(ctx, s.key(sessionID)).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if exists > 0 {
			return nil
		}
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return nil
	})

	return reaped, err
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *Store) scan(ctx context.Context, pattern string, fn func(key string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		for _, key := range keys {
			if err := fn(key); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}

func toStringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case []byte:
			out = append(out, string(s))
		}
	}
	return out
}
