package session

// CurrentSchemaVersion is the binary schema written for new and migrated
// sessions.
const CurrentSchemaVersion = 2

// Session defines a public type used by goRedact APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	SessionID string

	CreatedAt    int64
	LastAccessed int64

	// ArtifactCount tracks how many outputs this session has produced over
	// its lifetime. It is informational and never decremented.
	ArtifactCount uint32

	SchemaVersion uint8
}
