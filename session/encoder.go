package session

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	sessionFormatVersionCurrent = 2
	sessionFormatVersionV1      = 1
)

// Encode serializes a [Session] to the current binary schema.
func Encode(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}

	var buf bytes.Buffer
	buf.WriteByte(sessionFormatVersionCurrent)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.LastAccessed); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ArtifactCount); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a session blob of any supported schema version. v1 blobs
// predate the artifact counter; they decode with a zero count and are migrated
// forward on the next write.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent && version != sessionFormatVersionV1 {
		return nil, errors.New("invalid session version")
	}

	s := &Session{SchemaVersion: version}

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.LastAccessed); err != nil {
		return nil, err
	}

	if version >= sessionFormatVersionCurrent {
		if err := binary.Read(reader, binary.BigEndian, &s.ArtifactCount); err != nil {
			return nil, err
		}
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes in session blob")
	}

	return s, nil
}
