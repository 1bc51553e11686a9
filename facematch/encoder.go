package facematch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

const embeddingFormatVersionCurrent = 1

// ErrEncodingInvalid is an exported constant or variable used by the redaction engine.
var ErrEncodingInvalid = errors.New("invalid embedding encoding")

// ErrDimensionMismatch is an exported constant or variable used by the redaction engine.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Encode serializes an embedding to the current binary format: format version,
// extractor version, big-endian dimension, then the raw big-endian float32
// values. Exact bit patterns are preserved.
func Encode(e *Embedding) ([]byte, error) {
	if e == nil || len(e.Vector) == 0 {
		return nil, ErrEncodingInvalid
	}

	var buf bytes.Buffer
	buf.WriteByte(embeddingFormatVersionCurrent)
	buf.WriteByte(e.ExtractorVersion)

	if err := binary.Write(&buf, binary.BigEndian, uint32(len(e.Vector))); err != nil {
		return nil, err
	}
	for _, v := range e.Vector {
		var word [4]byte
		binary.BigEndian.PutUint32(word[:], math.Float32bits(v))
		buf.Write(word[:])
	}

	return buf.Bytes(), nil
}

// Decode parses an embedding blob and verifies it is comparable with the
// current extractor: an unknown format fails with [ErrEncodingInvalid], and a
// stale extractor version or wrong vector length fails with
// [ErrDimensionMismatch] rather than being truncated or padded.
func Decode(data []byte) (*Embedding, error) {
	if len(data) < 6 {
		return nil, ErrEncodingInvalid
	}
	if data[0] != embeddingFormatVersionCurrent {
		return nil, ErrEncodingInvalid
	}

	extractor := data[1]
	dim := binary.BigEndian.Uint32(data[2:6])
	if len(data) != 6+int(dim)*4 {
		return nil, ErrEncodingInvalid
	}

	if extractor != ExtractorVersion || dim != EmbeddingDim {
		return nil, ErrDimensionMismatch
	}

	vec := make([]float32, dim)
	for i := range vec {
		off := 6 + i*4
		vec[i] = math.Float32frombits(binary.BigEndian.Uint32(data[off : off+4]))
	}

	return &Embedding{ExtractorVersion: extractor, Vector: vec}, nil
}
