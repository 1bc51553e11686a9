package artifact

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "artifacts"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	s := newTestStore(t)

	payload := []byte("rendered-bytes")
	err := s.Save("sess1", "out.png", func(w io.Writer) error {
		_, werr := w.Write(payload)
		return werr
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	r, err := s.Open("sess1", "out.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch: got %q", got)
	}
}

func TestFailedWriteLeavesNothingBehind(t *testing.T) {
	s := newTestStore(t)

	boom := errors.New("encode failed")
	err := s.Save("sess1", "out.png", func(io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("want write error back, got %v", err)
	}

	if _, err := s.Open("sess1", "out.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("partial artifact published: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(s.root, "sess1"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestDeleteAndDeleteAll(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"a.png", "b.png"} {
		if err := s.Save("sess1", id, func(w io.Writer) error {
			_, err := w.Write([]byte(id))
			return err
		}); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	if err := s.Delete("sess1", "a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Open("sess1", "a.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("a.png still readable: %v", err)
	}
	// Idempotent.
	if err := s.Delete("sess1", "a.png"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}

	if err := s.DeleteAll("sess1"); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.root, "sess1")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("session dir survived DeleteAll: %v", err)
	}
}

func TestRejectsTraversalIdentifiers(t *testing.T) {
	s := newTestStore(t)

	bad := []string{"", ".", "..", "../x", "a/b", `a\b`}
	for _, id := range bad {
		err := s.Save(id, "out.png", func(io.Writer) error { return nil })
		if !errors.Is(err, ErrInvalidID) {
			t.Fatalf("session id %q accepted: %v", id, err)
		}
		err = s.Save("sess1", id, func(io.Writer) error { return nil })
		if !errors.Is(err, ErrInvalidID) {
			t.Fatalf("artifact id %q accepted: %v", id, err)
		}
	}
}
