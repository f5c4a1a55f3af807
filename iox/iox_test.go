package iox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// countingCloser records close calls and always fails, so tests can
// check the helpers both invoke Close and swallow its error.
type countingCloser struct{ closes int }

func (c *countingCloser) Close() error {
	c.closes++
	return errors.New("swallowed")
}

func TestDiscardClose(t *testing.T) {
	c := &countingCloser{}
	DiscardClose(c)
	if c.closes != 1 {
		t.Fatalf("closes = %d, want 1", c.closes)
	}
}

func TestCloseFunc_DefersClose(t *testing.T) {
	c := &countingCloser{}
	cleanup := CloseFunc(c)
	if c.closes != 0 {
		t.Fatal("CloseFunc must not close eagerly")
	}
	cleanup()
	if c.closes != 1 {
		t.Fatalf("closes = %d, want 1", c.closes)
	}
}

func TestDiscardErr(t *testing.T) {
	ran := false
	DiscardErr(func() error { ran = true; return errors.New("swallowed") })
	if !ran {
		t.Fatal("fn was not called")
	}
}

func TestWriteFileSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.json")
	payload := []byte(`{"ok":true}`)

	if err := WriteFileSync(path, payload, 0o644); err != nil {
		t.Fatalf("WriteFileSync: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("content = %q, want %q", got, payload)
	}
}

func TestWriteFileSync_NeverOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.json")
	if err := WriteFileSync(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}

	if err := WriteFileSync(path, []byte("second"), 0o644); err == nil {
		t.Fatal("second write to same path should fail")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "first" {
		t.Errorf("existing file was clobbered: %q", got)
	}
}

func TestSyncFile_Missing(t *testing.T) {
	err := SyncFile(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
