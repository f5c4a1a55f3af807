// Package iox provides I/O helpers for resource cleanup and durable writes.
package iox

import (
	"io"
	"os"
)

// DiscardClose closes c and discards the error, for defer sites where
// a close failure is unactionable:
//
//	defer iox.DiscardClose(f)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c, shaped for
// t.Cleanup registration:
//
//	t.Cleanup(iox.CloseFunc(client))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and discards the returned error. For non-Close
// cleanup like Flush:
//
//	defer iox.DiscardErr(w.Flush)
func DiscardErr(fn func() error) { _ = fn() }

// WriteFileSync writes data to path and syncs it to stable storage before
// returning. On any error the partially written file is removed so a
// crash never leaves a truncated artifact visible to scanners.
func WriteFileSync(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		DiscardClose(f)
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		DiscardClose(f)
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// SyncFile fsyncs an existing file in place. Used after an external
// process finishes writing a file we need to be crash-durable.
func SyncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		DiscardClose(f)
		return err
	}
	return f.Close()
}
