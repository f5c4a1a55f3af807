// Package pending implements the durable on-disk store for artifacts
// awaiting delivery.
//
// The layout is a contract other tooling relies on:
//
//	<app_data_root>/<kind>_pending/<YYYY-MM-DD>/<kind>_<ts>_<uuid>.<ext>
//
// Day partitions use the UTC calendar date and files are never nested
// further. An artifact present under this tree is guaranteed recoverable
// after a crash: Persist writes, flushes, and fsyncs before returning,
// and the delivery engine removes files only after a confirmed upload.
package pending

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sayandeep-bot/spectosoft/iox"
	"github.com/sayandeep-bot/spectosoft/types"
)

// timestampLayout keeps filenames lexicographically sortable within a
// day partition. Millisecond precision plus the uuid suffix makes
// collisions impossible by construction.
const timestampLayout = "20060102T150405.000"

// Store manages the pending tree under a single application data root.
// All methods are safe for concurrent use; the store itself holds no
// state beyond the root path.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore returns a Store rooted at the application data directory.
// No directories are created until the first Persist or Allocate.
func NewStore(root string) *Store {
	return &Store{root: root, now: time.Now}
}

// Root returns the application data root this store was built with.
func (s *Store) Root() string {
	return s.root
}

// KindRoot returns the pending directory for a kind, whether or not it
// exists yet.
func (s *Store) KindRoot(kind types.Kind) string {
	return filepath.Join(s.root, kind.PendingDir())
}

// Persist durably writes payload as a new artifact of the given kind.
// The partition directory is created if absent, the filename is unique
// by construction, and the data is flushed and fsynced before Persist
// returns. Existing files are never overwritten.
func (s *Store) Persist(kind types.Kind, ext string, payload []byte) (string, error) {
	path, err := s.Allocate(kind, ext)
	if err != nil {
		return "", err
	}
	if err := iox.WriteFileSync(path, payload, 0o644); err != nil {
		return "", wrapErr("persist", path, err)
	}
	return path, nil
}

// Allocate reserves a unique artifact path for the given kind without
// creating the file, for writers that stream directly into the pending
// tree. The partition directory is created.
func (s *Store) Allocate(kind types.Kind, ext string) (string, error) {
	now := s.now().UTC()
	dir := filepath.Join(s.KindRoot(kind), now.Format(time.DateOnly))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", wrapErr("allocate", dir, err)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := string(kind) + "_" + now.Format(timestampLayout) + "_" + uuid.NewString() + ext
	return filepath.Join(dir, name), nil
}

// Scan returns every pending artifact of the given kind, filtered by the
// kind's extensions and lexicographically sorted so retries walk the
// backlog in a deterministic (chronological) order. A missing kind root
// means nothing pending. Day directories left empty by earlier
// deliveries are pruned opportunistically.
func (s *Store) Scan(kind types.Kind) ([]string, error) {
	kindRoot := s.KindRoot(kind)
	days, err := os.ReadDir(kindRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, wrapErr("scan", kindRoot, err)
	}

	exts := kind.Extensions()
	var paths []string
	for _, day := range days {
		if !day.IsDir() {
			continue
		}
		dayDir := filepath.Join(kindRoot, day.Name())
		files, err := os.ReadDir(dayDir)
		if err != nil {
			return nil, wrapErr("scan", dayDir, err)
		}
		if len(files) == 0 {
			// Best effort; a concurrent Persist may have just claimed it.
			_ = os.Remove(dayDir)
			continue
		}
		for _, f := range files {
			if f.IsDir() || !hasExtension(f.Name(), exts) {
				continue
			}
			paths = append(paths, filepath.Join(dayDir, f.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// Remove deletes a delivered artifact. Removing a path that is already
// gone is not an error, so concurrent sweeps stay idempotent.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return wrapErr("remove", path, err)
	}
	return nil
}

// DayStats aggregates one day partition for status reporting.
type DayStats struct {
	Day   string
	Count int
	Bytes int64
}

// KindStats aggregates a kind's whole backlog. Days are sorted.
type KindStats struct {
	Count int
	Bytes int64
	Days  []DayStats
}

// Stats reports the pending backlog for a kind. A missing kind root
// yields zero stats and no error.
func (s *Store) Stats(kind types.Kind) (KindStats, error) {
	kindRoot := s.KindRoot(kind)
	days, err := os.ReadDir(kindRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return KindStats{}, nil
		}
		return KindStats{}, wrapErr("stats", kindRoot, err)
	}

	exts := kind.Extensions()
	var stats KindStats
	for _, day := range days {
		if !day.IsDir() {
			continue
		}
		dayDir := filepath.Join(kindRoot, day.Name())
		files, err := os.ReadDir(dayDir)
		if err != nil {
			return KindStats{}, wrapErr("stats", dayDir, err)
		}
		ds := DayStats{Day: day.Name()}
		for _, f := range files {
			if f.IsDir() || !hasExtension(f.Name(), exts) {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			ds.Count++
			ds.Bytes += info.Size()
		}
		if ds.Count > 0 {
			stats.Count += ds.Count
			stats.Bytes += ds.Bytes
			stats.Days = append(stats.Days, ds)
		}
	}

	sort.Slice(stats.Days, func(i, j int) bool { return stats.Days[i].Day < stats.Days[j].Day })
	return stats, nil
}

func hasExtension(name string, exts []string) bool {
	got := filepath.Ext(name)
	for _, ext := range exts {
		if got == ext {
			return true
		}
	}
	return false
}
