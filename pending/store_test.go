package pending

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/sayandeep-bot/spectosoft/types"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStore_Persist_LayoutContract(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	s.now = fixedClock(time.Date(2026, 8, 25, 14, 30, 1, 250_000_000, time.UTC))

	payload := []byte("segment-bytes")
	path, err := s.Persist(types.KindVideo, ".mp4", payload)
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}

	wantDir := filepath.Join(root, "video_pending", "2026-08-25")
	if got := filepath.Dir(path); got != wantDir {
		t.Errorf("partition dir = %q, want %q", got, wantDir)
	}

	namePattern := regexp.MustCompile(
		`^video_20260825T143001\.250_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.mp4$`)
	if name := filepath.Base(path); !namePattern.MatchString(name) {
		t.Errorf("filename %q does not match the layout contract", name)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestStore_Persist_UTCDayPartition(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	// Local calendar day is Aug 26, UTC day is still Aug 25.
	zone := time.FixedZone("UTC+10", 10*3600)
	s.now = fixedClock(time.Date(2026, 8, 26, 8, 0, 0, 0, zone))

	path, err := s.Persist(types.KindActivity, ".json", []byte("{}"))
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if got := filepath.Base(filepath.Dir(path)); got != "2026-08-25" {
		t.Errorf("partition day = %q, want %q (UTC)", got, "2026-08-25")
	}
}

func TestStore_Persist_UniqueNames(t *testing.T) {
	s := NewStore(t.TempDir())
	s.now = fixedClock(time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))

	first, err := s.Persist(types.KindScreenshot, ".png", []byte("a"))
	if err != nil {
		t.Fatalf("first Persist: %v", err)
	}
	second, err := s.Persist(types.KindScreenshot, ".png", []byte("b"))
	if err != nil {
		t.Fatalf("second Persist: %v", err)
	}
	if first == second {
		t.Errorf("two artifacts persisted at the same instant share a path: %q", first)
	}
}

func TestStore_Persist_NormalizesExtension(t *testing.T) {
	s := NewStore(t.TempDir())

	path, err := s.Persist(types.KindActivity, "json", []byte("{}"))
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if got := filepath.Ext(path); got != ".json" {
		t.Errorf("extension = %q, want %q", got, ".json")
	}
}

func TestStore_Allocate_DoesNotCreateFile(t *testing.T) {
	s := NewStore(t.TempDir())

	path, err := s.Allocate(types.KindVideo, ".mp4")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("partition dir should exist after Allocate: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Allocate should not create the file, stat err = %v", err)
	}
}

func TestStore_Scan_SortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	mkArtifact(t, root, "video_pending/2026-08-25/video_b.mp4")
	mkArtifact(t, root, "video_pending/2026-08-25/video_a.webm")
	mkArtifact(t, root, "video_pending/2026-08-24/video_z.avi")
	mkArtifact(t, root, "video_pending/2026-08-25/notes.txt") // wrong extension
	mkArtifact(t, root, "video_pending/stray.mp4")            // not in a day dir

	paths, err := s.Scan(types.KindVideo)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{
		filepath.Join(root, "video_pending", "2026-08-24", "video_z.avi"),
		filepath.Join(root, "video_pending", "2026-08-25", "video_a.webm"),
		filepath.Join(root, "video_pending", "2026-08-25", "video_b.mp4"),
	}
	if len(paths) != len(want) {
		t.Fatalf("Scan returned %d paths, want %d: %v", len(paths), len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestStore_Scan_MissingRoot(t *testing.T) {
	s := NewStore(t.TempDir())

	paths, err := s.Scan(types.KindScreenshot)
	if err != nil {
		t.Fatalf("Scan on missing root: %v", err)
	}
	if paths != nil {
		t.Errorf("Scan on missing root = %v, want nil", paths)
	}
}

func TestStore_Scan_PrunesEmptyDayDirs(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	empty := filepath.Join(root, "activity_pending", "2026-08-20")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatal(err)
	}
	mkArtifact(t, root, "activity_pending/2026-08-25/activity_a.json")

	paths, err := s.Scan(types.KindActivity)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("Scan returned %d paths, want 1", len(paths))
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Errorf("empty day dir should be pruned, stat err = %v", err)
	}
}

func TestStore_Remove_Idempotent(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	path, err := s.Persist(types.KindActivity, ".json", []byte("{}"))
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if err := s.Remove(path); err != nil {
		t.Errorf("first Remove: %v", err)
	}
	if err := s.Remove(path); err != nil {
		t.Errorf("second Remove should be a no-op, got %v", err)
	}
}

func TestStore_Stats(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	mkArtifactN(t, root, "screenshot_pending/2026-08-24/screenshot_a.png", 10)
	mkArtifactN(t, root, "screenshot_pending/2026-08-25/screenshot_b.png", 20)
	mkArtifactN(t, root, "screenshot_pending/2026-08-25/screenshot_c.png", 30)
	mkArtifact(t, root, "screenshot_pending/2026-08-25/ignore.tmp")

	stats, err := s.Stats(types.KindScreenshot)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
	if stats.Bytes != 60 {
		t.Errorf("Bytes = %d, want 60", stats.Bytes)
	}
	if len(stats.Days) != 2 {
		t.Fatalf("Days = %d entries, want 2", len(stats.Days))
	}
	if stats.Days[0].Day != "2026-08-24" || stats.Days[0].Count != 1 || stats.Days[0].Bytes != 10 {
		t.Errorf("Days[0] = %+v, want day 2026-08-24 count 1 bytes 10", stats.Days[0])
	}
	if stats.Days[1].Day != "2026-08-25" || stats.Days[1].Count != 2 || stats.Days[1].Bytes != 50 {
		t.Errorf("Days[1] = %+v, want day 2026-08-25 count 2 bytes 50", stats.Days[1])
	}
}

func TestStore_Stats_MissingRoot(t *testing.T) {
	s := NewStore(t.TempDir())

	stats, err := s.Stats(types.KindVideo)
	if err != nil {
		t.Fatalf("Stats on missing root: %v", err)
	}
	if stats.Count != 0 || stats.Bytes != 0 || len(stats.Days) != 0 {
		t.Errorf("Stats on missing root = %+v, want zero", stats)
	}
}

func mkArtifact(t *testing.T, root, rel string) {
	t.Helper()
	mkArtifactN(t, root, rel, 1)
}

func mkArtifactN(t *testing.T, root, rel string, size int) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}
