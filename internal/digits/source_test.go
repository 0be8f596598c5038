package digits

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/verte-zerg/pidigits/internal/generator"
)

const sample = "14159265358979323846"

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pi.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return path
}

func TestReadRangeClipping(t *testing.T) {
	ctx := context.Background()
	sources := map[string]Source{
		"memory": NewMemorySource(sample),
		"file":   NewFileSource(writeCorpus(t, "3."+sample+"\n")),
		"mmap":   NewMmapSource(writeCorpus(t, "3."+sample+"\n")),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			if err := src.Initialize(ctx); err != nil {
				t.Fatalf("initialize: %v", err)
			}
			t.Cleanup(func() { _ = src.Close() })
			if src.TotalLength() != len(sample) {
				t.Fatalf("expected %d digits, got %d", len(sample), src.TotalLength())
			}
			cases := []struct {
				offset, length int
				want           string
			}{
				{0, 5, "14159"},
				{15, 10, "23846"},
				{19, 1, "6"},
				{20, 1, ""},
				{-1, 3, ""},
				{3, 0, ""},
				{3, -2, ""},
			}
			for _, tc := range cases {
				got, err := src.ReadRange(tc.offset, tc.length)
				if err != nil {
					t.Fatalf("ReadRange(%d, %d): %v", tc.offset, tc.length, err)
				}
				if got != tc.want {
					t.Fatalf("ReadRange(%d, %d) = %q, want %q", tc.offset, tc.length, got, tc.want)
				}
			}
		})
	}
}

func TestReadBeforeInitializeAndAfterClose(t *testing.T) {
	src := NewMmapSource(writeCorpus(t, sample))
	if _, err := src.ReadRange(0, 1); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized before init, got %v", err)
	}
	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("second initialize should be a no-op: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := src.ReadRange(0, 1); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized after close, got %v", err)
	}
}

func TestNormalizeWrappedCorpus(t *testing.T) {
	got, err := normalize([]byte("3.\n14159\r\n26535\n"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "1415926535" {
		t.Fatalf("unexpected digits %q", got)
	}
	if _, err := normalize([]byte("3.14x59")); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if _, err := normalize([]byte("  \n")); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for empty corpus, got %v", err)
	}
}

func TestMmapRejectsWrappedCorpus(t *testing.T) {
	src := NewMmapSource(writeCorpus(t, "3.\n14159\n26535\n"))
	if err := src.Initialize(context.Background()); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for wrapped corpus, got %v", err)
	}
}

func TestFallbackOnMissingFile(t *testing.T) {
	src, err := Open(Options{Kind: KindMmap, Path: filepath.Join(t.TempDir(), "missing.txt"), FallbackDigits: 500})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize should degrade, got %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	if src.Degraded() == nil {
		t.Fatalf("expected degraded cause to be recorded")
	}
	if src.TotalLength() != 500 {
		t.Fatalf("expected 500 fallback digits, got %d", src.TotalLength())
	}
	got, err := src.ReadRange(0, 500)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != generator.PiDigits(500) {
		t.Fatalf("fallback corpus does not match generated digits")
	}
}

func TestDefaultKindReadsWrappedCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pi.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := generator.WriteCorpus(f, 50000, 80); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	src, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	if src.Degraded() != nil {
		t.Fatalf("wrapped corpus should not degrade, got %v", src.Degraded())
	}
	if src.TotalLength() != 50000 {
		t.Fatalf("expected 50000 digits, got %d", src.TotalLength())
	}
	got, err := src.ReadRange(79, 3)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := generator.PiDigits(82)[79:]; got != want {
		t.Fatalf("expected %q across a line break, got %q", want, got)
	}
}

func TestDefaultKindDegradesOnGarbage(t *testing.T) {
	src, err := Open(Options{Path: writeCorpus(t, "3.14x59\n"), FallbackDigits: 100})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize should degrade, got %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	if !errors.Is(src.Degraded(), ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt cause, got %v", src.Degraded())
	}
	if src.TotalLength() != 100 {
		t.Fatalf("expected 100 fallback digits, got %d", src.TotalLength())
	}
}

func TestFallbackNotUsedForHealthyCorpus(t *testing.T) {
	src, err := Open(Options{Kind: KindMemory, Path: writeCorpus(t, "3.\n"+sample+"\n")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if src.Degraded() != nil {
		t.Fatalf("unexpected degraded state: %v", src.Degraded())
	}
	if err := src.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := src.ReadRange(0, 1); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized after close, got %v", err)
	}
}

func TestOpenUnknownKind(t *testing.T) {
	if _, err := Open(Options{Kind: "tape"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestConcurrentReads(t *testing.T) {
	digits := generator.PiDigits(2000)
	src := NewMmapSource(writeCorpus(t, digits))
	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for off := g; off < len(digits); off += 97 {
				got, err := src.ReadRange(off, 13)
				if err != nil {
					errs <- err
					return
				}
				want := digits[off:min(off+13, len(digits))]
				if got != want {
					errs <- errors.New("mismatched concurrent read")
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent read: %v", err)
	}
}
