package identity

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"testing"
)

var namePattern = regexp.MustCompile(`^(Cool|Swift|Bright|Lively|Epic|Neon|Bold) (Panda|Eagle|Fox|Tiger|Nova|Storm|Zenith) \d{1,3}$`)

type failingStorage struct {
	loads, saves int
}

func (s *failingStorage) Load() ([]byte, error) {
	s.loads++
	return nil, errors.New("storage disabled")
}

func (s *failingStorage) Save([]byte) error {
	s.saves++
	return errors.New("storage disabled")
}

func TestGetOrCreateIsStable(t *testing.T) {
	p := NewProvider(&MemoryStorage{})
	first := p.GetOrCreate()
	for i := 0; i < 3; i++ {
		if got := p.GetOrCreate(); got != first {
			t.Fatalf("call %d returned %+v, want %+v", i, got, first)
		}
	}
}

func TestGeneratedIdentityShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := NewProvider(nil).GetOrCreate()
		if id.ID == "" {
			t.Fatal("empty id")
		}
		if !namePattern.MatchString(id.DisplayName) {
			t.Fatalf("display name %q does not match %s", id.DisplayName, namePattern)
		}
		if !slices.Contains(Palette(), id.Color) {
			t.Fatalf("color %q is not in the palette", id.Color)
		}
	}
}

func TestWithRandomIsDeterministic(t *testing.T) {
	p := NewProvider(nil, WithRandom(func() string { return "fixed-id" }, func(n int) int { return n - 1 }))
	id := p.GetOrCreate()
	if id.ID != "fixed-id" || id.DisplayName != "Bold Zenith 998" || id.Color != "#ec4899" {
		t.Fatalf("identity = %+v", id)
	}
}

func TestIdentitySurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "user-storage.json")

	first := NewProvider(NewFileStorage(path)).GetOrCreate()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("identity file not written: %v", err)
	}

	second := NewProvider(NewFileStorage(path)).GetOrCreate()
	if second != first {
		t.Fatalf("identity after restart = %+v, want %+v", second, first)
	}
}

func TestCorruptStorageRegenerates(t *testing.T) {
	storage := &MemoryStorage{}
	if err := storage.Save([]byte("{not json")); err != nil {
		t.Fatal(err)
	}
	id := NewProvider(storage).GetOrCreate()
	if id.ID == "" {
		t.Fatal("no identity generated")
	}

	again := NewProvider(storage).GetOrCreate()
	if again != id {
		t.Fatalf("regenerated identity was not persisted: %+v vs %+v", again, id)
	}
}

func TestUnavailableStorageDegrades(t *testing.T) {
	storage := &failingStorage{}
	p := NewProvider(storage)

	id := p.GetOrCreate()
	if id.ID == "" {
		t.Fatal("no identity while storage is unavailable")
	}
	if got := p.GetOrCreate(); got != id {
		t.Fatalf("identity changed within the session: %+v vs %+v", got, id)
	}
	if storage.loads != 1 {
		t.Fatalf("storage loaded %d times, want 1", storage.loads)
	}
	if storage.saves != 0 {
		t.Fatalf("storage saved %d times after failing to load, want 0", storage.saves)
	}
}

func TestResetReplacesIdentity(t *testing.T) {
	storage := &MemoryStorage{}
	p := NewProvider(storage)
	before := p.GetOrCreate()

	after := p.Reset()
	if after.ID == before.ID {
		t.Fatal("reset kept the old id")
	}
	if got := p.GetOrCreate(); got != after {
		t.Fatalf("GetOrCreate after Reset = %+v, want %+v", got, after)
	}
	if got := NewProvider(storage).GetOrCreate(); got != after {
		t.Fatalf("reset identity not persisted: %+v", got)
	}
}
