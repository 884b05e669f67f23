package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestContents(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.csv", "date,amount\n2026-01-02,4.50\n")
	f := New(path)
	got, err := f.Contents()
	if err != nil {
		t.Fatalf("Contents: %v", err)
	}
	if got != "date,amount\n2026-01-02,4.50\n" {
		t.Errorf("Contents = %q", got)
	}
}

func TestHeadTruncates(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "hello world")
	f := New(path)
	got, err := f.Head(5)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if got != "hello" {
		t.Errorf("Head(5) = %q, want hello", got)
	}
}

func TestHeadDropsPartialRune(t *testing.T) {
	// "héllo" with the cut landing inside the two-byte é.
	path := writeFile(t, t.TempDir(), "input.txt", "h\xc3\xa9llo")
	f := New(path)
	got, err := f.Head(2)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if got != "h" {
		t.Errorf("Head(2) = %q, want h", got)
	}
}

func TestHeadShortFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "tiny")
	f := New(path)
	got, err := f.Head(0)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if got != "tiny" {
		t.Errorf("Head = %q, want tiny", got)
	}
}

func TestConvertMemoizes(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "data")
	f := New(path)
	calls := 0
	conv := Converter{Key: "count", Fn: func(string) (string, error) {
		calls++
		return "product", nil
	}}
	for i := 0; i < 3; i++ {
		got, err := f.Convert(conv)
		if err != nil {
			t.Fatalf("Convert: %v", err)
		}
		if got != "product" {
			t.Errorf("Convert = %q, want product", got)
		}
	}
	if calls != 1 {
		t.Errorf("converter ran %d times, want 1", calls)
	}
}

func TestConvertErrorNotMemoized(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "data")
	f := New(path)
	fail := errors.New("boom")
	calls := 0
	conv := Converter{Key: "flaky", Fn: func(string) (string, error) {
		calls++
		if calls == 1 {
			return "", fail
		}
		return "ok", nil
	}}
	if _, err := f.Convert(conv); !errors.Is(err, fail) {
		t.Fatalf("Convert error = %v, want %v", err, fail)
	}
	got, err := f.Convert(conv)
	if err != nil {
		t.Fatalf("Convert retry: %v", err)
	}
	if got != "ok" {
		t.Errorf("Convert retry = %q, want ok", got)
	}
}

// memStore records puts and serves gets from a map, for exercising the
// persistent path without a database.
type memStore struct {
	values map[string]string
	puts   int
}

func (s *memStore) Get(name, key string, size int64, mtime time.Time) (string, bool, error) {
	v, ok := s.values[name+"\x00"+key]
	return v, ok, nil
}

func (s *memStore) Put(name, key string, size int64, mtime time.Time, value string) error {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[name+"\x00"+key] = value
	s.puts++
	return nil
}

func TestConvertUsesStore(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "data")
	store := &memStore{}

	calls := 0
	conv := Converter{Key: "slow", Fn: func(string) (string, error) {
		calls++
		return "product", nil
	}}

	f := NewWithStore(path, store)
	if _, err := f.Convert(conv); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if store.puts != 1 {
		t.Errorf("store puts = %d, want 1", store.puts)
	}

	// A fresh File for the same path hits the store, not the converter.
	f2 := NewWithStore(path, store)
	got, err := f2.Convert(conv)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != "product" {
		t.Errorf("Convert = %q, want product", got)
	}
	if calls != 1 {
		t.Errorf("converter ran %d times, want 1", calls)
	}
}
