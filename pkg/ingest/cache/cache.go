// Package cache wraps an input file with memoized accessors for its
// contents, head and MIME type, plus keyed conversions. Conversions are
// remembered in memory for the lifetime of the File and, when a Store is
// attached, across runs keyed on the file's size and modification time.
package cache

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// HeadBytes is the number of bytes Head reads when no explicit length is
// given.
const HeadBytes = 8192

// Converter derives a product from a file, such as parsed text or a
// normalized form. Key identifies the conversion in caches and must be
// stable across runs for the same logic.
type Converter struct {
	Key string
	Fn  func(name string) (string, error)
}

// Store persists conversion products across runs. A product is only valid
// for the (size, mtime) it was computed at.
type Store interface {
	Get(name, key string, size int64, mtime time.Time) (value string, ok bool, err error)
	Put(name, key string, size int64, mtime time.Time, value string) error
}

// File provides cached access to one input file.
type File struct {
	// Name is the path of the underlying file.
	Name string

	store Store

	mu   sync.Mutex
	memo map[string]string
}

// New returns a File with in-memory memoization only.
func New(name string) *File {
	return &File{Name: name, memo: make(map[string]string)}
}

// NewWithStore returns a File whose conversions are also persisted in
// store. A nil store behaves like New.
func NewWithStore(name string, store Store) *File {
	f := New(name)
	f.store = store
	return f
}

// Contents returns the whole file decoded as a string.
func (f *File) Contents() (string, error) {
	return f.Convert(Converter{Key: "contents", Fn: func(name string) (string, error) {
		b, err := os.ReadFile(name)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}})
}

// Head returns up to n bytes from the start of the file, with any trailing
// partial UTF-8 rune dropped. n <= 0 means HeadBytes.
func (f *File) Head(n int) (string, error) {
	if n <= 0 {
		n = HeadBytes
	}
	key := "head:" + strconv.Itoa(n)
	return f.Convert(Converter{Key: key, Fn: func(name string) (string, error) {
		fp, err := os.Open(name)
		if err != nil {
			return "", err
		}
		defer fp.Close()
		buf := make([]byte, n)
		read, err := io.ReadFull(fp, buf)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return "", err
		}
		buf = buf[:read]
		for i := 0; i < utf8.UTFMax-1 && len(buf) > 0 && !utf8.Valid(buf); i++ {
			buf = buf[:len(buf)-1]
		}
		return string(buf), nil
	}})
}

// MimeType sniffs the file's MIME type from its content, e.g. "text/csv".
func (f *File) MimeType() (string, error) {
	return f.Convert(Converter{Key: "mimetype", Fn: func(name string) (string, error) {
		mt, err := mimetype.DetectFile(name)
		if err != nil {
			return "", err
		}
		// Drop parameters such as "; charset=utf-8".
		s, _, _ := strings.Cut(mt.String(), ";")
		return strings.TrimSpace(s), nil
	}})
}

// Convert runs conv against the file, reusing a previous product when one
// is memoized or persisted for the same file state.
func (f *File) Convert(conv Converter) (string, error) {
	f.mu.Lock()
	if v, ok := f.memo[conv.Key]; ok {
		f.mu.Unlock()
		return v, nil
	}
	f.mu.Unlock()

	var size int64
	var mtime time.Time
	if f.store != nil {
		fi, err := os.Stat(f.Name)
		if err != nil {
			return "", fmt.Errorf("cache: stat %s: %w", f.Name, err)
		}
		size, mtime = fi.Size(), fi.ModTime()
		if v, ok, err := f.store.Get(f.Name, conv.Key, size, mtime); err != nil {
			return "", fmt.Errorf("cache: load %s %q: %w", f.Name, conv.Key, err)
		} else if ok {
			f.remember(conv.Key, v)
			return v, nil
		}
	}

	v, err := conv.Fn(f.Name)
	if err != nil {
		return "", err
	}
	f.remember(conv.Key, v)
	if f.store != nil {
		if err := f.store.Put(f.Name, conv.Key, size, mtime, v); err != nil {
			return "", fmt.Errorf("cache: save %s %q: %w", f.Name, conv.Key, err)
		}
	}
	return v, nil
}

func (f *File) remember(key, value string) {
	f.mu.Lock()
	f.memo[key] = value
	f.mu.Unlock()
}
