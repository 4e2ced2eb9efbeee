// Package preview keeps the files an admin picked but has not uploaded yet.
// Each file gets a blob: URL owned by whoever created it; the owner revokes it
// when the file is replaced or the screen goes away.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	URLPrefix   = "blob:"
	MaxFileSize = 10 << 20
	thumbWidth  = 300
)

var (
	ErrFileTooLarge = errors.New("file size exceeds limit")
	ErrUnsupported  = errors.New("unsupported file type")
	ErrNotFound     = errors.New("preview not found")
)

var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"video/mp4":  true,
	"video/webm": true,
}

// Item is one locally chosen file.
type Item struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Owner       string    `json:"-"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	data  []byte
	thumb []byte
}

func (it *Item) Data() []byte { return it.data }

// Thumb is a JPEG thumbnail for images, nil for video.
func (it *Item) Thumb() []byte { return it.thumb }

// Source resolves preview URLs back to their files.
type Source interface {
	Lookup(url string) (*Item, bool)
}

type Store struct {
	mu    sync.Mutex
	items map[string]*Item

	stop chan struct{}
	once sync.Once
}

func NewStore() *Store {
	return &Store{items: make(map[string]*Item), stop: make(chan struct{})}
}

// Expire starts dropping previews older than maxAge, checked every interval,
// until Stop is called. Forms that were abandoned never revoke their files.
func (s *Store) Expire(maxAge, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if n := s.Sweep(now, maxAge); n > 0 {
					log.Printf("[preview] expired %d previews", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Sweep releases every preview created more than maxAge before now.
func (s *Store) Sweep(now time.Time, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, it := range s.items {
		if now.Sub(it.CreatedAt) > maxAge {
			delete(s.items, id)
			n++
		}
	}
	return n
}

func (s *Store) Stop() {
	s.once.Do(func() { close(s.stop) })
}

var unsafeName = regexp.MustCompile(`[^\w.\-]`)

func sanitizeFilename(name string) string {
	clean := unsafeName.ReplaceAllString(filepath.Base(name), "_")
	if clean == "" || clean == "." {
		return "file"
	}
	return clean
}

// Create reads r fully, checks its type and registers it for owner.
func (s *Store) Create(owner, filename string, r io.Reader) (*Item, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !allowedMIMEs[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}

	id := uuid.New().String()
	item := &Item{
		ID:          id,
		URL:         URLPrefix + id,
		Owner:       owner,
		Filename:    sanitizeFilename(filename),
		ContentType: mimeType,
		Size:        len(data),
		CreatedAt:   time.Now(),
		data:        data,
	}

	if strings.HasPrefix(mimeType, "image/") {
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		b := img.Bounds()
		item.Width, item.Height = b.Dx(), b.Dy()
		item.thumb, err = thumbnail(img)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.items[id] = item
	s.mu.Unlock()
	return item, nil
}

func thumbnail(img image.Image) ([]byte, error) {
	if img.Bounds().Dx() > thumbWidth {
		img = imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func idFromURL(url string) string {
	return strings.TrimPrefix(url, URLPrefix)
}

// IsPreview tells blob URLs apart from server asset URLs.
func IsPreview(url string) bool {
	return strings.HasPrefix(url, URLPrefix)
}

func (s *Store) Lookup(url string) (*Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[idFromURL(url)]
	return it, ok
}

// Revoke releases url. It reports whether anything was released.
func (s *Store) Revoke(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := idFromURL(url)
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// RevokeOwner releases every preview created by owner.
func (s *Store) RevokeOwner(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, it := range s.items {
		if it.Owner == owner {
			delete(s.items, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Scope is the set of previews one component holds.
type Scope struct {
	store *Store
	owner string
	mu    sync.Mutex
	urls  map[string]bool
}

func (s *Store) Scope(owner string) *Scope {
	return &Scope{store: s, owner: owner, urls: make(map[string]bool)}
}

func (sc *Scope) Owner() string { return sc.owner }

func (sc *Scope) Create(filename string, r io.Reader) (*Item, error) {
	it, err := sc.store.Create(sc.owner, filename, r)
	if err != nil {
		return nil, err
	}
	sc.mu.Lock()
	sc.urls[it.URL] = true
	sc.mu.Unlock()
	return it, nil
}

// Adopt takes ownership of a preview uploaded through the HTTP endpoint
// under the scope's owner. Another owner's file is reported as not found.
func (sc *Scope) Adopt(url string) (*Item, error) {
	it, ok := sc.store.Lookup(url)
	if !ok || it.Owner != sc.owner {
		return nil, ErrNotFound
	}
	sc.mu.Lock()
	sc.urls[url] = true
	sc.mu.Unlock()
	return it, nil
}

func (sc *Scope) Lookup(url string) (*Item, bool) {
	return sc.store.Lookup(url)
}

// Replace revokes old (when it is one of ours) and keeps next.
func (sc *Scope) Replace(old string, next *Item) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if old != "" && sc.urls[old] {
		delete(sc.urls, old)
		sc.store.Revoke(old)
	}
	if next != nil {
		sc.urls[next.URL] = true
	}
}

// Revoke releases url if the scope holds it.
func (sc *Scope) Revoke(url string) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if !sc.urls[url] {
		return false
	}
	delete(sc.urls, url)
	return sc.store.Revoke(url)
}

// Release revokes everything the scope still holds.
func (sc *Scope) Release() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for url := range sc.urls {
		sc.store.Revoke(url)
	}
	sc.urls = make(map[string]bool)
}

func (sc *Scope) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.urls)
}
