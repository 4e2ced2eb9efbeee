package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"tripdesk/apiclient"
	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/resources"
	"tripdesk/toast"
)

type bannerBackend struct {
	mu       sync.Mutex
	created  int
	updated  int
	files    int
	toDelete []string
}

func (b *bannerBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		banner := map[string]any{
			"_id":         "b-1",
			"title":       "Pokhara",
			"pageName":    "pokhara",
			"description": "Lakeside city",
			"type":        "image",
			"image":       "https://cdn.example.com/b.jpg",
			"overview":    "Gateway to the Annapurnas",
			"highlights":  []map[string]any{{"text": "Paragliding"}},
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/banner/add-destination-banner":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			b.mu.Lock()
			b.created++
			b.files = len(r.MultipartForm.File["image"])
			b.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Banner created"})
		case r.Method == http.MethodPatch && r.URL.Path == "/banner/edit-destination-banner/b-1":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			b.mu.Lock()
			b.updated++
			b.files = len(r.MultipartForm.File["image"])
			json.Unmarshal([]byte(r.FormValue("imageToDelete")), &b.toDelete)
			b.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Banner updated"})
		case r.Method == http.MethodGet && r.URL.Path == "/banner/get-destination-banner/b-1":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"banner": banner}})
		case r.Method == http.MethodGet && r.URL.Path == "/banner/get-home-banner/h-1":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"banner": map[string]any{
				"_id": "h-1", "title": "Welcome", "description": "Himalayan trips", "type": "video",
				"videoUrl": "https://videos.example.com/intro.mp4",
			}}})
		default:
			http.NotFound(w, r)
		}
	}
}

func TestBannerRoundTrip(t *testing.T) {
	be := &bannerBackend{}
	srv := httptest.NewServer(be.handler(t))
	defer srv.Close()
	client := apiclient.New(srv.URL)

	store := preview.NewStore()
	sc := store.Scope("tab-1")
	first, _ := sc.Create("banner.png", bytes.NewReader(pngFile(t)))

	f := &DestinationBannerForm{
		Title:       "Pokhara",
		PageName:    "pokhara",
		Description: "Lakeside city",
		Type:        models.BannerImage,
		Image:       FromServer(),
		Overview:    "Gateway to the Annapurnas",
		Highlights:  []models.Highlight{{Text: "Paragliding"}},
	}
	f.Image.Add(first.URL)
	s := &Submitter{Client: client, Notifier: &toast.Recorder{}, Source: sc}
	if _, err := s.Submit(context.Background(), f); err != nil {
		t.Fatalf("create: %v", err)
	}
	if be.created != 1 || be.files != 1 {
		t.Fatalf("expected one banner with one image, got %d and %d", be.created, be.files)
	}

	loaded, err := Load(context.Background(), client, resources.DestinationBanners, "b-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	edit, ok := loaded.(*DestinationBannerForm)
	if !ok {
		t.Fatalf("expected a destination banner form, got %T", loaded)
	}
	if edit.ID != "b-1" || len(edit.Image.Current) != 1 || len(edit.Image.New) != 0 || len(edit.Highlights) != 1 {
		t.Fatalf("unexpected edit form %+v", edit)
	}

	home, err := Load(context.Background(), client, resources.HomeBanners, "h-1")
	if err != nil {
		t.Fatalf("load home banner: %v", err)
	}
	if hb, ok := home.(*HomeBannerForm); !ok || hb.Type != models.BannerVideo || hb.VideoURL == "" {
		t.Fatalf("unexpected home banner form %+v", home)
	}

	ed, err := OpenEditor(context.Background(), client, sc, resources.DestinationBanners, "b-1")
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	second, _ := sc.Create("new.png", bytes.NewReader(pngFile(t)))
	if err := ed.Attach("image", second.URL); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := ed.Save(context.Background(), &Submitter{Client: client, Notifier: &toast.Recorder{}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if be.updated != 1 || be.files != 1 {
		t.Fatalf("expected one update with one image, got %d and %d", be.updated, be.files)
	}
	if len(be.toDelete) != 1 || be.toDelete[0] != "https://cdn.example.com/b.jpg" {
		t.Fatalf("old image should be deleted, got %v", be.toDelete)
	}
	if sc.Len() != 0 {
		t.Fatalf("saved previews should be released, %d left", sc.Len())
	}
}

func TestEditorKeepsImagesOutOfFieldUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"destination": map[string]any{
			"_id":          "d-1",
			"title":        "Pokhara",
			"description":  "Lakeside city",
			"thumbnail":    "https://cdn.example.com/thumb.jpg",
			"destinations": []map[string]any{{"caption": "Lake", "image": "https://cdn.example.com/1.jpg"}},
		}}})
	}))
	defer srv.Close()

	store := preview.NewStore()
	sc := store.Scope("tab-1")
	ed, err := OpenEditor(context.Background(), apiclient.New(srv.URL), sc, resources.Destinations, "d-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f := ed.Form.(*DestinationForm)

	pic, _ := store.Create("tab-1", "pic.png", bytes.NewReader(pngFile(t)))
	if err := ed.Attach(galleryField, pic.URL); err != nil {
		t.Fatalf("attach gallery: %v", err)
	}
	raw := json.RawMessage(`{"_id":"other","title":"Pokhara valley","thumbnail":{"current":[]},"destinations":[{"caption":"Phewa"},{"caption":"Sunset"}]}`)
	if err := ed.Update(raw); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.ID != "d-1" || f.Title != "Pokhara valley" || len(f.Thumbnail.Current) != 1 {
		t.Fatalf("update should change text only, got %+v", f)
	}
	if f.Gallery[0].Caption != "Phewa" || f.Gallery[1].Image != pic.URL {
		t.Fatalf("captions should change and images stay, got %+v", f.Gallery)
	}

	ed.Detach(galleryField, "", 0)
	ed.Detach(galleryField, "", 0)
	if len(f.Gallery) != 0 || len(f.RemovedImages) != 1 {
		t.Fatalf("unexpected gallery %+v removed %v", f.Gallery, f.RemovedImages)
	}
	if _, ok := store.Lookup(pic.URL); ok {
		t.Fatal("detached preview should be revoked")
	}

	a, _ := store.Create("tab-1", "a.png", bytes.NewReader(pngFile(t)))
	b, _ := store.Create("tab-1", "b.png", bytes.NewReader(pngFile(t)))
	ed.Attach("thumbnail", a.URL)
	ed.Attach("thumbnail", b.URL)
	if len(f.Thumbnail.New) != 1 || f.Thumbnail.New[0] != b.URL || len(f.Thumbnail.ToDelete) != 1 {
		t.Fatalf("thumbnail should hold only the last pick, got %+v", f.Thumbnail)
	}
	if _, ok := store.Lookup(a.URL); ok {
		t.Fatal("replaced pick should be revoked")
	}

	foreign, _ := store.Create("tab-2", "x.png", bytes.NewReader(pngFile(t)))
	if err := ed.Attach("thumbnail", foreign.URL); !errors.Is(err, preview.ErrNotFound) {
		t.Fatalf("another tab's preview should not attach, got %v", err)
	}
	if err := ed.Attach("banner", b.URL); !errors.Is(err, ErrNoImageField) {
		t.Fatalf("expected ErrNoImageField, got %v", err)
	}
	if err := ed.OpenRoom(""); !errors.Is(err, ErrNoRooms) {
		t.Fatalf("destinations have no rooms, got %v", err)
	}

	ed.Close()
	if _, ok := store.Lookup(b.URL); ok {
		t.Fatal("closing the editor should release unsaved previews")
	}
	if _, ok := store.Lookup(foreign.URL); !ok {
		t.Fatal("another tab's preview should survive")
	}
}
