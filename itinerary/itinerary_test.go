package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tripdesk/apiclient"
	"tripdesk/forms"
	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/resources"
	"tripdesk/toast"

	"github.com/julienschmidt/httprouter"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestFourthSelectionIsRefused(t *testing.T) {
	notes := &toast.Recorder{}
	e := NewDayEditor(models.ItineraryDay{Day: 1, Title: "Arrival"}, nil, notes)
	for _, id := range []string{"a1", "a2", "a3"} {
		if err := e.Toggle(Accommodation, id); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}

	if err := e.Toggle(Accommodation, "a4"); !errors.Is(err, ErrSelectionLimit) {
		t.Fatalf("expected ErrSelectionLimit, got %v", err)
	}
	if got := e.Selected(Accommodation); len(got) != 3 || got[2] != "a3" {
		t.Fatalf("selection changed: %v", got)
	}
	toasts := notes.Toasts()
	if len(toasts) != 1 || toasts[0].Level != toast.LevelError {
		t.Fatalf("expected one alert, got %+v", toasts)
	}

	// dining has its own limit
	if err := e.Toggle(FineDining, "d1"); err != nil {
		t.Fatalf("dining toggle: %v", err)
	}
	// removing frees a slot
	if err := e.Toggle(Accommodation, "a2"); err != nil {
		t.Fatal(err)
	}
	if err := e.Toggle(Accommodation, "a4"); err != nil {
		t.Fatalf("expected a free slot, got %v", err)
	}
}

func TestSetPhotoStagesServerPhoto(t *testing.T) {
	store := preview.NewStore()
	sc := store.Scope("tab")
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	first, _ := sc.Create("one.png", bytes.NewReader(buf.Bytes()))
	second, _ := sc.Create("two.png", bytes.NewReader(buf.Bytes()))

	e := NewDayEditor(models.ItineraryDay{ItineraryDayPhoto: "https://cdn.example.com/day1.jpg"}, sc, nil)
	e.SetPhoto(first.URL)
	e.SetPhoto(second.URL)

	if len(e.RemovedPhotos) != 1 || e.RemovedPhotos[0] != "https://cdn.example.com/day1.jpg" {
		t.Fatalf("unexpected removed photos %v", e.RemovedPhotos)
	}
	if _, ok := store.Lookup(first.URL); ok {
		t.Fatal("replaced preview should be revoked")
	}
	if e.Photo != second.URL {
		t.Fatalf("expected second preview, got %q", e.Photo)
	}
}

func TestIncompleteLinksDoNotBlock(t *testing.T) {
	e := NewDayEditor(models.ItineraryDay{Day: 2, Title: "Hike", Description: "Up the hill"}, nil, nil)
	e.AddLink()
	e.AddLink()
	e.SetLink(0, "Map", "https://maps.example.com")
	e.SetLink(1, "Only text", "")

	if got := e.IncompleteLinks(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("unexpected incomplete links %v", got)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("partial links must not block: %v", err)
	}
	fd, _, err := e.Payload(nil)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := fd.Value("links")
	var links []models.Link
	json.Unmarshal([]byte(raw), &links)
	if len(links) != 1 || links[0].Text != "Map" {
		t.Fatalf("only complete links should be sent, got %v", links)
	}
}

func TestLoaderSharesCatalog(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		if r.URL.Path != "/accommodation/get-selected-data" || r.URL.Query().Get("limit") != "1000" {
			t.Errorf("unexpected request %s", r.URL)
		}
		writeJSON(w, map[string]any{"success": true, "data": map[string]any{"accommodations": []map[string]any{
			{"_id": "a1", "accommodationTitle": "Hotel Yak", "accommodationLocation": "Namche"},
			{"_id": "a2", "accommodationTitle": "Lakeside Inn", "accommodationLocation": "Pokhara"},
		}}})
	}))
	defer srv.Close()

	l := &Loader{Client: apiclient.New(srv.URL), Cache: NewMemoryCache(), TTL: time.Minute}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		c, err := l.Load(ctx, Accommodation)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.Filter("POKH"); len(got) != 1 || got[0].ID != "a2" {
			t.Fatalf("unexpected filter result %v", got)
		}
	}
	if hits != 1 {
		t.Fatalf("expected one backend fetch, got %d", hits)
	}

	l.Invalidate(ctx, resources.Accommodations)
	if _, err := l.Load(ctx, Accommodation); err != nil {
		t.Fatal(err)
	}
	if hits != 2 {
		t.Fatalf("expected refetch after invalidation, got %d", hits)
	}
}

func TestSharedCatalogSurvivesCancelledCaller(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		writeJSON(w, map[string]any{"success": true, "data": map[string]any{"accommodations": []map[string]any{
			{"_id": "a1", "accommodationTitle": "Hotel Yak"},
		}}})
	}))
	defer srv.Close()
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	defer unblock()

	l := &Loader{Client: apiclient.New(srv.URL), Cache: NewMemoryCache(), TTL: time.Minute}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Load(first, Accommodation)
		firstErr <- err
	}()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("fetch never started")
	}

	type result struct {
		c   *Catalog
		err error
	}
	second := make(chan result, 1)
	go func() {
		c, err := l.Load(context.Background(), Accommodation)
		second <- result{c, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("cancelled caller should see context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	unblock()
	select {
	case r := <-second:
		if r.err != nil {
			t.Fatalf("waiting caller failed: %v", r.err)
		}
		if !r.c.Has("a1") {
			t.Fatalf("unexpected catalog %+v", r.c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiting caller never got the catalog")
	}
}

type adventureBackend struct {
	mu    sync.Mutex
	days  []map[string]any
	calls []string
}

func (b *adventureBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/itinerary/add":
			if r.URL.Query().Get("packageSlug") != "ebc" {
				t.Errorf("missing packageSlug: %s", r.URL)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("multipart: %v", err)
			}
			b.days = append(b.days, map[string]any{"_id": "day-1", "day": 1, "title": r.FormValue("title")})
			writeJSON(w, map[string]any{"success": true, "message": "Itinerary added"})
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/itinerary/delete/"):
			b.days = nil
			writeJSON(w, map[string]any{"success": true})
		case r.Method == http.MethodGet && r.URL.Path == "/trek/specific/ebc":
			days := b.days
			if days == nil {
				days = []map[string]any{}
			}
			writeJSON(w, map[string]any{"success": true, "data": map[string]any{
				"trek": map[string]any{"_id": "trek-1", "slug": "ebc", "name": "Everest Base Camp", "itinerary": days},
			}})
		default:
			http.NotFound(w, r)
		}
	}
}

func TestAddReturnsRefreshedAdventure(t *testing.T) {
	be := &adventureBackend{}
	srv := httptest.NewServer(be.handler(t))
	defer srv.Close()

	notes := &toast.Recorder{}
	svc := &Service{Client: apiclient.New(srv.URL), Notifier: notes}
	e := NewDayEditor(models.ItineraryDay{Day: 1, Title: "Lukla", Description: "Fly in"}, nil, notes)
	e.Toggle(Accommodation, "a1")

	adv, err := svc.Add(context.Background(), "trek", "ebc", e)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(adv.Itinerary) != 1 || adv.Itinerary[0].Title != "Lukla" {
		t.Fatalf("expected the new day in the aggregate, got %+v", adv.Itinerary)
	}
	want := []string{"POST /itinerary/add", "GET /trek/specific/ebc"}
	if strings.Join(be.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected calls %v", be.calls)
	}
	if got := notes.Toasts(); len(got) != 1 || got[0].Message != "Itinerary added" {
		t.Fatalf("unexpected toasts %+v", got)
	}
}

func TestHandlers(t *testing.T) {
	be := &adventureBackend{}
	srv := httptest.NewServer(be.handler(t))
	defer srv.Close()

	h := &Handlers{Client: apiclient.New(srv.URL), Previews: preview.NewStore()}
	ps := httprouter.Params{{Key: "kind", Value: "trek"}, {Key: "slug", Value: "ebc"}}

	body := `{"day":{"day":1,"title":"Lukla","description":"Fly in","accommodation":["a1","a2","a3","a4"]}}`
	rec := httptest.NewRecorder()
	h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/adventures/trek/ebc/itinerary", strings.NewReader(body)), ps)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for four accommodations, got %d", rec.Code)
	}
	if len(be.calls) != 0 {
		t.Fatalf("no request expected, got %v", be.calls)
	}

	del := append(ps, httprouter.Param{Key: "id", Value: "day-1"})
	rec = httptest.NewRecorder()
	h.Delete(rec, httptest.NewRequest(http.MethodDelete, "/api/adventures/trek/ebc/itinerary/day-1", nil), del)
	if rec.Code != http.StatusPreconditionRequired || len(be.calls) != 0 {
		t.Fatalf("expected 428 and no request, got %d and %v", rec.Code, be.calls)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, httptest.NewRequest(http.MethodDelete, "/api/adventures/trek/ebc/itinerary/day-1?confirm=true", nil), del)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data models.Adventure `json:"data"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Data.ID != "trek-1" || len(resp.Data.Itinerary) != 0 {
		t.Fatalf("unexpected aggregate %+v", resp.Data)
	}
}

func TestHandlersRejectUnknownSelection(t *testing.T) {
	be := &adventureBackend{}
	adventures := be.handler(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/accommodation/get-selected-data" {
			writeJSON(w, map[string]any{"success": true, "data": map[string]any{"accommodations": []map[string]any{
				{"_id": "a1", "accommodationTitle": "Hotel Yak"},
			}}})
			return
		}
		adventures(w, r)
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)
	h := &Handlers{
		Client:   client,
		Previews: preview.NewStore(),
		Loader:   &Loader{Client: client, Cache: NewMemoryCache(), TTL: time.Minute},
	}
	ps := httprouter.Params{{Key: "kind", Value: "trek"}, {Key: "slug", Value: "ebc"}}

	body := `{"day":{"day":1,"title":"Lukla","description":"Fly in","accommodation":["a1","zz"]}}`
	rec := httptest.NewRecorder()
	h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/adventures/trek/ebc/itinerary", strings.NewReader(body)), ps)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an unknown accommodation, got %d", rec.Code)
	}
	var resp struct {
		Errors []forms.FieldError `json:"errors"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "accommodation" || !strings.Contains(resp.Errors[0].Message, "zz") {
		t.Fatalf("unexpected errors %+v", resp.Errors)
	}
	be.mu.Lock()
	calls := len(be.calls)
	be.mu.Unlock()
	if calls != 0 {
		t.Fatalf("nothing should be saved, got %v", be.calls)
	}

	body = `{"day":{"day":1,"title":"Lukla","description":"Fly in","accommodation":["a1"]}}`
	rec = httptest.NewRecorder()
	h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/adventures/trek/ebc/itinerary", strings.NewReader(body)), ps)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
