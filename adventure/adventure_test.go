package adventure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"tripdesk/apiclient"
	"tripdesk/forms"
	"tripdesk/toast"

	"github.com/julienschmidt/httprouter"
)

type priceBackend struct {
	mu         sync.Mutex
	price      map[string]any
	calls      []string
	name       string
	difficulty string
}

func (b *priceBackend) count(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func newPriceBackend(t *testing.T) (*priceBackend, *httptest.Server) {
	b := &priceBackend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/trek/specific/ebc":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{
				"trek": map[string]any{"_id": "trek-1", "slug": "ebc", "name": "Everest Base Camp", "difficultyLevel": "hard"},
			}})
		case r.URL.Path == "/get-booking-price/trek-1":
			if b.price == nil {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Booking price not found"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": b.price})
		case r.Method == http.MethodPost && r.URL.Path == "/add-booking-price":
			var in map[string]any
			json.NewDecoder(r.Body).Decode(&in)
			if in["adventureId"] != "trek-1" || in["adventureType"] != "trek" {
				t.Errorf("unexpected body %v", in)
			}
			in["_id"] = "bp-1"
			b.price = in
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Booking price added"})
		case r.Method == http.MethodPost && r.URL.Path == "/trek/edit/trek-1":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("multipart: %v", err)
			}
			b.name = r.FormValue("name")
			b.difficulty = r.FormValue("difficultyLevel")
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Trek updated"})
		case r.Method == http.MethodDelete && r.URL.Path == "/delete-booking-price/bp-1":
			b.price = nil
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		default:
			http.NotFound(w, r)
		}
	}))
	return b, srv
}

func TestWorkspacePriceLifecycle(t *testing.T) {
	be, srv := newPriceBackend(t)
	defer srv.Close()

	client := apiclient.New(srv.URL)
	notes := &toast.Recorder{}
	svc := &Service{Client: client, Submitter: &forms.Submitter{Client: client, Notifier: notes}}
	ctx := context.Background()

	ws, err := Open(ctx, svc, Trek, "ebc")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if ws.AvailableBookingPrice() {
		t.Fatal("no price expected yet")
	}
	if be.count("GET /tour/get-all-tour-types") != 0 {
		t.Fatal("treks do not need tour types")
	}

	ws.OpenMain()
	f := ws.OpenPriceForm()
	if ws.Main.IsOpen() || ws.Form != nil {
		t.Fatal("price form must close the main form")
	}
	if ws.PricePane.Mode() != forms.Adding {
		t.Fatalf("expected add mode, got %v", ws.PricePane.Mode())
	}

	f.SoloThreeStar = 1200
	if err := ws.SubmitPrice(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !ws.AvailableBookingPrice() || ws.Price.ID != "bp-1" {
		t.Fatalf("expected refreshed price, got %+v", ws.Price)
	}
	if ws.PricePane.IsOpen() {
		t.Fatal("panel should close after saving")
	}

	ws.OpenPriceForm()
	if ws.PricePane.Mode() != forms.Editing || ws.PricePane.ID() != "bp-1" || ws.PriceForm.SoloThreeStar != 1200 {
		t.Fatalf("expected edit of bp-1, got %+v", ws.PriceForm)
	}

	if err := ws.DeletePrice(ctx, false); !errors.Is(err, forms.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if be.count("DELETE") != 0 {
		t.Fatal("unconfirmed delete reached the backend")
	}
	if err := ws.DeletePrice(ctx, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ws.AvailableBookingPrice() {
		t.Fatal("price should be gone")
	}
}

func TestEmptyPriceSheetIsRejected(t *testing.T) {
	be, srv := newPriceBackend(t)
	defer srv.Close()

	client := apiclient.New(srv.URL)
	svc := &Service{Client: client, Submitter: &forms.Submitter{Client: client}}
	ws, err := Open(context.Background(), svc, Trek, "ebc")
	if err != nil {
		t.Fatal(err)
	}
	ws.OpenPriceForm()
	var verr *forms.ValidationError
	if err := ws.SubmitPrice(context.Background()); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if be.count("POST") != 0 {
		t.Fatal("invalid price sheet was sent")
	}
}

func TestPriceHandlers(t *testing.T) {
	_, srv := newPriceBackend(t)
	defer srv.Close()

	h := &Handlers{Client: apiclient.New(srv.URL)}
	ps := httprouter.Params{{Key: "kind", Value: "trek"}, {Key: "slug", Value: "ebc"}}

	rec := httptest.NewRecorder()
	h.UpdatePrice(rec, httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"soloThreeStar":10}`)), ps)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a price sheet, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.AddPrice(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"soloThreeStar":10,"adventureId":"spoofed"}`)), ps)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data State `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Data.AvailableBookingPrice || resp.Data.BookingPrice.AdventureID != "trek-1" {
		t.Fatalf("unexpected state %+v", resp.Data)
	}

	rec = httptest.NewRecorder()
	h.AddPrice(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"soloThreeStar":10}`)), ps)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a second sheet, got %d", rec.Code)
	}
}

func TestSaveMainKeepsRecordIdentity(t *testing.T) {
	be, srv := newPriceBackend(t)
	defer srv.Close()

	h := &Handlers{Client: apiclient.New(srv.URL)}
	ps := httprouter.Params{{Key: "kind", Value: "trek"}, {Key: "slug", Value: "ebc"}}
	body := `{"_id":"spoofed","kind":"tour","name":"Everest Base Camp Trek","country":"Nepal",
		"location":"Khumbu","cost":1500,"duration":"14 days","overview":"Classic trek",
		"idealTime":["Oct"],"inclusion":["Permits"],"exclusion":["Flights"],"highlights":["Kala Patthar"],
		"faq":[{"question":"Altitude?","answer":"5364m"}],"difficultyLevel":"hard",
		"thumbnail":{"current":["https://cdn.example.com/t.jpg"]},
		"gallery":{"current":["https://cdn.example.com/g.jpg"]}}`

	rec := httptest.NewRecorder()
	h.SaveMain(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), ps)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if be.count("POST /trek/edit/trek-1") != 1 {
		t.Fatalf("expected the trek update, got %v", be.calls)
	}
	if be.name != "Everest Base Camp Trek" || be.difficulty != "hard" {
		t.Fatalf("unexpected fields %q %q", be.name, be.difficulty)
	}

	var resp struct {
		Data State `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Main.IsOpen() || resp.Data.Form != nil {
		t.Fatalf("main form should close after saving, got %+v", resp.Data.Main)
	}

	rec = httptest.NewRecorder()
	h.SaveMain(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"trek"}`)), ps)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an empty form, got %d", rec.Code)
	}
}
