package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tripdesk/apiclient"
	"tripdesk/models"
	"tripdesk/toast"

	"github.com/julienschmidt/httprouter"
)

func sampleBooking() map[string]any {
	return map[string]any{
		"_id": "bk-1", "status": "pending", "fullName": "Asha Gurung", "email": "asha@example.com",
		"adventureType": "trek", "adventureName": "Everest Base Camp", "adventureSlug": "ebc",
		"bookingDate": "2026-11-02", "totalPrice": 2400.5,
		"supplementaryConfigs": []map[string]any{{"title": "Porter", "price": 300, "quantity": 1}},
	}
}

type bookingBackend struct {
	mu      sync.Mutex
	status  string
	patches int
	query   string
}

func newBookingBackend(t *testing.T) (*bookingBackend, *httptest.Server) {
	b := &bookingBackend{status: "pending"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/booking/view/bk-1":
			bk := sampleBooking()
			bk["status"] = b.status
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"booking": bk}})
		case r.Method == http.MethodPatch && r.URL.Path == "/booking/update-status/bk-1":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			b.status = body["status"]
			b.patches++
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Status updated"})
		case r.URL.Path == "/booking/get-all":
			b.query = r.URL.RawQuery
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{
				"bookings":   []map[string]any{sampleBooking()},
				"pagination": map[string]any{"page": 1, "limit": 10, "totalPages": 1, "totalItems": 1},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Booking not found"})
		}
	}))
	return b, srv
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	be, srv := newBookingBackend(t)
	defer srv.Close()

	notes := &toast.Recorder{}
	svc := &Service{Client: apiclient.New(srv.URL), Notifier: notes}
	if err := svc.UpdateStatus(context.Background(), "bk-1", "cancelled"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if be.patches != 0 {
		t.Fatal("invalid status reached the backend")
	}
	if err := svc.UpdateStatus(context.Background(), "bk-1", models.StatusAccepted); err != nil {
		t.Fatal(err)
	}
	b, err := svc.View(context.Background(), "bk-1")
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != models.StatusAccepted || len(b.SupplementaryConfigs) != 1 {
		t.Fatalf("unexpected booking %+v", b)
	}
}

func TestVoucherAndExportArePDFs(t *testing.T) {
	var b models.Booking
	raw, _ := json.Marshal(sampleBooking())
	json.Unmarshal(raw, &b)

	voucher, err := Voucher(&b, "https://admin.example.com/bookings/bk-1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(voucher, []byte("%PDF-")) {
		t.Fatal("voucher is not a PDF")
	}

	many := make([]models.Booking, 60)
	for i := range many {
		many[i] = b
	}
	export, err := Export(many, "Bookings", time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(export, []byte("%PDF-")) {
		t.Fatal("export is not a PDF")
	}
}

func TestHandlers(t *testing.T) {
	be, srv := newBookingBackend(t)
	defer srv.Close()

	h := &Handlers{Client: apiclient.New(srv.URL), DashboardURL: "https://admin.example.com"}
	ps := httprouter.Params{{Key: "id", Value: "bk-1"}}

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, httptest.NewRequest(http.MethodPatch, "/api/bookings/bk-1/status", strings.NewReader(`{"status":"shipped"}`)), ps)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.UpdateStatus(rec, httptest.NewRequest(http.MethodPatch, "/api/bookings/bk-1/status", strings.NewReader(`{"status":"viewed"}`)), ps)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data models.Booking `json:"data"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Data.Status != models.StatusViewed {
		t.Fatalf("expected refreshed booking, got %+v", resp.Data)
	}

	rec = httptest.NewRecorder()
	h.Voucher(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/bk-1/voucher", nil), ps)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected voucher response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = httptest.NewRecorder()
	h.Voucher(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/nope/voucher", nil), httprouter.Params{{Key: "id", Value: "nope"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/api/bookings-export?page=2&status=accepted&bogus=1", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(be.query, "status=accepted") || strings.Contains(be.query, "bogus") || !strings.Contains(be.query, "page=2") {
		t.Fatalf("unexpected upstream query %q", be.query)
	}
}
