package booking

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/listview"
	"tripdesk/models"
	"tripdesk/resources"
	"tripdesk/session"
	"tripdesk/toast"
	"tripdesk/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	Client *apiclient.Client
	// DashboardURL is where voucher QR codes point.
	DashboardURL string
	Recorder     activity.Recorder
}

func (h *Handlers) service(r *http.Request, notes toast.Notifier) *Service {
	return &Service{
		Client:   h.Client.WithToken(session.Token(r.Context())),
		Notifier: notes,
		Recorder: h.Recorder,
	}
}

func (h *Handlers) link(id string) string {
	return h.DashboardURL + "/bookings/" + url.PathEscape(id)
}

func upstreamStatus(err error) int {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// View serves GET /api/bookings/:id.
func (h *Handlers) View(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.service(r, nil).View(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, upstreamStatus(err), apiclient.Message(err, "Failed to load booking"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "data": b})
}

// UpdateStatus serves PATCH /api/bookings/:id/status with {"status": ...}.
func (h *Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status models.BookingStatus `json:"status"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	notes := &toast.Recorder{}
	svc := h.service(r, notes)
	id := ps.ByName("id")

	if err := svc.UpdateStatus(r.Context(), id, body.Status); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrInvalidStatus) {
			status = http.StatusBadRequest
		}
		utils.RespondWithJSON(w, status, utils.M{
			"success": false,
			"message": apiclient.Message(err, err.Error()),
			"toasts":  notes.Toasts(),
		})
		return
	}

	b, err := svc.View(r.Context(), id)
	if err != nil {
		toast.Fail(notes, err, "Status saved, but the booking could not be reloaded")
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "data": b, "toasts": notes.Toasts()})
}

// Voucher serves GET /api/bookings/:id/voucher as a PDF download.
func (h *Handlers) Voucher(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.service(r, nil).View(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, upstreamStatus(err), apiclient.Message(err, "Failed to load booking"))
		return
	}
	pdf, err := Voucher(b, h.link(b.ID))
	if err != nil {
		log.Printf("[booking] voucher %s: %v", b.ID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	writePDF(w, "booking-"+b.ID+".pdf", pdf)
}

// Export serves GET /api/bookings-export with the list screen's query.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, _ := resources.Lookup(resources.Bookings)
	opts := utils.ParseQueryOptions(r, res.Filters...)
	q := listview.Query{Page: opts.Page, Limit: opts.Limit, Search: opts.Search, Filters: map[string]string{}}
	for k := range opts.Filters {
		q.Filters[k] = opts.Filters.Get(k)
	}

	bookings, pg, err := h.service(r, nil).Page(r.Context(), q)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadGateway, apiclient.Message(err, "Failed to load bookings"))
		return
	}
	title := "Bookings"
	if pg.TotalPages > 1 {
		title = "Bookings, page " + strconv.Itoa(q.Page) + " of " + strconv.Itoa(pg.TotalPages)
	}
	pdf, err := Export(bookings, title, time.Now())
	if err != nil {
		log.Printf("[booking] export: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	writePDF(w, "bookings.pdf", pdf)
}

func writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
