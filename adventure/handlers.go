package adventure

import (
	"context"
	"errors"
	"net/http"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/forms"
	"tripdesk/preview"
	"tripdesk/session"
	"tripdesk/toast"
	"tripdesk/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	Client   *apiclient.Client
	Previews *preview.Store
	Recorder activity.Recorder
	OnSaved  func(ctx context.Context, resource string)
}

func (h *Handlers) service(r *http.Request, notes toast.Notifier) *Service {
	client := h.Client.WithToken(session.Token(r.Context()))
	sub := &forms.Submitter{
		Client:   client,
		Notifier: notes,
		Recorder: h.Recorder,
		OnSaved:  h.OnSaved,
	}
	if h.Previews != nil {
		sub.Source = h.Previews
	}
	return &Service{Client: client, Submitter: sub}
}

func (h *Handlers) open(w http.ResponseWriter, r *http.Request, ps httprouter.Params, notes toast.Notifier) (*Workspace, bool) {
	kind, err := ParseKind(ps.ByName("kind"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	ws, err := Open(r.Context(), h.service(r, notes), kind, ps.ByName("slug"))
	if err != nil {
		status := http.StatusNotFound
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.Status != http.StatusNotFound {
			status = http.StatusBadGateway
		}
		utils.RespondWithError(w, status, apiclient.Message(err, err.Error()))
		return nil, false
	}
	return ws, true
}

func respond(w http.ResponseWriter, ws *Workspace, notes *toast.Recorder, err error) {
	body := utils.M{"success": err == nil, "toasts": notes.Toasts()}
	if ws != nil {
		body["data"] = ws.State()
	}
	status := http.StatusOK
	var verr *forms.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body["message"] = verr.UserMessage()
		body["errors"] = verr.Fields
	case errors.Is(err, forms.ErrNotConfirmed):
		status = http.StatusPreconditionRequired
		body["message"] = err.Error()
	case errors.Is(err, forms.ErrBusy):
		status = http.StatusConflict
		body["message"] = err.Error()
	case errors.Is(err, ErrNoBookingPrice):
		status = http.StatusNotFound
		body["message"] = err.Error()
	default:
		status = http.StatusBadGateway
		body["message"] = apiclient.Message(err, "Request failed")
	}
	utils.RespondWithJSON(w, status, body)
}

// Get serves GET /api/adventures/:kind/:slug.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	notes := &toast.Recorder{}
	ws, ok := h.open(w, r, ps, notes)
	if !ok {
		return
	}
	respond(w, ws, notes, nil)
}

// SaveMain serves POST /api/adventures/:kind/:slug: the posted adventure form
// replaces the one the workspace opens, keeping the record's id and kind.
func (h *Handlers) SaveMain(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in forms.AdventureForm
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid adventure data")
		return
	}
	notes := &toast.Recorder{}
	ws, ok := h.open(w, r, ps, notes)
	if !ok {
		return
	}
	f := ws.OpenMain()
	id, kind := f.ID, f.Kind
	*f = in
	f.ID, f.Kind = id, kind

	respond(w, ws, notes, ws.SaveMain(r.Context()))
}

// TourTypes serves GET /api/tour-types.
func (h *Handlers) TourTypes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	types, err := h.service(r, toast.Discard{}).TourTypes(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadGateway, apiclient.Message(err, "Failed to load tour types"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "data": types})
}

// savePrice copies the posted prices into the price form the workspace opens:
// an edit when the adventure already has a sheet, otherwise an add.
func (h *Handlers) savePrice(w http.ResponseWriter, r *http.Request, ps httprouter.Params, wantExisting bool) {
	var in forms.BookingPriceForm
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid booking price")
		return
	}
	notes := &toast.Recorder{}
	ws, ok := h.open(w, r, ps, notes)
	if !ok {
		return
	}
	switch {
	case wantExisting && !ws.AvailableBookingPrice():
		respond(w, ws, notes, ErrNoBookingPrice)
		return
	case !wantExisting && ws.AvailableBookingPrice():
		utils.RespondWithError(w, http.StatusConflict, "Booking price already exists")
		return
	}

	f := ws.OpenPriceForm()
	id, adventureID, kind := f.ID, f.AdventureID, f.AdventureType
	*f = in
	f.ID, f.AdventureID, f.AdventureType = id, adventureID, kind

	respond(w, ws, notes, ws.SubmitPrice(r.Context()))
}

// AddPrice serves POST /api/adventures/:kind/:slug/booking-price.
func (h *Handlers) AddPrice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.savePrice(w, r, ps, false)
}

// UpdatePrice serves PATCH /api/adventures/:kind/:slug/booking-price.
func (h *Handlers) UpdatePrice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.savePrice(w, r, ps, true)
}

// DeletePrice serves DELETE /api/adventures/:kind/:slug/booking-price?confirm=true.
func (h *Handlers) DeletePrice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	notes := &toast.Recorder{}
	ws, ok := h.open(w, r, ps, notes)
	if !ok {
		return
	}
	confirmed := utils.ParseBool(r.URL.Query().Get("confirm"))
	respond(w, ws, notes, ws.DeletePrice(r.Context(), confirmed))
}
