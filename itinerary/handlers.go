package itinerary

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/forms"
	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/session"
	"tripdesk/toast"
	"tripdesk/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	Client   *apiclient.Client
	Previews *preview.Store
	Loader   *Loader
	Recorder activity.Recorder
}

// dayRequest is a day as the browser sends it. Photo is a preview URL.
type dayRequest struct {
	Day           models.ItineraryDay `json:"day"`
	Photo         string              `json:"photo"`
	RemovedPhotos []string            `json:"removedPhotos"`
}

// editor replays the requested selection through Toggle so the per-day
// limit holds for API callers too.
func (req dayRequest) editor(previews revoker, notes toast.Notifier) (*DayEditor, error) {
	day := req.Day
	picks := map[Kind][]string{Accommodation: day.Accommodation, FineDining: day.FineDining}
	day.Accommodation, day.FineDining = nil, nil

	e := NewDayEditor(day, previews, notes)
	for _, kind := range []Kind{Accommodation, FineDining} {
		for _, id := range picks[kind] {
			if slices.Contains(e.Selected(kind), id) {
				continue
			}
			if err := e.Toggle(kind, id); err != nil {
				return nil, err
			}
		}
	}
	e.RemovedPhotos = append(e.RemovedPhotos, req.RemovedPhotos...)
	if req.Photo != "" {
		e.SetPhoto(req.Photo)
	}
	return e, nil
}

// checkSelection refuses picks that are not in the catalogs the editor
// offers. Without a loader nothing is checked.
func (h *Handlers) checkSelection(ctx context.Context, e *DayEditor) error {
	if h.Loader == nil {
		return nil
	}
	verr := &forms.ValidationError{}
	for _, kind := range []Kind{Accommodation, FineDining} {
		ids := e.Selected(kind)
		if len(ids) == 0 {
			continue
		}
		c, err := h.Loader.Load(ctx, kind)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if !c.Has(id) {
				verr.Fields = append(verr.Fields, forms.FieldError{Field: string(kind), Message: "unknown " + string(kind) + " " + id})
			}
		}
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func (h *Handlers) service(r *http.Request, notes toast.Notifier) *Service {
	return &Service{
		Client:   h.Client.WithToken(session.Token(r.Context())),
		Notifier: notes,
		Recorder: h.Recorder,
		Source:   h.Previews,
	}
}

func respond(w http.ResponseWriter, data any, notes *toast.Recorder, err error) {
	body := utils.M{"success": err == nil, "data": data, "toasts": notes.Toasts()}
	status := http.StatusOK
	var verr *forms.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body["message"] = verr.UserMessage()
		body["errors"] = verr.Fields
	case errors.Is(err, ErrSelectionLimit):
		status = http.StatusUnprocessableEntity
		body["message"] = err.Error()
	case errors.Is(err, forms.ErrNotConfirmed):
		status = http.StatusPreconditionRequired
		body["message"] = err.Error()
	default:
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) {
			status = http.StatusBadGateway
		} else {
			status = http.StatusBadRequest
		}
		body["message"] = apiclient.Message(err, "Request failed")
	}
	utils.RespondWithJSON(w, status, body)
}

// Catalog serves GET /api/itinerary/catalog/:kind?search=.
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	kind, err := ParseKind(ps.ByName("kind"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	c, err := h.Loader.Load(r.Context(), kind)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadGateway, apiclient.Message(err, "Failed to load catalog"))
		return
	}
	entries := c.Filter(r.URL.Query().Get("search"))
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"data":    utils.M{"kind": kind, "entries": entries, "total": len(c.Entries)},
	})
}

func (h *Handlers) save(w http.ResponseWriter, r *http.Request, ps httprouter.Params, id string) {
	var req dayRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid itinerary data")
		return
	}
	notes := &toast.Recorder{}
	e, err := req.editor(h.Previews, notes)
	if err == nil {
		err = h.checkSelection(r.Context(), e)
	}
	if err != nil {
		respond(w, nil, notes, err)
		return
	}
	svc := h.service(r, notes)
	kind, slug := ps.ByName("kind"), ps.ByName("slug")

	var adv *models.Adventure
	if id == "" {
		adv, err = svc.Add(r.Context(), kind, slug, e)
	} else {
		e.Day.ID = id
		adv, err = svc.Update(r.Context(), kind, slug, e)
	}
	respond(w, adv, notes, err)
}

// Add serves POST /api/adventures/:kind/:slug/itinerary.
func (h *Handlers) Add(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.save(w, r, ps, "")
}

// Update serves PATCH /api/adventures/:kind/:slug/itinerary/:id.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.save(w, r, ps, ps.ByName("id"))
}

// Delete serves DELETE /api/adventures/:kind/:slug/itinerary/:id?confirm=true.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	notes := &toast.Recorder{}
	confirmed := utils.ParseBool(r.URL.Query().Get("confirm"))
	adv, err := h.service(r, notes).Delete(r.Context(), ps.ByName("kind"), ps.ByName("slug"), ps.ByName("id"), confirmed)
	respond(w, adv, notes, err)
}
