package forms

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/preview"
	"tripdesk/resources"
	"tripdesk/session"
	"tripdesk/toast"
	"tripdesk/utils"

	"github.com/julienschmidt/httprouter"
)

// Handlers expose the forms over HTTP. Files are referenced by the preview
// URLs returned from the preview upload endpoint.
type Handlers struct {
	Client   *apiclient.Client
	Previews *preview.Store
	Recorder activity.Recorder
	OnSaved  func(ctx context.Context, resource string)
}

func (h *Handlers) submitter(r *http.Request, notes toast.Notifier) *Submitter {
	return &Submitter{
		Client:   h.Client.WithToken(session.Token(r.Context())),
		Notifier: notes,
		Recorder: h.Recorder,
		Source:   h.Previews,
		OnSaved:  h.OnSaved,
	}
}

func respond(w http.ResponseWriter, data any, notes *toast.Recorder, err error) {
	body := utils.M{
		"success": err == nil,
		"data":    data,
		"toasts":  notes.Toasts(),
	}
	status := http.StatusOK
	var verr *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body["message"] = verr.UserMessage()
		body["errors"] = verr.Fields
	case errors.Is(err, ErrNotConfirmed):
		status = http.StatusPreconditionRequired
		body["message"] = err.Error()
	case errors.Is(err, ErrBusy):
		status = http.StatusConflict
		body["message"] = err.Error()
	default:
		status = http.StatusBadGateway
		body["message"] = apiclient.Message(err, "Request failed")
	}
	utils.RespondWithJSON(w, status, body)
}

// pinKey sets the record id of any form through its "_id" field.
func pinKey(f Form, id string) error {
	key, _ := json.Marshal(map[string]string{"_id": id})
	return json.Unmarshal(key, f)
}

// decodeForm reads the JSON body into a blank form for name and pins the
// record id from the path.
func decodeForm(r *http.Request, name, id string) (Form, error) {
	f, err := Blank(name)
	if err != nil {
		return nil, err
	}
	if err := utils.DecodeJSON(r, f); err != nil {
		return nil, err
	}
	if err := pinKey(f, id); err != nil {
		return nil, err
	}
	if af, ok := f.(*AdventureForm); ok {
		af.Kind = "tour"
		if name == resources.Treks {
			af.Kind = "trek"
		}
	}
	return f, nil
}

// Edit serves GET /api/forms/:resource/:key with the edit state.
func (h *Handlers) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	client := h.Client.WithToken(session.Token(r.Context()))
	f, err := Load(r.Context(), client, ps.ByName("resource"), ps.ByName("key"))
	if err != nil {
		log.Printf("[forms] load %s/%s: %v", ps.ByName("resource"), ps.ByName("key"), err)
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) {
			utils.RespondWithError(w, http.StatusBadGateway, apiclient.Message(err, "Failed to load"))
			return
		}
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "data": f})
}

func (h *Handlers) save(w http.ResponseWriter, r *http.Request, name, id string) {
	f, err := decodeForm(r, name, id)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	notes := &toast.Recorder{}
	env, err := h.submitter(r, notes).Submit(r.Context(), f)
	var data any
	if env != nil {
		data = env.Data
	}
	respond(w, data, notes, err)
}

// Create serves POST /api/forms/:resource.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.save(w, r, ps.ByName("resource"), "")
}

// Update serves POST /api/forms/:resource/:id.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.save(w, r, ps.ByName("resource"), ps.ByName("id"))
}

// room answers with the refreshed accommodation when ?slug= is given.
func (h *Handlers) room(w http.ResponseWriter, r *http.Request, notes *toast.Recorder, err error) {
	var data any
	if slug := r.URL.Query().Get("slug"); slug != "" && err == nil {
		client := h.Client.WithToken(session.Token(r.Context()))
		acc, lerr := LoadAccommodation(r.Context(), client, slug)
		if lerr != nil {
			toast.Fail(notes, lerr, "Failed to refresh accommodation")
		} else {
			data = acc
		}
	}
	respond(w, data, notes, err)
}

func (h *Handlers) saveRoom(w http.ResponseWriter, r *http.Request, accommodationID, roomID string) {
	f, err := decodeForm(r, resources.Rooms, roomID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	f.(*RoomForm).AccommodationID = accommodationID

	notes := &toast.Recorder{}
	_, err = h.submitter(r, notes).Submit(r.Context(), f)
	h.room(w, r, notes, err)
}

// AddRoom serves POST /api/accommodations/:id/rooms.
func (h *Handlers) AddRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.saveRoom(w, r, ps.ByName("id"), "")
}

// UpdateRoom serves POST /api/accommodations/:id/rooms/:roomId.
func (h *Handlers) UpdateRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.saveRoom(w, r, ps.ByName("id"), ps.ByName("roomId"))
}

// DeleteRoom serves DELETE /api/accommodations/:id/rooms/:roomId?confirm=true.
func (h *Handlers) DeleteRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	notes := &toast.Recorder{}
	confirmed := utils.ParseBool(r.URL.Query().Get("confirm"))
	err := h.submitter(r, notes).Remove(r.Context(), resources.Rooms, ps.ByName("roomId"), confirmed)
	h.room(w, r, notes, err)
}
