package forms

import (
	"context"
	"errors"

	"tripdesk/models"
	"tripdesk/preview"
)

var ErrPanelClosed = errors.New("no form is open")

// Rooms is the room section of the accommodation edit screen: a list of
// rooms plus at most one open add or edit form.
type Rooms struct {
	AccommodationID string        `json:"accommodationId"`
	Panel           Panel         `json:"panel"`
	Form            *RoomForm     `json:"form,omitempty"`
	List            []models.Room `json:"rooms"`
}

func NewRooms(accommodationID string, rooms []models.Room) *Rooms {
	return &Rooms{AccommodationID: accommodationID, List: rooms}
}

func (r *Rooms) OpenAdd(sc *preview.Scope) {
	r.discard(sc)
	r.Panel.OpenAdd()
	r.Form = &RoomForm{AccommodationID: r.AccommodationID, RoomPhotos: FromServer()}
}

// OpenEdit opens the form for room id. It reports false for an unknown id.
func (r *Rooms) OpenEdit(id string, sc *preview.Scope) bool {
	for _, room := range r.List {
		if room.ID == id {
			r.discard(sc)
			r.Panel.OpenEdit(id)
			r.Form = RoomFromModel(room, r.AccommodationID)
			return true
		}
	}
	return false
}

func (r *Rooms) Close(sc *preview.Scope) {
	r.discard(sc)
	r.Panel.Close()
}

// discard revokes previews picked in the open form that were never saved.
func (r *Rooms) discard(sc *preview.Scope) {
	if r.Form != nil && sc != nil {
		for _, u := range r.Form.RoomPhotos.New {
			sc.Revoke(u)
		}
	}
	r.Form = nil
}

// Save submits the open form and closes it on success.
func (r *Rooms) Save(ctx context.Context, s *Submitter) error {
	if !r.Panel.IsOpen() || r.Form == nil {
		return ErrPanelClosed
	}
	if _, err := s.Submit(ctx, r.Form); err != nil {
		return err
	}
	r.Form = nil
	r.Panel.Close()
	return nil
}
