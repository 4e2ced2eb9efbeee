package forms

import (
	"strconv"
	"strings"

	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/resources"
)

// compact drops blank entries from a list input.
func compact(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type AccommodationForm struct {
	ID          string        `json:"_id,omitempty"`
	Slug        string        `json:"slug,omitempty"`
	Title       string        `json:"accommodationTitle" validate:"required"`
	Location    string        `json:"accommodationLocation" validate:"required"`
	Rating      string        `json:"accommodationRating" validate:"required"`
	Country     string        `json:"country" validate:"required"`
	Destination string        `json:"destination" validate:"required"`
	Features    []string      `json:"accommodationFeatures" validate:"somefilled"`
	Amenities   []string      `json:"accommodationAmenities" validate:"somefilled"`
	IsActivated bool          `json:"isActivated"`
	Logo        ImageSet      `json:"logo"`
	Pics        ImageSet      `json:"accommodationPics"`
	Rooms       []models.Room `json:"rooms,omitempty"`
}

func AccommodationFromModel(a models.Accommodation) *AccommodationForm {
	return &AccommodationForm{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.AccommodationTitle,
		Location:    a.AccommodationLocation,
		Rating:      a.AccommodationRating,
		Country:     a.Country,
		Destination: a.Destination,
		Features:    append([]string{}, a.AccommodationFeatures...),
		Amenities:   append([]string{}, a.AccommodationAmenities...),
		IsActivated: a.IsActivated,
		Logo:        FromServer(a.Logo),
		Pics:        FromServer(a.AccommodationPics...),
		Rooms:       a.Rooms,
	}
}

func (f *AccommodationForm) Resource() string { return resources.Accommodations }
func (f *AccommodationForm) Key() string      { return f.ID }

func (f *AccommodationForm) Target() resources.Endpoint {
	return target(resources.Accommodations, f.ID)
}

func (f *AccommodationForm) Validate() error {
	e := check(f)
	e.requireImages("logo", f.Logo)
	e.requireImages("accommodationPics", f.Pics)
	return e.orNil()
}

func (f *AccommodationForm) Payload(src preview.Source) (*Payload, error) {
	p := newPayload(src)
	p.field("accommodationTitle", strings.TrimSpace(f.Title))
	p.field("accommodationLocation", f.Location)
	p.field("accommodationRating", f.Rating)
	p.field("country", f.Country)
	p.field("destination", f.Destination)
	p.field("isActivated", strconv.FormatBool(f.IsActivated))
	p.json("accommodationFeatures", compact(f.Features))
	p.json("accommodationAmenities", compact(f.Amenities))
	p.images("logo", f.Logo)
	p.images("accommodationPics", f.Pics)
	return p.done()
}

type RoomForm struct {
	ID              string   `json:"_id,omitempty"`
	AccommodationID string   `json:"accommodation" validate:"required"`
	RoomTitle       string   `json:"roomTitle" validate:"required"`
	RoomStandard    string   `json:"roomStandard" validate:"required"`
	RoomDescription string   `json:"roomDescription" validate:"required"`
	RoomFacilities  []string `json:"roomFacilities" validate:"somefilled"`
	RoomPhotos      ImageSet `json:"roomPhotos"`
}

func RoomFromModel(r models.Room, accommodationID string) *RoomForm {
	return &RoomForm{
		ID:              r.ID,
		AccommodationID: accommodationID,
		RoomTitle:       r.RoomTitle,
		RoomStandard:    r.RoomStandard,
		RoomDescription: r.RoomDescription,
		RoomFacilities:  append([]string{}, r.RoomFacilities...),
		RoomPhotos:      FromServer(r.RoomPhotos...),
	}
}

func (f *RoomForm) Resource() string { return resources.Rooms }
func (f *RoomForm) Key() string      { return f.ID }

func (f *RoomForm) Target() resources.Endpoint {
	return target(resources.Rooms, f.ID)
}

func (f *RoomForm) Validate() error {
	e := check(f)
	e.requireImages("roomPhotos", f.RoomPhotos)
	return e.orNil()
}

func (f *RoomForm) Payload(src preview.Source) (*Payload, error) {
	p := newPayload(src)
	p.field("accommodation", f.AccommodationID)
	p.field("roomTitle", strings.TrimSpace(f.RoomTitle))
	p.field("roomStandard", f.RoomStandard)
	p.field("roomDescription", f.RoomDescription)
	p.json("roomFacilities", compact(f.RoomFacilities))
	p.images("roomPhotos", f.RoomPhotos)
	return p.done()
}

// DiningForm edits a fine-dining venue; Amenities are its cuisines.
type DiningForm struct {
	ID          string   `json:"_id,omitempty"`
	Slug        string   `json:"slug,omitempty"`
	Title       string   `json:"title" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Rating      string   `json:"rating" validate:"required"`
	Country     string   `json:"country" validate:"required"`
	Destination string   `json:"destination" validate:"required"`
	Features    []string `json:"features" validate:"somefilled"`
	Amenities   []string `json:"amenities" validate:"somefilled"`
	IsActivated bool     `json:"isActivated"`
	Logo        ImageSet `json:"logo"`
	Pics        ImageSet `json:"pics"`
}

func DiningFromModel(d models.FineDining) *DiningForm {
	return &DiningForm{
		ID:          d.ID,
		Slug:        d.Slug,
		Title:       d.Title,
		Location:    d.Location,
		Rating:      d.Rating,
		Country:     d.Country,
		Destination: d.Destination,
		Features:    append([]string{}, d.Features...),
		Amenities:   append([]string{}, d.Amenities...),
		IsActivated: d.IsActivated,
		Logo:        FromServer(d.Logo),
		Pics:        FromServer(d.Pics...),
	}
}

func (f *DiningForm) Resource() string { return resources.Dining }
func (f *DiningForm) Key() string      { return f.ID }

func (f *DiningForm) Target() resources.Endpoint {
	return target(resources.Dining, f.ID)
}

func (f *DiningForm) Validate() error {
	e := check(f)
	e.requireImages("logo", f.Logo)
	e.requireImages("pics", f.Pics)
	return e.orNil()
}

func (f *DiningForm) Payload(src preview.Source) (*Payload, error) {
	p := newPayload(src)
	p.field("title", strings.TrimSpace(f.Title))
	p.field("location", f.Location)
	p.field("rating", f.Rating)
	p.field("country", f.Country)
	p.field("destination", f.Destination)
	p.field("isActivated", strconv.FormatBool(f.IsActivated))
	p.json("features", compact(f.Features))
	p.json("amenities", compact(f.Amenities))
	p.images("logo", f.Logo)
	p.images("pics", f.Pics)
	return p.done()
}
