package forms

import (
	"strconv"
	"strings"

	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/resources"
)

// AdventureForm adds or edits a tour (Kind "tour", needs TourType) or a
// trek (Kind "trek", needs DifficultyLevel). Itinerary days are saved
// through their own endpoint and are not part of this form.
type AdventureForm struct {
	Kind            string       `json:"kind" validate:"oneof=tour trek"`
	ID              string       `json:"_id,omitempty"`
	Slug            string       `json:"slug,omitempty"`
	Name            string       `json:"name" validate:"required"`
	Country         string       `json:"country" validate:"required"`
	Location        string       `json:"location" validate:"required"`
	Cost            float64      `json:"cost" validate:"gt=0"`
	Duration        string       `json:"duration" validate:"required"`
	Overview        string       `json:"overview" validate:"required"`
	IdealTime       []string     `json:"idealTime" validate:"somefilled"`
	Inclusion       []string     `json:"inclusion" validate:"somefilled"`
	Exclusion       []string     `json:"exclusion" validate:"somefilled"`
	Highlights      []string     `json:"highlights" validate:"somefilled"`
	FAQ             []models.FAQ `json:"faq" validate:"somefilled"`
	TourType        string       `json:"tourType,omitempty" validate:"required_if=Kind tour"`
	DifficultyLevel string       `json:"difficultyLevel,omitempty" validate:"required_if=Kind trek"`
	Thumbnail       ImageSet     `json:"thumbnail"`
	RouteMap        ImageSet     `json:"routeMap"`
	Gallery         ImageSet     `json:"gallery"`
}

func AdventureFromModel(kind string, a models.Adventure) *AdventureForm {
	return &AdventureForm{
		Kind:            kind,
		ID:              a.ID,
		Slug:            a.Slug,
		Name:            a.Name,
		Country:         a.Country,
		Location:        a.Location,
		Cost:            a.Cost,
		Duration:        a.Duration,
		Overview:        a.Overview,
		IdealTime:       append([]string{}, a.IdealTime...),
		Inclusion:       append([]string{}, a.Inclusion...),
		Exclusion:       append([]string{}, a.Exclusion...),
		Highlights:      append([]string{}, a.Highlights...),
		FAQ:             append([]models.FAQ{}, a.FAQ...),
		TourType:        a.TourType,
		DifficultyLevel: a.DifficultyLevel,
		Thumbnail:       FromServer(a.Thumbnail),
		RouteMap:        FromServer(a.RouteMap),
		Gallery:         FromServer(a.Gallery...),
	}
}

func (f *AdventureForm) Resource() string {
	if f.Kind == "trek" {
		return resources.Treks
	}
	return resources.Tours
}

func (f *AdventureForm) Key() string { return f.ID }

func (f *AdventureForm) Target() resources.Endpoint {
	return target(f.Resource(), f.ID)
}

func (f *AdventureForm) Validate() error {
	e := check(f)
	e.requireImages("thumbnail", f.Thumbnail)
	e.requireImages("gallery", f.Gallery)
	return e.orNil()
}

func (f *AdventureForm) Payload(src preview.Source) (*Payload, error) {
	p := newPayload(src)
	p.field("name", strings.TrimSpace(f.Name))
	p.field("country", f.Country)
	p.field("location", f.Location)
	p.field("cost", strconv.FormatFloat(f.Cost, 'f', -1, 64))
	p.field("duration", f.Duration)
	p.field("overview", f.Overview)
	p.json("idealTime", compact(f.IdealTime))
	p.json("inclusion", compact(f.Inclusion))
	p.json("exclusion", compact(f.Exclusion))
	p.json("highlights", compact(f.Highlights))

	faq := []models.FAQ{}
	for _, q := range f.FAQ {
		if q.Filled() {
			faq = append(faq, q)
		}
	}
	p.json("faq", faq)

	if f.Kind == "trek" {
		p.field("difficultyLevel", f.DifficultyLevel)
	} else {
		p.field("tourType", f.TourType)
	}
	p.images("thumbnail", f.Thumbnail)
	p.images("routeMap", f.RouteMap)
	p.images("gallery", f.Gallery)
	return p.done()
}
