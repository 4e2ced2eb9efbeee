package forms

import (
	"strings"

	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/resources"
)

type RatingForm struct {
	ID         string            `json:"_id,omitempty"`
	Rating     string            `json:"rating" validate:"required"`
	RatingType models.RatingType `json:"ratingType" validate:"ratingtype"`
}

func (f *RatingForm) Resource() string { return resources.Ratings }
func (f *RatingForm) Key() string      { return f.ID }

func (f *RatingForm) Target() resources.Endpoint {
	return target(resources.Ratings, f.ID)
}

func (f *RatingForm) Validate() error { return check(f).orNil() }

func (f *RatingForm) Payload(preview.Source) (*Payload, error) {
	return jsonPayload(models.Rating{Rating: strings.TrimSpace(f.Rating), RatingType: f.RatingType})
}

// BookingPriceForm edits the price sheet of one adventure.
type BookingPriceForm struct {
	ID            string `json:"_id,omitempty"`
	AdventureID   string `json:"adventureId" validate:"required"`
	AdventureType string `json:"adventureType" validate:"oneof=tour trek"`

	SoloThreeStar float64 `json:"soloThreeStar" validate:"gte=0"`
	SoloFourStar  float64 `json:"soloFourStar" validate:"gte=0"`
	SoloFiveStar  float64 `json:"soloFiveStar" validate:"gte=0"`

	SingleSupplementaryThreeStar float64 `json:"singleSupplementaryThreeStar" validate:"gte=0"`
	SingleSupplementaryFourStar  float64 `json:"singleSupplementaryFourStar" validate:"gte=0"`
	SingleSupplementaryFiveStar  float64 `json:"singleSupplementaryFiveStar" validate:"gte=0"`

	StandardThreeStar float64 `json:"standardThreeStar" validate:"gte=0"`
	StandardFourStar  float64 `json:"standardFourStar" validate:"gte=0"`
	StandardFiveStar  float64 `json:"standardFiveStar" validate:"gte=0"`
}

func BookingPriceFromModel(bp models.BookingPrice) *BookingPriceForm {
	f := BookingPriceForm(bp)
	return &f
}

func (f *BookingPriceForm) Model() models.BookingPrice {
	return models.BookingPrice(*f)
}

func (f *BookingPriceForm) Resource() string { return resources.BookingPrices }
func (f *BookingPriceForm) Key() string      { return f.ID }

func (f *BookingPriceForm) Target() resources.Endpoint {
	return target(resources.BookingPrices, f.ID)
}

func (f *BookingPriceForm) Validate() error {
	e := check(f)
	m := f.Model()
	if m.SoloThreeStar+m.SoloFourStar+m.SoloFiveStar+
		m.StandardThreeStar+m.StandardFourStar+m.StandardFiveStar == 0 {
		e.add("standardThreeStar", "Enter at least one price")
	}
	return e.orNil()
}

func (f *BookingPriceForm) Payload(preview.Source) (*Payload, error) {
	m := f.Model()
	m.ID = ""
	return jsonPayload(m)
}
