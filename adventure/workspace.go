package adventure

import (
	"context"
	"errors"

	"tripdesk/forms"
	"tripdesk/models"
)

var ErrNoBookingPrice = errors.New("this adventure has no booking price")

// Workspace is one open tour or trek edit screen. The main form and the
// booking price form share the screen; opening one closes the other.
type Workspace struct {
	svc  *Service
	kind Kind
	slug string

	Adventure *models.Adventure
	Price     *models.BookingPrice
	TourTypes []models.TourType

	Main      forms.Panel
	Form      *forms.AdventureForm
	PricePane forms.Panel
	PriceForm *forms.BookingPriceForm
}

func Open(ctx context.Context, svc *Service, kind Kind, slug string) (*Workspace, error) {
	w := &Workspace{svc: svc, kind: kind, slug: slug, TourTypes: []models.TourType{}}
	if err := w.Refresh(ctx); err != nil {
		return nil, err
	}
	if kind == Tour {
		types, err := svc.TourTypes(ctx)
		if err != nil {
			return nil, err
		}
		w.TourTypes = types
	}
	return w, nil
}

// Refresh reloads the adventure and its price sheet.
func (w *Workspace) Refresh(ctx context.Context) error {
	a, err := w.svc.Get(ctx, w.kind, w.slug)
	if err != nil {
		return err
	}
	bp, err := w.svc.BookingPrice(ctx, a.ID)
	if err != nil {
		return err
	}
	w.Adventure, w.Price = a, bp
	return nil
}

func (w *Workspace) Kind() Kind { return w.kind }

func (w *Workspace) AvailableBookingPrice() bool { return w.Price != nil }

// OpenMain opens the adventure form and closes the price form.
func (w *Workspace) OpenMain() *forms.AdventureForm {
	w.PricePane.Close()
	w.PriceForm = nil
	w.Main.OpenEdit(w.Adventure.ID)
	w.Form = forms.AdventureFromModel(string(w.kind), *w.Adventure)
	return w.Form
}

// OpenPriceForm edits the existing price sheet, or starts a new one when
// there is none. The adventure form is closed.
func (w *Workspace) OpenPriceForm() *forms.BookingPriceForm {
	w.Main.Close()
	w.Form = nil
	if w.Price != nil {
		w.PricePane.OpenEdit(w.Price.ID)
		w.PriceForm = forms.BookingPriceFromModel(*w.Price)
	} else {
		w.PricePane.OpenAdd()
		w.PriceForm = &forms.BookingPriceForm{}
	}
	w.PriceForm.AdventureID = w.Adventure.ID
	w.PriceForm.AdventureType = string(w.kind)
	return w.PriceForm
}

func (w *Workspace) Close() {
	w.Main.Close()
	w.Form = nil
	w.PricePane.Close()
	w.PriceForm = nil
}

// SaveMain submits the adventure form and reloads.
func (w *Workspace) SaveMain(ctx context.Context) error {
	if !w.Main.IsOpen() || w.Form == nil {
		return forms.ErrPanelClosed
	}
	if _, err := w.svc.Submitter.Submit(ctx, w.Form); err != nil {
		return err
	}
	w.Close()
	return w.Refresh(ctx)
}

// SubmitPrice adds or updates the price sheet, depending on how the form
// was opened, and reloads.
func (w *Workspace) SubmitPrice(ctx context.Context) error {
	if !w.PricePane.IsOpen() || w.PriceForm == nil {
		return forms.ErrPanelClosed
	}
	var err error
	if w.PricePane.Mode() == forms.Editing {
		w.PriceForm.ID = w.PricePane.ID()
		err = w.svc.UpdateBookingPrice(ctx, w.PriceForm)
	} else {
		err = w.svc.AddBookingPrice(ctx, w.PriceForm)
	}
	if err != nil {
		return err
	}
	w.Close()
	return w.Refresh(ctx)
}

func (w *Workspace) DeletePrice(ctx context.Context, confirmed bool) error {
	if w.Price == nil {
		return ErrNoBookingPrice
	}
	if err := w.svc.DeleteBookingPrice(ctx, w.Price.ID, confirmed); err != nil {
		return err
	}
	w.Close()
	return w.Refresh(ctx)
}

// State is the JSON view of the screen.
type State struct {
	Kind                  Kind                    `json:"kind"`
	Adventure             *models.Adventure       `json:"adventure"`
	BookingPrice          *models.BookingPrice    `json:"bookingPrice"`
	AvailableBookingPrice bool                    `json:"availableBookingPrice"`
	TourTypes             []models.TourType       `json:"tourTypes"`
	Main                  forms.Panel             `json:"main"`
	Form                  *forms.AdventureForm    `json:"form,omitempty"`
	PricePanel            forms.Panel             `json:"pricePanel"`
	PriceForm             *forms.BookingPriceForm `json:"priceForm,omitempty"`
}

func (w *Workspace) State() State {
	return State{
		Kind:                  w.kind,
		Adventure:             w.Adventure,
		BookingPrice:          w.Price,
		AvailableBookingPrice: w.AvailableBookingPrice(),
		TourTypes:             w.TourTypes,
		Main:                  w.Main,
		Form:                  w.Form,
		PricePanel:            w.PricePane,
		PriceForm:             w.PriceForm,
	}
}
