// Package adventure is the tour and trek edit screen: the record itself,
// the tour type list and the booking price sheet hanging off it.
package adventure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tripdesk/apiclient"
	"tripdesk/forms"
	"tripdesk/listview"
	"tripdesk/models"
	"tripdesk/resources"
)

type Kind string

const (
	Tour Kind = "tour"
	Trek Kind = "trek"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Tour, Trek:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown adventure kind %q", s)
}

// Resource is the list/form resource name for k.
func (k Kind) Resource() string {
	if k == Trek {
		return resources.Treks
	}
	return resources.Tours
}

// Prefix is the backend path prefix, /tour or /trek.
func (k Kind) Prefix() string { return "/" + string(k) }

// Service reads adventures and saves their booking prices. Saves go through
// one Submitter so a second click while saving is refused.
type Service struct {
	Client    *apiclient.Client
	Submitter *forms.Submitter
}

func (s *Service) Get(ctx context.Context, kind Kind, slug string) (*models.Adventure, error) {
	res, _ := resources.Lookup(kind.Resource())
	ep := res.Get.With(slug)
	env, err := s.Client.Do(ctx, ep.Method, ep.Path, nil, nil, "")
	if err != nil {
		return nil, err
	}
	var a models.Adventure
	if err := env.DecodeRecord(&a); err != nil {
		return nil, err
	}
	if a.ID == "" {
		return nil, fmt.Errorf("%s %q not found", kind, slug)
	}
	return &a, nil
}

func (s *Service) TourTypes(ctx context.Context) ([]models.TourType, error) {
	env, err := s.Client.Do(ctx, http.MethodGet, Tour.Prefix()+"/get-all-tour-types", nil, nil, "")
	if err != nil {
		return nil, err
	}
	types, _, err := listview.DecodeList[models.TourType](env.Data, "tourTypes")
	return types, err
}

// BookingPrice returns the price sheet of adventureID, or nil when it has
// none yet.
func (s *Service) BookingPrice(ctx context.Context, adventureID string) (*models.BookingPrice, error) {
	res, _ := resources.Lookup(resources.BookingPrices)
	ep := res.Get.With(adventureID)
	env, err := s.Client.Do(ctx, ep.Method, ep.Path, nil, nil, "")
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	var bp models.BookingPrice
	if err := env.DecodeRecord(&bp); err != nil {
		return nil, err
	}
	if bp.ID == "" {
		return nil, nil
	}
	return &bp, nil
}

func (s *Service) AddBookingPrice(ctx context.Context, f *forms.BookingPriceForm) error {
	f.ID = ""
	_, err := s.Submitter.Submit(ctx, f)
	return err
}

func (s *Service) UpdateBookingPrice(ctx context.Context, f *forms.BookingPriceForm) error {
	if f.ID == "" {
		return errors.New("booking price has no id")
	}
	_, err := s.Submitter.Submit(ctx, f)
	return err
}

func (s *Service) DeleteBookingPrice(ctx context.Context, id string, confirmed bool) error {
	return s.Submitter.Remove(ctx, resources.BookingPrices, id, confirmed)
}
