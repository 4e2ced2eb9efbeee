package forms

import (
	"context"
	"fmt"

	"tripdesk/apiclient"
	"tripdesk/models"
	"tripdesk/resources"
)

func getRecord(ctx context.Context, client *apiclient.Client, name, key string, out any) error {
	res, ok := resources.Lookup(name)
	if !ok || res.Get.Zero() {
		return fmt.Errorf("%s has no edit view", name)
	}
	ep := res.Get.With(key)
	env, err := client.Do(ctx, ep.Method, ep.Path, nil, nil, "")
	if err != nil {
		return err
	}
	return env.DecodeRecord(out)
}

func LoadDestination(ctx context.Context, client *apiclient.Client, id string) (*DestinationForm, error) {
	var d models.Destination
	if err := getRecord(ctx, client, resources.Destinations, id, &d); err != nil {
		return nil, err
	}
	return DestinationFromModel(d), nil
}

// LoadAccommodation starts an edit form with the server's images as
// current and nothing new.
func LoadAccommodation(ctx context.Context, client *apiclient.Client, slug string) (*AccommodationForm, error) {
	var a models.Accommodation
	if err := getRecord(ctx, client, resources.Accommodations, slug, &a); err != nil {
		return nil, err
	}
	return AccommodationFromModel(a), nil
}

func LoadDining(ctx context.Context, client *apiclient.Client, slug string) (*DiningForm, error) {
	var d models.FineDining
	if err := getRecord(ctx, client, resources.Dining, slug, &d); err != nil {
		return nil, err
	}
	return DiningFromModel(d), nil
}

func LoadAdventure(ctx context.Context, client *apiclient.Client, kind, slug string) (*AdventureForm, error) {
	name := resources.Tours
	if kind == "trek" {
		name = resources.Treks
	}
	var a models.Adventure
	if err := getRecord(ctx, client, name, slug, &a); err != nil {
		return nil, err
	}
	return AdventureFromModel(kind, a), nil
}

// LoadBanner fills the edit form of either banner kind; name picks which.
func LoadBanner(ctx context.Context, client *apiclient.Client, name, id string) (Form, error) {
	var b models.Banner
	if err := getRecord(ctx, client, name, id, &b); err != nil {
		return nil, err
	}
	if name == resources.DestinationBanners {
		return DestinationBannerFromModel(b), nil
	}
	return HomeBannerFromModel(b), nil
}

// Load returns the edit form of resource name for key.
func Load(ctx context.Context, client *apiclient.Client, name, key string) (Form, error) {
	switch name {
	case resources.Destinations:
		return LoadDestination(ctx, client, key)
	case resources.Accommodations:
		return LoadAccommodation(ctx, client, key)
	case resources.Dining:
		return LoadDining(ctx, client, key)
	case resources.Tours:
		return LoadAdventure(ctx, client, "tour", key)
	case resources.Treks:
		return LoadAdventure(ctx, client, "trek", key)
	case resources.HomeBanners, resources.DestinationBanners:
		return LoadBanner(ctx, client, name, key)
	}
	return nil, fmt.Errorf("%s has no edit view", name)
}

// Blank returns an empty form for resource name, ready to decode into.
func Blank(name string) (Form, error) {
	switch name {
	case resources.Destinations:
		return &DestinationForm{}, nil
	case resources.Accommodations:
		return &AccommodationForm{}, nil
	case resources.Dining:
		return &DiningForm{}, nil
	case resources.Tours:
		return &AdventureForm{Kind: "tour"}, nil
	case resources.Treks:
		return &AdventureForm{Kind: "trek"}, nil
	case resources.HomeBanners:
		return &HomeBannerForm{}, nil
	case resources.DestinationBanners:
		return &DestinationBannerForm{}, nil
	case resources.Ratings:
		return &RatingForm{}, nil
	case resources.Affiliates:
		return &AffiliateForm{}, nil
	case resources.Rooms:
		return &RoomForm{}, nil
	}
	return nil, fmt.Errorf("no form for %s", name)
}
