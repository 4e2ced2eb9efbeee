package listview

import (
	"context"
	"fmt"

	"tripdesk/apiclient"
	"tripdesk/models"
	"tripdesk/resources"
)

// Open builds the list screen for a resource name.
func Open(ctx context.Context, client *apiclient.Client, name string, opts Options) (Screen, error) {
	res, ok := resources.Lookup(name)
	if !ok || res.List == "" {
		return nil, fmt.Errorf("unknown list %q", name)
	}
	switch name {
	case resources.Destinations:
		return New[models.Destination](ctx, client, res, opts), nil
	case resources.Accommodations:
		return New[models.Accommodation](ctx, client, res, opts), nil
	case resources.Dining:
		return New[models.FineDining](ctx, client, res, opts), nil
	case resources.Tours, resources.Treks:
		return New[models.Adventure](ctx, client, res, opts), nil
	case resources.Bookings:
		return New[models.Booking](ctx, client, res, opts), nil
	case resources.Ratings:
		return New[models.Rating](ctx, client, res, opts), nil
	case resources.Affiliates:
		return New[models.Affiliate](ctx, client, res, opts), nil
	case resources.HomeBanners, resources.DestinationBanners:
		return New[models.Banner](ctx, client, res, opts), nil
	}
	return nil, fmt.Errorf("no list screen for %q", name)
}
