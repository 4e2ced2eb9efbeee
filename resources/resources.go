// Package resources maps dashboard screens onto the backend's REST paths.
// The paths are the backend's contract and are not uniform across resources.
package resources

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

type Endpoint struct {
	Method string
	Path   string
}

// With fills the ":id" or ":slug" placeholder of the path. The key is
// escaped as one path segment.
func (e Endpoint) With(key string) Endpoint {
	p := e.Path
	key = url.PathEscape(key)
	for _, ph := range []string{":id", ":slug", ":adventureId"} {
		p = strings.Replace(p, ph, key, 1)
	}
	return Endpoint{Method: e.Method, Path: p}
}

func (e Endpoint) Zero() bool { return e.Path == "" }

type Resource struct {
	Name string

	List     string
	ItemsKey string
	Filters  []string

	Get     Endpoint
	Create  Endpoint
	Update  Endpoint
	Delete  Endpoint
	Feature Endpoint

	Multipart bool
	Label     string
}

func (r *Resource) Featurable() bool { return !r.Feature.Zero() }

// Deletable is false for bookings, which are read/update only.
func (r *Resource) Deletable() bool { return !r.Delete.Zero() }

func get(p string) Endpoint   { return Endpoint{Method: http.MethodGet, Path: p} }
func post(p string) Endpoint  { return Endpoint{Method: http.MethodPost, Path: p} }
func put(p string) Endpoint   { return Endpoint{Method: http.MethodPut, Path: p} }
func patch(p string) Endpoint { return Endpoint{Method: http.MethodPatch, Path: p} }
func del(p string) Endpoint   { return Endpoint{Method: http.MethodDelete, Path: p} }

const (
	Destinations       = "destinations"
	Accommodations     = "accommodations"
	Dining             = "dining"
	Tours              = "tours"
	Treks              = "treks"
	Bookings           = "bookings"
	Ratings            = "ratings"
	Affiliates         = "affiliates"
	HomeBanners        = "home-banners"
	DestinationBanners = "destination-banners"
	Rooms              = "rooms"
	BookingPrices      = "booking-prices"
)

var table = map[string]*Resource{
	Destinations: {
		Name:      Destinations,
		Label:     "Destination",
		List:      "/destinations",
		ItemsKey:  "destinations",
		Get:       get("/destination/get/:id"),
		Create:    post("/destination/add-dest"),
		Update:    patch("/destination/edit-desc/:id"),
		Delete:    del("/destination/delete/:id"),
		Multipart: true,
	},
	Accommodations: {
		Name:      Accommodations,
		Label:     "Accommodation",
		List:      "/accommodation/get-all-accommodation",
		ItemsKey:  "accommodations",
		Filters:   []string{"country", "destination", "rating"},
		Get:       get("/accommodation/get-by/:slug"),
		Create:    post("/accommodation/add-accommodation"),
		Update:    put("/accommodation/edit/:id"),
		Delete:    del("/accommodation/delete/:id"),
		Feature:   patch("/accommodation/update/:id"),
		Multipart: true,
	},
	Dining: {
		Name:      Dining,
		Label:     "Fine dining",
		List:      "/finedining/get-all-details",
		ItemsKey:  "fineDinings",
		Filters:   []string{"country", "destination", "rating"},
		Get:       get("/finedining/get/:slug"),
		Create:    post("/finedining/add-finedining"),
		Update:    put("/finedining/edit/:id"),
		Delete:    del("/finedining/delete/:id"),
		Feature:   patch("/finedining/update/:id"),
		Multipart: true,
	},
	Tours: {
		Name:      Tours,
		Label:     "Tour",
		List:      "/tour/get-all-tour",
		ItemsKey:  "tours",
		Filters:   []string{"country", "tourType"},
		Get:       get("/tour/specific/:slug"),
		Create:    post("/tour/add-tour"),
		Update:    post("/tour/edit/:id"),
		Delete:    del("/tour/delete/:id"),
		Feature:   patch("/tour/update/:id"),
		Multipart: true,
	},
	Treks: {
		Name:      Treks,
		Label:     "Trek",
		List:      "/trek/get-all-trek",
		ItemsKey:  "treks",
		Filters:   []string{"country", "difficultyLevel"},
		Get:       get("/trek/specific/:slug"),
		Create:    post("/trek/add-trek"),
		Update:    post("/trek/edit/:id"),
		Delete:    del("/trek/delete/:id"),
		Feature:   patch("/trek/update/:id"),
		Multipart: true,
	},
	Bookings: {
		Name:     Bookings,
		Label:    "Booking",
		List:     "/booking/get-all",
		ItemsKey: "bookings",
		Filters:  []string{"status", "adventureType"},
		Get:      get("/booking/view/:id"),
		Update:   patch("/booking/update-status/:id"),
	},
	Ratings: {
		Name:     Ratings,
		Label:    "Rating",
		List:     "/rating/get-all",
		ItemsKey: "ratings",
		Filters:  []string{"ratingType"},
		Create:   post("/rating/add"),
		Update:   patch("/rating/edit/:id"),
		Delete:   del("/rating/delete/:id"),
	},
	Affiliates: {
		Name:     Affiliates,
		Label:    "Affiliate",
		List:     "/affiliate/get-all",
		ItemsKey: "affiliates",
		Filters:  []string{"country"},
		Create:   post("/affiliate/add"),
		Update:   patch("/affiliate/edit/:id"),
		Delete:   del("/affiliate/delete/:id"),
	},
	HomeBanners: {
		Name:      HomeBanners,
		Label:     "Banner",
		List:      "/banner/get-all-home",
		ItemsKey:  "banners",
		Get:       get("/banner/get-home-banner/:id"),
		Create:    post("/banner/add-home-banner"),
		Update:    patch("/banner/edit-home-banner/:id"),
		Delete:    del("/banner/delete/:id"),
		Multipart: true,
	},
	DestinationBanners: {
		Name:      DestinationBanners,
		Label:     "Destination banner",
		List:      "/banner/get-all-destination",
		ItemsKey:  "banners",
		Get:       get("/banner/get-destination-banner/:id"),
		Create:    post("/banner/add-destination-banner"),
		Update:    patch("/banner/edit-destination-banner/:id"),
		Delete:    del("/banner/delete/:id"),
		Multipart: true,
	},
	BookingPrices: {
		Name:   BookingPrices,
		Label:  "Booking price",
		Get:    get("/get-booking-price/:adventureId"),
		Create: post("/add-booking-price"),
		Update: patch("/edit-booking-price/:id"),
		Delete: del("/delete-booking-price/:id"),
	},
	Rooms: {
		Name:      Rooms,
		Label:     "Room",
		Create:    post("/room/add-room"),
		Update:    patch("/room/edit/:id"),
		Delete:    del("/room/delete/:id"),
		Multipart: true,
	},
}

// Lookup returns the descriptor for name.
func Lookup(name string) (*Resource, bool) {
	r, ok := table[name]
	return r, ok
}

// Listable names every resource that has a list screen.
func Listable() []string {
	var out []string
	for name, r := range table {
		if r.List != "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
