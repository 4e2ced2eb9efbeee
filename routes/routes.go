package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tripdesk/activity"
	"tripdesk/adventure"
	"tripdesk/apiclient"
	"tripdesk/booking"
	"tripdesk/forms"
	"tripdesk/itinerary"
	"tripdesk/listview"
	"tripdesk/live"
	"tripdesk/preview"
	"tripdesk/ratelim"
	"tripdesk/session"
	"tripdesk/toast"

	"github.com/julienschmidt/httprouter"
)

// Deps is everything the handlers share.
type Deps struct {
	Client       *apiclient.Client
	Hub          *toast.Hub
	Previews     *preview.Store
	Recorder     activity.Recorder
	Loader       *itinerary.Loader
	Secret       []byte
	DashboardURL string
	Debounce     time.Duration
	Base         context.Context
}

// changed runs after any successful write so cached lookups stay fresh.
func (d *Deps) changed(ctx context.Context, resource string) {
	if d.Loader != nil {
		d.Loader.Invalidate(ctx, resource)
	}
}

func (d *Deps) auth(h httprouter.Handle) httprouter.Handle {
	return session.Authenticate(d.Secret)(h)
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func RoutesWrapper(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, d *Deps) {
	router.GET("/health", Index)
	AddPreviewRoutes(router, rateLimiter, d)
	AddListRoutes(router, rateLimiter, d)
	AddFormRoutes(router, rateLimiter, d)
	AddItineraryRoutes(router, rateLimiter, d)
	AddAdventureRoutes(router, rateLimiter, d)
	AddBookingRoutes(router, rateLimiter, d)
	AddActivityRoutes(router, d)
	AddLiveRoutes(router, d)
}

func AddPreviewRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, d *Deps) {
	router.POST("/api/previews", rateLimiter.Limit(d.auth(preview.UploadHandler(d.Previews))))
	router.GET("/api/previews/:id", d.auth(preview.ServeHandler(d.Previews)))
	router.DELETE("/api/previews/:id", d.auth(preview.RevokeHandler(d.Previews)))
}

func AddListRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, d *Deps) {
	h := &listview.Handlers{Client: d.Client, Recorder: d.Recorder, OnMutation: d.changed}
	router.GET("/api/lists", d.auth(h.Index))
	router.GET("/api/lists/:resource", d.auth(h.List))
	router.DELETE("/api/lists/:resource/:id", rateLimiter.Limit(d.auth(h.Delete)))
	router.PATCH("/api/lists/:resource/:id/feature", rateLimiter.Limit(d.auth(h.Feature)))
}

func AddFormRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, d *Deps) {
	h := &forms.Handlers{Client: d.Client, Previews: d.Previews, Recorder: d.Recorder, OnSaved: d.changed}
	router.GET("/api/forms/:resource/:key", d.auth(h.Edit))
	router.POST("/api/forms/:resource", rateLimiter.Limit(d.auth(h.Create)))
	router.POST("/api/forms/:resource/:id", rateLimiter.Limit(d.auth(h.Update)))

	router.POST("/api/accommodations/:id/rooms", rateLimiter.Limit(d.auth(h.AddRoom)))
	router.POST("/api/accommodations/:id/rooms/:roomId", rateLimiter.Limit(d.auth(h.UpdateRoom)))
	router.DELETE("/api/accommodations/:id/rooms/:roomId", rateLimiter.Limit(d.auth(h.DeleteRoom)))
}

func AddItineraryRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, d *Deps) {
	h := &itinerary.Handlers{Client: d.Client, Previews: d.Previews, Loader: d.Loader, Recorder: d.Recorder}
	router.GET("/api/itinerary/catalog/:kind", d.auth(h.Catalog))
	router.POST("/api/adventures/:kind/:slug/itinerary", rateLimiter.Limit(d.auth(h.Add)))
	router.PATCH("/api/adventures/:kind/:slug/itinerary/:id", rateLimiter.Limit(d.auth(h.Update)))
	router.DELETE("/api/adventures/:kind/:slug/itinerary/:id", rateLimiter.Limit(d.auth(h.Delete)))
}

func AddAdventureRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, d *Deps) {
	h := &adventure.Handlers{Client: d.Client, Previews: d.Previews, Recorder: d.Recorder, OnSaved: d.changed}
	router.GET("/api/tour-types", d.auth(h.TourTypes))
	router.GET("/api/adventures/:kind/:slug", d.auth(h.Get))
	router.POST("/api/adventures/:kind/:slug", rateLimiter.Limit(d.auth(h.SaveMain)))
	router.POST("/api/adventures/:kind/:slug/booking-price", rateLimiter.Limit(d.auth(h.AddPrice)))
	router.PATCH("/api/adventures/:kind/:slug/booking-price", rateLimiter.Limit(d.auth(h.UpdatePrice)))
	router.DELETE("/api/adventures/:kind/:slug/booking-price", rateLimiter.Limit(d.auth(h.DeletePrice)))
}

func AddBookingRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, d *Deps) {
	h := &booking.Handlers{Client: d.Client, DashboardURL: d.DashboardURL, Recorder: d.Recorder}
	router.GET("/api/bookings/:id", d.auth(h.View))
	router.PATCH("/api/bookings/:id/status", rateLimiter.Limit(d.auth(h.UpdateStatus)))
	router.GET("/api/bookings/:id/voucher", d.auth(h.Voucher))
	router.GET("/api/bookings-export", d.auth(h.Export))
}

func AddActivityRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/activity", d.auth(activity.ListHandler(d.Recorder)))
}

func AddLiveRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/ws/dashboard", d.auth(live.Handler(live.Deps{
		Client:     d.Client,
		Hub:        d.Hub,
		Previews:   d.Previews,
		Recorder:   d.Recorder,
		OnMutation: d.changed,
		Debounce:   d.Debounce,
		Base:       d.Base,
	})))
}
