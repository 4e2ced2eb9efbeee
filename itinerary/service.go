package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/forms"
	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/resources"
	"tripdesk/toast"
)

const resourceName = "itinerary"

// Service saves days and answers with the adventure as it is after the
// change, so callers never refetch on their own.
type Service struct {
	Client   *apiclient.Client
	Notifier toast.Notifier
	Recorder activity.Recorder
	Source   preview.Source
}

func (s *Service) notifier() toast.Notifier {
	if s.Notifier == nil {
		return toast.Discard{}
	}
	return s.Notifier
}

func adventureResource(kind string) (*resources.Resource, error) {
	name := resources.Tours
	switch kind {
	case "tour":
	case "trek":
		name = resources.Treks
	default:
		return nil, fmt.Errorf("unknown adventure kind %q", kind)
	}
	res, _ := resources.Lookup(name)
	return res, nil
}

// Adventure loads the tour or trek with its itinerary.
func (s *Service) Adventure(ctx context.Context, kind, slug string) (*models.Adventure, error) {
	res, err := adventureResource(kind)
	if err != nil {
		return nil, err
	}
	ep := res.Get.With(slug)
	env, err := s.Client.Do(ctx, ep.Method, ep.Path, nil, nil, "")
	if err != nil {
		return nil, err
	}
	var a models.Adventure
	if err := env.DecodeRecord(&a); err != nil {
		return nil, err
	}
	if a.Itinerary == nil {
		a.Itinerary = []models.ItineraryDay{}
	}
	return &a, nil
}

func (s *Service) save(ctx context.Context, kind, slug string, e *DayEditor, method, path string, query url.Values, action string) (*models.Adventure, error) {
	n := s.notifier()
	if _, err := adventureResource(kind); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		toast.Fail(n, err, "Please fill in all required fields")
		return nil, err
	}
	fd, used, err := e.Payload(s.Source)
	if err != nil {
		toast.Fail(n, err, "Could not read the selected photo")
		return nil, err
	}
	env, err := s.Client.SendForm(ctx, method, path, query, fd, nil)
	if err != nil {
		log.Printf("[itinerary] %s %s: %v", method, path, err)
		toast.Fail(n, err, "Failed to save itinerary")
		return nil, err
	}

	verb := "updated"
	if action == activity.Create {
		verb = "added"
	}
	msg := "Itinerary " + verb + " successfully"
	if env.Message != "" {
		msg = env.Message
	}
	n.Success(msg)

	if r, ok := s.Source.(revoker); ok {
		for _, u := range used {
			r.Revoke(u)
		}
	}
	activity.Log(ctx, s.Recorder, action, resourceName, slug, fmt.Sprintf("day %d", e.Day.Day))
	return s.refetch(ctx, kind, slug)
}

func (s *Service) refetch(ctx context.Context, kind, slug string) (*models.Adventure, error) {
	a, err := s.Adventure(ctx, kind, slug)
	if err != nil {
		toast.Fail(s.notifier(), err, "Saved, but the itinerary could not be reloaded")
		return nil, err
	}
	return a, nil
}

// Add posts a new day to the adventure identified by slug.
func (s *Service) Add(ctx context.Context, kind, slug string, e *DayEditor) (*models.Adventure, error) {
	q := url.Values{"packageSlug": {slug}}
	return s.save(ctx, kind, slug, e, http.MethodPost, "/itinerary/add", q, activity.Create)
}

func (s *Service) Update(ctx context.Context, kind, slug string, e *DayEditor) (*models.Adventure, error) {
	if e.Day.ID == "" {
		return nil, errors.New("itinerary day has no id")
	}
	path := "/itinerary/edit/" + url.PathEscape(e.Day.ID)
	return s.save(ctx, kind, slug, e, http.MethodPatch, path, nil, activity.Update)
}

func (s *Service) Delete(ctx context.Context, kind, slug, id string, confirmed bool) (*models.Adventure, error) {
	if _, err := adventureResource(kind); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, forms.ErrNotConfirmed
	}
	n := s.notifier()
	env, err := s.Client.Delete(ctx, "/itinerary/delete/"+url.PathEscape(id))
	if err != nil {
		toast.Fail(n, err, "Failed to delete itinerary")
		return nil, err
	}
	msg := "Itinerary deleted successfully"
	if env.Message != "" {
		msg = env.Message
	}
	n.Success(msg)
	activity.Log(ctx, s.Recorder, activity.Delete, resourceName, slug, id)
	return s.refetch(ctx, kind, slug)
}
