// Package booking shows customer bookings, moves them through their status
// and prints them. Bookings are never created or deleted from the dashboard.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/listview"
	"tripdesk/models"
	"tripdesk/resources"
	"tripdesk/toast"
)

var ErrInvalidStatus = errors.New("status must be one of pending, viewed, accepted, rejected")

type Service struct {
	Client   *apiclient.Client
	Notifier toast.Notifier
	Recorder activity.Recorder
}

func (s *Service) notifier() toast.Notifier {
	if s.Notifier == nil {
		return toast.Discard{}
	}
	return s.Notifier
}

func (s *Service) View(ctx context.Context, id string) (*models.Booking, error) {
	res, _ := resources.Lookup(resources.Bookings)
	ep := res.Get.With(id)
	env, err := s.Client.Do(ctx, ep.Method, ep.Path, nil, nil, "")
	if err != nil {
		return nil, err
	}
	var b models.Booking
	if err := env.DecodeRecord(&b); err != nil {
		return nil, err
	}
	if b.ID == "" {
		return nil, fmt.Errorf("booking %q not found", id)
	}
	if b.SupplementaryConfigs == nil {
		b.SupplementaryConfigs = []models.SupplementaryConfig{}
	}
	return &b, nil
}

// UpdateStatus sets the status of booking id. Unknown statuses never reach
// the backend.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	n := s.notifier()
	if !status.Valid() {
		n.Error(ErrInvalidStatus.Error())
		return ErrInvalidStatus
	}
	res, _ := resources.Lookup(resources.Bookings)
	ep := res.Update.With(id)
	env, err := s.Client.SendJSON(ctx, ep.Method, ep.Path, nil, map[string]string{"status": string(status)}, nil)
	if err != nil {
		log.Printf("[booking] status %s -> %s: %v", id, status, err)
		toast.Fail(n, err, "Failed to update booking status")
		return err
	}
	msg := "Booking status updated to " + string(status)
	if env.Message != "" {
		msg = env.Message
	}
	n.Success(msg)
	activity.Log(ctx, s.Recorder, activity.Status, resources.Bookings, id, string(status))
	return nil
}

// Page fetches one page of the booking list with the same query the list
// screen uses.
func (s *Service) Page(ctx context.Context, q listview.Query) ([]models.Booking, models.Pagination, error) {
	res, _ := resources.Lookup(resources.Bookings)
	env, err := s.Client.Do(ctx, http.MethodGet, res.List, q.Values(), nil, "")
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return listview.DecodeList[models.Booking](env.Data, res.ItemsKey)
}
