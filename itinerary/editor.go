// Package itinerary edits the day-by-day schedule of a tour or trek. Days
// are saved through their own endpoints; every save answers with the
// refreshed adventure.
package itinerary

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"tripdesk/apiclient"
	"tripdesk/forms"
	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/toast"
)

const MaxPerKind = 3

var ErrSelectionLimit = errors.New("selection limit reached")

type revoker interface {
	Revoke(url string) bool
}

// DayEditor holds one day while it is being added or edited.
type DayEditor struct {
	Day models.ItineraryDay `json:"day"`
	// Photo is a local preview replacing the server photo, if any.
	Photo         string   `json:"photo,omitempty"`
	RemovedPhotos []string `json:"removedPhotos"`

	previews revoker
	notes    toast.Notifier
}

// NewDayEditor starts from day; previews releases replaced local photos and
// notes receives the selection alerts. Both may be nil.
func NewDayEditor(day models.ItineraryDay, previews revoker, notes toast.Notifier) *DayEditor {
	if day.Accommodation == nil {
		day.Accommodation = []string{}
	}
	if day.FineDining == nil {
		day.FineDining = []string{}
	}
	if day.Links == nil {
		day.Links = []models.Link{}
	}
	if notes == nil {
		notes = toast.Discard{}
	}
	return &DayEditor{Day: day, RemovedPhotos: []string{}, previews: previews, notes: notes}
}

func (e *DayEditor) list(kind Kind) *[]string {
	if kind == FineDining {
		return &e.Day.FineDining
	}
	return &e.Day.Accommodation
}

func (e *DayEditor) Selected(kind Kind) []string { return *e.list(kind) }

// Toggle adds id to the day, or removes it when already there. A fourth
// entry of one kind is refused and leaves the selection as it was.
func (e *DayEditor) Toggle(kind Kind, id string) error {
	ids := e.list(kind)
	if i := slices.Index(*ids, id); i >= 0 {
		*ids = slices.Delete(*ids, i, i+1)
		return nil
	}
	if len(*ids) >= MaxPerKind {
		what := "accommodations"
		if kind == FineDining {
			what = "fine dining options"
		}
		e.notes.Error(fmt.Sprintf("You can select up to %d %s per day", MaxPerKind, what))
		return ErrSelectionLimit
	}
	*ids = append(*ids, id)
	return nil
}

// SetPhoto swaps in a local preview. The server photo it replaces is staged
// for removal and an earlier local pick is released.
func (e *DayEditor) SetPhoto(url string) {
	if e.Photo != "" && e.Photo != url && e.previews != nil {
		e.previews.Revoke(e.Photo)
	}
	if old := e.Day.ItineraryDayPhoto; old != "" {
		e.RemovedPhotos = append(e.RemovedPhotos, old)
		e.Day.ItineraryDayPhoto = ""
	}
	e.Photo = url
}

func (e *DayEditor) AddLink() {
	e.Day.Links = append(e.Day.Links, models.Link{})
}

func (e *DayEditor) SetLink(i int, text, url string) error {
	if i < 0 || i >= len(e.Day.Links) {
		return fmt.Errorf("link %d out of range", i)
	}
	e.Day.Links[i] = models.Link{Text: text, URL: url}
	return nil
}

// IncompleteLinks lists links with only one of text and url filled in. They
// are flagged in the editor but never block saving.
func (e *DayEditor) IncompleteLinks() []int {
	out := []int{}
	for i, l := range e.Day.Links {
		if l.Partial() {
			out = append(out, i)
		}
	}
	return out
}

func (e *DayEditor) Validate() error {
	verr := &forms.ValidationError{}
	if e.Day.Day < 1 {
		verr.Fields = append(verr.Fields, forms.FieldError{Field: "day", Message: "day must be at least 1"})
	}
	if strings.TrimSpace(e.Day.Title) == "" {
		verr.Fields = append(verr.Fields, forms.FieldError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(e.Day.Description) == "" {
		verr.Fields = append(verr.Fields, forms.FieldError{Field: "description", Message: "description is required"})
	}
	if len(e.Day.Accommodation) > MaxPerKind || len(e.Day.FineDining) > MaxPerKind {
		verr.Fields = append(verr.Fields, forms.FieldError{Field: "accommodation", Message: ErrSelectionLimit.Error()})
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// Payload builds the multipart body. Only complete links are sent. The
// second result lists the previews that went into it.
func (e *DayEditor) Payload(src preview.Source) (*apiclient.FormData, []string, error) {
	fd := apiclient.NewFormData()
	fd.Append("day", strconv.Itoa(e.Day.Day))
	fd.Append("title", strings.TrimSpace(e.Day.Title))
	fd.Append("description", e.Day.Description)
	fd.Append("note", e.Day.Note)

	links := []models.Link{}
	for _, l := range e.Day.Links {
		if l.Filled() {
			links = append(links, models.Link{Text: strings.TrimSpace(l.Text), URL: strings.TrimSpace(l.URL)})
		}
	}
	if err := errors.Join(
		fd.AppendJSON("accommodation", e.Day.Accommodation),
		fd.AppendJSON("fineDining", e.Day.FineDining),
		fd.AppendJSON("links", links),
	); err != nil {
		return nil, nil, err
	}

	var used []string
	if e.Photo != "" {
		if src == nil {
			return nil, nil, fmt.Errorf("itineraryDayPhoto: %w", preview.ErrNotFound)
		}
		item, ok := src.Lookup(e.Photo)
		if !ok {
			return nil, nil, fmt.Errorf("itineraryDayPhoto: %w", preview.ErrNotFound)
		}
		fd.AppendFile("itineraryDayPhoto", item.Filename, item.ContentType, item.Data())
		used = append(used, e.Photo)
	}
	if len(e.RemovedPhotos) > 0 {
		if err := fd.AppendJSON("itineraryDayPhotoToDelete", e.RemovedPhotos); err != nil {
			return nil, nil, err
		}
	}
	return fd, used, nil
}
