// Package forms holds the add/edit forms of the dashboard. A form validates
// itself, turns into the body the backend expects and knows which endpoint
// takes it.
package forms

import (
	"context"
	"errors"
	"log"
	"net/url"
	"sync/atomic"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/preview"
	"tripdesk/resources"
	"tripdesk/toast"
)

var (
	ErrBusy         = errors.New("a submission is already in progress")
	ErrNotConfirmed = errors.New("delete was not confirmed")
)

type Form interface {
	Resource() string
	// Key identifies the record being edited; empty when adding.
	Key() string
	Validate() error
	Target() resources.Endpoint
	Payload(src preview.Source) (*Payload, error)
}

// Payload is either a multipart form or a JSON body.
type Payload struct {
	Form     *apiclient.FormData
	JSON     any
	Query    url.Values
	Uploaded []string
}

func jsonPayload(v any) (*Payload, error) {
	return &Payload{JSON: v}, nil
}

// target picks create or update for resource name.
func target(name, key string) resources.Endpoint {
	res, _ := resources.Lookup(name)
	if key == "" {
		return res.Create
	}
	return res.Update.With(key)
}

func label(name string) string {
	if res, ok := resources.Lookup(name); ok {
		return res.Label
	}
	return name
}

type revoker interface {
	Revoke(url string) bool
}

// Submitter sends forms. It refuses a second submission while one is in
// flight and always clears its loading flag.
type Submitter struct {
	Client   *apiclient.Client
	Notifier toast.Notifier
	Recorder activity.Recorder
	Source   preview.Source
	// OnSaved runs after every successful save.
	OnSaved func(ctx context.Context, resource string)

	loading atomic.Bool
}

func (s *Submitter) Loading() bool { return s.loading.Load() }

func (s *Submitter) notifier() toast.Notifier {
	if s.Notifier == nil {
		return toast.Discard{}
	}
	return s.Notifier
}

func (s *Submitter) Submit(ctx context.Context, f Form) (*apiclient.Envelope, error) {
	if !s.loading.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.loading.Store(false)

	n := s.notifier()
	name := f.Resource()
	adding := f.Key() == ""

	if err := f.Validate(); err != nil {
		toast.Fail(n, err, "Please fill in all required fields")
		return nil, err
	}
	p, err := f.Payload(s.Source)
	if err != nil {
		toast.Fail(n, err, "Could not read the selected files")
		return nil, err
	}

	verb, action := "updated", activity.Update
	if adding {
		verb, action = "added", activity.Create
	}

	ep := f.Target()
	var env *apiclient.Envelope
	if p.Form != nil {
		env, err = s.Client.SendForm(ctx, ep.Method, ep.Path, p.Query, p.Form, nil)
	} else {
		env, err = s.Client.SendJSON(ctx, ep.Method, ep.Path, p.Query, p.JSON, nil)
	}
	if err != nil {
		log.Printf("[forms] %s %s: %v", ep.Method, ep.Path, err)
		toast.Fail(n, err, "Failed to save "+label(name))
		return nil, err
	}

	msg := label(name) + " " + verb + " successfully"
	if env.Message != "" {
		msg = env.Message
	}
	n.Success(msg)

	if r, ok := s.Source.(revoker); ok {
		for _, u := range p.Uploaded {
			r.Revoke(u)
		}
	}
	activity.Log(ctx, s.Recorder, action, name, f.Key(), "")
	if s.OnSaved != nil {
		s.OnSaved(ctx, name)
	}
	return env, nil
}

// Remove deletes a record of resource name, after confirmation only.
func (s *Submitter) Remove(ctx context.Context, name, id string, confirmed bool) error {
	res, ok := resources.Lookup(name)
	if !ok || !res.Deletable() {
		return errors.New("resource cannot be deleted")
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	n := s.notifier()
	ep := res.Delete.With(id)
	env, err := s.Client.Do(ctx, ep.Method, ep.Path, nil, nil, "")
	if err != nil {
		toast.Fail(n, err, "Failed to delete "+res.Label)
		return err
	}
	msg := res.Label + " deleted successfully"
	if env.Message != "" {
		msg = env.Message
	}
	n.Success(msg)
	activity.Log(ctx, s.Recorder, activity.Delete, name, id, "")
	if s.OnSaved != nil {
		s.OnSaved(ctx, name)
	}
	return nil
}
