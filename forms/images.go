package forms

import (
	"fmt"
	"slices"

	"tripdesk/apiclient"
	"tripdesk/preview"
)

// ImageSet is one image field of an edit form: what the server already has,
// what the admin picked locally (preview URLs), and server assets to delete
// on save.
type ImageSet struct {
	Current  []string `json:"current"`
	New      []string `json:"new"`
	ToDelete []string `json:"toDelete"`
}

// FromServer starts a set from the server's URLs with nothing new.
func FromServer(urls ...string) ImageSet {
	set := ImageSet{Current: []string{}, New: []string{}, ToDelete: []string{}}
	for _, u := range urls {
		if u != "" {
			set.Current = append(set.Current, u)
		}
	}
	return set
}

// Count is the number of images the record will have after saving.
func (s ImageSet) Count() int { return len(s.Current) + len(s.New) }

func (s *ImageSet) Add(url string) {
	s.New = append(s.New, url)
}

// Remove drops url. A server image is staged for deletion; a local preview
// is revoked through sc.
func (s *ImageSet) Remove(url string, sc *preview.Scope) {
	if i := slices.Index(s.Current, url); i >= 0 {
		s.Current = slices.Delete(s.Current, i, i+1)
		s.ToDelete = append(s.ToDelete, url)
		return
	}
	if i := slices.Index(s.New, url); i >= 0 {
		s.New = slices.Delete(s.New, i, i+1)
		if sc != nil {
			sc.Revoke(url)
		}
	}
}

// Replace is for single-image fields: the current image is staged for
// deletion and any earlier local pick is revoked.
func (s *ImageSet) Replace(url string, sc *preview.Scope) {
	s.ToDelete = append(s.ToDelete, s.Current...)
	s.Current = []string{}
	for _, old := range s.New {
		if sc != nil {
			sc.Revoke(old)
		}
	}
	s.New = []string{url}
}

// payload collects a multipart body and remembers which previews it used.
type payload struct {
	fd   *apiclient.FormData
	src  preview.Source
	used []string
	err  error
}

func newPayload(src preview.Source) *payload {
	return &payload{fd: apiclient.NewFormData(), src: src}
}

func (p *payload) field(name, value string) {
	p.fd.Append(name, value)
}

func (p *payload) json(name string, v any) {
	if p.err != nil {
		return
	}
	p.err = p.fd.AppendJSON(name, v)
}

func (p *payload) files(field string, urls []string) {
	for _, u := range urls {
		if p.err != nil {
			return
		}
		if p.src == nil {
			p.err = fmt.Errorf("%s: no file source", field)
			return
		}
		item, ok := p.src.Lookup(u)
		if !ok {
			p.err = fmt.Errorf("%s: %w", field, preview.ErrNotFound)
			return
		}
		p.fd.AppendFile(field, item.Filename, item.ContentType, item.Data())
		p.used = append(p.used, u)
	}
}

// images appends the new files of set under field and, when editing, the
// server assets to remove as <field>ToDelete.
func (p *payload) images(field string, set ImageSet) {
	p.files(field, set.New)
	if len(set.ToDelete) > 0 {
		p.json(field+"ToDelete", set.ToDelete)
	}
}

func (p *payload) done() (*Payload, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &Payload{Form: p.fd, Uploaded: p.used}, nil
}
