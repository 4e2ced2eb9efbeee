package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tripdesk/apiclient"
	"tripdesk/preview"
)

var (
	ErrNoImageField = errors.New("form has no such image field")
	ErrNoRooms      = errors.New("only an accommodation being edited has rooms")
	ErrUnknownRoom  = errors.New("room not found")
)

// galleryField is the destination gallery, whose entries carry a caption.
const galleryField = "destinations"

// Editor is one open add or edit screen. Previews picked for it are held in
// its own scope, so whatever was never saved is released on Close. The
// accommodation editor also carries the rooms panel.
type Editor struct {
	Name  string `json:"resource"`
	Key   string `json:"key,omitempty"`
	Form  Form   `json:"form"`
	Rooms *Rooms `json:"rooms,omitempty"`

	client *apiclient.Client
	scope  *preview.Scope
}

// OpenEditor loads record key of resource name, or starts a blank form when
// key is empty.
func OpenEditor(ctx context.Context, client *apiclient.Client, sc *preview.Scope, name, key string) (*Editor, error) {
	e := &Editor{Name: name, Key: key, client: client, scope: sc}
	if err := e.reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Editor) reload(ctx context.Context) error {
	var f Form
	var err error
	if e.Key == "" {
		f, err = Blank(e.Name)
	} else {
		f, err = Load(ctx, e.client, e.Name, e.Key)
	}
	if err != nil {
		return err
	}
	if e.Rooms != nil {
		e.Rooms.Close(e.scope)
	}
	e.Form, e.Rooms = f, nil
	if a, ok := f.(*AccommodationForm); ok && a.ID != "" {
		e.Rooms = NewRooms(a.ID, a.Rooms)
	}
	return nil
}

// imageField returns the image set called field and whether it holds a
// single image. The open room form contributes roomPhotos.
func (e *Editor) imageField(field string) (*ImageSet, bool, bool) {
	if field == "roomPhotos" && e.Rooms != nil && e.Rooms.Form != nil {
		return &e.Rooms.Form.RoomPhotos, false, true
	}
	set, ok := imageFields(e.Form)[field]
	return set, singleImage[field], ok
}

var singleImage = map[string]bool{
	"thumbnail": true,
	"logo":      true,
	"routeMap":  true,
	"image":     true,
	"videoFile": true,
}

func imageFields(f Form) map[string]*ImageSet {
	switch f := f.(type) {
	case *DestinationForm:
		return map[string]*ImageSet{"thumbnail": &f.Thumbnail}
	case *AccommodationForm:
		return map[string]*ImageSet{"logo": &f.Logo, "accommodationPics": &f.Pics}
	case *DiningForm:
		return map[string]*ImageSet{"logo": &f.Logo, "pics": &f.Pics}
	case *AdventureForm:
		return map[string]*ImageSet{"thumbnail": &f.Thumbnail, "routeMap": &f.RouteMap, "gallery": &f.Gallery}
	case *HomeBannerForm:
		return map[string]*ImageSet{"image": &f.Image, "videoFile": &f.VideoFile}
	case *DestinationBannerForm:
		return map[string]*ImageSet{"image": &f.Image, "videoFile": &f.VideoFile, "overviewImages": &f.OverviewImages}
	}
	return nil
}

// Attach puts the uploaded preview url into field. A single-image field
// swaps out its image; the others append.
func (e *Editor) Attach(field, url string) error {
	if d, ok := e.Form.(*DestinationForm); ok && field == galleryField {
		if _, err := e.scope.Adopt(url); err != nil {
			return err
		}
		d.Gallery = append(d.Gallery, GalleryImage{Image: url})
		return nil
	}

	set, single, ok := e.imageField(field)
	if !ok {
		return fmt.Errorf("%s: %w", field, ErrNoImageField)
	}
	item, err := e.scope.Adopt(url)
	if err != nil {
		return err
	}
	if !single {
		set.Add(url)
		return nil
	}
	old := ""
	if len(set.New) > 0 && set.New[0] != url {
		old = set.New[0]
	}
	e.scope.Replace(old, item)
	set.Replace(url, nil)
	return nil
}

// Detach removes url from field. Gallery entries are addressed by index.
func (e *Editor) Detach(field, url string, index int) error {
	if d, ok := e.Form.(*DestinationForm); ok && field == galleryField {
		if index < 0 || index >= len(d.Gallery) {
			return fmt.Errorf("gallery entry %d out of range", index)
		}
		d.RemoveGalleryImage(index, e.scope)
		return nil
	}
	set, _, ok := e.imageField(field)
	if !ok {
		return fmt.Errorf("%s: %w", field, ErrNoImageField)
	}
	set.Remove(url, e.scope)
	return nil
}

// Update merges the fields in raw into the form. The record id and the
// images stay as they are; images change through Attach and Detach.
func (e *Editor) Update(raw json.RawMessage) error {
	restore := hold(e.Form)
	err := json.Unmarshal(raw, e.Form)
	restore()
	return err
}

// hold remembers what Update may not touch and returns the func that puts
// it back.
func hold(f Form) func() {
	id := f.Key()
	sets := map[string]ImageSet{}
	for name, set := range imageFields(f) {
		sets[name] = *set
	}

	var gallery []GalleryImage
	var removed []string
	var kind string
	switch f := f.(type) {
	case *DestinationForm:
		gallery = append(gallery, f.Gallery...)
		removed = f.RemovedImages
	case *AdventureForm:
		kind = f.Kind
	}

	return func() {
		for name, set := range imageFields(f) {
			*set = sets[name]
		}
		switch f := f.(type) {
		case *DestinationForm:
			edited := f.Gallery
			f.Gallery = gallery
			for i := range f.Gallery {
				if i < len(edited) {
					f.Gallery[i].Caption = edited[i].Caption
				}
			}
			f.RemovedImages = removed
		case *AdventureForm:
			f.Kind = kind
		}
		pinKey(f, id)
	}
}

// Save submits the form from the editor's scope and reloads it: an edit
// shows the saved record, an add starts over blank.
func (e *Editor) Save(ctx context.Context, s *Submitter) (*apiclient.Envelope, error) {
	s.Source = e.scope
	env, err := s.Submit(ctx, e.Form)
	if err != nil {
		return nil, err
	}
	return env, e.reload(ctx)
}

func (e *Editor) rooms() (*Rooms, error) {
	if e.Rooms == nil {
		return nil, ErrNoRooms
	}
	return e.Rooms, nil
}

// OpenRoom opens the add form when id is empty, else the edit form of room id.
func (e *Editor) OpenRoom(id string) error {
	r, err := e.rooms()
	if err != nil {
		return err
	}
	if id == "" {
		r.OpenAdd(e.scope)
		return nil
	}
	if !r.OpenEdit(id, e.scope) {
		return ErrUnknownRoom
	}
	return nil
}

// UpdateRoom merges raw into the open room form, keeping its ids and photos.
func (e *Editor) UpdateRoom(raw json.RawMessage) error {
	r, err := e.rooms()
	if err != nil {
		return err
	}
	if r.Form == nil {
		return ErrPanelClosed
	}
	f := r.Form
	id, acc, photos := f.ID, f.AccommodationID, f.RoomPhotos
	err = json.Unmarshal(raw, f)
	f.ID, f.AccommodationID, f.RoomPhotos = id, acc, photos
	return err
}

func (e *Editor) CloseRoom() error {
	r, err := e.rooms()
	if err != nil {
		return err
	}
	r.Close(e.scope)
	return nil
}

// SaveRoom submits the open room form and reloads the accommodation so the
// room list is current.
func (e *Editor) SaveRoom(ctx context.Context, s *Submitter) error {
	r, err := e.rooms()
	if err != nil {
		return err
	}
	s.Source = e.scope
	if err := r.Save(ctx, s); err != nil {
		return err
	}
	return e.reload(ctx)
}

// Close drops the open room form and releases every unsaved preview.
func (e *Editor) Close() {
	if e.Rooms != nil {
		e.Rooms.Close(e.scope)
	}
	e.scope.Release()
}
