package forms

import (
	"fmt"
	"strings"

	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/resources"
)

// GalleryImage is one captioned picture of a destination. Image is either
// a server URL or a local preview.
type GalleryImage struct {
	Caption string `json:"caption"`
	Image   string `json:"image"`
}

type DestinationForm struct {
	ID            string         `json:"_id,omitempty"`
	Title         string         `json:"title" validate:"required"`
	Description   string         `json:"description" validate:"required"`
	Thumbnail     ImageSet       `json:"thumbnail"`
	Gallery       []GalleryImage `json:"destinations"`
	RemovedImages []string       `json:"removedImages,omitempty"`
}

func DestinationFromModel(d models.Destination) *DestinationForm {
	f := &DestinationForm{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Thumbnail:   FromServer(d.Thumbnail),
		Gallery:     []GalleryImage{},
	}
	for _, img := range d.Destinations {
		f.Gallery = append(f.Gallery, GalleryImage{Caption: img.Caption, Image: img.Image})
	}
	return f
}

func (f *DestinationForm) Resource() string { return resources.Destinations }
func (f *DestinationForm) Key() string      { return f.ID }

func (f *DestinationForm) Target() resources.Endpoint {
	return target(resources.Destinations, f.ID)
}

// RemoveGalleryImage drops entry i; server images are deleted on save.
func (f *DestinationForm) RemoveGalleryImage(i int, sc *preview.Scope) {
	if i < 0 || i >= len(f.Gallery) {
		return
	}
	img := f.Gallery[i].Image
	f.Gallery = append(f.Gallery[:i], f.Gallery[i+1:]...)
	switch {
	case preview.IsPreview(img):
		if sc != nil {
			sc.Revoke(img)
		}
	case img != "":
		f.RemovedImages = append(f.RemovedImages, img)
	}
}

func (f *DestinationForm) Validate() error {
	e := check(f)
	e.requireImages("thumbnail", f.Thumbnail)
	for i, g := range f.Gallery {
		if g.Image == "" {
			e.add(fmt.Sprintf("destinations[%d]", i), "Select an image for every gallery entry")
		}
	}
	return e.orNil()
}

func (f *DestinationForm) Payload(src preview.Source) (*Payload, error) {
	p := newPayload(src)
	p.field("title", strings.TrimSpace(f.Title))
	p.field("description", f.Description)
	p.images("thumbnail", f.Thumbnail)

	kept := []models.DestinationImage{}
	var captions, picked []string
	for _, g := range f.Gallery {
		if preview.IsPreview(g.Image) {
			picked = append(picked, g.Image)
			captions = append(captions, g.Caption)
			continue
		}
		kept = append(kept, models.DestinationImage{Caption: g.Caption, Image: g.Image})
	}
	p.json("destinations", kept)
	p.json("captions", captions)
	p.files("destinationImages", picked)
	if len(f.RemovedImages) > 0 {
		p.json("destinationsToDelete", f.RemovedImages)
	}
	return p.done()
}
