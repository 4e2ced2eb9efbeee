package forms

import (
	"strings"

	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/resources"
)

type HomeBannerForm struct {
	ID          string            `json:"_id,omitempty"`
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Type        models.BannerType `json:"type" validate:"bannertype"`
	Image       ImageSet          `json:"image"`
	VideoFile   ImageSet          `json:"videoFile"`
	VideoURL    string            `json:"videoUrl" validate:"omitempty,url"`
}

func HomeBannerFromModel(b models.Banner) *HomeBannerForm {
	return &HomeBannerForm{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Type:        b.Type,
		Image:       FromServer(b.Image),
		VideoFile:   FromServer(b.VideoFile),
		VideoURL:    b.VideoURL,
	}
}

func (f *HomeBannerForm) Resource() string { return resources.HomeBanners }
func (f *HomeBannerForm) Key() string      { return f.ID }

func (f *HomeBannerForm) Target() resources.Endpoint {
	return target(resources.HomeBanners, f.ID)
}

func (e *ValidationError) media(t models.BannerType, image, video ImageSet, videoURL string) {
	switch t {
	case models.BannerImage:
		e.requireImages("image", image)
	case models.BannerVideo:
		if video.Count() == 0 && strings.TrimSpace(videoURL) == "" {
			e.add("videoFile", "Upload a video or provide a video URL")
		}
	}
}

func (f *HomeBannerForm) Validate() error {
	e := check(f)
	e.media(f.Type, f.Image, f.VideoFile, f.VideoURL)
	return e.orNil()
}

func (p *payload) banner(title, description string, t models.BannerType, image, video ImageSet, videoURL string) {
	p.field("title", strings.TrimSpace(title))
	p.field("description", description)
	p.field("type", string(t))
	if t == models.BannerVideo {
		p.images("videoFile", video)
		p.field("videoUrl", strings.TrimSpace(videoURL))
	} else {
		p.images("image", image)
	}
}

func (f *HomeBannerForm) Payload(src preview.Source) (*Payload, error) {
	p := newPayload(src)
	p.banner(f.Title, f.Description, f.Type, f.Image, f.VideoFile, f.VideoURL)
	return p.done()
}

// DestinationBannerForm is the banner at the top of a destination page.
type DestinationBannerForm struct {
	ID             string             `json:"_id,omitempty"`
	Title          string             `json:"title" validate:"required"`
	PageName       string             `json:"pageName" validate:"required"`
	Description    string             `json:"description" validate:"required"`
	Type           models.BannerType  `json:"type" validate:"bannertype"`
	Image          ImageSet           `json:"image"`
	VideoFile      ImageSet           `json:"videoFile"`
	VideoURL       string             `json:"videoUrl" validate:"omitempty,url"`
	Overview       string             `json:"overview" validate:"required"`
	OverviewImages ImageSet           `json:"overviewImages"`
	Highlights     []models.Highlight `json:"highlights" validate:"somefilled"`
}

func DestinationBannerFromModel(b models.Banner) *DestinationBannerForm {
	return &DestinationBannerForm{
		ID:             b.ID,
		Title:          b.Title,
		PageName:       b.PageName,
		Description:    b.Description,
		Type:           b.Type,
		Image:          FromServer(b.Image),
		VideoFile:      FromServer(b.VideoFile),
		VideoURL:       b.VideoURL,
		Overview:       b.Overview,
		OverviewImages: FromServer(b.OverviewImages...),
		Highlights:     append([]models.Highlight{}, b.Highlights...),
	}
}

func (f *DestinationBannerForm) Resource() string { return resources.DestinationBanners }
func (f *DestinationBannerForm) Key() string      { return f.ID }

func (f *DestinationBannerForm) Target() resources.Endpoint {
	return target(resources.DestinationBanners, f.ID)
}

func (f *DestinationBannerForm) Validate() error {
	e := check(f)
	e.media(f.Type, f.Image, f.VideoFile, f.VideoURL)
	return e.orNil()
}

// IsFormValid gates the submit button. Highlights with only whitespace
// text do not count.
func (f *DestinationBannerForm) IsFormValid() bool {
	return f.Validate() == nil
}

func (f *DestinationBannerForm) Payload(src preview.Source) (*Payload, error) {
	p := newPayload(src)
	p.banner(f.Title, f.Description, f.Type, f.Image, f.VideoFile, f.VideoURL)
	p.field("pageName", f.PageName)
	p.field("overview", f.Overview)

	highlights := []models.Highlight{}
	for _, h := range f.Highlights {
		if h.Filled() {
			h.Text = strings.TrimSpace(h.Text)
			highlights = append(highlights, h)
		}
	}
	p.json("highlights", highlights)
	p.images("overviewImages", f.OverviewImages)
	return p.done()
}
