package models

import "strings"

type BannerType string

const (
	BannerImage BannerType = "image"
	BannerVideo BannerType = "video"
)

func (t BannerType) Valid() bool {
	return t == BannerImage || t == BannerVideo
}

// Banner covers both the home banner and the destination page banner; the
// latter fills PageName, Overview, OverviewImages and Highlights.
type Banner struct {
	ID             string      `json:"_id,omitempty"`
	Title          string      `json:"title"`
	PageName       string      `json:"pageName,omitempty"`
	Description    string      `json:"description"`
	Type           BannerType  `json:"type"`
	Image          string      `json:"image,omitempty"`
	VideoFile      string      `json:"videoFile,omitempty"`
	VideoURL       string      `json:"videoUrl,omitempty"`
	Overview       string      `json:"overview,omitempty"`
	OverviewImages []string    `json:"overviewImages,omitempty"`
	Highlights     []Highlight `json:"highlights,omitempty"`
}

type Highlight struct {
	Text string `json:"text"`
	Icon string `json:"icon,omitempty"`
}

func (h Highlight) Filled() bool {
	return strings.TrimSpace(h.Text) != ""
}
