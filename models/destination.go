package models

type DestinationImage struct {
	Caption string `json:"caption"`
	Image   string `json:"image"`
}

type Destination struct {
	ID           string             `json:"_id,omitempty"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Thumbnail    string             `json:"thumbnail"`
	Destinations []DestinationImage `json:"destinations"`
	Slug         string             `json:"slug,omitempty"`
}
