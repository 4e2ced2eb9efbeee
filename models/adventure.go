package models

import "strings"

// Adventure is a bookable product: a tour or a trek. Both share one shape;
// tours carry TourType and treks DifficultyLevel.
type Adventure struct {
	ID              string         `json:"_id,omitempty"`
	Name            string         `json:"name"`
	Country         string         `json:"country"`
	Location        string         `json:"location"`
	Cost            float64        `json:"cost"`
	Duration        string         `json:"duration"`
	Overview        string         `json:"overview"`
	IdealTime       []string       `json:"idealTime"`
	Inclusion       []string       `json:"inclusion"`
	Exclusion       []string       `json:"exclusion"`
	Highlights      []string       `json:"highlights"`
	Itinerary       []ItineraryDay `json:"itinerary"`
	FAQ             []FAQ          `json:"faq"`
	Gallery         []string       `json:"gallery"`
	Thumbnail       string         `json:"thumbnail"`
	RouteMap        string         `json:"routeMap"`
	TourType        string         `json:"tourType,omitempty"`
	DifficultyLevel string         `json:"difficultyLevel,omitempty"`
	IsFeature       bool           `json:"isFeature"`
	Slug            string         `json:"slug,omitempty"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (f FAQ) Filled() bool {
	return strings.TrimSpace(f.Question) != "" && strings.TrimSpace(f.Answer) != ""
}

// ItineraryDay is one day of an adventure's schedule. Accommodation and
// FineDining hold ids, at most three of each.
type ItineraryDay struct {
	ID                string   `json:"_id,omitempty"`
	Day               int      `json:"day"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Note              string   `json:"note,omitempty"`
	ItineraryDayPhoto string   `json:"itineraryDayPhoto"`
	Accommodation     []string `json:"accommodation"`
	FineDining        []string `json:"fineDining"`
	Links             []Link   `json:"links"`
}

type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

func (l Link) Filled() bool {
	return strings.TrimSpace(l.Text) != "" && strings.TrimSpace(l.URL) != ""
}

// Partial reports a link with exactly one of its two fields filled in.
func (l Link) Partial() bool {
	text := strings.TrimSpace(l.Text) != ""
	url := strings.TrimSpace(l.URL) != ""
	return text != url
}

type TourType struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// BookingPrice is the tiered price sheet attached to exactly one adventure.
type BookingPrice struct {
	ID            string `json:"_id,omitempty"`
	AdventureID   string `json:"adventureId"`
	AdventureType string `json:"adventureType"`

	SoloThreeStar float64 `json:"soloThreeStar"`
	SoloFourStar  float64 `json:"soloFourStar"`
	SoloFiveStar  float64 `json:"soloFiveStar"`

	SingleSupplementaryThreeStar float64 `json:"singleSupplementaryThreeStar"`
	SingleSupplementaryFourStar  float64 `json:"singleSupplementaryFourStar"`
	SingleSupplementaryFiveStar  float64 `json:"singleSupplementaryFiveStar"`

	StandardThreeStar float64 `json:"standardThreeStar"`
	StandardFourStar  float64 `json:"standardFourStar"`
	StandardFiveStar  float64 `json:"standardFiveStar"`
}
