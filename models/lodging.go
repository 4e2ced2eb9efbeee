package models

// Accommodation is a hotel-like listing. Rooms are a sub-resource with their
// own add/edit/delete endpoints.
type Accommodation struct {
	ID                     string   `json:"_id,omitempty"`
	AccommodationTitle     string   `json:"accommodationTitle"`
	AccommodationLocation  string   `json:"accommodationLocation"`
	AccommodationRating    string   `json:"accommodationRating"`
	Country                string   `json:"country"`
	Destination            string   `json:"destination"`
	Logo                   string   `json:"logo"`
	AccommodationPics      []string `json:"accommodationPics"`
	AccommodationFeatures  []string `json:"accommodationFeatures"`
	AccommodationAmenities []string `json:"accommodationAmenities"`
	Rooms                  []Room   `json:"rooms"`
	IsFeature              bool     `json:"isFeature"`
	IsActivated            bool     `json:"isActivated"`
	Slug                   string   `json:"slug,omitempty"`
}

type Room struct {
	ID              string   `json:"_id,omitempty"`
	Accommodation   string   `json:"accommodation,omitempty"`
	RoomTitle       string   `json:"roomTitle"`
	RoomPhotos      []string `json:"roomPhotos"`
	RoomStandard    string   `json:"roomStandard"`
	RoomDescription string   `json:"roomDescription"`
	RoomFacilities  []string `json:"roomFacilities"`
}

// FineDining mirrors Accommodation; Amenities carries the cuisines.
type FineDining struct {
	ID          string   `json:"_id,omitempty"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Rating      string   `json:"rating"`
	Country     string   `json:"country"`
	Destination string   `json:"destination"`
	Logo        string   `json:"logo"`
	Pics        []string `json:"pics"`
	Features    []string `json:"features"`
	Amenities   []string `json:"amenities"`
	IsFeature   bool     `json:"isFeature"`
	IsActivated bool     `json:"isActivated"`
	Slug        string   `json:"slug,omitempty"`
}

type RatingType string

const (
	RatingHotel  RatingType = "hotel"
	RatingDining RatingType = "dining"
)

func (t RatingType) Valid() bool {
	return t == RatingHotel || t == RatingDining
}

type Rating struct {
	ID         string     `json:"_id,omitempty"`
	Rating     string     `json:"rating"`
	RatingType RatingType `json:"ratingType"`
}
