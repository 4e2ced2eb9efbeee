package models

type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusViewed   BookingStatus = "viewed"
	StatusAccepted BookingStatus = "accepted"
	StatusRejected BookingStatus = "rejected"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusViewed, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

type SupplementaryConfig struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Booking struct {
	ID                   string                `json:"_id"`
	Status               BookingStatus         `json:"status"`
	FullName             string                `json:"fullName"`
	Email                string                `json:"email"`
	Phone                string                `json:"phone"`
	Address              string                `json:"address"`
	AdventureType        string                `json:"adventureType"`
	AdventureName        string                `json:"adventureName"`
	AdventureSlug        string                `json:"adventureSlug"`
	BookingDate          string                `json:"bookingDate"`
	TotalPrice           float64               `json:"totalPrice"`
	SupplementaryConfigs []SupplementaryConfig `json:"supplementaryConfigs"`
}
