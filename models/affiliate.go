package models

// Affiliate is a partner listing: an agency or operator the site refers
// travellers to for a commission.
type Affiliate struct {
	ID         string  `json:"_id,omitempty"`
	Name       string  `json:"name"`
	Website    string  `json:"website"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Country    string  `json:"country"`
	Commission float64 `json:"commission"`
	IsActive   bool    `json:"isActive"`
}
