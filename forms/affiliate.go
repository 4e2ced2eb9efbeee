package forms

import (
	"strings"

	"tripdesk/models"
	"tripdesk/preview"
	"tripdesk/resources"
)

// AffiliateForm adds or edits a partner listing. Commission is a percentage.
type AffiliateForm struct {
	ID         string  `json:"_id,omitempty"`
	Name       string  `json:"name" validate:"required"`
	Website    string  `json:"website" validate:"required,url"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      string  `json:"phone"`
	Country    string  `json:"country" validate:"required"`
	Commission float64 `json:"commission" validate:"gte=0,lte=100"`
	IsActive   bool    `json:"isActive"`
}

func (f *AffiliateForm) Resource() string { return resources.Affiliates }
func (f *AffiliateForm) Key() string      { return f.ID }

func (f *AffiliateForm) Target() resources.Endpoint {
	return target(resources.Affiliates, f.ID)
}

func (f *AffiliateForm) Validate() error { return check(f).orNil() }

func (f *AffiliateForm) Payload(preview.Source) (*Payload, error) {
	return jsonPayload(models.Affiliate{
		Name:       strings.TrimSpace(f.Name),
		Website:    strings.TrimSpace(f.Website),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Country:    f.Country,
		Commission: f.Commission,
		IsActive:   f.IsActive,
	})
}
