package dto

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// ReportRequest carries the fields shared by lost and found reports. Status
// is accepted only so an attempt to change it can be rejected.
type ReportRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	PhotoURL    string `json:"photo_url"`
	Status      string `json:"status,omitempty"`
}

func (r ReportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Category, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Location, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.PhotoURL, validation.Length(0, 500), is.URL),
	)
}
