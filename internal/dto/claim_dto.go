package dto

import validation "github.com/go-ozzo/ozzo-validation"

type CreateClaimRequest struct {
	ContactInformation string `json:"contact_information"`
	ProofDescription   string `json:"proof_description"`
	AdditionalDetails  string `json:"additional_details"`
}

// Validate checks lengths only. A blank contact is reported by the claim
// service so the error is the same for every caller.
func (r CreateClaimRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ContactInformation, validation.Length(0, 100)),
		validation.Field(&r.ProofDescription, validation.Length(0, 500)),
		validation.Field(&r.AdditionalDetails, validation.Length(0, 500)),
	)
}
