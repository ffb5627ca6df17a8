package models

import (
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "PENDING"
	ClaimApproved ClaimStatus = "APPROVED"
	ClaimRejected ClaimStatus = "REJECTED"
)

func (s ClaimStatus) Valid() bool {
	return s == ClaimPending || s == ClaimApproved || s == ClaimRejected
}

// IsDecision reports whether s is an outcome an admin can review a claim to.
func (s ClaimStatus) IsDecision() bool {
	return s == ClaimApproved || s == ClaimRejected
}

// ClaimRequest references exactly one of LostReportID / FoundReportID.
// ReviewerID is set iff Status is not PENDING.
type ClaimRequest struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_claim_requester_lost,priority:1;uniqueIndex:idx_claim_requester_found,priority:1" json:"requester_id"`
	LostReportID       *uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_claim_requester_lost,priority:2" json:"lost_item_id,omitempty"`
	FoundReportID      *uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_claim_requester_found,priority:2" json:"found_item_id,omitempty"`
	ContactInformation string       `gorm:"size:100;not null" json:"contact_information"`
	ProofDescription   string       `gorm:"size:500" json:"proof_description"`
	AdditionalDetails  string       `gorm:"size:500" json:"additional_details"`
	Status             ClaimStatus  `gorm:"size:20;not null;index" json:"status"`
	ReviewerID         *uuid.UUID   `gorm:"type:uuid;index" json:"reviewer_id,omitempty"`
	ReviewedAt         *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
	Requester          *Principal   `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	LostReport         *LostReport  `gorm:"foreignKey:LostReportID" json:"lost_item,omitempty"`
	FoundReport        *FoundReport `gorm:"foreignKey:FoundReportID" json:"found_item,omitempty"`
}

// ItemName is the name of whichever report the claim targets.
func (c *ClaimRequest) ItemName() string {
	switch {
	case c.LostReport != nil:
		return c.LostReport.Name
	case c.FoundReport != nil:
		return c.FoundReport.Name
	}
	return ""
}
