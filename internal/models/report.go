package models

import (
	"time"

	"github.com/google/uuid"
)

type LostStatus string

const (
	LostStatusLost  LostStatus = "LOST"
	LostStatusFound LostStatus = "FOUND"
)

type FoundStatus string

const (
	FoundStatusAvailable FoundStatus = "AVAILABLE"
)

// LostReport is an item a reporter has lost. Name, category and location are
// the fields the matcher compares.
type LostReport struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name                 string     `gorm:"size:100;not null;index:idx_lost_match,priority:1" json:"name"`
	Category             string     `gorm:"size:50;not null;index:idx_lost_match,priority:2" json:"category"`
	Description          string     `gorm:"size:500" json:"description"`
	Date                 string     `gorm:"size:10;not null" json:"date"`
	Location             string     `gorm:"size:200;index:idx_lost_match,priority:3" json:"location"`
	PhotoURL             string     `gorm:"size:500" json:"photo_url,omitempty"`
	Status               LostStatus `gorm:"size:20;not null;index:idx_lost_match,priority:4" json:"status"`
	MatchedFoundReportID *uuid.UUID `gorm:"type:uuid" json:"matched_found_item_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type FoundReport struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"reporter_id"`
	MatchedLostReportID *uuid.UUID  `gorm:"type:uuid;index" json:"matched_lost_item_id,omitempty"`
	Name                string      `gorm:"size:100;not null" json:"name"`
	Category            string      `gorm:"size:50;not null" json:"category"`
	Description         string      `gorm:"size:500" json:"description"`
	Date                string      `gorm:"size:10;not null" json:"date"`
	Location            string      `gorm:"size:200" json:"location"`
	PhotoURL            string      `gorm:"size:500" json:"photo_url,omitempty"`
	Status              FoundStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}
