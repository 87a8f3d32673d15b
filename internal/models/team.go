package models

import "time"

// Team is the tenant unit. Code is the normalised join code; AdminCode is a shared secret
// compared verbatim and never serialised.
type Team struct {
	BaseModel

	Code      string `gorm:"size:10;not null;uniqueIndex" json:"code"`
	Name      string `gorm:"size:100;not null" json:"name"`
	AdminCode string `gorm:"size:64;not null" json:"-"`

	Members []Member `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Events  []Event  `gorm:"constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

// TeamSummary is a team row annotated with child counts for the site admin listing.
type TeamSummary struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	MemberCount int64     `json:"member_count"`
	EventCount  int64     `json:"event_count"`
	CreatedAt   time.Time `json:"created_at"`
}
