package models

// Schedule is a member's attendance slot on one day. Times are 24h HH:MM strings and
// StartTime is always before EndTime.
type Schedule struct {
	BaseModel

	MemberID  string  `gorm:"size:36;not null;index" json:"member_id"`
	Date      Date    `gorm:"not null;index" json:"date"`
	StartTime string  `gorm:"size:5;not null" json:"start_time"`
	EndTime   string  `gorm:"size:5;not null" json:"end_time"`
	Task      *string `gorm:"size:500" json:"task"`

	Member *Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
}
