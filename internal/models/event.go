package models

// Event is a team wide calendar entry. An event without start and end time is all-day.
type Event struct {
	BaseModel

	TeamID      string  `gorm:"size:36;not null;index" json:"team_id"`
	Title       string  `gorm:"size:200;not null" json:"title"`
	Date        Date    `gorm:"not null;index" json:"date"`
	StartTime   *string `gorm:"size:5" json:"start_time"`
	EndTime     *string `gorm:"size:5" json:"end_time"`
	Description *string `gorm:"size:2000" json:"description"`
}

// IsAllDay reports whether the event has no time of day.
func (e Event) IsAllDay() bool {
	return isBlank(e.StartTime) && isBlank(e.EndTime)
}

func isBlank(value *string) bool {
	return value == nil || *value == ""
}
