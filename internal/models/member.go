package models

// DefaultMemberColor is assigned when a member is created without a colour.
const DefaultMemberColor = "blue"

// MemberColors is the fixed palette members pick their calendar colour from.
var MemberColors = []string{
	"blue", "green", "purple", "pink", "orange", "teal",
	"red", "yellow", "indigo", "cyan", "lime", "rose",
}

// IsMemberColor reports whether color belongs to the palette.
func IsMemberColor(color string) bool {
	for _, c := range MemberColors {
		if c == color {
			return true
		}
	}
	return false
}

// Member is a person inside one team.
type Member struct {
	BaseModel

	TeamID   string `gorm:"size:36;not null;index" json:"team_id"`
	Nickname string `gorm:"size:50;not null" json:"nickname"`
	Color    string `gorm:"size:16;not null;default:blue" json:"color"`

	Schedules []Schedule `gorm:"constraint:OnDelete:CASCADE" json:"schedules,omitempty"`
}

// DisplayColor returns the stored colour, falling back to the default for rows written
// before the palette existed.
func (m Member) DisplayColor() string {
	if IsMemberColor(m.Color) {
		return m.Color
	}
	return DefaultMemberColor
}
