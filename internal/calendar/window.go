package calendar

import (
	"fmt"
	"strings"

	"github.com/charlesng35/teamcal/internal/models"
)

// View names a calendar layout.
type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
	ViewGrid  View = "grid"
	ViewList  View = "list"
)

// ParseView resolves a view name; an empty value selects the month view.
func ParseView(value string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(value))); v {
	case "":
		return ViewMonth, nil
	case ViewDay, ViewWeek, ViewMonth, ViewGrid, ViewList:
		return v, nil
	default:
		return "", fmt.Errorf("unknown calendar view %q", value)
	}
}

// FillsEmptyDays reports whether the layout renders a cell for days without items.
func (v View) FillsEmptyDays() bool {
	return v != ViewList
}

// Range is a closed interval of days.
type Range struct {
	From models.Date `json:"from"`
	To   models.Date `json:"to"`
}

// Contains reports whether day lies inside the range.
func (r Range) Contains(day models.Date) bool {
	return !day.Before(r.From) && !day.After(r.To)
}

// Days returns the number of days covered.
func (r Range) Days() int {
	return r.From.DaysUntil(r.To) + 1
}

// Window returns the days a view shows around anchor. Weeks run Monday to Sunday and the
// grid view pads the month to whole weeks.
func Window(view View, anchor models.Date) (Range, error) {
	if anchor.IsZero() {
		return Range{}, fmt.Errorf("calendar window requires an anchor date")
	}

	switch view {
	case ViewDay:
		return Range{From: anchor, To: anchor}, nil
	case ViewWeek:
		return Range{From: anchor.StartOfWeek(), To: anchor.EndOfWeek()}, nil
	case ViewMonth, ViewList:
		return Range{From: anchor.StartOfMonth(), To: anchor.EndOfMonth()}, nil
	case ViewGrid:
		return Range{From: anchor.StartOfMonth().StartOfWeek(), To: anchor.EndOfMonth().EndOfWeek()}, nil
	default:
		return Range{}, fmt.Errorf("unknown calendar view %q", view)
	}
}
