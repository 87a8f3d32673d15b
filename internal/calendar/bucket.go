package calendar

import (
	"slices"
	"strings"

	"github.com/charlesng35/teamcal/internal/models"
)

// DayBucket groups the items of one day.
type DayBucket struct {
	Date    models.Date `json:"date"`
	IsToday bool        `json:"is_today"`
	IsPast  bool        `json:"is_past"`
	InFocus bool        `json:"in_focus"`
	Items   []Item      `json:"items"`
}

// Layout describes how items are laid out into buckets. Focus marks the days that
// belong to the requested period (a month grid also shows padding days of adjacent
// months); a zero Focus means the whole window is in focus.
type Layout struct {
	Window    Range
	Focus     Range
	Today     models.Date
	FillEmpty bool
}

// Bucket groups items by day inside layout.Window. With FillEmpty every day of the window
// is present; otherwise only days that carry at least one item. Items outside the window
// are dropped.
func Bucket(items []Item, layout Layout) []DayBucket {
	focus := layout.Focus
	if focus.From.IsZero() || focus.To.IsZero() {
		focus = layout.Window
	}

	byDay := make(map[models.Date][]Item)
	for _, item := range items {
		day := item.Date()
		if !layout.Window.Contains(day) {
			continue
		}
		byDay[day] = append(byDay[day], item)
	}

	buckets := make([]DayBucket, 0, len(byDay))
	for day := layout.Window.From; !day.After(layout.Window.To); day = day.AddDays(1) {
		dayItems, ok := byDay[day]
		if !ok && !layout.FillEmpty {
			continue
		}
		if dayItems == nil {
			dayItems = []Item{}
		}
		SortItems(dayItems)

		buckets = append(buckets, DayBucket{
			Date:    day,
			IsToday: !layout.Today.IsZero() && day.Equal(layout.Today),
			IsPast:  !layout.Today.IsZero() && day.Before(layout.Today),
			InFocus: focus.Contains(day),
			Items:   dayItems,
		})
	}
	return buckets
}

// SortItems orders items in place: by date, then all-day items first, then by start time,
// end time and creation time. Remaining ties keep their input order.
func SortItems(items []Item) {
	slices.SortStableFunc(items, compareItems)
}

func compareItems(a, b Item) int {
	if c := a.Date().Compare(b.Date()); c != 0 {
		return c
	}

	aAllDay, bAllDay := a.IsAllDay(), b.IsAllDay()
	switch {
	case aAllDay && !bAllDay:
		return -1
	case !aAllDay && bAllDay:
		return 1
	}

	if c := strings.Compare(a.StartTime(), b.StartTime()); c != 0 {
		return c
	}
	if c := strings.Compare(a.EndTime(), b.EndTime()); c != 0 {
		return c
	}
	return a.CreatedAt().Compare(b.CreatedAt())
}
