package calendar

import (
	"fmt"
	"net/http"

	"github.com/charlesng35/teamcal/internal/models"
	apperrors "github.com/charlesng35/teamcal/pkg/errors"
)

// MaxRangeDays is the longest span, in days, a single range create may expand to. It
// admits any whole year, leap years included; longer spans fail with ErrRangeTooLong
// before any row is written.
const MaxRangeDays = 366

var (
	ErrInvalidRange = apperrors.New("INVALID_DATE_RANGE", "End date must not be before start date", http.StatusBadRequest)
	ErrRangeTooLong = apperrors.New("DATE_RANGE_TOO_LONG", fmt.Sprintf("Date range may span at most %d days", MaxRangeDays), http.StatusBadRequest)
	ErrMissingDate  = apperrors.New("INVALID_DATE", "Start and end dates are required", http.StatusBadRequest)
)

// ExpandRange returns every day in the closed interval [start, end]. Days are stepped
// on the civil calendar so DST transitions never skip or repeat a day.
func ExpandRange(start, end models.Date) ([]models.Date, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrMissingDate
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	count := start.DaysUntil(end) + 1
	if count > MaxRangeDays {
		return nil, ErrRangeTooLong
	}

	days := make([]models.Date, 0, count)
	for day := start; !day.After(end); day = day.AddDays(1) {
		days = append(days, day)
	}
	return days, nil
}

// Expand copies template once per day of [start, end]; stamp sets the date on each copy.
// Nothing is produced when the range is rejected.
func Expand[T any](start, end models.Date, template T, stamp func(T, models.Date) T) ([]T, error) {
	days, err := ExpandRange(start, end)
	if err != nil {
		return nil, err
	}

	records := make([]T, len(days))
	for i, day := range days {
		records[i] = stamp(template, day)
	}
	return records, nil
}
