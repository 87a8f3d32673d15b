package services

import (
	"net/http"

	apperrors "github.com/charlesng35/teamcal/pkg/errors"
)

var (
	// ErrTeamNotFound indicates the requested team does not exist.
	ErrTeamNotFound = apperrors.New("TEAM_NOT_FOUND", "Team not found", http.StatusNotFound)
	// ErrMemberNotFound indicates the requested member does not exist in the team.
	ErrMemberNotFound = apperrors.New("MEMBER_NOT_FOUND", "Member not found", http.StatusNotFound)
	// ErrScheduleNotFound indicates the requested schedule does not exist.
	ErrScheduleNotFound = apperrors.New("SCHEDULE_NOT_FOUND", "Schedule not found", http.StatusNotFound)
	// ErrEventNotFound indicates the requested event does not exist.
	ErrEventNotFound = apperrors.New("EVENT_NOT_FOUND", "Event not found", http.StatusNotFound)

	// ErrInvalidAdminCode is returned for a wrong admin code and for unknown teams alike.
	ErrInvalidAdminCode = apperrors.New("INVALID_ADMIN_CODE", "Invalid admin code", http.StatusForbidden)
	// ErrTeamCodeTaken signals that another team already uses the join code.
	ErrTeamCodeTaken = apperrors.New("TEAM_CODE_TAKEN", "Team code is already in use", http.StatusConflict)

	ErrInvalidTeamCode   = apperrors.New("INVALID_TEAM_CODE", "Team code must be 4-10 letters or digits", http.StatusBadRequest)
	ErrInvalidAdminInput = apperrors.New("INVALID_ADMIN_CODE_FORMAT", "Admin code must be 4-10 letters or digits without spaces or symbols", http.StatusBadRequest)
	ErrInvalidTime       = apperrors.New("INVALID_TIME", "Times must use the 24 hour HH:MM format", http.StatusBadRequest)
	ErrInvalidTimeRange  = apperrors.New("INVALID_TIME_RANGE", "Start time must be before end time", http.StatusBadRequest)
	ErrInvalidColor      = apperrors.New("INVALID_COLOR", "Unknown member color", http.StatusBadRequest)
	ErrInvalidDate       = apperrors.New("INVALID_DATE", "Date is required", http.StatusBadRequest)
)
