package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/calendar"
	"github.com/charlesng35/teamcal/internal/models"
	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
)

// CalendarHandler serves bucketed calendar views.
type CalendarHandler struct {
	teams    *services.TeamService
	calendar *services.CalendarService
	location *time.Location
	clock    Clock
}

// NewCalendarHandler constructs a CalendarHandler. loc decides which day is "today"; nil
// means UTC. clock may be nil.
func NewCalendarHandler(teams *services.TeamService, cal *services.CalendarService, loc *time.Location, clock Clock) *CalendarHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarHandler{teams: teams, calendar: cal, location: loc, clock: clock}
}

// GET /api/teams/:code/calendar?view=day|week|month|list&date=YYYY-MM-DD
//
// year and month may replace date; they anchor on the first of that month.
func (h *CalendarHandler) View(c *gin.Context) {
	view := calendar.ViewMonth
	if raw := strings.TrimSpace(c.Query("view")); raw != "" {
		parsed, err := calendar.ParseView(raw)
		if err != nil {
			response.Error(c, errors.NewBadRequest("view must be one of day, week, month, grid, list"))
			return
		}
		view = parsed
	}

	today := h.clock.today(h.location)
	anchor, err := anchorFromQuery(c, today)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := requestContext(c)
	team, err := h.teams.FindByCode(ctx, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.calendar.View(ctx, team.ID, view, anchor, today)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func anchorFromQuery(c *gin.Context, today models.Date) (models.Date, error) {
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		return parseDateParam(raw)
	}

	rawYear, rawMonth := strings.TrimSpace(c.Query("year")), strings.TrimSpace(c.Query("month"))
	if rawYear == "" && rawMonth == "" {
		return today, nil
	}

	year, err := strconv.Atoi(rawYear)
	if err != nil || year < 1 || year > 9999 {
		return models.Date{}, errors.NewBadRequest("year must be a number between 1 and 9999")
	}
	month, err := strconv.Atoi(rawMonth)
	if err != nil || month < 1 || month > 12 {
		return models.Date{}, errors.NewBadRequest("month must be a number between 1 and 12")
	}
	return models.NewDate(year, time.Month(month), 1), nil
}
