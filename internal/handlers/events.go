package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
)

// EventHandler manages team calendar events.
type EventHandler struct {
	teams  *services.TeamService
	events *services.EventService
}

// createEventRequest takes either a single date or a start_date/end_date pair. Omitting
// both times creates an all-day event.
type createEventRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Date        string  `json:"date" validate:"omitempty,isodate"`
	StartDate   string  `json:"start_date" validate:"omitempty,isodate"`
	EndDate     string  `json:"end_date" validate:"omitempty,isodate"`
	StartTime   *string `json:"start_time" validate:"omitempty,clearable_hhmm"`
	EndTime     *string `json:"end_time" validate:"omitempty,clearable_hhmm"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// updateEventRequest keeps absent fields; an empty string clears an optional field.
type updateEventRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Date        *string `json:"date" validate:"omitempty,isodate"`
	StartTime   *string `json:"start_time" validate:"omitempty,clearable_hhmm"`
	EndTime     *string `json:"end_time" validate:"omitempty,clearable_hhmm"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(teams *services.TeamService, events *services.EventService) *EventHandler {
	return &EventHandler{teams: teams, events: events}
}

// POST /api/teams/:code/events
func (h *EventHandler) Create(c *gin.Context) {
	var body createEventRequest
	if !bindAndValidate(c, &body) {
		return
	}

	single, start, end, err := resolveDates(body.Date, body.StartDate, body.EndDate)
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

	if !single.IsZero() {
		event, err := h.events.Create(ctx, services.CreateEventInput{
			TeamID:      team.ID,
			Title:       body.Title,
			Date:        single,
			StartTime:   body.StartTime,
			EndTime:     body.EndTime,
			Description: body.Description,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusCreated, event)
		return
	}

	events, err := h.events.CreateRange(ctx, services.CreateEventRangeInput{
		TeamID:      team.ID,
		Title:       body.Title,
		StartDate:   start,
		EndDate:     end,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusCreated, events, &response.Meta{Total: len(events)})
}

// PATCH /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var body updateEventRequest
	if !bindAndValidate(c, &body) {
		return
	}
	if body.Title == nil && body.Date == nil && body.StartTime == nil && body.EndTime == nil && body.Description == nil {
		response.Error(c, errors.NewBadRequest("no fields provided for update"))
		return
	}

	input := services.UpdateEventInput{
		Title:       body.Title,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Description: body.Description,
	}
	if body.Date != nil {
		day, err := parseDateParam(*body.Date)
		if err != nil {
			response.Error(c, err)
			return
		}
		if day.IsZero() {
			response.Error(c, services.ErrInvalidDate)
			return
		}
		input.Date = &day
	}

	event, err := h.events.Update(requestContext(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
