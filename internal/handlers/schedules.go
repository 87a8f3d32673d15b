package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/models"
	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
)

// ScheduleHandler records member attendance slots.
type ScheduleHandler struct {
	teams     *services.TeamService
	schedules *services.ScheduleService
}

// createScheduleRequest takes either a single date or a start_date/end_date pair.
type createScheduleRequest struct {
	MemberID  string  `json:"member_id" validate:"required"`
	Date      string  `json:"date" validate:"omitempty,isodate"`
	StartDate string  `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string  `json:"end_date" validate:"omitempty,isodate"`
	StartTime string  `json:"start_time" validate:"required,hhmm"`
	EndTime   string  `json:"end_time" validate:"required,hhmm"`
	Task      *string `json:"task" validate:"omitempty,max=500"`
}

type updateScheduleRequest struct {
	StartTime *string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime   *string `json:"end_time" validate:"omitempty,hhmm"`
	Task      *string `json:"task" validate:"omitempty,max=500"`
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(teams *services.TeamService, schedules *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{teams: teams, schedules: schedules}
}

// POST /api/teams/:code/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var body createScheduleRequest
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
		schedule, err := h.schedules.Create(ctx, services.CreateScheduleInput{
			TeamID:    team.ID,
			MemberID:  body.MemberID,
			Date:      single,
			StartTime: body.StartTime,
			EndTime:   body.EndTime,
			Task:      body.Task,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusCreated, schedule)
		return
	}

	schedules, err := h.schedules.CreateRange(ctx, services.CreateScheduleRangeInput{
		TeamID:    team.ID,
		MemberID:  body.MemberID,
		StartDate: start,
		EndDate:   end,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Task:      body.Task,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusCreated, schedules, &response.Meta{Total: len(schedules)})
}

// PATCH /api/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	var body updateScheduleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	if body.StartTime == nil && body.EndTime == nil && body.Task == nil {
		response.Error(c, errors.NewBadRequest("no fields provided for update"))
		return
	}

	schedule, err := h.schedules.Update(requestContext(c), c.Param("id"), services.UpdateScheduleInput{
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Task:      body.Task,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, schedule)
}

// DELETE /api/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// resolveDates accepts exactly one of a single date or a complete start/end pair. For a
// single date the range values are zero.
func resolveDates(date, startDate, endDate string) (single, start, end models.Date, err error) {
	if date != "" {
		if startDate != "" || endDate != "" {
			return single, start, end, errors.NewBadRequest("use either date or start_date and end_date")
		}
		single, err = parseDateParam(date)
		return single, start, end, err
	}

	if startDate == "" || endDate == "" {
		return single, start, end, errors.NewBadRequest("date or start_date and end_date are required")
	}
	if start, err = parseDateParam(startDate); err != nil {
		return single, start, end, err
	}
	end, err = parseDateParam(endDate)
	return single, start, end, err
}
