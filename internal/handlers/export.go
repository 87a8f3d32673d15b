package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/charlesng35/teamcal/internal/ical"
	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
)

const (
	defaultQRCodeSize = 256
	maxQRCodeSize     = 1024

	// feed window around today, in months
	feedMonthsBack  = 1
	feedMonthsAhead = 12
)

// ExportHandler publishes a team's calendar as iCalendar and its join link as a QR code.
type ExportHandler struct {
	teams     *services.TeamService
	schedules *services.ScheduleService
	events    *services.EventService
	baseURL   string
	location  *time.Location
	clock     Clock
}

// NewExportHandler constructs an ExportHandler. baseURL is the public origin of the UI used
// in join links; when empty the request host is used.
func NewExportHandler(teams *services.TeamService, schedules *services.ScheduleService, events *services.EventService, baseURL string, loc *time.Location, clock Clock) *ExportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportHandler{
		teams:     teams,
		schedules: schedules,
		events:    events,
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		location:  loc,
		clock:     clock,
	}
}

// GET /api/teams/:code/calendar.ics
func (h *ExportHandler) ICS(c *gin.Context) {
	ctx := requestContext(c)
	team, err := h.teams.FindByCode(ctx, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	today := h.clock.today(h.location)
	from := today.AddMonths(-feedMonthsBack).StartOfMonth()
	to := today.AddMonths(feedMonthsAhead).EndOfMonth()

	events, err := h.events.ListBetween(ctx, team.ID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	schedules, err := h.schedules.ListBetween(ctx, team.ID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := ical.Feed(team, events, schedules, ical.FeedOptions{Location: h.location})
	c.Header("Content-Disposition", `attachment; filename="`+strings.ToLower(team.Code)+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// GET /api/teams/:code/qr.png?size=256
func (h *ExportHandler) QRCode(c *gin.Context) {
	team, err := h.teams.FindByCode(requestContext(c), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	size := parseIntQuery(c, "size", defaultQRCodeSize)
	if size <= 0 || size > maxQRCodeSize {
		response.Error(c, errors.NewBadRequest("size must be between 1 and 1024"))
		return
	}

	png, err := qrcode.Encode(h.joinURL(c, team.Code), qrcode.Medium, size)
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *ExportHandler) joinURL(c *gin.Context, code string) string {
	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/join/" + url.PathEscape(code)
}
