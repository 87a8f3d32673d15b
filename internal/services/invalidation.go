package services

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/teamcal/internal/cache"
	"github.com/charlesng35/teamcal/internal/models"
	"github.com/charlesng35/teamcal/internal/realtime"
	"github.com/charlesng35/teamcal/pkg/logger"
	"github.com/charlesng35/teamcal/pkg/metrics"
)

// calendarVersionTTL bounds how long an idle version counter is kept. Cached views expire
// long before it, so a reset counter can never resurrect a stale view.
const calendarVersionTTL = 30 * 24 * time.Hour

// Invalidator is notified after every mutation of team scoped data.
type Invalidator interface {
	InvalidateTeam(ctx context.Context, team *models.Team)
}

// TeamSignal bumps the team's calendar cache version and pushes an invalidate message to
// connected viewers. Failures are logged and never surface to the caller.
type TeamSignal struct {
	store cache.Store
	hub   realtime.Broadcaster
}

// NewTeamSignal constructs a TeamSignal. Either dependency may be nil.
func NewTeamSignal(store cache.Store, hub realtime.Broadcaster) *TeamSignal {
	return &TeamSignal{store: store, hub: hub}
}

// InvalidateTeam implements Invalidator.
func (s *TeamSignal) InvalidateTeam(ctx context.Context, team *models.Team) {
	if s == nil || team == nil {
		return
	}
	ctx = ensureContext(ctx)
	metrics.Invalidations.Inc()

	version := int64(0)
	if s.store != nil {
		next, _, err := s.store.IncrementWithTTL(ctx, calendarVersionKey(team.ID), calendarVersionTTL)
		if err != nil {
			logger.WithTeam("invalidation", team.Code).Warn("bump calendar version", zap.Error(err))
		} else {
			version = next
		}
	}

	if s.hub != nil {
		s.hub.BroadcastStream(realtime.TeamStream(team.Code), realtime.Message{
			Event: realtime.EventInvalidate,
			Data: map[string]any{
				"team":    team.Code,
				"version": version,
			},
		})
	}
}

func calendarVersionKey(teamID string) string {
	return "calendar:version:" + teamID
}

// calendarVersion returns the current version counter of a team, "0" when unset.
func calendarVersion(ctx context.Context, store cache.Store, teamID string) (string, error) {
	raw, ok, err := store.Get(ctx, calendarVersionKey(teamID))
	if err != nil {
		return "", err
	}
	if !ok {
		return "0", nil
	}
	if _, err := strconv.ParseInt(string(raw), 10, 64); err != nil {
		return "0", nil
	}
	return string(raw), nil
}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateTeam(context.Context, *models.Team) {}

func invalidatorOrNop(inv Invalidator) Invalidator {
	if inv == nil {
		return nopInvalidator{}
	}
	return inv
}
