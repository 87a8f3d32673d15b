package checks

import (
	"context"
	"strings"
	"time"

	"github.com/charlesng35/teamcal/internal/app/maintenance"
	"github.com/charlesng35/teamcal/internal/monitoring"
)

const defaultMaintenanceMaxAge = 36 * time.Hour

// MaintenanceReporter exposes the run history of background jobs.
type MaintenanceReporter interface {
	Jobs() []maintenance.JobStatus
}

// Maintenance reports down while any job is failing repeatedly and degraded when a job
// has not run within maxAge. Jobs that have not run yet are not counted against health.
func Maintenance(reporter MaintenanceReporter, maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultMaintenanceMaxAge
	}

	return monitoring.NewCheck("maintenance", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if reporter == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "maintenance disabled",
				Duration: time.Since(start),
			}
		}

		status := monitoring.StatusUp
		var problems []string
		for _, job := range reporter.Jobs() {
			if job.ConsecutiveFailures > 1 {
				status = monitoring.Worst(status, monitoring.StatusDown)
				problems = append(problems, job.Job+": "+job.LastError)
				continue
			}
			if job.ConsecutiveFailures == 1 {
				status = monitoring.Worst(status, monitoring.StatusDegraded)
				problems = append(problems, job.Job+": "+job.LastError)
			}
			if !job.LastRunAt.IsZero() && start.Sub(job.LastRunAt) > maxAge {
				status = monitoring.Worst(status, monitoring.StatusDegraded)
				problems = append(problems, job.Job+": stale run "+job.LastRunAt.UTC().Format(time.RFC3339))
			}
		}

		return monitoring.ProbeResult{
			Status:   status,
			Details:  strings.Join(problems, "; "),
			Duration: time.Since(start),
		}
	})
}
