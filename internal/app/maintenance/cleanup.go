package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/models"
	"github.com/charlesng35/teamcal/pkg/logger"
)

const (
	defaultCacheSpec  = "@every 15m"
	defaultOrphanSpec = "@daily"

	// JobCachePurge names the expired cache purge job.
	JobCachePurge = "cache_purge"
	// JobOrphanCleanup names the orphaned row cleanup job.
	JobOrphanCleanup = "orphan_cleanup"
)

// JobStatus summarises the runs of one maintenance job.
type JobStatus struct {
	Job                 string    `json:"job"`
	LastRunAt           time.Time `json:"last_run_at"`
	LastError           string    `json:"last_error,omitempty"`
	TotalRuns           int       `json:"total_runs"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// CachePurger removes expired cache entries.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Cleaner coordinates background maintenance tasks: purging expired cache rows and
// removing rows orphaned by deletes on drivers that do not enforce foreign keys.
type Cleaner struct {
	db      *gorm.DB
	cache   CachePurger
	cron    *cron.Cron
	log     *zap.Logger
	enabled bool

	cacheSchedule  string
	orphanSchedule string

	mu     sync.Mutex
	status map[string]JobStatus
	now    func() time.Time
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithCacheSchedule overrides the cron expression for cache purging.
func WithCacheSchedule(expr string) Option {
	return func(cleaner *Cleaner) {
		if expr != "" {
			cleaner.cacheSchedule = expr
		}
	}
}

// WithOrphanSchedule overrides the cron expression for orphan cleanup.
func WithOrphanSchedule(expr string) Option {
	return func(cleaner *Cleaner) {
		if expr != "" {
			cleaner.orphanSchedule = expr
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency results in
// the corresponding cleanup job being skipped.
func NewCleaner(db *gorm.DB, purger CachePurger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:             db,
		cache:          purger,
		cacheSchedule:  defaultCacheSpec,
		orphanSchedule: defaultOrphanSpec,
		log:            logger.WithModule("maintenance"),
		status:         make(map[string]JobStatus),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.cache != nil || cleaner.db != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.cache != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			if err := c.purgeCache(context.Background()); err != nil {
				c.log.Warn("cache purge failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule cache purge: %w", err)
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.orphanSchedule, func() {
			if err := c.cleanupOrphans(context.Background()); err != nil {
				c.log.Warn("orphan cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule orphan cleanup: %w", err)
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.cache != nil {
		errs = multierr.Append(errs, c.purgeCache(ctx))
	}
	if c.db != nil {
		errs = multierr.Append(errs, c.cleanupOrphans(ctx))
	}

	return errs
}

// Jobs reports the outcome of each job's most recent run, ordered by job name.
func (c *Cleaner) Jobs() []JobStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobs := make([]JobStatus, 0, len(c.status))
	for _, status := range c.status {
		jobs = append(jobs, status)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Job < jobs[j].Job })
	return jobs
}

func (c *Cleaner) purgeCache(ctx context.Context) error {
	removed, err := c.cache.PurgeExpired(ctx)
	if err != nil {
		err = fmt.Errorf("purge cache: %w", err)
	} else if removed > 0 {
		c.log.Debug("purged expired cache entries", zap.Int64("removed", removed))
	}
	c.record(JobCachePurge, err)
	return err
}

func (c *Cleaner) cleanupOrphans(ctx context.Context) error {
	stats, err := CleanupOrphans(ctx, c.db)
	if err == nil && stats.Total() > 0 {
		c.log.Info("removed orphaned rows",
			zap.Int64("schedules", stats.Schedules),
			zap.Int64("members", stats.Members),
			zap.Int64("events", stats.Events),
		)
	}
	c.record(JobOrphanCleanup, err)
	return err
}

func (c *Cleaner) record(job string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := c.status[job]
	status.Job = job
	status.LastRunAt = c.now()
	status.TotalRuns++
	if err != nil {
		status.LastError = err.Error()
		status.ConsecutiveFailures++
	} else {
		status.LastError = ""
		status.ConsecutiveFailures = 0
	}
	c.status[job] = status
}

// OrphanCleanupStats captures the number of records removed per table.
type OrphanCleanupStats struct {
	Schedules int64
	Members   int64
	Events    int64
}

// Total returns the number of rows removed across tables.
func (s OrphanCleanupStats) Total() int64 {
	return s.Schedules + s.Members + s.Events
}

// CleanupOrphans removes schedules, members and events whose parent row no longer exists.
func CleanupOrphans(ctx context.Context, db *gorm.DB) (OrphanCleanupStats, error) {
	if db == nil {
		return OrphanCleanupStats{}, errors.New("cleanup orphans: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := OrphanCleanupStats{}

	teamIDs := db.Model(&models.Team{}).Select("id")

	if result := db.WithContext(ctx).
		Where("team_id NOT IN (?)", teamIDs).
		Delete(&models.Member{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup orphans: members: %w", result.Error)
	} else {
		stats.Members = result.RowsAffected
	}

	memberIDs := db.Model(&models.Member{}).Select("id")
	if result := db.WithContext(ctx).
		Where("member_id NOT IN (?)", memberIDs).
		Delete(&models.Schedule{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup orphans: schedules: %w", result.Error)
	} else {
		stats.Schedules = result.RowsAffected
	}

	if result := db.WithContext(ctx).
		Where("team_id NOT IN (?)", teamIDs).
		Delete(&models.Event{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup orphans: events: %w", result.Error)
	} else {
		stats.Events = result.RowsAffected
	}

	return stats, nil
}
