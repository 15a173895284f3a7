package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"attendtrack_go/database"
	"attendtrack_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// LogMaintenanceService flushes redis-cached activity logs into the
// database and prunes stale rows on a schedule.
type LogMaintenanceService struct {
	redisClient *redis.Client
	cron        *cron.Cron
}

func NewLogMaintenanceService() *LogMaintenanceService {
	return &LogMaintenanceService{
		redisClient: database.GetRedisClient(),
		cron:        cron.New(),
	}
}

// FlushCachedLogsToDatabase moves logs from the Redis queue to the database
func (lms *LogMaintenanceService) FlushCachedLogsToDatabase() error {
	if lms.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	cutoffTime := time.Now().Add(-1 * time.Hour)

	queued, err := lms.redisClient.ZRangeByScore(ctx, "activity:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", cutoffTime.Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read queued logs: %v", err)
	}

	var processedCount int
	var errorCount int

	for _, logKey := range queued {
		logData, err := lms.redisClient.Get(ctx, logKey).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).Errorf("Failed to get log data for key: %s", logKey)
				errorCount++
			}
			continue
		}

		var activityLog models.ActivityLog
		if err := json.Unmarshal([]byte(logData), &activityLog); err != nil {
			logrus.WithError(err).Errorf("Failed to unmarshal log data for key: %s", logKey)
			errorCount++
			continue
		}

		if err := database.DB.Create(&activityLog).Error; err != nil {
			logrus.WithError(err).Error("Failed to save activity log to database")
			errorCount++
			continue
		}

		pipeline := lms.redisClient.Pipeline()
		pipeline.Del(ctx, logKey)
		pipeline.ZRem(ctx, "activity:queue", logKey)
		if _, err := pipeline.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to remove log from cache: %s", logKey)
		}

		processedCount++
	}

	if processedCount > 0 || errorCount > 0 {
		logrus.Infof("Flushed %d activity logs to database, %d errors", processedCount, errorCount)
	}
	return nil
}

// PruneOldLogs deletes activity logs older than daysOld from the database.
func (lms *LogMaintenanceService) PruneOldLogs(daysOld int) error {
	if daysOld < 30 {
		return fmt.Errorf("minimum retention is 30 days")
	}
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	res := database.DB.Unscoped().Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if res.Error != nil {
		return fmt.Errorf("failed to prune activity logs: %v", res.Error)
	}
	if res.RowsAffected > 0 {
		logrus.Infof("Pruned %d activity logs older than %s", res.RowsAffected, cutoff.Format("2006-01-02"))
	}
	return nil
}

// StartScheduler flushes hourly and prunes nightly.
func (lms *LogMaintenanceService) StartScheduler() {
	// Run a flush immediately so a restart does not strand queued entries
	go func() {
		if err := lms.FlushCachedLogsToDatabase(); err != nil {
			logrus.WithError(err).Warn("initial activity log flush failed")
		}
	}()

	if _, err := lms.cron.AddFunc("@hourly", func() {
		if err := lms.FlushCachedLogsToDatabase(); err != nil {
			logrus.WithError(err).Warn("periodic activity log flush failed")
		}
	}); err != nil {
		logrus.WithError(err).Error("failed to schedule activity log flush")
	}
	if _, err := lms.cron.AddFunc("@daily", func() {
		if err := lms.PruneOldLogs(180); err != nil {
			logrus.WithError(err).Warn("activity log prune failed")
		}
	}); err != nil {
		logrus.WithError(err).Error("failed to schedule activity log prune")
	}
	lms.cron.Start()
}

// Stop halts the scheduler.
func (lms *LogMaintenanceService) Stop() {
	lms.cron.Stop()
}
