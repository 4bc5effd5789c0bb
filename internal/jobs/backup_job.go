package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// BackupJobName is the name of the nightly backup job
const BackupJobName = "backup_export"

// BackupExporter writes one backup per owner.
type BackupExporter interface {
	ExportAll(ctx context.Context) (int, error)
}

// BackupJob exports the backups of all owners.
type BackupJob struct {
	exporter BackupExporter
	logger   *zap.Logger
	timeout  time.Duration
}

func NewBackupJob(exporter BackupExporter, logger *zap.Logger, timeout time.Duration) *BackupJob {
	return &BackupJob{
		exporter: exporter,
		logger:   logger,
		timeout:  timeout,
	}
}

func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	exported, err := j.exporter.ExportAll(ctx)
	j.logger.Info("backup job completed",
		zap.Int("owners_exported", exported),
		zap.Bool("had_errors", err != nil))
	if err != nil {
		return fmt.Errorf("backup export: %w", err)
	}
	return nil
}

// RegisterBackupJob registers the backup job with the scheduler.
func RegisterBackupJob(scheduler *Scheduler, exporter BackupExporter, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewBackupJob(exporter, logger, timeout)
	return scheduler.AddJob(BackupJobName, cronExpr, job.Run)
}
