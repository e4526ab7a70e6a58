package database

import (
	"fmt"

	"github.com/yukikurage/consultant-ledger/internal/logging"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes the dashboard and timesheet queries rely on.
// Existing indexes are skipped, so it is safe to run on every start.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model any
		table string
		name  string
		cols  string
	}{
		{&models.Task{}, "tasks", "idx_tasks_status", "status"},
		{&models.Task{}, "tasks", "idx_tasks_due_date", "due_date"},
		{&models.Task{}, "tasks", "idx_tasks_start_date", "start_date"},
		{&models.TimeLog{}, "time_logs", "idx_time_logs_task_date", "task_id, date"},
		{&models.Subtask{}, "subtasks", "idx_subtasks_parent_status", "parent_id, status"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			logging.Logger.Debugf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.cols)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logging.Logger.Infof("Created index %s on %s(%s)", idx.name, idx.table, idx.cols)
	}

	return nil
}
