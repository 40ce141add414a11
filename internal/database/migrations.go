package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddIndexes adds composite indexes used by authorization and list queries
func AddIndexes(db *gorm.DB, log *logrus.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Owner counting during role changes
		{"members", "idx_members_workspace_role", "workspace_id, role_name"},

		// Task listing inside a project, optionally by status
		{"tasks", "idx_tasks_project_status", "project_id, status"},
		{"tasks", "idx_tasks_workspace_project", "workspace_id, project_id"},

		// Project listing inside a workspace
		{"projects", "idx_projects_workspace_created", "workspace_id, created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithFields(logrus.Fields{
			"index":   idx.name,
			"table":   idx.table,
			"columns": idx.columns,
		}).Info("Created index")
	}

	return nil
}
