package schema

import "time"

// TaskType selects what a scheduled task does.
type TaskType string

const (
	// TaskTypeDownload runs a download source on schedule.
	TaskTypeDownload TaskType = "download"
	// TaskTypeCleanup deletes old files on schedule.
	TaskTypeCleanup TaskType = "cleanup"
)

// ScheduledTask is a cron-driven task owned by a user.
type ScheduledTask struct {
	ID             TaskID     `json:"id" yaml:"id"`
	UserID         UserID     `json:"user_id" yaml:"user_id"`
	Name           string     `json:"name" yaml:"name"`
	TaskType       TaskType   `json:"task_type" yaml:"task_type"`
	Datasource     string     `json:"datasource,omitempty" yaml:"datasource,omitempty"`
	CronExpression string     `json:"cron_expression" yaml:"cron_expression"`
	Config         string     `json:"config,omitempty" yaml:"config,omitempty"`
	IsActive       bool       `json:"is_active" yaml:"is_active"`
	LastRun        *time.Time `json:"last_run,omitempty" yaml:"last_run,omitempty"`
	NextRun        *time.Time `json:"next_run,omitempty" yaml:"next_run,omitempty"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
}

// ScheduledTaskCreate is the body of a task creation request.
type ScheduledTaskCreate struct {
	Name           string   `json:"name"`
	TaskType       TaskType `json:"task_type"`
	Datasource     string   `json:"datasource,omitempty"`
	CronExpression string   `json:"cron_expression"`
	Config         string   `json:"config,omitempty"`
	TargetUserID   *UserID  `json:"target_user_id,omitempty"`
}

// ScheduledTaskUpdate is a partial task update; nil fields are left unchanged.
type ScheduledTaskUpdate struct {
	Name           *string   `json:"name,omitempty"`
	TaskType       *TaskType `json:"task_type,omitempty"`
	Datasource     *string   `json:"datasource,omitempty"`
	CronExpression *string   `json:"cron_expression,omitempty"`
	Config         *string   `json:"config,omitempty"`
	IsActive       *bool     `json:"is_active,omitempty"`
}

// CleanupResult reports what a cleanup-by-age run removed.
type CleanupResult struct {
	FilesDeleted   int   `json:"files_deleted" yaml:"files_deleted"`
	FoldersDeleted int   `json:"folders_deleted" yaml:"folders_deleted"`
	SpaceFreed     int64 `json:"space_freed" yaml:"space_freed"`
}

// CleanupCount previews what a cleanup-by-age run would remove.
type CleanupCount struct {
	FilesCount   int   `json:"files_count" yaml:"files_count"`
	FoldersCount int   `json:"folders_count" yaml:"folders_count"`
	TotalSize    int64 `json:"total_size" yaml:"total_size"`
}
