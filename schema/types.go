package schema

import "time"

// UserID identifies a backend user account.
type UserID int64

// JobID identifies a download job.
type JobID int64

// TaskID identifies a scheduled task.
type TaskID int64

// User is the identity returned by the "who am I" and user admin endpoints.
type User struct {
	ID       UserID `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	Avatar   string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	IsActive bool   `json:"is_active" yaml:"is_active"`
	IsAdmin  bool   `json:"is_admin" yaml:"is_admin"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token" yaml:"access_token"`
	TokenType   string `json:"token_type" yaml:"token_type"`
}

// RunningJob is one entry of the running-jobs snapshot pushed by the backend.
type RunningJob struct {
	ID             JobID  `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	UserID         UserID `json:"user_id" yaml:"user_id"`
	StartedAt      string `json:"started_at" yaml:"started_at"`
	CreateSymlinks bool   `json:"create_symlinks" yaml:"create_symlinks"`
	CurrentURL     string `json:"current_url,omitempty" yaml:"current_url,omitempty"`
}

// JobStatus describes a download job as returned by the start and status endpoints.
type JobStatus struct {
	ID             JobID      `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Status         string     `json:"status" yaml:"status"`
	CreateSymlinks bool       `json:"create_symlinks" yaml:"create_symlinks"`
	StartedAt      time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// UserJob pairs a user with the job they are currently running.
type UserJob struct {
	UserID    UserID `json:"user_id" yaml:"user_id"`
	Username  string `json:"username" yaml:"username"`
	JobID     JobID  `json:"job_id" yaml:"job_id"`
	JobName   string `json:"job_name" yaml:"job_name"`
	StartedAt string `json:"started_at" yaml:"started_at"`
}

// NamedItem is a list entry for configs, URL sources and download sources.
type NamedItem struct {
	Name string `json:"name" yaml:"name"`
}

// Content carries the text body of a named config or URL source.
type Content struct {
	Content string `json:"content" yaml:"content"`
}

// Message is the generic {"message": ...} acknowledgement.
type Message struct {
	Message string `json:"message" yaml:"message"`
}

// FileEntry describes a file or directory below a user's downloads folder.
type FileEntry struct {
	Path     string `json:"path" yaml:"path"`
	IsDir    bool   `json:"is_dir" yaml:"is_dir"`
	Size     int64  `json:"size" yaml:"size"`
	Modified string `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// AdminFilePage is one page of the admin file browser.
type AdminFilePage struct {
	Files   []FileEntry `json:"files" yaml:"files"`
	Total   int         `json:"total" yaml:"total"`
	Offset  int         `json:"offset" yaml:"offset"`
	Limit   int         `json:"limit" yaml:"limit"`
	HasMore bool        `json:"has_more" yaml:"has_more"`
}
