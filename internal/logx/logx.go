package logx

import (
	"pkt.systems/dlmgr/schema"
	"pkt.systems/pslog"
)

// WithSessionUser annotates the logger with the session user's name and id.
func WithSessionUser(log pslog.Logger, user *schema.User) pslog.Logger {
	if user == nil {
		return log
	}
	if user.Username != "" {
		log = log.With("user", user.Username)
	}
	if user.ID != 0 {
		log = log.With("user_id", int64(user.ID))
	}
	return log
}

// WithJob annotates the logger with job metadata when available.
func WithJob(log pslog.Logger, job schema.RunningJob) pslog.Logger {
	if job.ID != 0 {
		log = log.With("job_id", int64(job.ID))
	}
	if job.Name != "" {
		log = log.With("job", job.Name)
	}
	return log
}
