package dlmgr

import (
	"context"
	"strconv"
	"sync"

	"pkt.systems/dlmgr/internal/logx"
	"pkt.systems/dlmgr/schema"
	"pkt.systems/dlmgr/toast"
	"pkt.systems/pslog"
)

// jobNotices turns job list changes into toasts. The first snapshot after a
// reset is taken as the baseline. It runs inside feed publication and must
// not call back into the feed.
type jobNotices struct {
	toasts *toast.Manager
	log    pslog.Logger

	mu     sync.Mutex
	primed bool
	muted  bool
	known  map[schema.JobID]schema.RunningJob
}

func (n *jobNotices) observe(jobs []schema.RunningJob) {
	if n == nil {
		return
	}
	n.mu.Lock()
	if n.muted {
		n.mu.Unlock()
		return
	}
	next := make(map[schema.JobID]schema.RunningJob, len(jobs))
	for _, job := range jobs {
		next[job.ID] = job
	}
	if !n.primed {
		n.primed = true
		n.known = next
		n.mu.Unlock()
		return
	}
	var started, finished []schema.RunningJob
	for _, job := range jobs {
		if _, ok := n.known[job.ID]; !ok {
			started = append(started, job)
		}
	}
	for id, job := range n.known {
		if _, ok := next[id]; !ok {
			finished = append(finished, job)
		}
	}
	n.known = next
	n.mu.Unlock()

	for _, job := range started {
		n.jobLog(job).Info("job started")
		n.toasts.Info("Download started: " + jobLabel(job))
	}
	for _, job := range finished {
		n.jobLog(job).Info("job finished")
		n.toasts.Success("Download finished: " + jobLabel(job))
	}
}

func (n *jobNotices) mute() {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.muted = true
	n.mu.Unlock()
}

func (n *jobNotices) reset() {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.muted = false
	n.primed = false
	n.known = nil
	n.mu.Unlock()
}

func (n *jobNotices) jobLog(job schema.RunningJob) pslog.Logger {
	if n.log == nil {
		return logx.WithJob(pslog.Ctx(context.Background()), job)
	}
	return logx.WithJob(n.log, job)
}

func jobLabel(job schema.RunningJob) string {
	if job.Name != "" {
		return job.Name
	}
	return "job " + strconv.FormatInt(int64(job.ID), 10)
}
