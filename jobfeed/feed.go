// Package jobfeed keeps a live snapshot of the backend's running jobs by
// following the running-jobs event stream, reconnecting after transport
// errors while a credential is held.
package jobfeed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"pkt.systems/dlmgr/apiclient"
	"pkt.systems/dlmgr/internal/observable"
	"pkt.systems/dlmgr/internal/sse"
	"pkt.systems/dlmgr/internal/timer"
	"pkt.systems/dlmgr/schema"
	"pkt.systems/pslog"
)

// DefaultRetryDelay is the pause between a transport error and the reconnect.
const DefaultRetryDelay = 5 * time.Second

// State is the connection state of a Feed.
type State int

const (
	// StateClosed means no connection and no pending reconnect.
	StateClosed State = iota
	// StateOpen means a connection is being established or is listening.
	StateOpen
	// StateRetryPending means a reconnect is scheduled.
	StateRetryPending
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateRetryPending:
		return "retry-pending"
	default:
		return "closed"
	}
}

// Stream yields raw events of one connection.
type Stream interface {
	Next() (sse.Event, error)
	Close() error
}

// Opener establishes a connection. The connection must end when ctx ends.
type Opener func(ctx context.Context) (Stream, error)

// Credentials reports whether a bearer token is held.
type Credentials interface {
	Has() bool
}

// FromClient returns an Opener backed by the client's running-jobs stream.
func FromClient(client *apiclient.Client) Opener {
	return func(ctx context.Context) (Stream, error) {
		stream, err := client.OpenRunningJobs(ctx)
		if err != nil {
			return nil, err
		}
		return stream, nil
	}
}

// Config configures a Feed.
type Config struct {
	Open        Opener
	Credentials Credentials
	// Scheduler drives reconnects; defaults to the system clock.
	Scheduler  timer.Scheduler
	RetryDelay time.Duration
	Logger     pslog.Logger
}

// Feed follows the running-jobs stream. At most one connection is live at a
// time; every connection carries a generation number and anything reported by
// a superseded generation is discarded.
//
// The job list is published while the feed's lock is held, so subscribers of
// Jobs must not call Start or Stop synchronously.
type Feed struct {
	open  Opener
	creds Credentials
	sched timer.Scheduler
	delay time.Duration
	log   pslog.Logger
	jobs  *observable.Cell[[]schema.RunningJob]
	// current is the job the user is following; zero when none.
	current *observable.Cell[schema.JobID]

	mu     sync.Mutex
	state  State
	gen    uint64
	parent context.Context
	cancel context.CancelFunc
	stream Stream
	retry  timer.Timer
}

// New constructs a closed Feed.
func New(cfg Config) *Feed {
	sched := cfg.Scheduler
	if sched == nil {
		sched = timer.System{}
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Feed{
		open:    cfg.Open,
		creds:   cfg.Credentials,
		sched:   sched,
		delay:   delay,
		log:     logger,
		jobs:    observable.New([]schema.RunningJob{}),
		current: observable.New[schema.JobID](0),
	}
}

// Jobs is the latest running-jobs snapshot.
func (f *Feed) Jobs() observable.Readable[[]schema.RunningJob] {
	return f.jobs
}

// CurrentJob is the job the user is following.
func (f *Feed) CurrentJob() observable.Readable[schema.JobID] {
	return f.current
}

// SetCurrentJob selects the followed job; zero clears the selection.
func (f *Feed) SetCurrentJob(id schema.JobID) {
	f.current.Set(id)
}

// Current returns the followed job from the latest snapshot.
func (f *Feed) Current() (schema.RunningJob, bool) {
	id := f.current.Get()
	if id == 0 {
		return schema.RunningJob{}, false
	}
	for _, job := range f.jobs.Get() {
		if job.ID == id {
			return job, true
		}
	}
	return schema.RunningJob{}, false
}

// State returns the connection state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Start (re)opens the stream. An open connection or pending reconnect is
// dropped first. ctx bounds the feed: once it ends the feed closes and does
// not reconnect.
func (f *Feed) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parent = ctx
	f.connectLocked()
}

// Stop closes the stream, cancels a pending reconnect and publishes an empty
// job list.
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	wasActive := f.state != StateClosed
	f.resetLocked()
	f.state = StateClosed
	f.jobs.Set([]schema.RunningJob{})
	if wasActive {
		f.log.Debug("jobfeed stopped")
	}
}

func (f *Feed) resetLocked() {
	f.gen++
	if f.retry != nil {
		f.retry.Stop()
		f.retry = nil
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if f.stream != nil {
		_ = f.stream.Close()
		f.stream = nil
	}
}

func (f *Feed) connectLocked() {
	f.resetLocked()
	if f.parent.Err() != nil {
		f.state = StateClosed
		return
	}
	ctx, cancel := context.WithCancel(f.parent)
	f.cancel = cancel
	f.state = StateOpen
	go f.run(ctx, f.gen)
}

func (f *Feed) run(ctx context.Context, gen uint64) {
	log := f.log.With("feed_gen", gen)
	var (
		stream Stream
		err    error
	)
	if f.open == nil {
		err = schema.ErrFeedClosed
	} else {
		stream, err = f.open(ctx)
	}
	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		if err == nil {
			_ = stream.Close()
		}
		return
	}
	if err != nil {
		f.failLocked(log, err)
		f.mu.Unlock()
		return
	}
	f.stream = stream
	f.mu.Unlock()
	log.Debug("jobfeed open")

	for {
		ev, err := stream.Next()
		if err != nil {
			_ = stream.Close()
			f.mu.Lock()
			if gen == f.gen {
				f.failLocked(log, err)
			}
			f.mu.Unlock()
			return
		}
		var jobs []schema.RunningJob
		if err := json.Unmarshal([]byte(ev.Data), &jobs); err != nil {
			log.Warn("jobfeed message dropped", "err", err)
			continue
		}
		if jobs == nil {
			jobs = []schema.RunningJob{}
		}
		f.mu.Lock()
		if gen != f.gen {
			f.mu.Unlock()
			return
		}
		f.jobs.Set(jobs)
		f.mu.Unlock()
		log.Trace("jobfeed snapshot", "jobs", len(jobs))
	}
}

// failLocked tears down the current connection and schedules one reconnect.
func (f *Feed) failLocked(log pslog.Logger, err error) {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.stream = nil
	if f.parent.Err() != nil {
		f.state = StateClosed
		log.Debug("jobfeed closed", "err", f.parent.Err())
		return
	}
	f.state = StateRetryPending
	log.Warn("jobfeed transport error", "err", err, "retry_in", f.delay.String())
	gen := f.gen
	f.retry = f.sched.AfterFunc(f.delay, func() { f.reconnect(gen) })
}

func (f *Feed) reconnect(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.state != StateRetryPending {
		return
	}
	f.retry = nil
	if f.parent.Err() != nil {
		f.state = StateClosed
		return
	}
	if f.creds == nil || !f.creds.Has() {
		f.state = StateClosed
		f.log.Info("jobfeed retry skipped", "reason", "no credential")
		return
	}
	f.connectLocked()
}
