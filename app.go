// Package dlmgr wires the download-manager client together: credential
// storage, the request gateway, session state, the live job feed, toasts and
// overlays.
package dlmgr

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"pkt.systems/dlmgr/apiclient"
	"pkt.systems/dlmgr/internal/appconfig"
	"pkt.systems/dlmgr/internal/credential"
	"pkt.systems/dlmgr/internal/timer"
	"pkt.systems/dlmgr/jobfeed"
	"pkt.systems/dlmgr/overlay"
	"pkt.systems/dlmgr/session"
	"pkt.systems/dlmgr/toast"
	"pkt.systems/pslog"
)

// Option customises App construction.
type Option func(*appOptions)

type appOptions struct {
	logger     pslog.Logger
	httpClient *http.Client
	scheduler  timer.Scheduler
	kv         credential.KV
	notices    bool
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger pslog.Logger) Option {
	return func(o *appOptions) { o.logger = logger }
}

// WithHTTPClient overrides the HTTP client used by the gateway.
func WithHTTPClient(client *http.Client) Option {
	return func(o *appOptions) { o.httpClient = client }
}

// WithScheduler drives toast expiry and feed reconnects.
func WithScheduler(s timer.Scheduler) Option {
	return func(o *appOptions) { o.scheduler = s }
}

// WithCredentialKV replaces the configured credential backend.
func WithCredentialKV(kv credential.KV) Option {
	return func(o *appOptions) { o.kv = kv }
}

// WithJobNotices shows a toast whenever a job appears in or leaves the feed.
func WithJobNotices() Option {
	return func(o *appOptions) { o.notices = true }
}

// App holds the client components.
type App struct {
	Credentials *credential.Store
	API         *apiclient.Client
	Session     *session.Session
	Feed        *jobfeed.Feed
	Toasts      *toast.Manager
	Overlays    *overlay.State

	log     pslog.Logger
	notices *jobNotices

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	unsubs  []func()
}

// New constructs the client from cfg. A configured token is kept in memory;
// otherwise the credential lives in cfg.Credential.TokenFile, encrypted when
// cfg.Credential.Encrypt is set.
func New(cfg appconfig.Config, opts ...Option) (*App, error) {
	options := appOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	log := options.logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	sched := options.scheduler
	if sched == nil {
		sched = timer.System{}
	}

	creds, err := newCredentialStore(cfg, options.kv, log)
	if err != nil {
		return nil, err
	}
	api, err := apiclient.New(apiclient.Config{
		BaseURL:     cfg.BaseURL,
		HTTPClient:  options.httpClient,
		Timeout:     cfg.HTTP.Timeout(),
		UserAgent:   cfg.HTTP.UserAgent,
		Credentials: creds,
		Saver:       apiclient.DirSaver{Dir: cfg.DownloadDir},
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	app := &App{
		Credentials: creds,
		API:         api,
		Session:     session.New(api, creds, log),
		Feed: jobfeed.New(jobfeed.Config{
			Open:        jobfeed.FromClient(api),
			Credentials: creds,
			Scheduler:   sched,
			RetryDelay:  cfg.Feed.RetryDelay(),
			Logger:      log,
		}),
		Toasts: toast.New(
			toast.WithScheduler(sched),
			toast.WithDuration(cfg.Toast.Duration()),
			toast.WithLogger(log),
		),
		Overlays: overlay.New(),
		log:      log,
	}
	if options.notices {
		app.notices = &jobNotices{toasts: app.Toasts, log: log}
	}
	return app, nil
}

func newCredentialStore(cfg appconfig.Config, kv credential.KV, log pslog.Logger) (*credential.Store, error) {
	if kv == nil && cfg.Token != "" {
		kv = credential.NewMemoryKV()
	}
	if kv == nil {
		var fileOpts []credential.FileKVOption
		fileOpts = append(fileOpts, credential.WithLogger(log))
		if cfg.Credential.Encrypt {
			cipher, err := credential.NewCipher(cfg.Credential.KeyStorePath, log)
			if err != nil {
				return nil, err
			}
			fileOpts = append(fileOpts, credential.WithCipher(cipher))
		}
		fileKV, err := credential.NewFileKV(cfg.Credential.TokenFile, fileOpts...)
		if err != nil {
			return nil, err
		}
		kv = fileKV
	}
	store, err := credential.NewStore(kv, log)
	if err != nil {
		return nil, err
	}
	if cfg.Token != "" {
		if err := store.Set(cfg.Token); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Start resolves the held credential to a user and keeps the job feed in step
// with the session: it runs while a user is signed in and stops otherwise. A
// credential the backend rejects is reported as an error toast.
func (a *App) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return errors.New("app closed")
	}
	if a.started {
		a.mu.Unlock()
		a.log.Warn("app start rejected", "reason", "already started")
		return errors.New("app already started")
	}
	a.started = true
	ctx, a.cancel = context.WithCancel(ctx)
	a.mu.Unlock()

	if err := a.Session.LoadUser(ctx); err != nil {
		a.log.Debug("app session restore failed", "err", err)
		a.Report(err)
	}

	var unsubs []func()
	if a.notices != nil {
		unsubs = append(unsubs, a.Feed.Jobs().Subscribe(a.notices.observe))
	}
	unsubs = append(unsubs, a.Session.Authenticated().Subscribe(func(authenticated bool) {
		if authenticated {
			a.notices.reset()
			a.Feed.Start(ctx)
			return
		}
		a.notices.mute()
		a.Feed.Stop()
		a.notices.reset()
	}))

	a.mu.Lock()
	a.unsubs = unsubs
	a.mu.Unlock()
	a.log.Debug("app start", "base_url", a.API.BaseURL(), "authenticated", a.Session.Authenticated().Get())
	return nil
}

// Report shows err as an error toast. Cancellation is ignored.
func (a *App) Report(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	message := err.Error()
	var reqErr *apiclient.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		message = reqErr.Message
	}
	a.Toasts.Error(message)
}

// Close stops the feed, drops pending toasts and detaches every subscription.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	unsubs := a.unsubs
	a.unsubs = nil
	cancel := a.cancel
	a.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	a.Feed.Stop()
	if cancel != nil {
		cancel()
	}
	a.Toasts.Clear()
	a.Overlays.CloseModal()
	a.Overlays.CloseDropdown()
	a.Session.Close()
	a.log.Debug("app closed")
}
