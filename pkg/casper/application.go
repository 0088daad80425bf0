package casper

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/BrandonKowalski/casper/pkg/casper/internal"
	"github.com/BrandonKowalski/casper/pkg/casper/observability"
	"github.com/BrandonKowalski/casper/pkg/casper/router"
	"github.com/BrandonKowalski/casper/pkg/casper/session"
)

const subscriberBuffer = 16

// Dependencies are the collaborators an Application drives. Primary, Menus,
// Loader, Host and Redirect are required.
type Dependencies struct {
	Primary   SessionClient // Main session socket
	Secondary SessionClient // Optional second socket, connected with the primary credential
	Menus     MenuFetcher
	SignOut   SignOuter // Optional, sign-out is skipped when nil
	Loader    ModuleLoader
	Host      ScreenHost
	History   History // Defaults to an in-memory router.History
	Tooltip   Tooltip // Optional
	Redirect  Redirector

	// Setup runs after the route table is built and before the application
	// is ready, to create shared elements and listeners. A failure is a
	// setup failure.
	Setup func(ctx context.Context) error

	Clock          internal.Clock           // Defaults to the real clock
	Logger         *slog.Logger             // Defaults to the internal logger
	Metrics        *observability.Collector // Optional
	TracerProvider trace.TracerProvider     // Defaults to the global provider
}

// Application is the explicit application context every collaborator is
// handed instead of looking up a global.
type Application struct {
	cfg      Config
	deps     Dependencies
	logger   *slog.Logger
	metrics  *observability.Collector
	tracer   trace.Tracer
	messages *internal.Messages
	table    *router.Table
	backoff  *session.Backoff
	ready    *internal.Gate
	activity *rate.Limiter

	mu          sync.Mutex
	status      session.Status
	record      *session.Record
	location    Location
	page        string
	mounted     map[string]bool // element names mounted in the host
	loaded      map[string]bool // module paths already loaded
	forwarded   string          // location whose query Navigate already handed to the page
	subscribers map[int]chan session.Status
	nextSubID   int

	navMu      sync.Mutex
	navSeq     atomic.Uint64
	firstLocation   atomic.Bool
	loggingOut      atomic.Bool
	preserveBackoff atomic.Bool
}

// New creates an Application in the connecting state. Call Start (or Run)
// to connect.
func New(cfg Config, deps Dependencies) (*Application, error) {
	switch {
	case deps.Primary == nil:
		return nil, fmt.Errorf("%w: primary session client", ErrMissingDependency)
	case deps.Menus == nil:
		return nil, fmt.Errorf("%w: menu fetcher", ErrMissingDependency)
	case deps.Loader == nil:
		return nil, fmt.Errorf("%w: module loader", ErrMissingDependency)
	case deps.Host == nil:
		return nil, fmt.Errorf("%w: screen host", ErrMissingDependency)
	case deps.Redirect == nil:
		return nil, fmt.Errorf("%w: redirector", ErrMissingDependency)
	}

	cfg.applyDefaults()
	configureLogging(cfg)

	if deps.History == nil {
		deps.History = router.NewHistory()
	}
	if deps.Clock == nil {
		deps.Clock = internal.RealClock()
	}
	if deps.Logger == nil {
		deps.Logger = internal.GetInternalLogger()
	}

	messages, err := internal.NewMessages(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("load status messages: %w", err)
	}

	a := &Application{
		cfg:         cfg,
		deps:        deps,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		tracer:      observability.Tracer(deps.TracerProvider),
		messages:    messages,
		table:       router.NewTable(),
		backoff:     session.NewBackoff(deps.Clock, cfg.InitialBackoff, cfg.MaxBackoff),
		ready:       internal.NewGate(),
		activity:    rate.NewLimiter(activityLimit(cfg.ActivityRate), 1),
		mounted:     make(map[string]bool),
		loaded:      make(map[string]bool),
		subscribers: make(map[int]chan session.Status),
	}

	// The first location is already in the browser history.
	a.firstLocation.Store(true)
	a.preserveBackoff.Store(cfg.PreserveBackoff)
	a.status, _ = session.Transition(session.Status{}, session.Event{Kind: session.EventStart, Progress: cfg.ConnectTimeout})
	return a, nil
}

func activityLimit(perSecond float64) rate.Limit {
	if perSecond < 0 || math.IsInf(perSecond, 1) {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}

// Reconfigure applies the settings of cfg that can change while running:
// log level, backoff bounds, PreserveBackoff and activity rate. The other
// fields only take effect through New. Pass it to ConfigWatcher.Run to
// follow the config file.
func (a *Application) Reconfigure(cfg Config) {
	cfg.applyDefaults()

	if cfg.LogLevel != "" {
		internal.SetRawLogLevel(cfg.LogLevel)
	}
	a.backoff.SetBounds(cfg.InitialBackoff, cfg.MaxBackoff)
	a.preserveBackoff.Store(cfg.PreserveBackoff)
	a.activity.SetLimit(activityLimit(cfg.ActivityRate))

	a.logger.Info("Configuration reapplied",
		"initial_backoff", cfg.InitialBackoff.String(),
		"max_backoff", cfg.MaxBackoff.String(),
		"activity_rate", cfg.ActivityRate)
}

// Run connects and then dispatches socket signals until ctx ends.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	return a.Listen(ctx)
}

// Listen dispatches the signals of both session clients to the state
// machine until ctx ends or both event channels close.
func (a *Application) Listen(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, client := range []SessionClient{a.deps.Primary, a.deps.Secondary} {
		if client == nil {
			continue
		}
		events := client.Events()
		if events == nil {
			continue
		}
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					a.HandleEvent(ctx, ev)
				}
			}
		})
	}

	return g.Wait()
}

// HandleEvent applies a session event and runs its effects.
func (a *Application) HandleEvent(ctx context.Context, ev session.Event) {
	a.apply(ctx, ev)
}

func (a *Application) apply(ctx context.Context, ev session.Event) {
	a.mu.Lock()
	prev := a.status
	next, effects := session.Transition(prev, ev)
	a.status = next
	if next != prev {
		for _, ch := range a.subscribers {
			publish(ch, next)
		}
	}
	a.mu.Unlock()

	if next.State != prev.State {
		a.logger.Debug("State changed", "from", prev.State.String(), "to", next.State.String())
		a.metrics.ObserveTransition(prev.State.String(), next.State.String())
	}

	a.runEffects(ctx, effects)
}

// publish delivers status without blocking. A full channel loses its oldest
// update so the newest status is always the last one received. Senders hold
// a.mu, so the slot freed by the drain stays free.
func publish(ch chan session.Status, status session.Status) {
	select {
	case ch <- status:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- status:
	default:
	}
}

func (a *Application) runEffects(ctx context.Context, effects []session.Effect) {
	for _, effect := range effects {
		switch effect {
		case session.EffectLogout:
			a.Logout(ctx)
		case session.EffectReleaseReady:
			if a.ready.Open() {
				a.logger.Debug("Application ready")
			}
		case session.EffectCheckSession:
			a.deps.Primary.CheckIfSessionChanged()
		case session.EffectValidateSession:
			a.deps.Primary.ValidateSession()
		case session.EffectResetBackoff:
			if !a.preserveBackoff.Load() {
				a.backoff.Reset()
			}
		}
	}
}

// WaitReady blocks until the application has become ready once, or ctx ends.
// After that it returns immediately.
func (a *Application) WaitReady(ctx context.Context) error {
	return a.ready.Wait(ctx)
}

// Status returns the current session status.
func (a *Application) Status() session.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// StatusText returns the localized message for the current status.
func (a *Application) StatusText() string {
	status := a.Status()
	if status.MessageID == "" {
		return status.Text
	}
	return a.messages.Text(status.MessageID, map[string]any{"Detail": status.Detail})
}

// Subscribe returns a channel that receives status changes. A subscriber
// that falls behind loses its oldest updates, never the newest, so the last
// value received always matches Status. Call cancel to unsubscribe.
func (a *Application) Subscribe() (<-chan session.Status, func()) {
	ch := make(chan session.Status, subscriberBuffer)

	a.mu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = ch
	a.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subscribers, id)
			a.mu.Unlock()
		})
	}
	return ch, cancel
}

// Session returns the current session record, nil when there is none.
func (a *Application) Session() *session.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.record
}

// Location returns the current location.
func (a *Application) Location() Location {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

// ActivePage returns the identifier of the selected page, empty before the
// first page is shown.
func (a *Application) ActivePage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// Routes returns the route table built from the current menu.
func (a *Application) Routes() *router.Table {
	return a.table
}

// ReconnectDelay returns the delay the next reconnect throttle will use.
func (a *Application) ReconnectDelay() time.Duration {
	return a.backoff.Delay()
}
