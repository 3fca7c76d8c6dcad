package rates

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"unitconv"
)

type Status int

const (
	StatusLoading Status = iota
	StatusLive
	StatusFallback
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLive:
		return "live"
	case StatusFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

const currencyCategory = "currency"

// LoadingText is shown for currency results until the first load settles.
const LoadingText = "환율 정보를 불러오는 중..."

// Loader fetches rates once. Until the fetch settles Table returns the
// fallback; a failed fetch keeps the fallback for the loader's lifetime.
type Loader struct {
	source   Source
	fallback Table
	required []string
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *unitconv.Metrics

	mutex  sync.RWMutex
	table  Table
	status Status

	once    sync.Once
	started atomic.Bool
	done    chan struct{}
}

type Option func(*Loader)

func WithFallback(t Table) Option {
	return func(l *Loader) {
		l.fallback = t
	}
}

// WithRequired lists currency codes a live table must quote.
func WithRequired(codes ...string) Option {
	return func(l *Loader) {
		l.required = codes
	}
}

func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.timeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithMetrics(m *unitconv.Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{
		source:   source,
		fallback: Fallback(),
		timeout:  10 * time.Second,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, u := range unitconv.DefaultCurrencyUnits() {
		l.required = append(l.required, strings.ToUpper(u.Key))
	}
	for _, opt := range opts {
		opt(l)
	}
	l.table = l.fallback
	return l
}

// Start launches the single fetch in the background. Later calls are no-ops.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		l.started.Store(true)
		go l.load(ctx)
	})
}

// Load performs the fetch synchronously, unless it already ran, and
// returns the resulting table.
func (l *Loader) Load(ctx context.Context) Table {
	ran := false
	l.once.Do(func() {
		ran = true
		l.started.Store(true)
		l.load(ctx)
	})
	if !ran {
		select {
		case <-l.done:
		case <-ctx.Done():
		}
	}
	return l.Table()
}

func (l *Loader) load(ctx context.Context) {
	defer close(l.done)

	if l.source == nil {
		l.settle(l.fallback, StatusFallback)
		return
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	t, err := l.source.Fetch(ctx)
	if err == nil {
		err = t.Validate(l.required...)
	}
	if err != nil {
		l.logger.Warn("exchange rates unavailable, using fallback table", "error", err)
		l.settle(l.fallback, StatusFallback)
		return
	}
	l.logger.Info("exchange rates loaded", "base", t.Base, "count", len(t.Rates), "updated", t.Updated)
	l.settle(t, StatusLive)
}

func (l *Loader) settle(t Table, status Status) {
	l.mutex.Lock()
	l.table = t
	l.status = status
	l.mutex.Unlock()
	l.metrics.RecordRateLoad(status.String())
}

// Done is closed once the fetch settled.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Pending reports whether a fetch was started and has not settled yet.
func (l *Loader) Pending() bool {
	select {
	case <-l.done:
		return false
	default:
		return l.started.Load() && l.Status() == StatusLoading
	}
}

// SessionOption makes a session show LoadingText for currency results
// while the loader is pending.
func (l *Loader) SessionOption() unitconv.SessionOption {
	return unitconv.WithPending(currencyCategory, LoadingText, l.Pending)
}

func (l *Loader) Table() Table {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.table
}

func (l *Loader) Status() Status {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.status
}

// Catalog applies the current table to catalog's currency category. When
// the table does not fit the category the catalog is returned unchanged.
func (l *Loader) Catalog(catalog *unitconv.Catalog) *unitconv.Catalog {
	next, err := l.Table().Apply(catalog, currencyCategory)
	if err != nil {
		l.logger.Warn("exchange rates not applied", "error", err)
		return catalog
	}
	return next
}
