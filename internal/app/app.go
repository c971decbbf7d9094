// Package app implements the application layer for qcache.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/qcache/internal/adapters/detector"
	"go.trai.ch/qcache/internal/adapters/metrics"
	"go.trai.ch/qcache/internal/adapters/server"
	"go.trai.ch/qcache/internal/adapters/storage"
	"go.trai.ch/qcache/internal/adapters/storage/dataset"
	"go.trai.ch/qcache/internal/adapters/watcher"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/qcache/internal/engine/cache"
	"go.trai.ch/qcache/internal/engine/calendar"
	"go.trai.ch/qcache/internal/engine/evaluator"
	"go.trai.ch/qcache/internal/engine/expr"
	"go.trai.ch/qcache/internal/ui/output"
	"go.trai.ch/zerr"
)

// BackendOpener opens the raw data backends named by the storage settings.
type BackendOpener interface {
	Open(ctx context.Context, st domain.StorageSettings) (*storage.Backends, error)
}

// App represents the main application logic.
type App struct {
	loader  ports.SettingsLoader
	logger  ports.Logger
	tracer  ports.Tracer
	opener  BackendOpener
	metrics *metrics.Collector
	watcher ports.Watcher
	out     io.Writer
	cwd     string
}

// New creates a new App instance.
func New(
	loader ports.SettingsLoader,
	log ports.Logger,
	tracer ports.Tracer,
	opener BackendOpener,
	collector *metrics.Collector,
	w ports.Watcher,
) *App {
	return &App{
		loader:  loader,
		logger:  log,
		tracer:  tracer,
		opener:  opener,
		metrics: collector,
		watcher: w,
		out:     os.Stdout,
	}
}

// WithOutput redirects command results to w.
// This is primarily used for testing.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithWorkDir sets the directory the settings file is discovered from.
// It defaults to the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.cwd = dir
	return a
}

// ConfigureLogger switches the logger to JSON output or drops informational messages.
// Loggers that do not support a switch ignore it.
func (a *App) ConfigureLogger(json, quiet bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(json)
	}
	if l, ok := a.logger.(interface{ SetQuiet(bool) }); ok {
		l.SetQuiet(quiet)
	}
}

// Close releases the settings watcher.
func (a *App) Close() error {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Stop()
}

// session is one loaded configuration with its open backends and caches.
type session struct {
	settings *domain.Settings
	path     string
	backends *storage.Backends
	registry *cache.Registry
	driver   *evaluator.Driver
}

func (s *session) Close() error {
	return s.backends.Close()
}

func (a *App) loadSettings() (*domain.Settings, string, error) {
	cwd := a.cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", zerr.Wrap(err, "failed to get working directory")
		}
		cwd = wd
	}
	settings, path, err := a.loader.Load(cwd)
	if err != nil {
		return nil, "", zerr.Wrap(err, "failed to load settings")
	}
	return settings, path, nil
}

func (a *App) open(ctx context.Context) (*session, error) {
	settings, path, err := a.loadSettings()
	if err != nil {
		return nil, err
	}

	backends, err := a.opener.Open(ctx, settings.Storage)
	if err != nil {
		return nil, err
	}

	var observer ports.CacheObserver
	if a.metrics != nil {
		observer = a.metrics
	}
	registry, err := cache.NewRegistry(settings, observer)
	if err != nil {
		_ = backends.Close()
		return nil, err
	}

	index := calendar.NewIndex(backends.Calendars, registry, a.tracer)
	driver := evaluator.NewDriver(registry, backends.Features, index, backends.Instruments, a.tracer, settings.Parallelism)
	return &session{
		settings: settings,
		path:     path,
		backends: backends,
		registry: registry,
		driver:   driver,
	}, nil
}

// RangeOptions selects a calendar window. Empty bounds are open.
type RangeOptions struct {
	Start string
	End   string
	Freq  string
}

func (o RangeOptions) parse() (domain.Freq, time.Time, time.Time, error) {
	freqName := o.Freq
	if freqName == "" {
		freqName = domain.FreqDay
	}
	freq, err := domain.ParseFreq(freqName)
	if err != nil {
		return domain.Freq{}, time.Time{}, time.Time{}, err
	}
	start, err := domain.ParseTime(o.Start)
	if err != nil {
		return domain.Freq{}, time.Time{}, time.Time{}, err
	}
	end, err := domain.ParseTime(o.End)
	if err != nil {
		return domain.Freq{}, time.Time{}, time.Time{}, err
	}
	return freq, start, end, nil
}

// EvalOptions configuration for the Eval method.
type EvalOptions struct {
	RangeOptions
	Expression  string
	Instruments []string
	// Market is resolved when Instruments is empty.
	Market     string
	OutputMode string
}

// Eval evaluates an expression and writes one column per instrument.
func (a *App) Eval(ctx context.Context, opts EvalOptions) (err error) {
	node, err := expr.Parse(opts.Expression)
	if err != nil {
		return err
	}
	freq, start, end, err := opts.parse()
	if err != nil {
		return err
	}

	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	instruments := opts.Instruments
	if len(instruments) == 0 {
		list, err := s.driver.Instruments(ctx, marketOrAll(opts.Market), domain.WindowPipe(start, end))
		if err != nil {
			return err
		}
		instruments = list
	}

	frames, err := s.driver.EvaluateAll(ctx, instruments, node, start, end, freq)
	if err != nil {
		return err
	}

	return a.render(opts.OutputMode, evalTable(instruments, frames), func() any {
		return server.NewEvalResponse(node, freq, instruments, frames)
	})
}

// CalendarOptions configuration for the Calendar method.
type CalendarOptions struct {
	RangeOptions
	Future     bool
	OutputMode string
}

// Calendar writes the trading timestamps within the requested window.
func (a *App) Calendar(ctx context.Context, opts CalendarOptions) (err error) {
	freq, start, end, err := opts.parse()
	if err != nil {
		return err
	}

	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	times, err := s.driver.CalendarRange(ctx, start, end, freq, opts.Future)
	if err != nil {
		return err
	}

	return a.render(opts.OutputMode, calendarTable(times), func() any {
		return server.NewCalendarResponse(freq, times)
	})
}

// InstrumentsOptions configuration for the Instruments method.
type InstrumentsOptions struct {
	RangeOptions
	Market     string
	OutputMode string
}

// Instruments writes the instruments of a market listed within the requested window.
func (a *App) Instruments(ctx context.Context, opts InstrumentsOptions) (err error) {
	_, start, end, err := opts.parse()
	if err != nil {
		return err
	}

	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	market := marketOrAll(opts.Market)
	list, err := s.driver.Instruments(ctx, market, domain.WindowPipe(start, end))
	if err != nil {
		return err
	}

	return a.render(opts.OutputMode, instrumentsTable(list), func() any {
		return server.InstrumentsResponse{Market: market, Instruments: list}
	})
}

// Import loads the dataset file at path into every persistent store the settings select.
func (a *App) Import(ctx context.Context, path string) (err error) {
	ds, err := dataset.ReadFile(path)
	if err != nil {
		return err
	}

	settings, _, err := a.loadSettings()
	if err != nil {
		return err
	}
	backends, err := a.opener.Open(ctx, settings.Storage)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, backends.Close()) }()

	if len(backends.Importers) == 0 {
		return zerr.With(
			zerr.Wrap(domain.ErrInvalidSetting, "no persistent store configured, the memory backend reads the dataset directly"),
			domain.KeyBackend, settings.Storage.Backend,
		)
	}

	for _, imp := range backends.Importers {
		if err := imp.Import(ctx, ds); err != nil {
			return err
		}
	}
	a.logger.Info(fmt.Sprintf("imported %d columns from %s", len(ds.Columns), path))
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Store removes the embedded store at the configured badger path.
	Store bool
	// State removes the whole .qcache directory next to the working directory.
	State bool
}

// Clean removes persisted state based on the provided options.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(domain.ErrStateCleanFailed, err.Error()), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Store {
		settings, _, err := a.loadSettings()
		if err != nil {
			return err
		}
		remove(settings.Storage.BadgerPath, "embedded store")
	}

	if options.State {
		remove(a.statePath(), "state directory")
	}

	return errs
}

func (a *App) statePath() string {
	if a.cwd == "" {
		return domain.DefaultStatePath()
	}
	return filepath.Join(a.cwd, domain.DefaultStatePath())
}

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	Addr string
	// IdleTimeout stops the server after this long without requests. Zero disables it.
	IdleTimeout time.Duration
	// Watch reloads the cache settings when the settings file changes.
	Watch bool
}

// Serve runs the HTTP API until ctx is done or the server has been idle for IdleTimeout.
func (a *App) Serve(ctx context.Context, opts ServeOptions) (err error) {
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Watch && s.path != "" && a.watcher != nil {
		reloader := watcher.NewReloader(a.watcher, a.loader, a.logger, s.registry)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := reloader.Run(ctx, s.path); err != nil {
				a.logger.Error(err)
			}
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	var metricsHandler http.Handler
	if a.metrics != nil {
		metricsHandler = a.metrics.Handler()
	}
	srv := server.New(s.driver, metricsHandler, a.logger, server.NewLifecycle(opts.IdleTimeout))
	a.logger.Info("serving on " + opts.Addr)
	return srv.ListenAndServe(ctx, opts.Addr)
}

// render writes t in the resolved output mode. jsonValue is only built for JSON output.
func (a *App) render(mode string, t output.Table, jsonValue func() any) error {
	switch detector.ResolveMode(detector.DetectEnvironment(), mode) {
	case detector.ModeJSON:
		return output.WriteJSON(a.out, jsonValue())
	case detector.ModeTable:
		return output.WriteTable(a.out, t)
	default:
		return output.WritePlain(a.out, t)
	}
}

func marketOrAll(market string) string {
	if market == "" {
		return "all"
	}
	return market
}
