package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/nest"
	"github.com/aretw0/nest/internal/validator"
	"github.com/aretw0/nest/pkg/loader"
	"github.com/aretw0/nest/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// EngineOptions contains the configuration shared by the serving commands.
type EngineOptions struct {
	ConfigPath string
	Store      StoreOptions
	LockTTL    time.Duration
	Logger     *slog.Logger

	// Registerer receives the engine metrics when set.
	Registerer prometheus.Registerer

	// SpanOutput receives OpenTelemetry spans as JSON when set.
	SpanOutput io.Writer
}

// Engine is a configured engine plus the resources it holds.
type Engine struct {
	*nest.Engine
	backend  *Backend
	provider *sdktrace.TracerProvider
}

// Close flushes spans and closes the store.
func (e *Engine) Close(ctx context.Context) error {
	var err error
	if e.provider != nil {
		err = e.provider.Shutdown(ctx)
	}
	if cerr := e.backend.Close(); err == nil {
		err = cerr
	}
	return err
}

// NewEngine loads the state tree, logs what the validator finds and wires
// the engine with standard CLI conventions.
func NewEngine(opts EngineOptions) (*Engine, error) {
	cfg, err := loader.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		for _, issue := range validator.Validate(cfg) {
			opts.Logger.Warn("State tree issue", "path", strings.Join(issue.Path, "/"), "kind", string(issue.Kind), "msg", issue.Message)
		}
	}

	backend, err := OpenStore(opts.Store)
	if err != nil {
		return nil, err
	}

	engineOpts := []nest.Option{nest.WithStore(backend.Store)}
	if opts.Logger != nil {
		engineOpts = append(engineOpts, nest.WithLogger(opts.Logger))
	}
	if backend.Locker != nil {
		engineOpts = append(engineOpts, nest.WithLocker(backend.Locker))
	}
	if opts.LockTTL > 0 {
		engineOpts = append(engineOpts, nest.WithLockTTL(opts.LockTTL))
	}
	if opts.Registerer != nil {
		metrics, err := observability.NewMetrics(opts.Registerer)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		engineOpts = append(engineOpts, nest.WithMetrics(metrics))
	}

	var provider *sdktrace.TracerProvider
	if opts.SpanOutput != nil {
		provider, err = NewTracerProvider(opts.SpanOutput)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		engineOpts = append(engineOpts, nest.WithTracerProvider(provider))
	}

	engine, err := nest.New(cfg, engineOpts...)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return &Engine{Engine: engine, backend: backend, provider: provider}, nil
}

// NewTracerProvider exports spans synchronously to w as JSON.
func NewTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create span exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)), nil
}
