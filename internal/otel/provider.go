package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/launchdash/dashboard/internal/config"
)

// DefaultMetricInterval is how often metrics are exported when no interval
// is configured.
const DefaultMetricInterval = 30 * time.Second

// Config holds OTel configuration
type Config struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	// MetricInterval is the export period of the metric reader
	MetricInterval time.Duration
	LogWriter      io.Writer // log and metric records, required unless Endpoint is set
	Endpoint       string    // OTLP endpoint for logs
	Insecure       bool
}

// Provider owns the log and meter providers of the process.
type Provider struct {
	logProvider   *sdklog.LoggerProvider
	meterProvider *sdkmetric.MeterProvider
	config        Config
}

// ConfigFrom builds the provider config from the loaded settings.
// logWriter receives the stdout exporter output, normally the log file.
func ConfigFrom(c config.OTelConfig, logWriter io.Writer) Config {
	return Config{
		Enabled:      c.Enabled,
		ServiceName:  c.ServiceName,
		BatchTimeout: c.BatchTimeout,
		LogWriter:    logWriter,
		Endpoint:     c.Endpoint,
		Insecure:     c.Insecure,
	}
}

// New creates the providers. A disabled config yields a provider whose
// methods are no-ops. When a log writer is set the meter provider is
// registered globally, so the dispatcher instruments export to it.
func New(cfg Config) (*Provider, error) {
	p := &Provider{config: cfg}
	if !cfg.Enabled {
		return p, nil
	}
	if cfg.LogWriter == nil && cfg.Endpoint == "" {
		return nil, errors.New("OTel enabled but no log writer or endpoint configured")
	}
	if cfg.MetricInterval <= 0 {
		cfg.MetricInterval = DefaultMetricInterval
		p.config.MetricInterval = DefaultMetricInterval
	}

	ctx := context.Background()
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	processors, err := logProcessors(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logOpts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	for _, proc := range processors {
		logOpts = append(logOpts, sdklog.WithProcessor(proc))
	}
	p.logProvider = sdklog.NewLoggerProvider(logOpts...)

	if cfg.LogWriter != nil {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.LogWriter))
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		p.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.MetricInterval))),
		)
		otel.SetMeterProvider(p.meterProvider)
	}

	return p, nil
}

// logProcessors builds one batch processor per configured sink.
func logProcessors(ctx context.Context, cfg Config) ([]sdklog.Processor, error) {
	var processors []sdklog.Processor

	if cfg.LogWriter != nil {
		fileExporter, err := stdoutlog.New(
			stdoutlog.WithWriter(cfg.LogWriter),
			stdoutlog.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create file log exporter: %w", err)
		}
		processors = append(processors, sdklog.NewBatchProcessor(fileExporter,
			sdklog.WithExportTimeout(cfg.BatchTimeout),
		))
	}

	if cfg.Endpoint != "" {
		otlpOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			otlpOpts = append(otlpOpts, otlploghttp.WithInsecure())
		}
		otlpExporter, err := otlploghttp.New(ctx, otlpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		processors = append(processors, sdklog.NewBatchProcessor(otlpExporter,
			sdklog.WithExportTimeout(cfg.BatchTimeout),
		))
	}

	return processors, nil
}

// LoggerProvider returns the log provider for the otelslog bridge, nil when
// disabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logProvider
}

// Meter returns a meter of the provider's meter provider, falling back to the
// global one.
func (p *Provider) Meter(name string) metric.Meter {
	if p.meterProvider != nil {
		return p.meterProvider.Meter(name)
	}
	return otel.GetMeterProvider().Meter(name)
}

// Flush exports pending log records and metrics.
func (p *Provider) Flush(ctx context.Context) error {
	var errs []error
	if p.logProvider != nil {
		if err := p.logProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log flush failed: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metric flush failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops both providers. Call once on exit.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.logProvider != nil {
		if err := p.logProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log shutdown failed: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metric shutdown failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Enabled returns whether OTel is enabled
func (p *Provider) Enabled() bool {
	return p.config.Enabled
}
