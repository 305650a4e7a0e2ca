package observability

import (
	"time"

	"resumeforge/internal/config"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	TrackDocuments     bool
	TrackDuration      bool
	TrackRateLimits    bool
	Prometheus         PrometheusConfig
	OTLP               config.OTLPConfig
}

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		// Fallback to defaults if config not available
		return ObservabilityConfig{
			ServiceName:        "resumeforge",
			ServiceVersion:     version,
			ServiceInstance:    "resumeforge-1",
			Enabled:            true,
			SampleRate:         1.0,
			CollectionInterval: 15 * time.Second,
			TrackDocuments:     true,
			TrackDuration:      true,
			TrackRateLimits:    true,
			Prometheus:         GetPrometheusConfig(cfg),
		}
	}

	obsConfig := cfg.Observability

	// Use app version if service version not specified
	serviceVersion := obsConfig.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	interval := obsConfig.Metrics.CollectionInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return ObservabilityConfig{
		ServiceName:        obsConfig.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obsConfig.ServiceInstance,
		Enabled:            obsConfig.Enabled,
		ConsoleOutput:      obsConfig.ConsoleOutput,
		PrettyPrint:        obsConfig.Console.PrettyPrint,
		SampleRate:         obsConfig.SampleRate,
		CollectionInterval: interval,
		TrackDocuments:     obsConfig.Metrics.Enabled && obsConfig.CustomMetrics.Documents.Enabled,
		TrackDuration:      obsConfig.CustomMetrics.Documents.TrackDuration,
		TrackRateLimits:    obsConfig.Metrics.Enabled && obsConfig.CustomMetrics.Infrastructure.TrackRateLimits,
		Prometheus:         GetPrometheusConfig(cfg),
		OTLP:               obsConfig.OTLP,
	}
}
