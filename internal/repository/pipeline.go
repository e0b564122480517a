package repository

import (
	"log/slog"

	"github.com/allisson/casevault/internal/cache"
	"github.com/allisson/casevault/internal/metrics"
)

// Logging decorator placement.
const (
	LogOuter = "outer"
	LogInner = "inner"
)

// PipelineConfig holds the collaborators of one entity pipeline.
type PipelineConfig[T Entity[T]] struct {
	// EntityType names the entity in cache keys, logs, metrics and audit entries.
	EntityType string
	// Validator holds the entity rules applied on Create and Update.
	Validator Validator[T]
	// Fingerprinter reads the stored form of an entity for cache keys.
	Fingerprinter Fingerprinter
	// Cache stores decrypted reads. A nil cache disables the caching decorator.
	Cache cache.Cache
	// DependentTypes are entity types whose cached pages a write of this type invalidates.
	DependentTypes []string
	// PageGenerations is shared by every pipeline on Cache. Defaults to a private set.
	PageGenerations *PageGenerations
	// Audit records failed operations.
	Audit AuditRecorder
	// AuditReads also records every successful read, cache hits included. Needs Audit.
	AuditReads bool
	// Logger receives operation logs.
	Logger *slog.Logger
	// Metrics records operation counts and durations. Defaults to a no-op.
	Metrics metrics.BusinessMetrics
	// LogPosition is LogOuter (default) or LogInner.
	LogPosition string
}

// NewPipeline composes the decorators around base:
//
//	outer: Metrics -> Logging -> Validation -> ErrorHandling -> ReadAudit -> Caching -> base
//	inner: Metrics -> Validation -> ErrorHandling -> ReadAudit -> Caching -> Logging -> base
//
// ReadAudit is present only with AuditReads set.
func NewPipeline[T Entity[T]](base Repository[T], cfg PipelineConfig[T]) Repository[T] {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoOpBusinessMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	repo := base
	if cfg.LogPosition == LogInner {
		repo = NewLoggingDecorator(repo, cfg.EntityType, cfg.Logger)
	}
	if cfg.Cache != nil && cfg.Fingerprinter != nil {
		repo = NewCachingDecorator(repo, cfg.EntityType, cfg.Fingerprinter, cfg.Cache,
			WithCacheMetrics(cfg.Metrics),
			WithDependentTypes(cfg.DependentTypes...),
			WithPageGenerations(cfg.PageGenerations),
		)
	}
	if cfg.AuditReads && cfg.Audit != nil {
		repo = NewReadAuditDecorator(repo, cfg.EntityType, cfg.Audit, cfg.Logger)
	}
	repo = NewErrorHandlingDecorator(repo, cfg.EntityType, cfg.Audit, cfg.Logger)
	repo = NewValidationDecorator(repo, cfg.Validator)
	if cfg.LogPosition != LogInner {
		repo = NewLoggingDecorator(repo, cfg.EntityType, cfg.Logger)
	}
	return NewMetricsDecorator(repo, cfg.EntityType, cfg.Metrics)
}
