package app

import (
	"context"
	"fmt"

	casesDomain "github.com/allisson/casevault/internal/cases/domain"
	casesRepository "github.com/allisson/casevault/internal/cases/repository"
	"github.com/allisson/casevault/internal/repository"
)

// CaseRepository returns the concrete SQLite case repository. Use CasePipeline for normal
// access; the concrete repository is only needed for maintenance such as ReencryptLegacy.
func (c *Container) CaseRepository(ctx context.Context) (*casesRepository.SQLiteCaseRepository, error) {
	var err error
	c.caseRepoInit.Do(func() {
		var opts casesRepository.Options
		opts, err = c.entityRepositoryOptions(ctx)
		if err != nil {
			c.initErrors["caseRepo"] = err
			return
		}
		c.caseRepo = casesRepository.NewSQLiteCaseRepository(c.db, c.txManager, opts)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["caseRepo"]; exists {
		return nil, storedErr
	}
	return c.caseRepo, nil
}

// CaseNoteRepository returns the concrete SQLite case note repository.
func (c *Container) CaseNoteRepository(ctx context.Context) (*casesRepository.SQLiteCaseNoteRepository, error) {
	var err error
	c.caseNoteRepoInit.Do(func() {
		var opts casesRepository.Options
		opts, err = c.entityRepositoryOptions(ctx)
		if err != nil {
			c.initErrors["caseNoteRepo"] = err
			return
		}
		c.caseNoteRepo = casesRepository.NewSQLiteCaseNoteRepository(c.db, c.txManager, opts)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["caseNoteRepo"]; exists {
		return nil, storedErr
	}
	return c.caseNoteRepo, nil
}

// CasePipeline returns the decorated case repository. Writes to cases also invalidate
// cached note pages, since deleting a case cascades to its notes.
func (c *Container) CasePipeline(ctx context.Context) (repository.Repository[*casesDomain.Case], error) {
	var err error
	c.casePipelineInit.Do(func() {
		var base *casesRepository.SQLiteCaseRepository
		base, err = c.CaseRepository(ctx)
		if err != nil {
			err = fmt.Errorf("failed to get case repository for pipeline: %w", err)
			c.initErrors["casePipeline"] = err
			return
		}
		var cfg repository.PipelineConfig[*casesDomain.Case]
		cfg, err = pipelineConfig[*casesDomain.Case](ctx, c, casesDomain.CaseEntityType, base)
		if err != nil {
			c.initErrors["casePipeline"] = err
			return
		}
		cfg.Validator = casesDomain.ValidateCase
		cfg.DependentTypes = []string{casesDomain.CaseNoteEntityType}
		c.casePipeline = repository.NewPipeline[*casesDomain.Case](base, cfg)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["casePipeline"]; exists {
		return nil, storedErr
	}
	return c.casePipeline, nil
}

// CaseNotePipeline returns the decorated case note repository.
func (c *Container) CaseNotePipeline(
	ctx context.Context,
) (repository.Repository[*casesDomain.CaseNote], error) {
	var err error
	c.caseNotePipelineInit.Do(func() {
		var base *casesRepository.SQLiteCaseNoteRepository
		base, err = c.CaseNoteRepository(ctx)
		if err != nil {
			err = fmt.Errorf("failed to get case note repository for pipeline: %w", err)
			c.initErrors["caseNotePipeline"] = err
			return
		}
		var cfg repository.PipelineConfig[*casesDomain.CaseNote]
		cfg, err = pipelineConfig[*casesDomain.CaseNote](ctx, c, casesDomain.CaseNoteEntityType, base)
		if err != nil {
			c.initErrors["caseNotePipeline"] = err
			return
		}
		cfg.Validator = casesDomain.ValidateCaseNote
		c.caseNotePipeline = repository.NewPipeline[*casesDomain.CaseNote](base, cfg)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["caseNotePipeline"]; exists {
		return nil, storedErr
	}
	return c.caseNotePipeline, nil
}

// entityRepositoryOptions gathers what every concrete entity repository needs. It also
// makes sure the database and tx manager are initialized.
func (c *Container) entityRepositoryOptions(ctx context.Context) (casesRepository.Options, error) {
	if _, err := c.DB(); err != nil {
		return casesRepository.Options{}, fmt.Errorf("failed to get database for repository: %w", err)
	}
	if _, err := c.TxManager(); err != nil {
		return casesRepository.Options{}, fmt.Errorf("failed to get tx manager for repository: %w", err)
	}
	encryptionService, err := c.EncryptionService(ctx)
	if err != nil {
		return casesRepository.Options{}, fmt.Errorf("failed to get encryption service for repository: %w", err)
	}
	auditLogger, err := c.AuditLogger(ctx)
	if err != nil {
		return casesRepository.Options{}, fmt.Errorf("failed to get audit logger for repository: %w", err)
	}

	return casesRepository.Options{
		Encryptor: encryptionService,
		Audit:     auditLogger,
		Logger:    c.Logger(),
	}, nil
}

func pipelineConfig[T repository.Entity[T]](
	ctx context.Context,
	c *Container,
	entityType string,
	fingerprinter repository.Fingerprinter,
) (repository.PipelineConfig[T], error) {
	store, err := c.Cache()
	if err != nil {
		return repository.PipelineConfig[T]{}, fmt.Errorf("failed to get cache for %s pipeline: %w", entityType, err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return repository.PipelineConfig[T]{}, fmt.Errorf(
			"failed to get business metrics for %s pipeline: %w", entityType, err)
	}
	auditLogger, err := c.AuditLogger(ctx)
	if err != nil {
		return repository.PipelineConfig[T]{}, fmt.Errorf(
			"failed to get audit logger for %s pipeline: %w", entityType, err)
	}

	return repository.PipelineConfig[T]{
		EntityType:      entityType,
		Fingerprinter:   fingerprinter,
		Cache:           store,
		PageGenerations: c.pageGenerations,
		Audit:           auditLogger,
		AuditReads:      c.config.AuditReads,
		Logger:          c.Logger(),
		Metrics:         businessMetrics,
		LogPosition:     c.config.LogDecoratorPosition,
	}, nil
}
