// Package mocks provides mock implementations of the audit use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
)

// MockAuditLogger is a mock implementation of usecase.AuditLogger.
type MockAuditLogger struct {
	mock.Mock
}

// Append mocks the Append method of AuditLogger.
func (m *MockAuditLogger) Append(
	ctx context.Context,
	event auditDomain.Event,
) (*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLogEntry), args.Error(1)
}

// VerifyChain mocks the VerifyChain method of AuditLogger.
func (m *MockAuditLogger) VerifyChain(
	ctx context.Context,
	opts auditDomain.VerifyOptions,
) (*auditDomain.VerifyResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerifyResult), args.Error(1)
}

// List mocks the List method of AuditLogger.
func (m *MockAuditLogger) List(
	ctx context.Context,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLogEntry), args.Error(1)
}

// MockAuditLogRepository is a mock implementation of usecase.AuditLogRepository.
type MockAuditLogRepository struct {
	mock.Mock
}

// Create mocks the Create method of AuditLogRepository.
func (m *MockAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// Last mocks the Last method of AuditLogRepository.
func (m *MockAuditLogRepository) Last(ctx context.Context) (*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLogEntry), args.Error(1)
}

// LastBefore mocks the LastBefore method of AuditLogRepository.
func (m *MockAuditLogRepository) LastBefore(
	ctx context.Context,
	ts time.Time,
) (*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx, ts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLogEntry), args.Error(1)
}

// ListChain mocks the ListChain method of AuditLogRepository.
func (m *MockAuditLogRepository) ListChain(
	ctx context.Context,
	q auditDomain.ChainQuery,
) ([]*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLogEntry), args.Error(1)
}

// List mocks the List method of AuditLogRepository.
func (m *MockAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLogEntry), args.Error(1)
}

// SealAnchor mocks the SealAnchor method of AuditLogRepository.
func (m *MockAuditLogRepository) SealAnchor(ctx context.Context) (*auditDomain.SealAnchor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.SealAnchor), args.Error(1)
}

// CreateSealAnchor mocks the CreateSealAnchor method of AuditLogRepository.
func (m *MockAuditLogRepository) CreateSealAnchor(ctx context.Context, anchor *auditDomain.SealAnchor) error {
	args := m.Called(ctx, anchor)
	return args.Error(0)
}
