package service

import (
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
)

func newTestEntry() *auditDomain.AuditLogEntry {
	return &auditDomain.AuditLogEntry{
		ID:           "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b",
		Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 678_000_000, time.UTC),
		EventType:    "case.create",
		ResourceType: "case",
		ResourceID:   "42",
		Action:       auditDomain.ActionCreate,
		Details:      json.RawMessage(`{"fields":["client_name"]}`),
		Success:      true,
	}
}

func TestHasher_Deterministic(t *testing.T) {
	h := NewHasher()
	entry := newTestEntry()

	first := h.Hash(entry, nil)
	second := h.Hash(entry, nil)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	_, err := hex.DecodeString(first)
	require.NoError(t, err)
}

func TestHasher_PreviousHashChangesResult(t *testing.T) {
	h := NewHasher()
	entry := newTestEntry()
	prev := h.Hash(entry, nil)

	assert.NotEqual(t, h.Hash(entry, nil), h.Hash(entry, &prev))
}

func TestHasher_EveryFieldIsBound(t *testing.T) {
	h := NewHasher()
	base := h.Hash(newTestEntry(), nil)
	msg := "boom"

	mutations := map[string]func(e *auditDomain.AuditLogEntry){
		"id":            func(e *auditDomain.AuditLogEntry) { e.ID = "other" },
		"timestamp":     func(e *auditDomain.AuditLogEntry) { e.Timestamp = e.Timestamp.Add(time.Millisecond) },
		"event type":    func(e *auditDomain.AuditLogEntry) { e.EventType = "case.update" },
		"resource type": func(e *auditDomain.AuditLogEntry) { e.ResourceType = "case_note" },
		"resource id":   func(e *auditDomain.AuditLogEntry) { e.ResourceID = "43" },
		"action":        func(e *auditDomain.AuditLogEntry) { e.Action = auditDomain.ActionUpdate },
		"details":       func(e *auditDomain.AuditLogEntry) { e.Details = json.RawMessage(`{}`) },
		"success":       func(e *auditDomain.AuditLogEntry) { e.Success = false },
		"error message": func(e *auditDomain.AuditLogEntry) { e.ErrorMessage = &msg },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			entry := newTestEntry()
			mutate(entry)
			assert.NotEqual(t, base, h.Hash(entry, nil))
		})
	}
}

func TestCanonicalize_NoFieldBoundaryAmbiguity(t *testing.T) {
	a := newTestEntry()
	a.EventType = "case.c"
	a.ResourceType = "reatecase"

	b := newTestEntry()
	b.EventType = "case.create"
	b.ResourceType = "case"

	assert.NotEqual(t, Canonicalize(a), Canonicalize(b))
}

func TestCanonicalize_EmptyErrorMessageDiffersFromNil(t *testing.T) {
	empty := ""
	withEmpty := newTestEntry()
	withEmpty.ErrorMessage = &empty

	assert.NotEqual(t, Canonicalize(newTestEntry()), Canonicalize(withEmpty))
}
