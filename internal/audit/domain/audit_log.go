// Package domain defines the append-only, hash-chained audit log of security-relevant events.
package domain

import (
	"encoding/json"
	"time"

	validation "github.com/jellydator/validation"
)

// TimestampLayout is the persisted timestamp form: UTC ISO-8601 with millisecond precision.
// Its fixed width makes lexical order equal to chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Action is what happened to the audited resource.
type Action string

// Audited actions.
const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionExport  Action = "export"
	ActionDecrypt Action = "decrypt"
)

// Actions lists every valid action.
var Actions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionDecrypt}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Event is what callers hand to Append. The logger assigns id, timestamp and hashes.
type Event struct {
	EventType    string
	ResourceType string
	ResourceID   string
	Action       Action
	Details      map[string]any
	Success      bool
	ErrorMessage *string
}

// Validate checks the event before it enters the chain.
func (e Event) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.EventType, validation.Required, validation.Length(1, 128)),
		validation.Field(&e.ResourceType, validation.Required, validation.Length(1, 64)),
		validation.Field(&e.ResourceID, validation.Required, validation.Length(1, 128)),
		validation.Field(&e.Action, validation.Required, validation.By(func(value any) error {
			if !value.(Action).Valid() {
				return validation.NewError("validation_invalid_action", "must be a valid audit action")
			}
			return nil
		})),
	)
}

// AuditLogEntry is one persisted link of the chain.
//
// IntegrityHash = SHA-256(canonical(entry without hashes) || PreviousLogHash). Entries are
// never updated or deleted, and (Timestamp, ID) order equals append order.
type AuditLogEntry struct {
	ID           string
	Timestamp    time.Time
	EventType    string
	ResourceType string
	ResourceID   string
	Action       Action
	// Details holds the exact JSON bytes that were hashed and persisted.
	Details         json.RawMessage
	Success         bool
	ErrorMessage    *string
	IntegrityHash   string
	PreviousLogHash *string
	// Signature is the optional HMAC seal over IntegrityHash, hex encoded.
	Signature *string
}

// SealAnchor records the first sealed entry. Entries at or after its (Timestamp, EntryID)
// position must be signed; Signature is the seal over Message().
type SealAnchor struct {
	EntryID   string
	Timestamp time.Time
	Signature string
}

// sealAnchorTag keeps anchor messages disjoint from integrity hashes, which are bare hex.
const sealAnchorTag = "casevault-audit-seal-anchor-v1"

// NewSealAnchor returns the unsigned anchor for entry.
func NewSealAnchor(entry *AuditLogEntry) *SealAnchor {
	return &SealAnchor{EntryID: entry.ID, Timestamp: entry.Timestamp}
}

// Message is the string the anchor signature covers.
func (a *SealAnchor) Message() string {
	return sealAnchorTag + "|" + FormatTimestamp(a.Timestamp) + "|" + a.EntryID
}

// Covers reports whether entry sits at or after the anchor in (timestamp, id) order.
func (a *SealAnchor) Covers(entry *AuditLogEntry) bool {
	ts := entry.Timestamp.UTC().Truncate(time.Millisecond)
	anchorTS := a.Timestamp.UTC().Truncate(time.Millisecond)
	if !ts.Equal(anchorTS) {
		return ts.After(anchorTS)
	}
	return entry.ID >= a.EntryID
}

// FormatTimestamp renders t in the persisted layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a persisted timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

// VerifyOptions restricts verification to the half-open range [From, To). A nil bound is
// open. With From set, the entry just before the range seeds the expected previous hash.
type VerifyOptions struct {
	From *time.Time
	To   *time.Time
}

// VerifyResult reports the outcome of a chain walk.
type VerifyResult struct {
	Valid          bool   `json:"valid"`
	BrokenAtID     string `json:"broken_at_id,omitempty"`
	EntriesChecked int64  `json:"entries_checked"`
	Reason         string `json:"reason,omitempty"`
}

// AuditLogFilter selects entries for the read projections. Results are newest first.
type AuditLogFilter struct {
	ResourceType string
	ResourceID   string
	Action       Action
	Success      *bool
	From         *time.Time
	To           *time.Time
	Offset       int
	Limit        int
}

// ChainCursor is the (timestamp, id) position after which a chain walk resumes.
type ChainCursor struct {
	Timestamp time.Time
	ID        string
}

// ChainQuery selects the next batch of a chain walk in (timestamp, id) order.
type ChainQuery struct {
	After *ChainCursor
	From  *time.Time
	To    *time.Time
	Limit int
}
