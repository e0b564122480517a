// Package domain defines the legal case entities whose sensitive fields are stored
// encrypted.
package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/casevault/internal/validation"
)

// Entity type names used in cache keys, logs, metrics and audit entries.
const (
	CaseEntityType     = "case"
	CaseNoteEntityType = "case_note"
)

// Case statuses.
const (
	CaseStatusOpen     = "open"
	CaseStatusClosed   = "closed"
	CaseStatusArchived = "archived"
)

// Case is a legal matter. ClientName and Description are sensitive and never stored in
// plaintext.
type Case struct {
	ID          int64
	OwnerID     int64
	Title       string
	ClientName  string
	Description string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GetID returns the case id, or 0 for a nil case.
func (c *Case) GetID() int64 {
	if c == nil {
		return 0
	}
	return c.ID
}

// Clone returns a copy of the case.
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// ValidateCase checks a case before it is created or updated.
func ValidateCase(c *Case) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OwnerID, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.Title,
			validation.Required, validation.Length(1, 200), appValidation.NotBlank, appValidation.SingleLine),
		validation.Field(&c.ClientName,
			validation.Required, validation.Length(1, 200), appValidation.NotBlank, appValidation.SingleLine),
		validation.Field(&c.Description, validation.Length(0, 10000), appValidation.NoControlChars),
		validation.Field(&c.Status, validation.In(CaseStatusOpen, CaseStatusClosed, CaseStatusArchived)),
	)
}
