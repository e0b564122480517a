package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/casevault/internal/validation"
)

// CaseNote is a free-text note attached to a case. Content is sensitive.
type CaseNote struct {
	ID        int64
	CaseID    int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the note id, or 0 for a nil note.
func (n *CaseNote) GetID() int64 {
	if n == nil {
		return 0
	}
	return n.ID
}

// Clone returns a copy of the note.
func (n *CaseNote) Clone() *CaseNote {
	if n == nil {
		return nil
	}
	clone := *n
	return &clone
}

// ValidateCaseNote checks a note before it is created or updated.
func ValidateCaseNote(n *CaseNote) error {
	return validation.ValidateStruct(n,
		validation.Field(&n.CaseID, validation.Required, validation.Min(int64(1))),
		validation.Field(&n.Content,
			validation.Required, validation.Length(1, 50000), appValidation.NotBlank, appValidation.NoControlChars),
	)
}
