// Package pagination defines cursor pagination parameters shared by repositories and the
// cache key generator.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/casevault/internal/errors"
)

// Direction is the sort order of a page.
type Direction string

// Page directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const (
	// DefaultLimit is used when Params.Limit is zero.
	DefaultLimit = 20
	// MaxLimit is the largest accepted page size.
	MaxLimit = 100
)

// ErrInvalidCursor indicates a cursor that was not produced by EncodeCursor.
var ErrInvalidCursor = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid cursor")

// Params selects one page. Cursor is opaque to callers; an empty cursor starts at the
// beginning in the requested direction.
type Params struct {
	Limit     int
	Cursor    string
	Direction Direction
}

// Normalized returns a copy with defaults applied: limit 20 and direction desc.
func (p Params) Normalized() Params {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Direction == "" {
		p.Direction = Desc
	}
	return p
}

// Validate checks the bounds. Call it on normalized params.
func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Limit, validation.Min(1), validation.Max(MaxLimit)),
		validation.Field(&p.Direction, validation.In(Asc, Desc)),
		validation.Field(&p.Cursor, validation.By(func(value any) error {
			cursor := value.(string)
			if cursor == "" {
				return nil
			}
			if _, err := DecodeCursor(cursor); err != nil {
				return validation.NewError("validation_invalid_cursor", "must be a valid cursor")
			}
			return nil
		})),
	)
}

// Page is one slice of results plus the cursor of the next page, empty on the last one.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// EncodeCursor renders the id a page ended at.
func EncodeCursor(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// DecodeCursor returns the id encoded by EncodeCursor.
func DecodeCursor(cursor string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidCursor
	}
	return id, nil
}
