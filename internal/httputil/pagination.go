package httputil

import (
	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/casevault/internal/errors"
)

// Offset pagination bounds for admin list endpoints.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// ErrInvalidPagination indicates offset or limit query parameters out of range.
var ErrInvalidPagination = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid pagination")

type offsetLimitQuery struct {
	Offset int `form:"offset"           json:"offset"`
	Limit  int `form:"limit,default=50" json:"limit"`
}

// ParsePagination reads offset (default 0) and limit (default 50, at most 100) from the
// query string.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	var q offsetLimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return 0, 0, apperrors.Wrap(ErrInvalidPagination, "offset and limit must be integers")
	}

	err = validation.ValidateStruct(&q,
		validation.Field(&q.Offset, validation.Min(0)),
		validation.Field(&q.Limit, validation.Required, validation.Min(1), validation.Max(MaxPageLimit)),
	)
	if err != nil {
		return 0, 0, apperrors.Wrap(ErrInvalidPagination, err.Error())
	}

	return q.Offset, q.Limit, nil
}
