package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	apperrors "github.com/allisson/casevault/internal/errors"
)

func TestTimeRangeQuery_Parse(t *testing.T) {
	t.Run("empty bounds", func(t *testing.T) {
		from, to, err := TimeRangeQuery{}.Parse()
		require.NoError(t, err)
		assert.Nil(t, from)
		assert.Nil(t, to)
	})

	t.Run("bounds are converted to UTC", func(t *testing.T) {
		from, to, err := TimeRangeQuery{
			From: "2026-02-01T01:00:00+01:00",
			To:   "2026-02-02T00:00:00Z",
		}.Parse()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), *from)
		assert.Equal(t, time.UTC, to.Location())
	})

	t.Run("invalid format", func(t *testing.T) {
		_, _, err := TimeRangeQuery{From: "yesterday"}.Parse()
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "invalid from format")
	})

	t.Run("empty range", func(t *testing.T) {
		_, _, err := TimeRangeQuery{
			From: "2026-02-02T00:00:00Z",
			To:   "2026-02-02T00:00:00Z",
		}.Parse()
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestListAuditLogsQuery_ToFilter(t *testing.T) {
	t.Run("all filters", func(t *testing.T) {
		q := ListAuditLogsQuery{
			TimeRangeQuery: TimeRangeQuery{From: "2026-02-01T00:00:00Z"},
			ResourceType:   "case",
			ResourceID:     "12",
			Action:         "delete",
			Success:        "false",
		}

		filter, err := q.ToFilter(10, 20)
		require.NoError(t, err)
		assert.Equal(t, "case", filter.ResourceType)
		assert.Equal(t, "12", filter.ResourceID)
		assert.Equal(t, auditDomain.ActionDelete, filter.Action)
		require.NotNil(t, filter.Success)
		assert.False(t, *filter.Success)
		require.NotNil(t, filter.From)
		assert.Nil(t, filter.To)
		assert.Equal(t, 10, filter.Offset)
		assert.Equal(t, 20, filter.Limit)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := ListAuditLogsQuery{Action: "archive"}.ToFilter(0, 50)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("invalid success flag", func(t *testing.T) {
		_, err := ListAuditLogsQuery{Success: "maybe"}.ToFilter(0, 50)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	})
}
