package dto

import (
	"fmt"
	"strconv"
	"time"

	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	apperrors "github.com/allisson/casevault/internal/errors"
)

// TimeRangeQuery holds the optional RFC3339 bounds accepted by the audit endpoints.
type TimeRangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// Parse converts the bounds to UTC times. The range is half-open: [from, to).
func (q TimeRangeQuery) Parse() (from, to *time.Time, err error) {
	from, err = parseOptionalTime("from", q.From)
	if err != nil {
		return nil, nil, err
	}
	to, err = parseOptionalTime("to", q.To)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, fmt.Errorf("%w: from must be before to", apperrors.ErrInvalidInput)
	}
	return from, to, nil
}

// ListAuditLogsQuery holds the filters of GET /v1/audit-logs.
type ListAuditLogsQuery struct {
	TimeRangeQuery
	ResourceType string `form:"resource_type"`
	ResourceID   string `form:"resource_id"`
	Action       string `form:"action"`
	Success      string `form:"success"`
}

// Validate checks the filter values.
func (q ListAuditLogsQuery) Validate() error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.ResourceType, validation.Length(0, 64)),
		validation.Field(&q.ResourceID, validation.Length(0, 128)),
		validation.Field(&q.Action, validation.By(func(value any) error {
			action := value.(string)
			if action != "" && !auditDomain.Action(action).Valid() {
				return validation.NewError("validation_invalid_action", "must be a valid audit action")
			}
			return nil
		})),
		validation.Field(&q.Success, validation.In("", "true", "false")),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	return nil
}

// ToFilter converts the query into a domain filter.
func (q ListAuditLogsQuery) ToFilter(offset, limit int) (auditDomain.AuditLogFilter, error) {
	if err := q.Validate(); err != nil {
		return auditDomain.AuditLogFilter{}, err
	}

	from, to, err := q.Parse()
	if err != nil {
		return auditDomain.AuditLogFilter{}, err
	}

	filter := auditDomain.AuditLogFilter{
		ResourceType: q.ResourceType,
		ResourceID:   q.ResourceID,
		Action:       auditDomain.Action(q.Action),
		From:         from,
		To:           to,
		Offset:       offset,
		Limit:        limit,
	}
	if q.Success != "" {
		success, _ := strconv.ParseBool(q.Success)
		filter.Success = &success
	}
	return filter, nil
}

func parseOptionalTime(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: invalid %s format: must be RFC3339 (e.g., 2026-02-01T00:00:00Z)",
			apperrors.ErrInvalidInput, name,
		)
	}
	utc := parsed.UTC()
	return &utc, nil
}
