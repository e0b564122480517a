package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	"github.com/allisson/casevault/internal/audit/http/dto"
	auditUsecase "github.com/allisson/casevault/internal/audit/usecase"
)

// ListAuditLogsParams are the CLI filters for list-audit-logs. Empty strings mean "any".
type ListAuditLogsParams struct {
	ResourceType string
	ResourceID   string
	Action       string
	Success      string
	StartDate    string
	EndDate      string
	Offset       int
	Limit        int
}

// toFilter validates the params and converts them to a domain filter.
func (p ListAuditLogsParams) toFilter() (auditDomain.AuditLogFilter, error) {
	filter := auditDomain.AuditLogFilter{
		ResourceType: p.ResourceType,
		ResourceID:   p.ResourceID,
		Offset:       p.Offset,
		Limit:        p.Limit,
	}

	if p.Action != "" {
		action := auditDomain.Action(p.Action)
		if !action.Valid() {
			return filter, fmt.Errorf("invalid action: %s", p.Action)
		}
		filter.Action = action
	}

	if p.Success != "" {
		success, err := strconv.ParseBool(p.Success)
		if err != nil {
			return filter, fmt.Errorf("invalid success value: %s (expected true or false)", p.Success)
		}
		filter.Success = &success
	}

	from, err := parseDate(p.StartDate)
	if err != nil {
		return filter, fmt.Errorf("invalid start date: %w", err)
	}
	to, err := parseDate(p.EndDate)
	if err != nil {
		return filter, fmt.Errorf("invalid end date: %w", err)
	}
	filter.From, filter.To = from, to

	if p.Offset < 0 {
		return filter, fmt.Errorf("offset must not be negative, got: %d", p.Offset)
	}
	return filter, nil
}

// RunListAuditLogs prints audit entries newest first.
func RunListAuditLogs(
	ctx context.Context,
	auditLogger auditUsecase.AuditLogger,
	writer io.Writer,
	params ListAuditLogsParams,
	format string,
) error {
	filter, err := params.toFilter()
	if err != nil {
		return err
	}

	entries, err := auditLogger.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list audit logs: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, dto.MapAuditLogsToListResponse(entries))
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIMESTAMP\tEVENT\tRESOURCE\tACTION\tSUCCESS\tERROR")
	for _, entry := range entries {
		errorMessage := "-"
		if entry.ErrorMessage != nil {
			errorMessage = *entry.ErrorMessage
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%s\t%t\t%s\n",
			auditDomain.FormatTimestamp(entry.Timestamp),
			entry.EventType,
			entry.ResourceType,
			entry.ResourceID,
			entry.Action,
			entry.Success,
			errorMessage,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write audit logs: %w", err)
	}
	_, _ = fmt.Fprintf(writer, "\n%d entr(ies)\n", len(entries))
	return nil
}
