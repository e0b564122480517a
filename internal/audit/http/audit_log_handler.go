// Package http provides the read-only admin endpoints over the audit log.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	"github.com/allisson/casevault/internal/audit/http/dto"
	auditUseCase "github.com/allisson/casevault/internal/audit/usecase"
	apperrors "github.com/allisson/casevault/internal/errors"
	"github.com/allisson/casevault/internal/httputil"
)

// AuditLogHandler handles HTTP requests for audit log operations.
type AuditLogHandler struct {
	auditLogger auditUseCase.AuditLogger
	logger      *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(auditLogger auditUseCase.AuditLogger, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// ListHandler retrieves audit logs newest first.
// GET /v1/audit-logs?offset=0&limit=50&resource_type=case&resource_id=7&action=delete&success=false
// &from=2026-02-01T00:00:00Z&to=2026-02-15T00:00:00Z
// The time range is half-open: from is inclusive, to is exclusive.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var query dto.ListAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter, err := query.ToFilter(offset, limit)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.auditLogger.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditLogsToListResponse(entries))
}

// VerifyHandler walks the chain and reports whether it is intact.
// GET /v1/audit-logs/verify?from=2026-02-01T00:00:00Z&to=2026-02-15T00:00:00Z
// Returns 200 with the result when the chain is valid and 409 with the result when it is
// broken.
func (h *AuditLogHandler) VerifyHandler(c *gin.Context) {
	var query dto.TimeRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	from, to, err := query.Parse()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	result, err := h.auditLogger.VerifyChain(
		c.Request.Context(),
		auditDomain.VerifyOptions{From: from, To: to},
	)
	if err != nil {
		if apperrors.Is(err, auditDomain.ErrAuditChainIntegrity) && result != nil {
			h.logger.Warn("audit chain verification failed",
				slog.String("broken_at_id", result.BrokenAtID),
				slog.String("reason", result.Reason),
			)
			c.JSON(http.StatusConflict, result)
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}
