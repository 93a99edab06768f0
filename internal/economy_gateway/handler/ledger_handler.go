package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/economy_gateway/service"
)

// LedgerHandler handles HTTP requests for ledger read operations
type LedgerHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// GetStatement retrieves the most recent history of an account, newest first
func (h *LedgerHandler) GetStatement(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var params LimitParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid limit parameter: "+err.Error())
		return
	}

	lines, err := h.ledgerService.GetStatement(c.Request.Context(), id, params.Limit)
	if err != nil {
		h.logger.Error("Failed to get account statement", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]StatementLineResponse, 0, len(lines))
	for _, line := range lines {
		responses = append(responses, mapStatementLineToResponse(line))
	}
	RespondOK(c, responses)
}

// GetTreasuryBalance returns the current Treasury Fund balance
func (h *LedgerHandler) GetTreasuryBalance(c *gin.Context) {
	balance, err := h.ledgerService.GetTreasuryBalance(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get treasury balance", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, TreasuryResponse{Balance: balance})
}

// mapStatementLineToResponse maps a statement line to its response DTO
func mapStatementLineToResponse(line ledger.StatementLine) StatementLineResponse {
	return StatementLineResponse{
		JournalID:   line.JournalID.String(),
		EntryDate:   line.EntryDate.Format(time.RFC3339),
		Description: line.Description,
		Debit:       line.Debit,
		Credit:      line.Credit,
	}
}
