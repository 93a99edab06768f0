package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/domain/actor"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/economy_gateway/service"
)

// ActorHandler handles HTTP requests for actor operations
type ActorHandler struct {
	actorService service.ActorService
	logger       *slog.Logger
}

// NewActorHandler creates a new actor handler
func NewActorHandler(logger *slog.Logger, actorService service.ActorService) *ActorHandler {
	return &ActorHandler{
		actorService: actorService,
		logger:       logger,
	}
}

// GetByID retrieves an actor by its ID, returning 404 if not found
func (h *ActorHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid actor ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid actor ID")
		return
	}

	act, err := h.actorService.GetActorByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, actor.ErrActorNotFound) {
			RespondNotFound(c, "Actor not found")
			return
		}
		h.logger.Error("Failed to get actor", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapActorToResponse(act))
}

// GetAccounts lists all ledger accounts owned by an actor
func (h *ActorHandler) GetAccounts(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid actor ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid actor ID")
		return
	}

	accounts, err := h.actorService.GetActorAccounts(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, actor.ErrActorNotFound) {
			RespondNotFound(c, "Actor not found")
			return
		}
		h.logger.Error("Failed to list actor accounts", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, mapAccountToResponse(&accounts[i]))
	}
	RespondOK(c, responses)
}

// GetHistory retrieves paginated archived journal entries for an actor, newest first
func (h *ActorHandler) GetHistory(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid actor ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid actor ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	records, err := h.actorService.GetActorHistory(c.Request.Context(), id, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to get actor history", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, records, params.Page, params.PerPage)
}

// mapActorToResponse maps an actor entity to an actor response DTO
func mapActorToResponse(act *actor.Actor) ActorResponse {
	return ActorResponse{
		ID:              act.ID.String(),
		CharacterID:     act.CharacterID,
		PlayerID:        act.PlayerID,
		Name:            act.Name,
		RoleplayMode:    act.RoleplayMode,
		SavingsFraction: act.SavingsFraction,
		CreatedAt:       act.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       act.UpdatedAt.Format(time.RFC3339),
	}
}

// mapAccountToResponse maps a ledger account entity to an account response DTO
func mapAccountToResponse(acc *ledger.Account) AccountResponse {
	resp := AccountResponse{
		ID:        acc.ID.String(),
		Type:      string(acc.Type),
		Book:      string(acc.Book),
		Name:      acc.Name,
		Balance:   acc.Balance,
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: acc.UpdatedAt.Format(time.RFC3339),
	}
	if acc.OwnerID != nil {
		resp.OwnerID = acc.OwnerID.String()
	}
	return resp
}
