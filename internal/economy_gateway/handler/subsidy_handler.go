package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/domain/subsidy"
	"github.com/convoy-settlement-engine/internal/economy_gateway/service"
)

// SubsidyHandler handles HTTP requests for subsidy rule and zone read operations
type SubsidyHandler struct {
	subsidyService service.SubsidyService
	logger         *slog.Logger
}

// NewSubsidyHandler creates a new subsidy handler
func NewSubsidyHandler(logger *slog.Logger, subsidyService service.SubsidyService) *SubsidyHandler {
	return &SubsidyHandler{
		subsidyService: subsidyService,
		logger:         logger,
	}
}

// ListRules retrieves all subsidy rules, active or not
func (h *SubsidyHandler) ListRules(c *gin.Context) {
	rules, err := h.subsidyService.ListRules(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list subsidy rules", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]RuleResponse, 0, len(rules))
	for i := range rules {
		responses = append(responses, mapRuleToResponse(&rules[i]))
	}
	RespondOK(c, responses)
}

// ListZones retrieves the full zone registry
func (h *SubsidyHandler) ListZones(c *gin.Context) {
	zones, err := h.subsidyService.ListZones(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list zones", "error", err)
		RespondInternalError(c)
		return
	}

	// zones serialize directly; polygons and points carry no internal state
	RespondOK(c, zones)
}

// GetZoneByID retrieves one zone by its ID, returning 404 if not found
func (h *SubsidyHandler) GetZoneByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid zone ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid zone ID")
		return
	}

	zone, err := h.subsidyService.GetZoneByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get zone", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}
	if zone == nil {
		RespondNotFound(c, "Zone not found")
		return
	}

	RespondOK(c, zone)
}

// mapRuleToResponse maps a subsidy rule entity to a rule response DTO
func mapRuleToResponse(r *subsidy.Rule) RuleResponse {
	resp := RuleResponse{
		ID:               r.ID.String(),
		Priority:         r.Priority,
		Active:           r.Active,
		Kind:             string(r.Kind),
		Rate:             r.Rate,
		FlatAmount:       r.FlatAmount,
		Cargo:            r.Cargo,
		RequiresOnTime:   r.RequiresOnTime,
		ScalesWithDamage: r.ScalesWithDamage,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.SourceZoneID != nil {
		resp.SourceZoneID = r.SourceZoneID.String()
	}
	if r.DestinationZoneID != nil {
		resp.DestinationZoneID = r.DestinationZoneID.String()
	}
	return resp
}
