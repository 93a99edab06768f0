package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/domain/job"
	"github.com/convoy-settlement-engine/internal/economy_gateway/service"
)

// JobHandler handles HTTP requests for delivery-job read operations
type JobHandler struct {
	jobService service.JobService
	logger     *slog.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(logger *slog.Logger, jobService service.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// List retrieves jobs, newest first
func (h *JobHandler) List(c *gin.Context) {
	var params LimitParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid limit parameter: "+err.Error())
		return
	}

	jobs, err := h.jobService.ListJobs(c.Request.Context(), params.Limit)
	if err != nil {
		h.logger.Error("Failed to list jobs", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, mapJobToResponse(&jobs[i]))
	}
	RespondOK(c, responses)
}

// GetByID retrieves a delivery job by its ID, returning 404 if not found
func (h *JobHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid job ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid job ID")
		return
	}

	j, err := h.jobService.GetJobByID(c.Request.Context(), id)
	if err != nil {
		var notFound job.ErrJobNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Job not found")
			return
		}
		h.logger.Error("Failed to get job", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapJobToResponse(j))
}

// GetDeliveries retrieves a job's delivery history in chronological order
func (h *JobHandler) GetDeliveries(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid job ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid job ID")
		return
	}

	deliveries, err := h.jobService.GetJobDeliveries(c.Request.Context(), id)
	if err != nil {
		var notFound job.ErrJobNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Job not found")
			return
		}
		h.logger.Error("Failed to get job deliveries", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]DeliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		responses = append(responses, DeliveryResponse{
			ID:          d.ID.String(),
			JobID:       d.JobID.String(),
			ActorID:     d.ActorID.String(),
			Quantity:    d.Quantity,
			DeliveredAt: d.DeliveredAt.Format(time.RFC3339),
		})
	}
	RespondOK(c, responses)
}

// mapJobToResponse maps a delivery job entity to a job response DTO
func mapJobToResponse(j *job.DeliveryJob) JobResponse {
	resp := JobResponse{
		ID:                j.ID.String(),
		Cargo:             j.Cargo,
		QuantityRequested: j.QuantityRequested,
		QuantityFulfilled: j.QuantityFulfilled,
		CompletionBonus:   j.CompletionBonus,
		BonusMultiplier:   j.BonusMultiplier,
		RoleplayOnly:      j.RoleplayOnly,
		ExpiresAt:         j.ExpiresAt.Format(time.RFC3339),
		CreatedAt:         j.CreatedAt.Format(time.RFC3339),
	}
	if j.SourceZoneID != nil {
		resp.SourceZoneID = j.SourceZoneID.String()
	}
	if j.DestinationZoneID != nil {
		resp.DestinationZoneID = j.DestinationZoneID.String()
	}
	if j.CompletedAt != nil {
		resp.CompletedAt = j.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
