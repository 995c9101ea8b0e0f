package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rsvphub/rsvp-api/internal/middleware"
	"github.com/rsvphub/rsvp-api/internal/models"
	"github.com/rsvphub/rsvp-api/internal/storage"
	"github.com/rsvphub/rsvp-api/internal/utils"
	apperrors "github.com/rsvphub/rsvp-api/pkg/errors"
)

// AdminHandler handles the dashboard endpoints behind the auth guard
type AdminHandler struct {
	store  *storage.Store
	logger *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store *storage.Store, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		store:  store,
		logger: logger,
	}
}

// Stats returns aggregate RSVP counts
// @Summary Dashboard statistics
// @Description Aggregate counts per response category plus attending totals, computed fresh per call
// @Tags Admin
// @Produce json
// @Security Bearer
// @Success 200 {object} models.Stats
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.store.Stats(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to aggregate stats")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to load stats", err))
	}
	return c.JSON(stats)
}

// List returns every stored response, newest first
// @Summary List all responses
// @Tags Admin
// @Produce json
// @Security Bearer
// @Success 200 {array} models.Response
// @Router /admin/responses [get]
func (h *AdminHandler) List(c *fiber.Ctx) error {
	responses, err := h.store.ListResponses(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list responses")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to load responses", err))
	}
	return c.JSON(responses)
}

// Update replaces a response record in full
// @Summary Update a response
// @Description Full-record replace; the affected-row count is reported, never escalated
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Response ID"
// @Param request body models.UpsertRequest true "Full replacement record"
// @Success 200 {object} models.UpdateResponse
// @Router /admin/responses/{id} [put]
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid response id", err))
	}

	var req models.UpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}

	changes, err := h.store.UpdateResponse(c.Context(), int64(id), recordFromUpsert(&req))
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Error("Failed to update response")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to update response", err))
	}

	h.logger.WithFields(logrus.Fields{
		"id":             id,
		"changes":        changes,
		"admin_username": middleware.GetAdminUsername(c),
	}).Info("Response updated")

	return c.JSON(models.UpdateResponse{Success: true, Changes: changes})
}

// Delete removes a response record
// @Summary Delete a response
// @Tags Admin
// @Produce json
// @Security Bearer
// @Param id path int true "Response ID"
// @Success 200 {object} models.DeleteResponse
// @Failure 404 {object} apperrors.ErrorResponse "No such response"
// @Router /admin/responses/{id} [delete]
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid response id", err))
	}

	if err := h.store.DeleteResponse(c.Context(), int64(id)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return respondAppError(c, apperrors.NewAppError(apperrors.CodeNotFound, "Response not found", err))
		}
		h.logger.WithError(err).WithField("id", id).Error("Failed to delete response")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to delete response", err))
	}

	h.logger.WithFields(logrus.Fields{
		"id":             id,
		"admin_username": middleware.GetAdminUsername(c),
	}).Info("Response deleted")

	return c.JSON(models.DeleteResponse{Success: true})
}

// Create inserts a response manually from the dashboard. Admin input is
// trusted: no duplicate guard and no companion-pair validation.
// @Summary Create a response manually
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body models.UpsertRequest true "Full record"
// @Success 200 {object} models.SubmitResponse
// @Router /admin/responses [post]
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var req models.UpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}

	id, err := h.store.CreateResponse(c.Context(), recordFromUpsert(&req))
	if err != nil {
		h.logger.WithError(err).Error("Failed to create response")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to create response", err))
	}

	h.logger.WithFields(logrus.Fields{
		"id":             id,
		"admin_username": middleware.GetAdminUsername(c),
	}).Info("Response created manually")

	return c.JSON(models.SubmitResponse{Success: true, ID: id})
}

// recordFromUpsert maps an admin payload to a record, coercing empty
// companion and note fields to absent.
func recordFromUpsert(req *models.UpsertRequest) *models.Response {
	return &models.Response{
		FirstName: utils.Trimmed(req.FirstName),
		LastName:  utils.Trimmed(req.LastName),
		Response:  utils.Trimmed(req.Response),
		Guest1:    utils.NullableTrimmed(req.Guest1),
		Guest2:    utils.NullableTrimmed(req.Guest2),
		Guest3:    utils.NullableTrimmed(req.Guest3),
		Guest4:    utils.NullableTrimmed(req.Guest4),
		Note:      utils.NullableTrimmed(req.Note),
	}
}
