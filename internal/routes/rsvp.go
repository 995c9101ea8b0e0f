package routes

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rsvphub/rsvp-api/internal/metrics"
	"github.com/rsvphub/rsvp-api/internal/models"
	"github.com/rsvphub/rsvp-api/internal/storage"
	"github.com/rsvphub/rsvp-api/internal/utils"
	apperrors "github.com/rsvphub/rsvp-api/pkg/errors"
)

// RSVPHandler handles the public submission endpoint
type RSVPHandler struct {
	store  *storage.Store
	logger *logrus.Logger
}

// NewRSVPHandler creates a new public RSVP handler
func NewRSVPHandler(store *storage.Store, logger *logrus.Logger) *RSVPHandler {
	return &RSVPHandler{
		store:  store,
		logger: logger,
	}
}

// Submit handles a public RSVP submission
// @Summary Submit an RSVP
// @Description Validate and store a guest party's RSVP, rejecting duplicate name pairs
// @Tags RSVP
// @Accept json
// @Produce json
// @Param request body models.SubmitRequest true "RSVP form payload"
// @Success 200 {object} models.SubmitResponse
// @Failure 400 {object} apperrors.ErrorResponse "Missing name or incomplete guest pair"
// @Failure 409 {object} apperrors.ErrorResponse "Name pair already submitted"
// @Router /rsvp [post]
func (h *RSVPHandler) Submit(c *fiber.Ctx) error {
	var req models.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		metrics.RecordSubmission("invalid")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}

	rec, appErr := buildSubmission(&req)
	if appErr != nil {
		metrics.RecordSubmission("invalid")
		return respondAppError(c, appErr)
	}

	id, err := h.store.SubmitResponse(c.Context(), rec)
	if err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			metrics.RecordSubmission("duplicate")
			h.logger.WithFields(logrus.Fields{
				"first_name": dup.FirstName,
				"last_name":  dup.LastName,
			}).Info("Duplicate RSVP rejected")
			return respondAppError(c, apperrors.NewAppError(apperrors.CodeConflict, dup.Error(), err))
		}

		metrics.RecordSubmission("error")
		h.logger.WithError(err).Error("Failed to store RSVP")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to store RSVP", err))
	}

	metrics.RecordSubmission("accepted")
	h.logger.WithFields(logrus.Fields{
		"id":       id,
		"response": rec.Response,
	}).Info("RSVP stored")

	return c.JSON(models.SubmitResponse{Success: true, ID: id})
}

// buildSubmission validates the public form payload and assembles a record.
// Companion pairs are only considered for attending parties; a half-filled
// pair is an error naming the slot, an empty pair is an absent slot.
func buildSubmission(req *models.SubmitRequest) (*models.Response, *apperrors.AppError) {
	first := utils.Trimmed(req.FirstName)
	last := utils.Trimmed(req.LastName)
	if first == "" || last == "" {
		return nil, apperrors.NewAppError(apperrors.CodeBadRequest, "First and last name required", nil)
	}

	response := utils.Trimmed(req.Response)
	switch response {
	case models.ResponseYes, models.ResponseNo, models.ResponseMaybe:
	default:
		return nil, apperrors.NewAppError(apperrors.CodeBadRequest, "Response must be yes, no or maybe", nil)
	}

	rec := &models.Response{
		FirstName: first,
		LastName:  last,
		Response:  response,
		Note:      utils.NullableTrimmed(req.Note),
	}

	if response == models.ResponseYes {
		var guests [models.GuestSlots]*string
		for i, pair := range req.GuestPairs() {
			guestFirst := utils.Trimmed(pair[0])
			guestLast := utils.Trimmed(pair[1])

			switch {
			case guestFirst != "" && guestLast != "":
				full := utils.JoinName(guestFirst, guestLast)
				guests[i] = &full
			case guestFirst == "" && guestLast == "":
				// slot unused
			default:
				return nil, apperrors.NewAppError(apperrors.CodeBadRequest,
					fmt.Sprintf("Guest %d requires both a first and last name", i+1), nil)
			}
		}
		rec.SetGuests(guests)
	}

	return rec, nil
}
