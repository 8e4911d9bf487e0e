package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"gym_checkin_backend/internal/services"
	"gym_checkin_backend/pkg/utils"
)

// respondServiceError maps the service error taxonomy onto the API envelope.
// action completes "Failed to ..." in the generic 500 message.
func respondServiceError(c *gin.Context, err error, action string) {
	var apiErr *utils.APIError
	switch {
	case errors.Is(err, services.ErrInvalidSlot):
		apiErr = utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidSlot, "Invalid time slot.", err.Error())
	case errors.Is(err, services.ErrInvalidTrainer):
		apiErr = utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidTrainer, "Invalid trainer.", err.Error())
	case errors.Is(err, services.ErrValidation):
		apiErr = utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error())
	case errors.Is(err, services.ErrAmbiguousMember):
		apiErr = utils.NewAPIError(http.StatusConflict, utils.ErrCodeNeedsEmail, services.MessageFor(err), err.Error())
	case errors.Is(err, services.ErrNameConflict):
		apiErr = utils.NewAPIError(http.StatusConflict, utils.ErrCodeNameConflict, services.MessageFor(err), err.Error())
	case errors.Is(err, services.ErrEmailConflict):
		apiErr = utils.NewAPIError(http.StatusConflict, utils.ErrCodeEmailConflict, services.MessageFor(err), err.Error())
	case errors.Is(err, services.ErrMemberNotFound):
		apiErr = utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error())
	case errors.Is(err, services.ErrCheckInNotFound):
		apiErr = utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Check-in not found.", err.Error())
	case errors.Is(err, services.ErrNoValidCard):
		apiErr = utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No valid card for this class; a check-in would be extra.", err.Error())
	case errors.Is(err, services.ErrTransientFailure):
		utils.RespondRetryable(c, "Temporary failure, nothing was recorded. Please try again.", err.Error())
		return
	case errors.Is(err, services.ErrOutcomeUnknown):
		apiErr = utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeOutcomeUnknown, "The check-in may or may not have been recorded. Check the member's history before retrying.", err.Error())
	case errors.Is(err, services.ErrReferenceVanished):
		apiErr = utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "A referenced member or trainer was removed during the request.", err.Error())
	default:
		apiErr = utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to "+action+".", "Internal error")
	}
	utils.RespondWithError(c, apiErr)
}

// respondBindError reports a payload that failed binding. A time slot that
// fails the binding rule is reported as INVALID_SLOT so clients can branch the
// same way as for a slot the service rejects.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			if fe.Tag() == "time_slot" {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidSlot, "Invalid time slot.", fe.Error()))
				return
			}
			fields = append(fields, fe.Field()+" failed "+fe.Tag())
		}
		utils.RespondValidationFailed(c, strings.Join(fields, "; "))
		return
	}
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
}

// parseIDParam reads a UUID path parameter, responding 400 when malformed.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", err.Error()))
		return uuid.Nil, false
	}
	return id, true
}
