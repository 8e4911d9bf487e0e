package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_checkin_backend/internal/services"
	"gym_checkin_backend/pkg/utils"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err       error
		status    int
		code      string
		retryable bool
	}{
		{fmt.Errorf("%w: 12:00", services.ErrInvalidSlot), http.StatusBadRequest, utils.ErrCodeInvalidSlot, false},
		{services.ErrInvalidTrainer, http.StatusBadRequest, utils.ErrCodeInvalidTrainer, false},
		{services.ErrInvalidEmail, http.StatusBadRequest, utils.ErrCodeValidationFailed, false},
		{services.ErrAmbiguousMember, http.StatusConflict, utils.ErrCodeNeedsEmail, false},
		{services.ErrNameConflict, http.StatusConflict, utils.ErrCodeNameConflict, false},
		{services.ErrEmailConflict, http.StatusConflict, utils.ErrCodeEmailConflict, false},
		{services.ErrMemberNotFound, http.StatusNotFound, utils.ErrCodeNotFound, false},
		{services.ErrNoValidCard, http.StatusNotFound, utils.ErrCodeNotFound, false},
		{fmt.Errorf("%w: conn reset", services.ErrTransientFailure), http.StatusServiceUnavailable, utils.ErrCodeTransientFailure, true},
		{services.ErrOutcomeUnknown, http.StatusBadGateway, utils.ErrCodeOutcomeUnknown, false},
		{services.ErrReferenceVanished, http.StatusInternalServerError, utils.ErrCodeInternalServerError, false},
		{errors.New("boom"), http.StatusInternalServerError, utils.ErrCodeInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondServiceError(c, tt.err, "do it")

			assert.Equal(t, tt.status, w.Code)
			var body struct {
				Error utils.APIError `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.retryable, body.Error.Retryable)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestRespondServiceError_ConflictsCarryMemberMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondServiceError(c, services.ErrAmbiguousMember, "check in")

	var body struct {
		Error utils.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, services.MessageFor(services.ErrAmbiguousMember), body.Error.Message)
}

func TestTimeSlotBindingRule(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators(), "registering twice is harmless")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req services.ClassRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		body   string
		status int
	}{
		{`{"class_category":"group","time_slot":"9:00-10:30"}`, http.StatusNoContent},
		{`{"class_category":"kids group"}`, http.StatusNoContent},
		{`{"class_category":"group","time_slot":"９:００-１０:３０"}`, http.StatusNoContent},
		{`{"class_category":"group","time_slot":"nine"}`, http.StatusBadRequest},
		{`{"class_category":"pilates","time_slot":"09:00-10:30"}`, http.StatusBadRequest},
		{`{"time_slot":"09:00-10:30"}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
