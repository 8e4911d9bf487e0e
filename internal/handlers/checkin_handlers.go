package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/services"
	"gym_checkin_backend/pkg/utils"
)

// CheckInHandler serves the front-desk endpoints.
type CheckInHandler struct {
	desk     services.FrontDeskService
	resolver services.MemberResolver
	checkIns services.CheckInService
	selector services.CardSelector
}

// NewCheckInHandler creates a new CheckInHandler.
func NewCheckInHandler(desk services.FrontDeskService, resolver services.MemberResolver, checkIns services.CheckInService, selector services.CardSelector) *CheckInHandler {
	return &CheckInHandler{desk: desk, resolver: resolver, checkIns: checkIns, selector: selector}
}

// ResolveMember reports whether a claimed name/email pair names a member.
func (h *CheckInHandler) ResolveMember(c *gin.Context) {
	var req services.ResolveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.resolver.ResolveMember(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		utils.LogError(err, "ResolveMember: Error from resolver.ResolveMember")
		respondServiceError(c, err, "resolve member")
		return
	}
	c.JSON(http.StatusOK, res)
}

// FrontDeskCheckIn runs the whole desk flow, registering unknown names.
func (h *CheckInHandler) FrontDeskCheckIn(c *gin.Context) {
	var req services.FrontDeskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.desk.CheckIn(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "FrontDeskCheckIn: Error from desk.CheckIn")
		respondServiceError(c, err, "check in")
		return
	}
	status := http.StatusOK
	if res.IsNewMember {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// SubmitCheckIn checks in a member already identified by id.
func (h *CheckInHandler) SubmitCheckIn(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.checkIns.SubmitCheckIn(c.Request.Context(), memberID, req)
	if err != nil {
		utils.LogError(err, "SubmitCheckIn: Error from checkIns.SubmitCheckIn", map[string]interface{}{"member_id": memberID.String()})
		respondServiceError(c, err, "record check-in")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetCheckInByID returns one check-in record.
func (h *CheckInHandler) GetCheckInByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ci, err := h.checkIns.GetCheckInByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch check-in")
		return
	}
	c.JSON(http.StatusOK, ci)
}

// GetMemberCheckIns lists a member's check-ins, newest first.
func (h *CheckInHandler) GetMemberCheckIns(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	checkIns, total, err := h.checkIns.GetMemberCheckIns(c.Request.Context(), memberID, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetMemberCheckIns: Error from checkIns.GetMemberCheckIns", map[string]interface{}{"member_id": memberID.String()})
		respondServiceError(c, err, "fetch check-ins")
		return
	}
	if checkIns == nil {
		checkIns = []models.CheckIn{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      checkIns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// SelectCard previews which card a check-in of the given class would use.
func (h *CheckInHandler) SelectCard(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, valid := models.ParseClassCategory(c.Query("class_category"))
	if !valid {
		utils.RespondValidationFailed(c, "class_category must be one of group, private, kids_group")
		return
	}

	sel, err := h.selector.SelectCard(c.Request.Context(), memberID, category)
	if err != nil {
		respondServiceError(c, err, "select card")
		return
	}
	c.JSON(http.StatusOK, sel)
}
