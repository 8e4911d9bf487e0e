package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gym_checkin_backend/internal/services"
	"gym_checkin_backend/pkg/utils"
)

// MemberHandler holds the member services.
type MemberHandler struct {
	members      services.MemberService
	registration services.RegistrationService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(ms services.MemberService, rs services.RegistrationService) *MemberHandler {
	return &MemberHandler{members: ms, registration: rs}
}

// RegisterMember creates a member together with their first, extra check-in.
func (h *MemberHandler) RegisterMember(c *gin.Context) {
	var req services.RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.registration.RegisterMember(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "RegisterMember: Error from registration.RegisterMember")
		respondServiceError(c, err, "register member")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetMemberByID handles fetching a single member by ID.
func (h *MemberHandler) GetMemberByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	m, err := h.members.GetMemberByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch member")
		return
	}
	c.JSON(http.StatusOK, m)
}
