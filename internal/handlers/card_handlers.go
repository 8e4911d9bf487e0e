package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/services"
	"gym_checkin_backend/pkg/utils"
)

// CardHandler serves the admin card endpoints.
type CardHandler struct {
	cards services.CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cs services.CardService) *CardHandler {
	return &CardHandler{cards: cs}
}

// CreateCard issues a membership card to a member.
func (h *CardHandler) CreateCard(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	card, err := h.cards.CreateCard(c.Request.Context(), memberID, req)
	if err != nil {
		utils.LogError(err, "CreateCard: Error from cards.CreateCard", map[string]interface{}{
			"member_id": memberID.String(),
			"staff":     c.GetString(utils.ContextStaffName),
		})
		respondServiceError(c, err, "create card")
		return
	}
	c.JSON(http.StatusCreated, card)
}

// GetMemberCards lists a member's cards in selection order.
func (h *CardHandler) GetMemberCards(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	cards, err := h.cards.GetMemberCards(c.Request.Context(), memberID)
	if err != nil {
		respondServiceError(c, err, "fetch cards")
		return
	}
	if cards == nil {
		cards = []models.MembershipCard{}
	}
	c.JSON(http.StatusOK, gin.H{"data": cards})
}
