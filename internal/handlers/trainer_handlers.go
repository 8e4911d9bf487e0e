package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/services"
	"gym_checkin_backend/pkg/utils"
)

// TrainerHandler holds the trainer service.
type TrainerHandler struct {
	trainers services.TrainerService
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(ts services.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainers: ts}
}

// CreateTrainer adds a trainer to the directory.
func (h *TrainerHandler) CreateTrainer(c *gin.Context) {
	var req services.CreateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	trainer, err := h.trainers.CreateTrainer(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateTrainer: Error from trainers.CreateTrainer")
		respondServiceError(c, err, "create trainer")
		return
	}
	c.JSON(http.StatusCreated, trainer)
}

// GetTrainers lists all trainers by name.
func (h *TrainerHandler) GetTrainers(c *gin.Context) {
	trainers, err := h.trainers.GetTrainers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch trainers")
		return
	}
	if trainers == nil {
		trainers = []models.Trainer{}
	}
	c.JSON(http.StatusOK, gin.H{"data": trainers})
}
