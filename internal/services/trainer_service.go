package services

import (
	"context"
	"fmt"
	"strings"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
	"gym_checkin_backend/pkg/utils"
)

type CreateTrainerRequest struct {
	Name  string  `json:"name" binding:"required"`
	Tier  string  `json:"tier" binding:"required"`
	Notes *string `json:"notes"`
}

// TrainerService manages the trainer directory.
type TrainerService interface {
	CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*models.Trainer, error)
	GetTrainers(ctx context.Context) ([]models.Trainer, error)
}

type trainerService struct {
	trainerRepo repositories.TrainerRepository
	tx          repositories.Transactor
}

// NewTrainerService creates a new instance of TrainerService.
func NewTrainerService(tr repositories.TrainerRepository, tx repositories.Transactor) TrainerService {
	return &trainerService{trainerRepo: tr, tx: tx}
}

func (s *trainerService) CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*models.Trainer, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: trainer name cannot be empty", ErrInvalidName)
	}
	tier, err := models.ParseTrainerTier(req.Tier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	trainer := &models.Trainer{Name: strings.TrimSpace(req.Name), Tier: tier, Notes: utils.NewNullString(utils.StringValue(req.Notes))}
	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.trainerRepo.CreateTrainer(ctx, exec, trainer)
	})
	if err != nil {
		return nil, classifyTxError(err)
	}
	utils.LogInfo("Trainer created", map[string]interface{}{"trainer_id": trainer.ID.String(), "tier": string(tier)})
	return trainer, nil
}

func (s *trainerService) GetTrainers(ctx context.Context) ([]models.Trainer, error) {
	trainers, err := s.trainerRepo.ListTrainers(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	return trainers, nil
}
