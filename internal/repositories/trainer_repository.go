package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gym_checkin_backend/internal/models"
)

// TrainerRepository defines the interface for trainer directory operations.
type TrainerRepository interface {
	CreateTrainer(ctx context.Context, executor SQLExecutor, trainer *models.Trainer) error
	GetTrainerByID(ctx context.Context, executor SQLExecutor, id uuid.UUID) (*models.Trainer, error)
	ListTrainers(ctx context.Context, executor SQLExecutor) ([]models.Trainer, error)
}

type trainerRepository struct {
	db *sql.DB
}

// NewTrainerRepository creates a new instance of TrainerRepository.
func NewTrainerRepository(db *sql.DB) TrainerRepository {
	return &trainerRepository{db: db}
}

const trainerColumns = `id, name, tier, notes, created_at, updated_at`

func scanTrainer(s scanner) (*models.Trainer, error) {
	t := &models.Trainer{}
	if err := s.Scan(&t.ID, &t.Name, &t.Tier, &t.Notes, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *trainerRepository) CreateTrainer(ctx context.Context, executor SQLExecutor, trainer *models.Trainer) error {
	query := `INSERT INTO trainers (` + trainerColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now()
	if trainer.ID == uuid.Nil {
		trainer.ID = uuid.New()
	}
	trainer.CreatedAt = now
	trainer.UpdatedAt = now

	_, err := pick(executor, r.db).ExecContext(ctx, query,
		trainer.ID, trainer.Name, trainer.Tier, trainer.Notes, trainer.CreatedAt, trainer.UpdatedAt)
	if err != nil {
		return classifyError(err, "creating trainer")
	}
	return nil
}

func (r *trainerRepository) GetTrainerByID(ctx context.Context, executor SQLExecutor, id uuid.UUID) (*models.Trainer, error) {
	query := `SELECT ` + trainerColumns + ` FROM trainers WHERE id = $1`
	t, err := scanTrainer(pick(executor, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting trainer by ID %s: %v", ErrDatabaseError, id, err)
	}
	return t, nil
}

func (r *trainerRepository) ListTrainers(ctx context.Context, executor SQLExecutor) ([]models.Trainer, error) {
	query := `SELECT ` + trainerColumns + ` FROM trainers ORDER BY name ASC`
	rows, err := pick(executor, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying trainers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	trainers := []models.Trainer{}
	for rows.Next() {
		t, err := scanTrainer(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning trainer: %v", ErrDatabaseError, err)
		}
		trainers = append(trainers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating trainer rows: %v", ErrDatabaseError, err)
	}
	return trainers, nil
}
