package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gym_checkin_backend/internal/models"
)

// CheckInRepository defines the interface for check-in record operations.
// Check-ins are append-only; there is no update or delete.
type CheckInRepository interface {
	CreateCheckIn(ctx context.Context, executor SQLExecutor, checkIn *models.CheckIn) error
	GetCheckInByID(ctx context.Context, executor SQLExecutor, id uuid.UUID) (*models.CheckIn, error)
	ListCheckIns(ctx context.Context, executor SQLExecutor, filters models.CheckInFilters) ([]models.CheckIn, int, error)
	// CountCardCheckInsOnDate counts regular check-ins billed to a card on one date.
	CountCardCheckInsOnDate(ctx context.Context, executor SQLExecutor, cardID uuid.UUID, day time.Time) (int, error)
}

type checkInRepository struct {
	db *sql.DB
}

// NewCheckInRepository creates a new instance of CheckInRepository.
func NewCheckInRepository(db *sql.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

const checkInColumns = `id, member_id, card_id, trainer_id, class_category, time_slot, class_period,
	check_in_date, is_extra, is_1v2, created_at`

func scanCheckIn(s scanner, extra ...interface{}) (*models.CheckIn, error) {
	ci := &models.CheckIn{}
	var cardID, trainerID uuid.NullUUID
	var period sql.NullString
	dest := []interface{}{
		&ci.ID, &ci.MemberID, &cardID, &trainerID, &ci.ClassCategory, &ci.TimeSlot, &period,
		&ci.CheckInDate, &ci.IsExtra, &ci.Is1v2, &ci.CreatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if cardID.Valid {
		ci.CardID = &cardID.UUID
	}
	if trainerID.Valid {
		ci.TrainerID = &trainerID.UUID
	}
	if period.Valid {
		ci.ClassPeriod = &period.String
	}
	return ci, nil
}

// CreateCheckIn inserts a new check-in record.
func (r *checkInRepository) CreateCheckIn(ctx context.Context, executor SQLExecutor, checkIn *models.CheckIn) error {
	query := `INSERT INTO check_ins (` + checkInColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if checkIn.ID == uuid.Nil {
		checkIn.ID = uuid.New()
	}
	if checkIn.CreatedAt.IsZero() {
		checkIn.CreatedAt = time.Now()
	}

	var cardID, trainerID uuid.NullUUID
	if checkIn.CardID != nil {
		cardID = uuid.NullUUID{UUID: *checkIn.CardID, Valid: true}
	}
	if checkIn.TrainerID != nil {
		trainerID = uuid.NullUUID{UUID: *checkIn.TrainerID, Valid: true}
	}

	_, err := pick(executor, r.db).ExecContext(ctx, query,
		checkIn.ID, checkIn.MemberID, cardID, trainerID, checkIn.ClassCategory, checkIn.TimeSlot,
		checkIn.ClassPeriod, checkIn.CheckInDate, checkIn.IsExtra, checkIn.Is1v2, checkIn.CreatedAt,
	)
	if err != nil {
		return classifyError(err, "creating check-in")
	}
	return nil
}

// GetCheckInByID retrieves a check-in by ID.
func (r *checkInRepository) GetCheckInByID(ctx context.Context, executor SQLExecutor, id uuid.UUID) (*models.CheckIn, error) {
	query := `SELECT ` + checkInColumns + ` FROM check_ins WHERE id = $1`
	ci, err := scanCheckIn(pick(executor, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting check-in by ID %s: %v", ErrDatabaseError, id, err)
	}
	return ci, nil
}

// ListCheckIns returns check-ins matching the filters, newest first, along
// with the total number of matching rows.
func (r *checkInRepository) ListCheckIns(ctx context.Context, executor SQLExecutor, filters models.CheckInFilters) ([]models.CheckIn, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filters.MemberID != nil {
		conditions = append(conditions, fmt.Sprintf("member_id = $%d", argID))
		args = append(args, *filters.MemberID)
		argID++
	}
	if filters.CardID != nil {
		conditions = append(conditions, fmt.Sprintf("card_id = $%d", argID))
		args = append(args, *filters.CardID)
		argID++
	}
	if filters.Date != nil {
		conditions = append(conditions, fmt.Sprintf("check_in_date = $%d", argID))
		args = append(args, *filters.Date)
		argID++
	}

	query := `SELECT ` + checkInColumns + `, COUNT(*) OVER() AS total_count FROM check_ins`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY check_in_date DESC, created_at DESC"

	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
		args = append(args, filters.PageSize, (page-1)*filters.PageSize)
	}

	rows, err := pick(executor, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying check-ins: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	checkIns := []models.CheckIn{}
	totalCount := 0
	for rows.Next() {
		ci, err := scanCheckIn(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning check-in: %v", ErrDatabaseError, err)
		}
		checkIns = append(checkIns, *ci)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating check-in rows: %v", ErrDatabaseError, err)
	}
	return checkIns, totalCount, nil
}

func (r *checkInRepository) CountCardCheckInsOnDate(ctx context.Context, executor SQLExecutor, cardID uuid.UUID, day time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM check_ins WHERE card_id = $1 AND check_in_date = $2 AND NOT is_extra`
	var count int
	if err := pick(executor, r.db).QueryRowContext(ctx, query, cardID, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting check-ins for card %s: %v", ErrDatabaseError, cardID, err)
	}
	return count, nil
}
