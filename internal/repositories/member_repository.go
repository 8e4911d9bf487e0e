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

// MemberRepository defines the interface for member-related database operations.
type MemberRepository interface {
	CreateMember(ctx context.Context, executor SQLExecutor, member *models.Member) error
	GetMemberByID(ctx context.Context, executor SQLExecutor, id uuid.UUID) (*models.Member, error)
	FindMembersByName(ctx context.Context, executor SQLExecutor, normalizedName string) ([]models.Member, error)
	FindMemberByEmail(ctx context.Context, executor SQLExecutor, email string) (*models.Member, error)
	RecordVisit(ctx context.Context, executor SQLExecutor, memberID uuid.UUID, visitDate time.Time, isExtra bool) error
}

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, name, name_normalized, email, phone, is_new_member, last_check_in_date, extra_check_ins, created_at, updated_at`

func scanMember(s scanner) (*models.Member, error) {
	m := &models.Member{}
	var lastVisit sql.NullTime
	if err := s.Scan(
		&m.ID, &m.Name, &m.NormalizedName, &m.Email, &m.Phone, &m.IsNewMember,
		&lastVisit, &m.ExtraCheckIns, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastVisit.Valid {
		m.LastCheckInDate = &lastVisit.Time
	}
	return m, nil
}

// CreateMember inserts a new member. The normalized name is derived here so
// every stored row can be matched by the resolver.
func (r *memberRepository) CreateMember(ctx context.Context, executor SQLExecutor, member *models.Member) error {
	query := `INSERT INTO members (id, name, name_normalized, email, phone, is_new_member, last_check_in_date, extra_check_ins, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now
	member.NormalizedName = models.NormalizeName(member.Name)

	var lastVisit sql.NullTime
	if member.LastCheckInDate != nil {
		lastVisit = sql.NullTime{Time: *member.LastCheckInDate, Valid: true}
	}

	_, err := pick(executor, r.db).ExecContext(ctx, query,
		member.ID, member.Name, member.NormalizedName, member.Email, member.Phone, member.IsNewMember,
		lastVisit, member.ExtraCheckIns, member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		return classifyError(err, "creating member")
	}
	return nil
}

// GetMemberByID retrieves a member by ID.
func (r *memberRepository) GetMemberByID(ctx context.Context, executor SQLExecutor, id uuid.UUID) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	m, err := scanMember(pick(executor, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting member by ID %s: %v", ErrDatabaseError, id, err)
	}
	return m, nil
}

// FindMembersByName returns every member whose normalized name equals
// normalizedName, oldest first.
func (r *memberRepository) FindMembersByName(ctx context.Context, executor SQLExecutor, normalizedName string) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE name_normalized = $1 ORDER BY created_at ASC`
	rows, err := pick(executor, r.db).QueryContext(ctx, query, normalizedName)
	if err != nil {
		return nil, fmt.Errorf("%w: querying members by name: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning member: %v", ErrDatabaseError, err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating member rows: %v", ErrDatabaseError, err)
	}
	return members, nil
}

// FindMemberByEmail looks a member up by email, ignoring case.
func (r *memberRepository) FindMemberByEmail(ctx context.Context, executor SQLExecutor, email string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE lower(email) = $1`
	m, err := scanMember(pick(executor, r.db).QueryRowContext(ctx, query, models.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting member by email: %v", ErrDatabaseError, err)
	}
	return m, nil
}

// RecordVisit clears the new-member flag, advances the last check-in date
// and, for extra visits, bumps the extra counter.
func (r *memberRepository) RecordVisit(ctx context.Context, executor SQLExecutor, memberID uuid.UUID, visitDate time.Time, isExtra bool) error {
	query := `UPDATE members SET
	            is_new_member = FALSE,
	            last_check_in_date = GREATEST(COALESCE(last_check_in_date, $2::date), $2::date),
	            extra_check_ins = extra_check_ins + CASE WHEN $3 THEN 1 ELSE 0 END,
	            updated_at = $4
	          WHERE id = $1`

	result, err := pick(executor, r.db).ExecContext(ctx, query, memberID, visitDate, isExtra, time.Now())
	if err != nil {
		return classifyError(err, fmt.Sprintf("recording visit for member %s", memberID))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for member %s: %v", ErrDatabaseError, memberID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
