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

// CardRepository defines the interface for membership card database operations.
type CardRepository interface {
	CreateCard(ctx context.Context, executor SQLExecutor, card *models.MembershipCard) error
	GetCardByID(ctx context.Context, executor SQLExecutor, id uuid.UUID) (*models.MembershipCard, error)
	// ListCardsByMember returns the member's cards ordered by expiry, earliest
	// first, with non-expiring cards last. With lock set the rows stay locked
	// until the surrounding transaction ends.
	ListCardsByMember(ctx context.Context, executor SQLExecutor, memberID uuid.UUID, lock bool) ([]models.MembershipCard, error)
	// DecrementSession takes one session off the card if it still has one and
	// has not expired by onDate. It returns the new remaining count, or
	// ErrNoRowsAffected when the condition did not hold.
	DecrementSession(ctx context.Context, executor SQLExecutor, cardID uuid.UUID, counter models.SessionCounter, onDate time.Time) (int, error)
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new instance of CardRepository.
func NewCardRepository(db *sql.DB) CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `id, member_id, card_type, card_category, card_subtype, trainer_tier,
	remaining_group_sessions, remaining_private_sessions, remaining_kids_sessions,
	valid_until, created_at, updated_at`

func scanCard(s scanner) (*models.MembershipCard, error) {
	c := &models.MembershipCard{}
	var validUntil sql.NullTime
	if err := s.Scan(
		&c.ID, &c.MemberID, &c.CardType, &c.Category, &c.Subtype, &c.TrainerTier,
		&c.RemainingGroupSessions, &c.RemainingPrivateSessions, &c.RemainingKidsSessions,
		&validUntil, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if validUntil.Valid {
		c.ValidUntil = &validUntil.Time
	}
	return c, nil
}

// CreateCard inserts a new membership card.
func (r *cardRepository) CreateCard(ctx context.Context, executor SQLExecutor, card *models.MembershipCard) error {
	query := `INSERT INTO membership_cards (` + cardColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	now := time.Now()
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now

	var validUntil sql.NullTime
	if card.ValidUntil != nil {
		validUntil = sql.NullTime{Time: *card.ValidUntil, Valid: true}
	}

	_, err := pick(executor, r.db).ExecContext(ctx, query,
		card.ID, card.MemberID, card.CardType, card.Category, card.Subtype, card.TrainerTier,
		card.RemainingGroupSessions, card.RemainingPrivateSessions, card.RemainingKidsSessions,
		validUntil, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		return classifyError(err, "creating membership card")
	}
	return nil
}

// GetCardByID retrieves a card by ID.
func (r *cardRepository) GetCardByID(ctx context.Context, executor SQLExecutor, id uuid.UUID) (*models.MembershipCard, error) {
	query := `SELECT ` + cardColumns + ` FROM membership_cards WHERE id = $1`
	card, err := scanCard(pick(executor, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting card by ID %s: %v", ErrDatabaseError, id, err)
	}
	return card, nil
}

func (r *cardRepository) ListCardsByMember(ctx context.Context, executor SQLExecutor, memberID uuid.UUID, lock bool) ([]models.MembershipCard, error) {
	query := `SELECT ` + cardColumns + ` FROM membership_cards
	          WHERE member_id = $1
	          ORDER BY valid_until ASC NULLS LAST, created_at ASC, id ASC`
	if lock {
		query += ` FOR UPDATE`
	}

	rows, err := pick(executor, r.db).QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying cards for member %s: %v", ErrDatabaseError, memberID, err)
	}
	defer rows.Close()

	cards := []models.MembershipCard{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning card: %v", ErrDatabaseError, err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating card rows: %v", ErrDatabaseError, err)
	}
	return cards, nil
}

var decrementQueries = map[models.SessionCounter]string{
	models.CounterGroup:   decrementQuery(models.CounterGroup),
	models.CounterPrivate: decrementQuery(models.CounterPrivate),
	models.CounterKids:    decrementQuery(models.CounterKids),
}

func decrementQuery(counter models.SessionCounter) string {
	col := string(counter)
	return `UPDATE membership_cards
	        SET ` + col + ` = ` + col + ` - 1, updated_at = $3
	        WHERE id = $1
	          AND card_category = 'session'
	          AND ` + col + ` > 0
	          AND (valid_until IS NULL OR valid_until >= $2::date)
	        RETURNING ` + col
}

func (r *cardRepository) DecrementSession(ctx context.Context, executor SQLExecutor, cardID uuid.UUID, counter models.SessionCounter, onDate time.Time) (int, error) {
	query, ok := decrementQueries[counter]
	if !ok {
		return 0, fmt.Errorf("%w: unknown session counter %q", ErrDatabaseError, counter)
	}

	var remaining int
	err := pick(executor, r.db).QueryRowContext(ctx, query, cardID, onDate, time.Now()).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoRowsAffected
		}
		return 0, classifyError(err, fmt.Sprintf("decrementing card %s", cardID))
	}
	return remaining, nil
}
