package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
)

// CreateCardRequest accepts the raw spellings staff type in, e.g.
// card_type "团课" with card_subtype "10次卡".
type CreateCardRequest struct {
	CardType          string  `json:"card_type" binding:"required"`
	CardCategory      string  `json:"card_category"`
	CardSubtype       string  `json:"card_subtype" binding:"required"`
	TrainerTier       *string `json:"trainer_tier"`
	RemainingSessions *int    `json:"remaining_sessions" binding:"omitempty,gte=0"`
	ValidUntil        *string `json:"valid_until"` // Format YYYY-MM-DD
}

// CardService is the administrative side of membership cards.
type CardService interface {
	CreateCard(ctx context.Context, memberID uuid.UUID, req CreateCardRequest) (*models.MembershipCard, error)
	GetMemberCards(ctx context.Context, memberID uuid.UUID) ([]models.MembershipCard, error)
}

type cardService struct {
	memberRepo repositories.MemberRepository
	cardRepo   repositories.CardRepository
	tx         repositories.Transactor
}

// NewCardService creates a new instance of CardService.
func NewCardService(mr repositories.MemberRepository, cr repositories.CardRepository, tx repositories.Transactor) CardService {
	return &cardService{memberRepo: mr, cardRepo: cr, tx: tx}
}

func (s *cardService) CreateCard(ctx context.Context, memberID uuid.UUID, req CreateCardRequest) (*models.MembershipCard, error) {
	kind, err := models.NormalizeCardKind(req.CardType, req.CardCategory, req.CardSubtype)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}

	card := &models.MembershipCard{
		MemberID: memberID,
		CardType: kind.Type,
		Category: kind.Category,
		Subtype:  kind.Subtype,
	}

	if req.TrainerTier != nil && strings.TrimSpace(*req.TrainerTier) != "" {
		if kind.Type != models.CardPrivate {
			return nil, fmt.Errorf("%w: trainer tier only applies to private cards", ErrInvalidCard)
		}
		tier, err := models.ParseTrainerTier(*req.TrainerTier)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCard, err)
		}
		card.TrainerTier = &tier
	}

	if req.ValidUntil != nil && strings.TrimSpace(*req.ValidUntil) != "" {
		expiry, err := time.Parse(models.DateLayout, strings.TrimSpace(*req.ValidUntil))
		if err != nil {
			return nil, fmt.Errorf("%w: valid_until must be YYYY-MM-DD", ErrInvalidCard)
		}
		card.ValidUntil = &expiry
	}

	if kind.Category == models.CategoryMonthly {
		if card.ValidUntil == nil {
			return nil, fmt.Errorf("%w: monthly cards need valid_until", ErrInvalidCard)
		}
		if req.RemainingSessions != nil {
			return nil, fmt.Errorf("%w: monthly cards have no session counter", ErrInvalidCard)
		}
	} else {
		sessions := kind.Subtype.DefaultSessions()
		if req.RemainingSessions != nil {
			sessions = *req.RemainingSessions
		}
		if sessions < 0 {
			return nil, fmt.Errorf("%w: remaining sessions cannot be negative", ErrInvalidCard)
		}
		card.SetRemaining(sessions)
	}

	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.memberRepo.GetMemberByID(ctx, exec, memberID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		return s.cardRepo.CreateCard(ctx, exec, card)
	})
	if err != nil {
		return nil, classifyTxError(err)
	}

	log.Info().
		Str("member_id", memberID.String()).
		Str("card_id", card.ID.String()).
		Str("card_type", string(card.CardType)).
		Str("card_subtype", string(card.Subtype)).
		Msg("Membership card created")
	return card, nil
}

func (s *cardService) GetMemberCards(ctx context.Context, memberID uuid.UUID) ([]models.MembershipCard, error) {
	if _, err := s.memberRepo.GetMemberByID(ctx, nil, memberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	cards, err := s.cardRepo.ListCardsByMember(ctx, nil, memberID, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	return cards, nil
}
