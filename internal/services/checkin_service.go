package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"gym_checkin_backend/internal/events"
	"gym_checkin_backend/internal/metrics"
	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
	"gym_checkin_backend/pkg/utils"
)

// CheckInResult is returned for every committed check-in.
type CheckInResult struct {
	CheckInID     uuid.UUID            `json:"check_in_id"`
	MemberID      uuid.UUID            `json:"member_id"`
	IsExtra       bool                 `json:"is_extra"`
	CardID        *uuid.UUID           `json:"card_id"`
	ClassCategory models.ClassCategory `json:"class_category"`
	TimeSlot      string               `json:"time_slot"`
	ClassPeriod   *string              `json:"class_period,omitempty"`
	CheckInDate   string               `json:"check_in_date"`
	// RemainingSessions is the card's counter after deduction; nil for extra
	// check-ins and monthly cards.
	RemainingSessions *int `json:"remaining_sessions,omitempty"`
	Message           string `json:"message"`
}

func newCheckInResult(ci *models.CheckIn, remaining *int, isNewMember bool) *CheckInResult {
	return &CheckInResult{
		CheckInID:         ci.ID,
		MemberID:          ci.MemberID,
		IsExtra:           ci.IsExtra,
		CardID:            ci.CardID,
		ClassCategory:     ci.ClassCategory,
		TimeSlot:          ci.TimeSlot,
		ClassPeriod:       ci.ClassPeriod,
		CheckInDate:       ci.CheckInDate.Format(models.DateLayout),
		RemainingSessions: remaining,
		Message:           checkInMessage(ci.ClassCategory, ci.IsExtra, remaining != nil, isNewMember),
	}
}

// CheckInService records visits of existing members.
type CheckInService interface {
	SubmitCheckIn(ctx context.Context, memberID uuid.UUID, req ClassRequest) (*CheckInResult, error)
	GetCheckInByID(ctx context.Context, id uuid.UUID) (*models.CheckIn, error)
	GetMemberCheckIns(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]models.CheckIn, int, error)
}

type checkInService struct {
	memberRepo  repositories.MemberRepository
	cardRepo    repositories.CardRepository
	checkInRepo repositories.CheckInRepository
	trainerRepo repositories.TrainerRepository
	tx          repositories.Transactor
	publisher   events.EventPublisher
	opts        Options
}

// NewCheckInService creates a new instance of CheckInService.
func NewCheckInService(
	mr repositories.MemberRepository,
	cr repositories.CardRepository,
	cir repositories.CheckInRepository,
	tr repositories.TrainerRepository,
	tx repositories.Transactor,
	publisher events.EventPublisher,
	opts Options,
) CheckInService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &checkInService{
		memberRepo:  mr,
		cardRepo:    cr,
		checkInRepo: cir,
		trainerRepo: tr,
		tx:          tx,
		publisher:   publisher,
		opts:        opts,
	}
}

// SubmitCheckIn classifies and records one visit. A visit with no valid card
// is recorded as extra; repeat visits are billed again each time.
func (s *checkInService) SubmitCheckIn(ctx context.Context, memberID uuid.UUID, req ClassRequest) (*CheckInResult, error) {
	result, err := s.submit(ctx, memberID, req)
	if err != nil {
		metrics.CheckInFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	return result, nil
}

func (s *checkInService) submit(ctx context.Context, memberID uuid.UUID, req ClassRequest) (*CheckInResult, error) {
	class, err := validateClassRequest(ctx, s.trainerRepo, req)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetMemberByID(ctx, nil, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}

	day := s.opts.today()
	checkIn := class.checkIn(member.ID, day)
	var card *models.MembershipCard
	var remaining *int

	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		// Fresh attempt state on every call.
		checkIn.ID, checkIn.CardID, checkIn.IsExtra = uuid.Nil, nil, true
		card, remaining = nil, nil

		cards, err := s.cardRepo.ListCardsByMember(ctx, exec, member.ID, true)
		if err != nil {
			return err
		}
		var usage usageFunc
		if s.opts.MonthlyDailyLimit {
			usage = func(ctx context.Context, cardID uuid.UUID, d time.Time) (int, error) {
				return s.checkInRepo.CountCardCheckInsOnDate(ctx, exec, cardID, d)
			}
		}
		card, err = chooseCard(ctx, cards, class.category, day, usage)
		if err != nil {
			return err
		}

		if card != nil {
			if !card.IsMonthly() {
				n, err := s.cardRepo.DecrementSession(ctx, exec, card.ID, models.CounterFor(card.CardType), day)
				if err != nil {
					if errors.Is(err, repositories.ErrNoRowsAffected) {
						return fmt.Errorf("%w: card %s", errCardRaced, card.ID)
					}
					return err
				}
				remaining = &n
			}
			cardID := card.ID
			checkIn.CardID = &cardID
			checkIn.IsExtra = false
		}

		if err := s.checkInRepo.CreateCheckIn(ctx, exec, checkIn); err != nil {
			return err
		}
		if err := s.memberRepo.RecordVisit(ctx, exec, member.ID, day, checkIn.IsExtra); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: member %s", ErrReferenceVanished, member.ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		mapped := classifyTxError(err)
		utils.LogError(err, "Check-in transaction failed", map[string]interface{}{
			"member_id":      member.ID.String(),
			"class_category": string(class.category),
			"mapped":         mapped.Error(),
		})
		return nil, mapped
	}

	metrics.CheckIns.WithLabelValues(string(class.category), metrics.Classification(checkIn.IsExtra)).Inc()
	if card != nil && !card.IsMonthly() {
		metrics.SessionsDeducted.WithLabelValues(string(card.CardType)).Inc()
	}
	logEvent := log.Info().
		Str("member_id", member.ID.String()).
		Str("check_in_id", checkIn.ID.String()).
		Str("class_category", string(class.category)).
		Str("time_slot", class.slot).
		Bool("is_extra", checkIn.IsExtra)
	if card != nil {
		logEvent = logEvent.Str("card_id", card.ID.String())
	}
	if remaining != nil {
		logEvent = logEvent.Int("remaining_sessions", *remaining)
	}
	logEvent.Msg("Check-in recorded")

	if err := s.publisher.PublishCheckInRecorded(checkIn, false); err != nil {
		utils.LogError(err, "Failed to publish check-in event", map[string]interface{}{"check_in_id": checkIn.ID.String()})
	}
	return newCheckInResult(checkIn, remaining, false), nil
}

func (s *checkInService) GetCheckInByID(ctx context.Context, id uuid.UUID) (*models.CheckIn, error) {
	ci, err := s.checkInRepo.GetCheckInByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	return ci, nil
}

func (s *checkInService) GetMemberCheckIns(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]models.CheckIn, int, error) {
	if _, err := s.memberRepo.GetMemberByID(ctx, nil, memberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, ErrMemberNotFound
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	checkIns, total, err := s.checkInRepo.ListCheckIns(ctx, nil, models.CheckInFilters{
		MemberID: &memberID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	return checkIns, total, nil
}
