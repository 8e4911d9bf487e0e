package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"gym_checkin_backend/internal/events"
	"gym_checkin_backend/internal/metrics"
	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
	"gym_checkin_backend/pkg/utils"
)

type RegisterMemberRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	ClassRequest
}

// RegistrationResult holds the new member and its first, unpaid check-in.
type RegistrationResult struct {
	Member  *models.Member `json:"member"`
	CheckIn *CheckInResult `json:"check_in"`
}

// RegistrationService creates members on their first visit.
type RegistrationService interface {
	RegisterMember(ctx context.Context, req RegisterMemberRequest) (*RegistrationResult, error)
}

type registrationService struct {
	memberRepo  repositories.MemberRepository
	checkInRepo repositories.CheckInRepository
	trainerRepo repositories.TrainerRepository
	tx          repositories.Transactor
	publisher   events.EventPublisher
	opts        Options
}

// NewRegistrationService creates a new instance of RegistrationService.
func NewRegistrationService(
	mr repositories.MemberRepository,
	cir repositories.CheckInRepository,
	tr repositories.TrainerRepository,
	tx repositories.Transactor,
	publisher events.EventPublisher,
	opts Options,
) RegistrationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &registrationService{
		memberRepo:  mr,
		checkInRepo: cir,
		trainerRepo: tr,
		tx:          tx,
		publisher:   publisher,
		opts:        opts,
	}
}

// RegisterMember creates the member and its first check-in in one
// transaction. The check-in is always extra since a new member owns no card,
// and the member is no longer new once it commits.
//
// An email already on file is an EmailConflict. A name already on file is a
// NameConflict unless a new email is given, in which case a second member with
// the same name is created and later told apart by email.
func (s *registrationService) RegisterMember(ctx context.Context, req RegisterMemberRequest) (*RegistrationResult, error) {
	result, err := s.register(ctx, req)
	if err != nil {
		metrics.CheckInFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	return result, nil
}

func (s *registrationService) register(ctx context.Context, req RegisterMemberRequest) (*RegistrationResult, error) {
	name := strings.Join(strings.Fields(req.Name), " ")
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	email := utils.NewNullString(utils.StringValue(req.Email))
	if email != nil {
		if !utils.IsValidEmail(*email) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, *email)
		}
		normalized := models.NormalizeEmail(*email)
		email = &normalized
	}
	class, err := validateClassRequest(ctx, s.trainerRepo, req.ClassRequest)
	if err != nil {
		return nil, err
	}

	day := s.opts.today()
	var member *models.Member
	var checkIn *models.CheckIn

	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if email != nil {
			_, err := s.memberRepo.FindMemberByEmail(ctx, exec, *email)
			if err == nil {
				return ErrEmailConflict
			}
			if !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
		}
		sameName, err := s.memberRepo.FindMembersByName(ctx, exec, models.NormalizeName(name))
		if err != nil {
			return err
		}
		if len(sameName) > 0 && email == nil {
			return ErrNameConflict
		}

		member = &models.Member{
			Name:        name,
			Email:       email,
			Phone:       utils.NewNullString(utils.StringValue(req.Phone)),
			IsNewMember: true,
		}
		if err := s.memberRepo.CreateMember(ctx, exec, member); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) && strings.Contains(err.Error(), repositories.MemberEmailConstraint) {
				return ErrEmailConflict
			}
			return err
		}

		checkIn = class.checkIn(member.ID, day)
		if err := s.checkInRepo.CreateCheckIn(ctx, exec, checkIn); err != nil {
			return err
		}
		return s.memberRepo.RecordVisit(ctx, exec, member.ID, day, true)
	})
	if err != nil {
		mapped := classifyTxError(err)
		if !errors.Is(mapped, ErrNameConflict) && !errors.Is(mapped, ErrEmailConflict) {
			utils.LogError(err, "Registration transaction failed", map[string]interface{}{"mapped": mapped.Error()})
		}
		return nil, mapped
	}

	member.IsNewMember = false
	member.LastCheckInDate = &day
	member.ExtraCheckIns = 1

	metrics.Registrations.Inc()
	metrics.CheckIns.WithLabelValues(string(class.category), metrics.Extra).Inc()
	log.Info().
		Str("member_id", member.ID.String()).
		Str("check_in_id", checkIn.ID.String()).
		Str("class_category", string(class.category)).
		Msg("New member registered")

	if err := s.publisher.PublishMemberRegistered(member, checkIn); err != nil {
		utils.LogError(err, "Failed to publish registration event", map[string]interface{}{"member_id": member.ID.String()})
	}
	if err := s.publisher.PublishCheckInRecorded(checkIn, true); err != nil {
		utils.LogError(err, "Failed to publish check-in event", map[string]interface{}{"check_in_id": checkIn.ID.String()})
	}

	return &RegistrationResult{
		Member:  member,
		CheckIn: newCheckInResult(checkIn, nil, true),
	}, nil
}
