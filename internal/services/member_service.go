package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
)

// MemberService reads member records.
type MemberService interface {
	GetMemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

type memberService struct {
	memberRepo repositories.MemberRepository
}

// NewMemberService creates a new instance of MemberService.
func NewMemberService(mr repositories.MemberRepository) MemberService {
	return &memberService{memberRepo: mr}
}

func (s *memberService) GetMemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	m, err := s.memberRepo.GetMemberByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	return m, nil
}
