package services

import (
	"context"

	"github.com/google/uuid"
)

// FrontDeskRequest is what a member types at the desk: who they are and
// which class they are attending.
type FrontDeskRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
	ClassRequest
}

// FrontDeskResult is the outcome shown on the check-in screen.
type FrontDeskResult struct {
	Success       bool       `json:"success"`
	IsExtra       bool       `json:"is_extra"`
	IsNewMember   bool       `json:"is_new_member"`
	MemberID      uuid.UUID  `json:"member_id"`
	CardID        *uuid.UUID `json:"card_id"`
	CheckInID     uuid.UUID  `json:"check_in_id"`
	ClassCategory string     `json:"class_category"`
	TimeSlot      string     `json:"time_slot"`
	ClassPeriod   *string    `json:"class_period,omitempty"`
	Remaining     *int       `json:"remaining_sessions,omitempty"`
	Message       string     `json:"message"`
}

// FrontDeskService runs the whole desk flow: resolve the member, register
// them when unknown, otherwise check them in.
type FrontDeskService interface {
	CheckIn(ctx context.Context, req FrontDeskRequest) (*FrontDeskResult, error)
}

type frontDeskService struct {
	resolver     MemberResolver
	registration RegistrationService
	checkIns     CheckInService
}

// NewFrontDeskService creates a new instance of FrontDeskService.
func NewFrontDeskService(resolver MemberResolver, registration RegistrationService, checkIns CheckInService) FrontDeskService {
	return &frontDeskService{resolver: resolver, registration: registration, checkIns: checkIns}
}

// CheckIn returns ErrAmbiguousMember when the name matches several members
// and the email does not single one out.
func (s *frontDeskService) CheckIn(ctx context.Context, req FrontDeskRequest) (*FrontDeskResult, error) {
	res, err := s.resolver.ResolveMember(ctx, req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	switch res.Outcome {
	case ResolutionNotFound:
		reg, err := s.registration.RegisterMember(ctx, RegisterMemberRequest{
			Name:         req.Name,
			Email:        req.Email,
			ClassRequest: req.ClassRequest,
		})
		if err != nil {
			return nil, err
		}
		return newFrontDeskResult(reg.CheckIn, true), nil
	case ResolutionAmbiguous:
		return nil, ErrAmbiguousMember
	}

	result, err := s.checkIns.SubmitCheckIn(ctx, *res.MemberID, req.ClassRequest)
	if err != nil {
		return nil, err
	}
	return newFrontDeskResult(result, false), nil
}

func newFrontDeskResult(r *CheckInResult, isNewMember bool) *FrontDeskResult {
	return &FrontDeskResult{
		Success:       true,
		IsExtra:       r.IsExtra,
		IsNewMember:   isNewMember,
		MemberID:      r.MemberID,
		CardID:        r.CardID,
		CheckInID:     r.CheckInID,
		ClassCategory: string(r.ClassCategory),
		TimeSlot:      r.TimeSlot,
		ClassPeriod:   r.ClassPeriod,
		Remaining:     r.RemainingSessions,
		Message:       r.Message,
	}
}
