package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"gym_checkin_backend/internal/metrics"
	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
	"gym_checkin_backend/pkg/utils"
)

// ResolutionOutcome is the result kind of a member lookup.
type ResolutionOutcome string

const (
	ResolutionNotFound      ResolutionOutcome = "not_found"
	ResolutionUnique        ResolutionOutcome = "unique"
	ResolutionAmbiguous     ResolutionOutcome = "ambiguous"
	ResolutionDisambiguated ResolutionOutcome = "disambiguated"
)

// Resolution carries a member id only for Unique and Disambiguated outcomes.
// Ambiguous results never reveal which candidate, if any, matched.
type Resolution struct {
	Outcome  ResolutionOutcome `json:"outcome"`
	MemberID *uuid.UUID        `json:"member_id,omitempty"`
}

// Found reports whether the resolution names a member.
func (r Resolution) Found() bool {
	return r.MemberID != nil
}

type ResolveMemberRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
}

// MemberResolver maps a claimed identity onto member records. It never writes.
type MemberResolver interface {
	ResolveMember(ctx context.Context, name string, email *string) (Resolution, error)
}

type memberResolver struct {
	memberRepo repositories.MemberRepository
}

// NewMemberResolver creates a new instance of MemberResolver.
func NewMemberResolver(mr repositories.MemberRepository) MemberResolver {
	return &memberResolver{memberRepo: mr}
}

func (s *memberResolver) ResolveMember(ctx context.Context, name string, email *string) (Resolution, error) {
	normalized := models.NormalizeName(name)
	if normalized == "" {
		return Resolution{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	candidates, err := s.memberRepo.FindMembersByName(ctx, nil, normalized)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: looking up members by name: %v", ErrTransientFailure, err)
	}

	res := resolve(candidates, utils.StringValue(email))
	metrics.Resolutions.WithLabelValues(string(res.Outcome)).Inc()
	log.Debug().Str("outcome", string(res.Outcome)).Int("candidates", len(candidates)).Msg("Member resolved")
	return res, nil
}

func resolve(candidates []models.Member, email string) Resolution {
	switch len(candidates) {
	case 0:
		return Resolution{Outcome: ResolutionNotFound}
	case 1:
		id := candidates[0].ID
		return Resolution{Outcome: ResolutionUnique, MemberID: &id}
	}

	var match *uuid.UUID
	for i := range candidates {
		if !candidates[i].HasEmail(email) {
			continue
		}
		if match != nil {
			return Resolution{Outcome: ResolutionAmbiguous}
		}
		id := candidates[i].ID
		match = &id
	}
	if match == nil {
		return Resolution{Outcome: ResolutionAmbiguous}
	}
	return Resolution{Outcome: ResolutionDisambiguated, MemberID: match}
}
