package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
	"gym_checkin_backend/pkg/utils"
)

// CardSelection is the card chosen to back a regular check-in.
type CardSelection struct {
	CardID    uuid.UUID              `json:"card_id"`
	CardType  models.CardType        `json:"card_type"`
	Category  models.CardCategory    `json:"card_category"`
	Subtype   models.CardSubtype     `json:"card_subtype"`
	Expiry    *time.Time             `json:"valid_until,omitempty"`
	Counter   *models.SessionCounter `json:"remaining_counter,omitempty"`
	Remaining *int                   `json:"remaining_sessions,omitempty"`
}

func newCardSelection(c *models.MembershipCard) *CardSelection {
	sel := &CardSelection{
		CardID:   c.ID,
		CardType: c.CardType,
		Category: c.Category,
		Subtype:  c.Subtype,
		Expiry:   c.ValidUntil,
	}
	if !c.IsMonthly() {
		counter := models.CounterFor(c.CardType)
		sel.Counter = &counter
		sel.Remaining = c.Remaining()
	}
	return sel
}

// CardSelector picks the card a check-in should be billed to.
type CardSelector interface {
	SelectCard(ctx context.Context, memberID uuid.UUID, category models.ClassCategory) (*CardSelection, error)
}

type cardSelector struct {
	memberRepo  repositories.MemberRepository
	cardRepo    repositories.CardRepository
	checkInRepo repositories.CheckInRepository
	opts        Options
}

// NewCardSelector creates a new instance of CardSelector.
func NewCardSelector(
	mr repositories.MemberRepository,
	cr repositories.CardRepository,
	cir repositories.CheckInRepository,
	opts Options,
) CardSelector {
	return &cardSelector{memberRepo: mr, cardRepo: cr, checkInRepo: cir, opts: opts}
}

// SelectCard returns ErrNoValidCard when the member has nothing that covers
// the class today. It is a read-only preview; check-ins select again under
// lock before deducting.
func (s *cardSelector) SelectCard(ctx context.Context, memberID uuid.UUID, category models.ClassCategory) (*CardSelection, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
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
	card, err := chooseCard(ctx, cards, category, s.opts.today(), s.dailyUsage(nil))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	if card == nil {
		return nil, ErrNoValidCard
	}
	utils.LogDebug("Card selected", map[string]interface{}{
		"member_id":      memberID.String(),
		"card_id":        card.ID.String(),
		"class_category": string(category),
	})
	return newCardSelection(card), nil
}

func (s *cardSelector) dailyUsage(exec repositories.SQLExecutor) usageFunc {
	if !s.opts.MonthlyDailyLimit {
		return nil
	}
	return func(ctx context.Context, cardID uuid.UUID, day time.Time) (int, error) {
		return s.checkInRepo.CountCardCheckInsOnDate(ctx, exec, cardID, day)
	}
}

// usageFunc reports how many regular check-ins a card backed on day. A nil
// usageFunc disables the monthly daily limit.
type usageFunc func(ctx context.Context, cardID uuid.UUID, day time.Time) (int, error)

// chooseCard applies the selection policy: among cards valid for category on
// day, the one with the earliest expiry wins and cards without expiry come
// last. Ties go to the older card. It returns nil when nothing qualifies.
func chooseCard(ctx context.Context, cards []models.MembershipCard, category models.ClassCategory, day time.Time, usage usageFunc) (*models.MembershipCard, error) {
	candidates := make([]models.MembershipCard, 0, len(cards))
	for _, c := range cards {
		if c.IsValidFor(category, day) {
			candidates = append(candidates, c)
		}
	}
	slices.SortStableFunc(candidates, func(a, b models.MembershipCard) int {
		switch {
		case a.ValidUntil != nil && b.ValidUntil == nil:
			return -1
		case a.ValidUntil == nil && b.ValidUntil != nil:
			return 1
		case a.ValidUntil != nil && !a.ValidUntil.Equal(*b.ValidUntil):
			return a.ValidUntil.Compare(*b.ValidUntil)
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	for i := range candidates {
		c := &candidates[i]
		if usage != nil && c.IsMonthly() {
			if limit := c.Subtype.DailyLimit(); limit > 0 {
				used, err := usage(ctx, c.ID, day)
				if err != nil {
					return nil, err
				}
				if used >= limit {
					continue
				}
			}
		}
		return c, nil
	}
	return nil, nil
}
