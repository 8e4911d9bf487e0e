package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/width"
)

// ErrUnknownCardKind is returned when a card type, category, subtype or
// trainer tier spelling is not recognised.
var ErrUnknownCardKind = errors.New("unrecognized card kind")

// CardType mirrors the class category a card entitles.
type CardType string

const (
	CardGroup     CardType = "group"
	CardPrivate   CardType = "private"
	CardKidsGroup CardType = "kids_group"
)

// CardCategory decides whether the card counts sessions.
type CardCategory string

const (
	CategorySession CardCategory = "session"
	CategoryMonthly CardCategory = "monthly"
)

type CardSubtype string

const (
	SubtypeSingleClass    CardSubtype = "single_class"
	SubtypeTwoClasses     CardSubtype = "two_classes"
	SubtypeTenClasses     CardSubtype = "ten_classes"
	SubtypeSingleMonthly  CardSubtype = "single_monthly"
	SubtypeDoubleMonthly  CardSubtype = "double_monthly"
	SubtypeSinglePrivate  CardSubtype = "single_private"
	SubtypeTenPrivate     CardSubtype = "ten_private"
	SubtypeKidsTenClasses CardSubtype = "kids_ten_classes"
)

type TrainerTier string

const (
	TierJunior TrainerTier = "jr"
	TierSenior TrainerTier = "senior"
)

// SessionCounter names the remaining-sessions column a card draws from.
type SessionCounter string

const (
	CounterGroup   SessionCounter = "remaining_group_sessions"
	CounterPrivate SessionCounter = "remaining_private_sessions"
	CounterKids    SessionCounter = "remaining_kids_sessions"
)

// MembershipCard is an entitlement owned by one member. Only the counter
// matching CardType is meaningful; monthly cards carry no counter.
type MembershipCard struct {
	ID                       uuid.UUID    `json:"id" db:"id"`
	MemberID                 uuid.UUID    `json:"member_id" db:"member_id"`
	CardType                 CardType     `json:"card_type" db:"card_type"`
	Category                 CardCategory `json:"card_category" db:"card_category"`
	Subtype                  CardSubtype  `json:"card_subtype" db:"card_subtype"`
	TrainerTier              *TrainerTier `json:"trainer_tier,omitempty" db:"trainer_tier"`
	RemainingGroupSessions   *int         `json:"remaining_group_sessions,omitempty" db:"remaining_group_sessions"`
	RemainingPrivateSessions *int         `json:"remaining_private_sessions,omitempty" db:"remaining_private_sessions"`
	RemainingKidsSessions    *int         `json:"remaining_kids_sessions,omitempty" db:"remaining_kids_sessions"`
	ValidUntil               *time.Time   `json:"valid_until,omitempty" db:"valid_until"`
	CreatedAt                time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time    `json:"updated_at" db:"updated_at"`
}

// CardTypeFor maps a requested class category to the card type that serves it.
func CardTypeFor(c ClassCategory) CardType {
	return CardType(c)
}

// CounterFor returns the session counter column used by cards of type t.
func CounterFor(t CardType) SessionCounter {
	switch t {
	case CardPrivate:
		return CounterPrivate
	case CardKidsGroup:
		return CounterKids
	default:
		return CounterGroup
	}
}

// IsMonthly reports whether the card is a monthly (non-decrementing) card.
func (c *MembershipCard) IsMonthly() bool {
	return c.Category == CategoryMonthly
}

// Remaining returns the card's relevant session counter, or nil for monthly
// cards and cards whose counter was never set.
func (c *MembershipCard) Remaining() *int {
	if c.IsMonthly() {
		return nil
	}
	switch CounterFor(c.CardType) {
	case CounterPrivate:
		return c.RemainingPrivateSessions
	case CounterKids:
		return c.RemainingKidsSessions
	default:
		return c.RemainingGroupSessions
	}
}

// SetRemaining overwrites the relevant session counter.
func (c *MembershipCard) SetRemaining(n int) {
	switch CounterFor(c.CardType) {
	case CounterPrivate:
		c.RemainingPrivateSessions = &n
	case CounterKids:
		c.RemainingKidsSessions = &n
	default:
		c.RemainingGroupSessions = &n
	}
}

// ExpiredOn reports whether the card has lapsed by the given date. A card is
// still usable on its expiry date.
func (c *MembershipCard) ExpiredOn(day time.Time) bool {
	return c.ValidUntil != nil && c.ValidUntil.Before(CivilDate(day, time.UTC))
}

// IsValidFor reports whether the card can back a check-in of category cat on
// day: the type must match, it must not have expired, and a session card must
// have at least one session left.
func (c *MembershipCard) IsValidFor(cat ClassCategory, day time.Time) bool {
	if c.CardType != CardTypeFor(cat) || c.ExpiredOn(day) {
		return false
	}
	if c.IsMonthly() {
		return true
	}
	r := c.Remaining()
	return r != nil && *r > 0
}

// DefaultSessions is the session count a newly issued card starts with.
func (s CardSubtype) DefaultSessions() int {
	switch s {
	case SubtypeSingleClass, SubtypeSinglePrivate:
		return 1
	case SubtypeTwoClasses:
		return 2
	case SubtypeTenClasses, SubtypeTenPrivate, SubtypeKidsTenClasses:
		return 10
	}
	return 0
}

// DailyLimit is the number of regular check-ins per day a monthly subtype
// allows when the daily limit policy is enabled; 0 means unlimited.
func (s CardSubtype) DailyLimit() int {
	switch s {
	case SubtypeSingleMonthly:
		return 1
	case SubtypeDoubleMonthly:
		return 2
	}
	return 0
}

// CardKind is the closed (type, category, subtype) triple every raw card
// spelling is normalized into.
type CardKind struct {
	Type     CardType
	Category CardCategory
	Subtype  CardSubtype
}

func canonical(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(width.Narrow.String(raw)), ""))
}

// ParseCardType accepts the localized and legacy spellings of a card type.
func ParseCardType(raw string) (CardType, error) {
	switch canonical(raw) {
	case "group", "class", "团课":
		return CardGroup, nil
	case "private", "私教", "私教课":
		return CardPrivate, nil
	case "kids_group", "kidsgroup", "kids", "儿童团课":
		return CardKidsGroup, nil
	}
	return "", fmt.Errorf("%w: card type %q", ErrUnknownCardKind, raw)
}

// ParseCardCategory accepts the localized spellings of a card category. An
// empty category is allowed and resolved later from the subtype.
func ParseCardCategory(raw string) (CardCategory, error) {
	switch canonical(raw) {
	case "":
		return "", nil
	case "session", "sessions", "课时卡", "次卡":
		return CategorySession, nil
	case "monthly", "month", "月卡":
		return CategoryMonthly, nil
	}
	return "", fmt.Errorf("%w: card category %q", ErrUnknownCardKind, raw)
}

// ParseCardSubtype resolves a subtype spelling in the context of a card type,
// since the localized labels ("单次卡", "10次卡") are shared between types.
func ParseCardSubtype(raw string, t CardType) (CardSubtype, error) {
	c := canonical(raw)
	switch t {
	case CardGroup:
		switch c {
		case "single_class", "单次卡":
			return SubtypeSingleClass, nil
		case "two_classes", "两次卡":
			return SubtypeTwoClasses, nil
		case "ten_classes", "group_ten_class", "10次卡":
			return SubtypeTenClasses, nil
		case "single_monthly", "单次月卡":
			return SubtypeSingleMonthly, nil
		case "double_monthly", "双次月卡":
			return SubtypeDoubleMonthly, nil
		}
	case CardPrivate:
		switch c {
		case "single_private", "single_class", "单次卡":
			return SubtypeSinglePrivate, nil
		case "ten_private", "ten_classes", "10次卡":
			return SubtypeTenPrivate, nil
		}
	case CardKidsGroup:
		switch c {
		case "kids_ten_classes", "ten_classes", "10次卡":
			return SubtypeKidsTenClasses, nil
		}
	}
	return "", fmt.Errorf("%w: card subtype %q for %s card", ErrUnknownCardKind, raw, t)
}

// ParseTrainerTier accepts the trainer tier spellings used for private cards.
func ParseTrainerTier(raw string) (TrainerTier, error) {
	switch canonical(raw) {
	case "jr", "junior", "jr教练", "初级":
		return TierJunior, nil
	case "senior", "高级", "高级教练":
		return TierSenior, nil
	}
	return "", fmt.Errorf("%w: trainer tier %q", ErrUnknownCardKind, raw)
}

// NormalizeCardKind turns raw type/category/subtype strings into a CardKind
// and checks that the combination is one that is actually sold.
func NormalizeCardKind(rawType, rawCategory, rawSubtype string) (CardKind, error) {
	t, err := ParseCardType(rawType)
	if err != nil {
		return CardKind{}, err
	}
	cat, err := ParseCardCategory(rawCategory)
	if err != nil {
		return CardKind{}, err
	}
	sub, err := ParseCardSubtype(rawSubtype, t)
	if err != nil {
		return CardKind{}, err
	}

	implied := CategorySession
	if sub == SubtypeSingleMonthly || sub == SubtypeDoubleMonthly {
		implied = CategoryMonthly
	}
	if cat == "" {
		cat = implied
	}
	if cat != implied {
		return CardKind{}, fmt.Errorf("%w: subtype %s does not belong to %s category", ErrUnknownCardKind, sub, cat)
	}
	return CardKind{Type: t, Category: cat, Subtype: sub}, nil
}
