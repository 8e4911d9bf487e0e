package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
)

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type memberRepo struct {
	s *Store
}

func (r *memberRepo) CreateMember(_ context.Context, _ repositories.SQLExecutor, member *models.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.takeFailure(OpCreateMember); err != nil {
		return fmt.Errorf("%w: creating member: %v", repositories.ErrDatabaseError, err)
	}
	if member.Email != nil {
		for _, existing := range r.s.members {
			if existing.HasEmail(*member.Email) {
				return fmt.Errorf("%w: email already taken (constraint: %s)", repositories.ErrDuplicateKey, repositories.MemberEmailConstraint)
			}
		}
	}

	now := time.Now()
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if _, exists := r.s.members[member.ID]; exists {
		return fmt.Errorf("%w: member %s (constraint: members_pkey)", repositories.ErrDuplicateKey, member.ID)
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now
	member.NormalizedName = models.NormalizeName(member.Name)

	r.s.members[member.ID] = cloneMember(*member)
	r.s.memberOrder = append(r.s.memberOrder, member.ID)
	return nil
}

func (r *memberRepo) GetMemberByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.members[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	m = cloneMember(m)
	return &m, nil
}

func (r *memberRepo) FindMembersByName(_ context.Context, _ repositories.SQLExecutor, normalizedName string) ([]models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	members := []models.Member{}
	for _, id := range r.s.memberOrder {
		m, ok := r.s.members[id]
		if ok && m.NormalizedName == normalizedName {
			members = append(members, cloneMember(m))
		}
	}
	return members, nil
}

func (r *memberRepo) FindMemberByEmail(_ context.Context, _ repositories.SQLExecutor, email string) (*models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range r.s.memberOrder {
		m, ok := r.s.members[id]
		if ok && m.HasEmail(email) {
			m = cloneMember(m)
			return &m, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memberRepo) RecordVisit(_ context.Context, _ repositories.SQLExecutor, memberID uuid.UUID, visitDate time.Time, isExtra bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.takeFailure(OpRecordVisit); err != nil {
		return fmt.Errorf("%w: recording visit: %v", repositories.ErrDatabaseError, err)
	}
	m, ok := r.s.members[memberID]
	if !ok {
		return repositories.ErrNotFound
	}
	m.IsNewMember = false
	if m.LastCheckInDate == nil || visitDate.After(*m.LastCheckInDate) {
		day := visitDate
		m.LastCheckInDate = &day
	}
	if isExtra {
		m.ExtraCheckIns++
	}
	m.UpdatedAt = time.Now()
	r.s.members[memberID] = m
	return nil
}

type cardRepo struct {
	s *Store
}

func (r *cardRepo) CreateCard(_ context.Context, _ repositories.SQLExecutor, card *models.MembershipCard) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.members[card.MemberID]; !ok {
		return fmt.Errorf("%w: member %s (constraint: membership_cards_member_id_fkey)", repositories.ErrForeignKey, card.MemberID)
	}
	now := time.Now()
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now
	r.s.cards[card.ID] = cloneCard(*card)
	return nil
}

func (r *cardRepo) GetCardByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.MembershipCard, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cards[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c = cloneCard(c)
	return &c, nil
}

// ListCardsByMember ignores lock: transactions are already serialized.
func (r *cardRepo) ListCardsByMember(_ context.Context, _ repositories.SQLExecutor, memberID uuid.UUID, _ bool) ([]models.MembershipCard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.takeFailure(OpListCards); err != nil {
		return nil, fmt.Errorf("%w: listing cards: %v", repositories.ErrDatabaseError, err)
	}
	cards := []models.MembershipCard{}
	for _, c := range r.s.cards {
		if c.MemberID == memberID {
			cards = append(cards, cloneCard(c))
		}
	}
	slices.SortFunc(cards, compareCards)
	return cards, nil
}

// compareCards orders by expiry (nil last), then creation time, then id.
func compareCards(a, b models.MembershipCard) int {
	switch {
	case a.ValidUntil != nil && b.ValidUntil == nil:
		return -1
	case a.ValidUntil == nil && b.ValidUntil != nil:
		return 1
	case a.ValidUntil != nil && b.ValidUntil != nil && !a.ValidUntil.Equal(*b.ValidUntil):
		return a.ValidUntil.Compare(*b.ValidUntil)
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

func (r *cardRepo) DecrementSession(_ context.Context, _ repositories.SQLExecutor, cardID uuid.UUID, counter models.SessionCounter, onDate time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.takeFailure(OpDecrement); err != nil {
		return 0, fmt.Errorf("%w: decrementing card: %v", repositories.ErrDatabaseError, err)
	}
	c, ok := r.s.cards[cardID]
	if !ok || c.IsMonthly() || c.ExpiredOn(onDate) {
		return 0, repositories.ErrNoRowsAffected
	}

	var field *int
	switch counter {
	case models.CounterGroup:
		field = c.RemainingGroupSessions
	case models.CounterPrivate:
		field = c.RemainingPrivateSessions
	case models.CounterKids:
		field = c.RemainingKidsSessions
	default:
		return 0, fmt.Errorf("%w: unknown session counter %q", repositories.ErrDatabaseError, counter)
	}
	if field == nil || *field <= 0 {
		return 0, repositories.ErrNoRowsAffected
	}

	remaining := *field - 1
	switch counter {
	case models.CounterGroup:
		c.RemainingGroupSessions = &remaining
	case models.CounterPrivate:
		c.RemainingPrivateSessions = &remaining
	case models.CounterKids:
		c.RemainingKidsSessions = &remaining
	}
	c.UpdatedAt = time.Now()
	r.s.cards[cardID] = c
	return remaining, nil
}

type checkInRepo struct {
	s *Store
}

func (r *checkInRepo) CreateCheckIn(_ context.Context, _ repositories.SQLExecutor, checkIn *models.CheckIn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.takeFailure(OpCreateCheckIn); err != nil {
		return fmt.Errorf("%w: creating check-in: %v", repositories.ErrDatabaseError, err)
	}
	if _, ok := r.s.members[checkIn.MemberID]; !ok {
		return fmt.Errorf("%w: member %s (constraint: check_ins_member_id_fkey)", repositories.ErrForeignKey, checkIn.MemberID)
	}
	if checkIn.CardID != nil {
		if _, ok := r.s.cards[*checkIn.CardID]; !ok {
			return fmt.Errorf("%w: card %s (constraint: check_ins_card_id_fkey)", repositories.ErrForeignKey, *checkIn.CardID)
		}
	}
	if checkIn.TrainerID != nil {
		if _, ok := r.s.trainers[*checkIn.TrainerID]; !ok {
			return fmt.Errorf("%w: trainer %s (constraint: check_ins_trainer_id_fkey)", repositories.ErrForeignKey, *checkIn.TrainerID)
		}
	}
	if (checkIn.CardID == nil) != checkIn.IsExtra {
		return fmt.Errorf("%w: card reference must be set exactly for regular check-ins", repositories.ErrDatabaseError)
	}

	if checkIn.ID == uuid.Nil {
		checkIn.ID = uuid.New()
	}
	if checkIn.CreatedAt.IsZero() {
		checkIn.CreatedAt = time.Now()
	}
	r.s.checkIns[checkIn.ID] = cloneCheckIn(*checkIn)
	r.s.checkInOrder = append(r.s.checkInOrder, checkIn.ID)
	return nil
}

func (r *checkInRepo) GetCheckInByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.CheckIn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ci, ok := r.s.checkIns[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	ci = cloneCheckIn(ci)
	return &ci, nil
}

func (r *checkInRepo) ListCheckIns(_ context.Context, _ repositories.SQLExecutor, filters models.CheckInFilters) ([]models.CheckIn, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []models.CheckIn{}
	// Newest first: walk insertion order backwards, then order by date.
	for i := len(r.s.checkInOrder) - 1; i >= 0; i-- {
		ci := r.s.checkIns[r.s.checkInOrder[i]]
		if filters.MemberID != nil && ci.MemberID != *filters.MemberID {
			continue
		}
		if filters.CardID != nil && (ci.CardID == nil || *ci.CardID != *filters.CardID) {
			continue
		}
		if filters.Date != nil && !models.SameDate(ci.CheckInDate, *filters.Date) {
			continue
		}
		matched = append(matched, cloneCheckIn(ci))
	}
	slices.SortStableFunc(matched, func(a, b models.CheckIn) int {
		return b.CheckInDate.Compare(a.CheckInDate)
	})

	total := len(matched)
	if filters.PageSize > 0 {
		page := max(filters.Page, 1)
		start := min((page-1)*filters.PageSize, total)
		end := min(start+filters.PageSize, total)
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *checkInRepo) CountCardCheckInsOnDate(_ context.Context, _ repositories.SQLExecutor, cardID uuid.UUID, day time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, ci := range r.s.checkIns {
		if !ci.IsExtra && ci.CardID != nil && *ci.CardID == cardID && models.SameDate(ci.CheckInDate, day) {
			count++
		}
	}
	return count, nil
}

type trainerRepo struct {
	s *Store
}

func (r *trainerRepo) CreateTrainer(_ context.Context, _ repositories.SQLExecutor, trainer *models.Trainer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	if trainer.ID == uuid.Nil {
		trainer.ID = uuid.New()
	}
	trainer.CreatedAt = now
	trainer.UpdatedAt = now
	r.s.trainers[trainer.ID] = cloneTrainer(*trainer)
	return nil
}

func (r *trainerRepo) GetTrainerByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Trainer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.trainers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	t = cloneTrainer(t)
	return &t, nil
}

func (r *trainerRepo) ListTrainers(_ context.Context, _ repositories.SQLExecutor) ([]models.Trainer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	trainers := make([]models.Trainer, 0, len(r.s.trainers))
	for _, t := range r.s.trainers {
		trainers = append(trainers, cloneTrainer(t))
	}
	slices.SortFunc(trainers, func(a, b models.Trainer) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return trainers, nil
}

// DeleteMember removes a member and everything that references it. It exists
// so tests can simulate a row vanishing between resolution and commit.
func (s *Store) DeleteMember(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members, id)
	s.memberOrder = slices.DeleteFunc(s.memberOrder, func(m uuid.UUID) bool { return m == id })
	for cid, c := range s.cards {
		if c.MemberID == id {
			delete(s.cards, cid)
		}
	}
}
