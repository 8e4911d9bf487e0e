package memstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
	"gym_checkin_backend/internal/repositories/memstore"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedMember(t *testing.T, s *memstore.Store, name string) *models.Member {
	t.Helper()
	m := &models.Member{Name: name, IsNewMember: true}
	err := s.Transactor().InTx(context.Background(), func(exec repositories.SQLExecutor) error {
		return s.Members().CreateMember(context.Background(), exec, m)
	})
	require.NoError(t, err)
	return m
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transactor().InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.Members().CreateMember(ctx, exec, &models.Member{Name: "Ghost"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := s.Members().FindMembersByName(ctx, nil, "ghost")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestInTx_CommitFailureKeepsWrites(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	s.FailOn(memstore.OpCommit, errors.New("connection reset"))

	err := s.Transactor().InTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.Members().CreateMember(ctx, exec, &models.Member{Name: "Lost Ack"})
	})
	require.ErrorIs(t, err, repositories.ErrCommitFailed)

	found, err := s.Members().FindMembersByName(ctx, nil, "lost ack")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestCreateMember_DuplicateEmailIgnoresCase(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	first := "Wang@Example.com"
	second := "wang@example.com"

	require.NoError(t, s.Members().CreateMember(ctx, nil, &models.Member{Name: "Wang", Email: &first}))
	err := s.Members().CreateMember(ctx, nil, &models.Member{Name: "Wang Two", Email: &second})
	require.ErrorIs(t, err, repositories.ErrDuplicateKey)
	assert.Contains(t, err.Error(), repositories.MemberEmailConstraint)
}

func TestListCardsByMember_ExpiryOrder(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	m := seedMember(t, s, "Order")

	late, early := day(2024, 12, 31), day(2024, 7, 1)
	noExpiry := &models.MembershipCard{MemberID: m.ID, CardType: models.CardGroup, Category: models.CategorySession, Subtype: models.SubtypeTenClasses}
	lateCard := &models.MembershipCard{MemberID: m.ID, CardType: models.CardGroup, Category: models.CategorySession, Subtype: models.SubtypeTenClasses, ValidUntil: &late}
	earlyCard := &models.MembershipCard{MemberID: m.ID, CardType: models.CardGroup, Category: models.CategoryMonthly, Subtype: models.SubtypeSingleMonthly, ValidUntil: &early}
	for _, c := range []*models.MembershipCard{noExpiry, lateCard, earlyCard} {
		require.NoError(t, s.Cards().CreateCard(ctx, nil, c))
	}

	cards, err := s.Cards().ListCardsByMember(ctx, nil, m.ID, true)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, earlyCard.ID, cards[0].ID)
	assert.Equal(t, lateCard.ID, cards[1].ID)
	assert.Equal(t, noExpiry.ID, cards[2].ID)
}

func TestDecrementSession_NeverNegative(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	m := seedMember(t, s, "Racer")

	card := &models.MembershipCard{MemberID: m.ID, CardType: models.CardGroup, Category: models.CategorySession, Subtype: models.SubtypeTwoClasses}
	card.SetRemaining(2)
	require.NoError(t, s.Cards().CreateCard(ctx, nil, card))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Transactor().InTx(ctx, func(exec repositories.SQLExecutor) error {
				_, err := s.Cards().DecrementSession(ctx, exec, card.ID, models.CounterGroup, day(2024, 5, 1))
				return err
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, repositories.ErrNoRowsAffected)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	got, err := s.Cards().GetCardByID(ctx, nil, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *got.Remaining())
}

func TestDecrementSession_RefusesExpiredAndMonthly(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	m := seedMember(t, s, "Lapsed")

	expiry := day(2024, 5, 1)
	expired := &models.MembershipCard{MemberID: m.ID, CardType: models.CardGroup, Category: models.CategorySession, Subtype: models.SubtypeTenClasses, ValidUntil: &expiry}
	expired.SetRemaining(5)
	monthly := &models.MembershipCard{MemberID: m.ID, CardType: models.CardGroup, Category: models.CategoryMonthly, Subtype: models.SubtypeSingleMonthly, ValidUntil: &expiry}
	require.NoError(t, s.Cards().CreateCard(ctx, nil, expired))
	require.NoError(t, s.Cards().CreateCard(ctx, nil, monthly))

	_, err := s.Cards().DecrementSession(ctx, nil, expired.ID, models.CounterGroup, day(2024, 5, 1))
	require.NoError(t, err, "a card is usable on its expiry date")
	_, err = s.Cards().DecrementSession(ctx, nil, expired.ID, models.CounterGroup, day(2024, 5, 2))
	require.ErrorIs(t, err, repositories.ErrNoRowsAffected)
	_, err = s.Cards().DecrementSession(ctx, nil, monthly.ID, models.CounterGroup, day(2024, 4, 1))
	require.ErrorIs(t, err, repositories.ErrNoRowsAffected)
}

func TestCreateCheckIn_ForeignKeys(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	err := s.CheckIns().CreateCheckIn(ctx, nil, &models.CheckIn{MemberID: uuid.New(), IsExtra: true})
	require.ErrorIs(t, err, repositories.ErrForeignKey)

	m := seedMember(t, s, "Keys")
	trainerID := uuid.New()
	err = s.CheckIns().CreateCheckIn(ctx, nil, &models.CheckIn{MemberID: m.ID, TrainerID: &trainerID, ClassCategory: models.ClassPrivate, IsExtra: true})
	require.ErrorIs(t, err, repositories.ErrForeignKey)
}

func TestListCheckIns_FiltersAndPages(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	m := seedMember(t, s, "Pager")
	other := seedMember(t, s, "Other")

	for i, d := range []time.Time{day(2024, 5, 1), day(2024, 5, 3), day(2024, 5, 2)} {
		require.NoError(t, s.CheckIns().CreateCheckIn(ctx, nil, &models.CheckIn{
			MemberID: m.ID, ClassCategory: models.ClassGroup, TimeSlot: "09:00-10:30", CheckInDate: d, IsExtra: true,
		}), "check-in %d", i)
	}
	require.NoError(t, s.CheckIns().CreateCheckIn(ctx, nil, &models.CheckIn{
		MemberID: other.ID, ClassCategory: models.ClassGroup, TimeSlot: "09:00-10:30", CheckInDate: day(2024, 5, 4), IsExtra: true,
	}))

	page, total, err := s.CheckIns().ListCheckIns(ctx, nil, models.CheckInFilters{MemberID: &m.ID, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.True(t, page[0].CheckInDate.Equal(day(2024, 5, 3)))
	assert.True(t, page[1].CheckInDate.Equal(day(2024, 5, 2)))

	page, _, err = s.CheckIns().ListCheckIns(ctx, nil, models.CheckInFilters{MemberID: &m.ID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.True(t, page[0].CheckInDate.Equal(day(2024, 5, 1)))
}
