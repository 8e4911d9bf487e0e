package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_checkin_backend/internal/models"
)

func TestSelectCard_EarliestExpiryFirstThenOpenEnded(t *testing.T) {
	f := newFixture(t)
	m := f.addMember("Many Cards")
	open := f.groupSessionCard(m.ID, 10, nil)
	late := f.groupSessionCard(m.ID, 10, date(2024, 12, 31))
	soon := f.groupSessionCard(m.ID, 1, date(2024, 6, 1))
	f.groupSessionCard(m.ID, 10, date(2024, 4, 30)) // expired

	for _, want := range []uuid.UUID{soon.ID, late.ID} {
		sel, err := f.selector.SelectCard(f.ctx, m.ID, models.ClassGroup)
		require.NoError(t, err)
		assert.Equal(t, want, sel.CardID)
		require.NotNil(t, sel.Counter)
		assert.Equal(t, models.CounterGroup, *sel.Counter)

		res, err := f.checkIns.SubmitCheckIn(f.ctx, m.ID, groupMorning())
		require.NoError(t, err)
		assert.Equal(t, want, *res.CardID)
		if want == late.ID {
			break
		}
	}
	assert.Equal(t, 0, *f.card(soon.ID).Remaining())
	assert.Equal(t, 9, *f.card(late.ID).Remaining())
	assert.Equal(t, 10, *f.card(open.ID).Remaining())
}

func TestSelectCard_MatchesCategoryOnly(t *testing.T) {
	f := newFixture(t)
	m := f.addMember("Kids Parent")
	kids := f.addCard(m.ID, cardSpec{
		cardType: models.CardKidsGroup, category: models.CategorySession, subtype: models.SubtypeKidsTenClasses, remaining: ptr(10),
	})

	_, err := f.selector.SelectCard(f.ctx, m.ID, models.ClassGroup)
	require.ErrorIs(t, err, ErrNoValidCard)

	sel, err := f.selector.SelectCard(f.ctx, m.ID, models.ClassKidsGroup)
	require.NoError(t, err)
	assert.Equal(t, kids.ID, sel.CardID)
	assert.Equal(t, models.CounterKids, *sel.Counter)
	assert.Equal(t, 10, *sel.Remaining)
}

func TestSelectCard_MonthlyHasNoCounter(t *testing.T) {
	f := newFixture(t)
	m := f.addMember("Monthly Only")
	card := f.addCard(m.ID, cardSpec{
		cardType: models.CardGroup, category: models.CategoryMonthly, subtype: models.SubtypeDoubleMonthly, expiry: date(2024, 5, 31),
	})

	sel, err := f.selector.SelectCard(f.ctx, m.ID, models.ClassGroup)
	require.NoError(t, err)
	assert.Equal(t, card.ID, sel.CardID)
	assert.Nil(t, sel.Counter)
	assert.Nil(t, sel.Remaining)
	assert.True(t, date(2024, 5, 31).Equal(*sel.Expiry))
}

func TestSelectCard_Errors(t *testing.T) {
	f := newFixture(t)
	_, err := f.selector.SelectCard(f.ctx, uuid.New(), models.ClassGroup)
	require.ErrorIs(t, err, ErrMemberNotFound)

	m := f.addMember("No Cards")
	_, err = f.selector.SelectCard(f.ctx, m.ID, models.ClassGroup)
	require.ErrorIs(t, err, ErrNoValidCard)

	_, err = f.selector.SelectCard(f.ctx, m.ID, models.ClassCategory("yoga"))
	require.ErrorIs(t, err, ErrInvalidCategory)
}

func TestChooseCard_TieGoesToOlderCard(t *testing.T) {
	expiry := date(2024, 6, 1)
	older := models.MembershipCard{ID: uuid.New(), CardType: models.CardGroup, Category: models.CategorySession, ValidUntil: expiry, CreatedAt: testNow.Add(-48 * time.Hour)}
	newer := models.MembershipCard{ID: uuid.New(), CardType: models.CardGroup, Category: models.CategorySession, ValidUntil: expiry, CreatedAt: testNow.Add(-time.Hour)}
	older.SetRemaining(2)
	newer.SetRemaining(2)

	got, err := chooseCard(context.Background(), []models.MembershipCard{newer, older}, models.ClassGroup, testToday, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, older.ID, got.ID)
}

func TestChooseCard_NilCounterIsNotValid(t *testing.T) {
	broken := models.MembershipCard{ID: uuid.New(), CardType: models.CardGroup, Category: models.CategorySession}
	got, err := chooseCard(context.Background(), []models.MembershipCard{broken}, models.ClassGroup, testToday, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
