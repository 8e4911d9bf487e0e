package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_checkin_backend/internal/models"
)

func TestCreateCard_LocalizedSpellings(t *testing.T) {
	f := newFixture(t)
	m := f.addMember("Card Buyer")

	card, err := f.cards.CreateCard(f.ctx, m.ID, CreateCardRequest{CardType: "团课", CardSubtype: "10次卡"})
	require.NoError(t, err)
	assert.Equal(t, models.CardGroup, card.CardType)
	assert.Equal(t, models.CategorySession, card.Category)
	assert.Equal(t, models.SubtypeTenClasses, card.Subtype)
	assert.Equal(t, 10, *card.Remaining())

	tier := "高级"
	card, err = f.cards.CreateCard(f.ctx, m.ID, CreateCardRequest{CardType: "私教课", CardCategory: "课时卡", CardSubtype: "单次卡", TrainerTier: &tier})
	require.NoError(t, err)
	assert.Equal(t, models.SubtypeSinglePrivate, card.Subtype)
	assert.Equal(t, models.TierSenior, *card.TrainerTier)
	assert.Equal(t, 1, *card.RemainingPrivateSessions)

	expiry := "2024-05-31"
	card, err = f.cards.CreateCard(f.ctx, m.ID, CreateCardRequest{CardType: "group", CardSubtype: "双次月卡", ValidUntil: &expiry})
	require.NoError(t, err)
	assert.True(t, card.IsMonthly())
	assert.Nil(t, card.Remaining())

	cards, err := f.cards.GetMemberCards(f.ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, card.ID, cards[0].ID, "the only expiring card sorts first")
}

func TestCreateCard_ExplicitSessionsOverrideDefault(t *testing.T) {
	f := newFixture(t)
	m := f.addMember("Partial")

	card, err := f.cards.CreateCard(f.ctx, m.ID, CreateCardRequest{CardType: "kids", CardSubtype: "10次卡", RemainingSessions: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, models.CardKidsGroup, card.CardType)
	assert.Equal(t, 4, *card.RemainingKidsSessions)
}

func TestCreateCard_Rejections(t *testing.T) {
	f := newFixture(t)
	m := f.addMember("Rejected")
	badDate := "31/05/2024"
	tier := "jr"

	tests := []struct {
		name string
		req  CreateCardRequest
	}{
		{"unknown type", CreateCardRequest{CardType: "瑜伽", CardSubtype: "10次卡"}},
		{"subtype of another type", CreateCardRequest{CardType: "kids_group", CardSubtype: "单次月卡"}},
		{"category mismatch", CreateCardRequest{CardType: "group", CardCategory: "monthly", CardSubtype: "10次卡"}},
		{"monthly without expiry", CreateCardRequest{CardType: "group", CardSubtype: "单次月卡"}},
		{"monthly with sessions", CreateCardRequest{CardType: "group", CardSubtype: "单次月卡", ValidUntil: ptr("2024-05-31"), RemainingSessions: ptr(3)}},
		{"bad date", CreateCardRequest{CardType: "group", CardSubtype: "10次卡", ValidUntil: &badDate}},
		{"tier on group card", CreateCardRequest{CardType: "group", CardSubtype: "10次卡", TrainerTier: &tier}},
		{"negative sessions", CreateCardRequest{CardType: "group", CardSubtype: "10次卡", RemainingSessions: ptr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.cards.CreateCard(f.ctx, m.ID, tt.req)
			require.ErrorIs(t, err, ErrInvalidCard)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := f.cards.CreateCard(f.ctx, uuid.New(), CreateCardRequest{CardType: "group", CardSubtype: "10次卡"})
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestTrainers_CreateAndList(t *testing.T) {
	f := newFixture(t)
	f.addTrainer("Zed", models.TierJunior)
	f.addTrainer("Amy", models.TierSenior)

	_, err := f.trainers.CreateTrainer(f.ctx, CreateTrainerRequest{Name: "Bob", Tier: "master"})
	require.ErrorIs(t, err, ErrValidation)

	trainers, err := f.trainers.GetTrainers(f.ctx)
	require.NoError(t, err)
	require.Len(t, trainers, 2)
	assert.Equal(t, "Amy", trainers[0].Name)
}
