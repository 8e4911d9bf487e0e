package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMember_NotFound(t *testing.T) {
	f := newFixture(t)
	res, err := f.resolver.ResolveMember(f.ctx, "Nobody", nil)
	require.NoError(t, err)
	assert.Equal(t, ResolutionNotFound, res.Outcome)
	assert.False(t, res.Found())
}

func TestResolveMember_UniqueIgnoresWidthCaseAndSpacing(t *testing.T) {
	f := newFixture(t)
	m := f.addMember("Li  Ming")

	for _, claimed := range []string{"li ming", "  LI MING ", "Ｌｉ　Ｍｉｎｇ"} {
		res, err := f.resolver.ResolveMember(f.ctx, claimed, nil)
		require.NoError(t, err)
		assert.Equal(t, ResolutionUnique, res.Outcome, claimed)
		require.True(t, res.Found())
		assert.Equal(t, m.ID, *res.MemberID)
	}
}

func TestResolveMember_SharedNameNeedsEmail(t *testing.T) {
	f := newFixture(t)
	first := f.addMember("王芳", "fang1@example.com")
	second := f.addMember("王芳", "fang2@example.com")

	res, err := f.resolver.ResolveMember(f.ctx, "王芳", nil)
	require.NoError(t, err)
	assert.Equal(t, ResolutionAmbiguous, res.Outcome)
	assert.Nil(t, res.MemberID)

	wrong := "someone@example.com"
	res, err = f.resolver.ResolveMember(f.ctx, "王芳", &wrong)
	require.NoError(t, err)
	assert.Equal(t, ResolutionAmbiguous, res.Outcome)
	assert.Nil(t, res.MemberID)

	for _, tc := range []struct {
		email string
		want  uuid.UUID
	}{
		{"fang1@example.com", first.ID},
		{"FANG2@example.com ", second.ID},
	} {
		email := tc.email
		res, err = f.resolver.ResolveMember(f.ctx, "王芳", &email)
		require.NoError(t, err)
		assert.Equal(t, ResolutionDisambiguated, res.Outcome)
		require.NotNil(t, res.MemberID)
		assert.Equal(t, tc.want, *res.MemberID)
	}
}

func TestResolveMember_EmptyName(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.ResolveMember(f.ctx, "   ", nil)
	require.ErrorIs(t, err, ErrInvalidName)
}
