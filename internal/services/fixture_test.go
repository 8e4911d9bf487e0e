package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
	"gym_checkin_backend/internal/repositories/memstore"
)

var (
	gymZone = time.FixedZone("CST", 8*60*60)
	// 2024-05-02 in the gym's zone, still 2024-05-01 in UTC.
	testNow   = time.Date(2024, 5, 2, 7, 30, 0, 0, gymZone)
	testToday = time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
)

type recordingPublisher struct {
	mu          sync.Mutex
	checkIns    []*models.CheckIn
	newMembers  []bool
	registrants []*models.Member
}

func (p *recordingPublisher) PublishCheckInRecorded(ci *models.CheckIn, isNewMember bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkIns = append(p.checkIns, ci)
	p.newMembers = append(p.newMembers, isNewMember)
	return nil
}

func (p *recordingPublisher) PublishMemberRegistered(m *models.Member, _ *models.CheckIn) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registrants = append(p.registrants, m)
	return nil
}

func (p *recordingPublisher) Close() {}

type fixture struct {
	t            *testing.T
	ctx          context.Context
	store        *memstore.Store
	tx           repositories.Transactor
	publisher    *recordingPublisher
	resolver     MemberResolver
	registration RegistrationService
	checkIns     CheckInService
	selector     CardSelector
	cards        CardService
	trainers     TrainerService
	desk         FrontDeskService
}

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	t.Helper()
	o := Options{Location: gymZone, Now: func() time.Time { return testNow }}
	for _, fn := range opts {
		fn(&o)
	}
	return newFixtureWithTx(t, nil, o)
}

func withDailyLimit(o *Options) { o.MonthlyDailyLimit = true }

// newFixtureWithTx lets a test wrap the store's transactor.
func newFixtureWithTx(t *testing.T, wrap func(repositories.Transactor) repositories.Transactor, o Options) *fixture {
	t.Helper()
	store := memstore.New()
	tx := store.Transactor()
	if wrap != nil {
		tx = wrap(tx)
	}
	pub := &recordingPublisher{}

	f := &fixture{t: t, ctx: context.Background(), store: store, tx: tx, publisher: pub}
	f.resolver = NewMemberResolver(store.Members())
	f.registration = NewRegistrationService(store.Members(), store.CheckIns(), store.Trainers(), tx, pub, o)
	f.checkIns = NewCheckInService(store.Members(), store.Cards(), store.CheckIns(), store.Trainers(), tx, pub, o)
	f.selector = NewCardSelector(store.Members(), store.Cards(), store.CheckIns(), o)
	f.cards = NewCardService(store.Members(), store.Cards(), store.Transactor())
	f.trainers = NewTrainerService(store.Trainers(), store.Transactor())
	f.desk = NewFrontDeskService(f.resolver, f.registration, f.checkIns)
	return f
}

func (f *fixture) addMember(name string, email ...string) *models.Member {
	f.t.Helper()
	m := &models.Member{Name: name, IsNewMember: false}
	if len(email) > 0 {
		m.Email = &email[0]
	}
	err := f.store.Transactor().InTx(f.ctx, func(exec repositories.SQLExecutor) error {
		return f.store.Members().CreateMember(f.ctx, exec, m)
	})
	require.NoError(f.t, err)
	return m
}

type cardSpec struct {
	cardType  models.CardType
	category  models.CardCategory
	subtype   models.CardSubtype
	remaining *int
	expiry    *time.Time
	createdAt time.Time
}

func (f *fixture) addCard(memberID uuid.UUID, spec cardSpec) *models.MembershipCard {
	f.t.Helper()
	c := &models.MembershipCard{
		MemberID:   memberID,
		CardType:   spec.cardType,
		Category:   spec.category,
		Subtype:    spec.subtype,
		ValidUntil: spec.expiry,
		CreatedAt:  spec.createdAt,
	}
	if spec.remaining != nil {
		c.SetRemaining(*spec.remaining)
	}
	err := f.store.Transactor().InTx(f.ctx, func(exec repositories.SQLExecutor) error {
		return f.store.Cards().CreateCard(f.ctx, exec, c)
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) groupSessionCard(memberID uuid.UUID, remaining int, expiry *time.Time) *models.MembershipCard {
	return f.addCard(memberID, cardSpec{
		cardType:  models.CardGroup,
		category:  models.CategorySession,
		subtype:   models.SubtypeTenClasses,
		remaining: &remaining,
		expiry:    expiry,
	})
}

func (f *fixture) addTrainer(name string, tier models.TrainerTier) *models.Trainer {
	f.t.Helper()
	tr, err := f.trainers.CreateTrainer(f.ctx, CreateTrainerRequest{Name: name, Tier: string(tier)})
	require.NoError(f.t, err)
	return tr
}

func (f *fixture) card(id uuid.UUID) *models.MembershipCard {
	f.t.Helper()
	c, err := f.store.Cards().GetCardByID(f.ctx, nil, id)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) member(id uuid.UUID) *models.Member {
	f.t.Helper()
	m, err := f.store.Members().GetMemberByID(f.ctx, nil, id)
	require.NoError(f.t, err)
	return m
}

func (f *fixture) checkInCount(memberID uuid.UUID) int {
	f.t.Helper()
	_, total, err := f.store.CheckIns().ListCheckIns(f.ctx, nil, models.CheckInFilters{MemberID: &memberID})
	require.NoError(f.t, err)
	return total
}

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func groupMorning() ClassRequest {
	return ClassRequest{ClassCategory: "group", TimeSlot: "09:00-10:30"}
}
