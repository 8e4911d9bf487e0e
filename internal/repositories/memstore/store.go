// Package memstore keeps members, cards, check-ins and trainers in process
// memory. It implements every repository interface plus a Transactor and is
// used by tests and by the "memory" store driver.
//
// Writes are only safe inside InTx: transactions are serialized, and a
// transaction whose function fails is rolled back by restoring a snapshot
// taken when it began.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
)

// Op names an operation that can be made to fail with FailOn.
type Op string

const (
	OpCreateMember  Op = "create_member"
	OpRecordVisit   Op = "record_visit"
	OpListCards     Op = "list_cards"
	OpDecrement     Op = "decrement_session"
	OpCreateCheckIn Op = "create_check_in"
	OpCommit        Op = "commit"
)

// Store is the in-memory database.
type Store struct {
	txMu sync.Mutex

	mu           sync.RWMutex
	members      map[uuid.UUID]models.Member
	memberOrder  []uuid.UUID
	cards        map[uuid.UUID]models.MembershipCard
	checkIns     map[uuid.UUID]models.CheckIn
	checkInOrder []uuid.UUID
	trainers     map[uuid.UUID]models.Trainer
	failures     map[Op]error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		members:  make(map[uuid.UUID]models.Member),
		cards:    make(map[uuid.UUID]models.MembershipCard),
		checkIns: make(map[uuid.UUID]models.CheckIn),
		trainers: make(map[uuid.UUID]models.Trainer),
		failures: make(map[Op]error),
	}
}

func (s *Store) Members() repositories.MemberRepository   { return &memberRepo{s: s} }
func (s *Store) Cards() repositories.CardRepository       { return &cardRepo{s: s} }
func (s *Store) CheckIns() repositories.CheckInRepository { return &checkInRepo{s: s} }
func (s *Store) Trainers() repositories.TrainerRepository { return &trainerRepo{s: s} }
func (s *Store) Transactor() repositories.Transactor      { return &transactor{s: s} }

// FailOn makes the next call of op return err. For OpCommit the
// transaction's writes are kept, matching a commit whose acknowledgement was
// lost.
func (s *Store) FailOn(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// takeFailure must be called with mu held.
func (s *Store) takeFailure(op Op) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

type snapshot struct {
	members      map[uuid.UUID]models.Member
	memberOrder  []uuid.UUID
	cards        map[uuid.UUID]models.MembershipCard
	checkIns     map[uuid.UUID]models.CheckIn
	checkInOrder []uuid.UUID
	trainers     map[uuid.UUID]models.Trainer
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		members:      make(map[uuid.UUID]models.Member, len(s.members)),
		memberOrder:  append([]uuid.UUID(nil), s.memberOrder...),
		cards:        make(map[uuid.UUID]models.MembershipCard, len(s.cards)),
		checkIns:     make(map[uuid.UUID]models.CheckIn, len(s.checkIns)),
		checkInOrder: append([]uuid.UUID(nil), s.checkInOrder...),
		trainers:     make(map[uuid.UUID]models.Trainer, len(s.trainers)),
	}
	for id, m := range s.members {
		snap.members[id] = cloneMember(m)
	}
	for id, c := range s.cards {
		snap.cards[id] = cloneCard(c)
	}
	for id, ci := range s.checkIns {
		snap.checkIns[id] = cloneCheckIn(ci)
	}
	for id, t := range s.trainers {
		snap.trainers[id] = cloneTrainer(t)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = snap.members
	s.memberOrder = snap.memberOrder
	s.cards = snap.cards
	s.checkIns = snap.checkIns
	s.checkInOrder = snap.checkInOrder
	s.trainers = snap.trainers
}

type transactor struct {
	s *Store
}

func (t *transactor) InTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", repositories.ErrDatabaseError, err)
	}

	snap := t.s.snapshot()
	if err := fn(nil); err != nil {
		t.s.restore(snap)
		return err
	}

	t.s.mu.Lock()
	err := t.s.takeFailure(OpCommit)
	t.s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", repositories.ErrCommitFailed, err)
	}
	return nil
}

func cloneMember(m models.Member) models.Member {
	m.Email = cloneString(m.Email)
	m.Phone = cloneString(m.Phone)
	m.LastCheckInDate = cloneTime(m.LastCheckInDate)
	return m
}

func cloneCard(c models.MembershipCard) models.MembershipCard {
	if c.TrainerTier != nil {
		tier := *c.TrainerTier
		c.TrainerTier = &tier
	}
	c.RemainingGroupSessions = cloneInt(c.RemainingGroupSessions)
	c.RemainingPrivateSessions = cloneInt(c.RemainingPrivateSessions)
	c.RemainingKidsSessions = cloneInt(c.RemainingKidsSessions)
	c.ValidUntil = cloneTime(c.ValidUntil)
	return c
}

func cloneCheckIn(ci models.CheckIn) models.CheckIn {
	ci.CardID = cloneUUID(ci.CardID)
	ci.TrainerID = cloneUUID(ci.TrainerID)
	ci.ClassPeriod = cloneString(ci.ClassPeriod)
	return ci
}

func cloneTrainer(t models.Trainer) models.Trainer {
	t.Notes = cloneString(t.Notes)
	return t
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneUUID(p *uuid.UUID) *uuid.UUID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
