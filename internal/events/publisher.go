package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"gym_checkin_backend/internal/models"
)

// NATS subjects.
const (
	SubjectCheckInRecorded  = "checkin.recorded"
	SubjectMemberRegistered = "member.registered"
)

// EventPublisher announces committed check-ins and registrations. Publishing
// happens after commit; a failed publish never undoes the write.
type EventPublisher interface {
	PublishCheckInRecorded(checkIn *models.CheckIn, isNewMember bool) error
	PublishMemberRegistered(member *models.Member, firstCheckIn *models.CheckIn) error
	Close()
}

type CheckInRecordedEvent struct {
	EventType     string               `json:"event_type"`
	CheckInID     uuid.UUID            `json:"check_in_id"`
	MemberID      uuid.UUID            `json:"member_id"`
	CardID        *uuid.UUID           `json:"card_id"`
	TrainerID     *uuid.UUID           `json:"trainer_id,omitempty"`
	ClassCategory models.ClassCategory `json:"class_category"`
	TimeSlot      string               `json:"time_slot"`
	CheckInDate   string               `json:"check_in_date"`
	IsExtra       bool                 `json:"is_extra"`
	Is1v2         bool                 `json:"is_1v2"`
	IsNewMember   bool                 `json:"is_new_member"`
	RecordedAt    time.Time            `json:"recorded_at"`
}

type MemberRegisteredEvent struct {
	EventType      string    `json:"event_type"`
	MemberID       uuid.UUID `json:"member_id"`
	Name           string    `json:"name"`
	Email          *string   `json:"email,omitempty"`
	FirstCheckInID uuid.UUID `json:"first_check_in_id"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// NewCheckInRecordedEvent builds the payload published for a check-in.
func NewCheckInRecordedEvent(ci *models.CheckIn, isNewMember bool) CheckInRecordedEvent {
	return CheckInRecordedEvent{
		EventType:     SubjectCheckInRecorded,
		CheckInID:     ci.ID,
		MemberID:      ci.MemberID,
		CardID:        ci.CardID,
		TrainerID:     ci.TrainerID,
		ClassCategory: ci.ClassCategory,
		TimeSlot:      ci.TimeSlot,
		CheckInDate:   ci.CheckInDate.Format(models.DateLayout),
		IsExtra:       ci.IsExtra,
		Is1v2:         ci.Is1v2,
		IsNewMember:   isNewMember,
		RecordedAt:    ci.CreatedAt,
	}
}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NatsPublisher struct {
	conn conn
}

// NewNatsPublisher connects to natsURL.
func NewNatsPublisher(natsURL string) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("gym-checkin-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", natsURL, err)
	}
	return &NatsPublisher{conn: nc}, nil
}

func (p *NatsPublisher) publish(subject string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publishing %s event: %w", subject, err)
	}
	log.Debug().Str("subject", subject).Msg("Published event to NATS")
	return nil
}

func (p *NatsPublisher) PublishCheckInRecorded(ci *models.CheckIn, isNewMember bool) error {
	return p.publish(SubjectCheckInRecorded, NewCheckInRecordedEvent(ci, isNewMember))
}

func (p *NatsPublisher) PublishMemberRegistered(m *models.Member, firstCheckIn *models.CheckIn) error {
	return p.publish(SubjectMemberRegistered, MemberRegisteredEvent{
		EventType:      SubjectMemberRegistered,
		MemberID:       m.ID,
		Name:           m.Name,
		Email:          m.Email,
		FirstCheckInID: firstCheckIn.ID,
		RegisteredAt:   m.CreatedAt,
	})
}

// Close flushes pending messages and closes the connection.
func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("Draining NATS connection failed")
	}
}

// NoopPublisher is used when no NATS_URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCheckInRecorded(*models.CheckIn, bool) error            { return nil }
func (NoopPublisher) PublishMemberRegistered(*models.Member, *models.CheckIn) error { return nil }
func (NoopPublisher) Close()                                                       {}
